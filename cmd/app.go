// Package cmd implements the wlt command line application.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/wealth"
	"github.com/etnz/wealth/config"
	"github.com/etnz/wealth/logging"
	"github.com/etnz/wealth/statement"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&parseCmd{}, "statements")
	c.Register(&discoverCmd{}, "statements")
	c.Register(&sourcesCmd{}, "statements")

	c.Register(&summaryCmd{}, "reports")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFiles   = flag.String("config", "config/config.yaml,config.yaml", "Comma separated configuration files, YAML or TOML, later ones override earlier ones. Missing files are ignored.")
	statementsDir = flag.String("statements", "", "Statements directory. Overrides paths.statements.")
	snapshotFile  = flag.String("snapshot", "", "Snapshot file. Overrides paths.snapshot.")
	logLevel      = flag.String("log-level", "", "Log level (debug, info, warn, error, off). Overrides logging.level.")
)

// loadConfig loads the configuration files and applies the global flags.
func loadConfig() (*config.Config, error) {
	var paths []string
	for _, p := range strings.Split(*configFiles, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return nil, err
	}
	if *statementsDir != "" {
		cfg.Paths.Statements = *statementsDir
	}
	if *snapshotFile != "" {
		cfg.Paths.Snapshot = *snapshotFile
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	return cfg, nil
}

// setup loads the configuration and creates the logger, reporting errors on stderr.
func setup() (*config.Config, *logging.Logger, bool) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return nil, nil, false
	}
	return cfg, logging.NewLogger(cfg.Logging.Level), true
}

// consolidate reads the statements and builds a fresh snapshot.
// Quotes are fetched from the configured endpoint when withQuotes is set.
func consolidate(ctx context.Context, cfg *config.Config, logger *logging.Logger, withQuotes bool) (*wealth.Snapshot, error) {
	reg := statement.DefaultRegistry()
	out, err := statement.Run(ctx, statement.Options{
		Dir:      cfg.Paths.Statements,
		Registry: reg,
		Enabled:  cfg.EnabledSources(reg.Names()),
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	prices := make(wealth.PriceBook)
	warnings := out.Warnings
	if withQuotes && cfg.Quotes.URL != "" {
		quotes := wealth.NewQuoteSource(cfg.Quotes.URL, cfg.Quotes.Path, cfg.Quotes.RateLimit, logger)
		fetched, ws, err := quotes.Fetch(ctx, quoteSymbols(out.Records))
		if err != nil {
			return nil, err
		}
		prices.Merge(fetched)
		warnings = append(warnings, ws...)
	}
	if cfg.Paths.Prices != "" {
		// a price file wins over quotes
		file, err := wealth.LoadPrices(cfg.Paths.Prices, cfg.Paths.PricesPath)
		if err != nil {
			return nil, err
		}
		prices.Merge(file)
	}

	opts := cfg.ConsolidateOptions()
	opts.Prices = prices
	opts.Warnings = warnings
	opts.Sources = out.Sources
	return wealth.Consolidate(out.Records, opts)
}

// quoteSymbols returns the listed symbols of records, sorted and unique.
func quoteSymbols(records []wealth.HoldingRecord) []string {
	var ids []string
	for _, r := range records {
		if r.Symbol == "" || (r.Category != wealth.Equity && r.Category != wealth.USEquity) {
			continue
		}
		ids = append(ids, r.Symbol)
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// printMarkdown renders md for the terminal, or prints it raw when rendering fails.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(160))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}
