package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/wealth"
	"github.com/etnz/wealth/renderer"
	"github.com/google/subcommands"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	fresh      bool
	quotes     bool
	top        int
	html       string
	chart      string
	raw        bool
	noWarnings bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the portfolio summary" }
func (*summaryCmd) Usage() string {
	return `wlt summary [-fresh] [-top <n>] [-html <file>] [-chart <file>] [-raw]

  Displays the totals, allocation and holdings of the last snapshot.
  With -fresh the statements are consolidated again, without writing a snapshot.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.fresh, "fresh", false, "Consolidate the statements instead of reading the snapshot.")
	f.BoolVar(&c.quotes, "quotes", false, "With -fresh, fetch latest prices from the configured quote endpoint.")
	f.IntVar(&c.top, "top", 0, "Holdings shown per category, 0 for all.")
	f.StringVar(&c.html, "html", "", "Write the summary as an HTML page to this file.")
	f.StringVar(&c.chart, "chart", "", "Write the allocation pie chart as a PNG to this file.")
	f.BoolVar(&c.raw, "raw", false, "Print the markdown source instead of rendering it.")
	f.BoolVar(&c.noWarnings, "no-warnings", false, "Do not list the warnings of the run.")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.top < 0 {
		fmt.Fprintf(os.Stderr, "Error: -top must not be negative\n")
		return subcommands.ExitUsageError
	}
	cfg, logger, ok := setup()
	if !ok {
		return subcommands.ExitUsageError
	}

	var s *wealth.Snapshot
	var err error
	if c.fresh {
		s, err = consolidate(ctx, cfg, logger, c.quotes)
	} else {
		s, err = wealth.ReadSnapshot(cfg.Paths.Snapshot)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if !c.fresh {
			fmt.Fprintf(os.Stderr, "Run 'wlt parse' first, or use -fresh.\n")
		}
		return subcommands.ExitFailure
	}

	title := cfg.Profile.Name + "'s Portfolio"
	md, err := renderer.SummaryMarkdown(s, renderer.SummaryOptions{
		Title:        title,
		Top:          c.top,
		SkipWarnings: c.noWarnings,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.chart != "" {
		if err := writeChart(c.chart, s); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		logger.Info().Str("path", c.chart).Msg("allocation chart written")
	}

	if c.html != "" {
		page, err := renderer.HTML(title, md)
		if err == nil {
			err = os.WriteFile(c.html, page, 0o644)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Summary written to %s\n", c.html)
		return subcommands.ExitSuccess
	}

	if c.raw {
		fmt.Print(md)
	} else {
		printMarkdown(md)
	}
	return subcommands.ExitSuccess
}

func writeChart(path string, s *wealth.Snapshot) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return renderer.AllocationChart(f, s)
}
