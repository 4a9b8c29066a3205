package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/wealth"
	"github.com/google/subcommands"
)

// parseCmd holds the flags for the 'parse' subcommand.
type parseCmd struct {
	output string
	quotes bool
}

func (*parseCmd) Name() string     { return "parse" }
func (*parseCmd) Synopsis() string { return "consolidate the statements into a portfolio snapshot" }
func (*parseCmd) Usage() string {
	return `wlt parse [-o <snapshot>] [-quotes]

  Parses the latest statement of each enabled source, consolidates the
  holdings and writes the portfolio snapshot. Unreadable files and rows are
  reported as warnings, they do not stop the run.
`
}

func (c *parseCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Snapshot file to write. Defaults to paths.snapshot.")
	f.BoolVar(&c.quotes, "quotes", false, "Fetch latest prices from the configured quote endpoint.")
}

func (c *parseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, logger, ok := setup()
	if !ok {
		return subcommands.ExitUsageError
	}
	output := c.output
	if output == "" {
		output = cfg.Paths.Snapshot
	}

	s, err := consolidate(ctx, cfg, logger, c.quotes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := wealth.WriteSnapshot(output, s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("%d holdings from %d statements, value %s (%s), %d warnings\n",
		s.Holdings(), len(s.Sources), s.Totals.Value, s.Totals.PnLPercent.SignedString(), len(s.Warnings))
	for _, w := range s.Warnings {
		fmt.Printf("  %s\n", w)
	}
	fmt.Printf("Snapshot written to %s\n", output)
	return subcommands.ExitSuccess
}
