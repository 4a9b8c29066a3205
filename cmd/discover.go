package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/etnz/wealth/statement"
	"github.com/google/subcommands"
)

// discoverCmd is a dry run of the file selection of 'parse'.
type discoverCmd struct {
	raw bool
}

func (*discoverCmd) Name() string     { return "discover" }
func (*discoverCmd) Synopsis() string { return "show which statement files would be parsed" }
func (*discoverCmd) Usage() string {
	return `wlt discover [-raw]

  Scans the statements directory and shows, for each file, the source it
  belongs to and whether it would be parsed, without parsing anything.
`
}

func (c *discoverCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.raw, "raw", false, "Print the markdown source instead of rendering it.")
}

func (c *discoverCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, _, ok := setup()
	if !ok {
		return subcommands.ExitUsageError
	}
	reg := statement.DefaultRegistry()
	d, err := statement.Discover(cfg.Paths.Statements, reg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	md := discoveryMarkdown(cfg.Paths.Statements, d, cfg.EnabledSources(reg.Names()))
	if c.raw {
		fmt.Print(md)
	} else {
		printMarkdown(md)
	}
	return subcommands.ExitSuccess
}

// discoveryMarkdown renders the scan of dir as a markdown table.
func discoveryMarkdown(dir string, d *statement.Discovery, enabled []string) string {
	on := make(map[string]bool, len(enabled))
	for _, name := range enabled {
		on[name] = true
	}
	latest, superseded := statement.Latest(d.Matches)
	status := make(map[string]string)
	for _, m := range latest {
		status[m.Path] = "parsed"
		if !on[m.Source] {
			status[m.Path] = "disabled"
		}
	}
	for _, m := range superseded {
		status[m.Path] = "superseded"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Statements in %s\n\n", dir)
	if len(d.Matches)+len(d.Unrecognized)+len(d.Ambiguous) == 0 {
		b.WriteString("_No files._\n")
		return b.String()
	}
	b.WriteString("| File | Source | Modified | Status |\n|---|---|---|---|\n")
	for _, m := range d.Matches {
		mod := time.Unix(0, m.ModTime).Format("2006-01-02 15:04")
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", filepath.Base(m.Path), m.Source, mod, status[m.Path])
	}
	for _, a := range d.Ambiguous {
		fmt.Fprintf(&b, "| %s | %s | | ambiguous |\n", filepath.Base(a.Path), strings.Join(a.Sources, ", "))
	}
	for _, p := range d.Unrecognized {
		fmt.Fprintf(&b, "| %s | | | unrecognized |\n", filepath.Base(p))
	}
	return b.String()
}
