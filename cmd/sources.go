package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/wealth/statement"
	"github.com/google/subcommands"
)

type sourcesCmd struct {
	raw bool
}

func (*sourcesCmd) Name() string     { return "sources" }
func (*sourcesCmd) Synopsis() string { return "list the supported statement sources" }
func (*sourcesCmd) Usage() string {
	return `wlt sources [-raw]

  Lists the statement sources, the file name patterns they recognize and
  whether the configuration enables them.
`
}

func (c *sourcesCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.raw, "raw", false, "Print the markdown source instead of rendering it.")
}

func (c *sourcesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, _, ok := setup()
	if !ok {
		return subcommands.ExitUsageError
	}
	reg := statement.DefaultRegistry()
	md := sourcesMarkdown(reg, cfg.EnabledSources(reg.Names()), cfg.EnabledSources(nil))

	if c.raw {
		fmt.Print(md)
	} else {
		printMarkdown(md)
	}
	return subcommands.ExitSuccess
}

// sourcesMarkdown renders the registered sources as a markdown table.
// configured lists the sources enabled in the configuration, the unknown
// ones are listed last.
func sourcesMarkdown(reg *statement.Registry, enabled, configured []string) string {
	on := make(map[string]bool, len(enabled))
	for _, name := range enabled {
		on[name] = true
	}

	var b strings.Builder
	b.WriteString("# Sources\n\n| Source | Broker | Patterns | Enabled |\n|---|---|---|:---:|\n")
	for _, name := range reg.Names() {
		p, _ := reg.Resolve(name)
		state := "no"
		if on[name] {
			state = "yes"
		}
		fmt.Fprintf(&b, "| %s | %s | `%s` | %s |\n", name, p.Broker(), strings.Join(p.Patterns(), "` `"), state)
	}
	for _, name := range configured {
		if !reg.Has(name) {
			fmt.Fprintf(&b, "| %s | | | unknown |\n", name)
		}
	}
	b.WriteString("\nSources absent from the `brokers` configuration are enabled.\n")
	return b.String()
}
