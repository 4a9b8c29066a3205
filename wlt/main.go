// Command wlt consolidates brokerage, mutual fund and retirement statements
// into a single portfolio snapshot.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"

	"github.com/etnz/wealth/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	// shell completion, active when COMP_LINE is set
	completion().Complete("wlt")

	flag.Parse()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}

func completion() *complete.Command {
	raw := map[string]complete.Predictor{"raw": predict.Nothing}
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"config":     predict.Files("*.yaml"),
			"statements": predict.Dirs("*"),
			"snapshot":   predict.Files("*.json"),
			"log-level":  predict.Set{"trace", "debug", "info", "warn", "error", "off"},
		},
		Sub: map[string]*complete.Command{
			"parse": {Flags: map[string]complete.Predictor{
				"o":      predict.Files("*.json"),
				"quotes": predict.Nothing,
			}},
			"summary": {Flags: map[string]complete.Predictor{
				"fresh":       predict.Nothing,
				"quotes":      predict.Nothing,
				"top":         predict.Something,
				"html":        predict.Files("*.html"),
				"chart":       predict.Files("*.png"),
				"raw":         predict.Nothing,
				"no-warnings": predict.Nothing,
			}},
			"sources":  {Flags: raw},
			"discover": {Flags: raw},
			"help":     {Args: predict.Set{"parse", "summary", "sources", "discover"}},
			"flags":    {},
			"commands": {},
		},
	}
}
