package statement

import (
	"context"
	"errors"
	"fmt"

	"github.com/etnz/wealth"
	"github.com/etnz/wealth/logging"
)

// Options configures a pipeline run.
type Options struct {
	Dir      string
	Registry *Registry // defaults to DefaultRegistry()
	// Enabled lists the sources to parse, nil means all registered sources.
	Enabled []string
	Logger  *logging.Logger
}

// Outcome is everything read from a statements directory.
type Outcome struct {
	Records  []wealth.HoldingRecord
	Warnings []wealth.Warning
	Sources  []wealth.SourceFile
}

// Run discovers the statements of a directory and parses the latest file
// of each enabled source. File and row problems are warnings of the
// outcome; Run only fails when the directory cannot be scanned or ctx is done.
func Run(ctx context.Context, opts Options) (*Outcome, error) {
	logger := logging.OrSilent(opts.Logger)
	reg := opts.Registry
	if reg == nil {
		reg = DefaultRegistry()
	}
	out := &Outcome{}
	warn := func(w wealth.Warning) {
		logger.Warn().Str("kind", string(w.Kind)).Str("path", w.Path).Int("line", w.Line).Msg(w.Message)
		out.Warnings = append(out.Warnings, w)
	}

	enabled := reg
	if opts.Enabled != nil {
		var errs []error
		enabled, errs = reg.Enabled(opts.Enabled)
		for _, err := range errs {
			w := wealth.Warning{Kind: wealth.UnknownSource, Message: err.Error()}
			var u *wealth.UnknownSourceError
			if errors.As(err, &u) {
				w.Source = u.Source
			}
			warn(w)
		}
	}

	d, err := Discover(opts.Dir, reg)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("dir", opts.Dir).Int("files", len(d.Matches)).Msg("statements discovered")
	for _, w := range d.Warnings() {
		warn(w)
	}

	latest, superseded := Latest(d.Matches)
	for _, m := range superseded {
		warn(wealth.Warning{Kind: wealth.Superseded, Source: m.Source, Path: m.Path, Message: "a more recent statement of this source is parsed instead"})
	}

	for _, m := range latest {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !enabled.Has(m.Source) {
			warn(wealth.Warning{Kind: wealth.DisabledSource, Source: m.Source, Path: m.Path, Message: fmt.Sprintf("source %q is disabled", m.Source)})
			continue
		}
		p, err := enabled.Resolve(m.Source)
		if err != nil {
			warn(wealth.WarningFrom(wealth.UnknownSource, m.Source, m.Path, err))
			continue
		}
		res, err := p.Parse(m.Path)
		if err != nil {
			warn(wealth.WarningFrom(wealth.FileFailed, m.Source, m.Path, err))
			continue
		}
		logger.Info().Str("source", m.Source).Str("path", m.Path).Int("records", len(res.Records)).Msg("statement parsed")
		for _, w := range res.Warnings {
			warn(w)
		}
		out.Records = append(out.Records, res.Records...)
		out.Sources = append(out.Sources, wealth.SourceFile{
			Path:          m.Path,
			Source:        m.Source,
			Broker:        p.Broker(),
			StatementDate: res.StatementDate,
			Records:       len(res.Records),
		})
	}
	logger.Info().Int("records", len(out.Records)).Int("warnings", len(out.Warnings)).Msg("statements read")
	return out, nil
}
