// Package statement reads broker and retirement account statements into
// holding records.
//
// Each source (a broker, a fund registrar, a retirement scheme) is a Parser
// registered by name in a Registry. Discover matches the files of a
// statements directory against the file patterns of the registered sources,
// and Run parses the latest file of each source.
package statement

import (
	"fmt"

	"github.com/etnz/wealth"
	"github.com/etnz/wealth/date"
)

// Parser reads the statements of one source.
type Parser interface {
	// Source is the registry name, e.g. "zerodha".
	Source() string
	// Broker is the display name put on records, e.g. "Zerodha".
	Broker() string
	// Patterns are the glob patterns of the statement file names.
	Patterns() []string
	// Parse reads a statement. It fails with a *wealth.IOError when the
	// file cannot be read and a *wealth.ParseError when its structure is not
	// the expected one. Row level problems are warnings of the result.
	Parse(path string) (*Result, error)
}

// Result holds what was read from one statement.
type Result struct {
	Records       []wealth.HoldingRecord
	Warnings      []wealth.Warning
	StatementDate date.Date

	source string
	broker string
	path   string
}

func newResult(p Parser, path string) *Result {
	return &Result{source: p.Source(), broker: p.Broker(), path: path}
}

// warn appends a warning about line (0 for the whole file).
func (r *Result) warn(kind wealth.WarningKind, line int, format string, args ...any) {
	r.Warnings = append(r.Warnings, wealth.Warning{
		Kind:    kind,
		Source:  r.source,
		Path:    r.path,
		Line:    line,
		Message: fmt.Sprintf(format, args...),
	})
}

// add validates and completes rec before appending it.
//
// An invalid ISIN is dropped with a warning. A statement invested amount
// that disagrees with quantity × average cost is kept, with a warning.
func (r *Result) add(rec wealth.HoldingRecord) {
	if rec.Source == "" {
		rec.Source = r.broker
	}
	isin, err := wealth.NormalizeISIN(rec.ISIN)
	if err != nil {
		r.warn(wealth.InvalidISIN, rec.Line, "%v", err)
	}
	rec.ISIN = isin
	if !rec.Reconcile() {
		r.warn(wealth.InvestedMismatch, rec.Line, "%s: invested %s differs from %s × %s", rec.Symbol, rec.Invested, rec.Quantity, rec.AverageCost)
	}
	r.Records = append(r.Records, rec)
}

// parseError returns a file level ParseError.
func parseError(path, format string, args ...any) error {
	return &wealth.ParseError{Path: path, Reason: fmt.Sprintf(format, args...)}
}
