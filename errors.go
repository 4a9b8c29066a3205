package wealth

import (
	"errors"
	"fmt"
	"strings"
)

// ParseError reports a statement file, or a row of it, that does not match
// the expected layout of its source.
type ParseError struct {
	Path   string
	Line   int // 1-based, 0 when the whole file is concerned
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s line %d: %s", e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Reason)
}

// UnknownSourceError reports a source name with no registered parser.
type UnknownSourceError struct {
	Source string
}

func (e *UnknownSourceError) Error() string {
	return fmt.Sprintf("unknown statement source %q", e.Source)
}

// AmbiguousFileError reports a file matched with the same specificity by
// patterns of several sources.
type AmbiguousFileError struct {
	Path    string
	Sources []string
}

func (e *AmbiguousFileError) Error() string {
	return fmt.Sprintf("file %s matches several sources: %s", e.Path, strings.Join(e.Sources, ", "))
}

// IOError reports a failure to read a statement or to write the snapshot.
type IOError struct {
	Op   string // "read", "write", "scan"...
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("cannot %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// WarningKind classifies non fatal events of a run.
type WarningKind string

const (
	Unrecognized      WarningKind = "unrecognized"
	Ambiguous         WarningKind = "ambiguous"
	UnknownSource     WarningKind = "unknown_source"
	DisabledSource    WarningKind = "disabled_source"
	Superseded        WarningKind = "superseded"
	SkippedRow        WarningKind = "skipped_row"
	FileFailed        WarningKind = "file_failed"
	InvalidISIN       WarningKind = "invalid_isin"
	InvestedMismatch  WarningKind = "invested_mismatch"
	UnmatchedOverride WarningKind = "unmatched_override"
	MissingPrice      WarningKind = "missing_price"
)

// Warning is a non fatal event attached to the run result.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Source  string      `json:"source,omitempty"`
	Path    string      `json:"path,omitempty"`
	Line    int         `json:"line,omitempty"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	var b strings.Builder
	b.WriteString(string(w.Kind))
	if w.Path != "" {
		b.WriteString(" ")
		b.WriteString(w.Path)
		if w.Line > 0 {
			fmt.Fprintf(&b, ":%d", w.Line)
		}
	}
	if w.Source != "" {
		fmt.Fprintf(&b, " [%s]", w.Source)
	}
	b.WriteString(": ")
	b.WriteString(w.Message)
	return b.String()
}

// WarningFrom turns a file level error into a warning.
func WarningFrom(kind WarningKind, source, path string, err error) Warning {
	w := Warning{Kind: kind, Source: source, Path: path, Message: err.Error()}
	var pe *ParseError
	if errors.As(err, &pe) {
		w.Line = pe.Line
		w.Message = pe.Reason
	}
	return w
}
