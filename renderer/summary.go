package renderer

import (
	"path/filepath"
	"time"

	"github.com/etnz/wealth"
)

// SummaryOptions holds configuration for rendering a snapshot summary.
type SummaryOptions struct {
	Title        string // defaults to "Portfolio Summary"
	Top          int    // holdings shown per category, 0 for all
	SkipWarnings bool   // do not render the warnings section
	SkipSources  bool   // do not render the statements section
}

// Summary is the view of a snapshot rendered by the summary templates.
type Summary struct {
	*wealth.Snapshot
	Title    string
	Date     string
	Sections []Section
	Files    []File
}

// Section is a category of the summary, with its displayed holdings.
type Section struct {
	wealth.CategorySection
	Title  string
	Shown  []wealth.ConsolidatedHolding
	Hidden int // holdings beyond the Top limit
}

// File is a statement that contributed to the snapshot.
type File struct {
	wealth.SourceFile
	Name string
}

var categoryTitles = map[wealth.Category]string{
	wealth.Equity:     "Indian Equity",
	wealth.MutualFund: "Mutual Funds",
	wealth.USEquity:   "US Equity",
	wealth.NPS:        "NPS",
	wealth.EPFO:       "EPF",
}

// CategoryTitle returns the display name of a category.
func CategoryTitle(c wealth.Category) string {
	if t, ok := categoryTitles[c]; ok {
		return t
	}
	return string(c)
}

// NewSummary prepares the view of s.
func NewSummary(s *wealth.Snapshot, opts SummaryOptions) *Summary {
	v := &Summary{
		Snapshot: s,
		Title:    opts.Title,
		Date:     s.GeneratedAt.Format(time.DateOnly),
	}
	if v.Title == "" {
		v.Title = "Portfolio Summary"
	}
	for _, c := range s.Categories {
		sec := Section{CategorySection: c, Title: CategoryTitle(c.Category), Shown: c.Holdings}
		if opts.Top > 0 && len(c.Holdings) > opts.Top {
			sec.Shown = c.Holdings[:opts.Top]
			sec.Hidden = len(c.Holdings) - opts.Top
		}
		v.Sections = append(v.Sections, sec)
	}
	for _, f := range s.Sources {
		v.Files = append(v.Files, File{SourceFile: f, Name: filepath.Base(f.Path)})
	}
	return v
}

// SummaryMarkdown renders a snapshot as a markdown report.
func SummaryMarkdown(s *wealth.Snapshot, opts SummaryOptions) (string, error) {
	partials := map[string]string{
		"summary_totals":   "summary_totals.md",
		"summary_holdings": "summary_holdings.md",
		"summary_warnings": "summary_warnings.md",
		"summary_sources":  "summary_sources.md",
	}
	if opts.SkipWarnings {
		partials["summary_warnings"] = ""
	}
	if opts.SkipSources {
		partials["summary_sources"] = ""
	}
	return renderTemplate("summary", "summary.md", partials, NewSummary(s, opts))
}
