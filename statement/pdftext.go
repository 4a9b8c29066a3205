package statement

import (
	"os"
	"regexp"
	"strings"

	"github.com/etnz/wealth"
	"github.com/ledongthuc/pdf"
)

// extractPDFText returns the plain text of all pages of a PDF.
func extractPDFText(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", &wealth.IOError{Op: "read", Path: path, Err: err}
	}
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", parseError(path, "unreadable PDF: %v", err)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", parseError(path, "PDF has no extractable text")
	}
	return sb.String(), nil
}

// fieldPattern is one candidate expression of a field. The first capture
// group, if any, is the field value.
type fieldPattern struct {
	field string
	re    *regexp.Regexp
}

// fieldMatcher recognizes labelled values in lines of text.
type fieldMatcher struct {
	patterns []fieldPattern
}

// field declares candidate expressions of a field, in declaration order.
type field struct {
	name  string
	exprs []string
}

func newFieldMatcher(fields ...field) *fieldMatcher {
	m := &fieldMatcher{}
	for _, f := range fields {
		for _, e := range f.exprs {
			m.patterns = append(m.patterns, fieldPattern{field: f.name, re: regexp.MustCompile(e)})
		}
	}
	return m
}

// match returns the field recognized in line. When several patterns match,
// the longest match wins, ties go to the longer expression, then to the
// first declared.
func (m *fieldMatcher) match(line string) (name, value string, ok bool) {
	bestLen, bestSrc := -1, -1
	for _, p := range m.patterns {
		loc := p.re.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}
		n, src := loc[1]-loc[0], len(p.re.String())
		if n < bestLen || (n == bestLen && src <= bestSrc) {
			continue
		}
		bestLen, bestSrc = n, src
		name, value, ok = p.field, "", true
		if len(loc) >= 4 && loc[2] >= 0 {
			value = strings.TrimSpace(line[loc[2]:loc[3]])
		}
	}
	return name, value, ok
}

// scan matches every line of text and returns the values of each field in
// line order.
func (m *fieldMatcher) scan(text string) map[string][]string {
	values := make(map[string][]string)
	for _, line := range strings.Split(text, "\n") {
		if name, value, ok := m.match(line); ok {
			values[name] = append(values[name], value)
		}
	}
	return values
}

// first returns the first value of field, "" if none.
func first(values map[string][]string, field string) string {
	if v := values[field]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// last returns the last value of field, "" if none.
func last(values map[string][]string, field string) string {
	if v := values[field]; len(v) > 0 {
		return v[len(v)-1]
	}
	return ""
}
