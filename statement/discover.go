package statement

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/etnz/wealth"
)

// Match is a statement file and the source it belongs to.
type Match struct {
	Path    string
	Source  string
	ModTime int64 // unix nanoseconds
}

// Discovery is the result of a statements directory scan.
type Discovery struct {
	Matches      []Match
	Unrecognized []string
	Ambiguous    []*wealth.AmbiguousFileError
}

// Warnings returns the unrecognized and ambiguous files as warnings.
func (d *Discovery) Warnings() []wealth.Warning {
	var ws []wealth.Warning
	for _, p := range d.Unrecognized {
		ws = append(ws, wealth.Warning{Kind: wealth.Unrecognized, Path: p, Message: "no source matches this file"})
	}
	for _, a := range d.Ambiguous {
		ws = append(ws, wealth.Warning{Kind: wealth.Ambiguous, Path: a.Path, Message: a.Error()})
	}
	return ws
}

// specificity counts the wildcard segments of a glob pattern, fewer is more specific.
func specificity(pattern string) int {
	n := 0
	inClass := false
	for _, c := range pattern {
		switch {
		case inClass:
			if c == ']' {
				inClass = false
			}
		case c == '[':
			inClass = true
			n++
		case c == '*' || c == '?':
			n++
		}
	}
	return n
}

// Discover scans the files of dir, not its sub directories, and matches
// their base names against the patterns of the registered sources.
//
// A file matched by several sources goes to the source with the most
// specific pattern; equally specific patterns make the file ambiguous and
// it is not parsed. Results are sorted by file name.
func Discover(dir string, reg *Registry) (*Discovery, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &wealth.IOError{Op: "scan", Path: dir, Err: err}
	}
	d := &Discovery{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		full := filepath.Join(dir, name)

		best, sources := -1, []string(nil)
		for _, source := range reg.Names() {
			p, _ := reg.Resolve(source)
			score := -1
			for _, pattern := range p.Patterns() {
				if ok, _ := path.Match(pattern, name); !ok {
					continue
				}
				if s := specificity(pattern); score < 0 || s < score {
					score = s
				}
			}
			switch {
			case score < 0:
			case best < 0 || score < best:
				best, sources = score, []string{source}
			case score == best:
				sources = append(sources, source)
			}
		}

		switch len(sources) {
		case 0:
			d.Unrecognized = append(d.Unrecognized, full)
		case 1:
			var mod int64
			if info, err := e.Info(); err == nil {
				mod = info.ModTime().UnixNano()
			}
			d.Matches = append(d.Matches, Match{Path: full, Source: sources[0], ModTime: mod})
		default:
			d.Ambiguous = append(d.Ambiguous, &wealth.AmbiguousFileError{Path: full, Sources: sources})
		}
	}
	// os.ReadDir sorts by name already, keep it explicit
	sort.Slice(d.Matches, func(i, j int) bool { return d.Matches[i].Path < d.Matches[j].Path })
	sort.Strings(d.Unrecognized)
	return d, nil
}

// Latest keeps the most recent file of each source, by modification time
// then name. The other files are returned as superseded.
func Latest(matches []Match) (latest, superseded []Match) {
	newest := make(map[string]Match)
	for _, m := range matches {
		cur, ok := newest[m.Source]
		if !ok || m.ModTime > cur.ModTime || (m.ModTime == cur.ModTime && m.Path > cur.Path) {
			newest[m.Source] = m
		}
	}
	for _, m := range matches {
		if newest[m.Source] == m {
			latest = append(latest, m)
		} else {
			superseded = append(superseded, m)
		}
	}
	return latest, superseded
}
