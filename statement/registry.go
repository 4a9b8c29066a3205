package statement

import (
	"fmt"
	"sort"

	"github.com/etnz/wealth"
)

// Registry maps source names to parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry returns a registry of parsers. It panics on duplicate names,
// use Register to add parsers conditionally.
func NewRegistry(parsers ...Parser) *Registry {
	r := &Registry{parsers: make(map[string]Parser)}
	for _, p := range parsers {
		if err := r.Register(p); err != nil {
			panic(err)
		}
	}
	return r
}

// DefaultRegistry returns a registry of all the supported sources.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Zerodha{},
		Groww{},
		MutualFunds{},
		AngelOne(),
		Upstox(),
		ICICIDirect(),
		HDFCSecurities(),
		KotakSecurities(),
		Dhan(),
		FivePaisa(),
		Fidelity(),
		MorganStanley(),
		NPS{},
		EPFO{},
	)
}

// Register adds a parser. Source names are unique.
func (r *Registry) Register(p Parser) error {
	name := p.Source()
	if name == "" {
		return fmt.Errorf("parser %T has no source name", p)
	}
	if _, exists := r.parsers[name]; exists {
		return fmt.Errorf("source %q is already registered", name)
	}
	r.parsers[name] = p
	return nil
}

// Resolve returns the parser of a source.
func (r *Registry) Resolve(name string) (Parser, error) {
	p, ok := r.parsers[name]
	if !ok {
		return nil, &wealth.UnknownSourceError{Source: name}
	}
	return p, nil
}

// Has reports whether a source is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.parsers[name]
	return ok
}

// Names returns the sorted source names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Enabled returns the registry restricted to names. Names that are not
// registered are returned as *wealth.UnknownSourceError.
func (r *Registry) Enabled(names []string) (*Registry, []error) {
	sub := &Registry{parsers: make(map[string]Parser)}
	var errs []error
	for _, name := range names {
		p, err := r.Resolve(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		sub.parsers[name] = p
	}
	return sub, errs
}
