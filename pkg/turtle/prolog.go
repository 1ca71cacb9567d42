package turtle

import (
	"fmt"
	"sort"

	"github.com/aleksaelezovic/metis/pkg/rdf"
)

// Prolog holds the base IRI and the prefix table of a document. It is
// shared by the parser, which fills it from directives, and the serializer
// configuration, which writes it as the preamble.
type Prolog struct {
	base     *iriRef
	baseIRI  string
	prefixes map[string]string
}

// Prefix is one entry of the prefix table.
type Prefix struct {
	Name      string
	Namespace string
}

func NewProlog() *Prolog {
	return &Prolog{prefixes: make(map[string]string)}
}

// NewPrologWithDefaultPrefixes creates a prolog knowing rdf, rdfs and xsd.
func NewPrologWithDefaultPrefixes() *Prolog {
	p := NewProlog()
	p.AddDefaultPrefixes()
	return p
}

// SetBase resolves candidate against the current base, if any, and makes
// the result the new base. The result must be absolute.
func (p *Prolog) SetBase(candidate string) error {
	if !IsValidIRIRef(candidate) {
		return fmt.Errorf("%w: %q", ErrInvalidIRI, candidate)
	}
	ref := parseIRIRef(candidate)
	if ref.fragment != "" {
		return fmt.Errorf("%w: %q has a fragment", ErrInvalidBase, candidate)
	}

	resolved := p.Resolve(candidate)
	base := parseIRIRef(resolved)
	if !base.hasScheme {
		return fmt.Errorf("%w: %q is relative", ErrInvalidBase, candidate)
	}
	p.base = &base
	p.baseIRI = resolved
	return nil
}

func (p *Prolog) UnsetBase() {
	p.base = nil
	p.baseIRI = ""
}

// Base returns the current base IRI.
func (p *Prolog) Base() (string, bool) {
	return p.baseIRI, p.base != nil
}

// Resolve returns ref resolved against the base. Without a base ref is
// returned unchanged.
func (p *Prolog) Resolve(ref string) string {
	if p.base == nil {
		return ref
	}
	return p.base.resolve(ref)
}

// AddPrefix binds name to ns, resolved against the current base. A
// redefinition replaces the old binding.
func (p *Prolog) AddPrefix(name, ns string) error {
	if !IsValidPrefixName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidPrefix, name)
	}
	if !IsValidIRIRef(ns) {
		return fmt.Errorf("%w: %q", ErrInvalidIRI, ns)
	}
	p.prefixes[name] = p.Resolve(ns)
	return nil
}

// AddDefaultPrefixes binds rdf, rdfs and xsd.
func (p *Prolog) AddDefaultPrefixes() {
	for name, ns := range rdf.DefaultPrefixes() {
		p.prefixes[name] = ns
	}
}

func (p *Prolog) ClearPrefixes() {
	p.prefixes = make(map[string]string)
}

// Namespace looks up the namespace bound to name.
func (p *Prolog) Namespace(name string) (string, bool) {
	ns, ok := p.prefixes[name]
	return ns, ok
}

// Prefixes returns the prefix table sorted by name.
func (p *Prolog) Prefixes() []Prefix {
	result := make([]Prefix, 0, len(p.prefixes))
	for name, ns := range p.prefixes {
		result = append(result, Prefix{Name: name, Namespace: ns})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// Clone returns an independent copy.
func (p *Prolog) Clone() *Prolog {
	c := NewProlog()
	for name, ns := range p.prefixes {
		c.prefixes[name] = ns
	}
	if p.base != nil {
		base := *p.base
		c.base = &base
		c.baseIRI = p.baseIRI
	}
	return c
}
