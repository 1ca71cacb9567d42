package turtle

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aleksaelezovic/metis/pkg/rdf"
)

// ErrFinished is returned when triples are written after Finish.
var ErrFinished = errors.New("serializer already finished")

// Serializer writes triples as Turtle (or N3) blocks. It does not sort: a
// block is closed whenever the subject changes, so input grouped by subject
// and predicate gives the most compact output. See rdf.GroupTriples.
type Serializer struct {
	w        io.Writer
	cfg      *Config
	prefixes []Prefix
	indent   string
	space    string

	last     *rdf.Triple
	level    int
	finished bool
	err      error
}

// NewSerializer writes the preamble for cfg to w and returns a serializer
// for the triples that follow.
func NewSerializer(w io.Writer, cfg *Config) (*Serializer, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	if cfg.space.IsEmpty() {
		return nil, ErrInvalidSpacing
	}
	s := &Serializer{
		w:        w,
		cfg:      cfg,
		prefixes: cfg.Prefixes(),
		indent:   cfg.indent.String(),
		space:    cfg.space.String(),
	}
	if err := s.writePreamble(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Serializer) write(str string) {
	if s.err != nil {
		return
	}
	if _, err := io.WriteString(s.w, str); err != nil {
		s.err = fmt.Errorf("failed to write output: %w", err)
	}
}

func (s *Serializer) writePreamble() error {
	wrote := false
	for _, prefix := range s.prefixes {
		s.write(fmt.Sprintf("@prefix %s: <%s> .\n", prefix.Name, rdf.EscapeIRI(prefix.Namespace)))
		wrote = true
	}
	if base, ok := s.cfg.Base(); ok {
		s.write(fmt.Sprintf("@base <%s> .\n", rdf.EscapeIRI(base)))
		wrote = true
	}
	if wrote {
		s.write("\n")
	}
	return s.err
}

// Serialize appends one triple. Output already written is not taken back
// when the writer fails; the error is returned by every later call.
func (s *Serializer) Serialize(t *rdf.Triple) error {
	if s.err != nil {
		return s.err
	}
	if s.finished {
		return ErrFinished
	}

	subject, predicate, object, err := s.formatTriple(t)
	if err != nil {
		return err
	}

	switch {
	case s.last == nil:
		s.writeSPO(subject, predicate, object)
	case !s.last.Subject.Equals(t.Subject):
		s.finishBlock()
		s.writeSPO(subject, predicate, object)
	case !s.last.Predicate.Equals(t.Predicate):
		s.write(" ;\n")
		s.write(strings.Repeat(s.indent, s.level))
		s.write(predicate + s.space + object)
	default:
		s.write("," + s.space + object)
	}
	s.last = t
	return s.err
}

// SerializeAll appends triples in order.
func (s *Serializer) SerializeAll(triples []*rdf.Triple) error {
	for _, t := range triples {
		if err := s.Serialize(t); err != nil {
			return err
		}
	}
	return nil
}

// SerializeFrom drains a parser into the serializer without collecting the
// triples first.
func (s *Serializer) SerializeFrom(p *Parser) error {
	for p.Next() {
		if err := s.Serialize(p.Triple()); err != nil {
			return err
		}
	}
	return p.Err()
}

// Finish closes the open block. Without it the document is incomplete.
func (s *Serializer) Finish() error {
	if s.err != nil {
		return s.err
	}
	if s.finished {
		return nil
	}
	s.finished = true
	if s.last != nil {
		s.finishBlock()
	}
	return s.err
}

func (s *Serializer) writeSPO(subject, predicate, object string) {
	s.write(subject + s.space + predicate + s.space + object)
	s.level++
}

func (s *Serializer) finishBlock() {
	s.write(" .\n\n")
	s.level = 0
}

func (s *Serializer) formatTriple(t *rdf.Triple) (string, string, string, error) {
	if t == nil {
		return "", "", "", fmt.Errorf("nil triple")
	}
	subject, err := s.formatTerm(t.Subject, false)
	if err != nil {
		return "", "", "", err
	}
	predicate, err := s.formatTerm(t.Predicate, true)
	if err != nil {
		return "", "", "", err
	}
	object, err := s.formatTerm(t.Object, false)
	if err != nil {
		return "", "", "", err
	}
	return subject, predicate, object, nil
}

func (s *Serializer) formatTerm(term rdf.Term, predicate bool) (string, error) {
	switch t := term.(type) {
	case *rdf.NamedNode:
		if predicate && t.Equals(rdf.RDFType) {
			return "a", nil
		}
		if predicate && s.cfg.Format == FormatN3 && t.Equals(rdf.LogImplies) {
			return "=>", nil
		}
		return s.formatIRI(t.IRI), nil
	case *rdf.BlankNode:
		return t.String(), nil
	case *rdf.Literal:
		return s.formatLiteral(t), nil
	case *rdf.Variable:
		if s.cfg.Format != FormatN3 {
			return "", fmt.Errorf("%w: variable %s in %s output", ErrUnsupported, t, s.cfg.Format)
		}
		return t.String(), nil
	case *rdf.Formula:
		if s.cfg.Format != FormatN3 {
			return "", fmt.Errorf("%w: formula in %s output", ErrUnsupported, s.cfg.Format)
		}
		return s.formatFormula(t)
	case nil:
		return "", fmt.Errorf("missing term")
	default:
		return "", fmt.Errorf("%w: term type %T", ErrUnsupported, term)
	}
}

// formatIRI prefers the longest declared namespace that leaves a valid
// local name, then a reference relative to the base, then the full IRI.
func (s *Serializer) formatIRI(iri string) string {
	best := -1
	for i, prefix := range s.prefixes {
		if !strings.HasPrefix(iri, prefix.Namespace) || !IsValidLocalName(iri[len(prefix.Namespace):]) {
			continue
		}
		if best < 0 || len(prefix.Namespace) > len(s.prefixes[best].Namespace) {
			best = i
		}
	}
	if best >= 0 {
		prefix := s.prefixes[best]
		return prefix.Name + ":" + iri[len(prefix.Namespace):]
	}

	if base, ok := s.cfg.Base(); ok && strings.HasPrefix(iri, base) {
		rel := iri[len(base):]
		if s.cfg.Resolve(rel) == iri {
			return "<" + rdf.EscapeIRI(rel) + ">"
		}
	}
	return "<" + rdf.EscapeIRI(iri) + ">"
}

func (s *Serializer) formatLiteral(l *rdf.Literal) string {
	quoted := `"` + rdf.EscapeString(l.Value) + `"`
	if l.Language != "" {
		return quoted + "@" + l.Language
	}

	datatype := l.DatatypeIRI()
	switch datatype {
	case rdf.XSDString.IRI:
		return quoted
	case rdf.XSDInteger.IRI, rdf.XSDDecimal.IRI, rdf.XSDDouble.IRI:
		if _, dt, n := scanNumber(l.Value); n > 0 && n == len(l.Value) && dt.IRI == datatype {
			return l.Value
		}
	case rdf.XSDBoolean.IRI:
		if l.Value == "true" || l.Value == "false" {
			return l.Value
		}
	}
	return quoted + "^^" + s.formatIRI(datatype)
}

func (s *Serializer) formatFormula(f *rdf.Formula) (string, error) {
	var b strings.Builder
	b.WriteString("{")
	for _, t := range f.Triples {
		subject, predicate, object, err := s.formatTriple(t)
		if err != nil {
			return "", err
		}
		b.WriteString(" " + subject + s.space + predicate + s.space + object + " .")
	}
	b.WriteString(" }")
	return b.String(), nil
}
