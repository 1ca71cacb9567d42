// Package export writes stored or parsed triples in formats other than
// Turtle: N-Triples through cayley's quad writer, and JSON-LD through
// json-gold.
package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/aleksaelezovic/metis/pkg/rdf"
	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"
)

// ToQuadValue converts a term to its cayley value.
func ToQuadValue(term rdf.Term) (quad.Value, error) {
	switch t := term.(type) {
	case *rdf.NamedNode:
		return quad.IRI(t.IRI), nil
	case *rdf.BlankNode:
		return quad.BNode(t.ID), nil
	case *rdf.Literal:
		switch {
		case t.Language != "":
			return quad.LangString{Value: quad.String(t.Value), Lang: t.Language}, nil
		case t.DatatypeIRI() == rdf.XSDString.IRI:
			return quad.String(t.Value), nil
		default:
			return quad.TypedString{Value: quad.String(t.Value), Type: quad.IRI(t.DatatypeIRI())}, nil
		}
	case nil:
		return nil, fmt.Errorf("cannot export a nil term")
	default:
		return nil, fmt.Errorf("cannot export %s terms", term.Type())
	}
}

// ToQuad converts a triple to a cayley quad in the default graph.
func ToQuad(t *rdf.Triple) (quad.Quad, error) {
	var q quad.Quad
	var err error
	if q.Subject, err = ToQuadValue(t.Subject); err != nil {
		return q, fmt.Errorf("subject: %w", err)
	}
	if q.Predicate, err = ToQuadValue(t.Predicate); err != nil {
		return q, fmt.Errorf("predicate: %w", err)
	}
	if q.Object, err = ToQuadValue(t.Object); err != nil {
		return q, fmt.Errorf("object: %w", err)
	}
	return q, nil
}

// NTriplesWriter streams triples as N-Triples.
type NTriplesWriter struct {
	w *nquads.Writer
}

func NewNTriplesWriter(w io.Writer) *NTriplesWriter {
	return &NTriplesWriter{w: nquads.NewWriter(w)}
}

// Write converts and writes a single triple.
func (w *NTriplesWriter) Write(t *rdf.Triple) error {
	q, err := ToQuad(t)
	if err != nil {
		return fmt.Errorf("failed to export %s: %w", t, err)
	}
	return w.w.WriteQuad(q)
}

func (w *NTriplesWriter) Close() error {
	return w.w.Close()
}

// WriteNTriples writes all triples to w.
func WriteNTriples(w io.Writer, triples []*rdf.Triple) error {
	nw := NewNTriplesWriter(w)
	for _, t := range triples {
		if err := nw.Write(t); err != nil {
			return err
		}
	}
	return nw.Close()
}

// NTriples returns the triples as an N-Triples document.
func NTriples(triples []*rdf.Triple) (string, error) {
	var buf bytes.Buffer
	if err := WriteNTriples(&buf, triples); err != nil {
		return "", err
	}
	return buf.String(), nil
}
