package rdf

import (
	"fmt"
	"strings"
)

// TermType represents the type of an RDF term
type TermType byte

const (
	TermTypeNamedNode TermType = iota + 1
	TermTypeBlankNode
	TermTypeLiteral
	TermTypeVariable
	TermTypeFormula
)

func (t TermType) String() string {
	switch t {
	case TermTypeNamedNode:
		return "iri"
	case TermTypeBlankNode:
		return "bnode"
	case TermTypeLiteral:
		return "literal"
	case TermTypeVariable:
		return "variable"
	case TermTypeFormula:
		return "formula"
	default:
		return "unknown"
	}
}

// Term is one of *NamedNode, *BlankNode, *Literal, *Variable or *Formula.
// Terms are never mutated after construction.
type Term interface {
	Type() TermType
	String() string
	Equals(other Term) bool
}

// NamedNode represents an IRI
type NamedNode struct {
	IRI string
}

func NewNamedNode(iri string) *NamedNode {
	return &NamedNode{IRI: iri}
}

// NewNamedNodeFromNamespace joins an already validated namespace and local
// suffix. No validation is repeated.
func NewNamedNodeFromNamespace(ns, suffix string) *NamedNode {
	return &NamedNode{IRI: ns + suffix}
}

func (n *NamedNode) Type() TermType {
	return TermTypeNamedNode
}

func (n *NamedNode) String() string {
	return "<" + EscapeIRI(n.IRI) + ">"
}

func (n *NamedNode) Equals(other Term) bool {
	if on, ok := other.(*NamedNode); ok {
		return n.IRI == on.IRI
	}
	return false
}

// BlankNode represents a blank node
type BlankNode struct {
	ID string
}

func NewBlankNode(id string) *BlankNode {
	return &BlankNode{ID: id}
}

func (b *BlankNode) Type() TermType {
	return TermTypeBlankNode
}

func (b *BlankNode) String() string {
	return "_:" + b.ID
}

func (b *BlankNode) Equals(other Term) bool {
	if ob, ok := other.(*BlankNode); ok {
		return b.ID == ob.ID
	}
	return false
}

// Literal represents an RDF literal. Exactly one of Language and Datatype
// is set.
type Literal struct {
	Value    string
	Language string     // for language-tagged strings
	Datatype *NamedNode // for typed literals
}

// NewLiteral creates an xsd:string literal.
func NewLiteral(value string) *Literal {
	return &Literal{Value: value, Datatype: XSDString}
}

func NewLiteralWithLanguage(value, language string) *Literal {
	return &Literal{Value: value, Language: language}
}

func NewLiteralWithDatatype(value string, datatype *NamedNode) *Literal {
	if datatype == nil {
		datatype = XSDString
	}
	return &Literal{Value: value, Datatype: datatype}
}

func (l *Literal) Type() TermType {
	return TermTypeLiteral
}

// DatatypeIRI returns the datatype, rdf:langString for tagged literals.
func (l *Literal) DatatypeIRI() string {
	if l.Language != "" {
		return RDFLangString.IRI
	}
	if l.Datatype == nil {
		return XSDString.IRI
	}
	return l.Datatype.IRI
}

func (l *Literal) String() string {
	result := `"` + EscapeString(l.Value) + `"`
	if l.Language != "" {
		return result + "@" + l.Language
	}
	if l.Datatype != nil && l.Datatype.IRI != XSDString.IRI {
		return result + "^^" + l.Datatype.String()
	}
	return result
}

func (l *Literal) Equals(other Term) bool {
	ol, ok := other.(*Literal)
	if !ok {
		return false
	}
	return l.Value == ol.Value && l.Language == ol.Language && l.DatatypeIRI() == ol.DatatypeIRI()
}

// Variable is a universally quantified N3 variable (?name).
type Variable struct {
	Name string
}

func NewVariable(name string) *Variable {
	return &Variable{Name: name}
}

func (v *Variable) Type() TermType {
	return TermTypeVariable
}

func (v *Variable) String() string {
	return "?" + v.Name
}

func (v *Variable) Equals(other Term) bool {
	if ov, ok := other.(*Variable); ok {
		return v.Name == ov.Name
	}
	return false
}

// Formula is an N3 quoted graph. Its triples are not asserted in the
// enclosing document; the formula is identified by its label.
type Formula struct {
	ID      string
	Triples []*Triple
}

func NewFormula(id string, triples []*Triple) *Formula {
	return &Formula{ID: id, Triples: triples}
}

func (f *Formula) Type() TermType {
	return TermTypeFormula
}

func (f *Formula) String() string {
	var b strings.Builder
	b.WriteString("{")
	for _, t := range f.Triples {
		fmt.Fprintf(&b, " %s %s %s .", t.Subject, t.Predicate, t.Object)
	}
	b.WriteString(" }")
	return b.String()
}

func (f *Formula) Equals(other Term) bool {
	if of, ok := other.(*Formula); ok {
		return f.ID == of.ID
	}
	return false
}

// Triple represents an RDF triple (subject, predicate, object)
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

func NewTriple(subject, predicate, object Term) *Triple {
	return &Triple{
		Subject:   subject,
		Predicate: predicate,
		Object:    object,
	}
}

func (t *Triple) Equals(other *Triple) bool {
	if other == nil {
		return false
	}
	return t.Subject.Equals(other.Subject) &&
		t.Predicate.Equals(other.Predicate) &&
		t.Object.Equals(other.Object)
}

func (t *Triple) String() string {
	return fmt.Sprintf("%s %s %s .", t.Subject, t.Predicate, t.Object)
}

func NewIntegerLiteral(value int64) *Literal {
	return NewLiteralWithDatatype(fmt.Sprintf("%d", value), XSDInteger)
}

func NewBooleanLiteral(value bool) *Literal {
	return NewLiteralWithDatatype(fmt.Sprintf("%t", value), XSDBoolean)
}
