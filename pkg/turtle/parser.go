package turtle

import (
	"fmt"
	"io"

	"github.com/aleksaelezovic/metis/pkg/rdf"
)

// Parser turns a Turtle or N3 document into triples, one statement at a
// time. Triples of a statement are handed out in the order the grammar
// produced them before the next statement is read.
//
//	p := turtle.NewParser(doc)
//	for p.Next() {
//		t := p.Triple()
//		...
//	}
//	if err := p.Err(); err != nil {
//		...
//	}
type Parser struct {
	input  string
	pos    int
	format Format
	ctx    *context

	triple   *rdf.Triple
	err      error
	done     bool
	reported bool
}

// NewParser creates a Turtle parser.
func NewParser(input string) *Parser {
	return NewFormatParser(FormatTurtle, input)
}

// NewN3Parser creates a Notation3 parser.
func NewN3Parser(input string) *Parser {
	return NewFormatParser(FormatN3, input)
}

func NewFormatParser(format Format, input string) *Parser {
	p := &Parser{
		input:  input,
		format: format,
		ctx:    newContext(NewProlog()),
	}
	p.skipSpace()
	return p
}

// NewReaderParser reads all of r and parses it. The document is held in
// memory as a whole.
func NewReaderParser(r io.Reader, format Format) (*Parser, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return NewFormatParser(format, string(data)), nil
}

// Prolog returns the live prolog. Changes made before the first call to
// Next, such as a base IRI or default prefixes, apply to the whole
// document; after parsing it holds the document's declarations.
func (p *Parser) Prolog() *Prolog {
	return p.ctx.Prolog
}

func (p *Parser) Format() Format {
	return p.format
}

// Next advances to the next triple. It returns false at the end of the
// document or on the first error, and keeps returning false afterwards.
func (p *Parser) Next() bool {
	if p.done {
		p.triple = nil
		return false
	}

	for {
		if t, ok := p.ctx.pop(); ok {
			p.triple = t
			return true
		}
		if p.pos >= len(p.input) {
			p.finish(nil)
			return false
		}
		if err := p.statement(); err != nil {
			p.finish(err)
			return false
		}
		p.skipSpace()
	}
}

func (p *Parser) finish(err error) {
	p.done = true
	p.triple = nil
	p.err = err
}

// Triple returns the triple found by the last call to Next.
func (p *Parser) Triple() *rdf.Triple {
	return p.triple
}

// Err returns the error that stopped the parser, if any.
func (p *Parser) Err() error {
	return p.err
}

// Read returns the next triple. At the end it returns io.EOF; a parse
// error is returned once, every later call returns io.EOF.
func (p *Parser) Read() (*rdf.Triple, error) {
	if p.Next() {
		return p.triple, nil
	}
	if p.err != nil && !p.reported {
		p.reported = true
		return nil, p.err
	}
	return nil, io.EOF
}

// ReadAll drains the parser.
func (p *Parser) ReadAll() ([]*rdf.Triple, error) {
	var triples []*rdf.Triple
	for p.Next() {
		triples = append(triples, p.triple)
	}
	if p.err != nil {
		return nil, p.err
	}
	return triples, nil
}

// Parse parses a whole Turtle document.
func Parse(input string) ([]*rdf.Triple, error) {
	return NewParser(input).ReadAll()
}

// ParseN3 parses a whole N3 document.
func ParseN3(input string) ([]*rdf.Triple, error) {
	return NewN3Parser(input).ReadAll()
}

// ParseTerm reads a single term written in N-Triples form, as produced by
// the String methods of the rdf terms. Relative IRIs and prefixed names are
// not accepted.
func ParseTerm(s string) (rdf.Term, error) {
	p := NewFormatParser(FormatTurtle, s)
	term, _, err := p.alt(p.absoluteIRI, p.blankNodeLabel, p.rdfLiteral)
	if err != nil {
		return nil, p.commit(err, "a term")
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, p.fail(fmt.Errorf("%w: trailing input after term", ErrNoMatch))
	}
	return term, nil
}

func (p *Parser) absoluteIRI() (rdf.Term, []*rdf.Triple, error) {
	iri, n, err := scanIRIRef(p.rest())
	if err != nil {
		return nil, nil, p.fail(err)
	}
	if n == 0 {
		return nil, nil, errSoft
	}
	p.pos += n
	return rdf.NewNamedNode(iri), nil, nil
}

func (p *Parser) blankNodeLabel() (rdf.Term, []*rdf.Triple, error) {
	label, n := scanBlankNodeLabel(p.rest())
	if n == 0 {
		return nil, nil, errSoft
	}
	p.pos += n
	return p.ctx.newLabeledBlankNode(label), nil, nil
}
