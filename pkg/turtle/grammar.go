package turtle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aleksaelezovic/metis/pkg/rdf"
)

// production parses one expression. It returns the term the expression
// denotes and the side triples its evaluation produced, e.g. the cells of
// a collection.
type production func() (rdf.Term, []*rdf.Triple, error)

func (p *Parser) rest() string {
	return p.input[p.pos:]
}

func (p *Parser) skipSpace() {
	p.pos += scanSpace(p.rest())
}

func (p *Parser) consume(c byte) bool {
	if p.pos < len(p.input) && p.input[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

// fail positions err at the current offset.
func (p *Parser) fail(err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		return err
	}
	return newParseError(p.input, p.pos, err)
}

// commit turns the failure of a production whose shape already matched
// into a hard error. Soft mismatches become ErrNoMatch with the given
// expectation.
func (p *Parser) commit(err error, expected string) error {
	if isSoft(err) {
		return p.fail(fmt.Errorf("%w: expected %s", ErrNoMatch, expected))
	}
	return p.fail(err)
}

// alt tries each rule in order and returns the first that matches. A hard
// error from a rule is returned as is and no further rule is tried.
func (p *Parser) alt(rules ...production) (rdf.Term, []*rdf.Triple, error) {
	start := p.pos
	for _, rule := range rules {
		term, side, err := rule()
		if err == nil {
			return term, side, nil
		}
		if !isSoft(err) {
			return nil, nil, err
		}
		p.pos = start
	}
	return nil, nil, errSoft
}

// statement parses a directive or a triples statement and queues its
// triples.
func (p *Parser) statement() error {
	if p.format == FormatN3 {
		if err := p.unsupportedN3Directive(); err != nil {
			return err
		}
	}

	matched, err := p.directive()
	if err != nil {
		return err
	}
	if matched {
		return nil
	}

	triples, err := p.triples()
	if err != nil {
		return p.commit(err, "a directive or a subject")
	}
	p.skipSpace()
	if !p.consume('.') {
		return p.fail(fmt.Errorf("%w: expected '.' after statement", ErrNoMatch))
	}
	p.ctx.pushAll(triples)
	return nil
}

// directive handles @prefix, @base and the case-insensitive PREFIX and BASE
// forms. It reports whether a directive was found.
func (p *Parser) directive() (bool, error) {
	rest := p.rest()
	switch {
	case scanKeyword(rest, "@prefix", false) > 0:
		p.pos += len("@prefix")
		return true, p.prefixDirective(true)
	case scanKeyword(rest, "@base", false) > 0:
		p.pos += len("@base")
		return true, p.baseDirective(true)
	case scanKeyword(rest, "PREFIX", true) > 0:
		p.pos += len("PREFIX")
		return true, p.prefixDirective(false)
	case scanKeyword(rest, "BASE", true) > 0:
		p.pos += len("BASE")
		return true, p.baseDirective(false)
	}
	return false, nil
}

func (p *Parser) prefixDirective(dotted bool) error {
	p.skipSpace()
	name, n := scanPrefixName(p.rest())
	if n == 0 {
		return p.fail(fmt.Errorf("%w: expected prefix name", ErrInvalidPrefix))
	}
	p.pos += n
	p.skipSpace()

	ns, n, err := scanIRIRef(p.rest())
	if err != nil {
		return p.fail(err)
	}
	if n == 0 {
		return p.fail(fmt.Errorf("%w: expected namespace IRI", ErrNoMatch))
	}
	if err := p.ctx.AddPrefix(name, ns); err != nil {
		return p.fail(err)
	}
	p.pos += n
	return p.directiveEnd(dotted)
}

func (p *Parser) baseDirective(dotted bool) error {
	p.skipSpace()
	base, n, err := scanIRIRef(p.rest())
	if err != nil {
		return p.fail(err)
	}
	if n == 0 {
		return p.fail(fmt.Errorf("%w: expected base IRI", ErrNoMatch))
	}
	if err := p.ctx.SetBase(base); err != nil {
		return p.fail(err)
	}
	p.pos += n
	return p.directiveEnd(dotted)
}

func (p *Parser) directiveEnd(dotted bool) error {
	if !dotted {
		return nil
	}
	p.skipSpace()
	if !p.consume('.') {
		return p.fail(fmt.Errorf("%w: expected '.' after directive", ErrNoMatch))
	}
	return nil
}

// triples parses a subject followed by its predicate-object list. A
// blank node property list may stand alone.
func (p *Parser) triples() ([]*rdf.Triple, error) {
	subject, side, standalone, err := p.subject()
	if err != nil {
		return nil, err
	}
	p.skipSpace()

	start := p.pos
	triples, err := p.predicateObjectList(subject)
	if isSoft(err) && standalone {
		p.pos = start
		return side, nil
	}
	if err != nil {
		return nil, p.commit(err, "a predicate")
	}
	return append(side, triples...), nil
}

func (p *Parser) subject() (rdf.Term, []*rdf.Triple, bool, error) {
	start := p.pos
	if term, side, err := p.blankNodePropertyList(); err == nil {
		return term, side, true, nil
	} else if !isSoft(err) {
		return nil, nil, false, err
	}
	p.pos = start

	var term rdf.Term
	var side []*rdf.Triple
	var err error
	if p.format == FormatN3 {
		term, side, err = p.expression()
	} else {
		term, side, err = p.alt(p.iriTerm, p.blankNode, p.collection)
	}
	return term, side, false, err
}

// predicateObjectList parses verb objectList (';' (verb objectList)?)*.
// No match at all is a soft error so that callers decide whether the
// list was optional.
func (p *Parser) predicateObjectList(subject rdf.Term) ([]*rdf.Triple, error) {
	var triples []*rdf.Triple
	for count := 0; ; count++ {
		start := p.pos
		verb, inverse, side, err := p.verb()
		if isSoft(err) {
			p.pos = start
			if count == 0 {
				return nil, errSoft
			}
			return triples, nil
		}
		if err != nil {
			return nil, err
		}
		triples = append(triples, side...)

		p.skipSpace()
		objects, err := p.objectList(subject, verb, inverse)
		if err != nil {
			return nil, err
		}
		triples = append(triples, objects...)

		p.skipSpace()
		if !p.consume(';') {
			return triples, nil
		}
		for p.skipSpace(); p.consume(';'); p.skipSpace() {
		}
	}
}

// objectList parses object (',' object)* and builds one triple per
// object, each followed by the object's side triples.
func (p *Parser) objectList(subject, verb rdf.Term, inverse bool) ([]*rdf.Triple, error) {
	var triples []*rdf.Triple
	for {
		object, side, err := p.object()
		if err != nil {
			return nil, p.commit(err, "an object")
		}
		if inverse {
			triples = append(triples, rdf.NewTriple(object, verb, subject))
		} else {
			triples = append(triples, rdf.NewTriple(subject, verb, object))
		}
		triples = append(triples, side...)

		p.skipSpace()
		if !p.consume(',') {
			return triples, nil
		}
		p.skipSpace()
	}
}

// verb parses a predicate. In N3, '=' stands for owl:sameAs and '=>' for
// log:implies; inverse is set for the '<=' form, whose triple runs from
// object to subject.
func (p *Parser) verb() (rdf.Term, bool, []*rdf.Triple, error) {
	rest := p.rest()
	if n := scanKeyword(rest, "a", false); n > 0 {
		p.pos += n
		return rdf.RDFType, false, nil, nil
	}
	if p.format == FormatN3 {
		switch {
		case strings.HasPrefix(rest, "=>"):
			p.pos += 2
			return rdf.LogImplies, false, nil, nil
		case strings.HasPrefix(rest, "<="):
			p.pos += 2
			return rdf.LogImplies, true, nil, nil
		case strings.HasPrefix(rest, "="):
			p.pos++
			return rdf.OWLSameAs, false, nil, nil
		}
		term, side, err := p.expression()
		return term, false, side, err
	}
	term, _, err := p.iriTerm()
	return term, false, nil, err
}

func (p *Parser) object() (rdf.Term, []*rdf.Triple, error) {
	if p.format == FormatN3 {
		return p.expression()
	}
	return p.alt(p.iriTerm, p.blankNode, p.collection, p.blankNodePropertyList, p.literal)
}

func (p *Parser) iriTerm() (rdf.Term, []*rdf.Triple, error) {
	iri, err := p.iri()
	if err != nil {
		return nil, nil, err
	}
	return iri, nil, nil
}

// iri parses IRIREF, resolved against the base, or a prefixed name,
// resolved against the prefix table as it is now.
func (p *Parser) iri() (*rdf.NamedNode, error) {
	rest := p.rest()
	iri, n, err := scanIRIRef(rest)
	if err != nil {
		return nil, p.fail(err)
	}
	if n > 0 {
		p.pos += n
		return rdf.NewNamedNode(p.ctx.Resolve(iri)), nil
	}

	prefix, n := scanPrefixName(rest)
	if n == 0 {
		return nil, errSoft
	}
	local, m, err := scanLocalName(rest[n:])
	if err != nil {
		p.pos += n
		return nil, p.fail(err)
	}
	ns, ok := p.ctx.Namespace(prefix)
	if !ok {
		return nil, p.fail(fmt.Errorf("%w: unresolved prefix %q", ErrInvalidPrefix, prefix))
	}
	p.pos += n + m
	return rdf.NewNamedNodeFromNamespace(ns, local), nil
}

// blankNode parses a labelled blank node or an empty ANON.
func (p *Parser) blankNode() (rdf.Term, []*rdf.Triple, error) {
	rest := p.rest()
	if label, n := scanBlankNodeLabel(rest); n > 0 {
		p.pos += n
		return p.ctx.newLabeledBlankNode(label), nil, nil
	}
	if n := scanAnon(rest); n > 0 {
		p.pos += n
		return p.ctx.newAnonymousBlankNode(), nil, nil
	}
	return nil, nil, errSoft
}

// blankNodePropertyList parses '[' predicateObjectList ']'. The fresh node
// is the value, the list's triples are the side triples.
func (p *Parser) blankNodePropertyList() (rdf.Term, []*rdf.Triple, error) {
	if scanAnon(p.rest()) > 0 || !p.consume('[') {
		return nil, nil, errSoft
	}
	node := p.ctx.newAnonymousBlankNode()
	p.skipSpace()

	triples, err := p.predicateObjectList(node)
	if err != nil {
		return nil, nil, p.commit(err, "a predicate")
	}
	p.skipSpace()
	if !p.consume(']') {
		return nil, nil, p.fail(fmt.Errorf("%w: expected ']'", ErrNoMatch))
	}
	return node, triples, nil
}

// collection parses '(' object* ')'. Each element gets a fresh cell; the
// cells are chained with rdf:first and rdf:rest and the last rest is
// rdf:nil. An empty collection is rdf:nil itself.
func (p *Parser) collection() (rdf.Term, []*rdf.Triple, error) {
	if !p.consume('(') {
		return nil, nil, errSoft
	}

	var cells, elements []rdf.Term
	var sides [][]*rdf.Triple
	for {
		p.skipSpace()
		if p.consume(')') {
			break
		}
		cell := p.ctx.newAnonymousBlankNode()
		element, side, err := p.object()
		if err != nil {
			return nil, nil, p.commit(err, "an object or ')'")
		}
		cells = append(cells, cell)
		elements = append(elements, element)
		sides = append(sides, side)
	}

	if len(cells) == 0 {
		return rdf.RDFNil, nil, nil
	}

	var triples []*rdf.Triple
	for i, cell := range cells {
		var next rdf.Term = rdf.RDFNil
		if i+1 < len(cells) {
			next = cells[i+1]
		}
		triples = append(triples,
			rdf.NewTriple(cell, rdf.RDFFirst, elements[i]),
			rdf.NewTriple(cell, rdf.RDFRest, next),
		)
		triples = append(triples, sides[i]...)
	}
	return cells[0], triples, nil
}

// literal parses an RDF literal, a numeric literal or a boolean.
func (p *Parser) literal() (rdf.Term, []*rdf.Triple, error) {
	return p.alt(p.rdfLiteral, p.numericLiteral, p.booleanLiteral)
}

func (p *Parser) rdfLiteral() (rdf.Term, []*rdf.Triple, error) {
	value, n, err := scanString(p.rest())
	if err != nil {
		return nil, nil, p.fail(err)
	}
	if n == 0 {
		return nil, nil, errSoft
	}
	p.pos += n

	rest := p.rest()
	if lang, m := scanLangTag(rest); m > 0 {
		p.pos += m
		return rdf.NewLiteralWithLanguage(value, lang), nil, nil
	}
	if strings.HasPrefix(rest, "^^") {
		p.pos += 2
		datatype, err := p.iri()
		if err != nil {
			return nil, nil, p.commit(err, "a datatype IRI")
		}
		return rdf.NewLiteralWithDatatype(value, datatype), nil, nil
	}
	return rdf.NewLiteral(value), nil, nil
}

func (p *Parser) numericLiteral() (rdf.Term, []*rdf.Triple, error) {
	lexical, datatype, n := scanNumber(p.rest())
	if n == 0 {
		return nil, nil, errSoft
	}
	p.pos += n
	if p.format == FormatN3 && datatype == rdf.XSDInteger && isRational(p.rest()) {
		return nil, nil, p.fail(fmt.Errorf("%w: rational literal", ErrUnsupported))
	}
	return rdf.NewLiteralWithDatatype(lexical, datatype), nil, nil
}

func (p *Parser) booleanLiteral() (rdf.Term, []*rdf.Triple, error) {
	value, n := scanBoolean(p.rest())
	if n == 0 {
		return nil, nil, errSoft
	}
	p.pos += n
	return rdf.NewLiteralWithDatatype(value, rdf.XSDBoolean), nil, nil
}
