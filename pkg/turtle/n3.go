package turtle

import (
	"fmt"

	"github.com/aleksaelezovic/metis/pkg/rdf"
)

// N3 extends the Turtle grammar with variables, formulas and the '=', '=>'
// and '<=' predicates. Any expression may stand in subject, predicate or object
// position.

// expression ::= iri | formula | variable | literal | blankNodePropertyList
// | collection | BlankNode
func (p *Parser) expression() (rdf.Term, []*rdf.Triple, error) {
	return p.alt(
		p.iriTerm,
		p.blankNode,
		p.collection,
		p.blankNodePropertyList,
		p.formula,
		p.variable,
		p.literal,
	)
}

func (p *Parser) variable() (rdf.Term, []*rdf.Triple, error) {
	name, n := scanVariable(p.rest())
	if n == 0 {
		return nil, nil, errSoft
	}
	p.pos += n
	return rdf.NewVariable(name), nil, nil
}

// formula parses '{' statements '}'. The statements inside are collected
// into the formula and not asserted; directives inside still update the
// prolog. The final '.' before '}' is optional.
func (p *Parser) formula() (rdf.Term, []*rdf.Triple, error) {
	if !p.consume('{') {
		return nil, nil, errSoft
	}
	id := p.ctx.newAnonymousLabel()

	var triples []*rdf.Triple
	for {
		p.skipSpace()
		if p.consume('}') {
			break
		}
		if err := p.unsupportedN3Directive(); err != nil {
			return nil, nil, err
		}
		matched, err := p.directive()
		if err != nil {
			return nil, nil, err
		}
		if matched {
			continue
		}
		inner, err := p.triples()
		if err != nil {
			return nil, nil, p.commit(err, "a statement or '}'")
		}
		triples = append(triples, inner...)

		p.skipSpace()
		if p.consume('.') {
			continue
		}
		if !p.consume('}') {
			return nil, nil, p.fail(fmt.Errorf("%w: expected '.' or '}'", ErrNoMatch))
		}
		break
	}
	return rdf.NewFormula(id, triples), nil, nil
}

// unsupportedN3Directive rejects quantifier and keyword declarations.
func (p *Parser) unsupportedN3Directive() error {
	rest := p.rest()
	for _, kw := range []string{"@forAll", "@forSome", "@keywords"} {
		if scanKeyword(rest, kw, false) > 0 {
			return p.fail(fmt.Errorf("%w: %s", ErrUnsupported, kw))
		}
	}
	return nil
}

// isRational reports whether an integer is followed by '/' and digits, the
// N3 rational literal form.
func isRational(rest string) bool {
	return len(rest) > 1 && rest[0] == '/' && isDigit(rest[1])
}
