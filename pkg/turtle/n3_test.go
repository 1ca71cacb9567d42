package turtle

import (
	"errors"
	"testing"

	"github.com/aleksaelezovic/metis/pkg/rdf"
)

func TestN3_Implication(t *testing.T) {
	input := `@prefix : <http://example.org/> .
{ :a :b :c } => { :d :e :f . } .`

	triples, err := ParseN3(input)
	if err != nil {
		t.Fatalf("ParseN3 failed: %v", err)
	}
	if len(triples) != 1 {
		t.Fatalf("Expected 1 asserted triple, got %d:\n%s", len(triples), rdf.FormatTriples(triples))
	}

	tr := triples[0]
	if !tr.Predicate.Equals(rdf.LogImplies) {
		t.Errorf("Expected log:implies, got %s", tr.Predicate)
	}
	premise, ok := tr.Subject.(*rdf.Formula)
	if !ok {
		t.Fatalf("Expected formula subject, got %T", tr.Subject)
	}
	conclusion, ok := tr.Object.(*rdf.Formula)
	if !ok {
		t.Fatalf("Expected formula object, got %T", tr.Object)
	}
	if premise.ID != "anon0" || conclusion.ID != "anon1" {
		t.Errorf("Expected formula ids anon0 and anon1, got %s and %s", premise.ID, conclusion.ID)
	}
	assertTriples(t, premise.Triples, []*rdf.Triple{rdf.NewTriple(iri("a"), iri("b"), iri("c"))})
	assertTriples(t, conclusion.Triples, []*rdf.Triple{rdf.NewTriple(iri("d"), iri("e"), iri("f"))})
}

func TestN3_ReverseImplication(t *testing.T) {
	input := `@prefix : <http://example.org/> .
{ :d :e :f } <= { :a :b :c } .`

	triples, err := ParseN3(input)
	if err != nil {
		t.Fatalf("ParseN3 failed: %v", err)
	}
	if len(triples) != 1 {
		t.Fatalf("Expected 1 triple, got %d", len(triples))
	}
	// the premise written on the right becomes the subject
	subject := triples[0].Subject.(*rdf.Formula)
	object := triples[0].Object.(*rdf.Formula)
	if subject.ID != "anon1" || object.ID != "anon0" {
		t.Errorf("Expected anon1 => anon0, got %s => %s", subject.ID, object.ID)
	}
}

func TestN3_SameAs(t *testing.T) {
	input := `@prefix : <http://example.org/> .
:a = :b .`

	triples, err := ParseN3(input)
	if err != nil {
		t.Fatalf("ParseN3 failed: %v", err)
	}
	assertTriples(t, triples, []*rdf.Triple{rdf.NewTriple(iri("a"), rdf.OWLSameAs, iri("b"))})

	if _, err := Parse(input); err == nil {
		t.Error("Expected '=' to be rejected in Turtle")
	}
}

func TestN3_Variables(t *testing.T) {
	input := `@prefix : <http://example.org/> .
{ ?x a :Person } => { ?x a :Agent } .
?who :knows ?whom .`

	triples, err := ParseN3(input)
	if err != nil {
		t.Fatalf("ParseN3 failed: %v", err)
	}
	if len(triples) != 2 {
		t.Fatalf("Expected 2 triples, got %d", len(triples))
	}
	premise := triples[0].Subject.(*rdf.Formula)
	assertTriples(t, premise.Triples, []*rdf.Triple{
		rdf.NewTriple(rdf.NewVariable("x"), rdf.RDFType, iri("Person")),
	})
	assertTriples(t, triples[1:], []*rdf.Triple{
		rdf.NewTriple(rdf.NewVariable("who"), iri("knows"), rdf.NewVariable("whom")),
	})
}

func TestN3_ExpressionPositions(t *testing.T) {
	input := `@prefix : <http://example.org/> .
"literal" :p :o .
:s [ :q :r ] :o .
(:a) :p 1 .`

	triples, err := ParseN3(input)
	if err != nil {
		t.Fatalf("ParseN3 failed: %v", err)
	}
	b0, c1 := rdf.NewBlankNode("anon0"), rdf.NewBlankNode("anon1")
	assertTriples(t, triples, []*rdf.Triple{
		rdf.NewTriple(rdf.NewLiteral("literal"), iri("p"), iri("o")),
		rdf.NewTriple(b0, iri("q"), iri("r")),
		rdf.NewTriple(iri("s"), b0, iri("o")),
		rdf.NewTriple(c1, rdf.RDFFirst, iri("a")),
		rdf.NewTriple(c1, rdf.RDFRest, rdf.RDFNil),
		rdf.NewTriple(c1, iri("p"), integer("1")),
	})
}

func TestN3_FormulaScopedDirectives(t *testing.T) {
	input := `@prefix : <http://example.org/> .
:doc :says { @prefix q: <http://q.example/> . q:a q:b q:c . :x :y :z } .
q:a q:b q:c .`

	triples, err := ParseN3(input)
	if err != nil {
		t.Fatalf("ParseN3 failed: %v", err)
	}
	if len(triples) != 2 {
		t.Fatalf("Expected 2 triples, got %d", len(triples))
	}
	quoted := triples[0].Object.(*rdf.Formula)
	q := func(local string) *rdf.NamedNode { return rdf.NewNamedNode("http://q.example/" + local) }
	assertTriples(t, quoted.Triples, []*rdf.Triple{
		rdf.NewTriple(q("a"), q("b"), q("c")),
		rdf.NewTriple(iri("x"), iri("y"), iri("z")),
	})
	// the prolog is shared with the enclosing document
	assertTriples(t, triples[1:], []*rdf.Triple{rdf.NewTriple(q("a"), q("b"), q("c"))})
}

func TestN3_EmptyFormula(t *testing.T) {
	triples, err := ParseN3(`<http://example.org/s> <http://example.org/p> {} .`)
	if err != nil {
		t.Fatalf("ParseN3 failed: %v", err)
	}
	f, ok := triples[0].Object.(*rdf.Formula)
	if !ok || len(f.Triples) != 0 {
		t.Errorf("Expected an empty formula, got %s", triples[0].Object)
	}
}

func TestN3_Unsupported(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"forAll", `@prefix : <http://example.org/> . @forAll :x .`},
		{"forSome", `@forSome <http://example.org/x> .`},
		{"keywords", `@keywords a, is, of .`},
		{"forAll in formula", `{ @forAll <http://example.org/x> . } => {} .`},
		{"rational", `<http://example.org/s> <http://example.org/p> 1/3 .`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseN3(tt.input)
			if !errors.Is(err, ErrUnsupported) {
				t.Errorf("Expected ErrUnsupported, got %v", err)
			}
		})
	}
}

func TestN3_SyntaxRejectedByTurtle(t *testing.T) {
	for _, input := range []string{
		`{ <http://a/b> <http://a/c> <http://a/d> } <http://a/p> <http://a/o> .`,
		`<http://a/s> => <http://a/o> .`,
		`"s" <http://a/p> <http://a/o> .`,
	} {
		if _, err := Parse(input); !errors.Is(err, ErrNoMatch) {
			t.Errorf("Parse(%q): expected ErrNoMatch, got %v", input, err)
		}
		if _, err := ParseN3(input); err != nil {
			t.Errorf("ParseN3(%q) failed: %v", input, err)
		}
	}
}

func TestN3_UnclosedFormula(t *testing.T) {
	_, err := ParseN3(`<http://a/s> <http://a/p> { <http://a/x> <http://a/y> <http://a/z> `)
	if !errors.Is(err, ErrNoMatch) {
		t.Errorf("Expected ErrNoMatch, got %v", err)
	}
}
