package encoding

import (
	"fmt"

	"github.com/aleksaelezovic/metis/pkg/rdf"
	"github.com/aleksaelezovic/metis/pkg/store"
	"github.com/aleksaelezovic/metis/pkg/turtle"
)

// TermDecoder reads terms back from their id2str strings.
type TermDecoder struct{}

func NewTermDecoder() *TermDecoder {
	return &TermDecoder{}
}

// DecodeTerm parses the stored N-Triples form and checks it against the type byte.
func (d *TermDecoder) DecodeTerm(encoded store.EncodedTerm, stringValue string) (rdf.Term, error) {
	termType := GetTermType(encoded)
	switch termType {
	case rdf.TermTypeNamedNode, rdf.TermTypeBlankNode, rdf.TermTypeLiteral:
	default:
		return nil, fmt.Errorf("%w: type byte %d", ErrUnsupportedTerm, encoded[0])
	}

	term, err := turtle.ParseTerm(stringValue)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", termType, err)
	}
	if term.Type() != termType {
		return nil, fmt.Errorf("decoded %s, expected %s", term.Type(), termType)
	}
	return term, nil
}
