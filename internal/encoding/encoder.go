package encoding

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/aleksaelezovic/metis/pkg/rdf"
	"github.com/aleksaelezovic/metis/pkg/store"
	"github.com/zeebo/xxh3"
)

const (
	// Encoded term size (type byte + 16 bytes of 128-bit hash)
	EncodedTermSize = 17

	// Size of an index key holding three encoded terms
	TripleKeySize = 3 * EncodedTermSize
)

// ErrUnsupportedTerm is returned for terms that cannot be stored on their own,
// such as N3 formulas and variables.
var ErrUnsupportedTerm = errors.New("unsupported term")

// TermEncoder maps terms to fixed-width keys.
type TermEncoder struct{}

func NewTermEncoder() *TermEncoder {
	return &TermEncoder{}
}

// Hash128 computes a 128-bit xxhash3 hash of the input string
func (e *TermEncoder) Hash128(s string) [16]byte {
	hash := xxh3.HashString128(s)
	var result [16]byte
	binary.BigEndian.PutUint64(result[0:8], hash.Hi)
	binary.BigEndian.PutUint64(result[8:16], hash.Lo)
	return result
}

// EncodeTerm hashes the N-Triples form of the term. The same form is returned
// for the id2str table so the decoder can read it back.
func (e *TermEncoder) EncodeTerm(term rdf.Term) (store.EncodedTerm, string, error) {
	var encoded store.EncodedTerm

	switch term.(type) {
	case *rdf.NamedNode, *rdf.BlankNode, *rdf.Literal:
	case nil:
		return encoded, "", fmt.Errorf("%w: nil term", ErrUnsupportedTerm)
	default:
		return encoded, "", fmt.Errorf("%w: %s", ErrUnsupportedTerm, term.Type())
	}

	value := term.String()
	encoded[0] = byte(term.Type())
	hash := e.Hash128(value)
	copy(encoded[1:], hash[:])
	return encoded, value, nil
}

// EncodeTripleKey concatenates encoded terms into an index key
// Big-endian encoding keeps keys sorted by their first term
func (e *TermEncoder) EncodeTripleKey(terms ...store.EncodedTerm) []byte {
	key := make([]byte, 0, len(terms)*EncodedTermSize)
	for _, term := range terms {
		key = append(key, term[:]...)
	}
	return key
}

// SplitTripleKey is the inverse of EncodeTripleKey for three-term keys.
func SplitTripleKey(key []byte) ([3]store.EncodedTerm, error) {
	var terms [3]store.EncodedTerm
	if len(key) != TripleKeySize {
		return terms, fmt.Errorf("invalid triple key length %d", len(key))
	}
	for i := range terms {
		copy(terms[i][:], key[i*EncodedTermSize:(i+1)*EncodedTermSize])
	}
	return terms, nil
}

// GetTermType extracts the term type from an encoded term
func GetTermType(encoded store.EncodedTerm) rdf.TermType {
	return rdf.TermType(encoded[0])
}
