package store

import (
	"github.com/aleksaelezovic/metis/pkg/rdf"
)

// EncodedTerm is a type byte followed by a 128-bit hash of the term.
type EncodedTerm [17]byte

// TermEncoder turns terms into fixed-size index keys.
type TermEncoder interface {
	// EncodeTerm returns the encoded term and the string to store in the id2str table.
	EncodeTerm(term rdf.Term) (EncodedTerm, string, error)

	// EncodeTripleKey concatenates encoded terms into a big-endian index key.
	EncodeTripleKey(terms ...EncodedTerm) []byte
}

// TermDecoder rebuilds terms from their id2str strings.
type TermDecoder interface {
	DecodeTerm(encoded EncodedTerm, stringValue string) (rdf.Term, error)
}
