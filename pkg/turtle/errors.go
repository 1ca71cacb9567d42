package turtle

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	// ErrInvalidIRI reports text that fails the IRIREF lexical rule.
	ErrInvalidIRI = errors.New("invalid IRI")
	// ErrInvalidBase reports a base IRI candidate that carries a fragment or
	// that stays relative after resolution.
	ErrInvalidBase = errors.New("invalid base IRI")
	// ErrInvalidPrefix reports a prefix name that fails the PN_PREFIX rule
	// or that is not declared at its point of use.
	ErrInvalidPrefix = errors.New("invalid prefix")
	// ErrInvalidSpacing reports an empty inter-term spacing.
	ErrInvalidSpacing = errors.New("spacing must not be empty")
	// ErrTooManySpaces reports an indentation wider than MaxSpaces.
	ErrTooManySpaces = errors.New("too many spaces")
	// ErrNoMatch reports a position where no grammar rule applies.
	ErrNoMatch = errors.New("no rule matched")
	// ErrUnsupported reports N3 constructs that are recognised but not
	// supported: quantifier declarations and rational literals.
	ErrUnsupported = errors.New("unsupported syntax")
)

// maxContextLen bounds the input excerpt carried by a ParseError.
const maxContextLen = 48

// ParseError is a failure at a known position of the document. Context is
// the input starting at the failure, cut to a short excerpt.
type ParseError struct {
	Context string
	Offset  int
	Err     error
}

func newParseError(input string, offset int, err error) *ParseError {
	return &ParseError{
		Context: excerpt(input[offset:]),
		Offset:  offset,
		Err:     err,
	}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Error at: %s => %v", e.Context, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func excerpt(s string) string {
	if len(s) <= maxContextLen {
		return s
	}
	cut := maxContextLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// errSoft is returned by a production whose shape does not match the
// input. Alternatives catch it and try the next rule; every other error
// is a hard failure and aborts the statement.
var errSoft = errors.New("no match")

func isSoft(err error) bool {
	return err == errSoft
}
