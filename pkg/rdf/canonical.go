package rdf

import (
	"fmt"
	"strings"
)

// EscapeString escapes a lexical form for N-Triples and Turtle output.
// Named escapes are used for \t \b \n \r \f \" \\, other control characters
// become \uXXXX.
func EscapeString(s string) string {
	var builder strings.Builder
	builder.Grow(len(s))

	for _, r := range s {
		switch r {
		case '\t':
			builder.WriteString(`\t`)
		case '\b':
			builder.WriteString(`\b`)
		case '\n':
			builder.WriteString(`\n`)
		case '\r':
			builder.WriteString(`\r`)
		case '\f':
			builder.WriteString(`\f`)
		case '"':
			builder.WriteString(`\"`)
		case '\\':
			builder.WriteString(`\\`)
		default:
			if r < 0x20 || r == 0x7F || r == 0xFFFE || r == 0xFFFF {
				fmt.Fprintf(&builder, `\u%04X`, r)
			} else {
				builder.WriteRune(r)
			}
		}
	}

	return builder.String()
}

// EscapeIRI re-escapes the characters IRIREF forbids. Parsed IRIs never
// contain them, but IRIs built by hand might.
func EscapeIRI(iri string) string {
	if !strings.ContainsFunc(iri, forbiddenInIRI) {
		return iri
	}
	var builder strings.Builder
	for _, r := range iri {
		if forbiddenInIRI(r) {
			fmt.Fprintf(&builder, `\u%04X`, r)
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}

func forbiddenInIRI(r rune) bool {
	if r <= 0x20 {
		return true
	}
	switch r {
	case '<', '>', '"', '{', '}', '|', '^', '`', '\\':
		return true
	}
	return false
}

// FormatTriples renders triples one per line in N-Triples form. Formula
// terms render as N3 quoted graphs.
func FormatTriples(triples []*Triple) string {
	var builder strings.Builder
	for _, triple := range triples {
		builder.WriteString(triple.String())
		builder.WriteString("\n")
	}
	return builder.String()
}
