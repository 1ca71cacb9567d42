package turtle

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aleksaelezovic/metis/pkg/rdf"
)

// The scanner functions recognise one terminal at the start of their input.
// They keep no state: a match reports how many bytes were consumed, n == 0
// means the terminal does not start here. An error means the terminal did
// start here but its content is malformed.

// isPNCharsBase reports whether r is in PN_CHARS_BASE.
func isPNCharsBase(r rune) bool {
	return (r >= 'A' && r <= 'Z') ||
		(r >= 'a' && r <= 'z') ||
		(r >= 0x00C0 && r <= 0x00D6) ||
		(r >= 0x00D8 && r <= 0x00F6) ||
		(r >= 0x00F8 && r <= 0x02FF) ||
		(r >= 0x0370 && r <= 0x037D) ||
		(r >= 0x037F && r <= 0x1FFF) ||
		(r >= 0x200C && r <= 0x200D) ||
		(r >= 0x2070 && r <= 0x218F) ||
		(r >= 0x2C00 && r <= 0x2FEF) ||
		(r >= 0x3001 && r <= 0xD7FF) ||
		(r >= 0xF900 && r <= 0xFDCF) ||
		(r >= 0xFDF0 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0xEFFFF)
}

// isPNCharsU reports whether r is in PN_CHARS_U.
func isPNCharsU(r rune) bool {
	return isPNCharsBase(r) || r == '_'
}

// isPNChars reports whether r is in PN_CHARS.
func isPNChars(r rune) bool {
	return isPNCharsU(r) ||
		r == '-' ||
		(r >= '0' && r <= '9') ||
		r == 0x00B7 ||
		(r >= 0x0300 && r <= 0x036F) ||
		(r >= 0x203F && r <= 0x2040)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// scanSpace returns the length of the leading whitespace and comments.
func scanSpace(s string) int {
	i := 0
	for i < len(s) {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			i++
		case '#':
			for i < len(s) && s[i] != '\n' && s[i] != '\r' {
				i++
			}
		default:
			return i
		}
	}
	return i
}

// scanKeyword matches kw followed by a character that cannot continue a
// name. A dot ends the keyword unless a name continues after it. With fold
// the match is case-insensitive.
func scanKeyword(s, kw string, fold bool) int {
	if len(s) < len(kw) {
		return 0
	}
	head := s[:len(kw)]
	if fold && !strings.EqualFold(head, kw) || !fold && head != kw {
		return 0
	}
	if continuesName(s[len(kw):]) {
		return 0
	}
	return len(kw)
}

func continuesName(s string) bool {
	if s == "" {
		return false
	}
	r, w := utf8.DecodeRuneInString(s)
	if r == '.' {
		return continuesName(s[w:])
	}
	return isPNChars(r) || r == ':'
}

// scanUChar decodes \uXXXX or \UXXXXXXXX.
func scanUChar(s string) (rune, int, bool) {
	if len(s) < 2 || s[0] != '\\' {
		return 0, 0, false
	}
	var digits int
	switch s[1] {
	case 'u':
		digits = 4
	case 'U':
		digits = 8
	default:
		return 0, 0, false
	}
	if len(s) < 2+digits {
		return 0, 0, false
	}
	var r rune
	for i := 2; i < 2+digits; i++ {
		c := s[i]
		if !isHexDigit(c) {
			return 0, 0, false
		}
		r = r<<4 | rune(hexValue(c))
	}
	return r, 2 + digits, true
}

func hexValue(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

func forbiddenIRIByte(c byte) bool {
	return c <= 0x20 || strings.IndexByte("<>\"{}|^`\\", c) >= 0
}

// scanIRIRef matches IRIREF and returns the IRI with numeric escapes
// expanded.
func scanIRIRef(s string) (string, int, error) {
	if len(s) == 0 || s[0] != '<' {
		return "", 0, nil
	}
	var b strings.Builder
	for i := 1; i < len(s); {
		c := s[i]
		switch {
		case c == '>':
			return b.String(), i + 1, nil
		case c == '\\':
			r, w, ok := scanUChar(s[i:])
			if !ok {
				return "", 0, fmt.Errorf("%w: bad escape sequence in %q", ErrInvalidIRI, excerpt(s[:i+1]))
			}
			b.WriteRune(r)
			i += w
		case forbiddenIRIByte(c):
			return "", 0, fmt.Errorf("%w: character %q not allowed", ErrInvalidIRI, c)
		default:
			b.WriteByte(c)
			i++
		}
	}
	return "", 0, fmt.Errorf("%w: missing '>'", ErrInvalidIRI)
}

// IsValidIRIRef reports whether s matches the content of an IRIREF, i.e.
// has no forbidden characters and only well formed numeric escapes.
func IsValidIRIRef(s string) bool {
	for i := 0; i < len(s); {
		c := s[i]
		if c == '\\' {
			_, w, ok := scanUChar(s[i:])
			if !ok {
				return false
			}
			i += w
			continue
		}
		if forbiddenIRIByte(c) {
			return false
		}
		i++
	}
	return true
}

// scanPrefixName matches PNAME_NS and returns the prefix without the colon.
func scanPrefixName(s string) (string, int) {
	if strings.HasPrefix(s, ":") {
		return "", 1
	}
	r, w := utf8.DecodeRuneInString(s)
	if !isPNCharsBase(r) {
		return "", 0
	}
	i := w
	for i < len(s) {
		r, w = utf8.DecodeRuneInString(s[i:])
		if !isPNChars(r) && r != '.' {
			break
		}
		i += w
	}
	if i >= len(s) || s[i] != ':' || s[i-1] == '.' {
		return "", 0
	}
	return s[:i], i + 1
}

// IsValidPrefixName reports whether name matches PN_PREFIX. The empty name
// is valid and denotes the default prefix.
func IsValidPrefixName(name string) bool {
	if name == "" {
		return true
	}
	prefix, n := scanPrefixName(name + ":")
	return n == len(name)+1 && prefix == name
}

const localEscapes = "_~.-!$&'()*+,;=/?#@%"

// scanLocalName matches PN_LOCAL. Backslash escapes are removed, percent
// escapes are kept as written. Trailing dots are left to the caller since
// they terminate the statement.
func scanLocalName(s string) (string, int, error) {
	var b strings.Builder
	end, endLen := 0, 0
	first := true

	i := 0
loop:
	for i < len(s) {
		r, w := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == '%':
			if i+2 >= len(s) || !isHexDigit(s[i+1]) || !isHexDigit(s[i+2]) {
				return "", 0, fmt.Errorf("%w: bad percent escape in local name", ErrInvalidIRI)
			}
			b.WriteString(s[i : i+3])
			i += 3
		case r == '\\':
			if i+1 >= len(s) || strings.IndexByte(localEscapes, s[i+1]) < 0 {
				return "", 0, fmt.Errorf("%w: bad escape in local name", ErrInvalidIRI)
			}
			b.WriteByte(s[i+1])
			i += 2
		case r == '.' && !first:
			b.WriteByte('.')
			i++
			first = false
			continue
		case r == ':' || isPNCharsU(r) || (r >= '0' && r <= '9') || (!first && isPNChars(r)):
			b.WriteRune(r)
			i += w
		default:
			break loop
		}
		first = false
		end, endLen = i, b.Len()
	}
	return b.String()[:endLen], end, nil
}

// IsValidLocalName reports whether local can be written after a prefix
// without escapes.
func IsValidLocalName(local string) bool {
	if local == "" {
		return true
	}
	if strings.ContainsAny(local, "%\\") {
		return false
	}
	value, n, err := scanLocalName(local)
	return err == nil && n == len(local) && value == local
}

// scanBlankNodeLabel matches BLANK_NODE_LABEL and returns the label
// without "_:".
func scanBlankNodeLabel(s string) (string, int) {
	if !strings.HasPrefix(s, "_:") {
		return "", 0
	}
	i := 2
	r, w := utf8.DecodeRuneInString(s[i:])
	if w == 0 || !isPNCharsU(r) && !(r >= '0' && r <= '9') {
		return "", 0
	}
	i += w
	end := i
	for i < len(s) {
		r, w = utf8.DecodeRuneInString(s[i:])
		if r == '.' {
			i += w
			continue
		}
		if !isPNChars(r) {
			break
		}
		i += w
		end = i
	}
	return s[2:end], end
}

// scanAnon matches ANON, an empty pair of brackets.
func scanAnon(s string) int {
	if !strings.HasPrefix(s, "[") {
		return 0
	}
	i := 1 + scanSpace(s[1:])
	if i < len(s) && s[i] == ']' {
		return i + 1
	}
	return 0
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// scanLangTag matches LANGTAG and returns the tag without '@'.
func scanLangTag(s string) (string, int) {
	if len(s) < 2 || s[0] != '@' || !isASCIILetter(s[1]) {
		return "", 0
	}
	i := 1
	for i < len(s) && isASCIILetter(s[i]) {
		i++
	}
	for i+1 < len(s) && s[i] == '-' && (isASCIILetter(s[i+1]) || isDigit(s[i+1])) {
		i++
		for i < len(s) && (isASCIILetter(s[i]) || isDigit(s[i])) {
			i++
		}
	}
	return s[1:i], i
}

func scanDigits(s string) int {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return i
}

func scanExponent(s string) int {
	if len(s) == 0 || (s[0] != 'e' && s[0] != 'E') {
		return 0
	}
	i := 1
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	d := scanDigits(s[i:])
	if d == 0 {
		return 0
	}
	return i + d
}

// scanNumber matches INTEGER, DECIMAL or DOUBLE and reports which
// datatype the lexical form carries. The lexical form is not normalised.
func scanNumber(s string) (string, *rdf.NamedNode, int) {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	intDigits := scanDigits(s[i:])
	i += intDigits

	if i < len(s) && s[i] == '.' {
		frac := scanDigits(s[i+1:])
		if intDigits+frac > 0 {
			if e := scanExponent(s[i+1+frac:]); e > 0 {
				n := i + 1 + frac + e
				return s[:n], rdf.XSDDouble, n
			}
		}
		if frac > 0 {
			n := i + 1 + frac
			return s[:n], rdf.XSDDecimal, n
		}
	}
	if intDigits == 0 {
		return "", nil, 0
	}
	if e := scanExponent(s[i:]); e > 0 {
		return s[:i+e], rdf.XSDDouble, i + e
	}
	return s[:i], rdf.XSDInteger, i
}

// scanBoolean matches the keywords true and false.
func scanBoolean(s string) (string, int) {
	for _, kw := range []string{"true", "false"} {
		if n := scanKeyword(s, kw, false); n > 0 {
			return kw, n
		}
	}
	return "", 0
}

// scanEscape decodes ECHAR or UCHAR.
func scanEscape(s string) (rune, int, bool) {
	if len(s) < 2 || s[0] != '\\' {
		return 0, 0, false
	}
	switch s[1] {
	case 't':
		return '\t', 2, true
	case 'b':
		return '\b', 2, true
	case 'n':
		return '\n', 2, true
	case 'r':
		return '\r', 2, true
	case 'f':
		return '\f', 2, true
	case '"':
		return '"', 2, true
	case '\'':
		return '\'', 2, true
	case '\\':
		return '\\', 2, true
	}
	return scanUChar(s)
}

// scanString matches the four string forms (single or double quoted, short
// or long) and returns the unescaped value.
func scanString(s string) (string, int, error) {
	if len(s) == 0 || (s[0] != '"' && s[0] != '\'') {
		return "", 0, nil
	}
	q := s[0]
	delim := s[:1]
	if len(s) >= 3 && s[1] == q && s[2] == q {
		delim = s[:3]
	}
	long := len(delim) == 3

	var b strings.Builder
	for i := len(delim); i < len(s); {
		c := s[i]
		switch {
		case long && strings.HasPrefix(s[i:], delim):
			return b.String(), i + 3, nil
		case !long && c == q:
			return b.String(), i + 1, nil
		case !long && (c == '\n' || c == '\r'):
			return "", 0, fmt.Errorf("%w: line break in short string", ErrNoMatch)
		case c == '\\':
			r, w, ok := scanEscape(s[i:])
			if !ok {
				return "", 0, fmt.Errorf("%w: bad escape sequence %q", ErrNoMatch, excerpt(s[i:min(i+2, len(s))]))
			}
			b.WriteRune(r)
			i += w
		default:
			b.WriteByte(c)
			i++
		}
	}
	return "", 0, fmt.Errorf("%w: unterminated string", ErrNoMatch)
}

func isVarNameChar(r rune) bool {
	return isPNCharsU(r) ||
		(r >= '0' && r <= '9') ||
		r == 0x00B7 ||
		(r >= 0x0300 && r <= 0x036F) ||
		(r >= 0x203F && r <= 0x2040)
}

// scanVariable matches an N3 universal variable and returns its name
// without '?'.
func scanVariable(s string) (string, int) {
	if !strings.HasPrefix(s, "?") {
		return "", 0
	}
	i := 1
	r, w := utf8.DecodeRuneInString(s[i:])
	if w == 0 || !isPNCharsU(r) && !(r >= '0' && r <= '9') {
		return "", 0
	}
	i += w
	for i < len(s) {
		r, w = utf8.DecodeRuneInString(s[i:])
		if !isVarNameChar(r) {
			break
		}
		i += w
	}
	return s[1:i], i
}
