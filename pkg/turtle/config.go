package turtle

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// MaxSpaces is the widest indentation made of spaces.
	MaxSpaces = 32
	// DefaultSpaces is the indentation of one level by default.
	DefaultSpaces = 4
)

type indentKind byte

const (
	indentSpaces indentKind = iota
	indentTab
	indentNone
)

// Indentation is the text written once per indentation level, or between
// two terms when used as spacing.
type Indentation struct {
	kind   indentKind
	spaces int
}

var (
	Tab      = Indentation{kind: indentTab}
	NoIndent = Indentation{kind: indentNone}
)

// Spaces indents by n spaces, at most MaxSpaces.
func Spaces(n int) (Indentation, error) {
	if n < 0 || n > MaxSpaces {
		return Indentation{}, fmt.Errorf("%w: %d (max %d)", ErrTooManySpaces, n, MaxSpaces)
	}
	return Indentation{kind: indentSpaces, spaces: n}, nil
}

func mustSpaces(n int) Indentation {
	i, err := Spaces(n)
	if err != nil {
		panic(err)
	}
	return i
}

// ParseIndentation reads "tab", "none", "N" or "spaces:N".
func ParseIndentation(s string) (Indentation, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "tab":
		return Tab, nil
	case "none", "":
		return NoIndent, nil
	}
	n, err := strconv.Atoi(strings.TrimPrefix(s, "spaces:"))
	if err != nil {
		return Indentation{}, fmt.Errorf("invalid indentation %q", s)
	}
	return Spaces(n)
}

// IsEmpty reports whether writing the indentation writes nothing.
func (i Indentation) IsEmpty() bool {
	return i.kind == indentNone || (i.kind == indentSpaces && i.spaces == 0)
}

func (i Indentation) String() string {
	switch i.kind {
	case indentTab:
		return "\t"
	case indentSpaces:
		return strings.Repeat(" ", i.spaces)
	default:
		return ""
	}
}

// Config controls the serializer: the prolog written as preamble and used
// to shorten IRIs, the indentation of continuation lines and the spacing
// between terms.
type Config struct {
	*Prolog
	Format Format

	indent Indentation
	space  Indentation
}

// NewConfig returns a Turtle configuration with an empty prolog, four
// spaces of indentation and one space between terms.
func NewConfig() *Config {
	return &Config{
		Prolog: NewProlog(),
		Format: FormatTurtle,
		indent: mustSpaces(DefaultSpaces),
		space:  mustSpaces(1),
	}
}

// NewConfigWithDefaultPrefixes is NewConfig with rdf, rdfs and xsd bound.
func NewConfigWithDefaultPrefixes() *Config {
	c := NewConfig()
	c.AddDefaultPrefixes()
	return c
}

// SetIndentation sets the text written once per level.
func (c *Config) SetIndentation(indent Indentation) *Config {
	c.indent = indent
	return c
}

// SetSpacing sets the text between terms. It must not be empty.
func (c *Config) SetSpacing(space Indentation) error {
	if space.IsEmpty() {
		return ErrInvalidSpacing
	}
	c.space = space
	return nil
}

func (c *Config) Indentation() Indentation {
	return c.indent
}

func (c *Config) Spacing() Indentation {
	return c.space
}
