package turtle

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format selects the grammar: Turtle or its superset Notation3.
type Format int

const (
	FormatTurtle Format = iota
	FormatN3
)

func (f Format) String() string {
	switch f {
	case FormatTurtle:
		return "turtle"
	case FormatN3:
		return "n3"
	default:
		return "unknown"
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatN3 {
		return "text/n3"
	}
	return "text/turtle"
}

// ParseFormat accepts the names printed by Format.String.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "turtle", "ttl":
		return FormatTurtle, nil
	case "n3", "notation3":
		return FormatN3, nil
	default:
		return 0, fmt.Errorf("unsupported format: %s", name)
	}
}

// FormatForContentType maps a MIME type, parameters allowed, to a format.
func FormatForContentType(contentType string) (Format, error) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(ct, ";"); idx != -1 {
		ct = strings.TrimSpace(ct[:idx])
	}

	switch ct {
	case "text/turtle", "application/x-turtle":
		return FormatTurtle, nil
	case "text/n3", "text/rdf+n3", "application/n3":
		return FormatN3, nil
	default:
		return 0, fmt.Errorf("unsupported content type: %s", contentType)
	}
}

// FormatForPath picks the format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttl", ".turtle":
		return FormatTurtle, nil
	case ".n3":
		return FormatN3, nil
	default:
		return 0, fmt.Errorf("cannot infer format of %s", path)
	}
}
