package turtle

import "strings"

// iriRef is an IRI reference split into its RFC 3986 components. A base
// is kept in this form so that relative references resolve without
// re-parsing the base on every use.
type iriRef struct {
	scheme    string
	authority string
	path      string
	query     string
	fragment  string

	hasScheme    bool
	hasAuthority bool
	hasQuery     bool
	hasFragment  bool
}

// parseIRIRef splits s following the regular expression of RFC 3986
// appendix B. It never fails; every string is some reference.
func parseIRIRef(s string) iriRef {
	var r iriRef

	if i := strings.IndexByte(s, '#'); i >= 0 {
		r.fragment, r.hasFragment = s[i+1:], true
		s = s[:i]
	}
	if i := strings.IndexByte(s, '?'); i >= 0 {
		r.query, r.hasQuery = s[i+1:], true
		s = s[:i]
	}
	if i := strings.IndexAny(s, ":/"); i > 0 && s[i] == ':' && isScheme(s[:i]) {
		r.scheme, r.hasScheme = s[:i], true
		s = s[i+1:]
	}
	if strings.HasPrefix(s, "//") {
		s = s[2:]
		end := strings.IndexByte(s, '/')
		if end < 0 {
			end = len(s)
		}
		r.authority, r.hasAuthority = s[:end], true
		s = s[end:]
	}
	r.path = s
	return r
}

func isScheme(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return len(s) > 0
}

func (r iriRef) String() string {
	var b strings.Builder
	if r.hasScheme {
		b.WriteString(r.scheme)
		b.WriteByte(':')
	}
	if r.hasAuthority {
		b.WriteString("//")
		b.WriteString(r.authority)
	}
	b.WriteString(r.path)
	if r.hasQuery {
		b.WriteByte('?')
		b.WriteString(r.query)
	}
	if r.hasFragment {
		b.WriteByte('#')
		b.WriteString(r.fragment)
	}
	return b.String()
}

// resolve implements the reference resolution of RFC 3986 section 5.2.2
// with base as the base URI.
func (base iriRef) resolve(reference string) string {
	r := parseIRIRef(reference)
	var t iriRef

	switch {
	case r.hasScheme:
		t = r
		t.path = removeDotSegments(r.path)
	case r.hasAuthority:
		t = r
		t.path = removeDotSegments(r.path)
		t.scheme, t.hasScheme = base.scheme, base.hasScheme
	default:
		t.authority, t.hasAuthority = base.authority, base.hasAuthority
		t.scheme, t.hasScheme = base.scheme, base.hasScheme
		switch {
		case r.path == "":
			t.path = base.path
			if r.hasQuery {
				t.query, t.hasQuery = r.query, true
			} else {
				t.query, t.hasQuery = base.query, base.hasQuery
			}
		case strings.HasPrefix(r.path, "/"):
			t.path = removeDotSegments(r.path)
			t.query, t.hasQuery = r.query, r.hasQuery
		default:
			t.path = removeDotSegments(base.merge(r.path))
			t.query, t.hasQuery = r.query, r.hasQuery
		}
	}
	t.fragment, t.hasFragment = r.fragment, r.hasFragment

	return t.String()
}

// merge implements section 5.2.3.
func (base iriRef) merge(path string) string {
	if base.hasAuthority && base.path == "" {
		return "/" + path
	}
	if i := strings.LastIndexByte(base.path, '/'); i >= 0 {
		return base.path[:i+1] + path
	}
	return path
}

// removeDotSegments implements section 5.2.4.
func removeDotSegments(path string) string {
	if !strings.Contains(path, ".") {
		return path
	}

	in := path
	out := make([]string, 0, strings.Count(path, "/")+1)
	for in != "" {
		switch {
		case strings.HasPrefix(in, "../"):
			in = in[3:]
		case strings.HasPrefix(in, "./"):
			in = in[2:]
		case strings.HasPrefix(in, "/./"):
			in = in[2:]
		case in == "/.":
			in = "/"
		case strings.HasPrefix(in, "/../"):
			in = in[3:]
			out = popSegment(out)
		case in == "/..":
			in = "/"
			out = popSegment(out)
		case in == "." || in == "..":
			in = ""
		default:
			start := 0
			if in[0] == '/' {
				start = 1
			}
			end := strings.IndexByte(in[start:], '/')
			if end < 0 {
				end = len(in)
			} else {
				end += start
			}
			out = append(out, in[:end])
			in = in[end:]
		}
	}
	return strings.Join(out, "")
}

func popSegment(out []string) []string {
	if len(out) > 0 {
		return out[:len(out)-1]
	}
	return out
}
