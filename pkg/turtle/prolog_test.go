package turtle

import (
	"errors"
	"testing"
)

func TestProlog_ResolveRFC3986(t *testing.T) {
	p := NewProlog()
	if err := p.SetBase("http://a/b/c/d;p?q"); err != nil {
		t.Fatalf("SetBase failed: %v", err)
	}

	tests := []struct {
		ref  string
		want string
	}{
		// normal examples
		{"g:h", "g:h"},
		{"g", "http://a/b/c/g"},
		{"./g", "http://a/b/c/g"},
		{"g/", "http://a/b/c/g/"},
		{"/g", "http://a/g"},
		{"//g", "http://g"},
		{"?y", "http://a/b/c/d;p?y"},
		{"g?y", "http://a/b/c/g?y"},
		{"#s", "http://a/b/c/d;p?q#s"},
		{"g#s", "http://a/b/c/g#s"},
		{"g?y#s", "http://a/b/c/g?y#s"},
		{";x", "http://a/b/c/;x"},
		{"g;x", "http://a/b/c/g;x"},
		{"", "http://a/b/c/d;p?q"},
		{".", "http://a/b/c/"},
		{"./", "http://a/b/c/"},
		{"..", "http://a/b/"},
		{"../", "http://a/b/"},
		{"../g", "http://a/b/g"},
		{"../..", "http://a/"},
		{"../../", "http://a/"},
		{"../../g", "http://a/g"},

		// abnormal examples
		{"../../../g", "http://a/g"},
		{"../../../../g", "http://a/g"},
		{"/./g", "http://a/g"},
		{"/../g", "http://a/g"},
		{"g.", "http://a/b/c/g."},
		{".g", "http://a/b/c/.g"},
		{"g..", "http://a/b/c/g.."},
		{"..g", "http://a/b/c/..g"},
		{"./../g", "http://a/b/g"},
		{"./g/.", "http://a/b/c/g/"},
		{"g/./h", "http://a/b/c/g/h"},
		{"g/../h", "http://a/b/c/h"},
		{"g;x=1/./y", "http://a/b/c/g;x=1/y"},
		{"g;x=1/../y", "http://a/b/c/y"},
		{"g?y/./x", "http://a/b/c/g?y/./x"},
		{"g?y/../x", "http://a/b/c/g?y/../x"},
		{"g#s/./x", "http://a/b/c/g#s/./x"},
		{"g#s/../x", "http://a/b/c/g#s/../x"},
	}

	for _, tt := range tests {
		if got := p.Resolve(tt.ref); got != tt.want {
			t.Errorf("Resolve(%q) = %q, expected %q", tt.ref, got, tt.want)
		}
	}
}

func TestProlog_ResolveWithoutBase(t *testing.T) {
	p := NewProlog()
	for _, ref := range []string{"", "a", "../b", "#frag", "http://example.org/x"} {
		if got := p.Resolve(ref); got != ref {
			t.Errorf("Resolve(%q) = %q, expected it unchanged", ref, got)
		}
	}
}

func TestProlog_ResolveAuthorityWithoutPath(t *testing.T) {
	p := NewProlog()
	if err := p.SetBase("http://example.org"); err != nil {
		t.Fatalf("SetBase failed: %v", err)
	}
	if got := p.Resolve("x"); got != "http://example.org/x" {
		t.Errorf("Expected http://example.org/x, got %s", got)
	}
}

func TestProlog_SetBase(t *testing.T) {
	p := NewProlog()
	if _, ok := p.Base(); ok {
		t.Fatal("New prolog should have no base")
	}

	for _, step := range []struct {
		candidate string
		want      string
	}{
		{"http://a/b/", "http://a/b/"},
		{"c/", "http://a/b/c/"},
		{"../x/y", "http://a/b/x/y"},
		{"//other/", "http://other/"},
		{"https://elsewhere/", "https://elsewhere/"},
	} {
		if err := p.SetBase(step.candidate); err != nil {
			t.Fatalf("SetBase(%q) failed: %v", step.candidate, err)
		}
		if base, _ := p.Base(); base != step.want {
			t.Errorf("After SetBase(%q) base is %q, expected %q", step.candidate, base, step.want)
		}
	}

	p.UnsetBase()
	if _, ok := p.Base(); ok {
		t.Error("UnsetBase should clear the base")
	}
}

func TestProlog_SetBaseErrors(t *testing.T) {
	p := NewProlog()
	if err := p.SetBase("http://example.org/"); err != nil {
		t.Fatalf("SetBase failed: %v", err)
	}

	if err := p.SetBase("http://example.org/#section"); !errors.Is(err, ErrInvalidBase) {
		t.Errorf("Expected ErrInvalidBase, got %v", err)
	}
	if err := p.SetBase("http://example.org/a b"); !errors.Is(err, ErrInvalidIRI) {
		t.Errorf("Expected ErrInvalidIRI, got %v", err)
	}
	if base, _ := p.Base(); base != "http://example.org/" {
		t.Errorf("Failed SetBase changed the base to %q", base)
	}

	// an empty fragment carries nothing and is accepted
	if err := p.SetBase("http://example.org/doc#"); err != nil {
		t.Errorf("SetBase with empty fragment failed: %v", err)
	}

	fresh := NewProlog()
	for _, candidate := range []string{"rel/", "/abs/path", "//host/"} {
		if err := fresh.SetBase(candidate); !errors.Is(err, ErrInvalidBase) {
			t.Errorf("SetBase(%q) without a base: expected ErrInvalidBase, got %v", candidate, err)
		}
	}
	if _, ok := fresh.Base(); ok {
		t.Error("Relative candidate set a base")
	}
}

func TestProlog_AddPrefix(t *testing.T) {
	p := NewProlog()

	valid := []string{"", "ex", "a.b", "a-b_c", "é", "A1"}
	for _, name := range valid {
		if err := p.AddPrefix(name, "http://example.org/"); err != nil {
			t.Errorf("AddPrefix(%q) failed: %v", name, err)
		}
	}

	invalid := []string{"1a", "_a", "a.", ".a", "a b", "a:b", "-a"}
	for _, name := range invalid {
		if err := p.AddPrefix(name, "http://example.org/"); !errors.Is(err, ErrInvalidPrefix) {
			t.Errorf("AddPrefix(%q): expected ErrInvalidPrefix, got %v", name, err)
		}
	}

	if err := p.AddPrefix("bad", "http://example.org/<"); !errors.Is(err, ErrInvalidIRI) {
		t.Errorf("Expected ErrInvalidIRI, got %v", err)
	}
}

func TestProlog_AddPrefixResolvesAgainstBase(t *testing.T) {
	p := NewProlog()
	if err := p.SetBase("http://example.org/a/b"); err != nil {
		t.Fatalf("SetBase failed: %v", err)
	}
	if err := p.AddPrefix("v", "vocab#"); err != nil {
		t.Fatalf("AddPrefix failed: %v", err)
	}
	if ns, _ := p.Namespace("v"); ns != "http://example.org/a/vocab#" {
		t.Errorf("Expected resolved namespace, got %s", ns)
	}

	// redefinition overwrites
	if err := p.AddPrefix("v", "http://other.example/"); err != nil {
		t.Fatalf("AddPrefix failed: %v", err)
	}
	if ns, _ := p.Namespace("v"); ns != "http://other.example/" {
		t.Errorf("Expected overwritten namespace, got %s", ns)
	}
}

func TestProlog_PrefixesSorted(t *testing.T) {
	p := NewPrologWithDefaultPrefixes()
	if err := p.AddPrefix("", "http://example.org/"); err != nil {
		t.Fatalf("AddPrefix failed: %v", err)
	}

	got := p.Prefixes()
	names := []string{"", "rdf", "rdfs", "xsd"}
	if len(got) != len(names) {
		t.Fatalf("Expected %d prefixes, got %d", len(names), len(got))
	}
	for i, name := range names {
		if got[i].Name != name {
			t.Errorf("Prefix %d: expected %q, got %q", i, name, got[i].Name)
		}
	}

	p.ClearPrefixes()
	if len(p.Prefixes()) != 0 {
		t.Error("ClearPrefixes left entries behind")
	}
}

func TestProlog_Clone(t *testing.T) {
	p := NewProlog()
	if err := p.SetBase("http://example.org/"); err != nil {
		t.Fatalf("SetBase failed: %v", err)
	}
	if err := p.AddPrefix("ex", "http://example.org/ns#"); err != nil {
		t.Fatalf("AddPrefix failed: %v", err)
	}

	c := p.Clone()
	if err := c.AddPrefix("other", "http://other.example/"); err != nil {
		t.Fatalf("AddPrefix failed: %v", err)
	}
	if err := c.SetBase("sub/"); err != nil {
		t.Fatalf("SetBase failed: %v", err)
	}

	if _, ok := p.Namespace("other"); ok {
		t.Error("Prefix added to the clone leaked into the original")
	}
	if base, _ := p.Base(); base != "http://example.org/" {
		t.Errorf("Original base changed to %s", base)
	}
	if base, _ := c.Base(); base != "http://example.org/sub/" {
		t.Errorf("Clone base is %s", base)
	}
	if ns, _ := c.Namespace("ex"); ns != "http://example.org/ns#" {
		t.Errorf("Clone lost prefix ex: %s", ns)
	}
}

func TestContext_AnonymousLabels(t *testing.T) {
	c := newContext(NewProlog())

	for i, want := range []string{"anon0", "anon1", "anon2"} {
		if got := c.newAnonymousBlankNode().ID; got != want {
			t.Errorf("Node %d: expected %s, got %s", i, want, got)
		}
	}
	if got := c.newLabeledBlankNode("anon0").ID; got != "anon0" {
		t.Errorf("Labelled node changed its label to %s", got)
	}
	if c.counter != 3 {
		t.Errorf("Labelled node moved the counter to %d", c.counter)
	}
}
