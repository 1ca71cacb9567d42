package testsuite

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const manifestBase = "http://example.org/tests/manifest.ttl"

const manifestPrologue = `@prefix mf: <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#> .
@prefix rdft: <http://www.w3.org/ns/rdftest#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
`

func writeSuite(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return filepath.Join(dir, "manifest.ttl")
}

func suiteFiles() map[string]string {
	return map[string]string{
		"manifest.ttl": manifestPrologue + `
<> a mf:Manifest ;
    mf:entries ( <#pos> <#neg> <#eval> <#nt-neg> ) ;
    mf:include ( <sub/manifest.ttl> ) .

<#pos> a rdft:TestTurtlePositiveSyntax ;
    mf:name "pos" ;
    rdfs:comment "prefixed names" ;
    rdft:approval rdft:Approved ;
    mf:action <pos.ttl> .

<#neg> a rdft:TestTurtleNegativeSyntax ;
    mf:name "neg" ;
    mf:action <neg.ttl> .

<#eval> a rdft:TestTurtleEval ;
    mf:name "eval" ;
    mf:action <eval.ttl> ;
    mf:result <eval.nt> .

<#nt-neg> a rdft:TestNTriplesNegativeSyntax ;
    mf:name "nt-neg" ;
    mf:action <pos.ttl> .

<#unlisted> a rdft:TestTurtleEval ;
    mf:name "unlisted" .
`,
		"pos.ttl": "@prefix : <http://example.org/> .\n:s :p :o .\n",
		"neg.ttl": "<http://example.org/s> <http://example.org/p> .\n",
		"eval.ttl": `@prefix : <http://example.org/> .
:s :p ( 1 ) ;
    :q <rel> .
`,
		"eval.nt": `<http://example.org/s> <http://example.org/p> _:l .
_:l <http://www.w3.org/1999/02/22-rdf-syntax-ns#first> "1"^^<http://www.w3.org/2001/XMLSchema#integer> .
_:l <http://www.w3.org/1999/02/22-rdf-syntax-ns#rest> <http://www.w3.org/1999/02/22-rdf-syntax-ns#nil> .
<http://example.org/s> <http://example.org/q> <http://example.org/tests/rel> .
`,
		"sub/manifest.ttl": manifestPrologue + `
<> a mf:Manifest ;
    mf:entries ( <#sub-pos> ) .

<#sub-pos> a rdft:TestTurtlePositiveSyntax ;
    mf:name "sub-pos" ;
    mf:action <data.ttl> .
`,
		"sub/data.ttl": "<a> <b> <c> .\n",
	}
}

func TestParseManifest(t *testing.T) {
	path := writeSuite(t, suiteFiles())

	manifest, err := ParseManifest(path, manifestBase)
	if err != nil {
		t.Fatalf("failed to parse manifest: %v", err)
	}

	expected := []struct {
		name     string
		testType TestType
		action   string
	}{
		{"pos", TestTypeTurtlePositiveSyntax, "http://example.org/tests/pos.ttl"},
		{"neg", TestTypeTurtleNegativeSyntax, "http://example.org/tests/neg.ttl"},
		{"eval", TestTypeTurtleEval, "http://example.org/tests/eval.ttl"},
		{"nt-neg", TestTypeNTriplesNegativeSyntax, "http://example.org/tests/pos.ttl"},
		{"sub-pos", TestTypeTurtlePositiveSyntax, "http://example.org/tests/sub/data.ttl"},
	}
	if len(manifest.Tests) != len(expected) {
		t.Fatalf("expected %d tests, got %d: %+v", len(expected), len(manifest.Tests), manifest.Tests)
	}
	for i, want := range expected {
		got := manifest.Tests[i]
		if got.Name != want.name || got.Type != want.testType || got.Action != want.action {
			t.Errorf("test %d: got %s/%s/%s, expected %s/%s/%s",
				i, got.Name, got.Type, got.Action, want.name, want.testType, want.action)
		}
	}

	pos := manifest.Tests[0]
	if pos.IRI != manifestBase+"#pos" || !pos.Approved || pos.Description != "prefixed names" {
		t.Errorf("unexpected test metadata %+v", pos)
	}
	if manifest.Tests[2].Result != "http://example.org/tests/eval.nt" {
		t.Errorf("unexpected result IRI %s", manifest.Tests[2].Result)
	}
}

func TestLocalPath(t *testing.T) {
	m := &TestManifest{Path: filepath.Join("suite", "manifest.ttl"), BaseIRI: manifestBase}

	path, err := m.LocalPath("http://example.org/tests/dir/a%20b.ttl")
	if err != nil {
		t.Fatalf("LocalPath failed: %v", err)
	}
	if path != filepath.Join("suite", "dir", "a b.ttl") {
		t.Errorf("unexpected path %s", path)
	}
	if _, err := m.LocalPath("http://other.example/x.ttl"); err == nil {
		t.Error("expected an error outside of the manifest directory")
	}
}

func TestRunManifest(t *testing.T) {
	path := writeSuite(t, suiteFiles())

	var out bytes.Buffer
	runner := NewTestRunner(&out)
	runner.RoundTrip = true
	if err := runner.RunManifest(path, manifestBase); err != nil {
		t.Fatalf("failed to run manifest: %v", err)
	}

	stats := runner.GetStats()
	if stats.Total != 5 || stats.Passed != 4 || stats.Skipped != 1 || stats.Failed != 0 {
		t.Errorf("unexpected stats %+v\n%s", stats, out.String())
	}
	if !strings.Contains(out.String(), "TEST SUMMARY") {
		t.Errorf("summary missing from output:\n%s", out.String())
	}
}

func TestRunManifest_Failures(t *testing.T) {
	files := suiteFiles()
	files["neg.ttl"] = "<http://example.org/s> <http://example.org/p> <http://example.org/o> .\n"
	files["eval.nt"] = "<http://example.org/s> <http://example.org/p> <http://example.org/o> .\n"
	delete(files, "pos.ttl")
	path := writeSuite(t, files)

	var out bytes.Buffer
	runner := NewTestRunner(&out)
	if err := runner.RunManifest(path, manifestBase); err != nil {
		t.Fatalf("failed to run manifest: %v", err)
	}

	stats := runner.GetStats()
	if stats.Failed != 3 || stats.Passed != 1 {
		t.Errorf("unexpected stats %+v\n%s", stats, out.String())
	}
	if len(stats.Errors) != 3 {
		t.Errorf("expected 3 recorded errors, got %d", len(stats.Errors))
	}
}

func TestParseManifest_Errors(t *testing.T) {
	if _, err := ParseManifest(filepath.Join(t.TempDir(), "missing.ttl"), ""); err == nil {
		t.Error("expected an error for a missing manifest")
	}
	path := writeSuite(t, map[string]string{"manifest.ttl": "<> a ."})
	if _, err := ParseManifest(path, ""); err == nil {
		t.Error("expected an error for an invalid manifest")
	}
}

func TestFileIRI(t *testing.T) {
	iri, err := FileIRI("/tmp/a b/manifest.ttl")
	if err != nil {
		t.Fatalf("FileIRI failed: %v", err)
	}
	if iri != "file:///tmp/a%20b/manifest.ttl" {
		t.Errorf("unexpected IRI %s", iri)
	}
}
