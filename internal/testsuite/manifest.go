package testsuite

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aleksaelezovic/metis/pkg/rdf"
	"github.com/aleksaelezovic/metis/pkg/turtle"
)

// Vocabulary of the W3C test manifests
const (
	mfNamespace   = "http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#"
	rdftNamespace = "http://www.w3.org/ns/rdftest#"
)

var (
	mfManifest   = rdf.NewNamedNode(mfNamespace + "Manifest")
	mfEntries    = rdf.NewNamedNode(mfNamespace + "entries")
	mfInclude    = rdf.NewNamedNode(mfNamespace + "include")
	mfName       = rdf.NewNamedNode(mfNamespace + "name")
	mfAction     = rdf.NewNamedNode(mfNamespace + "action")
	mfResult     = rdf.NewNamedNode(mfNamespace + "result")
	rdftApproval = rdf.NewNamedNode(rdftNamespace + "approval")
	rdftApproved = rdf.NewNamedNode(rdftNamespace + "Approved")
	rdfsComment  = rdf.NewNamedNode(rdf.RDFSNamespace + "comment")
)

// TestManifest is a parsed manifest with the tests of its includes appended
type TestManifest struct {
	Path    string
	BaseIRI string
	Tests   []TestCase
}

// TestCase represents a single syntax or evaluation test
type TestCase struct {
	IRI         string
	Name        string
	Type        TestType
	Action      string // IRI of the input document
	Result      string // IRI of the expected N-Triples, for evaluation tests
	Approved    bool
	Description string

	manifest *TestManifest
}

// TestType represents the type of test
type TestType string

const (
	// RDF Turtle tests
	TestTypeTurtleEval           TestType = "TestTurtleEval"
	TestTypeTurtlePositiveSyntax TestType = "TestTurtlePositiveSyntax"
	TestTypeTurtleNegativeSyntax TestType = "TestTurtleNegativeSyntax"
	TestTypeTurtleNegativeEval   TestType = "TestTurtleNegativeEval"

	// RDF N-Triples tests
	TestTypeNTriplesPositiveSyntax TestType = "TestNTriplesPositiveSyntax"
	TestTypeNTriplesNegativeSyntax TestType = "TestNTriplesNegativeSyntax"
)

// FileIRI converts a file path to a file:// IRI
func FileIRI(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

// ParseManifest parses a Turtle manifest. Relative IRIs in the manifest are
// resolved against baseIRI, or against the file's own IRI when baseIRI is
// empty. The W3C suites expect http://www.w3.org/2013/TurtleTests/manifest.ttl.
func ParseManifest(path, baseIRI string) (*TestManifest, error) {
	return parseManifestWithVisited(path, baseIRI, make(map[string]bool))
}

// parseManifestWithVisited parses a manifest and tracks visited files to prevent infinite loops
func parseManifestWithVisited(path, baseIRI string, visited map[string]bool) (*TestManifest, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	if baseIRI == "" {
		if baseIRI, err = FileIRI(absPath); err != nil {
			return nil, err
		}
	}

	manifest := &TestManifest{Path: absPath, BaseIRI: baseIRI}
	if visited[absPath] {
		return manifest, nil
	}
	visited[absPath] = true

	data, err := os.ReadFile(absPath) // #nosec G304 - test suite legitimately reads test manifest files
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}

	p := turtle.NewParser(string(data))
	if err := p.Prolog().SetBase(baseIRI); err != nil {
		return nil, fmt.Errorf("invalid manifest base: %w", err)
	}
	triples, err := p.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	g := newGraph(triples)

	for _, node := range g.subjectsOfType(mfManifest) {
		for _, list := range g.objects(node, mfEntries) {
			for _, entry := range g.list(list) {
				if test, ok := g.testCase(entry); ok {
					test.manifest = manifest
					manifest.Tests = append(manifest.Tests, test)
				}
			}
		}

		for _, list := range g.objects(node, mfInclude) {
			for _, include := range g.list(list) {
				iri, ok := include.(*rdf.NamedNode)
				if !ok {
					continue
				}
				includePath, err := manifest.LocalPath(iri.IRI)
				if err != nil {
					return nil, err
				}
				included, err := parseManifestWithVisited(includePath, iri.IRI, visited)
				if err != nil {
					return nil, fmt.Errorf("failed to load included manifest %s: %w", includePath, err)
				}
				manifest.Tests = append(manifest.Tests, included.Tests...)
			}
		}
	}

	return manifest, nil
}

// LocalPath maps an IRI below the manifest's directory to a file next to it
func (m *TestManifest) LocalPath(iri string) (string, error) {
	dir := m.BaseIRI[:strings.LastIndex(m.BaseIRI, "/")+1]
	if !strings.HasPrefix(iri, dir) {
		return "", fmt.Errorf("%s is outside of the manifest directory %s", iri, dir)
	}
	rel, err := url.PathUnescape(strings.TrimPrefix(iri, dir))
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(m.Path), filepath.FromSlash(rel)), nil
}

// graph indexes manifest triples by subject
type graph struct {
	bySubject map[string][]*rdf.Triple
	order     []string
}

func newGraph(triples []*rdf.Triple) *graph {
	g := &graph{bySubject: make(map[string][]*rdf.Triple)}
	for _, t := range triples {
		key := t.Subject.String()
		if _, ok := g.bySubject[key]; !ok {
			g.order = append(g.order, key)
		}
		g.bySubject[key] = append(g.bySubject[key], t)
	}
	return g
}

func (g *graph) objects(subject rdf.Term, predicate *rdf.NamedNode) []rdf.Term {
	var result []rdf.Term
	for _, t := range g.bySubject[subject.String()] {
		if t.Predicate.Equals(predicate) {
			result = append(result, t.Object)
		}
	}
	return result
}

func (g *graph) object(subject rdf.Term, predicate *rdf.NamedNode) rdf.Term {
	if objects := g.objects(subject, predicate); len(objects) > 0 {
		return objects[0]
	}
	return nil
}

func (g *graph) subjectsOfType(class *rdf.NamedNode) []rdf.Term {
	var result []rdf.Term
	for _, key := range g.order {
		for _, t := range g.bySubject[key] {
			if t.Predicate.Equals(rdf.RDFType) && t.Object.Equals(class) {
				result = append(result, t.Subject)
				break
			}
		}
	}
	return result
}

// list walks an rdf:first/rdf:rest chain
func (g *graph) list(head rdf.Term) []rdf.Term {
	var items []rdf.Term
	seen := make(map[string]bool)
	for head != nil && !head.Equals(rdf.RDFNil) && !seen[head.String()] {
		seen[head.String()] = true
		if first := g.object(head, rdf.RDFFirst); first != nil {
			items = append(items, first)
		}
		head = g.object(head, rdf.RDFRest)
	}
	return items
}

func (g *graph) testCase(entry rdf.Term) (TestCase, bool) {
	test := TestCase{IRI: entry.String()}
	if n, ok := entry.(*rdf.NamedNode); ok {
		test.IRI = n.IRI
	}

	for _, class := range g.objects(entry, rdf.RDFType) {
		if n, ok := class.(*rdf.NamedNode); ok && strings.HasPrefix(n.IRI, rdftNamespace) {
			test.Type = TestType(strings.TrimPrefix(n.IRI, rdftNamespace))
		}
	}
	if name, ok := g.object(entry, mfName).(*rdf.Literal); ok {
		test.Name = name.Value
	}
	if comment, ok := g.object(entry, rdfsComment).(*rdf.Literal); ok {
		test.Description = comment.Value
	}
	if action, ok := g.object(entry, mfAction).(*rdf.NamedNode); ok {
		test.Action = action.IRI
	}
	if result, ok := g.object(entry, mfResult).(*rdf.NamedNode); ok {
		test.Result = result.IRI
	}
	if approval := g.object(entry, rdftApproval); approval != nil {
		test.Approved = approval.Equals(rdftApproved)
	}

	// Malformed manifest entries with missing names/types are skipped
	return test, test.Name != "" && test.Type != ""
}
