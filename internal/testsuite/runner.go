package testsuite

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aleksaelezovic/metis/pkg/rdf"
	"github.com/aleksaelezovic/metis/pkg/turtle"
	"github.com/golang/glog"
)

// TestRunner runs W3C Turtle and N-Triples test suite tests
type TestRunner struct {
	out   io.Writer
	stats *TestStats

	// RoundTrip additionally serializes the result of every evaluation test
	// and checks that reparsing it gives the same graph.
	RoundTrip bool
}

// TestStats tracks test execution statistics
type TestStats struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
	Errors  []TestError
}

// TestError represents a test failure
type TestError struct {
	TestName string
	Type     TestType
	Error    string
}

// NewTestRunner creates a test runner reporting to out
func NewTestRunner(out io.Writer) *TestRunner {
	return &TestRunner{
		out:   out,
		stats: &TestStats{},
	}
}

// RunManifest runs all tests in a manifest file
func (r *TestRunner) RunManifest(manifestPath, baseIRI string) error {
	manifest, err := ParseManifest(manifestPath, baseIRI)
	if err != nil {
		return fmt.Errorf("failed to parse manifest: %w", err)
	}

	fmt.Fprintf(r.out, "\n📋 Running manifest: %s\n", manifestPath)
	fmt.Fprintf(r.out, "   Found %d tests\n\n", len(manifest.Tests))

	for i := range manifest.Tests {
		test := &manifest.Tests[i]
		r.stats.Total++

		switch r.runTest(test) {
		case TestResultPass:
			r.stats.Passed++
			glog.V(1).Infof("PASS: %s", test.Name)
		case TestResultFail:
			r.stats.Failed++
			fmt.Fprintf(r.out, "  ❌ FAIL: %s\n", test.Name)
		case TestResultSkip:
			r.stats.Skipped++
			fmt.Fprintf(r.out, "  ⏭️  SKIP: %s (type: %s)\n", test.Name, test.Type)
		case TestResultError:
			r.stats.Failed++
			fmt.Fprintf(r.out, "  💥 ERROR: %s\n", test.Name)
		}
	}

	r.printSummary()
	return nil
}

// TestResult represents the result of running a test
type TestResult int

const (
	TestResultPass TestResult = iota
	TestResultFail
	TestResultSkip
	TestResultError
)

// runTest runs a single test case
func (r *TestRunner) runTest(test *TestCase) TestResult {
	switch test.Type {
	case TestTypeTurtleEval:
		return r.runEvalTest(test)
	case TestTypeTurtlePositiveSyntax, TestTypeNTriplesPositiveSyntax:
		return r.runPositiveSyntaxTest(test)
	case TestTypeTurtleNegativeSyntax, TestTypeTurtleNegativeEval:
		return r.runNegativeSyntaxTest(test)
	default:
		// N-Triples is parsed as Turtle, so N-Triples negative tests that
		// are valid Turtle cannot be checked here
		return TestResultSkip
	}
}

// readAction reads the input document of a test
func (r *TestRunner) readAction(test *TestCase) (string, TestResult, bool) {
	if test.Action == "" {
		r.recordError(test, "No action file specified")
		return "", TestResultError, false
	}
	path, err := test.manifest.LocalPath(test.Action)
	if err != nil {
		r.recordError(test, err.Error())
		return "", TestResultError, false
	}
	data, err := os.ReadFile(path) // #nosec G304 - test suite legitimately reads test data files
	if err != nil {
		r.recordError(test, fmt.Sprintf("Failed to read data file: %v", err))
		return "", TestResultError, false
	}
	return string(data), TestResultPass, true
}

// parseDocument parses a test document with its own IRI as base
func parseDocument(data, baseIRI string) (*turtle.Parser, []*rdf.Triple, error) {
	p := turtle.NewParser(data)
	if baseIRI != "" {
		if err := p.Prolog().SetBase(baseIRI); err != nil {
			return nil, nil, err
		}
	}
	triples, err := p.ReadAll()
	return p, triples, err
}

// runPositiveSyntaxTest verifies a document parses successfully
func (r *TestRunner) runPositiveSyntaxTest(test *TestCase) TestResult {
	data, result, ok := r.readAction(test)
	if !ok {
		return result
	}
	if _, _, err := parseDocument(data, test.Action); err != nil {
		r.recordError(test, fmt.Sprintf("Parser error: %v", err))
		return TestResultFail
	}
	return TestResultPass
}

// runNegativeSyntaxTest verifies a document fails to parse
func (r *TestRunner) runNegativeSyntaxTest(test *TestCase) TestResult {
	data, result, ok := r.readAction(test)
	if !ok {
		return result
	}
	if _, _, err := parseDocument(data, test.Action); err == nil {
		r.recordError(test, "Data parsed successfully but should have failed")
		return TestResultFail
	}
	return TestResultPass
}

// runEvalTest parses a document and compares it with the expected triples
func (r *TestRunner) runEvalTest(test *TestCase) TestResult {
	data, result, ok := r.readAction(test)
	if !ok {
		return result
	}
	p, actual, err := parseDocument(data, test.Action)
	if err != nil {
		r.recordError(test, fmt.Sprintf("Parser error: %v", err))
		return TestResultFail
	}

	if test.Result == "" {
		r.recordError(test, "No result file specified")
		return TestResultError
	}
	resultPath, err := test.manifest.LocalPath(test.Result)
	if err != nil {
		r.recordError(test, err.Error())
		return TestResultError
	}
	resultBytes, err := os.ReadFile(resultPath) // #nosec G304 - test suite legitimately reads test result files
	if err != nil {
		r.recordError(test, fmt.Sprintf("Failed to read result file: %v", err))
		return TestResultError
	}

	// Expected results are N-Triples, a subset of Turtle
	_, expected, err := parseDocument(string(resultBytes), "")
	if err != nil {
		r.recordError(test, fmt.Sprintf("Failed to parse expected results: %v", err))
		return TestResultError
	}

	if !rdf.AreGraphsIsomorphic(expected, actual) {
		r.recordError(test, fmt.Sprintf("Triples mismatch: expected %d triples, got %d triples", len(expected), len(actual)))
		return TestResultFail
	}

	if r.RoundTrip {
		if err := roundTrip(p.Prolog(), actual); err != nil {
			r.recordError(test, fmt.Sprintf("Round trip: %v", err))
			return TestResultFail
		}
	}

	return TestResultPass
}

// roundTrip serializes triples with the document's prolog and reparses them
func roundTrip(prolog *turtle.Prolog, triples []*rdf.Triple) error {
	cfg := turtle.NewConfig()
	cfg.Prolog = prolog

	var buf bytes.Buffer
	ser, err := turtle.NewSerializer(&buf, cfg)
	if err != nil {
		return err
	}
	if err := ser.SerializeAll(rdf.GroupTriples(triples)); err != nil {
		return err
	}
	if err := ser.Finish(); err != nil {
		return err
	}

	reparsed, err := turtle.Parse(buf.String())
	if err != nil {
		return fmt.Errorf("output does not parse: %w", err)
	}
	if !rdf.AreGraphsIsomorphic(triples, reparsed) {
		return fmt.Errorf("graph changed (%d triples in, %d out)", len(triples), len(reparsed))
	}
	return nil
}

// recordError records a test error
func (r *TestRunner) recordError(test *TestCase, errMsg string) {
	r.stats.Errors = append(r.stats.Errors, TestError{
		TestName: test.Name,
		Type:     test.Type,
		Error:    errMsg,
	})
}

// printSummary prints test execution summary
func (r *TestRunner) printSummary() {
	fmt.Fprintln(r.out, "\n"+strings.Repeat("━", 60))
	fmt.Fprintln(r.out, "📊 TEST SUMMARY")
	fmt.Fprintln(r.out, strings.Repeat("━", 60))
	fmt.Fprintf(r.out, "Total:   %d\n", r.stats.Total)
	if r.stats.Total > 0 {
		fmt.Fprintf(r.out, "Passed:  %d (%.1f%%)\n", r.stats.Passed,
			float64(r.stats.Passed)/float64(r.stats.Total)*100)
	}
	fmt.Fprintf(r.out, "Failed:  %d\n", r.stats.Failed)
	fmt.Fprintf(r.out, "Skipped: %d\n", r.stats.Skipped)

	if len(r.stats.Errors) > 0 {
		fmt.Fprintln(r.out, "\n❌ ERRORS:")
		for i, err := range r.stats.Errors {
			if i >= 10 {
				fmt.Fprintf(r.out, "   ... and %d more\n", len(r.stats.Errors)-10)
				break
			}
			fmt.Fprintf(r.out, "   • %s: %s\n", err.TestName, err.Error)
		}
	}

	fmt.Fprintln(r.out, strings.Repeat("━", 60))
}

// GetStats returns the current test statistics
func (r *TestRunner) GetStats() *TestStats {
	return r.stats
}
