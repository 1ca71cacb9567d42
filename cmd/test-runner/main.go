package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aleksaelezovic/metis/internal/testsuite"
	"github.com/golang/glog"
)

func main() {
	base := flag.String("base", "", "IRI of the manifest (default: its file:// IRI); the W3C Turtle suite uses http://www.w3.org/2013/TurtleTests/manifest.ttl")
	roundTrip := flag.Bool("roundtrip", false, "also serialize every evaluation result and check that it reparses to the same graph")
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintln(out, "Usage: test-runner [flags] <manifest-file-or-directory>")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Examples:")
		fmt.Fprintln(out, "  test-runner -base http://www.w3.org/2013/TurtleTests/manifest.ttl testdata/rdf-tests/rdf/rdf11/rdf-turtle")
		fmt.Fprintln(out, "  test-runner testdata/rdf-tests/rdf/rdf11/rdf-n-triples/manifest.ttl")
		flag.PrintDefaults()
	}
	flag.Set("logtostderr", "true")
	flag.Parse()
	defer glog.Flush()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	path := flag.Arg(0)

	info, err := os.Stat(path)
	if err != nil {
		glog.Exitf("Failed to access path: %v", err)
	}
	if info.IsDir() {
		path = filepath.Join(path, "manifest.ttl")
		if _, err := os.Stat(path); err != nil {
			glog.Exitf("No manifest.ttl found in directory: %s", flag.Arg(0))
		}
	}

	runner := testsuite.NewTestRunner(os.Stdout)
	runner.RoundTrip = *roundTrip
	if err := runner.RunManifest(path, *base); err != nil {
		glog.Exitf("Failed to run manifest: %v", err)
	}

	// Exit with appropriate code
	if runner.GetStats().Failed > 0 {
		glog.Flush()
		os.Exit(1)
	}
}
