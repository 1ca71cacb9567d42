package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/aleksaelezovic/metis/internal/encoding"
	"github.com/aleksaelezovic/metis/internal/export"
	"github.com/aleksaelezovic/metis/internal/storage"
	"github.com/aleksaelezovic/metis/internal/store"
	"github.com/aleksaelezovic/metis/pkg/rdf"
	"github.com/aleksaelezovic/metis/pkg/turtle"
	"github.com/golang/glog"
)

var errUsage = errors.New("invalid arguments")

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "Usage: metis [glog flags] <command> [args]")
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  parse FILE            - Print the triples of a Turtle or N3 document as N-Triples")
	fmt.Fprintln(out, "  fmt FILE              - Rewrite a document with grouped subjects and predicates")
	fmt.Fprintln(out, "  check FILE            - Verify that formatting a document keeps its graph")
	fmt.Fprintln(out, "  jsonld FILE           - Convert a document to compacted JSON-LD")
	fmt.Fprintln(out, "  load -db DIR FILE     - Store a document in a database")
	fmt.Fprintln(out, "  dump -db DIR          - Write the stored graph")
	fmt.Fprintln(out, "FILE may be - for standard input. Run 'metis <command> -h' for command flags.")
}

func main() {
	flag.Usage = usage
	flag.Set("logtostderr", "true")
	flag.Parse()
	defer glog.Flush()

	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	if err := run(context.Background(), command, flag.Args()[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		if errors.Is(err, errUsage) {
			usage()
		}
		glog.Exitf("%s: %v", command, err)
	}
}

func run(ctx context.Context, command string, args []string, out io.Writer) error {
	switch command {
	case "parse":
		return runParse(args, out)
	case "fmt":
		return runFmt(args, out)
	case "check":
		return runCheck(args, out)
	case "jsonld":
		return runJSONLD(args, out)
	case "load":
		return runLoad(ctx, args, out)
	case "dump":
		return runDump(ctx, args, out)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

// documentFlags are shared by the commands reading a document
type documentFlags struct {
	format string
	base   string
}

func (d *documentFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&d.format, "format", "", "input format: turtle or n3 (default: from the file extension)")
	fs.StringVar(&d.base, "base", "", "base IRI for relative references")
}

// open reads the single FILE argument of fs into a parser
func (d *documentFlags) open(fs *flag.FlagSet) (*turtle.Parser, error) {
	if fs.NArg() != 1 {
		return nil, fmt.Errorf("%w: expected exactly one FILE", errUsage)
	}
	path := fs.Arg(0)

	format := turtle.FormatTurtle
	if d.format != "" {
		f, err := turtle.ParseFormat(d.format)
		if err != nil {
			return nil, err
		}
		format = f
	} else if path != "-" {
		f, err := turtle.FormatForPath(path)
		if err != nil {
			glog.V(1).Infof("%v, reading as Turtle", err)
		} else {
			format = f
		}
	}

	var r io.Reader = os.Stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		r = file
	}

	p, err := turtle.NewReaderParser(r, format)
	if err != nil {
		return nil, err
	}
	if d.base != "" {
		if err := p.Prolog().SetBase(d.base); err != nil {
			return nil, err
		}
	}
	glog.V(1).Infof("Parsing %s as %s", path, format)
	return p, nil
}

func runParse(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	var doc documentFlags
	doc.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := doc.open(fs)
	if err != nil {
		return err
	}

	// Formulas have no N-Triples form, so N3 documents are printed term by term
	if p.Format() == turtle.FormatN3 {
		for p.Next() {
			if _, err := fmt.Fprintln(out, p.Triple()); err != nil {
				return err
			}
		}
		return p.Err()
	}

	w := export.NewNTriplesWriter(out)
	for p.Next() {
		if err := w.Write(p.Triple()); err != nil {
			return err
		}
	}
	if err := p.Err(); err != nil {
		return err
	}
	return w.Close()
}

// formatDocument parses all of p and writes it grouped through the serializer
func formatDocument(p *turtle.Parser, out io.Writer, indent, spacing string) ([]*rdf.Triple, error) {
	triples, err := p.ReadAll()
	if err != nil {
		return nil, err
	}

	cfg := turtle.NewConfig()
	cfg.Prolog = p.Prolog()
	cfg.Format = p.Format()
	ind, err := turtle.ParseIndentation(indent)
	if err != nil {
		return nil, err
	}
	cfg.SetIndentation(ind)
	sp, err := turtle.ParseIndentation(spacing)
	if err != nil {
		return nil, err
	}
	if err := cfg.SetSpacing(sp); err != nil {
		return nil, err
	}

	ser, err := turtle.NewSerializer(out, cfg)
	if err != nil {
		return nil, err
	}
	if err := ser.SerializeAll(rdf.GroupTriples(triples)); err != nil {
		return nil, err
	}
	return triples, ser.Finish()
}

func runFmt(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("fmt", flag.ContinueOnError)
	var doc documentFlags
	doc.register(fs)
	indent := fs.String("indent", "4", "indentation: N spaces, tab or none")
	spacing := fs.String("spacing", "1", "separator between terms: N spaces or tab")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := doc.open(fs)
	if err != nil {
		return err
	}
	_, err = formatDocument(p, out, *indent, *spacing)
	return err
}

func runCheck(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	var doc documentFlags
	doc.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := doc.open(fs)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	triples, err := formatDocument(p, &buf, "4", "1")
	if err != nil {
		return err
	}
	reparsed, err := turtle.NewFormatParser(p.Format(), buf.String()).ReadAll()
	if err != nil {
		return fmt.Errorf("formatted output does not parse: %w", err)
	}
	if !rdf.AreGraphsIsomorphic(triples, reparsed) {
		return fmt.Errorf("formatting changed the graph (%d triples in, %d out)", len(triples), len(reparsed))
	}
	_, err = fmt.Fprintf(out, "ok: %d triples\n", len(triples))
	return err
}

func runJSONLD(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("jsonld", flag.ContinueOnError)
	var doc documentFlags
	doc.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := doc.open(fs)
	if err != nil {
		return err
	}
	triples, err := p.ReadAll()
	if err != nil {
		return err
	}
	return export.WriteJSONLD(out, triples, p.Prolog())
}

func openStore(dir string) (*store.GraphStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: -db is required", errUsage)
	}
	backend, err := storage.Open(storage.Options{Path: dir})
	if err != nil {
		return nil, err
	}
	return store.NewGraphStore(backend, encoding.NewTermEncoder(), encoding.NewTermDecoder()), nil
}

func runLoad(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("load", flag.ContinueOnError)
	var doc documentFlags
	doc.register(fs)
	dir := fs.String("db", "", "database directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := doc.open(fs)
	if err != nil {
		return err
	}
	s, err := openStore(*dir)
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := s.Load(ctx, p)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "loaded %d triples\n", n)
	return err
}

func runDump(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	dir := fs.String("db", "", "database directory")
	to := fs.String("to", "turtle", "output format: turtle, ntriples or jsonld")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return fmt.Errorf("%w: dump takes no arguments", errUsage)
	}
	switch *to {
	case "turtle", "ntriples", "jsonld":
	default:
		return fmt.Errorf("%w: unknown output format %q", errUsage, *to)
	}
	s, err := openStore(*dir)
	if err != nil {
		return err
	}
	defer s.Close()

	switch *to {
	case "turtle":
		return s.Dump(ctx, out, nil)
	case "ntriples":
		w := export.NewNTriplesWriter(out)
		if err := s.Triples(ctx, w.Write); err != nil {
			return err
		}
		return w.Close()
	case "jsonld":
		var triples []*rdf.Triple
		err := s.Triples(ctx, func(t *rdf.Triple) error {
			triples = append(triples, t)
			return nil
		})
		if err != nil {
			return err
		}
		prolog, err := s.Prolog()
		if err != nil {
			return err
		}
		return export.WriteJSONLD(out, triples, prolog)
	}
	return nil
}
