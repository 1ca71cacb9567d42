package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aleksaelezovic/metis/pkg/rdf"
	"github.com/aleksaelezovic/metis/pkg/turtle"
	"github.com/piprate/json-gold/ld"
)

// JSONLDContext builds a JSON-LD context from a prolog. The default prefix
// becomes @vocab.
func JSONLDContext(prolog *turtle.Prolog) map[string]interface{} {
	context := make(map[string]interface{})
	if prolog == nil {
		return context
	}
	for _, prefix := range prolog.Prefixes() {
		if prefix.Name == "" {
			context["@vocab"] = prefix.Namespace
			continue
		}
		context[prefix.Name] = prefix.Namespace
	}
	if base, ok := prolog.Base(); ok {
		context["@base"] = base
	}
	return context
}

// JSONLD converts triples to a compacted JSON-LD document using the prefixes
// of prolog.
func JSONLD(triples []*rdf.Triple, prolog *turtle.Prolog) (map[string]interface{}, error) {
	doc, err := NTriples(triples)
	if err != nil {
		return nil, err
	}

	proc := ld.NewJsonLdProcessor()
	opts := ld.NewJsonLdOptions("")
	opts.Format = "application/n-quads"
	expanded, err := proc.FromRDF(doc, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to convert to JSON-LD: %w", err)
	}

	compactOpts := ld.NewJsonLdOptions("")
	compacted, err := proc.Compact(expanded, map[string]interface{}{"@context": JSONLDContext(prolog)}, compactOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to compact JSON-LD: %w", err)
	}
	return compacted, nil
}

// WriteJSONLD writes the compacted document as indented JSON.
func WriteJSONLD(w io.Writer, triples []*rdf.Triple, prolog *turtle.Prolog) error {
	doc, err := JSONLD(triples, prolog)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
