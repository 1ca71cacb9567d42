package rdf

import (
	rdfvoc "github.com/cayleygraph/quad/voc/rdf"
	"github.com/cayleygraph/quad/voc/rdfs"
	"github.com/cayleygraph/quad/voc/xsd"
)

// Namespaces known to the parser and serializer.
const (
	RDFNamespace  = rdfvoc.NS
	RDFSNamespace = rdfs.NS
	XSDNamespace  = xsd.NS
	LogNamespace  = "http://www.w3.org/2000/10/swap/log#"
	OWLNamespace  = "http://www.w3.org/2002/07/owl#"
)

var (
	RDFType       = NewNamedNode(RDFNamespace + "type")
	RDFFirst      = NewNamedNode(RDFNamespace + "first")
	RDFRest       = NewNamedNode(RDFNamespace + "rest")
	RDFNil        = NewNamedNode(RDFNamespace + "nil")
	RDFLangString = NewNamedNode(RDFNamespace + "langString")

	LogImplies = NewNamedNode(LogNamespace + "implies")
	OWLSameAs  = NewNamedNode(OWLNamespace + "sameAs")
)

// Datatypes assigned by the literal productions
var (
	XSDString  = NewNamedNode(XSDNamespace + "string")
	XSDInteger = NewNamedNode(XSDNamespace + "integer")
	XSDDecimal = NewNamedNode(XSDNamespace + "decimal")
	XSDDouble  = NewNamedNode(XSDNamespace + "double")
	XSDBoolean = NewNamedNode(XSDNamespace + "boolean")
)

// DefaultPrefixes returns the rdf, rdfs and xsd bindings.
func DefaultPrefixes() map[string]string {
	return map[string]string{
		"rdf":  RDFNamespace,
		"rdfs": RDFSNamespace,
		"xsd":  XSDNamespace,
	}
}
