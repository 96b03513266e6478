package rdf

const (
	XSDNamespace = "http://www.w3.org/2001/XMLSchema#"
	RDFNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
)

// Helper variables for common XSD datatypes
var (
	XSDString   = NewNamedNode(XSDNamespace + "string")
	XSDInteger  = NewNamedNode(XSDNamespace + "integer")
	XSDDecimal  = NewNamedNode(XSDNamespace + "decimal")
	XSDDouble   = NewNamedNode(XSDNamespace + "double")
	XSDFloat    = NewNamedNode(XSDNamespace + "float")
	XSDBoolean  = NewNamedNode(XSDNamespace + "boolean")
	XSDDateTime = NewNamedNode(XSDNamespace + "dateTime")
	XSDDate     = NewNamedNode(XSDNamespace + "date")
	XSDTime     = NewNamedNode(XSDNamespace + "time")
	XSDDuration = NewNamedNode(XSDNamespace + "duration")
)

// RDF vocabulary used when expanding collections, `a` and reifications.
var (
	RDFType          = NewNamedNode(RDFNamespace + "type")
	RDFFirst         = NewNamedNode(RDFNamespace + "first")
	RDFRest          = NewNamedNode(RDFNamespace + "rest")
	RDFNil           = NewNamedNode(RDFNamespace + "nil")
	RDFReifies       = NewNamedNode(RDFNamespace + "reifies")
	RDFLangString    = NewNamedNode(RDFNamespace + "langString")
	RDFDirLangString = NewNamedNode(RDFNamespace + "dirLangString")
)
