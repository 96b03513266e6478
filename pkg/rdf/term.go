package rdf

import (
	"fmt"
	"strconv"
	"strings"
)

// TermType represents the type of an RDF term
type TermType byte

const (
	TermTypeNamedNode TermType = iota + 1
	TermTypeBlankNode
	TermTypeLiteral
	TermTypeDefaultGraph
	TermTypeVariable
	TermTypeTripleTerm
)

func (t TermType) String() string {
	switch t {
	case TermTypeNamedNode:
		return "iri"
	case TermTypeBlankNode:
		return "bnode"
	case TermTypeLiteral:
		return "literal"
	case TermTypeDefaultGraph:
		return "default"
	case TermTypeVariable:
		return "variable"
	case TermTypeTripleTerm:
		return "triple"
	default:
		return "unknown"
	}
}

// Term represents an RDF term (IRI, blank node, literal, triple term) or a
// query variable standing in place of one.
type Term interface {
	Type() TermType
	String() string
	Equals(other Term) bool
}

// NamedNode represents an IRI.
//
// PName keeps the prefixed-name spelling (e.g. "ex:p") the IRI was written
// with when the parser retains prefixes instead of resolving them.
type NamedNode struct {
	IRI   string
	PName string
}

func NewNamedNode(iri string) *NamedNode {
	return &NamedNode{IRI: iri}
}

func (n *NamedNode) Type() TermType {
	return TermTypeNamedNode
}

func (n *NamedNode) String() string {
	return fmt.Sprintf("<%s>", n.IRI)
}

func (n *NamedNode) Equals(other Term) bool {
	if on, ok := other.(*NamedNode); ok {
		return n.IRI == on.IRI
	}
	return false
}

// BlankNode represents a blank node
type BlankNode struct {
	ID string
}

func NewBlankNode(id string) *BlankNode {
	return &BlankNode{ID: id}
}

func (b *BlankNode) Type() TermType {
	return TermTypeBlankNode
}

func (b *BlankNode) String() string {
	return fmt.Sprintf("_:%s", b.ID)
}

func (b *BlankNode) Equals(other Term) bool {
	if ob, ok := other.(*BlankNode); ok {
		return b.ID == ob.ID
	}
	return false
}

// Literal represents an RDF literal
type Literal struct {
	Value     string
	Language  string     // for language-tagged strings
	Direction string     // "ltr" or "rtl" for directional language strings
	Datatype  *NamedNode // for typed literals
}

func NewLiteral(value string) *Literal {
	return &Literal{Value: value}
}

func NewLiteralWithLanguage(value, language string) *Literal {
	return &Literal{Value: value, Language: language}
}

func NewLiteralWithDirection(value, language, direction string) *Literal {
	return &Literal{Value: value, Language: language, Direction: direction}
}

func NewLiteralWithDatatype(value string, datatype *NamedNode) *Literal {
	return &Literal{Value: value, Datatype: datatype}
}

func (l *Literal) Type() TermType {
	return TermTypeLiteral
}

func (l *Literal) String() string {
	result := strconv.Quote(l.Value)
	if l.Language != "" {
		result += "@" + l.Language
		if l.Direction != "" {
			result += "--" + l.Direction
		}
	} else if l.Datatype != nil && !l.Datatype.Equals(XSDString) {
		result += "^^" + l.Datatype.String()
	}
	return result
}

func (l *Literal) Equals(other Term) bool {
	if ol, ok := other.(*Literal); ok {
		if l.Value != ol.Value {
			return false
		}
		if !strings.EqualFold(l.Language, ol.Language) || l.Direction != ol.Direction {
			return false
		}
		if l.Datatype == nil && ol.Datatype == nil {
			return true
		}
		if l.Datatype != nil && ol.Datatype != nil {
			return l.Datatype.Equals(ol.Datatype)
		}
		return false
	}
	return false
}

// IsNumeric reports whether the literal has one of the numeric XSD datatypes
// produced by SPARQL numeric literal syntax.
func (l *Literal) IsNumeric() bool {
	if l.Datatype == nil {
		return false
	}
	switch l.Datatype.IRI {
	case XSDInteger.IRI, XSDDecimal.IRI, XSDDouble.IRI:
		return true
	}
	return false
}

// DefaultGraph represents the default graph
type DefaultGraph struct{}

func NewDefaultGraph() *DefaultGraph {
	return &DefaultGraph{}
}

func (d *DefaultGraph) Type() TermType {
	return TermTypeDefaultGraph
}

func (d *DefaultGraph) String() string {
	return "DEFAULT"
}

func (d *DefaultGraph) Equals(other Term) bool {
	_, ok := other.(*DefaultGraph)
	return ok
}

// Variable is a query variable. Non-distinguished variables stand in for
// blank nodes and generated temporaries; they never appear in results.
type Variable struct {
	Name          string
	Distinguished bool
}

func NewVariable(name string) *Variable {
	return &Variable{Name: name, Distinguished: true}
}

func NewNonDistinguishedVariable(name string) *Variable {
	return &Variable{Name: name}
}

func (v *Variable) Type() TermType {
	return TermTypeVariable
}

// String renders ?name for distinguished variables and ??name otherwise.
// Generated temporaries whose name starts with '.' keep a single '?'.
func (v *Variable) String() string {
	if v.Distinguished || strings.HasPrefix(v.Name, ".") {
		return "?" + v.Name
	}
	return "??" + v.Name
}

func (v *Variable) Equals(other Term) bool {
	if ov, ok := other.(*Variable); ok {
		return v.Name == ov.Name && v.Distinguished == ov.Distinguished
	}
	return false
}

// TripleTerm is an RDF 1.2 triple used as a term: <<( s p o )>>.
type TripleTerm struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// NewTripleTerm creates a triple term. The subject must not be a literal and
// the predicate must be an IRI or a variable.
func NewTripleTerm(subject, predicate, object Term) (*TripleTerm, error) {
	if subject == nil || predicate == nil || object == nil {
		return nil, fmt.Errorf("triple term requires subject, predicate and object")
	}
	if _, ok := subject.(*Literal); ok {
		return nil, fmt.Errorf("triple term subject cannot be a literal")
	}
	switch predicate.(type) {
	case *NamedNode, *Variable:
	default:
		return nil, fmt.Errorf("triple term predicate must be an IRI, got %s", predicate.Type())
	}
	return &TripleTerm{Subject: subject, Predicate: predicate, Object: object}, nil
}

func (t *TripleTerm) Type() TermType {
	return TermTypeTripleTerm
}

func (t *TripleTerm) String() string {
	return fmt.Sprintf("<<( %s %s %s )>>", t.Subject, t.Predicate, t.Object)
}

func (t *TripleTerm) Equals(other Term) bool {
	if ot, ok := other.(*TripleTerm); ok {
		return t.Subject.Equals(ot.Subject) &&
			t.Predicate.Equals(ot.Predicate) &&
			t.Object.Equals(ot.Object)
	}
	return false
}

// IsGround reports whether none of the terms (recursively through triple
// terms) is a variable.
func IsGround(t Term) bool {
	switch tt := t.(type) {
	case *Variable:
		return false
	case *TripleTerm:
		return IsGround(tt.Subject) && IsGround(tt.Predicate) && IsGround(tt.Object)
	}
	return true
}

// HasBlankNode reports whether the term is or (through triple terms)
// contains a blank node.
func HasBlankNode(t Term) bool {
	switch tt := t.(type) {
	case *BlankNode:
		return true
	case *TripleTerm:
		return HasBlankNode(tt.Subject) || HasBlankNode(tt.Predicate) || HasBlankNode(tt.Object)
	}
	return false
}

func NewIntegerLiteral(value int64) *Literal {
	return NewLiteralWithDatatype(strconv.FormatInt(value, 10), XSDInteger)
}

func NewBooleanLiteral(value bool) *Literal {
	return NewLiteralWithDatatype(strconv.FormatBool(value), XSDBoolean)
}
