// Package algebra is the intermediate representation produced by the SPARQL
// parser: a tree of operators over RDF terms, rendered as S-expressions.
package algebra

import (
	"github.com/aleksaelezovic/sparqlir/pkg/rdf"
)

// Node is an element of an algebra tree.
type Node interface {
	node()
}

// Op is an operator application such as (bgp ...) or (project (?x) ...).
type Op struct {
	Kind string
	Args []Node
}

// Term is a leaf holding an RDF term or variable.
type Term struct {
	rdf.Term
}

// List is a parenthesized sequence without a head symbol, e.g. the variable
// list of a projection.
type List []Node

// Symbol is a bare word such as "distinct", "silent" or the "_" placeholder.
type Symbol string

func (*Op) node()    {}
func (Term) node()   {}
func (List) node()   {}
func (Symbol) node() {}

// Placeholder marks an absent optional operand, e.g. a missing OFFSET.
const Placeholder = Symbol("_")

// New creates an operator. The argument slice is copied.
func New(kind string, args ...Node) *Op {
	return &Op{Kind: kind, Args: append([]Node(nil), args...)}
}

// T wraps an RDF term as a leaf node.
func T(t rdf.Term) Term {
	return Term{Term: t}
}

// Terms wraps each term as a leaf node.
func Terms[E rdf.Term](terms []E) List {
	out := make(List, len(terms))
	for i, t := range terms {
		out[i] = T(t)
	}
	return out
}

// Arg returns the i-th operand, or nil when out of range.
func (o *Op) Arg(i int) Node {
	if i < 0 || i >= len(o.Args) {
		return nil
	}
	return o.Args[i]
}

// Is reports whether n is an operator of the given kind.
func Is(n Node, kind string) bool {
	op, ok := n.(*Op)
	return ok && op.Kind == kind
}

// Operator kinds with structural meaning for the parser.
const (
	KindBGP       = "bgp"
	KindTriple    = "triple"
	KindQTriple   = "qtriple"
	KindPath      = "path"
	KindJoin      = "join"
	KindLeftJoin  = "leftjoin"
	KindUnion     = "union"
	KindMinus     = "minus"
	KindGraph     = "graph"
	KindService   = "service"
	KindExtend    = "extend"
	KindFilter    = "filter"
	KindExprList  = "exprlist"
	KindGroup     = "group"
	KindOrder     = "order"
	KindProject   = "project"
	KindDistinct  = "distinct"
	KindReduced   = "reduced"
	KindSlice     = "slice"
	KindDataset   = "dataset"
	KindTable     = "table"
	KindPrefix    = "prefix"
	KindBase      = "base"
	KindConstruct = "construct"
	KindAsk       = "ask"
	KindDescribe  = "describe"
	KindUpdate    = "update"
)

var aggregates = map[string]bool{
	"count": true, "sum": true, "min": true, "max": true,
	"avg": true, "sample": true, "group_concat": true,
}

// IsAggregate reports whether kind names an aggregate function.
func IsAggregate(kind string) bool {
	return aggregates[kind]
}
