package algebra

import (
	"strings"

	"github.com/aleksaelezovic/sparqlir/pkg/rdf"
)

// SSE renders n as a single-line S-expression.
func SSE(n Node) string {
	var b strings.Builder
	writeSSE(&b, n)
	return b.String()
}

func (o *Op) String() string { return SSE(o) }
func (l List) String() string { return SSE(l) }

func writeSSE(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case nil:
		b.WriteString("nil")
	case *Op:
		b.WriteByte('(')
		b.WriteString(v.Kind)
		for _, a := range v.Args {
			b.WriteByte(' ')
			writeSSE(b, a)
		}
		b.WriteByte(')')
	case List:
		b.WriteByte('(')
		for i, a := range v {
			if i > 0 {
				b.WriteByte(' ')
			}
			writeSSE(b, a)
		}
		b.WriteByte(')')
	case Symbol:
		b.WriteString(string(v))
	case Term:
		b.WriteString(FormatTerm(v.Term))
	}
}

// FormatTerm renders a term in S-expression syntax. Numeric and boolean
// literals print in their short form, IRIs with a retained prefixed name
// print as that name, and triple terms print as (qtriple s p o).
func FormatTerm(t rdf.Term) string {
	switch v := t.(type) {
	case nil:
		return "nil"
	case *rdf.NamedNode:
		if v.PName != "" {
			return v.PName
		}
		return "<" + v.IRI + ">"
	case *rdf.BlankNode:
		return "_:" + v.ID
	case *rdf.Variable:
		return v.String()
	case *rdf.Literal:
		return formatLiteral(v)
	case *rdf.TripleTerm:
		return "(" + KindQTriple + " " + FormatTerm(v.Subject) + " " +
			FormatTerm(v.Predicate) + " " + FormatTerm(v.Object) + ")"
	case *rdf.DefaultGraph:
		return "default"
	}
	return t.String()
}

func formatLiteral(l *rdf.Literal) string {
	if l.IsNumeric() || (l.Datatype != nil && l.Datatype.IRI == rdf.XSDBoolean.IRI) {
		return l.Value
	}
	s := quote(l.Value)
	switch {
	case l.Language != "":
		s += "@" + l.Language
		if l.Direction != "" {
			s += "--" + l.Direction
		}
	case l.Datatype != nil:
		s += "^^" + FormatTerm(l.Datatype)
	}
	return s
}

var quoteReplacer = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func quote(s string) string {
	return `"` + quoteReplacer.Replace(s) + `"`
}

const indentWidth = 80

// Indent renders n as a multi-line S-expression. Operators that fit within
// the line width stay on one line; longer ones put each operator operand on
// its own line, indented by two spaces.
func Indent(n Node) string {
	var b strings.Builder
	writeIndent(&b, n, 0)
	return b.String()
}

func writeIndent(b *strings.Builder, n Node, depth int) {
	flat := SSE(n)
	op, isOp := n.(*Op)
	list, isList := n.(List)
	if depth*2+len(flat) <= indentWidth || (!isOp && !isList) {
		b.WriteString(flat)
		return
	}

	var args []Node
	b.WriteByte('(')
	if isOp {
		b.WriteString(op.Kind)
		args = op.Args
		// leading leaves stay on the head line
		for len(args) > 0 {
			if _, nested := args[0].(*Op); nested {
				break
			}
			if _, nested := args[0].(List); nested && len(SSE(args[0])) > indentWidth/2 {
				break
			}
			b.WriteByte(' ')
			b.WriteString(SSE(args[0]))
			args = args[1:]
		}
	} else {
		args = list
	}
	for i, a := range args {
		if isList && i == 0 {
			writeIndent(b, a, depth+1)
			continue
		}
		b.WriteByte('\n')
		b.WriteString(strings.Repeat("  ", depth+1))
		writeIndent(b, a, depth+1)
	}
	b.WriteByte(')')
}
