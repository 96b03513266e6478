package parser

import (
	"strings"

	"github.com/aleksaelezovic/sparqlir/pkg/rdf"
	"github.com/aleksaelezovic/sparqlir/pkg/sparql/algebra"
	"github.com/aleksaelezovic/sparqlir/pkg/sparql/grammar"
)

// builtinNames overrides the operator name of built-ins whose algebra name
// is not simply the lower-cased keyword.
var builtinNames = map[string]string{
	"ISIRI":       "isIRI",
	"ISURI":       "isURI",
	"ISBLANK":     "isBlank",
	"ISLITERAL":   "isLiteral",
	"ISNUMERIC":   "isNumeric",
	"ISTRIPLE":    "isTRIPLE",
	"SAMETERM":    "sameTerm",
	"LANGMATCHES": "langMatches",
	"HASLANG":     "hasLang",
	"HASLANGDIR":  "hasLangdir",
}

func builtinName(keyword string) string {
	if name, ok := builtinNames[keyword]; ok {
		return name
	}
	return strings.ToLower(keyword)
}

// spread flattens argument lists produced by ArgList and ExpressionList.
func spread(nodes []algebra.Node) []algebra.Node {
	var out []algebra.Node
	for _, n := range nodes {
		if l, ok := n.(algebra.List); ok {
			out = append(out, l...)
			continue
		}
		out = append(out, n)
	}
	return out
}

// foldBinary folds "a op b op c" left to right, taking operators from the
// terminal results between operands.
func foldBinary(m *grammar.Match) algebra.Node {
	var acc algebra.Node
	op := ""
	for _, r := range m.Results {
		if r.Token != nil {
			op = r.Name
			continue
		}
		n := nodeOf(r.Value)
		if acc == nil {
			acc = n
			continue
		}
		acc = algebra.New(op, acc, n)
	}
	return acc
}

// signedTerm is "+ 1 * ?x" written as "+1 * ?x", where the sign was lexed
// as part of the number.
type signedTerm struct {
	op   string
	expr algebra.Node
}

func functionCall(m *grammar.Match) algebra.Node {
	iri := m.Results[0].Value.(*rdf.NamedNode)
	args, ok := m.Value("ArgList").(algebra.List)
	if !ok {
		return algebra.T(iri)
	}
	return algebra.New("function", append([]algebra.Node{algebra.T(iri)}, args...)...)
}

func registerExpressionActions() {
	on("ConditionalOrExpression", func(s *Session, m *grammar.Match) (any, error) {
		return foldBinary(m), nil
	})
	on("ConditionalAndExpression", func(s *Session, m *grammar.Match) (any, error) {
		return foldBinary(m), nil
	})
	on("MultiplicativeExpression", func(s *Session, m *grammar.Match) (any, error) {
		return foldBinary(m), nil
	})

	on("RelationalExpression", func(s *Session, m *grammar.Match) (any, error) {
		ops := operands(m)
		if len(ops) == 1 {
			return ops[0], nil
		}
		switch {
		case m.Has("NOT"):
			return algebra.New("notin", spread(ops)...), nil
		case m.Has("IN"):
			return algebra.New("in", spread(ops)...), nil
		}
		return algebra.New(m.Results[1].Name, ops...), nil
	})

	on("AdditiveExpression", func(s *Session, m *grammar.Match) (any, error) {
		var acc algebra.Node
		op := ""
		for _, r := range m.Results {
			if st, ok := r.Value.(signedTerm); ok {
				acc = algebra.New(st.op, acc, st.expr)
				continue
			}
			if r.Token != nil {
				op = r.Name
				continue
			}
			n := nodeOf(r.Value)
			if acc == nil {
				acc = n
			} else {
				acc = algebra.New(op, acc, n)
			}
		}
		return acc, nil
	})

	on("AdditiveSignedTerm", func(s *Session, m *grammar.Match) (any, error) {
		lit := m.Results[0].Value.(*rdf.Literal)
		op := lit.Value[:1]
		var acc algebra.Node = algebra.T(rdf.NewLiteralWithDatatype(lit.Value[1:], lit.Datatype))
		mul := ""
		for _, r := range m.Results[1:] {
			if r.Token != nil {
				mul = r.Name
				continue
			}
			acc = algebra.New(mul, acc, nodeOf(r.Value))
		}
		return signedTerm{op: op, expr: acc}, nil
	})

	on("UnaryExpression", func(s *Session, m *grammar.Match) (any, error) {
		if r := m.Results[0]; r.Token != nil {
			return algebra.New(r.Name, nodeOf(m.Results[1].Value)), nil
		}
		return nodeOf(m.Results[0].Value), nil
	})

	on("BrackettedExpression", func(s *Session, m *grammar.Match) (any, error) {
		return nodeOf(firstValue(m)), nil
	})

	on("iriOrFunction", func(s *Session, m *grammar.Match) (any, error) {
		return functionCall(m), nil
	})
	on("FunctionCall", func(s *Session, m *grammar.Match) (any, error) {
		return functionCall(m), nil
	})

	on("ArgList", func(s *Session, m *grammar.Match) (any, error) {
		args := algebra.List{}
		if m.Has("DISTINCT") {
			args = append(args, algebra.Symbol("distinct"))
		}
		return append(args, operands(m)...), nil
	})
	on("ExpressionList", func(s *Session, m *grammar.Match) (any, error) {
		return append(algebra.List{}, operands(m)...), nil
	})

	builtin := func(s *Session, m *grammar.Match) (any, error) {
		return algebra.New(builtinName(m.Results[0].Text()), spread(operands(m))...), nil
	}
	on("BuiltInFunction", builtin)
	on("RegexExpression", builtin)
	on("SubstringExpression", builtin)
	on("StrReplaceExpression", builtin)

	on("ExistsFunc", func(s *Session, m *grammar.Match) (any, error) {
		return algebra.New("exists", operands(m)...), nil
	})
	on("NotExistsFunc", func(s *Session, m *grammar.Match) (any, error) {
		return algebra.New("notexists", operands(m)...), nil
	})

	on("Aggregate", func(s *Session, m *grammar.Match) (any, error) {
		var args []algebra.Node
		if m.Has("DISTINCT") {
			args = append(args, algebra.Symbol("distinct"))
		}
		if sep, ok := m.Value("String").(string); ok {
			args = append(args, algebra.New("separator", algebra.T(rdf.NewLiteral(sep))))
		}
		for _, r := range m.Results {
			if r.Token == nil && r.Name != "String" {
				args = append(args, nodeOf(r.Value))
			}
		}
		return algebra.New(strings.ToLower(m.Results[0].Text()), args...), nil
	})
}
