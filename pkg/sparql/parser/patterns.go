package parser

import (
	"fmt"

	"github.com/aleksaelezovic/sparqlir/pkg/rdf"
	"github.com/aleksaelezovic/sparqlir/pkg/sparql/algebra"
	"github.com/aleksaelezovic/sparqlir/pkg/sparql/grammar"
)

// Elements of a group graph pattern that are folded into the group rather
// than joined with it.
type (
	filterClause   struct{ expr algebra.Node }
	optionalClause struct{ pattern algebra.Node }
	minusClause    struct{ pattern algebra.Node }
	bindClause     struct {
		variable *rdf.Variable
		expr     algebra.Node
	}
)

// undef marks an UNDEF entry in a VALUES block.
type undef struct{}

func emptyBGP() *algebra.Op { return algebra.New(algebra.KindBGP) }

// join combines two patterns; a nil left side is the empty group.
func join(left, right algebra.Node) algebra.Node {
	if left == nil {
		return right
	}
	return algebra.New(algebra.KindJoin, left, right)
}

// groupBuilder folds the elements of a group graph pattern left to right.
type groupBuilder struct {
	acc      algebra.Node
	triples  []algebra.Node
	filters  []algebra.Node
	lastBind bool
}

func (g *groupBuilder) flush() {
	if len(g.triples) > 0 {
		g.acc = join(g.acc, algebra.New(algebra.KindBGP, g.triples...))
		g.triples = nil
	}
}

func (g *groupBuilder) left() algebra.Node {
	g.flush()
	if g.acc == nil {
		return emptyBGP()
	}
	return g.acc
}

func (g *groupBuilder) add(v any) {
	switch e := v.(type) {
	case []algebra.Node:
		for _, p := range e {
			if algebra.Is(p, algebra.KindTriple) {
				g.triples = append(g.triples, p)
				continue
			}
			g.flush()
			g.acc = join(g.acc, p)
		}
		g.lastBind = false
	case filterClause:
		g.flush()
		g.filters = append(g.filters, e.expr)
	case optionalClause:
		left := g.left()
		if f, ok := e.pattern.(*algebra.Op); ok && f.Kind == algebra.KindFilter {
			g.acc = algebra.New(algebra.KindLeftJoin, left, f.Args[1], f.Args[0])
		} else {
			g.acc = algebra.New(algebra.KindLeftJoin, left, e.pattern)
		}
		g.lastBind = false
	case minusClause:
		g.acc = algebra.New(algebra.KindMinus, g.left(), e.pattern)
		g.lastBind = false
	case bindClause:
		binding := algebra.List{algebra.T(e.variable), e.expr}
		if g.lastBind && len(g.triples) == 0 {
			ext := g.acc.(*algebra.Op)
			bindings := append(ext.Args[0].(algebra.List), binding)
			g.acc = algebra.New(algebra.KindExtend, bindings, ext.Args[1])
		} else {
			g.acc = algebra.New(algebra.KindExtend, algebra.List{binding}, g.left())
		}
		g.lastBind = true
	case algebra.Node:
		g.flush()
		g.acc = join(g.acc, e)
		g.lastBind = false
	}
}

func (g *groupBuilder) build() algebra.Node {
	p := g.left()
	switch len(g.filters) {
	case 0:
		return p
	case 1:
		return algebra.New(algebra.KindFilter, g.filters[0], p)
	default:
		return algebra.New(algebra.KindFilter, algebra.New(algebra.KindExprList, g.filters...), p)
	}
}

// valuesTable builds (table (vars ...) (row ...) ...). Without variables a
// single empty row is (table unit) and no rows at all is (table empty).
func valuesTable(vars []*rdf.Variable, rows [][]any) (algebra.Node, error) {
	if len(vars) == 0 {
		switch len(rows) {
		case 0:
			return algebra.New(algebra.KindTable, algebra.Symbol("empty")), nil
		case 1:
			return algebra.New(algebra.KindTable, algebra.Symbol("unit")), nil
		}
	}
	args := []algebra.Node{algebra.New("vars", algebra.Terms(vars)...)}
	for _, row := range rows {
		if len(row) != len(vars) {
			return nil, fmt.Errorf("VALUES row has %d values, expected %d", len(row), len(vars))
		}
		var bindings []algebra.Node
		for i, v := range row {
			if _, ok := v.(undef); ok {
				continue
			}
			bindings = append(bindings, algebra.List{algebra.T(vars[i]), nodeOf(v)})
		}
		args = append(args, algebra.New("row", bindings...))
	}
	return algebra.New(algebra.KindTable, args...), nil
}

func registerPatternActions() {
	on("GroupGraphPattern", func(s *Session, m *grammar.Match) (any, error) {
		if v := firstValue(m); v != nil {
			return v, nil
		}
		return emptyBGP(), nil
	})

	on("GroupGraphPatternSub", func(s *Session, m *grammar.Match) (any, error) {
		g := &groupBuilder{}
		for _, r := range m.Results {
			if r.Token == nil {
				g.add(r.Value)
			}
		}
		return g.build(), nil
	})

	on("GroupOrUnionGraphPattern", func(s *Session, m *grammar.Match) (any, error) {
		return foldLeft(algebra.KindUnion, operands(m)), nil
	})

	on("OptionalGraphPattern", func(s *Session, m *grammar.Match) (any, error) {
		return optionalClause{pattern: nodeOf(firstValue(m))}, nil
	})
	on("MinusGraphPattern", func(s *Session, m *grammar.Match) (any, error) {
		return minusClause{pattern: nodeOf(firstValue(m))}, nil
	})
	on("Filter", func(s *Session, m *grammar.Match) (any, error) {
		return filterClause{expr: nodeOf(firstValue(m))}, nil
	})
	on("Bind", func(s *Session, m *grammar.Match) (any, error) {
		return bindClause{
			expr:     nodeOf(m.Results[2].Value),
			variable: m.Value("Var").(*rdf.Variable),
		}, nil
	})

	on("GraphGraphPattern", func(s *Session, m *grammar.Match) (any, error) {
		ops := operands(m)
		return algebra.New(algebra.KindGraph, ops[0], ops[1]), nil
	})
	on("ServiceGraphPattern", func(s *Session, m *grammar.Match) (any, error) {
		args := operands(m)
		if m.Has("SILENT") {
			args = append([]algebra.Node{algebra.Symbol("silent")}, args...)
		}
		return algebra.New(algebra.KindService, args...), nil
	})

	on("InlineData", func(s *Session, m *grammar.Match) (any, error) {
		return m.Results[1].Value, nil
	})
	on("ValuesClause", func(s *Session, m *grammar.Match) (any, error) {
		return firstValue(m), nil
	})

	on("InlineDataOneVar", func(s *Session, m *grammar.Match) (any, error) {
		v := m.Results[0].Value.(*rdf.Variable)
		var rows [][]any
		for _, r := range m.All("DataBlockValue") {
			rows = append(rows, []any{r.Value})
		}
		return valuesTable([]*rdf.Variable{v}, rows)
	})

	on("InlineDataFull", func(s *Session, m *grammar.Match) (any, error) {
		var vars []*rdf.Variable
		var rows [][]any
		body := false
		for _, r := range m.Results {
			switch {
			case r.Name == "{":
				body = true
			case r.Name == "Var":
				vars = append(vars, r.Value.(*rdf.Variable))
			case r.Name == "DataBlockRow":
				rows = append(rows, r.Value.([]any))
			case r.Name == "NIL" && body:
				rows = append(rows, nil)
			}
		}
		return valuesTable(vars, rows)
	})

	on("DataBlockRow", func(s *Session, m *grammar.Match) (any, error) {
		var row []any
		for _, r := range m.All("DataBlockValue") {
			row = append(row, r.Value)
		}
		return row, nil
	})

	on("DataBlockValue", func(s *Session, m *grammar.Match) (any, error) {
		if m.Results[0].Name == "UNDEF" {
			return undef{}, nil
		}
		t := termOf(m.Results[0].Value)
		if !rdf.IsGround(t) {
			return nil, fmt.Errorf("%w: VALUES data must be ground, got %s", ErrInvalidTerm, t)
		}
		return t, nil
	})
}
