package parser

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/aleksaelezovic/sparqlir/pkg/rdf"
	"github.com/aleksaelezovic/sparqlir/pkg/sparql/algebra"
	"github.com/aleksaelezovic/sparqlir/pkg/sparql/grammar"
)

var (
	//lint:ignore ST1005 established message text
	errExtensionInSelect = errors.New("Extension variable also in SELECT")
	errNotGrouped        = errors.New("variable not in GROUP BY")
)

type selectItem struct {
	variable *rdf.Variable
	expr     algebra.Node
	line     int
}

type projection struct {
	modifier string
	all      bool
	items    []selectItem
}

type groupKey struct {
	expr algebra.Node
	as   *rdf.Variable
}

type solutionModifier struct {
	group  []groupKey
	having []algebra.Node
	order  []algebra.Node
	limit  int
	offset int
}

type dataset struct {
	iri   *rdf.NamedNode
	named bool
}

func (d dataset) node() algebra.Node {
	if d.named {
		return algebra.New("named", algebra.T(d.iri))
	}
	return algebra.T(d.iri)
}

type queryForm int

const (
	formSelect queryForm = iota
	formConstruct
	formDescribe
	formAsk
)

// query collects the parts of a query form until its trailing VALUES
// clause is known.
type query struct {
	form     queryForm
	sel      *projection
	template []algebra.Node
	describe []algebra.Node
	datasets []dataset
	where    algebra.Node
	mods     solutionModifier
}

// aggregateExtractor replaces aggregate calls with temporaries and records
// the (temporary aggregate) pairs for the group operator.
type aggregateExtractor struct {
	s    *Session
	aggs algebra.List
}

func (a *aggregateExtractor) extract(n algebra.Node) algebra.Node {
	return algebra.Rewrite(n, func(c algebra.Node) (algebra.Node, bool) {
		op, ok := c.(*algebra.Op)
		if !ok || !algebra.IsAggregate(op.Kind) {
			return nil, false
		}
		return a.bind(op), true
	})
}

func (a *aggregateExtractor) bind(agg *algebra.Op) algebra.Node {
	v := a.s.AggregateVariable()
	a.aggs = append(a.aggs, algebra.List{algebra.T(v), agg})
	a.s.logger.Debug("aggregate extracted", "var", v.String(), "aggregate", agg.String())
	return algebra.T(v)
}

func (a *aggregateExtractor) extractAll(nodes []algebra.Node) []algebra.Node {
	out := make([]algebra.Node, len(nodes))
	for i, n := range nodes {
		out[i] = a.extract(n)
	}
	return out
}

// sampleFree wraps each ungrouped variable of an aggregated select
// expression in a sample aggregate.
func (a *aggregateExtractor) sampleFree(n algebra.Node, bound map[string]bool) algebra.Node {
	return algebra.Rewrite(n, func(c algebra.Node) (algebra.Node, bool) {
		if algebra.Is(c, "exists") || algebra.Is(c, "notexists") {
			return c, true
		}
		t, ok := c.(algebra.Term)
		if !ok {
			return nil, false
		}
		v, ok := t.Term.(*rdf.Variable)
		if !ok || !v.Distinguished || bound[v.Name] {
			return nil, false
		}
		return a.bind(algebra.New("sample", t)), true
	})
}

func variableName(n algebra.Node) (string, bool) {
	t, ok := n.(algebra.Term)
	if !ok {
		return "", false
	}
	v, ok := t.Term.(*rdf.Variable)
	if !ok {
		return "", false
	}
	return v.Name, true
}

// compose applies the solution modifiers to the WHERE pattern, innermost
// first: group, VALUES, extend, HAVING, order, projection, distinct or
// reduced, slice and dataset, then wraps the result in its query form.
func (s *Session) compose(q *query, values algebra.Node) (algebra.Node, error) {
	p := q.where
	if p == nil {
		p = emptyBGP()
	}

	var items []selectItem
	if q.sel != nil {
		items = append(items, q.sel.items...)
	}

	ex := &aggregateExtractor{s: s}
	for i := range items {
		if items[i].expr != nil {
			items[i].expr = ex.extract(items[i].expr)
		}
	}
	having := ex.extractAll(q.mods.having)
	order := ex.extractAll(q.mods.order)

	if len(q.mods.group) > 0 || len(ex.aggs) > 0 {
		keys := algebra.List{}
		bound := map[string]bool{}
		for _, k := range q.mods.group {
			if k.as != nil {
				keys = append(keys, algebra.List{algebra.T(k.as), k.expr})
				bound[k.as.Name] = true
				continue
			}
			keys = append(keys, k.expr)
			if name, ok := variableName(k.expr); ok {
				bound[name] = true
			}
		}
		for i, it := range items {
			if it.expr == nil {
				if !bound[it.variable.Name] {
					return nil, &SemanticError{Line: it.line, Err: fmt.Errorf("%w: %s", errNotGrouped, it.variable)}
				}
				continue
			}
			items[i].expr = ex.sampleFree(it.expr, bound)
			bound[it.variable.Name] = true
		}
		for i, h := range having {
			having[i] = ex.sampleFree(h, bound)
		}
		args := []algebra.Node{keys}
		if len(ex.aggs) > 0 {
			args = append(args, ex.aggs)
		}
		p = algebra.New(algebra.KindGroup, append(args, p)...)
	}

	if values != nil {
		p = join(p, values)
	}

	var bindings algebra.List
	seen := map[string]bool{}
	for _, it := range items {
		if seen[it.variable.Name] && it.expr != nil {
			return nil, &SemanticError{Line: it.line, Err: fmt.Errorf("%w: %s", errExtensionInSelect, it.variable)}
		}
		seen[it.variable.Name] = true
		if it.expr != nil {
			bindings = append(bindings, algebra.List{algebra.T(it.variable), it.expr})
		}
	}
	if len(bindings) > 0 {
		p = algebra.New(algebra.KindExtend, bindings, p)
	}

	switch len(having) {
	case 0:
	case 1:
		p = algebra.New(algebra.KindFilter, having[0], p)
	default:
		p = algebra.New(algebra.KindFilter, algebra.New(algebra.KindExprList, having...), p)
	}
	if len(order) > 0 {
		p = algebra.New(algebra.KindOrder, algebra.List(order), p)
	}

	if q.form == formSelect {
		switch {
		case !q.sel.all:
			vars := make(algebra.List, len(items))
			for i, it := range items {
				vars[i] = algebra.T(it.variable)
			}
			p = algebra.New(algebra.KindProject, vars, p)
		case s.opts.AllVars:
			p = algebra.New(algebra.KindProject, algebra.List{}, p)
		}
		if q.sel.modifier != "" {
			p = algebra.New(q.sel.modifier, p)
		}
	}

	if q.mods.limit >= 0 || q.mods.offset >= 0 {
		bound := func(n int) algebra.Node {
			if n < 0 {
				return algebra.Placeholder
			}
			return algebra.T(rdf.NewIntegerLiteral(int64(n)))
		}
		p = algebra.New(algebra.KindSlice, bound(q.mods.offset), bound(q.mods.limit), p)
	}

	if len(q.datasets) > 0 {
		graphs := make(algebra.List, len(q.datasets))
		for i, d := range q.datasets {
			graphs[i] = d.node()
		}
		p = algebra.New(algebra.KindDataset, graphs, p)
	}

	switch q.form {
	case formConstruct:
		return algebra.New(algebra.KindConstruct, algebra.List(q.template), p), nil
	case formDescribe:
		return algebra.New(algebra.KindDescribe, algebra.List(q.describe), p), nil
	case formAsk:
		return algebra.New(algebra.KindAsk, p), nil
	}
	return p, nil
}

// queryOf fills the dataset, WHERE and modifier parts shared by every form.
func queryOf(form queryForm, m *grammar.Match) *query {
	q := &query{form: form, mods: solutionModifier{limit: -1, offset: -1}}
	for _, r := range m.Results {
		switch v := r.Value.(type) {
		case *projection:
			q.sel = v
		case dataset:
			q.datasets = append(q.datasets, v)
		case solutionModifier:
			q.mods = v
		}
		if r.Name == "WhereClause" {
			q.where = nodeOf(r.Value)
		}
	}
	return q
}

func registerQueryActions() {
	on("QueryUnit", func(s *Session, m *grammar.Match) (any, error) {
		return s.wrapPrologue(nodeOf(m.Results[0].Value)), nil
	})

	on("Query", func(s *Session, m *grammar.Match) (any, error) {
		for _, r := range m.Results {
			if q, ok := r.Value.(*query); ok {
				return s.compose(q, nodeOf(m.Value("ValuesClause")))
			}
		}
		return nil, errors.New("missing query form")
	})

	on("SelectQuery", func(s *Session, m *grammar.Match) (any, error) {
		return queryOf(formSelect, m), nil
	})
	on("SubSelect", func(s *Session, m *grammar.Match) (any, error) {
		values := nodeOf(m.Value("ValuesClause"))
		return s.compose(queryOf(formSelect, m), values)
	})
	on("AskQuery", func(s *Session, m *grammar.Match) (any, error) {
		return queryOf(formAsk, m), nil
	})

	on("ConstructQuery", func(s *Session, m *grammar.Match) (any, error) {
		q := queryOf(formConstruct, m)
		if r, ok := m.Get("ConstructTemplate"); ok {
			q.template, _ = r.Value.([]algebra.Node)
		}
		if r, ok := m.Get("ConstructShortForm"); ok {
			q.template, _ = r.Value.([]algebra.Node)
			q.where = algebra.New(algebra.KindBGP, q.template...)
		}
		return q, nil
	})
	template := func(s *Session, m *grammar.Match) (any, error) {
		patterns, _ := firstValue(m).([]algebra.Node)
		return patterns, nil
	}
	on("ConstructTemplate", template)
	on("ConstructShortForm", template)
	engine.Around("ConstructTemplate",
		func(s *Session) { s.pushMode(modeBlankNodes) },
		func(s *Session) { s.popMode() })

	on("DescribeQuery", func(s *Session, m *grammar.Match) (any, error) {
		q := queryOf(formDescribe, m)
		for _, r := range m.Results {
			if r.Name == "Var" || r.Name == "iri" {
				q.describe = append(q.describe, nodeOf(r.Value))
			}
		}
		if m.Has("*") && q.where != nil {
			for _, v := range algebra.Variables(q.where) {
				if v.Distinguished {
					q.describe = append(q.describe, algebra.T(v))
				}
			}
		}
		return q, nil
	})

	on("SelectClause", func(s *Session, m *grammar.Match) (any, error) {
		p := &projection{}
		for _, r := range m.Results {
			switch v := r.Value.(type) {
			case *rdf.Variable:
				p.items = append(p.items, selectItem{variable: v, line: r.Line})
			case selectItem:
				p.items = append(p.items, v)
			}
			switch r.Name {
			case "DISTINCT":
				p.modifier = algebra.KindDistinct
			case "REDUCED":
				p.modifier = algebra.KindReduced
			case "*":
				p.all = true
			}
		}
		return p, nil
	})
	on("SelectExpression", func(s *Session, m *grammar.Match) (any, error) {
		return selectItem{
			expr:     nodeOf(m.Results[1].Value),
			variable: m.Results[3].Value.(*rdf.Variable),
			line:     m.Line,
		}, nil
	})

	on("DatasetClause", func(s *Session, m *grammar.Match) (any, error) {
		return dataset{iri: m.Value("iri").(*rdf.NamedNode), named: m.Has("NAMED")}, nil
	})
	on("WhereClause", func(s *Session, m *grammar.Match) (any, error) {
		return nodeOf(firstValue(m)), nil
	})

	on("SolutionModifier", func(s *Session, m *grammar.Match) (any, error) {
		mods := solutionModifier{limit: -1, offset: -1}
		for _, r := range m.Results {
			switch r.Name {
			case "GroupClause":
				mods.group = r.Value.([]groupKey)
			case "HavingClause":
				mods.having = r.Value.([]algebra.Node)
			case "OrderClause":
				mods.order = r.Value.([]algebra.Node)
			case "LimitClause":
				mods.limit = r.Value.(int)
			case "OffsetClause":
				mods.offset = r.Value.(int)
			}
		}
		return mods, nil
	})

	on("GroupClause", func(s *Session, m *grammar.Match) (any, error) {
		var keys []groupKey
		for _, r := range m.All("GroupCondition") {
			keys = append(keys, r.Value.(groupKey))
		}
		return keys, nil
	})
	on("GroupCondition", func(s *Session, m *grammar.Match) (any, error) {
		ops := operands(m)
		if m.Has("AS") {
			return groupKey{expr: ops[0], as: termOf(ops[1]).(*rdf.Variable)}, nil
		}
		return groupKey{expr: ops[0]}, nil
	})
	on("HavingClause", func(s *Session, m *grammar.Match) (any, error) {
		return operands(m), nil
	})
	on("OrderClause", func(s *Session, m *grammar.Match) (any, error) {
		return operands(m), nil
	})
	on("OrderCondition", func(s *Session, m *grammar.Match) (any, error) {
		expr := nodeOf(firstValue(m))
		switch m.Results[0].Name {
		case "ASC":
			return algebra.New("asc", expr), nil
		case "DESC":
			return algebra.New("desc", expr), nil
		}
		return expr, nil
	})

	count := func(s *Session, m *grammar.Match) (any, error) {
		n, err := strconv.Atoi(m.Results[1].Text())
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", m.Results[0].Text(), m.Results[1].Text(), err)
		}
		return n, nil
	}
	on("LimitClause", count)
	on("OffsetClause", count)
}
