package parser

import (
	"errors"

	"github.com/aleksaelezovic/sparqlir/pkg/rdf"
	"github.com/aleksaelezovic/sparqlir/pkg/sparql/algebra"
	"github.com/aleksaelezovic/sparqlir/pkg/sparql/grammar"
)

//lint:ignore ST1005 established message text
var (
	errInsertDataVariables = errors.New("InsertData contains variable operands")
	errDeleteDataVariables = errors.New("DeleteData contains variable operands")
	errDeleteDataBlank     = errors.New("DeleteData contains BNode operands")
	errDeleteWhereBlank    = errors.New("DeleteWhere contains BNode operands")
	errDeleteClauseBlank   = errors.New("DeleteClause contains BNode operands")
)

// silent returns the leading "silent" operand when SILENT was given.
func silent(m *grammar.Match) []algebra.Node {
	if m.Has("SILENT") {
		return []algebra.Node{algebra.Symbol("silent")}
	}
	return nil
}

func quadsOf(v any) algebra.List {
	patterns, _ := v.([]algebra.Node)
	return algebra.List(append([]algebra.Node{}, patterns...))
}

func registerUpdateActions() {
	on("UpdateUnit", func(s *Session, m *grammar.Match) (any, error) {
		ops, _ := m.Results[0].Value.([]algebra.Node)
		return s.wrapPrologue(algebra.New(algebra.KindUpdate, ops...)), nil
	})

	on("Update", func(s *Session, m *grammar.Match) (any, error) {
		var ops []algebra.Node
		for _, r := range m.Results {
			switch v := r.Value.(type) {
			case []algebra.Node:
				ops = append(ops, v...)
			case algebra.Node:
				ops = append(ops, v)
			}
		}
		return ops, nil
	})

	on("Load", func(s *Session, m *grammar.Match) (any, error) {
		return algebra.New("load", append(silent(m), operands(m)...)...), nil
	})
	graphManagement := func(kind string) func(*Session, *grammar.Match) (any, error) {
		return func(s *Session, m *grammar.Match) (any, error) {
			return algebra.New(kind, append(silent(m), operands(m)...)...), nil
		}
	}
	on("Clear", graphManagement("clear"))
	on("Drop", graphManagement("drop"))
	on("Create", graphManagement("create"))
	on("Add", graphManagement("add"))
	on("Move", graphManagement("move"))
	on("Copy", graphManagement("copy"))

	on("GraphOrDefault", func(s *Session, m *grammar.Match) (any, error) {
		if m.Results[0].Name == "DEFAULT" {
			return algebra.Symbol("default"), nil
		}
		return algebra.T(m.Value("iri").(*rdf.NamedNode)), nil
	})
	on("GraphRefAll", func(s *Session, m *grammar.Match) (any, error) {
		if iri, ok := m.Value("iri").(*rdf.NamedNode); ok {
			return algebra.T(iri), nil
		}
		switch m.Results[0].Name {
		case "NAMED":
			return algebra.Symbol("named"), nil
		case "ALL":
			return algebra.Symbol("all"), nil
		}
		return algebra.Symbol("default"), nil
	})

	on("InsertData", func(s *Session, m *grammar.Match) (any, error) {
		quads := quadsOf(m.Value("QuadData"))
		if algebra.HasVariables(quads) {
			return nil, errInsertDataVariables
		}
		return algebra.New("insertData", quads), nil
	})
	on("DeleteData", func(s *Session, m *grammar.Match) (any, error) {
		quads := quadsOf(m.Value("QuadData"))
		if algebra.HasVariables(quads) {
			return nil, errDeleteDataVariables
		}
		if algebra.HasBlankNodes(quads) {
			return nil, errDeleteDataBlank
		}
		return algebra.New("deleteData", quads), nil
	})
	on("DeleteWhere", func(s *Session, m *grammar.Match) (any, error) {
		quads := quadsOf(m.Value("QuadPattern"))
		if algebra.HasBlankNodes(quads) {
			return nil, errDeleteWhereBlank
		}
		return algebra.New("deleteWhere", quads), nil
	})

	on("Modify", func(s *Session, m *grammar.Match) (any, error) {
		var with *rdf.NamedNode
		var using algebra.List
		var pattern algebra.Node
		var clauses []algebra.Node
		for _, r := range m.Results {
			switch r.Name {
			case "iri":
				with = r.Value.(*rdf.NamedNode)
			case "UsingClause":
				using = append(using, r.Value.(dataset).node())
			case "DeleteClause", "InsertClause":
				clauses = append(clauses, r.Value.(algebra.Node))
			case "GroupGraphPattern":
				pattern = nodeOf(r.Value)
			}
		}
		if len(using) > 0 {
			pattern = algebra.New("using", using, pattern)
		}
		var op algebra.Node = algebra.New("modify", append([]algebra.Node{pattern}, clauses...)...)
		if with != nil {
			op = algebra.New("with", algebra.T(with), op)
		}
		return op, nil
	})
	on("DeleteClause", func(s *Session, m *grammar.Match) (any, error) {
		quads := quadsOf(m.Value("QuadPattern"))
		if algebra.HasBlankNodes(quads) {
			return nil, errDeleteClauseBlank
		}
		return algebra.New("delete", quads), nil
	})
	on("InsertClause", func(s *Session, m *grammar.Match) (any, error) {
		return algebra.New("insert", quadsOf(m.Value("QuadPattern"))), nil
	})
	on("UsingClause", func(s *Session, m *grammar.Match) (any, error) {
		return dataset{iri: m.Value("iri").(*rdf.NamedNode), named: m.Has("NAMED")}, nil
	})

	quads := func(s *Session, m *grammar.Match) (any, error) {
		var out []algebra.Node
		for _, r := range m.Results {
			switch v := r.Value.(type) {
			case []algebra.Node:
				out = append(out, v...)
			case algebra.Node:
				out = append(out, v)
			}
		}
		return out, nil
	}
	on("Quads", quads)
	on("QuadPattern", func(s *Session, m *grammar.Match) (any, error) {
		return m.Value("Quads"), nil
	})
	on("QuadData", func(s *Session, m *grammar.Match) (any, error) {
		return m.Value("Quads"), nil
	})
	on("QuadsNotTriples", func(s *Session, m *grammar.Match) (any, error) {
		graph := nodeOf(m.Results[1].Value)
		triples, _ := m.Value("TriplesTemplate").([]algebra.Node)
		return algebra.New(algebra.KindGraph, graph, algebra.List(append([]algebra.Node{}, triples...))), nil
	})

	// Templates and data blocks hold real blank nodes. Labels in a data
	// block may not be reused once it closes.
	engine.Around("QuadPattern",
		func(s *Session) { s.pushMode(modeBlankNodes) },
		func(s *Session) { s.popMode() })
	engine.Around("QuadData",
		func(s *Session) { s.pushMode(modeBlankNodes) },
		func(s *Session) {
			s.popMode()
			s.FreezeBlankNodes()
		})
}
