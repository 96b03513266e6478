package parser

import (
	"fmt"
	"strconv"

	"github.com/aleksaelezovic/sparqlir/pkg/rdf"
	"github.com/aleksaelezovic/sparqlir/pkg/sparql/algebra"
	"github.com/aleksaelezovic/sparqlir/pkg/sparql/grammar"
)

// Path operators.
const (
	pathAlt      = "alt"
	pathSeq      = "seq"
	pathReverse  = "reverse"
	pathNotOneOf = "notoneof"
	pathZeroOne  = "path?"
	pathZeroMore = "path*"
	pathOneMore  = "path+"
	pathRange    = "pathRange"
)

// pathMod is a trailing path modifier. For {m,n} ranges max is -1 when
// unbounded.
type pathMod struct {
	kind     string
	min, max int
}

func (p pathMod) wrap(path algebra.Node) algebra.Node {
	if p.kind != pathRange {
		return algebra.New(p.kind, path)
	}
	var max algebra.Node = algebra.Placeholder
	if p.max >= 0 {
		max = algebra.T(rdf.NewIntegerLiteral(int64(p.max)))
	}
	return algebra.New(pathRange, algebra.T(rdf.NewIntegerLiteral(int64(p.min))), max, path)
}

// foldLeft combines operands pairwise from the left: a|b|c is
// (alt (alt a b) c).
func foldLeft(kind string, operands []algebra.Node) algebra.Node {
	acc := operands[0]
	for _, n := range operands[1:] {
		acc = algebra.New(kind, acc, n)
	}
	return acc
}

func registerPathActions() {
	on("PathAlternative", func(s *Session, m *grammar.Match) (any, error) {
		return foldLeft(pathAlt, operands(m)), nil
	})
	on("PathSequence", func(s *Session, m *grammar.Match) (any, error) {
		return foldLeft(pathSeq, operands(m)), nil
	})

	on("PathEltOrInverse", func(s *Session, m *grammar.Match) (any, error) {
		path := nodeOf(firstValue(m))
		if m.Has("^") {
			return algebra.New(pathReverse, path), nil
		}
		return path, nil
	})

	on("PathElt", func(s *Session, m *grammar.Match) (any, error) {
		path := nodeOf(m.Results[0].Value)
		if mod, ok := m.Value("PathMod").(pathMod); ok {
			return mod.wrap(path), nil
		}
		return path, nil
	})

	on("PathMod", func(s *Session, m *grammar.Match) (any, error) {
		switch m.Results[0].Name {
		case "?":
			return pathMod{kind: pathZeroOne}, nil
		case "*":
			return pathMod{kind: pathZeroMore}, nil
		case "+":
			return pathMod{kind: pathOneMore}, nil
		}
		return m.Value("PathRange"), nil
	})

	on("PathRange", func(s *Session, m *grammar.Match) (any, error) {
		mod := pathMod{kind: pathRange, max: -1}
		var bounds []int
		comma := false
		for _, r := range m.Results {
			if r.Name == "," {
				comma = true
				continue
			}
			n, err := strconv.Atoi(r.Text())
			if err != nil {
				return nil, fmt.Errorf("path length %q: %w", r.Text(), err)
			}
			if !comma {
				mod.min = n
				mod.max = n
			} else {
				mod.max = n
			}
			bounds = append(bounds, n)
		}
		if comma && len(bounds) == 1 && m.Results[0].Name != "," {
			mod.max = -1
		}
		if mod.max >= 0 && mod.max < mod.min {
			return nil, fmt.Errorf("path length range {%d,%d} is empty", mod.min, mod.max)
		}
		return mod, nil
	})

	on("PathPrimary", func(s *Session, m *grammar.Match) (any, error) {
		if m.Results[0].Name == "a" {
			return algebra.T(rdf.RDFType), nil
		}
		return nodeOf(firstValue(m)), nil
	})

	on("PathNegatedPropertySet", func(s *Session, m *grammar.Match) (any, error) {
		return algebra.New(pathNotOneOf, operands(m)...), nil
	})

	on("PathOneInPropertySet", func(s *Session, m *grammar.Match) (any, error) {
		var p algebra.Node = algebra.T(rdf.RDFType)
		if v := firstValue(m); v != nil {
			p = nodeOf(v)
		}
		if m.Results[0].Name == "^" {
			return algebra.New(pathReverse, p), nil
		}
		return p, nil
	})
}
