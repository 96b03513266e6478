package parser

import (
	"fmt"
	"strings"

	"github.com/aleksaelezovic/sparqlir/pkg/rdf"
	"github.com/aleksaelezovic/sparqlir/pkg/sparql/algebra"
	"github.com/aleksaelezovic/sparqlir/pkg/sparql/grammar"
)

// termOf extracts the RDF term carried by an action value.
func termOf(v any) rdf.Term {
	switch t := v.(type) {
	case algebra.Term:
		return t.Term
	case graphNode:
		return t.term
	case rdf.Term:
		return t
	}
	return nil
}

// nodeOf converts an action value to an algebra node, wrapping bare terms.
func nodeOf(v any) algebra.Node {
	switch n := v.(type) {
	case algebra.Node:
		return n
	case graphNode:
		return algebra.T(n.term)
	case rdf.Term:
		return algebra.T(n)
	}
	return nil
}

// operands returns the values of all non-terminal results as nodes.
func operands(m *grammar.Match) []algebra.Node {
	var out []algebra.Node
	for _, r := range m.Results {
		if r.Token != nil {
			continue
		}
		if n := nodeOf(r.Value); n != nil {
			out = append(out, n)
		}
	}
	return out
}

// firstValue returns the value of the first non-terminal result.
func firstValue(m *grammar.Match) any {
	for _, r := range m.Results {
		if r.Token == nil {
			return r.Value
		}
	}
	return nil
}

func registerTermActions() {
	on("BaseDecl", func(s *Session, m *grammar.Match) (any, error) {
		iri, err := s.ResolveIRI(m.Results[1].Text())
		if err != nil {
			return nil, err
		}
		s.SetBase(iri.IRI)
		return nil, nil
	})

	on("PrefixDecl", func(s *Session, m *grammar.Match) (any, error) {
		iri, err := s.ResolveIRI(m.Results[2].Text())
		if err != nil {
			return nil, err
		}
		return nil, s.DeclarePrefix(strings.TrimSuffix(m.Results[1].Text(), ":"), iri.IRI)
	})

	on("VersionDecl", func(s *Session, m *grammar.Match) (any, error) {
		s.SetVersion(m.Results[1].Text())
		return nil, nil
	})

	on("Var", func(s *Session, m *grammar.Match) (any, error) {
		return s.Variable(m.Results[0].Text()), nil
	})

	on("iri", func(s *Session, m *grammar.Match) (any, error) {
		r := m.Results[0]
		if r.Name == "IRIREF" {
			return s.ResolveIRI(r.Text())
		}
		return s.ResolvePrefixedName(r.Text())
	})

	on("BlankNode", func(s *Session, m *grammar.Match) (any, error) {
		r := m.Results[0]
		if r.Name == "ANON" {
			return s.BlankNode("")
		}
		return s.BlankNode(r.Text())
	})

	on("String", func(s *Session, m *grammar.Match) (any, error) {
		return m.Results[0].Text(), nil
	})

	on("RDFLiteral", func(s *Session, m *grammar.Match) (any, error) {
		value := m.Results[0].Value.(string)
		var lit *rdf.Literal
		switch {
		case m.Has("LANGTAG"):
			tag := m.Value("LANGTAG").(string)
			lang, dir, _ := strings.Cut(tag, "--")
			if s.opts.Validate {
				if err := rdf.ValidateLanguage(lang, dir); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrInvalidTerm, err)
				}
			}
			lit = rdf.NewLiteralWithDirection(value, lang, dir)
		case m.Has("iri"):
			lit = rdf.NewLiteralWithDatatype(value, m.Value("iri").(*rdf.NamedNode))
		default:
			lit = rdf.NewLiteral(value)
		}
		if s.opts.Validate {
			if err := rdf.ValidateLiteral(lit); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidTerm, err)
			}
		}
		return lit, nil
	})

	numeric := func(s *Session, m *grammar.Match) (any, error) {
		r := m.Results[0]
		var dt *rdf.NamedNode
		switch r.Name {
		case "INTEGER", "INTEGER_POSITIVE", "INTEGER_NEGATIVE":
			dt = rdf.XSDInteger
		case "DECIMAL", "DECIMAL_POSITIVE", "DECIMAL_NEGATIVE":
			dt = rdf.XSDDecimal
		default:
			dt = rdf.XSDDouble
		}
		return rdf.NewLiteralWithDatatype(r.Text(), dt), nil
	}
	on("NumericLiteralUnsigned", numeric)
	on("NumericLiteralPositive", numeric)
	on("NumericLiteralNegative", numeric)

	on("BooleanLiteral", func(s *Session, m *grammar.Match) (any, error) {
		return rdf.NewLiteralWithDatatype(m.Results[0].Text(), rdf.XSDBoolean), nil
	})

	on("VarOrTerm", func(s *Session, m *grammar.Match) (any, error) {
		if m.Results[0].Name == "NIL" {
			return graphNode{term: rdf.RDFNil}, nil
		}
		return graphNode{term: termOf(m.Results[0].Value)}, nil
	})

	on("Verb", func(s *Session, m *grammar.Match) (any, error) {
		if m.Results[0].Name == "a" {
			return algebra.T(rdf.RDFType), nil
		}
		return algebra.T(termOf(m.Results[0].Value)), nil
	})

	on("TripleTerm", func(s *Session, m *grammar.Match) (any, error) {
		subject := termOf(m.Value("TripleTermSubject"))
		predicate := termOf(m.Value("Verb"))
		object := termOf(m.Value("TripleTermObject"))
		tt, err := rdf.NewTripleTerm(subject, predicate, object)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReification, err)
		}
		return tt, nil
	})
	tripleTermPart := func(s *Session, m *grammar.Match) (any, error) {
		return termOf(m.Results[0].Value), nil
	}
	on("TripleTermSubject", tripleTermPart)
	on("TripleTermObject", tripleTermPart)
}
