package parser

import (
	"fmt"

	"github.com/aleksaelezovic/sparqlir/pkg/rdf"
	"github.com/aleksaelezovic/sparqlir/pkg/sparql/algebra"
	"github.com/aleksaelezovic/sparqlir/pkg/sparql/grammar"
)

// graphNode is a term in subject or object position together with the
// patterns its construction produced (collections, [ ... ] lists and
// reified triples).
type graphNode struct {
	term     rdf.Term
	patterns []algebra.Node
}

// annotation is either a reifier "~ r" or an annotation block {| ... |}.
type annotation struct {
	reifier rdf.Term
	block   propertyList
}

type object struct {
	node        graphNode
	annotations []annotation
}

// predicateObjects pairs a verb (a term, or a path operator) with its
// objects.
type predicateObjects struct {
	verb    algebra.Node
	objects []object
}

type propertyList []predicateObjects

func triple(s, p, o rdf.Term) *algebra.Op {
	return algebra.New(algebra.KindTriple, algebra.T(s), algebra.T(p), algebra.T(o))
}

// expand emits the patterns of subject and every predicate/object pair in
// plist, nested constructions first.
func (s *Session) expand(subject graphNode, plist propertyList) ([]algebra.Node, error) {
	out := append([]algebra.Node(nil), subject.patterns...)
	for _, po := range plist {
		for _, obj := range po.objects {
			out = append(out, obj.node.patterns...)
			pred, simple := po.verb.(algebra.Term)
			if !simple {
				if len(obj.annotations) > 0 {
					return nil, fmt.Errorf("%w: annotation on a property path", ErrReification)
				}
				out = append(out, algebra.New(algebra.KindPath,
					algebra.T(subject.term), po.verb, algebra.T(obj.node.term)))
				continue
			}
			out = append(out, triple(subject.term, pred.Term, obj.node.term))
			if len(obj.annotations) == 0 {
				continue
			}
			tt, err := rdf.NewTripleTerm(subject.term, pred.Term, obj.node.term)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrReification, err)
			}
			annotated, err := s.annotate(tt, obj.annotations)
			if err != nil {
				return nil, err
			}
			out = append(out, annotated...)
		}
	}
	return out, nil
}

// annotate emits the reification patterns for the annotations of tt.
func (s *Session) annotate(tt *rdf.TripleTerm, annotations []annotation) ([]algebra.Node, error) {
	s.pushReifier(tt)
	defer s.popReifier()

	var out []algebra.Node
	for _, a := range annotations {
		block := len(a.block) > 0
		r, reifies, err := s.reifierFor(a.reifier, block)
		if err != nil {
			return nil, err
		}
		if reifies != nil {
			out = append(out, reifies)
		}
		if block {
			nested, err := s.expand(graphNode{term: r}, a.block)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		}
	}
	return out, nil
}

// collection builds an rdf:first/rdf:rest list over items.
func (s *Session) collection(items []graphNode) (graphNode, error) {
	var patterns []algebra.Node
	cells := make([]rdf.Term, len(items))
	for i, item := range items {
		patterns = append(patterns, item.patterns...)
		cell, err := s.BlankNode("")
		if err != nil {
			return graphNode{}, err
		}
		cells[i] = cell
	}
	for i, item := range items {
		var rest rdf.Term = rdf.RDFNil
		if i+1 < len(cells) {
			rest = cells[i+1]
		}
		patterns = append(patterns,
			triple(cells[i], rdf.RDFFirst, item.term),
			triple(cells[i], rdf.RDFRest, rest))
	}
	return graphNode{term: cells[0], patterns: patterns}, nil
}

// reify builds the reifier node of << s p o ~r >>. The triple itself is not
// asserted.
func (s *Session) reify(subject graphNode, verb rdf.Term, object graphNode, explicit rdf.Term) (graphNode, error) {
	tt, err := rdf.NewTripleTerm(subject.term, verb, object.term)
	if err != nil {
		return graphNode{}, fmt.Errorf("%w: %v", ErrReification, err)
	}
	s.pushReifier(tt)
	defer s.popReifier()
	r, reifies, err := s.reifierFor(explicit, false)
	if err != nil {
		return graphNode{}, err
	}
	patterns := append(append([]algebra.Node(nil), subject.patterns...), object.patterns...)
	if reifies != nil {
		patterns = append(patterns, reifies)
	}
	return graphNode{term: r, patterns: patterns}, nil
}

func asGraphNode(v any) graphNode {
	if g, ok := v.(graphNode); ok {
		return g
	}
	return graphNode{term: termOf(v)}
}

func registerTripleActions() {
	triplesSameSubject := func(s *Session, m *grammar.Match) (any, error) {
		subject := asGraphNode(m.Results[0].Value)
		var plist propertyList
		if len(m.Results) > 1 {
			plist = m.Results[1].Value.(propertyList)
		}
		return s.expand(subject, plist)
	}
	on("TriplesSameSubject", triplesSameSubject)
	on("TriplesSameSubjectPath", triplesSameSubject)

	// TriplesTemplate and TriplesBlock concatenate their nested pattern lists.
	concat := func(s *Session, m *grammar.Match) (any, error) {
		var out []algebra.Node
		for _, r := range m.Results {
			if patterns, ok := r.Value.([]algebra.Node); ok {
				out = append(out, patterns...)
			}
		}
		return out, nil
	}
	on("TriplesTemplate", concat)
	on("TriplesBlock", concat)

	propertyListAction := func(s *Session, m *grammar.Match) (any, error) {
		var plist propertyList
		for _, r := range m.Results {
			switch v := r.Value.(type) {
			case algebra.Node:
				plist = append(plist, predicateObjects{verb: v})
			case []object:
				plist[len(plist)-1].objects = v
			}
		}
		return plist, nil
	}
	on("PropertyListNotEmpty", propertyListAction)
	on("PropertyListPathNotEmpty", propertyListAction)

	on("VerbPath", func(s *Session, m *grammar.Match) (any, error) {
		return nodeOf(firstValue(m)), nil
	})
	on("VerbSimple", func(s *Session, m *grammar.Match) (any, error) {
		return nodeOf(firstValue(m)), nil
	})

	objectList := func(s *Session, m *grammar.Match) (any, error) {
		var objects []object
		for _, r := range m.Results {
			if o, ok := r.Value.(object); ok {
				objects = append(objects, o)
			}
		}
		return objects, nil
	}
	on("ObjectList", objectList)
	on("ObjectListPath", objectList)

	objectAction := func(s *Session, m *grammar.Match) (any, error) {
		o := object{node: asGraphNode(m.Results[0].Value)}
		for _, r := range m.Results[1:] {
			if a, ok := r.Value.(annotation); ok {
				o.annotations = append(o.annotations, a)
			}
		}
		return o, nil
	}
	on("Object", objectAction)
	on("ObjectPath", objectAction)

	on("Reifier", func(s *Session, m *grammar.Match) (any, error) {
		return annotation{reifier: termOf(firstValue(m))}, nil
	})
	annotationBlock := func(s *Session, m *grammar.Match) (any, error) {
		return annotation{block: m.Results[1].Value.(propertyList)}, nil
	}
	on("AnnotationBlock", annotationBlock)
	on("AnnotationBlockPath", annotationBlock)

	// The subject of [ ... ] is minted once the bracket has matched, so it
	// is numbered before the nodes nested inside it.
	enterNode := func(s *Session) { s.pushNode(nil) }
	leaveNode := func(s *Session) { s.popNode() }
	on("AnonSubject", func(s *Session, m *grammar.Match) (any, error) {
		t, err := s.BlankNode("")
		if err != nil {
			return nil, err
		}
		s.nodes[len(s.nodes)-1] = t
		return nil, nil
	})
	blankNodePropertyList := func(s *Session, m *grammar.Match) (any, error) {
		subject := graphNode{term: s.currentNode()}
		var plist propertyList
		for _, r := range m.Results {
			if p, ok := r.Value.(propertyList); ok {
				plist = p
			}
		}
		patterns, err := s.expand(subject, plist)
		if err != nil {
			return nil, err
		}
		return graphNode{term: subject.term, patterns: patterns}, nil
	}
	for _, name := range []string{"BlankNodePropertyList", "BlankNodePropertyListPath"} {
		engine.Around(name, enterNode, leaveNode)
		on(name, blankNodePropertyList)
	}

	collection := func(s *Session, m *grammar.Match) (any, error) {
		var items []graphNode
		for _, r := range m.Results {
			if r.Token == nil {
				items = append(items, asGraphNode(r.Value))
			}
		}
		return s.collection(items)
	}
	on("Collection", collection)
	on("CollectionPath", collection)

	on("ReifiedTriple", func(s *Session, m *grammar.Match) (any, error) {
		var explicit rdf.Term
		if a, ok := m.Value("Reifier").(annotation); ok {
			explicit = a.reifier
		}
		return s.reify(
			asGraphNode(m.Value("ReifiedTripleSubject")),
			termOf(m.Value("Verb")),
			asGraphNode(m.Value("ReifiedTripleObject")),
			explicit)
	})
	reifiedPart := func(s *Session, m *grammar.Match) (any, error) {
		return asGraphNode(m.Results[0].Value), nil
	}
	on("ReifiedTripleSubject", reifiedPart)
	on("ReifiedTripleObject", reifiedPart)
}
