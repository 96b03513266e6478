package algebra

import "github.com/aleksaelezovic/sparqlir/pkg/rdf"

// Walk visits n and its descendants in pre-order. Children are skipped when
// fn returns false.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch v := n.(type) {
	case *Op:
		for _, a := range v.Args {
			Walk(a, fn)
		}
	case List:
		for _, a := range v {
			Walk(a, fn)
		}
	}
}

// Rewrite returns a copy of n in which every node for which fn reports true
// is replaced by fn's result. Replaced nodes are not descended into.
func Rewrite(n Node, fn func(Node) (Node, bool)) Node {
	if n == nil {
		return nil
	}
	if r, ok := fn(n); ok {
		return r
	}
	switch v := n.(type) {
	case *Op:
		out := &Op{Kind: v.Kind, Args: make([]Node, len(v.Args))}
		for i, a := range v.Args {
			out.Args[i] = Rewrite(a, fn)
		}
		return out
	case List:
		out := make(List, len(v))
		for i, a := range v {
			out[i] = Rewrite(a, fn)
		}
		return out
	}
	return n
}

// ContainsAggregate reports whether an aggregate call occurs in n.
func ContainsAggregate(n Node) bool {
	found := false
	Walk(n, func(c Node) bool {
		if op, ok := c.(*Op); ok && IsAggregate(op.Kind) {
			found = true
		}
		return !found
	})
	return found
}

// Variables returns the distinct variables occurring in n, in order of
// first occurrence. Variables nested in triple terms are included.
func Variables(n Node) []*rdf.Variable {
	var out []*rdf.Variable
	seen := map[string]bool{}
	var add func(t rdf.Term)
	add = func(t rdf.Term) {
		switch tt := t.(type) {
		case *rdf.Variable:
			if !seen[tt.String()] {
				seen[tt.String()] = true
				out = append(out, tt)
			}
		case *rdf.TripleTerm:
			add(tt.Subject)
			add(tt.Predicate)
			add(tt.Object)
		}
	}
	Walk(n, func(c Node) bool {
		if t, ok := c.(Term); ok {
			add(t.Term)
		}
		return true
	})
	return out
}

// HasVariables reports whether any variable occurs in n.
func HasVariables(n Node) bool {
	return len(Variables(n)) > 0
}

// HasBlankNodes reports whether any blank node occurs in n.
func HasBlankNodes(n Node) bool {
	found := false
	Walk(n, func(c Node) bool {
		if t, ok := c.(Term); ok && rdf.HasBlankNode(t.Term) {
			found = true
		}
		return !found
	})
	return found
}
