package parser

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/aleksaelezovic/sparqlir/pkg/rdf"
	"github.com/aleksaelezovic/sparqlir/pkg/sparql/algebra"
)

type blankState int

const (
	blankOpen blankState = iota
	blankFrozen
)

type blankEntry struct {
	state blankState
	node  *rdf.BlankNode
}

// blankMode selects what a blank node in the source turns into.
type blankMode int

const (
	// existential variables, as in WHERE patterns
	modeVariables blankMode = iota
	// real blank nodes, as in templates and DATA blocks
	modeBlankNodes
)

type prefixDecl struct {
	prefix string
	iri    string
}

type reifierFrame struct {
	triple *rdf.TripleTerm
	// reifier named by the last "~", still waiting for its annotation block
	pending rdf.Term
}

// Session is the per-parse state consulted by grammar actions: the prologue
// in effect, blank node and variable allocation, and the reifier stack.
type Session struct {
	opts   Options
	logger *slog.Logger

	base     string
	prefixes map[string]string
	declared []prefixDecl
	version  string

	// Names left unresolved so far, kept so that a later BASE or PREFIX
	// redeclaration can pin them to the binding they were written under.
	pnameNodes    map[string][]*rdf.NamedNode
	relativeNodes []*rdf.NamedNode

	modes      []blankMode
	blankNodes map[string]*blankEntry
	usedIDs    map[string]bool
	anonCount  int

	labelVars map[string]*rdf.Variable
	variables map[string]*rdf.Variable
	freshVars int
	aggVars   int

	reifiers []*reifierFrame
	nodes    []rdf.Term
}

// NewSession creates the state for a single parse.
func NewSession(opts Options) (*Session, error) {
	if opts.AnonBase == "" {
		opts.AnonBase = "b"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Session{
		opts:       opts,
		logger:     logger,
		base:       opts.BaseURI,
		prefixes:   map[string]string{},
		pnameNodes: map[string][]*rdf.NamedNode{},
		blankNodes: map[string]*blankEntry{},
		usedIDs:    map[string]bool{},
		labelVars:  map[string]*rdf.Variable{},
		variables:  map[string]*rdf.Variable{},
	}
	if opts.Validate {
		if err := rdf.ValidateBlankNodeLabel(opts.AnonBase + "0"); err != nil {
			return nil, fmt.Errorf("anon base: %w", err)
		}
	}
	for prefix, iri := range opts.Prefixes {
		if opts.Validate {
			if err := rdf.ValidatePrefix(prefix); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidTerm, err)
			}
		}
		s.prefixes[prefix] = iri
	}
	return s, nil
}

// Base returns the base IRI in effect.
func (s *Session) Base() string { return s.base }

// Version returns the declared language version, if any.
func (s *Session) Version() string { return s.version }

// SetBase replaces the base IRI. The argument is already resolved against
// the previous base when IRIs are being resolved.
func (s *Session) SetBase(iri string) {
	if !s.opts.ResolveIRIs && s.base != "" && iri != s.base {
		for _, n := range s.relativeNodes {
			n.IRI = rdf.ResolveIRI(s.base, n.IRI)
		}
		for prefix, nodes := range s.pnameNodes {
			for _, n := range nodes {
				if !rdf.IsAbsoluteIRI(n.IRI) {
					n.IRI = rdf.ResolveIRI(s.base, n.IRI)
					n.PName = ""
				}
			}
			s.pnameNodes[prefix] = nil
		}
		s.relativeNodes = nil
	}
	s.base = iri
	s.logger.Debug("base declared", "iri", iri)
}

// SetVersion records a VERSION declaration.
func (s *Session) SetVersion(v string) {
	s.version = v
}

// DeclarePrefix binds prefix (without the trailing colon) to iri for the rest
// of the parse.
func (s *Session) DeclarePrefix(prefix, iri string) error {
	if s.opts.Validate {
		if err := rdf.ValidatePrefix(prefix); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTerm, err)
		}
	}
	if old, ok := s.prefixes[prefix]; ok && old != iri {
		// names already written with the old binding keep its meaning
		for _, n := range s.pnameNodes[prefix] {
			n.PName = ""
		}
		delete(s.pnameNodes, prefix)
	}
	s.prefixes[prefix] = iri
	for i, d := range s.declared {
		if d.prefix == prefix {
			s.declared[i].iri = iri
			return nil
		}
	}
	s.declared = append(s.declared, prefixDecl{prefix: prefix, iri: iri})
	s.logger.Debug("prefix declared", "prefix", prefix, "iri", iri)
	return nil
}

// ResolveIRI turns the content of an IRIREF into a named node, resolving it
// against the base when IRIs are being resolved.
func (s *Session) ResolveIRI(lexical string) (*rdf.NamedNode, error) {
	if s.opts.Validate {
		if err := rdf.ValidateIRI(lexical); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTerm, err)
		}
	}
	if !s.opts.ResolveIRIs {
		node := rdf.NewNamedNode(lexical)
		if !rdf.IsAbsoluteIRI(lexical) {
			s.relativeNodes = append(s.relativeNodes, node)
		}
		return node, nil
	}
	return rdf.NewNamedNode(rdf.ResolveIRI(s.base, lexical)), nil
}

// ResolvePrefixedName expands a prefixed name written as "prefix:local".
func (s *Session) ResolvePrefixedName(pname string) (*rdf.NamedNode, error) {
	prefix, local, _ := strings.Cut(pname, ":")
	ns, ok := s.prefixes[prefix]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUndefinedPrefix, prefix+":")
	}
	local = unescapeLocal(local)
	if strings.HasSuffix(ns, "#") && strings.HasPrefix(local, "#") {
		local = local[1:]
	}
	iri := ns + local
	if s.opts.Validate {
		if err := rdf.ValidateIRI(iri); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTerm, err)
		}
	}
	node := rdf.NewNamedNode(iri)
	if !s.opts.ResolveIRIs {
		node.PName = pname
		s.pnameNodes[prefix] = append(s.pnameNodes[prefix], node)
	} else if s.base != "" && !rdf.IsAbsoluteIRI(iri) {
		node.IRI = rdf.ResolveIRI(s.base, iri)
	}
	return node, nil
}

// unescapeLocal removes the backslash from PN_LOCAL_ESC sequences.
func unescapeLocal(local string) string {
	if !strings.Contains(local, `\`) {
		return local
	}
	var b strings.Builder
	for i := 0; i < len(local); i++ {
		if local[i] == '\\' && i+1 < len(local) {
			i++
		}
		b.WriteByte(local[i])
	}
	return b.String()
}

func (s *Session) pushMode(m blankMode) { s.modes = append(s.modes, m) }

func (s *Session) popMode() {
	if len(s.modes) > 0 {
		s.modes = s.modes[:len(s.modes)-1]
	}
}

func (s *Session) blankNodeMode() bool {
	return len(s.modes) > 0 && s.modes[len(s.modes)-1] == modeBlankNodes
}

// BlankNode allocates the term for a blank node in the source. An empty
// label denotes an anonymous node. Outside templates and data blocks blank
// nodes become non-distinguished variables.
func (s *Session) BlankNode(label string) (rdf.Term, error) {
	if !s.blankNodeMode() {
		if label == "" {
			return s.FreshVariable(), nil
		}
		if v, ok := s.labelVars[label]; ok {
			return v, nil
		}
		v := s.FreshVariable()
		s.labelVars[label] = v
		return v, nil
	}

	if label == "" {
		return rdf.NewBlankNode(s.newBlankID()), nil
	}
	if e, ok := s.blankNodes[label]; ok {
		if e.state == blankFrozen {
			return nil, fmt.Errorf("%w _:%s", ErrBlankNodeReuse, label)
		}
		return e.node, nil
	}
	id := label
	if s.usedIDs[id] {
		id = s.newBlankID()
	} else {
		s.usedIDs[id] = true
	}
	e := &blankEntry{state: blankOpen, node: rdf.NewBlankNode(id)}
	s.blankNodes[label] = e
	return e.node, nil
}

func (s *Session) newBlankID() string {
	for {
		id := s.opts.AnonBase + strconv.Itoa(s.anonCount)
		s.anonCount++
		if !s.usedIDs[id] {
			s.usedIDs[id] = true
			return id
		}
	}
}

// FreezeBlankNodes closes every blank node label seen so far; using one of
// them again is an error.
func (s *Session) FreezeBlankNodes() {
	n := 0
	for _, e := range s.blankNodes {
		if e.state == blankOpen {
			e.state = blankFrozen
			n++
		}
	}
	if n > 0 {
		s.logger.Debug("blank nodes frozen", "count", n)
	}
}

// Variable returns the variable called name. Every mention of a name yields
// the same variable.
func (s *Session) Variable(name string) *rdf.Variable {
	if v, ok := s.variables[name]; ok {
		return v
	}
	v := rdf.NewVariable(name)
	s.variables[name] = v
	return v
}

// FreshVariable mints a non-distinguished variable.
func (s *Session) FreshVariable() *rdf.Variable {
	v := rdf.NewNonDistinguishedVariable(strconv.Itoa(s.freshVars))
	s.freshVars++
	return v
}

// AggregateVariable mints the temporary that replaces an aggregate call.
func (s *Session) AggregateVariable() *rdf.Variable {
	v := rdf.NewNonDistinguishedVariable("." + strconv.Itoa(s.aggVars))
	s.aggVars++
	return v
}

func (s *Session) pushReifier(t *rdf.TripleTerm) {
	s.reifiers = append(s.reifiers, &reifierFrame{triple: t})
}

func (s *Session) popReifier() {
	if len(s.reifiers) > 0 {
		s.reifiers = s.reifiers[:len(s.reifiers)-1]
	}
}

// reifierFor returns the reifier of the triple on top of the stack together
// with its rdf:reifies pattern, which is nil when that reifier has already
// been declared. A "~" names a reifier (explicit may be nil for a fresh one);
// an annotation block uses the reifier named just before it, if any.
func (s *Session) reifierFor(explicit rdf.Term, block bool) (rdf.Term, algebra.Node, error) {
	if len(s.reifiers) == 0 {
		return nil, nil, fmt.Errorf("%w: annotation outside of a triple", ErrReification)
	}
	frame := s.reifiers[len(s.reifiers)-1]
	if block && frame.pending != nil {
		r := frame.pending
		frame.pending = nil
		return r, nil, nil
	}

	r := explicit
	if r == nil {
		var err error
		if r, err = s.BlankNode(""); err != nil {
			return nil, nil, err
		}
	}
	if _, ok := r.(*rdf.Literal); ok {
		return nil, nil, fmt.Errorf("%w: literal reifier %s", ErrReification, r)
	}
	if !block {
		frame.pending = r
	}
	pattern := algebra.New(algebra.KindTriple, algebra.T(r), algebra.T(rdf.RDFReifies), algebra.T(frame.triple))
	return r, pattern, nil
}

func (s *Session) pushNode(t rdf.Term) { s.nodes = append(s.nodes, t) }

func (s *Session) popNode() {
	if len(s.nodes) > 0 {
		s.nodes = s.nodes[:len(s.nodes)-1]
	}
}

// currentNode is the subject minted on entry to the innermost blank node
// property list.
func (s *Session) currentNode() rdf.Term {
	if len(s.nodes) == 0 {
		return nil
	}
	return s.nodes[len(s.nodes)-1]
}

// wrapPrologue retains the prologue around body when prefixed names and
// relative IRIs are left unresolved.
func (s *Session) wrapPrologue(body algebra.Node) algebra.Node {
	if s.opts.ResolveIRIs {
		return body
	}
	if len(s.declared) > 0 {
		decls := make(algebra.List, len(s.declared))
		for i, d := range s.declared {
			decls[i] = algebra.List{algebra.Symbol(d.prefix + ":"), algebra.T(rdf.NewNamedNode(d.iri))}
		}
		body = algebra.New(algebra.KindPrefix, decls, body)
	}
	if s.base != "" {
		body = algebra.New(algebra.KindBase, algebra.T(rdf.NewNamedNode(s.base)), body)
	}
	return body
}
