package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksaelezovic/sparqlir/pkg/rdf"
)

func newSession(t *testing.T, opts Options) *Session {
	t.Helper()
	s, err := NewSession(opts)
	require.NoError(t, err)
	return s
}

func TestSession_PrefixScoping(t *testing.T) {
	s := newSession(t, DefaultOptions())

	_, err := s.ResolvePrefixedName("ex:a")
	assert.ErrorIs(t, err, ErrUndefinedPrefix)
	assert.Contains(t, err.Error(), `"ex:"`)

	require.NoError(t, s.DeclarePrefix("ex", "http://ex/"))
	n, err := s.ResolvePrefixedName("ex:a")
	require.NoError(t, err)
	assert.Equal(t, "http://ex/a", n.IRI)
	assert.Empty(t, n.PName)

	require.NoError(t, s.DeclarePrefix("ex", "http://other/"))
	n, err = s.ResolvePrefixedName("ex:a")
	require.NoError(t, err)
	assert.Equal(t, "http://other/a", n.IRI)
	assert.Len(t, s.declared, 1)
}

func TestSession_UnresolvedPrefixRebinding(t *testing.T) {
	opts := DefaultOptions()
	opts.ResolveIRIs = false
	s := newSession(t, opts)

	require.NoError(t, s.DeclarePrefix("ex", "http://a/"))
	first, err := s.ResolvePrefixedName("ex:x")
	require.NoError(t, err)
	assert.Equal(t, "ex:x", first.PName)

	require.NoError(t, s.DeclarePrefix("ex", "http://b/"))
	assert.Empty(t, first.PName)
	assert.Equal(t, "http://a/x", first.IRI)

	second, err := s.ResolvePrefixedName("ex:x")
	require.NoError(t, err)
	assert.Equal(t, "ex:x", second.PName)
	assert.Equal(t, "http://b/x", second.IRI)
}

func TestSession_PrefixedNameForms(t *testing.T) {
	s := newSession(t, DefaultOptions())
	require.NoError(t, s.DeclarePrefix("", "http://ex/"))
	require.NoError(t, s.DeclarePrefix("h", "http://ex/ns#"))

	tests := []struct {
		pname    string
		expected string
	}{
		{":", "http://ex/"},
		{":a", "http://ex/a"},
		{`:a\.b`, "http://ex/a.b"},
		{`:x\%20`, "http://ex/x%20"},
		{"h:term", "http://ex/ns#term"},
	}
	for _, tt := range tests {
		n, err := s.ResolvePrefixedName(tt.pname)
		require.NoError(t, err, tt.pname)
		assert.Equal(t, tt.expected, n.IRI, tt.pname)
	}
}

func TestSession_UnresolvedNames(t *testing.T) {
	opts := DefaultOptions()
	opts.ResolveIRIs = false
	s := newSession(t, opts)
	require.NoError(t, s.DeclarePrefix("ex", "http://ex/"))

	n, err := s.ResolvePrefixedName("ex:a")
	require.NoError(t, err)
	assert.Equal(t, "ex:a", n.PName)
	assert.Equal(t, "http://ex/a", n.IRI)

	s.SetBase("http://base/")
	rel, err := s.ResolveIRI("rel")
	require.NoError(t, err)
	assert.Equal(t, "rel", rel.IRI)
}

func TestSession_ResolveIRI(t *testing.T) {
	s := newSession(t, DefaultOptions())
	s.SetBase("http://ex/a/b")
	n, err := s.ResolveIRI("../c")
	require.NoError(t, err)
	assert.Equal(t, "http://ex/c", n.IRI)
	assert.Equal(t, "http://ex/a/b", s.Base())
}

func TestSession_Validation(t *testing.T) {
	opts := DefaultOptions()
	opts.Validate = true
	s := newSession(t, opts)

	_, err := s.ResolveIRI("http://ex/a b")
	assert.ErrorIs(t, err, ErrInvalidTerm)

	opts.Prefixes = map[string]string{"1bad": "http://ex/"}
	_, err = NewSession(opts)
	assert.ErrorIs(t, err, ErrInvalidTerm)
}

func TestSession_BlankNodesAsVariables(t *testing.T) {
	s := newSession(t, DefaultOptions())

	a, err := s.BlankNode("a")
	require.NoError(t, err)
	again, err := s.BlankNode("a")
	require.NoError(t, err)
	anon, err := s.BlankNode("")
	require.NoError(t, err)

	assert.Same(t, a, again)
	assert.Equal(t, "??0", a.String())
	assert.Equal(t, "??1", anon.String())
	assert.False(t, a.(*rdf.Variable).Distinguished)
}

func TestSession_BlankNodeLabels(t *testing.T) {
	s := newSession(t, DefaultOptions())
	s.pushMode(modeBlankNodes)
	defer s.popMode()

	anon, err := s.BlankNode("")
	require.NoError(t, err)
	assert.Equal(t, "_:b0", anon.String())

	// A written label that collides with a generated one is relabelled.
	b0, err := s.BlankNode("b0")
	require.NoError(t, err)
	assert.Equal(t, "_:b1", b0.String())

	x, err := s.BlankNode("x")
	require.NoError(t, err)
	assert.Equal(t, "_:x", x.String())

	// Generated labels skip ones already written.
	_, err = s.BlankNode("b2")
	require.NoError(t, err)
	next, err := s.BlankNode("")
	require.NoError(t, err)
	assert.Equal(t, "_:b3", next.String())
}

func TestSession_FreezeBlankNodes(t *testing.T) {
	s := newSession(t, DefaultOptions())
	s.pushMode(modeBlankNodes)

	first, err := s.BlankNode("x")
	require.NoError(t, err)
	same, err := s.BlankNode("x")
	require.NoError(t, err)
	assert.Same(t, first, same)

	s.FreezeBlankNodes()
	_, err = s.BlankNode("x")
	assert.ErrorIs(t, err, ErrBlankNodeReuse)

	_, err = s.BlankNode("y")
	assert.NoError(t, err)
}

func TestSession_Variables(t *testing.T) {
	s := newSession(t, DefaultOptions())
	assert.Same(t, s.Variable("x"), s.Variable("x"))
	assert.True(t, s.Variable("x").Distinguished)

	assert.Equal(t, "?.0", s.AggregateVariable().String())
	assert.Equal(t, "?.1", s.AggregateVariable().String())
	assert.Equal(t, "??0", s.FreshVariable().String())
}

func TestSession_Reifiers(t *testing.T) {
	s := newSession(t, DefaultOptions())
	_, _, err := s.reifierFor(nil, true)
	assert.ErrorIs(t, err, ErrReification)

	tt, err := rdf.NewTripleTerm(rdf.NewVariable("s"), rdf.NewNamedNode("http://ex/p"), rdf.NewVariable("o"))
	require.NoError(t, err)
	s.pushReifier(tt)
	defer s.popReifier()

	r, pattern, err := s.reifierFor(rdf.NewVariable("r"), false)
	require.NoError(t, err)
	assert.Equal(t, "?r", r.String())
	assert.NotNil(t, pattern)

	// The block following "~ ?r" annotates ?r without a second declaration.
	block, pattern, err := s.reifierFor(nil, true)
	require.NoError(t, err)
	assert.Equal(t, r, block)
	assert.Nil(t, pattern)

	_, _, err = s.reifierFor(rdf.NewLiteral("x"), false)
	assert.ErrorIs(t, err, ErrReification)
}

func TestSession_Version(t *testing.T) {
	n, err := ParseQuery(`VERSION "1.2" SELECT * {}`, DefaultOptions())
	require.NoError(t, err)
	assert.NotNil(t, n)

	s := newSession(t, DefaultOptions())
	s.SetVersion("1.2")
	assert.Equal(t, "1.2", s.Version())
}
