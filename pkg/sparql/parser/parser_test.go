package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksaelezovic/sparqlir/pkg/sparql/algebra"
	"github.com/aleksaelezovic/sparqlir/pkg/sparql/grammar"
)

const (
	rdfFirst   = "<http://www.w3.org/1999/02/22-rdf-syntax-ns#first>"
	rdfRest    = "<http://www.w3.org/1999/02/22-rdf-syntax-ns#rest>"
	rdfNil     = "<http://www.w3.org/1999/02/22-rdf-syntax-ns#nil>"
	rdfType    = "<http://www.w3.org/1999/02/22-rdf-syntax-ns#type>"
	rdfReifies = "<http://www.w3.org/1999/02/22-rdf-syntax-ns#reifies>"
)

func mustQuery(t *testing.T, input string) string {
	t.Helper()
	n, err := ParseQuery(input, DefaultOptions())
	require.NoError(t, err, input)
	return algebra.SSE(n)
}

func TestParseQuery_GraphPatterns(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{
			name:     "prefixed name",
			query:    "PREFIX ex: <http://ex/> SELECT * WHERE { ?s ex:p ?o }",
			expected: "(bgp (triple ?s <http://ex/p> ?o))",
		},
		{
			name:     "projection",
			query:    "SELECT ?s WHERE { ?s ?p ?o }",
			expected: "(project (?s) (bgp (triple ?s ?p ?o)))",
		},
		{
			name:     "empty group",
			query:    "SELECT * {}",
			expected: "(bgp)",
		},
		{
			name:     "adjacent triples share a bgp",
			query:    "SELECT * { ?s ?p ?o . ?s ?q ?r }",
			expected: "(bgp (triple ?s ?p ?o) (triple ?s ?q ?r))",
		},
		{
			name:     "property and object lists",
			query:    "PREFIX : <http://ex/> SELECT * { ?s :p 1, 2 ; a :C }",
			expected: "(bgp (triple ?s <http://ex/p> 1) (triple ?s <http://ex/p> 2) (triple ?s " + rdfType + " <http://ex/C>))",
		},
		{
			name:     "filter splits the bgp and applies to the group",
			query:    "SELECT * { ?s ?p ?o FILTER(?o > 1) ?s ?q ?r }",
			expected: "(filter (> ?o 1) (join (bgp (triple ?s ?p ?o)) (bgp (triple ?s ?q ?r))))",
		},
		{
			name:     "several filters",
			query:    "SELECT * { ?s ?p ?o FILTER(?o > 1) FILTER(?o < 5) }",
			expected: "(filter (exprlist (> ?o 1) (< ?o 5)) (bgp (triple ?s ?p ?o)))",
		},
		{
			name:     "optional with filter",
			query:    "SELECT * { ?s ?p ?o OPTIONAL { ?s ?q ?r FILTER(?r) } }",
			expected: "(leftjoin (bgp (triple ?s ?p ?o)) (bgp (triple ?s ?q ?r)) ?r)",
		},
		{
			name:     "union",
			query:    "SELECT * { { ?s ?p ?o } UNION { ?s ?q ?r } }",
			expected: "(union (bgp (triple ?s ?p ?o)) (bgp (triple ?s ?q ?r)))",
		},
		{
			name:     "minus",
			query:    "SELECT * { ?s ?p ?o MINUS { ?s ?q ?r } }",
			expected: "(minus (bgp (triple ?s ?p ?o)) (bgp (triple ?s ?q ?r)))",
		},
		{
			name:     "consecutive binds share an extend",
			query:    "SELECT * { ?s ?p ?o BIND(1 AS ?x) BIND(?x + 1 AS ?y) }",
			expected: "(extend ((?x 1) (?y (+ ?x 1))) (bgp (triple ?s ?p ?o)))",
		},
		{
			name:     "graph",
			query:    "SELECT * { GRAPH ?g { ?s ?p ?o } }",
			expected: "(graph ?g (bgp (triple ?s ?p ?o)))",
		},
		{
			name:     "service silent",
			query:    "SELECT * { SERVICE SILENT <http://ex/sparql> { ?s ?p ?o } }",
			expected: "(service silent <http://ex/sparql> (bgp (triple ?s ?p ?o)))",
		},
		{
			name:     "group followed by triples",
			query:    "SELECT * { { ?s ?p ?o } ?s ?q ?r }",
			expected: "(join (bgp (triple ?s ?p ?o)) (bgp (triple ?s ?q ?r)))",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, mustQuery(t, tt.query))
		})
	}
}

func TestParseQuery_BlankNodes(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{
			name:     "labels become non-distinguished variables",
			query:    "SELECT * { _:a ?p _:a . [] ?q ?r }",
			expected: "(bgp (triple ??0 ?p ??0) (triple ??1 ?q ?r))",
		},
		{
			name:     "nested property lists number outside in",
			query:    "SELECT * { [ ?p [ ?q ?r ] ] }",
			expected: "(bgp (triple ??1 ?q ?r) (triple ??0 ?p ??1))",
		},
		{
			name:  "collection",
			query: "SELECT * { ?s ?p (1 2) }",
			expected: "(bgp (triple ??0 " + rdfFirst + " 1) (triple ??0 " + rdfRest + " ??1) " +
				"(triple ??1 " + rdfFirst + " 2) (triple ??1 " + rdfRest + " " + rdfNil + ") (triple ?s ?p ??0))",
		},
		{
			name:     "empty collection is rdf:nil",
			query:    "SELECT * { ?s ?p () }",
			expected: "(bgp (triple ?s ?p " + rdfNil + "))",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, mustQuery(t, tt.query))
		})
	}
}

func TestParseQuery_SolutionModifiers(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{
			name:     "count",
			query:    "SELECT (COUNT(?x) AS ?c) WHERE { ?x ?p ?y }",
			expected: "(project (?c) (extend ((?c ?.0)) (group () ((?.0 (count ?x))) (bgp (triple ?x ?p ?y)))))",
		},
		{
			name:     "group by",
			query:    "SELECT ?s (SUM(?o) AS ?t) { ?s ?p ?o } GROUP BY ?s",
			expected: "(project (?s ?t) (extend ((?t ?.0)) (group (?s) ((?.0 (sum ?o))) (bgp (triple ?s ?p ?o)))))",
		},
		{
			name:     "group by expression alias",
			query:    "SELECT ?k { ?s ?p ?o } GROUP BY (STR(?o) AS ?k)",
			expected: "(project (?k) (group ((?k (str ?o))) (bgp (triple ?s ?p ?o))))",
		},
		{
			name:     "having",
			query:    "SELECT ?s { ?s ?p ?o } GROUP BY ?s HAVING (COUNT(?o) > 2)",
			expected: "(project (?s) (filter (> ?.0 2) (group (?s) ((?.0 (count ?o))) (bgp (triple ?s ?p ?o)))))",
		},
		{
			name:     "having samples ungrouped variable",
			query:    "SELECT ?s { ?s ?p ?o } GROUP BY ?s HAVING (?o > 1)",
			expected: "(project (?s) (filter (> ?.0 1) (group (?s) ((?.0 (sample ?o))) (bgp (triple ?s ?p ?o)))))",
		},
		{
			name:     "select expression samples ungrouped variable",
			query:    "SELECT ?s ((?o + 1) AS ?x) { ?s ?p ?o } GROUP BY ?s",
			expected: "(project (?s ?x) (extend ((?x (+ ?.0 1))) (group (?s) ((?.0 (sample ?o))) (bgp (triple ?s ?p ?o)))))",
		},
		{
			name:     "having sees select alias",
			query:    "SELECT ?s (COUNT(?o) AS ?n) { ?s ?p ?o } GROUP BY ?s HAVING (?n > 1)",
			expected: "(project (?s ?n) (filter (> ?n 1) (extend ((?n ?.0)) (group (?s) ((?.0 (count ?o))) (bgp (triple ?s ?p ?o))))))",
		},
		{
			name:     "count distinct star",
			query:    "SELECT (COUNT(DISTINCT *) AS ?n) { ?s ?p ?o }",
			expected: "(project (?n) (extend ((?n ?.0)) (group () ((?.0 (count distinct))) (bgp (triple ?s ?p ?o)))))",
		},
		{
			name:     "group_concat separator",
			query:    `SELECT (GROUP_CONCAT(?o ; SEPARATOR=",") AS ?all) { ?s ?p ?o }`,
			expected: `(project (?all) (extend ((?all ?.0)) (group () ((?.0 (group_concat (separator ",") ?o))) (bgp (triple ?s ?p ?o)))))`,
		},
		{
			name:     "order limit offset",
			query:    "SELECT ?s { ?s ?p ?o } ORDER BY DESC(?o) ?s LIMIT 10 OFFSET 5",
			expected: "(slice 5 10 (project (?s) (order ((desc ?o) ?s) (bgp (triple ?s ?p ?o)))))",
		},
		{
			name:     "limit only",
			query:    "SELECT * { ?s ?p ?o } LIMIT 3",
			expected: "(slice _ 3 (bgp (triple ?s ?p ?o)))",
		},
		{
			name:     "distinct",
			query:    "SELECT DISTINCT ?s { ?s ?p ?o }",
			expected: "(distinct (project (?s) (bgp (triple ?s ?p ?o))))",
		},
		{
			name:     "reduced",
			query:    "SELECT REDUCED ?s { ?s ?p ?o }",
			expected: "(reduced (project (?s) (bgp (triple ?s ?p ?o))))",
		},
		{
			name:     "select expression without aggregate",
			query:    "SELECT ?s (STRLEN(?o) AS ?n) { ?s ?p ?o }",
			expected: "(project (?s ?n) (extend ((?n (strlen ?o))) (bgp (triple ?s ?p ?o))))",
		},
		{
			name:     "dataset",
			query:    "SELECT * FROM <http://ex/g> FROM NAMED <http://ex/n> { ?s ?p ?o }",
			expected: "(dataset (<http://ex/g> (named <http://ex/n>)) (bgp (triple ?s ?p ?o)))",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, mustQuery(t, tt.query))
		})
	}
}

func TestParseQuery_Values(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{
			name:     "trailing values",
			query:    "SELECT * { ?s ?p ?o } VALUES ?s { <http://ex/a> UNDEF }",
			expected: "(join (bgp (triple ?s ?p ?o)) (table (vars ?s) (row (?s <http://ex/a>)) (row)))",
		},
		{
			name:     "inline values",
			query:    "SELECT * { VALUES ?x { 1 } }",
			expected: "(table (vars ?x) (row (?x 1)))",
		},
		{
			name:     "several variables",
			query:    "SELECT * { VALUES (?x ?y) { (1 2) (UNDEF 3) } }",
			expected: "(table (vars ?x ?y) (row (?x 1) (?y 2)) (row (?y 3)))",
		},
		{
			name:     "unit table",
			query:    "SELECT * { VALUES () { () } }",
			expected: "(table unit)",
		},
		{
			name:     "empty table",
			query:    "SELECT * { VALUES () { } }",
			expected: "(table empty)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, mustQuery(t, tt.query))
		})
	}
}

func TestParseQuery_Forms(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{
			name:     "construct template mints blank nodes",
			query:    "CONSTRUCT { ?s <http://ex/p> [] } WHERE { ?s ?p ?o }",
			expected: "(construct ((triple ?s <http://ex/p> _:b0)) (bgp (triple ?s ?p ?o)))",
		},
		{
			name:     "construct where",
			query:    "CONSTRUCT WHERE { ?s ?p ?o }",
			expected: "(construct ((triple ?s ?p ?o)) (bgp (triple ?s ?p ?o)))",
		},
		{
			name:     "ask",
			query:    "ASK { ?s ?p ?o }",
			expected: "(ask (bgp (triple ?s ?p ?o)))",
		},
		{
			name:     "describe iri",
			query:    "DESCRIBE <http://ex/a>",
			expected: "(describe (<http://ex/a>) (bgp))",
		},
		{
			name:     "describe star",
			query:    "DESCRIBE * { ?s ?p ?o }",
			expected: "(describe (?s ?p ?o) (bgp (triple ?s ?p ?o)))",
		},
		{
			name:     "subselect",
			query:    "SELECT ?s { { SELECT ?s { ?s ?p ?o } LIMIT 1 } }",
			expected: "(project (?s) (slice _ 1 (project (?s) (bgp (triple ?s ?p ?o)))))",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, mustQuery(t, tt.query))
		})
	}
}

func TestParseQuery_Expressions(t *testing.T) {
	tests := []struct {
		expr     string
		expected string
	}{
		{"?a + 1", "(+ ?a 1)"},
		{"?a +1", "(+ ?a 1)"},
		{"?a -2 * ?b", "(- ?a (* 2 ?b))"},
		{"1 + 2 * 3", "(+ 1 (* 2 3))"},
		{"?a || ?b && ?c", "(|| ?a (&& ?b ?c))"},
		{"!BOUND(?a)", "(! (bound ?a))"},
		{"-?a", "(- ?a)"},
		{"?a IN (1, 2)", "(in ?a 1 2)"},
		{"?a NOT IN (1)", "(notin ?a 1)"},
		{"?a != ?b", "(!= ?a ?b)"},
		{`REGEX(?a, "x", "i")`, `(regex ?a "x" "i")`},
		{"isIRI(?a)", "(isIRI ?a)"},
		{"sameTerm(?a, ?b)", "(sameTerm ?a ?b)"},
		{"NOW()", "(now)"},
		{"IF(?a, 1, 2)", "(if ?a 1 2)"},
		{"COALESCE(?a, 1)", "(coalesce ?a 1)"},
		{"<http://ex/f>(?a, 1)", "(function <http://ex/f> ?a 1)"},
		{"EXISTS { ?a ?p ?o }", "(exists (bgp (triple ?a ?p ?o)))"},
		{"NOT EXISTS { ?a ?p ?o }", "(notexists (bgp (triple ?a ?p ?o)))"},
		{`"x"@en-GB = "y"`, `(= "x"@en-GB "y")`},
		{`"5"^^<http://www.w3.org/2001/XMLSchema#integer>`, "5"},
		{"true", "true"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got := mustQuery(t, "SELECT * { FILTER("+tt.expr+") }")
			assert.Equal(t, "(filter "+tt.expected+" (bgp))", got)
		})
	}
}

func TestParseQuery_RDFStar(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{
			name:     "triple term object",
			query:    "SELECT * { ?s ?p <<( ?a ?b ?c )>> }",
			expected: "(bgp (triple ?s ?p (qtriple ?a ?b ?c)))",
		},
		{
			name:     "reified triple with explicit reifier",
			query:    "SELECT * { << ?s ?p ?o ~ ?r >> ?q ?z }",
			expected: "(bgp (triple ?r " + rdfReifies + " (qtriple ?s ?p ?o)) (triple ?r ?q ?z))",
		},
		{
			name:     "reified triple with fresh reifier",
			query:    "SELECT * { << ?s ?p ?o >> ?q ?z }",
			expected: "(bgp (triple ??0 " + rdfReifies + " (qtriple ?s ?p ?o)) (triple ??0 ?q ?z))",
		},
		{
			name:     "annotation block",
			query:    "SELECT * { ?s ?p ?o {| ?q ?z |} }",
			expected: "(bgp (triple ?s ?p ?o) (triple ??0 " + rdfReifies + " (qtriple ?s ?p ?o)) (triple ??0 ?q ?z))",
		},
		{
			name:     "named reifier then block",
			query:    "SELECT * { ?s ?p ?o ~ ?r {| ?q ?z |} }",
			expected: "(bgp (triple ?s ?p ?o) (triple ?r " + rdfReifies + " (qtriple ?s ?p ?o)) (triple ?r ?q ?z))",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, mustQuery(t, tt.query))
		})
	}
}

func TestParseQuery_Errors(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		target error
	}{
		{"undefined prefix", "SELECT * { ?s ex:p ?o }", ErrUndefinedPrefix},
		{"projected variable not grouped", "SELECT ?o (COUNT(?s) AS ?c) { ?s ?p ?o } GROUP BY ?s", errNotGrouped},
		{"select expression rebinds", "SELECT ?x (1 AS ?x) {}", errExtensionInSelect},
		{"literal triple term subject", `SELECT * { ?s ?p <<( "a" ?b ?c )>> }`, ErrReification},
		{"annotation on path", "SELECT * { ?s <http://ex/p>* ?o {| ?q ?z |} }", ErrReification},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQuery(tt.query, DefaultOptions())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			var semantic *SemanticError
			assert.ErrorAs(t, err, &semantic)
		})
	}
}

func TestParseQuery_ValuesErrors(t *testing.T) {
	for _, q := range []string{
		"SELECT * { VALUES (?x ?y) { (1) } }",
		"SELECT * { VALUES ?x { ?y } }",
	} {
		_, err := ParseQuery(q, DefaultOptions())
		assert.Error(t, err, q)
	}
}

func TestParseQuery_SyntaxError(t *testing.T) {
	_, err := ParseQuery("SELECT * WHERE {\n  ?s ?p\n}", DefaultOptions())
	require.Error(t, err)

	var syntax *grammar.SyntaxError
	require.ErrorAs(t, err, &syntax)
	assert.Equal(t, 2, syntax.Line)
	assert.Equal(t, "}", syntax.Lexeme)
}

func TestParseQuery_SyntaxErrorKeepsSigil(t *testing.T) {
	_, err := ParseQuery("SELECT * { ?s ?p ?o ?x }", DefaultOptions())
	var syntax *grammar.SyntaxError
	require.ErrorAs(t, err, &syntax)
	assert.Equal(t, "?x", syntax.Lexeme)
	assert.Contains(t, err.Error(), `"?x"`)
}

func TestParseQuery_SelectErrorLines(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		line   int
		target error
	}{
		{"ungrouped variable", "SELECT ?s\n  ?o\nWHERE { ?s ?p ?o }\nGROUP BY ?s", 1, errNotGrouped},
		{"rebound alias", "SELECT ?x\n\n  (1 AS ?x)\nWHERE {}", 2, errExtensionInSelect},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQuery(tt.query, DefaultOptions())
			require.ErrorIs(t, err, tt.target)
			var semantic *SemanticError
			require.ErrorAs(t, err, &semantic)
			assert.Equal(t, tt.line, semantic.Line)
		})
	}
}

func TestParseQuery_Deterministic(t *testing.T) {
	for _, q := range []string{
		"SELECT * { ?s ?p }",
		"SELECT * { ?s ex:p ?o }",
		"SELECT (COUNT(?x) AS ?c) { [ ?p ( 1 [] ) ] }",
	} {
		first, err1 := ParseQuery(q, DefaultOptions())
		second, err2 := ParseQuery(q, DefaultOptions())
		if err1 != nil {
			require.Error(t, err2)
			assert.Equal(t, err1.Error(), err2.Error())
			continue
		}
		require.NoError(t, err2)
		assert.Equal(t, algebra.SSE(first), algebra.SSE(second))
	}
}

func TestParse_DetectsUpdate(t *testing.T) {
	n, err := Parse("INSERT DATA { <http://ex/s> <http://ex/p> 1 }", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "(update (insertData ((triple <http://ex/s> <http://ex/p> 1))))", algebra.SSE(n))

	n, err = Parse("ASK {}", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "(ask (bgp))", algebra.SSE(n))
}

func TestParse_ReportsFurthestError(t *testing.T) {
	// The update gets further than the query attempt, which fails on the
	// first token.
	_, err := Parse("INSERT DATA {\n <http://ex/s> <http://ex/p> \n}", DefaultOptions())
	require.Error(t, err)
	var syntax *grammar.SyntaxError
	require.ErrorAs(t, err, &syntax)
	assert.Equal(t, 2, syntax.Line)

	// Both fail on the first line; the query error wins the tie.
	_, queryErr := ParseQuery("FOO", DefaultOptions())
	_, err = Parse("FOO", DefaultOptions())
	require.Error(t, err)
	assert.Equal(t, queryErr.Error(), err.Error())
}

func TestParse_SemanticErrorStopsDetection(t *testing.T) {
	_, err := Parse("SELECT * { ?s ex:p ?o }", DefaultOptions())
	assert.True(t, errors.Is(err, ErrUndefinedPrefix))
}

func TestParseQuery_Base(t *testing.T) {
	got := mustQuery(t, "BASE <http://ex/dir/> SELECT * { <a> <../b> <#c> }")
	assert.Equal(t, "(bgp (triple <http://ex/dir/a> <http://ex/b> <http://ex/dir/#c>))", got)

	opts := DefaultOptions()
	opts.BaseURI = "http://base/"
	n, err := ParseQuery("SELECT * { <s> <p> <o> }", opts)
	require.NoError(t, err)
	assert.Equal(t, "(bgp (triple <http://base/s> <http://base/p> <http://base/o>))", algebra.SSE(n))
}

func TestParseQuery_PresetPrefixes(t *testing.T) {
	opts := DefaultOptions()
	opts.Prefixes = map[string]string{"ex": "http://ex/"}
	n, err := ParseQuery("SELECT * { ?s ex:p ?o }", opts)
	require.NoError(t, err)
	assert.Equal(t, "(bgp (triple ?s <http://ex/p> ?o))", algebra.SSE(n))
}

func TestParseQuery_PrologueRetained(t *testing.T) {
	opts := DefaultOptions()
	opts.ResolveIRIs = false
	n, err := ParseQuery("BASE <http://b/> PREFIX ex: <http://ex/> SELECT * { ?s ex:p <o> }", opts)
	require.NoError(t, err)
	assert.Equal(t,
		"(base <http://b/> (prefix ((ex: <http://ex/>)) (bgp (triple ?s ex:p <o>))))",
		algebra.SSE(n))
}

func TestParseQuery_AllVars(t *testing.T) {
	opts := DefaultOptions()
	opts.AllVars = true
	n, err := ParseQuery("SELECT * { ?s ?p ?o }", opts)
	require.NoError(t, err)
	assert.Equal(t, "(project () (bgp (triple ?s ?p ?o)))", algebra.SSE(n))
}

func TestParseQuery_AnonBase(t *testing.T) {
	opts := DefaultOptions()
	opts.AnonBase = "n"
	n, err := ParseQuery("CONSTRUCT { [] ?p ?o } WHERE { ?s ?p ?o }", opts)
	require.NoError(t, err)
	assert.Equal(t, "(construct ((triple _:n0 ?p ?o)) (bgp (triple ?s ?p ?o)))", algebra.SSE(n))
}
