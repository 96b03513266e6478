package parser

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/aleksaelezovic/sparqlir/pkg/sparql/algebra"
)

func TestParse_Golden(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name: "aggregate_having",
			input: `PREFIX ex: <http://ex/>
SELECT ?g (AVG(?v) AS ?avg) (MAX(?v) AS ?max)
WHERE { ?x ex:group ?g ; ex:value ?v }
GROUP BY ?g
HAVING (AVG(?v) > 10)
ORDER BY DESC(?avg)
LIMIT 5`,
		},
		{
			name: "optional_union",
			input: `SELECT ?name ?mbox
WHERE {
  ?x <http://xmlns.com/foaf/0.1/name> ?name .
  { ?x <http://ex/mail> ?mbox } UNION { ?x <http://ex/email> ?mbox }
  OPTIONAL { ?x <http://ex/age> ?age FILTER(?age > 18) }
}`,
		},
		{
			name: "insert_where_annotation",
			input: `PREFIX : <http://ex/>
INSERT { ?s :p ?o {| :source :feed |} }
WHERE { ?s :q ?o }`,
		},
		{
			name:  "construct_collection",
			input: `CONSTRUCT { ?s <http://ex/list> ( ?o 1 ) } WHERE { ?s ?p ?o }`,
		},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Parse(tt.input, DefaultOptions())
			require.NoError(t, err)
			g.Assert(t, tt.name, []byte(algebra.SSE(n)+"\n"))
		})
	}
}
