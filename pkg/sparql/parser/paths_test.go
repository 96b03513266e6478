package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuery_PropertyPaths(t *testing.T) {
	const (
		p = "<http://ex/p>"
		q = "<http://ex/q>"
		r = "<http://ex/r>"
	)
	tests := []struct {
		path     string
		expected string
	}{
		{"(:p|:q)/:r", "(seq (alt " + p + " " + q + ") " + r + ")"},
		{":p|:q|:r", "(alt (alt " + p + " " + q + ") " + r + ")"},
		{":p/:q/:r", "(seq (seq " + p + " " + q + ") " + r + ")"},
		{"^:p", "(reverse " + p + ")"},
		{":p*", "(path* " + p + ")"},
		{":p+", "(path+ " + p + ")"},
		{":p?", "(path? " + p + ")"},
		{"^:p+", "(reverse (path+ " + p + "))"},
		{":p{2}", "(pathRange 2 2 " + p + ")"},
		{":p{2,}", "(pathRange 2 _ " + p + ")"},
		{":p{1,3}", "(pathRange 1 3 " + p + ")"},
		{":p{,3}", "(pathRange 0 3 " + p + ")"},
		{"!:p", "(notoneof " + p + ")"},
		{"!(:p|^:q)", "(notoneof " + p + " (reverse " + q + "))"},
		{"!a", "(notoneof " + rdfType + ")"},
		{"a/:p", "(seq " + rdfType + " " + p + ")"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := mustQuery(t, "PREFIX : <http://ex/> SELECT * { ?a "+tt.path+" ?b }")
			assert.Equal(t, "(path ?a "+tt.expected+" ?b)", got)
		})
	}
}

func TestParseQuery_SimplePathIsTriple(t *testing.T) {
	got := mustQuery(t, "PREFIX : <http://ex/> SELECT * { ?a :p ?b }")
	assert.Equal(t, "(bgp (triple ?a <http://ex/p> ?b))", got)

	got = mustQuery(t, "PREFIX : <http://ex/> SELECT * { ?a (:p) ?b }")
	assert.Equal(t, "(bgp (triple ?a <http://ex/p> ?b))", got)
}

func TestParseQuery_PathsSplitTriples(t *testing.T) {
	got := mustQuery(t, "PREFIX : <http://ex/> SELECT * { ?a :p ?b . ?b :q+ ?c . ?c :r ?d }")
	assert.Equal(t,
		"(join (join (bgp (triple ?a <http://ex/p> ?b)) (path ?b (path+ <http://ex/q>) ?c)) (bgp (triple ?c <http://ex/r> ?d)))",
		got)
}

func TestParseQuery_EmptyPathRange(t *testing.T) {
	_, err := ParseQuery("SELECT * { ?a <http://ex/p>{3,1} ?b }", DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is empty")
}
