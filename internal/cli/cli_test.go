package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aleksaelezovic/sparqlir/internal/catalog"
)

// run executes the root command with args and returns its standard output.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseCommand(t *testing.T) {
	file := filepath.Join(t.TempDir(), "q.rq")
	require.NoError(t, os.WriteFile(file, []byte("ASK { ?s ?p ?o }"), 0o600))

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{
			name: "expression",
			args: []string{"parse", "-e", "SELECT * { ?s ?p ?o }"},
			want: "(bgp (triple ?s ?p ?o))\n",
		},
		{
			name:  "stdin",
			stdin: "SELECT ?s { ?s ?p ?o }",
			args:  []string{"parse"},
			want:  "(project (?s) (bgp (triple ?s ?p ?o)))\n",
		},
		{
			name: "file",
			args: []string{"parse", file},
			want: "(ask (bgp (triple ?s ?p ?o)))\n",
		},
		{
			name: "update detected",
			args: []string{"parse", "-e", "CLEAR ALL"},
			want: "(update (clear all))\n",
		},
		{
			name: "forced update",
			args: []string{"parse", "--update", "-e", "CLEAR ALL"},
			want: "(update (clear all))\n",
		},
		{
			name: "all vars flag",
			args: []string{"--all-vars", "parse", "-e", "SELECT * { ?s ?p ?o }"},
			want: "(project () (bgp (triple ?s ?p ?o)))\n",
		},
		{
			name: "anon base flag",
			args: []string{"--anon-base", "n", "parse", "-e", "INSERT DATA { [] <http://ex/p> 1 }"},
			want: "(update (insertData ((triple _:n0 <http://ex/p> 1))))\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.stdin, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestParseCommand_Errors(t *testing.T) {
	_, err := run(t, "", "parse", "--query", "-e", "CLEAR ALL")
	assert.Error(t, err)

	_, err = run(t, "", "parse", "--query", "--update", "-e", "ASK {}")
	assert.Error(t, err)

	_, err = run(t, "", "parse", "-e", "ASK {}", "file.rq")
	assert.Error(t, err)

	_, err = run(t, "", "parse", filepath.Join(t.TempDir(), "missing.rq"))
	assert.Error(t, err)

	_, err = run(t, "", "--log-format", "xml", "parse", "-e", "ASK {}")
	assert.Error(t, err)
}

func TestParseCommand_Indent(t *testing.T) {
	q := "SELECT ?name ?mbox { ?x <http://xmlns.com/foaf/0.1/name> ?name . ?x <http://xmlns.com/foaf/0.1/mbox> ?mbox }"
	out, err := run(t, "", "parse", "--indent", "-e", q)
	require.NoError(t, err)
	assert.Greater(t, strings.Count(out, "\n"), 1)
	assert.True(t, strings.HasPrefix(out, "(project (?name ?mbox)"))
}

func TestTokensCommand(t *testing.T) {
	out, err := run(t, "", "tokens", "-e", "SELECT ?x\nWHERE { ?x a <http://ex/C> }")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, []string{"0", "keyword", "SELECT"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"0", "VAR1", "x"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"1", "punct", "{"}, strings.Fields(lines[3]))
	assert.Equal(t, []string{"1", "IRIREF", "http://ex/C"}, strings.Fields(lines[6]))

	out, err = run(t, "", "tokens", "--format", "yaml", "-e", "ASK")
	require.NoError(t, err)
	var records []tokenRecord
	require.NoError(t, yaml.Unmarshal([]byte(out), &records))
	assert.Equal(t, []tokenRecord{{Line: 0, Kind: "keyword", Value: "ASK"}}, records)

	_, err = run(t, "", "tokens", "--format", "csv", "-e", "ASK")
	assert.Error(t, err)
	_, err = run(t, "", "tokens", "-e", "SELECT `")
	assert.Error(t, err)
}

func TestCatalogCommands(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "", "--catalog", dir, "catalog", "put", "all", "-e", "SELECT * { ?s ?p ?o }")
	require.NoError(t, err)
	assert.Equal(t, "(bgp (triple ?s ?p ?o))\n", out)

	_, err = run(t, "CLEAR ALL", "--catalog", dir, "catalog", "put", "wipe")
	require.NoError(t, err)

	out, err = run(t, "", "--catalog", dir, "catalog", "get", "wipe", "--format", "yaml")
	require.NoError(t, err)
	var entry catalog.Entry
	require.NoError(t, yaml.Unmarshal([]byte(out), &entry))
	assert.Equal(t, "wipe", entry.Name)
	assert.Equal(t, catalog.KindUpdate, entry.Kind)
	assert.Equal(t, "(update (clear all))", entry.Algebra)

	out, err = run(t, "", "--catalog", dir, "catalog", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "all "))
	assert.True(t, strings.HasPrefix(lines[1], "wipe "))

	_, err = run(t, "", "--catalog", dir, "catalog", "rm", "all")
	require.NoError(t, err)
	_, err = run(t, "", "--catalog", dir, "catalog", "get", "all")
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = run(t, "", "--catalog", dir, "catalog", "list", "--format", "xml")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "sparqlir "+Version))
}
