package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sparqlir.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Bool("validate", false, "")
	fs.String("anon-base", "b", "")
	fs.String("addr", ":8080", "")
	fs.String("log-level", "info", "")
	fs.Bool("unrelated", false, "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.True(t, cfg.Parser.ResolveIRIs)
	assert.False(t, cfg.Parser.Validate)
	assert.Equal(t, "b", cfg.Parser.AnonBase)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Catalog.Path)
}

func TestLoad_Layers(t *testing.T) {
	path := writeConfig(t, `
parser:
  validate: true
  anon_base: f
  prefixes:
    ex: http://ex/
server:
  addr: ":9000"
log:
  level: debug
`)
	t.Setenv("SPARQLIR_PARSER__ANON_BASE", "e")
	t.Setenv("SPARQLIR_SERVER__ADDR", ":9100")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--addr", ":9200", "--unrelated"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)

	assert.True(t, cfg.Parser.Validate, "file")
	assert.Equal(t, map[string]string{"ex": "http://ex/"}, cfg.Parser.Prefixes, "file")
	assert.Equal(t, "e", cfg.Parser.AnonBase, "env over file")
	assert.Equal(t, ":9200", cfg.Server.Addr, "flag over env")
	assert.Equal(t, "debug", cfg.Log.Level, "unchanged flag leaves file value")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "log:\n  format: xml\n"), nil)
	assert.ErrorContains(t, err, "log.format")

	_, err = Load(writeConfig(t, "log:\n  level: loud\n"), nil)
	assert.ErrorContains(t, err, "log.level")
}

func TestParserConfig_Options(t *testing.T) {
	c := ParserConfig{
		ResolveIRIs: false,
		Validate:    true,
		BaseURI:     "http://base/",
		Prefixes:    map[string]string{"ex": "http://ex/"},
	}
	opts := c.Options()
	assert.False(t, opts.ResolveIRIs)
	assert.True(t, opts.Validate)
	assert.Equal(t, "b", opts.AnonBase)
	assert.Equal(t, "http://base/", opts.BaseURI)

	opts.Prefixes["other"] = "http://other/"
	assert.Len(t, c.Prefixes, 1)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))
	assert.NotNil(t, GetLogger(context.Background()))
}
