// Package config loads sparqlir settings from defaults, a YAML file,
// SPARQLIR_ environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"time"

	"github.com/aleksaelezovic/sparqlir/pkg/sparql/parser"
)

// DefaultFile is looked up in the working directory when no file is given.
const DefaultFile = "sparqlir.yaml"

// Config holds all settings.
type Config struct {
	Parser  ParserConfig  `koanf:"parser"`
	Catalog CatalogConfig `koanf:"catalog"`
	Server  ServerConfig  `koanf:"server"`
	Log     LogConfig     `koanf:"log"`
}

// ParserConfig mirrors parser.Options.
type ParserConfig struct {
	ResolveIRIs bool              `koanf:"resolve_iris"`
	Validate    bool              `koanf:"validate"`
	AllVars     bool              `koanf:"all_vars"`
	AnonBase    string            `koanf:"anon_base"`
	BaseURI     string            `koanf:"base_uri"`
	Prefixes    map[string]string `koanf:"prefixes"`
}

// CatalogConfig locates the catalog database. An empty path keeps the
// catalog in memory.
type CatalogConfig struct {
	Path string `koanf:"path"`
}

// ServerConfig configures the HTTP translation service.
type ServerConfig struct {
	Addr         string        `koanf:"addr"`
	MaxBodyBytes int64         `koanf:"max_body_bytes"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// LogConfig selects the log level ("debug", "info", "warn", "error") and
// format ("text" or "json").
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Options converts the parser settings. The logger is attached by the
// caller.
func (c ParserConfig) Options() parser.Options {
	opts := parser.DefaultOptions()
	opts.ResolveIRIs = c.ResolveIRIs
	opts.Validate = c.Validate
	opts.AllVars = c.AllVars
	if c.AnonBase != "" {
		opts.AnonBase = c.AnonBase
	}
	opts.BaseURI = c.BaseURI
	if len(c.Prefixes) > 0 {
		opts.Prefixes = make(map[string]string, len(c.Prefixes))
		for k, v := range c.Prefixes {
			opts.Prefixes[k] = v
		}
	}
	return opts
}

func defaults() map[string]any {
	return map[string]any{
		"parser.resolve_iris":   true,
		"parser.validate":       false,
		"parser.all_vars":       false,
		"parser.anon_base":      "b",
		"parser.base_uri":       "",
		"catalog.path":          "",
		"server.addr":           ":8080",
		"server.max_body_bytes": int64(1 << 20),
		"server.read_timeout":   "10s",
		"server.write_timeout":  "10s",
		"log.level":             "info",
		"log.format":            "text",
	}
}
