package parser

import "log/slog"

// Options control how SPARQL text is translated.
type Options struct {
	// ResolveIRIs resolves prefixed names and relative IRIs while parsing.
	// When false, prefixed names keep their written form and the output is
	// wrapped in (prefix ...) and (base ...) operators.
	ResolveIRIs bool

	// Validate checks IRIs, literal lexical forms and language tags.
	Validate bool

	// AllVars emits an explicit empty projection for SELECT *.
	AllVars bool

	// AnonBase seeds the labels of generated blank nodes.
	AnonBase string

	// Prefixes and BaseURI are in effect before the prologue.
	Prefixes map[string]string
	BaseURI  string

	Logger *slog.Logger
}

// DefaultOptions resolves IRIs and labels generated blank nodes b0, b1, ...
func DefaultOptions() Options {
	return Options{
		ResolveIRIs: true,
		AnonBase:    "b",
	}
}
