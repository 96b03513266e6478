// Package parser translates SPARQL 1.1 and 1.2 queries and updates into
// algebra expressions.
//
// The grammar is a table of PEG rules (see grammar.go) evaluated by the
// generic engine in package grammar. Semantic actions registered per rule
// build algebra nodes bottom-up; a Session carries the prologue, blank node
// and variable allocation across one parse.
package parser

import (
	"errors"

	"github.com/aleksaelezovic/sparqlir/pkg/sparql/algebra"
	"github.com/aleksaelezovic/sparqlir/pkg/sparql/grammar"
)

// Parser parses a single SPARQL query or update.
type Parser struct {
	input string
	opts  Options
}

// NewParser creates a parser for input.
func NewParser(input string, opts Options) *Parser {
	return &Parser{input: input, opts: opts}
}

// Parse parses the input as a query, or as an update if it is not a query.
// When both fail with syntax errors the one that got further is returned.
func (p *Parser) Parse() (algebra.Node, error) {
	node, queryErr := p.ParseQuery()
	if queryErr == nil {
		return node, nil
	}
	var querySyntax *grammar.SyntaxError
	if !errors.As(queryErr, &querySyntax) {
		return nil, queryErr
	}

	node, updateErr := p.ParseUpdate()
	if updateErr == nil {
		return node, nil
	}
	var updateSyntax *grammar.SyntaxError
	if errors.As(updateErr, &updateSyntax) && updateSyntax.Line <= querySyntax.Line {
		return nil, queryErr
	}
	return nil, updateErr
}

// ParseQuery parses the input as a query unit.
func (p *Parser) ParseQuery() (algebra.Node, error) {
	return p.run("QueryUnit")
}

// ParseUpdate parses the input as an update unit.
func (p *Parser) ParseUpdate() (algebra.Node, error) {
	return p.run("UpdateUnit")
}

func (p *Parser) run(start string) (algebra.Node, error) {
	session, err := NewSession(p.opts)
	if err != nil {
		return nil, err
	}
	v, err := engine.Parse(p.input, start, session)
	if err != nil {
		session.logger.Debug("parse failed", "start", start, "error", err)
		return nil, err
	}
	return v.(algebra.Node), nil
}

// ParseQuery parses a SPARQL query.
func ParseQuery(input string, opts Options) (algebra.Node, error) {
	return NewParser(input, opts).ParseQuery()
}

// ParseUpdate parses a SPARQL update request.
func ParseUpdate(input string, opts Options) (algebra.Node, error) {
	return NewParser(input, opts).ParseUpdate()
}

// Parse parses a SPARQL query or update request.
func Parse(input string, opts Options) (algebra.Node, error) {
	return NewParser(input, opts).Parse()
}
