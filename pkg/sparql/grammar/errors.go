package grammar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aleksaelezovic/sparqlir/pkg/sparql/lexer"
)

// SyntaxError reports the furthest token the parser reached and the
// terminals that would have been accepted there.
type SyntaxError struct {
	Line     int
	Lexeme   string
	Expected []string
}

func newSyntaxError(tok lexer.Token, expected []string) *SyntaxError {
	sort.Strings(expected)
	lexeme := tok.Raw
	if lexeme == "" {
		lexeme = tok.Value
	}
	if tok.Kind == lexer.EOF {
		lexeme = "EOF"
	}
	return &SyntaxError{Line: tok.Line, Lexeme: lexeme, Expected: expected}
}

func (e *SyntaxError) Error() string {
	msg := fmt.Sprintf("line %d: syntax error at %q", e.Line, e.Lexeme)
	if len(e.Expected) > 0 {
		msg += ", expected one of: " + strings.Join(e.Expected, ", ")
	}
	return msg
}
