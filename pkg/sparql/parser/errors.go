package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrUndefinedPrefix is returned when a prefixed name uses a prefix that
	// has not been declared.
	ErrUndefinedPrefix = errors.New("undefined prefix")

	// ErrBlankNodeReuse is returned when a blank node label is used again
	// after the block that introduced it has been closed.
	ErrBlankNodeReuse = errors.New("illegal attempt to reuse a BNode")

	// ErrInvalidTerm is returned for malformed IRIs and literals when
	// validation is enabled.
	ErrInvalidTerm = errors.New("invalid term")

	// ErrReification is returned for structurally invalid triple terms,
	// reified triples and annotations.
	ErrReification = errors.New("invalid reification")
)

// SemanticError is a construction error raised by a grammar action.
type SemanticError struct {
	Line int
	Err  error
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *SemanticError) Unwrap() error {
	return e.Err
}
