package lexer

import "fmt"

// Kind identifies the terminal class of a token. Punctuation and keywords
// have Kind None and are matched by value.
type Kind int

const (
	None Kind = iota
	IRIRef
	PNameNS
	PNameLN
	BlankNodeLabel
	Var1
	Var2
	LangTag
	Integer
	Decimal
	Double
	IntegerPositive
	DecimalPositive
	DoublePositive
	IntegerNegative
	DecimalNegative
	DoubleNegative
	StringLiteral1
	StringLiteral2
	StringLiteralLong1
	StringLiteralLong2
	Nil
	Anon
	EOF
)

var kindNames = [...]string{
	None:               "",
	IRIRef:             "IRIREF",
	PNameNS:            "PNAME_NS",
	PNameLN:            "PNAME_LN",
	BlankNodeLabel:     "BLANK_NODE_LABEL",
	Var1:               "VAR1",
	Var2:               "VAR2",
	LangTag:            "LANGTAG",
	Integer:            "INTEGER",
	Decimal:            "DECIMAL",
	Double:             "DOUBLE",
	IntegerPositive:    "INTEGER_POSITIVE",
	DecimalPositive:    "DECIMAL_POSITIVE",
	DoublePositive:     "DOUBLE_POSITIVE",
	IntegerNegative:    "INTEGER_NEGATIVE",
	DecimalNegative:    "DECIMAL_NEGATIVE",
	DoubleNegative:     "DOUBLE_NEGATIVE",
	StringLiteral1:     "STRING_LITERAL1",
	StringLiteral2:     "STRING_LITERAL2",
	StringLiteralLong1: "STRING_LITERAL_LONG1",
	StringLiteralLong2: "STRING_LITERAL_LONG2",
	Nil:                "NIL",
	Anon:               "ANON",
	EOF:                "EOF",
}

// String returns the grammar name of the terminal class.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is a single lexical unit. Value holds the decoded payload: the IRI
// without angle brackets, the variable name without its sigil, the string
// contents with escapes processed, or the upper-cased keyword.
//
// Raw is the text as written, used when reporting errors.
type Token struct {
	Kind  Kind
	Value string
	Raw   string
	Line  int
}

func (t Token) String() string {
	if t.Kind == None {
		return fmt.Sprintf("%q", t.Value)
	}
	if t.Kind == EOF {
		return "EOF"
	}
	return fmt.Sprintf("%s(%q)", t.Kind, t.Value)
}

// Error is a lexical error: no token pattern matched at the cursor.
type Error struct {
	Line   int
	Lexeme string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: invalid token %q", e.Line, e.Lexeme)
}
