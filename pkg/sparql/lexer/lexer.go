// Package lexer turns SPARQL text into a stream of tokens.
//
// Terminal classes are tried in a fixed order (variables, IRIs, prefixed
// names, strings, language tags, numbers, booleans, blank node labels,
// NIL/ANON, keywords, punctuation); the first class whose pattern matches at
// the cursor wins.
package lexer

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	pnCharsBase = `A-Za-z\x{00C0}-\x{00D6}\x{00D8}-\x{00F6}\x{00F8}-\x{02FF}\x{0370}-\x{037D}` +
		`\x{037F}-\x{1FFF}\x{200C}-\x{200D}\x{2070}-\x{218F}\x{2C00}-\x{2FEF}\x{3001}-\x{D7FF}` +
		`\x{F900}-\x{FDCF}\x{FDF0}-\x{FFFD}\x{10000}-\x{EFFFF}`
	pnCharsU = pnCharsBase + `_`
	pnChars  = pnCharsU + `\-0-9\x{00B7}\x{0300}-\x{036F}\x{203F}-\x{2040}`

	varName  = `[` + pnCharsU + `0-9][` + pnCharsU + `0-9\x{00B7}\x{0300}-\x{036F}\x{203F}-\x{2040}]*`
	pnPrefix = `[` + pnCharsBase + `](?:[` + pnChars + `.]*[` + pnChars + `])?`
	plx      = `%[0-9A-Fa-f]{2}|\\[_~.\-!$&'()*+,;=/?#@%]`
	pnLocal  = `(?:[` + pnCharsU + `:0-9]|` + plx + `)(?:(?:[` + pnChars + `.:]|` + plx + `)*(?:[` + pnChars + `:]|` + plx + `))?`

	echar = `\\[tbnrf\\"']`

	double  = `(?:[0-9]+\.[0-9]*[eE][+-]?[0-9]+|\.[0-9]+[eE][+-]?[0-9]+|[0-9]+[eE][+-]?[0-9]+)`
	decimal = `[0-9]*\.[0-9]+`
	integer = `[0-9]+`
)

// pattern is one entry of the terminal table. Group 1 of re, when present,
// is the token value; otherwise the whole match is.
type pattern struct {
	kind  Kind
	re    *regexp.Regexp
	value func(string) string
}

func pat(kind Kind, re string, value func(string) string) pattern {
	return pattern{kind: kind, re: regexp.MustCompile(`^(?:` + re + `)`), value: value}
}

var patterns = []pattern{
	pat(Var1, `\?(`+varName+`)`, nil),
	pat(Var2, `\$(`+varName+`)`, nil),
	pat(IRIRef, "<([^<>\"{}|^`\\\\\\x00-\\x20]*)>", nil),
	pat(PNameLN, `((?:`+pnPrefix+`)?:`+pnLocal+`)`, nil),
	pat(PNameNS, `((?:`+pnPrefix+`)?:)`, nil),
	pat(StringLiteralLong1, `'''((?:(?:'|'')?(?:[^'\\]|`+echar+`))*)'''`, unescapeString),
	pat(StringLiteralLong2, `"""((?:(?:"|"")?(?:[^"\\]|`+echar+`))*)"""`, unescapeString),
	pat(StringLiteral1, `'((?:[^\x27\x5C\x0A\x0D]|`+echar+`)*)'`, unescapeString),
	pat(StringLiteral2, `"((?:[^\x22\x5C\x0A\x0D]|`+echar+`)*)"`, unescapeString),
	pat(LangTag, `@([a-zA-Z]+(?:-[a-zA-Z0-9]+)*(?:--[a-zA-Z]+)?)`, nil),
	pat(DoublePositive, `\+`+double, nil),
	pat(DoubleNegative, `-`+double, nil),
	pat(DecimalPositive, `\+`+decimal, nil),
	pat(DecimalNegative, `-`+decimal, nil),
	pat(IntegerPositive, `\+`+integer, nil),
	pat(IntegerNegative, `-`+integer, nil),
	pat(Double, double, nil),
	pat(Decimal, decimal, nil),
	pat(Integer, integer, nil),
	pat(None, `(?i:true|false)\b`, strings.ToLower),
	pat(BlankNodeLabel, `_:([`+pnCharsU+`0-9](?:[`+pnChars+`.]*[`+pnChars+`])?)`, nil),
	pat(Nil, `\([ \t\r\n]*\)`, func(string) string { return "()" }),
	pat(Anon, `\[[ \t\r\n]*\]`, func(string) string { return "[]" }),
}

var wordPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*`)

// punctuation, longest first
var punctuation = []string{
	"<<(", ")>>",
	"<<", ">>", "{|", "|}", "^^", "&&", "||", "!=", "<=", ">=",
	"{", "}", "(", ")", "[", "]", ";", ",", ".", "=", "<", ">", "!",
	"+", "-", "*", "/", "?", "|", "^", "~",
}

// Lexer produces tokens from a single input. It is not safe for concurrent
// use and cannot be rewound.
type Lexer struct {
	input string
	pos   int
	line  int
}

// New creates a lexer over input. Codepoint escapes (\uXXXX, \UXXXXXXXX) are
// decoded before tokenization.
func New(input string) *Lexer {
	return &Lexer{input: decodeCodepoints(input)}
}

// Next returns the next token. At end of input it returns an EOF token on
// every call.
func (l *Lexer) Next() (Token, error) {
	l.skipSpace()
	if l.pos >= len(l.input) {
		return Token{Kind: EOF, Line: l.line}, nil
	}
	rest := l.input[l.pos:]
	line := l.line

	for _, p := range patterns {
		m := p.re.FindStringSubmatchIndex(rest)
		if m == nil {
			continue
		}
		raw := rest[:m[1]]
		value := raw
		if len(m) >= 4 && m[2] >= 0 {
			value = rest[m[2]:m[3]]
		}
		if p.value != nil {
			value = p.value(value)
		}
		l.advance(raw)
		return Token{Kind: p.kind, Value: value, Raw: raw, Line: line}, nil
	}

	if word := wordPattern.FindString(rest); word != "" {
		if word == "a" {
			l.advance(word)
			return Token{Kind: None, Value: "a", Raw: word, Line: line}, nil
		}
		if upper := strings.ToUpper(word); keywords[upper] {
			l.advance(word)
			return Token{Kind: None, Value: upper, Raw: word, Line: line}, nil
		}
	}

	for _, p := range punctuation {
		if strings.HasPrefix(rest, p) {
			l.advance(p)
			return Token{Kind: None, Value: p, Raw: p, Line: line}, nil
		}
	}

	lexeme := rest
	if i := strings.IndexAny(rest, " \t\r\n"); i >= 0 {
		lexeme = rest[:i]
	}
	return Token{}, &Error{Line: line, Lexeme: lexeme}
}

// All drains the lexer, returning every token up to and including EOF.
func (l *Lexer) All() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) advance(raw string) {
	l.line += strings.Count(raw, "\n")
	l.pos += len(raw)
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case '\n':
			l.line++
			l.pos++
		case ' ', '\t', '\r':
			l.pos++
		case '#':
			end := strings.IndexByte(l.input[l.pos:], '\n')
			if end < 0 {
				l.pos = len(l.input)
			} else {
				l.pos += end
			}
		default:
			return
		}
	}
}

// decodeCodepoints replaces \uXXXX and \UXXXXXXXX with the encoded rune. An
// escaped backslash is copied through so "\\u0041" stays literal.
func decodeCodepoints(s string) string {
	if !strings.Contains(s, `\u`) && !strings.Contains(s, `\U`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		next := s[i+1]
		width := 0
		switch next {
		case '\\':
			b.WriteString(`\\`)
			i++
			continue
		case 'u':
			width = 4
		case 'U':
			width = 8
		}
		if width > 0 && i+2+width <= len(s) {
			if n, err := strconv.ParseUint(s[i+2:i+2+width], 16, 32); err == nil && utf8.ValidRune(rune(n)) {
				b.WriteRune(rune(n))
				i += 1 + width
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

var echars = map[byte]byte{
	't': '\t', 'b': '\b', 'n': '\n', 'r': '\r', 'f': '\f',
	'"': '"', '\'': '\'', '\\': '\\',
}

// unescapeString decodes ECHAR sequences in a string literal body.
func unescapeString(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			if r, ok := echars[s[i+1]]; ok {
				b.WriteByte(r)
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
