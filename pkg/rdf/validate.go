package rdf

import (
	"fmt"
	"regexp"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/unicode/rangetable"
)

// pnCharsBase is PN_CHARS_BASE from the SPARQL/Turtle grammars.
var pnCharsBase = rangetable.Merge(&unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 'A', Hi: 'Z', Stride: 1},
		{Lo: 'a', Hi: 'z', Stride: 1},
		{Lo: 0x00C0, Hi: 0x00D6, Stride: 1},
		{Lo: 0x00D8, Hi: 0x00F6, Stride: 1},
		{Lo: 0x00F8, Hi: 0x02FF, Stride: 1},
		{Lo: 0x0370, Hi: 0x037D, Stride: 1},
		{Lo: 0x037F, Hi: 0x1FFF, Stride: 1},
		{Lo: 0x200C, Hi: 0x200D, Stride: 1},
		{Lo: 0x2070, Hi: 0x218F, Stride: 1},
		{Lo: 0x2C00, Hi: 0x2FEF, Stride: 1},
		{Lo: 0x3001, Hi: 0xD7FF, Stride: 1},
		{Lo: 0xF900, Hi: 0xFDCF, Stride: 1},
		{Lo: 0xFDF0, Hi: 0xFFFD, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x10000, Hi: 0xEFFFF, Stride: 1},
	},
})

var pnCharsU = rangetable.Merge(pnCharsBase, rangetable.New('_'))

var pnChars = rangetable.Merge(pnCharsU,
	rangetable.New('-', 0x00B7),
	&unicode.RangeTable{R16: []unicode.Range16{
		{Lo: '0', Hi: '9', Stride: 1},
		{Lo: 0x0300, Hi: 0x036F, Stride: 1},
		{Lo: 0x203F, Hi: 0x2040, Stride: 1},
	}},
)

func IsPNCharsBase(r rune) bool { return unicode.Is(pnCharsBase, r) }

func IsPNCharsU(r rune) bool { return unicode.Is(pnCharsU, r) }

func IsPNChars(r rune) bool { return unicode.Is(pnChars, r) }

// ValidatePrefix checks that prefix is a legal PN_PREFIX (the empty prefix
// is allowed).
func ValidatePrefix(prefix string) error {
	runes := []rune(prefix)
	for i, r := range runes {
		ok := false
		switch {
		case i == 0:
			ok = IsPNCharsBase(r)
		case i == len(runes)-1:
			ok = IsPNChars(r)
		default:
			ok = IsPNChars(r) || r == '.'
		}
		if !ok {
			return fmt.Errorf("invalid character %q in prefix %q", r, prefix)
		}
	}
	return nil
}

// ValidateBlankNodeLabel checks the part of a BLANK_NODE_LABEL after "_:".
func ValidateBlankNodeLabel(label string) error {
	if label == "" {
		return fmt.Errorf("empty blank node label")
	}
	runes := []rune(label)
	for i, r := range runes {
		ok := false
		switch {
		case i == 0:
			ok = IsPNCharsU(r) || (r >= '0' && r <= '9')
		case i == len(runes)-1:
			ok = IsPNChars(r)
		default:
			ok = IsPNChars(r) || r == '.'
		}
		if !ok {
			return fmt.Errorf("invalid character %q in blank node label %q", r, label)
		}
	}
	return nil
}

var lexicalForms = map[string]*regexp.Regexp{
	XSDInteger.IRI:  regexp.MustCompile(`^[+-]?[0-9]+$`),
	XSDDecimal.IRI:  regexp.MustCompile(`^[+-]?([0-9]+(\.[0-9]*)?|\.[0-9]+)$`),
	XSDDouble.IRI:   regexp.MustCompile(`^([+-]?([0-9]+(\.[0-9]*)?|\.[0-9]+)([eE][+-]?[0-9]+)?|[+-]?INF|NaN)$`),
	XSDFloat.IRI:    regexp.MustCompile(`^([+-]?([0-9]+(\.[0-9]*)?|\.[0-9]+)([eE][+-]?[0-9]+)?|[+-]?INF|NaN)$`),
	XSDBoolean.IRI:  regexp.MustCompile(`^(true|false|1|0)$`),
	XSDDate.IRI:     regexp.MustCompile(`^-?[0-9]{4,}-[0-9]{2}-[0-9]{2}(Z|[+-][0-9]{2}:[0-9]{2})?$`),
	XSDTime.IRI:     regexp.MustCompile(`^[0-9]{2}:[0-9]{2}:[0-9]{2}(\.[0-9]+)?(Z|[+-][0-9]{2}:[0-9]{2})?$`),
	XSDDateTime.IRI: regexp.MustCompile(`^-?[0-9]{4,}-[0-9]{2}-[0-9]{2}T[0-9]{2}:[0-9]{2}:[0-9]{2}(\.[0-9]+)?(Z|[+-][0-9]{2}:[0-9]{2})?$`),
	XSDDuration.IRI: regexp.MustCompile(`^-?P([0-9]+Y)?([0-9]+M)?([0-9]+D)?(T([0-9]+H)?([0-9]+M)?([0-9]+(\.[0-9]+)?S)?)?$`),
}

// ValidateLanguage checks a BCP 47 language tag and an optional base
// direction.
func ValidateLanguage(tag, direction string) error {
	if _, err := language.Parse(tag); err != nil {
		return fmt.Errorf("invalid language tag %q: %w", tag, err)
	}
	switch direction {
	case "", "ltr", "rtl":
		return nil
	}
	return fmt.Errorf("invalid base direction %q", direction)
}

// ValidateLiteral checks the lexical form of literals with a known XSD
// datatype, and the language tag of language-tagged strings.
func ValidateLiteral(l *Literal) error {
	if l.Language != "" {
		return ValidateLanguage(l.Language, l.Direction)
	}
	if l.Datatype == nil {
		return nil
	}
	if err := ValidateIRI(l.Datatype.IRI); err != nil {
		return err
	}
	re, ok := lexicalForms[l.Datatype.IRI]
	if !ok {
		return nil
	}
	if !re.MatchString(l.Value) {
		return fmt.Errorf("invalid lexical form %q for %s", l.Value, l.Datatype)
	}
	return nil
}

// ValidateTerm validates a term and, for triple terms, its components.
func ValidateTerm(t Term) error {
	switch tt := t.(type) {
	case *NamedNode:
		return ValidateIRI(tt.IRI)
	case *Literal:
		return ValidateLiteral(tt)
	case *BlankNode:
		return ValidateBlankNodeLabel(tt.ID)
	case *TripleTerm:
		for _, c := range []Term{tt.Subject, tt.Predicate, tt.Object} {
			if err := ValidateTerm(c); err != nil {
				return err
			}
		}
	}
	return nil
}
