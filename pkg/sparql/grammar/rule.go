// Package grammar is a small PEG evaluator driven by a table of rules.
//
// Rules are built with the combinators in this file and collected into a
// Table. An Engine walks the table over a token stream, calling the semantic
// actions registered for named rules as each one completes.
package grammar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aleksaelezovic/sparqlir/pkg/sparql/lexer"
)

// Kind is the kind of a grammar rule.
type Kind int

const (
	Terminal Kind = iota
	Sequence
	Alternative
	ZeroOrMore
	OneOrMore
	Optional
	Reference
)

func (k Kind) String() string {
	switch k {
	case Terminal:
		return "terminal"
	case Sequence:
		return "sequence"
	case Alternative:
		return "alternative"
	case ZeroOrMore:
		return "star"
	case OneOrMore:
		return "plus"
	case Optional:
		return "optional"
	case Reference:
		return "reference"
	default:
		return "unknown"
	}
}

// Rule is a node of a grammar expression. Named rules are the top-level
// entries of a Table; everything nested inside them is anonymous.
type Rule struct {
	Name     string
	Kind     Kind
	Children []*Rule

	// terminal matching: either a token kind, or one of a set of values for
	// untyped (keyword/punctuation) tokens
	token  lexer.Kind
	values []string
}

// Tok matches a single token of the given typed kind.
func Tok(kind lexer.Kind) *Rule {
	return &Rule{Kind: Terminal, token: kind}
}

// Lit matches a single untyped token whose value is one of values.
func Lit(values ...string) *Rule {
	return &Rule{Kind: Terminal, token: lexer.None, values: values}
}

// Ref refers to the named rule name in the enclosing Table.
func Ref(name string) *Rule {
	return &Rule{Kind: Reference, Name: name}
}

func Seq(children ...*Rule) *Rule {
	return &Rule{Kind: Sequence, Children: children}
}

func Alt(children ...*Rule) *Rule {
	return &Rule{Kind: Alternative, Children: children}
}

// Star matches the sequence of children zero or more times.
func Star(children ...*Rule) *Rule {
	return &Rule{Kind: ZeroOrMore, Children: []*Rule{group(children)}}
}

// Plus matches the sequence of children one or more times.
func Plus(children ...*Rule) *Rule {
	return &Rule{Kind: OneOrMore, Children: []*Rule{group(children)}}
}

// Opt matches the sequence of children zero or one time.
func Opt(children ...*Rule) *Rule {
	return &Rule{Kind: Optional, Children: []*Rule{group(children)}}
}

func group(children []*Rule) *Rule {
	if len(children) == 1 {
		return children[0]
	}
	return Seq(children...)
}

// matches reports whether tok satisfies the terminal rule.
func (r *Rule) matches(tok lexer.Token) bool {
	if tok.Kind != r.token {
		return false
	}
	if r.token != lexer.None {
		return true
	}
	for _, v := range r.values {
		if tok.Value == v {
			return true
		}
	}
	return false
}

// describe names a terminal for syntax error messages.
func (r *Rule) describe() []string {
	if r.token != lexer.None {
		return []string{r.token.String()}
	}
	out := make([]string, len(r.values))
	for i, v := range r.values {
		out[i] = fmt.Sprintf("%q", v)
	}
	return out
}

// resultName is the tag a terminal puts on its Result.
func (r *Rule) resultName(tok lexer.Token) string {
	if r.token != lexer.None {
		return r.token.String()
	}
	return tok.Value
}

func (r *Rule) String() string {
	switch r.Kind {
	case Terminal:
		return strings.Join(r.describe(), "|")
	case Reference:
		return r.Name
	case Sequence, Alternative:
		sep := " "
		if r.Kind == Alternative {
			sep = " | "
		}
		parts := make([]string, len(r.Children))
		for i, c := range r.Children {
			parts[i] = c.String()
		}
		return "(" + strings.Join(parts, sep) + ")"
	case ZeroOrMore:
		return r.Children[0].String() + "*"
	case OneOrMore:
		return r.Children[0].String() + "+"
	case Optional:
		return r.Children[0].String() + "?"
	}
	return "?"
}

// Table is an immutable set of named rules.
type Table struct {
	rules map[string]*Rule
}

// NewTable builds a table from named rule bodies and checks that every
// reference resolves.
func NewTable(rules map[string]*Rule) (*Table, error) {
	t := &Table{rules: make(map[string]*Rule, len(rules))}
	for name, body := range rules {
		if body == nil {
			return nil, fmt.Errorf("rule %q has no body", name)
		}
		t.rules[name] = &Rule{Name: name, Kind: Sequence, Children: []*Rule{body}}
	}

	var missing []string
	seen := map[string]bool{}
	var walk func(r *Rule)
	walk = func(r *Rule) {
		if r.Kind == Reference {
			if _, ok := t.rules[r.Name]; !ok && !seen[r.Name] {
				seen[r.Name] = true
				missing = append(missing, r.Name)
			}
			return
		}
		for _, c := range r.Children {
			walk(c)
		}
	}
	for _, r := range t.rules {
		walk(r)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("undefined rules: %s", strings.Join(missing, ", "))
	}
	return t, nil
}

// MustTable is like NewTable but panics on error.
func MustTable(rules map[string]*Rule) *Table {
	t, err := NewTable(rules)
	if err != nil {
		panic(err)
	}
	return t
}

// Has reports whether the table defines name.
func (t *Table) Has(name string) bool {
	_, ok := t.rules[name]
	return ok
}

// Names returns the rule names in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.rules))
	for name := range t.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Rule returns the named rule, or nil.
func (t *Table) Rule(name string) *Rule {
	return t.rules[name]
}
