package grammar

import (
	"fmt"

	"github.com/aleksaelezovic/sparqlir/pkg/sparql/lexer"
)

// Result is one value contributed to a parent rule: a token matched by a
// terminal, or the value returned by a named rule's action. Name is the rule
// name, the terminal kind (e.g. "IRIREF") or the literal keyword/punctuation.
type Result struct {
	Name  string
	Value any
	Token *lexer.Token
	Line  int
}

// Text returns the token value for terminal results and "" otherwise.
func (r Result) Text() string {
	if r.Token != nil {
		return r.Token.Value
	}
	return ""
}

// Match is handed to a rule's action: the ordered results of everything the
// rule matched, with results of action-less rules spliced in place.
type Match struct {
	Rule    string
	Line    int
	Results []Result
}

// Get returns the first result tagged name.
func (m *Match) Get(name string) (Result, bool) {
	for _, r := range m.Results {
		if r.Name == name {
			return r, true
		}
	}
	return Result{}, false
}

// Has reports whether any result is tagged name.
func (m *Match) Has(name string) bool {
	_, ok := m.Get(name)
	return ok
}

// Value returns the value of the first result tagged name, or nil.
func (m *Match) Value(name string) any {
	r, _ := m.Get(name)
	return r.Value
}

// All returns every result tagged name, in order.
func (m *Match) All(name string) []Result {
	var out []Result
	for _, r := range m.Results {
		if r.Name == name {
			out = append(out, r)
		}
	}
	return out
}

// Action computes the value of a named rule from its match.
type Action[S any] func(state S, m *Match) (any, error)

// Engine evaluates a Table against token streams, calling the registered
// actions and hooks on a per-parse state S. An Engine is safe for
// concurrent use once all actions and hooks are registered.
type Engine[S any] struct {
	table   *Table
	actions map[string]Action[S]
	enter   map[string]func(S)
	leave   map[string]func(S)
}

func NewEngine[S any](table *Table) *Engine[S] {
	return &Engine[S]{
		table:   table,
		actions: map[string]Action[S]{},
		enter:   map[string]func(S){},
		leave:   map[string]func(S){},
	}
}

// On registers the action for a named rule. It panics if the rule is not in
// the table.
func (e *Engine[S]) On(name string, action Action[S]) *Engine[S] {
	e.mustHave(name)
	e.actions[name] = action
	return e
}

// Around registers hooks run when a named rule is entered and left. Leave
// runs whether or not the rule matched. Either hook may be nil.
func (e *Engine[S]) Around(name string, enter, leave func(S)) *Engine[S] {
	e.mustHave(name)
	if enter != nil {
		e.enter[name] = enter
	}
	if leave != nil {
		e.leave[name] = leave
	}
	return e
}

func (e *Engine[S]) mustHave(name string) {
	if !e.table.Has(name) {
		panic(fmt.Sprintf("grammar: no rule named %q", name))
	}
}

// Parse tokenizes src and matches it against the start rule, which must
// consume the whole input and must have an action. It returns the value of
// that action.
func (e *Engine[S]) Parse(src string, start string, state S) (any, error) {
	rule := e.table.Rule(start)
	if rule == nil {
		return nil, fmt.Errorf("grammar: no rule named %q", start)
	}
	if _, ok := e.actions[start]; !ok {
		return nil, fmt.Errorf("grammar: start rule %q has no action", start)
	}

	r := &run[S]{engine: e, lex: lexer.New(src), state: state, expected: map[string]struct{}{}}
	results, ok, err := r.named(rule)
	if err != nil {
		return nil, err
	}
	if ok {
		tok, err := r.peek()
		if err != nil {
			return nil, err
		}
		if tok.Kind == lexer.EOF {
			return results[0].Value, nil
		}
		r.expect([]string{"EOF"})
	}
	return nil, r.syntaxError()
}

// run is the state of a single parse.
type run[S any] struct {
	engine *Engine[S]
	lex    *lexer.Lexer
	state  S

	tokens []lexer.Token
	pos    int

	furthest int
	expected map[string]struct{}
}

func (r *run[S]) tokenAt(i int) (lexer.Token, error) {
	for len(r.tokens) <= i {
		if n := len(r.tokens); n > 0 && r.tokens[n-1].Kind == lexer.EOF {
			return r.tokens[n-1], nil
		}
		tok, err := r.lex.Next()
		if err != nil {
			return lexer.Token{}, err
		}
		r.tokens = append(r.tokens, tok)
	}
	return r.tokens[i], nil
}

func (r *run[S]) peek() (lexer.Token, error) {
	return r.tokenAt(r.pos)
}

// expect records the terminals that could have matched at the cursor.
func (r *run[S]) expect(what []string) {
	if r.pos < r.furthest {
		return
	}
	if r.pos > r.furthest {
		r.furthest = r.pos
		r.expected = map[string]struct{}{}
	}
	for _, w := range what {
		r.expected[w] = struct{}{}
	}
}

func (r *run[S]) syntaxError() error {
	tok, err := r.tokenAt(r.furthest)
	if err != nil {
		return err
	}
	expected := make([]string, 0, len(r.expected))
	for w := range r.expected {
		expected = append(expected, w)
	}
	return newSyntaxError(tok, expected)
}

// named evaluates a table rule, running its hooks and action.
func (r *run[S]) named(rule *Rule) ([]Result, bool, error) {
	e := r.engine
	if enter := e.enter[rule.Name]; enter != nil {
		enter(r.state)
	}
	if leave := e.leave[rule.Name]; leave != nil {
		defer leave(r.state)
	}

	start := r.pos
	results, ok, err := r.eval(rule.Children[0])
	if err != nil || !ok {
		return nil, ok, err
	}

	action := e.actions[rule.Name]
	if action == nil {
		return results, true, nil
	}
	line := 0
	if tok, err := r.tokenAt(start); err == nil {
		line = tok.Line
	}
	value, err := action(r.state, &Match{Rule: rule.Name, Line: line, Results: results})
	if err != nil {
		return nil, false, err
	}
	return []Result{{Name: rule.Name, Value: value, Line: line}}, true, nil
}

func (r *run[S]) eval(rule *Rule) ([]Result, bool, error) {
	switch rule.Kind {
	case Terminal:
		tok, err := r.peek()
		if err != nil {
			return nil, false, err
		}
		if !rule.matches(tok) {
			r.expect(rule.describe())
			return nil, false, nil
		}
		r.pos++
		return []Result{{Name: rule.resultName(tok), Value: tok.Value, Token: &tok, Line: tok.Line}}, true, nil

	case Reference:
		return r.named(r.engine.table.rules[rule.Name])

	case Sequence:
		save := r.pos
		var out []Result
		for _, child := range rule.Children {
			res, ok, err := r.eval(child)
			if err != nil {
				return nil, false, err
			}
			if !ok {
				r.pos = save
				return nil, false, nil
			}
			out = append(out, res...)
		}
		return out, true, nil

	case Alternative:
		save := r.pos
		for _, child := range rule.Children {
			res, ok, err := r.eval(child)
			if err != nil {
				return nil, false, err
			}
			if ok {
				return res, true, nil
			}
			r.pos = save
		}
		return nil, false, nil

	case ZeroOrMore, OneOrMore:
		var out []Result
		for n := 0; ; n++ {
			save := r.pos
			res, ok, err := r.eval(rule.Children[0])
			if err != nil {
				return nil, false, err
			}
			if !ok {
				r.pos = save
				if n == 0 && rule.Kind == OneOrMore {
					return nil, false, nil
				}
				return out, true, nil
			}
			out = append(out, res...)
			if r.pos == save {
				// no progress; stop instead of looping forever
				return out, true, nil
			}
		}

	case Optional:
		save := r.pos
		res, ok, err := r.eval(rule.Children[0])
		if err != nil {
			return nil, false, err
		}
		if !ok {
			r.pos = save
			return nil, true, nil
		}
		return res, true, nil
	}
	return nil, false, fmt.Errorf("grammar: unknown rule kind %s", rule.Kind)
}
