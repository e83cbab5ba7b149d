package kg

import (
	"fmt"
	"strings"

	"github.com/npillmayer/koopa"
)

// Definition is the result of reading a KG file: a named list of rules.
type Definition struct {
	Grammar string     // grammar name, from the header or the source name
	Source  string     // path or name of the KG source
	Imports []string   // names of imported grammars, in order of import
	Rules   []*RuleDef // rules in order of definition
	Pos     koopa.Position
}

// RuleDef is a single rule definition.
type RuleDef struct {
	Name     string
	Fragment bool
	Body     Expr
	Pos      koopa.Position
}

// Rule returns the definition of a rule, if present.
func (d *Definition) Rule(name string) (*RuleDef, bool) {
	for _, r := range d.Rules {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// RuleNames returns the names of all rules in order of definition.
func (d *Definition) RuleNames() []string {
	names := make([]string, len(d.Rules))
	for i, r := range d.Rules {
		names[i] = r.Name
	}
	return names
}

// String renders the definition in KG syntax.
func (d *Definition) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "grammar %s;\n", d.Grammar)
	for _, imp := range d.Imports {
		fmt.Fprintf(&b, "import %s;\n", imp)
	}
	for _, r := range d.Rules {
		b.WriteString(r.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func (r *RuleDef) String() string {
	kind := "rule"
	if r.Fragment {
		kind = "fragment"
	}
	return fmt.Sprintf("%s %s = %s ;", kind, r.Name, r.Body)
}

// --- Expressions -----------------------------------------------------------

// Expr is an expression of a rule body.
type Expr interface {
	String() string
	isExpr()
}

// Literal matches a token by its text.
type Literal struct {
	Text string
	Fold bool // case-insensitive comparison
}

// Class matches a token by a token class: word, number, string, separator or any.
type Class struct {
	Name string
	Pos  koopa.Position
}

// Reference refers to a rule, optionally of an imported grammar.
type Reference struct {
	Grammar string // empty for unqualified references
	Name    string
	Pos     koopa.Position
}

// Sequence matches its items one after the other.
type Sequence struct {
	Items []Expr
}

// Choice matches the first matching alternative.
type Choice struct {
	Alternatives []Expr
}

// RepeatKind is one of the postfix operators.
type RepeatKind int

// Repetitions
const (
	ZeroOrMore RepeatKind = iota // x*
	OneOrMore                    // x+
	ZeroOrOne                    // x? or [x]
)

func (k RepeatKind) String() string {
	return [...]string{"*", "+", "?"}[k]
}

// Repeat matches an expression repeatedly.
type Repeat struct {
	Kind RepeatKind
	Expr Expr
}

// Not is a negative look-ahead.
type Not struct {
	Expr Expr
}

// And is a positive look-ahead.
type And struct {
	Expr Expr
}

// Limit matches Expr with the input cut off in front of By.
type Limit struct {
	Expr Expr
	By   Expr
}

// Within tests the rule stack.
type Within struct {
	Names []string
	Pos   koopa.Position
}

func (*Literal) isExpr()   {}
func (*Class) isExpr()     {}
func (*Reference) isExpr() {}
func (*Sequence) isExpr()  {}
func (*Choice) isExpr()    {}
func (*Repeat) isExpr()    {}
func (*Not) isExpr()       {}
func (*And) isExpr()       {}
func (*Limit) isExpr()     {}
func (*Within) isExpr()    {}

func (l *Literal) String() string {
	q := `"`
	if strings.Contains(l.Text, `"`) {
		q = `'`
	}
	if l.Fold {
		return "i" + q + l.Text + q
	}
	return q + l.Text + q
}

func (c *Class) String() string {
	return "$" + c.Name
}

func (r *Reference) String() string {
	if r.Grammar != "" {
		return r.Grammar + "::" + r.Name
	}
	return r.Name
}

func (s *Sequence) String() string {
	return joinExpr(s.Items, " ")
}

func (c *Choice) String() string {
	return joinExpr(c.Alternatives, " | ")
}

func (r *Repeat) String() string {
	return nested(r.Expr) + r.Kind.String()
}

func (n *Not) String() string {
	return "!" + nested(n.Expr)
}

func (a *And) String() string {
	return "&" + nested(a.Expr)
}

func (l *Limit) String() string {
	return "%limit " + nested(l.Expr) + " %by " + nested(l.By)
}

func (w *Within) String() string {
	return "%within(" + strings.Join(w.Names, ", ") + ")"
}

// nested puts parentheses around composite expressions.
func nested(e Expr) string {
	switch e.(type) {
	case *Sequence, *Choice, *Limit:
		return "(" + e.String() + ")"
	}
	return e.String()
}

func joinExpr(exprs []Expr, sep string) string {
	s := make([]string, len(exprs))
	for i, e := range exprs {
		if _, isChoice := e.(*Choice); isChoice && sep != " | " {
			s[i] = "(" + e.String() + ")"
			continue
		}
		s[i] = e.String()
	}
	return strings.Join(s, sep)
}

// Walk calls f for e and all of its sub-expressions, depth first.
func Walk(e Expr, f func(Expr)) {
	if e == nil {
		return
	}
	f(e)
	switch x := e.(type) {
	case *Sequence:
		for _, item := range x.Items {
			Walk(item, f)
		}
	case *Choice:
		for _, alt := range x.Alternatives {
			Walk(alt, f)
		}
	case *Repeat:
		Walk(x.Expr, f)
	case *Not:
		Walk(x.Expr, f)
	case *And:
		Walk(x.Expr, f)
	case *Limit:
		Walk(x.Expr, f)
		Walk(x.By, f)
	}
}
