package combinator

import (
	"fmt"
	"strings"

	"github.com/npillmayer/koopa"
	"github.com/npillmayer/koopa/stack"
	"github.com/npillmayer/koopa/stream"
	"github.com/npillmayer/koopa/tree"
	"github.com/npillmayer/schuko/gconf"
)

// --- Rules -----------------------------------------------------------------

// Rule is a named parser. While a rule is being matched, its name is on top
// of the rule stack. A successful match creates a tree node carrying the
// rule's name, unless the rule is a fragment.
type Rule struct {
	name     string
	body     Parser
	fragment bool
	grammar  string
}

// Name returns the name of the rule.
func (r *Rule) Name() string {
	return r.name
}

// Body returns the parser of the rule.
func (r *Rule) Body() Parser {
	return r.body
}

// IsFragment is true for rules which do not create tree nodes.
func (r *Rule) IsFragment() bool {
	return r.fragment
}

// Matches is part of interface Parser.
func (r *Rule) Matches(ctx *Context) bool {
	if ctx.Stack.Depth() >= ctx.maxDepth {
		koopa.Violation("rule nesting deeper than %d at rule %s, left recursion?", ctx.maxDepth, r.name)
	}
	ctx.Stack.Push(r.name)
	defer func() {
		if f := ctx.Stack.Pop(); f.Name != r.name {
			koopa.Violation("unbalanced rule stack: popped %s in rule %s", f.Name, r.name)
		}
	}()
	entry := ctx.Stream.Index()
	var ok bool
	if r.fragment || ctx.Builder == nil {
		ok = r.body.Matches(ctx)
	} else {
		m := ctx.Builder.Mark()
		ctx.Builder.Open(r.name)
		if ok = r.body.Matches(ctx); ok {
			// nested rules without structure leave nothing in the tree
			if id := ctx.Builder.Close(); ctx.Builder.Depth() > 0 && ctx.Builder.IsEmpty(id) {
				ctx.Builder.Rollback(m)
			}
		} else {
			ctx.Builder.Rollback(m)
		}
	}
	if !ok && ctx.Stream.Index() != entry {
		koopa.Violation("rule %s failed without restoring the input", r.name)
	}
	tracer().Debugf("%s: %s %v", ctx.Stack, r.name, ok)
	return ok
}

func (r *Rule) parsers() []Parser { return []Parser{r.body} }

func (r *Rule) String() string {
	return r.name
}

// --- References ------------------------------------------------------------

type ref struct {
	grammar string // empty for unqualified references
	name    string
	target  *Rule
}

// Ref refers to a rule by name. References are resolved when the grammar is
// built: first within the grammar itself, then within imported grammars in
// the order of import.
func Ref(name string) Parser {
	return &ref{name: name}
}

// QRef refers to a rule of an imported grammar.
func QRef(grammar, name string) Parser {
	return &ref{grammar: grammar, name: name}
}

func (r *ref) Matches(ctx *Context) bool {
	if r.target == nil {
		koopa.Violation("unresolved reference to %s", r)
	}
	return r.target.Matches(ctx)
}

func (r *ref) String() string {
	if r.grammar != "" {
		return r.grammar + "::" + r.name
	}
	return r.name
}

// --- Grammars --------------------------------------------------------------

// Provenance tells whether a grammar was constructed by hand or generated from
// a grammar definition.
type Provenance int

// Provenances of grammars.
const (
	HandWritten Provenance = iota
	Generated
)

func (p Provenance) String() string {
	if p == Generated {
		return "generated"
	}
	return "hand-written"
}

// Grammar is an immutable collection of named rules.
type Grammar struct {
	name       string
	rules      map[string]*Rule
	order      []string
	imports    []*Grammar
	provenance Provenance
	source     string
}

// Name returns the name of the grammar.
func (g *Grammar) Name() string {
	return g.name
}

// Rule returns the rule for a name.
func (g *Grammar) Rule(name string) (*Rule, bool) {
	r, ok := g.rules[name]
	return r, ok
}

// RuleNames returns the names of all rules in order of definition.
func (g *Grammar) RuleNames() []string {
	names := make([]string, len(g.order))
	copy(names, g.order)
	return names
}

// Start returns the name of the first rule, which is the default start rule.
func (g *Grammar) Start() string {
	if len(g.order) == 0 {
		return ""
	}
	return g.order[0]
}

// Imports returns the imported grammars.
func (g *Grammar) Imports() []*Grammar {
	return g.imports
}

// Provenance tells how the grammar came into existence, and from which source.
func (g *Grammar) Provenance() (Provenance, string) {
	return g.provenance, g.source
}

func (g *Grammar) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "grammar %s; // %s", g.name, g.provenance)
	for _, name := range g.order {
		r := g.rules[name]
		kind := "rule"
		if r.fragment {
			kind = "fragment"
		}
		fmt.Fprintf(&b, "\n%s %s = %s ;", kind, name, r.body)
	}
	return b.String()
}

// --- Parsing ---------------------------------------------------------------

// Outcome is the result of a parse.
type Outcome struct {
	Accepted      bool
	Tree          *tree.Tree   // nil if rejected or if no tree has been built
	Furthest      int          // furthest stream index a terminal has been tried at
	FurthestToken *koopa.Token // token at Furthest, nil at end of input
}

type parseConfig struct {
	buildTree bool
	stack     *stack.Stack
	skip      func(*koopa.Token) bool
	maxDepth  int
}

// ParseOption configures a parse.
type ParseOption func(*parseConfig)

// BuildTree switches tree building on or off. Default is on.
func BuildTree(b bool) ParseOption {
	return func(c *parseConfig) {
		c.buildTree = b
	}
}

// WithStack sets the rule stack to use. Clients may pre-populate it to
// parse in the context of outer rules.
func WithStack(st *stack.Stack) ParseOption {
	return func(c *parseConfig) {
		c.stack = st
	}
}

// Skip sets the predicate for tokens hidden from terminals. Default is Hidden.
func Skip(skip func(*koopa.Token) bool) ParseOption {
	return func(c *parseConfig) {
		if skip != nil {
			c.skip = skip
		}
	}
}

// MaxDepth limits the nesting depth of rule invocations.
func MaxDepth(n int) ParseOption {
	return func(c *parseConfig) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// Parse matches the complete input s against rule start (or the grammar's
// first rule, if start is empty).
//
// If the input is rejected, Parse returns an outcome without a tree together
// with a *koopa.Rejection. Violations of internal contracts panic with a
// koopa.ContractViolation.
func (g *Grammar) Parse(s stream.Stream, start string, opts ...ParseOption) (*Outcome, error) {
	if start == "" {
		start = g.Start()
	}
	rule, ok := g.rules[start]
	if !ok {
		return nil, fmt.Errorf("grammar %s has no rule %q", g.name, start)
	}
	cfg := parseConfig{buildTree: true, skip: Hidden, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.stack != nil {
		s = stream.Limited(s, cfg.stack)
	}
	var b *tree.Builder
	if cfg.buildTree {
		b = tree.NewBuilder()
	}
	ctx := NewContext(g, s, b)
	ctx.skip, ctx.maxDepth = cfg.skip, cfg.maxDepth
	depth := ctx.Stack.Depth()
	accepted := rule.Matches(ctx) && EOF().Matches(ctx)
	if ctx.Stack.Depth() != depth {
		koopa.Violation("rule stack unbalanced after parse")
	}
	outcome := &Outcome{
		Accepted:      accepted,
		Furthest:      ctx.furthest,
		FurthestToken: ctx.farTok,
	}
	if !accepted {
		tracer().Infof("grammar %s rejected input at token %d", g.name, ctx.furthest)
		if gconf.GetBool("panic-on-parser-stuck") {
			panic(fmt.Sprintf("parser stuck at token %d", ctx.furthest))
		}
		return outcome, ctx.rejection()
	}
	if b != nil {
		outcome.Tree = b.Tree()
	}
	return outcome, nil
}

// rejection creates an error value for the furthest position reached.
func (ctx *Context) rejection() *koopa.Rejection {
	r := &koopa.Rejection{Index: ctx.furthest, Token: ctx.farTok}
	if ctx.farTok != nil {
		r.Position = ctx.farTok.Start
	} else if ctx.lastTok != nil {
		r.Position = ctx.lastTok.End
	}
	r.Source = r.Position.Source
	return r
}

// Matches tries to match rule start at the current position of the context's
// stream, without requiring the input to be consumed completely.
func (g *Grammar) Matches(ctx *Context, start string) bool {
	rule, ok := g.rules[start]
	if !ok {
		koopa.Violation("grammar %s has no rule %q", g.name, start)
	}
	return rule.Matches(ctx)
}
