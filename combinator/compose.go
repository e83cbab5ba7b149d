package combinator

import (
	"strings"

	"github.com/npillmayer/koopa"
	"github.com/npillmayer/koopa/stack"
	"github.com/npillmayer/koopa/stream"
)

// composite is implemented by combinators with sub-parsers. It is used to
// walk a parser graph, e.g. for resolving references.
type composite interface {
	parsers() []Parser
}

// --- Sequence and choice ---------------------------------------------------

type sequence struct {
	items []Parser
}

// Sequence matches all parsers in order. If any of them fails, the whole
// sequence is rolled back.
func Sequence(items ...Parser) Parser {
	if len(items) == 1 {
		return items[0]
	}
	return &sequence{items: items}
}

func (s *sequence) Matches(ctx *Context) bool {
	cp := ctx.checkpoint()
	defer ctx.release(cp)
	for _, p := range s.items {
		if !p.Matches(ctx) {
			ctx.restore(cp)
			return false
		}
	}
	return true
}

func (s *sequence) parsers() []Parser { return s.items }

func (s *sequence) String() string {
	return "(" + join(s.items, " ") + ")"
}

type choice struct {
	alternatives []Parser
}

// Choice tries alternatives in order; the first one to match wins.
func Choice(alternatives ...Parser) Parser {
	if len(alternatives) == 1 {
		return alternatives[0]
	}
	return &choice{alternatives: alternatives}
}

func (c *choice) Matches(ctx *Context) bool {
	cp := ctx.checkpoint()
	defer ctx.release(cp)
	for _, p := range c.alternatives {
		if p.Matches(ctx) {
			return true
		}
		ctx.restore(cp)
	}
	return false
}

func (c *choice) parsers() []Parser { return c.alternatives }

func (c *choice) String() string {
	return "(" + join(c.alternatives, " | ") + ")"
}

// --- Repetition ------------------------------------------------------------

type repeat struct {
	p   Parser
	min int // 0 or 1
	max int // 1 for optionals, -1 for unbounded
}

// Star matches p zero or more times.
func Star(p Parser) Parser {
	return &repeat{p: p, min: 0, max: -1}
}

// Plus matches p one or more times.
func Plus(p Parser) Parser {
	return &repeat{p: p, min: 1, max: -1}
}

// Optional matches p zero or one times.
func Optional(p Parser) Parser {
	return &repeat{p: p, min: 0, max: 1}
}

// Matches repeats p while it matches. Every iteration is rolled back on its
// own if it fails. A successful iteration which did not consume any token ends
// the repetition.
func (r *repeat) Matches(ctx *Context) bool {
	cp := ctx.checkpoint()
	defer ctx.release(cp)
	count := 0
	for r.max < 0 || count < r.max {
		start := ctx.Stream.Index()
		if !r.p.Matches(ctx) {
			break
		}
		count++
		if ctx.Stream.Index() == start {
			break
		}
	}
	if count < r.min {
		ctx.restore(cp)
		return false
	}
	return true
}

func (r *repeat) parsers() []Parser { return []Parser{r.p} }

func (r *repeat) String() string {
	switch {
	case r.max == 1:
		return r.p.String() + "?"
	case r.min == 1:
		return r.p.String() + "+"
	}
	return r.p.String() + "*"
}

// --- Look-ahead ------------------------------------------------------------

type lookahead struct {
	p        Parser
	negative bool
}

// Not matches if p does not match. It never consumes input.
func Not(p Parser) Parser {
	return &lookahead{p: p, negative: true}
}

// And matches if p matches, without consuming input.
func And(p Parser) Parser {
	return &lookahead{p: p}
}

func (l *lookahead) Matches(ctx *Context) bool {
	cp := ctx.checkpoint()
	defer ctx.release(cp)
	ok := ctx.withoutTree(l.p)
	ctx.restore(cp)
	return ok != l.negative
}

func (l *lookahead) parsers() []Parser { return []Parser{l.p} }

func (l *lookahead) String() string {
	if l.negative {
		return "!" + l.p.String()
	}
	return "&" + l.p.String()
}

// --- Limits and stack predicates -------------------------------------------

type limit struct {
	p       Parser
	limiter Parser
}

// Limit matches p with the input limited: p will see end of input in front
// of any position where limiter matches.
//
// Example: statements terminated by a period, where an expression inside the
// statement must not read past the period:
//
//    Limit(Ref("expression"), Literal("."))
//
func Limit(p Parser, limiter Parser) Parser {
	return &limit{p: p, limiter: limiter}
}

func (l *limit) Matches(ctx *Context) bool {
	h := ctx.Stream.AddLimiter(stream.LimiterFunc(
		func(_ *stack.Stack, _ *koopa.Token, la stream.Stream) bool {
			return ctx.lookahead(la, l.limiter)
		}))
	defer ctx.Stream.RemoveLimiter(h)
	return l.p.Matches(ctx)
}

func (l *limit) parsers() []Parser { return []Parser{l.p, l.limiter} }

func (l *limit) String() string {
	return "%limit " + l.p.String() + " %by " + l.limiter.String()
}

type within struct {
	names []string
}

// Within matches, without consuming input, if the named rules are active, in
// the given order from innermost to outermost. See stack.IsMatching.
func Within(names ...string) Parser {
	return &within{names: names}
}

func (w *within) Matches(ctx *Context) bool {
	return ctx.Stack.IsMatching(w.names...)
}

func (w *within) String() string {
	return "%within(" + strings.Join(w.names, ", ") + ")"
}

// ---------------------------------------------------------------------------

func join(parsers []Parser, sep string) string {
	s := make([]string, len(parsers))
	for i, p := range parsers {
		s[i] = p.String()
	}
	return strings.Join(s, sep)
}
