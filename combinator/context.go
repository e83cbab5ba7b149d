/*
Package combinator implements backtracking parser combinators.

A parser is a value implementing Matches(*Context). Matches either succeeds,
having consumed zero or more tokens and having emitted zero or more nodes to
the tree builder, or fails. A failing parser leaves the stream and the tree
builder exactly as they were on entry; combinators guarantee this by taking a
checkpoint and restoring it on every path of failure.

Parsers compose to sequences, ordered choices, repetitions, optionals and
look-aheads. Named rules push their name onto the rule stack while they are
being matched, allowing context-sensitive decisions (see package stack), and
create a tree node for every successful match. Rules are collected into
immutable grammars with a GrammarBuilder:

	g, err := combinator.NewGrammarBuilder("greetings").
	    Rule("greeting", combinator.Sequence(
	        combinator.Literal("hello"),
	        combinator.Ref("addressee"))).
	    Rule("addressee", combinator.Choice(
	        combinator.Literal("world"),
	        combinator.Tagged(koopa.Word))).
	    Grammar()

Grammars may be shared between goroutines; every parse uses its own context,
stream, stack and tree builder.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package combinator

import (
	"github.com/npillmayer/koopa"
	"github.com/npillmayer/koopa/stack"
	"github.com/npillmayer/koopa/stream"
	"github.com/npillmayer/koopa/tree"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'koopa.parser'.
func tracer() tracing.Trace {
	return tracing.Select("koopa.parser")
}

// Parser is the contract for parser combinators.
type Parser interface {
	Matches(ctx *Context) bool
	String() string
}

// DefaultMaxDepth limits the nesting of rule invocations. Deeper nesting is
// almost certainly the result of left recursion.
const DefaultMaxDepth = 4096

// Hidden is the default skip predicate: whitespace, end-of-line, comments
// and skipped areas are not seen by terminals. They are attached to the tree
// as leaves nonetheless.
func Hidden(tok *koopa.Token) bool {
	return tok.HasTag(koopa.Whitespace) || tok.HasTag(koopa.EndOfLine) ||
		tok.IsIn(koopa.Comment) || tok.IsIn(koopa.Skipped)
}

// Significant is the negation of Hidden.
func Significant(tok *koopa.Token) bool {
	return !Hidden(tok)
}

// Context holds the state of a single parse.
type Context struct {
	Stream   *stream.LimitedStream
	Stack    *stack.Stack
	Builder  *tree.Builder // nil if no tree is to be built
	grammar  *Grammar
	skip     func(*koopa.Token) bool
	maxDepth int
	furthest int          // furthest stream index a terminal has been tried at
	farTok   *koopa.Token // token at the furthest index, if any
	lastIdx  int          // index of the last token read
	lastTok  *koopa.Token
}

// NewContext creates a parse context for grammar g over stream s. If s is not
// a limited stream, it is wrapped into one. Builder may be nil.
func NewContext(g *Grammar, s stream.Stream, b *tree.Builder) *Context {
	ls, ok := s.(*stream.LimitedStream)
	if !ok {
		ls = stream.Limited(s, nil)
	}
	return &Context{
		Stream:   ls,
		Stack:    ls.Stack(),
		Builder:  b,
		grammar:  g,
		skip:     Hidden,
		maxDepth: DefaultMaxDepth,
		furthest: -1,
		lastIdx:  -1,
	}
}

// Grammar returns the grammar this context is parsing with.
func (ctx *Context) Grammar() *Grammar {
	return ctx.grammar
}

// Furthest returns the furthest stream index a terminal has been tried at,
// together with the token found there (nil at end of input).
func (ctx *Context) Furthest() (int, *koopa.Token) {
	return ctx.furthest, ctx.farTok
}

// Next reads the next significant token from the stream and consumes it.
// Hidden tokens in front of it are consumed as well and attached to the tree.
// Next returns nil at end of input or if a limiter stops the stream.
// Clients usually should not call Next directly, but rather use Terminal.
func (ctx *Context) Next() *koopa.Token {
	for {
		idx := ctx.Stream.Index()
		tok := ctx.Stream.Forward()
		if tok == nil {
			ctx.reach(idx, ctx.Stream.Underlying().Peek())
			return nil
		}
		if idx > ctx.lastIdx {
			ctx.lastIdx, ctx.lastTok = idx, tok
		}
		if ctx.skip(tok) {
			ctx.leaf(tok)
			continue
		}
		ctx.reach(idx, tok)
		return tok
	}
}

// Terminal consumes the next significant token if match accepts it.
// The token is attached to the tree as a leaf.
func (ctx *Context) Terminal(match func(*koopa.Token) bool) bool {
	cp := ctx.checkpoint()
	defer ctx.release(cp)
	tok := ctx.Next()
	if tok == nil || !match(tok) {
		ctx.restore(cp)
		return false
	}
	ctx.leaf(tok)
	return true
}

func (ctx *Context) reach(idx int, tok *koopa.Token) {
	if idx > ctx.furthest {
		ctx.furthest, ctx.farTok = idx, tok
	}
}

func (ctx *Context) leaf(tok *koopa.Token) {
	if ctx.Builder != nil {
		ctx.Builder.Leaf(tok)
	}
}

// --- Checkpoints -----------------------------------------------------------

type checkpoint struct {
	bookmark stream.Bookmark
	mark     tree.Mark
	builder  *tree.Builder
}

func (ctx *Context) checkpoint() checkpoint {
	cp := checkpoint{bookmark: ctx.Stream.Bookmark(), builder: ctx.Builder}
	if ctx.Builder != nil {
		cp.mark = ctx.Builder.Mark()
	}
	return cp
}

func (ctx *Context) restore(cp checkpoint) {
	ctx.Stream.Restore(cp.bookmark)
	if cp.builder != nil {
		cp.builder.Rollback(cp.mark)
	}
}

func (ctx *Context) release(cp checkpoint) {
	ctx.Stream.Release(cp.bookmark)
}

// lookahead runs p against an unlimited view la of the input. Nothing is
// emitted to the tree and the state of ctx is not touched, apart from
// the rule stack, which is balanced on return.
func (ctx *Context) lookahead(la stream.Stream, p Parser) bool {
	sub := &Context{
		Stream:   stream.Limited(la, ctx.Stack),
		Stack:    ctx.Stack,
		grammar:  ctx.grammar,
		skip:     ctx.skip,
		maxDepth: ctx.maxDepth,
		furthest: -1,
		lastIdx:  -1,
	}
	return p.Matches(sub)
}

// withoutTree runs p with tree building switched off.
func (ctx *Context) withoutTree(p Parser) bool {
	b := ctx.Builder
	ctx.Builder = nil
	defer func() { ctx.Builder = b }()
	return p.Matches(ctx)
}
