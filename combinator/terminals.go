package combinator

import (
	"fmt"
	"strings"

	"github.com/npillmayer/koopa"
)

// --- Terminals -------------------------------------------------------------

type literal struct {
	text string
	fold bool
}

// Literal matches a token with exactly the given text.
func Literal(text string) Parser {
	return &literal{text: text}
}

// LiteralFold matches a token with the given text, ignoring case.
func LiteralFold(text string) Parser {
	return &literal{text: text, fold: true}
}

func (l *literal) Matches(ctx *Context) bool {
	return ctx.Terminal(func(tok *koopa.Token) bool {
		if l.fold {
			return strings.EqualFold(tok.Text, l.text)
		}
		return tok.Text == l.text
	})
}

func (l *literal) String() string {
	if l.fold {
		return "i" + quote(l.text)
	}
	return quote(l.text)
}

type tagged struct {
	tag koopa.Tag
}

// Tagged matches a token carrying all of the given syntactic tags.
func Tagged(tag koopa.Tag) Parser {
	return &tagged{tag: tag}
}

func (t *tagged) Matches(ctx *Context) bool {
	return ctx.Terminal(func(tok *koopa.Token) bool {
		return tok.HasTag(t.tag)
	})
}

func (t *tagged) String() string {
	return "$" + t.tag.String()
}

type anyToken struct{}

// Any matches any significant token.
func Any() Parser {
	return anyToken{}
}

func (anyToken) Matches(ctx *Context) bool {
	return ctx.Terminal(func(*koopa.Token) bool { return true })
}

func (anyToken) String() string {
	return "$any"
}

type eof struct{}

// EOF matches the end of input, or the end of a limited region of input.
// Hidden tokens in front of it are consumed.
func EOF() Parser {
	return eof{}
}

func (eof) Matches(ctx *Context) bool {
	cp := ctx.checkpoint()
	defer ctx.release(cp)
	if ctx.Next() != nil {
		ctx.restore(cp)
		return false
	}
	return true
}

func (eof) String() string {
	return "$eof"
}

type predicate struct {
	name  string
	match func(*koopa.Token) bool
}

// Token matches a token accepted by an arbitrary predicate. The name is used
// for display only.
func Token(name string, match func(*koopa.Token) bool) Parser {
	return &predicate{name: name, match: match}
}

func (p *predicate) Matches(ctx *Context) bool {
	return ctx.Terminal(p.match)
}

func (p *predicate) String() string {
	return "<" + p.name + ">"
}

func quote(s string) string {
	return fmt.Sprintf("%q", s)
}
