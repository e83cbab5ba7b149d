/*
Package stream implements cursors over token sequences, feeding the parser
combinators.

A stream hands out tokens with Forward and supports backtracking through
bookmarks. Bookmarks are opaque checkpoints; restoring one resets the stream
to exactly the state it had when the bookmark was taken.

A LimitedStream wraps another stream and consults a set of limiters before
returning a token. Limiters bound how far a nested rule may look ahead, for
example not reading past a statement terminator while matching an inner
expression. Limiters are scoped to a rule invocation and have to be removed in
LIFO order.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package stream

import (
	"fmt"

	"github.com/npillmayer/koopa"
	"github.com/npillmayer/koopa/scanner"
	"github.com/npillmayer/schuko/tracing"
	"github.com/tidwall/btree"
)

// tracer traces with key 'koopa.stream'.
func tracer() tracing.Trace {
	return tracing.Select("koopa.stream")
}

// Stream is a cursor over a sequence of tokens.
//
// Forward returns the next token and advances the cursor. At end of input
// it returns nil, repeatedly and without side effects.
type Stream interface {
	Forward() *koopa.Token
	Peek() *koopa.Token // next token without advancing
	Index() int         // number of tokens consumed so far
	Bookmark() Bookmark // checkpoint the current state
	Restore(Bookmark)   // reset to a checkpoint
	Rewind(Bookmark)    // same as Restore
	Release(Bookmark)   // discard a checkpoint
}

// Bookmark is an opaque checkpoint of a stream's state.
// A bookmark may be restored any number of times until it is released.
type Bookmark struct {
	id    uint64
	index int
	depth int    // number of active limiters
	top   uint64 // ID of the innermost active limiter
}

// Index returns the stream index captured by b.
func (b Bookmark) Index() int {
	return b.index
}

func (b Bookmark) String() string {
	return fmt.Sprintf("bookmark#%d@%d", b.id, b.index)
}

// --- Token streams ---------------------------------------------------------

// TokenStream is a stream reading tokens from a tokenizer. Tokens are buffered
// as they are read, so restoring a bookmark never touches the tokenizer again.
type TokenStream struct {
	source    scanner.Tokenizer
	buffer    []*koopa.Token
	exhausted bool
	pos       int
	nextID    uint64
	marks     btree.Map[uint64, int] // live bookmarks: ID → index
}

var _ Stream = (*TokenStream)(nil)

// New creates a stream reading lazily from a tokenizer.
func New(tokenizer scanner.Tokenizer) *TokenStream {
	return &TokenStream{source: tokenizer}
}

// FromTokens creates a stream over a fixed sequence of tokens.
func FromTokens(tokens []*koopa.Token) *TokenStream {
	buf := make([]*koopa.Token, len(tokens))
	copy(buf, tokens)
	return &TokenStream{buffer: buf, exhausted: true}
}

// Forward is part of interface Stream.
func (ts *TokenStream) Forward() *koopa.Token {
	tok := ts.Peek()
	if tok != nil {
		ts.pos++
	}
	return tok
}

// Peek is part of interface Stream.
func (ts *TokenStream) Peek() *koopa.Token {
	if ts.pos < len(ts.buffer) {
		return ts.buffer[ts.pos]
	}
	if ts.exhausted || ts.source == nil {
		return nil
	}
	tok := ts.source.NextToken()
	if tok == nil {
		tracer().Debugf("token stream exhausted after %d tokens", len(ts.buffer))
		ts.exhausted = true
		return nil
	}
	ts.buffer = append(ts.buffer, tok)
	return tok
}

// Index is part of interface Stream.
func (ts *TokenStream) Index() int {
	return ts.pos
}

// Bookmark is part of interface Stream.
func (ts *TokenStream) Bookmark() Bookmark {
	ts.nextID++
	ts.marks.Set(ts.nextID, ts.pos)
	return Bookmark{id: ts.nextID, index: ts.pos}
}

// Restore is part of interface Stream. Restoring a released bookmark is a
// contract violation.
func (ts *TokenStream) Restore(b Bookmark) {
	index, ok := ts.marks.Get(b.id)
	if !ok {
		koopa.Violation("restore of released or foreign %s", b)
	}
	ts.pos = index
}

// Rewind is part of interface Stream.
func (ts *TokenStream) Rewind(b Bookmark) {
	ts.Restore(b)
}

// Release is part of interface Stream.
func (ts *TokenStream) Release(b Bookmark) {
	ts.marks.Delete(b.id)
}

// Live returns the number of bookmarks not yet released.
func (ts *TokenStream) Live() int {
	return ts.marks.Len()
}

// Oldest returns the lowest stream index any live bookmark refers to.
// If there are no live bookmarks, Oldest returns the current index.
func (ts *TokenStream) Oldest() int {
	oldest := ts.pos
	ts.marks.Scan(func(_ uint64, index int) bool {
		if index < oldest {
			oldest = index
		}
		return true
	})
	return oldest
}

// Tokens returns the tokens read so far.
func (ts *TokenStream) Tokens() []*koopa.Token {
	return ts.buffer
}
