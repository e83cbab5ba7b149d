package stream

import (
	"github.com/npillmayer/koopa"
	"github.com/npillmayer/koopa/stack"
)

// Limiter decides whether a limited stream has to stop in front of a
// candidate token. It is evaluated against the rule stack at the time of the
// call, with la positioned at the candidate. la is an unlimited view on the
// underlying stream; a limiter may advance it, the limited stream will
// restore it afterwards.
type Limiter interface {
	Limits(st *stack.Stack, candidate *koopa.Token, la Stream) bool
}

// LimiterFunc adapts a plain function to the Limiter interface.
type LimiterFunc func(st *stack.Stack, candidate *koopa.Token, la Stream) bool

// Limits is part of interface Limiter.
func (f LimiterFunc) Limits(st *stack.Stack, candidate *koopa.Token, la Stream) bool {
	return f(st, candidate, la)
}

// LimiterHandle identifies an active limiter. It is needed to remove it.
type LimiterHandle struct {
	id uint64
}

type limiterEntry struct {
	id      uint64
	limiter Limiter
}

// LimitedStream wraps a stream and reports end of input whenever an active
// limiter signals to stop.
type LimitedStream struct {
	base     Stream
	stack    *stack.Stack
	limiters []limiterEntry
	nextID   uint64
}

var _ Stream = (*LimitedStream)(nil)

// Limited wraps a stream. Limiters will be evaluated against st, which usually
// is the rule stack of the parse. If st is nil, a new stack is created.
func Limited(base Stream, st *stack.Stack) *LimitedStream {
	if st == nil {
		st = stack.New()
	}
	return &LimitedStream{base: base, stack: st}
}

// Underlying returns the wrapped stream.
func (ls *LimitedStream) Underlying() Stream {
	return ls.base
}

// Stack returns the rule stack limiters are evaluated against.
func (ls *LimitedStream) Stack() *stack.Stack {
	return ls.stack
}

// AddLimiter activates a limiter. The returned handle has to be passed to
// RemoveLimiter, in LIFO order with respect to other limiters.
func (ls *LimitedStream) AddLimiter(l Limiter) LimiterHandle {
	ls.nextID++
	ls.limiters = append(ls.limiters, limiterEntry{id: ls.nextID, limiter: l})
	tracer().Debugf("added limiter #%d, %d active", ls.nextID, len(ls.limiters))
	return LimiterHandle{id: ls.nextID}
}

// RemoveLimiter de-activates a limiter. Removing any but the innermost limiter
// is a contract violation.
func (ls *LimitedStream) RemoveLimiter(h LimiterHandle) {
	n := len(ls.limiters)
	if n == 0 || ls.limiters[n-1].id != h.id {
		koopa.Violation("limiter #%d removed out of order", h.id)
	}
	ls.limiters[n-1] = limiterEntry{}
	ls.limiters = ls.limiters[:n-1]
}

// Limiters returns the number of active limiters.
func (ls *LimitedStream) Limiters() int {
	return len(ls.limiters)
}

// Forward is part of interface Stream.
func (ls *LimitedStream) Forward() *koopa.Token {
	if ls.stopped() {
		return nil
	}
	return ls.base.Forward()
}

// Peek is part of interface Stream.
func (ls *LimitedStream) Peek() *koopa.Token {
	if ls.stopped() {
		return nil
	}
	return ls.base.Peek()
}

// stopped evaluates all active limiters against the next token.
func (ls *LimitedStream) stopped() bool {
	if len(ls.limiters) == 0 {
		return false
	}
	candidate := ls.base.Peek()
	if candidate == nil {
		return false
	}
	for i := len(ls.limiters) - 1; i >= 0; i-- {
		b := ls.base.Bookmark()
		stop := ls.limiters[i].limiter.Limits(ls.stack, candidate, ls.base)
		ls.base.Restore(b)
		ls.base.Release(b)
		if stop {
			tracer().Debugf("limiter #%d stops at %v", ls.limiters[i].id, candidate)
			return true
		}
	}
	return false
}

// Index is part of interface Stream.
func (ls *LimitedStream) Index() int {
	return ls.base.Index()
}

// Bookmark is part of interface Stream. The bookmark captures the set of active
// limiters as well.
func (ls *LimitedStream) Bookmark() Bookmark {
	b := ls.base.Bookmark()
	b.depth = len(ls.limiters)
	if b.depth > 0 {
		b.top = ls.limiters[b.depth-1].id
	}
	return b
}

// Restore is part of interface Stream. Limiters added after the bookmark has
// been taken are de-activated. It is a contract violation to restore a
// bookmark whose limiters have already been removed.
func (ls *LimitedStream) Restore(b Bookmark) {
	if b.depth > len(ls.limiters) || (b.depth > 0 && ls.limiters[b.depth-1].id != b.top) {
		koopa.Violation("%s refers to limiters no longer active", b)
	}
	ls.base.Restore(b)
	for len(ls.limiters) > b.depth {
		ls.limiters[len(ls.limiters)-1] = limiterEntry{}
		ls.limiters = ls.limiters[:len(ls.limiters)-1]
	}
}

// Rewind is part of interface Stream.
func (ls *LimitedStream) Rewind(b Bookmark) {
	ls.Restore(b)
}

// Release is part of interface Stream.
func (ls *LimitedStream) Release(b Bookmark) {
	ls.base.Release(b)
}
