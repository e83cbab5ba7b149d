/*
Package stack implements the stack of active rule invocations.

Every named rule of a grammar pushes a frame while it is being matched and
pops it on every exit path. Grammars may consult the stack to behave
differently depending on which ancestor rules are currently active, without
threading that context through every rule.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package stack

import (
	"strings"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/koopa"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'koopa.parser'.
func tracer() tracing.Trace {
	return tracing.Select("koopa.parser")
}

// Frame is the marker pushed while a named rule is active.
type Frame struct {
	Name string
}

// Stack is an ordered sequence of frames, most recent on top.
// A stack lives for the duration of a single parse.
type Stack struct {
	frames *arraystack.Stack
}

// New creates an empty stack.
func New() *Stack {
	return &Stack{frames: arraystack.New()}
}

// Push puts a new frame on top of the stack.
func (s *Stack) Push(name string) {
	s.frames.Push(Frame{Name: name})
}

// Pop removes and returns the top frame. Popping an empty stack violates the
// push/pop pairing and panics.
func (s *Stack) Pop() Frame {
	f, ok := s.frames.Pop()
	if !ok {
		koopa.Violation("pop from empty rule stack")
	}
	return f.(Frame)
}

// Peek returns the top frame, if any.
func (s *Stack) Peek() (Frame, bool) {
	f, ok := s.frames.Peek()
	if !ok {
		return Frame{}, false
	}
	return f.(Frame), true
}

// Depth is the number of active frames.
func (s *Stack) Depth() int {
	return s.frames.Size()
}

// Names returns the frame names, top first.
func (s *Stack) Names() []string {
	values := s.frames.Values() // LIFO order
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = v.(Frame).Name
	}
	return names
}

// IsMatching walks the stack from the top downwards and checks if names occur,
// in the given order, as a subsequence of the frame names. Frames in between
// are ignored, but every frame satisfies at most one of the requested names:
// asking for ("a", "a") needs two frames named "a".
//
// Example: with a stack of (top first) [expr, term, stmt, para],
//
//    IsMatching("expr", "stmt")   // true
//    IsMatching("stmt", "expr")   // false
//    IsMatching("term", "para")   // true
//
func (s *Stack) IsMatching(names ...string) bool {
	if len(names) == 0 {
		return true
	}
	i := 0
	it := s.frames.Iterator() // iterates top to bottom
	for it.Next() {
		if it.Value().(Frame).Name == names[i] {
			i++
			if i == len(names) {
				tracer().Debugf("stack %s matches %v", s, names)
				return true
			}
		}
	}
	return false
}

func (s *Stack) String() string {
	return "[" + strings.Join(s.Names(), " ") + "]"
}
