package tree

import (
	"github.com/npillmayer/koopa"
)

// --- Token iteration -------------------------------------------------------

// TokenPredicate selects tokens during iteration.
type TokenPredicate func(*koopa.Token) bool

// All selects every token.
func All(*koopa.Token) bool {
	return true
}

// HasTag selects tokens carrying all of the given syntactic tags.
func HasTag(tag koopa.Tag) TokenPredicate {
	return func(tok *koopa.Token) bool {
		return tok.HasTag(tag)
	}
}

// InArea selects tokens from the given areas.
func InArea(area koopa.Area) TokenPredicate {
	return func(tok *koopa.Token) bool {
		return tok.IsIn(area)
	}
}

// TokenIterator walks a tree depth-first and produces the leaf tokens in
// left-to-right document order. It never mutates the tree. An iterator is
// not restartable; create a new one to iterate again.
type TokenIterator struct {
	tree  *Tree
	pred  TokenPredicate
	stack []position
}

type position struct {
	node NodeID
	next int // next child to visit
}

// Tokens creates an iterator over the tokens below root, root included.
// If pred is nil, all tokens are produced.
func Tokens(t *Tree, root NodeID, pred TokenPredicate) *TokenIterator {
	if pred == nil {
		pred = All
	}
	it := &TokenIterator{tree: t, pred: pred}
	if root != NoNode {
		it.stack = append(it.stack, position{node: root})
	}
	return it
}

// Next returns the next token selected by the iterator's predicate.
func (it *TokenIterator) Next() (*koopa.Token, bool) {
	for len(it.stack) > 0 {
		top := &it.stack[len(it.stack)-1]
		if it.tree.IsLeaf(top.node) {
			tok := it.tree.Token(top.node)
			it.stack = it.stack[:len(it.stack)-1]
			if it.pred(tok) {
				return tok, true
			}
			continue
		}
		if top.next >= it.tree.ChildCount(top.node) {
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}
		child := it.tree.Child(top.node, top.next)
		top.next++
		it.stack = append(it.stack, position{node: child})
	}
	return nil, false
}

// Collect returns all remaining tokens of an iterator.
func (it *TokenIterator) Collect() []*koopa.Token {
	var tokens []*koopa.Token
	for tok, ok := it.Next(); ok; tok, ok = it.Next() {
		tokens = append(tokens, tok)
	}
	return tokens
}

// --- Walking ---------------------------------------------------------------

// Direction lets clients decide wether children nodes should be traversed left-to-right
// (default) or right-to-left.
type Direction int

// Children nodes may be traversed left-to-right (default) or right-to-left.
const (
	LtoR Direction = 1
	RtoL Direction = -1
)

// NodeCtxt is a context structure for Listeners.
type NodeCtxt struct {
	Level int // nesting level
	Index int // index among siblings
}

// Listener is a type for walking a tree.
//
// EnterNode returns a boolean value indicating if the walk should continue to
// the children of this node. ExitNode is called for every entered node,
// regardless of the children having been visited.
type Listener interface {
	EnterNode(t *Tree, id NodeID, ctxt NodeCtxt) bool
	ExitNode(t *Tree, id NodeID, ctxt NodeCtxt)
	Terminal(t *Tree, id NodeID, ctxt NodeCtxt)
}

// Walk traverses a (sub-)tree top-down, applying Listener-methods for all nodes
// encountered.
func Walk(t *Tree, root NodeID, listener Listener, dir Direction) {
	if root == NoNode {
		return
	}
	walk(t, root, listener, dir, NodeCtxt{Level: 0, Index: t.Index(root)})
}

func walk(t *Tree, id NodeID, listener Listener, dir Direction, ctxt NodeCtxt) {
	if t.IsLeaf(id) {
		listener.Terminal(t, id, ctxt)
		return
	}
	if listener.EnterNode(t, id, ctxt) {
		children := t.Children(id)
		i := 0
		if dir == RtoL {
			i = len(children) - 1
		}
		for ; i >= 0 && i < len(children); i += int(dir) {
			walk(t, children[i], listener, dir, NodeCtxt{Level: ctxt.Level + 1, Index: i})
		}
	}
	listener.ExitNode(t, id, ctxt)
}

// --- Shapes ----------------------------------------------------------------

// Shape is a compact representation of a tree's structure: rule names and
// child counts. Leaves are represented by their token text.
type Shape struct {
	Name     string
	Children []Shape
}

// ShapeOf returns the shape of the tree below root. If pred is not nil, only
// leaves with tokens selected by pred are included.
func ShapeOf(t *Tree, root NodeID, pred TokenPredicate) Shape {
	if t.IsLeaf(root) {
		return Shape{Name: t.Token(root).Text}
	}
	s := Shape{Name: t.Name(root)}
	for _, c := range t.Children(root) {
		if t.IsLeaf(c) && pred != nil && !pred(t.Token(c)) {
			continue
		}
		s.Children = append(s.Children, ShapeOf(t, c, pred))
	}
	return s
}

// Leveled flattens a tree into a list of (level, label) entries in document
// order, suitable for rendering trees line by line.
func Leveled(t *Tree, root NodeID, pred TokenPredicate) []LeveledEntry {
	var entries []LeveledEntry
	var flatten func(id NodeID, level int)
	flatten = func(id NodeID, level int) {
		if t.IsLeaf(id) && pred != nil && !pred(t.Token(id)) {
			return
		}
		entries = append(entries, LeveledEntry{Level: level, Label: t.Label(id)})
		for _, c := range t.Children(id) {
			flatten(c, level+1)
		}
	}
	if root != NoNode {
		flatten(root, 0)
	}
	return entries
}

// LeveledEntry is a single line of a leveled tree representation.
type LeveledEntry struct {
	Level int
	Label string
}
