package tree

import (
	"github.com/npillmayer/koopa"
)

// Builder builds a tree incrementally while a parser matches its input.
// Nodes are opened and closed in properly nested pairs; leaves are attached
// to the innermost open node.
//
// Whenever a parser has to backtrack, it rolls the builder back to a mark
// taken before the failed attempt. Rolling back discards every node created
// after the mark, so the tree never contains artifacts of failed alternatives.
type Builder struct {
	tree *Tree
	open []NodeID // stack of open nodes
	tops []NodeID // nodes without parent, in order of creation
}

// Mark is a checkpoint of a builder's state.
type Mark struct {
	nodes int
	open  int
	tops  int
}

// NewBuilder creates a builder for a new tree.
func NewBuilder() *Builder {
	return &Builder{tree: New()}
}

// Open starts a new inner node, nested in the current open node.
func (b *Builder) Open(name string) NodeID {
	id := b.tree.NewNode(name)
	b.attach(id)
	b.open = append(b.open, id)
	tracer().Debugf("tree builder: open %s #%d", name, id)
	return id
}

// Close finishes the innermost open node.
func (b *Builder) Close() NodeID {
	if len(b.open) == 0 {
		koopa.Violation("tree builder: close without open node")
	}
	id := b.open[len(b.open)-1]
	b.open = b.open[:len(b.open)-1]
	return id
}

// IsEmpty is true if node id has no children.
func (b *Builder) IsEmpty(id NodeID) bool {
	return b.tree.ChildCount(id) == 0
}

// Leaf attaches a token to the innermost open node.
func (b *Builder) Leaf(tok *koopa.Token) NodeID {
	id := b.tree.NewLeaf(tok)
	b.attach(id)
	return id
}

func (b *Builder) attach(id NodeID) {
	if len(b.open) == 0 {
		b.tops = append(b.tops, id)
		return
	}
	b.tree.Append(b.open[len(b.open)-1], id)
}

// Depth returns the number of open nodes.
func (b *Builder) Depth() int {
	return len(b.open)
}

// Mark captures the current state of the builder.
func (b *Builder) Mark() Mark {
	return Mark{nodes: b.tree.Len(), open: len(b.open), tops: len(b.tops)}
}

// Rollback discards every node created after m was taken. Nodes opened
// before m must still be open; otherwise the rollback would reach beyond an
// open node, which is a contract violation.
func (b *Builder) Rollback(m Mark) {
	if len(b.open) < m.open {
		koopa.Violation("tree builder: rollback beyond open node")
	}
	if b.tree.Len() == m.nodes {
		b.open = b.open[:m.open]
		return
	}
	b.open = b.open[:m.open]
	for _, id := range b.open {
		for n := b.tree.ChildCount(id); n > 0; n-- {
			if b.tree.Child(id, n-1) < NodeID(m.nodes) {
				break
			}
			b.tree.Remove(id, n-1)
		}
	}
	b.tops = b.tops[:m.tops]
	b.tree.truncate(m.nodes)
	tracer().Debugf("tree builder: rolled back to %d nodes", m.nodes)
}

// Tree finishes building and returns the tree. Open nodes are closed.
//
// If exactly one top-level inner node has been created, it becomes the root
// and top-level leaves (e.g., trailing comments) are moved into it, keeping
// document order. Otherwise top-level nodes are gathered under an unnamed
// root node.
func (b *Builder) Tree() *Tree {
	b.open = b.open[:0]
	tops := b.tops
	b.tops = nil
	if len(tops) == 0 {
		return b.tree
	}
	if len(tops) == 1 {
		b.tree.SetRoot(tops[0])
		return b.tree
	}
	root, inner := NoNode, 0
	for _, id := range tops {
		if !b.tree.IsLeaf(id) {
			root = id
			inner++
		}
	}
	if inner != 1 {
		root = b.tree.NewNode("")
	}
	i := 0
	for _, id := range tops {
		if id == root {
			i = -1
			continue
		}
		if i >= 0 {
			b.tree.Insert(root, i, id)
			i++
		} else {
			b.tree.Append(root, id)
		}
	}
	b.tree.SetRoot(root)
	return b.tree
}
