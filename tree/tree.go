/*
Package tree implements syntax trees resulting from koopa parses.

Trees are stored in an arena: nodes are addressed by stable NodeIDs, every
node owns a list of child IDs, and every non-root node holds a back-reference
to its parent and its index among its siblings. Back-references are kept
consistent on every structural mutation.

Inner nodes carry the name of the rule which created them, leaves carry a
token. Trees are built incrementally by a Builder, which is able to roll back
to a mark whenever a parser has to backtrack.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package tree

import (
	"fmt"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/npillmayer/koopa"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'koopa.tree'.
func tracer() tracing.Trace {
	return tracing.Select("koopa.tree")
}

// NodeID addresses a node within a tree.
type NodeID int

// NoNode is the ID of a non-existing node.
const NoNode NodeID = -1

type node struct {
	name     string
	token    *koopa.Token
	children *arraylist.List // of NodeID, owned
	parent   NodeID
	index    int
}

// Tree is an arena of nodes. The zero value is not usable, use New.
type Tree struct {
	nodes []node
	root  NodeID
}

// New creates an empty tree.
func New() *Tree {
	return &Tree{root: NoNode}
}

// NewNode creates a detached inner node.
func (t *Tree) NewNode(name string) NodeID {
	t.nodes = append(t.nodes, node{
		name:     name,
		children: arraylist.New(),
		parent:   NoNode,
		index:    -1,
	})
	return NodeID(len(t.nodes) - 1)
}

// NewLeaf creates a detached leaf for a token.
func (t *Tree) NewLeaf(tok *koopa.Token) NodeID {
	t.nodes = append(t.nodes, node{
		token:  tok,
		parent: NoNode,
		index:  -1,
	})
	return NodeID(len(t.nodes) - 1)
}

// Len returns the number of nodes in the arena, attached or not.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Root returns the root node, or NoNode for an empty tree.
func (t *Tree) Root() NodeID {
	return t.root
}

// SetRoot sets a detached node as the root of the tree.
func (t *Tree) SetRoot(id NodeID) {
	n := t.node(id)
	if n.parent != NoNode {
		koopa.Violation("root node %d has a parent", id)
	}
	t.root = id
}

// Name returns the rule name of an inner node, or "" for leaves.
func (t *Tree) Name(id NodeID) string {
	return t.node(id).name
}

// Token returns the token of a leaf, or nil for inner nodes.
func (t *Tree) Token(id NodeID) *koopa.Token {
	return t.node(id).token
}

// IsLeaf is true for token nodes.
func (t *Tree) IsLeaf(id NodeID) bool {
	return t.node(id).children == nil
}

// Parent returns the parent of a node, or NoNode.
func (t *Tree) Parent(id NodeID) NodeID {
	return t.node(id).parent
}

// Index returns the position of a node among its siblings, or -1 for
// detached nodes.
func (t *Tree) Index(id NodeID) int {
	return t.node(id).index
}

// ChildCount returns the number of children of a node.
func (t *Tree) ChildCount(id NodeID) int {
	n := t.node(id)
	if n.children == nil {
		return 0
	}
	return n.children.Size()
}

// Child returns the i-th child of a node, or NoNode.
func (t *Tree) Child(id NodeID, i int) NodeID {
	n := t.node(id)
	if n.children == nil {
		return NoNode
	}
	if c, ok := n.children.Get(i); ok {
		return c.(NodeID)
	}
	return NoNode
}

// Children returns the children of a node, in order.
func (t *Tree) Children(id NodeID) []NodeID {
	n := t.node(id)
	if n.children == nil {
		return nil
	}
	ch := make([]NodeID, n.children.Size())
	for i, c := range n.children.Values() {
		ch[i] = c.(NodeID)
	}
	return ch
}

// Append adds child as the last child of parent.
func (t *Tree) Append(parent, child NodeID) {
	t.Insert(parent, t.ChildCount(parent), child)
}

// Insert adds child at position i of the children of parent. The child must
// be detached; leaves cannot take children.
func (t *Tree) Insert(parent NodeID, i int, child NodeID) {
	p, c := t.node(parent), t.node(child)
	if p.children == nil {
		koopa.Violation("cannot add children to leaf %d", parent)
	}
	if c.parent != NoNode || child == t.root {
		koopa.Violation("node %d is already attached", child)
	}
	if i < 0 || i > p.children.Size() {
		koopa.Violation("child index %d out of range for node %d", i, parent)
	}
	p.children.Insert(i, child)
	c.parent = parent
	t.reindex(parent, i)
}

// Remove detaches the i-th child of parent and returns it. The remaining
// siblings are re-indexed.
func (t *Tree) Remove(parent NodeID, i int) NodeID {
	child := t.Child(parent, i)
	if child == NoNode {
		koopa.Violation("node %d has no child #%d", parent, i)
	}
	t.node(parent).children.Remove(i)
	c := t.node(child)
	c.parent, c.index = NoNode, -1
	t.reindex(parent, i)
	return child
}

// reindex fixes the sibling indices of parent's children, starting at from.
func (t *Tree) reindex(parent NodeID, from int) {
	children := t.node(parent).children
	for i := from; i < children.Size(); i++ {
		c, _ := children.Get(i)
		t.node(c.(NodeID)).index = i
	}
}

// truncate drops all nodes with ID ≥ n from the arena.
func (t *Tree) truncate(n int) {
	if n < len(t.nodes) {
		for i := n; i < len(t.nodes); i++ {
			t.nodes[i] = node{}
		}
		t.nodes = t.nodes[:n]
	}
	if int(t.root) >= n {
		t.root = NoNode
	}
}

func (t *Tree) node(id NodeID) *node {
	if id < 0 || int(id) >= len(t.nodes) {
		koopa.Violation("node %d does not exist", id)
	}
	return &t.nodes[id]
}

// Label returns a short description of a node, for debugging and display.
func (t *Tree) Label(id NodeID) string {
	if id == NoNode {
		return "<none>"
	}
	if n := t.node(id); n.children == nil {
		return fmt.Sprintf("%q", n.token.Text)
	}
	return t.node(id).name
}
