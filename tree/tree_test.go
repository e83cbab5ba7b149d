package tree

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/koopa"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

func tok(text string, tags koopa.Tag) *koopa.Token {
	return koopa.NewToken(text, tags, koopa.Position{Line: 1, Column: 1}, koopa.Position{Line: 1, Column: 1})
}

func TestInsertRemoveIndices(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.tree")
	defer teardown()
	//
	tr := New()
	root := tr.NewNode("root")
	tr.SetRoot(root)
	a, b, c := tr.NewLeaf(tok("a", koopa.Word)), tr.NewLeaf(tok("b", koopa.Word)), tr.NewLeaf(tok("c", koopa.Word))
	tr.Append(root, a)
	tr.Append(root, c)
	tr.Insert(root, 1, b)
	for i, id := range []NodeID{a, b, c} {
		if tr.Index(id) != i || tr.Parent(id) != root {
			t.Errorf("expected %s at index %d of root, is %d of %d", tr.Label(id), i, tr.Index(id), tr.Parent(id))
		}
	}
	removed := tr.Remove(root, 0)
	if removed != a || tr.Parent(a) != NoNode || tr.Index(a) != -1 {
		t.Errorf("expected 'a' to be detached")
	}
	if tr.Index(b) != 0 || tr.Index(c) != 1 {
		t.Errorf("expected siblings to be re-indexed, have %d and %d", tr.Index(b), tr.Index(c))
	}
	if tr.ChildCount(root) != 2 {
		t.Errorf("expected 2 children, have %d", tr.ChildCount(root))
	}
	tr.Append(root, a) // re-attaching a detached node is fine
	if tr.Index(a) != 2 {
		t.Errorf("expected re-attached 'a' at index 2, is %d", tr.Index(a))
	}
}

func TestStructuralViolations(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.tree")
	defer teardown()
	//
	tr := New()
	n := tr.NewNode("n")
	m := tr.NewNode("m")
	leaf := tr.NewLeaf(tok("x", koopa.Word))
	tr.Append(n, leaf)
	assert.Panics(t, func() { tr.Append(m, leaf) }, "attached twice")
	assert.Panics(t, func() { tr.Append(leaf, m) }, "children of leaf")
	assert.Panics(t, func() { tr.Remove(m, 0) }, "remove missing child")
	assert.Panics(t, func() { tr.Name(NodeID(42)) }, "unknown node")
}

func TestBuilderRollback(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.tree")
	defer teardown()
	//
	b := NewBuilder()
	b.Open("stmt")
	b.Leaf(tok("MOVE", koopa.Word))
	m := b.Mark()
	b.Open("attempt")
	b.Leaf(tok("A", koopa.Word))
	b.Open("deeper")
	b.Leaf(tok("B", koopa.Word))
	b.Rollback(m)
	if b.Depth() != 1 {
		t.Errorf("expected one open node after rollback, have %d", b.Depth())
	}
	b.Leaf(tok("X", koopa.Word))
	b.Close()
	tr := b.Tree()
	shape := ShapeOf(tr, tr.Root(), nil)
	expected := Shape{Name: "stmt", Children: []Shape{{Name: "MOVE"}, {Name: "X"}}}
	if diff := cmp.Diff(expected, shape); diff != "" {
		t.Errorf("unexpected tree shape (-want +got):\n%s", diff)
	}
	if tr.Len() != 3 {
		t.Errorf("expected arena of 3 nodes, have %d", tr.Len())
	}
}

func TestBuilderRollbackIsPure(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.tree")
	defer teardown()
	//
	b := NewBuilder()
	b.Open("a")
	b.Leaf(tok("1", koopa.Number))
	before := snapshot(b)
	m := b.Mark()
	b.Leaf(tok("2", koopa.Number))
	b.Open("b")
	b.Close()
	b.Rollback(m)
	if after := snapshot(b); after != before {
		t.Errorf("expected builder state %q after rollback, have %q", before, after)
	}
}

func TestBuilderRollbackBeyondOpen(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.tree")
	defer teardown()
	//
	b := NewBuilder()
	b.Open("a")
	m := b.Mark()
	b.Close()
	assert.Panics(t, func() { b.Rollback(m) })
	assert.Panics(t, func() { b.Close() })
}

func TestBuilderTopLevel(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.tree")
	defer teardown()
	//
	b := NewBuilder()
	b.Leaf(tok("x", koopa.Word))
	b.Open("r")
	b.Close()
	b.Open("s")
	b.Close()
	tr := b.Tree()
	assert.Equal(t, "", tr.Name(tr.Root()))
	assert.Equal(t, 3, tr.ChildCount(tr.Root()))
	single := NewBuilder()
	single.Leaf(tok("y", koopa.Word))
	tr = single.Tree()
	assert.True(t, tr.IsLeaf(tr.Root()))
	assert.Equal(t, NoNode, NewBuilder().Tree().Root())
}

func TestBuilderFoldsTopLevelLeaves(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.tree")
	defer teardown()
	//
	b := NewBuilder()
	b.Leaf(tok("//lead", koopa.Word))
	b.Open("r")
	b.Leaf(tok("x", koopa.Word))
	b.Close()
	b.Leaf(tok("//trail", koopa.Word))
	tr := b.Tree()
	shape := ShapeOf(tr, tr.Root(), nil)
	expected := Shape{Name: "r", Children: []Shape{{Name: "//lead"}, {Name: "x"}, {Name: "//trail"}}}
	if diff := cmp.Diff(expected, shape); diff != "" {
		t.Errorf("unexpected tree shape (-want +got):\n%s", diff)
	}
}

func TestTokenIterator(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.tree")
	defer teardown()
	//
	tr := deepTree()
	tokens := Tokens(tr, tr.Root(), nil).Collect()
	if text := join(tokens); text != "a 1 b 2 c 3 d" {
		t.Errorf("unexpected token order: %s", text)
	}
	numbers := Tokens(tr, tr.Root(), HasTag(koopa.Number)).Collect()
	if text := join(numbers); text != "1 2 3" {
		t.Errorf("unexpected filtered tokens: %s", text)
	}
	words := Tokens(tr, tr.Root(), InArea(koopa.ProgramText)).Collect()
	if len(words) != 7 {
		t.Errorf("expected 7 program text tokens, have %d", len(words))
	}
}

func TestTokenIteratorSingleLeaf(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.tree")
	defer teardown()
	//
	tr := New()
	leaf := tr.NewLeaf(tok("only", koopa.Word))
	tr.SetRoot(leaf)
	it := Tokens(tr, tr.Root(), nil)
	if tok, ok := it.Next(); !ok || tok.Text != "only" {
		t.Errorf("expected single token 'only'")
	}
	if _, ok := it.Next(); ok {
		t.Errorf("expected iteration to end")
	}
	if _, ok := Tokens(tr, NoNode, nil).Next(); ok {
		t.Errorf("expected empty iteration for no root")
	}
}

type recorder struct {
	events []string
	prune  string
}

func (r *recorder) EnterNode(t *Tree, id NodeID, ctxt NodeCtxt) bool {
	r.events = append(r.events, "+"+t.Name(id))
	return t.Name(id) != r.prune
}

func (r *recorder) ExitNode(t *Tree, id NodeID, ctxt NodeCtxt) {
	r.events = append(r.events, "-"+t.Name(id))
}

func (r *recorder) Terminal(t *Tree, id NodeID, ctxt NodeCtxt) {
	r.events = append(r.events, t.Token(id).Text)
}

func TestWalk(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.tree")
	defer teardown()
	//
	tr := New()
	root := tr.NewNode("s")
	inner := tr.NewNode("t")
	tr.SetRoot(root)
	tr.Append(root, tr.NewLeaf(tok("a", koopa.Word)))
	tr.Append(root, inner)
	tr.Append(inner, tr.NewLeaf(tok("b", koopa.Word)))
	r := &recorder{}
	Walk(tr, root, r, LtoR)
	assert.Equal(t, "+s a +t b -t -s", strings.Join(r.events, " "))
	r = &recorder{}
	Walk(tr, root, r, RtoL)
	assert.Equal(t, "+s +t b -t a -s", strings.Join(r.events, " "))
	r = &recorder{prune: "t"}
	Walk(tr, root, r, LtoR)
	assert.Equal(t, "+s a +t -t -s", strings.Join(r.events, " "))
}

func TestLeveled(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.tree")
	defer teardown()
	//
	tr := deepTree()
	entries := Leveled(tr, tr.Root(), HasTag(koopa.Number))
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(strings.Repeat(".", e.Level) + e.Label + " ")
	}
	assert.Equal(t, `r ."1" .x .."2" ..y ..."3" ...z `, b.String())
}

// ---------------------------------------------------------------------------

// deepTree builds an unbalanced tree (r a 1 (x b 2 (y c 3 (z)) d)).
func deepTree() *Tree {
	b := NewBuilder()
	b.Open("r")
	b.Leaf(tok("a", koopa.Word))
	b.Leaf(tok("1", koopa.Number))
	b.Open("x")
	b.Leaf(tok("b", koopa.Word))
	b.Leaf(tok("2", koopa.Number))
	b.Open("y")
	b.Leaf(tok("c", koopa.Word))
	b.Leaf(tok("3", koopa.Number))
	b.Open("z")
	b.Close()
	b.Close()
	b.Close()
	b.Leaf(tok("d", koopa.Word))
	b.Close()
	return b.Tree()
}

func join(tokens []*koopa.Token) string {
	var s []string
	for _, t := range tokens {
		s = append(s, t.Text)
	}
	return strings.Join(s, " ")
}

// snapshot renders the complete builder state, detached nodes included.
func snapshot(b *Builder) string {
	var s strings.Builder
	for id := 0; id < b.tree.Len(); id++ {
		s.WriteString(b.tree.Label(NodeID(id)))
		s.WriteString("/")
		s.WriteString(strings.Repeat("*", b.tree.ChildCount(NodeID(id))))
		s.WriteString(" ")
	}
	for _, id := range b.open {
		s.WriteString(b.tree.Label(id))
	}
	return s.String()
}
