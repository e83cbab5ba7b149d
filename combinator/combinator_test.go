package combinator

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/koopa"
	"github.com/npillmayer/koopa/scanner"
	"github.com/npillmayer/koopa/stack"
	"github.com/npillmayer/koopa/stream"
	"github.com/npillmayer/koopa/tree"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func input(text string) *stream.TokenStream {
	return stream.New(scanner.NewTokenizer("test", strings.NewReader(text), scanner.LineComment("//")))
}

func greetings(t *testing.T) *Grammar {
	g, err := NewGrammarBuilder("greetings").
		Rule("greeting", Sequence(Literal("hello"), Ref("addressee"))).
		Rule("addressee", Choice(Literal("world"), Tagged(koopa.Word))).
		Grammar()
	require.NoError(t, err)
	return g
}

func TestGreetingAccepted(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.parser")
	defer teardown()
	//
	g := greetings(t)
	outcome, err := g.Parse(input("hello world"), "")
	require.NoError(t, err)
	assert.True(t, outcome.Accepted)
	shape := tree.ShapeOf(outcome.Tree, outcome.Tree.Root(), Significant)
	expected := tree.Shape{Name: "greeting", Children: []tree.Shape{
		{Name: "hello"},
		{Name: "addressee", Children: []tree.Shape{{Name: "world"}}},
	}}
	if diff := cmp.Diff(expected, shape); diff != "" {
		t.Errorf("unexpected tree shape (-want +got):\n%s", diff)
	}
	// whitespace is part of the tree, though not seen by the grammar
	all := tree.Tokens(outcome.Tree, outcome.Tree.Root(), nil).Collect()
	assert.Equal(t, 3, len(all))
}

func TestGreetingRejected(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.parser")
	defer teardown()
	//
	g := greetings(t)
	tokens := []*koopa.Token{koopa.NewToken("hello", koopa.Word, pos(1), pos(6))}
	outcome, err := g.Parse(stream.FromTokens(tokens), "greeting")
	require.Error(t, err)
	var rejection *koopa.Rejection
	require.True(t, errors.As(err, &rejection))
	assert.Equal(t, 1, rejection.Index)
	assert.Nil(t, rejection.Token)
	assert.Equal(t, 6, rejection.Position.Column)
	assert.False(t, outcome.Accepted)
	assert.Nil(t, outcome.Tree)
	assert.Equal(t, 1, outcome.Furthest)
}

func TestTrailingInputRejected(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.parser")
	defer teardown()
	//
	g := greetings(t)
	_, err := g.Parse(input("hello world !"), "")
	var rejection *koopa.Rejection
	require.True(t, errors.As(err, &rejection))
	assert.Equal(t, "!", rejection.Token.Text)
	assert.Equal(t, 4, rejection.Index) // whitespace tokens count
}

func TestTrailingCommentKept(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.parser")
	defer teardown()
	//
	g := greetings(t)
	outcome, err := g.Parse(input("hello you // hi"), "")
	require.NoError(t, err)
	assert.Equal(t, "greeting", outcome.Tree.Name(outcome.Tree.Root()))
	comments := tree.Tokens(outcome.Tree, outcome.Tree.Root(), tree.InArea(koopa.Comment)).Collect()
	require.Equal(t, 1, len(comments))
	assert.Equal(t, "// hi", comments[0].Text)
}

func TestUnknownStartRule(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.parser")
	defer teardown()
	//
	_, err := greetings(t).Parse(input("hello"), "farewell")
	assert.Error(t, err)
}

func TestChoiceOrder(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.parser")
	defer teardown()
	//
	// first alternative consumes "a" but fails on "c"; second one must start over
	g := NewGrammarBuilder("g").
		Rule("s", Choice(
			Sequence(Literal("a"), Literal("b")),
			Sequence(Literal("a"), Literal("c")))).
		MustGrammar()
	outcome, err := g.Parse(input("a c"), "")
	require.NoError(t, err)
	shape := tree.ShapeOf(outcome.Tree, outcome.Tree.Root(), Significant)
	assert.Equal(t, tree.Shape{Name: "s", Children: []tree.Shape{{Name: "a"}, {Name: "c"}}}, shape)
}

func TestRepetition(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.parser")
	defer teardown()
	//
	g := NewGrammarBuilder("list").
		Rule("list", Sequence(Ref("item"), Star(Sequence(Literal(","), Ref("item"))), Optional(Literal(";")))).
		Rule("item", Tagged(koopa.Number)).
		MustGrammar()
	for _, test := range []struct {
		text  string
		ok    bool
		items int
	}{
		{"1", true, 1},
		{"1,2,3", true, 3},
		{"1,2,3;", true, 3},
		{"1,2,", false, 0},
		{"", false, 0},
	} {
		outcome, err := g.Parse(input(test.text), "")
		if test.ok != (err == nil) {
			t.Errorf("%q: expected ok=%v, have %v", test.text, test.ok, err)
			continue
		}
		if test.ok {
			items := 0
			for _, c := range outcome.Tree.Children(outcome.Tree.Root()) {
				if outcome.Tree.Name(c) == "item" {
					items++
				}
			}
			assert.Equal(t, test.items, items, test.text)
		}
	}
}

func TestPlusAndNonConsumingStar(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.parser")
	defer teardown()
	//
	g := NewGrammarBuilder("g").
		Rule("s", Sequence(Plus(Literal("x")), Star(Optional(Literal("y"))), EOF())).
		MustGrammar()
	_, err := g.Parse(input("x x x"), "")
	assert.NoError(t, err)
	_, err = g.Parse(input("y"), "")
	assert.Error(t, err)
}

func TestLookahead(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.parser")
	defer teardown()
	//
	// a word which is not a keyword
	g := NewGrammarBuilder("g").
		Rule("s", Plus(Choice(Ref("keyword"), Ref("name")))).
		Rule("keyword", Choice(LiteralFold("MOVE"), LiteralFold("TO"))).
		Rule("name", Sequence(Not(Ref("keyword")), And(Tagged(koopa.Word)), Tagged(koopa.Word))).
		MustGrammar()
	outcome, err := g.Parse(input("move A to b"), "")
	require.NoError(t, err)
	var kinds []string
	for _, c := range outcome.Tree.Children(outcome.Tree.Root()) {
		if !outcome.Tree.IsLeaf(c) {
			kinds = append(kinds, outcome.Tree.Name(c))
		}
	}
	assert.Equal(t, []string{"keyword", "name", "keyword", "name"}, kinds)
	// look-aheads never emit
	shape := tree.ShapeOf(outcome.Tree, outcome.Tree.Root(), Significant)
	assert.Equal(t, tree.Shape{Name: "name", Children: []tree.Shape{{Name: "A"}}}, shape.Children[1])
}

func TestEmptyRulesLeaveNoNodes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.parser")
	defer teardown()
	//
	g := NewGrammarBuilder("g").
		Rule("s", Sequence(Ref("peek"), Ref("opt"), Literal("a"))).
		Rule("peek", And(Literal("a"))).
		Rule("opt", Optional(Literal("b"))).
		MustGrammar()
	outcome, err := g.Parse(input("a"), "")
	require.NoError(t, err)
	shape := tree.ShapeOf(outcome.Tree, outcome.Tree.Root(), Significant)
	expected := tree.Shape{Name: "s", Children: []tree.Shape{{Name: "a"}}}
	if diff := cmp.Diff(expected, shape); diff != "" {
		t.Errorf("unexpected tree shape (-want +got):\n%s", diff)
	}
	// the start rule keeps its node, even if empty
	g = NewGrammarBuilder("empty").Rule("s", Optional(Literal("x"))).MustGrammar()
	outcome, err = g.Parse(input(""), "")
	require.NoError(t, err)
	assert.Equal(t, "s", outcome.Tree.Name(outcome.Tree.Root()))
}

func TestLimit(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.parser")
	defer teardown()
	//
	// without the limit, "words" would swallow the terminator "END"
	g := NewGrammarBuilder("g").
		Rule("stmt", Sequence(Limit(Ref("words"), Literal("END")), Literal("END"))).
		Rule("words", Plus(Tagged(koopa.Word))).
		MustGrammar()
	outcome, err := g.Parse(input("a b c END"), "")
	require.NoError(t, err)
	shape := tree.ShapeOf(outcome.Tree, outcome.Tree.Root(), Significant)
	expected := tree.Shape{Name: "stmt", Children: []tree.Shape{
		{Name: "words", Children: []tree.Shape{{Name: "a"}, {Name: "b"}, {Name: "c"}}},
		{Name: "END"},
	}}
	if diff := cmp.Diff(expected, shape); diff != "" {
		t.Errorf("unexpected tree shape (-want +got):\n%s", diff)
	}
	unlimited := NewGrammarBuilder("g").
		Rule("stmt", Sequence(Ref("words"), Literal("END"))).
		Rule("words", Plus(Tagged(koopa.Word))).
		MustGrammar()
	_, err = unlimited.Parse(input("a b c END"), "")
	assert.Error(t, err)
}

func TestWithin(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.parser")
	defer teardown()
	//
	// "." ends a sentence only within a paragraph
	g := NewGrammarBuilder("g").
		Rule("doc", Choice(Ref("paragraph"), Ref("sentence"))).
		Rule("paragraph", Sequence(Literal("P"), Ref("sentence"))).
		Rule("sentence", Sequence(Tagged(koopa.Word), Optional(Sequence(Within("sentence", "paragraph"), Literal("."))))).
		MustGrammar()
	_, err := g.Parse(input("P x ."), "")
	assert.NoError(t, err)
	_, err = g.Parse(input("x ."), "")
	assert.Error(t, err)
	st := stack.New()
	st.Push("paragraph")
	_, err = g.Parse(input("x ."), "sentence", WithStack(st))
	assert.NoError(t, err)
	assert.Equal(t, 1, st.Depth())
}

func TestFragment(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.parser")
	defer teardown()
	//
	g := NewGrammarBuilder("g").
		Rule("s", Sequence(Ref("f"), Literal("z"))).
		Fragment("f", Sequence(Literal("x"), Literal("y"))).
		MustGrammar()
	outcome, err := g.Parse(stream.FromTokens(words("x", "y", "z")), "")
	require.NoError(t, err)
	shape := tree.ShapeOf(outcome.Tree, outcome.Tree.Root(), nil)
	assert.Equal(t, tree.Shape{Name: "s", Children: []tree.Shape{{Name: "x"}, {Name: "y"}, {Name: "z"}}}, shape)
}

func TestImports(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.parser")
	defer teardown()
	//
	base := NewGrammarBuilder("base").
		Rule("name", Tagged(koopa.Word)).
		Rule("number", Tagged(koopa.Number)).
		MustGrammar()
	g, err := NewGrammarBuilder("assign").
		Import(base).
		Rule("assign", Sequence(Ref("name"), Literal("="), QRef("base", "number"))).
		Provenance(Generated, "assign.kg").
		Grammar()
	require.NoError(t, err)
	p, src := g.Provenance()
	assert.Equal(t, Generated, p)
	assert.Equal(t, "assign.kg", src)
	_, err = g.Parse(input("x = 1"), "")
	assert.NoError(t, err)
}

func TestBuilderErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.parser")
	defer teardown()
	//
	_, err := NewGrammarBuilder("dup").Rule("a", Any()).Rule("a", Any()).Grammar()
	assert.Error(t, err, "duplicate rule")
	_, err = NewGrammarBuilder("unres").Rule("a", Ref("b")).Grammar()
	assert.Error(t, err, "unresolved reference")
	_, err = NewGrammarBuilder("qual").Rule("a", QRef("nowhere", "b")).Grammar()
	assert.Error(t, err, "unknown grammar")
	_, err = NewGrammarBuilder("empty").Grammar()
	assert.Error(t, err, "no rules")
	assert.Panics(t, func() { NewGrammarBuilder("").Rule("a", Any()).MustGrammar() })
}

func TestLeftRecursionDetected(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.parser")
	defer teardown()
	//
	g := NewGrammarBuilder("lr").
		Rule("e", Choice(Sequence(Ref("e"), Literal("+"), Literal("1")), Literal("1"))).
		MustGrammar()
	assert.PanicsWithValue(t, koopa.ContractViolation{Msg: "rule nesting deeper than 64 at rule e, left recursion?"},
		func() { g.Parse(input("1+1"), "", MaxDepth(64)) })
}

func TestRuleNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.parser")
	defer teardown()
	//
	g := greetings(t)
	assert.Equal(t, []string{"greeting", "addressee"}, g.RuleNames())
	assert.Equal(t, "greeting", g.Start())
	r, ok := g.Rule("addressee")
	require.True(t, ok)
	assert.Equal(t, `("world" | $word)`, r.Body().String())
	assert.Contains(t, g.String(), `rule greeting = ("hello" addressee) ;`)
}

// ---------------------------------------------------------------------------

func pos(col int) koopa.Position {
	return koopa.Position{Source: "test", Line: 1, Column: col, Offset: col - 1}
}

func words(w ...string) []*koopa.Token {
	tokens := make([]*koopa.Token, len(w))
	for i, text := range w {
		tokens[i] = koopa.NewToken(text, koopa.Word, pos(2*i+1), pos(2*i+2))
	}
	return tokens
}
