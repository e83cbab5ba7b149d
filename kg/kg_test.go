package kg

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/npillmayer/koopa"
	"github.com/npillmayer/koopa/combinator"
	"github.com/npillmayer/koopa/stream"
	"github.com/npillmayer/koopa/tree"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizer(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.kg")
	defer teardown()
	//
	tok, err := Tokenizer("test", `rule a-1 = i"x" 'y' $word b::c %limit ; // done`)
	require.NoError(t, err)
	var texts []string
	var tags []koopa.Tag
	for token := tok.NextToken(); token != nil; token = tok.NextToken() {
		texts = append(texts, token.Text)
		tags = append(tags, token.Tags())
	}
	assert.Equal(t, []string{"rule", "a-1", "=", `i"x"`, `'y'`, "$word", "b", "::", "c",
		"%limit", ";", "// done"}, texts)
	assert.Equal(t, koopa.Word, tags[0])
	assert.Equal(t, koopa.Separator, tags[2])
	assert.Equal(t, koopa.String, tags[3])
	assert.Equal(t, koopa.Tag(0), tags[11])
}

func TestGreeting(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.kg")
	defer teardown()
	//
	g, err := Compile("greeting.kg", `rule greeting = "hello" "world";`)
	require.NoError(t, err)
	p, src := g.Provenance()
	assert.Equal(t, combinator.Generated, p)
	assert.Equal(t, "greeting.kg", src)
	assert.Equal(t, "greeting", g.Name())
	//
	outcome, err := g.Parse(stream.FromTokens(words("hello", "world")), "greeting")
	require.NoError(t, err)
	assert.True(t, outcome.Accepted)
	//
	outcome, err = g.Parse(stream.FromTokens(words("hello")), "greeting")
	var rej *koopa.Rejection
	require.True(t, errors.As(err, &rej))
	assert.False(t, outcome.Accepted)
	assert.Equal(t, 1, rej.Index)
}

func TestGreetingFile(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.kg")
	defer teardown()
	//
	def := readDefinition(t, "testdata/greeting.kg")
	assert.Equal(t, "greeting", def.Grammar)
	assert.Equal(t, []string{"greeting", "addressee"}, def.RuleNames())
	g, err := Build(def)
	require.NoError(t, err)
	_, err = g.Parse(stream.FromTokens(words("hello", "WORLD")), "")
	assert.NoError(t, err)
	_, err = g.Parse(stream.FromTokens(words("hello", "Norbert")), "")
	assert.NoError(t, err)
}

func TestDefinitionAST(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.kg")
	defer teardown()
	//
	def, err := Parse("test.kg", `
		rule s = a ("," a)* !";" ;
		fragment a = [ $number ] &x base::y | %limit (x+) %by "." ;
		rule x = %within(s, x) ;
	`)
	require.NoError(t, err)
	require.Len(t, def.Rules, 3)
	want := []Expr{
		&Sequence{Items: []Expr{
			&Reference{Name: "a"},
			&Repeat{Kind: ZeroOrMore, Expr: &Sequence{Items: []Expr{
				&Literal{Text: ","}, &Reference{Name: "a"},
			}}},
			&Not{Expr: &Literal{Text: ";"}},
		}},
		&Choice{Alternatives: []Expr{
			&Sequence{Items: []Expr{
				&Repeat{Kind: ZeroOrOne, Expr: &Class{Name: "number"}},
				&And{Expr: &Reference{Name: "x"}},
				&Reference{Grammar: "base", Name: "y"},
			}},
			&Limit{Expr: &Repeat{Kind: OneOrMore, Expr: &Reference{Name: "x"}}, By: &Literal{Text: "."}},
		}},
		&Within{Names: []string{"s", "x"}},
	}
	for i, r := range def.Rules {
		if diff := cmp.Diff(want[i], r.Body, cmpopts.IgnoreTypes(koopa.Position{})); diff != "" {
			t.Errorf("unexpected body of rule %s (-want +got):\n%s", r.Name, diff)
		}
	}
	assert.True(t, def.Rules[1].Fragment)
	assert.Equal(t, 2, def.Rules[0].Pos.Line)
	assert.Equal(t, `s = a ("," a)* !";"`, strings.TrimPrefix(strings.TrimSuffix(def.Rules[0].String(), " ;"), "rule "))
}

func TestDefinitionRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.kg")
	defer teardown()
	//
	def := readDefinition(t, "testdata/kg.kg")
	again, err := Parse("again.kg", def.String())
	require.NoError(t, err)
	assert.Equal(t, def.String(), again.String())
}

func TestSyntaxError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.kg")
	defer teardown()
	//
	_, err := Parse("bad.kg", "rule a = ;")
	var rej *koopa.Rejection
	require.True(t, errors.As(err, &rej), "expected rejection, got %v", err)
	assert.Equal(t, "bad.kg", rej.Source)
	assert.Equal(t, 1, rej.Position.Line)
	//
	_, err = Parse("bad.kg", `rule a = "x" @ ;`)
	assert.Error(t, err, "illegal character")
	_, err = Parse("bad.kg", `rule a = "" ;`)
	assert.Error(t, err, "empty literal")
}

func TestUndefinedReferences(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.kg")
	defer teardown()
	//
	_, err := Compile("undef.kg", "rule a = c b other::x ; rule d = a %within(zz) ;")
	var undef *UndefinedError
	require.True(t, errors.As(err, &undef), "expected undefined rules, got %v", err)
	assert.Equal(t, []string{"b", "c", "other::x", "zz"}, undef.Names)
	assert.Equal(t, 10, undef.Pos.Column, "position of first undefined reference")
}

func TestResolveErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.kg")
	defer teardown()
	//
	for _, src := range []string{
		"rule a = $word ; rule a = $number ;",
		"rule a = $colour ;",
		"import base; rule a = $word ;",
		"grammar nothing;",
	} {
		_, err := Compile("err.kg", src)
		assert.Error(t, err, src)
	}
}

func TestUnusedRules(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.kg")
	defer teardown()
	//
	def, err := Parse("unused.kg", `rule a = b ; rule b = "x" ; rule c = "y" ;`)
	require.NoError(t, err)
	res, err := Resolve(def)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, res.Unused)
	sym, sc := res.Scope.Resolve("b")
	require.NotNil(t, sym)
	assert.Equal(t, 1, sym.Uses)
	assert.Equal(t, res.Scope, sc)
}

func TestImports(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.kg")
	defer teardown()
	//
	base, err := Compile("base.kg", `grammar base; rule name = $word ; rule number = $number ;`)
	require.NoError(t, err)
	other, err := Compile("other.kg", `grammar other; rule name = "shadowed" ;`)
	require.NoError(t, err)
	src := `
		grammar assign;
		import base;
		import other;
		rule assign = name "=" base::number ;
	`
	g, err := Compile("assign.kg", src, other, base)
	require.NoError(t, err)
	require.Len(t, g.Imports(), 2)
	assert.Equal(t, "base", g.Imports()[0].Name(), "imports keep the order of the definition")
	_, err = g.Parse(stream.FromTokens(testTokens("x", "=", "1")), "")
	assert.NoError(t, err, "name resolves to base::name, which precedes other::name")
	//
	def, err := Parse("assign.kg", src)
	require.NoError(t, err)
	res, err := Resolve(def, base, other)
	require.NoError(t, err)
	_, sc := res.Scope.Resolve("name")
	assert.Equal(t, "base", sc.Name)
	//
	_, err = Compile("assign.kg", src, base)
	assert.Error(t, err, "grammar other is missing")
}

func TestLoadFile(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.kg")
	defer teardown()
	//
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}
	write("base.kg", `grammar base; rule number = $number ;`)
	write("expr.kg", `grammar expr; import base; rule sum = number "+" number ;`)
	path := write("assign.kg", `grammar assign; import base; import expr; rule assign = $word "=" expr::sum ;`)
	g, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "assign", g.Name())
	_, err = g.Parse(stream.FromTokens(testTokens("x", "=", "1", "+", "2")), "")
	assert.NoError(t, err)
	//
	cyclic := write("a.kg", `grammar a; import b; rule x = "x" ;`)
	write("b.kg", `grammar b; import a; rule y = "y" ;`)
	_, err = LoadFile(cyclic)
	assert.ErrorContains(t, err, "cyclic import")
	_, err = LoadFile(write("lonely.kg", `grammar lonely; import nowhere; rule z = "z" ;`))
	var ioErr *koopa.IOError
	assert.True(t, errors.As(err, &ioErr))
}

func TestSelfHosting(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.kg")
	defer teardown()
	//
	data, err := os.ReadFile("testdata/kg.kg")
	require.NoError(t, err)
	kg, err := Compile("testdata/kg.kg", string(data))
	require.NoError(t, err)
	assert.Equal(t, "kg", kg.Name())
	for _, file := range []string{"testdata/kg.kg", "testdata/greeting.kg"} {
		text, err := os.ReadFile(file)
		require.NoError(t, err)
		boot := parseWith(t, Bootstrap(), file, string(text))
		self := parseWith(t, kg, file, string(text))
		if diff := cmp.Diff(boot, self); diff != "" {
			t.Errorf("%s: trees differ (-bootstrap +generated):\n%s", file, diff)
		}
	}
}

func TestEBNF(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.kg")
	defer teardown()
	//
	def, err := Parse("greeting.kg", `rule greeting = "hello" addressee ; rule addressee = "world" | $word ;`)
	require.NoError(t, err)
	text := ToEBNF(def)
	assert.True(t, strings.HasPrefix(text,
		"Greeting = \"hello\" Addressee .\nAddressee = \"world\" | WORD .\nWORD = "), text)
	assert.NoError(t, VerifyEBNF(def))
	//
	def, err = Parse("unreachable.kg", `rule a = "x" ; rule b = "y" ;`)
	require.NoError(t, err)
	assert.Error(t, VerifyEBNF(def))
	//
	def = readDefinition(t, "testdata/kg.kg")
	assert.Contains(t, ToEBNF(def), "ImportDecl = \"import\" Name \";\" .")
}

// ---------------------------------------------------------------------------

func readDefinition(t *testing.T, path string) *Definition {
	def, err := ReadFile(path)
	require.NoError(t, err)
	return def
}

func parseWith(t *testing.T, g *combinator.Grammar, source, text string) tree.Shape {
	tok, err := Tokenizer(source, text)
	require.NoError(t, err)
	outcome, err := g.Parse(stream.New(tok), RuleFile)
	require.NoError(t, err)
	return tree.ShapeOf(outcome.Tree, outcome.Tree.Root(), combinator.Significant)
}

func pos(col int) koopa.Position {
	return koopa.Position{Source: "test", Line: 1, Column: col, Offset: col - 1}
}

func words(w ...string) []*koopa.Token {
	toks := make([]*koopa.Token, len(w))
	for i, text := range w {
		toks[i] = koopa.NewToken(text, koopa.Word, pos(2*i+1), pos(2*i+2))
	}
	return toks
}

func testTokens(w ...string) []*koopa.Token {
	toks := words(w...)
	for i, tok := range toks {
		switch {
		case tok.Text[0] >= '0' && tok.Text[0] <= '9':
			toks[i] = koopa.NewToken(tok.Text, koopa.Number, tok.Start, tok.End)
		case tok.Text == "=":
			toks[i] = koopa.NewToken(tok.Text, koopa.Separator, tok.Start, tok.End)
		}
	}
	return toks
}
