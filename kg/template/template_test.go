package template

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type node struct {
	Name     string
	Children []node
}

const tree = `-- node --
{{.Name}}{{if .Children}}({{range $i, $c := .Children}}{{if $i}},{{end}}{{part "node" $c}}{{end}}){{end}}
-- loop --
{{part "loop" .}}
`

func TestRecursiveParts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.kg")
	defer teardown()
	//
	g, err := Parse("tree", []byte(tree))
	require.NoError(t, err)
	assert.Equal(t, []string{"loop", "node"}, g.Parts())
	n := node{Name: "a", Children: []node{{Name: "b"}, {Name: "c", Children: []node{{Name: "d"}}}}}
	out, err := g.Render("node", n)
	require.NoError(t, err)
	assert.Equal(t, "a(b,c(d))", out)
	//
	_, err = g.Render("loop", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nested deeper than")
	// the group is usable after an error
	out, err = g.Render("node", node{Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", out)
}

func TestGroupErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.kg")
	defer teardown()
	//
	_, err := Parse("empty", []byte("just a comment\n"))
	assert.Error(t, err)
	_, err = Parse("dup", []byte("-- a --\nx\n-- a --\ny\n"))
	assert.Error(t, err)
	_, err = Parse("broken", []byte("-- a --\n{{if}}\n"))
	assert.Error(t, err)
	g, err := Parse("ok", []byte("-- a --\n{{part \"b\" .}}\n"))
	require.NoError(t, err)
	_, err = g.Render("a", nil)
	assert.Error(t, err, "part b is missing")
	_, err = g.Render("c", nil)
	assert.Error(t, err)
	_, err = Load("testdata/does-not-exist.kgt")
	assert.Error(t, err)
}

func TestPreambleAndFuncs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.kg")
	defer teardown()
	//
	g, err := Parse("f", []byte("Intro text.\n-- a --\n{{camel .}} {{snake .}} {{quote .}}\n"))
	require.NoError(t, err)
	assert.Equal(t, "Intro text.\n", g.Preamble())
	out, err := g.Render("a", "import-decl")
	require.NoError(t, err)
	assert.Equal(t, `ImportDecl import_decl "import-decl"`, out)
}

func TestDefaultGroup(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.kg")
	defer teardown()
	//
	g := Default()
	for _, part := range []string{"file", "rule", "expr", "items", "expr-literal", "expr-within"} {
		assert.True(t, g.Has(part), part)
	}
	out, err := g.Render("expr", map[string]interface{}{"Kind": "literal", "Text": "hello", "Fold": true})
	require.NoError(t, err)
	assert.Equal(t, `combinator.LiteralFold("hello")`, out)
	assert.True(t, strings.HasPrefix(g.Preamble(), "Templates for Go code"))
}
