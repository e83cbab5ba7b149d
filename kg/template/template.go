/*
Package template implements groups of named template parts.

A group is read from a txtar archive: every file section of the archive is
a part, named by the section's file name. Parts may include other parts with
the standard {{template "name" .}} action, or with {{part "name" .}}, which
takes the part name as a value and thus allows for parts selected at run time:

	-- expr-literal --
	combinator.Literal({{printf "%q" .Text}})
	-- expr --
	{{part (printf "expr-%s" .Kind) .}}

Parts may be recursive. The trailing newline of each section is removed, so
parts rendering fragments of a line do not introduce line breaks.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package template

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/template"

	"github.com/iancoleman/strcase"
	"github.com/npillmayer/koopa"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/tools/txtar"
)

// tracer traces with key 'koopa.kg'.
func tracer() tracing.Trace {
	return tracing.Select("koopa.kg")
}

// MaxDepth limits the nesting of parts rendered with 'part'.
const MaxDepth = 256

// Group is a set of named template parts.
type Group struct {
	name     string
	preamble string
	root     *template.Template
	parts    []string
	depth    int
}

//go:embed default.kgt
var defaultParts []byte

// Default returns the built-in template group for Go code generation.
func Default() *Group {
	g, err := Parse("default.kgt", defaultParts)
	if err != nil {
		koopa.Violation("default templates broken: %v", err)
	}
	return g
}

// Load reads a template group from a txtar file.
func Load(path string) (*Group, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &koopa.IOError{Path: path, Err: err}
	}
	return Parse(path, data)
}

// Parse creates a template group from txtar data. The archive's comment
// section is kept as the group's preamble.
func Parse(name string, data []byte) (*Group, error) {
	ar := txtar.Parse(data)
	if len(ar.Files) == 0 {
		return nil, fmt.Errorf("template group %s has no parts", name)
	}
	g := &Group{name: name, preamble: string(ar.Comment)}
	g.root = template.New(name).Funcs(g.funcs())
	for _, f := range ar.Files {
		if g.root.Lookup(f.Name) != nil {
			return nil, fmt.Errorf("template group %s: duplicate part %q", name, f.Name)
		}
		text := strings.TrimSuffix(string(f.Data), "\n")
		if _, err := g.root.New(f.Name).Parse(text); err != nil {
			return nil, fmt.Errorf("template group %s: %w", name, err)
		}
		g.parts = append(g.parts, f.Name)
	}
	tracer().Debugf("template group %s with %d parts", name, len(g.parts))
	return g, nil
}

// Name returns the name of the group.
func (g *Group) Name() string {
	return g.name
}

// Preamble returns the text in front of the first part.
func (g *Group) Preamble() string {
	return g.preamble
}

// Parts returns the part names, sorted.
func (g *Group) Parts() []string {
	parts := make([]string, len(g.parts))
	copy(parts, g.parts)
	sort.Strings(parts)
	return parts
}

// Has is true if the group contains a part.
func (g *Group) Has(part string) bool {
	return g.root.Lookup(part) != nil
}

// Render executes a part with data. A group must not be used for more than
// one rendering at a time.
func (g *Group) Render(part string, data interface{}) (string, error) {
	g.depth = 0
	return g.render(part, data)
}

func (g *Group) render(part string, data interface{}) (string, error) {
	t := g.root.Lookup(part)
	if t == nil {
		return "", fmt.Errorf("template group %s has no part %q", g.name, part)
	}
	if g.depth >= MaxDepth {
		return "", fmt.Errorf("template group %s: parts nested deeper than %d at %q", g.name, MaxDepth, part)
	}
	g.depth++
	defer func() { g.depth-- }()
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (g *Group) funcs() template.FuncMap {
	return template.FuncMap{
		"part":  g.render,
		"camel": strcase.ToCamel,
		"snake": strcase.ToSnake,
		"join":  strings.Join,
		"quote": func(s string) string { return fmt.Sprintf("%q", s) },
	}
}
