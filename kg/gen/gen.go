/*
Package gen generates Go source code from KG grammar definitions.

Generated files contain a function New<Grammar>Grammar, constructing the
grammar with the combinator API, and constants for all rule names. Identifiers
are prefixed with the grammar's Go name, so that a grammar and the grammars
it imports may share a package. Every file carries a
fingerprint of the definition it has been generated from; files with an
unchanged fingerprint are not re-written.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package gen

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/cnf/structhash"
	"github.com/iancoleman/strcase"
	"github.com/npillmayer/koopa/kg"
	"github.com/npillmayer/koopa/kg/template"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/tools/imports"
)

// tracer traces with key 'koopa.kg'.
func tracer() tracing.Trace {
	return tracing.Select("koopa.kg")
}

// Generator renders Go code for grammar definitions.
type Generator struct {
	Package   string          // Go package name; derived from the grammar name if empty
	Templates *template.Group // template parts; the default group if nil
}

// Generate renders Go source code for a definition. Imports must contain
// the rule sets of all grammars the definition imports. The result is gofmt-ed.
func (gen *Generator) Generate(def *kg.Definition, imps ...kg.RuleSet) ([]byte, error) {
	if _, err := kg.Resolve(def, imps...); err != nil {
		return nil, err
	}
	data, err := gen.fileData(def)
	if err != nil {
		return nil, err
	}
	tmpl := gen.Templates
	if tmpl == nil {
		tmpl = template.Default()
	}
	src, err := tmpl.Render("file", data)
	if err != nil {
		return nil, fmt.Errorf("rendering grammar %s: %w", def.Grammar, err)
	}
	filename := FileName(def)
	out, err := imports.Process(filename, []byte(src), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		tracer().Errorf("generated code for %s does not compile:\n%s", def.Grammar, src)
		return nil, fmt.Errorf("formatting %s: %w", filename, err)
	}
	return out, nil
}

// Fingerprint returns a hash of the parts of a definition which influence
// generated code. Positions within the source are not part of it.
func (gen *Generator) Fingerprint(def *kg.Definition) (string, error) {
	data, err := gen.fileData(def)
	if err != nil {
		return "", err
	}
	return data.Fingerprint, nil
}

// FileName returns the name of the Go file generated for a definition.
func FileName(def *kg.Definition) string {
	return strcase.ToSnake(def.Grammar) + "_grammar.go"
}

// PackageName derives a Go package name from a grammar name.
func PackageName(grammar string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(grammar) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" || unicode.IsDigit(rune(name[0])) {
		name = "g" + name
	}
	return name
}

// --- View model ------------------------------------------------------------

type fileData struct {
	Package     string
	Grammar     string
	Ident       string // Go name of the grammar
	Source      string
	Fingerprint string // empty while hashing
	Imports     []string
	Rules       []ruleData
	UsesTags    bool
}

type ruleData struct {
	Name     string
	Const    string
	Fragment bool
	Body     node
}

// node is an expression as seen by the templates. Kind selects the part
// rendering it.
type node struct {
	Kind    string
	Text    string
	Fold    bool
	Tag     string
	Grammar string
	Name    string
	Const   string
	Items   []node
	Names   []string
}

var tagNames = map[string]string{
	"word":      "Word",
	"number":    "Number",
	"string":    "String",
	"separator": "Separator",
}

var repeatKinds = map[kg.RepeatKind]string{
	kg.ZeroOrMore: "star",
	kg.OneOrMore:  "plus",
	kg.ZeroOrOne:  "optional",
}

func (gen *Generator) fileData(def *kg.Definition) (*fileData, error) {
	data := &fileData{
		Package: gen.Package,
		Grammar: def.Grammar,
		Ident:   GoName(def.Grammar),
		Source:  filepath.Base(def.Source),
		Imports: append([]string{}, def.Imports...),
	}
	if data.Package == "" {
		data.Package = PackageName(def.Grammar)
	}
	consts := make(map[string]string) // const name -> rule name
	for _, r := range def.Rules {
		c := ConstName(def.Grammar, r.Name)
		if other, clash := consts[c]; clash {
			return nil, fmt.Errorf("%s: rules %s and %s map to the same Go name %s", r.Pos, other, r.Name, c)
		}
		consts[c] = r.Name
	}
	for _, r := range def.Rules {
		data.Rules = append(data.Rules, ruleData{
			Name:     r.Name,
			Const:    ConstName(def.Grammar, r.Name),
			Fragment: r.Fragment,
			Body:     data.node(def, r.Body),
		})
	}
	h, err := structhash.Hash(data, 1)
	if err != nil {
		return nil, err
	}
	data.Fingerprint = h
	return data, nil
}

// GoName returns the exported Go name of a grammar, used as a prefix for
// generated identifiers.
func GoName(grammar string) string {
	name := strcase.ToCamel(grammar)
	if name == "" || !unicode.IsLetter(rune(name[0])) {
		name = "G" + name
	}
	return name
}

// ConstName returns the name of the Go constant for a rule of a grammar.
func ConstName(grammar, rule string) string {
	return "Rule" + GoName(grammar) + strcase.ToCamel(rule)
}

func (data *fileData) node(def *kg.Definition, e kg.Expr) node {
	switch x := e.(type) {
	case *kg.Literal:
		return node{Kind: "literal", Text: x.Text, Fold: x.Fold}
	case *kg.Class:
		n := node{Kind: "class", Tag: tagNames[x.Name]}
		data.UsesTags = data.UsesTags || n.Tag != ""
		return n
	case *kg.Reference:
		n := node{Kind: "ref", Grammar: x.Grammar, Name: x.Name}
		if _, local := def.Rule(x.Name); local && x.Grammar == "" {
			n.Const = ConstName(def.Grammar, x.Name)
		}
		return n
	case *kg.Sequence:
		return node{Kind: "sequence", Items: data.nodes(def, x.Items)}
	case *kg.Choice:
		return node{Kind: "choice", Items: data.nodes(def, x.Alternatives)}
	case *kg.Repeat:
		return node{Kind: repeatKinds[x.Kind], Items: []node{data.node(def, x.Expr)}}
	case *kg.Not:
		return node{Kind: "not", Items: []node{data.node(def, x.Expr)}}
	case *kg.And:
		return node{Kind: "and", Items: []node{data.node(def, x.Expr)}}
	case *kg.Limit:
		return node{Kind: "limit", Items: []node{data.node(def, x.Expr), data.node(def, x.By)}}
	case *kg.Within:
		return node{Kind: "within", Names: x.Names}
	}
	panic(fmt.Sprintf("unknown expression type %T", e))
}

func (data *fileData) nodes(def *kg.Definition, exprs []kg.Expr) []node {
	nodes := make([]node, len(exprs))
	for i, e := range exprs {
		nodes[i] = data.node(def, e)
	}
	return nodes
}
