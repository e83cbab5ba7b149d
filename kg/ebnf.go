package kg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
	"golang.org/x/exp/ebnf"
)

// EBNF export. Productions are named by the camel-cased rule name, as EBNF
// treats names starting with a lower case letter as lexical productions.
// Look-aheads and stack tests have no counterpart in EBNF and are dropped,
// as are limits (only the limited expression is exported). References to
// imported rules become opaque tokens.

// Productions for token classes
var classProductions = []struct {
	class, name, body string
}{
	{"word", "WORD", `letter { letter | digit | "_" | "-" }`},
	{"number", "NUMBER", `digit { digit }`},
	{"string", "STRING", `"\"" { letter | digit | " " } "\""`},
	{"separator", "SEPARATOR", `"." | "," | ";" | ":" | "(" | ")" | "=" | "+" | "-" | "*" | "/"`},
	{"any", "ANY", `WORD | NUMBER | STRING | SEPARATOR`},
}

// ToEBNF renders a definition in EBNF, as understood by package
// golang.org/x/exp/ebnf.
func ToEBNF(def *Definition) string {
	x := &ebnfWriter{def: def, classes: make(map[string]bool), opaque: make(map[string]string)}
	var b strings.Builder
	for _, r := range def.Rules {
		fmt.Fprintf(&b, "%s = %s .\n", ProductionName(r.Name), x.expr(r.Body))
	}
	for _, name := range x.opaqueOrder {
		fmt.Fprintf(&b, "%s = %s .\n", name, strconv.Quote(x.opaque[name]))
	}
	if x.classes["any"] {
		for _, c := range classProductions {
			x.classes[c.class] = true
		}
	}
	for _, c := range classProductions {
		if x.classes[c.class] {
			fmt.Fprintf(&b, "%s = %s .\n", c.name, c.body)
		}
	}
	if x.classes["word"] || x.classes["string"] {
		b.WriteString("letter = \"a\" … \"z\" | \"A\" … \"Z\" .\n")
	}
	if x.classes["word"] || x.classes["number"] || x.classes["string"] {
		b.WriteString("digit = \"0\" … \"9\" .\n")
	}
	return b.String()
}

// VerifyEBNF renders a definition in EBNF and checks the result for
// undefined and unreachable productions, starting from the first rule.
func VerifyEBNF(def *Definition) error {
	if len(def.Rules) == 0 {
		return fmt.Errorf("grammar %s defines no rules", def.Grammar)
	}
	text := ToEBNF(def)
	g, err := ebnf.Parse(def.Source, strings.NewReader(text))
	if err != nil {
		return err
	}
	return ebnf.Verify(g, ProductionName(def.Rules[0].Name))
}

// ProductionName returns the EBNF production name for a rule name.
func ProductionName(rule string) string {
	return strcase.ToCamel(rule)
}

type ebnfWriter struct {
	def         *Definition
	classes     map[string]bool
	opaque      map[string]string
	opaqueOrder []string
}

func (x *ebnfWriter) expr(e Expr) string {
	switch e := e.(type) {
	case *Literal:
		return strconv.Quote(e.Text)
	case *Class:
		x.classes[e.Name] = true
		return strings.ToUpper(e.Name)
	case *Reference:
		if e.Grammar == "" {
			if _, local := x.def.Rule(e.Name); local {
				return ProductionName(e.Name)
			}
		}
		return x.external(e)
	case *Sequence:
		var items []string
		for _, item := range e.Items {
			s := x.expr(item)
			if s == "" {
				continue
			}
			if _, isChoice := item.(*Choice); isChoice {
				s = "( " + s + " )"
			}
			items = append(items, s)
		}
		return strings.Join(items, " ")
	case *Choice:
		alts := make([]string, len(e.Alternatives))
		for i, alt := range e.Alternatives {
			alts[i] = x.expr(alt)
		}
		return strings.Join(alts, " | ")
	case *Repeat:
		inner := x.expr(e.Expr)
		if inner == "" {
			return ""
		}
		switch e.Kind {
		case ZeroOrMore:
			return "{ " + inner + " }"
		case OneOrMore:
			return "( " + inner + " ) { " + inner + " }"
		}
		return "[ " + inner + " ]"
	case *Limit:
		return x.expr(e.Expr)
	}
	return "" // look-aheads and stack tests
}

func (x *ebnfWriter) external(r *Reference) string {
	grammar := r.Grammar
	if grammar == "" {
		grammar = "import"
	}
	name := ProductionName(grammar + "_" + r.Name)
	if _, seen := x.opaque[name]; !seen {
		x.opaque[name] = grammar + "::" + r.Name
		x.opaqueOrder = append(x.opaqueOrder, name)
	}
	return name
}
