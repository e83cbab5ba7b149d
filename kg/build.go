package kg

import (
	"fmt"

	"github.com/npillmayer/koopa"
	"github.com/npillmayer/koopa/combinator"
)

// Build interprets a definition into an executable grammar. The grammar's
// provenance is 'generated', with the definition's source as origin.
// Imports have to contain all grammars the definition imports.
func Build(def *Definition, imports ...*combinator.Grammar) (*combinator.Grammar, error) {
	sets := make([]RuleSet, len(imports))
	for i, imp := range imports {
		sets[i] = imp
	}
	if _, err := Resolve(def, sets...); err != nil {
		return nil, err
	}
	gb := combinator.NewGrammarBuilder(def.Grammar).Provenance(combinator.Generated, def.Source)
	for _, name := range def.Imports {
		for _, imp := range imports {
			if imp.Name() == name {
				gb.Import(imp)
				break
			}
		}
	}
	for _, r := range def.Rules {
		p := Parser(r.Body)
		if r.Fragment {
			gb.Fragment(r.Name, p)
		} else {
			gb.Rule(r.Name, p)
		}
	}
	g, err := gb.Grammar()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", def.Source, err)
	}
	return g, nil
}

// Parser creates a combinator for an expression. References are left
// unresolved; they will be bound by a grammar builder.
func Parser(e Expr) combinator.Parser {
	switch x := e.(type) {
	case *Literal:
		if x.Fold {
			return combinator.LiteralFold(x.Text)
		}
		return combinator.Literal(x.Text)
	case *Class:
		if tag := Classes[x.Name]; tag != 0 {
			return combinator.Tagged(tag)
		}
		return combinator.Any()
	case *Reference:
		if x.Grammar != "" {
			return combinator.QRef(x.Grammar, x.Name)
		}
		return combinator.Ref(x.Name)
	case *Sequence:
		return combinator.Sequence(parsers(x.Items)...)
	case *Choice:
		return combinator.Choice(parsers(x.Alternatives)...)
	case *Repeat:
		switch x.Kind {
		case ZeroOrMore:
			return combinator.Star(Parser(x.Expr))
		case OneOrMore:
			return combinator.Plus(Parser(x.Expr))
		}
		return combinator.Optional(Parser(x.Expr))
	case *Not:
		return combinator.Not(Parser(x.Expr))
	case *And:
		return combinator.And(Parser(x.Expr))
	case *Limit:
		return combinator.Limit(Parser(x.Expr), Parser(x.By))
	case *Within:
		return combinator.Within(x.Names...)
	}
	koopa.Violation("unknown expression type %T", e)
	return nil
}

func parsers(exprs []Expr) []combinator.Parser {
	ps := make([]combinator.Parser, len(exprs))
	for i, e := range exprs {
		ps[i] = Parser(e)
	}
	return ps
}
