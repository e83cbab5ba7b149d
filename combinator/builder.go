package combinator

import (
	"fmt"
)

// GrammarBuilder collects rules and creates an immutable grammar.
// Errors are collected and reported by Grammar.
type GrammarBuilder struct {
	g    *Grammar
	errs []error
}

// NewGrammarBuilder creates a builder for a grammar with a given name.
func NewGrammarBuilder(name string) *GrammarBuilder {
	gb := &GrammarBuilder{
		g: &Grammar{
			name:  name,
			rules: make(map[string]*Rule),
		},
	}
	if name == "" {
		gb.errs = append(gb.errs, fmt.Errorf("grammar needs a name"))
	}
	return gb
}

// Rule adds a named rule.
func (gb *GrammarBuilder) Rule(name string, p Parser) *GrammarBuilder {
	return gb.add(name, p, false)
}

// Fragment adds a named rule which does not create tree nodes.
func (gb *GrammarBuilder) Fragment(name string, p Parser) *GrammarBuilder {
	return gb.add(name, p, true)
}

func (gb *GrammarBuilder) add(name string, p Parser, fragment bool) *GrammarBuilder {
	if name == "" || p == nil {
		gb.errs = append(gb.errs, fmt.Errorf("grammar %s: rule needs a name and a body", gb.g.name))
		return gb
	}
	if _, exists := gb.g.rules[name]; exists {
		gb.errs = append(gb.errs, fmt.Errorf("grammar %s: duplicate rule %q", gb.g.name, name))
		return gb
	}
	gb.g.rules[name] = &Rule{name: name, body: p, fragment: fragment, grammar: gb.g.name}
	gb.g.order = append(gb.g.order, name)
	return gb
}

// Import makes the rules of another grammar available to references.
func (gb *GrammarBuilder) Import(imp *Grammar) *GrammarBuilder {
	if imp == nil {
		return gb
	}
	for _, other := range gb.g.imports {
		if other.name == imp.name {
			gb.errs = append(gb.errs, fmt.Errorf("grammar %s: grammar %s imported twice", gb.g.name, imp.name))
			return gb
		}
	}
	gb.g.imports = append(gb.g.imports, imp)
	return gb
}

// Provenance records how the grammar came into existence.
func (gb *GrammarBuilder) Provenance(p Provenance, source string) *GrammarBuilder {
	gb.g.provenance = p
	gb.g.source = source
	return gb
}

// Grammar resolves all references and returns the grammar. The builder must
// not be used afterwards.
func (gb *GrammarBuilder) Grammar() (*Grammar, error) {
	if len(gb.errs) > 0 {
		return nil, gb.errs[0]
	}
	if len(gb.g.order) == 0 {
		return nil, fmt.Errorf("grammar %s has no rules", gb.g.name)
	}
	visited := make(map[Parser]bool)
	for _, name := range gb.g.order {
		if err := gb.resolve(gb.g.rules[name].body, visited); err != nil {
			return nil, err
		}
	}
	g := gb.g
	gb.g = nil
	tracer().Debugf("built grammar %s with %d rules", g.name, len(g.order))
	return g, nil
}

// MustGrammar is like Grammar, but panics on errors. It is intended for
// hand-built grammars initialized at program start.
func (gb *GrammarBuilder) MustGrammar() *Grammar {
	g, err := gb.Grammar()
	if err != nil {
		panic(err)
	}
	return g
}

// resolve walks a parser graph and binds references to rules. The walk does
// not descend into rules, which are resolved by the grammar owning them.
func (gb *GrammarBuilder) resolve(p Parser, visited map[Parser]bool) error {
	if visited[p] {
		return nil
	}
	visited[p] = true
	switch x := p.(type) {
	case *Rule:
		return nil
	case *ref:
		target, err := gb.lookup(x.grammar, x.name)
		if err != nil {
			return err
		}
		if x.target != nil && x.target != target {
			return fmt.Errorf("grammar %s: reference %s is shared with another grammar", gb.g.name, x)
		}
		x.target = target
		return nil
	case composite:
		for _, sub := range x.parsers() {
			if err := gb.resolve(sub, visited); err != nil {
				return err
			}
		}
	}
	return nil
}

func (gb *GrammarBuilder) lookup(grammar, name string) (*Rule, error) {
	if grammar == "" || grammar == gb.g.name {
		if r, ok := gb.g.rules[name]; ok {
			return r, nil
		}
		if grammar != "" {
			return nil, fmt.Errorf("grammar %s: unknown rule %q", gb.g.name, name)
		}
		for _, imp := range gb.g.imports {
			if r, ok := imp.rules[name]; ok {
				return r, nil
			}
		}
		return nil, fmt.Errorf("grammar %s: unknown rule %q", gb.g.name, name)
	}
	for _, imp := range gb.g.imports {
		if imp.name == grammar {
			if r, ok := imp.rules[name]; ok {
				return r, nil
			}
			return nil, fmt.Errorf("grammar %s: unknown rule %s::%s", gb.g.name, grammar, name)
		}
	}
	return nil, fmt.Errorf("grammar %s: unknown grammar %q in reference to %s", gb.g.name, grammar, name)
}
