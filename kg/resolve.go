package kg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/npillmayer/koopa"
)

// RuleSet is a named set of rules, available for import. Both definitions and
// executable grammars are rule sets.
type RuleSet interface {
	Name() string
	RuleNames() []string
}

// Name returns the grammar name.
func (d *Definition) Name() string {
	return d.Grammar
}

// Classes are the token classes available as $name.
var Classes = map[string]koopa.Tag{
	"word":      koopa.Word,
	"number":    koopa.Number,
	"string":    koopa.String,
	"separator": koopa.Separator,
	"any":       0,
}

// UndefinedError is reported for references to rules which are not defined.
type UndefinedError struct {
	Grammar string
	Names   []string // sorted
	Pos     koopa.Position
}

func (e *UndefinedError) Error() string {
	return fmt.Sprintf("%s: grammar %s references undefined rules: %s", e.Pos, e.Grammar,
		strings.Join(e.Names, ", "))
}

// Resolution is the result of resolving the rule references of a definition.
type Resolution struct {
	Scope   *Scope            // scope of the definition, chained to its imports
	Imports map[string]*Scope // scopes of imported grammars by name
	Unused  []string          // rules never referenced, excluding the start rule
}

// Resolve checks that every reference of a definition denotes a rule, either
// of the definition itself or of one of the imported grammars. Imports must
// provide every grammar the definition imports; others are ignored.
func Resolve(def *Definition, imports ...RuleSet) (*Resolution, error) {
	var errs []error
	if len(def.Rules) == 0 {
		return nil, fmt.Errorf("%s: grammar %s defines no rules", def.Source, def.Grammar)
	}
	res := &Resolution{Imports: make(map[string]*Scope)}
	var chain []*Scope
	for _, name := range def.Imports {
		if _, dup := res.Imports[name]; dup {
			errs = append(errs, fmt.Errorf("%s: grammar %s imported twice", def.Source, name))
			continue
		}
		imp := findRuleSet(imports, name)
		if imp == nil {
			errs = append(errs, fmt.Errorf("%s: imported grammar %s is not available", def.Source, name))
			continue
		}
		sc := NewScope(name, nil)
		for _, r := range imp.RuleNames() {
			sc.Define(r, nil)
		}
		res.Imports[name] = sc
		chain = append(chain, sc)
	}
	for i := len(chain) - 1; i > 0; i-- {
		chain[i-1].Parent = chain[i]
	}
	var parent *Scope
	if len(chain) > 0 {
		parent = chain[0]
	}
	res.Scope = NewScope(def.Grammar, parent)
	for _, r := range def.Rules {
		if _, old := res.Scope.Define(r.Name, r); old != nil {
			errs = append(errs, fmt.Errorf("%s: rule %s already defined at %s", r.Pos, r.Name, old.Def.Pos))
		}
	}
	undefined := newNameSet()
	var firstPos koopa.Position
	use := func(grammar, name string, pos koopa.Position) {
		var sym *Symbol
		if grammar == "" {
			sym, _ = res.Scope.Resolve(name)
		} else if sc, ok := res.Imports[grammar]; ok {
			sym = sc.Lookup(name)
		}
		if sym == nil {
			if undefined.Empty() {
				firstPos = pos
			}
			if grammar != "" {
				name = grammar + "::" + name
			}
			undefined.Add(name)
			return
		}
		sym.Uses++
	}
	for _, r := range def.Rules {
		Walk(r.Body, func(e Expr) {
			switch x := e.(type) {
			case *Reference:
				use(x.Grammar, x.Name, x.Pos)
			case *Within:
				for _, n := range x.Names {
					use("", n, x.Pos)
				}
			case *Class:
				if _, ok := Classes[x.Name]; !ok {
					errs = append(errs, fmt.Errorf("%s: unknown token class $%s", x.Pos, x.Name))
				}
			}
		})
	}
	if !undefined.Empty() {
		errs = append(errs, &UndefinedError{Grammar: def.Grammar, Names: undefined.Names(), Pos: firstPos})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	res.Scope.Each(func(sym *Symbol) {
		if sym.Uses == 0 && sym.Def != def.Rules[0] {
			tracer().Infof("grammar %s: rule %s is never used", def.Grammar, sym.Name())
			res.Unused = append(res.Unused, sym.Name())
		}
	})
	return res, nil
}

func findRuleSet(sets []RuleSet, name string) RuleSet {
	for _, s := range sets {
		if s != nil && s.Name() == name {
			return s
		}
	}
	return nil
}
