package kg

import (
	"fmt"

	"github.com/emirpasic/gods/sets/treeset"
)

// Rule names are resolved in scopes. Every grammar has a scope of its own,
// holding a symbol for each of its rules. Scopes link back to a parent scope,
// forming a chain: the scope of a definition links to the scope of its first
// import, which links to the next import, and so on. Resolving an unqualified
// name walks this chain, thus own rules shadow imported ones, and earlier
// imports shadow later ones.

// --- Symbols ---------------------------------------------------------------

// Symbol is a rule name bound in a scope.
type Symbol struct {
	name  string
	Def   *RuleDef // nil for rules of imported grammars
	Scope *Scope   // scope the symbol is defined in
	Uses  int      // number of references to this symbol
}

// Name returns the symbol's name.
func (s *Symbol) Name() string {
	return s.name
}

func (s *Symbol) String() string {
	return fmt.Sprintf("<symbol %s::%s>", s.Scope.Name, s.name)
}

// === Scopes ================================================================

// Scope is a named scope containing rule symbols. Scopes link back to a parent
// scope.
type Scope struct {
	Name   string
	Parent *Scope
	symtab map[string]*Symbol
	order  []string
}

// NewScope creates a new scope.
func NewScope(name string, parent *Scope) *Scope {
	return &Scope{
		Name:   name,
		Parent: parent,
		symtab: make(map[string]*Symbol),
	}
}

func (s *Scope) String() string {
	return fmt.Sprintf("<scope %s>", s.Name)
}

// Define creates a symbol in the scope. Returns the new symbol and the
// previously stored symbol under this name, if any. The previous symbol is
// kept.
func (s *Scope) Define(name string, def *RuleDef) (*Symbol, *Symbol) {
	if old, exists := s.symtab[name]; exists {
		return nil, old
	}
	sym := &Symbol{name: name, Def: def, Scope: s}
	s.symtab[name] = sym
	s.order = append(s.order, name)
	return sym, nil
}

// Lookup finds a symbol in this scope only.
func (s *Scope) Lookup(name string) *Symbol {
	return s.symtab[name]
}

// Resolve finds a symbol, walking up the chain of parent scopes. Returns the
// symbol (or nil) and the scope it was found in.
func (s *Scope) Resolve(name string) (*Symbol, *Scope) {
	for ; s != nil; s = s.Parent {
		if sym := s.symtab[name]; sym != nil {
			return sym, s
		}
	}
	return nil, nil
}

// Size counts the symbols in a scope.
func (s *Scope) Size() int {
	return len(s.symtab)
}

// Each iterates over the symbols of the scope in order of definition.
func (s *Scope) Each(f func(*Symbol)) {
	for _, name := range s.order {
		f(s.symtab[name])
	}
}

// --- Name sets -------------------------------------------------------------

// nameSet is a sorted set of names, used for deterministic error messages.
type nameSet struct {
	set *treeset.Set
}

func newNameSet() nameSet {
	return nameSet{set: treeset.NewWithStringComparator()}
}

func (ns nameSet) Add(name string) {
	ns.set.Add(name)
}

func (ns nameSet) Empty() bool {
	return ns.set.Empty()
}

func (ns nameSet) Names() []string {
	names := make([]string, 0, ns.set.Size())
	for _, v := range ns.set.Values() {
		names = append(names, v.(string))
	}
	return names
}
