package kg

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/npillmayer/koopa"
	"github.com/npillmayer/koopa/combinator"
)

// ReadFile reads a KG file into a definition. Read failures are reported as
// *koopa.IOError.
func ReadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &koopa.IOError{Path: path, Err: err}
	}
	return Parse(path, string(data))
}

// ImportPath returns the path of the KG file for a grammar imported by the
// KG file at path. Imported grammars live in the same directory, in a file
// named after the grammar.
func ImportPath(path string, grammar string) string {
	return filepath.Join(filepath.Dir(path), grammar+".kg")
}

// LoadFile reads a KG file and builds an executable grammar from it,
// loading imported grammars transitively. Cyclic imports are an error.
func LoadFile(path string) (*combinator.Grammar, error) {
	l := &loader{loaded: make(map[string]*combinator.Grammar), active: make(map[string]bool)}
	return l.load(path)
}

type loader struct {
	loaded map[string]*combinator.Grammar // by path
	active map[string]bool                // paths currently being loaded
}

func (l *loader) load(path string) (*combinator.Grammar, error) {
	if g, ok := l.loaded[path]; ok {
		return g, nil
	}
	if l.active[path] {
		return nil, fmt.Errorf("%s: cyclic import", path)
	}
	l.active[path] = true
	defer delete(l.active, path)
	def, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	var imps []*combinator.Grammar
	for _, name := range def.Imports {
		imp, err := l.load(ImportPath(path, name))
		if err != nil {
			return nil, fmt.Errorf("%s: import %s: %w", path, name, err)
		}
		imps = append(imps, imp)
	}
	g, err := Build(def, imps...)
	if err != nil {
		return nil, err
	}
	tracer().Debugf("loaded grammar %s from %s", g.Name(), path)
	l.loaded[path] = g
	return g, nil
}
