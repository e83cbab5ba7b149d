package kg

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/npillmayer/koopa"
	"github.com/npillmayer/koopa/combinator"
	"github.com/npillmayer/koopa/stream"
	"github.com/npillmayer/koopa/tree"
)

// Parse reads a KG source text into a definition. Source names the text in
// positions and error messages; if the text has no grammar header, the base
// name of source (without extension) is used as the grammar name.
//
// If the text is not valid KG, Parse returns a *koopa.Rejection, possibly
// wrapped.
func Parse(source string, text string) (*Definition, error) {
	tokenizer, err := Tokenizer(source, text)
	if err != nil {
		return nil, err
	}
	var lexErrs []error
	tokenizer.SetErrorHandler(func(e error) {
		lexErrs = append(lexErrs, e)
	})
	outcome, err := Bootstrap().Parse(stream.New(tokenizer), RuleFile)
	if len(lexErrs) > 0 {
		return nil, fmt.Errorf("%s: illegal characters in grammar definition: %w", source, lexErrs[0])
	}
	if err != nil {
		var rej *koopa.Rejection
		if errors.As(err, &rej) && rej.Source == "" {
			rej.Source = source
		}
		return nil, err
	}
	def := &Definition{Grammar: grammarName(source), Source: source}
	ab := &astBuilder{def: def}
	t := outcome.Tree
	tree.Walk(t, t.Root(), ab, tree.LtoR)
	if len(ab.errs) > 0 {
		return nil, ab.errs[0]
	}
	tracer().Infof("read grammar %s with %d rules from %s", def.Grammar, len(def.Rules), source)
	return def, nil
}

// Compile reads a KG source text and builds an executable grammar from it.
// Imports have to contain all grammars the definition imports.
func Compile(source string, text string, imports ...*combinator.Grammar) (*combinator.Grammar, error) {
	def, err := Parse(source, text)
	if err != nil {
		return nil, err
	}
	return Build(def, imports...)
}

func grammarName(source string) string {
	base := filepath.Base(source)
	if base == "." || base == string(filepath.Separator) || source == "" {
		return "anonymous"
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
