package parse

import (
	"github.com/npillmayer/koopa"
	"github.com/npillmayer/koopa/combinator"
	"github.com/npillmayer/koopa/scanner"
)

// countingTokenizer collects line statistics for every token passing by.
type countingTokenizer struct {
	scanner.Tokenizer
	code     map[int]bool
	comment  map[int]bool
	maxLine  int
	tokens   int
	warnings int
	errors   int
	done     bool
}

var _ scanner.Tokenizer = (*countingTokenizer)(nil)

// NextToken is part of interface scanner.Tokenizer.
func (ct *countingTokenizer) NextToken() *koopa.Token {
	if ct.done {
		return nil
	}
	tok := ct.Tokenizer.NextToken()
	if tok == nil {
		ct.done = true
		return nil
	}
	if ct.code == nil {
		ct.code, ct.comment = make(map[int]bool), make(map[int]bool)
	}
	if tok.End.Line > ct.maxLine {
		ct.maxLine = tok.End.Line
	}
	if tok.HasTag(koopa.Incomplete) {
		ct.warnings++
	}
	switch {
	case tok.IsIn(koopa.Comment):
		for l := tok.Start.Line; l <= tok.End.Line; l++ {
			ct.comment[l] = true
		}
	case combinator.Significant(tok):
		ct.tokens++
		ct.code[tok.Start.Line] = true
	}
	return tok
}

// drain reads the tokens a rejected parse did not get to.
func (ct *countingTokenizer) drain() {
	for ct.NextToken() != nil {
	}
}

func (ct *countingTokenizer) counts(tok scanner.Tokenizer) Counts {
	c := Counts{
		Lines:     ct.maxLine,
		CodeLines: len(ct.code),
		Tokens:    ct.tokens,
		Errors:    ct.errors,
		Warnings:  ct.warnings,
	}
	if lc, ok := tok.(interface{ Lines() int }); ok {
		c.Lines = lc.Lines()
	}
	for l := range ct.comment {
		if !ct.code[l] {
			c.CommentLines++
		}
	}
	return c
}
