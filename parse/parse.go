/*
Package parse is the consumer-facing API for parsing source files.

A parse reads a source file or an in-memory text, tokenizes it, matches it
against a grammar and returns a Result. Results carry the syntax tree, line
and token counts, the time elapsed and the resolved path of the source:

	g, _ := kg.Compile("greeting.kg", `rule greeting = "hello" $word ;`)
	result, err := parse.Text("input", "hello world", parse.Grammar(g))

Rejections of the input are not errors of the API: they are reported in the
result. Errors returned are I/O failures (*koopa.IOError) and broken
contracts (koopa.ContractViolation). The latter are recovered once at the
boundary of a parse, unless configuration flag 'panic-on-contract-violation'
is set.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package parse

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/npillmayer/koopa"
	"github.com/npillmayer/koopa/combinator"
	"github.com/npillmayer/koopa/scanner"
	"github.com/npillmayer/koopa/stream"
	"github.com/npillmayer/koopa/tree"
	"github.com/npillmayer/schuko/gconf"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'koopa.parser'.
func tracer() tracing.Trace {
	return tracing.Select("koopa.parser")
}

// Result is the outcome of parsing a single source.
type Result struct {
	Source   string // resolved path, or the name of an in-memory text
	Accepted bool
	Tree     *tree.Tree // nil if rejected or if no tree has been built
	Counts   Counts
	Elapsed  time.Duration
	Err      error // rejection or error, nil if accepted
}

// Counts are statistics of a parse.
type Counts struct {
	Lines        int // lines of input
	CodeLines    int // lines with at least one significant token
	CommentLines int // lines with comments, but without code
	Tokens       int // significant tokens
	Errors       int // scanner errors, plus one for a rejection
	Warnings     int // incomplete tokens
}

// --- Options ---------------------------------------------------------------

type config struct {
	grammar     *combinator.Grammar
	start       string
	encoding    string
	format      scanner.SourceFormat
	lineComment string
	buildTree   bool
	tokenizer   func(source string, r io.Reader) scanner.Tokenizer
}

// Option configures a parse.
type Option func(*config)

// Grammar sets the grammar to parse with. It is required.
func Grammar(g *combinator.Grammar) Option {
	return func(c *config) {
		c.grammar = g
	}
}

// Start sets the start rule. Default is the first rule of the grammar.
func Start(rule string) Option {
	return func(c *config) {
		c.start = rule
	}
}

// Encoding sets the character encoding of the input. Default is UTF-8.
func Encoding(name string) Option {
	return func(c *config) {
		c.encoding = name
	}
}

// SourceFormat sets the source format (free or fixed) for the default tokenizer.
func SourceFormat(f scanner.SourceFormat) Option {
	return func(c *config) {
		c.format = f
	}
}

// LineComment sets the prefix of line comments for the default tokenizer.
func LineComment(prefix string) Option {
	return func(c *config) {
		c.lineComment = prefix
	}
}

// BuildTree switches tree building on or off. Default is on.
func BuildTree(b bool) Option {
	return func(c *config) {
		c.buildTree = b
	}
}

// Tokenizer replaces the default tokenizer.
func Tokenizer(create func(source string, r io.Reader) scanner.Tokenizer) Option {
	return func(c *config) {
		c.tokenizer = create
	}
}

// --- Parsing ---------------------------------------------------------------

// File parses a source file.
func File(path string, opts ...Option) (*Result, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &koopa.IOError{Path: abs, Err: err}
	}
	defer f.Close()
	return Reader(abs, f, opts...)
}

// Text parses an in-memory text.
func Text(name string, text string, opts ...Option) (*Result, error) {
	return Reader(name, strings.NewReader(text), opts...)
}

// Reader parses input from a reader. Source names the input in the result
// and in token positions.
func Reader(source string, r io.Reader, opts ...Option) (result *Result, err error) {
	cfg := config{buildTree: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.grammar == nil {
		return nil, fmt.Errorf("parse %s: no grammar given", source)
	}
	input, err := scanner.Decode(r, cfg.encoding)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}
	in := &recordingReader{r: input}
	var tok scanner.Tokenizer
	if cfg.tokenizer != nil {
		tok = cfg.tokenizer(source, in)
	} else {
		sopts := []scanner.Option{scanner.Format(cfg.format)}
		if cfg.lineComment != "" {
			sopts = append(sopts, scanner.LineComment(cfg.lineComment))
		}
		tok = scanner.NewTokenizer(source, in, sopts...)
	}
	counter := &countingTokenizer{Tokenizer: tok}
	tok.SetErrorHandler(func(e error) {
		if in.err == nil || !errors.Is(e, in.err) {
			counter.errors++
		}
		tracer().Infof("%s: %v", source, e)
	})
	result = &Result{Source: source}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			cv, ok := r.(koopa.ContractViolation)
			if !ok || gconf.GetBool("panic-on-contract-violation") {
				panic(r)
			}
			tracer().Errorf("%s: parse aborted: %v", source, cv)
			result.Err, err = cv, cv
			result.Elapsed = time.Since(start)
		}
	}()
	outcome, perr := cfg.grammar.Parse(stream.New(counter), cfg.start, combinator.BuildTree(cfg.buildTree))
	counter.drain()
	result.Elapsed = time.Since(start)
	if in.err != nil {
		return nil, &koopa.IOError{Path: source, Err: in.err}
	}
	result.Counts = counter.counts(tok)
	if perr != nil {
		var rej *koopa.Rejection
		if !errors.As(perr, &rej) {
			return nil, perr
		}
		result.Err = perr
		result.Counts.Errors++
		return result, nil
	}
	result.Accepted = outcome.Accepted
	result.Tree = outcome.Tree
	tracer().Debugf("%s: accepted in %s", source, result.Elapsed)
	return result, nil
}

// recordingReader remembers the first read error other than EOF.
type recordingReader struct {
	r   io.Reader
	err error
}

func (rr *recordingReader) Read(p []byte) (int, error) {
	n, err := rr.r.Read(p)
	if err != nil && err != io.EOF && rr.err == nil {
		rr.err = err
	}
	return n, err
}
