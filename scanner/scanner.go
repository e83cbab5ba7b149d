/*
Package scanner defines an interface for tokenizers producing koopa tokens.

Two implementations are provided: (1) a default tokenizer built on runs of rune
categories, which understands free and fixed (column-oriented) source formats,
and (2) an adapter for lexmachine, living in sub-package `lexmach`.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package scanner

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/npillmayer/koopa"
	"github.com/npillmayer/schuko/tracing"
	"github.com/rivo/uniseg"
)

// tracer traces with key 'koopa.scanner'.
func tracer() tracing.Trace {
	return tracing.Select("koopa.scanner")
}

// Tokenizer is a scanner interface. NextToken returns nil at end of input,
// repeatedly.
type Tokenizer interface {
	NextToken() *koopa.Token
	SetErrorHandler(func(error))
}

// Tokenize reads all tokens from a tokenizer.
func Tokenize(t Tokenizer) []*koopa.Token {
	var tokens []*koopa.Token
	for tok := t.NextToken(); tok != nil; tok = t.NextToken() {
		tokens = append(tokens, tok)
	}
	return tokens
}

// Default error reporting function for scanners
func logError(e error) {
	tracer().Errorf("scanner error: " + e.Error())
}

// SourceFormat selects how lines of input are laid out.
type SourceFormat int

// Free format treats every line as program text. Fixed format reserves
// columns 1–6 (sequence area), column 7 (indicator) and columns beyond 72.
const (
	Free SourceFormat = iota
	Fixed
)

// Column boundaries of fixed format source.
const (
	fixedIndicator  = 7
	fixedContentEnd = 72
)

// ParseFormat returns the source format for a name ("free" or "fixed").
func ParseFormat(name string) (SourceFormat, error) {
	switch strings.ToLower(name) {
	case "", "free":
		return Free, nil
	case "fixed":
		return Fixed, nil
	}
	return Free, fmt.Errorf("unknown source format %q", name)
}

func (f SourceFormat) String() string {
	if f == Fixed {
		return "fixed"
	}
	return "free"
}

// --- Default tokenizer -----------------------------------------------------

// DefaultTokenizer is the default implementation of Tokenizer. It reads its input
// line by line and splits each line into words, numbers, strings, separators,
// whitespace and an end-of-line token. Create one with NewTokenizer.
type DefaultTokenizer struct {
	input       *bufio.Reader
	source      string
	line        int // number of the current line
	offset      int // byte offset of the start of the next line
	pending     []*koopa.Token
	eof         bool
	Error       func(error) // error handler
	categorizer RuneCategorizer
	format      SourceFormat
	lineComment string
	skipWS      bool
}

var _ Tokenizer = (*DefaultTokenizer)(nil)

// NewTokenizer creates a tokenizer for input, identified as sourceID in positions.
func NewTokenizer(sourceID string, input io.Reader, opts ...Option) *DefaultTokenizer {
	t := &DefaultTokenizer{
		input:       bufio.NewReader(input),
		source:      sourceID,
		Error:       logError,
		categorizer: DefaultCategorizer{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetErrorHandler sets an error handler for the scanner.
func (t *DefaultTokenizer) SetErrorHandler(h func(error)) {
	if h == nil {
		t.Error = logError
		return
	}
	t.Error = h
}

// NextToken is part of the Tokenizer interface.
func (t *DefaultTokenizer) NextToken() *koopa.Token {
	for len(t.pending) == 0 {
		if t.eof {
			return nil
		}
		t.readLine()
	}
	tok := t.pending[0]
	t.pending = t.pending[1:]
	return tok
}

// Lines returns the number of lines read so far.
func (t *DefaultTokenizer) Lines() int {
	return t.line
}

func (t *DefaultTokenizer) readLine() {
	text, err := t.input.ReadString('\n')
	if err != nil {
		t.eof = true
		if err != io.EOF {
			t.Error(err)
		}
		if text == "" {
			tracer().Debugf("DefaultTokenizer reached end of input")
			return
		}
	}
	t.line++
	lineStart := t.offset
	t.offset += len(text)
	content, eol := splitEOL(text)
	if t.format == Fixed {
		t.tokenizeFixed(content, lineStart)
	} else {
		t.tokenizeSegment(content, content, 0, lineStart)
	}
	if eol != "" && !t.skipWS {
		start := t.position(content, content, 1, lineStart, len(content))
		end := start
		end.Column++
		end.Offset += len(eol)
		t.pending = append(t.pending, koopa.NewToken(eol, koopa.EndOfLine, start, end))
	}
}

func splitEOL(text string) (string, string) {
	if strings.HasSuffix(text, "\r\n") {
		return text[:len(text)-2], "\r\n"
	} else if strings.HasSuffix(text, "\n") {
		return text[:len(text)-1], "\n"
	}
	return text, ""
}

// tokenizeFixed splits a fixed format line into its areas.
func (t *DefaultTokenizer) tokenizeFixed(line string, lineStart int) {
	runes := []rune(line)
	cut := func(from, to int) (string, int) {
		if from >= len(runes) {
			return "", len(line)
		}
		if to > len(runes) {
			to = len(runes)
		}
		return string(runes[from:to]), len(string(runes[:from]))
	}
	if seq, off := cut(0, fixedIndicator-1); seq != "" {
		t.emitArea(line, seq, off, lineStart, koopa.Skipped)
	}
	indicator, off := cut(fixedIndicator-1, fixedIndicator)
	switch indicator {
	case "*", "/":
		comment, _ := cut(fixedIndicator-1, fixedContentEnd)
		t.emitArea(line, comment, off, lineStart, koopa.Comment)
	case "", " ":
		content, coff := cut(fixedIndicator, fixedContentEnd)
		if content != "" {
			t.tokenizeSegment(line, content, coff, lineStart)
		}
	default:
		t.emitArea(line, indicator, off, lineStart, koopa.Skipped)
		content, coff := cut(fixedIndicator, fixedContentEnd)
		if content != "" {
			t.tokenizeSegment(line, content, coff, lineStart)
		}
	}
	if rest, off := cut(fixedContentEnd, len(runes)); rest != "" {
		t.emitArea(line, rest, off, lineStart, koopa.Skipped)
	}
}

// emitArea emits a token for a complete area of a line, e.g. a comment line.
func (t *DefaultTokenizer) emitArea(line, text string, off int, lineStart int, area koopa.Area) {
	start := t.position(line, line, 1, lineStart, off)
	end := t.position(line, line, 1, lineStart, off+len(text))
	t.pending = append(t.pending, koopa.NewTokenIn(area, text, 0, start, end))
}

// tokenizeSegment splits a segment of a line into tokens. segOff is the byte
// offset of seg within line.
func (t *DefaultTokenizer) tokenizeSegment(line, seg string, segOff int, lineStart int) {
	rs := NewCatSeqReader(strings.NewReader(seg))
	for {
		s, _ := rs.Span()
		if t.lineComment != "" && strings.HasPrefix(seg[s:], t.lineComment) {
			rs.Rest()
			t.emit(line, rs, segOff, lineStart, koopa.Comment, 0)
			return
		}
		csq, err := rs.Next(t.categorizer)
		if err == io.EOF {
			return
		} else if err != nil {
			t.Error(err)
			return
		}
		var tags koopa.Tag
		switch csq.Cat {
		case CatWord:
			tags = koopa.Word
		case CatNumber:
			tags = koopa.Number
		case CatSpace, CatNewline:
			tags = koopa.Whitespace
		case CatQuote:
			tags = koopa.String
			if !readString(rs) {
				tags |= koopa.Incomplete
				t.Error(fmt.Errorf("%s:%d: unterminated string", t.source, t.line))
			}
		case IllegalCatCode:
			tags = koopa.Separator | koopa.Incomplete
			t.Error(fmt.Errorf("%s:%d: illegal character", t.source, t.line))
		default:
			tags = koopa.Separator
		}
		if tags == koopa.Whitespace && t.skipWS {
			rs.ResetOutput()
			continue
		}
		t.emit(line, rs, segOff, lineStart, koopa.ProgramText, tags)
	}
}

// readString reads the rest of a quoted string; a doubled quote character
// stands for the quote itself. Returns false for unterminated strings.
func readString(rs *CatSeqReader) bool {
	quote := []rune(rs.OutputString())[0]
	for {
		r, ok := rs.Match()
		if !ok {
			return false
		}
		if r == quote {
			if la, ok := rs.Peek(); ok && la == quote {
				rs.Match()
				continue
			}
			return true
		}
	}
}

func (t *DefaultTokenizer) emit(line string, rs *CatSeqReader, segOff int, lineStart int,
	area koopa.Area, tags koopa.Tag) {
	//
	s, e := rs.Span()
	tok := koopa.NewTokenIn(area, rs.OutputString(), tags,
		t.position(line, line, 1, lineStart, segOff+s),
		t.position(line, line, 1, lineStart, segOff+e))
	tracer().Debugf("token %v", tok)
	t.pending = append(t.pending, tok)
	rs.ResetOutput()
}

// position calculates the position of byte offset off within seg, where seg
// starts at column col. Columns count grapheme clusters.
func (t *DefaultTokenizer) position(line, seg string, col int, lineStart int, off int) koopa.Position {
	if off > len(seg) {
		off = len(seg)
	}
	return koopa.Position{
		Source: t.source,
		Line:   t.line,
		Column: col + uniseg.GraphemeClusterCount(seg[:off]),
		Offset: lineStart + off,
	}
}

// --- Tokenizer options -----------------------------------------------------

// Option configures a default tokenizer.
type Option func(t *DefaultTokenizer)

// SkipWhitespace sets or clears option SkipWhitespace: do not pass whitespace
// and end-of-line tokens.
func SkipWhitespace(b bool) Option {
	return func(t *DefaultTokenizer) {
		t.skipWS = b
	}
}

// Format sets the source format.
func Format(f SourceFormat) Option {
	return func(t *DefaultTokenizer) {
		t.format = f
	}
}

// LineComment sets a prefix starting comments which extend to the end of the line.
func LineComment(prefix string) Option {
	return func(t *DefaultTokenizer) {
		t.lineComment = prefix
	}
}

// Categorizer replaces the default rune categorizer.
func Categorizer(rc RuneCategorizer) Option {
	return func(t *DefaultTokenizer) {
		if rc != nil {
			t.categorizer = rc
		}
	}
}
