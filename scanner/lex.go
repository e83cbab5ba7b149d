package scanner

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// --- Category codes --------------------------------------------------------

// CatCode is a category for runes. Runs of runes with identical category
// form a sequence, unless the category is a 'loner'.
type CatCode int16

// Category codes used by the default categorizer.
const (
	IllegalCatCode CatCode = iota
	CatWord
	CatNumber
	CatSpace
	CatNewline
	CatQuote
	CatSymbol
)

// RuneCategorizer maps runes to categories. isLoner signals that a rune of this
// category may not form sequences.
type RuneCategorizer interface {
	Cat(r rune) (cat CatCode, isLoner bool)
}

// SequenceContinuer is an optional interface for categorizers. It allows runes of
// a different category to continue a sequence, e.g. digits within words.
type SequenceContinuer interface {
	Continues(cat CatCode, r rune) bool
}

// CatSeq is a sequence of runes with common category.
type CatSeq struct {
	Cat    CatCode // catcode of all runes in this sequence
	Length int     // length of sequence in terms of runes
}

// DefaultCategorizer groups letters into words (continued by digits, '-' and '_'),
// digits into numbers and blanks into whitespace runs. Quotes, newlines and any
// other runes are loners.
type DefaultCategorizer struct{}

var _ RuneCategorizer = DefaultCategorizer{}
var _ SequenceContinuer = DefaultCategorizer{}

// Cat is part of interface RuneCategorizer.
func (DefaultCategorizer) Cat(r rune) (CatCode, bool) {
	switch {
	case r == '\n' || r == '\r':
		return CatNewline, true
	case r == '"' || r == '\'':
		return CatQuote, true
	case unicode.IsLetter(r):
		return CatWord, false
	case unicode.IsDigit(r):
		return CatNumber, false
	case r == ' ' || r == '\t' || r == '\f' || r == '\v':
		return CatSpace, false
	case r == utf8.RuneError:
		return IllegalCatCode, true
	}
	return CatSymbol, true
}

// Continues is part of interface SequenceContinuer.
func (DefaultCategorizer) Continues(cat CatCode, r rune) bool {
	if cat == CatWord {
		return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'
	}
	return false
}

// --- Category sequence reader ----------------------------------------------

// CatSeqReader reads runs of runes with common category from a rune reader.
// The runes of the current run are collected in an output buffer, which clients
// reset after having made a token from it.
type CatSeqReader struct {
	isEof      bool
	next       rune
	nextSize   int
	hasNext    bool
	start, end int // as byte offsets
	reader     io.RuneReader
	writer     strings.Builder
}

// NewCatSeqReader creates a category sequence reader.
func NewCatSeqReader(r io.RuneReader) *CatSeqReader {
	csr := &CatSeqReader{
		reader: r,
	}
	return csr
}

// Next reads the next sequence of runes with common category.
func (rs *CatSeqReader) Next(rc RuneCategorizer) (csq CatSeq, err error) {
	var r rune
	r, err = rs.lookahead()
	if err != nil && err != io.EOF {
		return csq, fmt.Errorf("scanner cannot read sequence (%w)", err)
	} else if err == io.EOF {
		return csq, io.EOF
	}
	var isLoner bool
	csq.Cat, isLoner = rc.Cat(r)
	if isLoner { // rune category is not allowed to form sequences
		rs.match(r)
		csq.Length = 1
		return csq, nil
	}
	cont, _ := rc.(SequenceContinuer)
	cc := csq.Cat
	for cc == csq.Cat || (cont != nil && cont.Continues(csq.Cat, r)) {
		rs.match(r)
		csq.Length++
		if r, err = rs.lookahead(); err != nil {
			if err == io.EOF {
				err = nil
			}
			return csq, err
		}
		cc, isLoner = rc.Cat(r)
		if isLoner && (cont == nil || !cont.Continues(csq.Cat, r)) {
			break
		}
	}
	return csq, nil
}

// OutputString returns the runes collected since the last reset.
func (rs *CatSeqReader) OutputString() string {
	return rs.writer.String()
}

// ResetOutput clears the output buffer and starts a new span.
func (rs *CatSeqReader) ResetOutput() {
	if rs == nil {
		return
	}
	rs.writer.Reset()
	rs.start = rs.end
}

// Span returns the byte offsets of the collected output.
func (rs *CatSeqReader) Span() (int, int) {
	return rs.start, rs.end
}

// Peek returns the next rune without consuming it.
func (rs *CatSeqReader) Peek() (rune, bool) {
	r, err := rs.lookahead()
	return r, err == nil
}

// Match consumes the next rune into the output.
func (rs *CatSeqReader) Match() (rune, bool) {
	r, err := rs.lookahead()
	if err != nil {
		return r, false
	}
	rs.match(r)
	return r, true
}

// Rest consumes all remaining runes into the output.
func (rs *CatSeqReader) Rest() {
	for {
		if _, ok := rs.Match(); !ok {
			return
		}
	}
}

func (rs *CatSeqReader) lookahead() (r rune, err error) {
	if rs == nil || rs.isEof {
		return utf8.RuneError, io.EOF
	}
	if rs.hasNext {
		return rs.next, nil
	}
	var sz int
	r, sz, err = rs.reader.ReadRune()
	if err == io.EOF {
		rs.isEof = true
		return utf8.RuneError, io.EOF
	} else if err != nil {
		return 0, err
	}
	rs.next, rs.nextSize, rs.hasNext = r, sz, true
	return r, nil
}

func (rs *CatSeqReader) match(r rune) {
	if rs == nil {
		return
	}
	if rs.isEof {
		panic("EOF matched")
	}
	rs.writer.WriteRune(r)
	rs.end += rs.nextSize
	rs.hasNext = false
}
