package koopa

import (
	"fmt"
	"strings"
)

// --- Positions -------------------------------------------------------------

// Position is a location in original source. Lines and columns start at 1,
// offsets are byte offsets starting at 0. Columns count grapheme clusters,
// not bytes.
type Position struct {
	Source string
	Line   int
	Column int
	Offset int
}

// IsValid returns true if the position has been set.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Before is true if p denotes a location in front of q (by offset).
func (p Position) Before(q Position) bool {
	return p.Offset < q.Offset
}

func (p Position) String() string {
	if p.Source != "" {
		return fmt.Sprintf("%s:%d:%d", p.Source, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// --- Area and syntactic tags -----------------------------------------------

// Area is a token classification by structural origin.
type Area uint8

// The area vocabulary is part of the wire contract for tools validating
// tokenization output. Do not re-order.
const (
	ProgramText Area = 1 << iota
	Comment
	Skipped
	CompilerDirective
)

var areaNames = []struct {
	a    Area
	name string
}{
	{ProgramText, "program-text"},
	{Comment, "comment"},
	{Skipped, "skipped"},
	{CompilerDirective, "compiler-directive"},
}

// Tag is a token classification by lexical category.
type Tag uint8

// The tag vocabulary is part of the wire contract, too.
const (
	Word Tag = 1 << iota
	Number
	String
	Separator
	Whitespace
	EndOfLine
	Incomplete
)

var tagNames = []struct {
	t    Tag
	name string
}{
	{Word, "word"},
	{Number, "number"},
	{String, "string"},
	{Separator, "separator"},
	{Whitespace, "whitespace"},
	{EndOfLine, "end-of-line"},
	{Incomplete, "incomplete"},
}

// Has is true if all areas of b are set in a.
func (a Area) Has(b Area) bool {
	return b != 0 && a&b == b
}

func (a Area) String() string {
	var names []string
	for _, n := range areaNames {
		if a&n.a != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, ",")
}

// Has is true if all tags of u are set in t.
func (t Tag) Has(u Tag) bool {
	return u != 0 && t&u == u
}

func (t Tag) String() string {
	var names []string
	for _, n := range tagNames {
		if t&n.t != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, ",")
}

// ParseArea returns the area for a vocabulary name.
func ParseArea(name string) (Area, error) {
	for _, n := range areaNames {
		if n.name == name {
			return n.a, nil
		}
	}
	return 0, fmt.Errorf("unknown area tag %q", name)
}

// ParseTag returns the syntactic tag for a vocabulary name.
func ParseTag(name string) (Tag, error) {
	for _, n := range tagNames {
		if n.name == name {
			return n.t, nil
		}
	}
	return 0, fmt.Errorf("unknown syntactic tag %q", name)
}

// --- Tokens ----------------------------------------------------------------

// Token is a lexical unit. Tokens are created once during tokenization.
// Tags and areas are additive: they may be set, but never cleared.
// A token is always a leaf of a syntax tree.
//
// An example would be a token for a COBOL paragraph name:
//
//    Text     = "MAIN-LOGIC"
//    Areas    = program-text
//    Tags     = word
//    Start    = prog.cbl:12:8
//    End      = prog.cbl:12:18
//
type Token struct {
	Text     string
	areas    Area
	tags     Tag
	Start    Position
	End      Position
	Replaced *Replaced // non-nil if the token stems from a textual substitution
}

// NewToken creates a program-text token.
func NewToken(text string, tags Tag, start, end Position) *Token {
	return NewTokenIn(ProgramText, text, tags, start, end)
}

// NewTokenIn creates a token located in areas.
func NewTokenIn(areas Area, text string, tags Tag, start, end Position) *Token {
	return &Token{
		Text:  text,
		areas: areas,
		tags:  tags,
		Start: start,
		End:   end,
	}
}

// Tags returns the syntactic tags of the token.
func (t *Token) Tags() Tag {
	if t == nil {
		return 0
	}
	return t.tags
}

// Areas returns the areas the token is located in.
func (t *Token) Areas() Area {
	if t == nil {
		return 0
	}
	return t.areas
}

// Tag adds syntactic tags to the token.
func (t *Token) Tag(tags Tag) *Token {
	t.tags |= tags
	return t
}

// InArea adds areas to the token.
func (t *Token) InArea(areas Area) *Token {
	t.areas |= areas
	return t
}

// HasTag is a predicate for syntactic tags.
func (t *Token) HasTag(tag Tag) bool {
	return t != nil && t.tags.Has(tag)
}

// IsIn is a predicate for areas.
func (t *Token) IsIn(area Area) bool {
	return t != nil && t.areas.Has(area)
}

// Origin returns the start position of t in original source. For tokens
// resulting from substitutions, this is the start of the outermost
// substitution.
func (t *Token) Origin() Position {
	if t.Replaced == nil {
		return t.Start
	}
	return t.Replaced.Outermost().Start
}

func (t *Token) String() string {
	if t == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%q[%s|%s]@%s", t.Text, t.areas, t.tags, t.Start)
}

// --- Replacements ----------------------------------------------------------

// Replaced marks a span of tokens as originating from a textual substitution.
// Context links to the substitution which was active when this one occurred,
// forming a chain from innermost to outermost. Replaced values are never
// mutated after creation.
type Replaced struct {
	Start   Position
	End     Position
	Context *Replaced
}

// Chain returns the substitutions from innermost (r) to outermost.
func (r *Replaced) Chain() []*Replaced {
	var chain []*Replaced
	for ; r != nil; r = r.Context {
		chain = append(chain, r)
	}
	return chain
}

// Outermost returns the substitution at the end of the chain.
func (r *Replaced) Outermost() *Replaced {
	for r != nil && r.Context != nil {
		r = r.Context
	}
	return r
}

func (r *Replaced) String() string {
	return fmt.Sprintf("replaced(%s…%s)", r.Start, r.End)
}
