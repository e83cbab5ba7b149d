package lexmach

import (
	"strings"

	"github.com/npillmayer/koopa"
	"github.com/npillmayer/koopa/scanner"
	"github.com/npillmayer/schuko/tracing"
	"github.com/rivo/uniseg"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// lexmachine adapter

// tracer traces with key 'koopa.scanner'.
func tracer() tracing.Trace {
	return tracing.Select("koopa.scanner")
}

// LMAdapter is a lexmachine adapter to use lexmachine as a scanner.
type LMAdapter struct {
	Lexer   *lexmachine.Lexer
	classes map[int]class
}

type class struct {
	tags koopa.Tag
	area koopa.Area
}

// NewLMAdapter creates a new lexmachine adapter. It receives a list of
// literals ('[', ';', …), a list of keywords ("if", "for", …) and a
// map for translating token strings to their values.
//
// NewLMAdapter will return an error if compiling the DFA failed.
func NewLMAdapter(init func(*lexmachine.Lexer), literals []string, keywords []string, tokenIds map[string]int) (*LMAdapter, error) {
	adapter := &LMAdapter{classes: make(map[int]class)}
	adapter.Lexer = lexmachine.NewLexer()
	for _, name := range keywords {
		adapter.Lexer.Add([]byte(strings.ToLower(name)), MakeToken(name, tokenIds[name]))
		adapter.classes[tokenIds[name]] = class{tags: koopa.Word, area: koopa.ProgramText}
	}
	for _, lit := range literals {
		r := "\\" + strings.Join(strings.Split(lit, ""), "\\")
		adapter.Lexer.Add([]byte(r), MakeToken(lit, tokenIds[lit]))
		adapter.classes[tokenIds[lit]] = class{tags: koopa.Separator, area: koopa.ProgramText}
	}
	init(adapter.Lexer)
	if err := adapter.Lexer.Compile(); err != nil {
		tracer().Errorf("Error compiling DFA: %v", err)
		return nil, err
	}
	return adapter, nil
}

// Classify sets the syntactic tags and the area for tokens of type id.
// An area of 0 means program-text.
func (lm *LMAdapter) Classify(id int, tags koopa.Tag, area koopa.Area) *LMAdapter {
	if area == 0 {
		area = koopa.ProgramText
	}
	lm.classes[id] = class{tags: tags, area: area}
	return lm
}

// Scanner creates a scanner for a given input. The scanner will implement the
// Tokenizer interface.
func (lm *LMAdapter) Scanner(source string, input string) (*LMScanner, error) {
	s, err := lm.Lexer.Scanner([]byte(input))
	if err != nil {
		return &LMScanner{}, err
	}
	return &LMScanner{
		scanner: s,
		Error:   logError,
		source:  source,
		input:   input,
		classes: lm.classes,
	}, nil
}

// LMScanner is a scanner type for lexmachine scanners, implementing the
// Tokenizer interface.
type LMScanner struct {
	scanner *lexmachine.Scanner
	Error   func(error)
	source  string
	input   string
	classes map[int]class
	done    bool
}

var _ scanner.Tokenizer = (*LMScanner)(nil)

// SetErrorHandler sets an error handler for the scanner.
func (lms *LMScanner) SetErrorHandler(h func(error)) {
	if h == nil {
		lms.Error = logError
		return
	}
	lms.Error = h
}

// Default error reporting function for lexmachine-based scanners
func logError(e error) {
	tracer().Errorf("scanner error: " + e.Error())
}

// NextToken is part of the Tokenizer interface. Input which cannot be
// matched is reported to the error handler and skipped.
func (lms *LMScanner) NextToken() *koopa.Token {
	if lms.scanner == nil || lms.done {
		return nil
	}
	tok, err, eof := lms.scanner.Next()
	for err != nil {
		lms.Error(err)
		if ui, is := err.(*machines.UnconsumedInput); is {
			lms.scanner.TC = ui.FailTC
		}
		tok, err, eof = lms.scanner.Next()
	}
	if eof {
		lms.done = true
		return nil
	}
	tracer().Debugf("tok is %T | %v", tok, tok)
	token := tok.(*lexmachine.Token)
	text := string(token.Lexeme)
	c, ok := lms.classes[token.Type]
	if !ok {
		c = class{area: koopa.ProgramText}
	}
	return koopa.NewTokenIn(c.area, text, c.tags,
		lms.position(token.StartLine, token.TC),
		lms.position(token.EndLine, token.TC+len(token.Lexeme)))
}

// position calculates a koopa position for byte offset tc of the input.
// Lexmachine counts columns in bytes, we count grapheme clusters.
func (lms *LMScanner) position(line int, tc int) koopa.Position {
	if tc > len(lms.input) {
		tc = len(lms.input)
	}
	lineStart := strings.LastIndexByte(lms.input[:tc], '\n') + 1
	return koopa.Position{
		Source: lms.source,
		Line:   line,
		Column: 1 + uniseg.GraphemeClusterCount(lms.input[lineStart:tc]),
		Offset: tc,
	}
}

// ---------------------------------------------------------------------------

// Skip is a pre-defined action which ignores the scanned match.
func Skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

// MakeToken is a pre-defined action which wraps a scanned match into a token.
func MakeToken(name string, id int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(id, string(m.Bytes), m), nil
	}
}
