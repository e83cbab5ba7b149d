package kg

import (
	"fmt"
	"sync"

	"github.com/npillmayer/koopa"
	"github.com/npillmayer/koopa/scanner/lexmach"
	"github.com/timtadh/lexmachine"
)

// The tokens representing literal lexemes
var literals = []string{";", "=", "|", "*", "+", "?", "!", "&", "(", ")", "[", "]", ",", "::"}

// The keyword tokens
var keywords = []string{"grammar", "import", "rule", "fragment"}

// All of the other tokens
var tokens = []string{"COMMENT", "ID", "STRING", "CLASS", "DIRECTIVE"}

// tokenIds will be set in initTokens()
var tokenIds map[string]int // A map from the token names to their token types

var lexer *lexmach.LMAdapter
var lexerErr error
var lexerOnce sync.Once // monitors one-time creation of the lexer

func initTokens() {
	tokenIds = make(map[string]int)
	id := 1
	for _, group := range [][]string{tokens, keywords, literals} {
		for _, t := range group {
			tokenIds[t] = id
			id++
		}
	}
}

// bootstrapLexer creates the lexmachine adapter for KG, once.
func bootstrapLexer() (*lexmach.LMAdapter, error) {
	lexerOnce.Do(func() {
		initTokens()
		init := func(lexer *lexmachine.Lexer) {
			lexer.Add([]byte(`//[^\n]*`), makeToken("COMMENT"))
			lexer.Add([]byte(`i?\"[^"\n]*\"`), makeToken("STRING"))
			lexer.Add([]byte(`i?'[^'\n]*'`), makeToken("STRING"))
			lexer.Add([]byte(`([a-z]|[A-Z]|_)([a-z]|[A-Z]|[0-9]|_|-)*`), makeToken("ID"))
			lexer.Add([]byte(`$([a-z]|[A-Z])+`), makeToken("CLASS"))
			lexer.Add([]byte(`%([a-z]|[A-Z])+`), makeToken("DIRECTIVE"))
			lexer.Add([]byte(`( |\t|\n|\r)+`), lexmach.Skip)
		}
		tracer().Infof("Creating KG lexer")
		lexer, lexerErr = lexmach.NewLMAdapter(init, literals, keywords, tokenIds)
		if lexerErr != nil {
			return
		}
		lexer.Classify(tokenIds["COMMENT"], 0, koopa.Comment).
			Classify(tokenIds["ID"], koopa.Word, 0).
			Classify(tokenIds["STRING"], koopa.String, 0).
			Classify(tokenIds["CLASS"], koopa.Word, 0).
			Classify(tokenIds["DIRECTIVE"], koopa.Word, koopa.ProgramText|koopa.CompilerDirective)
	})
	return lexer, lexerErr
}

func makeToken(s string) lexmachine.Action {
	id, ok := tokenIds[s]
	if !ok {
		panic(fmt.Errorf("unknown token: %s", s))
	}
	return lexmach.MakeToken(s, id)
}

// Tokenizer creates a tokenizer for KG source text.
func Tokenizer(source string, text string) (*lexmach.LMScanner, error) {
	lm, err := bootstrapLexer()
	if err != nil {
		return nil, fmt.Errorf("cannot create KG lexer: %w", err)
	}
	return lm.Scanner(source, text)
}

func isKeyword(s string) bool {
	for _, k := range keywords {
		if k == s {
			return true
		}
	}
	return false
}
