/*
Package lexmach provides an adapter to use the lexmachine scanner generator with
the parsers of koopa.

For more information on lexmachine, see e.g.
https://hackthology.com/how-to-tokenize-complex-strings-with-lexmachine.html

Lexmachine has to be initialized by providing keywords and regular expressions.
Please refer to the lexmachine documentation on how to instruct lexmachine.
Package lexmach is very opinionated on how to do the setup of lexmachine.

	var literals []string       // The tokens representing literal strings
	var keywords []string       // The keyword tokens
	var tokenIds map[string]int // A map from the token names to their int IDs

	init := func(lexer *lexmachine.Lexer) {
		// lexmach.Skip      is a pre-defined action which ignores the scanned match
		// lexmach.MakeToken is a pre-defined action which wraps a scanned match into a
		//                   lexmachine token
	}

Having that, clients use `NewLMAdapter` to wrap lexmachine into a scanner.Tokenizer.
NewLMAdapter will return an error if compiling the DFA failed.

	LM, err := NewLMAdapter(init, literals, keywords, tokenIds)

Literals are tagged as separators and keywords as words. Every other token ID
should be classified with `Classify`, attaching syntactic tags and an area to
tokens of this ID. Unclassified tokens are program-text without tags.

A scanner is instantiated for each concrete input sequence. It produces
koopa tokens, carrying positions with grapheme-based columns.

	scan, err := LM.Scanner("input.kg", "input string to tokenize")
	for tok := scan.NextToken(); tok != nil; tok = scan.NextToken() {
		…
	}

________________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lexmach
