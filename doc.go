/*
Package koopa is a backtracking recursive-descent parsing toolbox.

Koopa parses tokenized source text with grammars built from parser
combinators. Grammars are either constructed by hand or compiled from
grammar definitions written in a small DSL ("KG"). The KG compiler is
itself a koopa grammar, bootstrapped from a fixed hand-built combinator
graph. Package structure is as follows:

■ scanner: Tokenizers producing tagged tokens, including an adapter for lexmachine.

■ stream: Token streams with bookmarks and look-ahead limiting.

■ stack: The stack of active rule invocations, used for context-sensitive decisions.

■ combinator: Parser combinators, grammars and the parse driver.

■ tree: Syntax trees, tree building with rollback, and traversal.

■ kg: The grammar definition compiler, with code generation in kg/gen.

■ parse, batch, task: Consumer-facing parse API, batch runs and background workers.

■ config, cmd/kgc: Configuration files and the command line tool.

The base package contains data types which are used throughout all the other packages:
source positions, tokens with their area and syntactic tags, and errors.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package koopa
