/*
Package kg implements KG, the language for grammar definitions, and its
compiler.

KG files define named rules in terms of parser combinators:

	grammar arith;
	import base;

	rule expr       = term (("+" | "-") term)* ;
	rule term       = factor (("*" | "/") factor)* ;
	fragment factor = $number | base::name | "(" expr ")" ;

The surface syntax is:

	file         = [ header ] { import } { definition } .
	header       = "grammar" name ";" .
	import       = "import" name ";" .
	definition   = ( "rule" | "fragment" ) name "=" alternatives ";" .
	alternatives = sequence { "|" sequence } .
	sequence     = unary { unary } .
	unary        = ( "!" | "&" ) unary | postfix .
	postfix      = primary [ "*" | "+" | "?" ] .
	primary      = literal | class | reference | "(" alternatives ")"
	             | "[" alternatives "]" | limit | within .
	literal      = string | "i" string .
	class        = "$word" | "$number" | "$string" | "$separator" | "$any" .
	reference    = name [ "::" name ] .
	limit        = "%limit" primary "%by" primary .
	within       = "%within" "(" name { "," name } ")" .

Strings are enclosed in double or single quotes; a leading 'i' makes a literal
case-insensitive. Comments start with "//" and extend to the end of the line.
'[ x ]' is equivalent to 'x?'. '!x' and '&x' are negative and positive
look-aheads. '%limit x %by y' matches x with the input cut off in front of
every position where y matches, and '%within(a, b)' matches without
consuming input if rule a is active within rule b (see package stack).

KG files are read by a bootstrap grammar, which is constructed by hand
(see Bootstrap). It is the one grammar which cannot be generated by the
compiler itself. A KG version of the bootstrap grammar may be found in
testdata/kg.kg.

The compiler either interprets a definition into an executable grammar
(Build), or generates Go source code constructing the grammar (package gen).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package kg

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'koopa.kg'.
func tracer() tracing.Trace {
	return tracing.Select("koopa.kg")
}
