package kg

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/npillmayer/koopa"
	c "github.com/npillmayer/koopa/combinator"
)

// Rule names of the bootstrap grammar. They label the nodes of KG parse trees.
const (
	RuleFile        = "file"
	RuleHeader      = "header"
	RuleImport      = "import-decl"
	RuleDefinition  = "definition"
	RuleAlternative = "alternatives"
	RuleSequence    = "sequence"
	RuleNot         = "not"
	RuleAnd         = "and"
	RulePostfix     = "postfix"
	RuleLiteral     = "literal"
	RuleClass       = "class"
	RuleReference   = "reference"
	RuleGroup       = "group"
	RuleOption      = "option"
	RuleLimit       = "limit"
	RuleWithin      = "within"
)

var bootstrap *c.Grammar
var bootstrapOnce sync.Once

// Bootstrap returns the grammar for reading KG files. It is constructed by
// hand and is never generated.
func Bootstrap() *c.Grammar {
	bootstrapOnce.Do(func() {
		bootstrap = makeBootstrap()
	})
	return bootstrap
}

func makeBootstrap() *c.Grammar {
	lit := c.Literal
	ref := c.Ref
	name := ref("name")
	return c.NewGrammarBuilder("kg").
		Provenance(c.HandWritten, "").
		Rule(RuleFile, c.Sequence(
			c.Optional(ref(RuleHeader)),
			c.Star(ref(RuleImport)),
			c.Star(ref(RuleDefinition)))).
		Rule(RuleHeader, c.Sequence(lit("grammar"), name, lit(";"))).
		Rule(RuleImport, c.Sequence(lit("import"), name, lit(";"))).
		Rule(RuleDefinition, c.Sequence(
			c.Choice(lit("rule"), lit("fragment")),
			name, lit("="),
			c.Limit(ref(RuleAlternative), lit(";")),
			lit(";"))).
		Rule(RuleAlternative, c.Sequence(
			ref(RuleSequence),
			c.Star(c.Sequence(lit("|"), ref(RuleSequence))))).
		Rule(RuleSequence, c.Plus(ref("unary"))).
		Fragment("unary", c.Choice(ref(RuleNot), ref(RuleAnd), ref(RulePostfix))).
		Rule(RuleNot, c.Sequence(lit("!"), ref("unary"))).
		Rule(RuleAnd, c.Sequence(lit("&"), ref("unary"))).
		Rule(RulePostfix, c.Sequence(
			ref("primary"),
			c.Optional(c.Choice(lit("*"), lit("+"), lit("?"))))).
		Fragment("primary", c.Choice(
			ref(RuleLiteral), ref(RuleClass), ref(RuleLimit), ref(RuleWithin),
			ref(RuleReference), ref(RuleGroup), ref(RuleOption))).
		Rule(RuleLiteral, c.Tagged(koopa.String)).
		Rule(RuleClass, c.Token("class", func(t *koopa.Token) bool {
			return strings.HasPrefix(t.Text, "$")
		})).
		Rule(RuleReference, c.Sequence(name, c.Optional(c.Sequence(lit("::"), name)))).
		Rule(RuleGroup, c.Sequence(lit("("), ref(RuleAlternative), lit(")"))).
		Rule(RuleOption, c.Sequence(lit("["), ref(RuleAlternative), lit("]"))).
		Rule(RuleLimit, c.Sequence(lit("%limit"), ref("primary"), lit("%by"), ref("primary"))).
		Rule(RuleWithin, c.Sequence(
			lit("%within"), lit("("), name,
			c.Star(c.Sequence(lit(","), name)),
			lit(")"))).
		Fragment("name", c.Token("name", isName)).
		MustGrammar()
}

// isName is true for identifiers which are not keywords.
func isName(t *koopa.Token) bool {
	if !t.HasTag(koopa.Word) || isKeyword(t.Text) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(t.Text)
	return r == '_' || unicode.IsLetter(r)
}
