package kg

import (
	"fmt"
	"strings"

	"github.com/npillmayer/koopa"
	"github.com/npillmayer/koopa/combinator"
	"github.com/npillmayer/koopa/tree"
)

// astBuilder is a tree listener which converts KG parse trees into
// definitions. Every inner node opens a frame collecting the expressions and
// tokens of its children; on exit the frame is reduced to an expression and
// handed to the enclosing frame.
type astBuilder struct {
	def    *Definition
	frames []*frame
	errs   []error
}

type frame struct {
	name   string
	exprs  []Expr
	tokens []*koopa.Token
}

var _ tree.Listener = (*astBuilder)(nil)

func (ab *astBuilder) top() *frame {
	return ab.frames[len(ab.frames)-1]
}

// EnterNode is part of interface tree.Listener.
func (ab *astBuilder) EnterNode(t *tree.Tree, id tree.NodeID, ctxt tree.NodeCtxt) bool {
	ab.frames = append(ab.frames, &frame{name: t.Name(id)})
	return true
}

// Terminal is part of interface tree.Listener.
func (ab *astBuilder) Terminal(t *tree.Tree, id tree.NodeID, ctxt tree.NodeCtxt) {
	tok := t.Token(id)
	if len(ab.frames) == 0 || !combinator.Significant(tok) {
		return
	}
	f := ab.top()
	f.tokens = append(f.tokens, tok)
}

// ExitNode is part of interface tree.Listener.
func (ab *astBuilder) ExitNode(t *tree.Tree, id tree.NodeID, ctxt tree.NodeCtxt) {
	f := ab.top()
	ab.frames = ab.frames[:len(ab.frames)-1]
	e := ab.reduce(f)
	if e != nil && len(ab.frames) > 0 {
		up := ab.top()
		up.exprs = append(up.exprs, e)
	}
}

func (ab *astBuilder) reduce(f *frame) Expr {
	switch f.name {
	case RuleHeader:
		ab.def.Grammar = f.tokens[1].Text
		ab.def.Pos = f.tokens[1].Start
	case RuleImport:
		ab.def.Imports = append(ab.def.Imports, f.tokens[1].Text)
	case RuleDefinition:
		ab.def.Rules = append(ab.def.Rules, &RuleDef{
			Name:     f.tokens[1].Text,
			Fragment: f.tokens[0].Text == "fragment",
			Body:     f.exprs[0],
			Pos:      f.tokens[1].Start,
		})
	case RuleAlternative:
		if len(f.exprs) == 1 {
			return f.exprs[0]
		}
		return &Choice{Alternatives: f.exprs}
	case RuleSequence:
		if len(f.exprs) == 1 {
			return f.exprs[0]
		}
		return &Sequence{Items: f.exprs}
	case RuleNot:
		return &Not{Expr: f.exprs[0]}
	case RuleAnd:
		return &And{Expr: f.exprs[0]}
	case RulePostfix:
		if len(f.tokens) == 0 {
			return f.exprs[0]
		}
		kind := map[string]RepeatKind{"*": ZeroOrMore, "+": OneOrMore, "?": ZeroOrOne}[f.tokens[0].Text]
		return &Repeat{Kind: kind, Expr: f.exprs[0]}
	case RuleLiteral:
		l, err := unquote(f.tokens[0])
		if err != nil {
			ab.errs = append(ab.errs, err)
		}
		return l
	case RuleClass:
		return &Class{Name: strings.TrimPrefix(f.tokens[0].Text, "$"), Pos: f.tokens[0].Start}
	case RuleReference:
		r := &Reference{Name: f.tokens[0].Text, Pos: f.tokens[0].Start}
		if len(f.tokens) == 3 { // name :: name
			r.Grammar, r.Name = f.tokens[0].Text, f.tokens[2].Text
		}
		return r
	case RuleGroup:
		return f.exprs[0]
	case RuleOption:
		return &Repeat{Kind: ZeroOrOne, Expr: f.exprs[0]}
	case RuleLimit:
		return &Limit{Expr: f.exprs[0], By: f.exprs[1]}
	case RuleWithin:
		w := &Within{Pos: f.tokens[0].Start}
		for _, tok := range f.tokens[1:] {
			if isName(tok) {
				w.Names = append(w.Names, tok.Text)
			}
		}
		return w
	}
	return nil
}

// unquote creates a literal from a string token, which may be prefixed by
// 'i' for case-insensitive matching.
func unquote(tok *koopa.Token) (*Literal, error) {
	text := tok.Text
	l := &Literal{}
	if strings.HasPrefix(text, "i") {
		l.Fold = true
		text = text[1:]
	}
	if len(text) < 2 || text[0] != text[len(text)-1] {
		return l, fmt.Errorf("%s: malformed string %s", tok.Start, tok.Text)
	}
	l.Text = text[1 : len(text)-1]
	if l.Text == "" {
		return l, fmt.Errorf("%s: empty literal", tok.Start)
	}
	return l, nil
}
