package parser

import (
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/alexjpwalker/typeql/internal/grammar"
	"github.com/alexjpwalker/typeql/internal/pattern"
)

func (c *converter) visitPatterns(n *grammar.Patterns) ([]pattern.Pattern, error) {
	if n == nil {
		return nil, missing("patterns", lexer.Position{})
	}
	if err := c.enter(n.Tokens, n.Pos); err != nil {
		return nil, err
	}
	defer c.leave()

	out := make([]pattern.Pattern, 0, len(n.Patterns))
	for _, p := range n.Patterns {
		converted, err := c.visitPattern(p)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

// visitPattern converts one pattern. Blocks and negations are recognised
// but not converted.
func (c *converter) visitPattern(n *grammar.Pattern) (pattern.Pattern, error) {
	if n == nil {
		return nil, missing("pattern", lexer.Position{})
	}
	if err := c.enter(n.Tokens, n.Pos); err != nil {
		return nil, err
	}
	defer c.leave()

	text := grammar.Text(n.Tokens)

	switch {
	case n.Variable != nil:
		v, err := c.visitPatternVariable(n.Variable)
		if err != nil {
			return nil, err
		}
		return v, nil
	case n.Block != nil && len(n.Block.Or) > 0:
		return nil, unsupported("disjunction", text, n.Pos)
	case n.Block != nil:
		return nil, unsupported("conjunction", text, n.Pos)
	case n.Negation != nil:
		return nil, unsupported("negation", text, n.Pos)
	default:
		return nil, illegalGrammar(text, n.Pos, nil)
	}
}

func (c *converter) visitPatternVariable(n *grammar.PatternVariable) (pattern.Variable, error) {
	if n == nil {
		return nil, missing("variable", lexer.Position{})
	}
	if err := c.enter(n.Tokens, n.Pos); err != nil {
		return nil, err
	}
	defer c.leave()

	switch {
	case n.Thing != nil:
		v, err := c.visitVariableThingAny(n.Thing)
		if err != nil {
			return nil, err
		}
		return v, nil
	case n.Type != nil:
		v, err := c.visitVariableType(n.Type)
		if err != nil {
			return nil, err
		}
		return v, nil
	case n.Concept != nil:
		return nil, unsupported("concept equality", grammar.Text(n.Tokens), n.Pos)
	default:
		return nil, illegalGrammar(grammar.Text(n.Tokens), n.Pos, nil)
	}
}
