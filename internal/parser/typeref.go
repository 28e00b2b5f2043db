package parser

import (
	"errors"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/alexjpwalker/typeql/internal/grammar"
	"github.com/alexjpwalker/typeql/internal/pattern"
)

var errScopedLabel = errors.New("scoped label must be scope:name")

// A type slot in the grammar holds a label, a scoped label or a variable.
// Three node shapes exist (Type, TypeScoped, TypeAny); each resolver
// below accepts the alternatives its shape allows and returns a
// pattern.TypeRef that is either a pattern.Label or a
// pattern.UnboundVariable.

func (c *converter) visitType(n *grammar.Type) (pattern.TypeRef, error) {
	if n == nil {
		return nil, missing("type", lexer.Position{})
	}
	switch {
	case n.Label != nil:
		return pattern.NewLabel(*n.Label), nil
	case n.Var != nil:
		return typeVariable(*n.Var, n.Pos)
	default:
		return nil, illegalGrammar(grammar.Text(n.Tokens), n.Pos, nil)
	}
}

func (c *converter) visitTypeScoped(n *grammar.TypeScoped) (pattern.TypeRef, error) {
	if n == nil {
		return nil, missing("scoped type", lexer.Position{})
	}
	switch {
	case n.Label != nil:
		l, err := splitScopedLabel(*n.Label)
		if err != nil {
			return nil, withPos(err, n.Pos)
		}
		return l, nil
	case n.Var != nil:
		return typeVariable(*n.Var, n.Pos)
	default:
		return nil, illegalGrammar(grammar.Text(n.Tokens), n.Pos, nil)
	}
}

func (c *converter) visitTypeAny(n *grammar.TypeAny) (pattern.TypeRef, error) {
	if n == nil {
		return nil, missing("type", lexer.Position{})
	}
	switch {
	case n.Var != nil:
		return typeVariable(*n.Var, n.Pos)
	case n.Scoped != nil:
		l, err := splitScopedLabel(*n.Scoped)
		if err != nil {
			return nil, withPos(err, n.Pos)
		}
		return l, nil
	case n.Label != nil:
		return pattern.NewLabel(*n.Label), nil
	default:
		return nil, illegalGrammar(grammar.Text(n.Tokens), n.Pos, nil)
	}
}

// visitLabelAny resolves a slot that must be a label, scoped or not.
func (c *converter) visitLabelAny(n *grammar.LabelAny) (pattern.Label, error) {
	if n == nil {
		return pattern.Label{}, missing("label", lexer.Position{})
	}
	switch {
	case n.Scoped != nil:
		l, err := splitScopedLabel(*n.Scoped)
		if err != nil {
			return pattern.Label{}, withPos(err, n.Pos)
		}
		return l, nil
	case n.Label != nil:
		return pattern.NewLabel(*n.Label), nil
	default:
		return pattern.Label{}, illegalGrammar(grammar.Text(n.Tokens), n.Pos, nil)
	}
}

// splitScopedLabel requires exactly one colon with a non-empty scope and
// name on either side.
func splitScopedLabel(text string) (pattern.Label, error) {
	parts := strings.Split(text, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return pattern.Label{}, illegalGrammar(text, lexer.Position{}, errScopedLabel)
	}
	return pattern.NewScopedLabel(parts[0], parts[1]), nil
}

func typeVariable(text string, pos lexer.Position) (pattern.TypeRef, error) {
	v, err := decodeVariable(text)
	if err != nil {
		return nil, withPos(err, pos)
	}
	return v, nil
}
