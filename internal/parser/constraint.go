package parser

import (
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/alexjpwalker/typeql/internal/grammar"
	"github.com/alexjpwalker/typeql/internal/pattern"
)

// visitVariableType starts from the head of the statement, which is
// either a type variable or a label (bound to a hidden variable), and
// folds the comma-separated constraints onto it in source order.
func (c *converter) visitVariableType(n *grammar.VariableType) (pattern.TypeVariable, error) {
	if n == nil {
		return pattern.TypeVariable{}, missing("type variable", lexer.Position{})
	}
	if err := c.enter(n.Tokens, n.Pos); err != nil {
		return pattern.TypeVariable{}, err
	}
	defer c.leave()

	head, err := c.visitTypeAny(n.Type)
	if err != nil {
		return pattern.TypeVariable{}, err
	}

	var v pattern.TypeVariable
	switch ref := head.(type) {
	case pattern.UnboundVariable:
		v = ref.IntoType()
	case pattern.Label:
		v, err = c.hidden().IntoType().Type(ref)
		if err != nil {
			return pattern.TypeVariable{}, illegalGrammar(grammar.Text(n.Tokens), n.Pos, err)
		}
	}

	for _, tc := range n.Constraints {
		v, err = c.foldTypeConstraint(v, tc)
		if err != nil {
			return pattern.TypeVariable{}, err
		}
	}
	return v, nil
}

func (c *converter) foldTypeConstraint(v pattern.TypeVariable, n *grammar.TypeConstraint) (pattern.TypeVariable, error) {
	if n == nil {
		return v, missing("type constraint", lexer.Position{})
	}
	text := grammar.Text(n.Tokens)

	switch {
	case n.Abstract:
		return v, unsupported("abstract constraint", text, n.Pos)

	case n.Owns != nil:
		if n.Owns.Overridden != nil {
			return v, unsupported("owns override", text, n.Pos)
		}
		t, err := c.visitType(n.Owns.Type)
		if err != nil {
			return v, err
		}
		return v.ConstrainOwns(pattern.OwnsConstraint{Type: t, IsKey: n.Owns.IsKey}), nil

	case n.Plays != nil:
		if n.Plays.Overridden != nil {
			return v, unsupported("plays override", text, n.Pos)
		}
		role, err := c.visitTypeScoped(n.Plays.Role)
		if err != nil {
			return v, err
		}
		return v.ConstrainPlays(pattern.PlaysConstraint{Role: role}), nil

	case n.Regex != nil:
		regex, err := decodeRegex(*n.Regex)
		if err != nil {
			return v, withPos(err, n.Pos)
		}
		out, err := v.ConstrainRegex(pattern.RegexConstraint{Regex: regex})
		if err != nil {
			return v, illegalGrammar(text, n.Pos, err)
		}
		return out, nil

	case n.Relates != nil:
		if n.Relates.Overridden != nil {
			return v, unsupported("relates override", text, n.Pos)
		}
		role, err := c.visitType(n.Relates.Role)
		if err != nil {
			return v, err
		}
		return v.ConstrainRelates(pattern.RelatesConstraint{Role: role}), nil

	case n.Sub != nil:
		t, err := c.visitTypeAny(n.Sub.Type)
		if err != nil {
			return v, err
		}
		out, err := v.ConstrainSub(pattern.SubConstraint{Type: t, IsExplicit: n.Sub.Keyword == "sub!"})
		if err != nil {
			return v, illegalGrammar(text, n.Pos, err)
		}
		return out, nil

	case n.Type != nil:
		label, err := c.visitLabelAny(n.Type)
		if err != nil {
			return v, err
		}
		out, err := v.Type(label)
		if err != nil {
			return v, illegalGrammar(text, n.Pos, err)
		}
		return out, nil

	default:
		return v, illegalGrammar(text, n.Pos, nil)
	}
}
