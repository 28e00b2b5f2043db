package parser

import (
	"time"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/alexjpwalker/typeql/internal/grammar"
	"github.com/alexjpwalker/typeql/internal/pattern"
)

// visitPredicate builds the value constraint of an attribute. A bare
// literal is implicit equality. An explicit operator is only accepted
// with a variable on the right-hand side.
func (c *converter) visitPredicate(n *grammar.Predicate) (pattern.ValueConstraint, error) {
	if n == nil {
		return pattern.ValueConstraint{}, missing("predicate", lexer.Position{})
	}
	if err := c.enter(n.Tokens, n.Pos); err != nil {
		return pattern.ValueConstraint{}, err
	}
	defer c.leave()

	text := grammar.Text(n.Tokens)

	switch {
	case n.Value != nil:
		v, err := visitValue(n.Value)
		if err != nil {
			return pattern.ValueConstraint{}, err
		}
		return pattern.ValueConstraint{Predicate: pattern.Eq, Value: v}, nil

	case n.Operator != nil:
		op, err := pattern.ParsePredicate(*n.Operator)
		if err != nil {
			return pattern.ValueConstraint{}, illegalGrammar(text, n.Pos, err)
		}
		if n.Comparand == nil {
			return pattern.ValueConstraint{}, missing("comparand", n.Pos)
		}
		switch {
		case n.Comparand.Var != nil:
			u, err := decodeVariable(*n.Comparand.Var)
			if err != nil {
				return pattern.ValueConstraint{}, withPos(err, n.Comparand.Pos)
			}
			return pattern.ValueConstraint{Predicate: op, Value: pattern.VariableValue{Variable: u}}, nil
		case n.Comparand.Value != nil:
			return pattern.ValueConstraint{}, unsupported("comparison against a literal value", text, n.Pos)
		default:
			return pattern.ValueConstraint{}, illegalGrammar(text, n.Pos, nil)
		}

	case n.Substring != nil:
		return pattern.ValueConstraint{}, unsupported("substring predicate", text, n.Pos)

	default:
		return pattern.ValueConstraint{}, illegalGrammar(text, n.Pos, nil)
	}
}

// visitValue decodes a literal. Dates become date-times at midnight UTC.
func visitValue(n *grammar.Value) (pattern.Value, error) {
	if n == nil {
		return nil, missing("value", lexer.Position{})
	}

	switch {
	case n.String != nil:
		s, err := decodeString(*n.String)
		if err != nil {
			return nil, withPos(err, n.Pos)
		}
		return pattern.StringValue(s), nil

	case n.Long != nil:
		i, err := decodeLong(*n.Long)
		if err != nil {
			return nil, withPos(err, n.Pos)
		}
		return pattern.LongValue(i), nil

	case n.Double != nil:
		f, err := decodeDouble(*n.Double)
		if err != nil {
			return nil, withPos(err, n.Pos)
		}
		return pattern.DoubleValue(f), nil

	case n.Boolean != nil:
		b, err := decodeBoolean(*n.Boolean)
		if err != nil {
			return nil, withPos(err, n.Pos)
		}
		return pattern.BooleanValue(b), nil

	case n.Date != nil:
		t, err := decodeDate(*n.Date)
		if err != nil {
			return nil, withPos(err, n.Pos)
		}
		return dateTimeValue(t, *n.Date, n.Pos)

	case n.DateTime != nil:
		t, err := decodeDateTime(*n.DateTime)
		if err != nil {
			return nil, withPos(err, n.Pos)
		}
		return dateTimeValue(t, *n.DateTime, n.Pos)

	default:
		return nil, illegalGrammar(grammar.Text(n.Tokens), n.Pos, nil)
	}
}

func dateTimeValue(t time.Time, text string, pos lexer.Position) (pattern.Value, error) {
	v, err := pattern.NewDateTimeValue(t)
	if err != nil {
		return nil, illegalGrammar(text, pos, err)
	}
	return v, nil
}
