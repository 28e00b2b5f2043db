package parser

import (
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/alexjpwalker/typeql/internal/grammar"
	"github.com/alexjpwalker/typeql/internal/pattern"
)

// Thing statements come in three surface forms that all produce a
// pattern.ThingVariable:
//
//	$x isa person, has name "Alice";     plain
//	$r (wife: $x, $y) isa marriage;      relation
//	$a "Alice" isa name;                 attribute
//
// Relations and attributes without a variable of their own get a hidden
// one.

func (c *converter) visitVariableThingAny(n *grammar.VariableThingAny) (pattern.ThingVariable, error) {
	if n == nil {
		return pattern.ThingVariable{}, missing("thing variable", lexer.Position{})
	}
	if err := c.enter(n.Tokens, n.Pos); err != nil {
		return pattern.ThingVariable{}, err
	}
	defer c.leave()

	switch {
	case n.Thing != nil:
		return c.visitVariableThing(n.Thing)
	case n.Relation != nil:
		return c.visitVariableRelation(n.Relation)
	case n.Attribute != nil:
		return c.visitVariableAttribute(n.Attribute)
	default:
		return pattern.ThingVariable{}, illegalGrammar(grammar.Text(n.Tokens), n.Pos, nil)
	}
}

func (c *converter) visitVariableThing(n *grammar.VariableThing) (pattern.ThingVariable, error) {
	text := grammar.Text(n.Tokens)

	u, err := decodeVariable(n.Var)
	if err != nil {
		return pattern.ThingVariable{}, withPos(err, n.Pos)
	}
	v := u.IntoThing()

	if n.IID != nil {
		iid, err := pattern.NewIIDConstraint(*n.IID)
		if err != nil {
			return pattern.ThingVariable{}, illegalGrammar(text, n.Pos, err)
		}
		if v, err = v.ConstrainIID(iid); err != nil {
			return pattern.ThingVariable{}, illegalGrammar(text, n.Pos, err)
		}
	}

	if n.Isa != nil {
		if v, err = c.constrainIsa(v, n.Isa); err != nil {
			return pattern.ThingVariable{}, err
		}
	}

	if n.Attributes != nil {
		for _, attr := range n.Attributes.Attributes {
			has, err := c.visitAttribute(attr)
			if err != nil {
				return pattern.ThingVariable{}, err
			}
			v = v.ConstrainHas(has)
		}
	}
	return v, nil
}

func (c *converter) visitVariableRelation(n *grammar.VariableRelation) (pattern.ThingVariable, error) {
	text := grammar.Text(n.Tokens)

	u, err := c.ownerVariable(n.Var, n.Pos)
	if err != nil {
		return pattern.ThingVariable{}, err
	}
	rel, err := c.visitRelation(n.Relation)
	if err != nil {
		return pattern.ThingVariable{}, err
	}
	v, err := u.IntoThing().ConstrainRelation(rel)
	if err != nil {
		return pattern.ThingVariable{}, illegalGrammar(text, n.Pos, err)
	}

	if n.Isa != nil {
		if v, err = c.constrainIsa(v, n.Isa); err != nil {
			return pattern.ThingVariable{}, err
		}
	}
	if n.Attributes != nil {
		return pattern.ThingVariable{}, unsupported("attribute ownership on a relation variable", text, n.Attributes.Pos)
	}
	return v, nil
}

func (c *converter) visitVariableAttribute(n *grammar.VariableAttribute) (pattern.ThingVariable, error) {
	text := grammar.Text(n.Tokens)

	u, err := c.ownerVariable(n.Var, n.Pos)
	if err != nil {
		return pattern.ThingVariable{}, err
	}
	value, err := c.visitPredicate(n.Predicate)
	if err != nil {
		return pattern.ThingVariable{}, err
	}
	v, err := u.IntoThing().ConstrainValue(value)
	if err != nil {
		return pattern.ThingVariable{}, illegalGrammar(text, n.Pos, err)
	}

	if n.Isa != nil {
		if v, err = c.constrainIsa(v, n.Isa); err != nil {
			return pattern.ThingVariable{}, err
		}
	}
	if n.Attributes != nil {
		return pattern.ThingVariable{}, unsupported("attribute ownership on an attribute variable", text, n.Attributes.Pos)
	}
	return v, nil
}

// ownerVariable returns the written variable, or a fresh hidden one when
// the statement has none.
func (c *converter) ownerVariable(text *string, pos lexer.Position) (pattern.UnboundVariable, error) {
	if text == nil {
		return c.hidden(), nil
	}
	v, err := decodeVariable(*text)
	if err != nil {
		return pattern.UnboundVariable{}, withPos(err, pos)
	}
	return v, nil
}

func (c *converter) constrainIsa(v pattern.ThingVariable, n *grammar.Isa) (pattern.ThingVariable, error) {
	t, err := c.visitType(n.Type)
	if err != nil {
		return v, err
	}
	out, err := v.ConstrainIsa(pattern.IsaConstraint{Type: t, IsExplicit: n.Keyword == "isa!"})
	if err != nil {
		return v, illegalGrammar(grammar.Text(n.Tokens), n.Pos, err)
	}
	return out, nil
}

// visitAttribute converts one has clause. The attribute is either the
// written variable or a hidden variable carrying the predicate.
func (c *converter) visitAttribute(n *grammar.Attribute) (pattern.HasConstraint, error) {
	if n == nil {
		return pattern.HasConstraint{}, missing("attribute", lexer.Position{})
	}
	text := grammar.Text(n.Tokens)

	switch {
	case n.Label != nil && n.Var != nil:
		u, err := decodeVariable(*n.Var)
		if err != nil {
			return pattern.HasConstraint{}, withPos(err, n.Pos)
		}
		return pattern.HasConstraint{Type: pattern.NewLabel(*n.Label), Attribute: u.IntoThing()}, nil

	case n.Label != nil && n.Predicate != nil:
		value, err := c.visitPredicate(n.Predicate)
		if err != nil {
			return pattern.HasConstraint{}, err
		}
		attr, err := c.hidden().IntoThing().ConstrainValue(value)
		if err != nil {
			return pattern.HasConstraint{}, illegalGrammar(text, n.Pos, err)
		}
		return pattern.HasConstraint{Type: pattern.NewLabel(*n.Label), Attribute: attr}, nil

	case n.Unlabeled != nil:
		return pattern.HasConstraint{}, unsupported("attribute ownership without a label", text, n.Pos)

	default:
		return pattern.HasConstraint{}, illegalGrammar(text, n.Pos, nil)
	}
}

// visitRelation converts the role players in source order. A player
// without a role type is left untyped.
func (c *converter) visitRelation(n *grammar.Relation) (pattern.RelationConstraint, error) {
	if n == nil {
		return pattern.RelationConstraint{}, missing("relation", lexer.Position{})
	}
	if err := c.enter(n.Tokens, n.Pos); err != nil {
		return pattern.RelationConstraint{}, err
	}
	defer c.leave()

	players := make([]pattern.RolePlayerConstraint, 0, len(n.RolePlayers))
	for _, rp := range n.RolePlayers {
		if rp == nil {
			return pattern.RelationConstraint{}, missing("role player", n.Pos)
		}
		player, err := decodeVariable(rp.Player)
		if err != nil {
			return pattern.RelationConstraint{}, withPos(err, rp.Pos)
		}
		entry := pattern.RolePlayerConstraint{Player: player}
		if rp.Role != nil {
			if entry.Role, err = c.visitType(rp.Role); err != nil {
				return pattern.RelationConstraint{}, err
			}
		}
		players = append(players, entry)
	}

	rel, err := pattern.NewRelationConstraint(players)
	if err != nil {
		return pattern.RelationConstraint{}, illegalGrammar(grammar.Text(n.Tokens), n.Pos, err)
	}
	return rel, nil
}
