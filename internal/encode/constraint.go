package encode

import (
	"fmt"

	"github.com/alexjpwalker/typeql/internal/ir"
	"github.com/alexjpwalker/typeql/internal/pattern"
)

// Constraint encodes one constraint as an object tagged by "constraint".
func Constraint(c pattern.Constraint) (ir.Object, error) {
	switch val := c.(type) {
	case pattern.LabelConstraint:
		return tagged("type", ir.P("label", Label(val.Label))), nil

	case pattern.SubConstraint:
		t, err := TypeRef(val.Type)
		if err != nil {
			return nil, fmt.Errorf("sub: %w", err)
		}
		return tagged("sub", ir.P("type", t), ir.P("explicit", ir.Bool(val.IsExplicit))), nil

	case pattern.OwnsConstraint:
		t, err := TypeRef(val.Type)
		if err != nil {
			return nil, fmt.Errorf("owns: %w", err)
		}
		return tagged("owns", ir.P("type", t), ir.P("key", ir.Bool(val.IsKey))), nil

	case pattern.PlaysConstraint:
		role, err := TypeRef(val.Role)
		if err != nil {
			return nil, fmt.Errorf("plays: %w", err)
		}
		return tagged("plays", ir.P("role", role)), nil

	case pattern.RelatesConstraint:
		role, err := TypeRef(val.Role)
		if err != nil {
			return nil, fmt.Errorf("relates: %w", err)
		}
		return tagged("relates", ir.P("role", role)), nil

	case pattern.RegexConstraint:
		return tagged("regex", ir.P("regex", ir.String(val.Regex))), nil

	case pattern.IsaConstraint:
		t, err := TypeRef(val.Type)
		if err != nil {
			return nil, fmt.Errorf("isa: %w", err)
		}
		return tagged("isa", ir.P("type", t), ir.P("explicit", ir.Bool(val.IsExplicit))), nil

	case pattern.IIDConstraint:
		return tagged("iid", ir.P("iid", ir.String(val.IID))), nil

	case pattern.ValueConstraint:
		v, err := Value(val.Value)
		if err != nil {
			return nil, fmt.Errorf("value: %w", err)
		}
		return tagged("value", ir.P("predicate", ir.String(string(val.Predicate))), ir.P("value", v)), nil

	case pattern.HasConstraint:
		attr, err := Variable(val.Attribute)
		if err != nil {
			return nil, fmt.Errorf("has: %w", err)
		}
		return tagged("has", ir.P("type", Label(val.Type)), ir.P("attribute", attr)), nil

	case pattern.RelationConstraint:
		players := val.RolePlayers()
		arr := make(ir.Array, len(players))
		for i, rp := range players {
			entry := ir.Obj(ir.P("player", Reference(rp.Player.Reference())))
			if rp.Role != nil {
				role, err := TypeRef(rp.Role)
				if err != nil {
					return nil, fmt.Errorf("relation: role_players[%d]: %w", i, err)
				}
				entry["role"] = role
			}
			arr[i] = entry
		}
		return tagged("relation", ir.P("role_players", arr)), nil

	case nil:
		return nil, fmt.Errorf("cannot encode nil constraint")
	default:
		return nil, fmt.Errorf("unsupported constraint type: %T", c)
	}
}

func tagged(name string, pairs ...ir.Pair) ir.Object {
	obj := ir.Obj(pairs...)
	obj["constraint"] = ir.String(name)
	return obj
}
