package pattern

import (
	"fmt"
	"regexp"
	"strings"
)

var iidPattern = regexp.MustCompile(`^0x[0-9a-f]+$`)

// Constraint is a semantic restriction attached to a variable.
type Constraint interface {
	constraint()
	String() string
}

// LabelConstraint pins a type variable to a type label (type person).
type LabelConstraint struct {
	Label Label
}

func (LabelConstraint) constraint() {}

func (c LabelConstraint) String() string { return "type " + c.Label.String() }

// SubConstraint: the variable is a subtype of Type. IsExplicit marks sub!,
// which excludes transitive supertypes.
type SubConstraint struct {
	Type       TypeRef
	IsExplicit bool
}

func (SubConstraint) constraint() {}

func (c SubConstraint) String() string {
	if c.IsExplicit {
		return "sub! " + c.Type.String()
	}
	return "sub " + c.Type.String()
}

// OwnsConstraint: the type owns attribute type Type, as a key when IsKey.
type OwnsConstraint struct {
	Type  TypeRef
	IsKey bool
}

func (OwnsConstraint) constraint() {}

func (c OwnsConstraint) String() string {
	if c.IsKey {
		return "owns " + c.Type.String() + " @key"
	}
	return "owns " + c.Type.String()
}

// PlaysConstraint: the type plays Role, which is always scoped.
type PlaysConstraint struct {
	Role TypeRef
}

func (PlaysConstraint) constraint() {}

func (c PlaysConstraint) String() string { return "plays " + c.Role.String() }

// RelatesConstraint: the relation type relates Role.
type RelatesConstraint struct {
	Role TypeRef
}

func (RelatesConstraint) constraint() {}

func (c RelatesConstraint) String() string { return "relates " + c.Role.String() }

// RegexConstraint restricts the values of an attribute type.
type RegexConstraint struct {
	Regex string
}

func (RegexConstraint) constraint() {}

func (c RegexConstraint) String() string {
	return "regex " + quote(strings.ReplaceAll(c.Regex, "/", `\/`))
}

// IsaConstraint: the thing is an instance of Type. IsExplicit marks isa!.
type IsaConstraint struct {
	Type       TypeRef
	IsExplicit bool
}

func (IsaConstraint) constraint() {}

func (c IsaConstraint) String() string {
	if c.IsExplicit {
		return "isa! " + c.Type.String()
	}
	return "isa " + c.Type.String()
}

// IIDConstraint pins a thing to its internal id.
type IIDConstraint struct {
	IID string
}

// NewIIDConstraint validates iid as 0x followed by lowercase hex.
func NewIIDConstraint(iid string) (IIDConstraint, error) {
	if !iidPattern.MatchString(iid) {
		return IIDConstraint{}, fmt.Errorf("%w: %q", ErrInvalidIID, iid)
	}
	return IIDConstraint{IID: iid}, nil
}

func (IIDConstraint) constraint() {}

func (c IIDConstraint) String() string { return "iid " + c.IID }

// ValueConstraint compares an attribute's value with Value.
type ValueConstraint struct {
	Predicate Predicate
	Value     Value
}

func (ValueConstraint) constraint() {}

// String omits the operator for equality against a literal, which is how
// the constraint is written in a query.
func (c ValueConstraint) String() string {
	if _, isVar := c.Value.(VariableValue); c.Predicate == Eq && !isVar {
		return c.Value.String()
	}
	return string(c.Predicate) + " " + c.Value.String()
}

// HasConstraint: the thing owns an attribute of type Type. The attribute
// is either a visible variable or a hidden one carrying a value
// constraint.
type HasConstraint struct {
	Type      Label
	Attribute ThingVariable
}

func (HasConstraint) constraint() {}

func (c HasConstraint) String() string {
	attr := c.Attribute.ref.String()
	if !c.Attribute.ref.IsVisible() && c.Attribute.value != nil {
		attr = c.Attribute.value.String()
	}
	return "has " + c.Type.String() + " " + attr
}

// RolePlayerConstraint is one entry of a relation. A nil Role means the
// role is left for inference.
type RolePlayerConstraint struct {
	Role   TypeRef
	Player UnboundVariable
}

func (c RolePlayerConstraint) String() string {
	if c.Role == nil {
		return c.Player.String()
	}
	return c.Role.String() + ": " + c.Player.String()
}

// RelationConstraint lists the role players of a relation in source
// order.
type RelationConstraint struct {
	rolePlayers []RolePlayerConstraint
}

// NewRelationConstraint requires at least one role player.
func NewRelationConstraint(rolePlayers []RolePlayerConstraint) (RelationConstraint, error) {
	if len(rolePlayers) == 0 {
		return RelationConstraint{}, ErrEmptyRelation
	}
	return RelationConstraint{rolePlayers: append([]RolePlayerConstraint(nil), rolePlayers...)}, nil
}

func (RelationConstraint) constraint() {}

// RolePlayers returns a copy of the role players.
func (c RelationConstraint) RolePlayers() []RolePlayerConstraint {
	return append([]RolePlayerConstraint(nil), c.rolePlayers...)
}

func (c RelationConstraint) String() string {
	parts := make([]string, len(c.rolePlayers))
	for i, rp := range c.rolePlayers {
		parts[i] = rp.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
