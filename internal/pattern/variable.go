package pattern

import (
	"fmt"
	"slices"
	"strings"
)

// Variable is a constrained variable: a TypeVariable or a ThingVariable.
// Every Variable is also a single-variable Pattern.
type Variable interface {
	Pattern
	Reference() Reference
	Constraints() []Constraint
	variable()
}

// TypeVariable is a variable ranging over types. It holds at most one
// label, sub and regex constraint and any number of owns, plays and
// relates constraints, kept in the order they were added.
type TypeVariable struct {
	ref     Reference
	label   *LabelConstraint
	sub     *SubConstraint
	regex   *RegexConstraint
	owns    []OwnsConstraint
	plays   []PlaysConstraint
	relates []RelatesConstraint
}

func (TypeVariable) pattern()  {}
func (TypeVariable) variable() {}

func (v TypeVariable) Reference() Reference { return v.ref }

func (v TypeVariable) Label() (Label, bool) {
	if v.label == nil {
		return Label{}, false
	}
	return v.label.Label, true
}

func (v TypeVariable) Sub() (SubConstraint, bool) {
	if v.sub == nil {
		return SubConstraint{}, false
	}
	return *v.sub, true
}

func (v TypeVariable) Regex() (RegexConstraint, bool) {
	if v.regex == nil {
		return RegexConstraint{}, false
	}
	return *v.regex, true
}

func (v TypeVariable) Owns() []OwnsConstraint       { return slices.Clone(v.owns) }
func (v TypeVariable) Plays() []PlaysConstraint     { return slices.Clone(v.plays) }
func (v TypeVariable) Relates() []RelatesConstraint { return slices.Clone(v.relates) }

// Type sets the variable's own label.
func (v TypeVariable) Type(label Label) (TypeVariable, error) {
	if v.label != nil {
		return v, duplicate("type", v.ref)
	}
	v.label = &LabelConstraint{Label: label}
	return v, nil
}

func (v TypeVariable) ConstrainSub(c SubConstraint) (TypeVariable, error) {
	if v.sub != nil {
		return v, duplicate("sub", v.ref)
	}
	v.sub = &c
	return v, nil
}

func (v TypeVariable) ConstrainRegex(c RegexConstraint) (TypeVariable, error) {
	if v.regex != nil {
		return v, duplicate("regex", v.ref)
	}
	v.regex = &c
	return v, nil
}

func (v TypeVariable) ConstrainOwns(c OwnsConstraint) TypeVariable {
	v.owns = append(slices.Clip(v.owns), c)
	return v
}

func (v TypeVariable) ConstrainPlays(c PlaysConstraint) TypeVariable {
	v.plays = append(slices.Clip(v.plays), c)
	return v
}

func (v TypeVariable) ConstrainRelates(c RelatesConstraint) TypeVariable {
	v.relates = append(slices.Clip(v.relates), c)
	return v
}

// Constraints lists label, sub, owns, plays, relates and regex, in that
// order.
func (v TypeVariable) Constraints() []Constraint {
	var out []Constraint
	if v.label != nil {
		out = append(out, *v.label)
	}
	if v.sub != nil {
		out = append(out, *v.sub)
	}
	for _, c := range v.owns {
		out = append(out, c)
	}
	for _, c := range v.plays {
		out = append(out, c)
	}
	for _, c := range v.relates {
		out = append(out, c)
	}
	if v.regex != nil {
		out = append(out, *v.regex)
	}
	return out
}

// String renders the variable. A hidden variable with a label is written
// as the label itself (person sub entity).
func (v TypeVariable) String() string {
	var head string
	var parts []string
	for _, c := range v.Constraints() {
		if lc, ok := c.(LabelConstraint); ok && !v.ref.IsVisible() {
			head = lc.Label.String()
			continue
		}
		parts = append(parts, c.String())
	}
	if v.ref.IsVisible() {
		head = v.ref.String()
	}
	return joinHead(head, parts)
}

// ThingVariable is a variable ranging over data instances: entities,
// relations and attributes.
type ThingVariable struct {
	ref      Reference
	iid      *IIDConstraint
	isa      *IsaConstraint
	relation *RelationConstraint
	value    *ValueConstraint
	has      []HasConstraint
}

func (ThingVariable) pattern()  {}
func (ThingVariable) variable() {}

func (v ThingVariable) Reference() Reference { return v.ref }

func (v ThingVariable) IID() (IIDConstraint, bool) {
	if v.iid == nil {
		return IIDConstraint{}, false
	}
	return *v.iid, true
}

func (v ThingVariable) Isa() (IsaConstraint, bool) {
	if v.isa == nil {
		return IsaConstraint{}, false
	}
	return *v.isa, true
}

func (v ThingVariable) Relation() (RelationConstraint, bool) {
	if v.relation == nil {
		return RelationConstraint{}, false
	}
	return *v.relation, true
}

func (v ThingVariable) Value() (ValueConstraint, bool) {
	if v.value == nil {
		return ValueConstraint{}, false
	}
	return *v.value, true
}

func (v ThingVariable) Has() []HasConstraint { return slices.Clone(v.has) }

func (v ThingVariable) ConstrainIID(c IIDConstraint) (ThingVariable, error) {
	if v.iid != nil {
		return v, duplicate("iid", v.ref)
	}
	v.iid = &c
	return v, nil
}

func (v ThingVariable) ConstrainIsa(c IsaConstraint) (ThingVariable, error) {
	if v.isa != nil {
		return v, duplicate("isa", v.ref)
	}
	v.isa = &c
	return v, nil
}

func (v ThingVariable) ConstrainRelation(c RelationConstraint) (ThingVariable, error) {
	if v.relation != nil {
		return v, duplicate("relation", v.ref)
	}
	v.relation = &c
	return v, nil
}

func (v ThingVariable) ConstrainValue(c ValueConstraint) (ThingVariable, error) {
	if v.value != nil {
		return v, duplicate("value", v.ref)
	}
	v.value = &c
	return v, nil
}

func (v ThingVariable) ConstrainHas(c HasConstraint) ThingVariable {
	v.has = append(slices.Clip(v.has), c)
	return v
}

// Constraints lists iid, isa, relation, value and has, in that order.
func (v ThingVariable) Constraints() []Constraint {
	var out []Constraint
	if v.iid != nil {
		out = append(out, *v.iid)
	}
	if v.isa != nil {
		out = append(out, *v.isa)
	}
	if v.relation != nil {
		out = append(out, *v.relation)
	}
	if v.value != nil {
		out = append(out, *v.value)
	}
	for _, c := range v.has {
		out = append(out, c)
	}
	return out
}

// String renders the variable the way it is written in a pattern:
// reference, relation and value first, then the comma-separated rest
// ($r (wife: $x) isa marriage, has date $d).
func (v ThingVariable) String() string {
	var heads []string
	if v.ref.IsVisible() {
		heads = append(heads, v.ref.String())
	}
	if v.relation != nil {
		heads = append(heads, v.relation.String())
	}
	if v.value != nil {
		heads = append(heads, v.value.String())
	}
	var parts []string
	if v.iid != nil {
		parts = append(parts, v.iid.String())
	}
	if v.isa != nil {
		parts = append(parts, v.isa.String())
	}
	for _, c := range v.has {
		parts = append(parts, c.String())
	}
	return joinHead(strings.Join(heads, " "), parts)
}

func joinHead(head string, parts []string) string {
	body := strings.Join(parts, ", ")
	switch {
	case head == "":
		return body
	case body == "":
		return head
	default:
		return head + " " + body
	}
}

func duplicate(kind string, ref Reference) error {
	return fmt.Errorf("%w: %s already set on %s", ErrDuplicateConstraint, kind, ref)
}
