package pattern

import (
	"fmt"
	"regexp"
)

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// ReferenceKind distinguishes how a variable is identified.
type ReferenceKind int

const (
	// ReferenceNamed is a user-visible variable such as $x.
	ReferenceNamed ReferenceKind = iota
	// ReferenceAnonymous is the user-visible placeholder $_.
	ReferenceAnonymous
	// ReferenceHidden is synthesized by the converter for relations,
	// attributes and labelled types that have no variable of their own.
	ReferenceHidden
)

func (k ReferenceKind) String() string {
	switch k {
	case ReferenceNamed:
		return "named"
	case ReferenceAnonymous:
		return "anonymous"
	case ReferenceHidden:
		return "hidden"
	default:
		return fmt.Sprintf("ReferenceKind(%d)", int(k))
	}
}

// Reference is the identity of a variable. Two references are equal when
// they have the same kind, name and hidden id.
type Reference struct {
	kind ReferenceKind
	name string
	id   int
}

func (r Reference) Kind() ReferenceKind { return r.kind }

// Name returns the variable name; empty unless the reference is named.
func (r Reference) Name() string { return r.name }

// ID returns the hidden id; zero unless the reference is hidden.
func (r Reference) ID() int { return r.id }

func (r Reference) IsNamed() bool     { return r.kind == ReferenceNamed }
func (r Reference) IsAnonymous() bool { return r.kind == ReferenceAnonymous }
func (r Reference) IsHidden() bool    { return r.kind == ReferenceHidden }

// IsVisible reports whether the reference appears in query text.
func (r Reference) IsVisible() bool { return r.kind != ReferenceHidden }

// String renders the reference as written in TypeQL. Hidden references
// have no surface syntax and render as $_ like anonymous ones.
func (r Reference) String() string {
	if r.kind == ReferenceNamed {
		return "$" + r.name
	}
	return "$_"
}

// UnboundVariable is a variable reference with no constraints yet. It is
// the starting point for both type and thing variables, and is also used
// wherever only a reference is needed (role players, filters, sorting,
// variable-valued predicates).
type UnboundVariable struct {
	ref Reference
}

// Named returns the variable $name. The name must match
// [a-zA-Z0-9][a-zA-Z0-9_-]*; "_" is reserved for Anonymous.
func Named(name string) (UnboundVariable, error) {
	if !namePattern.MatchString(name) {
		return UnboundVariable{}, fmt.Errorf("%w: %q", ErrInvalidVariableName, name)
	}
	return UnboundVariable{ref: Reference{kind: ReferenceNamed, name: name}}, nil
}

// MustNamed is like Named but panics on an invalid name. Intended for
// tests and static construction.
func MustNamed(name string) UnboundVariable {
	v, err := Named(name)
	if err != nil {
		panic(err)
	}
	return v
}

// Anonymous returns the variable $_.
func Anonymous() UnboundVariable {
	return UnboundVariable{ref: Reference{kind: ReferenceAnonymous}}
}

// Hidden returns a synthesized variable with the given id. Ids are minted
// by the caller; the converter uses a per-parse counter so the same input
// always yields the same ids.
func Hidden(id int) UnboundVariable {
	return UnboundVariable{ref: Reference{kind: ReferenceHidden, id: id}}
}

func (UnboundVariable) typeRef() {}

func (v UnboundVariable) Reference() Reference { return v.ref }

func (v UnboundVariable) String() string { return v.ref.String() }

// IntoType returns a type variable with the same reference and no
// constraints.
func (v UnboundVariable) IntoType() TypeVariable {
	return TypeVariable{ref: v.ref}
}

// IntoThing returns a thing variable with the same reference and no
// constraints.
func (v UnboundVariable) IntoThing() ThingVariable {
	return ThingVariable{ref: v.ref}
}
