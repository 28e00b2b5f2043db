package pattern

import "errors"

var (
	// ErrInvalidVariableName is returned when a variable name does not
	// match [a-zA-Z0-9][a-zA-Z0-9_-]*.
	ErrInvalidVariableName = errors.New("invalid variable name")

	// ErrDuplicateConstraint is returned when a single-valued constraint
	// (type, sub, regex, isa, iid, value, relation) is set twice on one
	// variable.
	ErrDuplicateConstraint = errors.New("duplicate constraint")

	// ErrInvalidIID is returned for an iid that is not 0x followed by
	// lowercase hex digits.
	ErrInvalidIID = errors.New("invalid iid")

	// ErrDateTimePrecision is returned for date-time values finer than
	// one millisecond.
	ErrDateTimePrecision = errors.New("date-time precision exceeds milliseconds")

	// ErrEmptyRelation is returned for a relation without role players.
	ErrEmptyRelation = errors.New("relation has no role players")

	// ErrUnknownPredicate is returned for an unrecognised comparison
	// operator.
	ErrUnknownPredicate = errors.New("unknown predicate")
)
