// Package pattern holds the TypeQL pattern AST: labels, variable
// references, type and thing variables, their constraints, literal values
// and predicates.
//
// Variables are builders passed by value. Every Constrain/With method
// returns a new, more constrained variable and leaves the receiver
// untouched, so a base variable can be folded in several directions
// without aliasing.
//
// Pattern, Variable, Constraint, Value and TypeRef are sealed interfaces
// using the marker method pattern; only types in this package implement
// them, which keeps type switches in the converter and encoders
// exhaustive.
package pattern
