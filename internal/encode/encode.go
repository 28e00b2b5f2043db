// Package encode compiles TypeQL ASTs into ir values.
//
// The encoding is the stable, machine-readable form of an AST: the CLI
// prints it for --format json and the catalog stores it and keys entries
// by its content id. Every switch below is exhaustive over the sealed AST
// interfaces and returns an error on unknown variants.
package encode

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/alexjpwalker/typeql/internal/ir"
	"github.com/alexjpwalker/typeql/internal/pattern"
	"github.com/alexjpwalker/typeql/internal/query"
)

// DateTimeLayout is the layout of encoded date-time values. Values carry
// at most millisecond precision, so three fraction digits are exact.
const DateTimeLayout = "2006-01-02T15:04:05.000"

var errCountRange = errors.New("count exceeds int64 range")

// Query encodes a query. The result carries the encoding version.
func Query(q query.Query) (ir.Object, error) {
	if q == nil {
		return nil, fmt.Errorf("cannot encode nil query")
	}

	switch val := q.(type) {
	case query.MatchQuery:
		return encodeMatch(val)
	case *query.MatchQuery:
		return encodeMatch(*val)
	default:
		return nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

func encodeMatch(q query.MatchQuery) (ir.Object, error) {
	patterns, err := Patterns(q.Patterns())
	if err != nil {
		return nil, err
	}

	obj := ir.Obj(
		ir.P("kind", ir.String("match")),
		ir.P("version", ir.String(ir.EncodingVersion)),
		ir.P("patterns", patterns),
	)

	if filter := q.Filter(); len(filter) > 0 {
		vars := make(ir.Array, len(filter))
		for i, v := range filter {
			vars[i] = Reference(v.Reference())
		}
		obj["filter"] = vars
	}

	if sorting, ok := q.Sorting(); ok {
		keys := make(ir.Array, len(sorting.Vars))
		for i, key := range sorting.Vars {
			entry := ir.Obj(ir.P("var", Reference(key.Var.Reference())))
			if key.Order != "" {
				entry["order"] = ir.String(key.Order)
			}
			keys[i] = entry
		}
		obj["sort"] = keys
	}

	if limit, ok := q.Limit(); ok {
		n, err := count(limit)
		if err != nil {
			return nil, fmt.Errorf("limit: %w", err)
		}
		obj["limit"] = n
	}
	if offset, ok := q.Offset(); ok {
		n, err := count(offset)
		if err != nil {
			return nil, fmt.Errorf("offset: %w", err)
		}
		obj["offset"] = n
	}
	return obj, nil
}

func count(n uint64) (ir.Int, error) {
	if n > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %d", errCountRange, n)
	}
	return ir.Int(n), nil
}

// Patterns encodes a pattern list in order.
func Patterns(ps []pattern.Pattern) (ir.Array, error) {
	out := make(ir.Array, len(ps))
	for i, p := range ps {
		enc, err := Pattern(p)
		if err != nil {
			return nil, fmt.Errorf("pattern[%d]: %w", i, err)
		}
		out[i] = enc
	}
	return out, nil
}

// Pattern encodes one pattern.
func Pattern(p pattern.Pattern) (ir.Object, error) {
	if p == nil {
		return nil, fmt.Errorf("cannot encode nil pattern")
	}

	switch val := p.(type) {
	case pattern.TypeVariable, *pattern.TypeVariable, pattern.ThingVariable, *pattern.ThingVariable:
		v, ok := asVariable(val)
		if !ok {
			return nil, fmt.Errorf("cannot encode nil variable")
		}
		return Variable(v)
	case pattern.Conjunction:
		return compound("conjunction", val.Patterns)
	case pattern.Disjunction:
		return compound("disjunction", val.Patterns)
	case pattern.Negation:
		inner, err := Pattern(val.Pattern)
		if err != nil {
			return nil, fmt.Errorf("negation: %w", err)
		}
		return ir.Obj(ir.P("kind", ir.String("negation")), ir.P("pattern", inner)), nil
	default:
		return nil, fmt.Errorf("unsupported pattern type: %T", p)
	}
}

func asVariable(p pattern.Pattern) (pattern.Variable, bool) {
	switch val := p.(type) {
	case *pattern.TypeVariable:
		if val == nil {
			return nil, false
		}
		return *val, true
	case *pattern.ThingVariable:
		if val == nil {
			return nil, false
		}
		return *val, true
	default:
		v, ok := p.(pattern.Variable)
		return v, ok
	}
}

func compound(kind string, ps []pattern.Pattern) (ir.Object, error) {
	enc, err := Patterns(ps)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	return ir.Obj(ir.P("kind", ir.String(kind)), ir.P("patterns", enc)), nil
}

// Variable encodes a type or thing variable with its constraints in
// rendering order.
func Variable(v pattern.Variable) (ir.Object, error) {
	var kind string
	switch v.(type) {
	case pattern.TypeVariable:
		kind = "type"
	case pattern.ThingVariable:
		kind = "thing"
	default:
		return nil, fmt.Errorf("unsupported variable type: %T", v)
	}

	cs := v.Constraints()
	constraints := make(ir.Array, len(cs))
	for i, c := range cs {
		enc, err := Constraint(c)
		if err != nil {
			return nil, fmt.Errorf("%s: constraint[%d]: %w", v.Reference(), i, err)
		}
		constraints[i] = enc
	}

	return ir.Obj(
		ir.P("kind", ir.String(kind)),
		ir.P("ref", Reference(v.Reference())),
		ir.P("constraints", constraints),
	), nil
}

// Reference encodes a variable identity.
func Reference(r pattern.Reference) ir.Object {
	obj := ir.Obj(ir.P("kind", ir.String(r.Kind().String())))
	switch r.Kind() {
	case pattern.ReferenceNamed:
		obj["name"] = ir.String(r.Name())
	case pattern.ReferenceHidden:
		obj["id"] = ir.Int(r.ID())
	}
	return obj
}

// TypeRef encodes a label or a type variable.
func TypeRef(t pattern.TypeRef) (ir.Object, error) {
	switch val := t.(type) {
	case pattern.Label:
		return Label(val), nil
	case pattern.UnboundVariable:
		return ir.Obj(ir.P("var", Reference(val.Reference()))), nil
	case nil:
		return nil, fmt.Errorf("cannot encode nil type reference")
	default:
		return nil, fmt.Errorf("unsupported type reference: %T", t)
	}
}

// Label encodes a label, omitting an empty scope.
func Label(l pattern.Label) ir.Object {
	obj := ir.Obj(ir.P("label", ir.String(l.Name)))
	if l.Scope != "" {
		obj["scope"] = ir.String(l.Scope)
	}
	return obj
}

// Value encodes a literal or variable value. Doubles are encoded as
// their shortest decimal string since ir has no floats.
func Value(v pattern.Value) (ir.Object, error) {
	switch val := v.(type) {
	case pattern.StringValue:
		return typed("string", ir.String(string(val))), nil
	case pattern.LongValue:
		return typed("long", ir.Int(int64(val))), nil
	case pattern.DoubleValue:
		return typed("double", ir.String(strconv.FormatFloat(float64(val), 'g', -1, 64))), nil
	case pattern.BooleanValue:
		return typed("boolean", ir.Bool(bool(val))), nil
	case pattern.DateTimeValue:
		return typed("datetime", ir.String(val.Time().UTC().Format(DateTimeLayout))), nil
	case pattern.VariableValue:
		return typed("variable", Reference(val.Variable.Reference())), nil
	case nil:
		return nil, fmt.Errorf("cannot encode nil value")
	default:
		return nil, fmt.Errorf("unsupported value type: %T", v)
	}
}

func typed(name string, v ir.Value) ir.Object {
	return ir.Obj(ir.P("type", ir.String(name)), ir.P("value", v))
}
