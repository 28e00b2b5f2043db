package pattern

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Value is a literal (or variable) on the right-hand side of a predicate.
type Value interface {
	value()
	String() string
}

// StringValue is a string literal, stored without its quotes.
type StringValue string

func (StringValue) value() {}

func (v StringValue) String() string { return quote(string(v)) }

// quote wraps s in double quotes, or in single quotes when s holds an
// unescaped double quote. The contents are written back unchanged.
func quote(s string) string {
	if hasUnescaped(s, '"') {
		return "'" + s + "'"
	}
	return `"` + s + `"`
}

// hasUnescaped reports whether s contains quote outside a backslash
// escape.
func hasUnescaped(s string, quote byte) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case quote:
			return true
		}
	}
	return false
}

// LongValue is a 64-bit integer literal.
type LongValue int64

func (LongValue) value() {}

func (v LongValue) String() string { return strconv.FormatInt(int64(v), 10) }

// DoubleValue is a 64-bit floating point literal.
type DoubleValue float64

func (DoubleValue) value() {}

func (v DoubleValue) String() string {
	f := float64(v)
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if math.IsInf(f, 0) || math.IsNaN(f) || strings.Contains(s, ".") {
		return s
	}
	return s + ".0"
}

// BooleanValue is true or false.
type BooleanValue bool

func (BooleanValue) value() {}

func (v BooleanValue) String() string { return strconv.FormatBool(bool(v)) }

// DateTimeValue is a UTC instant with at most millisecond precision. Date
// literals are represented as midnight of that day.
type DateTimeValue struct {
	t time.Time
}

// NewDateTimeValue validates precision and normalizes t to UTC.
func NewDateTimeValue(t time.Time) (DateTimeValue, error) {
	if t.Nanosecond()%int(time.Millisecond) != 0 {
		return DateTimeValue{}, fmt.Errorf("%w: %s", ErrDateTimePrecision, t.Format(time.RFC3339Nano))
	}
	return DateTimeValue{t: t.UTC()}, nil
}

func (DateTimeValue) value() {}

func (v DateTimeValue) Time() time.Time { return v.t }

func (v DateTimeValue) String() string { return v.t.Format("2006-01-02T15:04:05.999") }

// VariableValue compares against another variable.
type VariableValue struct {
	Variable UnboundVariable
}

func (VariableValue) value() {}

func (v VariableValue) String() string { return v.Variable.String() }

// Predicate is a comparison operator.
type Predicate string

const (
	Eq       Predicate = "="
	Neq      Predicate = "!="
	Gt       Predicate = ">"
	Gte      Predicate = ">="
	Lt       Predicate = "<"
	Lte      Predicate = "<="
	Contains Predicate = "contains"
	Like     Predicate = "like"
)

// ParsePredicate maps operator text to a Predicate.
func ParsePredicate(text string) (Predicate, error) {
	switch p := Predicate(text); p {
	case Eq, Neq, Gt, Gte, Lt, Lte, Contains, Like:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPredicate, text)
	}
}

// IsSubstring reports whether the predicate matches within strings.
func (p Predicate) IsSubstring() bool {
	return p == Contains || p == Like
}
