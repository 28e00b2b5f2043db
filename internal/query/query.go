// Package query holds the TypeQL query AST.
//
// Query is sealed; MatchQuery is the only variant the converter produces
// today. Definable is a placeholder for schema definitions.
package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexjpwalker/typeql/internal/pattern"
)

// ErrEmptyMatch is returned when a match query has no patterns.
var ErrEmptyMatch = errors.New("match query has no patterns")

// QueryType classifies queries by whether they mutate data.
type QueryType int

const (
	QueryTypeRead QueryType = iota
	QueryTypeWrite
)

func (t QueryType) String() string {
	switch t {
	case QueryTypeRead:
		return "read"
	case QueryTypeWrite:
		return "write"
	default:
		return fmt.Sprintf("QueryType(%d)", int(t))
	}
}

// Query is a complete TypeQL request.
type Query interface {
	queryNode()
	Type() QueryType
	String() string
}

// Definable is schema-definition content (type definitions and rules).
// It carries nothing yet: define, undefine and rule conversion are not
// supported.
type Definable struct{}

// Sort directions recognised by TypeQL. Directions are stored verbatim,
// so other text is passed through unchanged.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// OrderedVariable is one sort key. Order is empty when no direction was
// written.
type OrderedVariable struct {
	Var   pattern.UnboundVariable
	Order string
}

func (o OrderedVariable) String() string {
	if o.Order == "" {
		return o.Var.String()
	}
	return o.Var.String() + " " + o.Order
}

// Sorting is the ordered list of sort keys of a match query.
type Sorting struct {
	Vars []OrderedVariable
}

func (s Sorting) String() string {
	keys := make([]string, len(s.Vars))
	for i, v := range s.Vars {
		keys[i] = v.String()
	}
	return "sort " + strings.Join(keys, ", ")
}

// MatchQuery is a read query: a pattern list plus optional filter, sort,
// limit and offset modifiers. It is built by value like the pattern
// variables.
type MatchQuery struct {
	patterns []pattern.Pattern
	filter   []pattern.UnboundVariable
	sorting  *Sorting
	limit    *uint64
	offset   *uint64
}

// NewMatch returns a match query over patterns, which must be non-empty.
func NewMatch(patterns ...pattern.Pattern) (MatchQuery, error) {
	if len(patterns) == 0 {
		return MatchQuery{}, ErrEmptyMatch
	}
	return MatchQuery{patterns: append([]pattern.Pattern(nil), patterns...)}, nil
}

func (MatchQuery) queryNode() {}

func (MatchQuery) Type() QueryType { return QueryTypeRead }

func (q MatchQuery) Patterns() []pattern.Pattern {
	return append([]pattern.Pattern(nil), q.patterns...)
}

// Filter returns the variables named by get, in source order and with
// duplicates kept.
func (q MatchQuery) Filter() []pattern.UnboundVariable {
	return append([]pattern.UnboundVariable(nil), q.filter...)
}

func (q MatchQuery) Sorting() (Sorting, bool) {
	if q.sorting == nil {
		return Sorting{}, false
	}
	return *q.sorting, true
}

func (q MatchQuery) Limit() (uint64, bool) {
	if q.limit == nil {
		return 0, false
	}
	return *q.limit, true
}

func (q MatchQuery) Offset() (uint64, bool) {
	if q.offset == nil {
		return 0, false
	}
	return *q.offset, true
}

func (q MatchQuery) WithFilter(vars []pattern.UnboundVariable) MatchQuery {
	q.filter = append([]pattern.UnboundVariable(nil), vars...)
	return q
}

func (q MatchQuery) WithSorting(s Sorting) MatchQuery {
	s.Vars = append([]OrderedVariable(nil), s.Vars...)
	q.sorting = &s
	return q
}

func (q MatchQuery) WithLimit(n uint64) MatchQuery {
	q.limit = &n
	return q
}

func (q MatchQuery) WithOffset(n uint64) MatchQuery {
	q.offset = &n
	return q
}

// String renders the query with one statement per line, modifiers in
// grammar order (get, sort, offset, limit).
func (q MatchQuery) String() string {
	lines := []string{"match"}
	for _, p := range q.patterns {
		lines = append(lines, p.String()+";")
	}
	if len(q.filter) > 0 {
		vars := make([]string, len(q.filter))
		for i, v := range q.filter {
			vars[i] = v.String()
		}
		lines = append(lines, "get "+strings.Join(vars, ", ")+";")
	}
	if q.sorting != nil {
		lines = append(lines, q.sorting.String()+";")
	}
	if q.offset != nil {
		lines = append(lines, "offset "+strconv.FormatUint(*q.offset, 10)+";")
	}
	if q.limit != nil {
		lines = append(lines, "limit "+strconv.FormatUint(*q.limit, 10)+";")
	}
	return strings.Join(lines, "\n")
}
