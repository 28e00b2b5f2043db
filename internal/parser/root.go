package parser

import (
	"fmt"
	"strings"

	"github.com/alexjpwalker/typeql/internal/pattern"
	"github.com/alexjpwalker/typeql/internal/query"
)

// Root names a grammar entry point.
type Root string

const (
	RootQuery      Root = "query"
	RootQueries    Root = "queries"
	RootPattern    Root = "pattern"
	RootPatterns   Root = "patterns"
	RootDefinables Root = "definables"
	RootVariable   Root = "variable"
	RootLabel      Root = "label"
	RootSchemaRule Root = "schema_rule"
)

// Roots lists every root in a stable order.
func Roots() []Root {
	return []Root{
		RootQuery,
		RootQueries,
		RootPattern,
		RootPatterns,
		RootDefinables,
		RootVariable,
		RootLabel,
		RootSchemaRule,
	}
}

// ParseRootName validates a root name.
func ParseRootName(name string) (Root, error) {
	for _, r := range Roots() {
		if string(r) == name {
			return r, nil
		}
	}
	names := make([]string, 0, len(Roots()))
	for _, r := range Roots() {
		names = append(names, string(r))
	}
	return "", fmt.Errorf("unknown entry %q (want one of %s)", name, strings.Join(names, ", "))
}

// Result holds the output of Parse. Which fields are set depends on Root:
// Queries for query and queries, Patterns for pattern and patterns,
// Variable for variable and Label for label. Definable roots never
// produce a result.
type Result struct {
	Root     Root
	Queries  []query.Query
	Patterns []pattern.Pattern
	Variable pattern.Variable
	Label    string
}

// String renders the result in TypeQL syntax. Queries are separated by a
// blank line and each pattern of a list ends with a semicolon.
func (r Result) String() string {
	switch r.Root {
	case RootQuery, RootQueries:
		parts := make([]string, len(r.Queries))
		for i, q := range r.Queries {
			parts[i] = q.String()
		}
		return strings.Join(parts, "\n\n")
	case RootPattern:
		if len(r.Patterns) == 0 {
			return ""
		}
		return r.Patterns[0].String()
	case RootPatterns:
		parts := make([]string, len(r.Patterns))
		for i, p := range r.Patterns {
			parts[i] = p.String() + ";"
		}
		return strings.Join(parts, "\n")
	case RootVariable:
		if r.Variable == nil {
			return ""
		}
		return r.Variable.String()
	case RootLabel:
		return r.Label
	default:
		return ""
	}
}

// Parse converts src from the given root.
func Parse(root Root, src string, opts ...Option) (Result, error) {
	res := Result{Root: root}
	switch root {
	case RootQuery:
		q, err := ParseQuery(src, opts...)
		if err != nil {
			return Result{}, err
		}
		res.Queries = []query.Query{q}
	case RootQueries:
		qs, err := ParseQueries(src, opts...)
		if err != nil {
			return Result{}, err
		}
		res.Queries = qs
	case RootPattern:
		p, err := ParsePattern(src, opts...)
		if err != nil {
			return Result{}, err
		}
		res.Patterns = []pattern.Pattern{p}
	case RootPatterns:
		ps, err := ParsePatterns(src, opts...)
		if err != nil {
			return Result{}, err
		}
		res.Patterns = ps
	case RootDefinables:
		if _, err := ParseDefinables(src, opts...); err != nil {
			return Result{}, err
		}
	case RootVariable:
		v, err := ParseVariable(src, opts...)
		if err != nil {
			return Result{}, err
		}
		res.Variable = v
	case RootLabel:
		l, err := ParseLabel(src, opts...)
		if err != nil {
			return Result{}, err
		}
		res.Label = l
	case RootSchemaRule:
		if _, err := ParseSchemaRule(src, opts...); err != nil {
			return Result{}, err
		}
	default:
		_, err := ParseRootName(string(root))
		return Result{}, err
	}
	return res, nil
}
