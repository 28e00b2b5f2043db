// Package parser converts TypeQL parse trees into the AST of packages
// pattern and query.
//
// Each grammar root has two entry points: VisitXxx converts a tree that
// was already produced by package grammar, and ParseXxx runs the grammar
// first. Every call uses a fresh converter, so results depend only on the
// input and concurrent calls are independent.
//
// The first error aborts the conversion and no partial AST is returned.
// Errors are always *Error; use IsIllegalGrammar, IsUnsupported,
// IsNestingTooDeep and IsSyntaxError to classify them.
package parser

import (
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/alexjpwalker/typeql/internal/grammar"
	"github.com/alexjpwalker/typeql/internal/pattern"
	"github.com/alexjpwalker/typeql/internal/query"
)

// run executes one conversion and logs its outcome.
func run[T any](root string, opts []Option, visit func(*converter) (T, error)) (T, error) {
	c := newConverter(opts)
	out, err := visit(c)
	if err != nil {
		c.log.Debug("conversion rejected", "root", root, "error", err)
		var zero T
		return zero, err
	}
	c.log.Debug("conversion complete", "root", root, "hidden", c.nextHidden)
	return out, nil
}

// VisitQuery converts an eof_query tree.
func VisitQuery(tree *grammar.Query, opts ...Option) (query.Query, error) {
	return run("query", opts, func(c *converter) (query.Query, error) {
		return c.visitQuery(tree)
	})
}

// VisitQueries converts an eof_queries tree. Hidden ids keep counting
// across the queries of one call.
func VisitQueries(tree *grammar.Queries, opts ...Option) ([]query.Query, error) {
	return run("queries", opts, func(c *converter) ([]query.Query, error) {
		if tree == nil {
			return nil, missing("queries", lexer.Position{})
		}
		out := make([]query.Query, 0, len(tree.Queries))
		for _, q := range tree.Queries {
			converted, err := c.visitQuery(q)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	})
}

// VisitPattern converts an eof_pattern tree.
func VisitPattern(tree *grammar.Pattern, opts ...Option) (pattern.Pattern, error) {
	return run("pattern", opts, func(c *converter) (pattern.Pattern, error) {
		return c.visitPattern(tree)
	})
}

// VisitPatterns converts an eof_patterns tree, preserving order.
func VisitPatterns(tree *grammar.Patterns, opts ...Option) ([]pattern.Pattern, error) {
	return run("patterns", opts, func(c *converter) ([]pattern.Pattern, error) {
		return c.visitPatterns(tree)
	})
}

// VisitDefinables converts an eof_definables tree. Schema definitions are
// not converted yet, so any non-empty list is UNSUPPORTED_CONSTRUCT.
func VisitDefinables(tree *grammar.Definables, opts ...Option) ([]query.Definable, error) {
	return run("definables", opts, func(c *converter) ([]query.Definable, error) {
		if tree == nil {
			return nil, missing("definables", lexer.Position{})
		}
		if len(tree.Definables) == 0 || tree.Definables[0] == nil {
			return nil, illegalGrammar(grammar.Text(tree.Tokens), tree.Pos, nil)
		}
		d := tree.Definables[0]
		if d.Rule != nil {
			return nil, unsupported("rule definition", grammar.Text(d.Tokens), d.Pos)
		}
		return nil, unsupported("type definition", grammar.Text(d.Tokens), d.Pos)
	})
}

// VisitVariable converts an eof_variable tree.
func VisitVariable(tree *grammar.PatternVariable, opts ...Option) (pattern.Variable, error) {
	return run("variable", opts, func(c *converter) (pattern.Variable, error) {
		return c.visitPatternVariable(tree)
	})
}

// VisitLabel converts an eof_label tree to the label text.
func VisitLabel(tree *grammar.EOFLabel, opts ...Option) (string, error) {
	return run("label", opts, func(c *converter) (string, error) {
		if tree == nil {
			return "", missing("label", lexer.Position{})
		}
		return tree.Label, nil
	})
}

// VisitSchemaRule converts an eof_schema_rule tree. Rules are not
// converted yet.
func VisitSchemaRule(tree *grammar.SchemaRule, opts ...Option) (query.Definable, error) {
	return run("schema_rule", opts, func(c *converter) (query.Definable, error) {
		if tree == nil {
			return query.Definable{}, missing("schema rule", lexer.Position{})
		}
		return query.Definable{}, unsupported("rule definition", grammar.Text(tree.Tokens), tree.Pos)
	})
}

// ParseQuery lexes, parses and converts a single query.
func ParseQuery(src string, opts ...Option) (query.Query, error) {
	tree, err := grammar.ParseQuery(src, grammarOptions(opts)...)
	if err != nil {
		return nil, syntaxError(err)
	}
	return VisitQuery(tree, opts...)
}

// ParseQueries lexes, parses and converts one or more queries.
func ParseQueries(src string, opts ...Option) ([]query.Query, error) {
	tree, err := grammar.ParseQueries(src, grammarOptions(opts)...)
	if err != nil {
		return nil, syntaxError(err)
	}
	return VisitQueries(tree, opts...)
}

// ParsePattern lexes, parses and converts a single pattern.
func ParsePattern(src string, opts ...Option) (pattern.Pattern, error) {
	tree, err := grammar.ParsePattern(src, grammarOptions(opts)...)
	if err != nil {
		return nil, syntaxError(err)
	}
	return VisitPattern(tree, opts...)
}

// ParsePatterns lexes, parses and converts a pattern list.
func ParsePatterns(src string, opts ...Option) ([]pattern.Pattern, error) {
	tree, err := grammar.ParsePatterns(src, grammarOptions(opts)...)
	if err != nil {
		return nil, syntaxError(err)
	}
	return VisitPatterns(tree, opts...)
}

// ParseDefinables lexes, parses and converts a definable list.
func ParseDefinables(src string, opts ...Option) ([]query.Definable, error) {
	tree, err := grammar.ParseDefinables(src, grammarOptions(opts)...)
	if err != nil {
		return nil, syntaxError(err)
	}
	return VisitDefinables(tree, opts...)
}

// ParseVariable lexes, parses and converts a single variable.
func ParseVariable(src string, opts ...Option) (pattern.Variable, error) {
	tree, err := grammar.ParseVariable(src, grammarOptions(opts)...)
	if err != nil {
		return nil, syntaxError(err)
	}
	return VisitVariable(tree, opts...)
}

// ParseLabel lexes and parses a single label.
func ParseLabel(src string, opts ...Option) (string, error) {
	tree, err := grammar.ParseLabel(src, grammarOptions(opts)...)
	if err != nil {
		return "", syntaxError(err)
	}
	return VisitLabel(tree, opts...)
}

// ParseSchemaRule lexes, parses and converts a rule definition.
func ParseSchemaRule(src string, opts ...Option) (query.Definable, error) {
	tree, err := grammar.ParseSchemaRule(src, grammarOptions(opts)...)
	if err != nil {
		return query.Definable{}, syntaxError(err)
	}
	return VisitSchemaRule(tree, opts...)
}
