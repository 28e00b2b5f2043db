// Package grammar is the TypeQL lexer and parser. It turns query text into
// a concrete parse tree (the structs in tree.go) and reports syntax
// errors; semantic conversion to the AST happens in package parser.
package grammar

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// lookahead bounds how many tokens a failed alternative may consume
// before the parser stops backtracking and reports the error.
const lookahead = 8

func build[T any]() *participle.Parser[T] {
	return participle.MustBuild[T](
		participle.Lexer(typeqlLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(lookahead),
	)
}

var (
	queryParser      = build[Query]()
	queriesParser    = build[Queries]()
	patternParser    = build[Pattern]()
	patternsParser   = build[Patterns]()
	definablesParser = build[Definables]()
	variableParser   = build[PatternVariable]()
	labelParser      = build[EOFLabel]()
	ruleParser       = build[SchemaRule]()
)

// DefaultMaxDepth is the bracket nesting limit used when no WithMaxDepth
// option is given.
const DefaultMaxDepth = 64

// Option configures a parse.
type Option func(*parseOptions)

type parseOptions struct {
	maxDepth int
}

// WithMaxDepth limits how deeply braces and parentheses may nest. The
// limit is checked on the token stream before the parser recurses.
// Values below 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(o *parseOptions) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}

// SyntaxError is a lexing or parsing failure at a source position.
type SyntaxError struct {
	Pos     lexer.Position
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: syntax error: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// DepthError reports brackets nested deeper than Limit. Pos and Bracket
// locate the bracket that crossed the limit.
type DepthError struct {
	Pos     lexer.Position
	Bracket string
	Limit   int
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("%d:%d: brackets nested deeper than %d", e.Pos.Line, e.Pos.Column, e.Limit)
}

func parse[T any](p *participle.Parser[T], src string, opts []Option) (*T, error) {
	o := parseOptions{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}
	if err := checkDepth(src, o.maxDepth); err != nil {
		return nil, err
	}

	tree, err := p.ParseString("", src)
	if err != nil {
		var perr participle.Error
		if errors.As(err, &perr) {
			return nil, &SyntaxError{Pos: perr.Position(), Message: perr.Message()}
		}
		return nil, &SyntaxError{Message: err.Error()}
	}
	return tree, nil
}

// checkDepth scans the tokens of src and fails once brackets open more
// than limit levels deep. Lexing errors are left to the parser, which
// reports them with better context.
func checkDepth(src string, limit int) error {
	lex, err := typeqlLexer.Lex("", strings.NewReader(src))
	if err != nil {
		return nil
	}
	depth := 0
	for {
		tok, err := lex.Next()
		if err != nil || tok.EOF() {
			return nil
		}
		if tok.Type != punctType {
			continue
		}
		switch tok.Value {
		case "{", "(":
			depth++
			if depth > limit {
				return &DepthError{Pos: tok.Pos, Bracket: tok.Value, Limit: limit}
			}
		case "}", ")":
			if depth > 0 {
				depth--
			}
		}
	}
}

// ParseQuery parses exactly one query.
func ParseQuery(src string, opts ...Option) (*Query, error) { return parse(queryParser, src, opts) }

// ParseQueries parses one or more queries.
func ParseQueries(src string, opts ...Option) (*Queries, error) { return parse(queriesParser, src, opts) }

// ParsePattern parses a single pattern without its trailing semicolon.
func ParsePattern(src string, opts ...Option) (*Pattern, error) { return parse(patternParser, src, opts) }

// ParsePatterns parses a semicolon-terminated pattern list.
func ParsePatterns(src string, opts ...Option) (*Patterns, error) { return parse(patternsParser, src, opts) }

// ParseDefinables parses a semicolon-terminated list of type definitions
// and rules.
func ParseDefinables(src string, opts ...Option) (*Definables, error) { return parse(definablesParser, src, opts) }

// ParseVariable parses a single variable pattern.
func ParseVariable(src string, opts ...Option) (*PatternVariable, error) { return parse(variableParser, src, opts) }

// ParseLabel parses a single unscoped label.
func ParseLabel(src string, opts ...Option) (*EOFLabel, error) { return parse(labelParser, src, opts) }

// ParseSchemaRule parses a rule definition.
func ParseSchemaRule(src string, opts ...Option) (*SchemaRule, error) { return parse(ruleParser, src, opts) }
