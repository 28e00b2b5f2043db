package parser

import (
	"errors"
	"io"
	"log/slog"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/alexjpwalker/typeql/internal/grammar"
	"github.com/alexjpwalker/typeql/internal/pattern"
)

// DefaultMaxNestingDepth is the nesting limit used when no
// WithMaxNestingDepth option is given. Ordinary queries stay well below
// ten.
const DefaultMaxNestingDepth = grammar.DefaultMaxDepth

var errMissingNode = errors.New("missing node")

// Option configures a conversion.
type Option func(*options)

type options struct {
	maxDepth int
	logger   *slog.Logger
}

// WithMaxNestingDepth limits how deeply the converter descends into
// queries, patterns, variables, relations and predicates. Values below 1
// are ignored.
func WithMaxNestingDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}

// WithLogger sets the logger for debug output. Conversion logs nothing
// above Debug.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// converter holds the state of one conversion call. A fresh converter is
// created per entry point call, so hidden ids always start at zero and
// concurrent calls share nothing.
type converter struct {
	maxDepth   int
	depth      int
	nextHidden int
	log        *slog.Logger
}

func resolve(opts []Option) options {
	o := options{
		maxDepth: DefaultMaxNestingDepth,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func newConverter(opts []Option) *converter {
	o := resolve(opts)
	return &converter{maxDepth: o.maxDepth, log: o.logger}
}

// grammarOptions applies the nesting limit to the parse itself, so deeply
// bracketed input is rejected before the grammar recurses into it.
func grammarOptions(opts []Option) []grammar.Option {
	return []grammar.Option{grammar.WithMaxDepth(resolve(opts).maxDepth)}
}

// enter records one level of descent into a node; every successful enter
// must be paired with leave.
func (c *converter) enter(tokens []lexer.Token, pos lexer.Position) error {
	if c.depth >= c.maxDepth {
		return nestingTooDeep(c.maxDepth, grammar.Text(tokens), pos)
	}
	c.depth++
	return nil
}

func (c *converter) leave() {
	c.depth--
}

// hidden mints the next synthesized variable.
func (c *converter) hidden() pattern.UnboundVariable {
	v := pattern.Hidden(c.nextHidden)
	c.nextHidden++
	return v
}

func missing(what string, pos lexer.Position) *Error {
	return illegalGrammar("", pos, errors.Join(errMissingNode, errors.New(what)))
}

// withPos fills in the position of a converter error that was raised by a
// decoder, which only sees token text.
func withPos(err error, pos lexer.Position) error {
	var pe *Error
	if errors.As(err, &pe) && pe.Pos.Line == 0 {
		pe.Pos = pos
	}
	return err
}
