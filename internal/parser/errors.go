package parser

import (
	"errors"
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/alexjpwalker/typeql/internal/grammar"
)

// Error is the single error type returned by the converter. Code tells
// callers whether the input was wrong (ILLEGAL_GRAMMAR, SYNTAX_ERROR), is
// valid TypeQL that is not converted yet (UNSUPPORTED_CONSTRUCT), or hit
// the nesting limit (NESTING_TOO_DEEP).
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is display-ready and already includes Text.
	Message string

	// Text is the offending source text, reconstructed from the tree node.
	Text string

	// Construct names the unsupported construct (UNSUPPORTED_CONSTRUCT only).
	Construct string

	// Pos is the start of the offending node, zero when unknown.
	Pos lexer.Position

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes conversion errors.
type ErrorCode string

const (
	// ErrCodeIllegalGrammar: the tree or a literal violates a rule the
	// grammar cannot enforce.
	ErrCodeIllegalGrammar ErrorCode = "ILLEGAL_GRAMMAR"

	// ErrCodeUnsupported: recognised TypeQL that is not converted yet.
	ErrCodeUnsupported ErrorCode = "UNSUPPORTED_CONSTRUCT"

	// ErrCodeNestingTooDeep: the input exceeds the maximum nesting depth.
	ErrCodeNestingTooDeep ErrorCode = "NESTING_TOO_DEEP"

	// ErrCodeSyntax: the text did not lex or parse.
	ErrCodeSyntax ErrorCode = "SYNTAX_ERROR"
)

func (e *Error) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("%d:%d: %s: %s", e.Pos.Line, e.Pos.Column, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func hasCode(err error, code ErrorCode) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}

// IsIllegalGrammar returns true if err is a semantic grammar violation.
func IsIllegalGrammar(err error) bool { return hasCode(err, ErrCodeIllegalGrammar) }

// IsUnsupported returns true if err reports an unsupported construct.
func IsUnsupported(err error) bool { return hasCode(err, ErrCodeUnsupported) }

// IsNestingTooDeep returns true if err is the depth guard firing.
func IsNestingTooDeep(err error) bool { return hasCode(err, ErrCodeNestingTooDeep) }

// IsSyntaxError returns true if err is a lexing or parsing failure.
func IsSyntaxError(err error) bool { return hasCode(err, ErrCodeSyntax) }

func illegalGrammar(text string, pos lexer.Position, cause error) *Error {
	msg := fmt.Sprintf("Illegal grammar: '%s'", text)
	if cause != nil {
		msg += ": " + cause.Error()
	}
	return &Error{
		Code:    ErrCodeIllegalGrammar,
		Message: msg,
		Text:    text,
		Pos:     pos,
		Err:     cause,
	}
}

func unsupported(construct, text string, pos lexer.Position) *Error {
	return &Error{
		Code:      ErrCodeUnsupported,
		Message:   fmt.Sprintf("%s is not supported yet: '%s'", construct, text),
		Text:      text,
		Construct: construct,
		Pos:       pos,
	}
}

func nestingTooDeep(limit int, text string, pos lexer.Position) *Error {
	return &Error{
		Code:    ErrCodeNestingTooDeep,
		Message: fmt.Sprintf("input too deeply nested: exceeds maximum nesting depth of %d", limit),
		Text:    text,
		Pos:     pos,
	}
}

func syntaxError(err error) error {
	var derr *grammar.DepthError
	if errors.As(err, &derr) {
		return nestingTooDeep(derr.Limit, derr.Bracket, derr.Pos)
	}
	var serr *grammar.SyntaxError
	if !errors.As(err, &serr) {
		return err
	}
	return &Error{
		Code:    ErrCodeSyntax,
		Message: serr.Message,
		Pos:     serr.Pos,
		Err:     serr,
	}
}
