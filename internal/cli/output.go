package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/alexjpwalker/typeql/internal/config"
	"github.com/alexjpwalker/typeql/internal/parser"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Input rejected: a conversion or check failed
	ExitCommandError = 2 // Command error (unreadable file, bad flag, catalog unavailable)
)

// ExitError carries the process exit code for a command failure.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Errors that are not
// an ExitError map to ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostics; defaults to Writer
	Verbose   bool
}

// CLIResponse is the JSON envelope for every command.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error structure for CLI responses. Code is a parser
// error code for conversion failures.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorDetails locates a conversion error in the input.
type ErrorDetails struct {
	Line      int    `json:"line,omitempty"`
	Column    int    `json:"column,omitempty"`
	Construct string `json:"construct,omitempty"`
	Text      string `json:"text,omitempty"`
}

// Success writes data as JSON, or text with fmt.Println semantics.
func (f *OutputFormatter) Success(data any, text string) error {
	if f.Format == config.FormatJSON {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, text)
	return err
}

// Error writes an error envelope in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == config.FormatJSON {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %+v\n", details)
	}
	return nil
}

// ConversionError writes a parser error with its position and construct.
func (f *OutputFormatter) ConversionError(err error) error {
	var pe *parser.Error
	if !errors.As(err, &pe) {
		return f.Error("ERROR", err.Error(), nil)
	}
	msg := pe.Message
	if pe.Pos.Line > 0 {
		msg = fmt.Sprintf("%d:%d: %s", pe.Pos.Line, pe.Pos.Column, pe.Message)
	}
	return f.Error(string(pe.Code), msg, ErrorDetails{
		Line:      pe.Pos.Line,
		Column:    pe.Pos.Column,
		Construct: pe.Construct,
		Text:      pe.Text,
	})
}

// VerboseLog prints to ErrWriter when verbose mode is on, so JSON output
// stays clean.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
