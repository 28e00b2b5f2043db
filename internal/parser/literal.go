package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/alexjpwalker/typeql/internal/pattern"
)

const (
	dateLayout            = "2006-01-02"
	dateTimeMinutesLayout = "2006-01-02T15:04"
	dateTimeSecondsLayout = "2006-01-02T15:04:05"
)

var (
	errNegativeCount = errors.New("count must not be negative")
	errFraction      = errors.New("fractional seconds must be 1 to 9 digits")
	errCommaFraction = errors.New("fractional seconds must follow a '.'")
)

// The decoders below take raw token text and return either the typed
// value or an ILLEGAL_GRAMMAR error carrying that exact text. None of
// them keeps state, so decoding the same text twice gives the same value.

// decodeString strips the surrounding quotes. No escape processing is
// done.
func decodeString(text string) (string, error) {
	if len(text) < 2 {
		return "", illegalGrammar(text, lexer.Position{}, nil)
	}
	return text[1 : len(text)-1], nil
}

// decodeRegex is decodeString plus unescaping \/ to /.
func decodeRegex(text string) (string, error) {
	s, err := decodeString(text)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(s, `\/`, "/"), nil
}

func decodeLong(text string) (int64, error) {
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, illegalGrammar(text, lexer.Position{}, err)
	}
	return n, nil
}

// decodeCount decodes a limit or offset.
func decodeCount(text string) (uint64, error) {
	n, err := decodeLong(text)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, illegalGrammar(text, lexer.Position{}, errNegativeCount)
	}
	return uint64(n), nil
}

func decodeDouble(text string) (float64, error) {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, illegalGrammar(text, lexer.Position{}, err)
	}
	return f, nil
}

func decodeBoolean(text string) (bool, error) {
	switch text {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, illegalGrammar(text, lexer.Position{}, nil)
	}
}

func decodeDate(text string) (time.Time, error) {
	t, err := time.Parse(dateLayout, text)
	if err != nil {
		return time.Time{}, illegalGrammar(text, lexer.Position{}, err)
	}
	return t, nil
}

// decodeDateTime accepts minutes, seconds, or seconds with a fraction.
// The fraction is right-padded to nine digits and read as nanoseconds,
// so .123 is 123,000,000ns. Results are UTC.
func decodeDateTime(text string) (time.Time, error) {
	// time.Parse also takes a comma before fractional seconds.
	if strings.Contains(text, ",") {
		return time.Time{}, illegalGrammar(text, lexer.Position{}, errCommaFraction)
	}
	if strings.Count(text, ":") != 2 {
		return parseTime(dateTimeMinutesLayout, text, text)
	}
	if strings.Count(text, ".") != 1 {
		return parseTime(dateTimeSecondsLayout, text, text)
	}

	seconds, fraction, _ := strings.Cut(text, ".")
	t, err := parseTime(dateTimeSecondsLayout, seconds, text)
	if err != nil {
		return time.Time{}, err
	}
	if len(fraction) > 9 {
		return time.Time{}, illegalGrammar(text, lexer.Position{}, errFraction)
	}
	nanos, err := strconv.ParseUint(fraction+strings.Repeat("0", 9-len(fraction)), 10, 32)
	if err != nil {
		return time.Time{}, illegalGrammar(text, lexer.Position{}, err)
	}
	return t.Add(time.Duration(nanos)), nil
}

func parseTime(layout, value, original string) (time.Time, error) {
	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, illegalGrammar(original, lexer.Position{}, err)
	}
	return t, nil
}

// decodeVariable turns $name into a named variable and $_ into an
// anonymous one. The lexer only produces tokens with the sigil and at
// least one name character, so anything else is a bug in the caller and
// panics.
func decodeVariable(text string) (pattern.UnboundVariable, error) {
	if len(text) < 2 || text[0] != '$' {
		panic(fmt.Sprintf("parser: malformed variable token %q", text))
	}
	name := text[1:]
	if name == "_" {
		return pattern.Anonymous(), nil
	}
	v, err := pattern.Named(name)
	if err != nil {
		return pattern.UnboundVariable{}, illegalGrammar(text, lexer.Position{}, err)
	}
	return v, nil
}
