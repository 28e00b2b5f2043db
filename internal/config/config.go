// Package config loads typeql configuration.
//
// The schema is CUE, embedded in the binary. A user file (CUE or JSON) is
// unified with #Config, so unknown fields and out-of-range values are
// rejected and omitted fields take their defaults.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaCUE string

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config is the decoded configuration.
type Config struct {
	Parser  ParserConfig  `json:"parser"`
	Output  OutputConfig  `json:"output"`
	Catalog CatalogConfig `json:"catalog"`
}

type ParserConfig struct {
	MaxNestingDepth int `json:"max_nesting_depth"`
}

type OutputConfig struct {
	Format string `json:"format"`
}

type CatalogConfig struct {
	Path string `json:"path"`
}

// Error reports an invalid configuration file.
type Error struct {
	File    string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("config %s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	if e.File == "" {
		return "config: " + e.Message
	}
	return fmt.Sprintf("config %s: %s", e.File, e.Message)
}

// Default returns the schema defaults.
func Default() Config {
	c, err := decode(cuecontext.New(), "", nil)
	if err != nil {
		panic(fmt.Sprintf("config: embedded schema: %v", err))
	}
	return c
}

// Load reads path and returns it unified with the defaults. An empty path
// returns Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(path, src)
}

// Parse unifies src with the schema. name is used in error messages.
func Parse(name string, src []byte) (Config, error) {
	return decode(cuecontext.New(), name, src)
}

func decode(ctx *cue.Context, name string, src []byte) (Config, error) {
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, err
	}
	v := schema.LookupPath(cue.ParsePath("#Config"))

	if src != nil {
		user := ctx.CompileBytes(src, cue.Filename(name))
		if err := user.Err(); err != nil {
			return Config{}, formatCUEError(name, err)
		}
		v = v.Unify(user)
	}

	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, formatCUEError(name, err)
	}

	var c Config
	if err := v.Decode(&c); err != nil {
		return Config{}, formatCUEError(name, err)
	}
	return c, nil
}

// formatCUEError returns the first CUE error, with its position when CUE
// reports one.
func formatCUEError(name string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &Error{File: name, Message: err.Error()}
	}
	first := errs[0]
	e := &Error{File: name, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		e.Pos = positions[0]
	}
	return e
}
