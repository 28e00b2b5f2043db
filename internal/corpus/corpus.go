// Package corpus runs YAML conformance suites against the parser.
//
// A suite file lists cases. Each case names a grammar entry, an input and
// the expected outcome: either the rendered AST or an error code, with an
// optional construct and offending text.
//
//	name: match
//	cases:
//	  - name: isa
//	    input: match $x isa person;
//	    expect:
//	      rendered: |-
//	        match
//	        $x isa person;
package corpus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/alexjpwalker/typeql/internal/parser"
)

// Suite is one corpus file.
type Suite struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Cases       []Case `yaml:"cases"`

	// Path is the file the suite was loaded from.
	Path string `yaml:"-"`
}

// Case is a single input and its expected outcome.
type Case struct {
	Name string `yaml:"name"`

	// Entry is the grammar root, "query" when empty.
	Entry string `yaml:"entry,omitempty"`

	Input string `yaml:"input"`

	// MaxNestingDepth overrides the parser default when positive.
	MaxNestingDepth int `yaml:"max_nesting_depth,omitempty"`

	Expect Expect `yaml:"expect"`
}

// Expect holds exactly one of Rendered or Error.
type Expect struct {
	Rendered string         `yaml:"rendered,omitempty"`
	Error    *ExpectedError `yaml:"error,omitempty"`
}

// ExpectedError matches a *parser.Error. Empty fields are not compared.
type ExpectedError struct {
	Code      string `yaml:"code"`
	Construct string `yaml:"construct,omitempty"`
	Text      string `yaml:"text,omitempty"`
}

func (c Case) root() parser.Root {
	if c.Entry == "" {
		return parser.RootQuery
	}
	return parser.Root(c.Entry)
}

// LoadSuite reads and validates a suite file. Unknown YAML fields are
// rejected.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suite: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Suite
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse suite %s: %w", path, err)
	}
	s.Path = path

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("invalid suite %s: %w", path, err)
	}
	return &s, nil
}

// LoadDir loads every *.yaml file in dir, sorted by file name.
func LoadDir(dir string) ([]*Suite, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("scan corpus: %w", err)
	}
	sort.Strings(paths)

	suites := make([]*Suite, 0, len(paths))
	for _, p := range paths {
		s, err := LoadSuite(p)
		if err != nil {
			return nil, err
		}
		suites = append(suites, s)
	}
	return suites, nil
}

func (s *Suite) validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if len(s.Cases) == 0 {
		return errors.New("at least one case is required")
	}

	seen := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("case %d: name is required", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("case %q: duplicate name", c.Name)
		}
		seen[c.Name] = true

		if _, err := parser.ParseRootName(string(c.root())); err != nil {
			return fmt.Errorf("case %q: %w", c.Name, err)
		}
		hasRendered := c.Expect.Rendered != ""
		hasError := c.Expect.Error != nil
		if hasRendered == hasError {
			return fmt.Errorf("case %q: expect needs exactly one of rendered or error", c.Name)
		}
		if hasError && c.Expect.Error.Code == "" {
			return fmt.Errorf("case %q: expected error needs a code", c.Name)
		}
	}
	return nil
}

// Outcome is the result of checking one case.
type Outcome struct {
	Case     string
	Entry    string
	Rendered string
	Err      error

	// Failures describes every mismatch; empty when the case passed.
	Failures []string
}

// Passed reports whether the case met its expectation.
func (o Outcome) Passed() bool { return len(o.Failures) == 0 }

// Check converts one case and compares it with its expectation.
func Check(c Case, opts ...parser.Option) Outcome {
	if c.MaxNestingDepth > 0 {
		opts = append(slices.Clone(opts), parser.WithMaxNestingDepth(c.MaxNestingDepth))
	}

	out := Outcome{Case: c.Name, Entry: string(c.root())}
	res, err := parser.Parse(c.root(), c.Input, opts...)
	if err != nil {
		out.Err = err
	} else {
		out.Rendered = res.String()
	}

	if want := c.Expect.Error; want != nil {
		out.Failures = compareError(want, err)
		return out
	}
	if err != nil {
		out.Failures = append(out.Failures, fmt.Sprintf("unexpected error: %v", err))
		return out
	}
	if out.Rendered != c.Expect.Rendered {
		out.Failures = append(out.Failures,
			fmt.Sprintf("rendered mismatch:\n--- want\n%s\n--- got\n%s", c.Expect.Rendered, out.Rendered))
	}
	return out
}

func compareError(want *ExpectedError, err error) []string {
	if err == nil {
		return []string{fmt.Sprintf("expected %s error, conversion succeeded", want.Code)}
	}
	var pe *parser.Error
	if !errors.As(err, &pe) {
		return []string{fmt.Sprintf("expected %s error, got %v", want.Code, err)}
	}

	var failures []string
	if string(pe.Code) != want.Code {
		failures = append(failures, fmt.Sprintf("code: want %s, got %s", want.Code, pe.Code))
	}
	if want.Construct != "" && pe.Construct != want.Construct {
		failures = append(failures, fmt.Sprintf("construct: want %q, got %q", want.Construct, pe.Construct))
	}
	if want.Text != "" && pe.Text != want.Text {
		failures = append(failures, fmt.Sprintf("text: want %q, got %q", want.Text, pe.Text))
	}
	return failures
}

// Run checks every case of s concurrently, with at most workers cases in
// flight (no limit when workers < 1). Outcomes are returned in case order.
// Run only returns an error when ctx is cancelled.
func Run(ctx context.Context, s *Suite, workers int, opts ...parser.Option) ([]Outcome, error) {
	outcomes := make([]Outcome, len(s.Cases))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, c := range s.Cases {
		i, c := i, c
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outcomes[i] = Check(c, opts...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// Snapshot renders outcomes for golden comparison: one block per case
// with either the rendered AST or the error code and construct.
func Snapshot(outcomes []Outcome) []byte {
	var b strings.Builder
	for i, o := range outcomes {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "== %s [%s]\n", o.Case, o.Entry)
		if o.Err != nil {
			var pe *parser.Error
			if errors.As(o.Err, &pe) {
				b.WriteString("error " + string(pe.Code))
				if pe.Construct != "" {
					b.WriteString(" (" + pe.Construct + ")")
				}
			} else {
				b.WriteString("error " + o.Err.Error())
			}
			b.WriteString("\n")
			continue
		}
		b.WriteString(o.Rendered)
		b.WriteString("\n")
	}
	return []byte(b.String())
}
