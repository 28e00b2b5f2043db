package pattern

import "strings"

// Pattern is a matchable clause of a query body.
//
// Variants:
//   - TypeVariable, ThingVariable: a single-variable pattern
//   - Conjunction: { p; q; }
//   - Disjunction: { p; } or { q; }
//   - Negation: not { p; }
//
// The converter currently produces only single-variable patterns; the
// compound variants exist so callers can build and render them.
type Pattern interface {
	pattern()
	String() string
}

// Conjunction matches when every pattern matches.
type Conjunction struct {
	Patterns []Pattern
}

func (Conjunction) pattern() {}

func (c Conjunction) String() string {
	var b strings.Builder
	b.WriteString("{ ")
	for _, p := range c.Patterns {
		b.WriteString(p.String())
		b.WriteString("; ")
	}
	b.WriteString("}")
	return b.String()
}

// Disjunction matches when any alternative matches.
type Disjunction struct {
	Patterns []Pattern
}

func (Disjunction) pattern() {}

func (d Disjunction) String() string {
	alts := make([]string, len(d.Patterns))
	for i, p := range d.Patterns {
		alts[i] = block(p)
	}
	return strings.Join(alts, " or ")
}

// Negation matches when Pattern does not.
type Negation struct {
	Pattern Pattern
}

func (Negation) pattern() {}

func (n Negation) String() string {
	return "not " + block(n.Pattern)
}

func block(p Pattern) string {
	if c, ok := p.(Conjunction); ok {
		return c.String()
	}
	return "{ " + p.String() + "; }"
}
