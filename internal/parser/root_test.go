package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRootName(t *testing.T) {
	for _, r := range Roots() {
		got, err := ParseRootName(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}

	_, err := ParseRootName("statement")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown entry "statement"`)
	assert.Contains(t, err.Error(), "schema_rule")
}

func TestParse_Roots(t *testing.T) {
	tests := []struct {
		root     Root
		src      string
		rendered string
	}{
		{RootQuery, `match $x isa person;`, "match\n$x isa person;"},
		{RootQueries, `match $x isa person; match $y isa company;`, "match\n$x isa person;\n\nmatch\n$y isa company;"},
		{RootPattern, `$x isa person;`, "$x isa person"},
		{RootPatterns, `$x isa person; $y isa company;`, "$x isa person;\n$y isa company;"},
		{RootVariable, `$x isa person`, "$x isa person"},
		{RootLabel, `person`, "person"},
	}
	for _, tt := range tests {
		t.Run(string(tt.root), func(t *testing.T) {
			res, err := Parse(tt.root, tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.root, res.Root)
			assert.Equal(t, tt.rendered, res.String())
		})
	}
}

func TestParse_UnsupportedRoots(t *testing.T) {
	_, err := Parse(RootDefinables, `person sub entity;`)
	assert.True(t, IsUnsupported(err))

	_, err = Parse(RootSchemaRule, `rule friendship-rule: when { $x isa person; } then { (friend: $x) isa friendship; }`)
	assert.True(t, IsUnsupported(err))
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(RootQuery, `match $x isa`)
	assert.True(t, IsSyntaxError(err))

	_, err = Parse(Root("nope"), `person`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown entry")
}

func TestParse_PassesOptions(t *testing.T) {
	_, err := Parse(RootQuery, `match $x isa person;`, WithMaxNestingDepth(2))
	assert.True(t, IsNestingTooDeep(err))
}
