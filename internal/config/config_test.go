package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, 64, c.Parser.MaxNestingDepth)
	assert.Equal(t, FormatText, c.Output.Format)
	assert.Empty(t, c.Catalog.Path)
}

func TestLoad_EmptyPath(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typeql.cue")
	src := `
parser: max_nesting_depth: 8
catalog: path: "queries.db"
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, c.Parser.MaxNestingDepth)
	assert.Equal(t, FormatText, c.Output.Format, "omitted field keeps its default")
	assert.Equal(t, "queries.db", c.Catalog.Path)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.cue"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr bool
		check   func(t *testing.T, c Config)
	}{
		{
			name: "json input",
			src:  `{"output": {"format": "json"}}`,
			check: func(t *testing.T, c Config) {
				assert.Equal(t, FormatJSON, c.Output.Format)
				assert.Equal(t, 64, c.Parser.MaxNestingDepth)
			},
		},
		{
			name: "zero depth",
			src:  `parser: max_nesting_depth: 0`,
			check: func(t *testing.T, c Config) {
				assert.Equal(t, 0, c.Parser.MaxNestingDepth)
			},
		},
		{name: "negative depth", src: `parser: max_nesting_depth: -1`, wantErr: true},
		{name: "fractional depth", src: `parser: max_nesting_depth: 1.5`, wantErr: true},
		{name: "unknown format", src: `output: format: "yaml"`, wantErr: true},
		{name: "unknown field", src: `colour: "red"`, wantErr: true},
		{name: "syntax error", src: `parser: {`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse("test.cue", []byte(tt.src))
			if tt.wantErr {
				require.Error(t, err)
				var ce *Error
				assert.True(t, errors.As(err, &ce))
				return
			}
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}

func TestError_Format(t *testing.T) {
	assert.Equal(t, "config: bad", (&Error{Message: "bad"}).Error())
	assert.Equal(t, "config x.cue: bad", (&Error{File: "x.cue", Message: "bad"}).Error())
}
