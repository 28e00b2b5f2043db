package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexjpwalker/typeql/internal/catalog"
	"github.com/alexjpwalker/typeql/internal/config"
)

type parseResponse struct {
	Status string      `json:"status"`
	Data   ParseResult `json:"data"`
	Error  *CLIError   `json:"error"`
}

func decodeParse(t *testing.T, out string) parseResponse {
	t.Helper()
	var resp parseResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

func TestParse_Text(t *testing.T) {
	tests := []struct {
		name  string
		entry string
		input string
		want  string
	}{
		{
			name:  "query",
			entry: "query",
			input: "match $x isa person, has name $n; get $x; limit 5;",
			want:  "match\n$x isa person, has name $n;\nget $x;\nlimit 5;\n",
		},
		{
			name:  "queries",
			entry: "queries",
			input: "match $x isa person; match $y isa company;",
			want:  "match\n$x isa person;\n\nmatch\n$y isa company;\n",
		},
		{
			name:  "patterns",
			entry: "patterns",
			input: "$x isa person; $y isa company;",
			want:  "$x isa person;\n$y isa company;\n",
		},
		{
			name:  "variable",
			entry: "variable",
			input: "$x isa person",
			want:  "$x isa person\n",
		},
		{
			name:  "label",
			entry: "label",
			input: "person",
			want:  "person\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, strings.NewReader(tt.input), "parse", "--entry", tt.entry)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stdout)
		})
	}
}

func TestParse_File(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "q.tql", "match $x isa person;\n")

	stdout, _, err := execute(t, nil, "parse", path)
	require.NoError(t, err)
	assert.Equal(t, "match\n$x isa person;\n", stdout)
}

func TestParse_JSON(t *testing.T) {
	stdout, _, err := execute(t, strings.NewReader("match $x isa person;"), "--format", "json", "parse")
	require.NoError(t, err)

	resp := decodeParse(t, stdout)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "query", resp.Data.Entry)
	assert.Equal(t, "match\n$x isa person;", resp.Data.Rendered)
	require.Len(t, resp.Data.Entries, 1)
	assert.Equal(t, catalog.RootQuery, resp.Data.Entries[0].Root)
	assert.Len(t, resp.Data.Entries[0].ID, 64)
	assert.NotEmpty(t, resp.Data.Entries[0].Encoded)
	assert.Nil(t, resp.Data.Entries[0].Inserted, "nothing recorded without a catalog")
	assert.Empty(t, resp.Data.RunID)
}

func TestParse_LabelHasNoEntries(t *testing.T) {
	stdout, _, err := execute(t, strings.NewReader("person"), "--format", "json", "parse", "-e", "label")
	require.NoError(t, err)

	resp := decodeParse(t, stdout)
	assert.Equal(t, "person", resp.Data.Rendered)
	assert.Empty(t, resp.Data.Entries)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		input    string
		exitCode int
		code     string
	}{
		{
			name:     "invalid entry",
			args:     []string{"parse", "--entry", "statement"},
			exitCode: ExitCommandError,
			code:     "INVALID_ENTRY",
		},
		{
			name:     "missing file",
			args:     []string{"parse", filepath.Join(t.TempDir(), "missing.tql")},
			exitCode: ExitCommandError,
			code:     "READ_FAILED",
		},
		{
			name:     "syntax error",
			args:     []string{"parse"},
			input:    "match $x isa;",
			exitCode: ExitFailure,
			code:     "SYNTAX_ERROR",
		},
		{
			name:     "unsupported construct",
			args:     []string{"parse"},
			input:    "match $x isa person; group $x;",
			exitCode: ExitFailure,
			code:     "UNSUPPORTED_CONSTRUCT",
		},
		{
			name:     "illegal grammar",
			args:     []string{"parse", "-e", "variable"},
			input:    "$x sub a, sub b",
			exitCode: ExitFailure,
			code:     "ILLEGAL_GRAMMAR",
		},
		{
			name:     "definables",
			args:     []string{"parse", "-e", "definables"},
			input:    "person sub entity;",
			exitCode: ExitFailure,
			code:     "UNSUPPORTED_CONSTRUCT",
		},
		{
			name:     "deeply nested blocks",
			args:     []string{"parse"},
			input:    "match " + strings.Repeat("{ ", 200_000) + "$x isa person;" + strings.Repeat(" };", 200_000),
			exitCode: ExitFailure,
			code:     "NESTING_TOO_DEEP",
		},
		{
			name:     "nesting too deep",
			args:     []string{"--max-depth", "2", "parse"},
			input:    "match $x isa person;",
			exitCode: ExitFailure,
			code:     "NESTING_TOO_DEEP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--format", "json"}, tt.args...)
			stdout, _, err := execute(t, strings.NewReader(tt.input), args...)
			require.Error(t, err)
			assert.Equal(t, tt.exitCode, GetExitCode(err))

			resp := decodeParse(t, stdout)
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestParse_TextError(t *testing.T) {
	stdout, _, err := execute(t, strings.NewReader("match $x isa person; group $x;"), "parse")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, strings.HasPrefix(stdout, "Error [UNSUPPORTED_CONSTRUCT]: 1:"), stdout)
}

func TestParse_RecordsInCatalog(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "queries.db")
	input := "match $x isa person;"

	stdout, _, err := execute(t, strings.NewReader(input), "--format", "json", "parse", "--catalog", dbPath)
	require.NoError(t, err)
	first := decodeParse(t, stdout)
	require.Len(t, first.Data.Entries, 1)
	assert.Len(t, first.Data.RunID, 36)
	require.NotNil(t, first.Data.Entries[0].Inserted)
	assert.True(t, *first.Data.Entries[0].Inserted)

	stdout, _, err = execute(t, strings.NewReader(input), "--format", "json", "parse", "--catalog", dbPath)
	require.NoError(t, err)
	second := decodeParse(t, stdout)
	assert.NotEqual(t, first.Data.RunID, second.Data.RunID)
	assert.Equal(t, first.Data.Entries[0].ID, second.Data.Entries[0].ID)
	require.NotNil(t, second.Data.Entries[0].Inserted)
	assert.False(t, *second.Data.Entries[0].Inserted, "unchanged query keeps the first entry")

	cat, err := catalog.Open(dbPath)
	require.NoError(t, err)
	defer cat.Close()

	entries, err := cat.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, first.Data.RunID, entries[0].RunID)
	assert.Equal(t, input, entries[0].Source)

	runs, err := cat.Runs(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "stdin", runs[0].Source)
}

func TestParse_CatalogFromConfig(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "queries.db")
	cfg := writeFile(t, dir, "typeql.json", `{"catalog": {"path": "`+dbPath+`"}}`)

	_, _, err := execute(t, strings.NewReader("$x isa person; $y isa company;"),
		"--config", cfg, "parse", "-e", "patterns")
	require.NoError(t, err)

	cat, err := catalog.Open(dbPath)
	require.NoError(t, err)
	defer cat.Close()

	entries, err := cat.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, catalog.RootPatterns, entries[0].Root)
	assert.Equal(t, "$x isa person;\n$y isa company;\n", entries[0].Rendered)
}

func TestRunParse_FixedRunID(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "queries.db")
	opts := &ParseOptions{
		RootOptions: &RootOptions{Format: "json", Config: config.Default()},
		Entry:       "variable",
		Catalog:     dbPath,
		IDGenerator: catalog.NewFixedGenerator("run-1"),
	}

	out := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetIn(strings.NewReader("$x isa person"))

	require.NoError(t, runParse(context.Background(), opts, "-", cmd))

	resp := decodeParse(t, out.String())
	assert.Equal(t, "run-1", resp.Data.RunID)
	require.Len(t, resp.Data.Entries, 1)
	assert.Equal(t, catalog.RootVariable, resp.Data.Entries[0].Root)
}
