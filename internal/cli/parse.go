package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexjpwalker/typeql/internal/catalog"
	"github.com/alexjpwalker/typeql/internal/parser"
)

// ParseOptions holds flags for the parse command.
type ParseOptions struct {
	*RootOptions
	Entry   string
	Catalog string

	// IDGenerator overrides catalog run ids (for testing).
	IDGenerator catalog.IDGenerator
}

// ParseResult is the JSON payload of a successful parse.
type ParseResult struct {
	Entry    string         `json:"entry"`
	Rendered string         `json:"rendered"`
	Entries  []EncodedEntry `json:"entries"`
	RunID    string         `json:"run_id,omitempty"`
}

// EncodedEntry is one content-addressed AST in canonical JSON.
type EncodedEntry struct {
	ID       string          `json:"id"`
	Root     string          `json:"root"`
	Encoded  json.RawMessage `json:"encoded"`
	Inserted *bool           `json:"inserted,omitempty"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Convert TypeQL text and print the AST",
		Long: `Convert TypeQL text from a file or stdin and print the result.

Text output is the AST rendered back to TypeQL. JSON output adds the
canonical encoding and content id of each converted query, pattern list or
variable. With --catalog the entries are recorded in a SQLite catalog.

Example:
  typeql parse query.tql
  echo 'match $x isa person;' | typeql parse --format json
  typeql parse --entry variable --catalog ./queries.db var.tql`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return runParse(cmd.Context(), opts, path, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Entry, "entry", "e", string(parser.RootQuery), "grammar entry point")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "record entries in this SQLite catalog (default from config)")

	return cmd
}

func runParse(ctx context.Context, opts *ParseOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	root, err := parser.ParseRootName(opts.Entry)
	if err != nil {
		formatter.Error("INVALID_ENTRY", err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid entry", err)
	}

	src, source, err := readSource(path, cmd.InOrStdin())
	if err != nil {
		formatter.Error("READ_FAILED", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read input", err)
	}

	res, err := parser.Parse(root, src, opts.parserOptions()...)
	if err != nil {
		formatter.ConversionError(err)
		return WrapExitError(ExitFailure, "conversion failed", err)
	}

	entries, err := catalog.Entries(src, res)
	if err != nil {
		formatter.Error("ENCODE_FAILED", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to encode", err)
	}

	out := ParseResult{
		Entry:    string(root),
		Rendered: res.String(),
		Entries:  make([]EncodedEntry, len(entries)),
	}
	for i, e := range entries {
		out.Entries[i] = EncodedEntry{ID: e.ID, Root: e.Root, Encoded: json.RawMessage(e.Encoded)}
	}

	dbPath := opts.Catalog
	if dbPath == "" {
		dbPath = opts.Config.Catalog.Path
	}
	if dbPath != "" && len(entries) > 0 {
		runID, inserted, err := recordEntries(ctx, opts, dbPath, source, entries)
		if err != nil {
			formatter.Error("CATALOG_FAILED", err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to record entries", err)
		}
		out.RunID = runID
		for i := range out.Entries {
			out.Entries[i].Inserted = &inserted[i]
		}
		formatter.VerboseLog("Recorded %d entr(ies) in %s (run %s)", len(entries), dbPath, runID)
	}

	return formatter.Success(out, out.Rendered)
}

func recordEntries(ctx context.Context, opts *ParseOptions, dbPath, source string, entries []catalog.Entry) (string, []bool, error) {
	catOpts := []catalog.Option{catalog.WithLogger(opts.Logger)}
	if opts.IDGenerator != nil {
		catOpts = append(catOpts, catalog.WithIDGenerator(opts.IDGenerator))
	}
	cat, err := catalog.Open(dbPath, catOpts...)
	if err != nil {
		return "", nil, err
	}
	defer cat.Close()

	runID, err := cat.BeginRun(ctx, source)
	if err != nil {
		return "", nil, err
	}
	inserted := make([]bool, len(entries))
	for i, e := range entries {
		ok, err := cat.Record(ctx, runID, e)
		if err != nil {
			return "", nil, err
		}
		inserted[i] = ok
	}
	return runID, inserted, nil
}

// readSource reads path, or r when path is "-". It returns the text and
// the source name recorded in the catalog.
func readSource(path string, r io.Reader) (string, string, error) {
	if path == "-" {
		b, err := io.ReadAll(r)
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), "stdin", nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	return string(b), path, nil
}
