package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/alexjpwalker/typeql/internal/catalog"
	"github.com/alexjpwalker/typeql/internal/config"
)

// CatalogOptions holds flags shared by the catalog subcommands.
type CatalogOptions struct {
	*RootOptions
	Path string
}

// EntrySummary is one catalog entry in JSON output.
type EntrySummary struct {
	Seq       int64           `json:"seq"`
	ID        string          `json:"id"`
	RunID     string          `json:"run_id"`
	Root      string          `json:"root"`
	QueryType string          `json:"query_type,omitempty"`
	Rendered  string          `json:"rendered"`
	Encoded   json.RawMessage `json:"encoded,omitempty"`
}

// NewCatalogCommand creates the catalog command group.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect a query catalog",
		Long: `Inspect the SQLite catalog written by 'typeql parse --catalog'.

Entries are content addressed: the id is a hash of the canonical AST, so
re-recording an unchanged query keeps the first entry.`,
	}

	cmd.PersistentFlags().StringVar(&opts.Path, "catalog", "", "path to the SQLite catalog (default from config)")

	cmd.AddCommand(newCatalogListCommand(opts))
	cmd.AddCommand(newCatalogRunsCommand(opts))
	cmd.AddCommand(newCatalogShowCommand(opts))

	return cmd
}

func newCatalogListCommand(opts *CatalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List catalog entries in recording order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer cat.Close()

			entries, err := cat.List(cmd.Context())
			if err != nil {
				opts.formatter(cmd).Error("CATALOG_FAILED", err.Error(), nil)
				return WrapExitError(ExitCommandError, "failed to list entries", err)
			}

			if opts.Format == config.FormatJSON {
				out := make([]EntrySummary, len(entries))
				for i, e := range entries {
					out[i] = summarize(e, false)
				}
				return opts.formatter(cmd).Success(out, "")
			}
			renderEntryTable(cmd.OutOrStdout(), entries)
			return nil
		},
	}
}

func newCatalogRunsCommand(opts *CatalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "runs",
		Short:         "List recording runs",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer cat.Close()

			runs, err := cat.Runs(cmd.Context())
			if err != nil {
				opts.formatter(cmd).Error("CATALOG_FAILED", err.Error(), nil)
				return WrapExitError(ExitCommandError, "failed to list runs", err)
			}

			if opts.Format == config.FormatJSON {
				return opts.formatter(cmd).Success(runs, "")
			}
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"SEQ", "RUN", "SOURCE"})
			for _, r := range runs {
				t.AppendRow(table.Row{r.Seq, r.ID, r.Source})
			}
			t.Render()
			return nil
		},
	}
}

func newCatalogShowCommand(opts *CatalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <id>",
		Short:         "Show one entry with its canonical encoding",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)
			cat, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer cat.Close()

			e, err := cat.Get(cmd.Context(), args[0])
			if errors.Is(err, catalog.ErrNotFound) {
				formatter.Error("NOT_FOUND", err.Error(), nil)
				return WrapExitError(ExitFailure, "entry not found", err)
			}
			if err != nil {
				formatter.Error("CATALOG_FAILED", err.Error(), nil)
				return WrapExitError(ExitCommandError, "failed to read entry", err)
			}

			text := fmt.Sprintf("%s\n\n%s", e.Rendered, e.Encoded)
			return formatter.Success(summarize(e, true), text)
		},
	}
}

func (o *CatalogOptions) open(cmd *cobra.Command) (*catalog.Catalog, error) {
	path := o.Path
	if path == "" {
		path = o.Config.Catalog.Path
	}
	if path == "" {
		o.formatter(cmd).Error("NO_CATALOG", "no catalog path: use --catalog or set catalog.path in the config", nil)
		return nil, NewExitError(ExitCommandError, "no catalog path")
	}

	cat, err := catalog.Open(path, catalog.WithLogger(o.Logger))
	if err != nil {
		o.formatter(cmd).Error("CATALOG_FAILED", err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to open catalog", err)
	}
	return cat, nil
}

func summarize(e catalog.Entry, withEncoding bool) EntrySummary {
	s := EntrySummary{
		Seq:       e.Seq,
		ID:        e.ID,
		RunID:     e.RunID,
		Root:      e.Root,
		QueryType: e.QueryType,
		Rendered:  e.Rendered,
	}
	if withEncoding {
		s.Encoded = json.RawMessage(e.Encoded)
	}
	return s
}

func renderEntryTable(w io.Writer, entries []catalog.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "(0 entries)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"SEQ", "ID", "ROOT", "TYPE", "RENDERED"})
	for _, e := range entries {
		t.AppendRow(table.Row{e.Seq, shortID(e.ID), e.Root, e.QueryType, oneLine(e.Rendered)})
	}
	t.Render()
	fmt.Fprintf(w, "(%d entries)\n", len(entries))
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// oneLine collapses a rendered AST for a table cell.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
