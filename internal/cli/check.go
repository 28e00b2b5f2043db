package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alexjpwalker/typeql/internal/config"
	"github.com/alexjpwalker/typeql/internal/parser"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Entry   string
	Workers int
}

// FileResult is the outcome of converting one file.
type FileResult struct {
	Path    string `json:"path"`
	OK      bool   `json:"ok"`
	Count   int    `json:"count,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// CheckSummary is the JSON payload of the check command.
type CheckSummary struct {
	Files  []FileResult `json:"files"`
	Failed int          `json:"failed"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <path>...",
		Short: "Convert every .tql file and report failures",
		Long: `Convert every .tql file under the given paths concurrently.

Directories are searched recursively. A table lists each file with the
number of converted items or the error that rejected it. The command exits
with status 1 if any file fails.

Example:
  typeql check ./queries
  typeql check --entry patterns a.tql b.tql`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Entry, "entry", "e", string(parser.RootQueries), "grammar entry point")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "j", 0, "files converted in parallel (default GOMAXPROCS)")

	return cmd
}

func runCheck(ctx context.Context, opts *CheckOptions, paths []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	root, err := parser.ParseRootName(opts.Entry)
	if err != nil {
		formatter.Error("INVALID_ENTRY", err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid entry", err)
	}

	files, err := findTQLFiles(paths)
	if err != nil {
		formatter.Error("SCAN_FAILED", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to scan paths", err)
	}
	if len(files) == 0 {
		formatter.Error("NO_FILES", "no .tql files found", nil)
		return NewExitError(ExitCommandError, "no .tql files found")
	}
	formatter.VerboseLog("Checking %d file(s)", len(files))

	results, err := checkFiles(ctx, files, root, opts.Workers, opts.parserOptions())
	if err != nil {
		return WrapExitError(ExitCommandError, "check interrupted", err)
	}

	summary := CheckSummary{Files: results}
	for _, r := range results {
		if !r.OK {
			summary.Failed++
		}
	}

	if opts.Format == config.FormatJSON {
		if err := formatter.Success(summary, ""); err != nil {
			return err
		}
	} else {
		renderCheckTable(cmd.OutOrStdout(), summary)
	}

	if summary.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d file(s) failed", summary.Failed, len(results)))
	}
	return nil
}

// checkFiles converts files concurrently. Results keep the order of files.
func checkFiles(ctx context.Context, files []string, root parser.Root, workers int, opts []parser.Option) ([]FileResult, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]FileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = checkFile(path, root, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func checkFile(path string, root parser.Root, opts []parser.Option) FileResult {
	r := FileResult{Path: path}

	src, err := os.ReadFile(path)
	if err != nil {
		r.Code = "READ_FAILED"
		r.Message = err.Error()
		return r
	}

	res, err := parser.Parse(root, string(src), opts...)
	if err != nil {
		r.Code = "ERROR"
		r.Message = err.Error()
		var pe *parser.Error
		if errors.As(err, &pe) {
			r.Code = string(pe.Code)
			r.Message = pe.Message
			if pe.Pos.Line > 0 {
				r.Message = fmt.Sprintf("%d:%d: %s", pe.Pos.Line, pe.Pos.Column, pe.Message)
			}
		}
		return r
	}

	r.OK = true
	switch {
	case len(res.Queries) > 0:
		r.Count = len(res.Queries)
	case len(res.Patterns) > 0:
		r.Count = len(res.Patterns)
	default:
		r.Count = 1
	}
	return r
}

// findTQLFiles expands directories into the .tql files beneath them.
// Explicit file arguments are kept whatever their extension.
func findTQLFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(path) == ".tql" {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

func renderCheckTable(w io.Writer, s CheckSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"FILE", "STATUS", "DETAIL"})

	for _, r := range s.Files {
		if r.OK {
			t.AppendRow(table.Row{r.Path, "ok", fmt.Sprintf("%d converted", r.Count)})
			continue
		}
		t.AppendRow(table.Row{r.Path, r.Code, r.Message})
	}

	t.Render()
	fmt.Fprintf(w, "(%d file(s), %d failed)\n", len(s.Files), s.Failed)
}
