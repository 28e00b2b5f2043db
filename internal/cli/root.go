package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/alexjpwalker/typeql/internal/config"
	"github.com/alexjpwalker/typeql/internal/parser"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	MaxDepth   int

	// Config is loaded before any subcommand runs, with flags applied.
	Config config.Config

	// Logger writes diagnostics to stderr. Debug level with --verbose.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{config.FormatText, config.FormatJSON}

// NewRootCommand creates the root command for the typeql CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "typeql",
		Short: "TypeQL semantic front end",
		Long: `Convert TypeQL text into a validated AST.

Queries, patterns, variables and labels are parsed, checked against the
rules the grammar cannot express, and printed as canonical TypeQL or as
canonical JSON. Converted inputs can be recorded in a SQLite catalog.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", config.FormatText, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a CUE or JSON config file")
	cmd.PersistentFlags().IntVar(&opts.MaxDepth, "max-depth", 0, "maximum nesting depth (default from config)")

	cmd.AddCommand(NewParseCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewReplCommand(opts))

	return cmd
}

// load reads the config file and lets explicitly set flags override it.
func (o *RootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Output.Format = o.Format
	}
	if flags.Changed("max-depth") {
		cfg.Parser.MaxNestingDepth = o.MaxDepth
	}
	if !isValidFormat(cfg.Output.Format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", cfg.Output.Format, ValidFormats))
	}
	o.Format = cfg.Output.Format
	o.Config = cfg

	o.Logger = newLogger(cmd.ErrOrStderr(), o.Verbose)
	o.Logger.Debug("config loaded", "file", o.ConfigPath, "format", cfg.Output.Format,
		"max_nesting_depth", cfg.Parser.MaxNestingDepth)
	return nil
}

// parserOptions returns the conversion options implied by the config.
func (o *RootOptions) parserOptions() []parser.Option {
	opts := []parser.Option{parser.WithMaxNestingDepth(o.Config.Parser.MaxNestingDepth)}
	if o.Logger != nil {
		opts = append(opts, parser.WithLogger(o.Logger))
	}
	return opts
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
