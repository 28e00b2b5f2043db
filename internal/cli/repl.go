package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/alexjpwalker/typeql/internal/catalog"
	"github.com/alexjpwalker/typeql/internal/config"
	"github.com/alexjpwalker/typeql/internal/parser"
)

const (
	replPrompt     = "typeql> "
	replContPrompt = "   ...> "
)

// ReplOptions holds flags for the repl command.
type ReplOptions struct {
	*RootOptions
	Entry   string
	History string
}

// NewReplCommand creates the repl command.
func NewReplCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Convert TypeQL interactively",
		Long: `Read TypeQL interactively and print each converted AST.

Input is buffered across lines; an empty line submits it. Commands start
with a dot: .entry <root> switches the grammar entry point, .help lists
commands and .quit exits.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Entry, "entry", "e", string(parser.RootQuery), "initial grammar entry point")
	cmd.Flags().StringVar(&opts.History, "history", "", "history file (none when empty)")

	return cmd
}

func runRepl(opts *ReplOptions, cmd *cobra.Command) error {
	root, err := parser.ParseRootName(opts.Entry)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid entry", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     opts.History,
		AutoComplete:    newReplCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to initialize REPL", err)
	}
	defer func() { _ = rl.Close() }()

	s := newReplSession(root, opts.formatter(cmd), opts.parserOptions())
	fmt.Fprintln(cmd.OutOrStdout(), "TypeQL REPL. An empty line submits, .help lists commands.")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			s.reset()
			rl.SetPrompt(s.prompt())
			continue
		}
		if errors.Is(err, io.EOF) {
			s.Feed("")
			return nil
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "read failed", err)
		}
		if !s.Feed(line) {
			return nil
		}
		rl.SetPrompt(s.prompt())
	}
}

func newReplCompleter() *readline.PrefixCompleter {
	roots := make([]readline.PrefixCompleterInterface, 0, len(parser.Roots()))
	for _, r := range parser.Roots() {
		roots = append(roots, readline.PcItem(string(r)))
	}
	return readline.NewPrefixCompleter(
		readline.PcItem(".entry", roots...),
		readline.PcItem(".help"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}

// replSession holds the line buffer and current entry point. It is driven
// one line at a time, independent of the terminal.
type replSession struct {
	root parser.Root
	out  *OutputFormatter
	opts []parser.Option
	buf  strings.Builder
}

func newReplSession(root parser.Root, out *OutputFormatter, opts []parser.Option) *replSession {
	return &replSession{root: root, out: out, opts: opts}
}

func (s *replSession) prompt() string {
	if s.buf.Len() > 0 {
		return replContPrompt
	}
	return replPrompt
}

func (s *replSession) reset() { s.buf.Reset() }

// Feed handles one input line and reports whether the session continues.
func (s *replSession) Feed(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		if s.buf.Len() > 0 {
			s.submit()
		}
		return true
	}
	if s.buf.Len() == 0 && strings.HasPrefix(trimmed, ".") {
		return s.command(trimmed)
	}
	s.buf.WriteString(line)
	s.buf.WriteString("\n")
	return true
}

func (s *replSession) command(line string) bool {
	parts := strings.Fields(line)
	switch parts[0] {
	case ".quit", ".exit":
		return false
	case ".help":
		fmt.Fprint(s.out.Writer, `Commands:
  .entry [root]   Show or switch the grammar entry point
  .help           Show this help message
  .quit / .exit   Exit the REPL

Input is buffered until an empty line.
`)
	case ".entry":
		if len(parts) == 1 {
			fmt.Fprintf(s.out.Writer, "entry: %s\n", s.root)
			return true
		}
		root, err := parser.ParseRootName(parts[1])
		if err != nil {
			s.out.Error("INVALID_ENTRY", err.Error(), nil)
			return true
		}
		s.root = root
		fmt.Fprintf(s.out.Writer, "entry: %s\n", s.root)
	default:
		s.out.Error("UNKNOWN_COMMAND", fmt.Sprintf("unknown command %s (type .help for commands)", parts[0]), nil)
	}
	return true
}

func (s *replSession) submit() {
	src := s.buf.String()
	s.buf.Reset()

	res, err := parser.Parse(s.root, src, s.opts...)
	if err != nil {
		s.out.ConversionError(err)
		return
	}
	out := ParseResult{Entry: string(s.root), Rendered: res.String(), Entries: []EncodedEntry{}}
	if s.out.Format == config.FormatJSON {
		entries, err := catalog.Entries(src, res)
		if err != nil {
			s.out.Error("ENCODE_FAILED", err.Error(), nil)
			return
		}
		for _, e := range entries {
			out.Entries = append(out.Entries, EncodedEntry{ID: e.ID, Root: e.Root, Encoded: []byte(e.Encoded)})
		}
	}
	s.out.Success(out, out.Rendered)
}
