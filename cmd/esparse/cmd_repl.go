package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/nooga/esparse/pkg/ast"
	"github.com/nooga/esparse/pkg/errors"
	"github.com/nooga/esparse/pkg/parser"
	"github.com/nooga/esparse/pkg/source"
)

func newReplCmd() *cobra.Command {
	var flags parseFlags

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Parse input interactively and print each syntax tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd.Flags())
			if err != nil {
				return report(cmd.ErrOrStderr(), nil, err)
			}
			if err := parser.ValidatePlugins(opts.Plugins); err != nil {
				return report(cmd.ErrOrStderr(), nil, err)
			}
			runRepl(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func runRepl(opts parser.Options, stdout, stderr io.Writer) {
	state := liner.NewLiner()
	defer state.Close()
	state.SetCtrlCAborts(true)

	historyPath := replHistoryPath()
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			state.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(historyPath); err == nil {
				state.WriteHistory(f)
				f.Close()
			}
		}()
	}

	fmt.Fprintf(stdout, "esparse %s (plugins: %s)\n", version, strings.Join(opts.Plugins.Names(), ", "))

	var buffer strings.Builder

	for {
		prompt := "> "
		if buffer.Len() > 0 {
			prompt = "... "
		}
		input, err := state.Prompt(prompt)
		if err != nil {
			switch {
			case stderrors.Is(err, liner.ErrPromptAborted):
				fmt.Fprintln(stdout)
				buffer.Reset()
				continue
			case stderrors.Is(err, io.EOF):
				fmt.Fprintln(stdout)
				return
			default:
				fmt.Fprintf(stderr, "read error: %v\n", err)
				return
			}
		}
		buffer.WriteString(input)
		buffer.WriteString("\n")

		text := buffer.String()
		if strings.TrimSpace(text) == "" {
			buffer.Reset()
			continue
		}
		node, err := parseReplInput(text, opts)
		if err != nil {
			if isIncomplete(text, err) {
				continue
			}
			src := source.NewReplSource(text)
			if e, ok := errors.As(err); ok {
				errors.DisplayErrors(stderr, src.Content, []errors.Error{e})
			} else {
				fmt.Fprintln(stderr, err)
			}
			buffer.Reset()
			continue
		}

		buffer.Reset()
		state.AppendHistory(strings.TrimSpace(text))
		if err := writeJSON(stdout, node, false); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
	}
}

// parseReplInput reads text as one expression and, when that fails, as a
// program. The program error is the one reported.
func parseReplInput(text string, opts parser.Options) (*ast.Node, error) {
	src := source.NewReplSource(text)
	p, err := parser.New(src, opts)
	if err != nil {
		return nil, err
	}
	if node, err := p.ParseExpression(); err == nil {
		return node, nil
	}
	return parser.ParseSource(src, opts)
}

// isIncomplete reports whether err means the input stopped early, so that
// another line may complete it.
func isIncomplete(text string, err error) bool {
	var se *errors.SyntaxError
	if !stderrors.As(err, &se) {
		return false
	}
	if strings.HasPrefix(se.Msg, "Unterminated template") || strings.HasPrefix(se.Msg, "Unterminated comment") {
		return true
	}
	return se.StartPos >= len(strings.TrimRight(text, " \t\r\n"))
}

func replHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".esparse_history")
}
