package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nooga/esparse/pkg/ast"
	"github.com/nooga/esparse/pkg/errors"
	"github.com/nooga/esparse/pkg/parser"
	"github.com/nooga/esparse/pkg/source"
)

func newParseCmd() *cobra.Command {
	var flags parseFlags
	var expression bool
	var compact bool

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a file (or stdin) and print its syntax tree as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd.Flags())
			if err != nil {
				return report(cmd.ErrOrStderr(), nil, err)
			}

			src, err := readSource(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if opts.SourceFilename == "" && src.IsFile() {
				opts.SourceFilename = src.Name
			}

			var node *ast.Node
			if expression {
				var p *parser.Parser
				if p, err = parser.New(src, opts); err == nil {
					node, err = p.ParseExpression()
				}
			} else {
				node, err = parser.ParseSource(src, opts)
			}
			if err != nil {
				return report(cmd.ErrOrStderr(), src, err)
			}
			return writeJSON(cmd.OutOrStdout(), node, compact)
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().BoolVarP(&expression, "expression", "e", false, "parse the input as a single expression")
	cmd.Flags().BoolVar(&compact, "compact", false, "print JSON without indentation")
	return cmd
}

func readSource(args []string, stdin io.Reader) (*source.SourceFile, error) {
	if len(args) == 1 {
		return source.ReadFile(args[0])
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	content, err := source.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding stdin: %w", err)
	}
	return source.NewStdinSource(content), nil
}

// report prints err with a source excerpt and wraps it with the exit code
// for its kind.
func report(w io.Writer, src *source.SourceFile, err error) error {
	e, ok := errors.As(err)
	if !ok {
		return err
	}
	text := ""
	if src != nil {
		text = src.Content
	}
	errors.DisplayErrors(w, text, []errors.Error{e})
	code := exitSyntax
	if e.Kind() == "Config" {
		code = exitConfig
	}
	return &exitError{code: code, err: err}
}

func writeJSON(w io.Writer, node *ast.Node, compact bool) error {
	enc := json.NewEncoder(w)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(node)
}
