package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nooga/esparse/pkg/parser"
)

func newPluginsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plugins",
		Short: "List the known plugin names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listPlugins(cmd.OutOrStdout())
		},
	}
}

func listPlugins(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tDESCRIPTION")
	for _, info := range parser.KnownPlugins() {
		kind := "syntax"
		switch {
		case info.Layer:
			kind = "layer"
		case info.Builtin:
			kind = "builtin"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, kind, info.Description)
	}
	return tw.Flush()
}
