package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agentic-research/caomdb/internal/ingest"
	"github.com/agentic-research/caomdb/internal/record"
	"github.com/davecgh/go-spew/spew"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
)

var mapFormat string

var mapCmd = &cobra.Command{
	Use:   "map [document]",
	Short: "Print the rows a document maps to without storing them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := absPaths(args)
		if err != nil {
			return err
		}
		rows, err := ingest.NewEngine(osfs.New("/"), nil).Map(paths[0])
		if err != nil {
			return err
		}
		return printRows(cmd.OutOrStdout(), rows, mapFormat)
	},
}

func init() {
	mapCmd.Flags().StringVarP(&mapFormat, "format", "f", "json", "Output format: json, dump or table")
	rootCmd.AddCommand(mapCmd)
}

func printRows(w io.Writer, rows []*record.Row, format string) error {
	switch format {
	case "json":
		out := make([]any, 0, len(rows))
		for _, r := range rows {
			out = append(out, map[string]any{
				"table":  r.Table().Name,
				"values": columnMap(r),
			})
		}
		_, err := fmt.Fprintln(w, oj.JSON(out, &ojg.Options{Indent: 2, Sort: true, TimeFormat: time.RFC3339Nano}))
		return err

	case "dump":
		cs := spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true}
		for _, r := range rows {
			_, _ = fmt.Fprintf(w, "%s\n", r)
			cs.Fdump(w, columnMap(r))
		}
		return nil

	case "table":
		for _, r := range rows {
			_, _ = fmt.Fprintf(w, "[%s]\n", r.Table().Name)
			names, values := r.Columns()
			width := 0
			for _, n := range names {
				width = max(width, len(n))
			}
			for i, n := range names {
				_, _ = fmt.Fprintf(w, "  %s%s  %v\n", n, strings.Repeat(" ", width-len(n)), values[i])
			}
		}
		return nil
	}
	return fmt.Errorf("unknown format %q", format)
}

// columnMap keys a row's values by database column name.
func columnMap(r *record.Row) map[string]any {
	names, values := r.Columns()
	m := make(map[string]any, len(names))
	for i, n := range names {
		m[n] = values[i]
	}
	return m
}
