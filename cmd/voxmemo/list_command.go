package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"voxmemo/internal/catalog"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recordings, most recent first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				entries, err := a.catalog.Load(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return printEntriesJSON(cmd.OutOrStdout(), entries)
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No recordings yet; start one with `voxmemo record`")
					return nil
				}
				fmt.Fprintln(out, renderTable(entryColumns, entryRows(entries)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the catalog as JSON")
	return cmd
}

// printEntriesJSON writes entries as an indented array; an empty catalog is
// "[]" rather than null.
func printEntriesJSON(w io.Writer, entries []catalog.Entry) error {
	if entries == nil {
		entries = []catalog.Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
