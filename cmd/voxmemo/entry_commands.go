package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"voxmemo/internal/catalog"
)

func newRenameCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <entry> <caption...>",
		Short: "Change the caption of a recording",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				entry, err := resolveEntry(cmd.Context(), a.catalog, args[0])
				if err != nil {
					return err
				}
				caption := strings.Join(args[1:], " ")
				if err := a.newBrowser(nil).Rename(cmd.Context(), entry.ID, caption); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %q\n", shortID(entry.ID), catalog.NormalizeCaption(caption))
				return nil
			})
		},
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	var purge bool

	cmd := &cobra.Command{
		Use:     "rm <entry>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a recording from the catalog",
		Long:    "Remove a recording from the catalog. The audio file stays on disk unless --purge is given.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				entry, err := resolveEntry(cmd.Context(), a.catalog, args[0])
				if err != nil {
					return err
				}
				if err := a.newBrowser(nil).Delete(cmd.Context(), entry.ID); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if purge {
					if err := purgeAudio(entry.FileURI); err != nil {
						return fmt.Errorf("removed %s from the catalog but kept its audio: %w", shortID(entry.ID), err)
					}
					fmt.Fprintf(out, "Removed %q and deleted its audio\n", entry.Caption)
					return nil
				}
				fmt.Fprintf(out, "Removed %q (audio kept at %s)\n", entry.Caption, displayFile(entry.FileURI))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&purge, "purge", false, "Also delete the audio file")
	return cmd
}

func newShareCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "share <entry>",
		Short: "Copy a recording into the export directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				entry, err := resolveEntry(cmd.Context(), a.catalog, args[0])
				if err != nil {
					return err
				}
				dest, err := a.newBrowser(nil).Share(cmd.Context(), entry.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %q to %s\n", entry.Caption, dest)
				return nil
			})
		},
	}
}
