package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"voxmemo/internal/playback"
)

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var start time.Duration

	cmd := &cobra.Command{
		Use:   "play <entry>",
		Short: "Play a recording until it ends",
		Long: "Play a recording by row number (as printed by list), id, or id prefix. " +
			"Only one voxmemo playback can be audible at a time.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				entry, err := resolveEntry(runCtx, a.catalog, args[0])
				if err != nil {
					return err
				}

				statuses, cancel := a.coordinator.Subscribe()
				defer cancel()

				if err := a.coordinator.Play(runCtx, entry); err != nil {
					return err
				}
				if start > 0 {
					if err := a.coordinator.Seek(runCtx, start.Milliseconds()); err != nil {
						return err
					}
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Playing %q (%s)\n", entry.Caption, shortID(entry.ID))
				if waitForPlaybackEnd(runCtx, statuses, out, shouldColorize(out)) {
					fmt.Fprintln(out, "Finished")
					return nil
				}
				_ = a.coordinator.Unload(context.WithoutCancel(runCtx))
				fmt.Fprintln(out, "Stopped")
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&start, "start", 0, "Start this far into the recording")
	return cmd
}

// waitForPlaybackEnd consumes statuses until the session goes idle (true) or
// ctx ends (false).
func waitForPlaybackEnd(ctx context.Context, statuses <-chan playback.Status, out io.Writer, live bool) bool {
	started := false
	for {
		select {
		case <-ctx.Done():
			return false
		case st, ok := <-statuses:
			if !ok {
				return started
			}
			if st.Loaded() {
				started = true
				if live {
					fmt.Fprintf(out, "\r  %s / %s ", formatClock(st.PositionMillis), formatClock(st.DurationMillis))
				}
				continue
			}
			if started {
				if live {
					fmt.Fprintln(out)
				}
				return true
			}
		}
	}
}
