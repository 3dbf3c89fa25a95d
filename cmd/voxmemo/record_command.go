package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"voxmemo/internal/capture"
	"voxmemo/internal/catalog"
)

func newRecordCommand(ctx *commandContext) *cobra.Command {
	var caption string
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a new memo",
		Long: "Record from the configured input until Enter is pressed, the --duration " +
			"elapses, or the command is interrupted. The recording is then added to the catalog.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if duration < 0 {
				return errors.New("duration must be positive")
			}
			return ctx.withApp(func(a *app) error {
				runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				out := cmd.OutOrStdout()
				session := a.newCaptureSession()
				if err := session.Start(runCtx); err != nil {
					return err
				}
				if duration > 0 {
					fmt.Fprintf(out, "Recording for %s... press Ctrl-C to stop early\n", duration)
				} else {
					fmt.Fprintln(out, "Recording... press Enter to stop")
				}

				waitForRecordingEnd(runCtx, cmd.InOrStdin(), duration, session, out, shouldColorize(out))
				elapsed := session.Elapsed()

				// An interrupt ends the wait; the recording is still finalized.
				entry, ok, err := session.Stop(context.WithoutCancel(runCtx))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Nothing was recorded")
					return nil
				}
				if strings.TrimSpace(caption) != "" {
					if err := a.catalog.Rename(context.WithoutCancel(runCtx), entry.ID, caption); err != nil {
						return fmt.Errorf("recording saved as %s but caption not applied: %w", shortID(entry.ID), err)
					}
					entry.Caption = catalog.NormalizeCaption(caption)
				}
				fmt.Fprintf(out, "Saved %q (%s, %s)\n", entry.Caption, shortID(entry.ID), capture.FormatElapsed(elapsed))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&caption, "caption", "", "Caption for the new recording")
	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "Stop automatically after this long")
	return cmd
}

// waitForRecordingEnd blocks until ctx ends, duration elapses, or (without a
// duration) a line or EOF arrives on in. On a terminal the elapsed time is
// redrawn every second.
func waitForRecordingEnd(ctx context.Context, in io.Reader, duration time.Duration, session *capture.Session, out io.Writer, live bool) {
	var deadline <-chan time.Time
	var lines chan struct{}
	if duration > 0 {
		timer := time.NewTimer(duration)
		defer timer.Stop()
		deadline = timer.C
	} else {
		lines = make(chan struct{})
		go func() {
			reader := bufio.NewReader(in)
			_, _ = reader.ReadString('\n')
			close(lines)
		}()
	}

	var tick <-chan time.Time
	if live {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		tick = ticker.C
		defer fmt.Fprintln(out)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline:
			return
		case <-lines:
			return
		case <-tick:
			fmt.Fprintf(out, "\r  %s", capture.FormatElapsed(session.Elapsed()))
		}
	}
}
