package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				out := cmd.OutOrStdout()
				if strings.TrimSpace(a.cfg.Notifications.NtfyTopic) == "" {
					fmt.Fprintln(out, "Notifications not configured; set notifications.ntfy_topic or VOXMEMO_NTFY_TOPIC")
					return nil
				}
				if err := a.notifier.TestNotification(cmd.Context()); err != nil {
					return fmt.Errorf("send test notification: %w", err)
				}
				fmt.Fprintln(out, "Test notification sent")
				return nil
			})
		},
	}
}
