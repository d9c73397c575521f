// events.go implements 'stackup events', with optional follow-mode polling.
package main

import (
	"time"

	"github.com/example/stackup/internal/config"
	"github.com/spf13/cobra"
)

func newEventsCommand(opts *config.Options) *cobra.Command {
	var follow bool
	cmd := &cobra.Command{
		Use:   "events STACK",
		Short: "Print the stack's event log, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := newStack(cmd, opts, args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			watcher := stack.Watch()
			if err := watcher.EachNewEvent(ctx, printEvent); err != nil {
				return err
			}
			if !follow {
				return nil
			}
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(opts.PollInterval):
				}
				if err := watcher.EachNewEvent(ctx, printEvent); err != nil {
					return err
				}
			}
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep polling for new events until interrupted")
	return cmd
}
