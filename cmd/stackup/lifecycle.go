// lifecycle.go implements the cancel-update, wait, and status commands.
package main

import (
	"fmt"

	"github.com/example/stackup/internal/cfn"
	"github.com/example/stackup/internal/config"
	"github.com/spf13/cobra"
)

func newCancelUpdateCommand(opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel-update STACK",
		Short: "Cancel an in-progress stack update",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := newStack(cmd, opts, args[0])
			if err != nil {
				return err
			}
			outcome, err := stack.CancelUpdate(cmd.Context())
			if err != nil {
				return err
			}
			if outcome == cfn.OutcomeNoOp {
				fmt.Printf("Stack %s has no update in progress.\n", args[0])
				return nil
			}
			fmt.Printf("Update of stack %s cancelled.\n", args[0])
			return nil
		},
	}
}

func newWaitCommand(opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "wait STACK",
		Short: "Wait until the stack reaches a terminal status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := newStack(cmd, opts, args[0])
			if err != nil {
				return err
			}
			status, err := stack.Wait(cmd.Context())
			if err != nil {
				return err
			}
			if status == "" {
				fmt.Printf("Stack %s does not exist.\n", args[0])
				return nil
			}
			fmt.Println(status)
			return nil
		},
	}
}

func newStatusCommand(opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "status STACK",
		Short: "Print the stack's current status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := newStack(cmd, opts, args[0])
			if err != nil {
				return err
			}
			status, err := stack.Status(cmd.Context())
			if err != nil {
				return err
			}
			if status == "" {
				return &cfn.NoSuchStackError{Name: args[0]}
			}
			fmt.Println(status)
			return nil
		},
	}
}
