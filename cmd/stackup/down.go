// down.go implements 'stackup down': delete a stack and wait for it to go.
package main

import (
	"fmt"

	"github.com/example/stackup/internal/cfn"
	"github.com/example/stackup/internal/config"
	"github.com/spf13/cobra"
)

func newDownCommand(opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:     "down STACK",
		Aliases: []string{"delete", "destroy"},
		Short:   "Delete a stack and wait for the deletion to finish",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := newStack(cmd, opts, args[0])
			if err != nil {
				return err
			}
			outcome, err := stack.Delete(cmd.Context())
			if err != nil {
				return err
			}
			if outcome == cfn.OutcomeNoOp {
				fmt.Printf("Stack %s does not exist.\n", args[0])
				return nil
			}
			fmt.Printf("Stack %s deleted.\n", args[0])
			return nil
		},
	}
}
