// show.go implements the read-only display commands: template, parameters,
// tags, outputs, resources, and inspect.
package main

import (
	"context"
	"fmt"

	"github.com/example/stackup/internal/cfn"
	"github.com/example/stackup/internal/config"
	"github.com/example/stackup/internal/render"
	"github.com/spf13/cobra"
)

func newTemplateCommand(opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "template STACK",
		Short: "Print the stack's current template body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := newStack(cmd, opts, args[0])
			if err != nil {
				return err
			}
			body, err := stack.Template(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Print(body)
			return nil
		},
	}
}

func newParametersCommand(opts *config.Options) *cobra.Command {
	return newMapCommand(opts, "parameters", "Print the stack's current parameters",
		func(ctx context.Context, stack *cfn.Stack) (map[string]string, error) {
			return stack.Parameters(ctx)
		})
}

func newTagsCommand(opts *config.Options) *cobra.Command {
	return newMapCommand(opts, "tags", "Print the stack's current tags",
		func(ctx context.Context, stack *cfn.Stack) (map[string]string, error) {
			return stack.Tags(ctx)
		})
}

func newOutputsCommand(opts *config.Options) *cobra.Command {
	return newMapCommand(opts, "outputs", "Print the stack's outputs",
		func(ctx context.Context, stack *cfn.Stack) (map[string]string, error) {
			return stack.Outputs(ctx)
		})
}

func newResourcesCommand(opts *config.Options) *cobra.Command {
	return newMapCommand(opts, "resources", "Print the stack's logical to physical resource ids",
		func(ctx context.Context, stack *cfn.Stack) (map[string]string, error) {
			return stack.Resources(ctx)
		})
}

func newMapCommand(opts *config.Options, use, short string, fetch func(context.Context, *cfn.Stack) (map[string]string, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " STACK",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := newStack(cmd, opts, args[0])
			if err != nil {
				return err
			}
			values, err := fetch(cmd.Context(), stack)
			if err != nil {
				return err
			}
			out, err := render.Document(values, opts.OutputFormat)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
	opts.BindOutputFlag(cmd.Flags())
	return cmd
}

func newInspectCommand(opts *config.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect STACK",
		Short: "Print the stack's status, parameters, tags, resources, and outputs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := newStack(cmd, opts, args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			status, err := stack.Status(ctx)
			if err != nil {
				return err
			}
			if status == "" {
				return &cfn.NoSuchStackError{Name: args[0]}
			}
			parameters, err := stack.Parameters(ctx)
			if err != nil {
				return err
			}
			tags, err := stack.Tags(ctx)
			if err != nil {
				return err
			}
			resources, err := stack.Resources(ctx)
			if err != nil {
				return err
			}
			outputs, err := stack.Outputs(ctx)
			if err != nil {
				return err
			}
			report := map[string]any{
				"Status":     status,
				"Parameters": parameters,
				"Tags":       tags,
				"Resources":  resources,
				"Outputs":    outputs,
			}
			out, err := render.Document(report, opts.OutputFormat)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
	opts.BindOutputFlag(cmd.Flags())
	return cmd
}
