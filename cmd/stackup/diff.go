// diff.go implements 'stackup diff': compare local stack files against the
// live stack.
package main

import (
	"errors"
	"fmt"

	"github.com/example/stackup/internal/cfn"
	"github.com/example/stackup/internal/config"
	"github.com/example/stackup/internal/diff"
	"github.com/example/stackup/internal/docload"
	"github.com/spf13/cobra"
)

func newDiffCommand(opts *config.Options) *cobra.Command {
	var (
		templateFile   string
		parametersFile string
		overrides      []string
		tagsFile       string
		formatFlag     string
	)
	cmd := &cobra.Command{
		Use:   "diff STACK",
		Short: "Show what would change if the local files were deployed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := diff.ParseFormat(formatFlag)
			if err != nil {
				return err
			}
			planned, err := buildPlannedView(templateFile, parametersFile, overrides, tagsFile)
			if err != nil {
				return err
			}
			stack, err := newStack(cmd, opts, args[0])
			if err != nil {
				return err
			}
			current, err := buildCurrentView(cmd, stack, planned)
			if err != nil {
				return err
			}
			out, err := diff.Render(current, planned, format)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&templateFile, "template", "t", "", "Path to the planned template")
	cmd.Flags().StringVarP(&parametersFile, "parameters", "p", "", "Path to the planned parameter file")
	cmd.Flags().StringArrayVarP(&overrides, "override", "O", nil, "Parameter override as KEY=VALUE (repeatable)")
	cmd.Flags().StringVar(&tagsFile, "tags", "", "Path to the planned tag file")
	cmd.Flags().StringVar(&formatFlag, "format", string(diff.FormatColor), "Diff rendering: text, color, or html")
	return cmd
}

func buildPlannedView(templateFile, parametersFile string, overrides []string, tagsFile string) (diff.View, error) {
	var planned diff.View
	if templateFile != "" {
		doc, err := docload.Document(templateFile)
		if err != nil {
			return planned, err
		}
		planned.Template = doc
	}
	overrideValues, err := parseKeyValues(overrides)
	if err != nil {
		return planned, fmt.Errorf("--override: %w", err)
	}
	if parametersFile != "" || len(overrideValues) > 0 {
		fileValues := map[string]string{}
		if parametersFile != "" {
			values, err := docload.Values(parametersFile)
			if err != nil {
				return planned, err
			}
			fileValues = values
		}
		planned.Parameters = cfn.MergeValues(fileValues, overrideValues)
	}
	if tagsFile != "" {
		tags, err := docload.Values(tagsFile)
		if err != nil {
			return planned, err
		}
		planned.Tags = tags
	}
	return planned, nil
}

// buildCurrentView fetches the live side of every section the planned view
// compares. A stack that does not exist yet diffs against empty sections.
func buildCurrentView(cmd *cobra.Command, stack *cfn.Stack, planned diff.View) (diff.View, error) {
	var current diff.View
	ctx := cmd.Context()
	if planned.Template != nil {
		body, err := stack.Template(ctx)
		switch {
		case isMissingStack(err):
		case err != nil:
			return current, err
		case body != "":
			doc, err := docload.Parse([]byte(body))
			if err != nil {
				return current, fmt.Errorf("parse live template: %w", err)
			}
			current.Template = doc
		}
	}
	if planned.Parameters != nil {
		params, err := stack.Parameters(ctx)
		if isMissingStack(err) {
			params = map[string]string{}
		} else if err != nil {
			return current, err
		}
		current.Parameters = params
	}
	if planned.Tags != nil {
		tags, err := stack.Tags(ctx)
		if isMissingStack(err) {
			tags = map[string]string{}
		} else if err != nil {
			return current, err
		}
		current.Tags = tags
	}
	return current, nil
}

func isMissingStack(err error) bool {
	var missing *cfn.NoSuchStackError
	return errors.As(err, &missing)
}
