// up.go implements 'stackup up': create or update a stack, optionally
// reviewing a change set first.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/example/stackup/internal/cfn"
	"github.com/example/stackup/internal/config"
	"github.com/example/stackup/internal/docload"
	"github.com/spf13/cobra"
)

type upFlags struct {
	templateFile        string
	templateURL         string
	usePreviousTemplate bool
	parametersFile      string
	overrides           []string
	previousParameters  []string
	tagsFile            string
	policyFile          string
	capabilities        []string
	onFailure           string
	roleARN             string
	notificationARNs    []string
	review              bool
	yes                 bool
}

func newUpCommand(opts *config.Options) *cobra.Command {
	flags := &upFlags{}
	cmd := &cobra.Command{
		Use:     "up STACK",
		Aliases: []string{"deploy"},
		Short:   "Create a stack, or update it if it already exists",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUp(cmd, opts, flags, args[0])
		},
	}
	cmd.Flags().StringVarP(&flags.templateFile, "template", "t", "", "Path to the stack template (YAML or JSON)")
	cmd.Flags().StringVar(&flags.templateURL, "template-url", "", "S3 URL of the stack template")
	cmd.Flags().BoolVar(&flags.usePreviousTemplate, "use-previous-template", false, "Reuse the template the stack was last deployed with")
	cmd.Flags().StringVarP(&flags.parametersFile, "parameters", "p", "", "Path to a parameter file (flat KEY: VALUE map)")
	cmd.Flags().StringArrayVarP(&flags.overrides, "override", "O", nil, "Parameter override as KEY=VALUE (repeatable, wins over the file)")
	cmd.Flags().StringSliceVar(&flags.previousParameters, "use-previous-value", nil, "Parameter keys whose current remote value is kept")
	cmd.Flags().StringVar(&flags.tagsFile, "tags", "", "Path to a tag file (flat KEY: VALUE map)")
	cmd.Flags().StringVar(&flags.policyFile, "policy", "", "Path to a stack policy document")
	cmd.Flags().StringSliceVar(&flags.capabilities, "capability", nil, "Capability to acknowledge (defaults to CAPABILITY_NAMED_IAM)")
	cmd.Flags().StringVar(&flags.onFailure, "on-failure", "", "Action when creation fails: DO_NOTHING, ROLLBACK, or DELETE")
	cmd.Flags().StringVar(&flags.roleARN, "role-arn", "", "IAM role CloudFormation assumes for the operation")
	cmd.Flags().StringSliceVar(&flags.notificationARNs, "notification-arns", nil, "SNS topic ARNs notified of stack events")
	cmd.Flags().BoolVar(&flags.review, "review", false, "Compute a change set and ask before applying it")
	cmd.Flags().BoolVar(&flags.yes, "yes", false, "Apply a reviewed change set without prompting")
	return cmd
}

func runUp(cmd *cobra.Command, opts *config.Options, flags *upFlags, name string) error {
	req, err := buildChangeRequest(flags)
	if err != nil {
		return err
	}
	stack, err := newStack(cmd, opts, name)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if flags.review {
		plan, err := stack.Plan(ctx, req)
		if err != nil {
			return err
		}
		if plan.Empty() {
			fmt.Printf("Stack %s is up to date.\n", name)
			return nil
		}
		printPlan(plan)
		if !flags.yes && !confirm(fmt.Sprintf("Apply these changes to stack %s?", name)) {
			return stack.DiscardPlan(ctx, plan.Name)
		}
		outcome, err := stack.ApplyPlan(ctx, plan.Name)
		if err != nil {
			return err
		}
		fmt.Printf("Stack %s %s.\n", name, outcome)
		return nil
	}

	outcome, err := stack.CreateOrUpdate(ctx, req)
	if err != nil {
		return err
	}
	switch outcome {
	case cfn.OutcomeUnchanged:
		fmt.Printf("Stack %s is up to date.\n", name)
	default:
		fmt.Printf("Stack %s %s.\n", name, outcome)
	}
	return nil
}

func buildChangeRequest(flags *upFlags) (cfn.ChangeRequest, error) {
	req := cfn.ChangeRequest{
		TemplateURL:           flags.templateURL,
		UsePreviousTemplate:   flags.usePreviousTemplate,
		PreviousParameterKeys: flags.previousParameters,
		RoleARN:               flags.roleARN,
		NotificationARNs:      flags.notificationARNs,
	}
	if flags.templateFile != "" {
		body, err := docload.Body(flags.templateFile)
		if err != nil {
			return req, err
		}
		req.TemplateBody = body
	}
	fileValues := map[string]string{}
	if flags.parametersFile != "" {
		values, err := docload.Values(flags.parametersFile)
		if err != nil {
			return req, err
		}
		fileValues = values
	}
	overrides, err := parseKeyValues(flags.overrides)
	if err != nil {
		return req, fmt.Errorf("--override: %w", err)
	}
	if merged := cfn.MergeValues(fileValues, overrides); len(merged) > 0 {
		req.Parameters = merged
	}
	if flags.tagsFile != "" {
		tags, err := docload.Values(flags.tagsFile)
		if err != nil {
			return req, err
		}
		req.Tags = tags
	}
	if flags.policyFile != "" {
		body, err := docload.Body(flags.policyFile)
		if err != nil {
			return req, err
		}
		req.StackPolicyBody = body
	}
	for _, capability := range flags.capabilities {
		req.Capabilities = append(req.Capabilities, types.Capability(capability))
	}
	if flags.onFailure != "" {
		switch onFailure := types.OnFailure(strings.ToUpper(flags.onFailure)); onFailure {
		case types.OnFailureDoNothing, types.OnFailureRollback, types.OnFailureDelete:
			req.OnFailure = onFailure
		default:
			return req, fmt.Errorf("unknown --on-failure action %q", flags.onFailure)
		}
	}
	return req, nil
}

func printPlan(plan *cfn.Plan) {
	fmt.Printf("Change set %s:\n", plan.Name)
	for _, change := range plan.Changes {
		line := fmt.Sprintf("  %-8s %s (%s)", change.Action, change.LogicalID, change.ResourceType)
		if change.Replacement == string(types.ReplacementTrue) {
			line += " [replacement]"
		}
		fmt.Println(line)
	}
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
