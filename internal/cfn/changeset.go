// changeset.go previews a change request as a CloudFormation change set
// before anything mutates, backing 'stackup up --review'.
package cfn

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"go.uber.org/zap"
)

// PlannedChange describes one resource action a change set would take.
type PlannedChange struct {
	Action       string
	LogicalID    string
	PhysicalID   string
	ResourceType string
	Replacement  string
}

// Plan is the materialized preview of a change request.
type Plan struct {
	Name      string
	StackName string
	Changes   []PlannedChange
}

// Empty reports whether executing the plan would change nothing.
func (p *Plan) Empty() bool {
	return len(p.Changes) == 0
}

// noChangeReasons are the provider's free-text ways of saying a change set
// found nothing to do; its status is FAILED in that case even though nothing
// went wrong.
var noChangeReasons = []string{
	"didn't contain changes",
	"No updates are to be performed",
}

// Plan creates a change set for the request, waits for the provider to
// finish computing it, and returns the resource-level preview. A change set
// that found no changes is discarded remotely and returned as an empty plan.
func (s *Stack) Plan(ctx context.Context, req ChangeRequest) (*Plan, error) {
	status, err := s.Status(ctx)
	if err != nil {
		return nil, err
	}
	csType := types.ChangeSetTypeUpdate
	if status == "" || status == string(types.StackStatusReviewInProgress) {
		csType = types.ChangeSetTypeCreate
	}
	name := fmt.Sprintf("stackup-%d", time.Now().Unix())
	input, err := req.changeSetInput(s.name, name, csType)
	if err != nil {
		return nil, err
	}
	if _, err := s.api.CreateChangeSet(ctx, input); err != nil {
		return nil, translate(s.name, err)
	}
	s.opts.Logger.Debug("change set created",
		zap.String("stack", s.name), zap.String("change_set", name))

	plan := &Plan{Name: name, StackName: s.name}
	var token *string
	for {
		out, err := s.api.DescribeChangeSet(ctx, &cloudformation.DescribeChangeSetInput{
			StackName:     aws.String(s.name),
			ChangeSetName: aws.String(name),
			NextToken:     token,
		})
		if err != nil {
			return nil, translate(s.name, err)
		}
		switch out.Status {
		case types.ChangeSetStatusFailed:
			reason := aws.ToString(out.StatusReason)
			for _, fragment := range noChangeReasons {
				if strings.Contains(reason, fragment) {
					// Nothing to do; the empty change set only clutters the
					// stack, so drop it remotely too.
					_ = s.DiscardPlan(ctx, name)
					return &Plan{Name: name, StackName: s.name}, nil
				}
			}
			return nil, fmt.Errorf("change set %s failed: %s", name, reason)
		case types.ChangeSetStatusCreateComplete:
			for _, change := range out.Changes {
				plan.Changes = append(plan.Changes, plannedChange(change))
			}
			if out.NextToken == nil {
				return plan, nil
			}
			token = out.NextToken
		default:
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.opts.PollInterval):
			}
		}
	}
}

// ApplyPlan executes a previously created change set and polls the stack to
// a terminal status, relaying events like any other mutation.
func (s *Stack) ApplyPlan(ctx context.Context, planName string) (Outcome, error) {
	existed, err := s.Status(ctx)
	if err != nil {
		return "", err
	}
	creating := existed == "" || existed == string(types.StackStatusReviewInProgress)

	terminal, err := s.modify(ctx, func(ctx context.Context) error {
		_, err := s.api.ExecuteChangeSet(ctx, &cloudformation.ExecuteChangeSetInput{
			StackName:     aws.String(s.name),
			ChangeSetName: aws.String(planName),
		})
		return translate(s.name, err)
	})
	if err != nil {
		return "", err
	}
	if creating {
		if terminal != statusCreateComplete {
			return "", &StackUpdateError{Name: s.name, Op: "create", Status: terminal}
		}
		return OutcomeCreated, nil
	}
	if terminal != statusUpdateComplete {
		return "", &StackUpdateError{Name: s.name, Op: "update", Status: terminal}
	}
	return OutcomeUpdated, nil
}

// DiscardPlan deletes a change set without executing it. Discarding a change
// set that is already gone is a no-op.
func (s *Stack) DiscardPlan(ctx context.Context, planName string) error {
	_, err := s.api.DeleteChangeSet(ctx, &cloudformation.DeleteChangeSetInput{
		StackName:     aws.String(s.name),
		ChangeSetName: aws.String(planName),
	})
	if err != nil {
		var notFound *types.ChangeSetNotFoundException
		if errors.As(err, &notFound) {
			return nil
		}
		return translate(s.name, err)
	}
	return nil
}

func plannedChange(change types.Change) PlannedChange {
	rc := change.ResourceChange
	if rc == nil {
		return PlannedChange{}
	}
	return PlannedChange{
		Action:       string(rc.Action),
		LogicalID:    aws.ToString(rc.LogicalResourceId),
		PhysicalID:   aws.ToString(rc.PhysicalResourceId),
		ResourceType: aws.ToString(rc.ResourceType),
		Replacement:  string(rc.Replacement),
	}
}
