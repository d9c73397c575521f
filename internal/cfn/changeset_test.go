package cfn

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
)

func TestPlanListsResourceChanges(t *testing.T) {
	api := &fakeAPI{
		statuses: []string{"CREATE_COMPLETE"},
		changeSet: &cloudformation.DescribeChangeSetOutput{
			Status: types.ChangeSetStatusCreateComplete,
			Changes: []types.Change{
				{ResourceChange: &types.ResourceChange{
					Action:            types.ChangeActionModify,
					LogicalResourceId: aws.String("Bucket"),
					ResourceType:      aws.String("AWS::S3::Bucket"),
					Replacement:       types.ReplacementTrue,
				}},
				{ResourceChange: &types.ResourceChange{
					Action:            types.ChangeActionAdd,
					LogicalResourceId: aws.String("Queue"),
					ResourceType:      aws.String("AWS::SQS::Queue"),
				}},
			},
		},
	}
	stack := newTestStack(t, api, nil)

	plan, err := stack.Plan(context.Background(), ChangeRequest{TemplateBody: "Resources: {}"})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.Empty() {
		t.Fatalf("plan unexpectedly empty")
	}
	if len(plan.Changes) != 2 {
		t.Fatalf("changes = %d, want 2", len(plan.Changes))
	}
	if plan.Changes[0].LogicalID != "Bucket" || plan.Changes[0].Action != "Modify" {
		t.Fatalf("first change = %+v", plan.Changes[0])
	}
	if got := aws.ToString(api.lastChangeSet.StackName); got != "demo" {
		t.Fatalf("change set stack = %q", got)
	}
	if api.lastChangeSet.ChangeSetType != types.ChangeSetTypeUpdate {
		t.Fatalf("change set type = %q, want UPDATE for a live stack", api.lastChangeSet.ChangeSetType)
	}
}

func TestPlanOnMissingStackUsesCreateType(t *testing.T) {
	api := &fakeAPI{
		statuses: []string{"", "CREATE_COMPLETE"},
		changeSet: &cloudformation.DescribeChangeSetOutput{
			Status: types.ChangeSetStatusCreateComplete,
		},
	}
	stack := newTestStack(t, api, nil)

	if _, err := stack.Plan(context.Background(), ChangeRequest{TemplateBody: "Resources: {}"}); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if api.lastChangeSet.ChangeSetType != types.ChangeSetTypeCreate {
		t.Fatalf("change set type = %q, want CREATE for a missing stack", api.lastChangeSet.ChangeSetType)
	}
}

func TestPlanNormalizesNoChanges(t *testing.T) {
	api := &fakeAPI{
		statuses: []string{"CREATE_COMPLETE"},
		changeSet: &cloudformation.DescribeChangeSetOutput{
			Status:       types.ChangeSetStatusFailed,
			StatusReason: aws.String("The submitted information didn't contain changes. Submit different information to create a change set."),
		},
	}
	stack := newTestStack(t, api, nil)

	plan, err := stack.Plan(context.Background(), ChangeRequest{TemplateBody: "Resources: {}"})
	if err != nil {
		t.Fatalf("an empty change set is not a failure, got %v", err)
	}
	if !plan.Empty() {
		t.Fatalf("plan = %+v, want empty", plan)
	}
	if api.changeSetDeletes != 1 {
		t.Fatalf("empty change set must be discarded remotely")
	}
}

func TestPlanSurfacesRealFailure(t *testing.T) {
	api := &fakeAPI{
		statuses: []string{"CREATE_COMPLETE"},
		changeSet: &cloudformation.DescribeChangeSetOutput{
			Status:       types.ChangeSetStatusFailed,
			StatusReason: aws.String("Parameters: [Size] must have values"),
		},
	}
	stack := newTestStack(t, api, nil)

	if _, err := stack.Plan(context.Background(), ChangeRequest{TemplateBody: "Resources: {}"}); err == nil {
		t.Fatalf("genuine change set failure must surface")
	}
}

func TestApplyPlan(t *testing.T) {
	api := &fakeAPI{statuses: []string{"REVIEW_IN_PROGRESS", "CREATE_COMPLETE"}}
	stack := newTestStack(t, api, nil)

	outcome, err := stack.ApplyPlan(context.Background(), "stackup-1")
	if err != nil {
		t.Fatalf("ApplyPlan: %v", err)
	}
	if outcome != OutcomeCreated {
		t.Fatalf("outcome = %q, want created", outcome)
	}
	if api.executeCalls != 1 {
		t.Fatalf("executeCalls = %d, want 1", api.executeCalls)
	}
}
