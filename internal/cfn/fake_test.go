package cfn

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/smithy-go"
)

// apiError satisfies smithy.APIError the way the SDK surfaces CloudFormation
// validation failures.
type apiError struct {
	code    string
	message string
}

func (e *apiError) Error() string                 { return e.code + ": " + e.message }
func (e *apiError) ErrorCode() string             { return e.code }
func (e *apiError) ErrorMessage() string          { return e.message }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

func errDoesNotExist(name string) error {
	return &apiError{code: "ValidationError", message: fmt.Sprintf("Stack with id %s does not exist", name)}
}

func errNoUpdates() error {
	return &apiError{code: "ValidationError", message: "No updates are to be performed."}
}

func errCancelNotInProgress() error {
	return &apiError{code: "ValidationError", message: "CancelUpdateStack cannot be called from current stack status"}
}

// fakeAPI is a scriptable CloudFormation stand-in. Status reads consume the
// statuses queue one entry per DescribeStacks call, repeating the final entry
// once exhausted; "" plays a missing stack. Mutating calls record themselves
// and run an optional hook so tests can reshape the script mid-flight.
type fakeAPI struct {
	statuses []string
	events   []types.StackEvent // newest-first, like the real log
	pageSize int                // 0 = everything in one page

	createErr error
	updateErr error
	cancelErr error
	deleteErr error

	onCreate func(*cloudformation.CreateStackInput)
	onUpdate func(*cloudformation.UpdateStackInput)
	onDelete func()

	createCalls int
	updateCalls int
	deleteCalls int
	cancelCalls int

	changeSet        *cloudformation.DescribeChangeSetOutput
	changeSetDeletes int
	executeCalls     int
	lastChangeSet    *cloudformation.CreateChangeSetInput

	describeEventCalls int
}

func (f *fakeAPI) nextStatus() string {
	if len(f.statuses) == 0 {
		return ""
	}
	status := f.statuses[0]
	if len(f.statuses) > 1 {
		f.statuses = f.statuses[1:]
	}
	return status
}

// prependEvent pushes a new head event, mimicking the provider's append.
func (f *fakeAPI) prependEvent(logicalID, status, reason string) {
	ev := types.StackEvent{
		EventId:           aws.String("ev-" + strconv.Itoa(len(f.events)+1)),
		LogicalResourceId: aws.String(logicalID),
		ResourceStatus:    types.ResourceStatus(status),
		Timestamp:         aws.Time(time.Unix(int64(1700000000+len(f.events)), 0)),
	}
	if reason != "" {
		ev.ResourceStatusReason = aws.String(reason)
	}
	f.events = append([]types.StackEvent{ev}, f.events...)
}

func (f *fakeAPI) DescribeStacks(_ context.Context, params *cloudformation.DescribeStacksInput, _ ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error) {
	status := f.nextStatus()
	if status == "" {
		return nil, errDoesNotExist(aws.ToString(params.StackName))
	}
	return &cloudformation.DescribeStacksOutput{
		Stacks: []types.Stack{{
			StackName:   params.StackName,
			StackId:     aws.String("arn:aws:cloudformation:us-east-1:1:stack/fake/1"),
			StackStatus: types.StackStatus(status),
			Parameters: []types.Parameter{
				{ParameterKey: aws.String("Size"), ParameterValue: aws.String("large")},
			},
			Tags: []types.Tag{
				{Key: aws.String("env"), Value: aws.String("test")},
			},
			Outputs: []types.Output{
				{OutputKey: aws.String("Endpoint"), OutputValue: aws.String("https://example.test")},
			},
		}},
	}, nil
}

func (f *fakeAPI) CreateStack(_ context.Context, params *cloudformation.CreateStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.onCreate != nil {
		f.onCreate(params)
	}
	return &cloudformation.CreateStackOutput{StackId: aws.String("fake-id")}, nil
}

func (f *fakeAPI) UpdateStack(_ context.Context, params *cloudformation.UpdateStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error) {
	f.updateCalls++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.onUpdate != nil {
		f.onUpdate(params)
	}
	return &cloudformation.UpdateStackOutput{StackId: aws.String("fake-id")}, nil
}

func (f *fakeAPI) DeleteStack(_ context.Context, _ *cloudformation.DeleteStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.DeleteStackOutput, error) {
	f.deleteCalls++
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	if f.onDelete != nil {
		f.onDelete()
	}
	return &cloudformation.DeleteStackOutput{}, nil
}

func (f *fakeAPI) CancelUpdateStack(_ context.Context, _ *cloudformation.CancelUpdateStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.CancelUpdateStackOutput, error) {
	f.cancelCalls++
	if f.cancelErr != nil {
		return nil, f.cancelErr
	}
	return &cloudformation.CancelUpdateStackOutput{}, nil
}

func (f *fakeAPI) GetTemplate(_ context.Context, _ *cloudformation.GetTemplateInput, _ ...func(*cloudformation.Options)) (*cloudformation.GetTemplateOutput, error) {
	return &cloudformation.GetTemplateOutput{TemplateBody: aws.String("Resources: {}\n")}, nil
}

func (f *fakeAPI) DescribeStackEvents(_ context.Context, params *cloudformation.DescribeStackEventsInput, _ ...func(*cloudformation.Options)) (*cloudformation.DescribeStackEventsOutput, error) {
	f.describeEventCalls++
	events := f.events
	start := 0
	if params.NextToken != nil {
		start, _ = strconv.Atoi(aws.ToString(params.NextToken))
	}
	if start >= len(events) {
		return &cloudformation.DescribeStackEventsOutput{}, nil
	}
	end := len(events)
	var next *string
	if f.pageSize > 0 && start+f.pageSize < len(events) {
		end = start + f.pageSize
		next = aws.String(strconv.Itoa(end))
	}
	return &cloudformation.DescribeStackEventsOutput{
		StackEvents: events[start:end],
		NextToken:   next,
	}, nil
}

func (f *fakeAPI) DescribeStackResources(_ context.Context, _ *cloudformation.DescribeStackResourcesInput, _ ...func(*cloudformation.Options)) (*cloudformation.DescribeStackResourcesOutput, error) {
	return &cloudformation.DescribeStackResourcesOutput{
		StackResources: []types.StackResource{{
			LogicalResourceId:  aws.String("Bucket"),
			PhysicalResourceId: aws.String("bucket-1234"),
		}},
	}, nil
}

func (f *fakeAPI) CreateChangeSet(_ context.Context, params *cloudformation.CreateChangeSetInput, _ ...func(*cloudformation.Options)) (*cloudformation.CreateChangeSetOutput, error) {
	f.lastChangeSet = params
	return &cloudformation.CreateChangeSetOutput{Id: aws.String("cs-id")}, nil
}

func (f *fakeAPI) DescribeChangeSet(_ context.Context, _ *cloudformation.DescribeChangeSetInput, _ ...func(*cloudformation.Options)) (*cloudformation.DescribeChangeSetOutput, error) {
	if f.changeSet == nil {
		return &cloudformation.DescribeChangeSetOutput{Status: types.ChangeSetStatusCreateInProgress}, nil
	}
	return f.changeSet, nil
}

func (f *fakeAPI) ExecuteChangeSet(_ context.Context, _ *cloudformation.ExecuteChangeSetInput, _ ...func(*cloudformation.Options)) (*cloudformation.ExecuteChangeSetOutput, error) {
	f.executeCalls++
	return &cloudformation.ExecuteChangeSetOutput{}, nil
}

func (f *fakeAPI) DeleteChangeSet(_ context.Context, _ *cloudformation.DeleteChangeSetInput, _ ...func(*cloudformation.Options)) (*cloudformation.DeleteChangeSetOutput, error) {
	f.changeSetDeletes++
	return &cloudformation.DeleteChangeSetOutput{}, nil
}

var _ API = (*fakeAPI)(nil)

func newTestStack(t interface {
	Helper()
	Fatalf(string, ...any)
}, api API, onEvent EventHandler) *Stack {
	t.Helper()
	stack, err := New(api, "demo", Options{
		PollInterval: time.Millisecond,
		OnEvent:      onEvent,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return stack
}
