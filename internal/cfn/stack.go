// stack.go is the stack lifecycle orchestrator: it sequences create, update,
// delete, and cancel against CloudFormation, polls to a terminal status, and
// relays progress events exactly once through a Watcher.
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

// Outcome is the result of a lifecycle operation once the remote service
// reaches a terminal status.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeDeleted   Outcome = "deleted"
	OutcomeCancelled Outcome = "cancelled"
	// OutcomeNoOp marks an operation that had nothing to do, e.g. deleting a
	// stack that does not exist or cancelling when no update is running.
	OutcomeNoOp Outcome = "no-op"
)

const (
	statusCreateComplete   = "CREATE_COMPLETE"
	statusCreateFailed     = "CREATE_FAILED"
	statusUpdateComplete   = "UPDATE_COMPLETE"
	statusDeleteComplete   = "DELETE_COMPLETE"
	statusRollbackComplete = "ROLLBACK_COMPLETE"
)

// EventHandler receives one stack event. Handlers run synchronously inside
// the poll loop.
type EventHandler func(types.StackEvent)

// Options configures a Stack. Every recognized knob is listed here; there is
// no dynamic option dispatch.
type Options struct {
	// PollInterval is the sleep between status polls. Defaults to 5s.
	PollInterval time.Duration
	// Timeout bounds each lifecycle operation. Zero waits forever, matching
	// the remote service's own unbounded execution.
	Timeout time.Duration
	// OnEvent receives each progress event. Nil installs a logging handler.
	OnEvent EventHandler
	// Logger receives orchestrator diagnostics. Nil uses zap.NewNop.
	Logger *zap.Logger
}

// Stack is a handle on one named CloudFormation stack. It owns the cached
// provider id and the event horizon for the duration of one invocation;
// nothing is persisted between runs.
type Stack struct {
	name string
	api  API
	opts Options

	// id caches the provider-assigned stack id, resolved lazily. Polling by
	// id keeps working after the name stops resolving mid-delete.
	id string
}

// New builds a Stack handle. The name is immutable for the handle's lifetime.
func New(api API, name string, opts Options) (*Stack, error) {
	if api == nil {
		return nil, errors.New("cfn: api client is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("cfn: stack name is required")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.OnEvent == nil {
		logger := opts.Logger
		opts.OnEvent = func(ev types.StackEvent) {
			logger.Info(FormatEvent(ev))
		}
	}
	return &Stack{name: name, api: api, opts: opts}, nil
}

// Name returns the stack name the handle was built with.
func (s *Stack) Name() string {
	return s.name
}

// FormatEvent renders an event as "logical_resource_id - status - reason",
// omitting the reason when the provider sent none.
func FormatEvent(ev types.StackEvent) string {
	line := fmt.Sprintf("%s - %s", aws.ToString(ev.LogicalResourceId), ev.ResourceStatus)
	if reason := aws.ToString(ev.ResourceStatusReason); reason != "" {
		line += " - " + reason
	}
	return line
}

// IsTerminal reports whether a stack status marks the in-progress operation
// as finished. An absent status (empty string) is terminal: there is nothing
// left to poll.
func IsTerminal(status string) bool {
	return status == "" ||
		strings.HasSuffix(status, "_COMPLETE") ||
		strings.HasSuffix(status, "_FAILED")
}

// almostDead statuses permit only deletion as the next transition; the
// provider refuses both create and update from them.
func almostDead(status string) bool {
	return status == statusCreateFailed || status == statusRollbackComplete
}

// target resolves the identifier used for describe/event calls: the cached
// provider id when known, else the name.
func (s *Stack) target() string {
	if s.id != "" {
		return s.id
	}
	return s.name
}

// Watch returns a fresh event watcher bound to this stack.
func (s *Stack) Watch() *Watcher {
	return NewWatcher(s.api, s.target)
}

// describe fetches the stack record, translating a missing stack into
// NoSuchStackError.
func (s *Stack) describe(ctx context.Context) (*types.Stack, error) {
	out, err := s.api.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(s.target()),
	})
	if err != nil {
		return nil, translate(s.name, err)
	}
	if len(out.Stacks) == 0 {
		return nil, &NoSuchStackError{Name: s.name}
	}
	return &out.Stacks[0], nil
}

// Status returns the stack's current status string, or "" when the stack
// does not exist.
func (s *Stack) Status(ctx context.Context) (string, error) {
	stack, err := s.describe(ctx)
	if err != nil {
		var missing *NoSuchStackError
		if errors.As(err, &missing) {
			return "", nil
		}
		return "", err
	}
	return string(stack.StackStatus), nil
}

// CreateOrUpdate converges the remote stack onto the change request. A stack
// in an almost-dead status is deleted first, because the provider refuses
// update on a dead stack and refuses create on an existing one; the
// orchestrator owns that routing, not the API.
func (s *Stack) CreateOrUpdate(ctx context.Context, req ChangeRequest) (Outcome, error) {
	status, err := s.Status(ctx)
	if err != nil {
		return "", err
	}
	if almostDead(status) {
		s.opts.Logger.Info("deleting dead stack before re-create",
			zap.String("stack", s.name), zap.String("status", status))
		if _, err := s.Delete(ctx); err != nil {
			return "", err
		}
		status = ""
	}
	if status == "" {
		return s.create(ctx, req)
	}
	outcome, err := s.update(ctx, req)
	var missing *NoSuchStackError
	if errors.As(err, &missing) {
		// The stack vanished between the status read and the update call.
		return s.create(ctx, req)
	}
	return outcome, err
}

func (s *Stack) create(ctx context.Context, req ChangeRequest) (Outcome, error) {
	input, err := req.createInput(s.name)
	if err != nil {
		return "", err
	}
	status, err := s.modify(ctx, func(ctx context.Context) error {
		_, err := s.api.CreateStack(ctx, input)
		return translate(s.name, err)
	})
	if err != nil {
		return "", err
	}
	if status != statusCreateComplete {
		return "", &StackUpdateError{Name: s.name, Op: "create", Status: status}
	}
	return OutcomeCreated, nil
}

func (s *Stack) update(ctx context.Context, req ChangeRequest) (Outcome, error) {
	input, err := req.updateInput(s.name)
	if err != nil {
		return "", err
	}
	status, err := s.modify(ctx, func(ctx context.Context) error {
		_, err := s.api.UpdateStack(ctx, input)
		return translate(s.name, err)
	})
	if err != nil {
		var noChange *NoUpdateRequiredError
		if errors.As(err, &noChange) {
			return OutcomeUnchanged, nil
		}
		return "", err
	}
	if status != statusUpdateComplete {
		return "", &StackUpdateError{Name: s.name, Op: "update", Status: status}
	}
	return OutcomeUpdated, nil
}

// Delete removes the stack and polls until the provider confirms it is gone.
// Deleting a stack that does not exist is a no-op success. The cached id is
// cleared on every exit path.
func (s *Stack) Delete(ctx context.Context) (Outcome, error) {
	defer func() { s.id = "" }()

	stack, err := s.describe(ctx)
	if err != nil {
		var missing *NoSuchStackError
		if errors.As(err, &missing) {
			return OutcomeNoOp, nil
		}
		return "", err
	}
	// Poll by id from here on: the name stops resolving once deletion lands.
	s.id = aws.ToString(stack.StackId)

	status, err := s.modify(ctx, func(ctx context.Context) error {
		_, err := s.api.DeleteStack(ctx, &cloudformation.DeleteStackInput{
			StackName: aws.String(s.name),
		})
		return translate(s.name, err)
	})
	if err != nil {
		return "", err
	}
	if status != statusDeleteComplete {
		return "", &StackUpdateError{Name: s.name, Op: "delete", Status: status}
	}
	return OutcomeDeleted, nil
}

// CancelUpdate aborts an in-flight update. The provider rejecting the cancel
// because nothing is updating is swallowed to a no-op, not an error.
func (s *Stack) CancelUpdate(ctx context.Context) (Outcome, error) {
	_, err := s.modify(ctx, func(ctx context.Context) error {
		_, err := s.api.CancelUpdateStack(ctx, &cloudformation.CancelUpdateStackInput{
			StackName: aws.String(s.name),
		})
		return translate(s.name, err)
	})
	if err != nil {
		var invalid *InvalidStateError
		if errors.As(err, &invalid) {
			return OutcomeNoOp, nil
		}
		return "", err
	}
	return OutcomeCancelled, nil
}

// Wait polls the stack until its status is terminal without issuing any
// mutation, relaying events appended while waiting.
func (s *Stack) Wait(ctx context.Context) (string, error) {
	return s.modify(ctx, nil)
}

// modify is the shared poll loop: zero the event horizon, run the mutating
// call, then drain events and read status until terminal. With no configured
// timeout it runs until the remote status settles or ctx is cancelled.
func (s *Stack) modify(ctx context.Context, mutate func(context.Context) error) (string, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	watcher := s.Watch()
	if err := watcher.Zero(ctx); err != nil {
		return "", err
	}
	if mutate != nil {
		if err := mutate(ctx); err != nil {
			return "", err
		}
	}
	for {
		if err := watcher.EachNewEvent(ctx, s.opts.OnEvent); err != nil {
			return "", err
		}
		status, err := s.Status(ctx)
		if err != nil {
			return "", err
		}
		if IsTerminal(status) {
			// Flush events appended between the drain and the status read.
			if err := watcher.EachNewEvent(ctx, s.opts.OnEvent); err != nil {
				return "", err
			}
			return status, nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.opts.PollInterval):
		}
	}
}

// Template returns the stack's current template body.
func (s *Stack) Template(ctx context.Context) (string, error) {
	out, err := s.api.GetTemplate(ctx, &cloudformation.GetTemplateInput{
		StackName: aws.String(s.target()),
	})
	if err != nil {
		return "", translate(s.name, err)
	}
	return aws.ToString(out.TemplateBody), nil
}

// Parameters returns the stack's current parameters as a flat map.
func (s *Stack) Parameters(ctx context.Context) (map[string]string, error) {
	stack, err := s.describe(ctx)
	if err != nil {
		return nil, err
	}
	params := make(map[string]string, len(stack.Parameters))
	for _, p := range stack.Parameters {
		params[aws.ToString(p.ParameterKey)] = aws.ToString(p.ParameterValue)
	}
	return params, nil
}

// Tags returns the stack's current tags as a flat map.
func (s *Stack) Tags(ctx context.Context) (map[string]string, error) {
	stack, err := s.describe(ctx)
	if err != nil {
		return nil, err
	}
	tags := make(map[string]string, len(stack.Tags))
	for _, t := range stack.Tags {
		tags[aws.ToString(t.Key)] = aws.ToString(t.Value)
	}
	return tags, nil
}

// Outputs returns the stack's outputs as a flat map.
func (s *Stack) Outputs(ctx context.Context) (map[string]string, error) {
	stack, err := s.describe(ctx)
	if err != nil {
		return nil, err
	}
	outputs := make(map[string]string, len(stack.Outputs))
	for _, o := range stack.Outputs {
		outputs[aws.ToString(o.OutputKey)] = aws.ToString(o.OutputValue)
	}
	return outputs, nil
}

// Resources returns the stack's logical to physical resource id mapping.
func (s *Stack) Resources(ctx context.Context) (map[string]string, error) {
	out, err := s.api.DescribeStackResources(ctx, &cloudformation.DescribeStackResourcesInput{
		StackName: aws.String(s.target()),
	})
	if err != nil {
		return nil, translate(s.name, err)
	}
	resources := make(map[string]string, len(out.StackResources))
	for _, r := range out.StackResources {
		resources[aws.ToString(r.LogicalResourceId)] = aws.ToString(r.PhysicalResourceId)
	}
	return resources, nil
}

// Events replays the stack's full event log oldest-first through fn.
func (s *Stack) Events(ctx context.Context, fn func(types.StackEvent)) error {
	return s.Watch().EachNewEvent(ctx, fn)
}
