// errors.go translates CloudFormation validation failures into stackup's error taxonomy.
//
// CloudFormation reports expected lifecycle conditions (missing stack, nothing
// to update, transition not valid right now) as ValidationError with free-text
// messages and no structured code. All message-text coupling lives in the
// pattern table below; nothing outside this file inspects provider messages.
package cfn

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/smithy-go"
)

// NoSuchStackError reports that the target stack does not exist.
type NoSuchStackError struct {
	Name string
}

func (e *NoSuchStackError) Error() string {
	return fmt.Sprintf("stack %s does not exist", e.Name)
}

// NoUpdateRequiredError reports that an update had no changes to apply.
// It is a lifecycle condition, not a failure; callers normalize it to an
// unchanged outcome.
type NoUpdateRequiredError struct {
	Name string
}

func (e *NoUpdateRequiredError) Error() string {
	return fmt.Sprintf("stack %s is already up to date", e.Name)
}

// InvalidStateError reports that the requested transition is not valid from
// the stack's current status, e.g. cancelling when no update is in progress.
type InvalidStateError struct {
	Name   string
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("stack %s: %s", e.Name, e.Reason)
}

// StackUpdateError reports a mutating operation that ran to completion but
// landed in a failure terminal status.
type StackUpdateError struct {
	Name   string
	Op     string
	Status string
}

func (e *StackUpdateError) Error() string {
	return fmt.Sprintf("%s of stack %s failed with status %s", e.Op, e.Name, e.Status)
}

// validationPatterns maps CloudFormation ValidationError message fragments to
// typed errors, checked in order. Fragile by nature: a provider wording change
// silently downgrades a match to a generic service error.
var validationPatterns = []struct {
	fragment string
	wrap     func(name, msg string) error
}{
	{"does not exist", func(name, _ string) error { return &NoSuchStackError{Name: name} }},
	{"No updates are to be performed", func(name, _ string) error { return &NoUpdateRequiredError{Name: name} }},
	{"cannot be called from current stack status", func(name, msg string) error { return &InvalidStateError{Name: name, Reason: msg} }},
	{"can not be updated", func(name, msg string) error { return &InvalidStateError{Name: name, Reason: msg} }},
	{"CancelUpdateStack cannot be called", func(name, msg string) error { return &InvalidStateError{Name: name, Reason: msg} }},
}

// translate classifies a remote call failure. Recognized validation messages
// become typed lifecycle errors; everything else, including credential and
// authorization failures, passes through unmodified.
func translate(name string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	if apiErr.ErrorCode() != "ValidationError" {
		return err
	}
	msg := apiErr.ErrorMessage()
	for _, p := range validationPatterns {
		if strings.Contains(msg, p.fragment) {
			return p.wrap(name, msg)
		}
	}
	return err
}
