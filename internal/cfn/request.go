// request.go models a create/update intent and builds the provider inputs.
package cfn

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
)

// ChangeRequest captures one create/update intent. It is built per invocation
// and never persisted.
type ChangeRequest struct {
	// TemplateBody and TemplateURL are mutually exclusive. Leaving both empty
	// requires UsePreviousTemplate (update only).
	TemplateBody        string
	TemplateURL         string
	UsePreviousTemplate bool

	Parameters map[string]string
	// PreviousParameterKeys lists parameters whose current remote value is
	// kept rather than supplied.
	PreviousParameterKeys []string

	Tags map[string]string

	StackPolicyBody string

	// Capabilities defaults to CAPABILITY_NAMED_IAM when empty; the request
	// is never sent without one.
	Capabilities []types.Capability

	// OnFailure selects the provider's action when creation fails. Empty
	// leaves the provider default (rollback).
	OnFailure types.OnFailure

	RoleARN          string
	NotificationARNs []string
}

func (r ChangeRequest) capabilities() []types.Capability {
	if len(r.Capabilities) > 0 {
		return r.Capabilities
	}
	return []types.Capability{types.CapabilityCapabilityNamedIam}
}

func (r ChangeRequest) parameters() []types.Parameter {
	params := ParametersFromMap(r.Parameters)
	return append(params, PreviousValueParameters(r.PreviousParameterKeys)...)
}

func (r ChangeRequest) validate(forCreate bool) error {
	if r.TemplateBody != "" && r.TemplateURL != "" {
		return errors.New("cfn: template body and template URL are mutually exclusive")
	}
	if r.TemplateBody == "" && r.TemplateURL == "" {
		if forCreate {
			return errors.New("cfn: a template is required to create a stack")
		}
		if !r.UsePreviousTemplate {
			return errors.New("cfn: update needs a template or the previous-template flag")
		}
	}
	return nil
}

func (r ChangeRequest) createInput(name string) (*cloudformation.CreateStackInput, error) {
	if err := r.validate(true); err != nil {
		return nil, err
	}
	input := &cloudformation.CreateStackInput{
		StackName:    aws.String(name),
		Parameters:   r.parameters(),
		Tags:         TagsFromMap(r.Tags),
		Capabilities: r.capabilities(),
	}
	if r.TemplateBody != "" {
		input.TemplateBody = aws.String(r.TemplateBody)
	}
	if r.TemplateURL != "" {
		input.TemplateURL = aws.String(r.TemplateURL)
	}
	if r.StackPolicyBody != "" {
		input.StackPolicyBody = aws.String(r.StackPolicyBody)
	}
	if r.OnFailure != "" {
		input.OnFailure = r.OnFailure
	}
	if r.RoleARN != "" {
		input.RoleARN = aws.String(r.RoleARN)
	}
	if len(r.NotificationARNs) > 0 {
		input.NotificationARNs = r.NotificationARNs
	}
	return input, nil
}

func (r ChangeRequest) updateInput(name string) (*cloudformation.UpdateStackInput, error) {
	if err := r.validate(false); err != nil {
		return nil, err
	}
	input := &cloudformation.UpdateStackInput{
		StackName:    aws.String(name),
		Parameters:   r.parameters(),
		Tags:         TagsFromMap(r.Tags),
		Capabilities: r.capabilities(),
	}
	if r.TemplateBody != "" {
		input.TemplateBody = aws.String(r.TemplateBody)
	}
	if r.TemplateURL != "" {
		input.TemplateURL = aws.String(r.TemplateURL)
	}
	if r.UsePreviousTemplate && r.TemplateBody == "" && r.TemplateURL == "" {
		input.UsePreviousTemplate = aws.Bool(true)
	}
	if r.StackPolicyBody != "" {
		input.StackPolicyBody = aws.String(r.StackPolicyBody)
	}
	if r.RoleARN != "" {
		input.RoleARN = aws.String(r.RoleARN)
	}
	if len(r.NotificationARNs) > 0 {
		input.NotificationARNs = r.NotificationARNs
	}
	return input, nil
}

func (r ChangeRequest) changeSetInput(name, changeSetName string, csType types.ChangeSetType) (*cloudformation.CreateChangeSetInput, error) {
	forCreate := csType == types.ChangeSetTypeCreate
	if err := r.validate(forCreate); err != nil {
		return nil, err
	}
	input := &cloudformation.CreateChangeSetInput{
		StackName:     aws.String(name),
		ChangeSetName: aws.String(changeSetName),
		ChangeSetType: csType,
		Parameters:    r.parameters(),
		Tags:          TagsFromMap(r.Tags),
		Capabilities:  r.capabilities(),
	}
	if r.TemplateBody != "" {
		input.TemplateBody = aws.String(r.TemplateBody)
	}
	if r.TemplateURL != "" {
		input.TemplateURL = aws.String(r.TemplateURL)
	}
	if r.UsePreviousTemplate && r.TemplateBody == "" && r.TemplateURL == "" {
		input.UsePreviousTemplate = aws.Bool(true)
	}
	if r.RoleARN != "" {
		input.RoleARN = aws.String(r.RoleARN)
	}
	if len(r.NotificationARNs) > 0 {
		input.NotificationARNs = r.NotificationARNs
	}
	return input, nil
}
