// params.go converts flat key/value maps into the structured list forms
// CloudFormation requires for parameters and tags.
package cfn

import (
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
)

// ParametersFromMap converts a key→value map into CloudFormation parameter
// structs, sorted by key so the request body is deterministic.
func ParametersFromMap(values map[string]string) []types.Parameter {
	if len(values) == 0 {
		return nil
	}
	params := make([]types.Parameter, 0, len(values))
	for _, key := range sortedKeys(values) {
		params = append(params, types.Parameter{
			ParameterKey:   aws.String(key),
			ParameterValue: aws.String(values[key]),
		})
	}
	return params
}

// PreviousValueParameters builds use-previous-value markers for the given
// keys, sorted for determinism.
func PreviousValueParameters(keys []string) []types.Parameter {
	if len(keys) == 0 {
		return nil
	}
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	params := make([]types.Parameter, 0, len(sorted))
	for _, key := range sorted {
		params = append(params, types.Parameter{
			ParameterKey:     aws.String(key),
			UsePreviousValue: aws.Bool(true),
		})
	}
	return params
}

// NormalizeParameters is the identity on an already-structured parameter
// list. It exists so callers holding either form funnel through one name.
func NormalizeParameters(params []types.Parameter) []types.Parameter {
	return params
}

// TagsFromMap mirrors ParametersFromMap for stack tags.
func TagsFromMap(values map[string]string) []types.Tag {
	if len(values) == 0 {
		return nil
	}
	tags := make([]types.Tag, 0, len(values))
	for _, key := range sortedKeys(values) {
		tags = append(tags, types.Tag{
			Key:   aws.String(key),
			Value: aws.String(values[key]),
		})
	}
	return tags
}

// MergeValues overlays overrides onto base. Overrides win on key collision;
// the result holds the union of keys. Neither input is mutated.
func MergeValues(base, overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(overrides))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
