package cfn

import (
	"reflect"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
)

func TestParametersFromMapSorted(t *testing.T) {
	params := ParametersFromMap(map[string]string{"Zone": "b", "Ami": "ami-1", "Size": "small"})
	var keys []string
	for _, p := range params {
		keys = append(keys, aws.ToString(p.ParameterKey))
	}
	want := []string{"Ami", "Size", "Zone"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	if got := aws.ToString(params[1].ParameterValue); got != "small" {
		t.Fatalf("Size value = %q, want small", got)
	}
}

func TestParametersFromMapEmpty(t *testing.T) {
	if got := ParametersFromMap(nil); got != nil {
		t.Fatalf("ParametersFromMap(nil) = %v, want nil", got)
	}
}

func TestNormalizeParametersIdempotent(t *testing.T) {
	values := map[string]string{"A": "1", "B": "2"}
	once := ParametersFromMap(values)
	twice := NormalizeParameters(ParametersFromMap(values))
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("normalization is not idempotent: %v vs %v", once, twice)
	}
	if got := NormalizeParameters(once); !reflect.DeepEqual(got, once) {
		t.Fatalf("NormalizeParameters changed an already-structured list")
	}
}

func TestPreviousValueParameters(t *testing.T) {
	params := PreviousValueParameters([]string{"Zone", "Ami"})
	if len(params) != 2 {
		t.Fatalf("len = %d, want 2", len(params))
	}
	if aws.ToString(params[0].ParameterKey) != "Ami" {
		t.Fatalf("keys not sorted: %v", aws.ToString(params[0].ParameterKey))
	}
	for _, p := range params {
		if !aws.ToBool(p.UsePreviousValue) {
			t.Fatalf("UsePreviousValue not set on %s", aws.ToString(p.ParameterKey))
		}
		if p.ParameterValue != nil {
			t.Fatalf("value must be absent on a use-previous marker")
		}
	}
}

func TestMergeValues(t *testing.T) {
	base := map[string]string{"a": "1", "b": "2"}
	overrides := map[string]string{"b": "3", "c": "4"}
	got := MergeValues(base, overrides)
	want := map[string]string{"a": "1", "b": "3", "c": "4"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MergeValues = %v, want %v", got, want)
	}
	if base["b"] != "2" {
		t.Fatalf("MergeValues mutated its input")
	}
}

func TestTagsFromMap(t *testing.T) {
	tags := TagsFromMap(map[string]string{"team": "infra", "env": "prod"})
	if len(tags) != 2 {
		t.Fatalf("len = %d, want 2", len(tags))
	}
	if aws.ToString(tags[0].Key) != "env" || aws.ToString(tags[0].Value) != "prod" {
		t.Fatalf("tags not sorted by key: %+v", tags)
	}
}
