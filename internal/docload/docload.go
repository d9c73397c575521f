// Package docload reads structured documents (YAML or JSON) from disk for
// templates, parameter files, tag files, and stack policies.
package docload

import (
	"fmt"
	"os"

	yamlv3 "gopkg.in/yaml.v3"
	"sigs.k8s.io/yaml"
)

// Body returns a file's raw contents, e.g. a template body submitted to the
// provider verbatim.
func Body(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", path, err)
	}
	return string(data), nil
}

// Document reads a file and parses it into a JSON-shaped tree. JSON input is
// handled transparently since JSON is a YAML subset.
func Document(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return Parse(data)
}

// Parse converts raw YAML or JSON into a JSON-shaped tree with string map
// keys, the canonical form the diff engine serializes.
func Parse(data []byte) (any, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

// Values reads a flat key/value file (parameters or tags). Scalar values are
// stringified the way the provider expects; nested structures are rejected.
func Values(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	var raw map[string]any
	if err := yamlv3.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	values := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			values[key] = v
		case bool, int, int64, uint64, float64:
			values[key] = fmt.Sprintf("%v", v)
		case nil:
			values[key] = ""
		default:
			return nil, fmt.Errorf("%s: value of %q is not a scalar", path, key)
		}
	}
	return values, nil
}
