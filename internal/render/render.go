// Package render serializes structured values for display by read-only
// commands.
package render

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document serializes value as yaml or json text.
func Document(value any, format string) (string, error) {
	switch format {
	case "yaml", "":
		data, err := yaml.Marshal(value)
		if err != nil {
			return "", fmt.Errorf("render yaml: %w", err)
		}
		return string(data), nil
	case "json":
		data, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return "", fmt.Errorf("render json: %w", err)
		}
		return string(data) + "\n", nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected yaml or json)", format)
	}
}
