package render

import (
	"strings"
	"testing"
)

func TestDocumentYAML(t *testing.T) {
	out, err := Document(map[string]string{"Endpoint": "https://example.test"}, "yaml")
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if !strings.Contains(out, "Endpoint: https://example.test") {
		t.Fatalf("yaml output = %q", out)
	}
}

func TestDocumentJSON(t *testing.T) {
	out, err := Document(map[string]string{"a": "1"}, "json")
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if !strings.Contains(out, `"a": "1"`) || !strings.HasSuffix(out, "\n") {
		t.Fatalf("json output = %q", out)
	}
}

func TestDocumentUnknownFormat(t *testing.T) {
	if _, err := Document(nil, "toml"); err == nil {
		t.Fatalf("unknown format must be rejected")
	}
}
