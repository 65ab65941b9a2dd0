package llm

import (
	"testing"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"gemini-2.5-flash", "gemini-2.5-flash"}, // Pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question":   map[string]any{"type": "string"},
						"confidence": map[string]any{"type": "number"},
						"difficulty": map[string]any{"type": "string", "enum": []any{"beginner", "intermediate", "advanced"}},
					},
					"required": []any{"question"},
				},
			},
		},
		"required": []any{"questions"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != "OBJECT" {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	qs := schema.Properties["questions"]
	if qs == nil || qs.Type != "ARRAY" {
		t.Fatalf("expected ARRAY for questions, got %+v", qs)
	}
	item := qs.Items
	if item.Type != "OBJECT" || len(item.Properties) != 3 {
		t.Fatalf("unexpected item schema: %+v", item)
	}
	if item.Properties["confidence"].Type != "NUMBER" {
		t.Fatalf("expected NUMBER for confidence, got %s", item.Properties["confidence"].Type)
	}
	if len(item.Properties["difficulty"].Enum) != 3 {
		t.Fatalf("expected 3 enum values, got %d", len(item.Properties["difficulty"].Enum))
	}
	if len(item.Required) != 1 || len(schema.Required) != 1 {
		t.Fatalf("required fields not carried over")
	}
}
