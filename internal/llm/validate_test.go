package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func batchSchema() *Schema {
	return &Schema{
		Name:        "test-question-batch",
		Description: "A batch of questions",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"questions": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"question":   map[string]any{"type": "string"},
							"difficulty": map[string]any{"type": "string", "enum": []any{"beginner", "intermediate", "advanced"}},
							"confidence": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
						},
						"required": []any{"question"},
					},
				},
			},
			"required": []any{"questions"},
		},
	}
}

func TestValidateJSON_Valid(t *testing.T) {
	raw := json.RawMessage(`{"questions":[{"question":"What is osmosis?","difficulty":"beginner","confidence":0.9}]}`)
	if err := ValidateJSON(batchSchema(), raw); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidateJSON_EmptyArrayIsValid(t *testing.T) {
	if err := ValidateJSON(batchSchema(), json.RawMessage(`{"questions":[]}`)); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidateJSON_Failures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing questions key", `{"items":[]}`},
		{"questions not an array", `{"questions":"none"}`},
		{"item missing required", `{"questions":[{"answer":"A"}]}`},
		{"invalid enum", `{"questions":[{"question":"Q?","difficulty":"expert"}]}`},
		{"out of range number", `{"questions":[{"question":"Q?","confidence":3}]}`},
		{"malformed JSON", `{not json}`},
		{"empty", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSON(batchSchema(), json.RawMessage(tt.raw))
			if err == nil {
				t.Fatal("expected error")
			}
			var invErr *ErrInvalidResponse
			if !errors.As(err, &invErr) {
				t.Fatalf("expected ErrInvalidResponse, got: %T", err)
			}
		})
	}
}

func TestValidateJSON_NilSchema(t *testing.T) {
	if err := ValidateJSON(nil, json.RawMessage(`not even json`)); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestValidateValue_DecodedInput(t *testing.T) {
	var v any
	if err := json.Unmarshal([]byte(`{"questions":[{"question":"Why?"}]}`), &v); err != nil {
		t.Fatal(err)
	}
	if err := ValidateValue(batchSchema(), v, nil); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}
