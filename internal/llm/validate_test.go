package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func quizSchema() *Schema {
	return &Schema{
		Name:        "test-quiz-item",
		Description: "A quiz item",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"prompt":  map[string]any{"type": "string"},
				"correct": map[string]any{"type": "integer", "minimum": 0},
				"topic":   map[string]any{"type": "string", "enum": []any{"drag", "emi", "fracture"}},
			},
			"required": []any{"prompt", "correct"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"prompt":"Which term dominates?","correct":1,"topic":"drag"}`, false},
		{"optional omitted", `{"prompt":"p","correct":0}`, false},
		{"missing required", `{"prompt":"p"}`, true},
		{"wrong type", `{"prompt":"p","correct":"one"}`, true},
		{"below minimum", `{"prompt":"p","correct":-1}`, true},
		{"bad enum", `{"prompt":"p","correct":0,"topic":"optics"}`, true},
		{"malformed", `{not json}`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(quizSchema(), json.RawMessage(tt.raw))
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("expected no error, got: %v", err)
				}
				return
			}
			var inv *ErrInvalidResponse
			if !errors.As(err, &inv) {
				t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
			}
			if string(inv.Content) != tt.raw {
				t.Fatalf("expected offending content to be kept, got %q", inv.Content)
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`{"anything":"goes"}`)); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestValidateResponse_Nested(t *testing.T) {
	schema := &Schema{
		Name: "test-nested",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"lesson": map[string]any{
					"type":       "object",
					"properties": map[string]any{"id": map[string]any{"type": "string"}},
					"required":   []any{"id"},
				},
				"scores": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "integer"},
				},
			},
			"required": []any{"lesson", "scores"},
		},
	}

	if err := validateResponse(schema, json.RawMessage(`{"lesson":{"id":"drag-force"},"scores":[7,9]}`)); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if err := validateResponse(schema, json.RawMessage(`{"lesson":{"id":"drag-force"},"scores":["seven"]}`)); err == nil {
		t.Fatal("expected error for wrong array item type")
	}
}

func TestValidateResponse_BadSchema(t *testing.T) {
	schema := &Schema{
		Name:       "test-broken",
		Definition: map[string]any{"type": 42},
	}
	err := validateResponse(schema, json.RawMessage(`{}`))
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
	}
}
