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
		{"gemini-pro", "gemini-2.0-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"}, // Pass-through
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
			"question":   map[string]any{"type": "string"},
			"difficulty": map[string]any{"type": "integer"},
			"topic":      map[string]any{"type": "string", "enum": []any{"addition", "subtraction", "fractions"}},
			"hints": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []any{"question", "difficulty"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != "OBJECT" {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 4 {
		t.Fatalf("expected 4 properties, got %d", len(schema.Properties))
	}
	if schema.Properties["question"].Type != "STRING" {
		t.Fatalf("expected STRING for question, got %s", schema.Properties["question"].Type)
	}
	if schema.Properties["difficulty"].Type != "INTEGER" {
		t.Fatalf("expected INTEGER for difficulty, got %s", schema.Properties["difficulty"].Type)
	}
	if len(schema.Properties["topic"].Enum) != 3 {
		t.Fatalf("expected 3 enum values, got %d", len(schema.Properties["topic"].Enum))
	}
	if schema.Properties["hints"].Type != "ARRAY" {
		t.Fatalf("expected ARRAY for hints, got %s", schema.Properties["hints"].Type)
	}
	if schema.Properties["hints"].Items.Type != "STRING" {
		t.Fatalf("expected STRING for hints items, got %s", schema.Properties["hints"].Items.Type)
	}
	if len(schema.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %d", len(schema.Required))
	}
}
