package tutor

import "github.com/opengov/earlymath/internal/llm"

// ProblemSchema defines the JSON schema for word-problem generation.
var ProblemSchema = &llm.Schema{
	Name:        "word-problem",
	Description: "A math word problem with its solution and explanation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"problem": map[string]any{
				"type":        "string",
				"description": "The full problem statement, in age-appropriate language",
			},
			"solution": map[string]any{
				"type":        "string",
				"description": "The final answer",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "Step-by-step explanation of how to reach the answer",
			},
		},
		"required":             []any{"problem", "solution", "explanation"},
		"additionalProperties": false,
	},
}
