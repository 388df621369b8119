package coach

import "github.com/abhisek/labquest/internal/llm"

// NoteSchema is the structured output of a review note.
var NoteSchema = &llm.Schema{
	Name:        "review-note",
	Description: "A short review note for a learner who failed a lesson test",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "2-3 sentences naming the idea behind the missed questions",
			},
			"tips": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "1-3 short, specific tips (under 20 words each)",
				"maxItems":    3,
			},
			"retry": map[string]any{
				"type":        "string",
				"description": "One concrete thing to try in the simulation before retrying",
			},
		},
		"required":             []any{"summary", "tips", "retry"},
		"additionalProperties": false,
	},
}
