package lessons

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// lessonSchemaDef is the structural schema every lesson file must satisfy.
// Cross-field rules (answer keys, model names) are checked in Go.
var lessonSchemaDef = map[string]any{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type":    "object",
	"required": []any{
		"schema_version", "id", "title", "model",
		"hook", "predict", "play", "review",
		"twist_predict", "twist_play", "twist_review",
		"applications", "test", "mastery",
	},
	"properties": map[string]any{
		"schema_version": map[string]any{"type": "string", "pattern": "^v[0-9]+(\\.[0-9]+){0,2}$"},
		"id":             map[string]any{"type": "string", "pattern": "^[a-z0-9][a-z0-9-]*$"},
		"order":          map[string]any{"type": "integer", "minimum": 0},
		"title":          nonEmpty,
		"subject":        map[string]any{"type": "string"},
		"summary":        map[string]any{"type": "string"},
		"model":          nonEmpty,
		"gates": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"pass_threshold":   map[string]any{"type": "integer", "minimum": 1},
				"min_applications": map[string]any{"type": "integer", "minimum": 0},
				"jump_policy":      map[string]any{"enum": []any{"any", "visited", "backward"}},
				"retry_phase":      map[string]any{"type": "string"},
				"debounce":         map[string]any{"type": "string"},
			},
			"additionalProperties": false,
		},
		"hook": map[string]any{
			"type":     "object",
			"required": []any{"headline"},
			"properties": map[string]any{
				"headline": nonEmpty,
				"body":     map[string]any{"type": "string"},
			},
		},
		"predict":       predictionSchema,
		"twist_predict": predictionSchema,
		"play":          playSchema,
		"twist_play":    playSchema,
		"review":        reviewSchema,
		"twist_review":  reviewSchema,
		"applications": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []any{"title", "summary"},
				"properties": map[string]any{
					"title":   nonEmpty,
					"summary": nonEmpty,
					"detail":  map[string]any{"type": "string"},
				},
			},
		},
		"test": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []any{"prompt", "options"},
				"properties": map[string]any{
					"scenario":    map[string]any{"type": "string"},
					"prompt":      nonEmpty,
					"explanation": map[string]any{"type": "string"},
					"options": map[string]any{
						"type":     "array",
						"minItems": 2,
						"items": map[string]any{
							"type":     "object",
							"required": []any{"text"},
							"properties": map[string]any{
								"text":    nonEmpty,
								"correct": map[string]any{"type": "boolean"},
							},
						},
					},
				},
			},
		},
		"mastery": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"message": map[string]any{"type": "string"},
			},
		},
	},
}

var nonEmpty = map[string]any{"type": "string", "minLength": 1}

var predictionSchema = map[string]any{
	"type":     "object",
	"required": []any{"prompt", "choices", "answer"},
	"properties": map[string]any{
		"prompt": nonEmpty,
		"answer": nonEmpty,
		"choices": map[string]any{
			"type":     "array",
			"minItems": 2,
			"items": map[string]any{
				"type":     "object",
				"required": []any{"id", "text"},
				"properties": map[string]any{
					"id":   nonEmpty,
					"text": nonEmpty,
				},
			},
		},
	},
}

var playSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"intro":  map[string]any{"type": "string"},
		"params": map[string]any{"type": "object", "additionalProperties": map[string]any{"type": "number"}},
		"focus":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
}

var reviewSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"correct":   map[string]any{"type": "string"},
		"incorrect": map[string]any{"type": "string"},
		"body":      map[string]any{"type": "string"},
	},
}

const lessonSchemaURL = "labquest://lesson.schema.json"

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// lessonSchema compiles the lesson schema on first use.
func lessonSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		def, err := toJSONValue(lessonSchemaDef)
		if err != nil {
			compileErr = fmt.Errorf("encode lesson schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(lessonSchemaURL, def); err != nil {
			compileErr = fmt.Errorf("add lesson schema: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(lessonSchemaURL)
	})
	return compiledSchema, compileErr
}

// toJSONValue converts v into the generic form the validator expects.
func toJSONValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(raw))
}
