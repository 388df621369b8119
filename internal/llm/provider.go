// Package llm is the optional language-model layer behind the lesson coach.
// Every provider returns JSON that has already been checked against the
// request schema, so callers only ever decode.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

// Provider is the core abstraction for LLM interaction.
type Provider interface {
	// Generate sends a prompt and returns the response. When req.Schema is
	// set the provider uses its native structured output and Content is
	// the validated JSON object.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Purposes label requests for the event log.
const (
	PurposeReviewNote = "review-note"
	PurposeHint       = "hint"
)

// defaultMaxTokens applies when a request leaves MaxTokens at zero.
const defaultMaxTokens = 1024

// Request describes what to send to the LLM.
type Request struct {
	System string

	// Messages is the conversation history. Coaching requests are single
	// turn, so this is usually one user message.
	Messages []Message

	Schema *Schema

	// MaxTokens caps the response. Zero means defaultMaxTokens.
	MaxTokens int

	// Temperature in 0.0 - 1.0. Zero leaves the provider default.
	Temperature float64
}

func (r Request) maxTokens() int {
	if r.MaxTokens <= 0 {
		return defaultMaxTokens
	}
	return r.MaxTokens
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserMessage is shorthand for a one-message conversation.
func UserMessage(content string) []Message {
	return []Message{{Role: RoleUser, Content: content}}
}

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies the schema to the provider and keys the compile
	// cache. Kebab-case, e.g. "review-note".
	Name        string
	Description string
	Definition  map[string]any
}

// StopReason is the normalized reason generation stopped.
type StopReason string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
)

// Response holds the LLM's output.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason StopReason
}

// Decode unmarshals Content into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Content, v); err != nil {
		return &ErrInvalidResponse{Content: r.Content, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// finish applies the checks every provider shares: a truncated structured
// response is an error, and structured content must match its schema.
func finish(req Request, resp *Response) (*Response, error) {
	if resp.Usage.TotalTokens == 0 {
		resp.Usage.TotalTokens = resp.Usage.InputTokens + resp.Usage.OutputTokens
	}
	if req.Schema == nil {
		return resp, nil
	}
	if resp.StopReason == StopMaxTokens {
		return nil, &ErrMaxTokensExceeded{Content: resp.Content}
	}
	if err := validateResponse(req.Schema, resp.Content); err != nil {
		return nil, err
	}
	return resp, nil
}

// resolveModel maps a friendly model name to a provider model ID. Unknown
// names pass through so full model IDs work too.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
