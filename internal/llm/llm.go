package llm

import (
	"context"
)

// TokenUsage tracks the tokens consumed by a request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// GenerationConfig carries the tunable sampling parameters for one call.
type GenerationConfig struct {
	Temperature      *float32
	TopP             *float32
	MaxOutputTokens  *int32
	ResponseMIMEType string
}

// GenerateRequest describes one content-generation call.
type GenerateRequest struct {
	Model             string
	Prompt            string
	SystemInstruction string
	Config            GenerationConfig
	// SafetySettings overrides the default block-none configuration when non-nil.
	SafetySettings []SafetySetting
}

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   TokenUsage
}

// ContentGenerator is an interface for generating text from a prompt.
type ContentGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}
