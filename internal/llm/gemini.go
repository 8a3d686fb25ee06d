package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// SafetySetting maps a harm category to a blocking threshold.
type SafetySetting struct {
	Category  genai.HarmCategory
	Threshold genai.HarmBlockThreshold
}

// defaultSafetySettings disables blocking across the four standard harm
// categories. Meal-plan prompts have essentially no true positives for these
// filters, and a false positive would silently break generation.
var defaultSafetySettings = []SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
}

// GeminiClient is a client for the Google Gemini API.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a new Gemini API client from a resolved credential.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

// Generate sends a prompt to the requested Gemini model and returns the
// generated text. Absent or withheld output is reported as ErrEmptyResponse,
// ErrNoCandidates or ErrSafetyBlocked; any other failure is an UpstreamError.
func (c *GeminiClient) Generate(ctx context.Context, req GenerateRequest) (ContentResponse, error) {
	model := c.client.GenerativeModel(req.Model)

	if req.SystemInstruction != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.SystemInstruction)},
		}
	}

	if req.Config.Temperature != nil {
		model.SetTemperature(*req.Config.Temperature)
	}
	if req.Config.TopP != nil {
		model.SetTopP(*req.Config.TopP)
	}
	if req.Config.MaxOutputTokens != nil {
		model.SetMaxOutputTokens(*req.Config.MaxOutputTokens)
	}
	if req.Config.ResponseMIMEType != "" {
		model.ResponseMIMEType = req.Config.ResponseMIMEType
	}

	settings := req.SafetySettings
	if settings == nil {
		settings = defaultSafetySettings
	}
	model.SafetySettings = make([]*genai.SafetySetting, 0, len(settings))
	for _, s := range settings {
		model.SafetySettings = append(model.SafetySettings, &genai.SafetySetting{
			Category:  s.Category,
			Threshold: s.Threshold,
		})
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return ContentResponse{}, &UpstreamError{Model: req.Model, Err: err}
	}

	if resp == nil {
		return ContentResponse{}, ErrEmptyResponse
	}

	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
			return ContentResponse{}, fmt.Errorf("%w: block reason %s", ErrSafetyBlocked, resp.PromptFeedback.BlockReason)
		}
		return ContentResponse{}, ErrNoCandidates
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return ContentResponse{}, fmt.Errorf("%w: candidate stopped for safety", ErrSafetyBlocked)
	}
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return ContentResponse{}, ErrNoCandidates
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	usage := TokenUsage{Model: req.Model}
	if resp.UsageMetadata != nil {
		usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return ContentResponse{Content: sb.String(), Usage: usage}, nil
}

// Close closes the underlying Gemini client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}
