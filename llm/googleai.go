package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// GoogleAIClient adapts a langchaingo Google AI model to the Client
// interface. Specialist agents use this backend directly when a
// GOOGLE_API_KEY is configured.
type GoogleAIClient struct {
	model *googleai.GoogleAI
}

// NewGoogleAI constructs a Google AI backed client.
func NewGoogleAI(ctx context.Context, apiKey, model string) (*GoogleAIClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrLLMDisabled
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	m, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, err
	}
	return &GoogleAIClient{model: m}, nil
}

// Chat sends a system+user exchange and returns the first completion.
func (c *GoogleAIClient) Chat(ctx context.Context, system, user string) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}
	resp, err := c.model.GenerateContent(ctx, content)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("llm: empty choices")
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}
