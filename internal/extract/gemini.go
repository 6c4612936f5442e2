package extract

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModelName is the Gemini model used for SMS classification. Flash is
// fast and cheap; messages are tiny.
const DefaultModelName = "gemini-1.5-flash-latest"

// GeminiClient is the ModelClient backed by the Gemini API. A fresh client is
// built per call because the API key is chosen per call by the failover
// policy.
type GeminiClient struct {
	model string
}

// NewGeminiClient creates a Gemini-backed model client. An empty model name
// selects DefaultModelName.
func NewGeminiClient(model string) *GeminiClient {
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiClient{model: model}
}

// GenerateText implements ModelClient.
func (g *GeminiClient) GenerateText(ctx context.Context, apiKey, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1beta"},
	})
	if err != nil {
		return "", fmt.Errorf("extract: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("extract: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("extract: empty response from model")
	}
	return text, nil
}
