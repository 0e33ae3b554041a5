package classify

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// geminiModels is the subset of *genai.Models used here.
type geminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	Get(ctx context.Context, model string, config *genai.GetModelConfig) (*genai.Model, error)
}

// GeminiClient generates with the Gemini API.
type GeminiClient struct {
	models geminiModels
	model  string
}

// NewGeminiClient creates a Gemini API client for model.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &GeminiClient{models: client.Models, model: model}, nil
}

// Generate implements Generator.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("empty response from model")
	}
	return text, nil
}

// Ping implements Generator by fetching the model metadata.
func (g *GeminiClient) Ping(ctx context.Context) error {
	if _, err := g.models.Get(ctx, g.model, nil); err != nil {
		return fmt.Errorf("getting model %s: %w", g.model, err)
	}
	return nil
}
