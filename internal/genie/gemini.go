package genie

import (
	"context"
	"errors"
	"os"

	"google.golang.org/genai"
)

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string
}

func NewGeminiConfig() (*GeminiConfig, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable is required")
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiConfig{APIKey: apiKey, Model: model}, nil
}

// GeminiProvider streams completions from the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	config *GeminiConfig
}

func NewGeminiProvider(config *GeminiConfig) (*GeminiProvider, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &ProviderError{
			Provider: "gemini",
			Code:     ErrCodeAPIKey,
			Message:  "failed to create Gemini client",
			Err:      err,
		}
	}
	return &GeminiProvider{client: client, config: config}, nil
}

func (p *GeminiProvider) Stream(ctx context.Context, prompt string, emit func(chunk string) error) error {
	for resp, err := range p.client.Models.GenerateContentStream(ctx, p.config.Model, genai.Text(prompt), nil) {
		if err != nil {
			return &ProviderError{
				Provider: "gemini",
				Code:     ErrCodeServiceDown,
				Message:  "streaming generation failed",
				Err:      err,
			}
		}
		text, err := resp.Text()
		if err != nil {
			continue
		}
		if text == "" {
			continue
		}
		if err := emit(text); err != nil {
			return err
		}
	}
	return nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

// Register the Gemini provider on package import.
func init() {
	RegisterProvider("gemini", func() (Provider, error) {
		config, err := NewGeminiConfig()
		if err != nil {
			return nil, err
		}
		return NewGeminiProvider(config)
	})
}
