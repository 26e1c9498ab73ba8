package gemini

import (
	"context"
	"fmt"

	"github.com/agencyflow/agencyflow/pkg/domain"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

// Provider completes prompts with the Gemini API.
type Provider struct {
	client *genai.Client
}

func New(ctx context.Context, apiKey string) (*Provider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Provider{client: client}, nil
}

func (p *Provider) Complete(ctx context.Context, req domain.AICompletionRequest) (domain.AICompletion, error) {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	config := &genai.GenerateContentConfig{}

	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(req.System)},
		}
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), config)
	if err != nil {
		return domain.AICompletion{}, fmt.Errorf("gemini api error: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return domain.AICompletion{}, fmt.Errorf("gemini returned no candidates")
	}

	completion := domain.AICompletion{
		Model: model,
		Text:  resp.Text(),
	}

	if resp.UsageMetadata != nil {
		completion.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}

	return completion, nil
}
