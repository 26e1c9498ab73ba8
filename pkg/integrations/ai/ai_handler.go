package ai

import (
	"context"
	"fmt"

	"github.com/agencyflow/agencyflow/pkg/ai-sdk/provider"
	"github.com/agencyflow/agencyflow/pkg/domain"
	"github.com/agencyflow/agencyflow/pkg/expressions"
)

const DefaultMaxTokens = 1000

type AIHandler struct {
	binder          domain.ParameterBinder
	providers       map[string]domain.AIProvider
	defaultProvider string
}

func NewAIHandler(deps domain.HandlerDeps) domain.NodeHandler {
	return &AIHandler{
		binder:          deps.ParameterBinder,
		providers:       deps.AIProviders,
		defaultProvider: deps.DefaultAIProvider,
	}
}

type PromptParams struct {
	Prompt    string `json:"prompt"`
	System    string `json:"system"`
	Model     string `json:"model"`
	MaxTokens int    `json:"maxTokens"`
}

func (h *AIHandler) Validate(config map[string]any) error {
	return domain.RequireFields(config, "prompt")
}

func (h *AIHandler) Execute(ctx context.Context, input domain.NodeInput) (domain.Payload, error) {
	config := expressions.BindConfig(h.binder, input.Config, input.Context.Scope(input.Input))

	p := PromptParams{
		Prompt:    domain.StringValue(config, "prompt", ""),
		System:    domain.StringValue(config, "system", ""),
		Model:     domain.StringValue(config, "model", ""),
		MaxTokens: domain.IntValue(config, "maxTokens", DefaultMaxTokens),
	}

	if input.Context.TestMode {
		return domain.Simulated(map[string]any{
			"model":      p.Model,
			"prompt":     p.Prompt,
			"response":   "Simulated AI response",
			"tokensUsed": float64(0),
		}), nil
	}

	aiProvider, providerName, err := provider.Resolve(h.providers, p.Model, h.defaultProvider)
	if err != nil {
		return nil, err
	}

	completion, err := aiProvider.Complete(ctx, domain.AICompletionRequest{
		Model:     p.Model,
		Prompt:    p.Prompt,
		System:    p.System,
		MaxTokens: p.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("ai completion failed: %w", err)
	}

	return domain.Payload{
		"model":      completion.Model,
		"provider":   providerName,
		"prompt":     p.Prompt,
		"response":   completion.Text,
		"tokensUsed": float64(completion.TokensUsed),
	}, nil
}
