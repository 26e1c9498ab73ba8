package openai

import (
	"context"
	"fmt"

	"github.com/agencyflow/agencyflow/pkg/domain"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

const DefaultModel = "gpt-4o-mini"

var maxCompletionTokensModels = map[string]bool{
	"o1": true, "o1-2024-12-17": true, "o1-mini": true, "o1-mini-2024-09-12": true,
	"o1-preview": true, "o1-preview-2024-09-12": true,
	"o3": true, "o3-mini": true,
	"gpt-5": true, "gpt-5-mini": true, "gpt-5-nano": true,
}

// Provider completes prompts with the OpenAI chat completions API.
type Provider struct {
	client *openai.Client
}

type Config struct {
	APIKey  string
	BaseURL string
}

func New(config Config) *Provider {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &Provider{
		client: openai.NewClientWithConfig(clientConfig),
	}
}

func (p *Provider) Complete(ctx context.Context, req domain.AICompletionRequest) (domain.AICompletion, error) {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	}

	if req.MaxTokens > 0 {
		if maxCompletionTokensModels[model] {
			chatReq.MaxCompletionTokens = req.MaxTokens
		} else {
			chatReq.MaxTokens = req.MaxTokens
		}
	}

	log.Debug().Str("model", model).Msg("Sending chat completion to openai")

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return domain.AICompletion{}, fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return domain.AICompletion{}, fmt.Errorf("openai returned no choices")
	}

	return domain.AICompletion{
		Model:      resp.Model,
		Text:       resp.Choices[0].Message.Content,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
