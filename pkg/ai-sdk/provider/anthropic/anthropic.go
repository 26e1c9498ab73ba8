package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/agencyflow/agencyflow/pkg/domain"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	DefaultModel     = "claude-3-5-haiku-latest"
	DefaultMaxTokens = 1024
)

// Provider completes prompts with the Anthropic messages API.
type Provider struct {
	client anthropic.Client
}

type Config struct {
	APIKey  string
	BaseURL string
}

func New(config Config) *Provider {
	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &Provider{
		client: anthropic.NewClient(opts...),
	}
}

func (p *Provider) Complete(ctx context.Context, req domain.AICompletionRequest) (domain.AICompletion, error) {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: req.Prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	}

	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{
			Text: req.System,
		}}
	}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return domain.AICompletion{}, fmt.Errorf("anthropic api error: %w", err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(b.Text)
		}
	}

	return domain.AICompletion{
		Model:      string(message.Model),
		Text:       text.String(),
		TokensUsed: int(message.Usage.InputTokens + message.Usage.OutputTokens),
	}, nil
}
