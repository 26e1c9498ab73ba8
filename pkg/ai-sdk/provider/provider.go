package provider

import (
	"fmt"
	"strings"

	"github.com/agencyflow/agencyflow/pkg/domain"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// NameForModel maps a model name to the provider that serves it. Unknown
// models return an empty name.
func NameForModel(model string) string {
	model = strings.ToLower(strings.TrimSpace(model))

	switch {
	case strings.HasPrefix(model, "gpt"), strings.HasPrefix(model, "o1"), strings.HasPrefix(model, "o3"), strings.HasPrefix(model, "o4"):
		return ProviderOpenAI
	case strings.HasPrefix(model, "claude"):
		return ProviderAnthropic
	case strings.HasPrefix(model, "gemini"):
		return ProviderGemini
	default:
		return ""
	}
}

// Resolve picks the provider for model, falling back to defaultName when the
// model does not identify one.
func Resolve(providers map[string]domain.AIProvider, model string, defaultName string) (domain.AIProvider, string, error) {
	name := NameForModel(model)
	if name == "" {
		name = defaultName
	}

	p, ok := providers[name]
	if !ok || p == nil {
		return nil, name, fmt.Errorf("ai provider %q is not configured", name)
	}

	return p, name, nil
}
