package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameForModel(t *testing.T) {
	tests := []struct {
		model    string
		expected string
	}{
		{"gpt-4o", ProviderOpenAI},
		{"GPT-4o-mini", ProviderOpenAI},
		{"o1-mini", ProviderOpenAI},
		{"o3", ProviderOpenAI},
		{"claude-3-5-sonnet-latest", ProviderAnthropic},
		{"gemini-1.5-pro", ProviderGemini},
		{"mistral-large", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.expected, NameForModel(tt.model))
		})
	}
}
