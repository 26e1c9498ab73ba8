package filter

import (
	"context"
	"testing"

	"github.com/agencyflow/agencyflow/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterHandler_Execute(t *testing.T) {
	input := domain.Payload{
		"student": map[string]any{"gpa": 3.7, "country": "CA"},
		"score":   82.0,
	}

	tests := []struct {
		name       string
		config     map[string]any
		wantPasses bool
		wantData   any
	}{
		{
			name:       "passes whole input",
			config:     map[string]any{"condition": "score >= 80"},
			wantPasses: true,
			wantData:   map[string]any(input),
		},
		{
			name:       "rejected input yields null",
			config:     map[string]any{"condition": "score > 90"},
			wantPasses: false,
			wantData:   nil,
		},
		{
			name:       "path scoped object",
			config:     map[string]any{"condition": map[string]any{"type": "equals", "field": "country", "value": "CA"}, "path": "student"},
			wantPasses: true,
			wantData:   map[string]any{"gpa": 3.7, "country": "CA"},
		},
		{
			name:       "path scoped scalar",
			config:     map[string]any{"condition": "value > 3.5", "path": "student.gpa"},
			wantPasses: true,
			wantData:   3.7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewFilterHandler(domain.HandlerDeps{}).Execute(context.Background(), domain.NodeInput{
				Config:  tt.config,
				Input:   input,
				Context: domain.NewExecutionContext(domain.NewExecutionContextParams{}),
			})
			require.NoError(t, err)

			assert.Equal(t, tt.wantPasses, result["passes"])
			assert.Equal(t, tt.wantData, result["data"])
		})
	}
}

func TestFilterHandler_Validate(t *testing.T) {
	handler := NewFilterHandler(domain.HandlerDeps{}).(domain.ConfigValidator)

	assert.NoError(t, handler.Validate(map[string]any{"condition": "a == 1"}))
	assert.Error(t, handler.Validate(map[string]any{}))
}
