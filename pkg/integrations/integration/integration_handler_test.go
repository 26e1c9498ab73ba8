package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/agencyflow/agencyflow/pkg/domain"
	"github.com/agencyflow/agencyflow/pkg/expressions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegrationHandler_Validate(t *testing.T) {
	handler := NewIntegrationHandler(domain.HandlerDeps{}).(domain.ConfigValidator)

	assert.NoError(t, handler.Validate(map[string]any{"service": "slack", "action": "send_message"}))
	assert.Error(t, handler.Validate(map[string]any{"service": "slack"}))
	assert.Error(t, handler.Validate(map[string]any{"action": "send_message"}))
}

func TestIntegrationHandler_Execute(t *testing.T) {
	var received map[string]any

	slack := domain.ConnectorActions{
		"send_message": func(ctx context.Context, params map[string]any) (domain.Payload, error) {
			received = params
			return domain.Payload{"timestamp": "1700000000.000100"}, nil
		},
	}

	handler := NewIntegrationHandler(domain.HandlerDeps{
		ParameterBinder: expressions.NewTemplateBinder(),
		Connectors:      map[string]domain.IntegrationConnector{"slack": slack},
	})

	config := map[string]any{
		"service": "Slack",
		"action":  "send_message",
		"params":  map[string]any{"channel": "#admissions", "text": "New lead {{student.name}}"},
	}
	input := domain.Payload{"student": map[string]any{"name": "Ada"}}

	t.Run("test mode", func(t *testing.T) {
		received = nil

		result, err := handler.Execute(context.Background(), domain.NodeInput{
			Config:  config,
			Input:   input,
			Context: domain.NewExecutionContext(domain.NewExecutionContextParams{TestMode: true}),
		})
		require.NoError(t, err)

		assert.Nil(t, received)
		assert.Equal(t, true, result["simulated"])
		assert.Equal(t, "slack", result["service"])
	})

	t.Run("real mode", func(t *testing.T) {
		result, err := handler.Execute(context.Background(), domain.NodeInput{
			Config:  config,
			Input:   input,
			Context: domain.NewExecutionContext(domain.NewExecutionContextParams{}),
		})
		require.NoError(t, err)

		assert.Equal(t, map[string]any{"channel": "#admissions", "text": "New lead Ada"}, received)
		assert.Equal(t, map[string]any{"timestamp": "1700000000.000100"}, result["result"])
	})

	t.Run("unknown action", func(t *testing.T) {
		_, err := handler.Execute(context.Background(), domain.NodeInput{
			Config:  map[string]any{"service": "slack", "action": "archive_channel"},
			Context: domain.NewExecutionContext(domain.NewExecutionContextParams{}),
		})

		assert.True(t, errors.Is(err, domain.ErrUnsupportedAction))
	})

	t.Run("unknown service", func(t *testing.T) {
		_, err := handler.Execute(context.Background(), domain.NodeInput{
			Config:  map[string]any{"service": "teams", "action": "send_message"},
			Context: domain.NewExecutionContext(domain.NewExecutionContextParams{}),
		})

		assert.ErrorContains(t, err, "not configured")
	})
}
