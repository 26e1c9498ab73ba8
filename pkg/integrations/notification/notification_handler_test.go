package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/agencyflow/agencyflow/pkg/domain"
	"github.com/agencyflow/agencyflow/pkg/expressions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	sent []domain.Notification
	err  error
}

func (n *fakeNotifier) Notify(ctx context.Context, notification domain.Notification) (string, error) {
	if n.err != nil {
		return "", n.err
	}

	n.sent = append(n.sent, notification)

	return "notif-1", nil
}

func TestNotificationHandler_Validate(t *testing.T) {
	handler := NewNotificationHandler(domain.HandlerDeps{}).(domain.ConfigValidator)

	assert.NoError(t, handler.Validate(map[string]any{"title": "Welcome", "message": "Hi"}))

	err := handler.Validate(map[string]any{"title": "Welcome"})
	var configErr *domain.ConfigurationError
	require.True(t, errors.As(err, &configErr))
	assert.Equal(t, "message", configErr.Field)
}

func TestNotificationHandler_Execute(t *testing.T) {
	config := map[string]any{
		"title":     "New lead",
		"message":   "{{student.name}} signed up",
		"recipient": "counsellor-7",
	}
	input := domain.Payload{"student": map[string]any{"name": "Ada"}}

	t.Run("test mode does not notify", func(t *testing.T) {
		notifier := &fakeNotifier{}
		handler := NewNotificationHandler(domain.HandlerDeps{ParameterBinder: expressions.NewTemplateBinder(), Notifier: notifier})

		result, err := handler.Execute(context.Background(), domain.NodeInput{
			Config:  config,
			Input:   input,
			Context: domain.NewExecutionContext(domain.NewExecutionContextParams{TestMode: true}),
		})
		require.NoError(t, err)

		assert.Empty(t, notifier.sent)
		assert.Equal(t, "created", result["status"])
		assert.Equal(t, true, result["simulated"])
		assert.NotEmpty(t, result["notificationId"])
	})

	t.Run("real mode notifies", func(t *testing.T) {
		notifier := &fakeNotifier{}
		handler := NewNotificationHandler(domain.HandlerDeps{ParameterBinder: expressions.NewTemplateBinder(), Notifier: notifier})

		result, err := handler.Execute(context.Background(), domain.NodeInput{
			Config:  config,
			Input:   input,
			Context: domain.NewExecutionContext(domain.NewExecutionContextParams{ExecutionID: "exec-1", WorkflowID: "wf-1"}),
		})
		require.NoError(t, err)

		require.Len(t, notifier.sent, 1)
		assert.Equal(t, "Ada signed up", notifier.sent[0].Message)
		assert.Equal(t, "counsellor-7", notifier.sent[0].Recipient)
		assert.Equal(t, "info", notifier.sent[0].Level)
		assert.Equal(t, "exec-1", notifier.sent[0].ExecutionID)
		assert.Equal(t, "notif-1", result["notificationId"])
		assert.NotContains(t, result, "simulated")
	})

	t.Run("missing notifier", func(t *testing.T) {
		handler := NewNotificationHandler(domain.HandlerDeps{})

		_, err := handler.Execute(context.Background(), domain.NodeInput{
			Config:  config,
			Context: domain.NewExecutionContext(domain.NewExecutionContextParams{}),
		})

		assert.ErrorIs(t, err, ErrNotifierNotConfigured)
	})

	t.Run("notifier failure is wrapped", func(t *testing.T) {
		boom := errors.New("redis down")
		handler := NewNotificationHandler(domain.HandlerDeps{Notifier: &fakeNotifier{err: boom}})

		_, err := handler.Execute(context.Background(), domain.NodeInput{
			Config:  config,
			Context: domain.NewExecutionContext(domain.NewExecutionContextParams{}),
		})

		assert.ErrorIs(t, err, boom)
	})
}
