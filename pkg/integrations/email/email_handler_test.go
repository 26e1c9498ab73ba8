package email

import (
	"context"
	"errors"
	"testing"

	"github.com/agencyflow/agencyflow/pkg/domain"
	"github.com/agencyflow/agencyflow/pkg/expressions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	messages []domain.EmailMessage
}

func (s *fakeSender) SendEmail(ctx context.Context, message domain.EmailMessage) (string, error) {
	s.messages = append(s.messages, message)
	return "msg-1", nil
}

func TestEmailHandler_Validate(t *testing.T) {
	handler := NewEmailHandler(domain.HandlerDeps{}).(domain.ConfigValidator)

	tests := []struct {
		name    string
		config  map[string]any
		wantErr bool
	}{
		{"body", map[string]any{"to": "a@example.com", "subject": "Hi", "body": "Hello"}, false},
		{"template", map[string]any{"to": "a@example.com", "subject": "Hi", "template": "Hello {{name}}"}, false},
		{"missing to", map[string]any{"subject": "Hi", "body": "Hello"}, true},
		{"missing subject", map[string]any{"to": "a@example.com", "body": "Hello"}, true},
		{"missing body and template", map[string]any{"to": "a@example.com", "subject": "Hi"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := handler.Validate(tt.config)
			if tt.wantErr {
				var configErr *domain.ConfigurationError
				assert.True(t, errors.As(err, &configErr))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestEmailHandler_Execute(t *testing.T) {
	binder := expressions.NewTemplateBinder()

	t.Run("test mode is simulated", func(t *testing.T) {
		sender := &fakeSender{}
		handler := NewEmailHandler(domain.HandlerDeps{ParameterBinder: binder, EmailSender: sender})

		result, err := handler.Execute(context.Background(), domain.NodeInput{
			Config:  map[string]any{"to": "a@example.com", "subject": "Hi", "body": "Hello"},
			Context: domain.NewExecutionContext(domain.NewExecutionContextParams{TestMode: true}),
		})
		require.NoError(t, err)

		assert.Empty(t, sender.messages)
		assert.Equal(t, true, result["simulated"])
		assert.Equal(t, "sent", result["status"])
	})

	t.Run("template is rendered with data", func(t *testing.T) {
		sender := &fakeSender{}
		handler := NewEmailHandler(domain.HandlerDeps{ParameterBinder: binder, EmailSender: sender})

		result, err := handler.Execute(context.Background(), domain.NodeInput{
			Config: map[string]any{
				"to":       "a@example.com, b@example.com",
				"subject":  "Welcome {{student.name}}",
				"template": "<p>Hi {{student.name}}, your intake is {{intake}}</p>",
				"data":     map[string]any{"intake": "Fall"},
			},
			Input:   domain.Payload{"student": map[string]any{"name": "Ada"}},
			Context: domain.NewExecutionContext(domain.NewExecutionContextParams{}),
		})
		require.NoError(t, err)

		require.Len(t, sender.messages, 1)
		message := sender.messages[0]
		assert.Equal(t, []string{"a@example.com", "b@example.com"}, message.To)
		assert.Equal(t, "Welcome Ada", message.Subject)
		assert.Equal(t, "<p>Hi Ada, your intake is Fall</p>", message.Body)
		assert.NotEmpty(t, message.Template)
		assert.Equal(t, "msg-1", result["messageId"])
	})

	t.Run("recipient list", func(t *testing.T) {
		sender := &fakeSender{}
		handler := NewEmailHandler(domain.HandlerDeps{ParameterBinder: binder, EmailSender: sender})

		_, err := handler.Execute(context.Background(), domain.NodeInput{
			Config:  map[string]any{"to": []any{"a@example.com", " "}, "subject": "Hi", "body": "Hello"},
			Context: domain.NewExecutionContext(domain.NewExecutionContextParams{}),
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"a@example.com"}, sender.messages[0].To)
		assert.Empty(t, sender.messages[0].Template)
	})

	t.Run("missing sender", func(t *testing.T) {
		handler := NewEmailHandler(domain.HandlerDeps{ParameterBinder: binder})

		_, err := handler.Execute(context.Background(), domain.NodeInput{
			Config:  map[string]any{"to": "a@example.com", "subject": "Hi", "body": "Hello"},
			Context: domain.NewExecutionContext(domain.NewExecutionContextParams{}),
		})

		assert.ErrorIs(t, err, ErrEmailSenderNotConfigured)
	})
}
