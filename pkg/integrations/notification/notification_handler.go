package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agencyflow/agencyflow/pkg/domain"
	"github.com/agencyflow/agencyflow/pkg/expressions"

	"github.com/rs/xid"
)

var ErrNotifierNotConfigured = errors.New("notification service is not configured")

type NotificationHandler struct {
	binder   domain.ParameterBinder
	notifier domain.Notifier
}

func NewNotificationHandler(deps domain.HandlerDeps) domain.NodeHandler {
	return &NotificationHandler{
		binder:   deps.ParameterBinder,
		notifier: deps.Notifier,
	}
}

func (h *NotificationHandler) Validate(config map[string]any) error {
	return domain.RequireFields(config, "title", "message")
}

type NotificationParams struct {
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Recipient string         `json:"recipient"`
	Level     string         `json:"level"`
	Data      map[string]any `json:"data"`
}

func (h *NotificationHandler) Execute(ctx context.Context, input domain.NodeInput) (domain.Payload, error) {
	config := expressions.BindConfig(h.binder, input.Config, input.Context.Scope(input.Input))

	var p NotificationParams
	if err := domain.BindConfig(config, &p); err != nil {
		return nil, err
	}

	if p.Level == "" {
		p.Level = "info"
	}

	if input.Context.TestMode {
		return domain.Simulated(map[string]any{
			"status":         "created",
			"notificationId": xid.New().String(),
			"title":          p.Title,
			"message":        p.Message,
			"recipient":      p.Recipient,
		}), nil
	}

	if h.notifier == nil {
		return nil, ErrNotifierNotConfigured
	}

	notificationID, err := h.notifier.Notify(ctx, domain.Notification{
		ExecutionID: input.Context.ExecutionID,
		WorkflowID:  input.Context.WorkflowID,
		Title:       p.Title,
		Message:     p.Message,
		Recipient:   p.Recipient,
		Level:       p.Level,
		Data:        p.Data,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	return domain.Payload{
		"status":         "created",
		"notificationId": notificationID,
		"title":          p.Title,
		"message":        p.Message,
		"recipient":      p.Recipient,
	}, nil
}
