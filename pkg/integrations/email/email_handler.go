package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agencyflow/agencyflow/pkg/domain"
	"github.com/agencyflow/agencyflow/pkg/expressions"

	"github.com/rs/xid"
)

var ErrEmailSenderNotConfigured = errors.New("email service is not configured")

type EmailHandler struct {
	binder domain.ParameterBinder
	sender domain.EmailSender
}

func NewEmailHandler(deps domain.HandlerDeps) domain.NodeHandler {
	return &EmailHandler{
		binder: deps.ParameterBinder,
		sender: deps.EmailSender,
	}
}

func (h *EmailHandler) Validate(config map[string]any) error {
	if err := domain.RequireFields(config, "to", "subject"); err != nil {
		return err
	}

	if !domain.HasValue(config, "body") && !domain.HasValue(config, "template") {
		return domain.NewMissingFieldError("body")
	}

	return nil
}

func (h *EmailHandler) Execute(ctx context.Context, input domain.NodeInput) (domain.Payload, error) {
	scope := input.Context.Scope(input.Input)
	config := expressions.BindConfig(h.binder, input.Config, scope)

	message := domain.EmailMessage{
		To:      recipients(config["to"]),
		Subject: domain.StringValue(config, "subject", ""),
		Body:    domain.StringValue(config, "body", ""),
		Data:    domain.MapValue(config, "data"),
	}

	if len(message.To) == 0 {
		return nil, domain.NewInvalidFieldError("to", "must contain at least one address")
	}

	// Templates are rendered against the scope with the node's data on top.
	if template, ok := input.Config["template"].(string); ok && template != "" && message.Body == "" {
		message.Template = template
		message.Body = h.render(template, domain.Payload(scope).Merge(message.Data))
	}

	if input.Context.TestMode {
		return domain.Simulated(map[string]any{
			"status":    "sent",
			"messageId": xid.New().String(),
			"to":        toAnySlice(message.To),
			"subject":   message.Subject,
		}), nil
	}

	if h.sender == nil {
		return nil, ErrEmailSenderNotConfigured
	}

	messageID, err := h.sender.SendEmail(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	return domain.Payload{
		"status":    "sent",
		"messageId": messageID,
		"to":        toAnySlice(message.To),
		"subject":   message.Subject,
	}, nil
}

func (h *EmailHandler) render(template string, scope map[string]any) string {
	if h.binder == nil {
		return template
	}

	return h.binder.BindString(template, scope)
}

// recipients accepts a list or a comma separated string.
func recipients(value any) []string {
	var raw []string

	switch v := value.(type) {
	case string:
		raw = strings.Split(v, ",")
	case []string:
		raw = v
	case []any:
		for _, item := range v {
			raw = append(raw, domain.ToString(item))
		}
	}

	addresses := make([]string, 0, len(raw))
	for _, address := range raw {
		address = strings.TrimSpace(address)
		if address != "" {
			addresses = append(addresses, address)
		}
	}

	return addresses
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}

	return out
}
