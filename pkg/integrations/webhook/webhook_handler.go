package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/agencyflow/agencyflow/pkg/domain"
	"github.com/agencyflow/agencyflow/pkg/expressions"

	"github.com/rs/zerolog/log"
)

// WebhookHandler posts a JSON payload to a URL. When a signing secret is
// configured the request carries a signature header.
type WebhookHandler struct {
	binder domain.ParameterBinder
	client *http.Client
	signer *Signer
}

func NewWebhookHandler(deps domain.HandlerDeps) domain.NodeHandler {
	client := deps.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	var signer *Signer
	if deps.WebhookSigningSecret != "" {
		signer = NewSigner(deps.WebhookSigningSecret)
	}

	return &WebhookHandler{
		binder: deps.ParameterBinder,
		client: client,
		signer: signer,
	}
}

func (h *WebhookHandler) Validate(config map[string]any) error {
	return domain.RequireFields(config, "url")
}

func (h *WebhookHandler) Execute(ctx context.Context, input domain.NodeInput) (domain.Payload, error) {
	config := expressions.BindConfig(h.binder, input.Config, input.Context.Scope(input.Input))

	targetURL := domain.StringValue(config, "url", "")

	payload, ok := config["payload"]
	if !ok || payload == nil {
		payload = map[string]any(input.Input.Clone())
	}

	if input.Context.TestMode {
		return domain.Simulated(map[string]any{
			"delivered": true,
			"url":       targetURL,
			"status":    float64(http.StatusOK),
		}), nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, targetURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	for key, value := range domain.MapValue(config, "headers") {
		req.Header.Set(key, domain.ToString(value))
	}

	if h.signer != nil {
		signature, err := h.signer.Sign(body, input.Context.ExecutionID, input.Context.WorkflowID, input.Node.ID)
		if err != nil {
			return nil, err
		}
		req.Header.Set(SignatureHeader, signature)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("webhook delivery failed with status %d", resp.StatusCode)
	}

	log.Debug().
		Str("node_id", input.Node.ID).
		Int("status", resp.StatusCode).
		Msg("Webhook delivered")

	return domain.Payload{
		"delivered": true,
		"url":       targetURL,
		"status":    float64(resp.StatusCode),
		"signed":    h.signer != nil,
	}, nil
}
