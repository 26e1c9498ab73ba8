package integration

import (
	"context"
	"fmt"
	"strings"

	"github.com/agencyflow/agencyflow/pkg/domain"
	"github.com/agencyflow/agencyflow/pkg/expressions"

	"github.com/rs/xid"
)

// IntegrationHandler forwards an action to the connector registered for the
// node's service.
type IntegrationHandler struct {
	binder     domain.ParameterBinder
	connectors map[string]domain.IntegrationConnector
}

func NewIntegrationHandler(deps domain.HandlerDeps) domain.NodeHandler {
	return &IntegrationHandler{
		binder:     deps.ParameterBinder,
		connectors: deps.Connectors,
	}
}

func (h *IntegrationHandler) Validate(config map[string]any) error {
	return domain.RequireFields(config, "service", "action")
}

func (h *IntegrationHandler) Execute(ctx context.Context, input domain.NodeInput) (domain.Payload, error) {
	config := expressions.BindConfig(h.binder, input.Config, input.Context.Scope(input.Input))

	service := strings.ToLower(domain.StringValue(config, "service", ""))
	action := domain.StringValue(config, "action", "")

	params := domain.MapValue(config, "params")
	if params == nil {
		params = map[string]any{}
	}

	if input.Context.TestMode {
		return domain.Simulated(map[string]any{
			"service":   service,
			"action":    action,
			"params":    params,
			"requestId": xid.New().String(),
		}), nil
	}

	connector, ok := h.connectors[service]
	if !ok || connector == nil {
		return nil, fmt.Errorf("integration service %q is not configured", service)
	}

	result, err := connector.Invoke(ctx, action, params)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", service, action, err)
	}

	return domain.Payload{
		"service": service,
		"action":  action,
		"result":  map[string]any(result),
	}, nil
}
