package action

import (
	"context"
	"time"

	"github.com/agencyflow/agencyflow/pkg/domain"
	"github.com/agencyflow/agencyflow/pkg/expressions"
)

// ActionHandler is the generic step: it binds its config against the
// incoming data and returns it together with the input.
type ActionHandler struct {
	binder domain.ParameterBinder
}

func NewActionHandler(deps domain.HandlerDeps) domain.NodeHandler {
	return &ActionHandler{
		binder: deps.ParameterBinder,
	}
}

func (h *ActionHandler) Execute(ctx context.Context, input domain.NodeInput) (domain.Payload, error) {
	scope := input.Context.Scope(input.Input)
	config := expressions.BindConfig(h.binder, input.Config, scope)

	actionName := domain.StringValue(config, "action", "generic")

	if input.Context.TestMode {
		return domain.Simulated(map[string]any{
			"action": actionName,
			"config": config,
		}), nil
	}

	return domain.Payload{
		"action":     actionName,
		"config":     config,
		"input":      map[string]any(input.Input.Clone()),
		"executedAt": time.Now().UTC().Format(time.RFC3339),
	}, nil
}
