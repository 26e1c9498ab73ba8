package trigger

import (
	"context"

	"github.com/agencyflow/agencyflow/pkg/domain"
)

// TriggerHandler passes the run's trigger data through unchanged.
type TriggerHandler struct{}

func NewTriggerHandler(deps domain.HandlerDeps) domain.NodeHandler {
	return &TriggerHandler{}
}

func (h *TriggerHandler) Execute(ctx context.Context, input domain.NodeInput) (domain.Payload, error) {
	if input.Context == nil {
		return input.Input.Clone(), nil
	}

	return domain.Payload(input.Context.TriggerData).Clone(), nil
}
