package condition

import (
	"context"

	"github.com/agencyflow/agencyflow/pkg/conditions"
	"github.com/agencyflow/agencyflow/pkg/domain"

	"github.com/rs/zerolog/log"
)

// ConditionHandler evaluates its condition against the node input layered
// over the execution context and reports the boolean outcome.
type ConditionHandler struct{}

func NewConditionHandler(deps domain.HandlerDeps) domain.NodeHandler {
	return &ConditionHandler{}
}

func (h *ConditionHandler) Validate(config map[string]any) error {
	if err := domain.RequireFields(config, "condition"); err != nil {
		return err
	}

	_, err := conditions.Parse(config["condition"])

	return err
}

func (h *ConditionHandler) Execute(ctx context.Context, input domain.NodeInput) (domain.Payload, error) {
	cond, err := conditions.Parse(input.Config["condition"])
	if err != nil {
		return nil, err
	}

	scope := input.Context.Scope(input.Input)
	outcome := conditions.EvaluateWithPolicy(cond, scope, input.Context.ConditionFailurePolicy)

	if outcome.Err != nil {
		return nil, outcome.Err
	}

	result := domain.Payload{
		"result":        outcome.Passed,
		"conditionType": string(cond.Type),
	}

	if outcome.Warning != "" {
		log.Warn().
			Str("node_id", input.Node.ID).
			Str("warning", outcome.Warning).
			Msg("Malformed condition, applied failure policy")

		result["conditionWarning"] = outcome.Warning
	}

	return result, nil
}
