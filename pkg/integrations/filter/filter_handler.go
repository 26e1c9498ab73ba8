package filter

import (
	"context"

	"github.com/agencyflow/agencyflow/pkg/conditions"
	"github.com/agencyflow/agencyflow/pkg/domain"
)

// FilterHandler passes its input through when the condition holds and
// returns null data otherwise. With path set, only the value at that path is
// tested and passed on.
type FilterHandler struct{}

func NewFilterHandler(deps domain.HandlerDeps) domain.NodeHandler {
	return &FilterHandler{}
}

func (h *FilterHandler) Validate(config map[string]any) error {
	if err := domain.RequireFields(config, "condition"); err != nil {
		return err
	}

	_, err := conditions.Parse(config["condition"])

	return err
}

func (h *FilterHandler) Execute(ctx context.Context, input domain.NodeInput) (domain.Payload, error) {
	cond, err := conditions.Parse(input.Config["condition"])
	if err != nil {
		return nil, err
	}

	var (
		target any            = map[string]any(input.Input.Clone())
		data   map[string]any = input.Context.Scope(input.Input)
	)

	if path := domain.StringValue(input.Config, "path", ""); path != "" {
		target, _ = domain.GetValueByPath(data, path)

		if object, ok := target.(map[string]any); ok {
			data = object
		} else {
			data = map[string]any{"value": target}
		}
	}

	outcome := conditions.EvaluateWithPolicy(cond, data, input.Context.ConditionFailurePolicy)
	if outcome.Err != nil {
		return nil, outcome.Err
	}

	result := domain.Payload{
		"passes": outcome.Passed,
		"data":   nil,
	}

	if outcome.Passed {
		result["data"] = target
	}

	if outcome.Warning != "" {
		result["conditionWarning"] = outcome.Warning
	}

	return result, nil
}
