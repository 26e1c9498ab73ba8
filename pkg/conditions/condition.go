package conditions

import (
	"fmt"
	"strings"

	"github.com/agencyflow/agencyflow/pkg/domain"
)

// Evaluate tests cond against data. A nil condition always passes.
//
// A malformed condition returns true together with a
// *domain.ConditionEvaluationError; callers decide what to do with it through
// the workflow's ConditionFailurePolicy.
func Evaluate(cond *domain.EdgeCondition, data map[string]any) (bool, error) {
	if cond == nil {
		return true, nil
	}

	if data == nil {
		data = map[string]any{}
	}

	switch cond.Type {
	case domain.ConditionTypeSuccess:
		return !domain.Payload(data).HasError(), nil
	case domain.ConditionTypeError:
		return domain.Payload(data).HasError(), nil
	case domain.ConditionTypeEquals:
		value, _, err := fieldValue(cond, data)
		if err != nil {
			return true, err
		}
		return looseEqual(value, cond.Value), nil
	case domain.ConditionTypeContains:
		value, _, err := fieldValue(cond, data)
		if err != nil {
			return true, err
		}
		return contains(value, cond.Value), nil
	case domain.ConditionTypeGreaterThan, domain.ConditionTypeLessThan:
		return evaluateNumeric(cond, data)
	case domain.ConditionTypeExists:
		value, found, err := fieldValue(cond, data)
		if err != nil {
			return true, err
		}
		return found && value != nil, nil
	case domain.ConditionTypeCustom:
		return evaluateCustom(cond, data)
	default:
		return true, &domain.ConditionEvaluationError{
			Condition: cond.Type,
			Reason:    "unknown condition type",
		}
	}
}

func fieldValue(cond *domain.EdgeCondition, data map[string]any) (any, bool, error) {
	if strings.TrimSpace(cond.Field) == "" {
		return nil, false, &domain.ConditionEvaluationError{
			Condition: cond.Type,
			Reason:    "field is required",
		}
	}

	if _, err := domain.ParsePropertyPath(cond.Field); err != nil {
		return nil, false, &domain.ConditionEvaluationError{
			Condition: cond.Type,
			Reason:    "invalid field path",
			Cause:     err,
		}
	}

	value, found := domain.GetValueByPath(data, cond.Field)

	return value, found, nil
}

func evaluateNumeric(cond *domain.EdgeCondition, data map[string]any) (bool, error) {
	value, found, err := fieldValue(cond, data)
	if err != nil {
		return true, err
	}

	threshold, ok := domain.ToFloat(cond.Value)
	if !ok {
		return true, &domain.ConditionEvaluationError{
			Condition: cond.Type,
			Reason:    fmt.Sprintf("value %v is not numeric", cond.Value),
		}
	}

	if !found {
		return false, nil
	}

	actual, ok := domain.ToFloat(value)
	if !ok {
		return false, nil
	}

	if cond.Type == domain.ConditionTypeGreaterThan {
		return actual > threshold, nil
	}

	return actual < threshold, nil
}

func evaluateCustom(cond *domain.EdgeCondition, data map[string]any) (bool, error) {
	source := cond.Expression
	if source == "" {
		if s, ok := cond.Value.(string); ok {
			source = s
		}
	}

	expression, err := Compile(source)
	if err != nil {
		return true, &domain.ConditionEvaluationError{
			Condition: cond.Type,
			Reason:    "invalid expression",
			Cause:     err,
		}
	}

	result, err := expression.Evaluate(data)
	if err != nil {
		return true, &domain.ConditionEvaluationError{
			Condition: cond.Type,
			Reason:    "expression failed",
			Cause:     err,
		}
	}

	return result, nil
}

// Parse converts the condition config of a condition or filter node into an
// EdgeCondition. A plain string is treated as a custom expression.
func Parse(raw any) (*domain.EdgeCondition, error) {
	switch v := raw.(type) {
	case nil:
		return nil, domain.NewMissingFieldError("condition")
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, domain.NewMissingFieldError("condition")
		}
		return &domain.EdgeCondition{Type: domain.ConditionTypeCustom, Expression: v}, nil
	case *domain.EdgeCondition:
		return v, nil
	case domain.EdgeCondition:
		return &v, nil
	case map[string]any:
		var cond domain.EdgeCondition
		if err := domain.BindConfig(v, &cond); err != nil {
			return nil, domain.NewInvalidFieldError("condition", err.Error())
		}
		if cond.Type == "" {
			if cond.Expression != "" {
				cond.Type = domain.ConditionTypeCustom
			} else {
				return nil, domain.NewInvalidFieldError("condition", "condition type is required")
			}
		}
		return &cond, nil
	default:
		return nil, domain.NewInvalidFieldError("condition", fmt.Sprintf("unsupported condition of type %T", raw))
	}
}
