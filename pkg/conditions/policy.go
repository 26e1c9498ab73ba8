package conditions

import "github.com/agencyflow/agencyflow/pkg/domain"

type Outcome struct {
	Passed  bool
	Warning string
	Err     error
}

// ApplyPolicy turns the result of Evaluate into a decision under the given
// failure policy.
func ApplyPolicy(policy domain.ConditionFailurePolicy, passed bool, err error) Outcome {
	if err == nil {
		return Outcome{Passed: passed}
	}

	switch policy.OrDefault() {
	case domain.ConditionFailurePolicyBlock:
		return Outcome{Passed: false, Warning: err.Error()}
	case domain.ConditionFailurePolicyFail:
		return Outcome{Passed: false, Err: err}
	default:
		return Outcome{Passed: true, Warning: err.Error()}
	}
}

// EvaluateWithPolicy is Evaluate followed by ApplyPolicy.
func EvaluateWithPolicy(cond *domain.EdgeCondition, data map[string]any, policy domain.ConditionFailurePolicy) Outcome {
	passed, err := Evaluate(cond, data)

	return ApplyPolicy(policy, passed, err)
}
