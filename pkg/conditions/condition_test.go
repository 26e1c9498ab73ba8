package conditions

import (
	"errors"
	"testing"

	"github.com/agencyflow/agencyflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	data := map[string]any{
		"budget":  35000,
		"status":  "active",
		"tags":    []any{"vip", "uk"},
		"student": map[string]any{"email": "ada@example.com", "age": "21"},
		"empty":   nil,
	}

	tests := []struct {
		name     string
		cond     *domain.EdgeCondition
		data     map[string]any
		expected bool
	}{
		{
			name:     "nil condition always traverses",
			cond:     nil,
			data:     data,
			expected: true,
		},
		{
			name:     "success without error key",
			cond:     &domain.EdgeCondition{Type: domain.ConditionTypeSuccess},
			data:     data,
			expected: true,
		},
		{
			name:     "success with error key",
			cond:     &domain.EdgeCondition{Type: domain.ConditionTypeSuccess},
			data:     map[string]any{"error": "boom"},
			expected: false,
		},
		{
			name:     "error with error key",
			cond:     &domain.EdgeCondition{Type: domain.ConditionTypeError},
			data:     map[string]any{"error": "boom"},
			expected: true,
		},
		{
			name:     "error with empty error string",
			cond:     &domain.EdgeCondition{Type: domain.ConditionTypeError},
			data:     map[string]any{"error": ""},
			expected: false,
		},
		{
			name:     "equals string",
			cond:     &domain.EdgeCondition{Type: domain.ConditionTypeEquals, Field: "status", Value: "active"},
			data:     data,
			expected: true,
		},
		{
			name:     "equals number across types",
			cond:     &domain.EdgeCondition{Type: domain.ConditionTypeEquals, Field: "budget", Value: 35000.0},
			data:     data,
			expected: true,
		},
		{
			name:     "equals boolean",
			cond:     &domain.EdgeCondition{Type: domain.ConditionTypeEquals, Field: "result", Value: true},
			data:     map[string]any{"result": true},
			expected: true,
		},
		{
			name:     "equals boolean mismatch",
			cond:     &domain.EdgeCondition{Type: domain.ConditionTypeEquals, Field: "result", Value: false},
			data:     map[string]any{"result": true},
			expected: false,
		},
		{
			name:     "contains substring",
			cond:     &domain.EdgeCondition{Type: domain.ConditionTypeContains, Field: "student.email", Value: "@example"},
			data:     data,
			expected: true,
		},
		{
			name:     "contains list element",
			cond:     &domain.EdgeCondition{Type: domain.ConditionTypeContains, Field: "tags", Value: "uk"},
			data:     data,
			expected: true,
		},
		{
			name:     "contains missing element",
			cond:     &domain.EdgeCondition{Type: domain.ConditionTypeContains, Field: "tags", Value: "us"},
			data:     data,
			expected: false,
		},
		{
			name:     "greater than",
			cond:     &domain.EdgeCondition{Type: domain.ConditionTypeGreaterThan, Field: "budget", Value: 30000},
			data:     data,
			expected: true,
		},
		{
			name:     "greater than numeric string",
			cond:     &domain.EdgeCondition{Type: domain.ConditionTypeGreaterThan, Field: "student.age", Value: "18"},
			data:     data,
			expected: true,
		},
		{
			name:     "less than",
			cond:     &domain.EdgeCondition{Type: domain.ConditionTypeLessThan, Field: "budget", Value: 30000},
			data:     data,
			expected: false,
		},
		{
			name:     "less than on missing field",
			cond:     &domain.EdgeCondition{Type: domain.ConditionTypeLessThan, Field: "missing", Value: 1},
			data:     data,
			expected: false,
		},
		{
			name:     "exists",
			cond:     &domain.EdgeCondition{Type: domain.ConditionTypeExists, Field: "student.email"},
			data:     data,
			expected: true,
		},
		{
			name:     "exists on null value",
			cond:     &domain.EdgeCondition{Type: domain.ConditionTypeExists, Field: "empty"},
			data:     data,
			expected: false,
		},
		{
			name:     "custom expression",
			cond:     &domain.EdgeCondition{Type: domain.ConditionTypeCustom, Expression: "budget > 30000 AND status == 'active'"},
			data:     data,
			expected: true,
		},
		{
			name:     "custom expression in value",
			cond:     &domain.EdgeCondition{Type: domain.ConditionTypeCustom, Value: "budget < 30000"},
			data:     data,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Evaluate(tt.cond, tt.data)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestEvaluate_MalformedConditionsFailOpen(t *testing.T) {
	tests := []struct {
		name string
		cond *domain.EdgeCondition
	}{
		{
			name: "unknown type",
			cond: &domain.EdgeCondition{Type: "matches"},
		},
		{
			name: "equals without field",
			cond: &domain.EdgeCondition{Type: domain.ConditionTypeEquals, Value: 1},
		},
		{
			name: "greater than with non numeric value",
			cond: &domain.EdgeCondition{Type: domain.ConditionTypeGreaterThan, Field: "budget", Value: "lots"},
		},
		{
			name: "invalid field path",
			cond: &domain.EdgeCondition{Type: domain.ConditionTypeExists, Field: "a..b"},
		},
		{
			name: "custom syntax error",
			cond: &domain.EdgeCondition{Type: domain.ConditionTypeCustom, Expression: "budget >"},
		},
		{
			name: "custom empty expression",
			cond: &domain.EdgeCondition{Type: domain.ConditionTypeCustom},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Evaluate(tt.cond, map[string]any{"budget": 10})

			assert.True(t, result)

			var evalErr *domain.ConditionEvaluationError
			require.True(t, errors.As(err, &evalErr))
			assert.Equal(t, tt.cond.Type, evalErr.Condition)
		})
	}
}

func TestApplyPolicy(t *testing.T) {
	malformed := &domain.EdgeCondition{Type: "bogus"}

	outcome := EvaluateWithPolicy(malformed, nil, "")
	assert.True(t, outcome.Passed)
	assert.NotEmpty(t, outcome.Warning)
	assert.NoError(t, outcome.Err)

	outcome = EvaluateWithPolicy(malformed, nil, domain.ConditionFailurePolicyBlock)
	assert.False(t, outcome.Passed)
	assert.NotEmpty(t, outcome.Warning)
	assert.NoError(t, outcome.Err)

	outcome = EvaluateWithPolicy(malformed, nil, domain.ConditionFailurePolicyFail)
	assert.False(t, outcome.Passed)
	assert.Empty(t, outcome.Warning)
	assert.Error(t, outcome.Err)

	outcome = EvaluateWithPolicy(&domain.EdgeCondition{Type: domain.ConditionTypeError}, nil, domain.ConditionFailurePolicyFail)
	assert.False(t, outcome.Passed)
	assert.NoError(t, outcome.Err)
}

func TestParse(t *testing.T) {
	cond, err := Parse("score >= 50")
	require.NoError(t, err)
	assert.Equal(t, domain.ConditionTypeCustom, cond.Type)
	assert.Equal(t, "score >= 50", cond.Expression)

	cond, err = Parse(map[string]any{"type": "greater_than", "field": "budget", "value": 30000})
	require.NoError(t, err)
	assert.Equal(t, domain.ConditionTypeGreaterThan, cond.Type)
	assert.Equal(t, "budget", cond.Field)
	assert.Equal(t, 30000.0, cond.Value)

	cond, err = Parse(map[string]any{"expression": "a == 1"})
	require.NoError(t, err)
	assert.Equal(t, domain.ConditionTypeCustom, cond.Type)

	_, err = Parse(nil)
	var configErr *domain.ConfigurationError
	require.True(t, errors.As(err, &configErr))
	assert.Equal(t, "condition", configErr.Field)

	_, err = Parse(map[string]any{"field": "x"})
	assert.Error(t, err)

	_, err = Parse(42)
	assert.Error(t, err)
}
