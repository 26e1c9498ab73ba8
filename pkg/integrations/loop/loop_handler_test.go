package loop

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/agencyflow/agencyflow/pkg/domain"
	"github.com/agencyflow/agencyflow/pkg/expressions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dispatchFunc func(ctx context.Context, node domain.Node, input domain.Payload, execCtx *domain.ExecutionContext) (domain.Payload, error)

func (f dispatchFunc) Dispatch(ctx context.Context, node domain.Node, input domain.Payload, execCtx *domain.ExecutionContext) (domain.Payload, error) {
	return f(ctx, node, input, execCtx)
}

func execute(t *testing.T, config map[string]any, input domain.Payload, dispatcher domain.NodeDispatcher) (domain.Payload, error) {
	t.Helper()

	handler := NewLoopHandler(domain.HandlerDeps{ParameterBinder: expressions.NewTemplateBinder()})

	return handler.Execute(context.Background(), domain.NodeInput{
		Node:       domain.Node{ID: "each-student", Type: domain.NodeTypeLoop},
		Config:     config,
		Input:      input,
		Context:    domain.NewExecutionContext(domain.NewExecutionContextParams{}),
		Dispatcher: dispatcher,
	})
}

func TestLoopHandler_Validate(t *testing.T) {
	handler := NewLoopHandler(domain.HandlerDeps{}).(domain.ConfigValidator)

	assert.NoError(t, handler.Validate(map[string]any{"items": []any{1}}))
	assert.NoError(t, handler.Validate(map[string]any{"iterations": 3}))
	assert.NoError(t, handler.Validate(map[string]any{"iterations": 3, "body": map[string]any{"type": "action"}}))

	assert.Error(t, handler.Validate(map[string]any{}))
	assert.Error(t, handler.Validate(map[string]any{"iterations": -1}))
	assert.Error(t, handler.Validate(map[string]any{"iterations": 3, "maxIterations": 0}))
	assert.Error(t, handler.Validate(map[string]any{"iterations": 3, "maxIterations": MaxIterationsLimit + 1}))
	assert.Error(t, handler.Validate(map[string]any{"iterations": math.NaN()}))
	assert.Error(t, handler.Validate(map[string]any{"iterations": math.Inf(1)}))
	assert.Error(t, handler.Validate(map[string]any{"iterations": 1e300}))
	assert.Error(t, handler.Validate(map[string]any{"iterations": 3, "body": map[string]any{"data": map[string]any{}}}))
}

func TestLoopHandler_Items(t *testing.T) {
	result, err := execute(t, map[string]any{"items": "{{students}}"}, domain.Payload{
		"students": []any{"ada", "grace"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, float64(2), result["iterations"])
	assert.Equal(t, false, result["truncated"])
	assert.Equal(t, []any{
		map[string]any{"index": float64(0), "item": "ada"},
		map[string]any{"index": float64(1), "item": "grace"},
	}, result["results"])
}

func TestLoopHandler_IterationsAreBounded(t *testing.T) {
	t.Run("default bound", func(t *testing.T) {
		result, err := execute(t, map[string]any{"iterations": 250}, nil, nil)
		require.NoError(t, err)

		assert.Equal(t, float64(DefaultMaxIterations), result["iterations"])
		assert.Equal(t, true, result["truncated"])
	})

	t.Run("explicit bound", func(t *testing.T) {
		result, err := execute(t, map[string]any{"iterations": 5, "maxIterations": 3}, nil, nil)
		require.NoError(t, err)

		results := result["results"].([]any)
		require.Len(t, results, 3)
		assert.Equal(t, float64(2), results[2].(map[string]any)["item"])
	})

	t.Run("huge iteration count", func(t *testing.T) {
		result, err := execute(t, map[string]any{"iterations": 1e18}, nil, nil)
		require.NoError(t, err)

		assert.Equal(t, float64(DefaultMaxIterations), result["iterations"])
		assert.Len(t, result["results"], DefaultMaxIterations)
		assert.Equal(t, true, result["truncated"])
	})

	t.Run("maxIterations is clamped", func(t *testing.T) {
		result, err := execute(t, map[string]any{"iterations": 1e18, "maxIterations": 1e12}, nil, nil)
		require.NoError(t, err)

		assert.Equal(t, float64(MaxIterationsLimit), result["iterations"])
		assert.Equal(t, true, result["truncated"])
	})

	t.Run("non-finite iterations", func(t *testing.T) {
		_, err := execute(t, map[string]any{"iterations": math.Inf(1)}, nil, nil)
		assert.Error(t, err)
	})

	t.Run("zero iterations", func(t *testing.T) {
		result, err := execute(t, map[string]any{"iterations": 0}, nil, nil)
		require.NoError(t, err)

		assert.Equal(t, float64(0), result["iterations"])
		assert.Empty(t, result["results"])
	})
}

func TestLoopHandler_Body(t *testing.T) {
	var seen []domain.Payload

	dispatcher := dispatchFunc(func(ctx context.Context, node domain.Node, input domain.Payload, execCtx *domain.ExecutionContext) (domain.Payload, error) {
		assert.Equal(t, domain.NodeTypeAction, node.Type)
		assert.Equal(t, "each-student.body", node.ID)
		seen = append(seen, input)
		return domain.Payload{"handled": input["item"]}, nil
	})

	result, err := execute(t, map[string]any{
		"items": []any{"ada", "grace"},
		"body":  map[string]any{"type": "action", "data": map[string]any{"action": "{{item}}"}},
	}, domain.Payload{"campaign": "fall"}, dispatcher)
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, domain.Payload{"campaign": "fall", "item": "grace", "index": float64(1)}, seen[1])

	results := result["results"].([]any)
	assert.Equal(t, map[string]any{"handled": "ada"}, results[0].(map[string]any)["result"])
}

func TestLoopHandler_BodyFailureStopsTheLoop(t *testing.T) {
	calls := 0
	boom := errors.New("boom")

	dispatcher := dispatchFunc(func(ctx context.Context, node domain.Node, input domain.Payload, execCtx *domain.ExecutionContext) (domain.Payload, error) {
		calls++
		if calls == 2 {
			return nil, boom
		}
		return domain.Payload{}, nil
	})

	_, err := execute(t, map[string]any{
		"iterations": 5,
		"body":       map[string]any{"type": "action"},
	}, nil, dispatcher)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestLoopHandler_BodyNeedsDispatcher(t *testing.T) {
	_, err := execute(t, map[string]any{
		"iterations": 1,
		"body":       map[string]any{"type": "action"},
	}, nil, nil)

	assert.ErrorIs(t, err, ErrDispatcherMissing)
}
