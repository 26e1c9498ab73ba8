package parallel

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/agencyflow/agencyflow/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dispatchFunc func(ctx context.Context, node domain.Node, input domain.Payload, execCtx *domain.ExecutionContext) (domain.Payload, error)

func (f dispatchFunc) Dispatch(ctx context.Context, node domain.Node, input domain.Payload, execCtx *domain.ExecutionContext) (domain.Payload, error) {
	return f(ctx, node, input, execCtx)
}

func branches(types ...string) []any {
	out := make([]any, len(types))
	for i, nodeType := range types {
		out[i] = map[string]any{"type": nodeType}
	}
	return out
}

func TestParallelHandler_Validate(t *testing.T) {
	handler := NewParallelHandler(domain.HandlerDeps{}).(domain.ConfigValidator)

	assert.NoError(t, handler.Validate(map[string]any{"branches": branches("action", "email")}))

	var configErr *domain.ConfigurationError
	assert.True(t, errors.As(handler.Validate(map[string]any{}), &configErr))
	assert.True(t, errors.As(handler.Validate(map[string]any{"branches": []any{}}), &configErr))
	assert.True(t, errors.As(handler.Validate(map[string]any{"branches": []any{"action"}}), &configErr))
}

func TestParallelHandler_RunsBranchesConcurrently(t *testing.T) {
	var (
		running atomic.Int32
		started sync.WaitGroup
	)
	started.Add(3)

	dispatcher := dispatchFunc(func(ctx context.Context, node domain.Node, input domain.Payload, execCtx *domain.ExecutionContext) (domain.Payload, error) {
		running.Add(1)
		started.Done()
		// Every branch waits for the others to start.
		started.Wait()
		return domain.Payload{"branch": node.ID}, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := NewParallelHandler(domain.HandlerDeps{}).Execute(ctx, domain.NodeInput{
		Node:       domain.Node{ID: "fanout", Type: domain.NodeTypeParallel},
		Config:     map[string]any{"branches": branches("action", "action", "action")},
		Context:    domain.NewExecutionContext(domain.NewExecutionContextParams{}),
		Dispatcher: dispatcher,
	})
	require.NoError(t, err)

	assert.Equal(t, int32(3), running.Load())
	assert.Equal(t, float64(3), result["completed"])

	results := result["branches"].([]any)
	require.Len(t, results, 3)
	assert.Equal(t, "fanout.branch-0", results[0].(map[string]any)["branchId"])
	assert.Equal(t, true, results[2].(map[string]any)["success"])
}

func TestParallelHandler_WaitsForAllBranchesWhenOneFails(t *testing.T) {
	var finished atomic.Int32

	dispatcher := dispatchFunc(func(ctx context.Context, node domain.Node, input domain.Payload, execCtx *domain.ExecutionContext) (domain.Payload, error) {
		defer finished.Add(1)

		if node.ID == "slow" {
			time.Sleep(20 * time.Millisecond)
			return domain.Payload{}, nil
		}

		return nil, errors.New("smtp unavailable")
	})

	_, err := NewParallelHandler(domain.HandlerDeps{}).Execute(context.Background(), domain.NodeInput{
		Node: domain.Node{ID: "fanout", Type: domain.NodeTypeParallel},
		Config: map[string]any{"branches": []any{
			map[string]any{"id": "mail", "type": "email"},
			map[string]any{"id": "slow", "type": "delay"},
		}},
		Context:    domain.NewExecutionContext(domain.NewExecutionContextParams{}),
		Dispatcher: dispatcher,
	})

	var branchErr *BranchError
	require.True(t, errors.As(err, &branchErr))
	assert.Equal(t, []string{"mail"}, branchErr.Failed)
	assert.Equal(t, 2, branchErr.Total)
	assert.Equal(t, int32(2), finished.Load())
	assert.Equal(t, "1 of 2 parallel branches failed: mail", err.Error())
}

func TestParallelHandler_BranchesShareTheExecutionContext(t *testing.T) {
	execCtx := domain.NewExecutionContext(domain.NewExecutionContextParams{})

	dispatcher := dispatchFunc(func(ctx context.Context, node domain.Node, input domain.Payload, execCtx *domain.ExecutionContext) (domain.Payload, error) {
		return domain.Payload{}, execCtx.Set("branches."+node.ID, true)
	})

	_, err := NewParallelHandler(domain.HandlerDeps{}).Execute(context.Background(), domain.NodeInput{
		Node: domain.Node{ID: "fanout"},
		Config: map[string]any{"branches": []any{
			map[string]any{"id": "a", "type": "transform"},
			map[string]any{"id": "b", "type": "transform"},
		}},
		Context:    execCtx,
		Dispatcher: dispatcher,
	})
	require.NoError(t, err)

	_, okA := execCtx.Get("branches.a")
	_, okB := execCtx.Get("branches.b")
	assert.True(t, okA)
	assert.True(t, okB)
}
