package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agencyflow/agencyflow/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAggregator(clock *fakeClock) *ResultAggregator {
	return NewResultAggregator(ResultAggregatorParams{
		ExecutionID: "exec-1",
		WorkflowID:  "wf-1",
		StartedAt:   clock.Now(),
		Now:         clock.Now,
	})
}

func TestResultAggregator_RecordsResultsInCompletionOrder(t *testing.T) {
	clock := newFakeClock()
	aggregator := newTestAggregator(clock)
	ctx := context.Background()
	startedAt := clock.Now()

	require.NoError(t, aggregator.HandleEvent(ctx, NodeCompletedEvent{
		NodeID:    "a",
		NodeType:  domain.NodeTypeAction,
		Payload:   domain.Payload{"ok": true},
		StartedAt: startedAt,
		EndedAt:   startedAt.Add(2 * time.Second),
	}))
	require.NoError(t, aggregator.HandleEvent(ctx, NodeFailedEvent{
		NodeID:    "b",
		NodeType:  domain.NodeTypeEmail,
		Error:     errors.New("bounced"),
		StartedAt: startedAt,
		EndedAt:   startedAt.Add(time.Second),
	}))
	require.NoError(t, aggregator.HandleEvent(ctx, NodeStartedEvent{NodeID: "c"}))

	clock.Advance(3 * time.Second)
	result := aggregator.Finalize(domain.ExecutionStatusPartial)

	require.Len(t, result.Results, 2)
	assert.Equal(t, "a", result.Results[0].NodeID)
	assert.Equal(t, 2*time.Second, result.Results[0].Duration)
	assert.True(t, result.Results[0].Succeeded())
	assert.Equal(t, "b", result.Results[1].NodeID)
	assert.Equal(t, "bounced", result.Results[1].Error)

	assert.Equal(t, 1, result.NodesExecuted)
	assert.Equal(t, []string{"bounced"}, result.Errors)
	assert.Equal(t, 3*time.Second, result.ExecutionTime)
	assert.False(t, result.Success)
}

func TestResultAggregator_TerminalStatus(t *testing.T) {
	tests := []struct {
		name       string
		completed  int
		failed     int
		warnings   int
		totalNodes int
		expected   domain.ExecutionStatus
	}{
		{"all nodes ran", 3, 0, 0, 3, domain.ExecutionStatusCompleted},
		{"warnings do not demote", 2, 0, 2, 2, domain.ExecutionStatusCompleted},
		{"unreached nodes", 2, 0, 0, 3, domain.ExecutionStatusPartial},
		{"tolerated failure", 2, 1, 0, 3, domain.ExecutionStatusPartial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aggregator := newTestAggregator(newFakeClock())

			for i := 0; i < tt.completed; i++ {
				_ = aggregator.HandleEvent(context.Background(), NodeCompletedEvent{NodeID: "ok"})
			}

			for i := 0; i < tt.failed; i++ {
				_ = aggregator.HandleEvent(context.Background(), NodeFailedEvent{NodeID: "bad", Error: errors.New("bad")})
			}

			for i := 0; i < tt.warnings; i++ {
				aggregator.AddWarning("careful")
			}

			assert.Equal(t, tt.expected, aggregator.TerminalStatus(tt.totalNodes))
		})
	}
}

func TestResultAggregator_MarkTimedOut(t *testing.T) {
	aggregator := newTestAggregator(newFakeClock())
	aggregator.MarkTimedOut()

	result := aggregator.Finalize(domain.ExecutionStatusTimeout)

	assert.Equal(t, []string{WarningExecutionTimedOut}, result.Warnings)
	assert.Equal(t, []string{ErrorExecutionTimeout}, result.Errors)
	assert.Equal(t, domain.ExecutionStatusTimeout, result.Status)
}

func TestResultAggregator_FinalizeReturnsCopies(t *testing.T) {
	aggregator := newTestAggregator(newFakeClock())
	aggregator.AddWarning("first")

	result := aggregator.Finalize(domain.ExecutionStatusCompleted)
	aggregator.AddWarning("second")

	assert.Equal(t, []string{"first"}, result.Warnings)
	assert.NotNil(t, result.Results)
	assert.NotNil(t, result.Errors)
	assert.True(t, result.Success)
}
