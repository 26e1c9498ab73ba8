package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/agencyflow/agencyflow/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RecordsNewestFirst(t *testing.T) {
	store := NewMemoryStore(2)
	workflow := domain.WorkflowDefinition{ID: "wf-1"}
	startedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 1; i <= 3; i++ {
		require.NoError(t, store.RecordExecution(context.Background(), workflow, domain.ExecutionResult{
			ExecutionID: fmt.Sprintf("exec-%d", i),
			WorkflowID:  workflow.ID,
			StartedAt:   startedAt.Add(time.Duration(i) * time.Minute),
		}))
	}

	executions, err := store.ListExecutions(context.Background(), "wf-1", 0)
	require.NoError(t, err)
	require.Len(t, executions, 2)
	assert.Equal(t, "exec-3", executions[0].ExecutionID)
	assert.Equal(t, "exec-2", executions[1].ExecutionID)

	limited, err := store.ListExecutions(context.Background(), "wf-1", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	usage, err := store.GetUsage(context.Background(), "wf-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), usage.ExecutionCount)
	require.NotNil(t, usage.LastExecutedAt)
	assert.Equal(t, startedAt.Add(3*time.Minute), *usage.LastExecutedAt)
}

func TestMemoryStore_UnknownWorkflow(t *testing.T) {
	store := NewMemoryStore(0)

	executions, err := store.ListExecutions(context.Background(), "nope", 10)
	require.NoError(t, err)
	assert.Empty(t, executions)

	usage, err := store.GetUsage(context.Background(), "nope")
	require.NoError(t, err)
	assert.Equal(t, "nope", usage.WorkflowID)
	assert.Zero(t, usage.ExecutionCount)
	assert.Nil(t, usage.LastExecutedAt)
}
