package history

import (
	"context"
	"sync"

	"github.com/agencyflow/agencyflow/pkg/domain"
)

// MemoryStore is the history store used when no Redis address is configured.
// Newest executions come first, like the Redis list.
type MemoryStore struct {
	executions map[string][]domain.ExecutionResult
	usage      map[string]domain.WorkflowUsage
	maxPerFlow int
	mu         sync.RWMutex
}

func NewMemoryStore(maxPerWorkflow int) *MemoryStore {
	if maxPerWorkflow <= 0 {
		maxPerWorkflow = DefaultMaxExecutions
	}

	return &MemoryStore{
		executions: map[string][]domain.ExecutionResult{},
		usage:      map[string]domain.WorkflowUsage{},
		maxPerFlow: maxPerWorkflow,
	}
}

func (s *MemoryStore) RecordExecution(ctx context.Context, workflow domain.WorkflowDefinition, result domain.ExecutionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	executions := append([]domain.ExecutionResult{result}, s.executions[workflow.ID]...)
	if len(executions) > s.maxPerFlow {
		executions = executions[:s.maxPerFlow]
	}
	s.executions[workflow.ID] = executions

	usage := s.usage[workflow.ID]
	usage.WorkflowID = workflow.ID
	usage.ExecutionCount++
	lastExecutedAt := result.StartedAt.UTC()
	usage.LastExecutedAt = &lastExecutedAt
	s.usage[workflow.ID] = usage

	return nil
}

func (s *MemoryStore) ListExecutions(ctx context.Context, workflowID string, limit int) ([]domain.ExecutionResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	executions := s.executions[workflowID]
	if limit > 0 && limit < len(executions) {
		executions = executions[:limit]
	}

	results := make([]domain.ExecutionResult, len(executions))
	copy(results, executions)

	return results, nil
}

func (s *MemoryStore) GetUsage(ctx context.Context, workflowID string) (domain.WorkflowUsage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	usage, ok := s.usage[workflowID]
	if !ok {
		return domain.WorkflowUsage{WorkflowID: workflowID}, nil
	}

	return usage, nil
}
