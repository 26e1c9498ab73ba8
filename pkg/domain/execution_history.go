package domain

import (
	"context"
	"time"
)

type WorkflowUsage struct {
	WorkflowID     string     `json:"workflowId"`
	ExecutionCount int64      `json:"executionCount"`
	LastExecutedAt *time.Time `json:"lastExecutedAt,omitempty"`
}

// ExecutionHistoryStore persists finished executions and the usage counters
// of their workflows.
type ExecutionHistoryStore interface {
	RecordExecution(ctx context.Context, workflow WorkflowDefinition, result ExecutionResult) error
	ListExecutions(ctx context.Context, workflowID string, limit int) ([]ExecutionResult, error)
	GetUsage(ctx context.Context, workflowID string) (WorkflowUsage, error)
}

type WorkflowRepository interface {
	GetWorkflow(ctx context.Context, workflowID string) (WorkflowDefinition, error)
	ListWorkflows(ctx context.Context) ([]WorkflowDefinition, error)
}
