package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/agencyflow/agencyflow/pkg/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHistoryStore struct {
	recorded []domain.ExecutionResult
	err      error
}

func (s *fakeHistoryStore) RecordExecution(ctx context.Context, workflow domain.WorkflowDefinition, result domain.ExecutionResult) error {
	s.recorded = append(s.recorded, result)
	return s.err
}

func (s *fakeHistoryStore) ListExecutions(ctx context.Context, workflowID string, limit int) ([]domain.ExecutionResult, error) {
	return s.recorded, nil
}

func (s *fakeHistoryStore) GetUsage(ctx context.Context, workflowID string) (domain.WorkflowUsage, error) {
	return domain.WorkflowUsage{WorkflowID: workflowID, ExecutionCount: int64(len(s.recorded))}, nil
}

func newServiceUnderTest(store domain.ExecutionHistoryStore, audit *bytes.Buffer) WorkflowExecutorService {
	registry := newTestRegistry(map[domain.NodeType]domain.NodeHandler{
		domain.NodeTypeAction: domain.NodeHandlerFunc(passThrough),
	})
	auditLogger := zerolog.New(audit)

	return NewWorkflowExecutorService(WorkflowExecutorServiceDependencies{
		Registry:       registry,
		HistoryStore:   store,
		AuditLogger:    &auditLogger,
		NewExecutionID: func() string { return "exec-42" },
	})
}

func singleNodeWorkflow(status domain.WorkflowStatus) domain.WorkflowDefinition {
	return domain.WorkflowDefinition{
		ID:     "wf-1",
		Status: status,
		Nodes:  []domain.Node{{ID: "a", Type: domain.NodeTypeAction}},
	}
}

func TestWorkflowExecutorService_RejectsInactiveWorkflows(t *testing.T) {
	store := &fakeHistoryStore{}
	service := newServiceUnderTest(store, &bytes.Buffer{})

	for _, status := range []domain.WorkflowStatus{domain.WorkflowStatusDraft, domain.WorkflowStatusPaused, domain.WorkflowStatusArchived} {
		_, err := service.Execute(context.Background(), ExecuteParams{Workflow: singleNodeWorkflow(status)})
		assert.ErrorIs(t, err, domain.ErrWorkflowNotActive, string(status))
	}

	assert.Empty(t, store.recorded)
}

func TestWorkflowExecutorService_TestModeSkipsStatusGate(t *testing.T) {
	service := newServiceUnderTest(&fakeHistoryStore{}, &bytes.Buffer{})

	result, err := service.Execute(context.Background(), ExecuteParams{
		Workflow: singleNodeWorkflow(domain.WorkflowStatusDraft),
		Request:  domain.ExecutionRequest{TestMode: true},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ExecutionStatusCompleted, result.Status)
	assert.True(t, result.TestMode)
}

func TestWorkflowExecutorService_RecordsHistoryAndAudit(t *testing.T) {
	store := &fakeHistoryStore{}
	audit := &bytes.Buffer{}
	service := newServiceUnderTest(store, audit)

	result, err := service.Execute(context.Background(), ExecuteParams{Workflow: singleNodeWorkflow(domain.WorkflowStatusActive)})
	require.NoError(t, err)

	assert.Equal(t, "exec-42", result.ExecutionID)
	require.Len(t, store.recorded, 1)
	assert.Equal(t, "exec-42", store.recorded[0].ExecutionID)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(audit.Bytes(), &entry))
	assert.Equal(t, "exec-42", entry["execution_id"])
	assert.Equal(t, "wf-1", entry["workflow_id"])
	assert.Equal(t, "COMPLETED", entry["status"])
	assert.Equal(t, float64(1), entry["nodes_executed"])
	assert.Equal(t, float64(0), entry["error_count"])
}

func TestWorkflowExecutorService_HistoryFailureDoesNotFailRun(t *testing.T) {
	store := &fakeHistoryStore{err: errors.New("redis down")}
	service := newServiceUnderTest(store, &bytes.Buffer{})

	result, err := service.Execute(context.Background(), ExecuteParams{Workflow: singleNodeWorkflow(domain.WorkflowStatusActive)})
	require.NoError(t, err)

	assert.Equal(t, domain.ExecutionStatusCompleted, result.Status)
}

func TestWorkflowExecutorService_GraphErrorIsReturned(t *testing.T) {
	store := &fakeHistoryStore{}
	service := newServiceUnderTest(store, &bytes.Buffer{})

	_, err := service.Execute(context.Background(), ExecuteParams{
		Workflow: domain.WorkflowDefinition{ID: "wf-1", Status: domain.WorkflowStatusActive},
	})

	var graphErr *domain.GraphError
	assert.ErrorAs(t, err, &graphErr)
	assert.Empty(t, store.recorded)
}
