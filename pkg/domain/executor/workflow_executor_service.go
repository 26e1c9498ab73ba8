package executor

import (
	"context"
	"fmt"

	"github.com/agencyflow/agencyflow/pkg/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type WorkflowExecutorService interface {
	Execute(ctx context.Context, params ExecuteParams) (domain.ExecutionResult, error)
}

type workflowExecutorService struct {
	registry     domain.HandlerRegistry
	historyStore domain.ExecutionHistoryStore
	auditLogger  zerolog.Logger
	options      Options
	newID        func() string
}

type WorkflowExecutorServiceDependencies struct {
	Registry     domain.HandlerRegistry
	HistoryStore domain.ExecutionHistoryStore
	AuditLogger  *zerolog.Logger
	Options      Options
	// NewExecutionID defaults to random UUIDs.
	NewExecutionID func() string
}

func NewWorkflowExecutorService(deps WorkflowExecutorServiceDependencies) WorkflowExecutorService {
	auditLogger := log.Logger.With().Str("component", "audit").Logger()
	if deps.AuditLogger != nil {
		auditLogger = *deps.AuditLogger
	}

	newID := deps.NewExecutionID
	if newID == nil {
		newID = uuid.NewString
	}

	return &workflowExecutorService{
		registry:     deps.Registry,
		historyStore: deps.HistoryStore,
		auditLogger:  auditLogger,
		options:      deps.Options,
		newID:        newID,
	}
}

type ExecuteParams struct {
	Workflow domain.WorkflowDefinition
	Request  domain.ExecutionRequest
}

// Execute gates on workflow status, runs the workflow and hands the finished
// result to the history store and the audit log.
func (s *workflowExecutorService) Execute(ctx context.Context, params ExecuteParams) (domain.ExecutionResult, error) {
	workflow := params.Workflow

	if !params.Request.TestMode && !workflow.IsActive() {
		return domain.ExecutionResult{}, fmt.Errorf("%w: workflow %s has status %s", domain.ErrWorkflowNotActive, workflow.ID, workflow.Status)
	}

	executionID := s.newID()

	workflowExecutor := NewWorkflowExecutor(WorkflowExecutorDeps{
		ExecutionID: executionID,
		Workflow:    workflow,
		Request:     params.Request,
		Registry:    s.registry,
		Options:     s.options,
		Handlers: []domain.ExecutionEventHandler{
			NewExecutionLogger(log.Logger, executionID),
		},
	})

	result, err := workflowExecutor.Execute(ctx)
	if err != nil {
		log.Error().Err(err).Str("workflow_id", workflow.ID).Msg("Failed to execute workflow")

		return domain.ExecutionResult{}, err
	}

	if s.historyStore != nil {
		// History failures are logged only, the caller still gets the result.
		if err := s.historyStore.RecordExecution(context.WithoutCancel(ctx), workflow, result); err != nil {
			log.Error().
				Err(err).
				Str("workflow_id", workflow.ID).
				Str("execution_id", executionID).
				Msg("Failed to record execution history")
		}
	}

	s.audit(result)

	return result, nil
}

func (s *workflowExecutorService) audit(result domain.ExecutionResult) {
	entry := result.AuditEntry()

	s.auditLogger.Info().
		Str("execution_id", entry.ExecutionID).
		Str("workflow_id", entry.WorkflowID).
		Str("status", string(entry.Status)).
		Dur("execution_time", entry.ExecutionTime).
		Int("nodes_executed", entry.NodesExecuted).
		Int("error_count", entry.ErrorCount).
		Int("warning_count", entry.WarningCount).
		Msg("Workflow execution finished")
}
