package executor

import (
	"context"
	"sync"
	"time"

	"github.com/agencyflow/agencyflow/pkg/domain"
)

const (
	WarningExecutionTimedOut = "Workflow execution timed out"
	ErrorExecutionTimeout    = "Execution timeout"
)

// ResultAggregator collects node results in completion order together with
// the run's errors and warnings, and produces the final ExecutionResult.
type ResultAggregator struct {
	executionID string
	workflowID  string
	testMode    bool
	startedAt   time.Time
	now         func() time.Time

	results       []domain.NodeResult
	errors        []string
	warnings      []string
	nodesExecuted int

	mutex sync.Mutex
}

type ResultAggregatorParams struct {
	ExecutionID string
	WorkflowID  string
	TestMode    bool
	StartedAt   time.Time
	Now         func() time.Time
}

func NewResultAggregator(p ResultAggregatorParams) *ResultAggregator {
	now := p.Now
	if now == nil {
		now = time.Now
	}

	return &ResultAggregator{
		executionID: p.ExecutionID,
		workflowID:  p.WorkflowID,
		testMode:    p.TestMode,
		startedAt:   p.StartedAt,
		now:         now,
		results:     []domain.NodeResult{},
		errors:      []string{},
		warnings:    []string{},
	}
}

// HandleEvent records a NodeResult for every finished node attempt.
func (a *ResultAggregator) HandleEvent(ctx context.Context, event domain.ExecutionEvent) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	switch e := event.(type) {
	case NodeCompletedEvent:
		a.results = append(a.results, domain.NodeResult{
			NodeID:    e.NodeID,
			NodeType:  e.NodeType,
			Result:    e.Payload,
			Timestamp: e.EndedAt,
			Duration:  e.EndedAt.Sub(e.StartedAt),
		})
		a.nodesExecuted++
	case NodeFailedEvent:
		a.results = append(a.results, domain.NodeResult{
			NodeID:    e.NodeID,
			NodeType:  e.NodeType,
			Error:     e.Error.Error(),
			Timestamp: e.EndedAt,
			Duration:  e.EndedAt.Sub(e.StartedAt),
		})
		a.errors = append(a.errors, e.Error.Error())
	}

	return nil
}

func (a *ResultAggregator) AddError(message string) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.errors = append(a.errors, message)
}

func (a *ResultAggregator) AddWarning(message string) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.warnings = append(a.warnings, message)
}

func (a *ResultAggregator) NodesExecuted() int {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.nodesExecuted
}

func (a *ResultAggregator) HasErrors() bool {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return len(a.errors) > 0
}

// TerminalStatus is the status of a run whose queue drained without an
// early exit.
func (a *ResultAggregator) TerminalStatus(totalNodes int) domain.ExecutionStatus {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.nodesExecuted == totalNodes && len(a.errors) == 0 {
		return domain.ExecutionStatusCompleted
	}

	return domain.ExecutionStatusPartial
}

// MarkTimedOut appends the run level timeout warning and error.
func (a *ResultAggregator) MarkTimedOut() {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.warnings = append(a.warnings, WarningExecutionTimedOut)
	a.errors = append(a.errors, ErrorExecutionTimeout)
}

func (a *ResultAggregator) Finalize(status domain.ExecutionStatus) domain.ExecutionResult {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	results := make([]domain.NodeResult, len(a.results))
	copy(results, a.results)

	errs := make([]string, len(a.errors))
	copy(errs, a.errors)

	warnings := make([]string, len(a.warnings))
	copy(warnings, a.warnings)

	return domain.ExecutionResult{
		Success:       status == domain.ExecutionStatusCompleted,
		ExecutionID:   a.executionID,
		WorkflowID:    a.workflowID,
		Status:        status,
		Results:       results,
		Errors:        errs,
		Warnings:      warnings,
		ExecutionTime: a.now().Sub(a.startedAt),
		NodesExecuted: a.nodesExecuted,
		StartedAt:     a.startedAt,
		TestMode:      a.testMode,
	}
}
