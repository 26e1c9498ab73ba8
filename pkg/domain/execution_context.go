package domain

import (
	"maps"
	"sync"
	"time"
)

// ExecutionContext is shared by every node of a single run. Parallel branches
// may read and write it concurrently.
type ExecutionContext struct {
	ExecutionID string
	WorkflowID  string
	TestMode    bool
	StartedAt   time.Time
	TriggerData map[string]any

	ConditionFailurePolicy ConditionFailurePolicy

	variables map[string]any
	mu        sync.RWMutex
}

type NewExecutionContextParams struct {
	ExecutionID            string
	WorkflowID             string
	TestMode               bool
	StartedAt              time.Time
	TriggerData            map[string]any
	Context                map[string]any
	ConditionFailurePolicy ConditionFailurePolicy
}

// NewExecutionContext merges trigger data, caller context and run metadata
// into one variable scope. Metadata wins over caller supplied keys.
func NewExecutionContext(p NewExecutionContextParams) *ExecutionContext {
	triggerData := p.TriggerData
	if triggerData == nil {
		triggerData = map[string]any{}
	}

	variables := map[string]any{}

	maps.Copy(variables, triggerData)
	maps.Copy(variables, p.Context)

	variables["triggerData"] = triggerData
	variables["executionId"] = p.ExecutionID
	variables["workflowId"] = p.WorkflowID
	variables["testMode"] = p.TestMode
	variables["startedAt"] = p.StartedAt.UTC().Format(time.RFC3339Nano)

	return &ExecutionContext{
		ExecutionID:            p.ExecutionID,
		WorkflowID:             p.WorkflowID,
		TestMode:               p.TestMode,
		StartedAt:              p.StartedAt,
		TriggerData:            triggerData,
		ConditionFailurePolicy: p.ConditionFailurePolicy.OrDefault(),
		variables:              variables,
	}
}

func (c *ExecutionContext) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return GetValueByPath(c.variables, path)
}

func (c *ExecutionContext) Set(path string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return SetValueByPath(c.variables, path, value)
}

// Variables returns a shallow copy of the current variable scope.
func (c *ExecutionContext) Variables() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return maps.Clone(c.variables)
}

// Scope layers a node's input over the context variables, which is the data
// that conditions, filters and transforms resolve field paths against.
func (c *ExecutionContext) Scope(input Payload) Payload {
	return Payload(c.Variables()).Merge(input)
}
