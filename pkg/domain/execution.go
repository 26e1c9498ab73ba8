package domain

import "time"

type ExecutionStatus string

const (
	ExecutionStatusQueued    ExecutionStatus = "QUEUED"
	ExecutionStatusRunning   ExecutionStatus = "RUNNING"
	ExecutionStatusCompleted ExecutionStatus = "COMPLETED"
	ExecutionStatusFailed    ExecutionStatus = "FAILED"
	ExecutionStatusPartial   ExecutionStatus = "PARTIAL"
	ExecutionStatusTimeout   ExecutionStatus = "TIMEOUT"
)

func (s ExecutionStatus) IsTerminal() bool {
	switch s {
	case ExecutionStatusCompleted, ExecutionStatusFailed, ExecutionStatusPartial, ExecutionStatusTimeout:
		return true
	default:
		return false
	}
}

type ExecutionRequest struct {
	TriggerData map[string]any `json:"triggerData,omitempty"`
	Context     map[string]any `json:"context,omitempty"`
	TestMode    bool           `json:"testMode,omitempty"`
}

type NodeResult struct {
	NodeID    string        `json:"nodeId"`
	NodeType  NodeType      `json:"nodeType"`
	Result    Payload       `json:"result,omitempty"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
}

func (r NodeResult) Succeeded() bool {
	return r.Error == ""
}

type ExecutionResult struct {
	Success       bool            `json:"success"`
	ExecutionID   string          `json:"executionId"`
	WorkflowID    string          `json:"workflowId"`
	Status        ExecutionStatus `json:"status"`
	Results       []NodeResult    `json:"results"`
	Errors        []string        `json:"errors"`
	Warnings      []string        `json:"warnings"`
	ExecutionTime time.Duration   `json:"executionTime"`
	NodesExecuted int             `json:"nodesExecuted"`
	StartedAt     time.Time       `json:"startedAt"`
	TestMode      bool            `json:"testMode"`
}

// AuditEntry is the summary the host writes to its audit trail after a run.
type AuditEntry struct {
	ExecutionID   string          `json:"executionId"`
	WorkflowID    string          `json:"workflowId"`
	Status        ExecutionStatus `json:"status"`
	ExecutionTime time.Duration   `json:"executionTime"`
	NodesExecuted int             `json:"nodesExecuted"`
	ErrorCount    int             `json:"errorCount"`
	WarningCount  int             `json:"warningCount"`
}

func (r ExecutionResult) AuditEntry() AuditEntry {
	return AuditEntry{
		ExecutionID:   r.ExecutionID,
		WorkflowID:    r.WorkflowID,
		Status:        r.Status,
		ExecutionTime: r.ExecutionTime,
		NodesExecuted: r.NodesExecuted,
		ErrorCount:    len(r.Errors),
		WarningCount:  len(r.Warnings),
	}
}
