package domain

import "context"

type ExecutionEventType string

// Lifecycle events of a single run, in the order a node goes through them.
// ExecutionFinished is emitted exactly once, after the result is finalized.
const (
	ExecutionEventTypeNodeStarted       ExecutionEventType = "node_started"
	ExecutionEventTypeNodeCompleted     ExecutionEventType = "node_completed"
	ExecutionEventTypeNodeFailed        ExecutionEventType = "node_failed"
	ExecutionEventTypeEdgeSkipped       ExecutionEventType = "edge_skipped"
	ExecutionEventTypeExecutionFinished ExecutionEventType = "execution_finished"
)

type ExecutionEvent interface {
	GetEventType() ExecutionEventType
}

// ExecutionEventHandler receives every event of a run on the scheduler's
// goroutine. Returned errors are logged and never stop the run.
type ExecutionEventHandler interface {
	HandleEvent(ctx context.Context, event ExecutionEvent) error
}
