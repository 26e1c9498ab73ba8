package executor

import (
	"context"
	"time"

	"github.com/agencyflow/agencyflow/pkg/domain"
)

type NodeStartedEvent struct {
	NodeID    string
	NodeType  domain.NodeType
	Timestamp time.Time
}

func (NodeStartedEvent) GetEventType() domain.ExecutionEventType {
	return domain.ExecutionEventTypeNodeStarted
}

type NodeCompletedEvent struct {
	NodeID    string
	NodeType  domain.NodeType
	Payload   domain.Payload
	StartedAt time.Time
	EndedAt   time.Time
}

func (NodeCompletedEvent) GetEventType() domain.ExecutionEventType {
	return domain.ExecutionEventTypeNodeCompleted
}

type NodeFailedEvent struct {
	NodeID    string
	NodeType  domain.NodeType
	Error     error
	StartedAt time.Time
	EndedAt   time.Time
}

func (NodeFailedEvent) GetEventType() domain.ExecutionEventType {
	return domain.ExecutionEventTypeNodeFailed
}

type EdgeSkippedEvent struct {
	Edge      domain.Edge
	Timestamp time.Time
}

func (EdgeSkippedEvent) GetEventType() domain.ExecutionEventType {
	return domain.ExecutionEventTypeEdgeSkipped
}

type ExecutionFinishedEvent struct {
	Result    domain.ExecutionResult
	Timestamp time.Time
}

func (ExecutionFinishedEvent) GetEventType() domain.ExecutionEventType {
	return domain.ExecutionEventTypeExecutionFinished
}

type ExecutionObserver struct {
	handlers []domain.ExecutionEventHandler
}

func NewExecutionObserver() *ExecutionObserver {
	return &ExecutionObserver{
		handlers: []domain.ExecutionEventHandler{},
	}
}

func (o *ExecutionObserver) Subscribe(handler domain.ExecutionEventHandler) {
	o.handlers = append(o.handlers, handler)
}

// Notify delivers the event to every handler and returns the first error.
func (o *ExecutionObserver) Notify(ctx context.Context, event domain.ExecutionEvent) error {
	var firstErr error

	for _, handler := range o.handlers {
		if err := handler.HandleEvent(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
