package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// External services used by node handlers outside of test mode.

type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type SleeperFunc func(ctx context.Context, d time.Duration) error

func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// TimerSleeper blocks on a timer and returns early with ctx.Err() when the
// context is cancelled.
type TimerSleeper struct{}

func (TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type EmailMessage struct {
	To       []string
	Subject  string
	Body     string
	Template string
	Data     map[string]any
}

type EmailSender interface {
	SendEmail(ctx context.Context, message EmailMessage) (string, error)
}

type Notification struct {
	ExecutionID string         `json:"executionId"`
	WorkflowID  string         `json:"workflowId"`
	Title       string         `json:"title"`
	Message     string         `json:"message"`
	Recipient   string         `json:"recipient,omitempty"`
	Level       string         `json:"level,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

type Notifier interface {
	Notify(ctx context.Context, notification Notification) (string, error)
}

type DatabaseOperation string

const (
	DatabaseOperationSelect DatabaseOperation = "select"
	DatabaseOperationInsert DatabaseOperation = "insert"
	DatabaseOperationUpdate DatabaseOperation = "update"
	DatabaseOperationDelete DatabaseOperation = "delete"
	DatabaseOperationQuery  DatabaseOperation = "query"
)

type DatabaseQuery struct {
	Operation DatabaseOperation
	Table     string
	Data      map[string]any
	Where     map[string]any
	Query     string
	Args      []any
	Limit     int
}

type DatabaseResult struct {
	Rows         []map[string]any
	AffectedRows int64
	InsertedID   any
}

type DatabaseClient interface {
	Execute(ctx context.Context, query DatabaseQuery) (DatabaseResult, error)
}

type AICompletionRequest struct {
	Model     string
	Prompt    string
	System    string
	MaxTokens int
}

type AICompletion struct {
	Model      string
	Text       string
	TokensUsed int
}

type AIProvider interface {
	Complete(ctx context.Context, request AICompletionRequest) (AICompletion, error)
}

// IntegrationConnector performs one action against a third party service.
type IntegrationConnector interface {
	Invoke(ctx context.Context, action string, params map[string]any) (Payload, error)
}

var ErrUnsupportedAction = errors.New("unsupported integration action")

type ConnectorActionFunc func(ctx context.Context, params map[string]any) (Payload, error)

// ConnectorActions is the action table most connectors dispatch through.
type ConnectorActions map[string]ConnectorActionFunc

func (a ConnectorActions) Invoke(ctx context.Context, action string, params map[string]any) (Payload, error) {
	actionFunc, ok := a[action]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAction, action)
	}

	return actionFunc(ctx, params)
}
