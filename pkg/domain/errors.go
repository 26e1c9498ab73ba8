package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrHandlerNotFound = errors.New("no handler registered for node type")
	ErrNoStartNodes    = errors.New("no starting nodes")
)

// GraphError is returned before any node runs when the workflow graph cannot
// be executed.
type GraphError struct {
	Reason string
	EdgeID string
	Cause  error
}

func (e *GraphError) Error() string {
	if e.EdgeID != "" {
		return fmt.Sprintf("graph error: %s (edge %s)", e.Reason, e.EdgeID)
	}

	return fmt.Sprintf("graph error: %s", e.Reason)
}

func (e *GraphError) Unwrap() error {
	return e.Cause
}

// ConfigurationError means a node is missing or has an invalid required field.
type ConfigurationError struct {
	NodeID   string
	NodeType NodeType
	Field    string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	msg := e.Reason
	if msg == "" {
		msg = "missing required field"
	}

	if e.Field != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Field)
	}

	if e.NodeID != "" {
		return fmt.Sprintf("configuration error in node %s (%s): %s", e.NodeID, e.NodeType, msg)
	}

	return fmt.Sprintf("configuration error: %s", msg)
}

func NewMissingFieldError(field string) *ConfigurationError {
	return &ConfigurationError{
		Field:  field,
		Reason: "missing required field",
	}
}

func NewInvalidFieldError(field string, reason string) *ConfigurationError {
	return &ConfigurationError{
		Field:  field,
		Reason: reason,
	}
}

// HandlerError wraps a failure reported by a node handler.
type HandlerError struct {
	NodeID   string
	NodeType NodeType
	Cause    error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("node %s (%s) failed: %v", e.NodeID, e.NodeType, e.Cause)
}

func (e *HandlerError) Unwrap() error {
	return e.Cause
}

type TimeoutScope string

const (
	TimeoutScopeNode TimeoutScope = "node"
	TimeoutScopeRun  TimeoutScope = "run"
)

type TimeoutError struct {
	Scope   TimeoutScope
	NodeID  string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	if e.Scope == TimeoutScopeRun {
		return "Execution timeout"
	}

	return fmt.Sprintf("node %s timed out after %s", e.NodeID, e.Timeout)
}

// ConditionEvaluationError means a condition was malformed. Callers apply the
// workflow's ConditionFailurePolicy instead of failing outright.
type ConditionEvaluationError struct {
	Condition ConditionType
	Reason    string
	Cause     error
}

func (e *ConditionEvaluationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("condition %q could not be evaluated: %s: %v", e.Condition, e.Reason, e.Cause)
	}

	return fmt.Sprintf("condition %q could not be evaluated: %s", e.Condition, e.Reason)
}

func (e *ConditionEvaluationError) Unwrap() error {
	return e.Cause
}
