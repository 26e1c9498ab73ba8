package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agencyflow/agencyflow/pkg/domain"

	"github.com/rs/zerolog/log"
)

const DefaultNodeTimeout = 30 * time.Second

// NodeExecutor looks up the handler for a node, validates its config and runs
// it under a per-node deadline.
type NodeExecutor struct {
	registry domain.HandlerRegistry
	timeout  time.Duration
}

type NodeExecutorDeps struct {
	Registry domain.HandlerRegistry
	Timeout  time.Duration
}

func NewNodeExecutor(deps NodeExecutorDeps) *NodeExecutor {
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = DefaultNodeTimeout
	}

	return &NodeExecutor{
		registry: deps.Registry,
		timeout:  timeout,
	}
}

type handlerOutcome struct {
	payload domain.Payload
	err     error
}

// Dispatch implements domain.NodeDispatcher so loop and parallel handlers can
// run nested node definitions through the same validation and timeouts.
func (e *NodeExecutor) Dispatch(ctx context.Context, node domain.Node, input domain.Payload, execCtx *domain.ExecutionContext) (domain.Payload, error) {
	handler, err := e.registry.Select(ctx, domain.SelectHandlerParams{NodeType: node.Type})
	if err != nil {
		return nil, &domain.ConfigurationError{
			NodeID:   node.ID,
			NodeType: node.Type,
			Reason:   fmt.Sprintf("unsupported node type %q", node.Type),
		}
	}

	config := node.Data
	if config == nil {
		config = map[string]any{}
	}

	if validator, ok := handler.(domain.ConfigValidator); ok {
		if err := validator.Validate(config); err != nil {
			return nil, asConfigurationError(node, err)
		}
	}

	timeout := e.timeout
	if override, ok := node.Timeout(); ok {
		timeout = override
	}

	nodeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan handlerOutcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- handlerOutcome{err: fmt.Errorf("handler panicked: %v", r)}
			}
		}()

		payload, err := handler.Execute(nodeCtx, domain.NodeInput{
			Node:       node,
			Config:     config,
			Input:      input,
			Context:    execCtx,
			Dispatcher: e,
		})

		done <- handlerOutcome{payload: payload, err: err}
	}()

	select {
	case outcome := <-done:
		if outcome.err != nil {
			if ctx.Err() == nil && errors.Is(nodeCtx.Err(), context.DeadlineExceeded) {
				return nil, &domain.TimeoutError{Scope: domain.TimeoutScopeNode, NodeID: node.ID, Timeout: timeout}
			}

			return nil, wrapHandlerError(node, outcome.err)
		}

		if outcome.payload == nil {
			outcome.payload = domain.Payload{}
		}

		return outcome.payload, nil
	case <-nodeCtx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		log.Warn().
			Str("node_id", node.ID).
			Str("node_type", string(node.Type)).
			Dur("timeout", timeout).
			Msg("Node execution timed out, handler context cancelled")

		return nil, &domain.TimeoutError{Scope: domain.TimeoutScopeNode, NodeID: node.ID, Timeout: timeout}
	}
}

func asConfigurationError(node domain.Node, err error) error {
	var configErr *domain.ConfigurationError
	if errors.As(err, &configErr) {
		scoped := *configErr
		scoped.NodeID = node.ID
		scoped.NodeType = node.Type
		return &scoped
	}

	return &domain.ConfigurationError{
		NodeID:   node.ID,
		NodeType: node.Type,
		Reason:   err.Error(),
	}
}

func wrapHandlerError(node domain.Node, err error) error {
	var configErr *domain.ConfigurationError
	if errors.As(err, &configErr) {
		return asConfigurationError(node, err)
	}

	var timeoutErr *domain.TimeoutError
	if errors.As(err, &timeoutErr) {
		return err
	}

	var handlerErr *domain.HandlerError
	if errors.As(err, &handlerErr) && handlerErr.NodeID == node.ID {
		return err
	}

	return &domain.HandlerError{
		NodeID:   node.ID,
		NodeType: node.Type,
		Cause:    err,
	}
}
