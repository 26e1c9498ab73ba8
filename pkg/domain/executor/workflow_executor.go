package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agencyflow/agencyflow/pkg/conditions"
	"github.com/agencyflow/agencyflow/pkg/domain"

	"github.com/rs/zerolog/log"
)

const DefaultRunTimeout = 5 * time.Minute

type Options struct {
	RunTimeout  time.Duration
	NodeTimeout time.Duration
	// Now is the clock used for the run budget and timestamps.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.RunTimeout <= 0 {
		o.RunTimeout = DefaultRunTimeout
	}

	if o.NodeTimeout <= 0 {
		o.NodeTimeout = DefaultNodeTimeout
	}

	if o.Now == nil {
		o.Now = time.Now
	}

	return o
}

type NodeExecutionTask struct {
	NodeID       string
	SourceNodeID string
	Input        domain.Payload
}

// WorkflowExecutor runs one execution of a workflow. It is not reusable.
type WorkflowExecutor struct {
	executionID string
	workflow    domain.WorkflowDefinition
	request     domain.ExecutionRequest

	executionQueue []NodeExecutionTask
	executedNodes  map[string]struct{}

	nodeExecutor *NodeExecutor
	observer     *ExecutionObserver
	aggregator   *ResultAggregator
	options      Options

	startedAt time.Time
}

type WorkflowExecutorDeps struct {
	ExecutionID string
	Workflow    domain.WorkflowDefinition
	Request     domain.ExecutionRequest
	Registry    domain.HandlerRegistry
	Options     Options
	Handlers    []domain.ExecutionEventHandler
}

func NewWorkflowExecutor(deps WorkflowExecutorDeps) *WorkflowExecutor {
	options := deps.Options.withDefaults()
	startedAt := options.Now()

	aggregator := NewResultAggregator(ResultAggregatorParams{
		ExecutionID: deps.ExecutionID,
		WorkflowID:  deps.Workflow.ID,
		TestMode:    deps.Request.TestMode,
		StartedAt:   startedAt,
		Now:         options.Now,
	})

	observer := NewExecutionObserver()
	observer.Subscribe(aggregator)

	for _, handler := range deps.Handlers {
		observer.Subscribe(handler)
	}

	return &WorkflowExecutor{
		executionID:    deps.ExecutionID,
		workflow:       deps.Workflow,
		request:        deps.Request,
		executionQueue: []NodeExecutionTask{},
		executedNodes:  map[string]struct{}{},
		nodeExecutor: NewNodeExecutor(NodeExecutorDeps{
			Registry: deps.Registry,
			Timeout:  options.NodeTimeout,
		}),
		observer:   observer,
		aggregator: aggregator,
		options:    options,
		startedAt:  startedAt,
	}
}

// Execute builds the graph and runs it breadth first. A *domain.GraphError is
// the only error returned; every other failure is reported inside the result.
func (w *WorkflowExecutor) Execute(ctx context.Context) (domain.ExecutionResult, error) {
	graph, err := BuildExecutionGraph(w.workflow.Nodes, w.workflow.Edges, BuildGraphOptions{
		StrictEdges: w.workflow.Settings.StrictEdges,
	})
	if err != nil {
		return domain.ExecutionResult{}, err
	}

	for _, edge := range graph.DroppedEdges {
		w.aggregator.AddWarning(fmt.Sprintf("Edge %s dropped: references unknown node (%s -> %s)", edge.ID, edge.Source, edge.Target))
	}

	runCtx, cancel := context.WithTimeout(ctx, w.options.RunTimeout)
	defer cancel()

	execCtx := domain.NewExecutionContext(domain.NewExecutionContextParams{
		ExecutionID:            w.executionID,
		WorkflowID:             w.workflow.ID,
		TestMode:               w.request.TestMode,
		StartedAt:              w.startedAt,
		TriggerData:            w.request.TriggerData,
		Context:                w.request.Context,
		ConditionFailurePolicy: w.workflow.Settings.ConditionFailurePolicy,
	})

	triggerPayload := domain.Payload(execCtx.TriggerData).Clone()

	for _, nodeID := range graph.StartNodeIDs {
		w.AddExecutionTask(NodeExecutionTask{NodeID: nodeID, Input: triggerPayload})
	}

	log.Info().
		Str("workflow_id", w.workflow.ID).
		Str("execution_id", w.executionID).
		Int("nodes", graph.Size()).
		Int("start_nodes", len(graph.StartNodeIDs)).
		Bool("test_mode", w.request.TestMode).
		Msg("Executing workflow")

	for len(w.executionQueue) > 0 {
		task := w.executionQueue[0]
		w.executionQueue = w.executionQueue[1:]

		if _, done := w.executedNodes[task.NodeID]; done {
			continue
		}

		if err := ctx.Err(); err != nil {
			return w.finishCancelled(ctx, err), nil
		}

		graphNode, _ := graph.Node(task.NodeID)

		stop := w.ExecuteNode(runCtx, graphNode, task, execCtx)
		if stop {
			return w.finish(ctx, domain.ExecutionStatusFailed), nil
		}

		if w.runBudgetExceeded(runCtx) {
			if err := ctx.Err(); err != nil {
				return w.finishCancelled(ctx, err), nil
			}

			log.Warn().
				Str("workflow_id", w.workflow.ID).
				Str("execution_id", w.executionID).
				Dur("budget", w.options.RunTimeout).
				Msg("Workflow execution timed out")

			w.aggregator.MarkTimedOut()

			return w.finish(ctx, domain.ExecutionStatusTimeout), nil
		}
	}

	log.Info().Str("execution_id", w.executionID).Msg("Execution queue is empty, workflow is finished")

	return w.finish(ctx, w.aggregator.TerminalStatus(graph.Size())), nil
}

func (w *WorkflowExecutor) AddExecutionTask(task NodeExecutionTask) {
	w.executionQueue = append(w.executionQueue, task)
}

// ExecuteNode runs one node and expands its outgoing edges. It returns true
// when the run has to stop as FAILED.
func (w *WorkflowExecutor) ExecuteNode(ctx context.Context, graphNode *GraphNode, task NodeExecutionTask, execCtx *domain.ExecutionContext) bool {
	node := graphNode.Node
	startedAt := w.options.Now()

	w.notify(ctx, NodeStartedEvent{NodeID: node.ID, NodeType: node.Type, Timestamp: startedAt})

	payload, err := w.nodeExecutor.Dispatch(ctx, node, task.Input, execCtx)

	w.executedNodes[node.ID] = struct{}{}

	if err != nil {
		log.Error().
			Err(err).
			Str("node_id", node.ID).
			Str("node_type", string(node.Type)).
			Msg("Error executing node")

		w.notify(ctx, NodeFailedEvent{
			NodeID:    node.ID,
			NodeType:  node.Type,
			Error:     err,
			StartedAt: startedAt,
			EndedAt:   w.options.Now(),
		})

		// A cancelled run is reported by the budget check, not by the node policy.
		if ctx.Err() != nil {
			return false
		}

		if node.StopOnError() {
			return true
		}

		w.aggregator.AddWarning(fmt.Sprintf("Node %s failed, continuing: %v", node.ID, err))

		failed := task.Input.Merge(map[string]any{
			"error":  err.Error(),
			"nodeId": node.ID,
		})

		return w.expandOutgoingEdges(ctx, graphNode, failed, execCtx)
	}

	w.notify(ctx, NodeCompletedEvent{
		NodeID:    node.ID,
		NodeType:  node.Type,
		Payload:   payload,
		StartedAt: startedAt,
		EndedAt:   w.options.Now(),
	})

	return w.expandOutgoingEdges(ctx, graphNode, payload, execCtx)
}

func (w *WorkflowExecutor) expandOutgoingEdges(ctx context.Context, graphNode *GraphNode, data domain.Payload, execCtx *domain.ExecutionContext) bool {
	for _, edge := range graphNode.OutgoingEdges {
		outcome := conditions.EvaluateWithPolicy(edge.Condition, data, execCtx.ConditionFailurePolicy)

		if outcome.Warning != "" {
			log.Warn().
				Str("edge_id", edge.ID).
				Str("warning", outcome.Warning).
				Msg("Malformed edge condition")

			w.aggregator.AddWarning(fmt.Sprintf("Condition on edge %s: %s", edge.ID, outcome.Warning))
		}

		if outcome.Err != nil {
			w.aggregator.AddError(fmt.Sprintf("Condition on edge %s: %v", edge.ID, outcome.Err))

			if graphNode.Node.StopOnError() {
				return true
			}

			continue
		}

		if !outcome.Passed {
			w.notify(ctx, EdgeSkippedEvent{Edge: edge, Timestamp: w.options.Now()})
			continue
		}

		w.AddExecutionTask(NodeExecutionTask{
			NodeID:       edge.Target,
			SourceNodeID: graphNode.Node.ID,
			Input:        data,
		})
	}

	return false
}

func (w *WorkflowExecutor) runBudgetExceeded(runCtx context.Context) bool {
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) || errors.Is(runCtx.Err(), context.Canceled) {
		return true
	}

	return w.options.Now().Sub(w.startedAt) > w.options.RunTimeout
}

func (w *WorkflowExecutor) finishCancelled(ctx context.Context, cause error) domain.ExecutionResult {
	w.aggregator.AddError(fmt.Sprintf("Execution cancelled: %v", cause))

	return w.finish(ctx, domain.ExecutionStatusFailed)
}

func (w *WorkflowExecutor) finish(ctx context.Context, status domain.ExecutionStatus) domain.ExecutionResult {
	result := w.aggregator.Finalize(status)

	w.notify(ctx, ExecutionFinishedEvent{Result: result, Timestamp: w.options.Now()})

	return result
}

func (w *WorkflowExecutor) notify(ctx context.Context, event domain.ExecutionEvent) {
	if err := w.observer.Notify(ctx, event); err != nil {
		log.Error().
			Err(err).
			Str("execution_id", w.executionID).
			Str("event", string(event.GetEventType())).
			Msg("Failed to notify execution event")
	}
}
