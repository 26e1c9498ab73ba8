package executor

import (
	"context"

	"github.com/agencyflow/agencyflow/pkg/domain"

	"github.com/rs/zerolog"
)

// ExecutionLogger writes every execution event to a structured logger.
type ExecutionLogger struct {
	logger zerolog.Logger
}

func NewExecutionLogger(logger zerolog.Logger, executionID string) *ExecutionLogger {
	return &ExecutionLogger{
		logger: logger.With().Str("execution_id", executionID).Logger(),
	}
}

func (l *ExecutionLogger) HandleEvent(ctx context.Context, event domain.ExecutionEvent) error {
	switch e := event.(type) {
	case NodeStartedEvent:
		l.logger.Debug().
			Str("node_id", e.NodeID).
			Str("node_type", string(e.NodeType)).
			Msg("Node started")
	case NodeCompletedEvent:
		l.logger.Debug().
			Str("node_id", e.NodeID).
			Str("node_type", string(e.NodeType)).
			Dur("duration", e.EndedAt.Sub(e.StartedAt)).
			Msg("Node completed")
	case NodeFailedEvent:
		l.logger.Warn().
			Err(e.Error).
			Str("node_id", e.NodeID).
			Str("node_type", string(e.NodeType)).
			Msg("Node failed")
	case EdgeSkippedEvent:
		l.logger.Debug().
			Str("edge_id", e.Edge.ID).
			Str("source", e.Edge.Source).
			Str("target", e.Edge.Target).
			Msg("Edge condition not met")
	case ExecutionFinishedEvent:
		l.logger.Info().
			Str("status", string(e.Result.Status)).
			Int("nodes_executed", e.Result.NodesExecuted).
			Int("errors", len(e.Result.Errors)).
			Int("warnings", len(e.Result.Warnings)).
			Dur("execution_time", e.Result.ExecutionTime).
			Msg("Execution finished")
	}

	return nil
}
