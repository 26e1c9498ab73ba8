package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/agencyflow/agencyflow/pkg/domain"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultKeyPrefix     = "agencyflow"
	DefaultMaxExecutions = 200

	fieldExecutionCount = "executionCount"
	fieldLastExecutedAt = "lastExecutedAt"
)

// RedisStore keeps a capped list of results per workflow plus a usage hash
// with the execution counter and the last run time.
type RedisStore struct {
	client        redis.UniversalClient
	keyPrefix     string
	maxExecutions int64
}

type RedisStoreOptions struct {
	KeyPrefix     string
	MaxExecutions int64
}

func NewRedisStore(client redis.UniversalClient, opts RedisStoreOptions) *RedisStore {
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = DefaultKeyPrefix
	}

	if opts.MaxExecutions <= 0 {
		opts.MaxExecutions = DefaultMaxExecutions
	}

	return &RedisStore{
		client:        client,
		keyPrefix:     opts.KeyPrefix,
		maxExecutions: opts.MaxExecutions,
	}
}

func (s *RedisStore) executionsKey(workflowID string) string {
	return fmt.Sprintf("%s:workflows:%s:executions", s.keyPrefix, workflowID)
}

func (s *RedisStore) usageKey(workflowID string) string {
	return fmt.Sprintf("%s:workflows:%s:usage", s.keyPrefix, workflowID)
}

func (s *RedisStore) RecordExecution(ctx context.Context, workflow domain.WorkflowDefinition, result domain.ExecutionResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal execution result: %w", err)
	}

	executionsKey := s.executionsKey(workflow.ID)
	usageKey := s.usageKey(workflow.ID)

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, executionsKey, raw)
	pipe.LTrim(ctx, executionsKey, 0, s.maxExecutions-1)
	pipe.HIncrBy(ctx, usageKey, fieldExecutionCount, 1)
	pipe.HSet(ctx, usageKey, fieldLastExecutedAt, result.StartedAt.UTC().Format(time.RFC3339Nano))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record execution %s: %w", result.ExecutionID, err)
	}

	return nil
}

func (s *RedisStore) ListExecutions(ctx context.Context, workflowID string, limit int) ([]domain.ExecutionResult, error) {
	if limit <= 0 {
		limit = int(s.maxExecutions)
	}

	entries, err := s.client.LRange(ctx, s.executionsKey(workflowID), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}

	results := make([]domain.ExecutionResult, 0, len(entries))
	for _, entry := range entries {
		var result domain.ExecutionResult
		if err := json.Unmarshal([]byte(entry), &result); err != nil {
			return nil, fmt.Errorf("failed to decode stored execution: %w", err)
		}

		results = append(results, result)
	}

	return results, nil
}

func (s *RedisStore) GetUsage(ctx context.Context, workflowID string) (domain.WorkflowUsage, error) {
	usage := domain.WorkflowUsage{WorkflowID: workflowID}

	fields, err := s.client.HGetAll(ctx, s.usageKey(workflowID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return usage, fmt.Errorf("failed to get usage: %w", err)
	}

	if raw, ok := fields[fieldExecutionCount]; ok {
		count, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return usage, fmt.Errorf("invalid execution count %q: %w", raw, err)
		}
		usage.ExecutionCount = count
	}

	if raw, ok := fields[fieldLastExecutedAt]; ok {
		lastExecutedAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return usage, fmt.Errorf("invalid last execution time %q: %w", raw, err)
		}
		usage.LastExecutedAt = &lastExecutedAt
	}

	return usage, nil
}
