package loop

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/agencyflow/agencyflow/pkg/domain"
	"github.com/agencyflow/agencyflow/pkg/expressions"
)

const (
	DefaultMaxIterations = 100
	// MaxIterationsLimit caps maxIterations itself.
	MaxIterationsLimit = 10000
)

var ErrDispatcherMissing = errors.New("loop body requires a node dispatcher")

// LoopHandler iterates over items, or over a synthesized range when only
// iterations is given. An optional body node runs once per iteration with
// {item, index} layered over the loop input. The outer graph is never
// re-entered.
type LoopHandler struct {
	binder domain.ParameterBinder
}

func NewLoopHandler(deps domain.HandlerDeps) domain.NodeHandler {
	return &LoopHandler{
		binder: deps.ParameterBinder,
	}
}

func (h *LoopHandler) Validate(config map[string]any) error {
	if !domain.HasValue(config, "items") && !domain.HasValue(config, "iterations") {
		return domain.NewMissingFieldError("items")
	}

	if raw, ok := config["iterations"]; ok && raw != nil {
		if n, ok := domain.ToFloat(raw); ok {
			if _, err := iterationCount(n); err != nil {
				return err
			}
		}
	}

	if raw, ok := config["maxIterations"]; ok && raw != nil {
		n, ok := domain.ToFloat(raw)
		if !ok || math.IsNaN(n) || n < 1 || n > MaxIterationsLimit {
			return domain.NewInvalidFieldError("maxIterations", fmt.Sprintf("must be a number between 1 and %d", MaxIterationsLimit))
		}
	}

	if body, ok := config["body"]; ok && body != nil {
		if _, err := domain.ParseEmbeddedNode(body, "body"); err != nil {
			return domain.NewInvalidFieldError("body", err.Error())
		}
	}

	return nil
}

func (h *LoopHandler) Execute(ctx context.Context, input domain.NodeInput) (domain.Payload, error) {
	// The body is bound by its own handler on every iteration.
	unbound := make(map[string]any, len(input.Config))
	for key, value := range input.Config {
		if key != "body" {
			unbound[key] = value
		}
	}

	config := expressions.BindConfig(h.binder, unbound, input.Context.Scope(input.Input))

	items, truncated, err := loopItems(config, iterationLimit(config))
	if err != nil {
		return nil, err
	}

	var body *domain.Node
	if raw, ok := input.Config["body"]; ok && raw != nil {
		node, err := domain.ParseEmbeddedNode(raw, input.Node.ID+".body")
		if err != nil {
			return nil, domain.NewInvalidFieldError("body", err.Error())
		}

		if input.Dispatcher == nil {
			return nil, ErrDispatcherMissing
		}

		body = &node
	}

	results := make([]any, 0, len(items))

	for index, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		iteration := map[string]any{
			"index": float64(index),
			"item":  item,
		}

		if body != nil {
			payload, err := input.Dispatcher.Dispatch(ctx, *body, input.Input.Merge(iteration), input.Context)
			if err != nil {
				return nil, fmt.Errorf("loop iteration %d failed: %w", index, err)
			}

			iteration["result"] = map[string]any(payload)
		}

		results = append(results, iteration)
	}

	return domain.Payload{
		"iterations": float64(len(results)),
		"results":    results,
		"truncated":  truncated,
	}, nil
}

// iterationLimit returns maxIterations clamped to [1, MaxIterationsLimit].
func iterationLimit(config map[string]any) int {
	n, ok := domain.ToFloat(config["maxIterations"])
	if !ok || math.IsNaN(n) {
		return DefaultMaxIterations
	}

	return int(math.Max(1, math.Min(n, MaxIterationsLimit)))
}

// loopItems returns at most limit items and reports whether more were
// available. A synthesized range never allocates past limit.
func loopItems(config map[string]any, limit int) ([]any, bool, error) {
	if raw, ok := config["items"]; ok && raw != nil {
		var items []any

		switch v := raw.(type) {
		case []any:
			items = v
		case []string:
			items = make([]any, len(v))
			for i, s := range v {
				items[i] = s
			}
		default:
			return nil, false, domain.NewInvalidFieldError("items", "must be an array")
		}

		if len(items) > limit {
			return items[:limit], true, nil
		}

		return items, false, nil
	}

	raw, ok := domain.ToFloat(config["iterations"])
	if !ok {
		return nil, false, domain.NewInvalidFieldError("iterations", "must be a non-negative number")
	}

	n, err := iterationCount(raw)
	if err != nil {
		return nil, false, err
	}

	count := n
	if count > uint64(limit) {
		count = uint64(limit)
	}

	items := make([]any, count)
	for i := range items {
		items[i] = float64(i)
	}

	return items, n > uint64(limit), nil
}

func iterationCount(n float64) (uint64, error) {
	if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 || n > math.MaxInt64 {
		return 0, domain.NewInvalidFieldError("iterations", "must be a finite non-negative number")
	}

	return uint64(n), nil
}
