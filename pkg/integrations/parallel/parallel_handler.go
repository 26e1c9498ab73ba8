package parallel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/agencyflow/agencyflow/pkg/domain"

	"github.com/rs/zerolog/log"
)

var ErrDispatcherMissing = errors.New("parallel branches require a node dispatcher")

// BranchError is returned when at least one branch failed. Every branch has
// finished by the time it is returned.
type BranchError struct {
	Failed   []string
	Total    int
	Branches []any
}

func (e *BranchError) Error() string {
	return fmt.Sprintf("%d of %d parallel branches failed: %s", len(e.Failed), e.Total, strings.Join(e.Failed, ", "))
}

// ParallelHandler runs every branch concurrently and waits for all of them,
// success or failure.
type ParallelHandler struct{}

func NewParallelHandler(deps domain.HandlerDeps) domain.NodeHandler {
	return &ParallelHandler{}
}

func (h *ParallelHandler) Validate(config map[string]any) error {
	branches, ok := config["branches"].([]any)
	if !ok || len(branches) == 0 {
		return domain.NewInvalidFieldError("branches", "must be a non-empty list")
	}

	for i, branch := range branches {
		if _, err := domain.ParseEmbeddedNode(branch, branchID("", i)); err != nil {
			return domain.NewInvalidFieldError("branches", fmt.Sprintf("branch %d: %s", i, err))
		}
	}

	return nil
}

type branchOutcome struct {
	node    domain.Node
	payload domain.Payload
	err     error
}

func (h *ParallelHandler) Execute(ctx context.Context, input domain.NodeInput) (domain.Payload, error) {
	raw, _ := input.Config["branches"].([]any)

	if input.Dispatcher == nil {
		return nil, ErrDispatcherMissing
	}

	nodes := make([]domain.Node, len(raw))
	for i, branch := range raw {
		node, err := domain.ParseEmbeddedNode(branch, branchID(input.Node.ID, i))
		if err != nil {
			return nil, domain.NewInvalidFieldError("branches", err.Error())
		}
		nodes[i] = node
	}

	outcomes := make([]branchOutcome, len(nodes))

	var wg sync.WaitGroup

	for i, node := range nodes {
		wg.Add(1)

		go func(i int, node domain.Node) {
			defer wg.Done()

			payload, err := input.Dispatcher.Dispatch(ctx, node, input.Input.Clone(), input.Context)
			outcomes[i] = branchOutcome{node: node, payload: payload, err: err}
		}(i, node)
	}

	wg.Wait()

	branches := make([]any, len(outcomes))
	var failed []string

	for i, outcome := range outcomes {
		branch := map[string]any{
			"branchId": outcome.node.ID,
			"nodeType": string(outcome.node.Type),
			"success":  outcome.err == nil,
		}

		if outcome.err != nil {
			branch["error"] = outcome.err.Error()
			failed = append(failed, outcome.node.ID)

			log.Debug().
				Str("node_id", input.Node.ID).
				Str("branch_id", outcome.node.ID).
				Err(outcome.err).
				Msg("Parallel branch failed")
		} else {
			branch["result"] = map[string]any(outcome.payload)
		}

		branches[i] = branch
	}

	if len(failed) > 0 {
		return nil, &BranchError{Failed: failed, Total: len(nodes), Branches: branches}
	}

	return domain.Payload{
		"branches":  branches,
		"completed": float64(len(branches)),
	}, nil
}

func branchID(parentID string, index int) string {
	if parentID == "" {
		return fmt.Sprintf("branch-%d", index)
	}

	return fmt.Sprintf("%s.branch-%d", parentID, index)
}
