package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/agencyflow/agencyflow/pkg/domain"
	"github.com/agencyflow/agencyflow/pkg/domain/executor"
	"github.com/agencyflow/agencyflow/pkg/validation"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
)

const defaultExecutionListLimit = 20

// WorkflowController exposes workflow definitions and their executions.
type WorkflowController struct {
	repository      domain.WorkflowRepository
	executorService executor.WorkflowExecutorService
	historyStore    domain.ExecutionHistoryStore
	defaultTestMode bool
}

type WorkflowControllerDependencies struct {
	Repository              domain.WorkflowRepository
	WorkflowExecutorService executor.WorkflowExecutorService
	HistoryStore            domain.ExecutionHistoryStore
	DefaultTestMode         bool
}

func NewWorkflowController(deps WorkflowControllerDependencies) *WorkflowController {
	return &WorkflowController{
		repository:      deps.Repository,
		executorService: deps.WorkflowExecutorService,
		historyStore:    deps.HistoryStore,
		defaultTestMode: deps.DefaultTestMode,
	}
}

type WorkflowSummary struct {
	ID             string                `json:"id"`
	Name           string                `json:"name,omitempty"`
	Status         domain.WorkflowStatus `json:"status"`
	Nodes          int                   `json:"nodes"`
	Edges          int                   `json:"edges"`
	ExecutionCount int64                 `json:"executionCount"`
	LastExecutedAt *time.Time            `json:"lastExecutedAt,omitempty"`
}

func (c *WorkflowController) ListWorkflows(ctx fiber.Ctx) error {
	workflows, err := c.repository.ListWorkflows(ctx.RequestCtx())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list workflows")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to list workflows")
	}

	summaries := make([]WorkflowSummary, 0, len(workflows))

	for _, workflow := range workflows {
		summary := WorkflowSummary{
			ID:             workflow.ID,
			Name:           workflow.Name,
			Status:         workflow.Status,
			Nodes:          len(workflow.Nodes),
			Edges:          len(workflow.Edges),
			ExecutionCount: workflow.ExecutionCount,
			LastExecutedAt: workflow.LastExecutedAt,
		}

		if c.historyStore != nil {
			usage, err := c.historyStore.GetUsage(ctx.RequestCtx(), workflow.ID)
			if err != nil {
				log.Warn().Err(err).Str("workflow_id", workflow.ID).Msg("Failed to load workflow usage")
			} else {
				summary.ExecutionCount += usage.ExecutionCount
				if usage.LastExecutedAt != nil {
					summary.LastExecutedAt = usage.LastExecutedAt
				}
			}
		}

		summaries = append(summaries, summary)
	}

	return ctx.JSON(fiber.Map{"workflows": summaries})
}

// StartExecution runs a workflow synchronously and responds with its result.
func (c *WorkflowController) StartExecution(ctx fiber.Ctx) error {
	workflowID := ctx.Params("workflowID")

	request, err := validation.DecodeExecutionRequest(ctx.Body())
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if c.defaultTestMode {
		request.TestMode = true
	}

	workflow, err := c.repository.GetWorkflow(ctx.RequestCtx(), workflowID)
	if err != nil {
		return toHTTPError(err)
	}

	log.Info().Str("workflow_id", workflowID).Bool("test_mode", request.TestMode).Msg("Starting execution")

	result, err := c.executorService.Execute(ctx.RequestCtx(), executor.ExecuteParams{
		Workflow: workflow,
		Request:  request,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return ctx.JSON(result)
}

func (c *WorkflowController) ListExecutions(ctx fiber.Ctx) error {
	workflowID := ctx.Params("workflowID")

	limit := defaultExecutionListLimit
	if raw := ctx.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "limit must be a positive integer")
		}
		limit = parsed
	}

	if _, err := c.repository.GetWorkflow(ctx.RequestCtx(), workflowID); err != nil {
		return toHTTPError(err)
	}

	if c.historyStore == nil {
		return ctx.JSON(fiber.Map{"executions": []domain.ExecutionResult{}})
	}

	executions, err := c.historyStore.ListExecutions(ctx.RequestCtx(), workflowID, limit)
	if err != nil {
		log.Error().Err(err).Str("workflow_id", workflowID).Msg("Failed to list executions")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to list executions")
	}

	return ctx.JSON(fiber.Map{"executions": executions})
}

func toHTTPError(err error) error {
	var graphErr *domain.GraphError

	switch {
	case errors.Is(err, domain.ErrWorkflowNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrWorkflowNotActive):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.As(err, &graphErr):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	default:
		log.Error().Err(err).Msg("Failed to execute workflow")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to execute workflow")
	}
}
