package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/agencyflow/agencyflow/pkg/domain"
	"github.com/agencyflow/agencyflow/pkg/domain/executor"

	"github.com/robfig/cron"
	"github.com/rs/zerolog/log"
)

// ScheduleKey is the trigger node data key holding a standard five field
// cron expression.
const ScheduleKey = "schedule"

type ScheduledWorkflow struct {
	WorkflowID string
	Spec       string
	Schedule   cron.Schedule
}

// Scheduler runs ACTIVE workflows whose trigger node carries a schedule.
type Scheduler struct {
	repository domain.WorkflowRepository
	service    executor.WorkflowExecutorService
	now        func() time.Time

	cron *cron.Cron
	mu   sync.Mutex
}

type SchedulerDependencies struct {
	Repository domain.WorkflowRepository
	Service    executor.WorkflowExecutorService
	Now        func() time.Time
}

func NewScheduler(deps SchedulerDependencies) *Scheduler {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &Scheduler{
		repository: deps.Repository,
		service:    deps.Service,
		now:        now,
	}
}

// Start registers a cron entry per scheduled workflow and starts the cron
// runner. Jobs stop being triggered once ctx is done.
func (s *Scheduler) Start(ctx context.Context) (int, error) {
	workflows, err := s.repository.ListWorkflows(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list workflows: %w", err)
	}

	scheduled := ScheduledWorkflows(workflows)

	runner := cron.New()
	for _, sw := range scheduled {
		workflowID := sw.WorkflowID
		spec := sw.Spec

		runner.Schedule(sw.Schedule, cron.FuncJob(func() {
			if ctx.Err() != nil {
				return
			}

			s.RunScheduled(ctx, workflowID, spec)
		}))

		log.Info().Str("workflow_id", workflowID).Str("schedule", spec).Msg("Scheduled workflow")
	}

	s.mu.Lock()
	s.cron = runner
	s.mu.Unlock()

	runner.Start()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return len(scheduled), nil
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return
	}

	s.cron.Stop()
	s.cron = nil
}

// RunScheduled loads the latest definition and executes it with the tick
// metadata as trigger data. Failures are logged, a cron tick has no caller.
func (s *Scheduler) RunScheduled(ctx context.Context, workflowID string, spec string) {
	workflow, err := s.repository.GetWorkflow(ctx, workflowID)
	if err != nil {
		log.Error().Err(err).Str("workflow_id", workflowID).Msg("Failed to load scheduled workflow")
		return
	}

	result, err := s.service.Execute(ctx, executor.ExecuteParams{
		Workflow: workflow,
		Request: domain.ExecutionRequest{
			TriggerData: map[string]any{
				"scheduledAt": s.now().UTC().Format(time.RFC3339),
				"schedule":    spec,
			},
		},
	})
	if err != nil {
		log.Error().Err(err).Str("workflow_id", workflowID).Msg("Scheduled execution failed")
		return
	}

	log.Info().
		Str("workflow_id", workflowID).
		Str("execution_id", result.ExecutionID).
		Str("status", string(result.Status)).
		Msg("Scheduled execution finished")
}

// ScheduledWorkflows picks the ACTIVE workflows with a valid schedule on one
// of their trigger nodes. Invalid expressions are logged and skipped.
func ScheduledWorkflows(workflows []domain.WorkflowDefinition) []ScheduledWorkflow {
	scheduled := []ScheduledWorkflow{}

	for _, workflow := range workflows {
		if !workflow.IsActive() {
			continue
		}

		for _, trigger := range workflow.TriggerNodes() {
			spec := strings.TrimSpace(domain.StringValue(trigger.Data, ScheduleKey, ""))
			if spec == "" {
				continue
			}

			schedule, err := cron.ParseStandard(spec)
			if err != nil {
				log.Warn().
					Err(err).
					Str("workflow_id", workflow.ID).
					Str("node_id", trigger.ID).
					Str("schedule", spec).
					Msg("Ignoring invalid schedule")
				continue
			}

			scheduled = append(scheduled, ScheduledWorkflow{
				WorkflowID: workflow.ID,
				Spec:       spec,
				Schedule:   schedule,
			})

			break
		}
	}

	return scheduled
}
