package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/agencyflow/agencyflow/internal/initialization"
	"github.com/agencyflow/agencyflow/internal/repository"
	"github.com/agencyflow/agencyflow/pkg/domain"
	"github.com/agencyflow/agencyflow/pkg/domain/executor"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func NewRunCommand() *cobra.Command {
	var (
		triggerData string
		testMode    bool
	)

	cmd := &cobra.Command{
		Use:   "run <workflow-file>",
		Short: "Execute a workflow file once",
		Long:  `Load a workflow definition from a YAML or JSON file, execute it and print the execution result as JSON.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(cmd, args[0], triggerData, testMode)
		},
	}

	cmd.Flags().StringVar(&triggerData, "trigger-data", "", "Trigger payload as a JSON object")
	cmd.Flags().BoolVar(&testMode, "test", false, "Run in test mode, side effects are simulated")

	return cmd
}

func runWorkflow(cmd *cobra.Command, path string, triggerData string, testMode bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	workflow, err := repository.LoadWorkflowFile(path)
	if err != nil {
		return err
	}

	request := domain.ExecutionRequest{
		TriggerData: map[string]any{},
		TestMode:    testMode || cfg.DefaultTestMode,
	}

	if triggerData != "" {
		if err := json.Unmarshal([]byte(triggerData), &request.TriggerData); err != nil {
			return fmt.Errorf("invalid --trigger-data: %w", err)
		}
	}

	container, err := initialization.NewContainer(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := container.Close(context.Background()); err != nil {
			log.Warn().Err(err).Msg("Failed to close dependencies")
		}
	}()

	result, err := container.Service.Execute(ctx, executor.ExecuteParams{
		Workflow: workflow,
		Request:  request,
	})
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	switch result.Status {
	case domain.ExecutionStatusFailed, domain.ExecutionStatusTimeout:
		return fmt.Errorf("workflow %s finished with status %s", workflow.ID, result.Status)
	}

	return nil
}
