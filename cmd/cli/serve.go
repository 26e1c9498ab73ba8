package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/agencyflow/agencyflow/internal/auth"
	"github.com/agencyflow/agencyflow/internal/controllers"
	"github.com/agencyflow/agencyflow/internal/initialization"
	"github.com/agencyflow/agencyflow/internal/scheduler"
	"github.com/agencyflow/agencyflow/internal/server"
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the workflow HTTP API and run scheduled workflows",
		Long:  `Load every workflow in the workflows directory, expose them over HTTP and trigger the ones that carry a cron schedule.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}

	return cmd
}

func runServe(cmd *cobra.Command) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
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

	if err := container.Repository.Reload(ctx); err != nil {
		return err
	}

	if cfg.SchedulerEnabled {
		cronScheduler := scheduler.NewScheduler(scheduler.SchedulerDependencies{
			Repository: container.Repository,
			Service:    container.Service,
		})

		scheduled, err := cronScheduler.Start(ctx)
		if err != nil {
			return err
		}
		defer cronScheduler.Stop()

		log.Info().Int("scheduled_workflows", scheduled).Msg("Scheduler started")
	}

	var verifier *auth.APITokenVerifier
	if cfg.APIAuthSecret != "" {
		verifier, err = auth.NewAPITokenVerifier(cfg.APIAuthSecret)
		if err != nil {
			return err
		}
	}

	controller := controllers.NewWorkflowController(controllers.WorkflowControllerDependencies{
		Repository:              container.Repository,
		WorkflowExecutorService: container.Service,
		HistoryStore:            container.HistoryStore,
		DefaultTestMode:         cfg.DefaultTestMode,
	})

	app := server.NewHTTPServer(server.HTTPServerDependencies{
		WorkflowController: controller,
		TokenVerifier:      verifier,
	})

	log.Info().Str("address", cfg.HTTPAddress).Msg("Starting HTTP server")

	if err := app.Listen(cfg.HTTPAddress, fiber.ListenConfig{
		GracefulContext:       ctx,
		DisableStartupMessage: true,
	}); err != nil {
		log.Error().Err(err).Msg("HTTP server failed")
		return err
	}

	log.Info().Msg("AgencyFlow service stopped")
	return nil
}
