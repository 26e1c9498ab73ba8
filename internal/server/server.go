package server

import (
	"time"

	"github.com/agencyflow/agencyflow/internal/auth"
	"github.com/agencyflow/agencyflow/internal/controllers"
	"github.com/agencyflow/agencyflow/internal/middlewares"
	"github.com/agencyflow/agencyflow/internal/version"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/rs/zerolog/log"
)

type HTTPServerDependencies struct {
	WorkflowController *controllers.WorkflowController
	// TokenVerifier protects the workflow routes when set.
	TokenVerifier *auth.APITokenVerifier
	// DisableRequestLog turns off the access log middleware.
	DisableRequestLog bool
}

func NewHTTPServer(deps HTTPServerDependencies) *fiber.App {
	router := fiber.New(fiber.Config{
		AppName: "agencyflow",
	})

	router.Use(cors.New())

	if !deps.DisableRequestLog {
		router.Use(logger.New())
	}

	router.Get("/health", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":    "healthy",
			"service":   "agencyflow",
			"version":   version.GetVersion(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	workflows := router.Group("/workflows")

	if deps.TokenVerifier != nil {
		workflows.Use(middlewares.APITokenMiddleware(deps.TokenVerifier))
	} else {
		log.Warn().Msg("API authentication is disabled, set API_AUTH_SECRET to enable it")
	}

	workflows.Get("/", deps.WorkflowController.ListWorkflows)
	workflows.Post("/:workflowID/executions", deps.WorkflowController.StartExecution)
	workflows.Get("/:workflowID/executions", deps.WorkflowController.ListExecutions)

	return router
}
