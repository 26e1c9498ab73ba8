package initialization

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/agencyflow/agencyflow/internal/config"
	"github.com/agencyflow/agencyflow/internal/history"
	"github.com/agencyflow/agencyflow/internal/repository"
	"github.com/agencyflow/agencyflow/pkg/ai-sdk/provider"
	anthropicprovider "github.com/agencyflow/agencyflow/pkg/ai-sdk/provider/anthropic"
	geminiprovider "github.com/agencyflow/agencyflow/pkg/ai-sdk/provider/gemini"
	openaiprovider "github.com/agencyflow/agencyflow/pkg/ai-sdk/provider/openai"
	"github.com/agencyflow/agencyflow/pkg/domain"
	"github.com/agencyflow/agencyflow/pkg/domain/executor"
	"github.com/agencyflow/agencyflow/pkg/expressions"
	"github.com/agencyflow/agencyflow/pkg/integrations/database"
	"github.com/agencyflow/agencyflow/pkg/integrations/discord"
	"github.com/agencyflow/agencyflow/pkg/integrations/email"
	githubintegration "github.com/agencyflow/agencyflow/pkg/integrations/github"
	"github.com/agencyflow/agencyflow/pkg/integrations/notification"
	slackintegration "github.com/agencyflow/agencyflow/pkg/integrations/slack"
	stripeintegration "github.com/agencyflow/agencyflow/pkg/integrations/stripe"
	"github.com/agencyflow/agencyflow/pkg/integrations/telegram"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Container holds the long lived collaborators built from the configuration.
type Container struct {
	Config       *config.Config
	Registry     domain.HandlerRegistry
	Repository   *repository.FileWorkflowRepository
	HistoryStore domain.ExecutionHistoryStore
	Service      executor.WorkflowExecutorService

	closers []func(ctx context.Context) error
}

func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	log.Info().Msg("Building engine dependencies")

	c := &Container{
		Config:     cfg,
		Registry:   domain.NewHandlerRegistry(),
		Repository: repository.NewFileWorkflowRepository(cfg.WorkflowsDir),
	}

	var redisClient redis.UniversalClient
	if cfg.RedisAddress != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		redisClient = client

		c.closers = append(c.closers, func(ctx context.Context) error { return client.Close() })
	}

	deps, err := c.buildHandlerDeps(ctx, cfg, redisClient)
	if err != nil {
		_ = c.Close(ctx)
		return nil, err
	}

	RegisterHandlers(c.Registry, deps)

	if redisClient != nil {
		c.HistoryStore = history.NewRedisStore(redisClient, history.RedisStoreOptions{})
	} else {
		c.HistoryStore = history.NewMemoryStore(history.DefaultMaxExecutions)
	}

	c.Service = executor.NewWorkflowExecutorService(executor.WorkflowExecutorServiceDependencies{
		Registry:     c.Registry,
		HistoryStore: c.HistoryStore,
		Options: executor.Options{
			RunTimeout:  cfg.RunTimeout,
			NodeTimeout: cfg.NodeTimeout,
		},
	})

	log.Info().
		Int("node_types", len(c.Registry.RegisteredTypes())).
		Bool("redis", redisClient != nil).
		Msg("Engine dependencies ready")

	return c, nil
}

func (c *Container) buildHandlerDeps(ctx context.Context, cfg *config.Config, redisClient redis.UniversalClient) (domain.HandlerDeps, error) {
	deps := domain.HandlerDeps{
		ParameterBinder:       expressions.NewTemplateBinder(),
		Sleeper:               domain.TimerSleeper{},
		HTTPClient:            &http.Client{},
		DatabaseClients:       map[string]domain.DatabaseClient{},
		DefaultDatabaseEngine: cfg.DefaultDatabaseEngine,
		AIProviders:           map[string]domain.AIProvider{},
		DefaultAIProvider:     cfg.DefaultAIProvider,
		Connectors:            map[string]domain.IntegrationConnector{},
		WebhookSigningSecret:  cfg.WebhookSigningSecret,
	}

	if cfg.ResendAPIKey != "" {
		deps.EmailSender = email.NewResendSender(email.ResendSenderOptions{
			APIKey: cfg.ResendAPIKey,
			From:   cfg.EmailFrom,
		})
	}

	if redisClient != nil {
		deps.Notifier = notification.NewRedisNotifier(redisClient, notification.RedisNotifierOptions{})
	}

	if cfg.PostgresURI != "" {
		client, err := database.NewPostgresClient(ctx, cfg.PostgresURI)
		if err != nil {
			return deps, fmt.Errorf("failed to create postgres client: %w", err)
		}

		deps.DatabaseClients[database.EnginePostgres] = client
		c.closers = append(c.closers, func(ctx context.Context) error {
			client.Close()
			return nil
		})
	}

	if cfg.MongoURI != "" {
		client, err := database.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return deps, fmt.Errorf("failed to create mongo client: %w", err)
		}

		deps.DatabaseClients[database.EngineMongo] = client
		c.closers = append(c.closers, client.Close)
	}

	if cfg.OpenAIAPIKey != "" {
		deps.AIProviders[provider.ProviderOpenAI] = openaiprovider.New(openaiprovider.Config{APIKey: cfg.OpenAIAPIKey})
	}

	if cfg.AnthropicAPIKey != "" {
		deps.AIProviders[provider.ProviderAnthropic] = anthropicprovider.New(anthropicprovider.Config{APIKey: cfg.AnthropicAPIKey})
	}

	if cfg.GeminiAPIKey != "" {
		gemini, err := geminiprovider.New(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return deps, fmt.Errorf("failed to create gemini provider: %w", err)
		}

		deps.AIProviders[provider.ProviderGemini] = gemini
	}

	if cfg.SlackToken != "" {
		deps.Connectors["slack"] = slackintegration.NewConnector(slackintegration.Config{Token: cfg.SlackToken})
	}

	if cfg.DiscordToken != "" {
		connector, err := discord.NewConnector(cfg.DiscordToken)
		if err != nil {
			return deps, fmt.Errorf("failed to create discord connector: %w", err)
		}

		deps.Connectors["discord"] = connector
	}

	if cfg.TelegramToken != "" {
		deps.Connectors["telegram"] = telegram.NewConnector(cfg.TelegramToken)
	}

	if cfg.GitHubToken != "" {
		deps.Connectors["github"] = githubintegration.NewConnector(ctx, cfg.GitHubToken)
	}

	if cfg.StripeKey != "" {
		deps.Connectors["stripe"] = stripeintegration.NewConnector(cfg.StripeKey)
	}

	return deps, nil
}

func (c *Container) Close(ctx context.Context) error {
	var errs []error

	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}

	c.closers = nil

	return errors.Join(errs...)
}
