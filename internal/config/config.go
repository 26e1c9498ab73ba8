package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds the engine and host configuration.
type Config struct {
	HTTPAddress  string
	WorkflowsDir string

	RunTimeout      time.Duration
	NodeTimeout     time.Duration
	DefaultTestMode bool

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	ResendAPIKey string
	EmailFrom    string

	PostgresURI           string
	MongoURI              string
	MongoDatabase         string
	DefaultDatabaseEngine string

	OpenAIAPIKey      string
	AnthropicAPIKey   string
	GeminiAPIKey      string
	DefaultAIProvider string

	SlackToken    string
	DiscordToken  string
	TelegramToken string
	GitHubToken   string
	StripeKey     string

	WebhookSigningSecret string
	APIAuthSecret        string
	SchedulerEnabled     bool
}

var envMappings = map[string]string{
	"HTTPAddress":           "HTTP_ADDRESS",
	"WorkflowsDir":          "WORKFLOWS_DIR",
	"RunTimeout":            "RUN_TIMEOUT",
	"NodeTimeout":           "NODE_TIMEOUT",
	"DefaultTestMode":       "DEFAULT_TEST_MODE",
	"RedisAddress":          "REDIS_ADDRESS",
	"RedisPassword":         "REDIS_PASSWORD",
	"RedisDB":               "REDIS_DB",
	"ResendAPIKey":          "RESEND_API_KEY",
	"EmailFrom":             "EMAIL_FROM",
	"PostgresURI":           "POSTGRES_URI",
	"MongoURI":              "MONGO_URI",
	"MongoDatabase":         "MONGO_DATABASE",
	"DefaultDatabaseEngine": "DEFAULT_DATABASE_ENGINE",
	"OpenAIAPIKey":          "OPENAI_API_KEY",
	"AnthropicAPIKey":       "ANTHROPIC_API_KEY",
	"GeminiAPIKey":          "GEMINI_API_KEY",
	"DefaultAIProvider":     "DEFAULT_AI_PROVIDER",
	"SlackToken":            "SLACK_TOKEN",
	"DiscordToken":          "DISCORD_TOKEN",
	"TelegramToken":         "TELEGRAM_TOKEN",
	"GitHubToken":           "GITHUB_TOKEN",
	"StripeKey":             "STRIPE_KEY",
	"WebhookSigningSecret":  "WEBHOOK_SIGNING_SECRET",
	"APIAuthSecret":         "API_AUTH_SECRET",
	"SchedulerEnabled":      "SCHEDULER_ENABLED",
}

type LoadOptions struct {
	// ConfigFile overrides the config file search.
	ConfigFile string
}

// Load reads defaults, an optional agencyflow_config.yaml and the
// environment, in increasing order of precedence.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for configKey, envVar := range envMappings {
		if err := v.BindEnv(configKey, envVar); err != nil {
			log.Warn().Err(err).Msgf("Failed to bind environment variable %s for %s", envVar, configKey)
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("agencyflow_config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.agencyflow")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || opts.ConfigFile != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		log.Debug().Msg("Config file not found, using environment variables and defaults")
	} else {
		log.Info().Msgf("Using config file: %s", v.ConfigFileUsed())
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	log.Debug().
		Str("http_address", config.HTTPAddress).
		Str("workflows_dir", config.WorkflowsDir).
		Dur("run_timeout", config.RunTimeout).
		Dur("node_timeout", config.NodeTimeout).
		Msg("Config loaded")

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTPAddress", ":8081")
	v.SetDefault("WorkflowsDir", "./workflows")
	v.SetDefault("RunTimeout", 5*time.Minute)
	v.SetDefault("NodeTimeout", 30*time.Second)
	v.SetDefault("DefaultTestMode", false)
	v.SetDefault("RedisDB", 0)
	v.SetDefault("MongoDatabase", "agencyflow")
	v.SetDefault("DefaultDatabaseEngine", "postgres")
	v.SetDefault("DefaultAIProvider", "openai")
	v.SetDefault("SchedulerEnabled", true)
}

func validateConfig(config *Config) error {
	var invalid []string

	if config.RunTimeout <= 0 {
		invalid = append(invalid, "RUN_TIMEOUT must be positive")
	}

	if config.NodeTimeout <= 0 {
		invalid = append(invalid, "NODE_TIMEOUT must be positive")
	}

	if config.ResendAPIKey != "" && config.EmailFrom == "" {
		invalid = append(invalid, "EMAIL_FROM is required when RESEND_API_KEY is set")
	}

	switch config.DefaultDatabaseEngine {
	case "postgres", "mongodb":
	default:
		invalid = append(invalid, "DEFAULT_DATABASE_ENGINE must be postgres or mongodb")
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(invalid, ", "))
	}

	return nil
}
