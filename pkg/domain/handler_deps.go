package domain

import "net/http"

// ParameterBinder resolves {{path}} placeholders in node config against the
// data visible to the node.
type ParameterBinder interface {
	Bind(value any, scope map[string]any) any
	BindString(template string, scope map[string]any) string
}

// HandlerDeps is handed to every handler constructor. Collaborators that are
// not configured stay nil and the handlers report that when used outside of
// test mode.
type HandlerDeps struct {
	ParameterBinder ParameterBinder
	Sleeper         Sleeper
	HTTPClient      *http.Client

	EmailSender EmailSender
	Notifier    Notifier

	DatabaseClients       map[string]DatabaseClient
	DefaultDatabaseEngine string

	AIProviders       map[string]AIProvider
	DefaultAIProvider string

	Connectors map[string]IntegrationConnector

	WebhookSigningSecret string
}
