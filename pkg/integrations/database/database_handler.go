package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/agencyflow/agencyflow/pkg/domain"
	"github.com/agencyflow/agencyflow/pkg/expressions"
)

const (
	EnginePostgres = "postgres"
	EngineMongo    = "mongodb"
)

var supportedOperations = map[domain.DatabaseOperation]struct{}{
	domain.DatabaseOperationSelect: {},
	domain.DatabaseOperationInsert: {},
	domain.DatabaseOperationUpdate: {},
	domain.DatabaseOperationDelete: {},
	domain.DatabaseOperationQuery:  {},
}

type DatabaseHandler struct {
	binder        domain.ParameterBinder
	clients       map[string]domain.DatabaseClient
	defaultEngine string
}

func NewDatabaseHandler(deps domain.HandlerDeps) domain.NodeHandler {
	return &DatabaseHandler{
		binder:        deps.ParameterBinder,
		clients:       deps.DatabaseClients,
		defaultEngine: deps.DefaultDatabaseEngine,
	}
}

type DatabaseParams struct {
	Engine    string         `json:"engine"`
	Operation string         `json:"operation"`
	Table     string         `json:"table"`
	Data      map[string]any `json:"data"`
	Where     map[string]any `json:"where"`
	Query     string         `json:"query"`
	Args      []any          `json:"args"`
	Limit     int            `json:"limit"`
}

func (h *DatabaseHandler) Validate(config map[string]any) error {
	if err := domain.RequireFields(config, "operation", "table"); err != nil {
		return err
	}

	operation := domain.DatabaseOperation(strings.ToLower(domain.StringValue(config, "operation", "")))
	if _, ok := supportedOperations[operation]; !ok {
		return domain.NewInvalidFieldError("operation", "must be one of select, insert, update, delete, query")
	}

	if operation == domain.DatabaseOperationQuery && !domain.HasValue(config, "query") {
		return domain.NewMissingFieldError("query")
	}

	return nil
}

func (h *DatabaseHandler) Execute(ctx context.Context, input domain.NodeInput) (domain.Payload, error) {
	config := expressions.BindConfig(h.binder, input.Config, input.Context.Scope(input.Input))

	var p DatabaseParams
	if err := domain.BindConfig(config, &p); err != nil {
		return nil, err
	}

	query := domain.DatabaseQuery{
		Operation: domain.DatabaseOperation(strings.ToLower(p.Operation)),
		Table:     p.Table,
		Data:      p.Data,
		Where:     p.Where,
		Query:     p.Query,
		Args:      p.Args,
		Limit:     p.Limit,
	}

	if input.Context.TestMode {
		return domain.Simulated(map[string]any{
			"operation":    string(query.Operation),
			"table":        query.Table,
			"rows":         []any{},
			"rowCount":     float64(0),
			"affectedRows": float64(0),
		}), nil
	}

	engine := p.Engine
	if engine == "" {
		engine = h.defaultEngine
	}

	client, ok := h.clients[engine]
	if !ok || client == nil {
		return nil, fmt.Errorf("database engine %q is not configured", engine)
	}

	result, err := client.Execute(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("database %s on %s failed: %w", query.Operation, query.Table, err)
	}

	rows := make([]any, len(result.Rows))
	for i, row := range result.Rows {
		rows[i] = row
	}

	payload := domain.Payload{
		"operation":    string(query.Operation),
		"table":        query.Table,
		"engine":       engine,
		"rows":         rows,
		"rowCount":     float64(len(rows)),
		"affectedRows": float64(result.AffectedRows),
	}

	if result.InsertedID != nil {
		payload["insertedId"] = result.InsertedID
	}

	return payload, nil
}
