package database

import (
	"context"
	"fmt"

	"github.com/agencyflow/agencyflow/pkg/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresClient runs database node operations on a pgx connection pool.
type PostgresClient struct {
	pool *pgxpool.Pool
}

func NewPostgresClient(ctx context.Context, uri string) (*PostgresClient, error) {
	pool, err := pgxpool.New(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return &PostgresClient{pool: pool}, nil
}

func (c *PostgresClient) Close() {
	c.pool.Close()
}

func (c *PostgresClient) Execute(ctx context.Context, q domain.DatabaseQuery) (domain.DatabaseResult, error) {
	sql, args, err := buildSQL(q)
	if err != nil {
		return domain.DatabaseResult{}, err
	}

	switch q.Operation {
	case domain.DatabaseOperationUpdate, domain.DatabaseOperationDelete:
		tag, err := c.pool.Exec(ctx, sql, args...)
		if err != nil {
			return domain.DatabaseResult{}, err
		}

		return domain.DatabaseResult{AffectedRows: tag.RowsAffected()}, nil
	}

	rows, err := c.pool.Query(ctx, sql, args...)
	if err != nil {
		return domain.DatabaseResult{}, err
	}
	defer rows.Close()

	result, err := collectRows(rows)
	if err != nil {
		return domain.DatabaseResult{}, err
	}

	result.AffectedRows = rows.CommandTag().RowsAffected()

	if q.Operation == domain.DatabaseOperationInsert && len(result.Rows) > 0 {
		result.InsertedID = result.Rows[0]["id"]
	}

	return result, nil
}

func collectRows(rows pgx.Rows) (domain.DatabaseResult, error) {
	var result domain.DatabaseResult

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return domain.DatabaseResult{}, err
		}

		row := make(map[string]any, len(values))
		for i, value := range values {
			row[rows.FieldDescriptions()[i].Name] = value
		}

		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return domain.DatabaseResult{}, err
	}

	return result, nil
}
