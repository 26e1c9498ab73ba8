package database

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agencyflow/agencyflow/pkg/domain"

	"github.com/jackc/pgx/v5"
)

var ErrUnboundedMutation = errors.New("update and delete require a where clause")

// buildSQL renders a DatabaseQuery as a parameterised PostgreSQL statement.
// Column names are quoted identifiers, values are always bound arguments.
func buildSQL(q domain.DatabaseQuery) (string, []any, error) {
	table := quoteTable(q.Table)

	switch q.Operation {
	case domain.DatabaseOperationQuery:
		return q.Query, q.Args, nil

	case domain.DatabaseOperationSelect:
		where, args := whereClause(q.Where, 1)
		sql := "SELECT * FROM " + table + where
		if q.Limit > 0 {
			sql += fmt.Sprintf(" LIMIT %d", q.Limit)
		}
		return sql, args, nil

	case domain.DatabaseOperationInsert:
		if len(q.Data) == 0 {
			return "", nil, domain.NewMissingFieldError("data")
		}

		columns := sortedKeys(q.Data)
		quoted := make([]string, len(columns))
		placeholders := make([]string, len(columns))
		args := make([]any, len(columns))

		for i, column := range columns {
			quoted[i] = pgx.Identifier{column}.Sanitize()
			placeholders[i] = fmt.Sprintf("$%d", i+1)
			args[i] = q.Data[column]
		}

		sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
			table, strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
		return sql, args, nil

	case domain.DatabaseOperationUpdate:
		if len(q.Data) == 0 {
			return "", nil, domain.NewMissingFieldError("data")
		}
		if len(q.Where) == 0 {
			return "", nil, ErrUnboundedMutation
		}

		columns := sortedKeys(q.Data)
		sets := make([]string, len(columns))
		args := make([]any, 0, len(columns)+len(q.Where))

		for i, column := range columns {
			sets[i] = fmt.Sprintf("%s = $%d", pgx.Identifier{column}.Sanitize(), i+1)
			args = append(args, q.Data[column])
		}

		where, whereArgs := whereClause(q.Where, len(columns)+1)
		return "UPDATE " + table + " SET " + strings.Join(sets, ", ") + where, append(args, whereArgs...), nil

	case domain.DatabaseOperationDelete:
		if len(q.Where) == 0 {
			return "", nil, ErrUnboundedMutation
		}

		where, args := whereClause(q.Where, 1)
		return "DELETE FROM " + table + where, args, nil
	}

	return "", nil, fmt.Errorf("unsupported operation %q", q.Operation)
}

func whereClause(where map[string]any, firstArg int) (string, []any) {
	if len(where) == 0 {
		return "", nil
	}

	columns := sortedKeys(where)
	conditions := make([]string, len(columns))
	args := make([]any, 0, len(columns))

	n := firstArg
	for i, column := range columns {
		value := where[column]
		if value == nil {
			conditions[i] = pgx.Identifier{column}.Sanitize() + " IS NULL"
			continue
		}

		conditions[i] = fmt.Sprintf("%s = $%d", pgx.Identifier{column}.Sanitize(), n)
		args = append(args, value)
		n++
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

// quoteTable accepts schema qualified names.
func quoteTable(table string) string {
	return pgx.Identifier(strings.Split(table, ".")).Sanitize()
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys
}
