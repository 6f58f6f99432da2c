package query

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rebeliceyang/lazydash/internal/models"
)

// Querier runs SQL and returns pgx rows; *connection.Pool and *pgxpool.Pool satisfy it
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Execute executes a bound SQL query and returns its rows keyed by column name.
// A positive timeout bounds the whole execution.
func Execute(ctx context.Context, q Querier, sql string, timeout time.Duration) models.QueryResult {
	start := time.Now()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	rows, err := q.Query(ctx, sql)
	if err != nil {
		return models.QueryResult{
			Error:    err,
			Duration: time.Since(start),
		}
	}
	defer rows.Close()

	// Get column names
	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = fd.Name
	}

	// Get rows
	var result []models.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return models.QueryResult{
				Error:    err,
				Duration: time.Since(start),
			}
		}

		row := make(models.Row, len(columns))
		for i, v := range values {
			if i < len(columns) {
				row[columns[i]] = normalizeValue(v)
			}
		}
		result = append(result, row)
	}

	// Check for errors from iteration
	if err := rows.Err(); err != nil {
		return models.QueryResult{
			Error:    err,
			Duration: time.Since(start),
		}
	}

	affected := rows.CommandTag().RowsAffected()
	if affected == 0 {
		affected = int64(len(result))
	}

	return models.QueryResult{
		Columns:      columns,
		Rows:         result,
		RowsAffected: affected,
		Duration:     time.Since(start),
	}
}

// normalizeValue converts driver values into the kinds the predicate evaluator understands
func normalizeValue(val any) any {
	switch v := val.(type) {
	case nil:
		return nil
	case []byte:
		return string(v)
	case [16]byte:
		return uuid.UUID(v).String()
	case pgtype.Numeric:
		f, err := v.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case map[string]any, []any:
		// JSON values are shown as their encoded text
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	default:
		return val
	}
}
