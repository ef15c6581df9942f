package dbclient

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"orderexport/internal/value"
)

// sqlConnector is the shared implementation for MySQL, Postgres, and SQLite.
type sqlConnector struct {
	driverName string
	db         *sql.DB
}

func newSQLConnector(driverName, dsn string) (*sqlConnector, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)

	return &sqlConnector{driverName: driverName, db: db}, nil
}

func (c *sqlConnector) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return c.db.PingContext(ctx)
}

// isReadQuery reports whether query starts with a read-only keyword.
func isReadQuery(query string) bool {
	q := strings.ToUpper(strings.TrimSpace(query))
	for _, prefix := range []string{"SELECT", "WITH", "SHOW", "DESCRIBE", "EXPLAIN", "PRAGMA", "VALUES"} {
		if strings.HasPrefix(q, prefix) {
			return true
		}
	}
	return false
}

// Each runs q.Statement and hands every row over as a mapping keyed by
// column name, in select-list order.
func (c *sqlConnector) Each(ctx context.Context, q Query, fn func(*value.Mapping) bool) error {
	if strings.TrimSpace(q.Statement) == "" {
		return fmt.Errorf("query is required")
	}
	if !isReadQuery(q.Statement) {
		return fmt.Errorf("only read queries are allowed")
	}

	rows, err := c.db.QueryContext(ctx, q.Statement)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("columns: %w", err)
	}

	fetched := 0
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for j := range values {
			ptrs[j] = &values[j]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}

		row := value.NewMapping()
		for j, col := range cols {
			row.Set(col, value.FromAny(formatValue(values[j])))
		}
		fetched++
		if !fn(row) || (q.Limit > 0 && fetched >= q.Limit) {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate: %w", err)
	}
	slog.Debug("dbclient: rows fetched", "driver", c.driverName, "rows", fetched)
	return nil
}

// formatValue normalizes driver values before conversion.
func formatValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(val)
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	default:
		return val
	}
}

func (c *sqlConnector) Close() error {
	return c.db.Close()
}
