package query

import (
	"context"
	"database/sql"
	"fmt"
)

// Driver runs an already-checked query and returns at most the rows its
// implementation was configured for.
type Driver interface {
	Query(ctx context.Context, sql string) (columns []string, rows [][]any, err error)
}

// SQLDriver adapts a *sql.DB. It stops scanning after Limit rows.
type SQLDriver struct {
	DB    *sql.DB
	Limit int
}

// Query implements Driver.
func (d *SQLDriver) Query(ctx context.Context, query string) ([]string, [][]any, error) {
	return d.QueryArgs(ctx, query)
}

// QueryArgs is Query with bind parameters, for fixed catalog queries.
func (d *SQLDriver) QueryArgs(ctx context.Context, query string, args ...any) ([]string, [][]any, error) {
	rs, err := d.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rs.Close()

	columns, err := rs.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("reading columns: %w", err)
	}

	var rows [][]any
	for rs.Next() {
		if d.Limit > 0 && len(rows) >= d.Limit {
			break
		}
		vals := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rs.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("scanning row: %w", err)
		}
		rows = append(rows, vals)
	}
	if err := rs.Err(); err != nil {
		return nil, nil, err
	}
	return columns, rows, nil
}

// Run checks sql and, only when it is accepted, queries d and formats the
// result. A rejected query never reaches the driver.
func Run(ctx context.Context, d Driver, sql string, maxRows int) (string, error) {
	if err := Check(sql).Err(); err != nil {
		return "", err
	}
	columns, rows, err := d.Query(ctx, sql)
	if err != nil {
		return "", err
	}
	return Format(columns, rows, maxRows), nil
}

var _ Driver = (*SQLDriver)(nil)
