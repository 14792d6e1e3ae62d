package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"gochart/domain/frame"
	"gochart/internal/errors"
)

// QueryExecutor runs chart SQL against the target database and returns the
// result as a frame.
type QueryExecutor struct {
	db      *sqlx.DB
	maxRows int
}

// NewQueryExecutor creates an executor; maxRows <= 0 means unlimited
func NewQueryExecutor(db *sqlx.DB, maxRows int) *QueryExecutor {
	return &QueryExecutor{db: db, maxRows: maxRows}
}

// Execute runs query and collects every row
func (e *QueryExecutor) Execute(ctx context.Context, query string) (*frame.Frame, error) {
	rows, err := e.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, classifyQueryError(err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("read column types: %w", err)
	}

	out := frame.New(columns, nil)
	for rows.Next() {
		if e.maxRows > 0 && out.Len() >= e.maxRows {
			break
		}
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("scan row %d: %w", out.Len(), err)
		}
		for i, v := range values {
			values[i] = normalizeCell(v, types[i].DatabaseTypeName())
		}
		out.Rows = append(out.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyQueryError(err)
	}
	return out, nil
}

// normalizeCell turns driver byte slices into strings, or floats for
// numeric columns.
func normalizeCell(v any, dbType string) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	s := string(b)
	switch strings.ToUpper(dbType) {
	case "NUMERIC", "DECIMAL", "MONEY":
		if f, err := strconv.ParseFloat(strings.TrimLeft(s, "$"), 64); err == nil {
			return f
		}
	}
	return s
}

func classifyQueryError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// Class 42 is syntax errors and access rule violations
		if pqErr.Code.Class() == "42" {
			return errors.InvalidInput(fmt.Sprintf("chart query rejected: %s", pqErr.Message))
		}
		return errors.DatabaseError(fmt.Sprintf("chart query failed (%s)", pqErr.Code.Name()), err)
	}
	return errors.DatabaseError("chart query failed", err)
}
