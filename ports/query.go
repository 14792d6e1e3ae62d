package ports

import (
	"context"

	"gochart/domain/frame"
)

// QueryExecutor runs a chart's SQL against the target database
type QueryExecutor interface {
	Execute(ctx context.Context, query string) (*frame.Frame, error)
}
