package ports

import (
	"context"

	"gochart/models"
)

// FeedbackStore looks up prior liked/disliked charts by (field, value)
type FeedbackStore interface {
	FetchFeedback(ctx context.Context, field, value string) ([]models.FeedbackRecord, error)
}

// FeedbackWriter stores user reactions to charts
type FeedbackWriter interface {
	SaveFeedback(ctx context.Context, record *models.FeedbackRecord) error
}

// AuditLogger receives chart and LLM call records. Callers treat failures
// as non-fatal.
type AuditLogger interface {
	RegisterChart(ctx context.Context, record *models.ChartAuditRecord) (string, error)
	RecordLLMCall(ctx context.Context, call *models.LLMCallRecord) error
}
