package ports

import (
	"context"
	"time"

	"gochart/models"
)

// LLMUsageRepository defines the interface for LLM usage data operations
type LLMUsageRepository interface {
	// Record usage for an LLM call
	RecordUsage(ctx context.Context, usage *models.LLMUsage) error

	// Get usage for a user within date range
	GetUserUsage(ctx context.Context, userID string, start, end time.Time) ([]*models.LLMUsage, error)

	// Get aggregated usage summary for a user
	GetUserUsageSummary(ctx context.Context, userID string, start, end time.Time) (*models.UserUsageSummary, error)
}
