package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gochart/models"
	"gochart/ports"
)

// LLMUsageRepositoryImpl implements LLMUsageRepository for PostgreSQL
type LLMUsageRepositoryImpl struct {
	db *sqlx.DB
}

// NewLLMUsageRepository creates a new PostgreSQL LLM usage repository
func NewLLMUsageRepository(db *sqlx.DB) ports.LLMUsageRepository {
	return &LLMUsageRepositoryImpl{db: db}
}

// RecordUsage records LLM usage for an API call
func (r *LLMUsageRepositoryImpl) RecordUsage(ctx context.Context, usage *models.LLMUsage) error {
	if usage.ID == uuid.Nil {
		usage.ID = uuid.New()
	}
	if usage.CreatedAt.IsZero() {
		usage.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO llm_usage (
			id, user_id, session_id, run_id, provider, model, operation_type,
			prompt_tokens, completion_tokens, total_tokens, created_at
		) VALUES (
			:id, :user_id, :session_id, :run_id, :provider, :model, :operation_type,
			:prompt_tokens, :completion_tokens, :total_tokens, :created_at
		)
	`, usage)
	return err
}

// GetUserUsage retrieves usage records for a user within a date range
func (r *LLMUsageRepositoryImpl) GetUserUsage(ctx context.Context, userID string, start, end time.Time) ([]*models.LLMUsage, error) {
	var usages []*models.LLMUsage
	err := r.db.SelectContext(ctx, &usages, `
		SELECT id, user_id, session_id, run_id, provider, model, operation_type,
		       prompt_tokens, completion_tokens, total_tokens, created_at
		FROM llm_usage
		WHERE user_id = $1 AND created_at >= $2 AND created_at <= $3
		ORDER BY created_at DESC
	`, userID, start, end)
	return usages, err
}

// GetUserUsageSummary returns aggregated usage statistics for a user
func (r *LLMUsageRepositoryImpl) GetUserUsageSummary(ctx context.Context, userID string, start, end time.Time) (*models.UserUsageSummary, error) {
	summary := &models.UserUsageSummary{
		UserID:      userID,
		PeriodStart: start,
		PeriodEnd:   end,
		ByOperation: make(map[string]models.OpUsage),
	}

	err := r.db.GetContext(ctx, summary, `
		SELECT
			COUNT(*) as request_count,
			COALESCE(SUM(total_tokens), 0) as total_tokens,
			COALESCE(SUM(prompt_tokens), 0) as total_prompt_tokens,
			COALESCE(SUM(completion_tokens), 0) as total_completion_tokens
		FROM llm_usage
		WHERE user_id = $1 AND created_at >= $2 AND created_at <= $3
	`, userID, start, end)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	var ops []models.OpUsage
	err = r.db.SelectContext(ctx, &ops, `
		SELECT operation_type, SUM(total_tokens) as total_tokens, COUNT(*) as request_count
		FROM llm_usage
		WHERE user_id = $1 AND created_at >= $2 AND created_at <= $3
		GROUP BY operation_type
	`, userID, start, end)
	if err != nil {
		return nil, err
	}
	for _, op := range ops {
		summary.ByOperation[op.OperationType] = op
	}

	return summary, nil
}
