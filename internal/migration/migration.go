package migration

import (
	"context"

	"gochart/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Statements returns every statement Run executes, in order
func (r *MigrationRunner) Statements() []string {
	return []string{
		createChartFeedbackTable,
		createLLMUsageTable,
		addLLMUsageRunID,
		createIndexes,
	}
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, createChartFeedbackTable); err != nil {
		return errors.Wrap(err, "failed to create chart_feedback table")
	}

	if _, err := db.ExecContext(ctx, createLLMUsageTable); err != nil {
		return errors.Wrap(err, "failed to create llm_usage table")
	}

	if _, err := db.ExecContext(ctx, addLLMUsageRunID); err != nil {
		return errors.Wrap(err, "failed to add run_id to llm_usage")
	}

	if _, err := db.ExecContext(ctx, createIndexes); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

const createChartFeedbackTable = `
	CREATE TABLE IF NOT EXISTS chart_feedback (
		id VARCHAR(64) PRIMARY KEY,
		chart_id VARCHAR(64) NOT NULL DEFAULT '',
		chart_type VARCHAR(50) NOT NULL,
		question TEXT NOT NULL,
		chart_title TEXT NOT NULL DEFAULT '',
		axis_binding JSONB NOT NULL,
		liked BOOLEAN NOT NULL,
		user_id VARCHAR(255) NOT NULL DEFAULT '',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)
`

const createLLMUsageTable = `
	CREATE TABLE IF NOT EXISTS llm_usage (
		id UUID PRIMARY KEY,
		user_id VARCHAR(255) NOT NULL DEFAULT '',
		session_id VARCHAR(255) NOT NULL DEFAULT '',
		provider VARCHAR(50) NOT NULL,
		model VARCHAR(100) NOT NULL,
		operation_type VARCHAR(50) NOT NULL,
		prompt_tokens INTEGER NOT NULL DEFAULT 0,
		completion_tokens INTEGER NOT NULL DEFAULT 0,
		total_tokens INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)
`

const addLLMUsageRunID = `
	DO $$
	BEGIN
		IF NOT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_name = 'llm_usage' AND column_name = 'run_id'
		) THEN
			ALTER TABLE llm_usage ADD COLUMN run_id VARCHAR(64) NOT NULL DEFAULT '';
		END IF;
	END $$;
`

const createIndexes = `
	CREATE INDEX IF NOT EXISTS idx_chart_feedback_chart_type ON chart_feedback(chart_type, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_chart_feedback_chart_id ON chart_feedback(chart_id);
	CREATE INDEX IF NOT EXISTS idx_llm_usage_user_created ON llm_usage(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_llm_usage_run ON llm_usage(run_id);
`
