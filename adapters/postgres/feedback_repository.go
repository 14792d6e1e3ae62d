package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gochart/internal/errors"
	"gochart/models"
)

// FeedbackRepository stores chart feedback locally. It implements
// ports.FeedbackStore and ports.FeedbackWriter.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository creates a new PostgreSQL feedback repository
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

type feedbackRow struct {
	models.FeedbackRecord
	BindingRaw []byte `db:"axis_binding"`
}

var feedbackFields = map[string]string{
	models.FeedbackFieldChartType: "chart_type",
	models.FeedbackFieldChartID:   "chart_id",
}

// SaveFeedback inserts a feedback record
func (r *FeedbackRepository) SaveFeedback(ctx context.Context, record *models.FeedbackRecord) error {
	if err := record.Validate(); err != nil {
		return errors.ValidationError(err.Error())
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	raw, err := json.Marshal(record.Binding)
	if err != nil {
		return fmt.Errorf("marshal binding: %w", err)
	}

	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO chart_feedback (
			id, chart_id, chart_type, question, chart_title, axis_binding, liked, user_id, created_at
		) VALUES (
			:id, :chart_id, :chart_type, :question, :chart_title, :axis_binding, :liked, :user_id, :created_at
		)
	`, feedbackRow{FeedbackRecord: *record, BindingRaw: raw})
	if err != nil {
		return errors.DatabaseError("failed to save feedback", err)
	}
	return nil
}

// FetchFeedback returns the most recent records where field equals value
func (r *FeedbackRepository) FetchFeedback(ctx context.Context, field, value string) ([]models.FeedbackRecord, error) {
	column, ok := feedbackFields[field]
	if !ok {
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported feedback field %q", field))
	}

	var rows []feedbackRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, chart_id, chart_type, question, chart_title, axis_binding, liked, user_id, created_at
		FROM chart_feedback
		WHERE `+column+` = $1
		ORDER BY created_at DESC
		LIMIT 50
	`, value)
	if err != nil {
		return nil, errors.DatabaseError("failed to fetch feedback", err)
	}

	records := make([]models.FeedbackRecord, 0, len(rows))
	for _, row := range rows {
		rec := row.FeedbackRecord
		if len(row.BindingRaw) > 0 {
			if err := json.Unmarshal(row.BindingRaw, &rec.Binding); err != nil {
				return nil, fmt.Errorf("decode binding for feedback %s: %w", rec.ID, err)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
