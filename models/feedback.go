package models

import (
	"fmt"
	"time"
)

// FeedbackRecord is a user's reaction to a produced chart. Binding holds the
// flat axis binding the chart was built from.
type FeedbackRecord struct {
	ID         string         `json:"id" db:"id"`
	ChartID    string         `json:"chart_id" db:"chart_id"`
	ChartType  string         `json:"chart_type" db:"chart_type"`
	Question   string         `json:"question" db:"question"`
	ChartTitle string         `json:"chart_title" db:"chart_title"`
	Binding    map[string]any `json:"axis_binding" db:"-"`
	Liked      bool           `json:"liked" db:"liked"`
	UserID     string         `json:"user_id,omitempty" db:"user_id"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

// Validate checks the fields needed to use a record as a prompt example
func (r *FeedbackRecord) Validate() error {
	if r.ChartType == "" {
		return fmt.Errorf("feedback chart_type is required")
	}
	if r.Question == "" {
		return fmt.Errorf("feedback question is required")
	}
	if len(r.Binding) == 0 {
		return fmt.Errorf("feedback axis_binding is required")
	}
	return nil
}

// Feedback lookup fields
const (
	FeedbackFieldChartType = "chart_type"
	FeedbackFieldChartID   = "chart_id"
)
