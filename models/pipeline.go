package models

import (
	"fmt"

	"gochart/domain/chart"
	"gochart/domain/frame"
	"gochart/domain/schema"
)

// ChartRequest is one question to chart. Result may be nil when SQL is
// given and a query executor is configured.
type ChartRequest struct {
	ChartID   string          `json:"chart_id,omitempty"`
	ChartType chart.ChartType `json:"chart_type"`
	Question  string          `json:"question"`
	Title     string          `json:"chart_title"`
	SQL       string          `json:"sql,omitempty"`
	Result    *frame.Frame    `json:"result,omitempty"`
}

// PipelineRequest is a main question plus follow-up sub-questions
type PipelineRequest struct {
	UserID      string             `json:"user_id,omitempty"`
	SessionID   string             `json:"session_id,omitempty"`
	Summary     schema.DataSummary `json:"data_summary"`
	Main        ChartRequest       `json:"main"`
	SubRequests []ChartRequest     `json:"sub_requests,omitempty"`
}

// Requests returns the main request followed by the sub-requests
func (r *PipelineRequest) Requests() []ChartRequest {
	out := make([]ChartRequest, 0, len(r.SubRequests)+1)
	out = append(out, r.Main)
	return append(out, r.SubRequests...)
}

// Validate checks the request shape; per-chart problems are reported later
func (r *PipelineRequest) Validate() error {
	if err := r.Summary.Validate(); err != nil {
		return err
	}
	for i, req := range r.Requests() {
		if !req.ChartType.Valid() {
			return fmt.Errorf("request %d: unknown chart type %q", i, req.ChartType)
		}
		if req.Question == "" {
			return fmt.Errorf("request %d: question is required", i)
		}
	}
	return nil
}

// Failure stages reported on a ChartFailure
const (
	StageQuery          = "query"
	StageNoData         = "no_data"
	StageModelOutput    = "model_output"
	StageAxisResolution = "axis_resolution"
	StageChartBuild     = "chart_build"
	StageOther          = "other"
)

// ChartFailure records why a question produced no chart
type ChartFailure struct {
	ChartType chart.ChartType `json:"chart_type"`
	Question  string          `json:"question"`
	Stage     string          `json:"stage"`
	Reason    string          `json:"reason"`
}

// PipelineResult is the ordered chart list plus token usage
type PipelineResult struct {
	RunID        string          `json:"run_id"`
	Charts       []chart.Payload `json:"charts"`
	Failures     []ChartFailure  `json:"failures,omitempty"`
	InputTokens  int             `json:"input_tokens"`
	OutputTokens int             `json:"output_tokens"`
}
