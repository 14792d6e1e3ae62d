package app

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"gochart/adapters/llm"
	"gochart/ai"
	"gochart/domain/schema"
	"gochart/models"
	"gochart/ports"
)

func salesSummary() *schema.DataSummary {
	return &schema.DataSummary{
		TableDescription: "Orders by region and channel",
		ColumnNames:      []string{"Region", "Channel", "Segment", "Revenue", "Cost", "Order Date", "order_id"},
		UniqueCounts: map[string]int{
			"Region": 4, "Channel": 6, "Segment": 3, "Revenue": 900, "Cost": 850, "Order Date": 365, "order_id": 1000,
		},
		Tribes: map[string]schema.Tribe{
			"Region":     schema.TribeCategorical,
			"Channel":    schema.TribeCategorical,
			"Segment":    schema.TribeCategorical,
			"Revenue":    schema.TribeNumerical,
			"Cost":       schema.TribeNumerical,
			"Order Date": schema.TribeDateRelated,
			"order_id":   schema.TribeID,
		},
	}
}

func answer(t *testing.T, fields map[string]any) string {
	t.Helper()
	raw, err := json.Marshal(fields)
	require.NoError(t, err)
	return string(raw)
}

func barAnswer(t *testing.T, series string) string {
	title := ""
	if series != "" {
		title = series
	}
	return answer(t, map[string]any{
		"xAxis_title": "Region", "xAxis_column": "Region",
		"yAxis_title": "Revenue", "yAxis_column": "Revenue", "yAxis_aggregation": "sum",
		"series_title": title, "series_column": series,
	})
}

func cardAnswer(t *testing.T) string {
	return answer(t, map[string]any{
		"xAxis_title": "", "xAxis_column": "",
		"yAxis_title": "Revenue", "yAxis_column": "Revenue", "yAxis_aggregation": "SUM",
	})
}

func newResolver(client *llm.MockLLMClient, feedback *fakeFeedback, audit *recordingAudit) *AxisResolver {
	var store ports.FeedbackStore
	if feedback != nil {
		store = feedback
	}
	return NewAxisResolver(client, store, audit,
		NewPromptBuilder(ai.NewPromptManager(""), "retail", 4000),
		AxisResolverConfig{Model: "test-model", MaxTokens: 512},
		nil)
}

type fakeFeedback struct {
	records []models.FeedbackRecord
	err     error
}

func (f *fakeFeedback) FetchFeedback(ctx context.Context, field, value string) ([]models.FeedbackRecord, error) {
	return f.records, f.err
}

type recordingAudit struct {
	mu     sync.Mutex
	charts []*models.ChartAuditRecord
	calls  []*models.LLMCallRecord
}

func (a *recordingAudit) RegisterChart(ctx context.Context, record *models.ChartAuditRecord) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.charts = append(a.charts, record)
	return "audit-1", nil
}

func (a *recordingAudit) RecordLLMCall(ctx context.Context, call *models.LLMCallRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, call)
	return nil
}
