package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gochart/domain/chart"
	"gochart/domain/core"
	"gochart/domain/schema"
	"gochart/internal/errors"
	"gochart/models"
)

type fakePipeline struct {
	result  *models.PipelineResult
	err     error
	binding chart.AxisBinding
	block   chan struct{}
	started chan struct{}
	got     *models.PipelineRequest
}

func (f *fakePipeline) Run(ctx context.Context, req *models.PipelineRequest) (*models.PipelineResult, error) {
	f.got = req
	if f.block != nil {
		f.started <- struct{}{}
		<-f.block
	}
	return f.result, f.err
}

func (f *fakePipeline) ResolveOnly(ctx context.Context, summary schema.DataSummary, cr models.ChartRequest) (chart.AxisBinding, error) {
	return f.binding, f.err
}

func newTestRouter(p Pipeline, maxRuns int64) *gin.Engine {
	return NewRouter(gin.TestMode, NewChartHandler(p, maxRuns, time.Second, nil), nil)
}

func post(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func pipelineBody() map[string]any {
	return map[string]any{
		"user_id":      "u1",
		"data_summary": map[string]any{"column_name_list": []string{"Region", "Revenue"}},
		"main": map[string]any{
			"chart_type": "bar_chart",
			"question":   "Revenue by region",
			"result": map[string]any{
				"columns": []string{"Region", "Revenue"},
				"rows":    [][]any{{"North", 1}, {"South", 2}},
			},
		},
	}
}

func TestRunPipelineEndpoint(t *testing.T) {
	card := &chart.CardPayload{Header: chart.Header{ChartID: "c1", ChartType: chart.TypeCard, ChartPosition: 1}, Label: "Total Revenue", Value: "3"}
	p := &fakePipeline{result: &models.PipelineResult{RunID: "r1", Charts: []chart.Payload{card}}}
	router := newTestRouter(p, 2)

	rec := post(t, router, "/api/v1/charts", pipelineBody())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got struct {
		RunID  string           `json:"run_id"`
		Charts []map[string]any `json:"charts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "r1", got.RunID)
	require.Len(t, got.Charts, 1)
	assert.Equal(t, "card_chart", got.Charts[0]["Chart_Type"])
	assert.Equal(t, "3", got.Charts[0]["Value"])

	require.NotNil(t, p.got)
	assert.Equal(t, "u1", p.got.UserID)
	assert.Equal(t, chart.TypeBar, p.got.Main.ChartType)
	assert.Equal(t, 2, p.got.Main.Result.Len())
}

func TestRunPipelineErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid input", errors.InvalidInput("bad summary"), http.StatusBadRequest},
		{"axis resolution", core.NewAxisResolutionError("bar_chart", 3, fmt.Errorf("boom")), http.StatusBadGateway},
		{"internal", fmt.Errorf("unexpected"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&fakePipeline{err: tt.err}, 1)
			rec := post(t, router, "/api/v1/charts", pipelineBody())
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestRunPipelineRejectsMalformedBody(t *testing.T) {
	router := newTestRouter(&fakePipeline{}, 1)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/charts", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunPipelineBusy(t *testing.T) {
	p := &fakePipeline{result: &models.PipelineResult{RunID: "r1"}, block: make(chan struct{}), started: make(chan struct{})}
	router := newTestRouter(p, 1)

	done := make(chan int)
	go func() {
		done <- post(t, router, "/api/v1/charts", pipelineBody()).Code
	}()

	<-p.started
	rec := post(t, router, "/api/v1/charts", pipelineBody())
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	close(p.block)
	assert.Equal(t, http.StatusOK, <-done)
}

func TestResolveAxisEndpoint(t *testing.T) {
	b := chart.NewAxisBinding().
		Set(chart.RoleX, chart.AxisField{Title: "Region", Columns: []string{"Region"}}).
		Set(chart.RoleY, chart.AxisField{Title: "Revenue", Columns: []string{"Revenue"}, Aggregation: "SUM"})
	router := newTestRouter(&fakePipeline{binding: b}, 1)

	rec := post(t, router, "/api/v1/axis", map[string]any{
		"data_summary": map[string]any{"column_name_list": []string{"Region", "Revenue"}},
		"chart_type":   "bar_chart",
		"question":     "Revenue by region",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Binding map[string]any `json:"axis_binding"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Region", got.Binding["xAxis_column"])
	assert.Equal(t, "SUM", got.Binding["yAxis_aggregation"])
}

func TestResolveAxisErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"model kept answering badly", core.NewAxisResolutionError("bar_chart", 3, core.NewMalformedOutputError("parse", "not json")), http.StatusBadGateway, errors.CodeExternalService},
		{"completion deadline", core.NewAxisResolutionError("bar_chart", 1, fmt.Errorf("completion: %w", context.DeadlineExceeded)), http.StatusGatewayTimeout, errors.CodeTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&fakePipeline{err: tt.err}, 1)
			rec := post(t, router, "/api/v1/axis", map[string]any{
				"data_summary": map[string]any{"column_name_list": []string{"Region", "Revenue"}},
				"chart_type":   "bar_chart",
				"question":     "Revenue by region",
			})
			assert.Equal(t, tt.status, rec.Code)
			var got map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.code, got["code"])
		})
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&fakePipeline{}, 1)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSSEHubPublish(t *testing.T) {
	hub := NewSSEHub(nil)
	defer hub.Close()

	ch := make(chan models.RunEvent, 1)
	hub.register <- sseClient{sessionID: "s1", channel: ch}
	require.Eventually(t, func() bool { return hub.ClientCount("s1") == 1 }, time.Second, 5*time.Millisecond)

	hub.Publish(models.RunEvent{SessionID: "other", EventType: models.EventChartBuilt})
	hub.Publish(models.RunEvent{SessionID: "s1", EventType: models.EventRunCompleted})

	select {
	case ev := <-ch:
		assert.Equal(t, models.EventRunCompleted, ev.EventType)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestSSERequiresSession(t *testing.T) {
	hub := NewSSEHub(nil)
	defer hub.Close()
	router := NewRouter(gin.TestMode, NewChartHandler(&fakePipeline{}, 1, 0, nil), hub)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
