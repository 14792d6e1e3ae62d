package feedback

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gochart/models"
)

func TestHTTPClientRoundTrips(t *testing.T) {
	var putCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/log/chart":
			var rec models.ChartAuditRecord
			require.NoError(t, json.NewDecoder(r.Body).Decode(&rec))
			assert.Equal(t, "bar_chart", rec.ChartType)
			_, _ = w.Write([]byte(`{"data":{"id":"c-42"}}`))
		case r.Method == http.MethodPut && r.URL.Path == "/log/chart-llm-calls":
			atomic.AddInt32(&putCalls, 1)
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodGet && r.URL.Path == "/log/feedback":
			assert.Equal(t, "chart_type", r.URL.Query().Get("field"))
			assert.Equal(t, "pie_chart", r.URL.Query().Get("value"))
			_, _ = w.Write([]byte(`{"items":[{"chart_type":"pie_chart","question":"q","liked":true,"axis_binding":{"xAxis_column":"Region"}}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL+"/log", time.Second)
	ctx := context.Background()

	id, err := c.RegisterChart(ctx, &models.ChartAuditRecord{ChartType: "bar_chart"})
	require.NoError(t, err)
	assert.Equal(t, "c-42", id)

	require.NoError(t, c.RecordLLMCall(ctx, &models.LLMCallRecord{Module: "axis_resolution"}))
	assert.Equal(t, int32(1), atomic.LoadInt32(&putCalls))

	records, err := c.FetchFeedback(ctx, models.FeedbackFieldChartType, "pie_chart")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Liked)
	assert.Equal(t, "Region", records[0].Binding["xAxis_column"])
}

func TestHTTPClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	_, err := c.FetchFeedback(context.Background(), "chart_type", "x")
	assert.Error(t, err)
	_, err = c.RegisterChart(context.Background(), &models.ChartAuditRecord{})
	assert.Error(t, err)
}

type countingStore struct{ calls int }

func (s *countingStore) FetchFeedback(context.Context, string, string) ([]models.FeedbackRecord, error) {
	s.calls++
	return []models.FeedbackRecord{{ChartType: "bar_chart"}}, nil
}

func TestCachedStore(t *testing.T) {
	inner := &countingStore{}
	store := NewCachedStore(inner, 8, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := store.FetchFeedback(ctx, "chart_type", "bar_chart")
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	assert.Equal(t, 1, inner.calls)

	_, _ = store.FetchFeedback(ctx, "chart_type", "pie_chart")
	assert.Equal(t, 2, inner.calls)

	store.Invalidate()
	_, _ = store.FetchFeedback(ctx, "chart_type", "bar_chart")
	assert.Equal(t, 3, inner.calls)
}
