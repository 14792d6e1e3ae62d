package datareadiness

import (
	"context"
	"testing"
	"time"

	"gochart/domain/frame"
	"gochart/domain/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeInfersTribes(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	f := frame.New(
		[]string{"order_id", "Region", "Revenue", "Order Date", "Fiscal Year", "Month"},
		[][]any{
			{int64(1), "North", 100.5, day(1), int64(2023), "2024-01"},
			{int64(2), "South", 200.0, day(2), int64(2023), "2024-02"},
			{int64(3), "East", 150.25, day(3), int64(2024), "2024-03"},
			{int64(4), "West", 50.0, day(4), int64(2024), "2024-04"},
			{int64(5), "North", 75.0, day(5), int64(2024), "2024-05"},
		},
	)

	profiler := NewProfilerAdapter(DefaultProfilingConfig())
	summary, err := profiler.Summarize(context.Background(), "orders", f)
	require.NoError(t, err)

	assert.Equal(t, f.Columns, summary.ColumnNames)
	assert.Equal(t, schema.TribeID, summary.Tribes["order_id"])
	assert.Equal(t, schema.TribeCategorical, summary.Tribes["Region"])
	assert.Equal(t, schema.TribeNumerical, summary.Tribes["Revenue"])
	assert.Equal(t, schema.TribeDateRelated, summary.Tribes["Order Date"])
	assert.Equal(t, schema.TribeDateRelated, summary.Tribes["Fiscal Year"])
	assert.Equal(t, schema.TribeDateRelated, summary.Tribes["Month"])

	assert.Equal(t, 4, summary.UniqueCounts["Region"])
	assert.Equal(t, "DOUBLE PRECISION", summary.SQLTypes["Revenue"])
	assert.Equal(t, "DATE", summary.SQLTypes["Order Date"])
	assert.Contains(t, summary.DDL, `CREATE TABLE "orders"`)
	assert.Contains(t, summary.DDL, `"Revenue" DOUBLE PRECISION`)
}

func TestSummarizeLowCardinalityIntegersAreCategorical(t *testing.T) {
	rows := make([][]any, 0, 10)
	for i := 0; i < 10; i++ {
		rows = append(rows, []any{int64(i%2 + 1), float64(i)})
	}
	f := frame.New([]string{"Tier", "Score"}, rows)

	summary, err := NewProfilerAdapter(DefaultProfilingConfig()).Summarize(context.Background(), "scores", f)
	require.NoError(t, err)
	assert.Equal(t, schema.TribeCategorical, summary.Tribes["Tier"])
	assert.Equal(t, schema.TribeNumerical, summary.Tribes["Score"])
}

func TestSummarizeRejectsEmptyFrame(t *testing.T) {
	_, err := NewProfilerAdapter(DefaultProfilingConfig()).Summarize(context.Background(), "x", frame.New([]string{"a"}, nil))
	assert.Error(t, err)
}
