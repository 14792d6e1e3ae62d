package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gochart/domain/chart"
	"gochart/domain/core"
)

func lineFields() map[string]any {
	return map[string]any{
		"xAxis_title": "Order Date", "xAxis_column": "Order Date",
		"yAxis_title": "Revenue", "yAxis_column": "Revenue", "yAxis_aggregation": "SUM",
		"yAxis2_title": "Cost", "yAxis2_column": "Cost", "yAxis2_aggregation": "SUM",
		"yAxis3_title": "", "yAxis3_column": "", "yAxis3_aggregation": "",
		"series_title": "", "series_column": "",
	}
}

func with(base map[string]any, kv ...any) map[string]any {
	out := make(map[string]any, len(base))
	for k, v := range base {
		out[k] = v
	}
	for i := 0; i+1 < len(kv); i += 2 {
		key := kv[i].(string)
		if kv[i+1] == nil {
			delete(out, key)
			continue
		}
		out[key] = kv[i+1]
	}
	return out
}

func TestValidateBindingRejects(t *testing.T) {
	tests := []struct {
		name   string
		raw    map[string]any
		reason string
	}{
		{"missing key", with(lineFields(), "yAxis3_title", nil), "missing key yAxis3_title"},
		{"extra key", with(lineFields(), "zAxis_title", "Units"), "unexpected keys zAxis_title"},
		{"required role empty", with(lineFields(), "yAxis_column", ""), "yAxis must have"},
		{"title without column", with(lineFields(), "yAxis3_title", "Margin"), "yAxis3 title and column"},
		{"column without aggregation", with(lineFields(), "yAxis3_title", "Units", "yAxis3_column", "order_id"), "yAxis3 aggregation"},
		{"unknown column", with(lineFields(), "yAxis_column", "Profit"), "unknown column \"Profit\""},
		{"unknown aggregation", with(lineFields(), "yAxis_aggregation", "TOTAL"), "unknown aggregation"},
		{"duplicate pair", with(lineFields(), "yAxis2_column", "Revenue", "yAxis2_title", "Sales"), "same column and aggregation"},
		{"duplicate title", with(lineFields(), "yAxis2_title", "revenue"), "share the title"},
		{"numeric series", with(lineFields(), "series_title", "Cost", "series_column", "Cost"), "series column \"Cost\" is numerical"},
		{"series equals x", with(lineFields(), "xAxis_column", "Segment", "series_title", "Segment", "series_column", "Segment"), "both bind"},
		{"non-string title", with(lineFields(), "yAxis_title", 12), "must be a string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateBinding(tt.raw, chart.TypeLine, salesSummary())
			require.Error(t, err)
			assert.True(t, core.IsModelOutputError(err))
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

func TestValidateBindingNormalizes(t *testing.T) {
	raw := with(lineFields(),
		"yAxis_aggregation", " avg ",
		"xAxis_title", "Time",
		"series_title", "Segment", "series_column", "Segment",
	)
	b, err := ValidateBinding(raw, chart.TypeLine, salesSummary())
	require.NoError(t, err)

	y, _ := b.Get(chart.RoleY)
	assert.Equal(t, "AVG", y.Aggregation)
	x, _ := b.Get(chart.RoleX)
	assert.Equal(t, "Date", x.Title)
	assert.True(t, b.Has(chart.RoleSeries))
	assert.False(t, b.Has(chart.RoleY3))
}

func TestValidateBindingSplitsColumnLists(t *testing.T) {
	raw := with(lineFields(), "xAxis_column", "Region, Segment")
	b, err := ValidateBinding(raw, chart.TypeLine, salesSummary())
	require.NoError(t, err)

	x, _ := b.Get(chart.RoleX)
	assert.Equal(t, []string{"Region", "Segment"}, x.Columns)
}

func TestValidateBindingUnknownType(t *testing.T) {
	_, err := ValidateBinding(lineFields(), chart.ChartType("gauge_chart"), salesSummary())
	assert.ErrorIs(t, err, core.ErrUnknownChartType)
}

func TestAxisCandidates(t *testing.T) {
	s := salesSummary()

	bar := AxisCandidates(chart.TypeBar, s)
	assert.Equal(t, []string{"Region", "Segment"}, bar[chart.RoleSeries])
	assert.Equal(t, []string{"Revenue", "Cost", "order_id"}, bar[chart.RoleY])
	assert.Contains(t, bar[chart.RoleX], "Order Date")

	pie := AxisCandidates(chart.TypePie, s)
	assert.Equal(t, []string{"Region", "Channel", "Segment"}, pie[chart.RoleX])

	scatter := AxisCandidates(chart.TypeScatterplot, s)
	assert.Equal(t, []string{"Revenue", "Cost"}, scatter[chart.RoleX])
	assert.Equal(t, []string{"Revenue", "Cost"}, scatter[chart.RoleY])

	combo := AxisCandidates(chart.TypeBarLineCombo, s)
	assert.Equal(t, "Order Date", combo[chart.RoleX][0])

	assert.Nil(t, AxisCandidates(chart.TypeTable, s))
}
