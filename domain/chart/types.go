package chart

import "fmt"

// ChartType is the closed set of chart shapes the pipeline can produce
type ChartType string

const (
	TypeBar           ChartType = "bar_chart"
	TypeColumn        ChartType = "column_chart"
	TypeGroupedBar    ChartType = "grouped_bar_chart"
	TypeLine          ChartType = "line_chart"
	TypeSpline        ChartType = "spline_chart"
	TypeArea          ChartType = "area_chart"
	TypePie           ChartType = "pie_chart"
	TypePyramidFunnel ChartType = "pyramidfunnel_chart"
	TypeScatterplot   ChartType = "scatterplot_chart"
	TypeBubbleplot    ChartType = "bubbleplot_chart"
	TypeRadar         ChartType = "radar_chart"
	TypeHistogram     ChartType = "histogram_chart"
	TypeTreemap       ChartType = "treemap_chart"
	TypeBarLineCombo  ChartType = "barlinecombo_chart"
	TypeTable         ChartType = "table_chart"
	TypeFullTable     ChartType = "full_table_chart"
	TypeCard          ChartType = "card_chart"
)

// AllTypes lists every chart type in a stable order
var AllTypes = []ChartType{
	TypeBar, TypeColumn, TypeGroupedBar, TypeLine, TypeSpline, TypeArea,
	TypePie, TypePyramidFunnel, TypeScatterplot, TypeBubbleplot, TypeRadar,
	TypeHistogram, TypeTreemap, TypeBarLineCombo, TypeTable, TypeFullTable,
	TypeCard,
}

// Valid reports whether t is a known chart type
func (t ChartType) Valid() bool {
	for _, known := range AllTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsTable reports whether t renders raw rows and skips axis resolution
func (t ChartType) IsTable() bool {
	return t == TypeTable || t == TypeFullTable
}

// String returns the wire tag
func (t ChartType) String() string { return string(t) }

// ParseChartType validates a wire tag
func ParseChartType(s string) (ChartType, error) {
	t := ChartType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown chart type %q", s)
	}
	return t, nil
}
