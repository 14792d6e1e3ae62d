package chart

import (
	"strings"
)

var aggregationPhrases = []string{
	"total", "sum", "cumulative", "overall", "count", "average",
	"mean", "median", "mode", "maximum", "minimum",
}

// HasAggregationPhrase reports whether text already reads as an aggregated
// quantity. Matching is a case-insensitive substring test.
func HasAggregationPhrase(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range aggregationPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// AggregationWord maps an aggregation code to its display prefix
func AggregationWord(code string) string {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "AVG", "MEAN":
		return "Average"
	case "MEDIAN":
		return "Median"
	case "MIN":
		return "Minimum"
	case "MAX":
		return "Maximum"
	default:
		return "Total"
	}
}

// AxisTitle synthesizes the display title for a value axis
func AxisTitle(title, aggregation string) string {
	title = strings.TrimSpace(title)
	if title == "" || HasAggregationPhrase(title) {
		return title
	}
	return AggregationWord(aggregation) + " " + title
}

// SeriesTitle appends a pivoted series value to a value-axis title
func SeriesTitle(base, seriesTitle, value string) string {
	if seriesTitle = strings.TrimSpace(seriesTitle); seriesTitle != "" {
		return base + " (" + seriesTitle + ": " + value + ")"
	}
	return base + " (" + value + ")"
}
