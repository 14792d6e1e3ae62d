package frame

import (
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"
)

// Aggregate reduces values with an aggregation code. Unknown codes sum.
func Aggregate(values []float64, code string) (float64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("aggregate %s: no values", code)
	}
	data := stats.Float64Data(values)
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "AVG", "MEAN":
		return data.Mean()
	case "MEDIAN":
		return data.Median()
	case "MIN":
		return data.Min()
	case "MAX":
		return data.Max()
	case "COUNT":
		return float64(data.Len()), nil
	default:
		return data.Sum()
	}
}

// Summary holds the descriptive statistics reported with histograms
type Summary struct {
	Mean   float64
	Median float64
	Min    float64
	Max    float64
}

// Describe computes a Summary of values
func Describe(values []float64) (Summary, error) {
	data := stats.Float64Data(values)
	var s Summary
	var err error
	if s.Mean, err = data.Mean(); err != nil {
		return s, err
	}
	if s.Median, err = data.Median(); err != nil {
		return s, err
	}
	if s.Min, err = data.Min(); err != nil {
		return s, err
	}
	if s.Max, err = data.Max(); err != nil {
		return s, err
	}
	return s, nil
}
