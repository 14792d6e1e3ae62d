package charts

import (
	"context"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"gochart/domain/chart"
	"gochart/domain/core"
	"gochart/domain/frame"
)

const maxHistogramBins = 20

func (b *builders) histogram(ctx context.Context, req Request) (chart.Outcome, error) {
	if !req.Frame.Valid() {
		return chart.Outcome{}, core.NewEmptyAxisError(string(chart.RoleX))
	}
	xCol, err := frame.ResolveAxisColumn(chart.RoleX, req.Binding, req.Frame.Columns)
	if err != nil {
		return chart.Outcome{}, err
	}
	raw, _ := req.Frame.Column(xCol)
	values := make([]float64, 0, len(raw))
	for _, v := range raw {
		if v == nil {
			continue
		}
		n, ok := frame.ToFloat(v)
		if !ok {
			return chart.Outcome{}, core.NewNonNumericAxisError(xCol, nil)
		}
		values = append(values, n)
	}
	if len(values) == 0 {
		return chart.Outcome{}, core.NewEmptyAxisError(string(chart.RoleX))
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		return chart.RedirectTo(chart.TypeCard, req.Binding, "single distinct value"), nil
	}

	k := sturgesBins(len(sorted))
	dividers := make([]float64, k+1)
	floats.Span(dividers, lo, hi)
	// stat.Histogram bins are half-open; nudge the top edge so hi is counted
	dividers[k] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)

	summary, err := frame.Describe(values)
	if err != nil {
		return chart.Outcome{}, core.NewEmptyAxisError(string(chart.RoleX))
	}

	xTitle := plainTitle(req.Binding, chart.RoleX, xCol)
	p := &chart.HistogramPayload{
		Header:     header(req),
		XAxisTitle: xTitle,
		YAxisTitle: "Count",
		Mean:       frame.Round6(summary.Mean),
		Median:     frame.Round6(summary.Median),
	}
	for i, c := range counts {
		lower, upper := dividers[i], dividers[i+1]
		if i == len(counts)-1 {
			upper = hi
		}
		p.Bins = append(p.Bins, chart.HistogramBin{Lower: frame.Round6(lower), Upper: frame.Round6(upper), Count: c})
		p.X = append(p.X, formatNumber(lower)+" - "+formatNumber(upper))
		p.Y = append(p.Y, c)
	}
	p.AggregatedTable = newAggregatedTable(req.ChartID, []string{xTitle}, [][]any{floatsToAny(values)})
	return chart.Produced(p), nil
}

// sturgesBins picks ceil(log2(n))+1 bins, clamped to [1, maxHistogramBins]
func sturgesBins(n int) int {
	if n < 2 {
		return 1
	}
	k := int(math.Ceil(math.Log2(float64(n)))) + 1
	if k > maxHistogramBins {
		k = maxHistogramBins
	}
	return k
}
