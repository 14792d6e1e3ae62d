package charts

import (
	"context"

	"gochart/domain/chart"
	"gochart/domain/frame"
)

// treemap nests x values under their series value when a series is bound
func (b *builders) treemap(ctx context.Context, req Request) (chart.Outcome, error) {
	s, err := shape(req, singleValueShape)
	if err != nil {
		return chart.Outcome{}, err
	}
	y := s.Axes[0]
	p := &chart.TreemapPayload{
		Header:     header(req),
		XAxisTitle: s.XTitle,
		YAxisTitle: y.Title,
	}

	seriesCol, err := frame.ResolveAxisColumn(chart.RoleSeries, req.Binding, s.Frame.Columns)
	if err != nil || seriesCol == s.XColumn {
		for i, x := range s.X {
			p.Nodes = append(p.Nodes, chart.TreemapNode{Name: x, Value: y.Values[i]})
		}
		p.AggregatedTable = s.aggregatedTable(req.ChartID)
		return chart.Produced(p), nil
	}

	seriesValues, _ := s.Frame.Column(seriesCol)
	parents := frame.Labels(seriesValues)
	var order []string
	totals := make(map[string]float64)
	for i, parent := range parents {
		if _, ok := totals[parent]; !ok {
			order = append(order, parent)
		}
		totals[parent] += y.Values[i]
	}
	for _, parent := range order {
		p.Nodes = append(p.Nodes, chart.TreemapNode{Name: parent, Value: totals[parent]})
	}
	for i, x := range s.X {
		p.Nodes = append(p.Nodes, chart.TreemapNode{Name: x, Parent: parents[i], Value: y.Values[i]})
	}

	seriesTitle := plainTitle(req.Binding, chart.RoleSeries, seriesCol)
	p.AggregatedTable = newAggregatedTable(req.ChartID,
		[]string{seriesTitle, s.XTitle, y.Title},
		[][]any{seriesValues, s.XValues, floatsToAny(y.Values)})
	return chart.Produced(p), nil
}
