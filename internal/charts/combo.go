package charts

import (
	"context"

	"gochart/domain/chart"
	"gochart/domain/core"
	"gochart/domain/frame"
)

var comboShape = shapeOptions{
	ValueRoles: []chart.AxisRole{chart.RoleYBar, chart.RoleYLine},
	Required:   []chart.AxisRole{chart.RoleYBar, chart.RoleYLine},
}

// combo renders a bar-line combination over a date axis. Non-date axes are
// handed to the grouped bar builder with the bar and line values as y and y2.
func (b *builders) combo(ctx context.Context, req Request) (chart.Outcome, error) {
	if !req.Frame.Valid() {
		return chart.Outcome{}, core.NewEmptyAxisError(string(chart.RoleX))
	}
	xCol, err := frame.ResolveAxisColumn(chart.RoleX, req.Binding, req.Frame.Columns)
	if err != nil {
		return chart.Outcome{}, err
	}
	xValues, _ := req.Frame.Column(xCol)
	if !frame.IsDateAxis(xValues) {
		binding := req.Binding.Alias(chart.RoleYBar, chart.RoleY).Alias(chart.RoleYLine, chart.RoleY2)
		return chart.RedirectTo(chart.TypeGroupedBar, binding, "x axis is not date-like"), nil
	}

	s, err := shape(req, comboShape)
	if err != nil {
		return chart.Outcome{}, err
	}
	bar, _ := s.firstAxis(chart.RoleYBar)
	line, _ := s.firstAxis(chart.RoleYLine)

	xTitle := s.XTitle
	labels := s.X
	barValues, lineValues := bar.Values, line.Values
	xCells := s.XValues
	granularity := ""
	if b.deps.DateBuckets != nil {
		buckets, err := b.deps.DateBuckets.Bucket(s.XValues, [][]float64{bar.Values, line.Values})
		if err != nil {
			b.deps.Logger.Warn("date bucketing failed for %s, using raw dates: %v", req.ChartID, err)
		} else {
			granularity = string(buckets.Granularity)
			xTitle = s.XTitle + " (" + granularity + ")"
			labels = buckets.Labels
			barValues, lineValues = buckets.Values[0], buckets.Values[1]
			xCells = make([]any, len(labels))
			for i, l := range labels {
				xCells[i] = l
			}
		}
	}

	if len(labels) == 0 {
		return chart.Outcome{}, core.NewEmptyAxisError(string(chart.RoleX))
	}
	if len(labels) == 1 {
		return chart.RedirectTo(chart.TypeCard, req.Binding.Alias(chart.RoleYBar, chart.RoleY), "single data point"), nil
	}

	p := &chart.ComboPayload{
		Header:      header(req),
		XAxisTitle:  xTitle,
		YBarTitle:   bar.Title,
		YLineTitle:  line.Title,
		X:           labels,
		YBar:        barValues,
		YLine:       lineValues,
		Granularity: granularity,
	}
	p.AggregatedTable = newAggregatedTable(req.ChartID,
		[]string{xTitle, bar.Title, line.Title},
		[][]any{xCells, floatsToAny(barValues), floatsToAny(lineValues)})
	return chart.Produced(p), nil
}
