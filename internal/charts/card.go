package charts

import (
	"context"

	"gochart/domain/chart"
	"gochart/domain/core"
	"gochart/domain/frame"
)

const singlePointNote = "(only 1 data point found)"

func (b *builders) card(ctx context.Context, req Request) (chart.Outcome, error) {
	if !req.Frame.Valid() {
		return chart.Outcome{}, core.NewEmptyAxisError(string(chart.RoleY))
	}
	if req.Origin == chart.TypeHistogram {
		return histogramCard(req)
	}

	yCol, err := frame.ResolveAxisColumn(chart.RoleY, req.Binding, req.Frame.Columns)
	if err != nil {
		return chart.Outcome{}, err
	}
	values, err := frame.NumericColumn(req.Frame, yCol)
	if err != nil {
		return chart.Outcome{}, err
	}
	field, _ := req.Binding.Get(chart.RoleY)
	total, err := frame.Aggregate(values, field.Aggregation)
	if err != nil {
		return chart.Outcome{}, core.NewEmptyAxisError(string(chart.RoleY))
	}
	label := field.Title
	if label == "" {
		label = yCol
	}
	label = chart.AxisTitle(label, field.Aggregation)

	p := &chart.CardPayload{
		Header: header(req),
		Label:  label,
		Value:  formatNumber(total),
	}

	titles := []string{label}
	columns := [][]any{floatsToAny(values)}
	if xCol, err := frame.ResolveAxisColumn(chart.RoleX, req.Binding, req.Frame.Columns); err == nil {
		xValues, _ := req.Frame.Column(xCol)
		if distinct := frame.Distinct(xValues); len(distinct) == 1 {
			p.Category = distinct[0]
		}
		titles = append([]string{plainTitle(req.Binding, chart.RoleX, xCol)}, titles...)
		columns = append([][]any{xValues}, columns...)
	}
	p.AggregatedTable = newAggregatedTable(req.ChartID, titles, columns)
	return chart.Produced(p), nil
}

// histogramCard shows the one distinct x value of a histogram
func histogramCard(req Request) (chart.Outcome, error) {
	xCol, err := frame.ResolveAxisColumn(chart.RoleX, req.Binding, req.Frame.Columns)
	if err != nil {
		return chart.Outcome{}, err
	}
	values, err := frame.NumericColumn(req.Frame, xCol)
	if err != nil {
		return chart.Outcome{}, err
	}
	title := plainTitle(req.Binding, chart.RoleX, xCol)
	p := &chart.CardPayload{
		Header: header(req),
		Label:  title,
		Value:  formatNumber(values[0]),
		Note:   singlePointNote,
	}
	p.AggregatedTable = newAggregatedTable(req.ChartID, []string{title}, [][]any{floatsToAny(values)})
	return chart.Produced(p), nil
}
