package charts

import (
	"context"

	"gochart/domain/chart"
	"gochart/domain/core"
	"gochart/domain/frame"
)

// scatter serves scatterplot and bubbleplot charts. Points keep query order
// and are grouped by the series column when one is bound.
func (b *builders) scatter(ctx context.Context, req Request) (chart.Outcome, error) {
	if !req.Frame.Valid() {
		return chart.Outcome{}, core.NewEmptyAxisError(string(chart.RoleX))
	}
	roles := []chart.AxisRole{chart.RoleX, chart.RoleY}
	if req.Type == chart.TypeBubbleplot {
		roles = append(roles, chart.RoleZ)
	}

	columns := make([][]float64, len(roles))
	titles := make([]string, len(roles))
	for i, role := range roles {
		col, err := frame.ResolveAxisColumn(role, req.Binding, req.Frame.Columns)
		if err != nil {
			return chart.Outcome{}, err
		}
		if columns[i], err = frame.NumericColumn(req.Frame, col); err != nil {
			return chart.Outcome{}, err
		}
		field, _ := req.Binding.Get(role)
		title := plainTitle(req.Binding, role, col)
		if role.HasAggregation() {
			title = chart.AxisTitle(title, field.Aggregation)
		}
		titles[i] = title
	}
	if len(columns[0]) == 0 {
		return chart.Outcome{}, core.NewEmptyAxisError(string(chart.RoleX))
	}

	p := &chart.ScatterPayload{
		Header:     header(req),
		XAxisTitle: titles[0],
		YAxisTitle: titles[1],
	}
	if len(titles) > 2 {
		p.ZAxisTitle = titles[2]
	}

	groupOf := func(int) string { return titles[1] }
	var seriesValues []any
	seriesTitle := ""
	if col, err := frame.ResolveAxisColumn(chart.RoleSeries, req.Binding, req.Frame.Columns); err == nil {
		seriesValues, _ = req.Frame.Column(col)
		seriesTitle = plainTitle(req.Binding, chart.RoleSeries, col)
		groupOf = func(i int) string { return frame.Label(seriesValues[i]) }
	}

	index := make(map[string]int)
	for i := range columns[0] {
		name := groupOf(i)
		g, ok := index[name]
		if !ok {
			g = len(p.Groups)
			index[name] = g
			p.Groups = append(p.Groups, chart.ScatterGroup{Name: name})
		}
		grp := &p.Groups[g]
		grp.X = append(grp.X, columns[0][i])
		grp.Y = append(grp.Y, columns[1][i])
		if len(columns) > 2 {
			grp.Z = append(grp.Z, columns[2][i])
		}
	}

	tableCols := make([][]any, 0, len(columns)+1)
	for _, c := range columns {
		tableCols = append(tableCols, floatsToAny(c))
	}
	tableTitles := append([]string(nil), titles...)
	if seriesValues != nil {
		tableTitles = append(tableTitles, seriesTitle)
		tableCols = append(tableCols, seriesValues)
	}
	p.AggregatedTable = newAggregatedTable(req.ChartID, tableTitles, tableCols)
	return chart.Produced(p), nil
}
