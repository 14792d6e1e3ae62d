package charts

import (
	"fmt"
	"strconv"

	"gochart/domain/chart"
	"gochart/domain/core"
	"gochart/domain/frame"
)

// valueAxis is one numeric column of a shaped chart
type valueAxis struct {
	Role   chart.AxisRole
	Column string
	Base   string // synthesized title before any series suffix
	Title  string
	Values []float64
}

// shaped is a query result after axis resolution, coercion, pivoting and
// sorting. Every Values slice is aligned with X.
type shaped struct {
	Frame   *frame.Frame
	XColumn string
	XTitle  string
	XValues []any
	X       []string
	Axes    []valueAxis
	Pivoted bool
}

type shapeOptions struct {
	ValueRoles []chart.AxisRole
	Required   []chart.AxisRole
	Pivot      bool
}

type pendingAxis struct {
	role   chart.AxisRole
	column string
	title  string
}

func shape(req Request, opts shapeOptions) (*shaped, error) {
	if !req.Frame.Valid() {
		return nil, core.NewEmptyAxisError(string(chart.RoleX))
	}
	columns := req.Frame.Columns

	xCol, err := frame.ResolveAxisColumn(chart.RoleX, req.Binding, columns)
	if err != nil {
		return nil, err
	}
	s := &shaped{XColumn: xCol, XTitle: plainTitle(req.Binding, chart.RoleX, xCol)}

	var pending []pendingAxis
	for _, role := range opts.ValueRoles {
		resolved, err := frame.ResolveAxisColumns(role, req.Binding, columns)
		if err != nil {
			if containsRole(opts.Required, role) {
				return nil, err
			}
			continue
		}
		field, _ := req.Binding.Get(role)
		for _, c := range resolved {
			base := field.Title
			if len(resolved) > 1 || base == "" {
				base = c
			}
			pending = append(pending, pendingAxis{role: role, column: c, title: chart.AxisTitle(base, field.Aggregation)})
		}
	}

	if opts.Pivot {
		if err := s.pivot(req, pending); err != nil {
			return nil, err
		}
	}
	if !s.Pivoted {
		s.Frame = frame.SortByAxis(req.Frame, xCol)
		for _, p := range pending {
			values, err := frame.NumericColumn(s.Frame, p.column)
			if err != nil {
				return nil, err
			}
			s.Axes = append(s.Axes, valueAxis{Role: p.role, Column: p.column, Base: p.title, Title: p.title, Values: values})
		}
	}

	s.XValues, _ = s.Frame.Column(xCol)
	s.X = frame.Labels(s.XValues)
	if len(s.X) == 0 {
		return nil, core.NewEmptyAxisError(string(chart.RoleX))
	}
	for _, a := range s.Axes {
		if len(a.Values) == 0 {
			return nil, core.NewEmptyAxisError(string(a.Role))
		}
	}
	return s, nil
}

// pivot reshapes by the series column when one is bound and splits the
// result into more than one group.
func (s *shaped) pivot(req Request, pending []pendingAxis) error {
	seriesCol, err := frame.ResolveAxisColumn(chart.RoleSeries, req.Binding, req.Frame.Columns)
	if err != nil || seriesCol == s.XColumn || len(pending) == 0 {
		return nil
	}
	seriesValues, _ := req.Frame.Column(seriesCol)
	if len(frame.Distinct(seriesValues)) < 2 {
		return nil
	}

	names := make([]string, len(pending))
	for i, p := range pending {
		names[i] = p.column
	}
	pv, err := frame.PivotBySeries(req.Frame, s.XColumn, names, seriesCol)
	if err != nil {
		return err
	}
	sorted := frame.SortByAxis(pv.Frame, s.XColumn)
	seriesField, _ := req.Binding.Get(chart.RoleSeries)

	n := len(pv.Series)
	for vi, p := range pending {
		for si, value := range pv.Series {
			idx := 1 + vi*n + si
			values := make([]float64, len(sorted.Rows))
			for r, row := range sorted.Rows {
				values[r], _ = frame.ToFloat(row[idx])
			}
			s.Axes = append(s.Axes, valueAxis{
				Role:   p.role,
				Column: sorted.Columns[idx],
				Base:   p.title,
				Title:  chart.SeriesTitle(p.title, seriesField.Title, value),
				Values: values,
			})
		}
	}
	s.Frame = sorted
	s.Pivoted = true
	return nil
}

// distinctX counts the distinct x labels
func (s *shaped) distinctX() int {
	seen := make(map[string]bool, len(s.X))
	for _, x := range s.X {
		seen[x] = true
	}
	return len(seen)
}

// reorder applies a label permutation. It does nothing unless labels is a
// permutation of distinct X.
func (s *shaped) reorder(labels []string) bool {
	if len(labels) != len(s.X) || s.distinctX() != len(s.X) {
		return false
	}
	pos := make(map[string]int, len(s.X))
	for i, x := range s.X {
		pos[x] = i
	}
	order := make([]int, len(labels))
	for i, l := range labels {
		src, ok := pos[l]
		if !ok {
			return false
		}
		order[i] = src
		delete(pos, l)
	}

	rows := make([][]any, len(order))
	xValues := make([]any, len(order))
	x := make([]string, len(order))
	for i, src := range order {
		rows[i] = s.Frame.Rows[src]
		xValues[i] = s.XValues[src]
		x[i] = s.X[src]
	}
	for a := range s.Axes {
		values := make([]float64, len(order))
		for i, src := range order {
			values[i] = s.Axes[a].Values[src]
		}
		s.Axes[a].Values = values
	}
	s.Frame = frame.New(s.Frame.Columns, rows)
	s.XValues, s.X = xValues, x
	return true
}

// singleAxisPerRole reports whether Y, Y2 and Y3 each map to at most one
// unpivoted column, so the payload can use the flat Y fields.
func (s *shaped) singleAxisPerRole() bool {
	if s.Pivoted {
		return false
	}
	seen := make(map[chart.AxisRole]bool)
	for _, a := range s.Axes {
		if seen[a.Role] {
			return false
		}
		seen[a.Role] = true
	}
	return true
}

func (s *shaped) firstAxis(role chart.AxisRole) (valueAxis, bool) {
	for _, a := range s.Axes {
		if a.Role == role {
			return a, true
		}
	}
	return valueAxis{}, false
}

func (s *shaped) aggregatedTable(chartID string) *chart.AggregatedTable {
	titles := []string{s.XTitle}
	columns := [][]any{s.XValues}
	for _, a := range s.Axes {
		titles = append(titles, a.Title)
		columns = append(columns, floatsToAny(a.Values))
	}
	return newAggregatedTable(chartID, titles, columns)
}

// newAggregatedTable zips parallel columns into labelled rows. Full-date
// columns become dates so they render as MM/DD/YYYY, and repeated titles are
// numbered so no column is lost.
func newAggregatedTable(chartID string, titles []string, columns [][]any) *chart.AggregatedTable {
	titles = uniqueTitles(titles)
	n := 0
	for i, c := range columns {
		if len(c) > n {
			n = len(c)
		}
		columns[i] = frame.DateCells(c)
	}
	rows := make([]map[string]any, n)
	for i := range rows {
		row := make(map[string]any, len(titles))
		for c, title := range titles {
			var v any
			if i < len(columns[c]) {
				v = columns[c][i]
			}
			row[title] = frame.TableCell(v)
		}
		rows[i] = row
	}
	return &chart.AggregatedTable{ChartID: chartID, Columns: titles, Rows: rows}
}

func uniqueTitles(titles []string) []string {
	out := make([]string, len(titles))
	seen := make(map[string]bool, len(titles))
	for i, t := range titles {
		name := t
		for n := 2; seen[name]; n++ {
			name = fmt.Sprintf("%s (%d)", t, n)
		}
		seen[name] = true
		out[i] = name
	}
	return out
}

func plainTitle(b chart.AxisBinding, role chart.AxisRole, column string) string {
	if f, _ := b.Get(role); f.Title != "" {
		return f.Title
	}
	return column
}

func containsRole(roles []chart.AxisRole, role chart.AxisRole) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func floatsToAny(values []float64) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(frame.Round6(v), 'f', -1, 64)
}
