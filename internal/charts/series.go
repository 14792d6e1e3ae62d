package charts

import (
	"context"

	"gochart/domain/chart"
	"gochart/domain/frame"
)

// Category limits for the series family
const (
	maxOrderedCategories = 12
	maxPieSlices         = 12
	maxRadarSpokes       = 6
	maxPyramidLevels     = 8
	maxGroupedRedirectX  = 2
)

var seriesShape = shapeOptions{
	ValueRoles: []chart.AxisRole{chart.RoleY, chart.RoleY2, chart.RoleY3},
	Required:   []chart.AxisRole{chart.RoleY},
	Pivot:      true,
}

var singleValueShape = shapeOptions{
	ValueRoles: []chart.AxisRole{chart.RoleY},
	Required:   []chart.AxisRole{chart.RoleY},
}

func (b *builders) bar(ctx context.Context, req Request) (chart.Outcome, error) {
	s, err := shape(req, seriesShape)
	if err != nil {
		return chart.Outcome{}, err
	}
	if s.distinctX() == 1 {
		return chart.RedirectTo(chart.TypeCard, req.Binding, "single data point"), nil
	}
	return chart.Produced(seriesPayload(req, s, "")), nil
}

func (b *builders) groupedBar(ctx context.Context, req Request) (chart.Outcome, error) {
	s, err := shape(req, seriesShape)
	if err != nil {
		return chart.Outcome{}, err
	}
	b.orderCategories(ctx, req, s)
	return chart.Produced(seriesPayload(req, s, "")), nil
}

// line serves line, spline and area charts
func (b *builders) line(ctx context.Context, req Request) (chart.Outcome, error) {
	s, err := shape(req, seriesShape)
	if err != nil {
		return chart.Outcome{}, err
	}
	switch n := s.distinctX(); {
	case n == 1:
		return chart.RedirectTo(chart.TypeCard, req.Binding, "single data point"), nil
	case n <= maxGroupedRedirectX:
		return chart.RedirectTo(chart.TypeGroupedBar, req.Binding, "too few x values for a trend"), nil
	}
	return chart.Produced(seriesPayload(req, s, "")), nil
}

func (b *builders) radar(ctx context.Context, req Request) (chart.Outcome, error) {
	s, err := shape(req, seriesShape)
	if err != nil {
		return chart.Outcome{}, err
	}
	switch n := s.distinctX(); {
	case n == 1:
		return chart.RedirectTo(chart.TypeCard, req.Binding, "single data point"), nil
	case n > maxRadarSpokes:
		return chart.RedirectTo(chart.TypeGroupedBar, req.Binding, "too many radar categories"), nil
	}
	return chart.Produced(seriesPayload(req, s, "")), nil
}

func (b *builders) pyramid(ctx context.Context, req Request) (chart.Outcome, error) {
	s, err := shape(req, singleValueShape)
	if err != nil {
		return chart.Outcome{}, err
	}
	n := s.distinctX()
	if n == 1 {
		return chart.RedirectTo(chart.TypeCard, req.Binding, "single data point"), nil
	}
	layout := ""
	if n > maxPyramidLevels {
		layout = "bar"
	}
	return chart.Produced(seriesPayload(req, s, layout)), nil
}

func (b *builders) pie(ctx context.Context, req Request) (chart.Outcome, error) {
	s, err := shape(req, singleValueShape)
	if err != nil {
		return chart.Outcome{}, err
	}
	if s.distinctX() > maxPieSlices {
		return chart.RedirectTo(chart.TypeGroupedBar, req.Binding, "too many pie slices"), nil
	}
	for _, a := range s.Axes {
		for _, v := range a.Values {
			if v == 0 {
				return chart.RedirectTo(chart.TypeGroupedBar, req.Binding, "zero valued pie slice"), nil
			}
		}
	}
	return chart.Produced(seriesPayload(req, s, "")), nil
}

// orderCategories asks the orderer for a reading order of a small set of
// non-date categories. Failures keep the current order.
func (b *builders) orderCategories(ctx context.Context, req Request, s *shaped) {
	if b.deps.Orderer == nil || len(s.X) < 2 || len(s.X) > maxOrderedCategories {
		return
	}
	if frame.IsDateLike(s.XValues) {
		return
	}
	labels, err := b.deps.Orderer.OrderCategories(ctx, req.Question, append([]string(nil), s.X...))
	if err != nil {
		b.deps.Logger.Warn("category ordering failed for %s, keeping query order: %v", req.ChartID, err)
		return
	}
	if !s.reorder(labels) {
		b.deps.Logger.Debug("category ordering for %s was not a permutation, ignored", req.ChartID)
	}
}

func seriesPayload(req Request, s *shaped, layout string) *chart.SeriesPayload {
	p := &chart.SeriesPayload{
		Header:     header(req),
		XAxisTitle: s.XTitle,
		X:          s.X,
		Layout:     layout,
	}
	if s.singleAxisPerRole() {
		for _, a := range s.Axes {
			switch a.Role {
			case chart.RoleY:
				p.YAxisTitle, p.Y = a.Title, a.Values
			case chart.RoleY2:
				p.Y2AxisTitle, p.Y2 = a.Title, a.Values
			case chart.RoleY3:
				p.Y3AxisTitle, p.Y3 = a.Title, a.Values
			}
		}
	} else {
		for _, a := range s.Axes {
			p.Series = append(p.Series, chart.SeriesData{Name: a.Title, Data: a.Values})
		}
		if first, ok := s.firstAxis(chart.RoleY); ok {
			p.YAxisTitle = first.Base
		}
	}
	p.AggregatedTable = s.aggregatedTable(req.ChartID)
	return p
}
