package charts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gochart/domain/chart"
	"gochart/domain/core"
	"gochart/domain/frame"
)

func field(title, column, agg string) chart.AxisField {
	return chart.AxisField{Title: title, Columns: []string{column}, Aggregation: agg}
}

func regionBinding() chart.AxisBinding {
	return chart.NewAxisBinding().
		Set(chart.RoleX, field("Region", "Region", "")).
		Set(chart.RoleY, field("Revenue", "Revenue", "SUM"))
}

func regionFrame(rows ...[]any) *frame.Frame {
	return frame.New([]string{"Region", "Revenue"}, rows)
}

func build(t *testing.T, reg *Registry, typ chart.ChartType, b chart.AxisBinding, f *frame.Frame) chart.Payload {
	t.Helper()
	p, err := reg.Build(context.Background(), Request{ChartID: "c1", Question: "q", Title: "T", Type: typ, Binding: b, Frame: f, Position: 1})
	require.NoError(t, err)
	return p
}

func TestBarEndToEnd(t *testing.T) {
	reg := NewRegistry(Deps{})
	f := regionFrame([]any{"North", 100}, []any{"South", 200}, []any{"East", 150}, []any{"West", 50})

	p := build(t, reg, chart.TypeBar, regionBinding(), f)
	sp, ok := p.(*chart.SeriesPayload)
	require.True(t, ok)
	assert.Equal(t, chart.TypeBar, sp.ChartType)
	assert.Equal(t, []string{"North", "South", "East", "West"}, sp.X)
	assert.Equal(t, []float64{100, 200, 150, 50}, sp.Y)
	assert.Equal(t, "Total Revenue", sp.YAxisTitle)
	assert.Equal(t, "Region", sp.XAxisTitle)

	require.NotNil(t, sp.AggregatedTable)
	assert.Len(t, sp.AggregatedTable.Rows, 4)
	assert.Equal(t, []string{"Region", "Total Revenue"}, sp.AggregatedTable.Columns)
	assert.Equal(t, "North", sp.AggregatedTable.Rows[0]["Region"])
}

func TestBarSinglePointBecomesCard(t *testing.T) {
	reg := NewRegistry(Deps{})
	p := build(t, reg, chart.TypeBar, regionBinding(), regionFrame([]any{"North", 100}))

	card, ok := p.(*chart.CardPayload)
	require.True(t, ok)
	assert.Equal(t, chart.TypeCard, card.ChartType)
	assert.Equal(t, "100", card.Value)
	assert.Equal(t, "North", card.Category)
	assert.Equal(t, "Total Revenue", card.Label)
	assert.Len(t, card.AggregatedTable.Rows, 1)
}

func TestPieDowngrades(t *testing.T) {
	reg := NewRegistry(Deps{})

	p := build(t, reg, chart.TypePie, regionBinding(), regionFrame([]any{"North", 100}, []any{"South", 0}, []any{"East", 5}))
	assert.Equal(t, chart.TypeGroupedBar, p.Head().ChartType)

	var rows [][]any
	for i := 0; i < 13; i++ {
		rows = append(rows, []any{fmt.Sprintf("R%d", i), i + 1})
	}
	p = build(t, reg, chart.TypePie, regionBinding(), regionFrame(rows...))
	assert.Equal(t, chart.TypeGroupedBar, p.Head().ChartType)

	p = build(t, reg, chart.TypePie, regionBinding(), regionFrame([]any{"North", 1}, []any{"South", 2}))
	assert.Equal(t, chart.TypePie, p.Head().ChartType)
}

func TestLineDowngrades(t *testing.T) {
	reg := NewRegistry(Deps{})

	p := build(t, reg, chart.TypeLine, regionBinding(), regionFrame([]any{"2023-01", 1}))
	assert.Equal(t, chart.TypeCard, p.Head().ChartType)

	p = build(t, reg, chart.TypeSpline, regionBinding(), regionFrame([]any{"2023-01", 1}, []any{"2023-02", 2}))
	assert.Equal(t, chart.TypeGroupedBar, p.Head().ChartType)

	p = build(t, reg, chart.TypeArea, regionBinding(), regionFrame([]any{"2023-10", 3}, []any{"2023-2", 2}, []any{"2023-1", 1}))
	sp := p.(*chart.SeriesPayload)
	assert.Equal(t, chart.TypeArea, sp.ChartType)
	assert.Equal(t, []string{"2023-1", "2023-2", "2023-10"}, sp.X)
	assert.Equal(t, []float64{1, 2, 3}, sp.Y)
}

func TestRadarAndPyramidLimits(t *testing.T) {
	reg := NewRegistry(Deps{})
	rowsOf := func(n int) *frame.Frame {
		var rows [][]any
		for i := 0; i < n; i++ {
			rows = append(rows, []any{fmt.Sprintf("C%d", i), i + 1})
		}
		return regionFrame(rows...)
	}

	assert.Equal(t, chart.TypeRadar, build(t, reg, chart.TypeRadar, regionBinding(), rowsOf(6)).Head().ChartType)
	assert.Equal(t, chart.TypeGroupedBar, build(t, reg, chart.TypeRadar, regionBinding(), rowsOf(7)).Head().ChartType)

	p := build(t, reg, chart.TypePyramidFunnel, regionBinding(), rowsOf(9)).(*chart.SeriesPayload)
	assert.Equal(t, chart.TypePyramidFunnel, p.ChartType)
	assert.Equal(t, "bar", p.Layout)

	p = build(t, reg, chart.TypePyramidFunnel, regionBinding(), rowsOf(5)).(*chart.SeriesPayload)
	assert.Empty(t, p.Layout)
}

func TestSeriesPivot(t *testing.T) {
	reg := NewRegistry(Deps{})
	b := regionBinding().Set(chart.RoleSeries, field("Channel", "Channel", ""))
	f := frame.New([]string{"Region", "Channel", "Revenue"}, [][]any{
		{"North", "Web", 1.23456789},
		{"North", "Store", 2.0},
		{"South", "Web", 3.0},
	})

	sp := build(t, reg, chart.TypeBar, b, f).(*chart.SeriesPayload)
	assert.Nil(t, sp.Y)
	require.Len(t, sp.Series, 2)
	assert.Equal(t, "Total Revenue (Channel: Web)", sp.Series[0].Name)
	assert.Equal(t, []float64{1.23456789, 3}, sp.Series[0].Data)
	assert.Equal(t, "Total Revenue (Channel: Store)", sp.Series[1].Name)
	assert.Equal(t, []float64{2, 0}, sp.Series[1].Data)
	assert.Equal(t, "Total Revenue", sp.YAxisTitle)

	table := sp.AggregatedTable
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 1.234568, table.Rows[0]["Total Revenue (Channel: Web)"])
}

type reverseOrderer struct {
	calls int
	bad   bool
}

func (o *reverseOrderer) OrderCategories(_ context.Context, _ string, labels []string) ([]string, error) {
	o.calls++
	if o.bad {
		return []string{"nope"}, nil
	}
	out := make([]string, len(labels))
	for i, l := range labels {
		out[len(labels)-1-i] = l
	}
	return out, nil
}

func TestGroupedBarCategoryOrdering(t *testing.T) {
	f := regionFrame([]any{"Low", 1}, []any{"Mid", 2}, []any{"High", 3})

	o := &reverseOrderer{}
	sp := build(t, NewRegistry(Deps{Orderer: o}), chart.TypeGroupedBar, regionBinding(), f).(*chart.SeriesPayload)
	assert.Equal(t, 1, o.calls)
	assert.Equal(t, []string{"High", "Mid", "Low"}, sp.X)
	assert.Equal(t, []float64{3, 2, 1}, sp.Y)
	assert.Equal(t, "High", sp.AggregatedTable.Rows[0]["Region"])

	bad := &reverseOrderer{bad: true}
	sp = build(t, NewRegistry(Deps{Orderer: bad}), chart.TypeGroupedBar, regionBinding(), f).(*chart.SeriesPayload)
	assert.Equal(t, []string{"Low", "Mid", "High"}, sp.X)

	dated := regionFrame([]any{"2023-01-01", 1}, []any{"2023-02-01", 2})
	o = &reverseOrderer{}
	build(t, NewRegistry(Deps{Orderer: o}), chart.TypeGroupedBar, regionBinding(), dated)
	assert.Zero(t, o.calls)
}

func comboBinding() chart.AxisBinding {
	return chart.NewAxisBinding().
		Set(chart.RoleX, field("Order Date", "Date", "")).
		Set(chart.RoleYBar, field("Revenue", "Revenue", "SUM")).
		Set(chart.RoleYLine, field("Orders", "Orders", "COUNT"))
}

func TestComboNonDateRedirectsToGroupedBar(t *testing.T) {
	f := frame.New([]string{"Date", "Revenue", "Orders"}, [][]any{{"North", 10, 1}, {"South", 20, 2}})
	sp := build(t, NewRegistry(Deps{}), chart.TypeBarLineCombo, comboBinding(), f).(*chart.SeriesPayload)
	assert.Equal(t, chart.TypeGroupedBar, sp.ChartType)
	assert.Equal(t, "Total Revenue", sp.YAxisTitle)
	assert.Equal(t, "Total Orders", sp.Y2AxisTitle)
	assert.Equal(t, []float64{1, 2}, sp.Y2)
}

func TestComboDateBuckets(t *testing.T) {
	f := frame.New([]string{"Date", "Revenue", "Orders"}, [][]any{
		{"2023-01-05", 10, 1},
		{"2023-01-20", 5, 1},
		{"2023-02-03", 7, 2},
	})
	reg := NewRegistry(Deps{DateBuckets: NewDateBucketer(2)})
	cp := build(t, reg, chart.TypeBarLineCombo, comboBinding(), f).(*chart.ComboPayload)
	assert.Equal(t, "Order Date (Month)", cp.XAxisTitle)
	assert.Equal(t, []string{"2023-01", "2023-02"}, cp.X)
	assert.Equal(t, []float64{15, 7}, cp.YBar)
	assert.Equal(t, []float64{2, 2}, cp.YLine)
	assert.Len(t, cp.AggregatedTable.Rows, 2)

	single := frame.New([]string{"Date", "Revenue", "Orders"}, [][]any{{"2023-01-05", 10, 1}, {"2023-01-06", 5, 1}})
	p := build(t, NewRegistry(Deps{DateBuckets: NewDateBucketer(1)}), chart.TypeBarLineCombo, comboBinding(), single)
	card := p.(*chart.CardPayload)
	assert.Equal(t, "15", card.Value)
}

func TestComboTupleAndYearAxes(t *testing.T) {
	months := frame.New([]string{"Date", "Revenue", "Orders"}, [][]any{
		{"2023-10", 10, 1}, {"2023-2", 5, 1}, {"2023-1", 7, 2},
	})
	cp, ok := build(t, NewRegistry(Deps{}), chart.TypeBarLineCombo, comboBinding(), months).(*chart.ComboPayload)
	require.True(t, ok, "unpadded year-month axis is a date axis")
	assert.Equal(t, []string{"2023-1", "2023-2", "2023-10"}, cp.X)

	cp = build(t, NewRegistry(Deps{DateBuckets: NewDateBucketer(0)}), chart.TypeBarLineCombo, comboBinding(), months).(*chart.ComboPayload)
	assert.Equal(t, []string{"2023-01", "2023-02", "2023-10"}, cp.X)
	assert.Equal(t, []float64{7, 5, 10}, cp.YBar)

	years := frame.New([]string{"Date", "Revenue", "Orders"}, [][]any{
		{float64(2023), 10, 1}, {float64(2021), 5, 1}, {float64(2022), 7, 2},
	})
	cp, ok = build(t, NewRegistry(Deps{DateBuckets: NewDateBucketer(0)}), chart.TypeBarLineCombo, comboBinding(), years).(*chart.ComboPayload)
	require.True(t, ok, "integer years are a date axis")
	assert.Equal(t, "Year", cp.Granularity)
	assert.Equal(t, []string{"2021", "2022", "2023"}, cp.X)
}

func TestLineOverJSONYears(t *testing.T) {
	var f frame.Frame
	require.NoError(t, json.Unmarshal([]byte(`{"columns":["Region","Revenue"],"rows":[[2023,10],[2021,20],[2022,30],[2020,5]]}`), &f))
	sp := build(t, NewRegistry(Deps{}), chart.TypeLine, regionBinding(), &f).(*chart.SeriesPayload)
	assert.Equal(t, chart.TypeLine, sp.ChartType)
	assert.Equal(t, []string{"2020", "2021", "2022", "2023"}, sp.X)
	assert.Equal(t, []float64{5, 20, 30, 10}, sp.Y)
}

func TestAggregatedTableFormatsDates(t *testing.T) {
	f := regionFrame([]any{"2023-02-15", 2}, []any{"2023-01-15", 1}, []any{"2023-03-15", 3})
	sp := build(t, NewRegistry(Deps{}), chart.TypeLine, regionBinding(), f).(*chart.SeriesPayload)
	assert.Equal(t, []string{"2023-01-15", "2023-02-15", "2023-03-15"}, sp.X)
	assert.Equal(t, "01/15/2023", sp.AggregatedTable.Rows[0]["Region"])
	assert.Equal(t, float64(1), sp.AggregatedTable.Rows[0]["Total Revenue"])

	months := regionFrame([]any{"2023-01", 1}, []any{"2023-02", 2}, []any{"2023-03", 3})
	sp = build(t, NewRegistry(Deps{}), chart.TypeLine, regionBinding(), months).(*chart.SeriesPayload)
	assert.Equal(t, "2023-01", sp.AggregatedTable.Rows[0]["Region"])
}

func TestHistogram(t *testing.T) {
	var rows [][]any
	for i := 1; i <= 10; i++ {
		rows = append(rows, []any{float64(i)})
	}
	b := chart.NewAxisBinding().Set(chart.RoleX, field("Age", "Age", ""))
	hp := build(t, NewRegistry(Deps{}), chart.TypeHistogram, b, frame.New([]string{"Age"}, rows)).(*chart.HistogramPayload)

	assert.Len(t, hp.Bins, 5)
	total := 0.0
	for _, c := range hp.Y {
		total += c
	}
	assert.Equal(t, 10.0, total)
	assert.Equal(t, 5.5, hp.Mean)
	assert.Equal(t, 10.0, hp.Bins[len(hp.Bins)-1].Upper)
	assert.Len(t, hp.AggregatedTable.Rows, 10)

	card := build(t, NewRegistry(Deps{}), chart.TypeHistogram, b, frame.New([]string{"Age"}, [][]any{{42}, {42}})).(*chart.CardPayload)
	assert.Equal(t, "Age", card.Label)
	assert.Equal(t, "42", card.Value)
	assert.Equal(t, "(only 1 data point found)", card.Note)
}

func TestTableCap(t *testing.T) {
	f := frame.New([]string{"a", "b"}, [][]any{{1, 1.5}, {2, nil}, {3, "x"}})
	reg := NewRegistry(Deps{TableRowLimit: 2})

	tp := build(t, reg, chart.TypeTable, chart.AllColumns(), f).(*chart.TablePayload)
	assert.Len(t, tp.Rows, 2)
	assert.True(t, tp.Truncated)
	assert.Len(t, tp.AggregatedTable.Rows, 3)
	assert.Equal(t, "", tp.Rows[1]["b"])

	full := build(t, reg, chart.TypeFullTable, chart.AllColumns(), f).(*chart.TablePayload)
	assert.Len(t, full.Rows, 3)
	assert.False(t, full.Truncated)
}

func TestScatterGroups(t *testing.T) {
	b := chart.NewAxisBinding().
		Set(chart.RoleX, field("Price", "Price", "")).
		Set(chart.RoleY, field("Units", "Units", "SUM")).
		Set(chart.RoleZ, field("Margin", "Margin", "AVG")).
		Set(chart.RoleSeries, field("Segment", "Segment", ""))
	f := frame.New([]string{"Price", "Units", "Margin", "Segment"}, [][]any{
		{1, 10, 0.1, "A"}, {2, 20, 0.2, "B"}, {3, 30, 0.3, "A"},
	})
	sp := build(t, NewRegistry(Deps{}), chart.TypeBubbleplot, b, f).(*chart.ScatterPayload)
	require.Len(t, sp.Groups, 2)
	assert.Equal(t, "A", sp.Groups[0].Name)
	assert.Equal(t, []float64{1, 3}, sp.Groups[0].X)
	assert.Equal(t, []float64{0.1, 0.3}, sp.Groups[0].Z)
	assert.Equal(t, "Average Margin", sp.ZAxisTitle)
	assert.Len(t, sp.AggregatedTable.Rows, 3)
}

func TestTreemapParents(t *testing.T) {
	b := regionBinding().Set(chart.RoleSeries, field("Country", "Country", ""))
	f := frame.New([]string{"Region", "Country", "Revenue"}, [][]any{
		{"North", "UK", 10}, {"South", "UK", 5}, {"East", "FR", 7},
	})
	tp := build(t, NewRegistry(Deps{}), chart.TypeTreemap, b, f).(*chart.TreemapPayload)
	require.Len(t, tp.Nodes, 5)
	assert.Equal(t, chart.TreemapNode{Name: "UK", Value: 15}, tp.Nodes[0])
	assert.Equal(t, chart.TreemapNode{Name: "North", Parent: "UK", Value: 10}, tp.Nodes[2])

	same := regionBinding().Set(chart.RoleSeries, field("Region", "Country", ""))
	tp = build(t, NewRegistry(Deps{}), chart.TypeTreemap, same, f).(*chart.TreemapPayload)
	assert.Equal(t, []string{"Region", "Region (2)", "Total Revenue"}, tp.AggregatedTable.Columns)
	assert.Equal(t, "UK", tp.AggregatedTable.Rows[0]["Region"])
	assert.Equal(t, "North", tp.AggregatedTable.Rows[0]["Region (2)"])
}

func TestBuildErrors(t *testing.T) {
	reg := NewRegistry(Deps{})
	ctx := context.Background()

	_, err := reg.Build(ctx, Request{Type: "gauge_chart", Frame: regionFrame([]any{"a", 1})})
	assert.ErrorIs(t, err, core.ErrUnknownChartType)

	missing := chart.NewAxisBinding().Set(chart.RoleX, field("Zone", "Zone", "")).Set(chart.RoleY, field("Revenue", "Revenue", "SUM"))
	_, err = reg.Build(ctx, Request{Type: chart.TypeBar, Binding: missing, Frame: regionFrame([]any{"a", 1}, []any{"b", 2})})
	assert.ErrorIs(t, err, core.ErrAxisNotFound)

	_, err = reg.Build(ctx, Request{Type: chart.TypeBar, Binding: regionBinding(), Frame: regionFrame([]any{"a", "lots"}, []any{"b", 2})})
	assert.ErrorIs(t, err, core.ErrNonNumericAxis)
	assert.True(t, core.IsChartError(err))

	_, err = reg.Build(ctx, Request{Type: chart.TypeBar, Binding: regionBinding(), Frame: regionFrame()})
	assert.ErrorIs(t, err, core.ErrEmptyAxisData)
}

func TestRedirectLimit(t *testing.T) {
	loop := BuilderFunc(func(_ context.Context, req Request) (chart.Outcome, error) {
		next := chart.TypeBar
		if req.Type == chart.TypeBar {
			next = chart.TypeColumn
		}
		return chart.RedirectTo(next, req.Binding, "loop"), nil
	})
	reg := NewRegistry(Deps{})
	reg.builders = map[chart.ChartType]Builder{chart.TypeBar: loop, chart.TypeColumn: loop}

	_, err := reg.Build(context.Background(), Request{Type: chart.TypeBar})
	assert.True(t, errors.Is(err, core.ErrRedirectLimit))
}

func TestEveryChartTypeRegistered(t *testing.T) {
	reg := NewRegistry(Deps{})
	for _, typ := range chart.AllTypes {
		assert.True(t, reg.Supports(typ), typ)
	}
}
