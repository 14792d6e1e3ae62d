package charts

import (
	"context"

	"gochart/domain/chart"
	"gochart/domain/core"
	"gochart/domain/frame"
)

// table serves table and full table charts. Only table charts are capped.
func (b *builders) table(ctx context.Context, req Request) (chart.Outcome, error) {
	if !req.Frame.Valid() {
		return chart.Outcome{}, core.NewEmptyAxisError("rows")
	}
	rows := tableRows(req.Frame)
	p := &chart.TablePayload{
		Header:  header(req),
		Columns: append([]string(nil), req.Frame.Columns...),
		Rows:    rows,
	}
	if limit := b.deps.TableRowLimit; req.Type == chart.TypeTable && limit > 0 && len(rows) > limit {
		p.Rows = rows[:limit]
		p.Truncated = true
	}
	p.AggregatedTable = &chart.AggregatedTable{ChartID: req.ChartID, Columns: p.Columns, Rows: rows}
	return chart.Produced(p), nil
}

func tableRows(f *frame.Frame) []map[string]any {
	out := make([]map[string]any, len(f.Rows))
	for i, row := range f.Rows {
		m := make(map[string]any, len(f.Columns))
		for c, col := range f.Columns {
			m[col] = frame.TableCell(row[c])
		}
		out[i] = m
	}
	return out
}
