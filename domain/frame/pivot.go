package frame

import (
	"gochart/domain/core"
)

// PivotColumn describes one generated column of a pivoted frame
type PivotColumn struct {
	Name        string
	Source      string
	SeriesValue string
}

// Pivot is a frame reshaped so each series value gets its own value columns
type Pivot struct {
	Frame   *Frame
	XColumn string
	Columns []PivotColumn
	Series  []string
}

// PivotBySeries reshapes rows into one row per distinct x value and one
// column per (value column, series value). Duplicate cells are summed and
// missing combinations are 0. X and series values keep first-seen order.
func PivotBySeries(f *Frame, xColumn string, valueColumns []string, seriesColumn string) (*Pivot, error) {
	xIdx := f.Index(xColumn)
	if xIdx < 0 {
		return nil, core.NewAxisNotFoundError(xColumn)
	}
	sIdx := f.Index(seriesColumn)
	if sIdx < 0 {
		return nil, core.NewAxisNotFoundError(seriesColumn)
	}
	vIdx := make([]int, len(valueColumns))
	for i, c := range valueColumns {
		if vIdx[i] = f.Index(c); vIdx[i] < 0 {
			return nil, core.NewAxisNotFoundError(c)
		}
	}

	seriesCol, _ := f.Column(seriesColumn)
	series := Distinct(seriesCol)
	seriesPos := make(map[string]int, len(series))
	for i, s := range series {
		seriesPos[s] = i
	}

	var xKeys []string
	xFirst := make(map[string]any)
	cells := make(map[string][]float64)
	width := len(valueColumns) * len(series)

	for r, row := range f.Rows {
		key := Label(row[xIdx])
		if _, ok := cells[key]; !ok {
			xKeys = append(xKeys, key)
			xFirst[key] = row[xIdx]
			cells[key] = make([]float64, width)
		}
		s := seriesPos[Label(row[sIdx])]
		for i, idx := range vIdx {
			if row[idx] == nil {
				continue
			}
			n, ok := ToFloat(row[idx])
			if !ok {
				return nil, core.NewNonNumericAxisError(valueColumns[i], errRow(r, row[idx]))
			}
			cells[key][i*len(series)+s] += n
		}
	}

	cols := []string{xColumn}
	meta := make([]PivotColumn, 0, width)
	for _, vc := range valueColumns {
		for _, s := range series {
			name := vc + " (" + s + ")"
			cols = append(cols, name)
			meta = append(meta, PivotColumn{Name: name, Source: vc, SeriesValue: s})
		}
	}

	rows := make([][]any, len(xKeys))
	for i, key := range xKeys {
		row := make([]any, 0, width+1)
		row = append(row, xFirst[key])
		for _, v := range cells[key] {
			row = append(row, v)
		}
		rows[i] = row
	}

	return &Pivot{
		Frame:   New(cols, rows),
		XColumn: xColumn,
		Columns: meta,
		Series:  series,
	}, nil
}
