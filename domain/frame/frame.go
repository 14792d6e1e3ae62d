package frame

import (
	"fmt"
	"strconv"
	"time"
)

// Frame is a tabular query result: ordered named columns and ordered rows.
// Builders treat a Frame as read-only and return new frames when reshaping.
type Frame struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// New builds a frame from columns and rows
func New(columns []string, rows [][]any) *Frame {
	return &Frame{Columns: columns, Rows: rows}
}

// Len returns the row count
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Rows)
}

// Valid reports whether the frame is a non-empty rectangular table
func (f *Frame) Valid() bool {
	if f == nil || len(f.Columns) == 0 || len(f.Rows) == 0 {
		return false
	}
	for _, row := range f.Rows {
		if len(row) != len(f.Columns) {
			return false
		}
	}
	return true
}

// Index returns the position of a column, or -1
func (f *Frame) Index(column string) int {
	for i, c := range f.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// HasColumn reports whether column exists
func (f *Frame) HasColumn(column string) bool {
	return f.Index(column) >= 0
}

// Column returns the values of one column
func (f *Frame) Column(column string) ([]any, error) {
	idx := f.Index(column)
	if idx < 0 {
		return nil, fmt.Errorf("column %q not in result", column)
	}
	out := make([]any, len(f.Rows))
	for i, row := range f.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Clone copies the frame, sharing cell values
func (f *Frame) Clone() *Frame {
	rows := make([][]any, len(f.Rows))
	for i, row := range f.Rows {
		rows[i] = append([]any(nil), row...)
	}
	return &Frame{Columns: append([]string(nil), f.Columns...), Rows: rows}
}

// Preview returns at most n rows for diagnostics
func (f *Frame) Preview(n int) [][]any {
	if f == nil {
		return nil
	}
	if len(f.Rows) <= n {
		return f.Rows
	}
	return f.Rows[:n]
}

// Label renders a cell as an axis label
func Label(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format("2006-01-02 15:04:05")
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	default:
		return fmt.Sprint(t)
	}
}

// Labels renders a column as axis labels
func Labels(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = Label(v)
	}
	return out
}

// Distinct returns the distinct labels of values in first-seen order
func Distinct(values []any) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		l := Label(v)
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}
