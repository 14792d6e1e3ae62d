package frame

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07",
	"2006-01",
	"2006",
}

// ParseDate converts a cell to a date. Strings are tried as YYYY-MM-DD,
// DD/MM/YYYY, timestamps, YYYY-MM and YYYY.
func ParseDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				if layout == "2006" && (parsed.Year() < 1000 || len(s) != 4) {
					continue
				}
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

// dayLayouts are the string forms that carry a full calendar day
var dayLayouts = dateLayouts[:6]

// DateCells converts a column whose non-nil values are all full dates
// (YYYY-MM-DD, DD/MM/YYYY or a timestamp) to time.Time. Any other column,
// including year-month labels, is returned unchanged.
func DateCells(values []any) []any {
	out := make([]any, len(values))
	seen := false
	for i, v := range values {
		if v == nil {
			continue
		}
		d, ok := parseDay(v)
		if !ok {
			return values
		}
		out[i] = d
		seen = true
	}
	if !seen {
		return values
	}
	return out
}

func parseDay(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		switch v.(type) {
		case time.Time, *time.Time:
			return ParseDate(v)
		}
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	for _, layout := range dayLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// ParseAxisDate is ParseDate widened to the tuple forms an axis may carry:
// unpadded "Y-M" or "Y-M-D" strings and bare integer years.
func ParseAxisDate(v any) (time.Time, bool) {
	if d, ok := ParseDate(v); ok {
		return d, true
	}
	t, ok := parseTuple(v)
	if !ok || t[0] < 1000 || t[0] > 9999 {
		return time.Time{}, false
	}
	month, day := 1, 1
	if len(t) > 1 {
		month = t[1]
	}
	if len(t) > 2 {
		day = t[2]
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(t[0], time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

// IsDateAxis reports whether every non-nil value reads as an axis date
func IsDateAxis(values []any) bool {
	seen := false
	for _, v := range values {
		if v == nil {
			continue
		}
		if _, ok := ParseAxisDate(v); !ok {
			return false
		}
		seen = true
	}
	return seen
}

// IsDateLike reports whether every non-nil value parses as a date
func IsDateLike(values []any) bool {
	seen := false
	for _, v := range values {
		if v == nil {
			continue
		}
		if _, ok := ParseDate(v); !ok {
			return false
		}
		seen = true
	}
	return seen
}

// parseTuple reads "Y", "Y-M" or "Y-M-D" as up to three integers
func parseTuple(v any) ([]int, bool) {
	var s string
	switch t := v.(type) {
	case string:
		s = strings.TrimSpace(t)
	case int:
		s = strconv.Itoa(t)
	case int32:
		s = strconv.FormatInt(int64(t), 10)
	case int64:
		s = strconv.FormatInt(t, 10)
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) {
			return nil, false
		}
		s = strconv.FormatFloat(t, 'f', 0, 64)
	case float32:
		return parseTuple(float64(t))
	case json.Number:
		s = t.String()
	default:
		return nil, false
	}
	if s == "" {
		return nil, false
	}
	parts := strings.Split(s, "-")
	if len(parts) > 3 {
		return nil, false
	}
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

func lessTuple(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// SortByAxis orders rows on a column chronologically. Values that all read
// as hyphen-delimited integer tuples are compared tuple-wise, so "2023-2"
// sorts before "2023-10". Otherwise values that all parse as dates are
// compared as dates. Any other column keeps its query order. The sort is
// stable and returns a new frame.
func SortByAxis(f *Frame, column string) *Frame {
	idx := f.Index(column)
	if idx < 0 || len(f.Rows) < 2 {
		return f
	}
	out := f.Clone()

	tuples := make([][]int, len(out.Rows))
	tupleOK := true
	for i, row := range out.Rows {
		t, ok := parseTuple(row[idx])
		if !ok {
			tupleOK = false
			break
		}
		tuples[i] = t
	}
	if tupleOK {
		order := indexes(len(out.Rows))
		sort.SliceStable(order, func(a, b int) bool { return lessTuple(tuples[order[a]], tuples[order[b]]) })
		return out.reorder(order)
	}

	dates := make([]time.Time, len(out.Rows))
	for i, row := range out.Rows {
		d, ok := ParseDate(row[idx])
		if !ok {
			return out
		}
		dates[i] = d
	}
	order := indexes(len(out.Rows))
	sort.SliceStable(order, func(a, b int) bool { return dates[order[a]].Before(dates[order[b]]) })
	return out.reorder(order)
}

func indexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func (f *Frame) reorder(order []int) *Frame {
	rows := make([][]any, len(order))
	for i, src := range order {
		rows[i] = f.Rows[src]
	}
	f.Rows = rows
	return f
}
