package frame

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gochart/domain/core"
)

// ToFloat converts a cell to a number. Strings have % signs, thousands
// separators and surrounding whitespace removed before parsing.
func ToFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t) && !math.IsInf(t, 0)
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case []byte:
		return ToFloat(string(t))
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, "%", ""))
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// NumericColumn coerces a column to numbers. Nulls become 0; any other value
// that does not parse fails with ErrNonNumericAxis.
func NumericColumn(f *Frame, column string) ([]float64, error) {
	values, err := f.Column(column)
	if err != nil {
		return nil, core.NewAxisNotFoundError(column)
	}
	out := make([]float64, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		n, ok := ToFloat(v)
		if !ok {
			return nil, core.NewNonNumericAxisError(column, fmt.Errorf("row %d holds %q", i, Label(v)))
		}
		out[i] = n
	}
	return out, nil
}

// AllZeroOrNull reports whether every cell of a column is null or zero
func AllZeroOrNull(f *Frame, column string) bool {
	values, err := f.Column(column)
	if err != nil {
		return false
	}
	for _, v := range values {
		if v == nil {
			continue
		}
		if n, ok := ToFloat(v); !ok || n != 0 {
			return false
		}
	}
	return true
}
