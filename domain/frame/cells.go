package frame

import (
	"fmt"
	"math"
	"time"
)

// TableCell formats a value for table views: integers pass through, floats
// round to 6 decimal places, dates render as MM/DD/YYYY and everything else
// is stringified.
func TableCell(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case int64:
		return t
	case uint:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		return int64(t)
	case float32:
		return Round6(float64(t))
	case float64:
		return Round6(t)
	case time.Time:
		return t.Format("01/02/2006")
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.Format("01/02/2006")
	case []byte:
		return string(t)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// Round6 rounds to 6 decimal places
func Round6(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return math.Round(f*1e6) / 1e6
}

func errRow(row int, v any) error {
	return fmt.Errorf("row %d holds %q", row, Label(v))
}
