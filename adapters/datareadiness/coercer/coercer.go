package coercer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ValueType is the recommended type of a column after coercion analysis
type ValueType string

const (
	ValueTypeNumeric   ValueType = "numeric"
	ValueTypeTimestamp ValueType = "timestamp"
	ValueTypeString    ValueType = "string"
	ValueTypeMissing   ValueType = "missing"
)

// TypeCoercer turns raw spreadsheet text into typed cells
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold   float64 `json:"numeric_threshold"`   // share of values that must parse as numbers
	TimestampThreshold float64 `json:"timestamp_threshold"` // share of values that must parse as timestamps
	NormalizeStrings   bool    `json:"normalize_strings"`   // collapse whitespace and strip control characters
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold:   0.8,
		TimestampThreshold: 0.8,
		NormalizeStrings:   true,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// CoerceCell converts raw text to int64, float64, time.Time or string.
// Empty text becomes nil.
func (c *TypeCoercer) CoerceCell(raw string) any {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, ok := c.ParseNumeric(s); ok {
		if f == math.Trunc(f) && !strings.ContainsAny(s, ".,%eE") && math.Abs(f) < 1<<53 {
			return int64(f)
		}
		return f
	}
	if t, ok := c.ParseTimestamp(s); ok {
		return t
	}
	if c.config.NormalizeStrings {
		return c.normalizeString(s)
	}
	return s
}

// ParseNumeric parses numbers written with currency symbols, percent signs,
// parentheses for negatives and European or French separators.
func (c *TypeCoercer) ParseNumeric(strVal string) (float64, bool) {
	cleanVal := strings.TrimSpace(strVal)
	if cleanVal == "" {
		return 0, false
	}

	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY"} {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.TrimSpace(strings.ReplaceAll(cleanVal, "%", ""))

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	hasSpace := strings.Contains(cleanVal, " ")

	switch {
	case hasComma && (hasPeriod || hasSpace):
		commaIdx := strings.LastIndex(cleanVal, ",")
		afterComma := cleanVal[commaIdx+1:]
		if len(afterComma) <= 2 && isDigits(afterComma) {
			// 1.234,56 or 1 234,56
			cleanVal = strings.ReplaceAll(cleanVal, ".", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
		}
	case hasComma:
		commaIdx := strings.LastIndex(cleanVal, ",")
		if len(cleanVal)-commaIdx-1 == 3 {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		}
	default:
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
	}

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// ParseTimestamp parses the date and datetime layouts seen in exports
func (c *TypeCoercer) ParseTimestamp(strVal string) (time.Time, bool) {
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
		"02/01/2006",
		"2006/01/02",
		"02-Jan-2006",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, strVal); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AnalyzeTypeDistribution recommends a column type from raw sample text
func (c *TypeCoercer) AnalyzeTypeDistribution(values []string) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(values)}

	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		analysis.ValidCount++
		if _, ok := c.ParseNumeric(v); ok {
			analysis.NumericCount++
		}
		if _, ok := c.ParseTimestamp(v); ok {
			analysis.TimestampCount++
		}
	}

	if analysis.ValidCount == 0 {
		analysis.RecommendedType = ValueTypeMissing
		return analysis
	}
	analysis.NumericRatio = float64(analysis.NumericCount) / float64(analysis.ValidCount)
	analysis.TimestampRatio = float64(analysis.TimestampCount) / float64(analysis.ValidCount)

	switch {
	case analysis.NumericRatio >= c.config.NumericThreshold:
		analysis.RecommendedType = ValueTypeNumeric
	case analysis.TimestampRatio >= c.config.TimestampThreshold:
		analysis.RecommendedType = ValueTypeTimestamp
	default:
		analysis.RecommendedType = ValueTypeString
	}
	return analysis
}

func (c *TypeCoercer) normalizeString(s string) string {
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int       `json:"total_count"`
	ValidCount      int       `json:"valid_count"`
	NumericCount    int       `json:"numeric_count"`
	TimestampCount  int       `json:"timestamp_count"`
	NumericRatio    float64   `json:"numeric_ratio"`
	TimestampRatio  float64   `json:"timestamp_ratio"`
	RecommendedType ValueType `json:"recommended_type"`
}
