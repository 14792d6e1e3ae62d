package datareadiness

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"gochart/domain/frame"
	"gochart/domain/schema"
)

// ProfilingConfig controls tribe inference
type ProfilingConfig struct {
	SampleSize int `json:"sample_size"`
	// integer columns with at most this many distinct values are categorical
	CategoricalIntegerLimit int `json:"categorical_integer_limit"`
	// id-named columns whose distinct ratio reaches this are ids
	IDUniqueRatio float64 `json:"id_unique_ratio"`
}

// DefaultProfilingConfig returns sensible defaults
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		SampleSize:              10000,
		CategoricalIntegerLimit: 4,
		IDUniqueRatio:           0.9,
	}
}

// ProfilerAdapter derives a DataSummary from a result frame
type ProfilerAdapter struct {
	config ProfilingConfig
}

// NewProfilerAdapter creates a new profiler adapter
func NewProfilerAdapter(config ProfilingConfig) *ProfilerAdapter {
	return &ProfilerAdapter{config: config}
}

// Summarize profiles every column of f into a DataSummary for tableName
func (p *ProfilerAdapter) Summarize(ctx context.Context, tableName string, f *frame.Frame) (*schema.DataSummary, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("cannot profile %s: frame is empty or ragged", tableName)
	}

	sample := f
	if p.config.SampleSize > 0 && f.Len() > p.config.SampleSize {
		sample = frame.New(f.Columns, f.Rows[:p.config.SampleSize])
	}

	summary := &schema.DataSummary{
		TableDescription:   tableName,
		ColumnDescriptions: make(map[string]string, len(f.Columns)),
		ColumnNames:        append([]string(nil), f.Columns...),
		UniqueCounts:       make(map[string]int, len(f.Columns)),
		Tribes:             make(map[string]schema.Tribe, len(f.Columns)),
		SQLTypes:           make(map[string]string, len(f.Columns)),
	}

	var ddl strings.Builder
	fmt.Fprintf(&ddl, "CREATE TABLE %s (\n", quoteIdent(tableName))
	for i, col := range f.Columns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		values, _ := sample.Column(col)
		profile := p.profileColumn(col, values)

		summary.UniqueCounts[col] = profile.distinct
		summary.Tribes[col] = profile.tribe
		summary.SQLTypes[col] = profile.sqlType
		summary.ColumnDescriptions[col] = fmt.Sprintf("%s column with %d distinct values", profile.tribe, profile.distinct)

		sep := ","
		if i == len(f.Columns)-1 {
			sep = ""
		}
		fmt.Fprintf(&ddl, "  %s %s%s\n", quoteIdent(col), profile.sqlType, sep)
	}
	ddl.WriteString(");")
	summary.DDL = ddl.String()

	return summary, summary.Validate()
}

type columnProfile struct {
	tribe    schema.Tribe
	sqlType  string
	distinct int
}

// profileColumn infers the tribe of one column
func (p *ProfilerAdapter) profileColumn(name string, values []any) columnProfile {
	distinct := len(frame.Distinct(nonNil(values)))
	nonNull := len(nonNil(values))
	prof := columnProfile{tribe: schema.TribeCategorical, sqlType: "TEXT", distinct: distinct}
	if nonNull == 0 {
		return prof
	}

	idNamed := isIDName(name)
	uniqueRatio := float64(distinct) / float64(nonNull)

	if t, ok := inferType(values); ok {
		switch t {
		case "integer":
			prof.sqlType = "INTEGER"
			switch {
			case idNamed && uniqueRatio >= p.config.IDUniqueRatio:
				prof.tribe = schema.TribeID
			case isYearName(name) && yearRange(values):
				prof.tribe = schema.TribeDateRelated
			case distinct <= p.config.CategoricalIntegerLimit && nonNull > distinct*2:
				prof.tribe = schema.TribeCategorical
			default:
				prof.tribe = schema.TribeNumerical
			}
		case "float":
			prof.sqlType = "DOUBLE PRECISION"
			prof.tribe = schema.TribeNumerical
		case "date":
			prof.sqlType = "DATE"
			prof.tribe = schema.TribeDateRelated
		case "timestamp":
			prof.sqlType = "TIMESTAMP"
			prof.tribe = schema.TribeDateRelated
		}
		return prof
	}

	if frame.IsDateLike(values) {
		prof.tribe = schema.TribeDateRelated
		return prof
	}
	if idNamed && uniqueRatio >= p.config.IDUniqueRatio {
		prof.tribe = schema.TribeID
	}
	return prof
}

// inferType reports the common type of every non-nil value
func inferType(values []any) (string, bool) {
	kind := ""
	for _, v := range values {
		var k string
		switch t := v.(type) {
		case nil:
			continue
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			k = "integer"
		case float32, float64:
			k = "float"
		case time.Time:
			if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
				k = "date"
			} else {
				k = "timestamp"
			}
		default:
			return "", false
		}
		switch {
		case kind == "":
			kind = k
		case kind == k:
		case (kind == "integer" && k == "float") || (kind == "float" && k == "integer"):
			kind = "float"
		case (kind == "date" && k == "timestamp") || (kind == "timestamp" && k == "date"):
			kind = "timestamp"
		default:
			return "", false
		}
	}
	return kind, kind != ""
}

func nonNil(values []any) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

func isIDName(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	return lower == "id" || strings.HasSuffix(lower, "_id") || strings.HasSuffix(lower, " id") || strings.HasSuffix(lower, "uuid")
}

func isYearName(name string) bool {
	return strings.Contains(strings.ToLower(name), "year")
}

func yearRange(values []any) bool {
	for _, v := range values {
		if v == nil {
			continue
		}
		n, ok := frame.ToFloat(v)
		if !ok || n != math.Trunc(n) || n < 1900 || n > 2100 {
			return false
		}
	}
	return true
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
