package app

import (
	"fmt"
	"sort"
	"strings"

	"gochart/domain/chart"
	"gochart/domain/core"
	"gochart/domain/schema"
)

const validateStep = "validate"

// ValidateBinding checks a decoded model answer against the chart type's
// role layout and the schema, normalizing it into an AxisBinding.
func ValidateBinding(raw map[string]any, t chart.ChartType, summary *schema.DataSummary) (chart.AxisBinding, error) {
	spec, ok := specFor(t)
	if !ok {
		return chart.AxisBinding{}, fmt.Errorf("%w: %s", core.ErrUnknownChartType, t)
	}
	v := bindingValidator{spec: spec, summary: summary}

	if err := v.checkKeys(raw); err != nil {
		return chart.AxisBinding{}, err
	}
	flat, err := v.normalize(raw)
	if err != nil {
		return chart.AxisBinding{}, err
	}
	if err := v.checkEmptiness(flat); err != nil {
		return chart.AxisBinding{}, err
	}
	if err := v.checkMembership(flat); err != nil {
		return chart.AxisBinding{}, err
	}

	binding, err := chart.ParseFlatBinding(flat)
	if err != nil {
		return chart.AxisBinding{}, core.NewMalformedOutputError(validateStep, err.Error())
	}
	if err := v.checkSeries(binding); err != nil {
		return chart.AxisBinding{}, err
	}
	if err := v.checkDuplicates(binding); err != nil {
		return chart.AxisBinding{}, err
	}

	if x, ok := binding.Get(chart.RoleX); ok && strings.EqualFold(strings.TrimSpace(x.Title), "Time") {
		x.Title = "Date"
		binding = binding.Set(chart.RoleX, x)
	}
	return binding, nil
}

type bindingValidator struct {
	spec    axisSpec
	summary *schema.DataSummary
}

func invalid(format string, args ...any) error {
	return core.NewMalformedOutputError(validateStep, fmt.Sprintf(format, args...))
}

// checkKeys requires exactly the expected key set
func (v bindingValidator) checkKeys(raw map[string]any) error {
	expected := make(map[string]bool)
	for _, k := range expectedKeys(v.spec) {
		expected[k] = true
		if _, ok := raw[k]; !ok {
			return invalid("missing key %s", k)
		}
	}
	var extra []string
	for k := range raw {
		if !expected[k] {
			extra = append(extra, k)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return invalid("unexpected keys %s", strings.Join(extra, ", "))
	}
	return nil
}

// normalize trims strings, upper-cases aggregations and splits delimited
// column lists.
func (v bindingValidator) normalize(raw map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(raw))
	for _, role := range v.spec.roles() {
		title, err := stringValue(raw, role.TitleKey())
		if err != nil {
			return nil, err
		}
		out[role.TitleKey()] = title

		col, err := v.columnValue(raw[role.ColumnKey()], role.ColumnKey())
		if err != nil {
			return nil, err
		}
		out[role.ColumnKey()] = col

		if role.HasAggregation() {
			agg, err := stringValue(raw, role.AggregationKey())
			if err != nil {
				return nil, err
			}
			agg = strings.ToUpper(agg)
			if agg != "" && !isAggregation(agg) {
				return nil, invalid("%s has unknown aggregation %q", role.AggregationKey(), agg)
			}
			out[role.AggregationKey()] = agg
		}
	}
	return out, nil
}

func (v bindingValidator) columnValue(raw any, key string) (any, error) {
	switch t := raw.(type) {
	case nil:
		return "", nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" || v.summary.HasColumn(s) || !strings.ContainsAny(s, ",|") {
			return s, nil
		}
		parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '|' })
		cols := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				cols = append(cols, p)
			}
		}
		return cols, nil
	case []any:
		cols := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, invalid("%s holds a non-string element", key)
			}
			if s = strings.TrimSpace(s); s != "" {
				cols = append(cols, s)
			}
		}
		if len(cols) == 1 {
			return cols[0], nil
		}
		if len(cols) == 0 {
			return "", nil
		}
		return cols, nil
	default:
		return nil, invalid("%s has unsupported type %T", key, raw)
	}
}

// checkEmptiness requires required roles to be filled and every role's
// title, column and aggregation to be empty or filled together.
func (v bindingValidator) checkEmptiness(flat map[string]any) error {
	for _, role := range v.spec.roles() {
		title := flat[role.TitleKey()].(string) != ""
		column := !isEmptyColumn(flat[role.ColumnKey()])
		agg := true
		if role.HasAggregation() {
			agg = flat[role.AggregationKey()].(string) != ""
		}

		if v.spec.isRequired(role) {
			if !title || !column || !agg {
				return invalid("%s must have a title, column and aggregation", role)
			}
			continue
		}
		if title != column {
			return invalid("%s title and column must both be empty or both be set", role)
		}
		if role.HasAggregation() && agg != column {
			return invalid("%s aggregation and column must both be empty or both be set", role)
		}
	}
	return nil
}

func (v bindingValidator) checkMembership(flat map[string]any) error {
	for _, role := range v.spec.roles() {
		for _, c := range columnsOf(flat[role.ColumnKey()]) {
			if !v.summary.HasColumn(c) {
				return invalid("%s names unknown column %q", role.ColumnKey(), c)
			}
		}
	}
	return nil
}

func (v bindingValidator) checkSeries(b chart.AxisBinding) error {
	series, ok := b.Get(chart.RoleSeries)
	if !ok {
		return nil
	}
	if len(series.Columns) != 1 {
		return invalid("series must bind exactly one column")
	}
	col := series.Column()
	switch v.summary.TribeOf(col) {
	case schema.TribeNumerical, schema.TribeDateRelated, schema.TribeID:
		return invalid("series column %q is %s", col, v.summary.TribeOf(col))
	}
	n, known := v.summary.Cardinality(col)
	if !known || n <= 1 || n > maxSeriesCardinality {
		return invalid("series column %q has cardinality %d outside (1, %d]", col, n, maxSeriesCardinality)
	}
	if x, ok := b.Get(chart.RoleX); ok {
		for _, c := range x.Columns {
			if c == col {
				return invalid("x-axis and series both bind %q", col)
			}
		}
	}
	return nil
}

// checkDuplicates rejects value axes sharing a (column, aggregation) pair
// or a title.
func (v bindingValidator) checkDuplicates(b chart.AxisBinding) error {
	pairs := make(map[string]chart.AxisRole)
	titles := make(map[string]chart.AxisRole)
	for _, role := range chart.YRoles {
		f, ok := b.Get(role)
		if !ok {
			continue
		}
		key := strings.Join(f.Columns, "\x1f") + "\x1e" + f.Aggregation
		if prev, dup := pairs[key]; dup {
			return invalid("%s and %s bind the same column and aggregation", prev, role)
		}
		pairs[key] = role

		title := strings.ToLower(strings.TrimSpace(f.Title))
		if prev, dup := titles[title]; dup {
			return invalid("%s and %s share the title %q", prev, role, f.Title)
		}
		titles[title] = role
	}
	return nil
}

func stringValue(raw map[string]any, key string) (string, error) {
	switch t := raw[key].(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(t), nil
	default:
		return "", invalid("%s must be a string, got %T", key, t)
	}
}

func isAggregation(s string) bool {
	for _, a := range Aggregations {
		if a == s {
			return true
		}
	}
	return false
}

func isEmptyColumn(v any) bool {
	return len(columnsOf(v)) == 0
}

func columnsOf(v any) []string {
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []string:
		return t
	}
	return nil
}
