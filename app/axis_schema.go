package app

import (
	"gochart/domain/chart"
)

// GuidedSchema builds the JSON schema that constrains the model's answer to
// the candidate columns of each role.
func GuidedSchema(spec axisSpec, candidates map[chart.AxisRole][]string) map[string]any {
	properties := make(map[string]any)
	var required []string

	for _, role := range spec.roles() {
		optional := !spec.isRequired(role)

		columns := append([]string(nil), candidates[role]...)
		aggregations := append([]string(nil), Aggregations...)
		if optional {
			columns = append(columns, "")
			aggregations = append(aggregations, "")
		}

		properties[role.TitleKey()] = map[string]any{"type": "string"}
		properties[role.ColumnKey()] = map[string]any{"type": "string", "enum": columns}
		required = append(required, role.TitleKey(), role.ColumnKey())
		if role.HasAggregation() {
			properties[role.AggregationKey()] = map[string]any{"type": "string", "enum": aggregations}
			required = append(required, role.AggregationKey())
		}
	}

	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

// expectedKeys lists every flat key the model must return for spec
func expectedKeys(spec axisSpec) []string {
	var keys []string
	for _, role := range spec.roles() {
		keys = append(keys, role.Keys()...)
	}
	return keys
}
