package app

import (
	"gochart/domain/chart"
	"gochart/domain/schema"
)

// Cardinality bounds used when choosing candidate columns
const (
	maxSeriesCardinality   = 4
	maxCategoryCardinality = 12
)

// Aggregations the model may choose from
var Aggregations = []string{"SUM", "AVG", "MEAN", "MEDIAN", "MIN", "MAX", "COUNT"}

// axisSpec lists the roles a chart type binds. Optional roles still appear
// in the model's answer, with empty values when unused.
type axisSpec struct {
	Required []chart.AxisRole
	Optional []chart.AxisRole
	Guidance string
}

func (s axisSpec) roles() []chart.AxisRole {
	return append(append([]chart.AxisRole(nil), s.Required...), s.Optional...)
}

func (s axisSpec) isRequired(role chart.AxisRole) bool {
	for _, r := range s.Required {
		if r == role {
			return true
		}
	}
	return false
}

var multiValueSpec = axisSpec{
	Required: []chart.AxisRole{chart.RoleX, chart.RoleY},
	Optional: []chart.AxisRole{chart.RoleY2, chart.RoleY3, chart.RoleSeries},
}

var axisSpecs = map[chart.ChartType]axisSpec{
	chart.TypeBar: {
		Required: []chart.AxisRole{chart.RoleX, chart.RoleY},
		Optional: []chart.AxisRole{chart.RoleSeries},
		Guidance: "A bar chart compares one measure across the categories of the x-axis.",
	},
	chart.TypeColumn: {
		Required: []chart.AxisRole{chart.RoleX, chart.RoleY},
		Optional: []chart.AxisRole{chart.RoleSeries},
		Guidance: "A column chart compares one measure across the categories of the x-axis.",
	},
	chart.TypeGroupedBar: withGuidance(multiValueSpec, "A grouped bar chart compares up to three measures side by side per x-axis category."),
	chart.TypeLine:       withGuidance(multiValueSpec, "A line chart shows how up to three measures change along an ordered, usually time-based, x-axis."),
	chart.TypeSpline:     withGuidance(multiValueSpec, "A spline chart shows smooth trends of up to three measures along an ordered x-axis."),
	chart.TypeArea:       withGuidance(multiValueSpec, "An area chart shows cumulative volume of up to three measures along an ordered x-axis."),
	chart.TypeRadar:      withGuidance(multiValueSpec, "A radar chart compares up to three measures across a few categories."),
	chart.TypePie: {
		Required: []chart.AxisRole{chart.RoleX, chart.RoleY},
		Guidance: "A pie chart shows how one positive measure splits across at most 12 categories.",
	},
	chart.TypePyramidFunnel: {
		Required: []chart.AxisRole{chart.RoleX, chart.RoleY},
		Guidance: "A pyramid or funnel chart shows one measure across ordered stages.",
	},
	chart.TypeTreemap: {
		Required: []chart.AxisRole{chart.RoleX, chart.RoleY},
		Optional: []chart.AxisRole{chart.RoleSeries},
		Guidance: "A treemap shows one measure per category, optionally nested under a parent series.",
	},
	chart.TypeScatterplot: {
		Required: []chart.AxisRole{chart.RoleX, chart.RoleY},
		Optional: []chart.AxisRole{chart.RoleSeries},
		Guidance: "A scatterplot relates two numerical measures point by point.",
	},
	chart.TypeBubbleplot: {
		Required: []chart.AxisRole{chart.RoleX, chart.RoleY, chart.RoleZ},
		Optional: []chart.AxisRole{chart.RoleSeries},
		Guidance: "A bubble plot relates two numerical measures with a third as bubble size.",
	},
	chart.TypeHistogram: {
		Required: []chart.AxisRole{chart.RoleX},
		Guidance: "A histogram shows the distribution of one numerical column.",
	},
	chart.TypeBarLineCombo: {
		Required: []chart.AxisRole{chart.RoleX, chart.RoleYBar, chart.RoleYLine},
		Guidance: "A bar-line combo shows one measure as bars and another as a line over a date axis.",
	},
	chart.TypeCard: {
		Required: []chart.AxisRole{chart.RoleY},
		Optional: []chart.AxisRole{chart.RoleX},
		Guidance: "A card shows a single headline number.",
	},
}

func withGuidance(s axisSpec, guidance string) axisSpec {
	s.Guidance = guidance
	return s
}

// specFor returns the role layout for a chart type
func specFor(t chart.ChartType) (axisSpec, bool) {
	s, ok := axisSpecs[t]
	return s, ok
}

// AxisCandidates filters the schema's columns per role for a chart type
func AxisCandidates(t chart.ChartType, summary *schema.DataSummary) map[chart.AxisRole][]string {
	spec, ok := specFor(t)
	if !ok {
		return nil
	}
	f := columnFilter{summary: summary}
	scatter := t == chart.TypeScatterplot || t == chart.TypeBubbleplot

	out := make(map[chart.AxisRole][]string)
	for _, role := range spec.roles() {
		switch {
		case role == chart.RoleX:
			out[role] = f.xAxis(t)
		case role == chart.RoleSeries:
			out[role] = f.categorical(maxSeriesCardinality)
		case scatter:
			out[role] = f.tribes(schema.TribeNumerical)
		default:
			out[role] = f.tribes(schema.TribeNumerical, schema.TribeID)
		}
	}
	return out
}

type columnFilter struct {
	summary *schema.DataSummary
}

// tribes keeps columns of any of the given tribes
func (f columnFilter) tribes(tribes ...schema.Tribe) []string {
	return f.summary.ColumnsWhere(func(c string) bool {
		got := f.summary.TribeOf(c)
		for _, t := range tribes {
			if got == t {
				return true
			}
		}
		return false
	})
}

// categorical keeps categorical columns with cardinality in (1, max]
func (f columnFilter) categorical(max int) []string {
	return f.summary.ColumnsWhere(func(c string) bool {
		n, ok := f.summary.Cardinality(c)
		return f.summary.TribeOf(c) == schema.TribeCategorical && ok && n > 1 && n <= max
	})
}

func (f columnFilter) xAxis(t chart.ChartType) []string {
	switch t {
	case chart.TypePie, chart.TypePyramidFunnel, chart.TypeRadar:
		return f.categorical(maxCategoryCardinality)
	case chart.TypeHistogram, chart.TypeScatterplot, chart.TypeBubbleplot:
		return f.tribes(schema.TribeNumerical)
	case chart.TypeBarLineCombo:
		return append(f.tribes(schema.TribeDateRelated), f.tribes(schema.TribeCategorical)...)
	case chart.TypeCard:
		return f.tribes(schema.TribeCategorical, schema.TribeDateRelated)
	default:
		return f.tribes(schema.TribeCategorical, schema.TribeDateRelated, schema.TribeNumerical)
	}
}
