package app

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gochart/ai"
	"gochart/domain/chart"
	"gochart/domain/schema"
	"gochart/models"
	"gochart/ports"
)

// AxisPrompt is a rendered prompt plus what went into it
type AxisPrompt struct {
	Messages []ports.Message
	Examples int
	Disliked bool
	Tokens   int
}

// PromptBuilder renders axis-binding prompts within a token budget
type PromptBuilder struct {
	prompts        *ai.PromptManager
	industryDomain string
	tokenLimit     int
}

func NewPromptBuilder(prompts *ai.PromptManager, industryDomain string, tokenLimit int) *PromptBuilder {
	if industryDomain == "" {
		industryDomain = "business"
	}
	return &PromptBuilder{prompts: prompts, industryDomain: industryDomain, tokenLimit: tokenLimit}
}

type promptInput struct {
	ChartType  chart.ChartType
	Question   string
	Title      string
	Summary    *schema.DataSummary
	Spec       axisSpec
	Candidates map[chart.AxisRole][]string
	Feedback   []models.FeedbackRecord
}

// Build renders the system instructions and the user question, then adds
// liked examples in order while the estimate stays within the budget, and
// finally a block of disliked bindings if it still fits.
func (b *PromptBuilder) Build(in promptInput) (*AxisPrompt, error) {
	system, err := b.prompts.RenderPrompt(ai.PromptAxisBinding, map[string]string{
		"INDUSTRY_DOMAIN":   b.industryDomain,
		"CHART_TYPE":        strings.ReplaceAll(string(in.ChartType), "_", " "),
		"CHART_GUIDANCE":    in.Spec.Guidance,
		"TABLE_DESCRIPTION": orDefault(in.Summary.TableDescription, "(none)"),
		"COLUMN_CONTEXT":    columnContext(in.Summary),
		"REQUIRED_KEYS":     strings.Join(expectedKeys(in.Spec), ", "),
		"CANDIDATES":        candidateBlock(in.Spec, in.Candidates),
	})
	if err != nil {
		return nil, err
	}

	user := fmt.Sprintf("Question: %s\nChart title: %s\nAnswer:", in.Question, orDefault(in.Title, in.Question))
	used := ai.EstimateTokens(system) + ai.EstimateTokens(user)

	liked, disliked := splitFeedback(in.Feedback, in.ChartType)
	if len(liked) == 0 {
		liked = []example{defaultExample(in.ChartType, in.Spec)}
	}

	var shots []string
	for _, ex := range liked {
		text := ex.render()
		cost := ai.EstimateTokens(text)
		if used+cost > b.tokenLimit {
			break
		}
		shots = append(shots, text)
		used += cost
	}
	if len(shots) > 0 {
		system += "\n\nExamples of good answers:\n" + strings.Join(shots, "\n")
	}

	out := &AxisPrompt{Examples: len(shots)}
	if len(disliked) > 0 {
		block := dislikedBlock(disliked)
		if cost := ai.EstimateTokens(block); used+cost <= b.tokenLimit {
			system += "\n\n" + block
			used += cost
			out.Disliked = true
		}
	}

	out.Messages = []ports.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
	out.Tokens = used
	return out, nil
}

type example struct {
	Question string
	Binding  map[string]any
}

func (e example) render() string {
	raw, _ := json.Marshal(e.Binding)
	return fmt.Sprintf("Question: %s\nAnswer: %s\n", e.Question, raw)
}

// splitFeedback keeps valid records for the chart type, most recent first
func splitFeedback(records []models.FeedbackRecord, t chart.ChartType) (liked, disliked []example) {
	sorted := append([]models.FeedbackRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })
	for _, r := range sorted {
		if r.ChartType != string(t) || r.Validate() != nil {
			continue
		}
		ex := example{Question: r.Question, Binding: r.Binding}
		if r.Liked {
			liked = append(liked, ex)
		} else {
			disliked = append(disliked, ex)
		}
	}
	return liked, disliked
}

func dislikedBlock(disliked []example) string {
	var sb strings.Builder
	sb.WriteString("Users disliked these answers. Do not repeat these bindings for similar questions:\n")
	for _, ex := range disliked {
		sb.WriteString(ex.render())
	}
	return sb.String()
}

// defaultExample is used when no liked feedback exists for a chart type
func defaultExample(t chart.ChartType, spec axisSpec) example {
	flat := make(map[string]any)
	sample := map[chart.AxisRole][3]string{
		chart.RoleX:     {"Region", "Region", ""},
		chart.RoleY:     {"Revenue", "revenue", "SUM"},
		chart.RoleY2:    {"Cost", "cost", "SUM"},
		chart.RoleY3:    {"Profit", "profit", "SUM"},
		chart.RoleZ:     {"Units", "units", "SUM"},
		chart.RoleYBar:  {"Revenue", "revenue", "SUM"},
		chart.RoleYLine: {"Orders", "order_id", "COUNT"},
	}
	if t == chart.TypeBarLineCombo {
		sample[chart.RoleX] = [3]string{"Order Date", "order_date", ""}
	}
	if t == chart.TypeHistogram || t == chart.TypeScatterplot || t == chart.TypeBubbleplot {
		sample[chart.RoleX] = [3]string{"Price", "unit_price", ""}
	}
	for _, role := range spec.roles() {
		v := sample[role]
		if !spec.isRequired(role) {
			v = [3]string{}
		}
		flat[role.TitleKey()] = v[0]
		flat[role.ColumnKey()] = v[1]
		if role.HasAggregation() {
			flat[role.AggregationKey()] = v[2]
		}
	}
	return example{Question: "Total revenue by region", Binding: flat}
}

func columnContext(s *schema.DataSummary) string {
	var sb strings.Builder
	for _, c := range s.ColumnNames {
		n, ok := s.Cardinality(c)
		card := "?"
		if ok {
			card = fmt.Sprint(n)
		}
		fmt.Fprintf(&sb, "- %s | %s | %s | %s\n", c, orDefault(string(s.TribeOf(c)), "unknown"), card, s.ColumnDescriptions[c])
	}
	return strings.TrimRight(sb.String(), "\n")
}

func candidateBlock(spec axisSpec, candidates map[chart.AxisRole][]string) string {
	var sb strings.Builder
	for _, role := range spec.roles() {
		cols := candidates[role]
		suffix := ""
		if !spec.isRequired(role) {
			suffix = " (optional, use \"\" when unused)"
		}
		fmt.Fprintf(&sb, "- %s%s: %s\n", role.ColumnKey(), suffix, strings.Join(cols, ", "))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
