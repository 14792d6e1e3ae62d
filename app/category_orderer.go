package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gochart/ai"
	"gochart/domain/core"
	"gochart/internal"
	"gochart/internal/usage"
	"gochart/models"
	"gochart/ports"
)

// CategoryOrderer asks the model for a natural reading order of category
// labels. Only a permutation of the input is accepted.
type CategoryOrderer struct {
	client  ports.CompletionClient
	audit   ports.AuditLogger
	prompts *ai.PromptManager
	config  AxisResolverConfig
	logger  *internal.Logger
}

func NewCategoryOrderer(client ports.CompletionClient, audit ports.AuditLogger, prompts *ai.PromptManager, config AxisResolverConfig, logger *internal.Logger) *CategoryOrderer {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &CategoryOrderer{client: client, audit: audit, prompts: prompts, config: config, logger: logger.Named("CategoryOrderer")}
}

// OrderCategories returns labels reordered, or an error when the model's
// answer is unusable.
func (o *CategoryOrderer) OrderCategories(ctx context.Context, question string, labels []string) ([]string, error) {
	var list strings.Builder
	for _, l := range labels {
		fmt.Fprintf(&list, "- %s\n", l)
	}
	prompt, err := o.prompts.RenderPrompt(ai.PromptCategoryOrder, map[string]string{
		"QUESTION": question,
		"LABELS":   strings.TrimRight(list.String(), "\n"),
	})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := o.client.Complete(usage.WithOperation(ctx, models.OpCategoryOrdering), ports.CompletionRequest{
		Model:       o.config.Model,
		Messages:    []ports.Message{{Role: "user", Content: prompt}},
		MaxTokens:   o.config.MaxTokens,
		Temperature: o.config.Temperature,
		GuidedJSON: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"order": map[string]any{
					"type":     "array",
					"items":    map[string]any{"type": "string", "enum": labels},
					"minItems": len(labels),
					"maxItems": len(labels),
				},
			},
			"required":             []string{"order"},
			"additionalProperties": false,
		},
	})
	o.record(ctx, prompt, start, resp, err)
	if err != nil {
		return nil, err
	}

	raw, err := ai.ParseModelJSON(resp.Content)
	if err != nil {
		return nil, core.NewMalformedOutputError("category_order", err.Error())
	}
	items, ok := raw["order"].([]any)
	if !ok {
		return nil, core.NewMalformedOutputError("category_order", "missing order list")
	}
	ordered := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, core.NewMalformedOutputError("category_order", "order holds a non-string")
		}
		ordered = append(ordered, s)
	}
	if !isPermutation(ordered, labels) {
		return nil, core.NewMalformedOutputError("category_order", "order is not a permutation of the labels")
	}
	return ordered, nil
}

func (o *CategoryOrderer) record(ctx context.Context, prompt string, start time.Time, resp *ports.CompletionResponse, callErr error) {
	if o.audit == nil {
		return
	}
	rec := &models.LLMCallRecord{
		ModuleID:   o.config.ModuleIDs[models.OpCategoryOrdering],
		Module:     models.OpCategoryOrdering,
		Model:      o.config.Model,
		PromptHash: core.ComputePromptHash(prompt).String(),
		Prompt:     prompt,
		Attempt:    1,
		LatencyMs:  time.Since(start).Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	if resp != nil {
		rec.Response = resp.Content
		if resp.Usage != nil {
			rec.InputTokens, rec.OutputTokens = resp.Usage.PromptTokens, resp.Usage.CompletionTokens
		}
	}
	if callErr != nil {
		rec.Error = callErr.Error()
	}
	if err := o.audit.RecordLLMCall(ctx, rec); err != nil {
		o.logger.Warn("failed to record LLM call: %v", err)
	}
}

func isPermutation(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	counts := make(map[string]int, len(want))
	for _, w := range want {
		counts[w]++
	}
	for _, g := range got {
		if counts[g] == 0 {
			return false
		}
		counts[g]--
	}
	return true
}
