package app

import (
	"context"
	"fmt"
	"time"

	"gochart/ai"
	"gochart/domain/chart"
	"gochart/domain/core"
	"gochart/domain/schema"
	"gochart/internal"
	"gochart/internal/usage"
	"gochart/models"
	"gochart/ports"
)

// AxisRequest asks for the axis binding of one chart
type AxisRequest struct {
	ChartID   string
	ChartType chart.ChartType
	Question  string
	Title     string
	Summary   *schema.DataSummary
}

// AxisResolverConfig holds model settings for axis resolution
type AxisResolverConfig struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Attempts    int
	ModuleIDs   map[string]string
}

// AxisResolver asks the completion service to bind chart roles to schema
// columns and validates the answer, retrying malformed output.
type AxisResolver struct {
	client   ports.CompletionClient
	feedback ports.FeedbackStore
	audit    ports.AuditLogger
	prompts  *PromptBuilder
	config   AxisResolverConfig
	logger   *internal.Logger
}

func NewAxisResolver(
	client ports.CompletionClient,
	feedback ports.FeedbackStore,
	audit ports.AuditLogger,
	prompts *PromptBuilder,
	config AxisResolverConfig,
	logger *internal.Logger,
) *AxisResolver {
	if config.Attempts <= 0 {
		config.Attempts = 3
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AxisResolver{
		client:   client,
		feedback: feedback,
		audit:    audit,
		prompts:  prompts,
		config:   config,
		logger:   logger.Named("AxisResolver"),
	}
}

// Resolve returns the binding for req. Table charts get the all-columns
// sentinel without a model call.
func (r *AxisResolver) Resolve(ctx context.Context, req AxisRequest) (chart.AxisBinding, error) {
	if req.ChartType.IsTable() {
		return chart.AllColumns(), nil
	}
	spec, ok := specFor(req.ChartType)
	if !ok {
		return chart.AxisBinding{}, fmt.Errorf("%w: %s", core.ErrUnknownChartType, req.ChartType)
	}

	candidates := AxisCandidates(req.ChartType, req.Summary)
	for _, role := range spec.Required {
		if len(candidates[role]) == 0 {
			return chart.AxisBinding{}, core.NewAxisResolutionError(string(req.ChartType), 0,
				fmt.Errorf("no candidate columns for %s", role))
		}
	}

	feedback := r.fetchFeedback(ctx, req.ChartType)
	prompt, err := r.prompts.Build(promptInput{
		ChartType:  req.ChartType,
		Question:   req.Question,
		Title:      req.Title,
		Summary:    req.Summary,
		Spec:       spec,
		Candidates: candidates,
		Feedback:   feedback,
	})
	if err != nil {
		return chart.AxisBinding{}, err
	}
	r.logger.Debug("prompt for %s has %d examples, ~%d tokens", req.ChartID, prompt.Examples, prompt.Tokens)

	completion := ports.CompletionRequest{
		Model:       r.config.Model,
		Messages:    prompt.Messages,
		MaxTokens:   r.config.MaxTokens,
		Temperature: r.config.Temperature,
		GuidedJSON:  GuidedSchema(spec, candidates),
	}
	callCtx := usage.WithOperation(ctx, models.OpAxisResolution)
	promptHash := core.ComputePromptHash(prompt.Messages[0].Content, prompt.Messages[1].Content)
	r.logger.Debug("prompt %s for %s", promptHash.Short(), req.ChartID)

	var last error
	for attempt := 1; attempt <= r.config.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return chart.AxisBinding{}, err
		}

		start := time.Now()
		resp, err := r.client.Complete(callCtx, completion)
		r.recordCall(ctx, req, promptHash, prompt, attempt, start, resp, err)
		if err != nil {
			return chart.AxisBinding{}, core.NewAxisResolutionError(string(req.ChartType), attempt, err)
		}

		binding, err := r.parse(resp.Content, req)
		if err == nil {
			r.logger.Info("resolved %s for %q on attempt %d", req.ChartType, req.Question, attempt)
			return binding, nil
		}
		last = err
		r.logger.Warn("attempt %d/%d for %s rejected: %v", attempt, r.config.Attempts, req.ChartType, err)
	}
	return chart.AxisBinding{}, core.NewAxisResolutionError(string(req.ChartType), r.config.Attempts, last)
}

func (r *AxisResolver) parse(content string, req AxisRequest) (chart.AxisBinding, error) {
	raw, err := ai.ParseModelJSON(content)
	if err != nil {
		return chart.AxisBinding{}, core.NewMalformedOutputError("parse", err.Error())
	}
	return ValidateBinding(raw, req.ChartType, req.Summary)
}

func (r *AxisResolver) fetchFeedback(ctx context.Context, t chart.ChartType) []models.FeedbackRecord {
	if r.feedback == nil {
		return nil
	}
	records, err := r.feedback.FetchFeedback(ctx, models.FeedbackFieldChartType, string(t))
	if err != nil {
		r.logger.Warn("feedback lookup for %s failed, using default examples: %v", t, err)
		return nil
	}
	return records
}

func (r *AxisResolver) recordCall(ctx context.Context, req AxisRequest, hash core.PromptHash, prompt *AxisPrompt, attempt int, start time.Time, resp *ports.CompletionResponse, callErr error) {
	if r.audit == nil {
		return
	}
	rec := &models.LLMCallRecord{
		ChartID:    req.ChartID,
		ModuleID:   r.config.ModuleIDs[models.OpAxisResolution],
		Module:     models.OpAxisResolution,
		Model:      r.config.Model,
		PromptHash: hash.String(),
		Prompt:     prompt.Messages[len(prompt.Messages)-1].Content,
		Attempt:    attempt,
		LatencyMs:  time.Since(start).Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	if resp != nil {
		rec.Response = resp.Content
		if resp.Usage != nil {
			rec.InputTokens = resp.Usage.PromptTokens
			rec.OutputTokens = resp.Usage.CompletionTokens
		}
	}
	if callErr != nil {
		rec.Error = callErr.Error()
	}
	if err := r.audit.RecordLLMCall(ctx, rec); err != nil {
		r.logger.Warn("failed to record LLM call for %s: %v", req.ChartID, err)
	}
}
