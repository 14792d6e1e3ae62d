package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gochart/domain/chart"
	"gochart/domain/core"
	"gochart/domain/frame"
	"gochart/domain/schema"
	"gochart/internal"
	"gochart/internal/charts"
	"gochart/internal/errors"
	"gochart/internal/usage"
	"gochart/models"
	"gochart/ports"
)

const previewRows = 5

// AxisBinder resolves the axis binding for one chart request
type AxisBinder interface {
	Resolve(ctx context.Context, req AxisRequest) (chart.AxisBinding, error)
}

// PipelineService runs the main question and its sub-questions through axis
// resolution and chart building, skipping any question that fails.
type PipelineService struct {
	binder   AxisBinder
	registry *charts.Registry
	queries  ports.QueryExecutor
	audit    ports.AuditLogger
	events   ports.EventSink
	logger   *internal.Logger
}

// NewPipelineService wires the orchestrator. queries and audit may be nil.
func NewPipelineService(binder AxisBinder, registry *charts.Registry, queries ports.QueryExecutor, audit ports.AuditLogger, logger *internal.Logger) *PipelineService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &PipelineService{
		binder:   binder,
		registry: registry,
		queries:  queries,
		audit:    audit,
		logger:   logger.Named("Pipeline"),
	}
}

// SetEventSink makes Run publish per-question progress events
func (s *PipelineService) SetEventSink(sink ports.EventSink) {
	s.events = sink
}

// Run produces the ordered chart list for req. Only request-level problems
// are returned as errors; per-question failures land in Failures.
func (s *PipelineService) Run(ctx context.Context, req *models.PipelineRequest) (*models.PipelineResult, error) {
	if req == nil {
		return nil, errors.InvalidInput("pipeline request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}

	runID := core.NewRunID().String()
	ctx, tally := usage.WithTally(ctx)
	ctx = usage.WithAttribution(ctx, usage.Attribution{UserID: req.UserID, SessionID: req.SessionID, RunID: runID})

	result := &models.PipelineResult{RunID: runID, Charts: []chart.Payload{}}
	start := time.Now()

	requests := req.Requests()
	for i, cr := range requests {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		progress := float64(i+1) / float64(len(requests))
		payload, err := s.runOne(ctx, req, cr)
		if err != nil {
			s.logFailure(cr, err)
			failure := models.ChartFailure{
				ChartType: cr.ChartType,
				Question:  cr.Question,
				Stage:     failureStage(err),
				Reason:    err.Error(),
			}
			result.Failures = append(result.Failures, failure)
			s.publish(req, runID, models.EventChartSkipped, progress, map[string]any{
				"chart_type": failure.ChartType,
				"question":   failure.Question,
				"stage":      failure.Stage,
				"reason":     failure.Reason,
			})
			continue
		}
		result.Charts = append(result.Charts, payload)
		s.publish(req, runID, models.EventChartBuilt, progress, map[string]any{
			"chart_id":   payload.Head().ChartID,
			"chart_type": payload.Head().ChartType,
			"question":   cr.Question,
		})
	}

	for i, p := range result.Charts {
		p.Head().ChartPosition = i + 1
	}
	if len(result.Charts) > 0 {
		s.registerFirst(ctx, runID, req, result.Charts[0])
	}

	result.InputTokens, result.OutputTokens, _ = tally.Totals()
	s.publish(req, runID, models.EventRunCompleted, 1, map[string]any{
		"charts":  len(result.Charts),
		"skipped": len(result.Failures),
	})
	s.logger.Info("run %s: %d charts, %d skipped in %v (tokens in=%d out=%d)",
		runID, len(result.Charts), len(result.Failures), time.Since(start), result.InputTokens, result.OutputTokens)
	return result, nil
}

func (s *PipelineService) publish(req *models.PipelineRequest, runID, eventType string, progress float64, data map[string]any) {
	if s.events == nil {
		return
	}
	s.events.Publish(models.RunEvent{
		SessionID: req.SessionID,
		RunID:     runID,
		EventType: eventType,
		Progress:  progress,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

// chartFailure carries the context logged for a skipped question
type chartFailure struct {
	binding chart.AxisBinding
	rows    *frame.Frame
	err     error
}

func (f *chartFailure) Error() string { return f.err.Error() }
func (f *chartFailure) Unwrap() error { return f.err }

func (s *PipelineService) runOne(ctx context.Context, req *models.PipelineRequest, cr models.ChartRequest) (chart.Payload, error) {
	rows, err := s.rows(ctx, cr)
	if err != nil {
		return nil, &chartFailure{rows: rows, err: err}
	}

	chartID := cr.ChartID
	if chartID == "" {
		chartID = core.NewChartID().String()
	}

	binding, err := s.binder.Resolve(ctx, AxisRequest{
		ChartID:   chartID,
		ChartType: cr.ChartType,
		Question:  cr.Question,
		Title:     cr.Title,
		Summary:   &req.Summary,
	})
	if err != nil {
		return nil, &chartFailure{rows: rows, err: err}
	}

	if allZero(rows, binding) {
		return nil, &chartFailure{binding: binding, rows: rows, err: core.ErrAllZeroAxis}
	}

	payload, err := s.registry.Build(ctx, charts.Request{
		ChartID:   chartID,
		Question:  cr.Question,
		Title:     cr.Title,
		Query:     cr.SQL,
		Type:      cr.ChartType,
		Binding:   binding,
		Frame:     rows,
		UserID:    req.UserID,
		SessionID: req.SessionID,
	})
	if err != nil {
		return nil, &chartFailure{binding: binding, rows: rows, err: err}
	}
	return payload, nil
}

// rows returns the request's result, executing its SQL when none was given
func (s *PipelineService) rows(ctx context.Context, cr models.ChartRequest) (*frame.Frame, error) {
	f := cr.Result
	if f == nil && cr.SQL != "" && s.queries != nil {
		var err error
		if f, err = s.queries.Execute(ctx, cr.SQL); err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrQueryExecution, err)
		}
	}
	if !f.Valid() {
		return f, core.ErrInvalidQueryResult
	}
	return f, nil
}

// allZero reports whether every bound y column that exists in the result is
// zero or null. Bindings with no resolvable y column are left to the builder.
func allZero(f *frame.Frame, b chart.AxisBinding) bool {
	if b.All {
		return false
	}
	checked := 0
	for _, role := range chart.YRoles {
		if !b.Has(role) {
			continue
		}
		cols, err := frame.ResolveAxisColumns(role, b, f.Columns)
		if err != nil {
			continue
		}
		for _, c := range cols {
			if !frame.AllZeroOrNull(f, c) {
				return false
			}
			checked++
		}
	}
	return checked > 0
}

func (s *PipelineService) logFailure(cr models.ChartRequest, err error) {
	level := s.logger.Error
	if core.IsSkippableResult(err) {
		level = s.logger.Warn
	}

	binding := "{}"
	var preview [][]any
	var cf *chartFailure
	if errors.As(err, &cf) {
		if raw, mErr := json.Marshal(cf.binding); mErr == nil && (cf.binding.All || len(cf.binding.BoundRoles()) > 0) {
			binding = string(raw)
		}
		preview = cf.rows.Preview(previewRows)
	}
	level("skipped %s %q (title %q) at %s: %v\n  binding: %s\n  sql: %s\n  rows: %v",
		cr.ChartType, cr.Question, cr.Title, failureStage(err), err, binding, cr.SQL, preview)
}

// failureStage names the step a chart failed at. Model output is checked
// before axis resolution because exhausted attempts wrap the last bad answer.
func failureStage(err error) string {
	switch {
	case errors.Is(err, core.ErrQueryExecution):
		return models.StageQuery
	case core.IsSkippableResult(err):
		return models.StageNoData
	case core.IsModelOutputError(err):
		return models.StageModelOutput
	case errors.Is(err, core.ErrAxisResolution):
		return models.StageAxisResolution
	case core.IsChartError(err):
		return models.StageChartBuild
	default:
		return models.StageOther
	}
}

// registerFirst sends a sanitized copy of the first chart to the audit log
func (s *PipelineService) registerFirst(ctx context.Context, runID string, req *models.PipelineRequest, p chart.Payload) {
	if s.audit == nil {
		return
	}
	sanitized, err := chart.SanitizeForAudit(p)
	if err != nil {
		s.logger.Warn("could not sanitize chart for audit: %v", err)
		return
	}
	id, err := s.audit.RegisterChart(ctx, &models.ChartAuditRecord{
		RunID:       runID,
		ChartType:   string(p.Head().ChartType),
		Question:    req.Main.Question,
		DatabaseTag: req.Summary.DatabaseTag,
		Chart:       sanitized,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn("chart audit registration failed: %v", err)
		return
	}
	s.logger.Debug("registered chart audit record %s", id)
}

// ResolveOnly resolves a binding without building, for the axis endpoint
func (s *PipelineService) ResolveOnly(ctx context.Context, summary schema.DataSummary, cr models.ChartRequest) (chart.AxisBinding, error) {
	if err := summary.Validate(); err != nil {
		return chart.AxisBinding{}, errors.WithCode(errors.CodeInvalidInput, err)
	}
	if !cr.ChartType.Valid() {
		return chart.AxisBinding{}, errors.InvalidInput(fmt.Sprintf("unknown chart type %q", cr.ChartType))
	}
	return s.binder.Resolve(ctx, AxisRequest{
		ChartID:   cr.ChartID,
		ChartType: cr.ChartType,
		Question:  cr.Question,
		Title:     cr.Title,
		Summary:   &summary,
	})
}
