package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	"gochart/domain/chart"
	"gochart/domain/core"
	"gochart/domain/schema"
	"gochart/internal"
	"gochart/internal/errors"
	"gochart/models"
)

// Pipeline is the orchestrator surface the handler needs
type Pipeline interface {
	Run(ctx context.Context, req *models.PipelineRequest) (*models.PipelineResult, error)
	ResolveOnly(ctx context.Context, summary schema.DataSummary, cr models.ChartRequest) (chart.AxisBinding, error)
}

// AxisRequest is the body of POST /api/v1/axis
type AxisRequest struct {
	Summary   schema.DataSummary `json:"data_summary"`
	ChartType chart.ChartType    `json:"chart_type"`
	Question  string             `json:"question"`
	Title     string             `json:"chart_title"`
}

// ChartHandler serves pipeline runs with a bound on concurrent runs
type ChartHandler struct {
	pipeline Pipeline
	sem      *semaphore.Weighted
	timeout  time.Duration
	logger   *internal.Logger
}

// NewChartHandler allows at most maxRuns concurrent pipeline runs. A zero
// timeout leaves runs bounded only by the request context.
func NewChartHandler(pipeline Pipeline, maxRuns int64, timeout time.Duration, logger *internal.Logger) *ChartHandler {
	if maxRuns <= 0 {
		maxRuns = 1
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ChartHandler{
		pipeline: pipeline,
		sem:      semaphore.NewWeighted(maxRuns),
		timeout:  timeout,
		logger:   logger.Named("API"),
	}
}

// HandleRunPipeline runs a PipelineRequest and returns the chart list
func (h *ChartHandler) HandleRunPipeline(c *gin.Context) {
	var req models.PipelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errors.InvalidInput("invalid request body: "+err.Error()))
		return
	}

	if !h.sem.TryAcquire(1) {
		h.fail(c, errors.Busy("too many pipeline runs in progress"))
		return
	}
	defer h.sem.Release(1)

	ctx, cancel := h.context(c)
	defer cancel()

	result, err := h.pipeline.Run(ctx, &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.logger.Info("run %s returned %d charts", result.RunID, len(result.Charts))
	c.JSON(http.StatusOK, result)
}

// HandleResolveAxis returns the axis binding for one question
func (h *ChartHandler) HandleResolveAxis(c *gin.Context) {
	var req AxisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errors.InvalidInput("invalid request body: "+err.Error()))
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	binding, err := h.pipeline.ResolveOnly(ctx, req.Summary, models.ChartRequest{
		ChartType: req.ChartType,
		Question:  req.Question,
		Title:     req.Title,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chart_type": req.ChartType, "axis_binding": binding})
}

// HandleHealth reports liveness
func (h *ChartHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *ChartHandler) context(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

func (h *ChartHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		err = errors.Timeout("chart run", err)
	case errors.Is(err, core.ErrAxisResolution):
		err = errors.ExternalServiceError("completion", err)
	}
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}
