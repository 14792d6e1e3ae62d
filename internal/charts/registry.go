package charts

import (
	"context"
	"fmt"

	"gochart/domain/chart"
	"gochart/domain/core"
	"gochart/domain/frame"
	"gochart/internal"
)

// MaxRedirects bounds how many chart type substitutions one build may take
const MaxRedirects = 4

// Request is everything a builder needs to shape one chart
type Request struct {
	ChartID   string
	Question  string
	Title     string
	Query     string
	Position  int
	Type      chart.ChartType
	Origin    chart.ChartType // type that redirected here, if any
	Binding   chart.AxisBinding
	Frame     *frame.Frame
	UserID    string
	SessionID string
}

// Builder shapes a query result into one chart type, or redirects to another
type Builder interface {
	Build(ctx context.Context, req Request) (chart.Outcome, error)
}

// BuilderFunc adapts a function to Builder
type BuilderFunc func(ctx context.Context, req Request) (chart.Outcome, error)

func (f BuilderFunc) Build(ctx context.Context, req Request) (chart.Outcome, error) {
	return f(ctx, req)
}

// CategoryOrderer proposes a reading order for grouped bar categories
type CategoryOrderer interface {
	OrderCategories(ctx context.Context, question string, labels []string) ([]string, error)
}

// Deps are the collaborators builders may use. All fields are optional.
type Deps struct {
	Orderer       CategoryOrderer
	DateBuckets   *DateBucketer
	TableRowLimit int
	Logger        *internal.Logger
}

// Registry dispatches chart types to builders and resolves redirects
type Registry struct {
	builders map[chart.ChartType]Builder
	logger   *internal.Logger
}

// NewRegistry registers a builder for every chart type
func NewRegistry(deps Deps) *Registry {
	if deps.Logger == nil {
		deps.Logger = internal.DefaultLogger
	}
	logger := deps.Logger.Named("ChartBuilder")
	deps.Logger = logger
	b := &builders{deps: deps}

	return &Registry{
		logger: logger,
		builders: map[chart.ChartType]Builder{
			chart.TypeBar:           BuilderFunc(b.bar),
			chart.TypeColumn:        BuilderFunc(b.bar),
			chart.TypeGroupedBar:    BuilderFunc(b.groupedBar),
			chart.TypeLine:          BuilderFunc(b.line),
			chart.TypeSpline:        BuilderFunc(b.line),
			chart.TypeArea:          BuilderFunc(b.line),
			chart.TypePie:           BuilderFunc(b.pie),
			chart.TypePyramidFunnel: BuilderFunc(b.pyramid),
			chart.TypeRadar:         BuilderFunc(b.radar),
			chart.TypeScatterplot:   BuilderFunc(b.scatter),
			chart.TypeBubbleplot:    BuilderFunc(b.scatter),
			chart.TypeHistogram:     BuilderFunc(b.histogram),
			chart.TypeTreemap:       BuilderFunc(b.treemap),
			chart.TypeBarLineCombo:  BuilderFunc(b.combo),
			chart.TypeTable:         BuilderFunc(b.table),
			chart.TypeFullTable:     BuilderFunc(b.table),
			chart.TypeCard:          BuilderFunc(b.card),
		},
	}
}

// Supports reports whether t has a registered builder
func (r *Registry) Supports(t chart.ChartType) bool {
	_, ok := r.builders[t]
	return ok
}

// Build runs the builder for req.Type, following redirects until a payload
// is produced or MaxRedirects is exceeded.
func (r *Registry) Build(ctx context.Context, req Request) (chart.Payload, error) {
	for depth := 0; ; depth++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, ok := r.builders[req.Type]
		if !ok {
			return nil, fmt.Errorf("%w: %s", core.ErrUnknownChartType, req.Type)
		}

		outcome, err := b.Build(ctx, req)
		if err != nil {
			return nil, err
		}
		if !outcome.IsRedirect() {
			return outcome.Payload(), nil
		}

		rd := outcome.Redirect()
		if depth >= MaxRedirects {
			return nil, fmt.Errorf("%w: %s -> %s", core.ErrRedirectLimit, req.Type, rd.To)
		}
		r.logger.Info("%s -> %s: %s", req.Type, rd.To, rd.Reason)
		req.Origin = req.Type
		req.Type = rd.To
		req.Binding = rd.Binding
	}
}

type builders struct {
	deps Deps
}

func header(req Request) chart.Header {
	title := req.Title
	if title == "" {
		title = req.Question
	}
	return chart.Header{
		ChartID:       req.ChartID,
		ChartType:     req.Type,
		ChartTitle:    title,
		ChartQuery:    req.Query,
		ChartPosition: req.Position,
		UserID:        req.UserID,
		SessionID:     req.SessionID,
	}
}
