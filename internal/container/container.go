package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"gochart/adapters/feedback"
	"gochart/adapters/llm"
	"gochart/adapters/postgres"
	"gochart/ai"
	"gochart/app"
	"gochart/internal"
	"gochart/internal/api"
	"gochart/internal/charts"
	"gochart/internal/config"
	"gochart/internal/errors"
	"gochart/internal/migration"
	"gochart/internal/usage"
	"gochart/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Collaborators
	Completion ports.CompletionClient
	Feedback   ports.FeedbackStore
	Audit      ports.AuditLogger
	Queries    ports.QueryExecutor
	Usage      *usage.Service

	// Pipeline components
	Prompts  *ai.PromptManager
	Resolver *app.AxisResolver
	Orderer  *app.CategoryOrderer
	Registry *charts.Registry
	Pipeline *app.PipelineService
	Events   *api.SSEHub
}

// New wires the container without a database. The completion client may be
// overridden afterwards for tests and dry runs.
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, errors.ConfigInvalid("config cannot be nil")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	c := &Container{Config: cfg, Logger: logger}

	c.initCollaborators(nil)
	c.initPipeline()
	return c, nil
}

// InitWithDatabase connects the target database, migrates the feedback and
// usage tables and rewires the database-backed collaborators.
func (c *Container) InitWithDatabase(ctx context.Context) error {
	if c.Config.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", c.Config.Database.URL)
	if err != nil {
		return errors.DatabaseError("failed to connect to database", err)
	}
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return errors.Wrap(err, "database migration failed")
	}
	c.DB = db

	c.initCollaborators(db)
	c.initPipeline()
	c.Logger.Info("container initialized with database connection")
	return nil
}

// UseCompletionClient replaces the completion client and rebuilds the
// pipeline around it.
func (c *Container) UseCompletionClient(client ports.CompletionClient) {
	c.Completion = usage.NewTrackingClient(client, c.Usage)
	c.initPipeline()
}

func (c *Container) initCollaborators(db *sqlx.DB) {
	cfg := c.Config

	var usageRepo ports.LLMUsageRepository
	if db != nil {
		usageRepo = postgres.NewLLMUsageRepository(db)
		c.Queries = postgres.NewQueryExecutor(db, 0)
	}
	c.Usage = usage.NewService(usageRepo, c.Logger)

	var transport ports.CompletionClient = llm.NewOpenAIClient(cfg.LLM)
	if cfg.LLM.TransportRetries > 0 {
		transport = llm.NewRetryingClient(transport, cfg.LLM.TransportRetries, cfg.LLM.RetryBaseDelay, c.Logger)
	}
	c.Completion = usage.NewTrackingClient(transport, c.Usage)

	switch {
	case cfg.Logging.URL != "":
		client := feedback.NewHTTPClient(cfg.Logging.URL, cfg.Logging.Timeout)
		c.Audit = client
		c.Feedback = feedback.NewCachedStore(client, cfg.Logging.FeedbackCacheSize, cfg.Logging.FeedbackCacheTTL)
	case db != nil:
		c.Audit = feedback.Noop{Logger: c.Logger}
		c.Feedback = feedback.NewCachedStore(postgres.NewFeedbackRepository(db), cfg.Logging.FeedbackCacheSize, cfg.Logging.FeedbackCacheTTL)
	default:
		c.Audit = feedback.Noop{Logger: c.Logger}
		c.Feedback = feedback.Noop{Logger: c.Logger}
	}
}

func (c *Container) initPipeline() {
	cfg := c.Config
	modelConfig := app.AxisResolverConfig{
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Attempts:    cfg.Pipeline.ContentAttempts,
		ModuleIDs:   cfg.Pipeline.ModuleIDs,
	}

	c.Prompts = ai.NewPromptManager(cfg.Pipeline.PromptsDir)
	c.Resolver = app.NewAxisResolver(
		c.Completion,
		c.Feedback,
		c.Audit,
		app.NewPromptBuilder(c.Prompts, cfg.Pipeline.IndustryDomain, cfg.Pipeline.TargetTokenLimit),
		modelConfig,
		c.Logger,
	)
	c.Orderer = app.NewCategoryOrderer(c.Completion, c.Audit, c.Prompts, modelConfig, c.Logger)
	c.Registry = charts.NewRegistry(charts.Deps{
		Orderer:       c.Orderer,
		DateBuckets:   charts.NewDateBucketer(0),
		TableRowLimit: cfg.Pipeline.TableRowLimit,
		Logger:        c.Logger,
	})
	c.Pipeline = app.NewPipelineService(c.Resolver, c.Registry, c.Queries, c.Audit, c.Logger)
	if c.Events != nil {
		c.Pipeline.SetEventSink(c.Events)
	}
}

// EnableEvents starts the run event hub and connects it to the pipeline
func (c *Container) EnableEvents() *api.SSEHub {
	if c.Events == nil {
		c.Events = api.NewSSEHub(c.Logger)
		c.Pipeline.SetEventSink(c.Events)
	}
	return c.Events
}

// Shutdown waits for pending usage writes and releases resources
func (c *Container) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.Usage.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		c.Logger.Warn("shutdown before pending usage writes finished: %v", ctx.Err())
	}

	if c.Events != nil {
		c.Events.Close()
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
	}
	return nil
}
