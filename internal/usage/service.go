package usage

import (
	"context"
	"errors"
	"sync"
	"time"

	"gochart/internal"
	"gochart/models"
	"gochart/ports"
)

// Service handles LLM usage tracking and persistence
type Service struct {
	repo   ports.LLMUsageRepository
	logger *internal.Logger
	wg     sync.WaitGroup
}

// ErrNoRepository is returned by the usage queries when nothing persists usage
var ErrNoRepository = errors.New("usage persistence is not configured")

// NewService creates a new usage service. repo may be nil, in which case
// usage is only tallied per run and never persisted.
func NewService(repo ports.LLMUsageRepository, logger *internal.Logger) *Service {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Service{repo: repo, logger: logger.Named("UsageService")}
}

// RecordUsage asynchronously records LLM usage for an operation
func (s *Service) RecordUsage(ctx context.Context, operationType string, usage *ports.UsageData) error {
	if usage == nil {
		s.logger.Error("nil usage data provided")
		return nil // Don't fail the caller for tracking issues
	}

	if usage.PromptTokens < 0 || usage.CompletionTokens < 0 || usage.TotalTokens < 0 {
		s.logger.Error("invalid token counts: %+v", usage)
		return nil
	}

	if s.repo == nil {
		return nil
	}

	attr := AttributionFrom(ctx)
	llmUsage := &models.LLMUsage{
		UserID:           attr.UserID,
		SessionID:        attr.SessionID,
		RunID:            attr.RunID,
		Provider:         usage.Provider,
		Model:            usage.Model,
		OperationType:    operationType,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
		CreatedAt:        time.Now().UTC(),
	}

	// Async persistence to avoid blocking LLM calls
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.persistWithRetry(llmUsage); err != nil {
			s.logger.Error("failed to persist usage after retries: %v", err)
		}
	}()

	return nil
}

// Wait blocks until pending persistence goroutines finish
func (s *Service) Wait() {
	s.wg.Wait()
}

// persistWithRetry attempts to persist usage with linear backoff
func (s *Service) persistWithRetry(usage *models.LLMUsage) error {
	const maxRetries = 3
	const baseDelay = 100 * time.Millisecond

	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err = s.repo.RecordUsage(context.Background(), usage); err == nil {
			return nil
		}

		if attempt < maxRetries-1 {
			time.Sleep(time.Duration(attempt+1) * baseDelay)
		}
	}
	return err
}

// GetUserUsageSummary returns aggregated usage for a user in a time period
func (s *Service) GetUserUsageSummary(ctx context.Context, userID string, start, end time.Time) (*models.UserUsageSummary, error) {
	if s.repo == nil {
		return nil, ErrNoRepository
	}
	return s.repo.GetUserUsageSummary(ctx, userID, start, end)
}

// GetUserUsage returns detailed usage records for a user
func (s *Service) GetUserUsage(ctx context.Context, userID string, start, end time.Time) ([]*models.LLMUsage, error) {
	if s.repo == nil {
		return nil, ErrNoRepository
	}
	return s.repo.GetUserUsage(ctx, userID, start, end)
}
