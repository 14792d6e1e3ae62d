package feedback

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"gochart/internal"
	"gochart/models"
	"gochart/ports"
)

// CachedStore memoizes feedback lookups for a bounded time
type CachedStore struct {
	next  ports.FeedbackStore
	cache *expirable.LRU[string, []models.FeedbackRecord]
}

// NewCachedStore wraps next with an LRU of size entries expiring after ttl
func NewCachedStore(next ports.FeedbackStore, size int, ttl time.Duration) *CachedStore {
	if size <= 0 {
		size = 256
	}
	return &CachedStore{
		next:  next,
		cache: expirable.NewLRU[string, []models.FeedbackRecord](size, nil, ttl),
	}
}

func (s *CachedStore) FetchFeedback(ctx context.Context, field, value string) ([]models.FeedbackRecord, error) {
	key := field + "\x1f" + value
	if records, ok := s.cache.Get(key); ok {
		return records, nil
	}
	records, err := s.next.FetchFeedback(ctx, field, value)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, records)
	return records, nil
}

// Invalidate drops every cached lookup
func (s *CachedStore) Invalidate() {
	s.cache.Purge()
}

// Noop is used when no logging service is configured
type Noop struct {
	Logger *internal.Logger
}

func (Noop) FetchFeedback(context.Context, string, string) ([]models.FeedbackRecord, error) {
	return nil, nil
}

func (n Noop) RegisterChart(_ context.Context, record *models.ChartAuditRecord) (string, error) {
	logger := n.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	logger.Named("Feedback").Debug("no logging service configured, chart %s not registered", record.ChartType)
	return "", nil
}

func (Noop) RecordLLMCall(context.Context, *models.LLMCallRecord) error {
	return nil
}
