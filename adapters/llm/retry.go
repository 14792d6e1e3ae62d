package llm

import (
	"context"
	"errors"
	"time"

	"gochart/internal"
	"gochart/ports"
)

// PermanentError marks a completion failure that retrying cannot fix
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// IsPermanent reports whether err carries a PermanentError
func IsPermanent(err error) bool {
	var pErr *PermanentError
	return errors.As(err, &pErr)
}

// RetryingClient retries transport failures with exponential backoff.
// These retries are independent of the resolver's content attempts.
type RetryingClient struct {
	next      ports.CompletionClient
	retries   int
	baseDelay time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
	logger    *internal.Logger
}

// NewRetryingClient wraps next with up to retries extra attempts
func NewRetryingClient(next ports.CompletionClient, retries int, baseDelay time.Duration, logger *internal.Logger) *RetryingClient {
	if retries < 0 {
		retries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &RetryingClient{
		next:      next,
		retries:   retries,
		baseDelay: baseDelay,
		sleep:     sleepContext,
		logger:    logger.Named("RetryingClient"),
	}
}

// Complete forwards to the wrapped client, retrying transient errors
func (r *RetryingClient) Complete(ctx context.Context, req ports.CompletionRequest) (*ports.CompletionResponse, error) {
	var last error
	for i := 0; i <= r.retries; i++ {
		resp, err := r.next.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		if IsPermanent(err) {
			return nil, err
		}
		last = err
		if i == r.retries {
			break
		}
		r.logger.Warn("transient completion error (attempt %d/%d): %v", i+1, r.retries+1, err)
		if err := r.sleep(ctx, r.baseDelay*time.Duration(1<<i)); err != nil {
			return nil, err
		}
	}
	return nil, last
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
