package repository

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"courtside/internal/domain"
)

// FailoverRateLimitStore routes to the primary store until it errors, then
// serves from the fallback and periodically retries the primary.
type FailoverRateLimitStore struct {
	primary   domain.RateLimitStore
	fallback  domain.RateLimitStore
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverRateLimitStore(primary, fallback domain.RateLimitStore, logger *zerolog.Logger) *FailoverRateLimitStore {
	return &FailoverRateLimitStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverRateLimitStore) Allow(ctx context.Context, userID string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() || r.shouldRetryPrimary() {
		allowed, err := r.primary.Allow(ctx, userID, limit, window)
		if err == nil {
			r.isDown.Store(false)
			return allowed, nil
		}
		r.logger.Error().Err(err).Msg("Primary rate limit store failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.Allow(ctx, userID, limit, window)
}

// shouldRetryPrimary allows one probe of the primary per minute while it is
// marked down.
func (r *FailoverRateLimitStore) shouldRetryPrimary() bool {
	last := time.Unix(0, r.lastCheck.Load())
	return time.Since(last) > time.Minute
}
