package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hormatech/blockplant/internal/models"
)

// ThrottleStore defines the counter-store operations the auth services need.
type ThrottleStore interface {
	Get(ctx context.Context, key string) (*models.ThrottleRecord, error)
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int, time.Time, error)
	SetLock(ctx context.Context, key string, count int, lockedUntil time.Time, reason string) error
	ClearLock(ctx context.Context, key string) error
	Delete(ctx context.Context, keys ...string) error
}

// RateLimitService implements fixed-window request counting over the shared
// counter store. Fixed windows allow up to 2x the nominal rate across a window
// boundary; for login/signup throttling that is an accepted tradeoff against
// the simplicity of a single-row counter.
type RateLimitService struct {
	store  ThrottleStore
	logger *slog.Logger
}

func NewRateLimitService(store ThrottleStore, logger *slog.Logger) *RateLimitService {
	return &RateLimitService{store: store, logger: logger}
}

// Check counts one request against key and decides whether it is allowed.
// Rejection is a result, not an error. Storage failures fail open with a
// logged warning: a counter-store blip must not take authentication down,
// and lock enforcement (which fails closed) lives in LockoutService.
func (s *RateLimitService) Check(ctx context.Context, key string, maxAttempts int, window time.Duration) (*models.RateLimitResult, error) {
	if key == "" {
		return nil, fmt.Errorf("rate limit key must not be empty")
	}
	if maxAttempts <= 0 || window <= 0 {
		return nil, fmt.Errorf("rate limit parameters must be positive (max=%d window=%s)", maxAttempts, window)
	}

	count, resetAt, err := s.store.IncrementWindow(ctx, key, window)
	if err != nil {
		s.logger.Warn("rate limit check failed open",
			slog.String("key", key),
			slog.Any("error", err))
		return &models.RateLimitResult{
			Allowed:   true,
			Remaining: maxAttempts - 1,
			ResetAt:   time.Now().Add(window),
		}, nil
	}

	if count > maxAttempts {
		return &models.RateLimitResult{
			Allowed:    false,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: secondsUntil(resetAt),
		}, nil
	}

	return &models.RateLimitResult{
		Allowed:   true,
		Remaining: maxAttempts - count,
		ResetAt:   resetAt,
	}, nil
}

// secondsUntil rounds up to whole seconds and never reports less than 1s for
// a deadline that has not passed.
func secondsUntil(t time.Time) int {
	d := time.Until(t)
	if d <= 0 {
		return 0
	}
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
