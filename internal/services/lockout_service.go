package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hormatech/blockplant/internal/models"
	pkglogger "github.com/hormatech/blockplant/pkg/logger"
)

// LockoutConfig holds the account lockout policy. Failures are counted per
// account over FailureWindow regardless of any IP throttle; breaching
// MaxFailures produces a separate lock row with its own (longer) expiry, so a
// locked account cannot free itself by waiting out a rate-limit window.
type LockoutConfig struct {
	MaxFailures   int
	FailureWindow time.Duration
	LockDuration  time.Duration
}

// LockoutService tracks consecutive credential failures per email and imposes
// a timed lock once the threshold is breached. Unlike the rate limiter, every
// operation here fails closed: a storage error propagates and the caller must
// deny the login, so an imposed lock can never be bypassed by a storage blip.
type LockoutService struct {
	store  ThrottleStore
	config LockoutConfig
	logger *slog.Logger
}

func NewLockoutService(store ThrottleStore, config LockoutConfig, logger *slog.Logger) *LockoutService {
	return &LockoutService{store: store, config: config, logger: logger}
}

// IsLocked reports whether the account is currently locked. An expired lock
// is cleared lazily on observation, which is what makes locks self-healing
// without a background sweeper.
func (s *LockoutService) IsLocked(ctx context.Context, email string) (bool, error) {
	rec, err := s.store.Get(ctx, lockKey(email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read lock state: %w", err)
	}

	if rec.LockedUntil.IsZero() {
		return false, nil
	}

	now := time.Now()
	if now.Before(rec.LockedUntil) {
		return true, nil
	}

	// Lock has expired; clear it so later reads are cheap. Best effort only,
	// an unexpired lock is never cleared here.
	if err := s.store.ClearLock(ctx, lockKey(email)); err != nil {
		s.logger.Warn("failed to clear expired lock",
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.Any("error", err))
	}

	return false, nil
}

// LockRemaining returns the remaining lock time in whole seconds (rounded up),
// or 0 when not locked. Read-only: unlike IsLocked it never mutates state.
func (s *LockoutService) LockRemaining(ctx context.Context, email string) (int, error) {
	rec, err := s.store.Get(ctx, lockKey(email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read lock state: %w", err)
	}

	if rec.LockedUntil.IsZero() {
		return 0, nil
	}
	return secondsUntil(rec.LockedUntil), nil
}

// RecordFailure counts one credential failure against the account and locks
// it once the threshold is reached.
func (s *LockoutService) RecordFailure(ctx context.Context, email string) (*models.FailedLoginResult, error) {
	count, _, err := s.store.IncrementWindow(ctx, failedLoginKey(email), s.config.FailureWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to record login failure: %w", err)
	}

	if count < s.config.MaxFailures {
		return &models.FailedLoginResult{Locked: false, Attempts: count}, nil
	}

	lockedUntil := time.Now().Add(s.config.LockDuration)
	reason := fmt.Sprintf("%d failed login attempts", count)
	if err := s.store.SetLock(ctx, lockKey(email), count, lockedUntil, reason); err != nil {
		return nil, fmt.Errorf("failed to impose account lock: %w", err)
	}

	s.logger.Warn("account locked after repeated failures",
		slog.String("email", pkglogger.SanitizedEmail(email)),
		slog.Int("attempts", count),
		slog.Duration("lock_duration", s.config.LockDuration))

	return &models.FailedLoginResult{
		Locked:        true,
		Attempts:      count,
		LockRemaining: int(s.config.LockDuration / time.Second),
	}, nil
}

// Reset clears both the failure counter and any lock for the account. Called
// on every successful authentication; idempotent.
func (s *LockoutService) Reset(ctx context.Context, email string) error {
	if err := s.store.Delete(ctx, failedLoginKey(email), lockKey(email)); err != nil {
		return fmt.Errorf("failed to reset login failures: %w", err)
	}
	return nil
}
