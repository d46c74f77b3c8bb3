package repositories

import (
	"context"
	"time"

	"github.com/hormatech/blockplant/internal/database"
	"github.com/hormatech/blockplant/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ThrottleRepository is the access layer for the auth_throttle counter store.
// Each key is an independent row; no operation touches more than one row.
type ThrottleRepository struct {
	pool *pgxpool.Pool
}

func NewThrottleRepository(db *database.DB) *ThrottleRepository {
	return &ThrottleRepository{pool: db.Pool}
}

// Get returns the record for key, or models.ErrNotFound.
func (r *ThrottleRepository) Get(ctx context.Context, key string) (*models.ThrottleRecord, error) {
	query := `
		SELECT key, count, reset_at, locked_until, lock_reason, updated_at
		FROM auth_throttle WHERE key = $1
	`

	var rec models.ThrottleRecord
	var resetAt, lockedUntil int64
	err := r.pool.QueryRow(ctx, query, key).Scan(
		&rec.Key, &rec.Count, &resetAt, &lockedUntil, &rec.LockReason, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	rec.ResetAt = fromEpochMs(resetAt)
	if lockedUntil > 0 {
		rec.LockedUntil = fromEpochMs(lockedUntil)
	}
	return &rec, nil
}

// IncrementWindow advances the fixed-window counter for key in one atomic
// statement: a missing or expired row restarts at count=1 with a fresh window,
// a live row increments in place. Returns the post-increment count and the
// window's reset time. Concurrent callers cannot lose increments because the
// read-modify-write happens inside the upsert.
func (r *ThrottleRepository) IncrementWindow(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	now := time.Now()
	nowMs := now.UnixMilli()
	newResetMs := now.Add(window).UnixMilli()

	query := `
		INSERT INTO auth_throttle (key, count, reset_at, updated_at)
		VALUES ($1, 1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			count      = CASE WHEN auth_throttle.reset_at < $3 THEN 1 ELSE auth_throttle.count + 1 END,
			reset_at   = CASE WHEN auth_throttle.reset_at < $3 THEN $2 ELSE auth_throttle.reset_at END,
			updated_at = now()
		RETURNING count, reset_at
	`

	var count int
	var resetMs int64
	err := r.pool.QueryRow(ctx, query, key, newResetMs, nowMs).Scan(&count, &resetMs)
	if err != nil {
		return 0, time.Time{}, database.MapPostgresError(err)
	}

	return count, fromEpochMs(resetMs), nil
}

// SetLock upserts a lock row. reset_at is aligned with the lock expiry so the
// reaper can treat lock rows like any other expired counter.
func (r *ThrottleRepository) SetLock(ctx context.Context, key string, count int, lockedUntil time.Time, reason string) error {
	untilMs := lockedUntil.UnixMilli()

	query := `
		INSERT INTO auth_throttle (key, count, reset_at, locked_until, lock_reason, updated_at)
		VALUES ($1, $2, $3, $3, $4, now())
		ON CONFLICT (key) DO UPDATE SET
			count        = $2,
			reset_at     = $3,
			locked_until = $3,
			lock_reason  = $4,
			updated_at   = now()
	`

	_, err := r.pool.Exec(ctx, query, key, count, untilMs, reason)
	return database.MapPostgresError(err)
}

// ClearLock lazily clears an expired lock. The counter itself is left alone.
func (r *ThrottleRepository) ClearLock(ctx context.Context, key string) error {
	query := `
		UPDATE auth_throttle
		SET locked_until = 0, lock_reason = NULL, updated_at = now()
		WHERE key = $1
	`

	_, err := r.pool.Exec(ctx, query, key)
	return database.MapPostgresError(err)
}

// Delete removes the given keys. Deleting absent keys is not an error.
func (r *ThrottleRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	query := `DELETE FROM auth_throttle WHERE key = ANY($1)`
	_, err := r.pool.Exec(ctx, query, keys)
	return database.MapPostgresError(err)
}

// DeleteExpired purges rows whose window and lock have both passed. Lazy
// expiry on read keeps the limiter correct without this; the reaper only
// keeps the table from growing unbounded.
func (r *ThrottleRepository) DeleteExpired(ctx context.Context) (int64, error) {
	nowMs := time.Now().UnixMilli()

	query := `DELETE FROM auth_throttle WHERE reset_at < $1 AND locked_until < $1`
	tag, err := r.pool.Exec(ctx, query, nowMs)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return tag.RowsAffected(), nil
}

func fromEpochMs(ms int64) time.Time {
	return time.UnixMilli(ms)
}
