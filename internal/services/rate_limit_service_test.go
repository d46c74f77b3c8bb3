package services_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/hormatech/blockplant/internal/models"
	"github.com/hormatech/blockplant/internal/services"
	"github.com/stretchr/testify/assert"
)

// MockThrottleStore implements ThrottleStore in memory for testing
type MockThrottleStore struct {
	records map[string]*models.ThrottleRecord
	failErr error // when set, every operation returns this error
}

func NewMockThrottleStore() *MockThrottleStore {
	return &MockThrottleStore{
		records: make(map[string]*models.ThrottleRecord),
	}
}

func (m *MockThrottleStore) Get(ctx context.Context, key string) (*models.ThrottleRecord, error) {
	if m.failErr != nil {
		return nil, m.failErr
	}
	rec, ok := m.records[key]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *rec
	return &copied, nil
}

func (m *MockThrottleStore) IncrementWindow(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	if m.failErr != nil {
		return 0, time.Time{}, m.failErr
	}

	now := time.Now()
	rec, ok := m.records[key]
	if !ok || now.After(rec.ResetAt) {
		rec = &models.ThrottleRecord{
			Key:     key,
			Count:   1,
			ResetAt: now.Add(window),
		}
		m.records[key] = rec
		return rec.Count, rec.ResetAt, nil
	}

	rec.Count++
	return rec.Count, rec.ResetAt, nil
}

func (m *MockThrottleStore) SetLock(ctx context.Context, key string, count int, lockedUntil time.Time, reason string) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.records[key] = &models.ThrottleRecord{
		Key:         key,
		Count:       count,
		ResetAt:     lockedUntil,
		LockedUntil: lockedUntil,
		LockReason:  &reason,
	}
	return nil
}

func (m *MockThrottleStore) ClearLock(ctx context.Context, key string) error {
	if m.failErr != nil {
		return m.failErr
	}
	delete(m.records, key)
	return nil
}

func (m *MockThrottleStore) Delete(ctx context.Context, keys ...string) error {
	if m.failErr != nil {
		return m.failErr
	}
	for _, key := range keys {
		delete(m.records, key)
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func TestRateLimitServiceCheck_AllowsFirstRequest(t *testing.T) {
	store := NewMockThrottleStore()
	service := services.NewRateLimitService(store, testLogger())

	result, err := service.Check(context.Background(), "login:ip:192.168.1.1", 20, 15*time.Minute)

	assert.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 19, result.Remaining)
	assert.True(t, result.ResetAt.After(time.Now()))
}

func TestRateLimitServiceCheck_RejectsWhenExhausted(t *testing.T) {
	store := NewMockThrottleStore()
	service := services.NewRateLimitService(store, testLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result, err := service.Check(ctx, "signup:user@test.com", 3, time.Hour)
		assert.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, 3-(i+1), result.Remaining)
	}

	result, err := service.Check(ctx, "signup:user@test.com", 3, time.Hour)
	assert.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)
	assert.GreaterOrEqual(t, result.RetryAfter, 1)
}

func TestRateLimitServiceCheck_RejectedRequestsStillCount(t *testing.T) {
	store := NewMockThrottleStore()
	service := services.NewRateLimitService(store, testLogger())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := service.Check(ctx, "login:ip:10.0.0.1", 2, time.Hour)
		assert.NoError(t, err)
	}

	// Counter kept climbing past the limit while rejecting
	rec, err := store.Get(ctx, "login:ip:10.0.0.1")
	assert.NoError(t, err)
	assert.Equal(t, 5, rec.Count)
}

func TestRateLimitServiceCheck_WindowExpiryResetsCounter(t *testing.T) {
	store := NewMockThrottleStore()
	service := services.NewRateLimitService(store, testLogger())
	ctx := context.Background()

	// Seed an exhausted counter whose window has already passed
	store.records["login:ip:10.0.0.9"] = &models.ThrottleRecord{
		Key:     "login:ip:10.0.0.9",
		Count:   50,
		ResetAt: time.Now().Add(-time.Minute),
	}

	result, err := service.Check(ctx, "login:ip:10.0.0.9", 20, 15*time.Minute)
	assert.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 19, result.Remaining)
}

func TestRateLimitServiceCheck_FailsOpenOnStoreError(t *testing.T) {
	store := NewMockThrottleStore()
	store.failErr = errors.New("connection refused")
	service := services.NewRateLimitService(store, testLogger())

	result, err := service.Check(context.Background(), "login:ip:10.0.0.1", 20, 15*time.Minute)

	assert.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestRateLimitServiceCheck_RejectsInvalidInputs(t *testing.T) {
	store := NewMockThrottleStore()
	service := services.NewRateLimitService(store, testLogger())
	ctx := context.Background()

	_, err := service.Check(ctx, "", 20, 15*time.Minute)
	assert.Error(t, err)

	_, err = service.Check(ctx, "login:ip:10.0.0.1", 0, 15*time.Minute)
	assert.Error(t, err)

	_, err = service.Check(ctx, "login:ip:10.0.0.1", 20, 0)
	assert.Error(t, err)
}
