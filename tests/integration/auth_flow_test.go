package integration

import (
	"context"
	"testing"
	"time"

	"github.com/hormatech/blockplant/internal/auth"
	"github.com/hormatech/blockplant/internal/config"
	"github.com/hormatech/blockplant/internal/models"
	"github.com/hormatech/blockplant/internal/repositories"
	"github.com/hormatech/blockplant/internal/services"
	pkglogger "github.com/hormatech/blockplant/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthService(t *testing.T, cfg config.AuthConfig) (*services.AuthService, *TestDB) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	tdb, err := SetupTestDatabase(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { tdb.Teardown(context.Background()) })

	userRepo := repositories.NewUserRepository(tdb.DB)
	throttleRepo := repositories.NewThrottleRepository(tdb.DB)

	limiter := services.NewRateLimitService(throttleRepo, tdb.Logger)
	lockout := services.NewLockoutService(throttleRepo, services.LockoutConfig{
		MaxFailures:   cfg.MaxFailedLogins,
		FailureWindow: cfg.FailedLoginWindow,
		LockDuration:  cfg.LockDuration,
	}, tdb.Logger)
	sessions := auth.NewSessionManager(cfg.JWTSecret, cfg.SessionExpiry)
	timing := auth.NewTimingDelay(auth.TimingConfig{})
	audit := pkglogger.NewAuditLogger(tdb.Logger)

	return services.NewAuthService(userRepo, limiter, lockout, sessions, timing, services.NoopNotifier{}, tdb.Logger, audit, cfg), tdb
}

func integrationAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:     "integration-test-secret-key",
		SessionExpiry: time.Hour,

		LoginIPMaxAttempts: 20,
		LoginIPWindow:      15 * time.Minute,

		SignupEmailMaxAttempts: 3,
		SignupEmailWindow:      time.Hour,
		SignupIPMaxAttempts:    10,
		SignupIPWindow:         time.Hour,

		MaxFailedLogins:   5,
		FailedLoginWindow: time.Hour,
		LockDuration:      time.Hour,
	}
}

func TestAuthFlow_SignupThenLogin(t *testing.T) {
	service, _ := setupAuthService(t, integrationAuthConfig())
	ctx := context.Background()

	signup, err := service.Signup(ctx, "operator@plant.test", "Str0ngPassword", "Test Operator", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "operator", signup.User.Role)

	login, err := service.Login(ctx, "operator@plant.test", "Str0ngPassword", "10.0.0.1", "test-agent")
	require.NoError(t, err)
	assert.Equal(t, signup.User.ID, login.User.ID)
	assert.NotEmpty(t, login.Token)
}

func TestAuthFlow_RepeatedFailuresLockTheAccount(t *testing.T) {
	service, _ := setupAuthService(t, integrationAuthConfig())
	ctx := context.Background()

	_, err := service.Signup(ctx, "operator@plant.test", "Str0ngPassword", "Test Operator", "10.0.0.1")
	require.NoError(t, err)

	for i := 1; i <= 4; i++ {
		_, err = service.Login(ctx, "operator@plant.test", "wrong-password", "10.0.0.1", "test-agent")
		var credsErr *models.InvalidCredentialsError
		require.ErrorAs(t, err, &credsErr)
		assert.Equal(t, i, credsErr.Attempts)
	}

	_, err = service.Login(ctx, "operator@plant.test", "wrong-password", "10.0.0.1", "test-agent")
	var lockedErr *models.AccountLockedError
	require.ErrorAs(t, err, &lockedErr)
	assert.Equal(t, 3600, lockedErr.UnlockIn)

	// Correct credentials are refused while the lock holds, and the lock
	// state survives a fresh service instance because it lives in the table
	_, err = service.Login(ctx, "operator@plant.test", "Str0ngPassword", "10.0.0.1", "test-agent")
	require.ErrorAs(t, err, &lockedErr)
	assert.Greater(t, lockedErr.UnlockIn, 3500)
}

func TestAuthFlow_SignupEmailThrottle(t *testing.T) {
	service, _ := setupAuthService(t, integrationAuthConfig())
	ctx := context.Background()

	_, err := service.Signup(ctx, "greedy@plant.test", "Str0ngPassword", "Greedy", "10.0.0.1")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = service.Signup(ctx, "greedy@plant.test", "Str0ngPassword", "Greedy", "10.0.0.1")
		assert.ErrorIs(t, err, models.ErrConflict)
	}

	_, err = service.Signup(ctx, "greedy@plant.test", "Str0ngPassword", "Greedy", "10.0.0.1")
	var limitedErr *models.RateLimitedError
	require.ErrorAs(t, err, &limitedErr)
	assert.GreaterOrEqual(t, limitedErr.RetryAfter, 1)
}
