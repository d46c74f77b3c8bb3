package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hormatech/blockplant/internal/auth"
	"github.com/hormatech/blockplant/internal/config"
	"github.com/hormatech/blockplant/internal/models"
	pkgauth "github.com/hormatech/blockplant/pkg/auth"
	pkglogger "github.com/hormatech/blockplant/pkg/logger"
)

// UserRepository defines the identity-store operations the auth flow needs.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
}

// AuthService orchestrates login and signup. The login path runs, in order:
// lockout check, IP rate limit, credential verification, failure recording or
// reset. The lock check deliberately runs before the IP limit so a locked
// account answers the same way regardless of the caller's IP budget; the
// resulting response-shape difference between "locked" and "IP limited" is a
// known, accepted enumeration side channel.
type AuthService struct {
	users    UserRepository
	limiter  *RateLimitService
	lockout  *LockoutService
	sessions *auth.SessionManager
	timing   *auth.TimingDelay
	notifier Notifier
	logger   *slog.Logger
	audit    *pkglogger.AuditLogger
	cfg      config.AuthConfig
}

func NewAuthService(
	users UserRepository,
	limiter *RateLimitService,
	lockout *LockoutService,
	sessions *auth.SessionManager,
	timing *auth.TimingDelay,
	notifier Notifier,
	logger *slog.Logger,
	audit *pkglogger.AuditLogger,
	cfg config.AuthConfig,
) *AuthService {
	return &AuthService{
		users:    users,
		limiter:  limiter,
		lockout:  lockout,
		sessions: sessions,
		timing:   timing,
		notifier: notifier,
		logger:   logger,
		audit:    audit,
		cfg:      cfg,
	}
}

// UserResponse is the user shape returned to clients
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

// AuthResponse carries the outcome of a successful login or signup. The token
// is delivered via an HttpOnly cookie and never appears in a response body.
type AuthResponse struct {
	User  *UserResponse `json:"user"`
	Token string        `json:"-"`
}

// Login authenticates a user. Policy denials come back as typed errors
// (AccountLockedError, RateLimitedError, InvalidCredentialsError); only
// storage and provider failures surface as ErrInternalServer.
func (s *AuthService) Login(ctx context.Context, email, password, ip, userAgent string) (*AuthResponse, error) {
	email = normalizeEmail(email)

	// Lockout check runs first and fails closed.
	locked, err := s.lockout.IsLocked(ctx, email)
	if err != nil {
		s.logger.Error("lockout check failed", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if locked {
		remaining, err := s.lockout.LockRemaining(ctx, email)
		if err != nil {
			s.logger.Error("failed to read lock remaining", slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		s.audit.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_blocked",
			Email:         email,
			IPAddress:     ip,
			UserAgent:     userAgent,
			FailureReason: "account_locked",
		})
		return nil, &models.AccountLockedError{UnlockIn: remaining}
	}

	// IP-only throttle. Keying by email here would leak which accounts exist
	// through limiter behavior, so the pre-credential limit is per-IP only.
	limit, err := s.limiter.Check(ctx, IPAuthKey(KeyKindLogin, ip), s.cfg.LoginIPMaxAttempts, s.cfg.LoginIPWindow)
	if err != nil {
		s.logger.Error("login rate limit check failed", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if !limit.Allowed {
		s.audit.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_blocked",
			IPAddress:     ip,
			UserAgent:     userAgent,
			FailureReason: "ip_rate_limited",
		})
		return nil, &models.RateLimitedError{RetryAfter: limit.RetryAfter}
	}

	// Credential verification against the identity store.
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Burn a hash comparison so a missing account costs the same as a
			// wrong password.
			_ = pkgauth.ComparePassword(dummyHash, password)
			return nil, s.failLogin(ctx, email, ip, userAgent, "unknown_account")
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !user.Active {
		return nil, s.failLogin(ctx, email, ip, userAgent, "account_inactive")
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, s.failLogin(ctx, email, ip, userAgent, "invalid_password")
	}

	// Success: clear failure state before anything else.
	if err := s.lockout.Reset(ctx, email); err != nil {
		// Stale counters self-expire within the failure window; not fatal.
		s.logger.Warn("failed to reset login failures", slog.Any("error", err))
	}

	token, err := s.sessions.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		s.logger.Error("failed to issue session", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	s.audit.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		UserID:    user.ID,
		IPAddress: ip,
		UserAgent: userAgent,
		Success:   true,
	})

	return &AuthResponse{
		User:  userModelToResponse(user),
		Token: token,
	}, nil
}

// failLogin records a credential failure and converts the outcome into the
// right policy error. The fifth consecutive failure flips the response from
// "invalid credentials" to "locked".
func (s *AuthService) failLogin(ctx context.Context, email, ip, userAgent, reason string) error {
	result, err := s.lockout.RecordFailure(ctx, email)
	if err != nil {
		s.logger.Error("failed to record login failure", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.audit.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     "login_failed",
		Email:         email,
		IPAddress:     ip,
		UserAgent:     userAgent,
		FailureReason: reason,
		Attempts:      result.Attempts,
	})

	s.timing.Wait(false)

	if result.Locked {
		s.notifyLockout(email, result.LockRemaining)
		return &models.AccountLockedError{UnlockIn: result.LockRemaining}
	}
	return &models.InvalidCredentialsError{Attempts: result.Attempts}
}

// Signup creates a new team-member account behind two independent throttles:
// one keyed by the (normalized) email, one by IP.
func (s *AuthService) Signup(ctx context.Context, email, password, name, ip string) (*AuthResponse, error) {
	email = normalizeEmail(email)

	emailLimit, err := s.limiter.Check(ctx, AuthKey(KeyKindSignup, email), s.cfg.SignupEmailMaxAttempts, s.cfg.SignupEmailWindow)
	if err != nil {
		s.logger.Error("signup email rate limit check failed", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if !emailLimit.Allowed {
		return nil, &models.RateLimitedError{RetryAfter: emailLimit.RetryAfter}
	}

	ipLimit, err := s.limiter.Check(ctx, IPAuthKey(KeyKindSignup, ip), s.cfg.SignupIPMaxAttempts, s.cfg.SignupIPWindow)
	if err != nil {
		s.logger.Error("signup ip rate limit check failed", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if !ipLimit.Allowed {
		return nil, &models.RateLimitedError{RetryAfter: ipLimit.RetryAfter}
	}

	if err := pkgauth.ValidatePassword(password); err != nil {
		return nil, models.ErrBadRequest
	}

	hashed, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	created, err := s.users.Create(ctx, &models.User{
		Email:        email,
		PasswordHash: hashed,
		Name:         name,
		Role:         "operator",
		Active:       true,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user signed up", slog.String("user_id", created.ID))
	s.audit.LogAccountAction("user_signed_up", created.ID, ip)
	s.notifyWelcome(created.Email, created.Name)

	return &AuthResponse{User: userModelToResponse(created)}, nil
}

func (s *AuthService) notifyLockout(email string, unlockIn int) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.notifier.SendLockoutNotice(ctx, email, unlockIn)
	}()
}

func (s *AuthService) notifyWelcome(email, name string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.notifier.SendWelcome(ctx, email, name)
	}()
}

func userModelToResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

// dummyHash is a valid bcrypt hash of a random string, used to equalize the
// cost of login attempts against unknown accounts.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"
