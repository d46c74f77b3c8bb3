package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/hormatech/blockplant/internal/auth"
	"github.com/hormatech/blockplant/internal/models"
	"github.com/hormatech/blockplant/internal/services"
	pkghttp "github.com/hormatech/blockplant/pkg/http"
)

// AuthServiceInterface defines the auth business logic used by the handler
type AuthServiceInterface interface {
	Login(ctx context.Context, email, password, ip, userAgent string) (*services.AuthResponse, error)
	Signup(ctx context.Context, email, password, name, ip string) (*services.AuthResponse, error)
}

// AuthHandler handles login, signup and logout
type AuthHandler struct {
	service      AuthServiceInterface
	ipConfig     *pkghttp.IPConfig
	cookieConfig auth.CookieConfig
	sessions     *auth.SessionManager
}

func NewAuthHandler(service AuthServiceInterface, sessions *auth.SessionManager, ipConfig *pkghttp.IPConfig, cookieConfig auth.CookieConfig) *AuthHandler {
	return &AuthHandler{
		service:      service,
		ipConfig:     ipConfig,
		cookieConfig: cookieConfig,
		sessions:     sessions,
	}
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest is the request body for signup
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required,min=1"`
}

type authSuccessResponse struct {
	User    *services.UserResponse `json:"user"`
	Message string                 `json:"message"`
}

type lockedResponse struct {
	Error    string `json:"error"`
	Locked   bool   `json:"locked"`
	UnlockIn int    `json:"unlockIn"`
}

type rateLimitedResponse struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter"`
}

type badCredentialsResponse struct {
	Error    string `json:"error"`
	Attempts int    `json:"attempts"`
}

// Login handles POST /auth/login. Validation failures never consume attempt
// budget; the service is only consulted once the input has a plausible shape.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	ip := pkghttp.ExtractClientIP(r, h.ipConfig)
	userAgent := r.Header.Get("User-Agent")

	resp, err := h.service.Login(r.Context(), req.Email, req.Password, ip, userAgent)
	if err != nil {
		h.writeLoginError(w, err)
		return
	}

	auth.SetSessionCookie(w, resp.Token, h.sessions.SessionExpiry(), h.cookieConfig)
	pkghttp.WriteJSON(w, http.StatusOK, authSuccessResponse{
		User:    resp.User,
		Message: "Login successful",
	})
}

func (h *AuthHandler) writeLoginError(w http.ResponseWriter, err error) {
	var lockedErr *models.AccountLockedError
	var limitedErr *models.RateLimitedError
	var credsErr *models.InvalidCredentialsError

	switch {
	case errors.As(err, &lockedErr):
		pkghttp.SetRetryAfter(w, lockedErr.UnlockIn)
		pkghttp.WriteJSON(w, http.StatusForbidden, lockedResponse{
			Error:    "Account temporarily locked due to repeated failed attempts",
			Locked:   true,
			UnlockIn: lockedErr.UnlockIn,
		})
	case errors.As(err, &limitedErr):
		pkghttp.SetRetryAfter(w, limitedErr.RetryAfter)
		pkghttp.WriteJSON(w, http.StatusTooManyRequests, rateLimitedResponse{
			Error:      "Too many login attempts. Please try again later.",
			RetryAfter: limitedErr.RetryAfter,
		})
	case errors.As(err, &credsErr):
		pkghttp.WriteJSON(w, http.StatusUnauthorized, badCredentialsResponse{
			Error:    "Invalid email or password",
			Attempts: credsErr.Attempts,
		})
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}

// Signup handles POST /auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	ip := pkghttp.ExtractClientIP(r, h.ipConfig)

	resp, err := h.service.Signup(r.Context(), req.Email, req.Password, req.Name, ip)
	if err != nil {
		var limitedErr *models.RateLimitedError
		switch {
		case errors.As(err, &limitedErr):
			pkghttp.SetRetryAfter(w, limitedErr.RetryAfter)
			pkghttp.WriteJSON(w, http.StatusTooManyRequests, rateLimitedResponse{
				Error:      "Too many signup attempts. Please try again later.",
				RetryAfter: limitedErr.RetryAfter,
			})
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "An account with this email already exists")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Password does not meet requirements")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, authSuccessResponse{
		User:    resp.User,
		Message: "Account created",
	})
}

// Logout handles POST /auth/logout by clearing the session cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.cookieConfig)
	w.WriteHeader(http.StatusNoContent)
}
