package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hormatech/blockplant/internal/auth"
	"github.com/hormatech/blockplant/internal/handlers"
	"github.com/hormatech/blockplant/internal/models"
	"github.com/hormatech/blockplant/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockAuthService scripts the outcome of Login and Signup
type MockAuthService struct {
	loginResp  *services.AuthResponse
	loginErr   error
	signupResp *services.AuthResponse
	signupErr  error

	lastEmail string
}

func (m *MockAuthService) Login(ctx context.Context, email, password, ip, userAgent string) (*services.AuthResponse, error) {
	m.lastEmail = email
	return m.loginResp, m.loginErr
}

func (m *MockAuthService) Signup(ctx context.Context, email, password, name, ip string) (*services.AuthResponse, error) {
	m.lastEmail = email
	return m.signupResp, m.signupErr
}

func newAuthHandler(service *MockAuthService) *handlers.AuthHandler {
	sessions := auth.NewSessionManager("test-secret-key-with-length", time.Hour)
	return handlers.NewAuthHandler(service, sessions, nil, auth.DefaultCookieConfig("test"))
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "10.0.0.1:54321"
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestAuthHandlerLogin_Success(t *testing.T) {
	service := &MockAuthService{
		loginResp: &services.AuthResponse{
			User: &services.UserResponse{
				ID:    "user-1",
				Email: "operator@plant.test",
				Name:  "Test Operator",
				Role:  "operator",
			},
			Token: "signed-session-token",
		},
	}
	handler := newAuthHandler(service)

	rec := postJSON(t, handler.Login, `{"email":"operator@plant.test","password":"Str0ngPassword"}`)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		User    map[string]interface{} `json:"user"`
		Message string                 `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "user-1", body.User["id"])
	assert.Equal(t, "Login successful", body.Message)

	// The raw token travels only in the HttpOnly cookie
	assert.NotContains(t, rec.Body.String(), "signed-session-token")
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.SessionCookieName, cookies[0].Name)
	assert.Equal(t, "signed-session-token", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestAuthHandlerLogin_AccountLocked(t *testing.T) {
	service := &MockAuthService{loginErr: &models.AccountLockedError{UnlockIn: 3600}}
	handler := newAuthHandler(service)

	rec := postJSON(t, handler.Login, `{"email":"operator@plant.test","password":"Str0ngPassword"}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "3600", rec.Header().Get("Retry-After"))

	var body struct {
		Error    string `json:"error"`
		Locked   bool   `json:"locked"`
		UnlockIn int    `json:"unlockIn"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Locked)
	assert.Equal(t, 3600, body.UnlockIn)
	assert.NotEmpty(t, body.Error)
}

func TestAuthHandlerLogin_RateLimited(t *testing.T) {
	service := &MockAuthService{loginErr: &models.RateLimitedError{RetryAfter: 420}}
	handler := newAuthHandler(service)

	rec := postJSON(t, handler.Login, `{"email":"operator@plant.test","password":"Str0ngPassword"}`)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "420", rec.Header().Get("Retry-After"))

	var body struct {
		Error      string `json:"error"`
		RetryAfter int    `json:"retryAfter"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 420, body.RetryAfter)
}

func TestAuthHandlerLogin_InvalidCredentials(t *testing.T) {
	service := &MockAuthService{loginErr: &models.InvalidCredentialsError{Attempts: 3}}
	handler := newAuthHandler(service)

	rec := postJSON(t, handler.Login, `{"email":"operator@plant.test","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Header().Get("Retry-After"))

	var body struct {
		Error    string `json:"error"`
		Attempts int    `json:"attempts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Attempts)
	assert.Equal(t, "Invalid email or password", body.Error)
}

func TestAuthHandlerLogin_InvalidBodyNeverReachesService(t *testing.T) {
	service := &MockAuthService{loginErr: &models.InvalidCredentialsError{Attempts: 1}}
	handler := newAuthHandler(service)

	rec := postJSON(t, handler.Login, `{"email":"not-an-email","password":"x"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, service.lastEmail)
}

func TestAuthHandlerLogin_NormalizesEmail(t *testing.T) {
	service := &MockAuthService{loginErr: &models.InvalidCredentialsError{Attempts: 1}}
	handler := newAuthHandler(service)

	postJSON(t, handler.Login, `{"email":"  Operator@Plant.TEST ","password":"Str0ngPassword"}`)

	assert.Equal(t, "operator@plant.test", service.lastEmail)
}

func TestAuthHandlerLogin_InternalError(t *testing.T) {
	service := &MockAuthService{loginErr: models.ErrInternalServer}
	handler := newAuthHandler(service)

	rec := postJSON(t, handler.Login, `{"email":"operator@plant.test","password":"Str0ngPassword"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAuthHandlerSignup_Created(t *testing.T) {
	service := &MockAuthService{
		signupResp: &services.AuthResponse{
			User: &services.UserResponse{ID: "user-2", Email: "new@plant.test", Role: "operator"},
		},
	}
	handler := newAuthHandler(service)

	rec := postJSON(t, handler.Signup, `{"email":"new@plant.test","password":"Str0ngPassword","name":"New Operator"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		User    map[string]interface{} `json:"user"`
		Message string                 `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "user-2", body.User["id"])

	// Signup never establishes a session
	assert.Empty(t, rec.Result().Cookies())
}

func TestAuthHandlerSignup_RateLimited(t *testing.T) {
	service := &MockAuthService{signupErr: &models.RateLimitedError{RetryAfter: 1800}}
	handler := newAuthHandler(service)

	rec := postJSON(t, handler.Signup, `{"email":"new@plant.test","password":"Str0ngPassword","name":"New Operator"}`)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1800", rec.Header().Get("Retry-After"))

	var body struct {
		RetryAfter int `json:"retryAfter"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1800, body.RetryAfter)
}

func TestAuthHandlerSignup_Conflict(t *testing.T) {
	service := &MockAuthService{signupErr: models.ErrConflict}
	handler := newAuthHandler(service)

	rec := postJSON(t, handler.Signup, `{"email":"taken@plant.test","password":"Str0ngPassword","name":"New Operator"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuthHandlerLogout_ClearsCookie(t *testing.T) {
	handler := newAuthHandler(&MockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	handler.Logout(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.SessionCookieName, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
