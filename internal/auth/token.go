package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hormatech/blockplant/internal/models"
)

// SessionManager issues and validates the signed session tokens carried by
// the session cookie.
type SessionManager struct {
	secret        string
	sessionExpiry time.Duration
}

func NewSessionManager(secret string, sessionExpiry time.Duration) *SessionManager {
	return &SessionManager{
		secret:        secret,
		sessionExpiry: sessionExpiry,
	}
}

// SessionExpiry returns the configured session lifetime.
func (sm *SessionManager) SessionExpiry() time.Duration {
	return sm.sessionExpiry
}

// Issue creates a signed session token for the user.
func (sm *SessionManager) Issue(userID, email, role string) (string, error) {
	now := time.Now()
	claims := &models.SessionClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(sm.sessionExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(sm.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a session token, returning its claims.
func (sm *SessionManager) Validate(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(sm.secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid session claims")
	}
	return claims, nil
}
