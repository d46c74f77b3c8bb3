package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/hormatech/blockplant/internal/models"
)

type contextKey string

// UserContextKey is the key under which session claims are stored in the
// request context.
const UserContextKey contextKey = "user"

// Middleware validates the session (cookie first, then bearer token) and
// injects the claims into the request context.
func Middleware(sm *SessionManager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := sessionToken(r)
			if tokenString == "" {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}

			claims, err := sm.Validate(tokenString)
			if err != nil {
				http.Error(w, "invalid or expired session", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole enforces role-based access; must run after Middleware.
func RequireRole(roles ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r)
			if claims == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			http.Error(w, "forbidden: insufficient permissions", http.StatusForbidden)
		})
	}
}

// GetUserFromContext returns the session claims set by Middleware, or nil.
func GetUserFromContext(r *http.Request) *models.SessionClaims {
	claims, _ := r.Context().Value(UserContextKey).(*models.SessionClaims)
	return claims
}

// sessionToken extracts the session token from the cookie or, as a fallback
// for non-browser clients, an Authorization bearer header.
func sessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
