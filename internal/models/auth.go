package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are the JWT claims carried by the session cookie.
type SessionClaims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
