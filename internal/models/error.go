package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")
)

// AccountLockedError is returned when an account is locked out after repeated
// credential failures. UnlockIn carries the remaining lock time in seconds for
// the Retry-After header and response body.
type AccountLockedError struct {
	UnlockIn int
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account temporarily locked, retry in %ds", e.UnlockIn)
}

// RateLimitedError is returned when a fixed-window limit has been exhausted.
// RetryAfter is seconds until the window rolls over.
type RateLimitedError struct {
	RetryAfter int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry in %ds", e.RetryAfter)
}

// InvalidCredentialsError is the generic credential-failure error. Attempts is
// the number of consecutive failures recorded for the account so far; the
// message never distinguishes "no such account" from "wrong password".
type InvalidCredentialsError struct {
	Attempts int
}

func (e *InvalidCredentialsError) Error() string {
	return "invalid email or password"
}
