package auth

import "errors"

// Domain errors for the auth module.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrPasswordRequired   = errors.New("password required")

	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrSessionInvalidated = errors.New("session invalidated")

	ErrRateLimited = errors.New("too many login attempts")
)
