package admin

import "errors"

// Domain errors for the superadmin console.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrCannotRevokeSelf = errors.New("cannot revoke your own superadmin role")
	ErrInvalidSettings  = errors.New("invalid settings")
)
