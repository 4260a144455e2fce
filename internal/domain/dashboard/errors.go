package dashboard

import "errors"

// Domain errors for the dashboard module.
var (
	ErrDashboardNotFound     = errors.New("dashboard not found")
	ErrNameRequired          = errors.New("dashboard name required")
	ErrInvalidURL            = errors.New("dashboard url must be an absolute http(s) url")
	ErrDashboardLimitReached = errors.New("dashboard limit reached for team")
)
