package authz

import (
	"errors"
	"fmt"
)

// Authorization outcomes. Persistence failures are deliberately kept
// distinct: a broken database is never reported as "not authorized".
var (
	// ErrUnauthenticated means no valid session exists. Recoverable via login.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means the session is valid but the privilege is missing.
	ErrForbidden = errors.New("forbidden")

	// ErrStorageFault means the persistence layer failed while deciding.
	ErrStorageFault = errors.New("authorization storage fault")
)

// storageFault wraps a persistence error so callers can match ErrStorageFault
// while the cause stays available for logs.
func storageFault(err error) error {
	return fmt.Errorf("%w: %v", ErrStorageFault, err)
}
