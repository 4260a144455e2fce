package authz

import "github.com/google/uuid"

// Actor is the identity carried by a session token. Its fields are cached
// at token issue or refresh time and can lag behind the user record.
type Actor struct {
	UserID uuid.UUID
	Name   string
	Email  string

	// superAdminClaim is the cached privilege bit from the token.
	// It is intentionally unexported: the only way to read it is
	// IsSuperAdminForDisplay, so privileged call sites cannot reach for
	// it by accident.
	superAdminClaim bool
}

// NewActor builds an actor from verified token claims.
func NewActor(userID uuid.UUID, name, email string, superAdminClaim bool) Actor {
	return Actor{
		UserID:          userID,
		Name:            name,
		Email:           email,
		superAdminClaim: superAdminClaim,
	}
}

// IsZero reports whether there is no authenticated actor.
func (a Actor) IsZero() bool {
	return a.UserID == uuid.Nil
}

// IsSuperAdminForDisplay returns the cached superadmin claim. Use it for
// UI personalization only (navigation, badges). Privileged decisions must
// go through Gate.RequireSuperAdmin, which re-checks the user record.
func (a Actor) IsSuperAdminForDisplay() bool {
	return a.superAdminClaim
}
