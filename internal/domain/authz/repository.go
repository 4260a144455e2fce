package authz

import (
	"context"

	"github.com/google/uuid"

	"github.com/catometrics/server/internal/model"
)

// UserReader looks up user records for privilege re-verification.
type UserReader interface {
	// FindByID retrieves a user by ID.
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// TeamReader looks up team records for ownership checks.
type TeamReader interface {
	// FindByID retrieves a team by ID.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Team, error)
}

// MemberReader looks up membership rows for role checks.
type MemberReader interface {
	// Find retrieves the member row for a (team, user) pair.
	Find(ctx context.Context, teamID, userID uuid.UUID) (*model.TeamMember, error)
}
