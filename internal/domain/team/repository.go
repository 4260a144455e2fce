package team

import (
	"context"

	"github.com/google/uuid"

	"github.com/catometrics/server/internal/model"
)

// TeamRepository defines the interface for team persistence.
type TeamRepository interface {
	Create(ctx context.Context, team *model.Team) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Team, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*model.Team, int64, error)
	ListAll(ctx context.Context, limit, offset int) ([]*model.Team, int64, error)
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	Update(ctx context.Context, team *model.Team) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// MemberRepository defines the interface for team member persistence.
type MemberRepository interface {
	Add(ctx context.Context, member *model.TeamMember) error
	Find(ctx context.Context, teamID, userID uuid.UUID) (*model.TeamMember, error)
	ListWithUsers(ctx context.Context, teamID uuid.UUID) ([]*model.TeamMember, error)
	UpdateRole(ctx context.Context, teamID, userID uuid.UUID, role model.TeamRole) error
	Remove(ctx context.Context, teamID, userID uuid.UUID) error
	Count(ctx context.Context, teamID uuid.UUID) (int64, error)
}

// InvitationRepository defines the interface for invitation persistence.
type InvitationRepository interface {
	Create(ctx context.Context, invitation *model.TeamInvitation) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TeamInvitation, error)
	FindByToken(ctx context.Context, token string) (*model.TeamInvitation, error)
	FindPendingByEmail(ctx context.Context, teamID uuid.UUID, email string) (*model.TeamInvitation, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]*model.TeamInvitation, error)
	ListByEmail(ctx context.Context, email string) ([]*model.TeamInvitation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.InvitationStatus) error
}

// UserLookup resolves users referenced by memberships and invitations.
type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// SettingsReader provides the platform limits.
type SettingsReader interface {
	Get(ctx context.Context) (*model.SystemSettings, error)
}

// TxManager runs a function within a database transaction. Repository
// calls made with the transactional context join the transaction.
type TxManager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
