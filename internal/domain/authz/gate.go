// Package authz implements the authorization gate: stateless decision
// functions that verify privileges against the persisted user and
// membership records rather than cached token claims.
package authz

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/catometrics/server/internal/domain/auth"
	"github.com/catometrics/server/internal/domain/team"
	"github.com/catometrics/server/internal/model"
	"github.com/catometrics/server/internal/shared/metrics"
)

// ErrInvalidRole rejects checks against a role outside the closed set.
var ErrInvalidRole = errors.New("invalid role")

// Grant is the authorized context returned by a successful gate check.
type Grant struct {
	Actor Actor

	// SuperAdmin reflects the persisted flag, re-read at decision time.
	SuperAdmin bool

	// TeamRole is the effective role for the checked team. Set only by
	// RequireTeamRole; owners without a member row hold TeamRoleOwner.
	TeamRole model.TeamRole
}

// Gate decides whether an actor may proceed.
type Gate struct {
	users   UserReader
	teams   TeamReader
	members MemberReader
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewGate creates a new authorization gate. metrics may be nil.
func NewGate(users UserReader, teams TeamReader, members MemberReader, m *metrics.Metrics, logger *zap.Logger) *Gate {
	return &Gate{
		users:   users,
		teams:   teams,
		members: members,
		metrics: m,
		logger:  logger,
	}
}

// RequireAuthenticated requires a valid session. It performs no reads.
func (g *Gate) RequireAuthenticated(actor Actor) (*Grant, error) {
	if actor.IsZero() {
		g.record("authenticated", "unauthenticated")
		return nil, ErrUnauthenticated
	}
	g.record("authenticated", "granted")
	return &Grant{Actor: actor}, nil
}

// RequireSuperAdmin requires a platform superadmin. The privilege is
// re-read from the user record: the token's cached bit is never trusted
// here, so revocation takes effect on the very next call.
func (g *Gate) RequireSuperAdmin(ctx context.Context, actor Actor) (*Grant, error) {
	if _, err := g.RequireAuthenticated(actor); err != nil {
		return nil, err
	}

	u, err := g.loadActiveUser(ctx, actor.UserID)
	if err != nil {
		g.record("superadmin", outcomeOf(err))
		return nil, err
	}

	if !u.IsSuperAdmin {
		g.record("superadmin", "forbidden")
		g.logger.Debug("superadmin check denied",
			zap.String("user_id", actor.UserID.String()),
			zap.Bool("cached_claim", actor.IsSuperAdminForDisplay()),
		)
		return nil, ErrForbidden
	}

	g.record("superadmin", "granted")
	return &Grant{Actor: actor, SuperAdmin: true, TeamRole: model.TeamRoleOwner}, nil
}

// RequireTeamRole requires at least the given role within a team.
// Superadmins bypass the check. The team owner holds an implicit OWNER
// role even without an explicit member row; otherwise the member row's
// role decides. A missing team or membership is reported as ErrForbidden
// so the check does not leak team existence.
func (g *Gate) RequireTeamRole(ctx context.Context, actor Actor, teamID uuid.UUID, minimum model.TeamRole) (*Grant, error) {
	if !minimum.IsValid() {
		return nil, ErrInvalidRole
	}
	if _, err := g.RequireAuthenticated(actor); err != nil {
		return nil, err
	}

	u, err := g.loadActiveUser(ctx, actor.UserID)
	if err != nil {
		g.record("team_role", outcomeOf(err))
		return nil, err
	}

	if u.IsSuperAdmin {
		g.record("team_role", "granted")
		return &Grant{Actor: actor, SuperAdmin: true, TeamRole: model.TeamRoleOwner}, nil
	}

	t, err := g.teams.FindByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			g.record("team_role", "forbidden")
			return nil, ErrForbidden
		}
		g.record("team_role", "fault")
		return nil, storageFault(err)
	}

	if t.IsOwnedBy(actor.UserID) {
		g.record("team_role", "granted")
		return &Grant{Actor: actor, TeamRole: model.TeamRoleOwner}, nil
	}

	m, err := g.members.Find(ctx, teamID, actor.UserID)
	if err != nil {
		if errors.Is(err, team.ErrMemberNotFound) {
			g.record("team_role", "forbidden")
			return nil, ErrForbidden
		}
		g.record("team_role", "fault")
		return nil, storageFault(err)
	}

	if !m.Role.IsAtLeast(minimum) {
		g.record("team_role", "forbidden")
		return nil, ErrForbidden
	}

	g.record("team_role", "granted")
	return &Grant{Actor: actor, TeamRole: m.Role}, nil
}

// loadActiveUser re-reads the actor's user record. A missing or
// deactivated user invalidates the session outright.
func (g *Gate) loadActiveUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	u, err := g.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, storageFault(err)
	}
	if !u.IsActive {
		return nil, ErrUnauthenticated
	}
	return u, nil
}

func (g *Gate) record(check, outcome string) {
	if g.metrics != nil {
		g.metrics.RecordAuthzDecision(check, outcome)
	}
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	default:
		return "fault"
	}
}
