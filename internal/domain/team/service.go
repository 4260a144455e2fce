// Package team implements teams, memberships and invitations.
package team

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/catometrics/server/internal/domain/audit"
	"github.com/catometrics/server/internal/model"
)

// Config holds team service configuration.
type Config struct {
	// InvitationExpiry is how long an invitation stays acceptable.
	InvitationExpiry time.Duration

	// ExternalURL is the canonical base URL used in invitation links.
	ExternalURL string
}

// Service implements team, membership and invitation operations.
// Authorization is decided by the gate before these methods run; the
// service enforces domain rules (limits, owner protection, lifecycle).
type Service struct {
	teams       TeamRepository
	members     MemberRepository
	invitations InvitationRepository
	users       UserLookup
	settings    SettingsReader
	tx          TxManager
	recorder    *audit.Recorder
	cfg         Config
	logger      *zap.Logger
}

// NewService creates a new team service.
func NewService(
	teams TeamRepository,
	members MemberRepository,
	invitations InvitationRepository,
	users UserLookup,
	settings SettingsReader,
	tx TxManager,
	recorder *audit.Recorder,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if cfg.InvitationExpiry <= 0 {
		cfg.InvitationExpiry = 7 * 24 * time.Hour
	}
	return &Service{
		teams:       teams,
		members:     members,
		invitations: invitations,
		users:       users,
		settings:    settings,
		tx:          tx,
		recorder:    recorder,
		cfg:         cfg,
		logger:      logger,
	}
}

// ========== Teams ==========

// CreateTeam creates a team and its owner member row in one transaction.
func (s *Service) CreateTeam(ctx context.Context, ownerID uuid.UUID, name, description, ipAddress string) (*model.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}

	limits, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	owned, err := s.teams.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("count teams: %w", err)
	}
	if limits.MaxTeamsPerUser > 0 && owned >= int64(limits.MaxTeamsPerUser) {
		return nil, ErrTeamLimitReached
	}

	t := &model.Team{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
	}

	err = s.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := s.teams.Create(txCtx, t); err != nil {
			return err
		}
		return s.members.Add(txCtx, &model.TeamMember{
			ID:     uuid.New(),
			TeamID: t.ID,
			UserID: ownerID,
			Role:   model.TeamRoleOwner,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("create team: %w", err)
	}

	s.logger.Info("team created",
		zap.String("team_id", t.ID.String()),
		zap.String("owner_id", ownerID.String()),
		zap.String("name", t.Name),
	)
	s.recorder.Record(ctx, audit.Entry{
		UserID:     ownerID,
		Action:     model.AuditActionCreateTeam,
		EntityType: "team",
		EntityID:   &t.ID,
		Details:    map[string]any{"name": t.Name},
		IPAddress:  ipAddress,
	})

	return t, nil
}

// GetTeam retrieves a team by ID.
func (s *Service) GetTeam(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	return s.teams.FindByID(ctx, id)
}

// ListTeams lists the teams a user owns or belongs to.
func (s *Service) ListTeams(ctx context.Context, userID uuid.UUID, page model.PaginationRequest) ([]*model.Team, int64, error) {
	page.DefaultPagination()
	return s.teams.ListByUser(ctx, userID, page.PageSize, page.Offset())
}

// UpdateTeam updates a team's name and description.
func (s *Service) UpdateTeam(ctx context.Context, actorID, id uuid.UUID, name, description, ipAddress string) (*model.Team, error) {
	t, err := s.teams.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}
	t.Name = name
	t.Description = description

	if err := s.teams.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update team: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		UserID:     actorID,
		Action:     model.AuditActionUpdateTeam,
		EntityType: "team",
		EntityID:   &t.ID,
		Details:    map[string]any{"name": t.Name},
		IPAddress:  ipAddress,
	})
	return t, nil
}

// DeleteTeam deletes a team. Members, invitations and dashboards go with
// it through foreign-key cascade.
func (s *Service) DeleteTeam(ctx context.Context, actorID, id uuid.UUID, ipAddress string) error {
	t, err := s.teams.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.teams.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete team: %w", err)
	}

	s.logger.Info("team deleted",
		zap.String("team_id", id.String()),
		zap.String("actor_id", actorID.String()),
	)
	s.recorder.Record(ctx, audit.Entry{
		UserID:     actorID,
		Action:     model.AuditActionDeleteTeam,
		EntityType: "team",
		EntityID:   &id,
		Details:    map[string]any{"name": t.Name},
		IPAddress:  ipAddress,
	})
	return nil
}

// ========== Members ==========

// ListMembers lists the members of a team with user details.
func (s *Service) ListMembers(ctx context.Context, teamID uuid.UUID) ([]*model.TeamMember, error) {
	if _, err := s.teams.FindByID(ctx, teamID); err != nil {
		return nil, err
	}
	return s.members.ListWithUsers(ctx, teamID)
}

// ChangeRole changes a member's role. The owner's role is immutable and
// OWNER is never assigned: ownership is a property of the team.
func (s *Service) ChangeRole(ctx context.Context, actorID, teamID, userID uuid.UUID, newRole model.TeamRole, actorRole model.TeamRole, ipAddress string) error {
	if !actorRole.CanAssign(newRole) {
		return ErrInvalidRole
	}

	t, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		return err
	}
	if t.IsOwnedBy(userID) {
		return ErrCannotChangeOwner
	}

	m, err := s.members.Find(ctx, teamID, userID)
	if err != nil {
		return err
	}
	if m.Role == model.TeamRoleOwner {
		return ErrCannotChangeOwner
	}

	if err := s.members.UpdateRole(ctx, teamID, userID, newRole); err != nil {
		return fmt.Errorf("update role: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		UserID:     actorID,
		Action:     model.AuditActionUserRoleChange,
		EntityType: "team_member",
		EntityID:   &userID,
		Details: map[string]any{
			"team_id": teamID.String(),
			"from":    m.Role.String(),
			"to":      newRole.String(),
		},
		IPAddress: ipAddress,
	})
	return nil
}

// RemoveMember removes a member from a team. The owner cannot be removed.
func (s *Service) RemoveMember(ctx context.Context, actorID, teamID, userID uuid.UUID, ipAddress string) error {
	t, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		return err
	}
	if t.IsOwnedBy(userID) {
		return ErrCannotRemoveOwner
	}

	if _, err := s.members.Find(ctx, teamID, userID); err != nil {
		return err
	}

	if err := s.members.Remove(ctx, teamID, userID); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		UserID:     actorID,
		Action:     model.AuditActionUserRoleChange,
		EntityType: "team_member",
		EntityID:   &userID,
		Details: map[string]any{
			"team_id": teamID.String(),
			"removed": true,
		},
		IPAddress: ipAddress,
	})
	return nil
}

// ========== Invitations ==========

// CreateInvitation invites an email address to join a team.
func (s *Service) CreateInvitation(ctx context.Context, actorID, teamID uuid.UUID, email string, role model.TeamRole, ipAddress string) (*model.TeamInvitation, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !role.IsValid() || role == model.TeamRoleOwner {
		return nil, ErrInvalidRole
	}

	if _, err := s.teams.FindByID(ctx, teamID); err != nil {
		return nil, err
	}

	// Already a member?
	if existing, err := s.users.FindByEmail(ctx, email); err == nil {
		if _, err := s.members.Find(ctx, teamID, existing.ID); err == nil {
			return nil, ErrAlreadyMember
		}
	}

	// Pending invitation already out for this email?
	if pending, err := s.invitations.FindPendingByEmail(ctx, teamID, email); err == nil && pending.IsPending() {
		return nil, ErrInvitationAlreadyPending
	}

	token, err := generateInvitationToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	inv := &model.TeamInvitation{
		ID:        uuid.New(),
		TeamID:    teamID,
		InviterID: actorID,
		Email:     email,
		Role:      role,
		Token:     token,
		Status:    model.InvitationStatusPending,
		ExpiresAt: time.Now().Add(s.cfg.InvitationExpiry),
	}
	if err := s.invitations.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	// Mail delivery is not integrated; the acceptance link goes to the
	// operational log for now.
	s.logger.Info("invitation created",
		zap.String("team_id", teamID.String()),
		zap.String("email", email),
		zap.String("link", fmt.Sprintf("%s/invitations/%s/accept", strings.TrimRight(s.cfg.ExternalURL, "/"), token)),
	)
	s.recorder.Record(ctx, audit.Entry{
		UserID:     actorID,
		Action:     model.AuditActionInviteUser,
		EntityType: "team_invitation",
		EntityID:   &inv.ID,
		Details: map[string]any{
			"team_id": teamID.String(),
			"email":   email,
			"role":    role.String(),
		},
		IPAddress: ipAddress,
	})
	return inv, nil
}

// ListInvitations lists a team's invitations, expiry derived.
func (s *Service) ListInvitations(ctx context.Context, teamID uuid.UUID) ([]*model.TeamInvitation, error) {
	if _, err := s.teams.FindByID(ctx, teamID); err != nil {
		return nil, err
	}
	return s.invitations.ListByTeam(ctx, teamID)
}

// ListInvitationsForEmail lists the invitations addressed to an email.
func (s *Service) ListInvitationsForEmail(ctx context.Context, email string) ([]*model.TeamInvitation, error) {
	return s.invitations.ListByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// AcceptInvitation accepts an invitation on behalf of the invitee. The
// membership row and the status change commit in one transaction.
func (s *Service) AcceptInvitation(ctx context.Context, userID uuid.UUID, userEmail, token, ipAddress string) (*model.TeamInvitation, error) {
	inv, err := s.loadActionableInvitation(ctx, userEmail, token)
	if err != nil {
		return nil, err
	}

	if _, err := s.members.Find(ctx, inv.TeamID, userID); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, ErrMemberNotFound) {
		return nil, fmt.Errorf("find member: %w", err)
	}

	limits, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	count, err := s.members.Count(ctx, inv.TeamID)
	if err != nil {
		return nil, fmt.Errorf("count members: %w", err)
	}
	if limits.MaxMembersPerTeam > 0 && count >= int64(limits.MaxMembersPerTeam) {
		return nil, ErrMemberLimitReached
	}

	err = s.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := s.members.Add(txCtx, &model.TeamMember{
			ID:     uuid.New(),
			TeamID: inv.TeamID,
			UserID: userID,
			Role:   inv.Role,
		}); err != nil {
			return err
		}
		return s.invitations.UpdateStatus(txCtx, inv.ID, model.InvitationStatusAccepted)
	})
	if err != nil {
		return nil, fmt.Errorf("accept invitation: %w", err)
	}
	inv.Status = model.InvitationStatusAccepted

	s.recorder.Record(ctx, audit.Entry{
		UserID:     userID,
		Action:     model.AuditActionAcceptInvitation,
		EntityType: "team_invitation",
		EntityID:   &inv.ID,
		Details:    map[string]any{"team_id": inv.TeamID.String(), "role": inv.Role.String()},
		IPAddress:  ipAddress,
	})
	return inv, nil
}

// RejectInvitation rejects an invitation on behalf of the invitee.
func (s *Service) RejectInvitation(ctx context.Context, userID uuid.UUID, userEmail, token, ipAddress string) error {
	inv, err := s.loadActionableInvitation(ctx, userEmail, token)
	if err != nil {
		return err
	}

	if err := s.invitations.UpdateStatus(ctx, inv.ID, model.InvitationStatusRejected); err != nil {
		return fmt.Errorf("reject invitation: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		UserID:     userID,
		Action:     model.AuditActionRejectInvitation,
		EntityType: "team_invitation",
		EntityID:   &inv.ID,
		Details:    map[string]any{"team_id": inv.TeamID.String()},
		IPAddress:  ipAddress,
	})
	return nil
}

// RevokeInvitation revokes a pending invitation (team admin action).
func (s *Service) RevokeInvitation(ctx context.Context, actorID, teamID, invitationID uuid.UUID, ipAddress string) error {
	inv, err := s.invitations.FindByID(ctx, invitationID)
	if err != nil {
		return err
	}
	if inv.TeamID != teamID {
		return ErrInvitationNotFound
	}
	if !inv.IsPending() {
		return ErrInvitationAlreadyProcessed
	}

	if err := s.invitations.UpdateStatus(ctx, inv.ID, model.InvitationStatusRevoked); err != nil {
		return fmt.Errorf("revoke invitation: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		UserID:     actorID,
		Action:     model.AuditActionRevokeInvitation,
		EntityType: "team_invitation",
		EntityID:   &inv.ID,
		Details:    map[string]any{"team_id": teamID.String(), "email": inv.Email},
		IPAddress:  ipAddress,
	})
	return nil
}

// loadActionableInvitation resolves a token to an invitation the given
// invitee may still act on. Expiry is decided by the timestamp: a stored
// PENDING past its deadline is marked EXPIRED here and refused.
func (s *Service) loadActionableInvitation(ctx context.Context, userEmail, token string) (*model.TeamInvitation, error) {
	inv, err := s.invitations.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if !inv.IsForEmail(strings.ToLower(strings.TrimSpace(userEmail))) {
		return nil, ErrInvitationNotForYou
	}

	switch inv.EffectiveStatus() {
	case model.InvitationStatusPending:
		return inv, nil
	case model.InvitationStatusExpired:
		if inv.Status == model.InvitationStatusPending {
			// Persist the derived state so later reads agree.
			if err := s.invitations.UpdateStatus(ctx, inv.ID, model.InvitationStatusExpired); err != nil {
				s.logger.Warn("mark invitation expired failed",
					zap.String("invitation_id", inv.ID.String()),
					zap.Error(err),
				)
			}
		}
		return nil, ErrInvitationExpired
	default:
		return nil, ErrInvitationAlreadyProcessed
	}
}

// generateInvitationToken returns a URL-safe random token.
func generateInvitationToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
