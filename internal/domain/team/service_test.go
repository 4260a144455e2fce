package team

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/catometrics/server/internal/domain/audit"
	"github.com/catometrics/server/internal/model"
)

// ===== Mock Implementations =====

type MockTeamRepo struct {
	mock.Mock
}

func (m *MockTeamRepo) Create(ctx context.Context, t *model.Team) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTeamRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Team), args.Error(1)
}

func (m *MockTeamRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*model.Team, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*model.Team), args.Get(1).(int64), args.Error(2)
}

func (m *MockTeamRepo) ListAll(ctx context.Context, limit, offset int) ([]*model.Team, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*model.Team), args.Get(1).(int64), args.Error(2)
}

func (m *MockTeamRepo) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTeamRepo) Update(ctx context.Context, t *model.Team) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTeamRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockMemberRepo struct {
	mock.Mock
}

func (m *MockMemberRepo) Add(ctx context.Context, member *model.TeamMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockMemberRepo) Find(ctx context.Context, teamID, userID uuid.UUID) (*model.TeamMember, error) {
	args := m.Called(ctx, teamID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TeamMember), args.Error(1)
}

func (m *MockMemberRepo) ListWithUsers(ctx context.Context, teamID uuid.UUID) ([]*model.TeamMember, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.TeamMember), args.Error(1)
}

func (m *MockMemberRepo) UpdateRole(ctx context.Context, teamID, userID uuid.UUID, role model.TeamRole) error {
	args := m.Called(ctx, teamID, userID, role)
	return args.Error(0)
}

func (m *MockMemberRepo) Remove(ctx context.Context, teamID, userID uuid.UUID) error {
	args := m.Called(ctx, teamID, userID)
	return args.Error(0)
}

func (m *MockMemberRepo) Count(ctx context.Context, teamID uuid.UUID) (int64, error) {
	args := m.Called(ctx, teamID)
	return args.Get(0).(int64), args.Error(1)
}

type MockInvitationRepo struct {
	mock.Mock
}

func (m *MockInvitationRepo) Create(ctx context.Context, invitation *model.TeamInvitation) error {
	args := m.Called(ctx, invitation)
	return args.Error(0)
}

func (m *MockInvitationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.TeamInvitation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TeamInvitation), args.Error(1)
}

func (m *MockInvitationRepo) FindByToken(ctx context.Context, token string) (*model.TeamInvitation, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TeamInvitation), args.Error(1)
}

func (m *MockInvitationRepo) FindPendingByEmail(ctx context.Context, teamID uuid.UUID, email string) (*model.TeamInvitation, error) {
	args := m.Called(ctx, teamID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TeamInvitation), args.Error(1)
}

func (m *MockInvitationRepo) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]*model.TeamInvitation, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.TeamInvitation), args.Error(1)
}

func (m *MockInvitationRepo) ListByEmail(ctx context.Context, email string) ([]*model.TeamInvitation, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.TeamInvitation), args.Error(1)
}

func (m *MockInvitationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.InvitationStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type MockUserLookup struct {
	mock.Mock
}

func (m *MockUserLookup) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserLookup) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type stubSettings struct {
	settings *model.SystemSettings
}

func (s stubSettings) Get(ctx context.Context) (*model.SystemSettings, error) {
	if s.settings != nil {
		return s.settings, nil
	}
	return model.DefaultSystemSettings(), nil
}

// passthroughTx runs the function without a real transaction.
type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type noopAuditRepo struct{}

func (noopAuditRepo) Create(ctx context.Context, entry *model.AuditLog) error { return nil }
func (noopAuditRepo) List(ctx context.Context, filter model.AuditLogFilter) ([]*model.AuditLog, int64, error) {
	return nil, 0, nil
}

type fixture struct {
	teams       *MockTeamRepo
	members     *MockMemberRepo
	invitations *MockInvitationRepo
	users       *MockUserLookup
	settings    *model.SystemSettings
}

func newFixture() *fixture {
	return &fixture{
		teams:       &MockTeamRepo{},
		members:     &MockMemberRepo{},
		invitations: &MockInvitationRepo{},
		users:       &MockUserLookup{},
		settings:    model.DefaultSystemSettings(),
	}
}

func (f *fixture) service(t *testing.T) *Service {
	t.Helper()
	recorder := audit.NewRecorder(noopAuditRepo{}, 16, nil, zap.NewNop())
	t.Cleanup(func() { _ = recorder.Close(context.Background()) })
	return NewService(f.teams, f.members, f.invitations, f.users, stubSettings{f.settings}, passthroughTx{}, recorder, Config{
		InvitationExpiry: 7 * 24 * time.Hour,
		ExternalURL:      "https://portal.example.com",
	}, zap.NewNop())
}

// ===== Teams =====

func TestCreateTeam(t *testing.T) {
	ctx := context.Background()

	t.Run("creates team and owner member row", func(t *testing.T) {
		f := newFixture()
		svc := f.service(t)
		ownerID := uuid.New()
		f.teams.On("CountByOwner", ctx, ownerID).Return(int64(0), nil)
		f.teams.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.members.On("Add", mock.Anything, mock.MatchedBy(func(m *model.TeamMember) bool {
			return m.UserID == ownerID && m.Role == model.TeamRoleOwner
		})).Return(nil)

		created, err := svc.CreateTeam(ctx, ownerID, "Analytics", "desc", "10.0.0.1")
		assert.NoError(t, err)
		assert.Equal(t, ownerID, created.OwnerID)
		f.members.AssertExpectations(t)
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		f := newFixture()
		svc := f.service(t)
		_, err := svc.CreateTeam(ctx, uuid.New(), "   ", "", "10.0.0.1")
		assert.ErrorIs(t, err, ErrTeamNameRequired)
	})

	t.Run("team limit is enforced", func(t *testing.T) {
		f := newFixture()
		f.settings.MaxTeamsPerUser = 2
		svc := f.service(t)
		ownerID := uuid.New()
		f.teams.On("CountByOwner", ctx, ownerID).Return(int64(2), nil)

		_, err := svc.CreateTeam(ctx, ownerID, "One Too Many", "", "10.0.0.1")
		assert.ErrorIs(t, err, ErrTeamLimitReached)
	})
}

// ===== Members =====

func TestChangeRole(t *testing.T) {
	ctx := context.Background()
	teamID := uuid.New()
	ownerID := uuid.New()

	t.Run("owner role is immutable", func(t *testing.T) {
		f := newFixture()
		svc := f.service(t)
		f.teams.On("FindByID", ctx, teamID).Return(&model.Team{ID: teamID, OwnerID: ownerID}, nil)

		err := svc.ChangeRole(ctx, uuid.New(), teamID, ownerID, model.TeamRoleViewer, model.TeamRoleAdmin, "10.0.0.1")
		assert.ErrorIs(t, err, ErrCannotChangeOwner)
	})

	t.Run("owner is never assignable", func(t *testing.T) {
		f := newFixture()
		svc := f.service(t)

		err := svc.ChangeRole(ctx, uuid.New(), teamID, uuid.New(), model.TeamRoleOwner, model.TeamRoleOwner, "10.0.0.1")
		assert.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("member cannot assign roles", func(t *testing.T) {
		f := newFixture()
		svc := f.service(t)

		err := svc.ChangeRole(ctx, uuid.New(), teamID, uuid.New(), model.TeamRoleViewer, model.TeamRoleMember, "10.0.0.1")
		assert.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("admin changes a member role", func(t *testing.T) {
		f := newFixture()
		svc := f.service(t)
		targetID := uuid.New()
		f.teams.On("FindByID", ctx, teamID).Return(&model.Team{ID: teamID, OwnerID: ownerID}, nil)
		f.members.On("Find", ctx, teamID, targetID).Return(&model.TeamMember{TeamID: teamID, UserID: targetID, Role: model.TeamRoleMember}, nil)
		f.members.On("UpdateRole", ctx, teamID, targetID, model.TeamRoleAdmin).Return(nil)

		err := svc.ChangeRole(ctx, uuid.New(), teamID, targetID, model.TeamRoleAdmin, model.TeamRoleAdmin, "10.0.0.1")
		assert.NoError(t, err)
	})
}

func TestRemoveMember(t *testing.T) {
	ctx := context.Background()
	teamID := uuid.New()
	ownerID := uuid.New()

	t.Run("owner cannot be removed", func(t *testing.T) {
		f := newFixture()
		svc := f.service(t)
		f.teams.On("FindByID", ctx, teamID).Return(&model.Team{ID: teamID, OwnerID: ownerID}, nil)

		err := svc.RemoveMember(ctx, uuid.New(), teamID, ownerID, "10.0.0.1")
		assert.ErrorIs(t, err, ErrCannotRemoveOwner)
	})

	t.Run("removes an ordinary member", func(t *testing.T) {
		f := newFixture()
		svc := f.service(t)
		targetID := uuid.New()
		f.teams.On("FindByID", ctx, teamID).Return(&model.Team{ID: teamID, OwnerID: ownerID}, nil)
		f.members.On("Find", ctx, teamID, targetID).Return(&model.TeamMember{TeamID: teamID, UserID: targetID, Role: model.TeamRoleMember}, nil)
		f.members.On("Remove", ctx, teamID, targetID).Return(nil)

		assert.NoError(t, svc.RemoveMember(ctx, uuid.New(), teamID, targetID, "10.0.0.1"))
	})
}

// ===== Invitations =====

func TestCreateInvitation(t *testing.T) {
	ctx := context.Background()
	teamID := uuid.New()
	actorID := uuid.New()

	t.Run("creates a pending invitation with a token", func(t *testing.T) {
		f := newFixture()
		svc := f.service(t)
		f.teams.On("FindByID", ctx, teamID).Return(&model.Team{ID: teamID, OwnerID: actorID}, nil)
		f.users.On("FindByEmail", ctx, "invitee@example.com").Return(nil, assert.AnError)
		f.invitations.On("FindPendingByEmail", ctx, teamID, "invitee@example.com").Return(nil, ErrInvitationNotFound)
		f.invitations.On("Create", ctx, mock.MatchedBy(func(inv *model.TeamInvitation) bool {
			return inv.Email == "invitee@example.com" &&
				inv.Status == model.InvitationStatusPending &&
				inv.Token != "" &&
				inv.ExpiresAt.After(time.Now())
		})).Return(nil)

		inv, err := svc.CreateInvitation(ctx, actorID, teamID, "Invitee@Example.com", model.TeamRoleMember, "10.0.0.1")
		assert.NoError(t, err)
		assert.Equal(t, model.TeamRoleMember, inv.Role)
	})

	t.Run("owner role cannot be invited", func(t *testing.T) {
		f := newFixture()
		svc := f.service(t)
		_, err := svc.CreateInvitation(ctx, actorID, teamID, "invitee@example.com", model.TeamRoleOwner, "10.0.0.1")
		assert.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("existing member cannot be invited", func(t *testing.T) {
		f := newFixture()
		svc := f.service(t)
		existing := &model.User{ID: uuid.New(), Email: "invitee@example.com"}
		f.teams.On("FindByID", ctx, teamID).Return(&model.Team{ID: teamID, OwnerID: actorID}, nil)
		f.users.On("FindByEmail", ctx, "invitee@example.com").Return(existing, nil)
		f.members.On("Find", ctx, teamID, existing.ID).Return(&model.TeamMember{TeamID: teamID, UserID: existing.ID, Role: model.TeamRoleViewer}, nil)

		_, err := svc.CreateInvitation(ctx, actorID, teamID, "invitee@example.com", model.TeamRoleMember, "10.0.0.1")
		assert.ErrorIs(t, err, ErrAlreadyMember)
	})

	t.Run("duplicate pending invitation is rejected", func(t *testing.T) {
		f := newFixture()
		svc := f.service(t)
		f.teams.On("FindByID", ctx, teamID).Return(&model.Team{ID: teamID, OwnerID: actorID}, nil)
		f.users.On("FindByEmail", ctx, "invitee@example.com").Return(nil, assert.AnError)
		f.invitations.On("FindPendingByEmail", ctx, teamID, "invitee@example.com").Return(&model.TeamInvitation{
			Status:    model.InvitationStatusPending,
			ExpiresAt: time.Now().Add(time.Hour),
		}, nil)

		_, err := svc.CreateInvitation(ctx, actorID, teamID, "invitee@example.com", model.TeamRoleMember, "10.0.0.1")
		assert.ErrorIs(t, err, ErrInvitationAlreadyPending)
	})
}

func TestAcceptInvitation(t *testing.T) {
	ctx := context.Background()
	teamID := uuid.New()
	userID := uuid.New()
	email := "invitee@example.com"

	pendingInvitation := func() *model.TeamInvitation {
		return &model.TeamInvitation{
			ID:        uuid.New(),
			TeamID:    teamID,
			Email:     email,
			Role:      model.TeamRoleMember,
			Token:     "tok",
			Status:    model.InvitationStatusPending,
			ExpiresAt: time.Now().Add(time.Hour),
		}
	}

	t.Run("adds member and marks accepted", func(t *testing.T) {
		f := newFixture()
		svc := f.service(t)
		inv := pendingInvitation()
		f.invitations.On("FindByToken", ctx, "tok").Return(inv, nil)
		f.members.On("Find", ctx, teamID, userID).Return(nil, ErrMemberNotFound)
		f.members.On("Count", ctx, teamID).Return(int64(1), nil)
		f.members.On("Add", mock.Anything, mock.MatchedBy(func(m *model.TeamMember) bool {
			return m.UserID == userID && m.Role == model.TeamRoleMember
		})).Return(nil)
		f.invitations.On("UpdateStatus", mock.Anything, inv.ID, model.InvitationStatusAccepted).Return(nil)

		accepted, err := svc.AcceptInvitation(ctx, userID, email, "tok", "10.0.0.1")
		assert.NoError(t, err)
		assert.Equal(t, model.InvitationStatusAccepted, accepted.Status)
	})

	t.Run("expiry is decided by the timestamp and persisted", func(t *testing.T) {
		f := newFixture()
		svc := f.service(t)
		inv := pendingInvitation()
		inv.ExpiresAt = time.Now().Add(-time.Minute)
		f.invitations.On("FindByToken", ctx, "tok").Return(inv, nil)
		f.invitations.On("UpdateStatus", ctx, inv.ID, model.InvitationStatusExpired).Return(nil)

		_, err := svc.AcceptInvitation(ctx, userID, email, "tok", "10.0.0.1")
		assert.ErrorIs(t, err, ErrInvitationExpired)
		f.invitations.AssertCalled(t, "UpdateStatus", ctx, inv.ID, model.InvitationStatusExpired)
	})

	t.Run("wrong invitee is refused", func(t *testing.T) {
		f := newFixture()
		svc := f.service(t)
		inv := pendingInvitation()
		f.invitations.On("FindByToken", ctx, "tok").Return(inv, nil)

		_, err := svc.AcceptInvitation(ctx, userID, "other@example.com", "tok", "10.0.0.1")
		assert.ErrorIs(t, err, ErrInvitationNotForYou)
	})

	t.Run("processed invitation cannot be accepted again", func(t *testing.T) {
		f := newFixture()
		svc := f.service(t)
		inv := pendingInvitation()
		inv.Status = model.InvitationStatusAccepted
		f.invitations.On("FindByToken", ctx, "tok").Return(inv, nil)

		_, err := svc.AcceptInvitation(ctx, userID, email, "tok", "10.0.0.1")
		assert.ErrorIs(t, err, ErrInvitationAlreadyProcessed)
	})

	t.Run("member limit blocks acceptance", func(t *testing.T) {
		f := newFixture()
		f.settings.MaxMembersPerTeam = 2
		svc := f.service(t)
		inv := pendingInvitation()
		f.invitations.On("FindByToken", ctx, "tok").Return(inv, nil)
		f.members.On("Find", ctx, teamID, userID).Return(nil, ErrMemberNotFound)
		f.members.On("Count", ctx, teamID).Return(int64(2), nil)

		_, err := svc.AcceptInvitation(ctx, userID, email, "tok", "10.0.0.1")
		assert.ErrorIs(t, err, ErrMemberLimitReached)
	})
}

func TestRevokeInvitation(t *testing.T) {
	ctx := context.Background()
	teamID := uuid.New()

	t.Run("revokes a pending invitation", func(t *testing.T) {
		f := newFixture()
		svc := f.service(t)
		inv := &model.TeamInvitation{
			ID:        uuid.New(),
			TeamID:    teamID,
			Status:    model.InvitationStatusPending,
			ExpiresAt: time.Now().Add(time.Hour),
		}
		f.invitations.On("FindByID", ctx, inv.ID).Return(inv, nil)
		f.invitations.On("UpdateStatus", ctx, inv.ID, model.InvitationStatusRevoked).Return(nil)

		assert.NoError(t, svc.RevokeInvitation(ctx, uuid.New(), teamID, inv.ID, "10.0.0.1"))
	})

	t.Run("invitation of another team is not found", func(t *testing.T) {
		f := newFixture()
		svc := f.service(t)
		inv := &model.TeamInvitation{ID: uuid.New(), TeamID: uuid.New(), Status: model.InvitationStatusPending, ExpiresAt: time.Now().Add(time.Hour)}
		f.invitations.On("FindByID", ctx, inv.ID).Return(inv, nil)

		err := svc.RevokeInvitation(ctx, uuid.New(), teamID, inv.ID, "10.0.0.1")
		assert.ErrorIs(t, err, ErrInvitationNotFound)
	})

	t.Run("processed invitation cannot be revoked", func(t *testing.T) {
		f := newFixture()
		svc := f.service(t)
		inv := &model.TeamInvitation{ID: uuid.New(), TeamID: teamID, Status: model.InvitationStatusRejected, ExpiresAt: time.Now().Add(time.Hour)}
		f.invitations.On("FindByID", ctx, inv.ID).Return(inv, nil)

		err := svc.RevokeInvitation(ctx, uuid.New(), teamID, inv.ID, "10.0.0.1")
		assert.ErrorIs(t, err, ErrInvitationAlreadyProcessed)
	})
}
