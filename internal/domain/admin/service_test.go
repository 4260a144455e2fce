package admin

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/catometrics/server/internal/domain/audit"
	"github.com/catometrics/server/internal/model"
)

// ===== Mock Implementations =====

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepo) List(ctx context.Context, filter model.UserFilter) ([]*model.User, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*model.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepo) Update(ctx context.Context, u *model.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

type MockSessionRevoker struct {
	mock.Mock
}

func (m *MockSessionRevoker) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockSettingsRepo struct {
	mock.Mock
}

func (m *MockSettingsRepo) Get(ctx context.Context) (*model.SystemSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SystemSettings), args.Error(1)
}

func (m *MockSettingsRepo) Update(ctx context.Context, settings *model.SystemSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

type noopAuditRepo struct{}

func (noopAuditRepo) Create(ctx context.Context, entry *model.AuditLog) error { return nil }
func (noopAuditRepo) List(ctx context.Context, filter model.AuditLogFilter) ([]*model.AuditLog, int64, error) {
	return nil, 0, nil
}

func newTestService(t *testing.T, users *MockUserRepo, settings *MockSettingsRepo, sessions *MockSessionRevoker) *Service {
	t.Helper()
	if settings == nil {
		settings = &MockSettingsRepo{}
	}
	if sessions == nil {
		sessions = &MockSessionRevoker{}
	}
	recorder := audit.NewRecorder(noopAuditRepo{}, 16, nil, zap.NewNop())
	t.Cleanup(func() { _ = recorder.Close(context.Background()) })
	return NewService(users, nil, nil, settings, sessions, recorder, zap.NewNop())
}

// ===== Tests =====

func TestSetActive(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New()

	t.Run("deactivation revokes all sessions", func(t *testing.T) {
		users := &MockUserRepo{}
		sessions := &MockSessionRevoker{}
		svc := newTestService(t, users, nil, sessions)
		userID := uuid.New()
		users.On("FindByID", ctx, userID).Return(&model.User{ID: userID, IsActive: true}, nil)
		users.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool { return !u.IsActive })).Return(nil)
		sessions.On("RevokeAllForUser", ctx, userID).Return(nil)

		u, err := svc.SetActive(ctx, actorID, userID, false, "10.0.0.1")
		assert.NoError(t, err)
		assert.False(t, u.IsActive)
		sessions.AssertCalled(t, "RevokeAllForUser", ctx, userID)
	})

	t.Run("reactivation does not touch sessions", func(t *testing.T) {
		users := &MockUserRepo{}
		sessions := &MockSessionRevoker{}
		svc := newTestService(t, users, nil, sessions)
		userID := uuid.New()
		users.On("FindByID", ctx, userID).Return(&model.User{ID: userID, IsActive: false}, nil)
		users.On("Update", ctx, mock.Anything).Return(nil)

		u, err := svc.SetActive(ctx, actorID, userID, true, "10.0.0.1")
		assert.NoError(t, err)
		assert.True(t, u.IsActive)
		sessions.AssertNotCalled(t, "RevokeAllForUser", mock.Anything, mock.Anything)
	})

	t.Run("no-op when already in the requested state", func(t *testing.T) {
		users := &MockUserRepo{}
		svc := newTestService(t, users, nil, nil)
		userID := uuid.New()
		users.On("FindByID", ctx, userID).Return(&model.User{ID: userID, IsActive: true}, nil)

		_, err := svc.SetActive(ctx, actorID, userID, true, "10.0.0.1")
		assert.NoError(t, err)
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestSetSuperAdmin(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New()

	t.Run("grants the role", func(t *testing.T) {
		users := &MockUserRepo{}
		svc := newTestService(t, users, nil, nil)
		userID := uuid.New()
		users.On("FindByID", ctx, userID).Return(&model.User{ID: userID, IsActive: true}, nil)
		users.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool { return u.IsSuperAdmin })).Return(nil)

		u, err := svc.SetSuperAdmin(ctx, actorID, userID, true, "10.0.0.1")
		assert.NoError(t, err)
		assert.True(t, u.IsSuperAdmin)
	})

	t.Run("self revocation is refused", func(t *testing.T) {
		users := &MockUserRepo{}
		svc := newTestService(t, users, nil, nil)

		_, err := svc.SetSuperAdmin(ctx, actorID, actorID, false, "10.0.0.1")
		assert.ErrorIs(t, err, ErrCannotRevokeSelf)
		users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("self grant is allowed to no effect when already superadmin", func(t *testing.T) {
		users := &MockUserRepo{}
		svc := newTestService(t, users, nil, nil)
		users.On("FindByID", ctx, actorID).Return(&model.User{ID: actorID, IsSuperAdmin: true}, nil)

		u, err := svc.SetSuperAdmin(ctx, actorID, actorID, true, "10.0.0.1")
		assert.NoError(t, err)
		assert.True(t, u.IsSuperAdmin)
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestUpdateSettings(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New()

	validInput := SettingsInput{
		EnforceStrongPasswords:   true,
		SessionTimeoutMinutes:    60,
		MaxLoginAttempts:         5,
		MaxTeamsPerUser:          10,
		MaxMembersPerTeam:        50,
		MaxDashboardsPerTeam:     20,
		EnableEmailNotifications: true,
		WeeklyReportEnabled:      true,
		ReportRecipients:         []string{"ops@example.com"},
		AuditRetentionDays:       30,
	}

	t.Run("persists the editable fields and the editor", func(t *testing.T) {
		users := &MockUserRepo{}
		settings := &MockSettingsRepo{}
		svc := newTestService(t, users, settings, nil)
		settings.On("Get", ctx).Return(model.DefaultSystemSettings(), nil)
		settings.On("Update", ctx, mock.MatchedBy(func(s *model.SystemSettings) bool {
			return s.SessionTimeoutMinutes == 60 && s.UpdatedBy != nil && *s.UpdatedBy == actorID
		})).Return(nil)

		updated, err := svc.UpdateSettings(ctx, actorID, validInput, "10.0.0.1")
		assert.NoError(t, err)
		assert.Equal(t, 60, updated.SessionTimeoutMinutes)
	})

	t.Run("rejects non-positive limits", func(t *testing.T) {
		svc := newTestService(t, &MockUserRepo{}, nil, nil)
		bad := validInput
		bad.MaxTeamsPerUser = 0

		_, err := svc.UpdateSettings(ctx, actorID, bad, "10.0.0.1")
		assert.ErrorIs(t, err, ErrInvalidSettings)
	})

	t.Run("rejects malformed report recipients", func(t *testing.T) {
		svc := newTestService(t, &MockUserRepo{}, nil, nil)
		bad := validInput
		bad.ReportRecipients = []string{"not-an-address"}

		_, err := svc.UpdateSettings(ctx, actorID, bad, "10.0.0.1")
		assert.ErrorIs(t, err, ErrInvalidSettings)
	})
}
