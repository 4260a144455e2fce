package dashboard

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

type MockDashboardRepo struct {
	mock.Mock
}

func (m *MockDashboardRepo) Create(ctx context.Context, d *model.Dashboard) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDashboardRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Dashboard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dashboard), args.Error(1)
}

func (m *MockDashboardRepo) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]*model.Dashboard, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Dashboard), args.Error(1)
}

func (m *MockDashboardRepo) ListByFilter(ctx context.Context, filter model.DashboardFilter) ([]*model.Dashboard, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*model.Dashboard), args.Get(1).(int64), args.Error(2)
}

func (m *MockDashboardRepo) CountByTeam(ctx context.Context, teamID uuid.UUID) (int64, error) {
	args := m.Called(ctx, teamID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDashboardRepo) Update(ctx context.Context, d *model.Dashboard) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDashboardRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
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

type noopAuditRepo struct{}

func (noopAuditRepo) Create(ctx context.Context, entry *model.AuditLog) error { return nil }
func (noopAuditRepo) List(ctx context.Context, filter model.AuditLogFilter) ([]*model.AuditLog, int64, error) {
	return nil, 0, nil
}

func newTestService(t *testing.T, repo *MockDashboardRepo, settings *model.SystemSettings) *Service {
	t.Helper()
	recorder := audit.NewRecorder(noopAuditRepo{}, 16, nil, zap.NewNop())
	t.Cleanup(func() { _ = recorder.Close(context.Background()) })
	return NewService(repo, stubSettings{settings}, recorder, zap.NewNop())
}

// ===== Tests =====

func TestCreateDashboard(t *testing.T) {
	ctx := context.Background()
	teamID := uuid.New()
	actorID := uuid.New()

	t.Run("creates with a valid https url", func(t *testing.T) {
		repo := &MockDashboardRepo{}
		svc := newTestService(t, repo, nil)
		repo.On("CountByTeam", ctx, teamID).Return(int64(0), nil)
		repo.On("Create", ctx, mock.MatchedBy(func(d *model.Dashboard) bool {
			return d.TeamID == teamID && d.IsActive
		})).Return(nil)

		d, err := svc.Create(ctx, actorID, teamID, Input{
			Name: "Weekly KPIs",
			URL:  "https://lookerstudio.google.com/embed/reporting/abc",
		}, "10.0.0.1")
		assert.NoError(t, err)
		assert.Equal(t, "Weekly KPIs", d.Name)
	})

	t.Run("rejects non-http schemes", func(t *testing.T) {
		repo := &MockDashboardRepo{}
		svc := newTestService(t, repo, nil)

		for _, bad := range []string{"javascript:alert(1)", "ftp://host/report", "lookerstudio.google.com/x", ""} {
			_, err := svc.Create(ctx, actorID, teamID, Input{Name: "x", URL: bad}, "10.0.0.1")
			assert.ErrorIs(t, err, ErrInvalidURL, bad)
		}
	})

	t.Run("rejects empty name", func(t *testing.T) {
		repo := &MockDashboardRepo{}
		svc := newTestService(t, repo, nil)

		_, err := svc.Create(ctx, actorID, teamID, Input{Name: "  ", URL: "https://example.com/r"}, "10.0.0.1")
		assert.ErrorIs(t, err, ErrNameRequired)
	})

	t.Run("enforces the per-team limit", func(t *testing.T) {
		repo := &MockDashboardRepo{}
		settings := model.DefaultSystemSettings()
		settings.MaxDashboardsPerTeam = 3
		svc := newTestService(t, repo, settings)
		repo.On("CountByTeam", ctx, teamID).Return(int64(3), nil)

		_, err := svc.Create(ctx, actorID, teamID, Input{Name: "x", URL: "https://example.com/r"}, "10.0.0.1")
		assert.ErrorIs(t, err, ErrDashboardLimitReached)
	})
}

func TestGetDashboard(t *testing.T) {
	ctx := context.Background()
	teamID := uuid.New()

	t.Run("dashboard of another team is not found", func(t *testing.T) {
		repo := &MockDashboardRepo{}
		svc := newTestService(t, repo, nil)
		id := uuid.New()
		repo.On("FindByID", ctx, id).Return(&model.Dashboard{ID: id, TeamID: uuid.New()}, nil)

		_, err := svc.Get(ctx, teamID, id)
		assert.ErrorIs(t, err, ErrDashboardNotFound)
	})
}

func TestUpdateDashboard(t *testing.T) {
	ctx := context.Background()
	teamID := uuid.New()
	actorID := uuid.New()

	t.Run("updates fields and active flag", func(t *testing.T) {
		repo := &MockDashboardRepo{}
		svc := newTestService(t, repo, nil)
		id := uuid.New()
		repo.On("FindByID", ctx, id).Return(&model.Dashboard{ID: id, TeamID: teamID, Name: "Old", IsActive: true}, nil)
		repo.On("Update", ctx, mock.Anything).Return(nil)

		inactive := false
		d, err := svc.Update(ctx, actorID, teamID, id, Input{
			Name:     "New",
			URL:      "https://example.com/r2",
			IsActive: &inactive,
		}, "10.0.0.1")
		assert.NoError(t, err)
		assert.Equal(t, "New", d.Name)
		assert.False(t, d.IsActive)
	})
}
