// Package dashboard implements per-team embedded dashboards.
package dashboard

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/catometrics/server/internal/domain/audit"
	"github.com/catometrics/server/internal/model"
)

// Repository defines the interface for dashboard persistence.
type Repository interface {
	Create(ctx context.Context, d *model.Dashboard) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Dashboard, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]*model.Dashboard, error)
	ListByFilter(ctx context.Context, filter model.DashboardFilter) ([]*model.Dashboard, int64, error)
	CountByTeam(ctx context.Context, teamID uuid.UUID) (int64, error)
	Update(ctx context.Context, d *model.Dashboard) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SettingsReader provides the platform limits.
type SettingsReader interface {
	Get(ctx context.Context) (*model.SystemSettings, error)
}

// Input is the mutable attribute set of a dashboard.
type Input struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	URL         string `json:"url" binding:"required"`
	IsActive    *bool  `json:"is_active"`
}

// Service implements dashboard CRUD for a team.
type Service struct {
	dashboards Repository
	settings   SettingsReader
	recorder   *audit.Recorder
	logger     *zap.Logger
}

// NewService creates a new dashboard service.
func NewService(dashboards Repository, settings SettingsReader, recorder *audit.Recorder, logger *zap.Logger) *Service {
	return &Service{
		dashboards: dashboards,
		settings:   settings,
		recorder:   recorder,
		logger:     logger,
	}
}

// Create adds a dashboard to a team.
func (s *Service) Create(ctx context.Context, actorID, teamID uuid.UUID, in Input, ipAddress string) (*model.Dashboard, error) {
	if err := validate(&in); err != nil {
		return nil, err
	}

	limits, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	count, err := s.dashboards.CountByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("count dashboards: %w", err)
	}
	if limits.MaxDashboardsPerTeam > 0 && count >= int64(limits.MaxDashboardsPerTeam) {
		return nil, ErrDashboardLimitReached
	}

	d := &model.Dashboard{
		ID:          uuid.New(),
		TeamID:      teamID,
		Name:        in.Name,
		Description: in.Description,
		URL:         in.URL,
		IsActive:    true,
	}
	if in.IsActive != nil {
		d.IsActive = *in.IsActive
	}

	if err := s.dashboards.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create dashboard: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		UserID:     actorID,
		Action:     model.AuditActionAddDashboard,
		EntityType: "dashboard",
		EntityID:   &d.ID,
		Details:    map[string]any{"team_id": teamID.String(), "name": d.Name},
		IPAddress:  ipAddress,
	})
	return d, nil
}

// Get retrieves a dashboard belonging to the given team.
func (s *Service) Get(ctx context.Context, teamID, id uuid.UUID) (*model.Dashboard, error) {
	d, err := s.dashboards.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.TeamID != teamID {
		return nil, ErrDashboardNotFound
	}
	return d, nil
}

// ListByTeam lists a team's dashboards.
func (s *Service) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]*model.Dashboard, error) {
	return s.dashboards.ListByTeam(ctx, teamID)
}

// ListByFilter lists dashboards across teams (admin console).
func (s *Service) ListByFilter(ctx context.Context, filter model.DashboardFilter) ([]*model.Dashboard, int64, error) {
	filter.DefaultPagination()
	return s.dashboards.ListByFilter(ctx, filter)
}

// Update replaces a dashboard's attributes.
func (s *Service) Update(ctx context.Context, actorID, teamID, id uuid.UUID, in Input, ipAddress string) (*model.Dashboard, error) {
	if err := validate(&in); err != nil {
		return nil, err
	}

	d, err := s.Get(ctx, teamID, id)
	if err != nil {
		return nil, err
	}

	d.Name = in.Name
	d.Description = in.Description
	d.URL = in.URL
	if in.IsActive != nil {
		d.IsActive = *in.IsActive
	}

	if err := s.dashboards.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("update dashboard: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		UserID:     actorID,
		Action:     model.AuditActionUpdateDashboard,
		EntityType: "dashboard",
		EntityID:   &d.ID,
		Details:    map[string]any{"team_id": teamID.String(), "name": d.Name},
		IPAddress:  ipAddress,
	})
	return d, nil
}

// Delete removes a dashboard.
func (s *Service) Delete(ctx context.Context, actorID, teamID, id uuid.UUID, ipAddress string) error {
	d, err := s.Get(ctx, teamID, id)
	if err != nil {
		return err
	}

	if err := s.dashboards.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete dashboard: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		UserID:     actorID,
		Action:     model.AuditActionDeleteDashboard,
		EntityType: "dashboard",
		EntityID:   &id,
		Details:    map[string]any{"team_id": teamID.String(), "name": d.Name},
		IPAddress:  ipAddress,
	})
	return nil
}

// validate rejects malformed input before any persistence call.
func validate(in *Input) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return ErrNameRequired
	}
	u, err := url.Parse(strings.TrimSpace(in.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}
	in.URL = u.String()
	return nil
}
