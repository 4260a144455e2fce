// Package admin implements the superadmin console: cross-tenant user,
// team and dashboard visibility, platform settings, and the audit trail.
// Authorization is enforced at the transport layer; every operation here
// assumes a verified superadmin caller.
package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/catometrics/server/internal/domain/audit"
	"github.com/catometrics/server/internal/model"
)

// UserRepository defines the cross-tenant user queries the console needs.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	List(ctx context.Context, filter model.UserFilter) ([]*model.User, int64, error)
	Update(ctx context.Context, user *model.User) error
}

// TeamLister lists teams across all tenants.
type TeamLister interface {
	ListAll(ctx context.Context, limit, offset int) ([]*model.Team, int64, error)
}

// DashboardLister lists dashboards across all tenants.
type DashboardLister interface {
	ListByFilter(ctx context.Context, filter model.DashboardFilter) ([]*model.Dashboard, int64, error)
}

// SettingsRepository persists the platform settings row.
type SettingsRepository interface {
	Get(ctx context.Context) (*model.SystemSettings, error)
	Update(ctx context.Context, settings *model.SystemSettings) error
}

// SessionRevoker invalidates all sessions of a user. Used when an
// account is deactivated so the lockout takes effect immediately.
type SessionRevoker interface {
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
}

// SettingsInput is the editable subset of SystemSettings.
type SettingsInput struct {
	EnforceStrongPasswords   bool     `json:"enforce_strong_passwords"`
	SessionTimeoutMinutes    int      `json:"session_timeout_minutes" binding:"min=1"`
	MaxLoginAttempts         int      `json:"max_login_attempts" binding:"min=1"`
	MaxTeamsPerUser          int      `json:"max_teams_per_user" binding:"min=1"`
	MaxMembersPerTeam        int      `json:"max_members_per_team" binding:"min=1"`
	MaxDashboardsPerTeam     int      `json:"max_dashboards_per_team" binding:"min=1"`
	EnableEmailNotifications bool     `json:"enable_email_notifications"`
	WeeklyReportEnabled      bool     `json:"weekly_report_enabled"`
	ReportRecipients         []string `json:"report_recipients"`
	MaintenanceMode          bool     `json:"maintenance_mode"`
	AuditRetentionDays       int      `json:"audit_retention_days" binding:"min=1"`
}

// Service implements the superadmin console operations.
type Service struct {
	users      UserRepository
	teams      TeamLister
	dashboards DashboardLister
	settings   SettingsRepository
	sessions   SessionRevoker
	recorder   *audit.Recorder
	logger     *zap.Logger
}

// NewService creates a new admin service.
func NewService(
	users UserRepository,
	teams TeamLister,
	dashboards DashboardLister,
	settings SettingsRepository,
	sessions SessionRevoker,
	recorder *audit.Recorder,
	logger *zap.Logger,
) *Service {
	return &Service{
		users:      users,
		teams:      teams,
		dashboards: dashboards,
		settings:   settings,
		sessions:   sessions,
		recorder:   recorder,
		logger:     logger,
	}
}

// ListUsers lists users across the platform.
func (s *Service) ListUsers(ctx context.Context, filter model.UserFilter) ([]*model.User, int64, error) {
	filter.DefaultPagination()
	return s.users.List(ctx, filter)
}

// GetUser retrieves a single user.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.users.FindByID(ctx, id)
}

// SetActive activates or deactivates an account. Deactivation revokes
// all of the user's refresh tokens so no new access tokens can be
// minted; in-flight access tokens are rejected on the next persisted
// authorization check.
func (s *Service) SetActive(ctx context.Context, actorID, userID uuid.UUID, active bool, ipAddress string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.IsActive == active {
		return u, nil
	}

	u.IsActive = active
	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if !active {
		if err := s.sessions.RevokeAllForUser(ctx, userID); err != nil {
			s.logger.Error("failed to revoke sessions for deactivated user",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
		}
	}

	s.recorder.Record(ctx, audit.Entry{
		UserID:     actorID,
		Action:     model.AuditActionUserStatusChange,
		EntityType: "user",
		EntityID:   &userID,
		Details:    map[string]any{"email": u.Email, "is_active": active},
		IPAddress:  ipAddress,
	})
	return u, nil
}

// SetSuperAdmin grants or revokes the platform superadmin role. A
// superadmin cannot revoke their own role; that path would leave the
// platform one mistake away from having no administrator.
func (s *Service) SetSuperAdmin(ctx context.Context, actorID, userID uuid.UUID, grant bool, ipAddress string) (*model.User, error) {
	if !grant && actorID == userID {
		return nil, ErrCannotRevokeSelf
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.IsSuperAdmin == grant {
		return u, nil
	}

	u.IsSuperAdmin = grant
	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		UserID:     actorID,
		Action:     model.AuditActionUserRoleChange,
		EntityType: "user",
		EntityID:   &userID,
		Details:    map[string]any{"email": u.Email, "is_super_admin": grant},
		IPAddress:  ipAddress,
	})
	return u, nil
}

// ListTeams lists teams across the platform.
func (s *Service) ListTeams(ctx context.Context, page model.PaginationRequest) ([]*model.Team, int64, error) {
	page.DefaultPagination()
	return s.teams.ListAll(ctx, page.PageSize, page.Offset())
}

// ListDashboards lists dashboards across the platform.
func (s *Service) ListDashboards(ctx context.Context, filter model.DashboardFilter) ([]*model.Dashboard, int64, error) {
	filter.DefaultPagination()
	return s.dashboards.ListByFilter(ctx, filter)
}

// ListAuditLogs reads the audit trail, newest first.
func (s *Service) ListAuditLogs(ctx context.Context, filter model.AuditLogFilter) ([]*model.AuditLog, int64, error) {
	filter.DefaultPagination()
	return s.recorder.List(ctx, filter)
}

// GetSettings returns the platform settings.
func (s *Service) GetSettings(ctx context.Context) (*model.SystemSettings, error) {
	return s.settings.Get(ctx)
}

// UpdateSettings replaces the editable platform settings.
func (s *Service) UpdateSettings(ctx context.Context, actorID uuid.UUID, in SettingsInput, ipAddress string) (*model.SystemSettings, error) {
	if err := validateSettings(in); err != nil {
		return nil, err
	}

	current, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	current.EnforceStrongPasswords = in.EnforceStrongPasswords
	current.SessionTimeoutMinutes = in.SessionTimeoutMinutes
	current.MaxLoginAttempts = in.MaxLoginAttempts
	current.MaxTeamsPerUser = in.MaxTeamsPerUser
	current.MaxMembersPerTeam = in.MaxMembersPerTeam
	current.MaxDashboardsPerTeam = in.MaxDashboardsPerTeam
	current.EnableEmailNotifications = in.EnableEmailNotifications
	current.WeeklyReportEnabled = in.WeeklyReportEnabled
	current.ReportRecipients = pq.StringArray(in.ReportRecipients)
	current.MaintenanceMode = in.MaintenanceMode
	current.AuditRetentionDays = in.AuditRetentionDays
	current.UpdatedBy = &actorID

	if err := s.settings.Update(ctx, current); err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		UserID:     actorID,
		Action:     model.AuditActionUpdateSettings,
		EntityType: "system_settings",
		EntityID:   &current.ID,
		IPAddress:  ipAddress,
	})
	return current, nil
}

func validateSettings(in SettingsInput) error {
	if in.SessionTimeoutMinutes <= 0 || in.MaxLoginAttempts <= 0 ||
		in.MaxTeamsPerUser <= 0 || in.MaxMembersPerTeam <= 0 ||
		in.MaxDashboardsPerTeam <= 0 || in.AuditRetentionDays <= 0 {
		return ErrInvalidSettings
	}
	for _, addr := range in.ReportRecipients {
		if !strings.Contains(addr, "@") {
			return fmt.Errorf("%w: bad report recipient %q", ErrInvalidSettings, addr)
		}
	}
	return nil
}
