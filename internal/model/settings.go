package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// SystemSettings is the platform-wide configuration edited in the
// superadmin console. Stored as a single row.
type SystemSettings struct {
	ID uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`

	// Security
	EnforceStrongPasswords bool `json:"enforce_strong_passwords" gorm:"default:true"`
	SessionTimeoutMinutes  int  `json:"session_timeout_minutes" gorm:"default:120"`
	MaxLoginAttempts       int  `json:"max_login_attempts" gorm:"default:5"`

	// Limits
	MaxTeamsPerUser      int `json:"max_teams_per_user" gorm:"default:10"`
	MaxMembersPerTeam    int `json:"max_members_per_team" gorm:"default:50"`
	MaxDashboardsPerTeam int `json:"max_dashboards_per_team" gorm:"default:20"`

	// Email
	EnableEmailNotifications bool           `json:"enable_email_notifications" gorm:"default:true"`
	WeeklyReportEnabled      bool           `json:"weekly_report_enabled" gorm:"default:true"`
	ReportRecipients         pq.StringArray `json:"report_recipients" gorm:"type:text[]"`

	// Maintenance
	MaintenanceMode    bool `json:"maintenance_mode" gorm:"default:false"`
	AuditRetentionDays int  `json:"audit_retention_days" gorm:"default:30"`

	UpdatedAt time.Time  `json:"updated_at"`
	UpdatedBy *uuid.UUID `json:"updated_by,omitempty" gorm:"type:uuid"`
}

// TableName returns the database table name.
func (SystemSettings) TableName() string {
	return "system_settings"
}

// DefaultSystemSettings returns the settings applied before the row exists.
func DefaultSystemSettings() *SystemSettings {
	return &SystemSettings{
		EnforceStrongPasswords:   true,
		SessionTimeoutMinutes:    120,
		MaxLoginAttempts:         5,
		MaxTeamsPerUser:          10,
		MaxMembersPerTeam:        50,
		MaxDashboardsPerTeam:     20,
		EnableEmailNotifications: true,
		WeeklyReportEnabled:      true,
		ReportRecipients:         pq.StringArray{},
	}
}
