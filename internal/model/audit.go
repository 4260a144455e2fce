package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction enumerates the privileged actions recorded in the audit trail.
type AuditAction string

const (
	AuditActionLogin            AuditAction = "login"
	AuditActionLogout           AuditAction = "logout"
	AuditActionCreateTeam       AuditAction = "create_team"
	AuditActionUpdateTeam       AuditAction = "update_team"
	AuditActionDeleteTeam       AuditAction = "delete_team"
	AuditActionInviteUser       AuditAction = "invite_user"
	AuditActionAcceptInvitation AuditAction = "accept_invitation"
	AuditActionRejectInvitation AuditAction = "reject_invitation"
	AuditActionRevokeInvitation AuditAction = "revoke_invitation"
	AuditActionAddDashboard     AuditAction = "add_dashboard"
	AuditActionUpdateDashboard  AuditAction = "update_dashboard"
	AuditActionDeleteDashboard  AuditAction = "delete_dashboard"
	AuditActionUserRoleChange   AuditAction = "user_role_change"
	AuditActionUserStatusChange AuditAction = "user_status_change"
	AuditActionUpdateSettings   AuditAction = "update_settings"
)

// String returns the string representation of the action.
func (a AuditAction) String() string {
	return string(a)
}

// AuditLog is an append-only record of a privileged action.
// Rows are never updated or deleted by application code.
type AuditLog struct {
	ID         uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID     uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;index"`
	Action     AuditAction `json:"action" gorm:"not null;index"`
	EntityType string      `json:"entity_type" gorm:"not null"`
	EntityID   *uuid.UUID  `json:"entity_id,omitempty" gorm:"type:uuid"`
	Details    *string     `json:"details,omitempty" gorm:"type:jsonb"`
	IPAddress  *string     `json:"ip_address,omitempty" gorm:"type:inet"`
	CreatedAt  time.Time   `json:"created_at" gorm:"index:,sort:desc"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName returns the database table name.
func (AuditLog) TableName() string {
	return "audit_logs"
}

// AuditLogFilter represents audit log query filters.
type AuditLogFilter struct {
	UserID     *uuid.UUID `json:"user_id" form:"user_id"`
	Action     string     `json:"action" form:"action"`
	EntityType string     `json:"entity_type" form:"entity_type"`
	PaginationRequest
}
