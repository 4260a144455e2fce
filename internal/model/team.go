package model

import (
	"time"

	"github.com/google/uuid"
)

// TeamRole represents a member's role within a team.
type TeamRole string

const (
	TeamRoleOwner  TeamRole = "OWNER"
	TeamRoleAdmin  TeamRole = "ADMIN"
	TeamRoleMember TeamRole = "MEMBER"
	TeamRoleViewer TeamRole = "VIEWER"
)

// roleLevel maps roles to their hierarchy level (higher = more permissions).
var roleLevel = map[TeamRole]int{
	TeamRoleOwner:  100,
	TeamRoleAdmin:  75,
	TeamRoleMember: 50,
	TeamRoleViewer: 25,
}

// String returns the string representation of the role.
func (r TeamRole) String() string {
	return string(r)
}

// IsValid checks if the role is valid.
func (r TeamRole) IsValid() bool {
	_, ok := roleLevel[r]
	return ok
}

// Level returns the hierarchy level of the role. Unknown roles rank below
// every valid role.
func (r TeamRole) Level() int {
	if level, ok := roleLevel[r]; ok {
		return level
	}
	return 0
}

// IsAtLeast checks if this role has at least the same level as another.
func (r TeamRole) IsAtLeast(other TeamRole) bool {
	return r.Level() >= other.Level()
}

// CanAssign checks if a role can assign another role to members.
// Owner is only ever granted through team ownership, never assigned.
func (r TeamRole) CanAssign(target TeamRole) bool {
	if !target.IsValid() || target == TeamRoleOwner {
		return false
	}
	return r == TeamRoleOwner || r == TeamRoleAdmin
}

// ParseTeamRole parses a role string into a TeamRole.
func ParseTeamRole(s string) (TeamRole, bool) {
	r := TeamRole(s)
	return r, r.IsValid()
}

// Team represents a tenant unit owning dashboards and memberships.
type Team struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	OwnerID     uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`

	// Billing attributes carried from the portal schema. No payment
	// provider is integrated; these are informational columns.
	BillingStatus   *string    `json:"billing_status,omitempty"`
	BillingCycle    *string    `json:"billing_cycle,omitempty"`
	NextBillingDate *time.Time `json:"next_billing_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Owner   *User        `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Members []TeamMember `json:"members,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name.
func (Team) TableName() string {
	return "teams"
}

// IsOwnedBy checks if the team is owned by the given user.
func (t *Team) IsOwnedBy(userID uuid.UUID) bool {
	return t.OwnerID == userID
}

// TeamMember binds a user to a team with a role.
// At most one row exists per (team, user) pair.
type TeamMember struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TeamID uuid.UUID `json:"team_id" gorm:"type:uuid;not null;uniqueIndex:idx_team_user"`
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_team_user"`
	Role   TeamRole  `json:"role" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName returns the database table name.
func (TeamMember) TableName() string {
	return "team_members"
}

// TeamMemberWithUser represents a member row joined with user details.
type TeamMemberWithUser struct {
	Member TeamMember `json:"member"`
	Email  string     `json:"email"`
	Name   string     `json:"name"`
}

// InvitationStatus represents the stored status of an invitation.
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "PENDING"
	InvitationStatusAccepted InvitationStatus = "ACCEPTED"
	InvitationStatusRejected InvitationStatus = "REJECTED"
	InvitationStatusRevoked  InvitationStatus = "REVOKED"
	InvitationStatusExpired  InvitationStatus = "EXPIRED"
)

// String returns the string representation.
func (s InvitationStatus) String() string {
	return string(s)
}

// IsTerminal returns true once the invitation can no longer change state.
func (s InvitationStatus) IsTerminal() bool {
	switch s {
	case InvitationStatusAccepted, InvitationStatusRejected,
		InvitationStatusRevoked, InvitationStatusExpired:
		return true
	default:
		return false
	}
}

// TeamInvitation represents a pending grant of membership.
type TeamInvitation struct {
	ID        uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TeamID    uuid.UUID        `json:"team_id" gorm:"type:uuid;not null;index"`
	InviterID uuid.UUID        `json:"inviter_id" gorm:"type:uuid;not null"`
	Email     string           `json:"email" gorm:"not null;index"`
	Role      TeamRole         `json:"role" gorm:"not null"`
	Token     string           `json:"-" gorm:"uniqueIndex;not null"`
	Status    InvitationStatus `json:"status" gorm:"default:PENDING"`
	ExpiresAt time.Time        `json:"expires_at" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Team    *Team `json:"team,omitempty" gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE"`
	Inviter *User `json:"inviter,omitempty" gorm:"foreignKey:InviterID"`
}

// TableName returns the database table name.
func (TeamInvitation) TableName() string {
	return "team_invitations"
}

// IsExpired returns true if the invitation deadline has passed,
// regardless of the stored status.
func (i *TeamInvitation) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

// EffectiveStatus derives the invitation status. A stored PENDING whose
// deadline has passed reads as EXPIRED; expiry comes from the timestamp,
// not only from the stored enum.
func (i *TeamInvitation) EffectiveStatus() InvitationStatus {
	if i.Status == InvitationStatusPending && i.IsExpired() {
		return InvitationStatusExpired
	}
	return i.Status
}

// IsPending returns true if the invitation can still be acted on.
func (i *TeamInvitation) IsPending() bool {
	return i.EffectiveStatus() == InvitationStatusPending
}

// IsForEmail checks if the invitation addresses the given email.
func (i *TeamInvitation) IsForEmail(email string) bool {
	return i.Email == email
}
