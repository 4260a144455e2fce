package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user.
type User struct {
	ID    uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email string    `json:"email" gorm:"uniqueIndex;not null"`
	Name  string    `json:"name"`

	// Credential authentication. Nil for accounts provisioned without a password.
	PasswordHash *string `json:"-" gorm:"column:password_hash"`

	// Platform flags
	IsActive     bool `json:"is_active" gorm:"column:is_active;default:true"`
	IsSuperAdmin bool `json:"is_super_admin" gorm:"column:is_super_admin;default:false"`

	LastLogin *time.Time `json:"last_login,omitempty" gorm:"column:last_login"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

// TableName returns the database table name.
func (User) TableName() string {
	return "users"
}

// HasPassword returns true if the user has a password credential.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// CanLogin checks if the user is allowed to login.
// Deactivated users must never be authorized regardless of other flags.
func (u *User) CanLogin() bool {
	return u.IsActive
}

// UserFilter represents user query filters for the admin console.
type UserFilter struct {
	Email        string `json:"email" form:"email"`
	Search       string `json:"search" form:"search"`
	IsActive     *bool  `json:"is_active" form:"is_active"`
	IsSuperAdmin *bool  `json:"is_super_admin" form:"is_super_admin"`
	PaginationRequest
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	IsActive     bool       `json:"is_active"`
	IsSuperAdmin bool       `json:"is_super_admin"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ToResponse converts a User to UserResponse.
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		IsActive:     u.IsActive,
		IsSuperAdmin: u.IsSuperAdmin,
		LastLogin:    u.LastLogin,
		CreatedAt:    u.CreatedAt,
	}
}

// RefreshToken represents a stored refresh token. The raw token never
// touches the database, only its hash.
type RefreshToken struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	TokenHash string     `json:"-" gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"not null;index"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	UserAgent string     `json:"user_agent,omitempty"`
	IPAddress string     `json:"ip_address,omitempty" gorm:"type:inet"`
}

// TableName returns the database table name.
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// IsExpired checks if the token has expired.
func (t *RefreshToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// IsRevoked checks if the token has been revoked.
func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// IsValid checks if the token is still valid.
func (t *RefreshToken) IsValid() bool {
	return !t.IsExpired() && !t.IsRevoked()
}
