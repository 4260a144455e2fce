package model

import (
	"time"

	"github.com/google/uuid"
)

// Dashboard represents an embedded analytics dashboard owned by a team.
// The URL points at an external report (Looker Studio or similar); the
// server never fetches it.
type Dashboard struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TeamID      uuid.UUID `json:"team_id" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	URL         string    `json:"url" gorm:"not null"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Team *Team `json:"team,omitempty" gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name.
func (Dashboard) TableName() string {
	return "dashboards"
}

// DashboardFilter represents dashboard query filters for the admin console.
type DashboardFilter struct {
	TeamID   *uuid.UUID `json:"team_id" form:"team_id"`
	IsActive *bool      `json:"is_active" form:"is_active"`
	Search   string     `json:"search" form:"search"`
	PaginationRequest
}
