package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/catometrics/server/internal/domain/team"
	"github.com/catometrics/server/internal/model"
)

// TeamAdapter persists teams.
type TeamAdapter struct {
	db *gorm.DB
}

// NewTeamAdapter creates a new team database adapter.
func NewTeamAdapter(db *gorm.DB) *TeamAdapter {
	return &TeamAdapter{db: db}
}

func (a *TeamAdapter) Create(ctx context.Context, t *model.Team) error {
	return dbFrom(ctx, a.db).Create(t).Error
}

func (a *TeamAdapter) FindByID(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	var t model.Team
	err := dbFrom(ctx, a.db).Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, team.ErrTeamNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (a *TeamAdapter) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*model.Team, int64, error) {
	var teams []*model.Team
	var total int64

	query := dbFrom(ctx, a.db).
		Model(&model.Team{}).
		Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Offset(offset).Limit(limit).Order("teams.created_at DESC").Find(&teams).Error; err != nil {
		return nil, 0, err
	}
	return teams, total, nil
}

func (a *TeamAdapter) ListAll(ctx context.Context, limit, offset int) ([]*model.Team, int64, error) {
	var teams []*model.Team
	var total int64

	query := dbFrom(ctx, a.db).Model(&model.Team{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Offset(offset).Limit(limit).Order("created_at DESC").Find(&teams).Error; err != nil {
		return nil, 0, err
	}
	return teams, total, nil
}

func (a *TeamAdapter) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	err := dbFrom(ctx, a.db).
		Model(&model.Team{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error
	return count, err
}

func (a *TeamAdapter) Update(ctx context.Context, t *model.Team) error {
	return dbFrom(ctx, a.db).Save(t).Error
}

func (a *TeamAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	// Members, invitations and dashboards go with the team via FK cascade.
	result := dbFrom(ctx, a.db).Delete(&model.Team{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return team.ErrTeamNotFound
	}
	return nil
}

// MemberAdapter persists team membership rows.
type MemberAdapter struct {
	db *gorm.DB
}

// NewMemberAdapter creates a new team member database adapter.
func NewMemberAdapter(db *gorm.DB) *MemberAdapter {
	return &MemberAdapter{db: db}
}

func (a *MemberAdapter) Add(ctx context.Context, member *model.TeamMember) error {
	return dbFrom(ctx, a.db).Create(member).Error
}

func (a *MemberAdapter) Find(ctx context.Context, teamID, userID uuid.UUID) (*model.TeamMember, error) {
	var m model.TeamMember
	err := dbFrom(ctx, a.db).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, team.ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (a *MemberAdapter) ListWithUsers(ctx context.Context, teamID uuid.UUID) ([]*model.TeamMember, error) {
	var members []*model.TeamMember
	err := dbFrom(ctx, a.db).
		Preload("User").
		Where("team_id = ?", teamID).
		Order("created_at ASC").
		Find(&members).Error
	return members, err
}

func (a *MemberAdapter) UpdateRole(ctx context.Context, teamID, userID uuid.UUID, role model.TeamRole) error {
	result := dbFrom(ctx, a.db).
		Model(&model.TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return team.ErrMemberNotFound
	}
	return nil
}

func (a *MemberAdapter) Remove(ctx context.Context, teamID, userID uuid.UUID) error {
	result := dbFrom(ctx, a.db).
		Delete(&model.TeamMember{}, "team_id = ? AND user_id = ?", teamID, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return team.ErrMemberNotFound
	}
	return nil
}

func (a *MemberAdapter) Count(ctx context.Context, teamID uuid.UUID) (int64, error) {
	var count int64
	err := dbFrom(ctx, a.db).
		Model(&model.TeamMember{}).
		Where("team_id = ?", teamID).
		Count(&count).Error
	return count, err
}

// InvitationAdapter persists team invitations.
type InvitationAdapter struct {
	db *gorm.DB
}

// NewInvitationAdapter creates a new invitation database adapter.
func NewInvitationAdapter(db *gorm.DB) *InvitationAdapter {
	return &InvitationAdapter{db: db}
}

func (a *InvitationAdapter) Create(ctx context.Context, invitation *model.TeamInvitation) error {
	return dbFrom(ctx, a.db).Create(invitation).Error
}

func (a *InvitationAdapter) FindByID(ctx context.Context, id uuid.UUID) (*model.TeamInvitation, error) {
	var inv model.TeamInvitation
	err := dbFrom(ctx, a.db).Where("id = ?", id).First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, team.ErrInvitationNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (a *InvitationAdapter) FindByToken(ctx context.Context, token string) (*model.TeamInvitation, error) {
	var inv model.TeamInvitation
	err := dbFrom(ctx, a.db).Where("token = ?", token).First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, team.ErrInvitationNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (a *InvitationAdapter) FindPendingByEmail(ctx context.Context, teamID uuid.UUID, email string) (*model.TeamInvitation, error) {
	var inv model.TeamInvitation
	err := dbFrom(ctx, a.db).
		Where("team_id = ? AND email = ? AND status = ?", teamID, email, model.InvitationStatusPending).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, team.ErrInvitationNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (a *InvitationAdapter) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]*model.TeamInvitation, error) {
	var invitations []*model.TeamInvitation
	err := dbFrom(ctx, a.db).
		Where("team_id = ?", teamID).
		Order("created_at DESC").
		Find(&invitations).Error
	return invitations, err
}

func (a *InvitationAdapter) ListByEmail(ctx context.Context, email string) ([]*model.TeamInvitation, error) {
	var invitations []*model.TeamInvitation
	err := dbFrom(ctx, a.db).
		Preload("Team").
		Where("email = ?", email).
		Order("created_at DESC").
		Find(&invitations).Error
	return invitations, err
}

func (a *InvitationAdapter) UpdateStatus(ctx context.Context, id uuid.UUID, status model.InvitationStatus) error {
	result := dbFrom(ctx, a.db).
		Model(&model.TeamInvitation{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return team.ErrInvitationNotFound
	}
	return nil
}
