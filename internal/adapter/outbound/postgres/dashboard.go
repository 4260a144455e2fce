package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/catometrics/server/internal/domain/dashboard"
	"github.com/catometrics/server/internal/model"
)

// DashboardAdapter persists dashboards.
type DashboardAdapter struct {
	db *gorm.DB
}

// NewDashboardAdapter creates a new dashboard database adapter.
func NewDashboardAdapter(db *gorm.DB) *DashboardAdapter {
	return &DashboardAdapter{db: db}
}

func (a *DashboardAdapter) Create(ctx context.Context, d *model.Dashboard) error {
	return dbFrom(ctx, a.db).Create(d).Error
}

func (a *DashboardAdapter) FindByID(ctx context.Context, id uuid.UUID) (*model.Dashboard, error) {
	var d model.Dashboard
	err := dbFrom(ctx, a.db).Where("id = ?", id).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dashboard.ErrDashboardNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (a *DashboardAdapter) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]*model.Dashboard, error) {
	var dashboards []*model.Dashboard
	err := dbFrom(ctx, a.db).
		Where("team_id = ?", teamID).
		Order("created_at ASC").
		Find(&dashboards).Error
	return dashboards, err
}

func (a *DashboardAdapter) ListByFilter(ctx context.Context, filter model.DashboardFilter) ([]*model.Dashboard, int64, error) {
	var dashboards []*model.Dashboard
	var total int64

	query := dbFrom(ctx, a.db).Model(&model.Dashboard{})

	if filter.TeamID != nil {
		query = query.Where("team_id = ?", *filter.TeamID)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Search != "" {
		query = query.Where("name ILIKE ? OR description ILIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	filter.DefaultPagination()
	if err := query.Offset(filter.Offset()).Limit(filter.PageSize).Order("created_at DESC").Find(&dashboards).Error; err != nil {
		return nil, 0, err
	}

	return dashboards, total, nil
}

func (a *DashboardAdapter) CountByTeam(ctx context.Context, teamID uuid.UUID) (int64, error) {
	var count int64
	err := dbFrom(ctx, a.db).
		Model(&model.Dashboard{}).
		Where("team_id = ?", teamID).
		Count(&count).Error
	return count, err
}

func (a *DashboardAdapter) Update(ctx context.Context, d *model.Dashboard) error {
	return dbFrom(ctx, a.db).Save(d).Error
}

func (a *DashboardAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFrom(ctx, a.db).Delete(&model.Dashboard{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return dashboard.ErrDashboardNotFound
	}
	return nil
}
