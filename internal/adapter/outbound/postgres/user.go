package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/catometrics/server/internal/domain/auth"
	"github.com/catometrics/server/internal/model"
)

// UserAdapter persists users.
type UserAdapter struct {
	db *gorm.DB
}

// NewUserAdapter creates a new user database adapter.
func NewUserAdapter(db *gorm.DB) *UserAdapter {
	return &UserAdapter{db: db}
}

func (a *UserAdapter) Create(ctx context.Context, u *model.User) error {
	return dbFrom(ctx, a.db).Create(u).Error
}

func (a *UserAdapter) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	err := dbFrom(ctx, a.db).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (a *UserAdapter) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := dbFrom(ctx, a.db).Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (a *UserAdapter) List(ctx context.Context, filter model.UserFilter) ([]*model.User, int64, error) {
	var users []*model.User
	var total int64

	query := dbFrom(ctx, a.db).Model(&model.User{})

	if filter.Email != "" {
		query = query.Where("email ILIKE ?", "%"+filter.Email+"%")
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.IsSuperAdmin != nil {
		query = query.Where("is_super_admin = ?", *filter.IsSuperAdmin)
	}
	if filter.Search != "" {
		query = query.Where("name ILIKE ? OR email ILIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	filter.DefaultPagination()
	if err := query.Offset(filter.Offset()).Limit(filter.PageSize).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (a *UserAdapter) Update(ctx context.Context, u *model.User) error {
	return dbFrom(ctx, a.db).Save(u).Error
}

func (a *UserAdapter) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return dbFrom(ctx, a.db).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("last_login", at).Error
}
