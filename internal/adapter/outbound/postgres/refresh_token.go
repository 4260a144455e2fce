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

// RefreshTokenAdapter persists hashed refresh tokens.
type RefreshTokenAdapter struct {
	db *gorm.DB
}

// NewRefreshTokenAdapter creates a new refresh token database adapter.
func NewRefreshTokenAdapter(db *gorm.DB) *RefreshTokenAdapter {
	return &RefreshTokenAdapter{db: db}
}

func (a *RefreshTokenAdapter) Create(ctx context.Context, token *model.RefreshToken) error {
	return dbFrom(ctx, a.db).Create(token).Error
}

func (a *RefreshTokenAdapter) FindByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	var token model.RefreshToken
	err := dbFrom(ctx, a.db).Where("token_hash = ?", tokenHash).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// An unknown hash and a forged token are indistinguishable
			// to the caller.
			return nil, auth.ErrInvalidToken
		}
		return nil, err
	}
	return &token, nil
}

func (a *RefreshTokenAdapter) Revoke(ctx context.Context, id uuid.UUID) error {
	result := dbFrom(ctx, a.db).
		Model(&model.RefreshToken{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", time.Now())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return auth.ErrInvalidToken
	}
	return nil
}

func (a *RefreshTokenAdapter) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	return dbFrom(ctx, a.db).
		Model(&model.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", time.Now()).Error
}

func (a *RefreshTokenAdapter) DeleteExpired(ctx context.Context, before time.Time) error {
	return dbFrom(ctx, a.db).
		Delete(&model.RefreshToken{}, "expires_at < ?", before).Error
}
