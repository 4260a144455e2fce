package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/catometrics/server/internal/model"
)

// SettingsAdapter persists the single platform settings row.
type SettingsAdapter struct {
	db *gorm.DB
}

// NewSettingsAdapter creates a new system settings database adapter.
func NewSettingsAdapter(db *gorm.DB) *SettingsAdapter {
	return &SettingsAdapter{db: db}
}

// Get returns the settings row, or the defaults if none has been
// written yet.
func (a *SettingsAdapter) Get(ctx context.Context) (*model.SystemSettings, error) {
	var s model.SystemSettings
	err := dbFrom(ctx, a.db).Order("updated_at DESC").First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.DefaultSystemSettings(), nil
		}
		return nil, err
	}
	return &s, nil
}

// Update writes the settings row, creating it on first save.
func (a *SettingsAdapter) Update(ctx context.Context, settings *model.SystemSettings) error {
	return dbFrom(ctx, a.db).Save(settings).Error
}
