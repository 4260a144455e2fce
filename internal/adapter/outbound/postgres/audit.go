package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/catometrics/server/internal/model"
)

// AuditAdapter persists the append-only audit trail.
type AuditAdapter struct {
	db *gorm.DB
}

// NewAuditAdapter creates a new audit log database adapter.
func NewAuditAdapter(db *gorm.DB) *AuditAdapter {
	return &AuditAdapter{db: db}
}

func (a *AuditAdapter) Create(ctx context.Context, entry *model.AuditLog) error {
	return dbFrom(ctx, a.db).Create(entry).Error
}

func (a *AuditAdapter) List(ctx context.Context, filter model.AuditLogFilter) ([]*model.AuditLog, int64, error) {
	var logs []*model.AuditLog
	var total int64

	query := dbFrom(ctx, a.db).Model(&model.AuditLog{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	filter.DefaultPagination()
	if err := query.Preload("User").Offset(filter.Offset()).Limit(filter.PageSize).Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
