package repository

import (
	"context"

	"github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/procurement/entity"
	"gorm.io/gorm"
)

// ActivityLogRepository bitácora de órdenes
type ActivityLogRepository struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

// Create registra una entrada de bitácora
func (r *ActivityLogRepository) Create(ctx context.Context, logRow *entity.ActivityLog) error {
	return r.db.WithContext(ctx).Create(logRow).Error
}

// FindByEntity lists log entries for an entity, newest first.
func (r *ActivityLogRepository) FindByEntity(ctx context.Context, entityType, entityID string, limit int) ([]entity.ActivityLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []entity.ActivityLog
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
