package repository

import (
	"context"
	"errors"

	"github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/maintenance/entity"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

// WorkOrderRepository órdenes de trabajo y plantas
type WorkOrderRepository struct {
	db *gorm.DB
}

func NewWorkOrderRepository(db *gorm.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: db}
}

// FindAll lista de órdenes de trabajo
func (r *WorkOrderRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.WorkOrder, int64, error) {
	var items []entity.WorkOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.WorkOrder{})
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if plantID := filters["plant_id"]; plantID != "" {
		query = query.Where("plant_id = ?", plantID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}

// FindByID busca una orden de trabajo
func (r *WorkOrderRepository) FindByID(ctx context.Context, id string) (*entity.WorkOrder, error) {
	var wo entity.WorkOrder
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&wo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &wo, nil
}

// Create crea una orden de trabajo
func (r *WorkOrderRepository) Create(ctx context.Context, wo *entity.WorkOrder) error {
	return r.db.WithContext(ctx).Create(wo).Error
}

// FindPlantByID busca una planta
func (r *WorkOrderRepository) FindPlantByID(ctx context.Context, id string) (*entity.Plant, error) {
	var plant entity.Plant
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&plant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &plant, nil
}

// ListPlants lista de plantas activas
func (r *WorkOrderRepository) ListPlants(ctx context.Context) ([]entity.Plant, error) {
	var plants []entity.Plant
	err := r.db.WithContext(ctx).Where("status = ?", "active").Order("code").Find(&plants).Error
	return plants, err
}

// CreatePlant registra una planta
func (r *WorkOrderRepository) CreatePlant(ctx context.Context, plant *entity.Plant) error {
	return r.db.WithContext(ctx).Create(plant).Error
}
