package persistence

import (
	"context"

	"github.com/garage/backend/internal/domain/workorder"
	"github.com/garage/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormWorkOrderLineRepository implements workorder.LineRepository using GORM
type GormWorkOrderLineRepository struct {
	db *gorm.DB
}

// NewGormWorkOrderLineRepository creates a new GormWorkOrderLineRepository
func NewGormWorkOrderLineRepository(db *gorm.DB) *GormWorkOrderLineRepository {
	return &GormWorkOrderLineRepository{db: db}
}

// SaveItem creates or updates a part line
func (r *GormWorkOrderLineRepository) SaveItem(ctx context.Context, item *workorder.Item) error {
	return r.db.WithContext(ctx).Save(models.WorkOrderItemFromDomain(item)).Error
}

// FindItem finds an active part line of a work order
func (r *GormWorkOrderLineRepository) FindItem(ctx context.Context, workOrderID, itemID uuid.UUID) (*workorder.Item, error) {
	var model models.WorkOrderItemModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND work_order_id = ? AND deleted_at IS NULL", itemID, workOrderID).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "work order item")
	}
	return model.ToDomain(), nil
}

// ListItems lists active part lines in insertion order
func (r *GormWorkOrderLineRepository) ListItems(ctx context.Context, workOrderID uuid.UUID) ([]workorder.Item, error) {
	var rows []models.WorkOrderItemModel
	if err := r.db.WithContext(ctx).
		Where("work_order_id = ? AND deleted_at IS NULL", workOrderID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]workorder.Item, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// SaveLabor creates or updates a labor line
func (r *GormWorkOrderLineRepository) SaveLabor(ctx context.Context, labor *workorder.Labor) error {
	return r.db.WithContext(ctx).Save(models.WorkOrderLaborFromDomain(labor)).Error
}

// FindLabor finds an active labor line of a work order
func (r *GormWorkOrderLineRepository) FindLabor(ctx context.Context, workOrderID, laborID uuid.UUID) (*workorder.Labor, error) {
	var model models.WorkOrderLaborModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND work_order_id = ? AND deleted_at IS NULL", laborID, workOrderID).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "work order labor")
	}
	return model.ToDomain(), nil
}

// ListLabors lists active labor lines in insertion order
func (r *GormWorkOrderLineRepository) ListLabors(ctx context.Context, workOrderID uuid.UUID) ([]workorder.Labor, error) {
	var rows []models.WorkOrderLaborModel
	if err := r.db.WithContext(ctx).
		Where("work_order_id = ? AND deleted_at IS NULL", workOrderID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]workorder.Labor, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// PartsCost sums quantity times unit cost over active part lines
func (r *GormWorkOrderLineRepository) PartsCost(ctx context.Context, workOrderID uuid.UUID) (decimal.Decimal, error) {
	var res sumResult
	if err := r.db.WithContext(ctx).Model(&models.WorkOrderItemModel{}).
		Select("COALESCE(SUM(quantity * unit_cost), 0) AS total").
		Where("work_order_id = ? AND deleted_at IS NULL", workOrderID).
		Scan(&res).Error; err != nil {
		return decimal.Zero, err
	}
	return res.Total.Round(4), nil
}

var _ workorder.LineRepository = (*GormWorkOrderLineRepository)(nil)
