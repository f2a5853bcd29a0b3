package persistence

import (
	"context"
	"time"

	"github.com/garage/backend/internal/domain/workorder"
	"github.com/garage/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormWorkOrderRepository implements workorder.Repository using GORM
type GormWorkOrderRepository struct {
	db *gorm.DB
}

// NewGormWorkOrderRepository creates a new GormWorkOrderRepository
func NewGormWorkOrderRepository(db *gorm.DB) *GormWorkOrderRepository {
	return &GormWorkOrderRepository{db: db}
}

// FindByID finds an active work order by its ID
func (r *GormWorkOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*workorder.WorkOrder, error) {
	var model models.WorkOrderModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "work order")
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds an active work order and locks its row for the rest of the transaction
func (r *GormWorkOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*workorder.WorkOrder, error) {
	var model models.WorkOrderModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "work order")
	}
	return model.ToDomain(), nil
}

// FindAll lists active work orders with filtering and pagination
func (r *GormWorkOrderRepository) FindAll(ctx context.Context, filter workorder.Filter) ([]workorder.WorkOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.WorkOrderModel{}).Where("deleted_at IS NULL")
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.VehiclePlate != "" {
		query = query.Where("vehicle_plate = ?", filter.VehiclePlate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.WorkOrderModel
	if err := query.
		Order(orderClause(filter.OrderBy, filter.OrderDir, WorkOrderSortFields, "created_at")).
		Offset(filter.Offset()).
		Limit(pageSize(filter.PageSize)).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]workorder.WorkOrder, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Save creates or updates a work order
func (r *GormWorkOrderRepository) Save(ctx context.Context, wo *workorder.WorkOrder) error {
	return r.db.WithContext(ctx).Save(models.WorkOrderFromDomain(wo)).Error
}

type sumResult struct {
	Total decimal.Decimal
	N     int64
}

// RecalcTotals recomputes the parts and labor totals from active lines and stores them
func (r *GormWorkOrderRepository) RecalcTotals(ctx context.Context, id uuid.UUID) (*workorder.WorkOrder, error) {
	wo, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var parts, labor sumResult
	if err := r.db.WithContext(ctx).Model(&models.WorkOrderItemModel{}).
		Select("COALESCE(SUM(quantity * unit_price), 0) AS total").
		Where("work_order_id = ? AND deleted_at IS NULL", id).
		Scan(&parts).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&models.WorkOrderLaborModel{}).
		Select("COALESCE(SUM(hours * hourly_rate), 0) AS total").
		Where("work_order_id = ? AND deleted_at IS NULL", id).
		Scan(&labor).Error; err != nil {
		return nil, err
	}

	wo.ApplyTotals(parts.Total.Round(4), labor.Total.Round(4))
	if err := r.db.WithContext(ctx).Model(&models.WorkOrderModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"parts_total": wo.PartsTotal,
			"labor_total": wo.LaborTotal,
			"total":       wo.Total,
			"updated_at":  time.Now(),
		}).Error; err != nil {
		return nil, err
	}
	return wo, nil
}

// pageSize caps unbounded listings
func pageSize(n int) int {
	if n <= 0 {
		return 20
	}
	if n > 200 {
		return 200
	}
	return n
}

var _ workorder.Repository = (*GormWorkOrderRepository)(nil)
