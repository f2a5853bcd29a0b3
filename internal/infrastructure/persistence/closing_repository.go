package persistence

import (
	"context"

	"github.com/garage/backend/internal/domain/finance"
	"github.com/garage/backend/internal/domain/shared"
	"github.com/garage/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormClosingRepository implements finance.ClosingRepository using GORM
type GormClosingRepository struct {
	db *gorm.DB
}

// NewGormClosingRepository creates a new GormClosingRepository
func NewGormClosingRepository(db *gorm.DB) *GormClosingRepository {
	return &GormClosingRepository{db: db}
}

// Create inserts the closing record. A second closing for the same work order
// hits the unique index and comes back as a CONFLICT.
func (r *GormClosingRepository) Create(ctx context.Context, closing *finance.FinancialClosing) error {
	err := r.db.WithContext(ctx).Create(models.FinancialClosingFromDomain(closing)).Error
	if isUniqueViolation(err) {
		return shared.NewConflictError("work order already has a financial closing").WithCause(err)
	}
	return err
}

// FindByWorkOrder finds the closing of a work order
func (r *GormClosingRepository) FindByWorkOrder(ctx context.Context, workOrderID uuid.UUID) (*finance.FinancialClosing, error) {
	var model models.FinancialClosingModel
	if err := r.db.WithContext(ctx).Where("work_order_id = ?", workOrderID).First(&model).Error; err != nil {
		return nil, notFoundOr(err, "financial closing")
	}
	return model.ToDomain(), nil
}

var _ finance.ClosingRepository = (*GormClosingRepository)(nil)
