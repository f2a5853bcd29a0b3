package persistence

import (
	"context"

	"github.com/garage/backend/internal/domain/finance"
	"github.com/garage/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOperatorRepository implements finance.OperatorRepository using GORM
type GormOperatorRepository struct {
	db *gorm.DB
}

// NewGormOperatorRepository creates a new GormOperatorRepository
func NewGormOperatorRepository(db *gorm.DB) *GormOperatorRepository {
	return &GormOperatorRepository{db: db}
}

// FindByID finds an operator by its ID
func (r *GormOperatorRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Operator, error) {
	var model models.OperatorModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFoundOr(err, "card operator")
	}
	return model.ToDomain(), nil
}

// FindAll lists all operators by name
func (r *GormOperatorRepository) FindAll(ctx context.Context) ([]finance.Operator, error) {
	var rows []models.OperatorModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]finance.Operator, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates an operator
func (r *GormOperatorRepository) Save(ctx context.Context, op *finance.Operator) error {
	return r.db.WithContext(ctx).Save(models.OperatorFromDomain(op)).Error
}

var _ finance.OperatorRepository = (*GormOperatorRepository)(nil)
