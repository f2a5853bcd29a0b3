package persistence

import (
	"context"
	"time"

	"github.com/garage/backend/internal/domain/finance"
	"github.com/garage/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormReceivableRepository implements finance.ReceivableRepository using GORM
type GormReceivableRepository struct {
	db *gorm.DB
}

// NewGormReceivableRepository creates a new GormReceivableRepository
func NewGormReceivableRepository(db *gorm.DB) *GormReceivableRepository {
	return &GormReceivableRepository{db: db}
}

// FindByID finds a receivable by its ID
func (r *GormReceivableRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Receivable, error) {
	var model models.ReceivableModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFoundOr(err, "receivable")
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a receivable and locks its row for the rest of the transaction
func (r *GormReceivableRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*finance.Receivable, error) {
	var model models.ReceivableModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "receivable")
	}
	return model.ToDomain(), nil
}

// FindAll lists receivables with filtering and pagination
func (r *GormReceivableRepository) FindAll(ctx context.Context, filter finance.ReceivableFilter) ([]finance.Receivable, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ReceivableModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.WorkOrderID != nil {
		query = query.Where("work_order_id = ?", *filter.WorkOrderID)
	}
	if filter.OperatorID != nil {
		query = query.Where("operator_id = ?", *filter.OperatorID)
	}
	if filter.DueFrom != nil {
		query = query.Where("expected_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("expected_date < ?", *filter.DueTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ReceivableModel
	if err := query.
		Order(orderClause(filter.OrderBy, filter.OrderDir, ReceivableSortFields, "expected_date")).
		Order("installment ASC").
		Offset(filter.Offset()).
		Limit(pageSize(filter.PageSize)).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]finance.Receivable, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// FindByPayment lists the installments of a payment in order
func (r *GormReceivableRepository) FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]finance.Receivable, error) {
	var rows []models.ReceivableModel
	if err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("installment ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]finance.Receivable, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// CreateBatch inserts all installments of a payment
func (r *GormReceivableRepository) CreateBatch(ctx context.Context, receivables []finance.Receivable) error {
	if len(receivables) == 0 {
		return nil
	}
	rows := make([]*models.ReceivableModel, len(receivables))
	for i := range receivables {
		rows[i] = models.ReceivableFromDomain(&receivables[i])
	}
	return r.db.WithContext(ctx).Create(rows).Error
}

// Save updates a receivable
func (r *GormReceivableRepository) Save(ctx context.Context, rec *finance.Receivable) error {
	return r.db.WithContext(ctx).Save(models.ReceivableFromDomain(rec)).Error
}

// DeletePendingByPayment removes the PENDING installments of a payment
func (r *GormReceivableRepository) DeletePendingByPayment(ctx context.Context, paymentID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("payment_id = ? AND status = ?", paymentID, finance.ReceivableStatusPending).
		Delete(&models.ReceivableModel{})
	return result.RowsAffected, result.Error
}

// SumPendingDue totals PENDING net amounts expected in [from, to)
func (r *GormReceivableRepository) SumPendingDue(ctx context.Context, from, to time.Time) (decimal.Decimal, int64, error) {
	return r.sum(ctx, r.db.WithContext(ctx).
		Where("status = ?", finance.ReceivableStatusPending).
		Where("expected_date >= ? AND expected_date < ?", from, to))
}

// SumReceived totals RECEIVED net amounts confirmed in [from, to)
func (r *GormReceivableRepository) SumReceived(ctx context.Context, from, to time.Time) (decimal.Decimal, int64, error) {
	return r.sum(ctx, r.db.WithContext(ctx).
		Where("status = ?", finance.ReceivableStatusReceived).
		Where("confirmed_at >= ? AND confirmed_at < ?", from, to))
}

func (r *GormReceivableRepository) sum(_ context.Context, query *gorm.DB) (decimal.Decimal, int64, error) {
	var res sumResult
	if err := query.Model(&models.ReceivableModel{}).
		Select("COALESCE(SUM(net_amount), 0) AS total, COUNT(*) AS n").
		Scan(&res).Error; err != nil {
		return decimal.Zero, 0, err
	}
	return res.Total.Round(4), res.N, nil
}

var _ finance.ReceivableRepository = (*GormReceivableRepository)(nil)
