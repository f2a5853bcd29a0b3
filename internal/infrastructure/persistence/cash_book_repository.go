package persistence

import (
	"context"
	"time"

	"github.com/garage/backend/internal/domain/finance"
	"github.com/garage/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCashBookRepository implements finance.CashBookRepository using GORM
type GormCashBookRepository struct {
	db *gorm.DB
}

// NewGormCashBookRepository creates a new GormCashBookRepository
func NewGormCashBookRepository(db *gorm.DB) *GormCashBookRepository {
	return &GormCashBookRepository{db: db}
}

// Create appends a new entry
func (r *GormCashBookRepository) Create(ctx context.Context, entry *finance.CashBookEntry) error {
	return r.db.WithContext(ctx).Create(models.CashBookEntryFromDomain(entry)).Error
}

// FindByID finds an entry by ID, soft-deleted ones included
func (r *GormCashBookRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.CashBookEntry, error) {
	var model models.CashBookEntryModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFoundOr(err, "cash book entry")
	}
	return model.ToDomain(), nil
}

// FindAll lists active entries with filtering and pagination
func (r *GormCashBookRepository) FindAll(ctx context.Context, filter finance.CashBookFilter) ([]finance.CashBookEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CashBookEntryModel{}).Where("deleted_at IS NULL")
	if filter.From != nil {
		query = query.Where("occurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("occurred_at < ?", *filter.To)
	}
	if filter.BankAccountID != nil {
		query = query.Where("bank_account_id = ?", *filter.BankAccountID)
	}
	if filter.ReceivableID != nil {
		query = query.Where("receivable_id = ?", *filter.ReceivableID)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Direction != nil {
		query = query.Where("direction = ?", *filter.Direction)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.CashBookEntryModel
	if err := query.
		Order(orderClause(filter.OrderBy, filter.OrderDir, CashBookSortFields, "occurred_at")).
		Offset(filter.Offset()).
		Limit(pageSize(filter.PageSize)).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]finance.CashBookEntry, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// SoftDelete persists the soft-delete marker of an entry
func (r *GormCashBookRepository) SoftDelete(ctx context.Context, entry *finance.CashBookEntry) error {
	result := r.db.WithContext(ctx).Model(&models.CashBookEntryModel{}).
		Where("id = ? AND deleted_at IS NULL", entry.ID).
		Updates(map[string]any{
			"deleted_at":    entry.DeletedAt,
			"delete_reason": entry.DeleteReason,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFoundOr(gorm.ErrRecordNotFound, "cash book entry")
	}
	return nil
}

// DeleteByReceivable hard-deletes the reconciliation entries linked to a receivable.
// Reversal erases the settlement so a later confirmation starts clean.
func (r *GormCashBookRepository) DeleteByReceivable(ctx context.Context, receivableID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("receivable_id = ?", receivableID).
		Delete(&models.CashBookEntryModel{})
	return result.RowsAffected, result.Error
}

// CountByReceivable counts active entries linked to a receivable
func (r *GormCashBookRepository) CountByReceivable(ctx context.Context, receivableID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.CashBookEntryModel{}).
		Where("receivable_id = ? AND deleted_at IS NULL", receivableID).
		Count(&n).Error
	return n, err
}

// SumRevenue totals active IN/REVENUE entries that occurred in [from, to)
func (r *GormCashBookRepository) SumRevenue(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var res sumResult
	if err := r.db.WithContext(ctx).Model(&models.CashBookEntryModel{}).
		Select("COALESCE(SUM(value), 0) AS total").
		Where("deleted_at IS NULL AND direction = ? AND category = ?", finance.DirectionIn, finance.CategoryRevenue).
		Where("occurred_at >= ? AND occurred_at < ?", from, to).
		Scan(&res).Error; err != nil {
		return decimal.Zero, err
	}
	return res.Total.Round(4), nil
}

var _ finance.CashBookRepository = (*GormCashBookRepository)(nil)
