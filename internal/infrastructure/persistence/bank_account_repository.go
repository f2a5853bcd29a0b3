package persistence

import (
	"context"
	"time"

	"github.com/garage/backend/internal/domain/finance"
	"github.com/garage/backend/internal/domain/shared"
	"github.com/garage/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBankAccountRepository implements finance.BankAccountRepository using GORM
type GormBankAccountRepository struct {
	db *gorm.DB
}

// NewGormBankAccountRepository creates a new GormBankAccountRepository
func NewGormBankAccountRepository(db *gorm.DB) *GormBankAccountRepository {
	return &GormBankAccountRepository{db: db}
}

// FindByID finds a bank account by its ID
func (r *GormBankAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.BankAccount, error) {
	var model models.BankAccountModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFoundOr(err, "bank account")
	}
	return model.ToDomain(), nil
}

// FindAll lists all bank accounts by name
func (r *GormBankAccountRepository) FindAll(ctx context.Context) ([]finance.BankAccount, error) {
	var rows []models.BankAccountModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]finance.BankAccount, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates a bank account
func (r *GormBankAccountRepository) Save(ctx context.Context, account *finance.BankAccount) error {
	return r.db.WithContext(ctx).Save(models.BankAccountFromDomain(account)).Error
}

// Increment credits an active account under a row lock
func (r *GormBankAccountRepository) Increment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	return r.adjust(ctx, id, amount, true)
}

// Decrement debits an account under a row lock. Inactive accounts are still debited
// so that reversals always restore the ledger.
func (r *GormBankAccountRepository) Decrement(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	return r.adjust(ctx, id, amount.Neg(), false)
}

func (r *GormBankAccountRepository) adjust(ctx context.Context, id uuid.UUID, delta decimal.Decimal, requireActive bool) error {
	var model models.BankAccountModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return notFoundOr(err, "bank account")
	}
	if requireActive && !model.Active {
		return shared.NewValidationError("bank account " + model.Name + " is inactive")
	}
	return r.db.WithContext(ctx).Model(&models.BankAccountModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"balance":    gorm.Expr("balance + ?", delta),
			"updated_at": time.Now(),
		}).Error
}

var _ finance.BankAccountRepository = (*GormBankAccountRepository)(nil)
