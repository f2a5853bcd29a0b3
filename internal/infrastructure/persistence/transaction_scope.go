package persistence

import (
	"context"

	appshared "github.com/garage/backend/internal/application/shared"
	"github.com/garage/backend/internal/domain/finance"
	"github.com/garage/backend/internal/domain/workorder"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appshared.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) WorkOrderRepo() workorder.Repository {
	return NewGormWorkOrderRepository(r.tx)
}

func (r *gormTransactionalRepositories) LineRepo() workorder.LineRepository {
	return NewGormWorkOrderLineRepository(r.tx)
}

func (r *gormTransactionalRepositories) PaymentRepo() finance.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

func (r *gormTransactionalRepositories) CashBookRepo() finance.CashBookRepository {
	return NewGormCashBookRepository(r.tx)
}

func (r *gormTransactionalRepositories) BankAccountRepo() finance.BankAccountRepository {
	return NewGormBankAccountRepository(r.tx)
}

// OperatorRepo bypasses the operator cache so reads see uncommitted writes of the transaction
func (r *gormTransactionalRepositories) OperatorRepo() finance.OperatorRepository {
	return NewGormOperatorRepository(r.tx)
}

func (r *gormTransactionalRepositories) ReceivableRepo() finance.ReceivableRepository {
	return NewGormReceivableRepository(r.tx)
}

func (r *gormTransactionalRepositories) ClosingRepo() finance.ClosingRepository {
	return NewGormClosingRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appshared.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appshared.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
