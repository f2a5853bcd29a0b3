// Package shared holds application-layer contracts used by more than one service.
package shared

import (
	"context"

	"github.com/garage/backend/internal/domain/finance"
	"github.com/garage/backend/internal/domain/workorder"
)

// TransactionScope runs a unit of work atomically.
// If fn returns an error every write made through the repositories is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes repositories bound to the running transaction.
// Inside Execute, all reads and writes must go through these.
type TransactionalRepositories interface {
	WorkOrderRepo() workorder.Repository
	LineRepo() workorder.LineRepository
	PaymentRepo() finance.PaymentRepository
	CashBookRepo() finance.CashBookRepository
	BankAccountRepo() finance.BankAccountRepository
	OperatorRepo() finance.OperatorRepository
	ReceivableRepo() finance.ReceivableRepository
	ClosingRepo() finance.ClosingRepository
}
