package finance

import (
	"context"
	"time"

	"github.com/garage/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds an active payment
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindActiveByWorkOrder lists payments of a work order that are not soft-deleted
	FindActiveByWorkOrder(ctx context.Context, workOrderID uuid.UUID) ([]Payment, error)

	// Save creates or updates a payment
	Save(ctx context.Context, payment *Payment) error
}

// CashBookFilter defines filtering options for cash book listings
type CashBookFilter struct {
	shared.Filter
	From          *time.Time
	To            *time.Time
	BankAccountID *uuid.UUID
	ReceivableID  *uuid.UUID
	Category      *EntryCategory
	Direction     *Direction
}

// CashBookRepository defines the interface for cash book persistence
type CashBookRepository interface {
	// Create appends a new entry
	Create(ctx context.Context, entry *CashBookEntry) error

	// FindByID finds an entry, including soft-deleted ones
	FindByID(ctx context.Context, id uuid.UUID) (*CashBookEntry, error)

	// FindAll lists active entries
	FindAll(ctx context.Context, filter CashBookFilter) ([]CashBookEntry, int64, error)

	// SoftDelete persists the soft-delete marker of an entry
	SoftDelete(ctx context.Context, entry *CashBookEntry) error

	// DeleteByReceivable removes reconciliation entries linked to a receivable
	DeleteByReceivable(ctx context.Context, receivableID uuid.UUID) (int64, error)

	// CountByReceivable counts active entries linked to a receivable
	CountByReceivable(ctx context.Context, receivableID uuid.UUID) (int64, error)

	// SumRevenue totals active IN/REVENUE entries in [from, to)
	SumRevenue(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}

// BankAccountRepository defines the interface for bank account persistence
type BankAccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BankAccount, error)
	FindAll(ctx context.Context) ([]BankAccount, error)
	Save(ctx context.Context, account *BankAccount) error

	// Increment adds amount to the balance under a row lock
	Increment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error

	// Decrement subtracts amount from the balance under a row lock
	Decrement(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
}

// OperatorReader gives read-only access to operator fee tables
type OperatorReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Operator, error)
}

// OperatorRepository defines the interface for operator persistence
type OperatorRepository interface {
	OperatorReader
	FindAll(ctx context.Context) ([]Operator, error)
	Save(ctx context.Context, op *Operator) error
}

// ReceivableFilter defines filtering options for receivable queries
type ReceivableFilter struct {
	shared.Filter
	Status      *ReceivableStatus
	WorkOrderID *uuid.UUID
	OperatorID  *uuid.UUID
	DueFrom     *time.Time
	DueTo       *time.Time
}

// ReceivableRepository defines the interface for receivable persistence
type ReceivableRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Receivable, error)

	// FindByIDForUpdate finds a receivable and holds a row lock until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Receivable, error)

	FindAll(ctx context.Context, filter ReceivableFilter) ([]Receivable, int64, error)
	FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]Receivable, error)
	CreateBatch(ctx context.Context, receivables []Receivable) error
	Save(ctx context.Context, r *Receivable) error

	// DeletePendingByPayment removes PENDING installments of a payment
	DeletePendingByPayment(ctx context.Context, paymentID uuid.UUID) (int64, error)

	// SumPendingDue totals PENDING net amounts expected in [from, to)
	SumPendingDue(ctx context.Context, from, to time.Time) (decimal.Decimal, int64, error)

	// SumReceived totals RECEIVED net amounts confirmed in [from, to)
	SumReceived(ctx context.Context, from, to time.Time) (decimal.Decimal, int64, error)
}

// ClosingRepository defines the interface for financial closing persistence
type ClosingRepository interface {
	Create(ctx context.Context, closing *FinancialClosing) error
	FindByWorkOrder(ctx context.Context, workOrderID uuid.UUID) (*FinancialClosing, error)
}
