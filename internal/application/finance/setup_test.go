package finance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/garage/backend/internal/domain/finance"
	"github.com/garage/backend/internal/domain/workorder"
	"github.com/garage/backend/internal/infrastructure/persistence"
	"github.com/garage/backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db            *gorm.DB
	now           time.Time
	workOrders    *persistence.GormWorkOrderRepository
	paymentRepo   *persistence.GormPaymentRepository
	cashRepo      *persistence.GormCashBookRepository
	accountRepo   *persistence.GormBankAccountRepository
	operatorRepo  *persistence.GormOperatorRepository
	receivRepo    *persistence.GormReceivableRepository
	idempotency   *memoryIdempotency
	payments      *PaymentService
	consolidation *ConsolidationService
	receivables   *ReceivableService
	cashBook      *CashBookService
	accounts      *AccountService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	f := &fixture{
		db:           db,
		now:          time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC),
		workOrders:   persistence.NewGormWorkOrderRepository(db),
		paymentRepo:  persistence.NewGormPaymentRepository(db),
		cashRepo:     persistence.NewGormCashBookRepository(db),
		accountRepo:  persistence.NewGormBankAccountRepository(db),
		operatorRepo: persistence.NewGormOperatorRepository(db),
		receivRepo:   persistence.NewGormReceivableRepository(db),
		idempotency:  newMemoryIdempotency(),
	}
	opts := []Option{WithClock(func() time.Time { return f.now }), WithLocation(time.UTC)}
	scope := persistence.NewGormTransactionScope(db)
	log := zap.NewNop()

	f.payments = NewPaymentService(f.paymentRepo, f.receivRepo, f.operatorRepo, scope, f.idempotency, log, opts...)
	f.consolidation = NewConsolidationService(persistence.NewGormClosingRepository(db), scope, log, opts...)
	f.receivables = NewReceivableService(f.receivRepo, scope, log, opts...)
	f.cashBook = NewCashBookService(f.cashRepo, scope, log, opts...)
	f.accounts = NewAccountService(f.accountRepo, f.operatorRepo, log)
	return f
}

func (f *fixture) today() time.Time {
	return time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
}

func (f *fixture) workOrder(t *testing.T, number string, status workorder.Status) *workorder.WorkOrder {
	t.Helper()
	wo, err := workorder.NewWorkOrder(number, "ABC1D23", "brakes", workorder.StatusOpen)
	require.NoError(t, err)
	wo.Status = status
	require.NoError(t, f.workOrders.Save(context.Background(), wo))
	return wo
}

func (f *fixture) setStatus(t *testing.T, wo *workorder.WorkOrder, status workorder.Status) {
	t.Helper()
	wo.Status = status
	require.NoError(t, f.workOrders.Save(context.Background(), wo))
}

func (f *fixture) bankAccount(t *testing.T, opening string) *finance.BankAccount {
	t.Helper()
	acc, err := f.accounts.CreateBankAccount(context.Background(), CreateBankAccountRequest{
		Name:           "Main " + uuid.NewString()[:8],
		Bank:           "Banco",
		OpeningBalance: decimal.RequireFromString(opening),
	})
	require.NoError(t, err)
	return acc
}

// operator charges 1.5% on debit (1 day), 2.5% on single credit (30 days)
// and 3% on split credit (30 days, then every 30 days)
func (f *fixture) operator(t *testing.T, destination uuid.UUID) *finance.Operator {
	t.Helper()
	op, err := f.accounts.CreateOperator(context.Background(), OperatorRequest{
		Name:                 "Acquirer",
		DebitRate:            decimal.RequireFromString("1.5"),
		DebitLeadDays:        1,
		CreditSingleRate:     decimal.RequireFromString("2.5"),
		CreditSingleLeadDays: 30,
		CreditMultiRate:      decimal.NewFromInt(3),
		CreditMultiLeadDays:  30,
		DestinationAccountID: destination,
	})
	require.NoError(t, err)
	return op
}

func (f *fixture) balance(t *testing.T, id uuid.UUID) string {
	t.Helper()
	acc, err := f.accounts.GetBankAccount(context.Background(), id)
	require.NoError(t, err)
	return acc.Balance.StringFixed(2)
}

func (f *fixture) count(t *testing.T, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	q := f.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func pay(method finance.PaymentMethod, value string, installments int, operatorID, accountID *uuid.UUID) RegisterPaymentRequest {
	return RegisterPaymentRequest{
		Method:        string(method),
		GrossValue:    decimal.RequireFromString(value),
		Installments:  installments,
		OperatorID:    operatorID,
		BankAccountID: accountID,
	}
}

// memoryIdempotency is a map-backed IdempotencyStore
type memoryIdempotency struct {
	mu   sync.Mutex
	keys map[string]string
}

func newMemoryIdempotency() *memoryIdempotency {
	return &memoryIdempotency{keys: map[string]string{}}
}

func (m *memoryIdempotency) Claim(_ context.Context, key, value string, _ time.Duration) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.keys[key]; ok {
		return existing, false, nil
	}
	m.keys[key] = value
	return value, true, nil
}

func (m *memoryIdempotency) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}
