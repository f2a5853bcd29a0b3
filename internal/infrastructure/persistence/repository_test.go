package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	appshared "github.com/garage/backend/internal/application/shared"
	"github.com/garage/backend/internal/domain/finance"
	"github.com/garage/backend/internal/domain/shared"
	"github.com/garage/backend/internal/domain/workorder"
	"github.com/garage/backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newWorkOrder(t *testing.T, number string, status workorder.Status) *workorder.WorkOrder {
	t.Helper()
	wo, err := workorder.NewWorkOrder(number, "ABC1D23", "brake noise", status)
	require.NoError(t, err)
	return wo
}

func TestGormWorkOrderRepository_SaveAndFind(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormWorkOrderRepository(db)
	ctx := context.Background()

	wo := newWorkOrder(t, "OS-1", workorder.StatusOpen)
	require.NoError(t, repo.Save(ctx, wo))

	found, err := repo.FindByID(ctx, wo.ID)
	require.NoError(t, err)
	assert.Equal(t, "OS-1", found.Number)
	assert.Equal(t, workorder.StatusOpen, found.Status)

	next := workorder.StatusReadyToClose
	_, err = found.ChangeStatus(&next)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, found))

	again, err := repo.FindByIDForUpdate(ctx, wo.ID)
	require.NoError(t, err)
	assert.Equal(t, workorder.StatusReadyToClose, again.Status)

	require.NoError(t, again.MarkDeleted())
	require.NoError(t, repo.Save(ctx, again))
	_, err = repo.FindByID(ctx, wo.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormWorkOrderRepository_FindAll(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormWorkOrderRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newWorkOrder(t, "OS-1", workorder.StatusOpen)))
	require.NoError(t, repo.Save(ctx, newWorkOrder(t, "OS-2", workorder.StatusOpen)))
	require.NoError(t, repo.Save(ctx, newWorkOrder(t, "OS-3", workorder.StatusQuote)))

	status := workorder.StatusOpen
	filter := workorder.Filter{Filter: shared.DefaultFilter(), Status: &status}
	filter.OrderBy = "number"
	filter.OrderDir = "asc"

	rows, total, err := repo.FindAll(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, rows, 2)
	assert.Equal(t, "OS-1", rows[0].Number)
	assert.Equal(t, "OS-2", rows[1].Number)
}

func TestGormWorkOrderRepository_RecalcTotals(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormWorkOrderRepository(db)
	lines := NewGormWorkOrderLineRepository(db)
	ctx := context.Background()

	wo := newWorkOrder(t, "OS-1", workorder.StatusOpen)
	require.NoError(t, repo.Save(ctx, wo))

	pads, err := workorder.NewItem(wo.ID, nil, "brake pads", dec("2"), dec("120"), dec("70"))
	require.NoError(t, err)
	require.NoError(t, lines.SaveItem(ctx, pads))

	removed, err := workorder.NewItem(wo.ID, nil, "wrong part", dec("1"), dec("999"), dec("500"))
	require.NoError(t, err)
	now := time.Now()
	removed.DeletedAt = &now
	require.NoError(t, lines.SaveItem(ctx, removed))

	labor, err := workorder.NewLabor(wo.ID, "replace pads", dec("2"), dec("50"))
	require.NoError(t, err)
	require.NoError(t, lines.SaveLabor(ctx, labor))

	updated, err := repo.RecalcTotals(ctx, wo.ID)
	require.NoError(t, err)
	assert.Equal(t, "240.00", updated.PartsTotal.StringFixed(2))
	assert.Equal(t, "100.00", updated.LaborTotal.StringFixed(2))
	assert.Equal(t, "340.00", updated.Total.StringFixed(2))

	stored, err := repo.FindByID(ctx, wo.ID)
	require.NoError(t, err)
	assert.Equal(t, "340.00", stored.Total.StringFixed(2))

	cost, err := lines.PartsCost(ctx, wo.ID)
	require.NoError(t, err)
	assert.Equal(t, "140.00", cost.StringFixed(2))

	items, err := lines.ListItems(ctx, wo.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = lines.FindItem(ctx, wo.ID, removed.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormBankAccountRepository_IncrementDecrement(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormBankAccountRepository(db)
	ctx := context.Background()

	acc, err := finance.NewBankAccount("Main", "Itau", dec("1000"))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, acc))

	require.NoError(t, repo.Increment(ctx, acc.ID, dec("97")))
	got, err := repo.FindByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "1097.00", got.Balance.StringFixed(2))

	require.NoError(t, repo.Decrement(ctx, acc.ID, dec("97")))
	got, err = repo.FindByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "1000.00", got.Balance.StringFixed(2))

	got.Active = false
	require.NoError(t, repo.Save(ctx, got))
	err = repo.Increment(ctx, acc.ID, dec("1"))
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.NoError(t, repo.Decrement(ctx, acc.ID, dec("1")))

	assert.ErrorIs(t, repo.Increment(ctx, uuid.New(), dec("1")), shared.ErrNotFound)
}

func TestGormCashBookRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormCashBookRepository(db)
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	rent, err := finance.NewManualEntry("rent", dec("900"), finance.DirectionOut, finance.CategoryExpense, nil, day)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, rent))

	sale, err := finance.NewManualEntry("counter sale", dec("50"), finance.DirectionIn, finance.CategoryRevenue, nil, day)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, sale))

	receivableID := uuid.New()
	accountID := uuid.New()
	recon := &finance.Receivable{BaseEntity: shared.NewBaseEntity(), NetAmount: dec("97"), Installment: 1, TotalInstallments: 2}
	recon.ID = receivableID
	entry := finance.NewReconciliationEntry(recon, accountID, day)
	require.NoError(t, repo.Create(ctx, entry))

	n, err := repo.CountByReceivable(ctx, receivableID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	revenue, err := repo.SumRevenue(ctx, day.AddDate(0, 0, -1), day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, "50.00", revenue.StringFixed(2))

	require.NoError(t, sale.SoftDeleteManual("typo"))
	require.NoError(t, repo.SoftDelete(ctx, sale))
	revenue, err = repo.SumRevenue(ctx, day.AddDate(0, 0, -1), day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.True(t, revenue.IsZero())

	deleted, err := repo.FindByID(ctx, sale.ID)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted())
	assert.Equal(t, "typo", deleted.DeleteReason)

	rows, total, err := repo.FindAll(ctx, finance.CashBookFilter{Filter: shared.DefaultFilter()})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, rows, 2)

	removed, err := repo.DeleteByReceivable(ctx, receivableID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	n, err = repo.CountByReceivable(ctx, receivableID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGormReceivableRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormReceivableRepository(db)
	ctx := context.Background()

	op, err := finance.NewOperator("Cielo", uuid.New())
	require.NoError(t, err)
	op.CreditMultiRate = dec("3")
	op.CreditMultiLeadDays = 30
	p, err := finance.NewPayment(uuid.New(), finance.PaymentMethodCredit, dec("200"), 2, &op.ID, nil)
	require.NoError(t, err)

	today := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	rs, err := finance.BuildReceivables(p, op, today)
	require.NoError(t, err)
	require.NoError(t, repo.CreateBatch(ctx, rs))

	byPayment, err := repo.FindByPayment(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, byPayment, 2)
	assert.Equal(t, 1, byPayment[0].Installment)

	sum, n, err := repo.SumPendingDue(ctx, today, today.AddDate(0, 0, 31))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, "97.00", sum.StringFixed(2))

	first, err := repo.FindByIDForUpdate(ctx, byPayment[0].ID)
	require.NoError(t, err)
	require.NoError(t, first.Confirm("maria", today))
	require.NoError(t, repo.Save(ctx, first))

	received, n, err := repo.SumReceived(ctx, today.AddDate(0, 0, -1), today.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, "97.00", received.StringFixed(2))

	status := finance.ReceivableStatusPending
	rows, total, err := repo.FindAll(ctx, finance.ReceivableFilter{Filter: shared.DefaultFilter(), Status: &status})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, 2, rows[0].Installment)

	deleted, err := repo.DeletePendingByPayment(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestGormClosingRepository_UniquePerWorkOrder(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormClosingRepository(db)
	ctx := context.Background()
	woID := uuid.New()

	c1, err := finance.NewFinancialClosing(woID, dec("140"), dec("340"), "ana")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, c1))

	c2, err := finance.NewFinancialClosing(woID, dec("140"), dec("340"), "ana")
	require.NoError(t, err)
	err = repo.Create(ctx, c2)
	assert.ErrorIs(t, err, shared.ErrConflict)

	found, err := repo.FindByWorkOrder(ctx, woID)
	require.NoError(t, err)
	assert.Equal(t, c1.ID, found.ID)

	_, err = repo.FindByWorkOrder(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormTransactionScope_RollsBack(t *testing.T) {
	db := testutil.NewTestDB(t)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()

	wo := newWorkOrder(t, "OS-9", workorder.StatusOpen)
	err := scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		if err := repos.WorkOrderRepo().Save(ctx, wo); err != nil {
			return err
		}
		return shared.NewValidationError("abort")
	})
	require.Error(t, err)

	_, err = NewGormWorkOrderRepository(db).FindByID(ctx, wo.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestFindByIDForUpdate_LocksRow(t *testing.T) {
	t.Run("work order", func(t *testing.T) {
		m := testutil.NewMockDB(t)
		repo := NewGormWorkOrderRepository(m.DB)
		id := uuid.New()

		m.Mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "work_orders" WHERE id = $1 AND deleted_at IS NULL ORDER BY "work_orders"."id" LIMIT $2 FOR UPDATE`)).
			WithArgs(id, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "number", "status"}).
				AddRow(id.String(), "OS-1", "READY_TO_CLOSE"))

		wo, err := repo.FindByIDForUpdate(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, workorder.StatusReadyToClose, wo.Status)
		m.ExpectationsWereMet(t)
	})

	t.Run("receivable", func(t *testing.T) {
		m := testutil.NewMockDB(t)
		repo := NewGormReceivableRepository(m.DB)
		id := uuid.New()

		m.Mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "receivables" WHERE id = $1 ORDER BY "receivables"."id" LIMIT $2 FOR UPDATE`)).
			WithArgs(id, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(id.String(), "PENDING"))

		r, err := repo.FindByIDForUpdate(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, finance.ReceivableStatusPending, r.Status)
		m.ExpectationsWereMet(t)
	})

	t.Run("bank account balance change", func(t *testing.T) {
		m := testutil.NewMockDB(t)
		repo := NewGormBankAccountRepository(m.DB)
		id := uuid.New()

		m.Mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "bank_accounts" WHERE id = $1 ORDER BY "bank_accounts"."id" LIMIT $2 FOR UPDATE`)).
			WithArgs(id, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "balance", "active"}).AddRow(id.String(), "Main", "10", true))
		m.Mock.ExpectExec(regexp.QuoteMeta(`UPDATE "bank_accounts" SET "balance"=balance + $1`)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Increment(context.Background(), id, dec("5")))
		m.ExpectationsWereMet(t)
	})

	t.Run("missing row maps to not found", func(t *testing.T) {
		m := testutil.NewMockDB(t)
		repo := NewGormWorkOrderRepository(m.DB)
		id := uuid.New()

		m.Mock.ExpectQuery(`SELECT \* FROM "work_orders"`).
			WithArgs(id, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByIDForUpdate(context.Background(), id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		m.ExpectationsWereMet(t)
	})
}
