package finance

import (
	"context"
	"testing"

	"github.com/garage/backend/internal/domain/finance"
	"github.com/garage/backend/internal/domain/shared"
	"github.com/garage/backend/internal/domain/workorder"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceivableService_ConfirmAndReverse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.bankAccount(t, "1000")
	op := f.operator(t, acc.ID)
	wo := f.workOrder(t, "WO-RCV", workorder.StatusOpen)
	res, err := f.payments.Register(ctx, wo.ID, pay(finance.PaymentMethodCredit, "200", 2, &op.ID, nil), "")
	require.NoError(t, err)
	id := res.Receivables[0].ID

	confirmed, err := f.receivables.Confirm(ctx, id, "  ana ")
	require.NoError(t, err)
	assert.Equal(t, finance.ReceivableStatusReceived, confirmed.Status)
	assert.Equal(t, "ana", confirmed.ConfirmedBy)
	require.NotNil(t, confirmed.ConfirmedAt)
	assert.Equal(t, "1097.00", f.balance(t, acc.ID))

	n, err := f.cashRepo.CountByReceivable(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	entries, _, err := f.cashRepo.FindAll(ctx, finance.CashBookFilter{Filter: shared.Filter{Page: 1, PageSize: 10}, ReceivableID: &id})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, finance.CategoryReconciliation, entries[0].Category)
	assert.Equal(t, "97.00", entries[0].Value.StringFixed(2))
	assert.Equal(t, acc.ID, *entries[0].BankAccountID)

	_, err = f.receivables.Confirm(ctx, id, "ana")
	assert.ErrorIs(t, err, shared.ErrConflict)
	assert.Equal(t, "1097.00", f.balance(t, acc.ID))

	reversed, err := f.receivables.Reverse(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, finance.ReceivableStatusPending, reversed.Status)
	assert.Empty(t, reversed.ConfirmedBy)
	assert.Nil(t, reversed.ConfirmedAt)
	assert.Equal(t, "1000.00", f.balance(t, acc.ID))

	n, err = f.cashRepo.CountByReceivable(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = f.receivables.Reverse(ctx, id)
	assert.ErrorIs(t, err, shared.ErrConflict)
	assert.Equal(t, "1000.00", f.balance(t, acc.ID))
}

func TestReceivableService_ConfirmValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.bankAccount(t, "0")
	op := f.operator(t, acc.ID)
	wo := f.workOrder(t, "WO-RCV-V", workorder.StatusOpen)
	res, err := f.payments.Register(ctx, wo.ID, pay(finance.PaymentMethodDebit, "50", 1, &op.ID, nil), "")
	require.NoError(t, err)

	_, err = f.receivables.Confirm(ctx, res.Receivables[0].ID, "   ")
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Equal(t, "0.00", f.balance(t, acc.ID))

	_, err = f.receivables.Confirm(ctx, uuid.New(), "ana")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestReceivableService_ConfirmBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.bankAccount(t, "0")
	op := f.operator(t, acc.ID)
	wo := f.workOrder(t, "WO-BATCH", workorder.StatusOpen)
	res, err := f.payments.Register(ctx, wo.ID, pay(finance.PaymentMethodCredit, "300", 3, &op.ID, nil), "")
	require.NoError(t, err)
	r1, r2, r3 := res.Receivables[0].ID, res.Receivables[1].ID, res.Receivables[2].ID

	_, err = f.receivables.Confirm(ctx, r3, "ana")
	require.NoError(t, err)
	unknown := uuid.New()

	out, err := f.receivables.ConfirmBatch(ctx, []uuid.UUID{r1, r1, unknown, r2, r3}, "bia")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{r1, r2}, out.Confirmed)
	require.Len(t, out.Skipped, 2)
	assert.Equal(t, unknown, out.Skipped[0].ID)
	assert.Equal(t, r3, out.Skipped[1].ID)
	assert.Contains(t, out.Skipped[1].Reason, "already received")

	// 3 x 97.00 net
	assert.Equal(t, "291.00", f.balance(t, acc.ID))
}

func TestReceivableService_Summary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.bankAccount(t, "0")
	op := f.operator(t, acc.ID)
	wo := f.workOrder(t, "WO-SUM", workorder.StatusOpen)

	debit, err := f.payments.Register(ctx, wo.ID, pay(finance.PaymentMethodDebit, "100", 1, &op.ID, nil), "")
	require.NoError(t, err)
	_, err = f.payments.Register(ctx, wo.ID, pay(finance.PaymentMethodCredit, "200", 2, &op.ID, nil), "")
	require.NoError(t, err)

	sum, err := f.receivables.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0.00", sum.PendingDueToday.StringFixed(2))
	assert.Equal(t, "98.50", sum.PendingDueIn7Days.StringFixed(2))
	// first credit installment falls on today+30 and counts; the second, on today+60, does not
	assert.Equal(t, "195.50", sum.PendingDueIn30Days.StringFixed(2))
	assert.True(t, sum.PendingOverdue.IsZero())
	assert.Equal(t, int64(3), sum.PendingCount)
	assert.True(t, sum.ReceivedCurrentMonth.IsZero())

	_, err = f.receivables.Confirm(ctx, debit.Receivables[0].ID, "ana")
	require.NoError(t, err)

	sum, err = f.receivables.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0.00", sum.PendingDueIn7Days.StringFixed(2))
	assert.Equal(t, int64(2), sum.PendingCount)
	assert.Equal(t, "98.50", sum.ReceivedCurrentMonth.StringFixed(2))
	assert.Equal(t, int64(1), sum.ReceivedCurrentMonthN)
}

func TestReceivableService_SummaryWindows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.bankAccount(t, "0")
	op := f.operator(t, acc.ID)
	wo := f.workOrder(t, "WO-WIN", workorder.StatusOpen)

	// single credit at 30 lead days: 100 gross, 2.50 fee, due exactly today+30
	_, err := f.payments.Register(ctx, wo.ID, pay(finance.PaymentMethodCredit, "100", 1, &op.ID, nil), "")
	require.NoError(t, err)
	// debit at 1 lead day: due tomorrow
	_, err = f.payments.Register(ctx, wo.ID, pay(finance.PaymentMethodDebit, "100", 1, &op.ID, nil), "")
	require.NoError(t, err)

	sum, err := f.receivables.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "97.50", sum.PendingDueIn30Days.Sub(sum.PendingDueIn7Days).StringFixed(2))
	assert.Equal(t, "98.50", sum.PendingDueIn7Days.StringFixed(2))

	// three days later the debit installment is past due and leaves every forward window
	f.now = f.now.AddDate(0, 0, 3)
	sum, err = f.receivables.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "98.50", sum.PendingOverdue.StringFixed(2))
	assert.Equal(t, int64(1), sum.PendingOverdueN)
	assert.True(t, sum.PendingDueIn7Days.IsZero())
	assert.Equal(t, "97.50", sum.PendingDueIn30Days.StringFixed(2))
	assert.Equal(t, int64(2), sum.PendingCount)

	// on the due day itself the credit installment is due today, not overdue
	f.now = f.now.AddDate(0, 0, 27)
	sum, err = f.receivables.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "97.50", sum.PendingDueToday.StringFixed(2))
	assert.Equal(t, "98.50", sum.PendingOverdue.StringFixed(2))
}

func TestReceivableService_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.bankAccount(t, "0")
	op := f.operator(t, acc.ID)
	wo := f.workOrder(t, "WO-LIST", workorder.StatusOpen)
	res, err := f.payments.Register(ctx, wo.ID, pay(finance.PaymentMethodCredit, "500", 5, &op.ID, nil), "")
	require.NoError(t, err)
	_, err = f.receivables.Confirm(ctx, res.Receivables[0].ID, "ana")
	require.NoError(t, err)

	page, err := f.receivables.List(ctx, ListReceivablesRequest{Status: "PENDING", PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.Total)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.TotalPages)

	all, err := f.receivables.ListAll(ctx, ListReceivablesRequest{WorkOrderID: &wo.ID})
	require.NoError(t, err)
	assert.Len(t, all, 5)
}
