package workorder

import (
	"testing"

	"github.com/garage/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorkOrder(t *testing.T, status Status) *WorkOrder {
	t.Helper()
	wo, err := NewWorkOrder("OS-0001", "abc1d23", "brake noise", StatusOpen)
	require.NoError(t, err)
	wo.Status = status
	return wo
}

func TestNewWorkOrder(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		wo, err := NewWorkOrder(" OS-0001 ", " abc1d23 ", "brake noise", StatusQuote)
		require.NoError(t, err)
		assert.Equal(t, "OS-0001", wo.Number)
		assert.Equal(t, "ABC1D23", wo.VehiclePlate)
		assert.Equal(t, StatusQuote, wo.Status)
		assert.Equal(t, 1, wo.Version)
		assert.True(t, wo.Total.IsZero())
	})

	t.Run("rejects terminal initial status", func(t *testing.T) {
		_, err := NewWorkOrder("OS-0001", "", "", StatusClosed)
		assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))
	})

	t.Run("rejects empty number", func(t *testing.T) {
		_, err := NewWorkOrder("  ", "", "", StatusOpen)
		assert.Error(t, err)
	})
}

func TestWorkOrder_ChangeStatus(t *testing.T) {
	t.Run("applies legal transition and stamps close time", func(t *testing.T) {
		wo := newTestWorkOrder(t, StatusReadyToClose)
		prev, err := wo.ChangeStatus(statusPtr(StatusClosed))
		require.NoError(t, err)
		assert.Equal(t, StatusReadyToClose, prev)
		assert.Equal(t, StatusClosed, wo.Status)
		assert.NotNil(t, wo.ClosedAt)
		assert.Equal(t, 2, wo.Version)
	})

	t.Run("nil next is a no-op", func(t *testing.T) {
		wo := newTestWorkOrder(t, StatusClosed)
		_, err := wo.ChangeStatus(nil)
		require.NoError(t, err)
		assert.Equal(t, 1, wo.Version)
	})

	t.Run("illegal transition leaves status untouched", func(t *testing.T) {
		wo := newTestWorkOrder(t, StatusScheduled)
		_, err := wo.ChangeStatus(statusPtr(StatusClosed))
		require.Error(t, err)
		assert.Equal(t, StatusScheduled, wo.Status)
	})
}

func TestWorkOrder_ApplyDetailsOnClosed(t *testing.T) {
	wo := newTestWorkOrder(t, StatusClosed)
	diag := "worn pads"
	wo.ApplyDetails(Details{Diagnosis: &diag})
	assert.Equal(t, "worn pads", wo.Diagnosis)
}

func TestWorkOrder_Lines(t *testing.T) {
	wo := newTestWorkOrder(t, StatusOpen)
	require.NoError(t, wo.EnsureLinesEditable())

	item, err := NewItem(wo.ID, nil, "brake pad", decimal.NewFromInt(2), decimal.NewFromInt(120), decimal.NewFromInt(70))
	require.NoError(t, err)
	assert.True(t, item.Subtotal().Equal(decimal.NewFromInt(240)))
	assert.True(t, item.Cost().Equal(decimal.NewFromInt(140)))

	labor, err := NewLabor(wo.ID, "pad replacement", decimal.NewFromInt(1), decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.True(t, labor.Subtotal().Equal(decimal.NewFromInt(100)))

	wo.ApplyTotals(item.Subtotal(), labor.Subtotal())
	assert.True(t, wo.Total.Equal(decimal.NewFromInt(340)))

	_, err = NewItem(uuid.New(), nil, "bad", decimal.Zero, decimal.NewFromInt(1), decimal.Zero)
	assert.Error(t, err)

	closed := newTestWorkOrder(t, StatusClosed)
	assert.Equal(t, shared.CodeImmutable, shared.ErrorCode(closed.EnsureLinesEditable()))
}

func TestWorkOrder_MarkDeleted(t *testing.T) {
	wo := newTestWorkOrder(t, StatusOpen)
	require.NoError(t, wo.MarkDeleted())
	assert.True(t, wo.IsDeleted())

	closed := newTestWorkOrder(t, StatusClosed)
	assert.Equal(t, shared.CodeImmutable, shared.ErrorCode(closed.MarkDeleted()))

	ready := newTestWorkOrder(t, StatusReadyToClose)
	assert.Equal(t, shared.CodeValidation, shared.ErrorCode(ready.MarkDeleted()))
	assert.False(t, ready.IsDeleted())

	cancelled := newTestWorkOrder(t, StatusCancelled)
	require.NoError(t, cancelled.MarkDeleted())
}
