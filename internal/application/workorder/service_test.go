package workorder

import (
	"context"
	"errors"
	"testing"

	appshared "github.com/garage/backend/internal/application/shared"
	"github.com/garage/backend/internal/domain/shared"
	"github.com/garage/backend/internal/domain/workorder"
	"github.com/garage/backend/internal/infrastructure/persistence"
	"github.com/garage/backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockInventory struct {
	mock.Mock
}

func (m *mockInventory) AdjustStock(ctx context.Context, workOrderID uuid.UUID, adjustment workorder.StockAdjustment) error {
	args := m.Called(ctx, workOrderID, adjustment)
	return args.Error(0)
}

// failingSaveScope runs the real transaction but makes work order saves fail
type failingSaveScope struct {
	appshared.TransactionScope
}

func (f failingSaveScope) Execute(ctx context.Context, fn func(repos appshared.TransactionalRepositories) error) error {
	return f.TransactionScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		return fn(failingSaveRepos{repos})
	})
}

type failingSaveRepos struct {
	appshared.TransactionalRepositories
}

func (r failingSaveRepos) WorkOrderRepo() workorder.Repository {
	return failingSaveRepo{r.TransactionalRepositories.WorkOrderRepo()}
}

type failingSaveRepo struct {
	workorder.Repository
}

func (failingSaveRepo) Save(context.Context, *workorder.WorkOrder) error {
	return errors.New("disk full")
}

func newTestService(t *testing.T) (*Service, *mockInventory) {
	t.Helper()
	db := testutil.NewTestDB(t)
	inv := new(mockInventory)
	svc := NewService(
		persistence.NewGormWorkOrderRepository(db),
		persistence.NewGormWorkOrderLineRepository(db),
		persistence.NewGormTransactionScope(db),
		inv,
		nil,
		zap.NewNop(),
	)
	return svc, inv
}

func strPtr(s string) *string { return &s }

func createOrder(t *testing.T, svc *Service, number string) *WorkOrderResponse {
	t.Helper()
	wo, err := svc.Create(context.Background(), CreateWorkOrderRequest{Number: number, VehiclePlate: "abc1d23"})
	require.NoError(t, err)
	return wo
}

func moveTo(t *testing.T, svc *Service, id uuid.UUID, status workorder.Status) {
	t.Helper()
	_, err := svc.Update(context.Background(), id, UpdateWorkOrderRequest{Status: strPtr(string(status))})
	require.NoError(t, err)
}

func TestService_Create(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	t.Run("defaults to OPEN", func(t *testing.T) {
		wo := createOrder(t, svc, "WO-1")
		assert.Equal(t, "OPEN", wo.Status)
		assert.Equal(t, "ABC1D23", wo.VehiclePlate)
		assert.True(t, wo.Total.IsZero())
	})

	t.Run("accepts the initial statuses", func(t *testing.T) {
		for i, status := range []string{"SCHEDULED", "QUOTE", "OPEN"} {
			wo, err := svc.Create(ctx, CreateWorkOrderRequest{Number: "INIT-" + string(rune('A'+i)), Status: status})
			require.NoError(t, err, status)
			assert.Equal(t, status, wo.Status)
		}
	})

	t.Run("rejects other initial statuses", func(t *testing.T) {
		for _, status := range []string{"READY_TO_CLOSE", "CLOSED", "CANCELLED", "FINISHED"} {
			_, err := svc.Create(ctx, CreateWorkOrderRequest{Number: "BAD-" + status, Status: status})
			assert.ErrorIs(t, err, shared.ErrValidation, status)
		}
	})
}

func TestService_Update_InventoryEdges(t *testing.T) {
	ctx := context.Background()

	t.Run("entering the closed set deducts stock once", func(t *testing.T) {
		svc, inv := newTestService(t)
		wo := createOrder(t, svc, "WO-EDGE-1")
		inv.On("AdjustStock", mock.Anything, wo.ID, workorder.StockDeduct).Return(nil).Once()

		got, err := svc.Update(ctx, wo.ID, UpdateWorkOrderRequest{Status: strPtr("READY_TO_CLOSE")})
		require.NoError(t, err)
		assert.Equal(t, "READY_TO_CLOSE", got.Status)
		inv.AssertExpectations(t)
	})

	t.Run("leaving the closed set returns stock", func(t *testing.T) {
		svc, inv := newTestService(t)
		wo := createOrder(t, svc, "WO-EDGE-2")
		inv.On("AdjustStock", mock.Anything, wo.ID, workorder.StockDeduct).Return(nil).Once()
		inv.On("AdjustStock", mock.Anything, wo.ID, workorder.StockReturn).Return(nil).Once()

		moveTo(t, svc, wo.ID, workorder.StatusReadyToClose)
		moveTo(t, svc, wo.ID, workorder.StatusOpen)
		inv.AssertExpectations(t)
	})

	t.Run("moves inside or outside the set do not touch stock", func(t *testing.T) {
		svc, inv := newTestService(t)
		wo := createOrder(t, svc, "WO-EDGE-3")
		inv.On("AdjustStock", mock.Anything, wo.ID, workorder.StockDeduct).Return(nil).Once()

		moveTo(t, svc, wo.ID, workorder.StatusReadyToClose)
		moveTo(t, svc, wo.ID, workorder.StatusClosed)
		inv.AssertNumberOfCalls(t, "AdjustStock", 1)

		other := createOrder(t, svc, "WO-EDGE-4")
		moveTo(t, svc, other.ID, workorder.StatusCancelled)
		inv.AssertNumberOfCalls(t, "AdjustStock", 1)
	})

	t.Run("inventory failure rolls the status back", func(t *testing.T) {
		svc, inv := newTestService(t)
		wo := createOrder(t, svc, "WO-EDGE-5")
		inv.On("AdjustStock", mock.Anything, wo.ID, workorder.StockDeduct).Return(errors.New("stock service down"))

		_, err := svc.Update(ctx, wo.ID, UpdateWorkOrderRequest{Status: strPtr("READY_TO_CLOSE")})
		require.Error(t, err)

		got, err := svc.GetByID(ctx, wo.ID)
		require.NoError(t, err)
		assert.Equal(t, "OPEN", got.Status)
	})
}

func TestService_Update_StockMovesOnlyAfterSave(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	inv := new(mockInventory)
	repo := persistence.NewGormWorkOrderRepository(db)
	lines := persistence.NewGormWorkOrderLineRepository(db)
	healthy := NewService(repo, lines, persistence.NewGormTransactionScope(db), inv, nil, zap.NewNop())
	broken := NewService(repo, lines, failingSaveScope{persistence.NewGormTransactionScope(db)}, inv, nil, zap.NewNop())

	wo := createOrder(t, healthy, "WO-SAVE-1")
	_, err := broken.Update(ctx, wo.ID, UpdateWorkOrderRequest{Status: strPtr("READY_TO_CLOSE")})
	require.Error(t, err)
	inv.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything)

	got, err := healthy.GetByID(ctx, wo.ID)
	require.NoError(t, err)
	assert.Equal(t, "OPEN", got.Status)
}

func TestService_Update_Transitions(t *testing.T) {
	ctx := context.Background()
	svc, inv := newTestService(t)
	inv.On("AdjustStock", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	t.Run("illegal transition is a validation error", func(t *testing.T) {
		wo := createOrder(t, svc, "WO-T-1")
		_, err := svc.Update(ctx, wo.ID, UpdateWorkOrderRequest{Status: strPtr("CLOSED")})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("unknown status is rejected before any read", func(t *testing.T) {
		_, err := svc.Update(ctx, uuid.New(), UpdateWorkOrderRequest{Status: strPtr("DONE")})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("closed work order cannot change status", func(t *testing.T) {
		wo := createOrder(t, svc, "WO-T-2")
		moveTo(t, svc, wo.ID, workorder.StatusReadyToClose)
		moveTo(t, svc, wo.ID, workorder.StatusClosed)

		_, err := svc.Update(ctx, wo.ID, UpdateWorkOrderRequest{Status: strPtr("OPEN")})
		assert.ErrorIs(t, err, shared.ErrImmutable)

		// Same status and field edits still go through.
		got, err := svc.Update(ctx, wo.ID, UpdateWorkOrderRequest{Status: strPtr("CLOSED"), Notes: strPtr("customer called")})
		require.NoError(t, err)
		assert.Equal(t, "customer called", got.Notes)
		assert.NotNil(t, got.ClosedAt)
	})

	t.Run("missing work order", func(t *testing.T) {
		_, err := svc.Update(ctx, uuid.New(), UpdateWorkOrderRequest{Notes: strPtr("x")})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestService_Lines(t *testing.T) {
	ctx := context.Background()
	svc, inv := newTestService(t)
	inv.On("AdjustStock", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	wo := createOrder(t, svc, "WO-L-1")

	_, err := svc.AddItem(ctx, wo.ID, AddItemRequest{
		Description: "Brake pads",
		Quantity:    decimal.NewFromInt(2),
		UnitPrice:   decimal.NewFromInt(120),
		UnitCost:    decimal.NewFromInt(70),
	})
	require.NoError(t, err)
	got, err := svc.AddLabor(ctx, wo.ID, AddLaborRequest{
		Description: "Brake service",
		Hours:       decimal.NewFromInt(2),
		HourlyRate:  decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	assert.Equal(t, "240.00", got.PartsTotal.StringFixed(2))
	assert.Equal(t, "100.00", got.LaborTotal.StringFixed(2))
	assert.Equal(t, "340.00", got.Total.StringFixed(2))

	detail, err := svc.GetByID(ctx, wo.ID)
	require.NoError(t, err)
	require.Len(t, detail.Items, 1)
	require.Len(t, detail.Labors, 1)

	got, err = svc.RemoveItem(ctx, wo.ID, detail.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "100.00", got.Total.StringFixed(2))

	got, err = svc.RemoveLabor(ctx, wo.ID, detail.Labors[0].ID)
	require.NoError(t, err)
	assert.True(t, got.Total.IsZero())

	t.Run("invalid line is rejected", func(t *testing.T) {
		_, err := svc.AddItem(ctx, wo.ID, AddItemRequest{Description: "x", Quantity: decimal.Zero})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("unknown line", func(t *testing.T) {
		_, err := svc.RemoveItem(ctx, wo.ID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("terminal work orders reject line edits", func(t *testing.T) {
		cancelled := createOrder(t, svc, "WO-L-2")
		moveTo(t, svc, cancelled.ID, workorder.StatusCancelled)
		_, err := svc.AddLabor(ctx, cancelled.ID, AddLaborRequest{Description: "x", Hours: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, shared.ErrImmutable)
	})
}

func TestService_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, inv := newTestService(t)
	inv.On("AdjustStock", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	a := createOrder(t, svc, "WO-D-1")
	b := createOrder(t, svc, "WO-D-2")
	moveTo(t, svc, b.ID, workorder.StatusReadyToClose)

	page, err := svc.List(ctx, ListWorkOrdersRequest{Status: "READY_TO_CLOSE"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, b.ID, page.Items[0].ID)

	_, err = svc.List(ctx, ListWorkOrdersRequest{Status: "NOPE"})
	assert.ErrorIs(t, err, shared.ErrValidation)

	require.NoError(t, svc.Delete(ctx, a.ID))
	_, err = svc.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	page, err = svc.List(ctx, ListWorkOrdersRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	// READY_TO_CLOSE still holds deducted stock
	assert.ErrorIs(t, svc.Delete(ctx, b.ID), shared.ErrValidation)
	_, err = svc.GetByID(ctx, b.ID)
	require.NoError(t, err)

	moveTo(t, svc, b.ID, workorder.StatusClosed)
	assert.ErrorIs(t, svc.Delete(ctx, b.ID), shared.ErrImmutable)
}
