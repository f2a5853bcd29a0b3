//go:build integration

package persistence_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	financeapp "github.com/garage/backend/internal/application/finance"
	"github.com/garage/backend/internal/domain/shared"
	"github.com/garage/backend/internal/domain/workorder"
	"github.com/garage/backend/internal/infrastructure/config"
	"github.com/garage/backend/internal/infrastructure/migration"
	"github.com/garage/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

const migrationsDir = "../../../migrations"

// startPostgres runs a disposable postgres and returns a Database pointed at it
// together with a Migrator that has not applied anything yet.
func startPostgres(t *testing.T) (*persistence.Database, *migration.Migrator) {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("garage_test"),
		tcpostgres.WithUsername("garage"),
		tcpostgres.WithPassword("garage"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Host:            host,
		Port:            portNum,
		User:            "garage",
		Password:        "garage",
		DBName:          "garage_test",
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5,
		ConnMaxIdleTime: 1,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	m, err := migration.New(sqlDB, migrationsDir, zap.NewNop())
	require.NoError(t, err)
	return db, m
}

func TestMigrations_NormalizeLegacyStatuses(t *testing.T) {
	db, m := startPostgres(t)

	require.NoError(t, m.Steps(1))
	now := time.Now().UTC()
	legacy := map[string]string{
		"OS-1": "ready_for_closing",
		"OS-2": " Canceled ",
		"OS-3": "OPEN",
	}
	for number, status := range legacy {
		require.NoError(t, db.DB.Exec(
			`INSERT INTO work_orders (id, number, status, version, created_at, updated_at) VALUES (?, ?, ?, 1, ?, ?)`,
			uuid.New(), number, status, now, now,
		).Error)
	}

	require.NoError(t, m.Up())
	status, err := m.Status()
	require.NoError(t, err)
	assert.Equal(t, uint(2), status.Version)
	assert.False(t, status.Dirty)

	var got []struct {
		Number string
		Status string
	}
	require.NoError(t, db.DB.Raw(`SELECT number, status FROM work_orders ORDER BY number`).Scan(&got).Error)
	require.Len(t, got, 3)
	assert.Equal(t, "READY_TO_CLOSE", got[0].Status)
	assert.Equal(t, "CANCELLED", got[1].Status)
	assert.Equal(t, "OPEN", got[2].Status)

	err = db.DB.Exec(
		`INSERT INTO work_orders (id, number, status, version, created_at, updated_at) VALUES (?, 'OS-9', 'PRONTO', 1, ?, ?)`,
		uuid.New(), now, now,
	).Error
	assert.Error(t, err, "status outside the enum must be rejected")
}

func TestConsolidation_ConcurrentRequestsCloseOnce(t *testing.T) {
	db, m := startPostgres(t)
	require.NoError(t, m.Up())
	ctx := context.Background()

	workOrders := persistence.NewGormWorkOrderRepository(db.DB)
	wo, err := workorder.NewWorkOrder("OS-500", "ABC1D23", "clutch", workorder.StatusOpen)
	require.NoError(t, err)
	wo.Status = workorder.StatusReadyToClose
	require.NoError(t, workOrders.Save(ctx, wo))

	scope := persistence.NewGormTransactionScope(db.DB)
	receivRepo := persistence.NewGormReceivableRepository(db.DB)
	payments := financeapp.NewPaymentService(
		persistence.NewGormPaymentRepository(db.DB), receivRepo, persistence.NewGormOperatorRepository(db.DB),
		scope, nil, zap.NewNop())
	_, err = payments.Register(ctx, wo.ID, financeapp.RegisterPaymentRequest{
		Method:     "CASH",
		GrossValue: decimal.RequireFromString("250"),
	}, "")
	require.NoError(t, err)

	consolidation := financeapp.NewConsolidationService(persistence.NewGormClosingRepository(db.DB), scope, zap.NewNop())

	const workers = 2
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := consolidation.Consolidate(ctx, wo.ID, "desk")
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		// The loser either saw CLOSED after the lock or hit the unique closing index
		assert.True(t, errors.Is(err, shared.ErrValidation) || errors.Is(err, shared.ErrConflict), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)

	var closings, revenue int64
	require.NoError(t, db.DB.Raw(`SELECT COUNT(*) FROM financial_closings WHERE work_order_id = ?`, wo.ID).Scan(&closings).Error)
	require.NoError(t, db.DB.Raw(`SELECT COUNT(*) FROM cash_book_entries WHERE category = 'REVENUE' AND deleted_at IS NULL`).Scan(&revenue).Error)
	assert.Equal(t, int64(1), closings)
	assert.Equal(t, int64(1), revenue)
}
