package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(m metricdata.Metrics) int64 {
	var total int64
	for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
		total += dp.Value
	}
	return total
}

func TestGarageMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewGarageMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.PaymentRecorded(ctx, "PIX")
	m.PaymentRecorded(ctx, "CREDIT_CARD")
	m.ReceivablesCreated(ctx, 2)
	m.Consolidated(ctx, "closed", 15*time.Millisecond)
	m.Consolidated(ctx, "error", time.Millisecond)
	m.ReceivableSettled(ctx, "confirmed")
	m.CashBookEntry(ctx, "IN", "REVENUE")

	got := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(got["garage_payments_recorded_total"]))
	assert.Equal(t, int64(1), sumOf(got["garage_financial_closings_total"]))
	assert.Equal(t, int64(2), sumOf(got["garage_receivables_created_total"]))
	assert.Equal(t, int64(1), sumOf(got["garage_receivables_settled_total"]))

	hist := got["garage_consolidation_duration_seconds"].Data.(metricdata.Histogram[float64])
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(2), count)
}

func TestGarageMetrics_NilSafe(t *testing.T) {
	var m *GarageMetrics
	assert.NotPanics(t, func() {
		m.PaymentRecorded(context.Background(), "CASH")
		m.Consolidated(context.Background(), "closed", time.Second)
		m.StatusTransition(context.Background(), "OPEN", "PAID")
	})
}

func TestRegisterDBPoolMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	db := openSQLite(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(3)

	reg, err := RegisterDBPoolMetrics(provider.Meter("test"), sqlDB)
	require.NoError(t, err)
	defer func() { _ = reg.Unregister() }()

	got := collect(t, reader)
	maxGauge := got["db_pool_connections_max"].Data.(metricdata.Gauge[int64])
	require.Len(t, maxGauge.DataPoints, 1)
	assert.Equal(t, int64(3), maxGauge.DataPoints[0].Value)
}
