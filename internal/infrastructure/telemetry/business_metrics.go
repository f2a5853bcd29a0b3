package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// GarageMetrics holds the business instruments recorded by the application
// services. A nil *GarageMetrics records nothing.
type GarageMetrics struct {
	paymentsRecorded     *Counter
	paymentsDeleted      *Counter
	closings             *Counter
	receivablesCreated   *Counter
	receivablesSettled   *Counter
	cashBookEntries      *Counter
	consolidationLatency *Histogram
	statusTransitions    *Counter
}

// NewGarageMetrics creates the business instruments on meter.
func NewGarageMetrics(meter metric.Meter) (*GarageMetrics, error) {
	m := &GarageMetrics{}
	var err error
	counters := []struct {
		dst        **Counter
		name, desc string
	}{
		{&m.paymentsRecorded, "garage_payments_recorded_total", "Payments registered"},
		{&m.paymentsDeleted, "garage_payments_deleted_total", "Payments logically deleted"},
		{&m.closings, "garage_financial_closings_total", "Financial closings recorded"},
		{&m.receivablesCreated, "garage_receivables_created_total", "Card receivables generated"},
		{&m.receivablesSettled, "garage_receivables_settled_total", "Receivable confirmations and reversals"},
		{&m.cashBookEntries, "garage_cash_book_entries_total", "Cash book entries written"},
		{&m.statusTransitions, "garage_work_order_transitions_total", "Work order status changes"},
	}
	for _, c := range counters {
		if *c.dst, err = NewCounter(meter, c.name, c.desc, "1"); err != nil {
			return nil, err
		}
	}
	m.consolidationLatency, err = NewHistogram(meter, "garage_consolidation_duration_seconds",
		"Time spent consolidating a paid work order", "s", ServiceDurationBuckets...)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// PaymentRecorded counts a registered payment by method.
func (m *GarageMetrics) PaymentRecorded(ctx context.Context, method string) {
	if m == nil {
		return
	}
	m.paymentsRecorded.Inc(ctx, AttrPaymentMethod.String(method))
}

// PaymentDeleted counts a logical payment deletion.
func (m *GarageMetrics) PaymentDeleted(ctx context.Context, method string) {
	if m == nil {
		return
	}
	m.paymentsDeleted.Inc(ctx, AttrPaymentMethod.String(method))
}

// Consolidated records one consolidation run. outcome is "closed" or "error".
func (m *GarageMetrics) Consolidated(ctx context.Context, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.consolidationLatency.RecordDuration(ctx, d, AttrOutcome.String(outcome))
	if outcome == "closed" {
		m.closings.Inc(ctx)
	}
}

// ReceivablesCreated counts installments generated at payment intake
func (m *GarageMetrics) ReceivablesCreated(ctx context.Context, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.receivablesCreated.Add(ctx, int64(n))
}

// ReceivableSettled counts a confirmation ("confirmed") or reversal ("reversed").
func (m *GarageMetrics) ReceivableSettled(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.receivablesSettled.Inc(ctx, AttrOutcome.String(outcome))
}

// CashBookEntry counts a written cash book entry.
func (m *GarageMetrics) CashBookEntry(ctx context.Context, direction, category string) {
	if m == nil {
		return
	}
	m.cashBookEntries.Inc(ctx, AttrDirection.String(direction), AttrCategory.String(category))
}

// StatusTransition counts a work order status change.
func (m *GarageMetrics) StatusTransition(ctx context.Context, from, to string) {
	if m == nil {
		return
	}
	m.statusTransitions.Inc(ctx, attribute.String("from", from), attribute.String("to", to))
}
