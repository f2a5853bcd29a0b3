// Package finance implements payment intake, consolidation, the receivables
// ledger, the cash book and the document read model.
package finance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	appshared "github.com/garage/backend/internal/application/shared"
	"github.com/garage/backend/internal/domain/finance"
	"github.com/garage/backend/internal/domain/shared"
	"github.com/garage/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const idempotencyScope = "payment:"

// IdempotencyStore remembers which payment an Idempotency-Key produced.
// Claim stores value under key unless the key exists, in which case it returns
// the stored value and fresh=false.
type IdempotencyStore interface {
	Claim(ctx context.Context, key, value string, ttl time.Duration) (existing string, fresh bool, err error)
	Release(ctx context.Context, key string) error
}

// PaymentService records customer payments. Card payments get their receivable
// installments here and nowhere else.
type PaymentService struct {
	payments    finance.PaymentRepository
	receivables finance.ReceivableRepository
	operators   finance.OperatorReader
	txScope     appshared.TransactionScope
	idempotency IdempotencyStore
	logger      *zap.Logger
	opts        options
}

// NewPaymentService creates a PaymentService. idempotency may be nil.
func NewPaymentService(
	payments finance.PaymentRepository,
	receivables finance.ReceivableRepository,
	operators finance.OperatorReader,
	txScope appshared.TransactionScope,
	idempotency IdempotencyStore,
	logger *zap.Logger,
	opts ...Option,
) *PaymentService {
	return &PaymentService{
		payments:    payments,
		receivables: receivables,
		operators:   operators,
		txScope:     txScope,
		idempotency: idempotency,
		logger:      logger,
		opts:        buildOptions(opts),
	}
}

// Register records a payment against a work order. A repeated idempotencyKey
// returns the payment of the first request instead of recording a new one.
func (s *PaymentService) Register(ctx context.Context, workOrderID uuid.UUID, req RegisterPaymentRequest, idempotencyKey string) (*PaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "register")
	defer span.End()

	method := finance.PaymentMethod(strings.ToUpper(strings.TrimSpace(req.Method)))
	telemetry.SetAttributes(span,
		telemetry.SpanAttrWorkOrderID, workOrderID,
		telemetry.SpanAttrMethod, method.String(),
		telemetry.SpanAttrAmount, req.GrossValue,
	)

	paymentID := uuid.New()
	claimed := false
	if key := strings.TrimSpace(idempotencyKey); key != "" && s.idempotency != nil {
		existing, fresh, err := s.idempotency.Claim(ctx, idempotencyScope+key, paymentID.String(), s.opts.idempotencyTTL)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to claim idempotency key: %w", err)
		}
		if !fresh {
			return s.replay(ctx, workOrderID, existing)
		}
		claimed = true
		idempotencyKey = key
	}

	var (
		result *PaymentResult
		err    error
	)
	telemetry.WithProfilingLabels(ctx, telemetry.OperationLabels("payment", "register"), func(c context.Context) {
		result, err = s.register(c, workOrderID, paymentID, method, req)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		if claimed {
			if relErr := s.idempotency.Release(ctx, idempotencyScope+idempotencyKey); relErr != nil {
				s.logger.Warn("Failed to release idempotency key", zap.Error(relErr))
			}
		}
		return nil, err
	}

	s.opts.metrics.PaymentRecorded(ctx, method.String())
	s.opts.metrics.ReceivablesCreated(ctx, len(result.Receivables))
	s.logger.Info("Payment registered",
		zap.String("payment_id", result.Payment.ID.String()),
		zap.String("work_order_id", workOrderID.String()),
		zap.String("method", method.String()),
		zap.String("amount", result.Payment.GrossValue.StringFixed(2)),
		zap.Int("receivables", len(result.Receivables)),
	)
	return result, nil
}

func (s *PaymentService) register(
	ctx context.Context,
	workOrderID, paymentID uuid.UUID,
	method finance.PaymentMethod,
	req RegisterPaymentRequest,
) (*PaymentResult, error) {
	payment, err := finance.NewPayment(workOrderID, method, req.GrossValue, req.Installments, req.OperatorID, req.BankAccountID)
	if err != nil {
		return nil, err
	}
	payment.ID = paymentID

	// Fee tables are read through the cache, outside the write transaction.
	var receivables []finance.Receivable
	if payment.Method.IsCard() && payment.OperatorID != nil {
		op, err := s.operators.FindByID(ctx, *payment.OperatorID)
		if err != nil {
			return nil, err
		}
		if !op.Active {
			return nil, shared.NewValidationError(fmt.Sprintf("card operator %s is inactive", op.Name))
		}
		receivables, err = finance.BuildReceivables(payment, op, s.opts.today())
		if err != nil {
			return nil, err
		}
	}

	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		wo, err := repos.WorkOrderRepo().FindByIDForUpdate(ctx, workOrderID)
		if err != nil {
			return err
		}
		if wo.Status.IsTerminal() {
			return shared.NewImmutabilityError(fmt.Sprintf("payments cannot be added to a %s work order", strings.ToLower(string(wo.Status))))
		}
		if payment.BankAccountID != nil {
			if _, err := repos.BankAccountRepo().FindByID(ctx, *payment.BankAccountID); err != nil {
				return err
			}
		}
		if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		if len(receivables) > 0 {
			if err := repos.ReceivableRepo().CreateBatch(ctx, receivables); err != nil {
				return fmt.Errorf("failed to create receivables: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if receivables == nil {
		receivables = []finance.Receivable{}
	}
	return &PaymentResult{Payment: *payment, Receivables: receivables}, nil
}

// replay answers a repeated Idempotency-Key with the payment it produced
func (s *PaymentService) replay(ctx context.Context, workOrderID uuid.UUID, stored string) (*PaymentResult, error) {
	id, err := uuid.Parse(stored)
	if err != nil {
		return nil, fmt.Errorf("corrupt idempotency record %q: %w", stored, err)
	}
	payment, err := s.payments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewConflictError("a request with this idempotency key is still in progress")
		}
		return nil, err
	}
	if payment.WorkOrderID != workOrderID {
		return nil, shared.NewConflictError("idempotency key was already used for another work order")
	}
	receivables, err := s.receivables.FindByPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Payment replayed from idempotency key", zap.String("payment_id", id.String()))
	return &PaymentResult{Payment: *payment, Receivables: receivables, Replayed: true}, nil
}

// ListByWorkOrder returns the active payments of a work order
func (s *PaymentService) ListByWorkOrder(ctx context.Context, workOrderID uuid.UUID) ([]finance.Payment, error) {
	return s.payments.FindActiveByWorkOrder(ctx, workOrderID)
}

// Delete soft-deletes a payment that consolidation has not picked up yet,
// together with its pending receivables.
func (s *PaymentService) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "delete")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrPaymentID, id)

	var payment *finance.Payment
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		payment, err = repos.PaymentRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		wo, err := repos.WorkOrderRepo().FindByIDForUpdate(ctx, payment.WorkOrderID)
		if err != nil {
			return err
		}
		if wo.Status.IsTerminal() {
			return shared.NewImmutabilityError("payments of a " + strings.ToLower(string(wo.Status)) + " work order cannot be deleted")
		}
		if err := payment.MarkDeleted(); err != nil {
			return err
		}

		receivables, err := repos.ReceivableRepo().FindByPayment(ctx, id)
		if err != nil {
			return err
		}
		for _, r := range receivables {
			if r.IsReceived() {
				return shared.NewConflictError(fmt.Sprintf("installment %d/%d was already received; reverse it first", r.Installment, r.TotalInstallments))
			}
		}

		if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
			return err
		}
		_, err = repos.ReceivableRepo().DeletePendingByPayment(ctx, id)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	s.opts.metrics.PaymentDeleted(ctx, payment.Method.String())
	s.logger.Info("Payment deleted",
		zap.String("payment_id", id.String()),
		zap.String("work_order_id", payment.WorkOrderID.String()),
	)
	return nil
}
