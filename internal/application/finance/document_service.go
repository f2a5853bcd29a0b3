package finance

import (
	"context"
	"fmt"

	"github.com/garage/backend/internal/domain/finance"
	"github.com/garage/backend/internal/domain/shared"
	"github.com/garage/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DocumentRenderer turns read-only finance views into files
type DocumentRenderer interface {
	ClosingReceiptPDF(snapshot *finance.ClosingSnapshot) ([]byte, error)
	ReceivablesXLSX(rows []finance.Receivable) ([]byte, error)
}

// ObjectStorage stores rendered documents
type ObjectStorage interface {
	Upload(ctx context.Context, key, contentType string, body []byte) error
	DownloadURL(ctx context.Context, key string) (string, error)
}

// ReceiptKey is the object key a closing receipt is archived under
func ReceiptKey(workOrderID uuid.UUID) string {
	return fmt.Sprintf("closings/%s.pdf", workOrderID)
}

// DocumentService renders closing receipts and receivable exports. It only reads.
type DocumentService struct {
	consolidation *ConsolidationService
	receivables   *ReceivableService
	renderer      DocumentRenderer
	storage       ObjectStorage
	logger        *zap.Logger
}

// NewDocumentService creates a DocumentService. storage may be nil, which disables archiving.
func NewDocumentService(
	consolidation *ConsolidationService,
	receivables *ReceivableService,
	renderer DocumentRenderer,
	storage ObjectStorage,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		consolidation: consolidation,
		receivables:   receivables,
		renderer:      renderer,
		storage:       storage,
		logger:        logger,
	}
}

// ClosingReceipt renders the receipt PDF of a consolidated work order
func (s *DocumentService) ClosingReceipt(ctx context.Context, workOrderID uuid.UUID) ([]byte, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "closing_receipt")
	defer span.End()

	snap, err := s.consolidation.Snapshot(ctx, workOrderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	pdf, err := s.renderer.ClosingReceiptPDF(snap)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to render closing receipt: %w", err)
	}
	return pdf, nil
}

// ReceiptLink returns a temporary download link to the archived receipt of a closing
func (s *DocumentService) ReceiptLink(ctx context.Context, workOrderID uuid.UUID) (string, error) {
	if s.storage == nil {
		return "", shared.NewNotFoundError("receipt archiving is disabled")
	}
	if _, err := s.consolidation.GetClosing(ctx, workOrderID); err != nil {
		return "", err
	}
	return s.storage.DownloadURL(ctx, ReceiptKey(workOrderID))
}

// ReceivablesExport renders the filtered receivables as a spreadsheet
func (s *DocumentService) ReceivablesExport(ctx context.Context, req ListReceivablesRequest) ([]byte, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "receivables_export")
	defer span.End()

	rows, err := s.receivables.ListAll(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrCount, len(rows))
	return s.renderer.ReceivablesXLSX(rows)
}

// ClosingRecorded archives the receipt of a fresh closing. Failures are logged;
// the closing itself is already committed.
func (s *DocumentService) ClosingRecorded(ctx context.Context, closing *finance.FinancialClosing) {
	if s.storage == nil {
		return
	}
	pdf, err := s.ClosingReceipt(ctx, closing.WorkOrderID)
	if err == nil {
		err = s.storage.Upload(ctx, ReceiptKey(closing.WorkOrderID), "application/pdf", pdf)
	}
	if err != nil {
		s.logger.Error("Failed to archive closing receipt",
			zap.String("work_order_id", closing.WorkOrderID.String()),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("Closing receipt archived", zap.String("key", ReceiptKey(closing.WorkOrderID)))
}
