package handler

import (
	"fmt"
	"net/http"

	financeapp "github.com/garage/backend/internal/application/finance"
	"github.com/garage/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// ClosingHandler handles consolidation and closing documents
type ClosingHandler struct {
	BaseHandler
	consolidation *financeapp.ConsolidationService
	documents     *financeapp.DocumentService
}

// NewClosingHandler creates a new ClosingHandler
func NewClosingHandler(consolidation *financeapp.ConsolidationService, documents *financeapp.DocumentService) *ClosingHandler {
	return &ClosingHandler{consolidation: consolidation, documents: documents}
}

// Consolidate handles POST /work-orders/:id/consolidate.
// The caller is recorded as the one who closed the work order.
func (h *ClosingHandler) Consolidate(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	closing, err := h.consolidation.Consolidate(c.Request.Context(), id, middleware.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, closing)
}

// GetClosing handles GET /work-orders/:id/closing
func (h *ClosingHandler) GetClosing(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	closing, err := h.consolidation.GetClosing(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, closing)
}

// Snapshot handles GET /work-orders/:id/closing/snapshot
func (h *ClosingHandler) Snapshot(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	snapshot, err := h.consolidation.Snapshot(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, snapshot)
}

// Receipt handles GET /work-orders/:id/closing/receipt.pdf
func (h *ClosingHandler) Receipt(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	pdf, err := h.documents.ClosingReceipt(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="closing-%s.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// ReceiptLink handles GET /work-orders/:id/closing/receipt-link.
// It answers with a short-lived download URL of the archived receipt.
func (h *ClosingHandler) ReceiptLink(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	url, err := h.documents.ReceiptLink(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"url": url})
}
