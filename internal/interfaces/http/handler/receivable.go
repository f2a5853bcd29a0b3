package handler

import (
	"net/http"

	financeapp "github.com/garage/backend/internal/application/finance"
	"github.com/garage/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReceivableHandler handles the receivables ledger
type ReceivableHandler struct {
	BaseHandler
	service   *financeapp.ReceivableService
	documents *financeapp.DocumentService
}

// NewReceivableHandler creates a new ReceivableHandler
func NewReceivableHandler(service *financeapp.ReceivableService, documents *financeapp.DocumentService) *ReceivableHandler {
	return &ReceivableHandler{service: service, documents: documents}
}

// List handles GET /receivables
func (h *ReceivableHandler) List(c *gin.Context) {
	var req financeapp.ListReceivablesRequest
	if !h.BindQuery(c, &req) {
		return
	}
	page, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Confirm handles POST /receivables/:id/confirm
func (h *ReceivableHandler) Confirm(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	r, err := h.service.Confirm(c.Request.Context(), id, middleware.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}

// Reverse handles POST /receivables/:id/reverse
func (h *ReceivableHandler) Reverse(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	r, err := h.service.Reverse(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}

// ConfirmBatch handles POST /receivables/confirm-batch
func (h *ReceivableHandler) ConfirmBatch(c *gin.Context) {
	var req financeapp.ConfirmBatchRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.service.ConfirmBatch(c.Request.Context(), req.IDs, middleware.Actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Summary handles GET /receivables/summary
func (h *ReceivableHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Export handles GET /receivables/export.xlsx with the List filters
func (h *ReceivableHandler) Export(c *gin.Context) {
	var req financeapp.ListReceivablesRequest
	if !h.BindQuery(c, &req) {
		return
	}
	file, err := h.documents.ReceivablesExport(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="receivables.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, file)
}
