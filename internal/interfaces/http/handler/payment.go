package handler

import (
	financeapp "github.com/garage/backend/internal/application/finance"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader lets clients retry a payment without recording it twice
const IdempotencyKeyHeader = "Idempotency-Key"

// maxIdempotencyKeyLength bounds the stored key
const maxIdempotencyKeyLength = 200

// PaymentHandler handles payment intake endpoints
type PaymentHandler struct {
	BaseHandler
	service *financeapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(service *financeapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// Register handles POST /work-orders/:id/payments.
// A replayed Idempotency-Key answers 200 with the original payment instead of 201.
func (h *PaymentHandler) Register(c *gin.Context) {
	workOrderID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	key := c.GetHeader(IdempotencyKeyHeader)
	if len(key) > maxIdempotencyKeyLength {
		h.BadRequest(c, "Idempotency-Key is too long")
		return
	}
	var req financeapp.RegisterPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Register(c.Request.Context(), workOrderID, req, key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.Replayed {
		h.Success(c, result)
		return
	}
	h.Created(c, result)
}

// ListByWorkOrder handles GET /work-orders/:id/payments
func (h *PaymentHandler) ListByWorkOrder(c *gin.Context) {
	workOrderID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	payments, err := h.service.ListByWorkOrder(c.Request.Context(), workOrderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// Delete handles DELETE /payments/:id
func (h *PaymentHandler) Delete(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
