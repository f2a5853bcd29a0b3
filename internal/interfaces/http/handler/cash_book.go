package handler

import (
	"time"

	financeapp "github.com/garage/backend/internal/application/finance"
	"github.com/gin-gonic/gin"
)

// CashBookHandler handles the cash book ledger
type CashBookHandler struct {
	BaseHandler
	service *financeapp.CashBookService
}

// NewCashBookHandler creates a new CashBookHandler
func NewCashBookHandler(service *financeapp.CashBookService) *CashBookHandler {
	return &CashBookHandler{service: service}
}

// RevenueQuery selects the revenue period
type RevenueQuery struct {
	From time.Time  `form:"from" binding:"required" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

// Create handles POST /cash-book
func (h *CashBookHandler) Create(c *gin.Context) {
	var req financeapp.CreateCashBookEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	entry, err := h.service.CreateEntry(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// List handles GET /cash-book
func (h *CashBookHandler) List(c *gin.Context) {
	var req financeapp.ListCashBookRequest
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

// Delete handles DELETE /cash-book/:id. The reason comes in the body or the reason query parameter.
func (h *CashBookHandler) Delete(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req financeapp.DeleteCashBookEntryRequest
	if reason := c.Query("reason"); reason != "" && c.Request.ContentLength <= 0 {
		req.Reason = reason
	} else if !h.BindJSON(c, &req) {
		return
	}
	if err := h.service.DeleteEntry(c.Request.Context(), id, req.Reason); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Revenue handles GET /cash-book/revenue?from=YYYY-MM-DD[&to=YYYY-MM-DD]
func (h *CashBookHandler) Revenue(c *gin.Context) {
	var q RevenueQuery
	if !h.BindQuery(c, &q) {
		return
	}
	var to time.Time
	if q.To != nil {
		to = *q.To
	}
	revenue, err := h.service.Revenue(c.Request.Context(), q.From, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, revenue)
}
