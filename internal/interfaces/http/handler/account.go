package handler

import (
	financeapp "github.com/garage/backend/internal/application/finance"
	"github.com/gin-gonic/gin"
)

// AccountHandler handles bank accounts and card operators
type AccountHandler struct {
	BaseHandler
	service *financeapp.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(service *financeapp.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// CreateBankAccount handles POST /bank-accounts
func (h *AccountHandler) CreateBankAccount(c *gin.Context) {
	var req financeapp.CreateBankAccountRequest
	if !h.BindJSON(c, &req) {
		return
	}
	account, err := h.service.CreateBankAccount(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, account)
}

// GetBankAccount handles GET /bank-accounts/:id
func (h *AccountHandler) GetBankAccount(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	account, err := h.service.GetBankAccount(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// ListBankAccounts handles GET /bank-accounts
func (h *AccountHandler) ListBankAccounts(c *gin.Context) {
	accounts, err := h.service.ListBankAccounts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, accounts)
}

// CreateOperator handles POST /operators
func (h *AccountHandler) CreateOperator(c *gin.Context) {
	var req financeapp.OperatorRequest
	if !h.BindJSON(c, &req) {
		return
	}
	op, err := h.service.CreateOperator(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, op)
}

// UpdateOperator handles PUT /operators/:id
func (h *AccountHandler) UpdateOperator(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req financeapp.OperatorRequest
	if !h.BindJSON(c, &req) {
		return
	}
	op, err := h.service.UpdateOperator(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, op)
}

// GetOperator handles GET /operators/:id
func (h *AccountHandler) GetOperator(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	op, err := h.service.GetOperator(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, op)
}

// ListOperators handles GET /operators
func (h *AccountHandler) ListOperators(c *gin.Context) {
	ops, err := h.service.ListOperators(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ops)
}
