package router

import (
	"github.com/garage/backend/internal/infrastructure/auth"
	"github.com/garage/backend/internal/interfaces/http/handler"
	"github.com/garage/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers are the handlers exposed under /api/v1
type Handlers struct {
	WorkOrders  *handler.WorkOrderHandler
	Payments    *handler.PaymentHandler
	Closings    *handler.ClosingHandler
	Receivables *handler.ReceivableHandler
	CashBook    *handler.CashBookHandler
	Accounts    *handler.AccountHandler
}

// Groups builds the route table. Attendants run the work order and payment desk;
// money movements after intake need the finance role. Role checks are no-ops
// when authentication is disabled.
func (h Handlers) Groups() []*DomainGroup {
	desk := middleware.RequireRole(auth.RoleAttendant, auth.RoleFinance)
	finance := middleware.RequireRole(auth.RoleFinance)

	workOrders := NewDomainGroup("work-orders", "/work-orders")
	workOrders.POST("", desk, h.WorkOrders.Create).
		GET("", h.WorkOrders.List).
		GET("/:id", h.WorkOrders.GetByID).
		PATCH("/:id", desk, h.WorkOrders.Update).
		DELETE("/:id", desk, h.WorkOrders.Delete).
		POST("/:id/items", desk, h.WorkOrders.AddItem).
		DELETE("/:id/items/:item_id", desk, h.WorkOrders.RemoveItem).
		POST("/:id/labors", desk, h.WorkOrders.AddLabor).
		DELETE("/:id/labors/:labor_id", desk, h.WorkOrders.RemoveLabor).
		POST("/:id/payments", desk, h.Payments.Register).
		GET("/:id/payments", h.Payments.ListByWorkOrder).
		POST("/:id/consolidate", finance, h.Closings.Consolidate).
		GET("/:id/closing", h.Closings.GetClosing).
		GET("/:id/closing/snapshot", h.Closings.Snapshot).
		GET("/:id/closing/receipt.pdf", h.Closings.Receipt).
		GET("/:id/closing/receipt-link", h.Closings.ReceiptLink)

	payments := NewDomainGroup("payments", "/payments")
	payments.DELETE("/:id", desk, h.Payments.Delete)

	receivables := NewDomainGroup("receivables", "/receivables")
	receivables.GET("", finance, h.Receivables.List).
		GET("/summary", finance, h.Receivables.Summary).
		GET("/export.xlsx", finance, h.Receivables.Export).
		POST("/confirm-batch", finance, h.Receivables.ConfirmBatch).
		POST("/:id/confirm", finance, h.Receivables.Confirm).
		POST("/:id/reverse", finance, h.Receivables.Reverse)

	cashBook := NewDomainGroup("cash-book", "/cash-book")
	cashBook.Use(finance)
	cashBook.POST("", h.CashBook.Create).
		GET("", h.CashBook.List).
		GET("/revenue", h.CashBook.Revenue).
		DELETE("/:id", h.CashBook.Delete)

	bankAccounts := NewDomainGroup("bank-accounts", "/bank-accounts")
	bankAccounts.POST("", finance, h.Accounts.CreateBankAccount).
		GET("", h.Accounts.ListBankAccounts).
		GET("/:id", h.Accounts.GetBankAccount)

	operators := NewDomainGroup("operators", "/operators")
	operators.POST("", finance, h.Accounts.CreateOperator).
		GET("", h.Accounts.ListOperators).
		GET("/:id", h.Accounts.GetOperator).
		PUT("/:id", finance, h.Accounts.UpdateOperator)

	return []*DomainGroup{workOrders, payments, receivables, cashBook, bankAccounts, operators}
}

// Register adds every group of the table to r
func (h Handlers) Register(r *Router) {
	for _, g := range h.Groups() {
		r.Register(g)
	}
}

// RegisterHealth mounts the health probe at /health and /api/v1/health
func RegisterHealth(engine *gin.Engine, health *handler.HealthHandler) {
	engine.GET("/health", health.Health)
	engine.GET("/api/v1/health", health.Health)
}
