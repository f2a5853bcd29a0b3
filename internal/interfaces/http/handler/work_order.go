package handler

import (
	workorderapp "github.com/garage/backend/internal/application/workorder"
	"github.com/gin-gonic/gin"
)

// WorkOrderHandler handles work order endpoints
type WorkOrderHandler struct {
	BaseHandler
	service *workorderapp.Service
}

// NewWorkOrderHandler creates a new WorkOrderHandler
func NewWorkOrderHandler(service *workorderapp.Service) *WorkOrderHandler {
	return &WorkOrderHandler{service: service}
}

// Create handles POST /work-orders
func (h *WorkOrderHandler) Create(c *gin.Context) {
	var req workorderapp.CreateWorkOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	wo, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, wo)
}

// GetByID handles GET /work-orders/:id
func (h *WorkOrderHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	wo, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, wo)
}

// List handles GET /work-orders
func (h *WorkOrderHandler) List(c *gin.Context) {
	var req workorderapp.ListWorkOrdersRequest
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

// Update handles PATCH /work-orders/:id. A status field drives the state machine.
func (h *WorkOrderHandler) Update(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req workorderapp.UpdateWorkOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	wo, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, wo)
}

// Delete handles DELETE /work-orders/:id
func (h *WorkOrderHandler) Delete(c *gin.Context) {
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

// AddItem handles POST /work-orders/:id/items
func (h *WorkOrderHandler) AddItem(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req workorderapp.AddItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	wo, err := h.service.AddItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, wo)
}

// RemoveItem handles DELETE /work-orders/:id/items/:item_id
func (h *WorkOrderHandler) RemoveItem(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.ParamUUID(c, "item_id")
	if !ok {
		return
	}
	wo, err := h.service.RemoveItem(c.Request.Context(), id, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, wo)
}

// AddLabor handles POST /work-orders/:id/labors
func (h *WorkOrderHandler) AddLabor(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req workorderapp.AddLaborRequest
	if !h.BindJSON(c, &req) {
		return
	}
	wo, err := h.service.AddLabor(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, wo)
}

// RemoveLabor handles DELETE /work-orders/:id/labors/:labor_id
func (h *WorkOrderHandler) RemoveLabor(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	laborID, ok := h.ParamUUID(c, "labor_id")
	if !ok {
		return
	}
	wo, err := h.service.RemoveLabor(c.Request.Context(), id, laborID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, wo)
}
