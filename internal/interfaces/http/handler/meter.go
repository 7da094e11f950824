package handler

import (
	"github.com/gin-gonic/gin"
	appmetering "github.com/utilitrack/backend/internal/application/metering"
)

// MeterHandler handles meter endpoints
type MeterHandler struct {
	BaseHandler
	meterService *appmetering.MeterService
}

// NewMeterHandler creates a new MeterHandler
func NewMeterHandler(meterService *appmetering.MeterService) *MeterHandler {
	return &MeterHandler{meterService: meterService}
}

// List returns meters filtered by customer, utility type and status
func (h *MeterHandler) List(c *gin.Context) {
	var filter appmetering.MeterListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	meters, total, err := h.meterService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, meters, total, filter.Page, filter.PageSize)
}

// GetByID returns one meter
func (h *MeterHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id", "meter")
	if !ok {
		return
	}

	meter, err := h.meterService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, meter)
}

// ListByCustomer returns every meter installed for a customer
func (h *MeterHandler) ListByCustomer(c *gin.Context) {
	customerID, ok := h.parseID(c, "customer_id", "customer")
	if !ok {
		return
	}

	meters, err := h.meterService.ListByCustomer(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithCount(c, meters, len(meters))
}

// Create installs a meter
func (h *MeterHandler) Create(c *gin.Context) {
	var req appmetering.CreateMeterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	meter, err := h.meterService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, meter)
}

// UpdateStatus switches a meter between Active, Inactive and Faulty
func (h *MeterHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.parseID(c, "id", "meter")
	if !ok {
		return
	}

	var req appmetering.UpdateMeterStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	meter, err := h.meterService.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, meter)
}
