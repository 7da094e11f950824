package handler

import (
	"github.com/gin-gonic/gin"
	appbilling "github.com/utilitrack/backend/internal/application/billing"
)

// TariffHandler handles tariff endpoints
type TariffHandler struct {
	BaseHandler
	tariffService *appbilling.TariffService
}

// NewTariffHandler creates a new TariffHandler
func NewTariffHandler(tariffService *appbilling.TariffService) *TariffHandler {
	return &TariffHandler{tariffService: tariffService}
}

// List returns tariffs, optionally only those in force on active_at
func (h *TariffHandler) List(c *gin.Context) {
	var filter appbilling.TariffListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	tariffs, total, err := h.tariffService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, tariffs, total, filter.Page, filter.PageSize)
}

// GetByID returns one tariff
func (h *TariffHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id", "tariff")
	if !ok {
		return
	}

	tariff, err := h.tariffService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tariff)
}

// Resolve returns the tariff that would price a reading of the given scope and date
func (h *TariffHandler) Resolve(c *gin.Context) {
	var q appbilling.ResolveTariffQuery
	if !h.BindQuery(c, &q) {
		return
	}

	tariff, err := h.tariffService.ResolveResponse(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tariff)
}

// Create adds a tariff; overlapping periods in the same scope are rejected
func (h *TariffHandler) Create(c *gin.Context) {
	var req appbilling.CreateTariffRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tariff, err := h.tariffService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, tariff)
}

// Close ends an open tariff period
func (h *TariffHandler) Close(c *gin.Context) {
	id, ok := h.parseID(c, "id", "tariff")
	if !ok {
		return
	}

	var req appbilling.CloseTariffRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tariff, err := h.tariffService.Close(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tariff)
}
