package handler

import (
	"github.com/gin-gonic/gin"
	appbilling "github.com/utilitrack/backend/internal/application/billing"
)

const defaultOverdueBatchSize = 500

// BillingHandler handles bill endpoints
type BillingHandler struct {
	BaseHandler
	billingService *appbilling.BillingService
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(billingService *appbilling.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

// List returns bills filtered by status, customer, meter, utility and period
func (h *BillingHandler) List(c *gin.Context) {
	var filter appbilling.BillListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	bills, total, err := h.billingService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, bills, total, filter.Page, filter.PageSize)
}

// GetByID returns one bill
func (h *BillingHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id", "bill")
	if !ok {
		return
	}

	bill, err := h.billingService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, bill)
}

// UnprocessedReadings lists readings that have not been billed yet
func (h *BillingHandler) UnprocessedReadings(c *gin.Context) {
	page, pageSize, ok := h.pagination(c)
	if !ok {
		return
	}

	readings, total, err := h.billingService.UnprocessedReadings(c.Request.Context(), page, pageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, readings, total, page, pageSize)
}

// Preview prices a reading without creating a bill
func (h *BillingHandler) Preview(c *gin.Context) {
	readingID, ok := h.parseID(c, "reading_id", "reading")
	if !ok {
		return
	}

	preview, err := h.billingService.Preview(c.Request.Context(), readingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, preview)
}

// Generate bills a reading. A reading can be billed at most once.
func (h *BillingHandler) Generate(c *gin.Context) {
	var req appbilling.GenerateBillRequest
	if !h.BindJSON(c, &req) {
		return
	}

	bill, err := h.billingService.Generate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, bill)
}

// Stats returns bill counts and amounts per status
func (h *BillingHandler) Stats(c *gin.Context) {
	stats, err := h.billingService.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}

// Cancel voids a bill that has no payments
func (h *BillingHandler) Cancel(c *gin.Context) {
	id, ok := h.parseID(c, "id", "bill")
	if !ok {
		return
	}

	var req appbilling.CancelBillRequest
	if !h.BindJSON(c, &req) {
		return
	}

	bill, err := h.billingService.Cancel(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, bill)
}

// RefreshOverdue marks past-due open bills as Overdue
func (h *BillingHandler) RefreshOverdue(c *gin.Context) {
	batchSize, ok := h.queryInt(c, "batch_size", defaultOverdueBatchSize)
	if !ok {
		return
	}
	if batchSize <= 0 {
		batchSize = defaultOverdueBatchSize
	}

	result, err := h.billingService.RefreshOverdue(c.Request.Context(), batchSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
