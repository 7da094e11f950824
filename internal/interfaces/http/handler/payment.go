package handler

import (
	"github.com/gin-gonic/gin"
	appbilling "github.com/utilitrack/backend/internal/application/billing"
)

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *appbilling.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *appbilling.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// List returns payments filtered by bill, customer, method, status and date
func (h *PaymentHandler) List(c *gin.Context) {
	var filter appbilling.PaymentListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	payments, total, err := h.paymentService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, payments, total, filter.Page, filter.PageSize)
}

// GetByID returns one payment
func (h *PaymentHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id", "payment")
	if !ok {
		return
	}

	payment, err := h.paymentService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payment)
}

// ListByBill returns every payment made against a bill
func (h *PaymentHandler) ListByBill(c *gin.Context) {
	billID, ok := h.parseID(c, "bill_id", "bill")
	if !ok {
		return
	}

	payments, err := h.paymentService.ListByBill(c.Request.Context(), billID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithCount(c, payments, len(payments))
}

// ListByCustomer returns the payments of one customer
func (h *PaymentHandler) ListByCustomer(c *gin.Context) {
	customerID, ok := h.parseID(c, "customer_id", "customer")
	if !ok {
		return
	}
	page, pageSize, ok := h.pagination(c)
	if !ok {
		return
	}

	payments, total, err := h.paymentService.ListByCustomer(c.Request.Context(), customerID, page, pageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, payments, total, page, pageSize)
}

// Apply records a payment against a bill and returns the updated bill.
// The authenticated user is recorded as the cashier.
func (h *PaymentHandler) Apply(c *gin.Context) {
	var req appbilling.ApplyPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.RecordedBy = getActor(c)

	result, err := h.paymentService.Apply(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Verify marks a completed payment as verified
func (h *PaymentHandler) Verify(c *gin.Context) {
	id, ok := h.parseID(c, "id", "payment")
	if !ok {
		return
	}

	payment, err := h.paymentService.Verify(c.Request.Context(), id, getActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payment)
}

// Refund reverses a payment and restores the bill balance
func (h *PaymentHandler) Refund(c *gin.Context) {
	id, ok := h.parseID(c, "id", "payment")
	if !ok {
		return
	}

	var req appbilling.RefundPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.paymentService.Refund(c.Request.Context(), id, req, getActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
