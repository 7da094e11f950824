package handler

import (
	"github.com/gin-gonic/gin"
	appcomplaint "github.com/utilitrack/backend/internal/application/complaint"
)

// ComplaintHandler handles customer complaint endpoints
type ComplaintHandler struct {
	BaseHandler
	complaintService *appcomplaint.ComplaintService
}

// NewComplaintHandler creates a new ComplaintHandler
func NewComplaintHandler(complaintService *appcomplaint.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{complaintService: complaintService}
}

// List returns complaints, newest first.
// It also serves /complaints/filter, where status, priority and type narrow the list.
func (h *ComplaintHandler) List(c *gin.Context) {
	var filter appcomplaint.ComplaintListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	complaints, total, err := h.complaintService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, complaints, total, filter.Page, filter.PageSize)
}

// Search matches q against complaint number, subject and description
func (h *ComplaintHandler) Search(c *gin.Context) {
	page, pageSize, ok := h.pagination(c)
	if !ok {
		return
	}

	complaints, total, err := h.complaintService.Search(c.Request.Context(), c.Query("q"), page, pageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, complaints, total, page, pageSize)
}

// ListByCustomer returns the complaints of one customer
func (h *ComplaintHandler) ListByCustomer(c *gin.Context) {
	customerID, ok := h.parseID(c, "customer_id", "customer")
	if !ok {
		return
	}
	page, pageSize, ok := h.pagination(c)
	if !ok {
		return
	}

	complaints, total, err := h.complaintService.ListByCustomer(c.Request.Context(), customerID, page, pageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, complaints, total, page, pageSize)
}

// GetByID returns one complaint
func (h *ComplaintHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id", "complaint")
	if !ok {
		return
	}

	complaint, err := h.complaintService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, complaint)
}

// Create opens a complaint
func (h *ComplaintHandler) Create(c *gin.Context) {
	var req appcomplaint.CreateComplaintRequest
	if !h.BindJSON(c, &req) {
		return
	}

	complaint, err := h.complaintService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, complaint)
}

// Update edits an unfinished complaint
func (h *ComplaintHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id", "complaint")
	if !ok {
		return
	}

	var req appcomplaint.UpdateComplaintRequest
	if !h.BindJSON(c, &req) {
		return
	}

	complaint, err := h.complaintService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, complaint)
}

// Assign hands a complaint to a staff member
func (h *ComplaintHandler) Assign(c *gin.Context) {
	id, ok := h.parseID(c, "id", "complaint")
	if !ok {
		return
	}

	var req appcomplaint.AssignComplaintRequest
	if !h.BindJSON(c, &req) {
		return
	}

	complaint, err := h.complaintService.Assign(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, complaint)
}

// ChangeStatus moves a complaint along its lifecycle
func (h *ComplaintHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.parseID(c, "id", "complaint")
	if !ok {
		return
	}

	var req appcomplaint.UpdateComplaintStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	complaint, err := h.complaintService.ChangeStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, complaint)
}

// Resolve closes a complaint with resolution notes
func (h *ComplaintHandler) Resolve(c *gin.Context) {
	id, ok := h.parseID(c, "id", "complaint")
	if !ok {
		return
	}

	var req appcomplaint.ResolveComplaintRequest
	if !h.BindJSON(c, &req) {
		return
	}

	complaint, err := h.complaintService.Resolve(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, complaint)
}

// Delete removes a complaint
func (h *ComplaintHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id", "complaint")
	if !ok {
		return
	}

	if err := h.complaintService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"id": id, "deleted": true})
}
