package handler

import (
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	appmetering "github.com/utilitrack/backend/internal/application/metering"
	"github.com/utilitrack/backend/internal/interfaces/http/dto"
)

const (
	defaultHistoryLimit = 12
	maxHistoryLimit     = 120
)

// ReadingHandler handles meter reading endpoints
type ReadingHandler struct {
	BaseHandler
	readingService *appmetering.ReadingService
}

// NewReadingHandler creates a new ReadingHandler
func NewReadingHandler(readingService *appmetering.ReadingService) *ReadingHandler {
	return &ReadingHandler{readingService: readingService}
}

// List returns readings, newest first
func (h *ReadingHandler) List(c *gin.Context) {
	var filter appmetering.ReadingListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	readings, total, err := h.readingService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, readings, total, filter.Page, filter.PageSize)
}

// GetByID returns one reading
func (h *ReadingHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id", "reading")
	if !ok {
		return
	}

	reading, err := h.readingService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, reading)
}

// ListByMeter returns the readings of one meter
func (h *ReadingHandler) ListByMeter(c *gin.Context) {
	meterID, ok := h.parseID(c, "meter_id", "meter")
	if !ok {
		return
	}
	page, pageSize, ok := h.pagination(c)
	if !ok {
		return
	}

	readings, total, err := h.readingService.ListByMeter(c.Request.Context(), meterID, page, pageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, readings, total, page, pageSize)
}

// History returns the recent consumption of a meter with totals
func (h *ReadingHandler) History(c *gin.Context) {
	meterID, ok := h.parseID(c, "meter_id", "meter")
	if !ok {
		return
	}
	limit, ok := h.queryInt(c, "limit", defaultHistoryLimit)
	if !ok {
		return
	}
	if limit <= 0 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}

	history, err := h.readingService.History(c.Request.Context(), meterID, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, history)
}

// Last returns the latest reading of a meter
func (h *ReadingHandler) Last(c *gin.Context) {
	meterID, ok := h.parseID(c, "meter_id", "meter")
	if !ok {
		return
	}

	reading, err := h.readingService.Last(c.Request.Context(), meterID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, reading)
}

// Create records a reading; the reader is the authenticated user
func (h *ReadingHandler) Create(c *gin.Context) {
	var req appmetering.CreateReadingRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.ReadBy = getActor(c)

	reading, err := h.readingService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, reading)
}

// Update corrects an unbilled reading
func (h *ReadingHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id", "reading")
	if !ok {
		return
	}

	var req appmetering.UpdateReadingRequest
	if !h.BindJSON(c, &req) {
		return
	}

	reading, err := h.readingService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, reading)
}

// Delete removes an unbilled reading
func (h *ReadingHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id", "reading")
	if !ok {
		return
	}

	if err := h.readingService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"id": id, "deleted": true})
}

// Import records readings from a CSV upload, sent as multipart field "file" or as the raw body.
// With dry_run=true the rows are only validated.
func (h *ReadingHandler) Import(c *gin.Context) {
	dryRun, err := strconv.ParseBool(c.DefaultQuery("dry_run", "false"))
	if err != nil {
		h.ValidationError(c, []dto.ValidationDetail{{
			Field:   "dry_run",
			Message: "Must be true or false",
			Code:    dto.ErrCodeValidationFormat,
		}})
		return
	}

	var body io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			h.BadRequest(c, "CSV file is required in form field 'file'")
			return
		}
		f, err := fh.Open()
		if err != nil {
			h.HandleError(c, err)
			return
		}
		defer f.Close()
		body = f
	}

	result, err := h.readingService.Import(c.Request.Context(), body, appmetering.ImportReadingsOptions{
		DryRun: dryRun,
		ReadBy: getActor(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if dryRun || result.ImportedRows == 0 {
		h.Success(c, result)
		return
	}
	h.Created(c, result)
}
