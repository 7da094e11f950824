package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	appbilling "github.com/utilitrack/backend/internal/application/billing"
	"github.com/utilitrack/backend/internal/infrastructure/printing"
	"github.com/utilitrack/backend/internal/interfaces/http/dto"
)

// statementCSP lets the printed statement use its inline stylesheet
const statementCSP = "default-src 'none'; style-src 'unsafe-inline'; frame-ancestors 'none'"

// StatementHandler serves printable bill statements
type StatementHandler struct {
	BaseHandler
	statements *appbilling.StatementService
	templates  *printing.TemplateEngine
	pdf        printing.PDFRenderer
}

// NewStatementHandler creates a new StatementHandler. pdf may be nil, in which
// case PDF statements answer 503.
func NewStatementHandler(statements *appbilling.StatementService, templates *printing.TemplateEngine, pdf printing.PDFRenderer) *StatementHandler {
	if templates == nil {
		templates = printing.NewTemplateEngine()
	}
	return &StatementHandler{statements: statements, templates: templates, pdf: pdf}
}

// Get returns the statement of a bill as JSON, HTML or PDF (?format=json|html|pdf)
func (h *StatementHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id", "bill")
	if !ok {
		return
	}

	format := strings.ToLower(c.DefaultQuery("format", "json"))
	switch format {
	case "json", "html", "pdf":
	default:
		h.BadRequest(c, "format must be one of json, html, pdf")
		return
	}
	if format == "pdf" && h.pdf == nil {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeServiceUnavailable, "PDF statements are not enabled")
		return
	}

	ctx := c.Request.Context()
	statement, err := h.statements.Get(ctx, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if format == "json" {
		h.Success(c, statement)
		return
	}

	html, err := h.templates.RenderStatement(ctx, statement)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if format == "html" {
		c.Header("Content-Security-Policy", statementCSP)
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
		return
	}

	result, err := h.pdf.Render(ctx, &printing.RenderRequest{
		HTML:       html,
		PaperSize:  printing.PaperSizeA4,
		Margins:    printing.DefaultMargins(),
		Title:      "Statement " + statement.Bill.BillNumber,
		FooterHTML: h.templates.StatementFooter(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+statement.Bill.BillNumber+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", result.PDFData)
}
