package printing

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateEngine renders bill statements with html/template
type TemplateEngine struct {
	funcMap      template.FuncMap
	statement    *template.Template
	companyName  string
	supportPhone string
}

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*TemplateEngine)

// WithCompany sets the issuer details printed in the statement header
func WithCompany(name, supportPhone string) TemplateEngineOption {
	return func(e *TemplateEngine) {
		e.companyName = name
		e.supportPhone = supportPhone
	}
}

// NewTemplateEngine creates a template engine with the built-in statement layout
func NewTemplateEngine(opts ...TemplateEngineOption) *TemplateEngine {
	e := &TemplateEngine{companyName: "UtiliTrack"}
	for _, opt := range opts {
		opt(e)
	}

	e.funcMap = template.FuncMap{
		"formatMoney":    formatMoney,
		"formatQuantity": formatQuantity,
		"formatDate":     formatDate,
		"formatDateTime": formatDateTime,
		"title":          titleCase,
		"upper":          strings.ToUpper,
		"company":        func() string { return e.companyName },
		"supportPhone":   func() string { return e.supportPhone },
	}
	e.statement = template.Must(template.New("statement").Funcs(e.funcMap).Parse(statementTemplate))
	return e
}

// RenderStatement renders the statement layout with the given bill statement
func (e *TemplateEngine) RenderStatement(ctx context.Context, data any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := e.statement.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute statement template", err)
	}
	return buf.String(), nil
}

// RenderString parses and renders an ad hoc template with the engine functions
func (e *TemplateEngine) RenderString(ctx context.Context, name, content string, data any) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", NewRenderError(ErrCodeInvalidHTML, "template content is empty", nil)
	}
	tmpl, err := template.New(name).Funcs(e.funcMap).Parse(content)
	if err != nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "failed to parse template", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template", err)
	}
	return buf.String(), nil
}

// StatementFooter is the per-page PDF footer with page numbers
func (e *TemplateEngine) StatementFooter() string {
	return `<div style="font-size:8px;width:100%;text-align:center;color:#666;">` +
		template.HTMLEscapeString(e.companyName) +
		` &middot; page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`
}

// formatMoney renders an amount with thousand separators and the currency code.
// Example: (1234.5, "USD") -> "1,234.50 USD"
func formatMoney(v decimal.Decimal, currency string) string {
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Abs()
	}
	parts := strings.SplitN(v.StringFixed(2), ".", 2)
	intPart := parts[0]

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteRune(',')
		}
		b.WriteRune(c)
	}
	out := sign + b.String() + "." + parts[1]
	if currency != "" {
		out += " " + currency
	}
	return out
}

// formatQuantity renders a meter quantity without trailing zeros
func formatQuantity(v decimal.Decimal, unit string) string {
	s := v.String()
	if unit == "" {
		return s
	}
	return fmt.Sprintf("%s %s", s, unit)
}

// titleCase builds a Caser per call; Casers are not safe for concurrent use
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func formatDate(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDateTime(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04 UTC")
}

func toTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t != nil {
			return *t
		}
	}
	return time.Time{}
}
