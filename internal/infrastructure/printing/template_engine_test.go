package printing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appbilling "github.com/utilitrack/backend/internal/application/billing"
)

func sampleStatement() *appbilling.BillStatement {
	d := decimal.RequireFromString
	billDate := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)
	return &appbilling.BillStatement{
		Bill: appbilling.BillResponse{
			ID:                uuid.New(),
			BillNumber:        "BILL-202602-000042",
			TariffName:        "Residential Electricity",
			Unit:              "kWh",
			BillingPeriod:     "2026-02",
			BillDate:          billDate,
			DueDate:           billDate.AddDate(0, 0, 15),
			PreviousReading:   d("100"),
			CurrentReading:    d("350"),
			Consumption:       d("250"),
			RatePerUnit:       d("0.12"),
			ConsumptionCharge: d("30"),
			FixedCharge:       d("5"),
			TotalAmount:       d("1035"),
			PaidAmount:        d("10"),
			OutstandingAmount: d("1025"),
			Currency:          "USD",
			Status:            "Partially Paid",
			DaysOverdue:       3,
		},
		Customer: appbilling.StatementCustomer{
			AccountNumber: "ACC-1234",
			Name:          "Ada <Lovelace>",
			Type:          "Residential",
			Address:       "1 Main St",
			City:          "Springfield",
		},
		Meter: appbilling.StatementMeter{
			MeterNumber: "EL-0001",
			UtilityType: "electricity",
			Location:    "Basement",
		},
		Payments: []appbilling.PaymentResponse{
			{Amount: d("10"), Method: "Cash", PaymentDate: billDate.AddDate(0, 0, 1), Status: "Completed"},
		},
		GeneratedAt: time.Date(2026, 2, 21, 8, 30, 0, 0, time.UTC),
	}
}

func TestTemplateEngine_RenderStatement(t *testing.T) {
	engine := NewTemplateEngine(WithCompany("City Utilities", "+1 555 0100"))

	html, err := engine.RenderStatement(context.Background(), sampleStatement())
	require.NoError(t, err)

	for _, want := range []string{
		"City Utilities",
		"Customer care: +1 555 0100",
		"Statement <strong>BILL-202602-000042</strong>",
		"ACC-1234",
		"Ada &lt;Lovelace&gt;",
		"EL-0001 (Basement)",
		"Electricity",
		"250 kWh",
		"1,035.00 USD",
		"1,025.00 USD",
		"10.00 USD",
		"2026-02-18",
		"3 days overdue",
		"Generated 2026-02-21 08:30 UTC",
	} {
		assert.Contains(t, html, want)
	}
}

func TestTemplateEngine_RenderStatement_NoPayments(t *testing.T) {
	st := sampleStatement()
	st.Payments = nil
	st.Bill.DaysOverdue = 0

	html, err := NewTemplateEngine().RenderStatement(context.Background(), st)
	require.NoError(t, err)

	assert.Contains(t, html, "<h1>UtiliTrack</h1>")
	assert.NotContains(t, html, "Payment date")
	assert.NotContains(t, html, "overdue")
	assert.NotContains(t, html, "Customer care")
}

func TestTemplateEngine_RenderStatement_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTemplateEngine().RenderStatement(ctx, sampleStatement())
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestTemplateEngine_RenderString(t *testing.T) {
	engine := NewTemplateEngine()

	out, err := engine.RenderString(context.Background(), "t", `{{formatMoney .A "EUR"}} {{upper .B}}`, map[string]any{
		"A": decimal.RequireFromString("-1234567.891"),
		"B": "ok",
	})
	require.NoError(t, err)
	assert.Equal(t, "-1,234,567.89 EUR OK", out)

	_, err = engine.RenderString(context.Background(), "t", "", nil)
	var renderErr *RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)

	_, err = engine.RenderString(context.Background(), "t", "{{.Missing", nil)
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)
}

func TestStatementFooter(t *testing.T) {
	footer := NewTemplateEngine(WithCompany("A & B Water", "")).StatementFooter()
	assert.Contains(t, footer, "A &amp; B Water")
	assert.Contains(t, footer, `class="pageNumber"`)
}
