package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appbilling "github.com/utilitrack/backend/internal/application/billing"
	appcomplaint "github.com/utilitrack/backend/internal/application/complaint"
	appcustomer "github.com/utilitrack/backend/internal/application/customer"
	appidentity "github.com/utilitrack/backend/internal/application/identity"
	appmetering "github.com/utilitrack/backend/internal/application/metering"
	appreport "github.com/utilitrack/backend/internal/application/report"
	"github.com/utilitrack/backend/internal/infrastructure/auth"
	"github.com/utilitrack/backend/internal/infrastructure/cache"
	"github.com/utilitrack/backend/internal/infrastructure/config"
	"github.com/utilitrack/backend/internal/infrastructure/persistence"
	"github.com/utilitrack/backend/internal/infrastructure/printing"
	"github.com/utilitrack/backend/internal/interfaces/http/dto"
	"github.com/utilitrack/backend/internal/interfaces/http/handler"
	"github.com/utilitrack/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Meta      *dto.Meta       `json:"meta"`
	Count     *int            `json:"count"`
	Error     *dto.ErrorInfo  `json:"error"`
	RequestID string          `json:"request_id"`
}

// fakePDF stands in for headless Chrome
type fakePDF struct{}

func (fakePDF) Render(_ context.Context, req *printing.RenderRequest) (*printing.RenderResult, error) {
	return &printing.RenderResult{PDFData: append([]byte("%PDF-1.7\n"), req.Title...)}, nil
}

func (fakePDF) Close() error { return nil }

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
	users  *appidentity.UserService
	token  string
}

func newTestAPI(t *testing.T, authEnabled bool) *testAPI {
	t.Helper()
	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: persistence.DriverSQLite, SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })

	g := db.DB
	customers := persistence.NewGormCustomerRepository(g)
	meters := persistence.NewGormMeterRepository(g)
	readings := persistence.NewGormReadingRepository(g)
	tariffs := persistence.NewGormTariffRepository(g)
	bills := persistence.NewGormBillRepository(g)
	payments := persistence.NewGormPaymentRepository(g)
	users := persistence.NewGormUserRepository(g)
	txScope := persistence.NewGormTransactionScope(g)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "utilitrack-test",
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	idempotency := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = idempotency.Close() })

	tariffService := appbilling.NewTariffService(tariffs)
	userService := appidentity.NewUserService(users, zap.NewNop())

	h := router.Handlers{
		System: handler.NewSystemHandler(db, nil, "test"),
		Auth: handler.NewAuthHandler(appidentity.NewAuthService(users, jwtService, blacklist,
			appidentity.DefaultAuthServiceConfig(), zap.NewNop())),
		User:     handler.NewUserHandler(userService),
		Customer: handler.NewCustomerHandler(appcustomer.NewCustomerService(customers, meters)),
		Meter:    handler.NewMeterHandler(appmetering.NewMeterService(meters, customers)),
		Reading:  handler.NewReadingHandler(appmetering.NewReadingService(readings, meters)),
		Billing: handler.NewBillingHandler(appbilling.NewBillingService(bills, readings, meters, customers,
			tariffService, txScope, appbilling.DefaultSettings(), zap.NewNop())),
		Statement: handler.NewStatementHandler(appbilling.NewStatementService(bills, payments, customers, meters, ""),
			printing.NewTemplateEngine(), fakePDF{}),
		Tariff:    handler.NewTariffHandler(tariffService),
		Payment:   handler.NewPaymentHandler(appbilling.NewPaymentService(payments, bills, txScope, "", zap.NewNop())),
		Complaint: handler.NewComplaintHandler(appcomplaint.NewComplaintService(persistence.NewGormComplaintRepository(g), customers)),
		Report:    handler.NewReportHandler(appreport.NewReportService(persistence.NewGormUtilityReportRepository(g), 30)),
	}

	engine := router.NewEngine(router.EngineConfig{
		Logger:           zap.NewNop(),
		HTTP:             config.HTTPConfig{MaxBodySize: 1 << 20},
		AuthEnabled:      authEnabled,
		JWTService:       jwtService,
		TokenBlacklist:   blacklist,
		IdempotencyStore: idempotency,
	}, h)

	return &testAPI{t: t, engine: engine, users: userService}
}

func (a *testAPI) do(method, path string, body any, headers ...string) (int, envelope) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

// raw issues a request and returns the recorder without decoding the body
func (a *testAPI) raw(method, path string) *httptest.ResponseRecorder {
	a.t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testAPI) mustDo(method, path string, body any, wantStatus int, out any, headers ...string) {
	a.t.Helper()
	status, env := a.do(method, path, body, headers...)
	require.Equal(a.t, wantStatus, status, "%s %s: %+v", method, path, env.Error)
	if out != nil {
		require.NoError(a.t, json.Unmarshal(env.Data, out))
	}
}

func (a *testAPI) login(username, role string) {
	a.t.Helper()
	_, err := a.users.Create(context.Background(), appidentity.CreateUserInput{
		Username: username,
		Password: "correct-horse-battery9",
		Role:     role,
	})
	require.NoError(a.t, err)

	a.token = ""
	var resp handler.LoginResponse
	a.mustDo(http.MethodPost, "/api/v1/auth/login", handler.LoginRequest{
		Username: username,
		Password: "correct-horse-battery9",
	}, http.StatusOK, &resp)
	require.NotEmpty(a.t, resp.Token.AccessToken)
	a.token = resp.Token.AccessToken
}

func isoDaysAgo(days int) string {
	return time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)
}

// seedReading creates a residential customer with a meter and one reading of the given consumption
func (a *testAPI) seedReading(utility, meterNumber string, initial, current string) (appcustomer.CustomerResponse, appmetering.ReadingResponse) {
	a.t.Helper()
	var cust appcustomer.CustomerResponse
	a.mustDo(http.MethodPost, "/api/v1/customers", map[string]any{
		"name":          "Amina Okafor",
		"customer_type": "Residential",
		"email":         "amina." + meterNumber + "@example.com",
	}, http.StatusCreated, &cust)

	var meter appmetering.MeterResponse
	a.mustDo(http.MethodPost, "/api/v1/meters", map[string]any{
		"customer_id":       cust.ID,
		"meter_number":      meterNumber,
		"utility_type":      utility,
		"installation_date": isoDaysAgo(90),
		"initial_reading":   initial,
	}, http.StatusCreated, &meter)

	var reading appmetering.ReadingResponse
	a.mustDo(http.MethodPost, "/api/v1/readings", map[string]any{
		"meter_id":        meter.ID,
		"reading_date":    isoDaysAgo(1),
		"current_reading": current,
	}, http.StatusCreated, &reading)
	return cust, reading
}

func (a *testAPI) seedTariff(utility, rate, fixed string) {
	a.t.Helper()
	a.mustDo(http.MethodPost, "/api/v1/tariffs", map[string]any{
		"name":           utility + " residential",
		"utility_type":   utility,
		"customer_type":  "Residential",
		"rate_per_unit":  rate,
		"fixed_charge":   fixed,
		"effective_from": isoDaysAgo(365),
	}, http.StatusCreated, nil)
}

func TestAPI_BillingAndPaymentFlow(t *testing.T) {
	api := newTestAPI(t, true)
	api.login("admin", "Admin")
	api.seedTariff("Electricity", "0.25", "5")
	cust, reading := api.seedReading("Electricity", "E-1001", "100", "250")
	assert.True(t, reading.Consumption.Equal(decimal.NewFromInt(150)))

	var preview appbilling.BillPreviewResponse
	api.mustDo(http.MethodGet, "/api/v1/billing/preview/"+reading.ID.String(), nil, http.StatusOK, &preview)
	assert.True(t, preview.TotalAmount.Equal(decimal.RequireFromString("42.5")), preview.TotalAmount.String())

	var bill appbilling.BillResponse
	api.mustDo(http.MethodPost, "/api/v1/billing/generate", map[string]any{"reading_id": reading.ID},
		http.StatusCreated, &bill, "Idempotency-Key", "gen-1")
	assert.Equal(t, "Unpaid", bill.Status)
	assert.Equal(t, cust.ID, bill.CustomerID)
	assert.True(t, bill.TotalAmount.Equal(decimal.RequireFromString("42.5")))

	// replaying the same key is rejected before the service runs
	status, env := api.do(http.MethodPost, "/api/v1/billing/generate", map[string]any{"reading_id": reading.ID},
		"Idempotency-Key", "gen-1")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, dto.ErrCodeIdempotencyConflict, env.Error.Code)

	// a fresh key reaches the service, which refuses to bill twice
	status, env = api.do(http.MethodPost, "/api/v1/billing/generate", map[string]any{"reading_id": reading.ID},
		"Idempotency-Key", "gen-2")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, dto.ErrCodeAlreadyBilled, env.Error.Code)
	assert.NotEmpty(t, env.RequestID)

	var paid appbilling.PaymentResult
	api.mustDo(http.MethodPost, "/api/v1/payments", map[string]any{
		"bill_id":        bill.ID,
		"amount":         "20",
		"payment_method": "Cash",
	}, http.StatusCreated, &paid)
	assert.Equal(t, "Partially Paid", paid.Bill.Status)
	assert.True(t, paid.Bill.OutstandingAmount.Equal(decimal.RequireFromString("22.5")))
	assert.Equal(t, "admin", paid.Payment.RecordedBy)

	status, env = api.do(http.MethodPost, "/api/v1/payments", map[string]any{
		"bill_id":        bill.ID,
		"amount":         "100",
		"payment_method": "Card",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, dto.ErrCodeExceedsOutstanding, env.Error.Code)

	var byBill []appbilling.PaymentResponse
	api.mustDo(http.MethodGet, "/api/v1/payments/bill/"+bill.ID.String(), nil, http.StatusOK, &byBill)
	assert.Len(t, byBill, 1)

	var stats appbilling.BillStatsResponse
	api.mustDo(http.MethodGet, "/api/v1/billing/stats/summary", nil, http.StatusOK, &stats)

	var summary appreport.DashboardSummaryResponse
	api.mustDo(http.MethodGet, "/api/v1/reports/dashboard-summary", nil, http.StatusOK, &summary)

	var unprocessed []appbilling.UnprocessedReadingResponse
	_, env = api.do(http.MethodGet, "/api/v1/billing/unprocessed-readings", nil)
	require.NoError(t, json.Unmarshal(env.Data, &unprocessed))
	assert.Empty(t, unprocessed)
}

func TestAPI_ErrorMapping(t *testing.T) {
	api := newTestAPI(t, true)
	api.login("admin", "Admin")

	t.Run("validation details", func(t *testing.T) {
		status, env := api.do(http.MethodPost, "/api/v1/customers", map[string]any{"customer_type": "Alien"})
		assert.Equal(t, http.StatusBadRequest, status)
		require.NotNil(t, env.Error)
		assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)
		assert.Len(t, env.Error.Details, 2)
	})

	t.Run("malformed id", func(t *testing.T) {
		status, env := api.do(http.MethodGet, "/api/v1/customers/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, dto.ErrCodeBadRequest, env.Error.Code)
	})

	t.Run("not found", func(t *testing.T) {
		status, env := api.do(http.MethodGet, "/api/v1/billing/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, dto.ErrCodeNotFound, env.Error.Code)
	})

	t.Run("tariff not found", func(t *testing.T) {
		_, reading := api.seedReading("Water", "W-2001", "0", "12")
		status, env := api.do(http.MethodGet, "/api/v1/billing/preview/"+reading.ID.String(), nil)
		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Equal(t, dto.ErrCodeTariffNotFound, env.Error.Code)
	})

	t.Run("complaint search needs q", func(t *testing.T) {
		status, env := api.do(http.MethodGet, "/api/v1/complaints/search", nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)
	})

	t.Run("non-integer query", func(t *testing.T) {
		status, env := api.do(http.MethodGet, "/api/v1/reports/revenue-trends?months=six", nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)
	})
}

func TestAPI_Authorization(t *testing.T) {
	api := newTestAPI(t, true)

	status, env := api.do(http.MethodGet, "/api/v1/customers", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)

	api.login("reader", "Staff")

	var customers []appcustomer.CustomerResponse
	api.mustDo(http.MethodGet, "/api/v1/customers", nil, http.StatusOK, &customers)

	status, env = api.do(http.MethodPost, "/api/v1/tariffs", map[string]any{
		"name": "x", "utility_type": "Gas", "effective_from": isoDaysAgo(1),
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, dto.ErrCodeForbidden, env.Error.Code)

	status, _ = api.do(http.MethodPost, "/api/v1/payments", map[string]any{
		"bill_id": uuid.New(), "amount": "1", "payment_method": "Cash",
	})
	assert.Equal(t, http.StatusForbidden, status)

	var me appidentity.UserInfo
	api.mustDo(http.MethodGet, "/api/v1/auth/me", nil, http.StatusOK, &me)
	assert.Equal(t, "reader", me.Username)
	assert.Equal(t, "Staff", me.Role)

	api.mustDo(http.MethodPost, "/api/v1/auth/logout", nil, http.StatusOK, nil)
	status, _ = api.do(http.MethodGet, "/api/v1/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAPI_Health(t *testing.T) {
	api := newTestAPI(t, true)

	status, env := api.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	var conn handler.ConnectivityResponse
	api.mustDo(http.MethodGet, "/test", nil, http.StatusOK, &conn)
	assert.Equal(t, "ok", conn.Database)
}

func TestAPI_AuthDisabled(t *testing.T) {
	api := newTestAPI(t, false)

	var cust appcustomer.CustomerResponse
	api.mustDo(http.MethodPost, "/api/v1/customers", map[string]any{
		"name":          "Open Access Ltd",
		"customer_type": "Commercial",
	}, http.StatusCreated, &cust)
	assert.NotEmpty(t, cust.AccountNumber)
}

func TestAPI_ReadingImport(t *testing.T) {
	api := newTestAPI(t, true)
	api.login("reader", "Staff")
	_, first := api.seedReading("Gas", "G-3001", "10", "40")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "readings.csv")
	require.NoError(t, err)
	_, _ = part.Write([]byte("meter_number,current_reading\nG-3001,55\nG-4040,1\n"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/readings/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+api.token)
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var result appmetering.ReadingImportResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 1, result.ImportedRows)
	assert.Equal(t, 1, result.ErrorRows)
	require.Len(t, result.Readings, 1)
	assert.True(t, result.Readings[0].PreviousReading.Equal(first.CurrentReading))
	assert.Equal(t, "reader", result.Readings[0].ReadBy)

	status, env := api.do(http.MethodPost, "/api/v1/readings/import?dry_run=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)
}

func TestAPI_BillStatement(t *testing.T) {
	api := newTestAPI(t, true)
	api.login("admin", "Admin")
	api.seedTariff("Water", "1.5", "2")
	_, reading := api.seedReading("Water", "W-7001", "10", "30")

	var bill appbilling.BillResponse
	api.mustDo(http.MethodPost, "/api/v1/billing/generate", map[string]any{"reading_id": reading.ID},
		http.StatusCreated, &bill)
	api.mustDo(http.MethodPost, "/api/v1/payments", map[string]any{
		"bill_id":        bill.ID,
		"amount":         "12",
		"payment_method": "Cash",
	}, http.StatusCreated, nil)

	path := "/api/v1/billing/" + bill.ID.String() + "/statement"

	var statement appbilling.BillStatement
	api.mustDo(http.MethodGet, path, nil, http.StatusOK, &statement)
	assert.Equal(t, bill.BillNumber, statement.Bill.BillNumber)
	assert.Equal(t, "Amina Okafor", statement.Customer.Name)
	assert.Equal(t, "W-7001", statement.Meter.MeterNumber)
	require.Len(t, statement.Payments, 1)
	assert.True(t, statement.Bill.OutstandingAmount.Equal(decimal.RequireFromString("20")))

	w := api.raw(http.MethodGet, path+"?format=html")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "style-src 'unsafe-inline'")
	assert.Contains(t, w.Body.String(), bill.BillNumber)
	assert.Contains(t, w.Body.String(), "20.00 USD")

	w = api.raw(http.MethodGet, path+"?format=pdf")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), bill.BillNumber+".pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	status, env := api.do(http.MethodGet, "/api/v1/billing/"+uuid.NewString()+"/statement", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, dto.ErrCodeNotFound, env.Error.Code)
}
