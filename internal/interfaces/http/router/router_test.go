package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouter_UseAppliesToAPIGroupOnly(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "up") })

	r := NewRouter(engine)
	r.Use(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusUnauthorized)
	})
	bills := NewDomainGroup("billing", "/billing")
	bills.GET("", func(c *gin.Context) { c.String(http.StatusOK, "bills") })
	r.Register(bills).Setup()

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/api/v1/billing").Code)
}

func TestDomainGroup_Methods(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("readings", "/readings")
	assert.Equal(t, "readings", g.Name())
	assert.Equal(t, "/readings", g.Prefix())

	ok := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }
	g.GET("/:id", ok).
		POST("", ok).
		PUT("/:id", ok).
		PATCH("/:id", ok).
		DELETE("/:id", ok)
	g.RegisterRoutes(engine.Group("/api/v1"))

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/readings/r1"},
		{http.MethodPost, "/api/v1/readings"},
		{http.MethodPut, "/api/v1/readings/r1"},
		{http.MethodPatch, "/api/v1/readings/r1"},
		{http.MethodDelete, "/api/v1/readings/r1"},
	}
	for _, tt := range tests {
		w := serve(engine, tt.method, tt.path)
		assert.Equal(t, http.StatusOK, w.Code, "%s %s", tt.method, tt.path)
		assert.Equal(t, tt.method, w.Body.String())
	}
}

func TestDomainGroup_MiddlewareAndSubgroups(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	reports := NewDomainGroup("reports", "/reports")
	reports.Use(func(c *gin.Context) {
		c.Header("X-Report", "yes")
		c.Next()
	})
	revenue := reports.Group("revenue", "/revenue")
	revenue.GET("/monthly", func(c *gin.Context) { c.String(http.StatusOK, "monthly") })

	customers := NewDomainGroup("customers", "/customers")
	customers.GET("", func(c *gin.Context) { c.String(http.StatusOK, "customers") })

	r.Register(reports).Register(customers).Setup()

	w := serve(engine, http.MethodGet, "/api/v1/reports/revenue/monthly")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "monthly", w.Body.String())
	assert.Equal(t, "yes", w.Header().Get("X-Report"))

	w = serve(engine, http.MethodGet, "/api/v1/customers")
	assert.Equal(t, "customers", w.Body.String())
	assert.Empty(t, w.Header().Get("X-Report"))
}
