package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/invoicing/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	group := NewDomainGroup("test", "/test").
		GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/test/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroupMiddlewareRunsFirst(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("guarded", "/guarded").
		Use(func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }).
		POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	g.RegisterRoutes(engine.Group("/api/v1"))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/guarded/x", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "guarded", g.Name())
	assert.Equal(t, "/guarded", g.Prefix())
}

func TestGroupsRegisterInvoiceEndpoints(t *testing.T) {
	engine := gin.New()
	pass := func(c *gin.Context) { c.Next() }
	h := Handlers{
		Auth:      &handler.AuthHandler{},
		Invoice:   &handler.InvoiceHandler{},
		Dashboard: &handler.DashboardHandler{},
		Quotation: &handler.QuotationHandler{},
		Customer:  &handler.CustomerHandler{},
		Catalog:   &handler.CatalogHandler{},
		Stock:     &handler.StockHandler{},
		System:    &handler.SystemHandler{},
	}
	require.NotPanics(t, func() {
		NewRouter(engine).Register(Groups(h, Guards{Auth: pass, Login: pass})...).Setup()
	})

	registered := map[string]bool{}
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}
	for _, want := range []string{
		"POST /api/v1/invoice/create/customer/:customerId",
		"PATCH /api/v1/invoice/update/:invoiceId",
		"PATCH /api/v1/invoice/update/cheque/payment-history/:paymentId",
		"POST /api/v1/invoice/returns",
		"GET /api/v1/invoice/get/all",
		"GET /api/v1/invoice/get/one",
		"GET /api/v1/invoice/get/payment-history",
		"GET /api/v1/invoice/get/meta-data",
		"GET /api/v1/dashboard",
		"POST /api/v1/auth/login",
		"GET /api/v1/health",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}
