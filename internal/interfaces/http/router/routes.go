package router

import (
	"github.com/erp/invoicing/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers are the endpoint groups of the API
type Handlers struct {
	Auth      *handler.AuthHandler
	Invoice   *handler.InvoiceHandler
	Dashboard *handler.DashboardHandler
	Quotation *handler.QuotationHandler
	Customer  *handler.CustomerHandler
	Catalog   *handler.CatalogHandler
	Stock     *handler.StockHandler
	System    *handler.SystemHandler
}

// Guards are the middleware placed in front of route groups
type Guards struct {
	// Auth protects every group except login and health
	Auth gin.HandlerFunc
	// Login throttles credential attempts
	Login gin.HandlerFunc
}

// Groups builds the domain route groups
func Groups(h Handlers, g Guards) []RouteRegistrar {
	authGroup := NewDomainGroup("auth", "/auth").
		POST("/login", g.Login, h.Auth.Login)
	logoutGroup := NewDomainGroup("auth", "/auth").Use(g.Auth).
		POST("/logout", h.Auth.Logout)

	invoices := NewDomainGroup("invoice", "/invoice").Use(g.Auth).
		POST("/create/customer/:customerId", h.Invoice.Create).
		PATCH("/update/cheque/payment-history/:paymentId", h.Invoice.UpdateChequeStatus).
		PATCH("/update/:invoiceId", h.Invoice.AppendPayment).
		POST("/returns", h.Invoice.ProcessReturn).
		GET("/get/all", h.Invoice.List).
		GET("/get/one", h.Invoice.GetOne).
		GET("/get/payment-history", h.Invoice.PaymentHistory).
		GET("/get/meta-data", h.Invoice.Metadata).
		GET("/print", h.Invoice.Print)

	dashboard := NewDomainGroup("dashboard", "/dashboard").Use(g.Auth).
		GET("", h.Dashboard.Get).
		GET("/export", h.Dashboard.Export)

	quotations := NewDomainGroup("quotation", "/quotation").Use(g.Auth).
		POST("/create/customer/:customerId", h.Quotation.Create).
		GET("/get/all", h.Quotation.List).
		GET("/get/one", h.Quotation.GetOne).
		PATCH("/update/:quotationId", h.Quotation.UpdateTotal).
		DELETE("/delete/:quotationId", h.Quotation.Delete)

	customers := NewDomainGroup("customer", "/customer").Use(g.Auth).
		POST("", h.Customer.Create).
		GET("", h.Customer.List).
		GET("/:id", h.Customer.GetByID).
		PUT("/:id", h.Customer.Update).
		DELETE("/:id", h.Customer.Delete)

	categories := NewDomainGroup("category", "/category").Use(g.Auth).
		POST("", h.Catalog.CreateCategory).
		GET("", h.Catalog.ListCategories).
		GET("/:id", h.Catalog.GetCategory)

	products := NewDomainGroup("product", "/product").Use(g.Auth).
		POST("", h.Catalog.CreateProduct).
		GET("", h.Catalog.ListProducts).
		GET("/:id", h.Catalog.GetProduct)

	stock := NewDomainGroup("stock", "/stock").Use(g.Auth).
		POST("", h.Stock.Create).
		GET("", h.Stock.List).
		GET("/:id", h.Stock.GetByID).
		PATCH("/:id", h.Stock.Update)

	health := NewDomainGroup("system", "/health").
		GET("", h.System.Health)

	return []RouteRegistrar{
		authGroup, logoutGroup, invoices, dashboard, quotations,
		customers, categories, products, stock, health,
	}
}
