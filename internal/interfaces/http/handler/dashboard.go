package handler

import (
	"net/http"

	reportapp "github.com/erp/invoicing/internal/application/report"
	"github.com/gin-gonic/gin"
)

// DashboardHandler exposes the sales dashboard
type DashboardHandler struct {
	BaseHandler
	dashboardService *reportapp.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *reportapp.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Get godoc
// @Summary  Sales statistics for a date range (30d, 60d, 90d, 1y, yyyy, yyyy-mm or from/to)
// @Tags     dashboard
// @Router   /dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	var q reportapp.DashboardQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	dashboard, err := h.dashboardService.Dashboard(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Dashboard data retrieved successfully", dashboard)
}

// Export godoc
// @Summary  Download the dashboard as a spreadsheet
// @Tags     dashboard
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router   /dashboard/export [get]
func (h *DashboardHandler) Export(c *gin.Context) {
	var q reportapp.DashboardQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	export, err := h.dashboardService.Export(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if export.ArchiveKey != "" {
		c.Header("X-Archive-Key", export.ArchiveKey)
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	c.Data(http.StatusOK, export.ContentType, export.Body)
}
