package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/InfringeScope/internal/application/reporting"
	"github.com/turtacn/InfringeScope/internal/domain/report"
)

// ReportHandler serves saved reports.
type ReportHandler struct {
	svc reporting.Service
}

func NewReportHandler(svc reporting.Service) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// RegisterRoutes mounts the handler under rg. The collection is reachable
// with and without a trailing slash.
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Save)
	rg.POST("/", h.Save)
	rg.GET("", h.List)
	rg.GET("/", h.List)
	rg.GET("/:id", h.Get)
	rg.GET("/:id/html", h.HTML)
}

// Save handles POST /api/reports/.
func (h *ReportHandler) Save(c *gin.Context) {
	var req reporting.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	saved, err := h.svc.Save(c.Request.Context(), req)
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// List handles GET /api/reports/?skip=&limit=.
func (h *ReportHandler) List(c *gin.Context) {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		writeAppError(c, err)
		return
	}
	limit, err := queryInt(c, "limit", report.DefaultListLimit)
	if err != nil {
		writeAppError(c, err)
		return
	}
	reports, err := h.svc.List(c.Request.Context(), report.Page{Skip: skip, Limit: limit})
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// Get handles GET /api/reports/{id}.
func (h *ReportHandler) Get(c *gin.Context) {
	r, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// HTML handles GET /api/reports/{id}/html.
func (h *ReportHandler) HTML(c *gin.Context) {
	page, err := h.svc.RenderHTML(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

//Personal.AI order the ending
