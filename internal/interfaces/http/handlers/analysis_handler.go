package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/InfringeScope/internal/application/analysis"
	"github.com/turtacn/InfringeScope/internal/domain/company"
)

// CompanyAnalysisRequest is the body of POST /api/analysis/company.
type CompanyAnalysisRequest struct {
	PatentID    string `json:"patent_id"`
	CompanyName string `json:"company_name"`
}

// ProductAnalysisRequest is the body of POST /api/analysis/product.
type ProductAnalysisRequest struct {
	PatentID string          `json:"patent_id"`
	Product  company.Product `json:"product"`
}

// AnalysisHandler serves the infringement analysis endpoints.
type AnalysisHandler struct {
	svc analysis.Service
}

func NewAnalysisHandler(svc analysis.Service) *AnalysisHandler {
	return &AnalysisHandler{svc: svc}
}

// RegisterRoutes mounts the handler under rg.
func (h *AnalysisHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/company", h.AnalyzeCompany)
	rg.POST("/product", h.AnalyzeProduct)
}

// AnalyzeCompany handles POST /api/analysis/company.
func (h *AnalysisHandler) AnalyzeCompany(c *gin.Context) {
	var req CompanyAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.PatentID) == "" || strings.TrimSpace(req.CompanyName) == "" {
		writeBadRequest(c, "patent_id and company_name are required")
		return
	}
	result, err := h.svc.AnalyzeCompany(c.Request.Context(), req.PatentID, req.CompanyName)
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AnalyzeProduct handles POST /api/analysis/product.
func (h *AnalysisHandler) AnalyzeProduct(c *gin.Context) {
	var req ProductAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.PatentID) == "" || strings.TrimSpace(req.Product.Name) == "" {
		writeBadRequest(c, "patent_id and product.name are required")
		return
	}
	finding, err := h.svc.AnalyzeProduct(c.Request.Context(), req.PatentID, req.Product)
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, finding)
}

//Personal.AI order the ending
