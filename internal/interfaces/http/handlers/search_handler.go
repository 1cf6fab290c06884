package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/InfringeScope/internal/application/search"
)

// SearchMatch is one ranked search result.
type SearchMatch struct {
	Confidence int  `json:"confidence"`
	IsExact    bool `json:"is_exact"`
	Data       any  `json:"data"`
}

// SearchResponse wraps ranked matches with the best candidate.
type SearchResponse struct {
	Query      string        `json:"query"`
	Matches    []SearchMatch `json:"matches"`
	Suggestion *string       `json:"suggestion"`
}

// PatentSuggestion is a title-search hit.
type PatentSuggestion struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Confidence int     `json:"confidence"`
	Abstract   *string `json:"abstract,omitempty"`
}

// CompanySuggestion is a company-name hit.
type CompanySuggestion struct {
	Name       string `json:"name"`
	Confidence int    `json:"confidence"`
}

// SearchHandler serves the fuzzy search endpoints.
type SearchHandler struct {
	svc search.Service
}

func NewSearchHandler(svc search.Service) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// RegisterRoutes mounts the handler under rg.
func (h *SearchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/patent/:query", h.SearchPatent)
	rg.GET("/company/:query", h.SearchCompany)
	rg.GET("/patent/suggest/:query", h.SuggestPatents)
	rg.GET("/company/suggest/:query", h.SuggestCompanies)
	rg.GET("/patent/title/:query", h.SearchPatentByTitle)
}

// SearchPatent handles GET /api/search/patent/{query}.
func (h *SearchHandler) SearchPatent(c *gin.Context) {
	threshold, err := search.ParseThreshold(c.Query("threshold"), search.DefaultPatentIDThreshold)
	if err != nil {
		writeAppError(c, err)
		return
	}
	query := c.Param("query")
	matches := h.svc.FindPatentByID(c.Request.Context(), query, threshold)

	resp := SearchResponse{Query: query, Matches: make([]SearchMatch, 0, len(matches))}
	for _, m := range matches {
		resp.Matches = append(resp.Matches, SearchMatch{Confidence: m.Confidence, IsExact: m.IsExact, Data: m.Patent})
	}
	if len(matches) > 0 {
		s := matches[0].Patent.PublicationNumber
		resp.Suggestion = &s
	}
	c.JSON(http.StatusOK, resp)
}

// SearchCompany handles GET /api/search/company/{query}.
func (h *SearchHandler) SearchCompany(c *gin.Context) {
	threshold, err := search.ParseThreshold(c.Query("threshold"), search.DefaultCompanyThreshold)
	if err != nil {
		writeAppError(c, err)
		return
	}
	query := c.Param("query")
	matches := h.svc.FindCompanyByName(c.Request.Context(), query, threshold)

	resp := SearchResponse{Query: query, Matches: make([]SearchMatch, 0, len(matches))}
	for _, m := range matches {
		resp.Matches = append(resp.Matches, SearchMatch{Confidence: m.Confidence, IsExact: m.IsExact, Data: m.Company})
	}
	if len(matches) > 0 {
		s := matches[0].Company.Name
		resp.Suggestion = &s
	}
	c.JSON(http.StatusOK, resp)
}

// SuggestPatents handles GET /api/search/patent/suggest/{query}.
func (h *SearchHandler) SuggestPatents(c *gin.Context) {
	h.titleSearch(c, false)
}

// SearchPatentByTitle handles GET /api/search/patent/title/{query}. Unlike
// the suggestion endpoint it includes abstracts.
func (h *SearchHandler) SearchPatentByTitle(c *gin.Context) {
	h.titleSearch(c, true)
}

func (h *SearchHandler) titleSearch(c *gin.Context, withAbstract bool) {
	limit, threshold, ok := suggestionParams(c)
	if !ok {
		return
	}
	matches := search.Head(h.svc.FindPatentByTitle(c.Request.Context(), c.Param("query"), threshold), limit)
	out := make([]PatentSuggestion, 0, len(matches))
	for _, m := range matches {
		s := PatentSuggestion{ID: m.Patent.PublicationNumber, Title: m.Patent.Title, Confidence: m.Confidence}
		if withAbstract {
			abstract := m.Patent.Abstract
			s.Abstract = &abstract
		}
		out = append(out, s)
	}
	c.JSON(http.StatusOK, out)
}

// SuggestCompanies handles GET /api/search/company/suggest/{query}.
func (h *SearchHandler) SuggestCompanies(c *gin.Context) {
	limit, threshold, ok := suggestionParams(c)
	if !ok {
		return
	}
	matches := search.Head(h.svc.FindCompanyByName(c.Request.Context(), c.Param("query"), threshold), limit)
	out := make([]CompanySuggestion, 0, len(matches))
	for _, m := range matches {
		out = append(out, CompanySuggestion{Name: m.Company.Name, Confidence: m.Confidence})
	}
	c.JSON(http.StatusOK, out)
}

func suggestionParams(c *gin.Context) (limit, threshold int, ok bool) {
	limit, err := search.ParseLimit(c.Query("limit"))
	if err != nil {
		writeAppError(c, err)
		return 0, 0, false
	}
	threshold, err = search.ParseThreshold(c.Query("threshold"), search.DefaultTitleThreshold)
	if err != nil {
		writeAppError(c, err)
		return 0, 0, false
	}
	return limit, threshold, true
}

//Personal.AI order the ending
