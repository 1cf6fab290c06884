package client

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_PatentByID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/search/patent/US 123", r.URL.Path)
		assert.Equal(t, "95", r.URL.Query().Get("threshold"))
		sugg := "US-123-A1"
		writeJSON(w, http.StatusOK, SearchResponse{
			Query:      "US 123",
			Matches:    []SearchMatch{{Confidence: 90, Data: json.RawMessage(`{"publication_number":"US-123-A1","title":"T","abstract":"A","claims":[]}`)}},
			Suggestion: &sugg,
		})
	})

	resp, err := c.Search().PatentByID(context.Background(), "US 123", WithThreshold(95))
	require.NoError(t, err)
	require.Len(t, resp.Matches, 1)
	p, err := resp.Matches[0].Patent()
	require.NoError(t, err)
	assert.Equal(t, "US-123-A1", p.PublicationNumber)
	assert.Equal(t, "US-123-A1", *resp.Suggestion)
}

func TestSearch_CompanyAndSuggestions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/search/company/apple":
			writeJSON(w, http.StatusOK, map[string]any{
				"query": "apple", "suggestion": nil,
				"matches": []any{map[string]any{"confidence": 95, "is_exact": false,
					"data": map[string]any{"name": "Apple Inc.", "products": []any{}}}},
			})
		case "/api/search/company/suggest/apple":
			assert.Equal(t, "3", r.URL.Query().Get("limit"))
			writeJSON(w, http.StatusOK, []CompanySuggestion{{Name: "Apple Inc.", Confidence: 95}})
		case "/api/search/patent/suggest/list":
			writeJSON(w, http.StatusOK, []PatentSuggestion{{ID: "US-1", Title: "List", Confidence: 80}})
		case "/api/search/patent/title/list":
			abstract := "x"
			writeJSON(w, http.StatusOK, []PatentSuggestion{{ID: "US-1", Title: "List", Confidence: 80, Abstract: &abstract}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	ctx := context.Background()

	resp, err := c.Search().Company(ctx, "apple")
	require.NoError(t, err)
	co, err := resp.Matches[0].Company()
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", co.Name)
	assert.Nil(t, resp.Suggestion)

	cs, err := c.Search().SuggestCompanies(ctx, "apple", WithLimit(3))
	require.NoError(t, err)
	assert.Equal(t, []CompanySuggestion{{Name: "Apple Inc.", Confidence: 95}}, cs)

	ps, err := c.Search().SuggestPatents(ctx, "list")
	require.NoError(t, err)
	assert.Nil(t, ps[0].Abstract)

	ps, err = c.Search().PatentsByTitle(ctx, "list")
	require.NoError(t, err)
	require.NotNil(t, ps[0].Abstract)
	assert.Equal(t, "x", *ps[0].Abstract)
}

func TestAnalysis_CompanyAndProduct(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "US-1", body["patent_id"])
		switch r.URL.Path {
		case "/api/analysis/company":
			assert.Equal(t, "Walmart Inc.", body["company_name"])
			writeJSON(w, http.StatusOK, CompanyAnalysis{
				AnalysisID: "a-1", PatentID: "US-1", CompanyName: "Walmart Inc.",
				OverallRiskAssessment: "High risk",
				TopInfringingProducts: []Finding{{ProductName: "App", InfringementScore: 80, InfringementLikelihood: "High"}},
			})
		case "/api/analysis/product":
			product := body["product"].(map[string]any)
			assert.Equal(t, "App", product["name"])
			writeJSON(w, http.StatusOK, Finding{ProductName: "App", InfringementScore: 55, InfringementLikelihood: "Moderate"})
		}
	})
	ctx := context.Background()

	a, err := c.Analysis().Company(ctx, "US-1", "Walmart Inc.")
	require.NoError(t, err)
	assert.Equal(t, "High risk", a.OverallRiskAssessment)
	require.Len(t, a.TopInfringingProducts, 1)

	f, err := c.Analysis().Product(ctx, "US-1", Product{Name: "App", Description: "d"})
	require.NoError(t, err)
	assert.Equal(t, 55.0, f.InfringementScore)
}

func TestReports_Endpoints(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	stored := SavedReport{ID: "r-1", CreatedAt: created, PatentID: "US-1", PatentTitle: "T"}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/reports/":
			var req SaveReportRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "a-1", req.ID)
			require.NotNil(t, req.CreatedAt)
			assert.True(t, created.Equal(*req.CreatedAt))
			writeJSON(w, http.StatusOK, stored)
		case r.URL.Path == "/api/reports/":
			assert.Equal(t, "2", r.URL.Query().Get("skip"))
			assert.Equal(t, "", r.URL.Query().Get("limit"))
			writeJSON(w, http.StatusOK, []SavedReport{stored})
		case r.URL.Path == "/api/reports/r-1":
			writeJSON(w, http.StatusOK, stored)
		case r.URL.Path == "/api/reports/r-1/html":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte("<html>ok</html>"))
		default:
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Report not found"})
		}
	})
	ctx := context.Background()

	saved, err := c.Reports().Save(ctx, FromAnalysis(&CompanyAnalysis{AnalysisID: "a-1", PatentID: "US-1", AnalysisDate: created}))
	require.NoError(t, err)
	assert.Equal(t, "r-1", saved.ID)

	list, err := c.Reports().List(ctx, 2, -1)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	got, err := c.Reports().Get(ctx, "r-1")
	require.NoError(t, err)
	assert.True(t, created.Equal(got.CreatedAt))

	page, err := c.Reports().HTML(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", string(page))

	_, err = c.Reports().Get(ctx, "missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
}

//Personal.AI order the ending
