package client

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// SavedReport is a stored analysis.
type SavedReport struct {
	ID                    string    `json:"id"`
	CreatedAt             time.Time `json:"created_at"`
	PatentID              string    `json:"patent_id"`
	PatentTitle           string    `json:"patent_title"`
	PatentAbstract        string    `json:"patent_abstract"`
	CompanyName           string    `json:"company_name"`
	TopInfringingProducts []Finding `json:"top_infringing_products"`
	OverallRiskAssessment string    `json:"overall_risk_assessment"`
}

// SaveReportRequest is the body of POST /api/reports/. ID and CreatedAt are
// optional; the server fills them when empty.
type SaveReportRequest struct {
	ID                    string     `json:"id,omitempty"`
	CreatedAt             *time.Time `json:"created_at,omitempty"`
	PatentID              string     `json:"patent_id"`
	CompanyName           string     `json:"company_name"`
	TopInfringingProducts []Finding  `json:"top_infringing_products"`
	OverallRiskAssessment string     `json:"overall_risk_assessment"`
}

// FromAnalysis builds a save request that keeps the analysis id and date.
func FromAnalysis(a *CompanyAnalysis) SaveReportRequest {
	created := a.AnalysisDate
	return SaveReportRequest{
		ID:                    a.AnalysisID,
		CreatedAt:             &created,
		PatentID:              a.PatentID,
		CompanyName:           a.CompanyName,
		TopInfringingProducts: a.TopInfringingProducts,
		OverallRiskAssessment: a.OverallRiskAssessment,
	}
}

// ReportsClient calls /api/reports.
type ReportsClient struct {
	client *Client
}

// Save calls POST /api/reports/.
func (r *ReportsClient) Save(ctx context.Context, req SaveReportRequest) (*SavedReport, error) {
	var out SavedReport
	if err := r.client.post(ctx, "/api/reports/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List calls GET /api/reports/?skip=&limit=. A negative limit uses the
// server default.
func (r *ReportsClient) List(ctx context.Context, skip, limit int) ([]SavedReport, error) {
	v := url.Values{}
	v.Set("skip", strconv.Itoa(skip))
	if limit >= 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	var out []SavedReport
	if err := r.client.get(ctx, "/api/reports/?"+v.Encode(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get calls GET /api/reports/{id}.
func (r *ReportsClient) Get(ctx context.Context, id string) (*SavedReport, error) {
	var out SavedReport
	if err := r.client.get(ctx, "/api/reports/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HTML calls GET /api/reports/{id}/html and returns the page.
func (r *ReportsClient) HTML(ctx context.Context, id string) ([]byte, error) {
	var page []byte
	if err := r.client.get(ctx, "/api/reports/"+url.PathEscape(id)+"/html", &page); err != nil {
		return nil, err
	}
	return page, nil
}

//Personal.AI order the ending
