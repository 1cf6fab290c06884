package client

import (
	"context"
	"time"
)

// Finding is the verdict for one product against one patent.
type Finding struct {
	ProductName            string   `json:"product_name"`
	InfringementScore      float64  `json:"infringement_score"`
	InfringementLikelihood string   `json:"infringement_likelihood"`
	RelevantClaims         []string `json:"relevant_claims"`
	Explanation            string   `json:"explanation"`
	SpecificFeatures       []string `json:"specific_features"`
}

// CompanyAnalysis is the result of analysing a company's products.
type CompanyAnalysis struct {
	AnalysisID            string    `json:"analysis_id"`
	PatentID              string    `json:"patent_id"`
	CompanyName           string    `json:"company_name"`
	AnalysisDate          time.Time `json:"analysis_date"`
	TopInfringingProducts []Finding `json:"top_infringing_products"`
	OverallRiskAssessment string    `json:"overall_risk_assessment"`
}

// AnalysisClient calls /api/analysis. Calls block until the scoring service
// answers, so callers should bound ctx.
type AnalysisClient struct {
	client *Client
}

// Company calls POST /api/analysis/company.
func (a *AnalysisClient) Company(ctx context.Context, patentID, companyName string) (*CompanyAnalysis, error) {
	body := map[string]string{"patent_id": patentID, "company_name": companyName}
	var out CompanyAnalysis
	if err := a.client.post(ctx, "/api/analysis/company", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Product calls POST /api/analysis/product.
func (a *AnalysisClient) Product(ctx context.Context, patentID string, product Product) (*Finding, error) {
	body := struct {
		PatentID string  `json:"patent_id"`
		Product  Product `json:"product"`
	}{patentID, product}
	var out Finding
	if err := a.client.post(ctx, "/api/analysis/product", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

//Personal.AI order the ending
