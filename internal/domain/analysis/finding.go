// Package analysis holds the value types produced by infringement analysis:
// per-product findings and the company-level summary built from them.
package analysis

import (
	"sort"
	"time"
)

// Likelihood is the qualitative infringement band reported by the oracle.
type Likelihood string

const (
	LikelihoodHigh     Likelihood = "High"
	LikelihoodModerate Likelihood = "Moderate"
	LikelihoodLow      Likelihood = "Low"
)

// Score band boundaries.
const (
	HighBandFloor     = 75
	ModerateBandFloor = 40
)

// IsValid reports whether l is one of the three known bands.
func (l Likelihood) IsValid() bool {
	switch l {
	case LikelihoodHigh, LikelihoodModerate, LikelihoodLow:
		return true
	}
	return false
}

// BandForScore returns the band a score falls in: High 75-100, Moderate 40-74,
// Low 0-39.
func BandForScore(score float64) Likelihood {
	switch {
	case score >= HighBandFloor:
		return LikelihoodHigh
	case score >= ModerateBandFloor:
		return LikelihoodModerate
	default:
		return LikelihoodLow
	}
}

// Risk assessment labels for a company analysis.
const (
	RiskHigh     = "High risk"
	RiskModerate = "Moderate risk"
)

// MaxTopFindings caps the findings returned for a multi-product analysis.
const MaxTopFindings = 2

// Finding is the oracle's verdict for one product against one patent.
type Finding struct {
	ProductName            string     `json:"product_name"`
	InfringementScore      float64    `json:"infringement_score"`
	InfringementLikelihood Likelihood `json:"infringement_likelihood"`
	RelevantClaims         []string   `json:"relevant_claims"`
	Explanation            string     `json:"explanation"`
	SpecificFeatures       []string   `json:"specific_features"`
}

// BandConsistent reports whether the likelihood matches the band of the score.
// Findings are passed through as the oracle produced them; callers only use
// this to flag disagreement.
func (f *Finding) BandConsistent() bool {
	return f.InfringementLikelihood == BandForScore(f.InfringementScore)
}

// Normalize replaces nil slices with empty ones so that findings always
// serialize with arrays.
func (f *Finding) Normalize() {
	if f.RelevantClaims == nil {
		f.RelevantClaims = []string{}
	}
	if f.SpecificFeatures == nil {
		f.SpecificFeatures = []string{}
	}
}

// RankTop sorts findings by score, highest first, keeping the original order
// among equal scores, and returns at most n of them. The input is not modified.
func RankTop(findings []Finding, n int) []Finding {
	out := make([]Finding, len(findings))
	copy(out, findings)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].InfringementScore > out[j].InfringementScore
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// OverallRisk is "High risk" when any finding is High and "Moderate risk"
// otherwise.
func OverallRisk(findings []Finding) string {
	for _, f := range findings {
		if f.InfringementLikelihood == LikelihoodHigh {
			return RiskHigh
		}
	}
	return RiskModerate
}

// CompanyAnalysis is the result of analysing every product of a company
// against a patent.
type CompanyAnalysis struct {
	AnalysisID            string    `json:"analysis_id"`
	PatentID              string    `json:"patent_id"`
	CompanyName           string    `json:"company_name"`
	AnalysisDate          time.Time `json:"analysis_date"`
	TopInfringingProducts []Finding `json:"top_infringing_products"`
	OverallRiskAssessment string    `json:"overall_risk_assessment"`
}

//Personal.AI order the ending
