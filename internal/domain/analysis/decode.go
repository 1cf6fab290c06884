package analysis

import (
	"bytes"
	"encoding/json"

	"github.com/turtacn/InfringeScope/pkg/errors"
)

// wireFinding mirrors Finding with pointers so absent fields can be told
// apart from zero values.
type wireFinding struct {
	ProductName            *string   `json:"product_name"`
	InfringementScore      *float64  `json:"infringement_score"`
	InfringementLikelihood *string   `json:"infringement_likelihood"`
	RelevantClaims         *[]string `json:"relevant_claims"`
	Explanation            *string   `json:"explanation"`
	SpecificFeatures       *[]string `json:"specific_features"`
}

func (w *wireFinding) toFinding() (Finding, error) {
	var missing []string
	if w.ProductName == nil {
		missing = append(missing, "product_name")
	}
	if w.InfringementScore == nil {
		missing = append(missing, "infringement_score")
	}
	if w.InfringementLikelihood == nil {
		missing = append(missing, "infringement_likelihood")
	}
	if w.RelevantClaims == nil {
		missing = append(missing, "relevant_claims")
	}
	if w.Explanation == nil {
		missing = append(missing, "explanation")
	}
	if w.SpecificFeatures == nil {
		missing = append(missing, "specific_features")
	}
	if len(missing) > 0 {
		return Finding{}, errors.Newf(errors.CodeOracleBadResponse, "finding is missing fields %v", missing)
	}

	l := Likelihood(*w.InfringementLikelihood)
	if !l.IsValid() {
		return Finding{}, errors.Newf(errors.CodeOracleBadResponse, "unknown infringement_likelihood %q", *w.InfringementLikelihood)
	}
	f := Finding{
		ProductName:            *w.ProductName,
		InfringementScore:      *w.InfringementScore,
		InfringementLikelihood: l,
		RelevantClaims:         *w.RelevantClaims,
		Explanation:            *w.Explanation,
		SpecificFeatures:       *w.SpecificFeatures,
	}
	f.Normalize()
	return f, nil
}

// DecodeFinding parses a single Finding object returned by the oracle.
func DecodeFinding(raw json.RawMessage) (Finding, error) {
	var w wireFinding
	if err := json.Unmarshal(raw, &w); err != nil {
		return Finding{}, errors.Wrap(err, errors.CodeOracleBadResponse, "failed to parse oracle response")
	}
	return w.toFinding()
}

// DecodeFindings parses {"products": [...]}. A bare array is also accepted.
func DecodeFindings(raw json.RawMessage) ([]Finding, error) {
	var items []wireFinding
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, errors.Wrap(err, errors.CodeOracleBadResponse, "failed to parse oracle response")
		}
	} else {
		var doc struct {
			Products *[]wireFinding `json:"products"`
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, errors.Wrap(err, errors.CodeOracleBadResponse, "failed to parse oracle response")
		}
		if doc.Products == nil {
			return nil, errors.New(errors.CodeOracleBadResponse, "oracle response has no products field")
		}
		items = *doc.Products
	}

	out := make([]Finding, 0, len(items))
	for i := range items {
		f, err := items[i].toFinding()
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

//Personal.AI order the ending
