package analysis

import (
	"context"
	"encoding/json"
)

// OutputShape names and describes the JSON document the oracle must return.
// Schema is a JSON Schema the backend may use to constrain generation.
type OutputShape struct {
	Name   string
	Schema json.RawMessage
}

// Oracle scores a prompt and returns the JSON document it produced. It never
// computes scores itself; implementations call an external language model.
//
// Implementations report transport failures and timeouts as
// ORC_001, and output that is not a JSON document as ORC_002.
type Oracle interface {
	Score(ctx context.Context, prompt string, shape OutputShape) (json.RawMessage, error)
}

// OracleFunc adapts a function to Oracle.
type OracleFunc func(ctx context.Context, prompt string, shape OutputShape) (json.RawMessage, error)

func (f OracleFunc) Score(ctx context.Context, prompt string, shape OutputShape) (json.RawMessage, error) {
	return f(ctx, prompt, shape)
}

const findingSchema = `{
  "title": "InfringementAnalysis",
  "type": "object",
  "properties": {
    "product_name": {"title": "Product Name", "type": "string"},
    "infringement_score": {"title": "Infringement Score", "type": "number"},
    "infringement_likelihood": {"title": "Infringement Likelihood", "type": "string", "enum": ["High", "Moderate", "Low"]},
    "relevant_claims": {"title": "Relevant Claims", "type": "array", "items": {"type": "string"}},
    "explanation": {"title": "Explanation", "type": "string"},
    "specific_features": {"title": "Specific Features", "type": "array", "items": {"type": "string"}}
  },
  "required": ["product_name", "infringement_score", "infringement_likelihood", "relevant_claims", "explanation", "specific_features"]
}`

// SingleFindingShape is one Finding object.
var SingleFindingShape = OutputShape{
	Name:   "InfringementAnalysis",
	Schema: json.RawMessage(findingSchema),
}

// FindingListShape is {"products": [Finding, ...]}.
var FindingListShape = OutputShape{
	Name: "InfringementResults",
	Schema: json.RawMessage(`{
  "title": "InfringementResults",
  "type": "object",
  "$defs": {"InfringementAnalysis": ` + findingSchema + `},
  "properties": {
    "products": {"title": "Products", "type": "array", "items": {"$ref": "#/$defs/InfringementAnalysis"}}
  },
  "required": ["products"]
}`),
}

// Validate reports ORC_002 when raw does not decode as this shape. Unknown
// shapes accept any document.
func (s OutputShape) Validate(raw json.RawMessage) error {
	var err error
	switch s.Name {
	case SingleFindingShape.Name:
		_, err = DecodeFinding(raw)
	case FindingListShape.Name:
		_, err = DecodeFindings(raw)
	}
	return err
}

//Personal.AI order the ending
