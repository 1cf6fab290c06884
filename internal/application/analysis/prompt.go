package analysis

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/turtacn/InfringeScope/internal/domain/company"
	"github.com/turtacn/InfringeScope/internal/domain/patent"
)

const scoringGuide = `Scoring criteria:
- High (75-100): Product clearly implements ALL elements of at least one claim
- Moderate (40-74): Product matches SOME key elements but lacks others
- Low (0-39): Product has minimal or no overlap with patent claims`

const findingFormat = `{
    "product_name": "MUST use the exact product name from the input {{.NameSource}}",
    "infringement_score": number (0-100),
    "infringement_likelihood": "High"/"Moderate"/"Low",
    "relevant_claims": ["claim numbers"],
    "explanation": "Detailed technical explanation of matching/non-matching elements",
    "specific_features": ["List specific features that match or differ"]
}`

const singleProductTemplate = `You are a strict patent analysis expert. Analyze the product's potential patent infringement carefully and critically.

{{template "patent" .}}

Product to Analyze:
Name: {{.Product.Name}}
Description: {{.Product.Description}}

Patent Claims:
{{.Claims}}

ANALYSIS GUIDELINES:
1. Compare the product against ALL patent claims
2. Look for EXACT matches to claim elements
3. Consider the technical implementation details
4. Be conservative in infringement assessment
5. Require strong evidence for "High" likelihood

` + scoringGuide + `

RESPONSE FORMAT:
Return a JSON object with these EXACT fields:
{{template "finding" .}}

CRITICAL REQUIREMENTS:
- Be skeptical and thorough in analysis
- Default to lower scores unless clear evidence exists
- Provide specific technical reasons for your assessment
- Consider both matching and non-matching features
- Return valid JSON object only, no additional text
`

const multipleProductsTemplate = `You are a strict patent analysis expert. Analyze each product's potential patent infringement carefully and critically.

{{template "patent" .}}

Products to Analyze:
{{range $i, $p := .Products}}{{if $i}}

{{end}}{{inc $i}}:
Name: {{$p.Name}}
Description: {{$p.Description}}{{end}}

Patent Claims:
{{.Claims}}

ANALYSIS GUIDELINES:
1. Compare each product against ALL patent claims
2. Look for EXACT matches to claim elements
3. Consider the technical implementation details
4. Be conservative in infringement assessment
5. Require strong evidence for "High" likelihood

` + scoringGuide + `

IMPORTANT: Return ONLY the TWO products with the highest infringement scores.

RESPONSE FORMAT:
Return a JSON object with a "products" array holding EXACTLY TWO objects (highest scoring products) where each object has:
{{template "finding" .}}

CRITICAL REQUIREMENTS:
- Use EXACT product names from the input list (e.g. "Walmart Shopping App", not "Product A")
- Analyze ALL products but return only the top 2 by infringement score
- Be skeptical and thorough in analysis
- Default to lower scores unless clear evidence exists
- Provide specific technical reasons for your assessment
- Consider both matching and non-matching features
- Return valid JSON with exactly 2 items
- Sort results by infringement score (highest first)
`

const patentSection = `Patent Information:
Patent Number: {{.Patent.PublicationNumber}}
Patent Title: {{.Patent.Title}}
Abstract: {{.Patent.Abstract}}`

// Prompt is a rendered prompt ready for the oracle.
type Prompt struct {
	Text string
	// Length is the rune count before truncation.
	Length    int
	Truncated bool
	// ClaimsErr is set when the claims could not be decoded and the
	// placeholder was embedded instead.
	ClaimsErr error
}

type promptData struct {
	Patent     patent.Patent
	Product    company.Product
	Products   []company.Product
	Claims     string
	NameSource string
}

// PromptBuilder renders analysis prompts and cuts them to the model's
// character budget.
type PromptBuilder struct {
	model    string
	budget   int
	single   *template.Template
	multiple *template.Template
}

// NewPromptBuilder builds prompts for model. budgets maps model names to
// character budgets; models not listed get defaultBudget.
func NewPromptBuilder(model string, budgets map[string]int, defaultBudget int) (*PromptBuilder, error) {
	budget, ok := budgets[model]
	if !ok || budget <= 0 {
		budget = defaultBudget
	}
	if budget <= 0 {
		return nil, fmt.Errorf("prompt budget for model %q must be positive", model)
	}

	funcs := template.FuncMap{"inc": func(i int) int { return i + 1 }}
	parse := func(name, body string) (*template.Template, error) {
		t, err := template.New(name).Funcs(funcs).Parse(body)
		if err != nil {
			return nil, fmt.Errorf("parsing template %q: %w", name, err)
		}
		if _, err := t.New("patent").Parse(patentSection); err != nil {
			return nil, fmt.Errorf("parsing template %q: %w", "patent", err)
		}
		if _, err := t.New("finding").Parse(findingFormat); err != nil {
			return nil, fmt.Errorf("parsing template %q: %w", "finding", err)
		}
		return t, nil
	}

	single, err := parse("single", singleProductTemplate)
	if err != nil {
		return nil, err
	}
	multiple, err := parse("multiple", multipleProductsTemplate)
	if err != nil {
		return nil, err
	}
	return &PromptBuilder{model: model, budget: budget, single: single, multiple: multiple}, nil
}

// Model returns the model the budget was chosen for.
func (b *PromptBuilder) Model() string { return b.model }

// Budget returns the character budget in effect.
func (b *PromptBuilder) Budget() int { return b.budget }

// Single renders the one-product prompt.
func (b *PromptBuilder) Single(p patent.Patent, product company.Product) (Prompt, error) {
	claims, claimsErr := p.Claims.Format()
	return b.render(b.single, promptData{
		Patent:     p,
		Product:    product,
		Claims:     claims,
		NameSource: "above",
	}, claimsErr)
}

// Multiple renders the many-products prompt. Products are numbered from 1.
func (b *PromptBuilder) Multiple(p patent.Patent, products []company.Product) (Prompt, error) {
	claims, claimsErr := p.Claims.Format()
	return b.render(b.multiple, promptData{
		Patent:     p,
		Products:   products,
		Claims:     claims,
		NameSource: "list above",
	}, claimsErr)
}

func (b *PromptBuilder) render(t *template.Template, data promptData, claimsErr error) (Prompt, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return Prompt{}, fmt.Errorf("rendering prompt: %w", err)
	}
	text, n, cut := Truncate(buf.String(), b.budget)
	return Prompt{Text: text, Length: n, Truncated: cut, ClaimsErr: claimsErr}, nil
}

// Truncate keeps the first limit runes of s. It returns the result, the
// original rune count and whether anything was cut.
func Truncate(s string, limit int) (string, int, bool) {
	runes := []rune(s)
	if len(runes) <= limit {
		return s, len(runes), false
	}
	return string(runes[:limit]), len(runes), true
}

//Personal.AI order the ending
