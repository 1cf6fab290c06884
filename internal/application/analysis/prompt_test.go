package analysis

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/InfringeScope/internal/domain/company"
	"github.com/turtacn/InfringeScope/internal/domain/patent"
)

var testBudgets = map[string]int{"llama3.2": 8192, "phi": 2048}

func testPatent() patent.Patent {
	return patent.Patent{
		PublicationNumber: "US-12345-A1",
		Title:             "Shopping list synchronisation",
		Abstract:          "Lists shared across devices.",
		Claims: patent.NewClaimSet(
			patent.Claim{Num: "1", Text: "A method of syncing lists."},
			patent.Claim{Num: "2", Text: "The method of claim 1, using a server."},
		),
	}
}

func TestNewPromptBuilder_Budgets(t *testing.T) {
	b, err := NewPromptBuilder("phi", testBudgets, 4096)
	require.NoError(t, err)
	assert.Equal(t, 2048, b.Budget())
	assert.Equal(t, "phi", b.Model())

	b, err = NewPromptBuilder("mistral", testBudgets, 4096)
	require.NoError(t, err)
	assert.Equal(t, 4096, b.Budget())

	_, err = NewPromptBuilder("mistral", nil, 0)
	assert.Error(t, err)
}

func TestPromptBuilder_Single(t *testing.T) {
	b, err := NewPromptBuilder("llama3.2", testBudgets, 4096)
	require.NoError(t, err)

	p, err := b.Single(testPatent(), company.Product{Name: "Walmart Shopping App", Description: "Shared lists."})
	require.NoError(t, err)
	assert.False(t, p.Truncated)
	assert.NoError(t, p.ClaimsErr)

	assert.Contains(t, p.Text, "Patent Number: US-12345-A1")
	assert.Contains(t, p.Text, "Patent Title: Shopping list synchronisation")
	assert.Contains(t, p.Text, "Name: Walmart Shopping App\nDescription: Shared lists.")
	assert.Contains(t, p.Text, "Claim 1: A method of syncing lists.\n\nClaim 2: The method of claim 1, using a server.")
	assert.Contains(t, p.Text, "High (75-100)")
	assert.Contains(t, p.Text, "exact product name from the input above")
	assert.Equal(t, utf8.RuneCountInString(p.Text), p.Length)
}

func TestPromptBuilder_MultipleNumbersProducts(t *testing.T) {
	b, err := NewPromptBuilder("llama3.2", testBudgets, 4096)
	require.NoError(t, err)

	p, err := b.Multiple(testPatent(), []company.Product{
		{Name: "A", Description: "first"},
		{Name: "B", Description: "second"},
	})
	require.NoError(t, err)
	assert.Contains(t, p.Text, "Products to Analyze:\n1:\nName: A\nDescription: first\n\n2:\nName: B\nDescription: second\n")
	assert.Contains(t, p.Text, "ONLY the TWO products")
	assert.Contains(t, p.Text, "exact product name from the input list above")
}

func TestPromptBuilder_ClaimsPlaceholder(t *testing.T) {
	b, err := NewPromptBuilder("llama3.2", testBudgets, 4096)
	require.NoError(t, err)

	pt := testPatent()
	pt.Claims = patent.ClaimSet{Raw: "[{broken"}
	p, err := b.Single(pt, company.Product{Name: "X"})
	require.NoError(t, err)
	assert.Error(t, p.ClaimsErr)
	assert.Contains(t, p.Text, patent.ClaimsPlaceholder)
}

func TestPromptBuilder_TruncatesToBudget(t *testing.T) {
	b, err := NewPromptBuilder("phi", testBudgets, 4096)
	require.NoError(t, err)

	pt := testPatent()
	pt.Abstract = strings.Repeat("ü", 3000)
	p, err := b.Single(pt, company.Product{Name: "X"})
	require.NoError(t, err)
	assert.True(t, p.Truncated)
	assert.Greater(t, p.Length, 2048)
	assert.Equal(t, 2048, utf8.RuneCountInString(p.Text))
}

func TestTruncate(t *testing.T) {
	s, n, cut := Truncate("héllo", 10)
	assert.Equal(t, "héllo", s)
	assert.Equal(t, 5, n)
	assert.False(t, cut)

	s, n, cut = Truncate("héllo", 2)
	assert.Equal(t, "hé", s)
	assert.Equal(t, 5, n)
	assert.True(t, cut)
}

//Personal.AI order the ending
