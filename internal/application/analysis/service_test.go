package analysis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domain "github.com/turtacn/InfringeScope/internal/domain/analysis"
	"github.com/turtacn/InfringeScope/internal/domain/company"
	"github.com/turtacn/InfringeScope/internal/domain/event"
	"github.com/turtacn/InfringeScope/internal/domain/patent"
	"github.com/turtacn/InfringeScope/internal/infrastructure/corpus"
	"github.com/turtacn/InfringeScope/internal/testutil"
	"github.com/turtacn/InfringeScope/pkg/errors"
)

const threeFindings = `{"products": [
  {"product_name": "Low App", "infringement_score": 20, "infringement_likelihood": "Low",
   "relevant_claims": [], "explanation": "little overlap", "specific_features": []},
  {"product_name": "High App", "infringement_score": 85, "infringement_likelihood": "High",
   "relevant_claims": ["1"], "explanation": "matches claim 1", "specific_features": ["sync"]},
  {"product_name": "Mid App", "infringement_score": 55, "infringement_likelihood": "Moderate",
   "relevant_claims": ["2"], "explanation": "partial", "specific_features": ["lists"]}
]}`

const moderateFindings = `[
  {"product_name": "A", "infringement_score": 60, "infringement_likelihood": "Moderate",
   "relevant_claims": ["1"], "explanation": "x", "specific_features": []},
  {"product_name": "B", "infringement_score": 30, "infringement_likelihood": "Low",
   "relevant_claims": [], "explanation": "y", "specific_features": []}
]`

type recordingPublisher struct {
	mu     sync.Mutex
	events []*event.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e *event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func fixedOracle(body string) domain.OracleFunc {
	return func(context.Context, string, domain.OutputShape) (json.RawMessage, error) {
		return json.RawMessage(body), nil
	}
}

func newTestCorpus() *corpus.Store {
	return corpus.NewStaticStore(
		[]patent.Patent{testPatent()},
		[]company.Company{
			{Name: "Walmart Inc.", Products: []company.Product{
				{Name: "Low App", Description: "a"},
				{Name: "High App", Description: "b"},
				{Name: "Mid App", Description: "c"},
			}},
			{Name: "Empty Co"},
		},
	)
}

func newAnalysisService(t *testing.T, oracle domain.Oracle, opts ...Option) Service {
	t.Helper()
	b, err := NewPromptBuilder("llama3.2", testBudgets, 4096)
	require.NoError(t, err)
	return NewService(oracle, b, newTestCorpus(), opts...)
}

func TestAnalyzeCompany_RanksTopTwo(t *testing.T) {
	pub := &recordingPublisher{}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var shape domain.OutputShape
	oracle := domain.OracleFunc(func(_ context.Context, prompt string, s domain.OutputShape) (json.RawMessage, error) {
		shape = s
		assert.Contains(t, prompt, "1:\nName: Low App")
		assert.Contains(t, prompt, "3:\nName: Mid App")
		return json.RawMessage(threeFindings), nil
	})
	s := newAnalysisService(t, oracle, WithPublisher(pub), WithClock(func() time.Time { return now }))

	got, err := s.AnalyzeCompany(context.Background(), "US-12345-A1", "Walmart Inc.")
	require.NoError(t, err)
	assert.Equal(t, domain.FindingListShape.Name, shape.Name)

	require.Len(t, got.TopInfringingProducts, 2)
	assert.Equal(t, "High App", got.TopInfringingProducts[0].ProductName)
	assert.Equal(t, "Mid App", got.TopInfringingProducts[1].ProductName)
	assert.Equal(t, domain.RiskHigh, got.OverallRiskAssessment)
	assert.Equal(t, "US-12345-A1", got.PatentID)
	assert.Equal(t, "Walmart Inc.", got.CompanyName)
	assert.Equal(t, now, got.AnalysisDate)
	assert.Len(t, got.AnalysisID, 36)

	require.Len(t, pub.events, 1)
	assert.Equal(t, event.AnalysisCompleted, pub.events[0].Type)
	assert.Equal(t, got.AnalysisID, pub.events[0].Key)
}

func TestAnalyzeCompany_ModerateRiskFromBareArray(t *testing.T) {
	s := newAnalysisService(t, fixedOracle(moderateFindings))
	got, err := s.AnalyzeCompany(context.Background(), "US-12345-A1", "Walmart Inc.")
	require.NoError(t, err)
	assert.Equal(t, domain.RiskModerate, got.OverallRiskAssessment)
	assert.Len(t, got.TopInfringingProducts, 2)
}

func TestAnalyzeCompany_NoProductsSkipsOracle(t *testing.T) {
	called := false
	oracle := domain.OracleFunc(func(context.Context, string, domain.OutputShape) (json.RawMessage, error) {
		called = true
		return nil, nil
	})
	got, err := newAnalysisService(t, oracle).AnalyzeCompany(context.Background(), "US-12345-A1", "Empty Co")
	require.NoError(t, err)
	assert.False(t, called)
	assert.Empty(t, got.TopInfringingProducts)
	assert.Equal(t, domain.RiskModerate, got.OverallRiskAssessment)
}

func TestAnalyzeCompany_NotFound(t *testing.T) {
	s := newAnalysisService(t, fixedOracle(threeFindings))

	_, err := s.AnalyzeCompany(context.Background(), "US-0", "Walmart Inc.")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodePatentNotFound))
	assert.Equal(t, "Patent with ID US-0 not found", errors.Message(err))

	_, err = s.AnalyzeCompany(context.Background(), "US-12345-A1", "Nobody")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeCompanyNotFound))
	assert.Equal(t, "Company Nobody not found", errors.Message(err))
}

func TestAnalyzeCompany_PublishFailureIsNotFatal(t *testing.T) {
	log := testutil.NewMockLogger()
	pub := &recordingPublisher{err: stderrors.New("broker down")}
	s := newAnalysisService(t, fixedOracle(threeFindings), WithPublisher(pub), WithLogger(log))

	_, err := s.AnalyzeCompany(context.Background(), "US-12345-A1", "Walmart Inc.")
	require.NoError(t, err)
	assert.True(t, log.HasMessage("warn", "failed to publish analysis event"))
}

func TestAnalyzeProduct(t *testing.T) {
	body := `{"product_name": "Walmart Shopping App", "infringement_score": 80,
	  "infringement_likelihood": "High", "relevant_claims": ["1"],
	  "explanation": "e", "specific_features": ["f"]}`
	s := newAnalysisService(t, fixedOracle(body))

	got, err := s.AnalyzeProduct(context.Background(), "US-12345-A1", company.Product{Name: "Walmart Shopping App"})
	require.NoError(t, err)
	assert.Equal(t, "Walmart Shopping App", got.ProductName)
	assert.Equal(t, 80.0, got.InfringementScore)
	assert.Equal(t, domain.LikelihoodHigh, got.InfringementLikelihood)

	_, err = s.AnalyzeProduct(context.Background(), "missing", company.Product{Name: "x"})
	assert.True(t, errors.IsCode(err, errors.CodePatentNotFound))
}

func TestAnalyzeProduct_UsesSingleFindingShape(t *testing.T) {
	oracle := &testutil.MockOracle{}
	oracle.On("Score", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "Walmart Shopping App")
	}), domain.SingleFindingShape).Return(`{"product_name": "Walmart Shopping App",
	  "infringement_score": 40, "infringement_likelihood": "Moderate", "relevant_claims": [],
	  "explanation": "e", "specific_features": []}`, nil).Once()

	got, err := newAnalysisService(t, oracle).AnalyzeProduct(context.Background(), "US-12345-A1",
		company.Product{Name: "Walmart Shopping App", Description: "lists"})
	require.NoError(t, err)
	assert.Equal(t, domain.LikelihoodModerate, got.InfringementLikelihood)
	oracle.AssertExpectations(t)
}

func TestAnalyzeCompany_UsesFindingListShape(t *testing.T) {
	oracle := &testutil.MockOracle{}
	oracle.On("Score", mock.Anything, mock.AnythingOfType("string"), domain.FindingListShape).
		Return(moderateFindings, nil).Once()

	_, err := newAnalysisService(t, oracle).AnalyzeCompany(context.Background(), "US-12345-A1", "Walmart Inc.")
	require.NoError(t, err)
	oracle.AssertExpectations(t)
	oracle.AssertNumberOfCalls(t, "Score", 1)
}

func TestAnalyze_OracleTimeout(t *testing.T) {
	oracle := domain.OracleFunc(func(ctx context.Context, _ string, _ domain.OutputShape) (json.RawMessage, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	s := newAnalysisService(t, oracle, WithTimeout(10*time.Millisecond))

	_, err := s.AnalyzeSingleProduct(context.Background(), testPatent(), company.Product{Name: "x"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeOracleUnavailable))
	assert.Contains(t, errors.Message(err), "API request failed")
}

func TestAnalyze_UpstreamErrorPassesThrough(t *testing.T) {
	oracle := domain.OracleFunc(func(context.Context, string, domain.OutputShape) (json.RawMessage, error) {
		return nil, errors.New(errors.CodeOracleUnavailable, "API request failed: connection refused")
	})
	_, err := newAnalysisService(t, oracle).AnalyzeSingleProduct(context.Background(), testPatent(), company.Product{Name: "x"})
	assert.Equal(t, "API request failed: connection refused", errors.Message(err))
}

func TestAnalyze_BadResponse(t *testing.T) {
	for name, body := range map[string]string{
		"not json":       `{"oops`,
		"missing fields": `{"product_name": "x"}`,
		"no products":    `{"items": []}`,
	} {
		t.Run(name, func(t *testing.T) {
			s := newAnalysisService(t, fixedOracle(body))
			_, err := s.AnalyzeMultipleProducts(context.Background(), testPatent(), []company.Product{{Name: "x"}})
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.CodeOracleBadResponse))
			assert.Contains(t, errors.Message(err), "Failed to parse API response")
		})
	}
}

func TestAnalyze_UnexpectedError(t *testing.T) {
	oracle := domain.OracleFunc(func(context.Context, string, domain.OutputShape) (json.RawMessage, error) {
		return nil, stderrors.New("boom")
	})
	_, err := newAnalysisService(t, oracle).AnalyzeSingleProduct(context.Background(), testPatent(), company.Product{Name: "x"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInternal))
	assert.Equal(t, "Unexpected error: boom", errors.Message(err))
}

func TestAnalyze_BandMismatchIsLoggedNotCorrected(t *testing.T) {
	body := `{"product_name": "x", "infringement_score": 90, "infringement_likelihood": "Low",
	  "relevant_claims": [], "explanation": "", "specific_features": []}`
	log := testutil.NewMockLogger()
	s := newAnalysisService(t, fixedOracle(body), WithLogger(log))

	got, err := s.AnalyzeSingleProduct(context.Background(), testPatent(), company.Product{Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, domain.LikelihoodLow, got.InfringementLikelihood)
	assert.True(t, log.HasMessage("warn", "finding likelihood disagrees with its score"))
}

func TestAnalyze_TruncationWarning(t *testing.T) {
	log := testutil.NewMockLogger()
	b, err := NewPromptBuilder("phi", testBudgets, 4096)
	require.NoError(t, err)

	var seen string
	oracle := domain.OracleFunc(func(_ context.Context, prompt string, _ domain.OutputShape) (json.RawMessage, error) {
		seen = prompt
		return json.RawMessage(moderateFindings), nil
	})
	s := NewService(oracle, b, newTestCorpus(), WithLogger(log))

	products := make([]company.Product, 40)
	for i := range products {
		products[i] = company.Product{Name: "Product", Description: "A very long product description that repeats."}
	}
	_, err = s.AnalyzeMultipleProducts(context.Background(), testPatent(), products)
	require.NoError(t, err)
	assert.Len(t, []rune(seen), 2048)
	assert.True(t, log.HasMessageContaining("warn", "truncating prompt"))
}

func TestAnalyze_ClaimsPlaceholderWarning(t *testing.T) {
	log := testutil.NewMockLogger()
	s := newAnalysisService(t, fixedOracle(moderateFindings), WithLogger(log))

	pt := testPatent()
	pt.Claims = patent.ClaimSet{Raw: "[{broken"}
	_, err := s.AnalyzeMultipleProducts(context.Background(), pt, []company.Product{{Name: "A"}})
	require.NoError(t, err)
	assert.True(t, log.HasMessage("warn", "claims could not be formatted, using placeholder"))
}

//Personal.AI order the ending
