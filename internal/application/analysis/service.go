// Package analysis orchestrates infringement analysis: it renders prompts
// from corpus records, delegates scoring to the oracle and ranks what comes
// back. It never computes scores itself.
package analysis

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	domain "github.com/turtacn/InfringeScope/internal/domain/analysis"
	"github.com/turtacn/InfringeScope/internal/domain/company"
	"github.com/turtacn/InfringeScope/internal/domain/event"
	"github.com/turtacn/InfringeScope/internal/domain/patent"
	"github.com/turtacn/InfringeScope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InfringeScope/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/InfringeScope/internal/infrastructure/monitoring/tracing"
	"github.com/turtacn/InfringeScope/pkg/errors"
)

// Service defines the analysis operations.
type Service interface {
	// AnalyzeSingleProduct scores one product against patent.
	AnalyzeSingleProduct(ctx context.Context, p patent.Patent, product company.Product) (*domain.Finding, error)
	// AnalyzeMultipleProducts scores products in one oracle call and returns
	// the top two, highest first.
	AnalyzeMultipleProducts(ctx context.Context, p patent.Patent, products []company.Product) ([]domain.Finding, error)
	// AnalyzeProduct resolves patentID and scores product against it.
	AnalyzeProduct(ctx context.Context, patentID string, product company.Product) (*domain.Finding, error)
	// AnalyzeCompany resolves patentID and companyName and scores every
	// product of the company.
	AnalyzeCompany(ctx context.Context, patentID, companyName string) (*domain.CompanyAnalysis, error)
}

// Corpus is the exact-lookup subset of the corpus store.
type Corpus interface {
	PatentByExactID(id string) (patent.Patent, bool)
	CompanyByExactName(name string) (company.Company, bool)
}

// Option configures the service.
type Option func(*serviceImpl)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option { return func(s *serviceImpl) { s.logger = l } }

// WithMetrics records truncation and band-mismatch counters.
func WithMetrics(m *prometheus.AppMetrics) Option { return func(s *serviceImpl) { s.metrics = m } }

// WithPublisher announces completed company analyses.
func WithPublisher(p event.Publisher) Option { return func(s *serviceImpl) { s.events = p } }

// WithTimeout bounds each oracle call. Zero means no extra bound.
func WithTimeout(d time.Duration) Option { return func(s *serviceImpl) { s.timeout = d } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(s *serviceImpl) { s.now = now } }

type serviceImpl struct {
	oracle  domain.Oracle
	prompts *PromptBuilder
	corpus  Corpus
	events  event.Publisher
	metrics *prometheus.AppMetrics
	logger  logging.Logger
	timeout time.Duration
	now     func() time.Time
}

// NewService creates an analysis service.
func NewService(oracle domain.Oracle, prompts *PromptBuilder, corpus Corpus, opts ...Option) Service {
	s := &serviceImpl{
		oracle:  oracle,
		prompts: prompts,
		corpus:  corpus,
		events:  event.NopPublisher{},
		logger:  logging.NewNopLogger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *serviceImpl) AnalyzeSingleProduct(ctx context.Context, p patent.Patent, product company.Product) (_ *domain.Finding, err error) {
	ctx, span := tracing.Start(ctx, "analysis.AnalyzeSingleProduct",
		attribute.String("patent_id", p.PublicationNumber), attribute.String("product", product.Name))
	defer func() { tracing.End(span, err) }()

	prompt, err := s.prompts.Single(p, product)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "Unexpected error: "+err.Error())
	}
	s.notePrompt(p, prompt)

	raw, err := s.score(ctx, prompt.Text, domain.SingleFindingShape)
	if err != nil {
		return nil, err
	}
	f, err := domain.DecodeFinding(raw)
	if err != nil {
		return nil, badResponse(err)
	}
	s.checkBand(p.PublicationNumber, f)
	return &f, nil
}

func (s *serviceImpl) AnalyzeMultipleProducts(ctx context.Context, p patent.Patent, products []company.Product) (_ []domain.Finding, err error) {
	ctx, span := tracing.Start(ctx, "analysis.AnalyzeMultipleProducts",
		attribute.String("patent_id", p.PublicationNumber), attribute.Int("products", len(products)))
	defer func() { tracing.End(span, err) }()

	if len(products) == 0 {
		return []domain.Finding{}, nil
	}

	prompt, err := s.prompts.Multiple(p, products)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "Unexpected error: "+err.Error())
	}
	s.notePrompt(p, prompt)

	raw, err := s.score(ctx, prompt.Text, domain.FindingListShape)
	if err != nil {
		return nil, err
	}
	findings, err := domain.DecodeFindings(raw)
	if err != nil {
		return nil, badResponse(err)
	}
	for _, f := range findings {
		s.checkBand(p.PublicationNumber, f)
	}
	return domain.RankTop(findings, domain.MaxTopFindings), nil
}

func (s *serviceImpl) AnalyzeProduct(ctx context.Context, patentID string, product company.Product) (*domain.Finding, error) {
	p, ok := s.corpus.PatentByExactID(patentID)
	if !ok {
		return nil, errors.Newf(errors.CodePatentNotFound, "Patent with ID %s not found", patentID)
	}
	return s.AnalyzeSingleProduct(ctx, p, product)
}

func (s *serviceImpl) AnalyzeCompany(ctx context.Context, patentID, companyName string) (*domain.CompanyAnalysis, error) {
	p, ok := s.corpus.PatentByExactID(patentID)
	if !ok {
		return nil, errors.Newf(errors.CodePatentNotFound, "Patent with ID %s not found", patentID)
	}
	c, ok := s.corpus.CompanyByExactName(companyName)
	if !ok {
		return nil, errors.Newf(errors.CodeCompanyNotFound, "Company %s not found", companyName)
	}

	findings, err := s.AnalyzeMultipleProducts(ctx, p, c.Products)
	if err != nil {
		return nil, err
	}

	result := &domain.CompanyAnalysis{
		AnalysisID:            uuid.NewString(),
		PatentID:              patentID,
		CompanyName:           companyName,
		AnalysisDate:          s.now(),
		TopInfringingProducts: findings,
		OverallRiskAssessment: domain.OverallRisk(findings),
	}
	s.publish(ctx, result)
	return result, nil
}

// score calls the oracle under the configured timeout and maps every failure
// onto the upstream or internal codes.
func (s *serviceImpl) score(ctx context.Context, prompt string, shape domain.OutputShape) ([]byte, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	raw, err := s.oracle.Score(ctx, prompt, shape)
	switch {
	case err == nil:
		return raw, nil
	case errors.IsUpstream(err):
		return nil, err
	case stderrors.Is(err, context.DeadlineExceeded):
		return nil, errors.Wrap(err, errors.CodeOracleUnavailable, "API request failed: scoring service timed out")
	default:
		return nil, errors.Wrap(err, errors.CodeInternal, "Unexpected error: "+err.Error())
	}
}

func badResponse(err error) error {
	if errors.IsCode(err, errors.CodeOracleBadResponse) {
		return errors.Wrap(err, errors.CodeOracleBadResponse, "Failed to parse API response: "+errors.Message(err))
	}
	return errors.Wrap(err, errors.CodeInternal, "Unexpected error: "+err.Error())
}

func (s *serviceImpl) notePrompt(p patent.Patent, prompt Prompt) {
	if prompt.ClaimsErr != nil {
		s.logger.Warn("claims could not be formatted, using placeholder",
			logging.String("patent_id", p.PublicationNumber), logging.Err(prompt.ClaimsErr))
	}
	if prompt.Truncated {
		s.logger.Warn(fmt.Sprintf("truncating prompt from %d to %d characters", prompt.Length, s.prompts.Budget()),
			logging.String("model", s.prompts.Model()))
		s.metrics.RecordPromptTruncation(s.prompts.Model())
	}
}

func (s *serviceImpl) checkBand(patentID string, f domain.Finding) {
	if f.BandConsistent() {
		return
	}
	s.logger.Warn("finding likelihood disagrees with its score",
		logging.String("patent_id", patentID),
		logging.String("product", f.ProductName),
		logging.Float64("score", f.InfringementScore),
		logging.String("likelihood", string(f.InfringementLikelihood)))
	s.metrics.RecordBandMismatch()
}

func (s *serviceImpl) publish(ctx context.Context, result *domain.CompanyAnalysis) {
	e, err := event.New(event.AnalysisCompleted, "infringescope", result.AnalysisID, result)
	if err == nil {
		err = s.events.Publish(ctx, e)
	}
	s.metrics.RecordEvent(string(event.AnalysisCompleted), err)
	if err != nil {
		s.logger.Warn("failed to publish analysis event", logging.String("analysis_id", result.AnalysisID), logging.Err(err))
	}
}

//Personal.AI order the ending
