// Package reporting turns analysis results into saved reports and renders
// them for reading.
package reporting

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/turtacn/InfringeScope/internal/domain/analysis"
	"github.com/turtacn/InfringeScope/internal/domain/event"
	"github.com/turtacn/InfringeScope/internal/domain/patent"
	"github.com/turtacn/InfringeScope/internal/domain/report"
	"github.com/turtacn/InfringeScope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InfringeScope/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/InfringeScope/internal/infrastructure/monitoring/tracing"
	"github.com/turtacn/InfringeScope/pkg/errors"
)

// MaxFindings is the most findings a report may carry.
const MaxFindings = 2

// SaveRequest is an analysis result submitted for saving. Either id or
// analysis_id may name the report; created_at falls back to analysis_date.
type SaveRequest struct {
	ID                    string             `json:"id,omitempty"`
	AnalysisID            string             `json:"analysis_id,omitempty"`
	CreatedAt             time.Time          `json:"created_at"`
	AnalysisDate          time.Time          `json:"analysis_date"`
	PatentID              string             `json:"patent_id"`
	CompanyName           string             `json:"company_name"`
	TopInfringingProducts []analysis.Finding `json:"top_infringing_products"`
	OverallRiskAssessment string             `json:"overall_risk_assessment"`
}

// FromAnalysis builds a save request from a company analysis.
func FromAnalysis(a *analysis.CompanyAnalysis) SaveRequest {
	return SaveRequest{
		AnalysisID:            a.AnalysisID,
		AnalysisDate:          a.AnalysisDate,
		PatentID:              a.PatentID,
		CompanyName:           a.CompanyName,
		TopInfringingProducts: a.TopInfringingProducts,
		OverallRiskAssessment: a.OverallRiskAssessment,
	}
}

// Service defines the report operations.
type Service interface {
	Save(ctx context.Context, req SaveRequest) (*report.SavedReport, error)
	Get(ctx context.Context, id string) (*report.SavedReport, error)
	List(ctx context.Context, page report.Page) ([]*report.SavedReport, error)
	RenderHTML(ctx context.Context, id string) ([]byte, error)
}

// PatentLookup resolves the patent a report refers to.
type PatentLookup interface {
	PatentByExactID(id string) (patent.Patent, bool)
}

// Option configures the service.
type Option func(*serviceImpl)

func WithLogger(l logging.Logger) Option { return func(s *serviceImpl) { s.logger = l } }

func WithMetrics(m *prometheus.AppMetrics) Option { return func(s *serviceImpl) { s.metrics = m } }

func WithPublisher(p event.Publisher) Option { return func(s *serviceImpl) { s.events = p } }

// WithBackend names the store in metrics.
func WithBackend(name string) Option { return func(s *serviceImpl) { s.backend = name } }

type serviceImpl struct {
	repo     report.Repository
	patents  PatentLookup
	renderer *Renderer
	events   event.Publisher
	metrics  *prometheus.AppMetrics
	logger   logging.Logger
	backend  string
}

// NewService creates a report service over repo.
func NewService(repo report.Repository, patents PatentLookup, opts ...Option) Service {
	s := &serviceImpl{
		repo:     repo,
		patents:  patents,
		renderer: NewRenderer(),
		events:   event.NopPublisher{},
		logger:   logging.NewNopLogger(),
		backend:  "jsonfile",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save copies patent title and abstract from the corpus into the report and
// stores it.
func (s *serviceImpl) Save(ctx context.Context, req SaveRequest) (_ *report.SavedReport, err error) {
	ctx, span := tracing.Start(ctx, "reporting.Save", attribute.String("patent_id", req.PatentID))
	defer func() { tracing.End(span, err) }()

	if strings.TrimSpace(req.PatentID) == "" {
		return nil, errors.New(errors.CodeValidation, "patent_id is required")
	}
	if len(req.TopInfringingProducts) > MaxFindings {
		return nil, errors.Newf(errors.CodeValidation, "top_infringing_products must contain at most %d findings", MaxFindings)
	}
	p, ok := s.patents.PatentByExactID(req.PatentID)
	if !ok {
		return nil, errors.Newf(errors.CodePatentNotFound, "Patent with ID %s not found", req.PatentID)
	}

	id := req.ID
	if id == "" {
		id = req.AnalysisID
	}
	created := req.CreatedAt
	if created.IsZero() {
		created = req.AnalysisDate
	}

	saved, err := s.repo.Save(ctx, &report.SavedReport{
		ID:                    id,
		CreatedAt:             created,
		PatentID:              p.PublicationNumber,
		PatentTitle:           p.Title,
		PatentAbstract:        p.Abstract,
		CompanyName:           req.CompanyName,
		TopInfringingProducts: append([]analysis.Finding(nil), req.TopInfringingProducts...),
		OverallRiskAssessment: req.OverallRiskAssessment,
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordReportSaved(s.backend)
	s.publish(ctx, saved)
	return saved, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (*report.SavedReport, error) {
	return s.repo.Get(ctx, id)
}

func (s *serviceImpl) List(ctx context.Context, page report.Page) ([]*report.SavedReport, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, page)
}

// RenderHTML renders a stored report as a standalone HTML page.
func (s *serviceImpl) RenderHTML(ctx context.Context, id string) ([]byte, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.renderer.HTML(r)
}

func (s *serviceImpl) publish(ctx context.Context, r *report.SavedReport) {
	e, err := event.New(event.ReportSaved, "infringescope", r.ID, r)
	if err == nil {
		err = s.events.Publish(ctx, e)
	}
	s.metrics.RecordEvent(string(event.ReportSaved), err)
	if err != nil {
		s.logger.Warn("failed to publish report event", logging.String("report_id", r.ID), logging.Err(err))
	}
}

//Personal.AI order the ending
