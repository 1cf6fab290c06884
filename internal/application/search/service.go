// Package search ranks the corpus against free-text queries. Searches are
// pure reads over an immutable corpus snapshot and never fail for lack of a
// match.
package search

import (
	"context"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/turtacn/InfringeScope/internal/domain/company"
	"github.com/turtacn/InfringeScope/internal/domain/patent"
	"github.com/turtacn/InfringeScope/internal/infrastructure/corpus"
	"github.com/turtacn/InfringeScope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InfringeScope/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/InfringeScope/internal/infrastructure/monitoring/tracing"
	"github.com/turtacn/InfringeScope/pkg/fuzzy"
)

// Default thresholds per search mode.
const (
	DefaultPatentIDThreshold = 80
	DefaultCompanyThreshold  = 60
	DefaultTitleThreshold    = 60
	DefaultSuggestionLimit   = 5
	MaxSuggestionLimit       = 20

	companyCandidates   = 5
	titleCandidates     = 10
	exactConfidence     = 100
	substringConfidence = 90
)

// Search modes, used as metric labels.
const (
	ModePatentID = "patent_id"
	ModeCompany  = "company"
	ModeTitle    = "title"
)

// PatentMatch is a patent with its match confidence.
type PatentMatch struct {
	Patent     patent.Patent
	Confidence int
	IsExact    bool
}

// CompanyMatch is a company with its match confidence.
type CompanyMatch struct {
	Company    company.Company
	Confidence int
	IsExact    bool
}

// SnapshotProvider hands out the current corpus snapshot.
type SnapshotProvider interface {
	Snapshot() *corpus.Snapshot
}

// Service defines the fuzzy search operations.
type Service interface {
	FindPatentByID(ctx context.Context, query string, threshold int) []PatentMatch
	FindCompanyByName(ctx context.Context, query string, threshold int) []CompanyMatch
	FindPatentByTitle(ctx context.Context, query string, threshold int) []PatentMatch
}

// Option configures the service.
type Option func(*serviceImpl)

// WithMetrics records search counters.
func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(s *serviceImpl) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(s *serviceImpl) { s.logger = l }
}

type serviceImpl struct {
	corpus  SnapshotProvider
	metrics *prometheus.AppMetrics
	logger  logging.Logger
}

// NewService creates a search service over provider.
func NewService(provider SnapshotProvider, opts ...Option) Service {
	s := &serviceImpl{corpus: provider, logger: logging.NewNopLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindPatentByID matches publication numbers. The query is uppercased and
// stripped of whitespace; an identical number scores 100, a number containing
// the query scores 90, anything else its edit ratio. Nothing below threshold
// is returned.
func (s *serviceImpl) FindPatentByID(ctx context.Context, query string, threshold int) []PatentMatch {
	_, span := tracing.Start(ctx, "search.FindPatentByID", attribute.String("query", query))
	defer span.End()

	q := NormalizePatentID(query)
	var matches []PatentMatch
	if q != "" {
		for _, p := range s.corpus.Snapshot().Patents() {
			id := p.PublicationNumber
			switch {
			case q == id:
				matches = append(matches, PatentMatch{Patent: p, Confidence: exactConfidence, IsExact: true})
			case strings.Contains(id, q):
				if substringConfidence >= threshold {
					matches = append(matches, PatentMatch{Patent: p, Confidence: substringConfidence})
				}
			default:
				if c := fuzzy.Round(fuzzy.Ratio(q, id)); c >= threshold {
					matches = append(matches, PatentMatch{Patent: p, Confidence: c, IsExact: c == exactConfidence})
				}
			}
		}
		sortPatentMatches(matches)
	}

	span.SetAttributes(attribute.Int("results", len(matches)))
	s.metrics.RecordSearch(ModePatentID, len(matches))
	s.logger.Debug("patent id search", logging.String("query", query), logging.Int("threshold", threshold), logging.Int("results", len(matches)))
	return matches
}

// FindCompanyByName ranks company names with the weighted ratio, keeps the
// best five and drops those under threshold.
func (s *serviceImpl) FindCompanyByName(ctx context.Context, query string, threshold int) []CompanyMatch {
	_, span := tracing.Start(ctx, "search.FindCompanyByName", attribute.String("query", query))
	defer span.End()

	var matches []CompanyMatch
	q := strings.ToLower(query)
	if strings.TrimSpace(q) != "" {
		snap := s.corpus.Snapshot()
		for _, r := range fuzzy.Extract(q, snap.NameKeys(), fuzzy.WRatio, companyCandidates) {
			c := fuzzy.Round(r.Score)
			if c < threshold {
				continue
			}
			co, ok := snap.CompanyByExactName(r.Choice)
			if !ok {
				co = snap.Companies()[r.Index]
			}
			matches = append(matches, CompanyMatch{Company: co, Confidence: c, IsExact: c == exactConfidence})
		}
	}

	span.SetAttributes(attribute.Int("results", len(matches)))
	s.metrics.RecordSearch(ModeCompany, len(matches))
	s.logger.Debug("company search", logging.String("query", query), logging.Int("threshold", threshold), logging.Int("results", len(matches)))
	return matches
}

// FindPatentByTitle ranks titles with the token ratio, keeps the best ten and
// drops those under threshold. Matches resolve by corpus position so that
// duplicate titles map to their own records.
func (s *serviceImpl) FindPatentByTitle(ctx context.Context, query string, threshold int) []PatentMatch {
	_, span := tracing.Start(ctx, "search.FindPatentByTitle", attribute.String("query", query))
	defer span.End()

	var matches []PatentMatch
	q := strings.ToLower(query)
	if strings.TrimSpace(q) != "" {
		snap := s.corpus.Snapshot()
		for _, r := range fuzzy.Extract(q, snap.TitleKeys(), fuzzy.TokenRatio, titleCandidates) {
			c := fuzzy.Round(r.Score)
			if c < threshold {
				continue
			}
			matches = append(matches, PatentMatch{Patent: snap.Patents()[r.Index], Confidence: c, IsExact: c == exactConfidence})
		}
		sortPatentMatches(matches)
	}

	span.SetAttributes(attribute.Int("results", len(matches)))
	s.metrics.RecordSearch(ModeTitle, len(matches))
	s.logger.Debug("title search", logging.String("query", query), logging.Int("threshold", threshold), logging.Int("results", len(matches)))
	return matches
}

// NormalizePatentID uppercases s and removes all whitespace.
func NormalizePatentID(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}

func sortPatentMatches(m []PatentMatch) {
	sort.SliceStable(m, func(i, j int) bool { return m[i].Confidence > m[j].Confidence })
}

//Personal.AI order the ending
