package reporting

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/InfringeScope/internal/domain/analysis"
	"github.com/turtacn/InfringeScope/internal/domain/event"
	"github.com/turtacn/InfringeScope/internal/domain/patent"
	"github.com/turtacn/InfringeScope/internal/domain/report"
	"github.com/turtacn/InfringeScope/internal/infrastructure/corpus"
	"github.com/turtacn/InfringeScope/internal/infrastructure/reportstore/jsonfile"
	"github.com/turtacn/InfringeScope/internal/testutil"
	"github.com/turtacn/InfringeScope/pkg/errors"
)

type recordingPublisher struct {
	events []*event.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e *event.Event) error {
	p.events = append(p.events, e)
	return p.err
}

func newTestService(t *testing.T, opts ...Option) Service {
	t.Helper()
	patents := corpus.NewStaticStore([]patent.Patent{{
		PublicationNumber: "US-12345-A1",
		Title:             "Shopping list sharing",
		Abstract:          "Lists shared between users.",
	}}, nil)
	store := jsonfile.New(filepath.Join(t.TempDir(), "saved_reports.json"))
	return NewService(store, patents, opts...)
}

func sampleRequest() SaveRequest {
	return SaveRequest{
		PatentID:    "US-12345-A1",
		CompanyName: "Walmart Inc.",
		TopInfringingProducts: []analysis.Finding{{
			ProductName:            "Walmart App",
			InfringementScore:      85,
			InfringementLikelihood: analysis.LikelihoodHigh,
			RelevantClaims:         []string{"1", "2"},
			Explanation:            "Shares lists.",
			SpecificFeatures:       []string{"list sync"},
		}},
		OverallRiskAssessment: analysis.RiskHigh,
	}
}

func TestSave_ResolvesPatentAndRoundTrips(t *testing.T) {
	pub := &recordingPublisher{}
	s := newTestService(t, WithPublisher(pub))
	ctx := context.Background()

	saved, err := s.Save(ctx, sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "Shopping list sharing", saved.PatentTitle)
	assert.Equal(t, "Lists shared between users.", saved.PatentAbstract)
	assert.NotEmpty(t, saved.ID)

	got, err := s.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.True(t, saved.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, saved.TopInfringingProducts, got.TopInfringingProducts)
	assert.Equal(t, saved.OverallRiskAssessment, got.OverallRiskAssessment)

	require.Len(t, pub.events, 1)
	assert.Equal(t, event.ReportSaved, pub.events[0].Type)
	assert.Equal(t, saved.ID, pub.events[0].Key)
}

func TestSave_UsesAnalysisIdentity(t *testing.T) {
	s := newTestService(t)
	date := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	result := &analysis.CompanyAnalysis{
		AnalysisID:            "6f9619ff-8b86-d011-b42d-00c04fc964ff",
		PatentID:              "US-12345-A1",
		CompanyName:           "Walmart Inc.",
		AnalysisDate:          date,
		TopInfringingProducts: sampleRequest().TopInfringingProducts,
		OverallRiskAssessment: analysis.RiskHigh,
	}

	saved, err := s.Save(context.Background(), FromAnalysis(result))
	require.NoError(t, err)
	assert.Equal(t, result.AnalysisID, saved.ID)
	assert.True(t, date.Equal(saved.CreatedAt))

	_, err = s.Save(context.Background(), FromAnalysis(result))
	assert.True(t, errors.IsCode(err, errors.CodeConflict))
}

func TestSave_UnknownPatent(t *testing.T) {
	s := newTestService(t)
	req := sampleRequest()
	req.PatentID = "US-0-A1"
	_, err := s.Save(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, "Patent with ID US-0-A1 not found", errors.Message(err))
}

func TestSave_Validation(t *testing.T) {
	s := newTestService(t)
	req := sampleRequest()
	req.PatentID = " "
	_, err := s.Save(context.Background(), req)
	assert.True(t, errors.IsValidation(err))

	req = sampleRequest()
	f := req.TopInfringingProducts[0]
	req.TopInfringingProducts = []analysis.Finding{f, f, f}
	_, err = s.Save(context.Background(), req)
	assert.True(t, errors.IsValidation(err))
}

func TestSave_PublishFailureIsNotFatal(t *testing.T) {
	log := testutil.NewMockLogger()
	s := newTestService(t, WithPublisher(&recordingPublisher{err: stderrors.New("kafka down")}), WithLogger(log))
	_, err := s.Save(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.True(t, log.HasMessage("warn", "failed to publish report event"))
}

func TestList_PagesInInsertionOrder(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	var ids []string
	for i := 0; i < 3; i++ {
		saved, err := s.Save(ctx, sampleRequest())
		require.NoError(t, err)
		ids = append(ids, saved.ID)
	}

	page, err := s.List(ctx, report.Page{Skip: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[1], page[0].ID)

	_, err = s.List(ctx, report.Page{Limit: report.MaxListLimit + 1})
	assert.True(t, errors.IsValidation(err))
}

func TestGet_Unknown(t *testing.T) {
	s := newTestService(t)
	_, err := s.Get(context.Background(), "missing")
	assert.True(t, errors.IsCode(err, errors.CodeReportNotFound))
	_, err = s.RenderHTML(context.Background(), "missing")
	assert.True(t, errors.IsCode(err, errors.CodeReportNotFound))
}

func TestRenderHTML(t *testing.T) {
	s := newTestService(t)
	saved, err := s.Save(context.Background(), sampleRequest())
	require.NoError(t, err)

	page, err := s.RenderHTML(context.Background(), saved.ID)
	require.NoError(t, err)
	html := string(page)
	assert.Contains(t, html, "<!doctype html>")
	assert.Contains(t, html, "<h1>Infringement Report: Shopping list sharing</h1>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<td>High risk</td>")
	assert.Contains(t, html, "Walmart App")
	assert.Contains(t, html, "<strong>Score:</strong> 85")
}

//Personal.AI order the ending
