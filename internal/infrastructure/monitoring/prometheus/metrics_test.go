package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAppMetrics_Record(t *testing.T) {
	c := newTestCollector(t)
	m := NewAppMetrics(c)

	m.RecordHTTPRequest("GET", "/api/patents/suggest", 200, 20*time.Millisecond)
	m.RecordSearch("title", 3)
	m.RecordCorpus(3, 2, 1)
	m.RecordOracleCall("ollama", "ok", 2*time.Second)
	m.RecordOracleCall("ollama", "unavailable", time.Second)
	m.RecordOracleCache(true)
	m.RecordOracleCache(false)
	m.SetBreakerState("oracle", 2)
	m.RecordPromptTruncation("phi")
	m.RecordBandMismatch()
	m.RecordReportSaved("jsonfile")
	m.RecordEvent("report.saved", nil)
	m.RecordEvent("report.saved", errors.New("down"))

	out := scrape(t, c)
	for _, want := range []string{
		`test_unit_http_requests_total{method="GET",route="/api/patents/suggest",status_code="200"} 1`,
		`test_unit_search_requests_total{mode="title"} 1`,
		`test_unit_search_results_count{mode="title"} 1`,
		`test_unit_corpus_entries{kind="patent"} 3`,
		`test_unit_corpus_entries{kind="company"} 2`,
		`test_unit_corpus_skipped_entries 1`,
		`test_unit_oracle_calls_total{backend="ollama",outcome="ok"} 1`,
		`test_unit_oracle_calls_total{backend="ollama",outcome="unavailable"} 1`,
		`test_unit_oracle_cache_total{result="hit"} 1`,
		`test_unit_oracle_breaker_state{name="oracle"} 2`,
		`test_unit_prompt_truncations_total{model="phi"} 1`,
		`test_unit_finding_band_mismatch_total 1`,
		`test_unit_reports_saved_total{backend="jsonfile"} 1`,
		`test_unit_events_published_total{outcome="error",type="report.saved"} 1`,
	} {
		assert.Contains(t, out, want)
	}
}

func TestAppMetrics_NilIsSafe(t *testing.T) {
	var m *AppMetrics
	assert.NotPanics(t, func() {
		m.RecordHTTPRequest("GET", "/", 500, time.Millisecond)
		m.RecordSearch("company", 0)
		m.RecordCorpus(0, 0, 0)
		m.RecordOracleCall("x", "ok", 0)
		m.RecordOracleCache(true)
		m.SetBreakerState("x", 0)
		m.RecordPromptTruncation("phi")
		m.RecordBandMismatch()
		m.RecordReportSaved("x")
		m.RecordEvent("x", nil)
	})
}

//Personal.AI order the ending
