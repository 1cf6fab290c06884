package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds the service's metric families. A nil *AppMetrics is valid
// and records nothing.
type AppMetrics struct {
	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Search
	SearchRequestsTotal CounterVec
	SearchResults       HistogramVec

	// Corpus
	CorpusEntries GaugeVec
	CorpusSkipped GaugeVec

	// Oracle
	OracleCallsTotal    CounterVec
	OracleLatency       HistogramVec
	OracleCacheTotal    CounterVec
	OracleBreakerState  GaugeVec
	PromptTruncations   CounterVec
	BandMismatchesTotal CounterVec

	// Reports
	ReportsSavedTotal CounterVec

	// Events
	EventsPublishedTotal CounterVec
}

var (
	DefaultHTTPDurationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}
	DefaultOracleDurationBuckets = []float64{.5, 1, 2, 5, 10, 30, 60, 120, 300}
	DefaultResultCountBuckets    = []float64{0, 1, 2, 5, 10, 20}
)

// NewAppMetrics registers every family on collector.
func NewAppMetrics(c MetricsCollector) *AppMetrics {
	return &AppMetrics{
		HTTPRequestsTotal:   c.RegisterCounter("http_requests_total", "HTTP requests by route and status", "method", "route", "status_code"),
		HTTPRequestDuration: c.RegisterHistogram("http_request_duration_seconds", "HTTP request latency", DefaultHTTPDurationBuckets, "method", "route"),
		HTTPActiveRequests:  c.RegisterGauge("http_active_requests", "In-flight HTTP requests"),

		SearchRequestsTotal: c.RegisterCounter("search_requests_total", "Fuzzy searches by mode", "mode"),
		SearchResults:       c.RegisterHistogram("search_results", "Matches returned per search", DefaultResultCountBuckets, "mode"),

		CorpusEntries: c.RegisterGauge("corpus_entries", "Entries in the current corpus snapshot", "kind"),
		CorpusSkipped: c.RegisterGauge("corpus_skipped_entries", "Entries skipped during the last corpus load"),

		OracleCallsTotal:    c.RegisterCounter("oracle_calls_total", "Scoring oracle calls", "backend", "outcome"),
		OracleLatency:       c.RegisterHistogram("oracle_latency_seconds", "Scoring oracle latency", DefaultOracleDurationBuckets, "backend"),
		OracleCacheTotal:    c.RegisterCounter("oracle_cache_total", "Oracle response cache lookups", "result"),
		OracleBreakerState:  c.RegisterGauge("oracle_breaker_state", "Oracle circuit state (0 closed, 1 half-open, 2 open)", "name"),
		PromptTruncations:   c.RegisterCounter("prompt_truncations_total", "Prompts cut to the model budget", "model"),
		BandMismatchesTotal: c.RegisterCounter("finding_band_mismatch_total", "Findings whose likelihood disagrees with their score"),

		ReportsSavedTotal: c.RegisterCounter("reports_saved_total", "Saved reports by backend", "backend"),

		EventsPublishedTotal: c.RegisterCounter("events_published_total", "Domain events published", "type", "outcome"),
	}
}

// RecordHTTPRequest records one completed request.
func (m *AppMetrics) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordSearch records one search and how many matches it returned.
func (m *AppMetrics) RecordSearch(mode string, results int) {
	if m == nil {
		return
	}
	m.SearchRequestsTotal.WithLabelValues(mode).Inc()
	m.SearchResults.WithLabelValues(mode).Observe(float64(results))
}

// RecordCorpus publishes the size of a freshly loaded snapshot.
func (m *AppMetrics) RecordCorpus(patents, companies, skipped int) {
	if m == nil {
		return
	}
	m.CorpusEntries.WithLabelValues("patent").Set(float64(patents))
	m.CorpusEntries.WithLabelValues("company").Set(float64(companies))
	m.CorpusSkipped.WithLabelValues().Set(float64(skipped))
}

// RecordOracleCall records one oracle round trip. outcome is "ok" or an
// error class.
func (m *AppMetrics) RecordOracleCall(backend, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.OracleCallsTotal.WithLabelValues(backend, outcome).Inc()
	m.OracleLatency.WithLabelValues(backend).Observe(d.Seconds())
}

// RecordOracleCache records a cache hit or miss.
func (m *AppMetrics) RecordOracleCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.OracleCacheTotal.WithLabelValues(result).Inc()
}

// SetBreakerState publishes a circuit breaker state.
func (m *AppMetrics) SetBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.OracleBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordPromptTruncation counts one truncated prompt.
func (m *AppMetrics) RecordPromptTruncation(model string) {
	if m == nil {
		return
	}
	m.PromptTruncations.WithLabelValues(model).Inc()
}

// RecordBandMismatch counts one inconsistent finding.
func (m *AppMetrics) RecordBandMismatch() {
	if m == nil {
		return
	}
	m.BandMismatchesTotal.WithLabelValues().Inc()
}

// RecordReportSaved counts one persisted report.
func (m *AppMetrics) RecordReportSaved(backend string) {
	if m == nil {
		return
	}
	m.ReportsSavedTotal.WithLabelValues(backend).Inc()
}

// RecordEvent counts one publish attempt.
func (m *AppMetrics) RecordEvent(eventType string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.EventsPublishedTotal.WithLabelValues(eventType, outcome).Inc()
}

//Personal.AI order the ending
