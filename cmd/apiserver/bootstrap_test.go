package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/InfringeScope/internal/config"
	"github.com/turtacn/InfringeScope/internal/infrastructure/monitoring/logging"
)

const (
	testPatents   = `[{"publication_number": "US-12345-A1", "title": "Shopping list synchronisation", "abstract": "Lists", "claims": []}]`
	testCompanies = `{"companies": [{"name": "Walmart Inc.", "products": [{"name": "Walmart App", "description": "Lists"}]}]}`
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Corpus.PatentsPath = filepath.Join(dir, "patents.json")
	cfg.Corpus.CompaniesPath = filepath.Join(dir, "company_products.json")
	cfg.Reports.Path = filepath.Join(dir, "reports.json")
	cfg.Oracle.Host = "http://127.0.0.1:1"
	cfg.Metrics.Enabled = true
	cfg.Server.Mode = "test"
	config.ApplyDefaults(cfg)
	require.NoError(t, cfg.Validate())

	require.NoError(t, os.WriteFile(cfg.Corpus.PatentsPath, []byte(testPatents), 0o644))
	require.NoError(t, os.WriteFile(cfg.Corpus.CompaniesPath, []byte(testCompanies), 0o644))
	return cfg
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestNewApp_FileCorpusAndJSONReports(t *testing.T) {
	cfg := testConfig(t)
	a, err := newApp(context.Background(), cfg, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { a.close(context.Background()) })

	assert.Nil(t, a.grpc)
	h := a.http.Handler()

	w := get(t, h, "/readyz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"corpus"`)

	w = get(t, h, "/api/search/patent/US-12345-A1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"is_exact":true`)

	w = get(t, h, "/api/reports/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "infringescope_corpus_entries")
}

func TestNewApp_MetricsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = false
	a, err := newApp(context.Background(), cfg, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { a.close(context.Background()) })

	w := get(t, a.http.Handler(), "/metrics")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewApp_GRPCEnabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.GRPC.Enabled = true
	cfg.GRPC.Port = 0
	cfg.Server.Host = "127.0.0.1"
	a, err := newApp(context.Background(), cfg, logging.NewNopLogger())
	require.NoError(t, err)
	require.NotNil(t, a.grpc)
	assert.True(t, strings.HasPrefix(a.grpc.Addr(), "127.0.0.1:"))
	require.NoError(t, a.grpc.Stop(context.Background()))
	a.close(context.Background())
}

func TestBuildOracle_AnthropicRequiresKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.Oracle.Backend = "anthropic"
	_, err := buildOracle(cfg, nil, nil, logging.NewNopLogger())
	require.Error(t, err)

	cfg.Oracle.APIKey = "sk-test"
	o, err := buildOracle(cfg, nil, nil, logging.NewNopLogger())
	require.NoError(t, err)
	assert.NotNil(t, o)
}

func TestApp_CloseRunsInReverseOrder(t *testing.T) {
	a := &app{logger: logging.NewNopLogger()}
	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		a.onShutdown(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}
	a.close(context.Background())
	assert.Equal(t, []string{"third", "second", "first"}, order)

	a.close(context.Background())
	assert.Len(t, order, 3)
}

func TestApp_ReloadAppliesRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.RequestsPerSecond = 100
	cfg.RateLimit.Burst = 100
	a, err := newApp(context.Background(), cfg, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { a.close(context.Background()) })
	require.NotNil(t, a.limiter)

	next := *cfg
	next.RateLimit.RequestsPerSecond = 0.001
	next.RateLimit.Burst = 1
	a.reload(&next)

	h := a.http.Handler()
	assert.Equal(t, http.StatusOK, get(t, h, "/api/reports/").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(t, h, "/api/reports/").Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/health").Code)
}

func TestLoadConfig_FallsBackToEnvironment(t *testing.T) {
	cfg, fromFile, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.False(t, fromFile)
	assert.Equal(t, config.DefaultServerPort, cfg.Server.Port)
}

//Personal.AI order the ending
