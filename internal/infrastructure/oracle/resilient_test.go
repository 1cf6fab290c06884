package oracle

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/InfringeScope/internal/domain/analysis"
	"github.com/turtacn/InfringeScope/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/InfringeScope/internal/testutil"
	"github.com/turtacn/InfringeScope/pkg/errors"
)

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache { return &memoryCache{data: map[string][]byte{}} }

func (c *memoryCache) GetOrLoad(ctx context.Context, key string, _ time.Duration, load func(context.Context) ([]byte, error)) ([]byte, bool, error) {
	c.mu.Lock()
	v, ok := c.data[key]
	c.mu.Unlock()
	if ok {
		return v, true, nil
	}
	v, err := load(ctx)
	if err != nil {
		return nil, false, err
	}
	c.mu.Lock()
	c.data[key] = v
	c.mu.Unlock()
	return v, false, nil
}

func countingOracle(calls *int32, err error) analysis.OracleFunc {
	return func(context.Context, string, analysis.OutputShape) (json.RawMessage, error) {
		atomic.AddInt32(calls, 1)
		if err != nil {
			return nil, err
		}
		return json.RawMessage(`{"ok": true}`), nil
	}
}

const validFinding = `{"product_name": "App", "infringement_score": 80, "infringement_likelihood": "High",
  "relevant_claims": ["1"], "explanation": "e", "specific_features": []}`

// shapedOracle answers with a document that decodes as the requested shape.
func shapedOracle(calls *int32) analysis.OracleFunc {
	return func(_ context.Context, _ string, shape analysis.OutputShape) (json.RawMessage, error) {
		atomic.AddInt32(calls, 1)
		if shape.Name == analysis.FindingListShape.Name {
			return json.RawMessage(`{"products": [` + validFinding + `]}`), nil
		}
		return json.RawMessage(validFinding), nil
	}
}

func TestResilient_PassThrough(t *testing.T) {
	var calls int32
	r := NewResilient(countingOracle(&calls, nil), BackendOllama, "phi")
	raw, err := r.Score(context.Background(), "p", analysis.SingleFindingShape)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok": true}`, string(raw))
	assert.Equal(t, int32(1), calls)
}

func TestResilient_CachesByModelShapeAndPrompt(t *testing.T) {
	var calls int32
	cache := newMemoryCache()
	r := NewResilient(shapedOracle(&calls), BackendOllama, "phi", WithCache(cache, time.Hour))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := r.Score(ctx, "same prompt", analysis.SingleFindingShape)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls)

	_, err := r.Score(ctx, "same prompt", analysis.FindingListShape)
	require.NoError(t, err)
	_, err = r.Score(ctx, "other prompt", analysis.SingleFindingShape)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls)
	assert.Len(t, cache.data, 3)
}

func TestResilient_ErrorsAreNotCached(t *testing.T) {
	var calls int32
	cache := newMemoryCache()
	fail := errors.New(errors.CodeOracleUnavailable, "API request failed: down")
	r := NewResilient(countingOracle(&calls, fail), BackendOllama, "phi", WithCache(cache, time.Hour))

	for i := 0; i < 2; i++ {
		_, err := r.Score(context.Background(), "p", analysis.SingleFindingShape)
		assert.True(t, errors.IsCode(err, errors.CodeOracleUnavailable))
	}
	assert.Equal(t, int32(2), calls)
	assert.Empty(t, cache.data)
}

func TestResilient_MalformedResponsesAreNotCached(t *testing.T) {
	var calls int32
	cache := newMemoryCache()
	log := testutil.NewMockLogger()
	r := NewResilient(countingOracle(&calls, nil), BackendOllama, "phi",
		WithCache(cache, time.Hour), WithLogger(log))

	for i := 0; i < 3; i++ {
		_, err := r.Score(context.Background(), "p", analysis.SingleFindingShape)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeOracleBadResponse))
	}
	assert.Equal(t, int32(3), calls)
	assert.Empty(t, cache.data)
	assert.True(t, log.HasMessage("warn", "oracle response rejected before caching"))
}

func TestResilient_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls int32
	log := testutil.NewMockLogger()
	fail := errors.New(errors.CodeOracleUnavailable, "API request failed: down")
	r := NewResilient(countingOracle(&calls, fail), BackendOllama, "phi",
		WithBreaker(BreakerSettings{MaxRequests: 1, Timeout: time.Minute, FailureThreshold: 3}),
		WithLogger(log))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := r.Score(ctx, "p", analysis.SingleFindingShape)
		assert.True(t, errors.IsCode(err, errors.CodeOracleUnavailable))
	}
	_, err := r.Score(ctx, "p", analysis.SingleFindingShape)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeOracleCircuitOpen))
	assert.True(t, errors.IsUpstream(err))
	assert.Equal(t, int32(3), calls)
	assert.True(t, log.HasMessage("warn", "oracle circuit breaker state change"))
}

func TestResilient_BadResponsesDoNotTripBreaker(t *testing.T) {
	var calls int32
	bad := errors.New(errors.CodeOracleBadResponse, "Failed to parse API response: x")
	r := NewResilient(countingOracle(&calls, bad), BackendOllama, "phi",
		WithBreaker(BreakerSettings{MaxRequests: 1, Timeout: time.Minute, FailureThreshold: 2}))

	for i := 0; i < 5; i++ {
		_, err := r.Score(context.Background(), "p", analysis.SingleFindingShape)
		assert.True(t, errors.IsCode(err, errors.CodeOracleBadResponse))
	}
	assert.Equal(t, int32(5), calls)
}

func TestResilient_RecordsMetrics(t *testing.T) {
	c, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "test"}, nil)
	require.NoError(t, err)
	m := prometheus.NewAppMetrics(c)

	var calls int32
	r := NewResilient(shapedOracle(&calls), BackendAnthropic, "m",
		WithMetrics(m), WithCache(newMemoryCache(), time.Hour))
	_, err = r.Score(context.Background(), "p", analysis.SingleFindingShape)
	require.NoError(t, err)
	_, err = r.Score(context.Background(), "p", analysis.SingleFindingShape)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls)
}

func TestCacheKey(t *testing.T) {
	a := CacheKey("phi", "s", "prompt")
	assert.Len(t, a, 64)
	assert.Equal(t, a, CacheKey("phi", "s", "prompt"))
	assert.NotEqual(t, a, CacheKey("llama3.2", "s", "prompt"))
	assert.NotEqual(t, CacheKey("ab", "", "c"), CacheKey("a", "", "bc"))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, OutcomeOK, classify(nil))
	assert.Equal(t, OutcomeUnavailable, classify(context.DeadlineExceeded))
	assert.Equal(t, OutcomeBadResponse, classify(errors.New(errors.CodeOracleBadResponse, "x")))
	assert.Equal(t, OutcomeCircuitOpen, classify(errors.New(errors.CodeOracleCircuitOpen, "x")))
	assert.Equal(t, OutcomeError, classify(errors.New(errors.CodeInternal, "x")))
}

//Personal.AI order the ending
