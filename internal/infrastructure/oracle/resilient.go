package oracle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/turtacn/InfringeScope/internal/domain/analysis"
	"github.com/turtacn/InfringeScope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InfringeScope/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/InfringeScope/internal/infrastructure/monitoring/tracing"
	"github.com/turtacn/InfringeScope/pkg/errors"
)

// Call outcomes recorded in metrics.
const (
	OutcomeOK          = "ok"
	OutcomeUnavailable = "unavailable"
	OutcomeBadResponse = "bad_response"
	OutcomeCircuitOpen = "circuit_open"
	OutcomeError       = "error"
)

// ResponseCache is the cache the decorator reads through.
type ResponseCache interface {
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(ctx context.Context) ([]byte, error)) ([]byte, bool, error)
}

// BreakerSettings tunes the circuit breaker. A zero FailureThreshold disables it.
type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// ResilientOption configures a Resilient oracle.
type ResilientOption func(*Resilient)

// WithCache reads responses through cache, keeping them for ttl.
func WithCache(cache ResponseCache, ttl time.Duration) ResilientOption {
	return func(r *Resilient) {
		r.cache = cache
		r.ttl = ttl
	}
}

// WithBreaker guards the backend with a circuit breaker.
func WithBreaker(s BreakerSettings) ResilientOption {
	return func(r *Resilient) { r.breakerSettings = &s }
}

// WithMetrics records call outcomes, cache hits and breaker state.
func WithMetrics(m *prometheus.AppMetrics) ResilientOption {
	return func(r *Resilient) { r.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) ResilientOption {
	return func(r *Resilient) { r.logger = l }
}

// Resilient decorates an oracle with a response cache, a circuit breaker,
// metrics and tracing.
type Resilient struct {
	next            analysis.Oracle
	backend         string
	model           string
	cache           ResponseCache
	ttl             time.Duration
	breakerSettings *BreakerSettings
	breaker         *gobreaker.CircuitBreaker[json.RawMessage]
	metrics         *prometheus.AppMetrics
	logger          logging.Logger
}

// NewResilient wraps next. backend and model label metrics and form part of
// the cache key.
func NewResilient(next analysis.Oracle, backend, model string, opts ...ResilientOption) *Resilient {
	r := &Resilient{
		next:    next,
		backend: backend,
		model:   model,
		logger:  logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if s := r.breakerSettings; s != nil && s.FailureThreshold > 0 {
		r.breaker = gobreaker.NewCircuitBreaker[json.RawMessage](gobreaker.Settings{
			Name:        "oracle-" + backend,
			MaxRequests: s.MaxRequests,
			Interval:    s.Interval,
			Timeout:     s.Timeout,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= s.FailureThreshold
			},
			IsSuccessful: countsAsSuccess,
			OnStateChange: func(name string, from, to gobreaker.State) {
				r.logger.Warn("oracle circuit breaker state change",
					logging.String("breaker", name),
					logging.String("from", from.String()),
					logging.String("to", to.String()))
				r.metrics.SetBreakerState(name, int(to))
			},
		})
	}
	return r
}

// countsAsSuccess keeps malformed output and caller cancellation from
// tripping the breaker; only transport failures count.
func countsAsSuccess(err error) bool {
	return err == nil ||
		errors.IsCode(err, errors.CodeOracleBadResponse) ||
		stderrors.Is(err, context.Canceled)
}

// CacheKey derives the cache key for a prompt.
func CacheKey(model, shape, prompt string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(shape))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return hex.EncodeToString(h.Sum(nil))
}

// Score implements analysis.Oracle.
func (r *Resilient) Score(ctx context.Context, prompt string, shape analysis.OutputShape) (_ json.RawMessage, err error) {
	ctx, span := tracing.Start(ctx, "oracle.Score",
		attribute.String("oracle.backend", r.backend),
		attribute.String("oracle.model", r.model),
		attribute.String("oracle.shape", shape.Name))
	defer func() { tracing.End(span, err) }()

	if r.cache == nil {
		return r.call(ctx, prompt, shape)
	}

	data, hit, err := r.cache.GetOrLoad(ctx, CacheKey(r.model, shape.Name, prompt), r.ttl,
		func(ctx context.Context) ([]byte, error) {
			raw, err := r.call(ctx, prompt, shape)
			if err != nil {
				return nil, err
			}
			// Only documents the orchestrator can decode are worth keeping.
			if err := shape.Validate(raw); err != nil {
				r.logger.Warn("oracle response rejected before caching",
					logging.String("backend", r.backend),
					logging.String("shape", shape.Name),
					logging.Err(err))
				return nil, err
			}
			return raw, nil
		})
	if err != nil {
		return nil, err
	}
	r.metrics.RecordOracleCache(hit)
	span.SetAttributes(attribute.Bool("oracle.cache_hit", hit))
	return json.RawMessage(data), nil
}

func (r *Resilient) call(ctx context.Context, prompt string, shape analysis.OutputShape) (json.RawMessage, error) {
	start := time.Now()
	var (
		raw json.RawMessage
		err error
	)
	if r.breaker != nil {
		raw, err = r.breaker.Execute(func() (json.RawMessage, error) {
			return r.next.Score(ctx, prompt, shape)
		})
		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			err = errors.Wrap(err, errors.CodeOracleCircuitOpen, "API request failed: scoring service circuit open")
		}
	} else {
		raw, err = r.next.Score(ctx, prompt, shape)
	}

	outcome := classify(err)
	r.metrics.RecordOracleCall(r.backend, outcome, time.Since(start))
	if err != nil {
		r.logger.Warn("oracle call failed",
			logging.String("backend", r.backend),
			logging.String("outcome", outcome),
			logging.Err(err))
		return nil, err
	}
	return raw, nil
}

func classify(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.IsCode(err, errors.CodeOracleCircuitOpen):
		return OutcomeCircuitOpen
	case errors.IsCode(err, errors.CodeOracleBadResponse):
		return OutcomeBadResponse
	case errors.IsCode(err, errors.CodeOracleUnavailable), stderrors.Is(err, context.DeadlineExceeded):
		return OutcomeUnavailable
	default:
		return OutcomeError
	}
}

//Personal.AI order the ending
