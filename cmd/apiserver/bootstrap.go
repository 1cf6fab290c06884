package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	appanalysis "github.com/turtacn/InfringeScope/internal/application/analysis"
	"github.com/turtacn/InfringeScope/internal/application/reporting"
	"github.com/turtacn/InfringeScope/internal/application/search"
	"github.com/turtacn/InfringeScope/internal/config"
	"github.com/turtacn/InfringeScope/internal/domain/analysis"
	"github.com/turtacn/InfringeScope/internal/domain/event"
	"github.com/turtacn/InfringeScope/internal/domain/report"
	"github.com/turtacn/InfringeScope/internal/infrastructure/corpus"
	"github.com/turtacn/InfringeScope/internal/infrastructure/database/postgres"
	"github.com/turtacn/InfringeScope/internal/infrastructure/database/redis"
	"github.com/turtacn/InfringeScope/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/InfringeScope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InfringeScope/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/InfringeScope/internal/infrastructure/monitoring/tracing"
	"github.com/turtacn/InfringeScope/internal/infrastructure/oracle"
	"github.com/turtacn/InfringeScope/internal/infrastructure/reportstore/jsonfile"
	"github.com/turtacn/InfringeScope/internal/infrastructure/storage/minio"
	grpcserver "github.com/turtacn/InfringeScope/internal/interfaces/grpc"
	httpserver "github.com/turtacn/InfringeScope/internal/interfaces/http"
	"github.com/turtacn/InfringeScope/internal/interfaces/http/handlers"
	"github.com/turtacn/InfringeScope/internal/interfaces/http/middleware"
)

// app owns every long-lived component and tears them down in reverse order.
type app struct {
	cfg      *config.Config
	logger   logging.Logger
	corpus   *corpus.Store
	http     *httpserver.Server
	grpc     *grpcserver.Server
	limiter  *middleware.TokenBucketLimiter
	checkers []handlers.HealthChecker

	mu      sync.Mutex
	closers []namedCloser
}

type namedCloser struct {
	name string
	fn   func(ctx context.Context) error
}

func (a *app) onShutdown(name string, fn func(ctx context.Context) error) {
	a.mu.Lock()
	a.closers = append(a.closers, namedCloser{name: name, fn: fn})
	a.mu.Unlock()
}

// newApp builds the component graph. On error everything constructed so far
// is released.
func newApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.close(context.Background())
		}
	}()

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     Version,
		SampleRatio: cfg.Tracing.SampleRatio,
		Exporter:    cfg.Tracing.Exporter,
		Endpoint:    cfg.Tracing.Endpoint,
	})
	if err != nil {
		return nil, err
	}
	a.onShutdown("tracing", shutdownTracing)

	// ── Metrics ──────────────────────────────────────────────────────────────
	var (
		metrics   *prometheus.AppMetrics
		collector prometheus.MetricsCollector
	)
	if cfg.Metrics.Enabled {
		collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
			ConstLabels:          map[string]string{"version": Version},
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		metrics = prometheus.NewAppMetrics(collector)
	}

	// ── Redis (optional) ─────────────────────────────────────────────────────
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redis.NewClient(redis.Config{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			KeyPrefix:    cfg.Redis.KeyPrefix,
		}, logger.Named("redis"))
		if err != nil {
			return nil, err
		}
		a.onShutdown("redis", func(context.Context) error { return rdb.Close() })
		a.checkers = append(a.checkers, handlers.CheckFunc("redis", rdb.Ping))
	}

	// ── Corpus ───────────────────────────────────────────────────────────────
	if err := a.buildCorpus(ctx, metrics); err != nil {
		return nil, err
	}

	// ── Events ───────────────────────────────────────────────────────────────
	publisher, err := a.buildPublisher(ctx)
	if err != nil {
		return nil, err
	}

	// ── Oracle ───────────────────────────────────────────────────────────────
	scorer, err := buildOracle(cfg, rdb, metrics, logger)
	if err != nil {
		return nil, err
	}
	prompts, err := appanalysis.NewPromptBuilder(cfg.Oracle.Model, cfg.Oracle.PromptBudgets, cfg.Oracle.DefaultPromptBudget)
	if err != nil {
		return nil, err
	}

	// ── Reports ──────────────────────────────────────────────────────────────
	repo, err := a.buildReportStore(ctx, rdb)
	if err != nil {
		return nil, err
	}

	// ── Services and transport ───────────────────────────────────────────────
	searchSvc := search.NewService(a.corpus,
		search.WithMetrics(metrics),
		search.WithLogger(logger.Named("search")))
	analysisSvc := appanalysis.NewService(scorer, prompts, a.corpus,
		appanalysis.WithLogger(logger.Named("analysis")),
		appanalysis.WithMetrics(metrics),
		appanalysis.WithPublisher(publisher),
		appanalysis.WithTimeout(cfg.Oracle.Timeout))
	reportSvc := reporting.NewService(repo, a.corpus,
		reporting.WithLogger(logger.Named("reports")),
		reporting.WithMetrics(metrics),
		reporting.WithPublisher(publisher),
		reporting.WithBackend(cfg.Reports.Backend))

	gin.SetMode(cfg.Server.Mode)
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.Server.AllowedOrigins
	routerCfg := httpserver.RouterConfig{
		SearchHandler:   handlers.NewSearchHandler(searchSvc),
		AnalysisHandler: handlers.NewAnalysisHandler(analysisSvc),
		ReportHandler:   handlers.NewReportHandler(reportSvc),
		HealthHandler:   handlers.NewHealthHandler(Version, a.checkers...),
		CORS:            cors,
		Logger:          logger.Named("http"),
		Metrics:         metrics,
		MetricsPath:     cfg.Metrics.Path,
	}
	if collector != nil {
		routerCfg.MetricsHandler = collector.Handler()
	}
	if cfg.RateLimit.Enabled {
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.BurstSize = cfg.RateLimit.Burst
		if cfg.RateLimit.CleanupInterval > 0 {
			rl.CleanupInterval = cfg.RateLimit.CleanupInterval
		}
		routerCfg.RateLimit = rl
		a.limiter = middleware.NewTokenBucketLimiter(rl.RequestsPerSecond, rl.BurstSize, rl.CleanupInterval)
		a.onShutdown("rate limiter", func(context.Context) error {
			a.limiter.Stop()
			return nil
		})
		routerCfg.RateLimiter = a.limiter
	}

	a.http = httpserver.NewServer(httpserver.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		MaxBodySize:     cfg.Server.MaxBodySize,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Tracing:         cfg.Tracing.Enabled,
	}, httpserver.NewRouter(routerCfg), logger.Named("http"))

	if cfg.GRPC.Enabled {
		checkers := make([]grpcserver.Checker, 0, len(a.checkers))
		for _, c := range a.checkers {
			checkers = append(checkers, c)
		}
		a.grpc, err = grpcserver.NewServer(grpcserver.Config{
			Host:          cfg.Server.Host,
			Port:          cfg.GRPC.Port,
			Reflection:    cfg.GRPC.Reflection,
			ProbeInterval: cfg.GRPC.ProbeInterval,
		}, grpcserver.WithLogger(logger.Named("grpc")),
			grpcserver.WithCheckers(checkers...),
			grpcserver.WithGracefulTimeout(cfg.Server.ShutdownTimeout))
		if err != nil {
			return nil, err
		}
	}
	return a, nil
}

// buildCorpus loads the corpus once and, for file sources, watches it.
func (a *app) buildCorpus(ctx context.Context, metrics *prometheus.AppMetrics) error {
	cfg := a.cfg
	var src corpus.Source
	switch cfg.Corpus.Source {
	case "minio":
		mc, err := minio.NewClient(ctx, minio.Config{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.Bucket,
			UseSSL:    cfg.MinIO.UseSSL,
			Region:    cfg.MinIO.Region,
		}, a.logger.Named("minio"))
		if err != nil {
			return err
		}
		a.checkers = append(a.checkers, handlers.CheckFunc("minio", mc.HealthCheck))
		src = corpus.NewObjectSource(mc, cfg.MinIO.PatentsKey, cfg.MinIO.CompaniesKey)
	default:
		src = corpus.NewFileSource(cfg.Corpus.PatentsPath, cfg.Corpus.CompaniesPath)
	}

	a.corpus = corpus.NewStore(src,
		corpus.WithLogger(a.logger.Named("corpus")),
		corpus.WithReloadHook(func(s *corpus.Snapshot) {
			metrics.RecordCorpus(len(s.Patents()), len(s.Companies()), s.Skipped())
		}))
	a.corpus.Load(ctx)
	a.checkers = append(a.checkers, handlers.CheckFunc("corpus", a.corpus.HealthCheck))

	if fs, ok := src.(*corpus.FileSource); ok && cfg.Corpus.Watch {
		watchCtx, cancel := context.WithCancel(context.Background())
		if err := a.corpus.Watch(watchCtx, fs.Paths()...); err != nil {
			cancel()
			a.logger.Warn("corpus hot reload disabled", logging.Err(err))
			return nil
		}
		a.onShutdown("corpus-watch", func(context.Context) error { cancel(); return nil })
	}
	return nil
}

// buildPublisher returns a Kafka producer when enabled, otherwise a no-op.
func (a *app) buildPublisher(ctx context.Context) (event.Publisher, error) {
	cfg := a.cfg.Kafka
	if !cfg.Enabled {
		return event.NopPublisher{}, nil
	}
	acks := "one"
	switch cfg.RequiredAcks {
	case 0:
		acks = "none"
	case -1:
		acks = "all"
	}
	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      cfg.Brokers,
		TopicPrefix:  cfg.TopicPrefix,
		Acks:         acks,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, a.logger.Named("kafka"))
	if err != nil {
		return nil, err
	}
	a.onShutdown("kafka", func(context.Context) error { return producer.Close() })

	topics, err := kafka.NewTopicManager(cfg.Brokers, a.logger.Named("kafka"))
	if err != nil {
		a.logger.Warn("kafka topic provisioning skipped", logging.Err(err))
		return producer, nil
	}
	defer topics.Close()
	if err := topics.EnsureTopics(ctx, kafka.DefaultTopics(cfg.TopicPrefix)); err != nil {
		a.logger.Warn("kafka topic provisioning failed", logging.Err(err))
	}
	return producer, nil
}

// buildReportStore opens the configured report backend.
func (a *app) buildReportStore(ctx context.Context, rdb *redis.Client) (report.Repository, error) {
	cfg := a.cfg
	switch cfg.Reports.Backend {
	case "postgres":
		conn, err := postgres.NewConnection(ctx, postgres.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			Database:        cfg.Database.DBName,
			Username:        cfg.Database.User,
			Password:        cfg.Database.Password,
			SSLMode:         cfg.Database.SSLMode,
			MaxOpenConns:    cfg.Database.MaxConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		}, a.logger.Named("postgres"))
		if err != nil {
			return nil, err
		}
		a.onShutdown("postgres", func(context.Context) error { return conn.Close() })
		if cfg.Database.AutoMigrate {
			if err := conn.Migrate(); err != nil {
				return nil, err
			}
		}
		a.checkers = append(a.checkers, handlers.CheckFunc("postgres", conn.HealthCheck))
		return postgres.NewReportRepository(conn, a.logger.Named("postgres")), nil

	default:
		opts := []jsonfile.Option{jsonfile.WithLogger(a.logger.Named("reports"))}
		if rdb != nil {
			opts = append(opts, jsonfile.WithLocker(redis.NewMutex(rdb, "reports:"+cfg.Reports.Path,
				redis.WithLockTTL(cfg.Reports.LockTTL))))
		}
		return jsonfile.New(cfg.Reports.Path, opts...), nil
	}
}

// buildOracle selects the backend and wraps it with caching and the
// circuit breaker.
func buildOracle(cfg *config.Config, rdb *redis.Client, metrics *prometheus.AppMetrics, logger logging.Logger) (analysis.Oracle, error) {
	oc := cfg.Oracle
	log := logger.Named("oracle")

	var next analysis.Oracle
	switch oc.Backend {
	case "anthropic":
		c, err := oracle.NewAnthropicClient(oracle.AnthropicConfig{
			APIKey:    oc.APIKey,
			Model:     oc.Model,
			MaxTokens: oc.MaxTokens,
		}, log)
		if err != nil {
			return nil, err
		}
		next = c
	default:
		c, err := oracle.NewOllamaClient(oracle.OllamaConfig{
			Host:    oc.Host,
			Model:   oc.Model,
			Timeout: oc.Timeout,
		}, nil, log)
		if err != nil {
			return nil, err
		}
		next = c
	}

	opts := []oracle.ResilientOption{oracle.WithLogger(log), oracle.WithMetrics(metrics)}
	if oc.Breaker.Enabled {
		opts = append(opts, oracle.WithBreaker(oracle.BreakerSettings{
			MaxRequests:      oc.Breaker.MaxRequests,
			Interval:         oc.Breaker.Interval,
			Timeout:          oc.Breaker.Timeout,
			FailureThreshold: oc.Breaker.FailureThreshold,
		}))
	}
	if oc.Cache.Enabled && rdb != nil {
		cache := redis.NewCache(rdb, logger.Named("cache"), redis.WithNamespace("oracle"))
		opts = append(opts, oracle.WithCache(cache, oc.Cache.TTL))
	}
	return oracle.NewResilient(next, oc.Backend, oc.Model, opts...), nil
}

// run serves until ctx is cancelled or a server fails, then shuts down.
func (a *app) run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(a.http.Start)
	if a.grpc != nil {
		g.Go(a.grpc.Start)
	}
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down servers")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := a.http.Stop(shutdownCtx); err != nil {
			a.logger.Error("HTTP server shutdown failed", logging.Err(err))
		}
		if a.grpc != nil {
			if err := a.grpc.Stop(shutdownCtx); err != nil {
				a.logger.Error("gRPC server shutdown failed", logging.Err(err))
			}
		}
		a.close(shutdownCtx)
		return nil
	})
	err := g.Wait()
	a.logger.Info("server exited")
	return err
}

// reload applies the hot-reloadable parts of a changed configuration.
func (a *app) reload(next *config.Config) {
	logging.SetLevel(next.Log.Level)
	fields := []logging.Field{logging.String("log_level", next.Log.Level)}
	if a.limiter != nil && next.RateLimit.Enabled {
		a.limiter.SetLimit(next.RateLimit.RequestsPerSecond, next.RateLimit.Burst)
		fields = append(fields,
			logging.Float64("rate_limit_rps", next.RateLimit.RequestsPerSecond),
			logging.Int("rate_limit_burst", next.RateLimit.Burst))
	}
	a.logger.Info("configuration reloaded", fields...)
}

// close releases components in reverse construction order.
func (a *app) close(ctx context.Context) {
	a.mu.Lock()
	closers := a.closers
	a.closers = nil
	a.mu.Unlock()

	for i := len(closers) - 1; i >= 0; i-- {
		c := closers[i]
		if err := c.fn(ctx); err != nil {
			a.logger.Warn("component shutdown failed", logging.String("component", c.name), logging.Err(err))
		}
	}
}

//Personal.AI order the ending
