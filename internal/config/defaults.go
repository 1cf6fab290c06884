package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerHost = "0.0.0.0"
	DefaultServerPort = 8000
	DefaultServerMode = "release"

	DefaultGRPCPort = 9090

	DefaultCorpusSource  = "file"
	DefaultPatentsPath   = "data/patents.json"
	DefaultCompaniesPath = "data/company_products.json"

	DefaultMinIOPatentsKey   = "patents.json"
	DefaultMinIOCompaniesKey = "company_products.json"

	DefaultOracleBackend = "ollama"
	DefaultOracleHost    = "http://ollama:11434"
	DefaultOracleModel   = "phi"
	DefaultOracleTimeout = 300 * time.Second
	DefaultMaxTokens     = 4096
	DefaultPromptBudget  = 2048

	DefaultReportsBackend = "jsonfile"
	DefaultReportsPath    = "data/reports.json"

	DefaultDBPort     = 5432
	DefaultDBName     = "infringescope"
	DefaultDBMaxConns = 10

	DefaultRedisKeyPrefix = "infringescope:"

	DefaultKafkaTopicPrefix = "infringescope."

	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "infringescope"

	DefaultTracingServiceName = "infringescope"

	DefaultRateLimitRPS   = 20
	DefaultRateLimitBurst = 40

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// defaultPromptBudgets are the per-model prompt character budgets.
var defaultPromptBudgets = map[string]int{
	"phi":     2048,
	"mistral": 8192,
}

// DefaultPromptBudgets returns a copy of the built-in per-model budgets.
func DefaultPromptBudgets() map[string]int {
	out := make(map[string]int, len(defaultPromptBudgets))
	for k, v := range defaultPromptBudgets {
		out[k] = v
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// ApplyDefaults
// ─────────────────────────────────────────────────────────────────────────────

// ApplyDefaults fills every zero-value field in cfg with the platform default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins. Booleans cannot be
// told apart from "unset" and are defaulted through viper instead.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 120 * time.Second
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = 1 << 20
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}

	// ── gRPC ──────────────────────────────────────────────────────────────────
	if cfg.GRPC.Port == 0 {
		cfg.GRPC.Port = DefaultGRPCPort
	}
	if cfg.GRPC.ProbeInterval == 0 {
		cfg.GRPC.ProbeInterval = 15 * time.Second
	}

	// ── Corpus ────────────────────────────────────────────────────────────────
	if cfg.Corpus.Source == "" {
		cfg.Corpus.Source = DefaultCorpusSource
	}
	if cfg.Corpus.PatentsPath == "" {
		cfg.Corpus.PatentsPath = DefaultPatentsPath
	}
	if cfg.Corpus.CompaniesPath == "" {
		cfg.Corpus.CompaniesPath = DefaultCompaniesPath
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.PatentsKey == "" {
		cfg.MinIO.PatentsKey = DefaultMinIOPatentsKey
	}
	if cfg.MinIO.CompaniesKey == "" {
		cfg.MinIO.CompaniesKey = DefaultMinIOCompaniesKey
	}

	// ── Oracle ────────────────────────────────────────────────────────────────
	if cfg.Oracle.Backend == "" {
		cfg.Oracle.Backend = DefaultOracleBackend
	}
	if cfg.Oracle.Host == "" {
		cfg.Oracle.Host = DefaultOracleHost
	}
	if cfg.Oracle.Model == "" {
		cfg.Oracle.Model = DefaultOracleModel
	}
	if cfg.Oracle.Timeout == 0 {
		cfg.Oracle.Timeout = DefaultOracleTimeout
	}
	if cfg.Oracle.MaxTokens == 0 {
		cfg.Oracle.MaxTokens = DefaultMaxTokens
	}
	if len(cfg.Oracle.PromptBudgets) == 0 {
		cfg.Oracle.PromptBudgets = DefaultPromptBudgets()
	}
	if cfg.Oracle.DefaultPromptBudget == 0 {
		cfg.Oracle.DefaultPromptBudget = DefaultPromptBudget
	}
	if cfg.Oracle.Breaker.MaxRequests == 0 {
		cfg.Oracle.Breaker.MaxRequests = 1
	}
	if cfg.Oracle.Breaker.Interval == 0 {
		cfg.Oracle.Breaker.Interval = 60 * time.Second
	}
	if cfg.Oracle.Breaker.Timeout == 0 {
		cfg.Oracle.Breaker.Timeout = 30 * time.Second
	}
	if cfg.Oracle.Breaker.FailureThreshold == 0 {
		cfg.Oracle.Breaker.FailureThreshold = 5
	}
	if cfg.Oracle.Cache.TTL == 0 {
		cfg.Oracle.Cache.TTL = 24 * time.Hour
	}

	// The write deadline must outlive the slowest oracle call.
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = cfg.Oracle.Timeout + 10*time.Second
	}

	// ── Reports ───────────────────────────────────────────────────────────────
	if cfg.Reports.Backend == "" {
		cfg.Reports.Backend = DefaultReportsBackend
	}
	if cfg.Reports.Path == "" {
		cfg.Reports.Path = DefaultReportsPath
	}
	if cfg.Reports.LockTTL == 0 {
		cfg.Reports.LockTTL = 10 * time.Second
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = cfg.Database.MaxConns / 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = time.Hour
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 10 * time.Minute
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	// DB is an int; 0 is a valid explicit value so we cannot distinguish "not
	// set" from "set to 0".  We leave it as-is (0 is also the default).
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 10
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 3 * time.Second
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if cfg.Kafka.TopicPrefix == "" {
		cfg.Kafka.TopicPrefix = DefaultKafkaTopicPrefix
	}
	if cfg.Kafka.BatchSize == 0 {
		cfg.Kafka.BatchSize = 100
	}
	if cfg.Kafka.BatchTimeout == 0 {
		cfg.Kafka.BatchTimeout = 100 * time.Millisecond
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = 10 * time.Second
	}
	if cfg.Kafka.RequiredAcks == 0 {
		cfg.Kafka.RequiredAcks = 1
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	// ── Tracing ───────────────────────────────────────────────────────────────
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Tracing.Exporter == "" {
		cfg.Tracing.Exporter = "stdout"
	}
	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = 1
	}

	// ── Rate limiting ─────────────────────────────────────────────────────────
	if cfg.RateLimit.RequestsPerSecond == 0 {
		cfg.RateLimit.RequestsPerSecond = DefaultRateLimitRPS
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = DefaultRateLimitBurst
	}
	if cfg.RateLimit.CleanupInterval == 0 {
		cfg.RateLimit.CleanupInterval = 5 * time.Minute
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

//Personal.AI order the ending
