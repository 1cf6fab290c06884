// Package config defines all configuration structures for InfringeScope.
// Only plain data types and validation live here.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/InfringeScope/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// GRPCConfig holds the health-check gRPC listener.
type GRPCConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	Port       int  `mapstructure:"port"`
	Reflection bool `mapstructure:"reflection"`
	// ProbeInterval is how often component checks refresh the serving status.
	ProbeInterval time.Duration `mapstructure:"probe_interval"`
}

// CorpusConfig selects where the patent and company corpora are loaded from.
type CorpusConfig struct {
	Source        string `mapstructure:"source"` // "file" | "minio"
	PatentsPath   string `mapstructure:"patents_path"`
	CompaniesPath string `mapstructure:"companies_path"`
	// Watch reloads file sources when they change on disk.
	Watch bool `mapstructure:"watch"`
}

// MinIOConfig holds MinIO / S3-compatible object-storage parameters used by
// the minio corpus source.
type MinIOConfig struct {
	Endpoint     string `mapstructure:"endpoint"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	Bucket       string `mapstructure:"bucket"`
	UseSSL       bool   `mapstructure:"use_ssl"`
	Region       string `mapstructure:"region"`
	PatentsKey   string `mapstructure:"patents_key"`
	CompaniesKey string `mapstructure:"companies_key"`
}

// BreakerConfig tunes the oracle circuit breaker.
type BreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
}

// OracleCacheConfig controls caching of oracle responses in Redis.
type OracleCacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// OracleConfig selects and tunes the scoring oracle.
type OracleConfig struct {
	Backend string        `mapstructure:"backend"` // "ollama" | "anthropic"
	Host    string        `mapstructure:"host"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
	APIKey  string        `mapstructure:"api_key"`
	// MaxTokens bounds the response length for backends that require it.
	MaxTokens int `mapstructure:"max_tokens"`
	// PromptBudgets maps a model name to the maximum prompt length in
	// characters. Models not listed use DefaultPromptBudget.
	PromptBudgets       map[string]int    `mapstructure:"prompt_budgets"`
	DefaultPromptBudget int               `mapstructure:"default_prompt_budget"`
	Breaker             BreakerConfig     `mapstructure:"breaker"`
	Cache               OracleCacheConfig `mapstructure:"cache"`
}

// ReportsConfig selects the report store backend.
type ReportsConfig struct {
	Backend string `mapstructure:"backend"` // "jsonfile" | "postgres"
	Path    string `mapstructure:"path"`
	// LockTTL bounds how long the distributed write lock is held.
	LockTTL time.Duration `mapstructure:"lock_ttl"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN renders the connection string accepted by the pgx stdlib driver.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

// RedisConfig holds Redis connection parameters. Redis is optional; an empty
// Addr disables the distributed lock and the oracle cache.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds event publishing parameters.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	TopicPrefix  string        `mapstructure:"topic_prefix"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	RequiredAcks int           `mapstructure:"required_acks"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

// TracingConfig controls OpenTelemetry tracing.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
	Exporter    string  `mapstructure:"exporter"` // stdout | otlp
	Endpoint    string  `mapstructure:"endpoint"` // otlp collector host:port
}

// RateLimitConfig configures per-client token buckets.
type RateLimitConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure. Every infrastructure component
// and application service reads its settings from the relevant sub-struct.
type Config struct {
	Server    ServerConfig      `mapstructure:"server"`
	GRPC      GRPCConfig        `mapstructure:"grpc"`
	Log       logging.LogConfig `mapstructure:"log"`
	Corpus    CorpusConfig      `mapstructure:"corpus"`
	MinIO     MinIOConfig       `mapstructure:"minio"`
	Oracle    OracleConfig      `mapstructure:"oracle"`
	Reports   ReportsConfig     `mapstructure:"reports"`
	Database  DatabaseConfig    `mapstructure:"database"`
	Redis     RedisConfig       `mapstructure:"redis"`
	Kafka     KafkaConfig       `mapstructure:"kafka"`
	Metrics   MetricsConfig     `mapstructure:"metrics"`
	Tracing   TracingConfig     `mapstructure:"tracing"`
	RateLimit RateLimitConfig   `mapstructure:"ratelimit"`
}

// PromptBudget returns the prompt character budget for model.
func (o OracleConfig) PromptBudget(model string) int {
	if b, ok := o.PromptBudgets[model]; ok && b > 0 {
		return b
	}
	return o.DefaultPromptBudget
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}
	if c.GRPC.Enabled && (c.GRPC.Port < 1 || c.GRPC.Port > 65535) {
		return fmt.Errorf("config: grpc.port %d is out of range [1, 65535]", c.GRPC.Port)
	}

	// Corpus
	switch c.Corpus.Source {
	case "file":
		if c.Corpus.PatentsPath == "" || c.Corpus.CompaniesPath == "" {
			return fmt.Errorf("config: corpus.patents_path and corpus.companies_path are required for file source")
		}
	case "minio":
		if c.MinIO.Endpoint == "" || c.MinIO.Bucket == "" {
			return fmt.Errorf("config: minio.endpoint and minio.bucket are required for minio corpus source")
		}
	default:
		return fmt.Errorf("config: corpus.source %q is invalid; expected file|minio", c.Corpus.Source)
	}

	// Oracle
	switch c.Oracle.Backend {
	case "ollama":
		if c.Oracle.Host == "" {
			return fmt.Errorf("config: oracle.host is required for the ollama backend")
		}
	case "anthropic":
		if c.Oracle.APIKey == "" {
			return fmt.Errorf("config: oracle.api_key is required for the anthropic backend")
		}
	default:
		return fmt.Errorf("config: oracle.backend %q is invalid; expected ollama|anthropic", c.Oracle.Backend)
	}
	if c.Oracle.Model == "" {
		return fmt.Errorf("config: oracle.model is required")
	}
	if c.Oracle.Timeout <= 0 {
		return fmt.Errorf("config: oracle.timeout must be > 0, got %s", c.Oracle.Timeout)
	}
	if c.Oracle.DefaultPromptBudget < 1 {
		return fmt.Errorf("config: oracle.default_prompt_budget must be ≥ 1, got %d", c.Oracle.DefaultPromptBudget)
	}
	if c.Oracle.Cache.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("config: oracle.cache requires redis.addr")
	}

	// Reports
	switch c.Reports.Backend {
	case "jsonfile":
		if c.Reports.Path == "" {
			return fmt.Errorf("config: reports.path is required for the jsonfile backend")
		}
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("config: database.host is required for the postgres backend")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
		}
		if c.Database.User == "" {
			return fmt.Errorf("config: database.user is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("config: database.db_name is required")
		}
		if c.Database.MaxConns < 1 {
			return fmt.Errorf("config: database.max_conns must be ≥ 1, got %d", c.Database.MaxConns)
		}
	default:
		return fmt.Errorf("config: reports.backend %q is invalid; expected jsonfile|postgres", c.Reports.Backend)
	}

	// Redis
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
	}

	// Kafka
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
	}

	// Tracing
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("config: tracing.sample_ratio %v is out of range [0, 1]", c.Tracing.SampleRatio)
	}
	if c.Tracing.Enabled {
		switch c.Tracing.Exporter {
		case "stdout":
		case "otlp":
			if c.Tracing.Endpoint == "" {
				return fmt.Errorf("config: tracing.endpoint is required for the otlp exporter")
			}
		default:
			return fmt.Errorf("config: tracing.exporter must be stdout or otlp, got %q", c.Tracing.Exporter)
		}
	}

	// Rate limiting
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst < 1) {
		return fmt.Errorf("config: ratelimit.requests_per_second and ratelimit.burst must be positive")
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

//Personal.AI order the ending
