// Package config provides configuration loading, defaults, and validation for
// InfringeScope.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "INFRINGESCOPE"

var (
	// ErrConfigFileNotFound is returned when the config file does not exist.
	ErrConfigFileNotFound = errors.New("config: file not found")
	// ErrConfigParseError is returned when the config file cannot be parsed.
	ErrConfigParseError = errors.New("config: parse error")
)

// legacyEnv binds the variable names used by earlier deployments of the
// analysis service. The prefixed form always takes precedence.
var legacyEnv = map[string]string{
	"oracle.host":    "OLLAMA_HOST",
	"oracle.model":   "MODEL_NAME",
	"oracle.timeout": "OLLAMA_TIMEOUT",
}

// newViper builds a pre-configured Viper instance: YAML file type,
// INFRINGESCOPE_ env prefix, automatic env binding, and a key replacer that
// maps "." → "_" so that nested keys like "oracle.host" resolve to
// "INFRINGESCOPE_ORACLE_HOST".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for key, legacy := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, prefixed, legacy)
	}
	registerKeys(v)
	return v
}

// registerKeys declares every key viper should look up in the environment.
// AutomaticEnv only consults variables for keys viper already knows about, so
// without this an env-only deployment would be ignored on Unmarshal. Boolean
// defaults live here since ApplyDefaults cannot tell false from unset.
func registerKeys(v *viper.Viper) {
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("oracle.breaker.enabled", true)
	v.SetDefault("database.auto_migrate", true)

	for _, key := range []string{
		"server.host", "server.port", "server.mode", "server.read_timeout", "server.write_timeout",
		"server.idle_timeout", "server.max_body_size", "server.shutdown_timeout", "server.allowed_origins",
		"grpc.enabled", "grpc.port", "grpc.reflection", "grpc.probe_interval",
		"log.level", "log.format", "log.output_paths", "log.error_output_paths",
		"corpus.source", "corpus.patents_path", "corpus.companies_path", "corpus.watch",
		"minio.endpoint", "minio.access_key", "minio.secret_key", "minio.bucket", "minio.use_ssl",
		"minio.region", "minio.patents_key", "minio.companies_key",
		"oracle.backend", "oracle.api_key", "oracle.max_tokens", "oracle.default_prompt_budget",
		"oracle.breaker.max_requests", "oracle.breaker.interval", "oracle.breaker.timeout",
		"oracle.breaker.failure_threshold", "oracle.cache.enabled", "oracle.cache.ttl",
		"reports.backend", "reports.path", "reports.lock_ttl",
		"database.host", "database.port", "database.user", "database.password", "database.db_name",
		"database.ssl_mode", "database.max_conns", "database.max_idle_conns",
		"database.conn_max_lifetime", "database.conn_max_idle_time",
		"redis.addr", "redis.password", "redis.db", "redis.pool_size", "redis.min_idle_conns",
		"redis.dial_timeout", "redis.read_timeout", "redis.write_timeout", "redis.key_prefix",
		"kafka.enabled", "kafka.brokers", "kafka.topic_prefix", "kafka.batch_size",
		"kafka.batch_timeout", "kafka.write_timeout", "kafka.required_acks",
		"metrics.path", "metrics.namespace",
		"tracing.enabled", "tracing.service_name", "tracing.sample_ratio",
		"tracing.exporter", "tracing.endpoint",
		"ratelimit.enabled", "ratelimit.requests_per_second", "ratelimit.burst", "ratelimit.cleanup_interval",
	} {
		_ = v.BindEnv(key)
	}
}

// Load reads the YAML file at configPath, merges any INFRINGESCOPE_*
// environment variable overrides, applies defaults for unset fields, and
// validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound), errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("%w: %q: %v", ErrConfigFileNotFound, configPath, err)
		default:
			return nil, fmt.Errorf("%w: %q: %v", ErrConfigParseError, configPath, err)
		}
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from environment variables, with no
// config file required.
//
// Environment variable naming convention:
//
//	INFRINGESCOPE_<SECTION>_<FIELD>   e.g.  INFRINGESCOPE_ORACLE_HOST
//
// OLLAMA_HOST, MODEL_NAME and OLLAMA_TIMEOUT (seconds) are also honoured.
func LoadFromEnv() (*Config, error) {
	v := newViper()
	return unmarshalAndFinalize(v)
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		secondsToDurationHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(cfg, hook); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal configuration: %v", ErrConfigParseError, err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// secondsToDurationHook reads bare numbers as seconds when the target is a
// time.Duration. OLLAMA_TIMEOUT has always been given that way ("300.0").
func secondsToDurationHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != durationType || from == durationType {
		return data, nil
	}
	switch from.Kind() {
	case reflect.String:
		secs, err := strconv.ParseFloat(data.(string), 64)
		if err != nil {
			return data, nil
		}
		return time.Duration(secs * float64(time.Second)), nil
	case reflect.Int, reflect.Int32, reflect.Int64:
		return time.Duration(reflect.ValueOf(data).Int()) * time.Second, nil
	case reflect.Float32, reflect.Float64:
		return time.Duration(reflect.ValueOf(data).Float() * float64(time.Second)), nil
	}
	return data, nil
}

// Watch monitors configPath for changes and invokes onChange with the newly
// parsed Config whenever the file is modified on disk. Only the safe subset
// (log level, rate limits) should be applied at runtime by the callback.
//
// Watch is non-blocking; viper runs the fsnotify loop in its own goroutine.
// An invalid new config is reported through onError and onChange is skipped.
func Watch(configPath string, onChange func(*Config), onError func(error)) {
	v := newViper()
	v.SetConfigFile(configPath)

	// Callers are expected to have called Load already.
	_ = v.ReadInConfig()

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

// MustLoad is a convenience wrapper around Load that panics on any error.
// It is intended for use in main() where a config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
