// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	API       APIConfig       `mapstructure:"api"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Session   SessionConfig   `mapstructure:"session"`
	Features  FeaturesConfig  `mapstructure:"features"`
	UI        UIConfig        `mapstructure:"ui"`
	Health    HealthConfig    `mapstructure:"health"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// APIConfig points the client at the NaijaTrade backend.
type APIConfig struct {
	BaseURL           string               `mapstructure:"base_url"`
	Timeout           time.Duration        `mapstructure:"timeout"`
	RequestsPerMinute int                  `mapstructure:"requests_per_minute"`
	CircuitBreaker    CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// CircuitBreakerConfig configures the breaker around API calls.
type CircuitBreakerConfig struct {
	Enabled             bool          `mapstructure:"enabled"`
	ConsecutiveFailures uint32        `mapstructure:"consecutive_failures"`
	OpenTimeout         time.Duration `mapstructure:"open_timeout"`
}

// CacheConfig holds query cache defaults.
type CacheConfig struct {
	StaleTime       time.Duration `mapstructure:"stale_time"`
	RefetchInterval time.Duration `mapstructure:"refetch_interval"`
	GCTime          time.Duration `mapstructure:"gc_time"`
}

// SessionConfig controls token persistence and refresh.
type SessionConfig struct {
	Persist         bool   `mapstructure:"persist"`
	StorePath       string `mapstructure:"store_path"`
	RefreshSchedule string `mapstructure:"refresh_schedule"`
}

// FeaturesConfig holds optional third-party identifiers.
type FeaturesConfig struct {
	AdPublisherID  string `mapstructure:"ad_publisher_id"`
	GoogleClientID string `mapstructure:"google_client_id"`
	PushURL        string `mapstructure:"push_url"`
}

// AdsEnabled reports whether the ad slot capability is configured.
func (f FeaturesConfig) AdsEnabled() bool { return f.AdPublisherID != "" }

// GoogleSignInEnabled reports whether Google sign-in is configured.
func (f FeaturesConfig) GoogleSignInEnabled() bool { return f.GoogleClientID != "" }

// UIConfig holds view defaults.
type UIConfig struct {
	DefaultCrypto string `mapstructure:"default_crypto"`
	TUIMode       bool   `mapstructure:"-"` // set at runtime from flags
}

// HealthConfig configures the local health endpoint.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceProvider  string `mapstructure:"trace_provider"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.naijatrade")
	}

	v.SetEnvPrefix("NT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Session.StorePath = os.ExpandEnv(cfg.Session.StorePath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("app.name", "NT_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "NT_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "NT_LOG_LEVEL", "LOG_LEVEL")

	v.BindEnv("api.base_url", "NT_API_URL", "VITE_API_URL")
	v.BindEnv("api.timeout", "NT_API_TIMEOUT")
	v.BindEnv("api.requests_per_minute", "NT_API_RPM")

	v.BindEnv("session.store_path", "NT_SESSION_PATH")

	v.BindEnv("features.ad_publisher_id", "NT_ADSENSE_CLIENT", "VITE_ADSENSE_CLIENT")
	v.BindEnv("features.google_client_id", "NT_GOOGLE_CLIENT_ID", "VITE_GOOGLE_CLIENT_ID")
	v.BindEnv("features.push_url", "NT_PUSH_URL")

	v.BindEnv("telemetry.enabled", "NT_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "NT_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "NT_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("telemetry.otlp_headers", "NT_OTEL_HEADERS", "OTEL_EXPORTER_OTLP_HEADERS")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "naijatrade")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("api.base_url", "http://localhost:8000/api/v1")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("api.requests_per_minute", 0)
	v.SetDefault("api.circuit_breaker.enabled", true)
	v.SetDefault("api.circuit_breaker.consecutive_failures", 5)
	v.SetDefault("api.circuit_breaker.open_timeout", "30s")

	v.SetDefault("cache.stale_time", "30s")
	v.SetDefault("cache.refetch_interval", "60s")
	v.SetDefault("cache.gc_time", "5m")

	v.SetDefault("session.persist", true)
	v.SetDefault("session.store_path", "$HOME/.naijatrade/session.db")
	v.SetDefault("session.refresh_schedule", "@every 20m")

	v.SetDefault("ui.default_crypto", "USDT")

	v.SetDefault("health.enabled", false)
	v.SetDefault("health.port", 8081)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "naijatrade")
	v.SetDefault("telemetry.trace_provider", "zipkin")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.API.RequestsPerMinute < 0 {
		return fmt.Errorf("api.requests_per_minute cannot be negative")
	}
	if c.Cache.StaleTime < 0 || c.Cache.RefetchInterval < 0 || c.Cache.GCTime < 0 {
		return fmt.Errorf("cache durations cannot be negative")
	}
	if c.Session.Persist && c.Session.StorePath == "" {
		return fmt.Errorf("session.store_path is required when session.persist is set")
	}
	if c.Features.PushURL != "" {
		pu, err := url.Parse(c.Features.PushURL)
		if err != nil || (pu.Scheme != "ws" && pu.Scheme != "wss") {
			return fmt.Errorf("features.push_url must be a ws:// or wss:// URL, got %q", c.Features.PushURL)
		}
	}
	switch c.Telemetry.TraceProvider {
	case "", "zipkin", "otlp-grpc", "otlp-http", "console":
	default:
		return fmt.Errorf("unknown telemetry.trace_provider %q", c.Telemetry.TraceProvider)
	}
	return nil
}
