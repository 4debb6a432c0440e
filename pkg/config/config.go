package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Application settings
type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	Analytics AnalyticsConfig
	Cache     CacheConfig
	Session   SessionConfig
	Export    ExportConfig
}

// Server settings
type ServerConfig struct {
	Port           string
	HandlerTimeout time.Duration
}

// Remote aggregation service settings
type AnalyticsConfig struct {
	BaseURL            string
	RequestTimeout     time.Duration
	RateLimitPerSecond int
	RateLimitBurst     int
}

// Range rollup cache settings
type CacheConfig struct {
	Enabled  bool
	TTL      time.Duration
	MaxItems int
}

// Dashboard session lifetime settings
type SessionConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

type ExportConfig struct {
	SinkURL    string
	SinkSecret string
}

// Logging settings
type LoggingConfig struct {
	Level string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// a missing .env is fine; real environments set variables directly
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			HandlerTimeout: getDurationEnv("HANDLER_TIMEOUT", "30s"),
		},
		Analytics: AnalyticsConfig{
			BaseURL:            getEnv("ANALYTICS_BASE_URL", "http://localhost:3000/api"),
			RequestTimeout:     getDurationEnv("REQUEST_TIMEOUT", "10s"),
			RateLimitPerSecond: getIntEnv("RATE_LIMIT_PER_SECOND", 20),
			RateLimitBurst:     getIntEnv("RATE_LIMIT_BURST", 10),
		},
		Cache: CacheConfig{
			Enabled:  getBoolEnv("RANGE_CACHE_ENABLED", true),
			TTL:      getDurationEnv("RANGE_CACHE_TTL", "60s"),
			MaxItems: getIntEnv("RANGE_CACHE_MAX_ITEMS", 256),
		},
		Session: SessionConfig{
			IdleTTL:       getDurationEnv("SESSION_IDLE_TTL", "30m"),
			SweepInterval: getDurationEnv("SESSION_SWEEP_INTERVAL", "1m"),
		},
		Export: ExportConfig{
			SinkURL:    getEnv("SINK_URL", ""),
			SinkSecret: getEnv("SINK_SECRET", ""),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	parsed, err := url.Parse(c.Analytics.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("ANALYTICS_BASE_URL must be an absolute URL, got %q", c.Analytics.BaseURL)
	}
	if c.Analytics.RateLimitPerSecond <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_SECOND must be positive")
	}
	if c.Session.IdleTTL <= 0 || c.Session.SweepInterval <= 0 {
		return fmt.Errorf("SESSION_IDLE_TTL and SESSION_SWEEP_INTERVAL must be positive")
	}
	if c.Cache.Enabled && c.Cache.MaxItems <= 0 {
		return fmt.Errorf("RANGE_CACHE_MAX_ITEMS must be positive when the cache is enabled")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
