// Package config provides configuration parsing for forecastd.
//
// It handles both command-line flags and environment variables, with flags
// taking precedence over environment variables. The Config struct carries
// all runtime configuration for the forecast service: the HTTP listen
// address, the storage backend and its connection details, the tunable
// scenario-adjustment coefficient, the default confidence level, and
// logging configuration.
//
// Supported configuration sources (in order of precedence):
//  1. Command-line flags
//  2. Environment variables
//  3. Default values
package config

import (
	"flag"
	"fmt"
	"os"
	"time"
)

// Config holds all forecastd configuration.
type Config struct {
	Listen string

	Storage       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	ConfidenceLevel     float64
	ScenarioScaleApprox float64

	ArimaP int
	ArimaD int
	ArimaQ int

	BaselineURL             string
	BaselineMethod          string
	BaselineValuePath       string
	BaselineYearPath        string
	BaselineMonthPath       string
	BaselineRefreshInterval time.Duration

	LogFormat string
	LogLevel  string

	TLS         bool
	TLSCertFile string
	TLSKeyFile  string
	TLSCAFile   string
}

// ParseFlags parses command-line flags and environment variables into a
// Config. Flags take precedence; environment variables are the fallback.
func ParseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.Listen, "listen", getEnv("LISTEN", ":8081"), "HTTP listen address")

	flag.StringVar(&cfg.Storage, "storage", getEnv("STORAGE", "memory"), "Storage backend: memory or redis")
	flag.StringVar(&cfg.RedisAddr, "redis-addr", getEnv("REDIS_ADDR", "localhost:6379"), "Redis server address")
	flag.StringVar(&cfg.RedisPassword, "redis-password", getEnv("REDIS_PASSWORD", ""), "Redis password (optional)")
	flag.IntVar(&cfg.RedisDB, "redis-db", getEnvInt("REDIS_DB", 0), "Redis database number")
	flag.DurationVar(&cfg.RedisTTL, "redis-ttl", getEnvDuration("REDIS_TTL", 30*time.Minute), "Redis baseline TTL")

	flag.Float64Var(&cfg.ConfidenceLevel, "confidence-level", getEnvFloat("CONFIDENCE_LEVEL", 0.80), "Default forecast confidence level")
	flag.Float64Var(&cfg.ScenarioScaleApprox, "scenario-scale-approx", getEnvFloat("SCENARIO_SCALE_APPROX", 0.10), "Fraction of the total series a scale/remove adjustment's target is assumed to contribute")

	flag.IntVar(&cfg.ArimaP, "arima-p", getEnvInt("ARIMA_P", 2), "ARIMA AR order (fixed at 2, flag kept for operational visibility)")
	flag.IntVar(&cfg.ArimaD, "arima-d", getEnvInt("ARIMA_D", 1), "ARIMA differencing order (fixed at 1, flag kept for operational visibility)")
	flag.IntVar(&cfg.ArimaQ, "arima-q", getEnvInt("ARIMA_Q", 1), "ARIMA MA order (fixed at 1, flag kept for operational visibility)")

	flag.StringVar(&cfg.BaselineURL, "baseline-url", getEnv("BASELINE_URL", ""), "URL of the monthly ledger export to refresh the stored baseline from (disabled if empty)")
	flag.StringVar(&cfg.BaselineMethod, "baseline-method", getEnv("BASELINE_METHOD", ""), "HTTP method for the baseline fetch (defaults to GET)")
	flag.StringVar(&cfg.BaselineValuePath, "baseline-value-path", getEnv("BASELINE_VALUE_PATH", "months.#.total"), "gjson path to the monthly totals array")
	flag.StringVar(&cfg.BaselineYearPath, "baseline-year-path", getEnv("BASELINE_YEAR_PATH", "months.#.year"), "gjson path to each entry's calendar year")
	flag.StringVar(&cfg.BaselineMonthPath, "baseline-month-path", getEnv("BASELINE_MONTH_PATH", "months.#.month"), "gjson path to each entry's calendar month")
	flag.DurationVar(&cfg.BaselineRefreshInterval, "baseline-refresh-interval", getEnvDuration("BASELINE_REFRESH_INTERVAL", time.Hour), "Interval between baseline refresh fetches")

	flag.StringVar(&cfg.LogFormat, "log-format", getEnv("LOG_FORMAT", "text"), "Log format: text or json")
	flag.StringVar(&cfg.LogLevel, "log-level", getEnv("LOG_LEVEL", "info"), "Log level: debug, info, warn, error")

	flag.BoolVar(&cfg.TLS, "tls", getEnvBool("TLS", false), "Enable mTLS for the HTTP server")
	flag.StringVar(&cfg.TLSCertFile, "tls-cert", getEnv("TLS_CERT_FILE", ""), "Server certificate file (PEM)")
	flag.StringVar(&cfg.TLSKeyFile, "tls-key", getEnv("TLS_KEY_FILE", ""), "Server private key file (PEM)")
	flag.StringVar(&cfg.TLSCAFile, "tls-ca", getEnv("TLS_CA_FILE", ""), "CA certificate file for verifying clients (PEM)")

	flag.Parse()

	if cfg.Storage != "memory" && cfg.Storage != "redis" {
		fmt.Fprintf(os.Stderr, "Error: --storage must be memory or redis, got %q\n", cfg.Storage)
		os.Exit(1)
	}

	if cfg.ArimaP != 2 || cfg.ArimaD != 1 || cfg.ArimaQ != 1 {
		fmt.Fprintf(os.Stderr, "Error: the ARIMAX pipeline's order is fixed at p=2, d=1, q=1; got p=%d, d=%d, q=%d\n", cfg.ArimaP, cfg.ArimaD, cfg.ArimaQ)
		os.Exit(1)
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var f float64
		if _, err := fmt.Sscanf(value, "%f", &f); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "1" || value == "true"
	}
	return defaultValue
}
