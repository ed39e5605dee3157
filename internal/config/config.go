package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
)

// Config holds all configuration for the application
type Config struct {
	Server            ServerConfig
	Database          DatabaseConfig
	CORS              CORSConfig
	Log               LogConfig
	Cron              CronConfig
	Providers         ProviderConfig
	PriceUpdate       PriceUpdateConfig
	Cache             CacheConfig
	ReportingCurrency string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Pretty bool
}

// CronConfig holds the scheduled trigger configuration.
// An empty schedule disables the in-process job; the HTTP trigger stays available.
type CronConfig struct {
	Secret              string
	PriceUpdateSchedule string
	SnapshotSchedule    string
	RecordBenchmarks    bool
	QuietHoursStart     int
	QuietHoursEnd       int
	QuietHoursTZ        string
}

// ProviderConfig holds price and exchange rate provider settings
type ProviderConfig struct {
	AlphaVantageAPIKey string
	FinnhubAPIKey      string
	CoinGeckoURL       string
	ExchangeRateURL    string
	Timeout            time.Duration
	RatesTimeout       time.Duration
}

// PriceUpdateConfig bounds the price update batch
type PriceUpdateConfig struct {
	Concurrency int
	Deadline    time.Duration
}

// CacheConfig selects the price cache backend and its per-category TTLs
type CacheConfig struct {
	Backend string // sql or memory
	TTL     map[model.Category]time.Duration
}

// writeTimeoutMargin covers the snapshot step that runs after the price
// update deadline, plus writing the response.
const writeTimeoutMargin = time.Minute

// WriteTimeout is the HTTP write timeout. The price update trigger answers
// only after its run, so it must outlast PRICE_UPDATE_DEADLINE.
func (c *Config) WriteTimeout() time.Duration {
	return c.PriceUpdate.Deadline + writeTimeoutMargin
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	var errs []error

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/wealth_tracker.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{
				"http://localhost:3000",
				"http://localhost",
			}),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvBool("LOG_PRETTY", false, &errs),
		},
		Cron: CronConfig{
			Secret:              os.Getenv("CRON_SECRET"),
			PriceUpdateSchedule: os.Getenv("PRICE_UPDATE_SCHEDULE"),
			SnapshotSchedule:    os.Getenv("SNAPSHOT_SCHEDULE"),
			RecordBenchmarks:    getEnvBool("RECORD_BENCHMARKS", true, &errs),
			QuietHoursStart:     getEnvInt("QUIET_HOURS_START", 0, &errs),
			QuietHoursEnd:       getEnvInt("QUIET_HOURS_END", 8, &errs),
			QuietHoursTZ:        getEnv("QUIET_HOURS_TZ", "Europe/Amsterdam"),
		},
		Providers: ProviderConfig{
			AlphaVantageAPIKey: os.Getenv("ALPHA_VANTAGE_API_KEY"),
			FinnhubAPIKey:      os.Getenv("FINNHUB_API_KEY"),
			CoinGeckoURL:       getEnv("COINGECKO_URL", "https://api.coingecko.com/api/v3"),
			ExchangeRateURL:    getEnv("EXCHANGERATE_API_URL", "https://api.exchangerate-api.com/v4/latest"),
			Timeout:            getEnvDuration("PROVIDER_TIMEOUT", 10*time.Second, &errs),
			RatesTimeout:       getEnvDuration("RATES_FETCH_TIMEOUT", 2500*time.Millisecond, &errs),
		},
		PriceUpdate: PriceUpdateConfig{
			Concurrency: getEnvInt("PRICE_UPDATE_CONCURRENCY", 5, &errs),
			Deadline:    getEnvDuration("PRICE_UPDATE_DEADLINE", 4*time.Minute, &errs),
		},
		Cache: CacheConfig{
			Backend: strings.ToLower(getEnv("PRICE_CACHE_BACKEND", "sql")),
			TTL: map[model.Category]time.Duration{
				model.CategoryEquity:    getEnvDuration("TTL_EQUITY", time.Hour, &errs),
				model.CategoryCrypto:    getEnvDuration("TTL_CRYPTO", 15*time.Minute, &errs),
				model.CategoryCommodity: getEnvDuration("TTL_COMMODITY", time.Hour, &errs),
				model.CategoryFX:        getEnvDuration("TTL_FX", time.Hour, &errs),
				model.CategoryFund:      getEnvDuration("TTL_FUND", 24*time.Hour, &errs),
				model.CategoryCash:      0,
			},
		},
		ReportingCurrency: strings.ToUpper(getEnv("REPORTING_CURRENCY", model.BaseCurrency)),
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	if err := config.validate(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}

	return config, nil
}

func (c *Config) validate() error {
	var errs []error

	if c.Cache.Backend != "sql" && c.Cache.Backend != "memory" {
		errs = append(errs, fmt.Errorf("PRICE_CACHE_BACKEND must be sql or memory, got %q", c.Cache.Backend))
	}
	if c.PriceUpdate.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("PRICE_UPDATE_CONCURRENCY must be at least 1"))
	}
	if c.Cron.QuietHoursStart < 0 || c.Cron.QuietHoursStart > 23 ||
		c.Cron.QuietHoursEnd < 0 || c.Cron.QuietHoursEnd > 23 {
		errs = append(errs, fmt.Errorf("quiet hours must be within 0-23"))
	}
	if _, err := time.LoadLocation(c.Cron.QuietHoursTZ); err != nil {
		errs = append(errs, fmt.Errorf("QUIET_HOURS_TZ: %w", err))
	}

	return errors.Join(errs...)
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvInt(key string, defaultValue int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid integer %q", key, value))
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool, errs *[]error) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid boolean %q", key, value))
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid duration %q", key, value))
		return defaultValue
	}
	return d
}
