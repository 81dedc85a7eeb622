package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Unknown currency policies accepted by CURRENCY_UNKNOWN_POLICY
const (
	UnknownCurrencyFallback = "fallback"
	UnknownCurrencyReject   = "reject"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Currency CurrencyConfig
	Import   ImportConfig
	Archive  ArchiveConfig
	Sentry   SentryConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port              string
	Environment       string
	ServiceName       string
	ReadHeaderTimeout int
	// ReadTimeout covers the whole request body, so it must fit a slow
	// upload of IMPORT_MAX_UPLOAD_MB.
	ReadTimeout  int
	WriteTimeout int
	CORSOrigins  string // Comma-separated list of allowed origins
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// CurrencyConfig holds exchange rate provider and cache configuration
type CurrencyConfig struct {
	APIURL        string
	APIKey        string
	BaseCurrency  string
	RatesTTL      time.Duration
	ServeStale    bool
	UnknownPolicy string
	RoundingMode  string
	HTTPTimeout   time.Duration
}

// ImportConfig holds CSV upload limits
type ImportConfig struct {
	Timeout       time.Duration
	MaxUploadSize int64 // bytes
}

// ArchiveConfig holds raw upload archive configuration
type ArchiveConfig struct {
	Enabled   bool
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Prefix    string
}

// SentryConfig holds error reporting configuration
type SentryConfig struct {
	DSN string
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:              getEnv("PORT", "8080"),
			Environment:       getEnv("ENVIRONMENT", "development"),
			ServiceName:       serviceName,
			ReadHeaderTimeout: getEnvAsInt("READ_HEADER_TIMEOUT", 10),
			ReadTimeout:       getEnvAsInt("READ_TIMEOUT", 300),
			WriteTimeout:      getEnvAsInt("WRITE_TIMEOUT", 330),
			CORSOrigins:       getEnv("CORS_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			DBName:      getEnv("DB_NAME", "invoices"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:    getEnvAsInt("DB_MIN_CONNS", 2),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},
		Currency: CurrencyConfig{
			APIURL:        getEnv("CURRENCY_API_URL", "https://api.currencyfreaks.com/v2.0/rates/latest"),
			APIKey:        getEnv("CURRENCYFREAKS_API_KEY", ""),
			BaseCurrency:  strings.ToUpper(getEnv("BASE_CURRENCY", "USD")),
			RatesTTL:      getEnvAsDuration("CURRENCY_RATES_TTL", 24*time.Hour),
			ServeStale:    getEnvAsBool("CURRENCY_SERVE_STALE", false),
			UnknownPolicy: strings.ToLower(getEnv("CURRENCY_UNKNOWN_POLICY", UnknownCurrencyFallback)),
			RoundingMode:  strings.ToLower(getEnv("CURRENCY_ROUNDING_MODE", "standard")),
			HTTPTimeout:   getEnvAsDuration("CURRENCY_HTTP_TIMEOUT", 10*time.Second),
		},
		Import: ImportConfig{
			Timeout:       getEnvAsDuration("IMPORT_TIMEOUT", 5*time.Minute),
			MaxUploadSize: int64(getEnvAsInt("IMPORT_MAX_UPLOAD_MB", 20)) << 20,
		},
		Archive: ArchiveConfig{
			Enabled:   getEnvAsBool("ARCHIVE_ENABLED", false),
			Bucket:    getEnv("ARCHIVE_BUCKET", ""),
			Region:    getEnv("ARCHIVE_REGION", "us-east-1"),
			Endpoint:  getEnv("ARCHIVE_ENDPOINT", ""),
			AccessKey: getEnv("ARCHIVE_ACCESS_KEY", ""),
			SecretKey: getEnv("ARCHIVE_SECRET_KEY", ""),
			Prefix:    getEnv("ARCHIVE_PREFIX", "uploads"),
		},
		Sentry: SentryConfig{
			DSN: getEnv("SENTRY_DSN", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configuration the service cannot run with
func (c *Config) Validate() error {
	var errs []error

	if len(c.Currency.BaseCurrency) != 3 {
		errs = append(errs, fmt.Errorf("BASE_CURRENCY must be a 3-letter code, got %q", c.Currency.BaseCurrency))
	}
	if c.Currency.RatesTTL <= 0 {
		errs = append(errs, errors.New("CURRENCY_RATES_TTL must be positive"))
	}
	switch c.Currency.UnknownPolicy {
	case UnknownCurrencyFallback, UnknownCurrencyReject:
	default:
		errs = append(errs, fmt.Errorf("CURRENCY_UNKNOWN_POLICY must be %q or %q, got %q",
			UnknownCurrencyFallback, UnknownCurrencyReject, c.Currency.UnknownPolicy))
	}
	switch c.Currency.RoundingMode {
	case "none", "standard", "ceiling", "floor", "bankers":
	default:
		errs = append(errs, fmt.Errorf("CURRENCY_ROUNDING_MODE must be one of none, standard, ceiling, floor, bankers, got %q",
			c.Currency.RoundingMode))
	}
	if c.Import.Timeout <= 0 {
		errs = append(errs, errors.New("IMPORT_TIMEOUT must be positive"))
	}
	if c.Import.MaxUploadSize <= 0 {
		errs = append(errs, errors.New("IMPORT_MAX_UPLOAD_MB must be positive"))
	}
	if c.Archive.Enabled && c.Archive.Bucket == "" {
		errs = append(errs, errors.New("ARCHIVE_BUCKET is required when ARCHIVE_ENABLED is set"))
	}

	return errors.Join(errs...)
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL returns the database connection string in URL form, as used by migrate
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
