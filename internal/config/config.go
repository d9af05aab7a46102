package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Catalog sources
const (
	SourceFile  = "file"
	SourceMinio = "minio"
)

// Config holds the search service configuration
type Config struct {
	Server    ServerConfig
	Catalog   CatalogConfig
	Storage   StorageConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           string
	Env            string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

// CatalogConfig selects where the restaurant dataset comes from
type CatalogConfig struct {
	Source          string // file or minio
	Path            string
	RefreshInterval time.Duration // 0 disables periodic reloads
}

// StorageConfig holds MinIO / S3 settings for the minio catalog source
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Object    string
	UseSSL    bool
}

// CacheConfig holds Redis settings. An empty Addr disables the cache.
type CacheConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RateLimitConfig holds per-client request limits
type RateLimitConfig struct {
	Enabled        bool
	Rate           int
	Window         time.Duration
	Burst          int
	TrustForwarded bool
}

// Enabled reports whether a Redis address is configured
func (c CacheConfig) Enabled() bool {
	return c.Addr != ""
}

// loadEnvFile loads the optional .env file named by HUNGRY_ENV_FILE.
// A missing file is not an error.
func loadEnvFile() error {
	path := getEnv("HUNGRY_ENV_FILE", ".env")
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads the search service configuration from environment variables
// with sensible defaults
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "5000"),
			Env:            getEnv("SERVER_ENV", "development"),
			ReadTimeout:    getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			AllowedOrigins: getSliceEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Catalog: CatalogConfig{
			Source:          getEnv("CATALOG_SOURCE", SourceFile),
			Path:            getEnv("CATALOG_PATH", "data/restaurants.csv"),
			RefreshInterval: getDurationEnv("CATALOG_REFRESH_INTERVAL", 0),
		},
		Storage: StorageConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "hungry"),
			Object:    getEnv("MINIO_OBJECT", "restaurants.csv"),
			UseSSL:    getBoolEnv("MINIO_USE_SSL", false),
		},
		Cache: CacheConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
			TTL:      getDurationEnv("REDIS_TTL", 5*time.Minute),
		},
		RateLimit: RateLimitConfig{
			Enabled:        getBoolEnv("RATE_LIMIT_ENABLED", true),
			Rate:           getIntEnv("RATE_LIMIT_RATE", 100),
			Window:         getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
			Burst:          getIntEnv("RATE_LIMIT_BURST", 20),
			TrustForwarded: getBoolEnv("RATE_LIMIT_TRUST_FORWARDED", false),
		},
	}, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	// Server validation
	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must have at least one origin"))
	}

	// Catalog validation
	switch c.Catalog.Source {
	case SourceFile:
		if c.Catalog.Path == "" {
			errs = append(errs, errors.New("CATALOG_PATH is required when CATALOG_SOURCE is 'file'"))
		}
	case SourceMinio:
		if err := c.Storage.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("MinIO: %w", err))
		}
	default:
		errs = append(errs, fmt.Errorf("CATALOG_SOURCE must be 'file' or 'minio', got '%s'", c.Catalog.Source))
	}
	if c.Catalog.RefreshInterval < 0 {
		errs = append(errs, errors.New("CATALOG_REFRESH_INTERVAL must not be negative"))
	}

	// Cache validation
	if c.Cache.Enabled() && c.Cache.TTL <= 0 {
		errs = append(errs, errors.New("REDIS_TTL must be positive"))
	}

	// Rate limit validation
	if c.RateLimit.Enabled {
		if c.RateLimit.Rate <= 0 {
			errs = append(errs, errors.New("RATE_LIMIT_RATE must be positive"))
		}
		if c.RateLimit.Window <= 0 {
			errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks that all required MinIO fields are present
func (s StorageConfig) Validate() error {
	var missing []string
	if s.Endpoint == "" {
		missing = append(missing, "MINIO_ENDPOINT")
	}
	if s.AccessKey == "" {
		missing = append(missing, "MINIO_ACCESS_KEY")
	}
	if s.SecretKey == "" {
		missing = append(missing, "MINIO_SECRET_KEY")
	}
	if s.Bucket == "" {
		missing = append(missing, "MINIO_BUCKET")
	}
	if s.Object == "" {
		missing = append(missing, "MINIO_OBJECT")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

func validateHTTPURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an http(s) URL, got '%s'", name, raw)
	}
	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
