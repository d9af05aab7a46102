package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/forgo/hungry/internal/model"
)

// ClientConfig holds the CLI client configuration
type ClientConfig struct {
	Database  DatabaseConfig
	SearchAPI SearchAPIConfig
	Client    ClientSettings
}

// DatabaseConfig holds SurrealDB connection settings for the document store.
// An empty Host selects the in-memory store.
type DatabaseConfig struct {
	Host      string
	Port      string
	Namespace string
	Database  string
	User      string
	Password  string
}

// SearchAPIConfig holds search service client settings
type SearchAPIConfig struct {
	BaseURL  string
	Timeout  time.Duration
	PageSize int
}

// ClientSettings holds local client state settings
type ClientSettings struct {
	StateDir     string
	WriteTimeout time.Duration
	BcryptCost   int
}

// LoadClient reads the client configuration from environment variables
func LoadClient() (*ClientConfig, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	return &ClientConfig{
		Database: DatabaseConfig{
			Host:      getEnv("DB_HOST", ""),
			Port:      getEnv("DB_PORT", "8000"),
			Namespace: getEnv("DB_NAMESPACE", "hungry"),
			Database:  getEnv("DB_DATABASE", "main"),
			User:      getEnv("DB_USER", "root"),
			Password:  getEnv("DB_PASSWORD", "root"),
		},
		SearchAPI: SearchAPIConfig{
			BaseURL:  getEnv("HUNGRY_API_URL", "http://localhost:5000"),
			Timeout:  getDurationEnv("HUNGRY_API_TIMEOUT", 10*time.Second),
			PageSize: getIntEnv("HUNGRY_PAGE_SIZE", model.DefaultPageSize),
		},
		Client: ClientSettings{
			StateDir:     getEnv("HUNGRY_STATE_DIR", defaultStateDir()),
			WriteTimeout: getDurationEnv("HUNGRY_WRITE_TIMEOUT", 10*time.Second),
			BcryptCost:   getIntEnv("HUNGRY_BCRYPT_COST", 10),
		},
	}, nil
}

// UsesDatabase reports whether a SurrealDB host is configured
func (c *ClientConfig) UsesDatabase() bool {
	return c.Database.Host != ""
}

// Validate checks that all required configuration values are present and valid
func (c *ClientConfig) Validate() error {
	var errs []error

	if err := validateHTTPURL("HUNGRY_API_URL", c.SearchAPI.BaseURL); err != nil {
		errs = append(errs, err)
	}
	if c.SearchAPI.Timeout <= 0 {
		errs = append(errs, errors.New("HUNGRY_API_TIMEOUT must be positive"))
	}
	if c.SearchAPI.PageSize < 1 || c.SearchAPI.PageSize > model.MaxPageSize {
		errs = append(errs, fmt.Errorf("HUNGRY_PAGE_SIZE must be between 1 and %d", model.MaxPageSize))
	}

	if c.Client.StateDir == "" {
		errs = append(errs, errors.New("HUNGRY_STATE_DIR is required"))
	}
	if c.Client.WriteTimeout <= 0 {
		errs = append(errs, errors.New("HUNGRY_WRITE_TIMEOUT must be positive"))
	}

	if c.UsesDatabase() {
		if c.Database.Port == "" {
			errs = append(errs, errors.New("DB_PORT is required"))
		}
		if c.Database.Namespace == "" {
			errs = append(errs, errors.New("DB_NAMESPACE is required"))
		}
		if c.Database.Database == "" {
			errs = append(errs, errors.New("DB_DATABASE is required"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "hungry")
	}
	return ".hungry"
}
