package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validClientConfig() *ClientConfig {
	return &ClientConfig{
		SearchAPI: SearchAPIConfig{
			BaseURL:  "http://localhost:5000",
			Timeout:  10 * time.Second,
			PageSize: 20,
		},
		Client: ClientSettings{
			StateDir:     "/tmp/hungry",
			WriteTimeout: 10 * time.Second,
		},
	}
}

func TestClientConfig_Validate_Valid(t *testing.T) {
	cfg := validClientConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got: %v", err)
	}
	if cfg.UsesDatabase() {
		t.Error("empty DB_HOST should select the local store")
	}
}

func TestClientConfig_Validate_BadURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:5000", "ftp://x", "http://"} {
		cfg := validClientConfig()
		cfg.SearchAPI.BaseURL = raw

		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "HUNGRY_API_URL") {
			t.Errorf("%q: expected HUNGRY_API_URL error, got: %v", raw, err)
		}
	}
}

func TestClientConfig_Validate_DatabaseFieldsWhenHostSet(t *testing.T) {
	cfg := validClientConfig()
	cfg.Database.Host = "localhost"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected database validation errors")
	}
	for _, field := range []string{"DB_PORT", "DB_NAMESPACE", "DB_DATABASE"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("expected error to mention %s, got: %v", field, err)
		}
	}
}

func TestClientConfig_Validate_MultipleErrors(t *testing.T) {
	cfg := &ClientConfig{SearchAPI: SearchAPIConfig{BaseURL: "http://localhost:5000", PageSize: 500}}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, field := range []string{"HUNGRY_API_TIMEOUT", "HUNGRY_PAGE_SIZE", "HUNGRY_STATE_DIR", "HUNGRY_WRITE_TIMEOUT"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("expected error to mention %s, got: %v", field, err)
		}
	}
}

func TestLoadClient_Defaults(t *testing.T) {
	t.Setenv("HUNGRY_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("HUNGRY_API_URL", "")
	t.Setenv("HUNGRY_PAGE_SIZE", "")
	t.Setenv("HUNGRY_STATE_DIR", "")
	t.Setenv("DB_HOST", "")

	cfg, err := LoadClient()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SearchAPI.BaseURL != "http://localhost:5000" {
		t.Errorf("unexpected base URL %s", cfg.SearchAPI.BaseURL)
	}
	if cfg.SearchAPI.PageSize != 20 {
		t.Errorf("expected page size 20, got %d", cfg.SearchAPI.PageSize)
	}
	if cfg.Client.StateDir == "" {
		t.Error("expected a default state dir")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got: %v", err)
	}
}
