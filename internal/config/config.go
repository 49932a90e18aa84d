package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/abelbrown/catalog/internal/catalog"
	"github.com/abelbrown/catalog/internal/kv"
)

// Config is the persistent application configuration
type Config struct {
	// Feed
	BaseURL           string  `json:"base_url"`
	Endpoint          string  `json:"endpoint"`
	FetchDelayMs      int     `json:"fetch_delay_ms"`   // Artificial latency before each load
	FetchTimeoutMs    int     `json:"fetch_timeout_ms"` // HTTP client timeout
	RequestsPerSecond float64 `json:"requests_per_second"`

	// Query
	DebounceMs int `json:"debounce_ms"`
	PageSize   int `json:"page_size"`

	// Favorites storage
	StorageKey string `json:"storage_key"`
	Backend    string `json:"backend"` // "sqlite", "file", "memory" or "postgres"
	DSN        string `json:"dsn,omitempty"`

	LogLevel string `json:"log_level"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		BaseURL:           "http://localhost:8080",
		Endpoint:          catalog.EntriesEndpoint,
		FetchDelayMs:      int(catalog.SimulatedFetchDelay / time.Millisecond),
		FetchTimeoutMs:    30000,
		RequestsPerSecond: 2,
		DebounceMs:        int(catalog.DefaultDebounce / time.Millisecond),
		PageSize:          catalog.DefaultPageSize,
		StorageKey:        catalog.FavoritesStorageKey,
		Backend:           kv.BackendSQLite,
		LogLevel:          "info",
	}
}

// DataDir returns ~/.catalog
func DataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".catalog")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.json")
}

// Load reads config from path (ConfigPath if empty), or returns defaults.
// Environment variables, including those from a .env file in the working
// directory, override file values. Call Validate once all overrides are in.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	// A missing .env is normal.
	_ = godotenv.Load()

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.AutoPopulateFromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to path (ConfigPath if empty)
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600) // DSN may carry a password
}

// AutoPopulateFromEnv overrides fields from CATALOG_* environment variables
func (c *Config) AutoPopulateFromEnv() error {
	if v := os.Getenv("CATALOG_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("CATALOG_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("CATALOG_DSN"); v != "" {
		c.DSN = v
	}
	if v := os.Getenv("CATALOG_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("CATALOG_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CATALOG_PAGE_SIZE: %w", err)
		}
		c.PageSize = n
	}
	return nil
}

// Validate rejects values the rest of the program cannot work with
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return errors.New("config: base_url is required")
	case c.PageSize < 1:
		return fmt.Errorf("config: page_size must be positive, got %d", c.PageSize)
	case c.FetchDelayMs < 0:
		return fmt.Errorf("config: fetch_delay_ms must not be negative, got %d", c.FetchDelayMs)
	case c.DebounceMs < 0:
		return fmt.Errorf("config: debounce_ms must not be negative, got %d", c.DebounceMs)
	case c.StorageKey == "":
		return errors.New("config: storage_key is required")
	}
	switch c.Backend {
	case kv.BackendSQLite, kv.BackendFile, kv.BackendMemory, kv.BackendPostgres:
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	if c.Backend == kv.BackendPostgres && c.DSN == "" {
		return errors.New("config: postgres backend needs a dsn")
	}
	return nil
}

// StorageDSN returns the DSN for the chosen backend, defaulting file-based
// backends to a path under DataDir.
func (c *Config) StorageDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	switch c.Backend {
	case kv.BackendSQLite:
		return filepath.Join(DataDir(), "catalog.db")
	case kv.BackendFile:
		return filepath.Join(DataDir(), "favorites.json")
	}
	return ""
}

// Durations

func (c *Config) FetchDelay() time.Duration {
	return time.Duration(c.FetchDelayMs) * time.Millisecond
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMs) * time.Millisecond
}

func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}
