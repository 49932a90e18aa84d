package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abelbrown/catalog/internal/catalog"
	"github.com/abelbrown/catalog/internal/kv"
)

// clearEnv blanks every variable AutoPopulateFromEnv reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CATALOG_BASE_URL", "CATALOG_BACKEND", "CATALOG_DSN", "CATALOG_PAGE_SIZE", "CATALOG_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.PageSize != catalog.DefaultPageSize {
		t.Errorf("expected page size %d, got %d", catalog.DefaultPageSize, cfg.PageSize)
	}
	if cfg.Debounce() != catalog.DefaultDebounce {
		t.Errorf("expected debounce %v, got %v", catalog.DefaultDebounce, cfg.Debounce())
	}
	if cfg.FetchDelay() != catalog.SimulatedFetchDelay {
		t.Errorf("expected fetch delay %v, got %v", catalog.SimulatedFetchDelay, cfg.FetchDelay())
	}
	if cfg.FetchTimeout() != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.FetchTimeout())
	}
	if cfg.StorageKey != catalog.FavoritesStorageKey {
		t.Errorf("unexpected storage key %q", cfg.StorageKey)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BaseURL != DefaultConfig().BaseURL {
		t.Errorf("expected default base URL, got %s", cfg.BaseURL)
	}
}

func TestSaveAndLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "sub", "config.json")

	cfg := DefaultConfig()
	cfg.BaseURL = "https://shop.example.com"
	cfg.PageSize = 12
	cfg.Backend = kv.BackendFile
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected 0600, got %v", info.Mode().Perm())
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.BaseURL != "https://shop.example.com" || loaded.PageSize != 12 || loaded.Backend != kv.BackendFile {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"page_size": 6}`), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.PageSize != 6 {
		t.Errorf("expected 6, got %d", cfg.PageSize)
	}
	if cfg.DebounceMs != 300 {
		t.Errorf("unset fields should keep defaults, got debounce %d", cfg.DebounceMs)
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CATALOG_BASE_URL", "file:///srv/catalog")
	t.Setenv("CATALOG_BACKEND", "postgres")
	t.Setenv("CATALOG_DSN", "postgres://localhost/catalog")
	t.Setenv("CATALOG_PAGE_SIZE", "3")
	t.Setenv("CATALOG_LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BaseURL != "file:///srv/catalog" {
		t.Errorf("unexpected base URL %s", cfg.BaseURL)
	}
	if cfg.Backend != kv.BackendPostgres || cfg.DSN != "postgres://localhost/catalog" {
		t.Errorf("unexpected storage %s %s", cfg.Backend, cfg.DSN)
	}
	if cfg.PageSize != 3 || cfg.LogLevel != "debug" {
		t.Errorf("unexpected page size %d / level %s", cfg.PageSize, cfg.LogLevel)
	}
}

func TestEnvPageSizeMustBeNumeric(t *testing.T) {
	clearEnv(t)
	t.Setenv("CATALOG_PAGE_SIZE", "lots")

	if _, err := Load(filepath.Join(t.TempDir(), "config.json")); err == nil {
		t.Error("expected error for non-numeric page size")
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"empty base url":       func(c *Config) { c.BaseURL = "" },
		"zero page size":       func(c *Config) { c.PageSize = 0 },
		"negative delay":       func(c *Config) { c.FetchDelayMs = -1 },
		"negative debounce":    func(c *Config) { c.DebounceMs = -5 },
		"empty storage key":    func(c *Config) { c.StorageKey = "" },
		"unknown backend":      func(c *Config) { c.Backend = "redis" },
		"postgres without dsn": func(c *Config) { c.Backend = kv.BackendPostgres },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestStorageDSN(t *testing.T) {
	cfg := DefaultConfig()
	if filepath.Base(cfg.StorageDSN()) != "catalog.db" {
		t.Errorf("unexpected sqlite path %s", cfg.StorageDSN())
	}

	cfg.Backend = kv.BackendFile
	if filepath.Base(cfg.StorageDSN()) != "favorites.json" {
		t.Errorf("unexpected file path %s", cfg.StorageDSN())
	}

	cfg.Backend = kv.BackendMemory
	if cfg.StorageDSN() != "" {
		t.Errorf("memory backend needs no DSN, got %s", cfg.StorageDSN())
	}

	cfg.DSN = "/tmp/explicit.db"
	if cfg.StorageDSN() != "/tmp/explicit.db" {
		t.Errorf("explicit DSN should win, got %s", cfg.StorageDSN())
	}
}
