package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abelbrown/catalog/internal/config"
	"github.com/abelbrown/catalog/internal/eventlog"
	"github.com/abelbrown/catalog/internal/explorer"
	"github.com/abelbrown/catalog/internal/favorites"
	"github.com/abelbrown/catalog/internal/fetch"
	"github.com/abelbrown/catalog/internal/kv"
	"github.com/abelbrown/catalog/internal/loader"
	"github.com/abelbrown/catalog/internal/logging"
)

// stack is the wired set of collaborators every command shares.
type stack struct {
	cfg       *config.Config
	events    *eventlog.Logger
	ring      *eventlog.RingBuffer
	eventFile *os.File
	store     kv.Store
	favorites *favorites.Store
	client    *fetch.Client
}

// eventLogPath returns the path to catalog.events.jsonl.
func eventLogPath() string {
	return filepath.Join(config.DataDir(), "catalog.events.jsonl")
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(g *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if g.backend != "" {
		cfg.Backend = g.backend
	}
	if g.dsn != "" {
		cfg.DSN = g.dsn
	}
	if g.baseURL != "" {
		cfg.BaseURL = g.baseURL
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStack wires config, logging, the event log, storage, favorites and the
// feed client. Close releases them in reverse order.
func openStack(g *globalFlags) (*stack, error) {
	cfg, err := loadConfig(g)
	if err != nil {
		return nil, err
	}

	dataDir := config.DataDir()
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	if err := logging.Init(dataDir, cfg.LogLevel); err != nil {
		return nil, err
	}

	s := &stack{cfg: cfg, ring: eventlog.NewRingBuffer(eventlog.DefaultRingSize)}

	f, err := os.OpenFile(eventLogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		logging.Warn("Event log unavailable, events kept in memory only", "err", err)
		s.events = eventlog.Discard()
	} else {
		s.eventFile = f
		s.events = eventlog.New(f)
	}
	s.events.AttachRing(s.ring)

	s.store, err = kv.Open(cfg.Backend, cfg.StorageDSN())
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open %s storage: %w", cfg.Backend, err)
	}

	s.favorites = favorites.Open(s.store, cfg.StorageKey, s.events)
	s.client = fetch.NewClient(fetch.Options{
		BaseURL:           cfg.BaseURL,
		Endpoint:          cfg.Endpoint,
		Timeout:           cfg.FetchTimeout(),
		RequestsPerSecond: cfg.RequestsPerSecond,
	})

	logging.Info("Catalog starting", "feed", s.client.URL(), "backend", cfg.Backend, "session", s.events.SessionID())
	s.events.Emit(eventlog.Event{
		Level: eventlog.LevelInfo,
		Kind:  eventlog.KindStartup,
		Comp:  "main",
		Msg:   s.client.URL(),
		Extra: map[string]any{"backend": cfg.Backend, "favorites": s.favorites.Len()},
	})
	return s, nil
}

// newExplorer builds an Explorer over a fresh loader.
func (s *stack) newExplorer(delay time.Duration, opts ...explorer.Option) *explorer.Explorer {
	opts = append([]explorer.Option{
		explorer.WithPageSize(s.cfg.PageSize),
		explorer.WithEvents(s.events),
	}, opts...)
	return explorer.New(loader.New(s.client, delay, s.events), s.favorites, opts...)
}

func (s *stack) Close() {
	s.events.Info(eventlog.KindShutdown, "main", "")
	s.events.Close()
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			logging.Warn("Failed to close storage", "err", err)
		}
	}
	if s.eventFile != nil {
		s.eventFile.Close()
	}
	logging.Close()
}
