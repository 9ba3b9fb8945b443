package config

import (
	"fmt"
	"net"

	"github.com/LeJamon/goCPSwap/internal/logging"
	"github.com/LeJamon/goCPSwap/internal/storage"
	"github.com/LeJamon/goCPSwap/internal/storage/compression"
	"go.uber.org/zap"
)

// Validate performs validation on the complete configuration
func (c *Config) Validate() error {
	if _, err := c.Params(); err != nil {
		return err
	}
	if c.Ledger.EpochSeconds < 0 {
		return fmt.Errorf("ledger.epoch_seconds must not be negative")
	}
	if c.AMM.MinOffset == 0 {
		return fmt.Errorf("amm.min_offset must be at least 1")
	}
	if c.Engine.Workers < 0 {
		return fmt.Errorf("engine.workers must not be negative")
	}
	if err := c.Storage.validate(); err != nil {
		return fmt.Errorf("storage validation failed: %w", err)
	}
	if err := c.Events.validate(); err != nil {
		return fmt.Errorf("events validation failed: %w", err)
	}
	if err := c.Log.validate(); err != nil {
		return fmt.Errorf("log validation failed: %w", err)
	}
	if c.Metrics.Enabled {
		if _, _, err := net.SplitHostPort(c.Metrics.Listen); err != nil {
			return fmt.Errorf("invalid metrics.listen %q: %w", c.Metrics.Listen, err)
		}
	}
	return nil
}

func (s *StorageConfig) validate() error {
	known := false
	for _, b := range storage.Backends {
		if s.Backend == b {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("unknown backend %q", s.Backend)
	}
	if s.Backend != storage.BackendMemory && s.Path == "" {
		return fmt.Errorf("path is required for backend %s", s.Backend)
	}
	if s.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative")
	}
	if !compression.IsAvailable(s.Compression) {
		return fmt.Errorf("unknown compression %q", s.Compression)
	}
	return nil
}

func (e *EventsConfig) validate() error {
	switch e.Sink {
	case SinkNone:
	case SinkJSONL, SinkSQLite:
		if e.Path == "" {
			return fmt.Errorf("path is required for sink %s", e.Sink)
		}
	case SinkPostgres:
		if e.DSN == "" {
			return fmt.Errorf("dsn is required for sink %s", e.Sink)
		}
	default:
		return fmt.Errorf("unknown sink %q", e.Sink)
	}
	return nil
}

func (l *LogConfig) validate() error {
	var level zap.AtomicLevel
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return fmt.Errorf("invalid level %q: %w", l.Level, err)
	}
	if l.Format != logging.FormatJSON && l.Format != logging.FormatConsole {
		return fmt.Errorf("unknown format %q", l.Format)
	}
	return nil
}
