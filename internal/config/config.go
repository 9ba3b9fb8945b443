package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/LeJamon/goCPSwap/internal/core/amm/curve"
	"github.com/LeJamon/goCPSwap/internal/core/tx"
	"github.com/gagliardetto/solana-go"
)

// DefaultConfigFile is looked up in the working directory when no path is given.
const DefaultConfigFile = "cpswapd.toml"

// Config represents the complete cpswapd configuration
type Config struct {
	Ledger  LedgerConfig  `toml:"ledger" mapstructure:"ledger"`
	AMM     AMMConfig     `toml:"amm" mapstructure:"amm"`
	Engine  EngineConfig  `toml:"engine" mapstructure:"engine"`
	Storage StorageConfig `toml:"storage" mapstructure:"storage"`
	Events  EventsConfig  `toml:"events" mapstructure:"events"`
	Log     LogConfig     `toml:"log" mapstructure:"log"`
	Metrics MetricsConfig `toml:"metrics" mapstructure:"metrics"`

	// Internal fields for configuration management
	configPath string `toml:"-" mapstructure:"-"`
}

// LedgerConfig holds the ledger-wide identities.
type LedgerConfig struct {
	ProgramID     string `toml:"program_id" mapstructure:"program_id"`
	ReferenceMint string `toml:"reference_mint" mapstructure:"reference_mint"`
	Admin         string `toml:"admin" mapstructure:"admin"`
	// EpochSeconds is the length of one epoch. Zero keeps the epoch at 0.
	EpochSeconds int64 `toml:"epoch_seconds" mapstructure:"epoch_seconds"`
}

// AMMConfig bounds the offset of new pools.
type AMMConfig struct {
	MaxOffsetRatio uint64 `toml:"max_offset_ratio" mapstructure:"max_offset_ratio"`
	MinOffset      uint64 `toml:"min_offset" mapstructure:"min_offset"`
}

// EngineConfig configures transaction processing.
type EngineConfig struct {
	SkipSignatureVerification bool `toml:"skip_signature_verification" mapstructure:"skip_signature_verification"`
	// Workers bounds block concurrency. Zero means GOMAXPROCS.
	Workers int `toml:"workers" mapstructure:"workers"`
}

// StorageConfig selects the ledger backend.
type StorageConfig struct {
	Backend     string `toml:"backend" mapstructure:"backend"`
	Path        string `toml:"path" mapstructure:"path"`
	CacheSize   int    `toml:"cache_size" mapstructure:"cache_size"`
	Compression string `toml:"compression" mapstructure:"compression"`
}

// EventsConfig selects where committed events go.
type EventsConfig struct {
	Sink string `toml:"sink" mapstructure:"sink"`
	// Path is the JSONL file or the sqlite database file.
	Path string `toml:"path" mapstructure:"path"`
	// DSN is the postgres connection string.
	DSN string `toml:"dsn" mapstructure:"dsn"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `toml:"level" mapstructure:"level"`
	Format string `toml:"format" mapstructure:"format"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	Listen  string `toml:"listen" mapstructure:"listen"`
}

// Event sinks
const (
	SinkNone     = "none"
	SinkJSONL    = "jsonl"
	SinkSQLite   = "sqlite"
	SinkPostgres = "postgres"
)

// GetConfigPath returns the path the configuration was read from, if any
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// Params resolves the ledger parameters the engine runs with.
func (c *Config) Params() (tx.Params, error) {
	programID, err := solana.PublicKeyFromBase58(c.Ledger.ProgramID)
	if err != nil {
		return tx.Params{}, fmt.Errorf("invalid ledger.program_id: %w", err)
	}
	referenceMint, err := solana.PublicKeyFromBase58(c.Ledger.ReferenceMint)
	if err != nil {
		return tx.Params{}, fmt.Errorf("invalid ledger.reference_mint: %w", err)
	}
	var admin solana.PublicKey
	if c.Ledger.Admin != "" {
		if admin, err = solana.PublicKeyFromBase58(c.Ledger.Admin); err != nil {
			return tx.Params{}, fmt.Errorf("invalid ledger.admin: %w", err)
		}
	}
	return tx.Params{
		ProgramID:     programID,
		ReferenceMint: referenceMint,
		Admin:         admin,
		SupplyPolicy: curve.SupplyPolicy{
			MinOffset:      c.AMM.MinOffset,
			MaxOffsetRatio: c.AMM.MaxOffsetRatio,
		},
	}, nil
}

// Clock returns the ledger clock described by the configuration.
func (c *Config) Clock() tx.SystemClock {
	return tx.SystemClock{EpochDuration: time.Duration(c.Ledger.EpochSeconds) * time.Second}
}

// EventsPath resolves the events file relative to the storage directory.
func (c *Config) EventsPath() string {
	if c.Events.Path == "" || filepath.IsAbs(c.Events.Path) {
		return c.Events.Path
	}
	return filepath.Join(c.Storage.Path, c.Events.Path)
}
