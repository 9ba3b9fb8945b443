package config

import (
	"github.com/LeJamon/goCPSwap/internal/core/amm/curve"
	"github.com/LeJamon/goCPSwap/internal/core/ledger/keylet"
	"github.com/LeJamon/goCPSwap/internal/storage"
	"github.com/spf13/viper"
)

// setDefaults sets all default values
func setDefaults(v *viper.Viper) {
	// Ledger defaults
	v.SetDefault("ledger.program_id", keylet.DefaultProgramID.String())
	v.SetDefault("ledger.reference_mint", keylet.DefaultReferenceMint.String())
	v.SetDefault("ledger.admin", "")
	v.SetDefault("ledger.epoch_seconds", 0)

	// AMM defaults
	v.SetDefault("amm.max_offset_ratio", curve.DefaultSupplyPolicy.MaxOffsetRatio)
	v.SetDefault("amm.min_offset", curve.DefaultSupplyPolicy.MinOffset)

	// Engine defaults
	v.SetDefault("engine.skip_signature_verification", false)
	v.SetDefault("engine.workers", 0) // 0 means GOMAXPROCS

	// Storage defaults
	v.SetDefault("storage.backend", storage.BackendPebble)
	v.SetDefault("storage.path", "data")
	v.SetDefault("storage.cache_size", 4096)
	v.SetDefault("storage.compression", "lz4")

	// Events defaults
	v.SetDefault("events.sink", SinkJSONL)
	v.SetDefault("events.path", "events.jsonl")
	v.SetDefault("events.dsn", "")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Metrics defaults
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", "127.0.0.1:9464")
}

// Default returns the configuration used when no file or environment
// overrides anything.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(err)
	}
	return &cfg
}
