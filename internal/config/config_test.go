package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/LeJamon/goCPSwap/internal/core/ledger/keylet"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cpswapd.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[ledger]
admin = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
epoch_seconds = 60

[amm]
max_offset_ratio = 1000
min_offset = 10

[engine]
workers = 4

[storage]
backend = "leveldb"
path = "/tmp/cpswapd"
compression = "none"

[events]
sink = "sqlite"
path = "events.db"
`)

	config, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, path, config.GetConfigPath())
	assert.Equal(t, int64(60), config.Ledger.EpochSeconds)
	assert.Equal(t, 4, config.Engine.Workers)
	assert.Equal(t, "leveldb", config.Storage.Backend)
	assert.Equal(t, "none", config.Storage.Compression)
	assert.Equal(t, 4096, config.Storage.CacheSize)
	assert.Equal(t, "/tmp/cpswapd/events.db", config.EventsPath())

	params, err := config.Params()
	require.NoError(t, err)
	assert.Equal(t, keylet.DefaultProgramID, params.ProgramID)
	assert.Equal(t, keylet.DefaultReferenceMint, params.ReferenceMint)
	assert.Equal(t, "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM", params.Admin.String())
	assert.Equal(t, uint64(10), params.SupplyPolicy.MinOffset)
	assert.Equal(t, uint64(1000), params.SupplyPolicy.MaxOffsetRatio)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	config, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Empty(t, config.GetConfigPath())
	assert.Equal(t, *Default(), *config)
	assert.Equal(t, "pebble", config.Storage.Backend)
	assert.Equal(t, SinkJSONL, config.Events.Sink)
	assert.Equal(t, "info", config.Log.Level)
	assert.False(t, config.Metrics.Enabled)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"), nil)
	assert.Error(t, err)
}

func TestLoadConfigEnvAndFlags(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "warn"
`)
	t.Setenv("CPSWAPD_ENGINE_WORKERS", "7")
	t.Setenv("CPSWAPD_LOG_LEVEL", "error")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "info", "")
	flags.String("data-dir", "data", "")
	require.NoError(t, flags.Parse([]string{"--data-dir", "/var/lib/cpswapd"}))

	config, err := LoadConfig(path, flags)
	require.NoError(t, err)
	assert.Equal(t, 7, config.Engine.Workers)
	// unset flags do not mask the environment
	assert.Equal(t, "error", config.Log.Level)
	assert.Equal(t, "/var/lib/cpswapd", config.Storage.Path)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad program id", func(c *Config) { c.Ledger.ProgramID = "not-a-key" }},
		{"bad admin", func(c *Config) { c.Ledger.Admin = "0x00" }},
		{"negative epoch", func(c *Config) { c.Ledger.EpochSeconds = -1 }},
		{"zero min offset", func(c *Config) { c.AMM.MinOffset = 0 }},
		{"negative workers", func(c *Config) { c.Engine.Workers = -2 }},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "bolt" }},
		{"missing path", func(c *Config) { c.Storage.Path = "" }},
		{"unknown compression", func(c *Config) { c.Storage.Compression = "zstd" }},
		{"unknown sink", func(c *Config) { c.Events.Sink = "kafka" }},
		{"postgres without dsn", func(c *Config) { c.Events.Sink = SinkPostgres }},
		{"bad level", func(c *Config) { c.Log.Level = "chatty" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
		{"bad listen", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Listen = "9464" }},
	}
	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}

	t.Run("memory needs no path", func(t *testing.T) {
		c := Default()
		c.Storage.Backend = "memory"
		c.Storage.Path = ""
		assert.NoError(t, c.Validate())
	})
}
