package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/LeJamon/goCPSwap/internal/config"
	"github.com/LeJamon/goCPSwap/internal/core/events"
	"github.com/LeJamon/goCPSwap/internal/core/ledger/store"
	"github.com/LeJamon/goCPSwap/internal/core/tx"
	"github.com/LeJamon/goCPSwap/internal/logging"
	"github.com/LeJamon/goCPSwap/internal/storage"
	"github.com/LeJamon/goCPSwap/internal/storage/eventlog"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// node is the opened ledger a command works on.
type node struct {
	cfg    *config.Config
	params tx.Params
	logger *zap.Logger
	ledger *store.Ledger
}

// openNode loads the configuration and opens the ledger store.
func openNode(cmd *cobra.Command) (*node, error) {
	cfg, err := config.LoadConfig(configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	params, err := cfg.Params()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(cfg.Storage.Backend, filepath.Join(cfg.Storage.Path, "ledger"))
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	ledger, err := store.Open(db, store.Config{
		CacheSize:   cfg.Storage.CacheSize,
		Compression: cfg.Storage.Compression,
	}, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	logger.Debug("ledger opened",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("path", cfg.Storage.Path),
		zap.Uint64("commit_seq", ledger.Seq()))

	return &node{cfg: cfg, params: params, logger: logger, ledger: ledger}, nil
}

func (n *node) Close() {
	if err := n.ledger.Close(); err != nil {
		n.logger.Warn("failed to close ledger", zap.Error(err))
	}
	n.logger.Sync()
}

// sequenced is a sink that knows the last sequence it stored.
type sequenced interface {
	events.Sink
	LastSeq(ctx context.Context) (uint64, error)
}

// openSink opens the configured event sink and returns the sequence
// numbering should continue from.
func (n *node) openSink(ctx context.Context) (events.Sink, uint64, error) {
	var (
		sink sequenced
		err  error
	)
	switch n.cfg.Events.Sink {
	case config.SinkNone:
		return events.Nop{}, 0, nil
	case config.SinkJSONL, config.SinkSQLite:
		if err := os.MkdirAll(filepath.Dir(n.cfg.EventsPath()), 0o755); err != nil {
			return nil, 0, fmt.Errorf("failed to create events directory: %w", err)
		}
	}
	switch n.cfg.Events.Sink {
	case config.SinkJSONL:
		sink, err = eventlog.OpenJSONL(n.cfg.EventsPath(), n.logger)
	case config.SinkSQLite:
		sink, err = eventlog.OpenSQL(ctx, eventlog.DriverSQLite, n.cfg.EventsPath(), n.logger)
	case config.SinkPostgres:
		sink, err = eventlog.OpenSQL(ctx, eventlog.DriverPostgres, n.cfg.Events.DSN, n.logger)
	default:
		return nil, 0, fmt.Errorf("unknown event sink %q", n.cfg.Events.Sink)
	}
	if err != nil {
		return nil, 0, err
	}
	seq, err := sink.LastSeq(ctx)
	if err != nil {
		sink.Close()
		return nil, 0, fmt.Errorf("failed to read last event sequence: %w", err)
	}
	return sink, seq, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
