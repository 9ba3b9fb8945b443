// Package store is the committed ledger: records persisted in a key-value
// database behind an LRU read cache.
package store

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/LeJamon/goCPSwap/internal/core/ledger/entry"
	"github.com/LeJamon/goCPSwap/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goCPSwap/internal/core/ledger/keylet"
	"github.com/LeJamon/goCPSwap/internal/core/tx"
	"github.com/LeJamon/goCPSwap/internal/storage/compression"
	"github.com/LeJamon/goCPSwap/internal/storage/database"
	"github.com/gagliardetto/solana-go"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// Key prefixes
var (
	recordPrefix = []byte("r/")
	seqKey       = []byte("m/commit_seq")
)

// Config configures a Ledger.
type Config struct {
	// CacheSize is the number of records kept in memory. Zero disables the cache.
	CacheSize int
	// Compression names the compressor for new records ("none" or "lz4").
	Compression string
}

// DefaultConfig returns the default store configuration
func DefaultConfig() Config {
	return Config{CacheSize: 4096, Compression: "lz4"}
}

// Ledger implements tx.Ledger over a database.DB. It is safe for concurrent
// readers and committers; each commit is one atomic batch.
type Ledger struct {
	db     database.DB
	codec  *compression.Codec
	cache  *lru.Cache[[32]byte, []byte]
	logger *zap.Logger

	// mu orders commits against reads so a reader never sees half a commit
	// through the cache.
	mu  sync.RWMutex
	seq uint64
}

var _ tx.Ledger = (*Ledger)(nil)

// Open wraps db. The commit sequence continues from what db holds.
func Open(db database.DB, cfg Config, logger *zap.Logger) (*Ledger, error) {
	c, err := compression.Get(cfg.Compression)
	if err != nil {
		return nil, err
	}
	l := &Ledger{
		db:     db,
		codec:  compression.NewCodec(c),
		logger: logger.Named("store"),
	}
	if cfg.CacheSize > 0 {
		if l.cache, err = lru.New[[32]byte, []byte](cfg.CacheSize); err != nil {
			return nil, err
		}
	}

	raw, err := db.Read(context.Background(), seqKey)
	switch {
	case errors.Is(err, database.ErrKeyNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to read commit sequence: %w", err)
	case len(raw) != 8:
		return nil, fmt.Errorf("corrupt commit sequence of %d bytes", len(raw))
	default:
		l.seq = binary.BigEndian.Uint64(raw)
	}
	l.logger.Debug("ledger opened", zap.Uint64("seq", l.seq), zap.String("compression", c.Name()))
	return l, nil
}

func recordKey(key [32]byte) []byte {
	return append(append(make([]byte, 0, len(recordPrefix)+32), recordPrefix...), key[:]...)
}

// Read returns the record at k, or nil if there is none.
func (l *Ledger) Read(k keylet.Keylet) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.read(k.Key)
}

func (l *Ledger) read(key [32]byte) ([]byte, error) {
	if l.cache != nil {
		if v, ok := l.cache.Get(key); ok {
			return append([]byte(nil), v...), nil
		}
	}
	frame, err := l.db.Read(context.Background(), recordKey(key))
	if errors.Is(err, database.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}
	data, err := l.codec.Decode(frame)
	if err != nil {
		return nil, fmt.Errorf("failed to decode record %s: %w", solana.PublicKeyFromBytes(key[:]), err)
	}
	if l.cache != nil {
		l.cache.Add(key, append([]byte(nil), data...))
	}
	return data, nil
}

// Exists reports whether a record is stored at k.
func (l *Ledger) Exists(k keylet.Keylet) (bool, error) {
	data, err := l.Read(k)
	return data != nil, err
}

// Commit writes changes and advances the commit sequence in one batch.
func (l *Ledger) Commit(changes []tx.Change) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	ops := make([]database.BatchOperation, 0, len(changes)+1)
	for _, c := range changes {
		if c.Action == tx.ActionErase {
			ops = append(ops, database.Del(recordKey(c.Key)))
			continue
		}
		frame, err := l.codec.Encode(c.Data)
		if err != nil {
			return fmt.Errorf("failed to encode record: %w", err)
		}
		ops = append(ops, database.Put(recordKey(c.Key), frame))
	}
	next := l.seq + 1
	seq := make([]byte, 8)
	binary.BigEndian.PutUint64(seq, next)
	ops = append(ops, database.Put(seqKey, seq))

	if err := l.db.Batch(context.Background(), ops); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	l.seq = next

	if l.cache != nil {
		for _, c := range changes {
			if c.Action == tx.ActionErase {
				l.cache.Remove(c.Key)
			} else {
				l.cache.Add(c.Key, append([]byte(nil), c.Data...))
			}
		}
	}
	l.logger.Debug("committed", zap.Uint64("seq", next), zap.Int("changes", len(changes)))
	return nil
}

// Seq returns the number of commits applied so far.
func (l *Ledger) Seq() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.seq
}

// ForEach calls fn with every record of type t in address order. Iteration
// stops at the first error fn returns.
func (l *Ledger) ForEach(ctx context.Context, t entry.Type, fn func(addr solana.PublicKey, data []byte) error) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	it, err := l.db.Iterator(ctx, recordPrefix, database.PrefixEnd(recordPrefix))
	if err != nil {
		return fmt.Errorf("failed to iterate records: %w", err)
	}
	defer it.Close()

	for it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := l.codec.Decode(it.Value())
		if err != nil {
			return fmt.Errorf("failed to decode record: %w", err)
		}
		got, err := entries.PeekType(data)
		if err != nil || got != t {
			continue
		}
		addr := solana.PublicKeyFromBytes(it.Key()[len(recordPrefix):])
		if err := fn(addr, data); err != nil {
			return err
		}
	}
	return it.Error()
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}
