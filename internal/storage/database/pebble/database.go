// Package pebble is a database.DB backed by cockroachdb/pebble. It is the
// default ledger backend.
package pebble

import (
	"context"
	"errors"
	"fmt"

	"github.com/LeJamon/goCPSwap/internal/storage/database"
	"github.com/cockroachdb/pebble"
)

// Ledger commits are small and must survive a crash, so every write syncs.
var writeOpts = pebble.Sync

type DB struct {
	db *pebble.DB
}

// Open opens or creates the database at path.
func Open(path string) (*DB, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble database %s: %w", path, err)
	}
	return &DB{db: db}, nil
}

func clone(b []byte) []byte {
	return append(make([]byte, 0, len(b)), b...)
}

func (p *DB) Read(_ context.Context, key []byte) ([]byte, error) {
	if p.db == nil {
		return nil, database.ErrDBClosed
	}
	val, closer, err := p.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, database.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return clone(val), nil
}

func (p *DB) Write(_ context.Context, key, value []byte) error {
	if p.db == nil {
		return database.ErrDBClosed
	}
	return p.db.Set(key, value, writeOpts)
}

func (p *DB) Delete(_ context.Context, key []byte) error {
	if p.db == nil {
		return database.ErrDBClosed
	}
	return p.db.Delete(key, writeOpts)
}

// Batch commits ops atomically.
func (p *DB) Batch(_ context.Context, ops []database.BatchOperation) error {
	if p.db == nil {
		return database.ErrDBClosed
	}
	b := p.db.NewBatch()
	defer b.Close()

	for _, op := range ops {
		var err error
		switch op.Type {
		case database.BatchPut:
			err = b.Set(op.Key, op.Value, nil)
		case database.BatchDelete:
			err = b.Delete(op.Key, nil)
		default:
			err = fmt.Errorf("%w: unknown batch operation type: %d", database.ErrBatchOperationFailed, op.Type)
		}
		if err != nil {
			return err
		}
	}
	return b.Commit(writeOpts)
}

func (p *DB) Close() error {
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}

func (p *DB) Iterator(_ context.Context, start, end []byte) (database.Iterator, error) {
	if p.db == nil {
		return nil, database.ErrDBClosed
	}
	it, err := p.db.NewIter(&pebble.IterOptions{LowerBound: start, UpperBound: end})
	if err != nil {
		return nil, err
	}
	return &iter{it: it}, nil
}

// iter copies each entry out of pebble's buffers as it advances.
type iter struct {
	it         *pebble.Iterator
	started    bool
	key, value []byte
}

func (i *iter) Next() bool {
	var ok bool
	if !i.started {
		i.started = true
		ok = i.it.First()
	} else {
		ok = i.it.Next()
	}
	if !ok {
		i.key, i.value = nil, nil
		return false
	}
	i.key = clone(i.it.Key())
	i.value = clone(i.it.Value())
	return true
}

func (i *iter) Key() []byte   { return i.key }
func (i *iter) Value() []byte { return i.value }
func (i *iter) Error() error  { return i.it.Error() }
func (i *iter) Close() error  { return i.it.Close() }
