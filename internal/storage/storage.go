// Package storage opens the configured key-value backend.
package storage

import (
	"fmt"
	"os"

	"github.com/LeJamon/goCPSwap/internal/storage/database"
	"github.com/LeJamon/goCPSwap/internal/storage/database/leveldb"
	"github.com/LeJamon/goCPSwap/internal/storage/database/memory"
	"github.com/LeJamon/goCPSwap/internal/storage/database/pebble"
)

// Backend names
const (
	BackendPebble  = "pebble"
	BackendLevelDB = "leveldb"
	BackendMemory  = "memory"
)

// Backends lists every backend Open accepts.
var Backends = []string{BackendPebble, BackendLevelDB, BackendMemory}

// Open opens the backend rooted at path. The memory backend ignores path.
func Open(backend, path string) (database.DB, error) {
	switch backend {
	case BackendMemory:
		return memory.New(), nil
	case BackendPebble, BackendLevelDB:
	default:
		return nil, fmt.Errorf("%w: %q", database.ErrUnknownBackend, backend)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if backend == BackendPebble {
		return pebble.Open(path)
	}
	return leveldb.Open(path)
}
