package storage

import (
	"context"
	"testing"

	"github.com/LeJamon/goCPSwap/internal/storage/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openAll(t *testing.T) map[string]database.DB {
	t.Helper()
	dbs := make(map[string]database.DB)
	for _, backend := range Backends {
		db, err := Open(backend, t.TempDir())
		require.NoError(t, err, backend)
		t.Cleanup(func() { db.Close() })
		dbs[backend] = db
	}
	return dbs
}

func TestBackends(t *testing.T) {
	ctx := context.Background()
	for name, db := range openAll(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("ReadWriteDelete", func(t *testing.T) {
				require.NoError(t, db.Write(ctx, []byte("k"), []byte("v")))
				got, err := db.Read(ctx, []byte("k"))
				require.NoError(t, err)
				assert.Equal(t, []byte("v"), got)

				require.NoError(t, db.Delete(ctx, []byte("k")))
				_, err = db.Read(ctx, []byte("k"))
				assert.ErrorIs(t, err, database.ErrKeyNotFound)
			})

			t.Run("Batch", func(t *testing.T) {
				require.NoError(t, db.Write(ctx, []byte("gone"), []byte("x")))
				require.NoError(t, db.Batch(ctx, []database.BatchOperation{
					database.Put([]byte("b1"), []byte("1")),
					database.Put([]byte("b2"), []byte("2")),
					database.Del([]byte("gone")),
				}))
				v, err := db.Read(ctx, []byte("b2"))
				require.NoError(t, err)
				assert.Equal(t, []byte("2"), v)
				_, err = db.Read(ctx, []byte("gone"))
				assert.ErrorIs(t, err, database.ErrKeyNotFound)
			})

			t.Run("IteratorRange", func(t *testing.T) {
				for _, k := range []string{"p/a", "p/c", "p/b", "q/a"} {
					require.NoError(t, db.Write(ctx, []byte(k), []byte(k)))
				}
				it, err := db.Iterator(ctx, []byte("p/"), database.PrefixEnd([]byte("p/")))
				require.NoError(t, err)
				defer it.Close()
				var keys []string
				for it.Next() {
					keys = append(keys, string(it.Key()))
					assert.Equal(t, it.Key(), it.Value())
				}
				require.NoError(t, it.Error())
				assert.Equal(t, []string{"p/a", "p/b", "p/c"}, keys)
			})
		})
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("bolt", t.TempDir())
	assert.ErrorIs(t, err, database.ErrUnknownBackend)
}

func TestPrefixEnd(t *testing.T) {
	assert.Equal(t, []byte("q"), database.PrefixEnd([]byte("p")))
	assert.Equal(t, []byte{0x02}, database.PrefixEnd([]byte{0x01, 0xff}))
	assert.Nil(t, database.PrefixEnd([]byte{0xff, 0xff}))
}
