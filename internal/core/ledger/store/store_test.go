package store

import (
	"context"
	"errors"
	"testing"

	"github.com/LeJamon/goCPSwap/internal/core/ledger/entry"
	"github.com/LeJamon/goCPSwap/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goCPSwap/internal/core/ledger/keylet"
	"github.com/LeJamon/goCPSwap/internal/core/tx"
	"github.com/LeJamon/goCPSwap/internal/storage"
	"github.com/LeJamon/goCPSwap/internal/storage/database"
	"github.com/LeJamon/goCPSwap/internal/storage/database/memory"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func addr(b byte) solana.PublicKey {
	var k solana.PublicKey
	k[0] = b
	return k
}

func encode(t *testing.T, e entry.Entry) []byte {
	t.Helper()
	data, err := e.Encode()
	require.NoError(t, err)
	return data
}

func TestLedgerCommitAndRead(t *testing.T) {
	for _, cfg := range []Config{DefaultConfig(), {Compression: "none"}} {
		l, err := Open(memory.New(), cfg, zap.NewNop())
		require.NoError(t, err)

		acct := encode(t, &entries.TokenAccount{Mint: addr(9), Owner: addr(8), Amount: 5})
		require.NoError(t, l.Commit([]tx.Change{
			{Action: tx.ActionInsert, Key: addr(1), Type: entry.TypeTokenAccount, Data: acct},
		}))

		got, err := l.Read(keylet.TokenAccount(addr(1)))
		require.NoError(t, err)
		assert.Equal(t, acct, got)

		missing, err := l.Read(keylet.TokenAccount(addr(2)))
		require.NoError(t, err)
		assert.Nil(t, missing)

		require.NoError(t, l.Commit([]tx.Change{{Action: tx.ActionErase, Key: addr(1), Type: entry.TypeTokenAccount}}))
		ok, err := l.Exists(keylet.TokenAccount(addr(1)))
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, uint64(2), l.Seq())
	}
}

func TestLedgerPersistsSequence(t *testing.T) {
	dir := t.TempDir()
	db, err := storage.Open(storage.BackendPebble, dir)
	require.NoError(t, err)
	l, err := Open(db, DefaultConfig(), zap.NewNop())
	require.NoError(t, err)
	mint := encode(t, &entries.Mint{TokenProgram: keylet.TokenProgramID, MintAuthority: addr(3), Decimals: 6})
	require.NoError(t, l.Commit([]tx.Change{{Action: tx.ActionInsert, Key: addr(4), Type: entry.TypeMint, Data: mint}}))
	require.NoError(t, l.Close())

	db, err = storage.Open(storage.BackendPebble, dir)
	require.NoError(t, err)
	l, err = Open(db, DefaultConfig(), zap.NewNop())
	require.NoError(t, err)
	defer l.Close()
	assert.Equal(t, uint64(1), l.Seq())
	got, err := l.Read(keylet.Mint(addr(4)))
	require.NoError(t, err)
	assert.Equal(t, mint, got)
}

func TestLedgerForEach(t *testing.T) {
	l, err := Open(memory.New(), DefaultConfig(), zap.NewNop())
	require.NoError(t, err)
	mint := encode(t, &entries.Mint{TokenProgram: keylet.TokenProgramID, MintAuthority: addr(3)})
	acct := encode(t, &entries.TokenAccount{Mint: addr(9), Owner: addr(8)})
	require.NoError(t, l.Commit([]tx.Change{
		{Action: tx.ActionInsert, Key: addr(7), Type: entry.TypeMint, Data: mint},
		{Action: tx.ActionInsert, Key: addr(5), Type: entry.TypeMint, Data: mint},
		{Action: tx.ActionInsert, Key: addr(6), Type: entry.TypeTokenAccount, Data: acct},
	}))

	var seen []solana.PublicKey
	require.NoError(t, l.ForEach(context.Background(), entry.TypeMint, func(a solana.PublicKey, _ []byte) error {
		seen = append(seen, a)
		return nil
	}))
	assert.Equal(t, []solana.PublicKey{addr(5), addr(7)}, seen)

	stop := errors.New("stop")
	err = l.ForEach(context.Background(), entry.TypeMint, func(solana.PublicKey, []byte) error { return stop })
	assert.ErrorIs(t, err, stop)
}

type failingDB struct{ database.DB }

func (failingDB) Batch(context.Context, []database.BatchOperation) error {
	return errors.New("disk full")
}

func TestLedgerCommitFailureKeepsState(t *testing.T) {
	l, err := Open(failingDB{memory.New()}, DefaultConfig(), zap.NewNop())
	require.NoError(t, err)
	acct := encode(t, &entries.TokenAccount{Mint: addr(9), Owner: addr(8)})
	err = l.Commit([]tx.Change{{Action: tx.ActionInsert, Key: addr(1), Type: entry.TypeTokenAccount, Data: acct}})
	assert.Error(t, err)
	assert.Zero(t, l.Seq())
	got, err := l.Read(keylet.TokenAccount(addr(1)))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestOpenUnknownCompression(t *testing.T) {
	_, err := Open(memory.New(), Config{Compression: "zstd"}, zap.NewNop())
	assert.Error(t, err)
}
