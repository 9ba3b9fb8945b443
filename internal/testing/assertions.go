package testing

import (
	"testing"

	"github.com/LeJamon/goCPSwap/internal/core/tx"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

// RequireBalance asserts that an account holds the expected amount of mint.
func RequireBalance(t *testing.T, env *TestEnv, acc *Account, mint solana.PublicKey, expected uint64) {
	t.Helper()
	actual := env.Balance(acc, mint)
	require.Equal(t, expected, actual,
		"Account %s balance of %s mismatch: expected %d, got %d",
		acc.Name, mint, expected, actual)
}

// RequireTxSuccess asserts that a transaction result indicates success.
func RequireTxSuccess(t *testing.T, result TxResult) {
	t.Helper()
	require.True(t, result.Success,
		"Expected transaction success, got %s: %s", result.Code, result.Message)
	require.Equal(t, tx.TesSUCCESS, result.Result,
		"Expected tesSUCCESS, got %s: %s", result.Code, result.Message)
}

// RequireTxFail asserts that a transaction result indicates failure with a specific code.
func RequireTxFail(t *testing.T, result TxResult, expected tx.Result) {
	t.Helper()
	require.False(t, result.Success,
		"Expected transaction failure with code %s, but transaction succeeded", expected)
	require.Equal(t, expected, result.Result,
		"Expected failure code %s, got %s: %s", expected, result.Code, result.Message)
	require.Empty(t, result.Changes, "failed transaction changed state")
	require.Empty(t, result.Events, "failed transaction published events")
}

// RequireUnchanged asserts that the ledger matches an earlier snapshot.
func RequireUnchanged(t *testing.T, env *TestEnv, before map[solana.PublicKey][]byte) {
	t.Helper()
	after := env.Snapshot()
	require.Equal(t, len(before), len(after), "record count changed")
	for addr, data := range before {
		require.Equal(t, data, after[addr], "record %s changed", addr)
	}
}
