package cli

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/LeJamon/goCPSwap/internal/core/ledger/keylet"
	"github.com/LeJamon/goCPSwap/internal/core/tx"
	"github.com/LeJamon/goCPSwap/internal/core/tx/amm"
	"github.com/LeJamon/goCPSwap/internal/core/tx/token"
	"github.com/LeJamon/goCPSwap/internal/storage/eventlog"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func account(name string) solana.PublicKey {
	seed := sha256.Sum256([]byte(name))
	return solana.PrivateKey(ed25519.NewKeyFromSeed(seed[:])).PublicKey()
}

func execute(t *testing.T, args ...string) []byte {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.Bytes()
}

func writeBlock(t *testing.T, dir, name string, txs ...tx.Transaction) string {
	t.Helper()
	data, err := json.Marshal(txs)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	admin := account("admin")
	creator := account("creator")
	collector := account("collector")
	listed := account("listed-mint")
	reference := keylet.DefaultReferenceMint

	t.Chdir(dir)
	t.Setenv("CPSWAPD_LEDGER_ADMIN", admin.String())
	t.Setenv("CPSWAPD_ENGINE_SKIP_SIGNATURE_VERIFICATION", "true")
	t.Setenv("CPSWAPD_LOG_LEVEL", "error")

	setup := writeBlock(t, dir, "setup.json",
		token.NewCreateMint(creator, listed, keylet.TokenProgramID, 6),
		token.NewCreateMint(admin, reference, keylet.TokenProgramID, 6),
		token.NewMintTo(creator, listed, creator, 10_000_000),
		amm.NewCreateConfig(admin, 0, 2500, 120_000, collector),
	)
	pool := writeBlock(t, dir, "pool.json",
		amm.NewInitialize(creator, listed, 0, 10_000_000, 25_000_000),
	)

	out := execute(t, "--data-dir", filepath.Join(dir, "data"), "apply", setup, pool)
	dec := json.NewDecoder(bytes.NewReader(out))
	for _, want := range []int{4, 1} {
		var block blockOutput
		require.NoError(t, dec.Decode(&block))
		assert.Equal(t, want, block.Applied, "%+v", block)
		assert.Zero(t, block.Failed)
	}

	records, err := eventlog.ReadJSONL(filepath.Join(dir, "data", "events.jsonl"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, uint64(1), records[0].Seq)
	assert.Equal(t, uint64(2), records[1].Seq)

	var p poolOutput
	require.NoError(t, json.Unmarshal(execute(t, "--data-dir", filepath.Join(dir, "data"), "pool", "show", listed.String()), &p))
	assert.Equal(t, listed.String(), p.Mint)
	assert.Equal(t, uint64(10_000_000), p.VaultListed)
	assert.Zero(t, p.VaultReference)
	assert.Equal(t, uint64(25_000_000), p.ReserveReference)
	assert.InDelta(t, 2.5, p.Price, 1e-6)

	var c configOutput
	require.NoError(t, json.Unmarshal(execute(t, "--data-dir", filepath.Join(dir, "data"), "config", "show", "0"), &c))
	assert.Equal(t, uint64(2500), c.TradeFeeRate)
	assert.Equal(t, collector.String(), c.ProtocolFeeCollector)

	var q quoteOutput
	require.NoError(t, json.Unmarshal(execute(t, "--data-dir", filepath.Join(dir, "data"), "quote", listed.String(), "--in", "1000000"), &q))
	assert.True(t, q.ExactIn)
	assert.Equal(t, uint64(1_000_000), q.UserPays)
	assert.Equal(t, uint64(2500), q.TradeFee)
	assert.Equal(t, uint64(300), q.ProtocolFee)
	assert.Equal(t, uint64(2200), q.CreatorFee)
	assert.Equal(t, uint64(2_267_560), q.UserReceives)

	assert.Contains(t, string(execute(t, "version")), "SwapBaseInput")
}
