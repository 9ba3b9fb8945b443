// Package amm provides test helpers and builders for pool transaction testing.
package amm

import (
	"testing"

	"github.com/LeJamon/goCPSwap/internal/core/tx"
	coreAmm "github.com/LeJamon/goCPSwap/internal/core/tx/amm"
	jtx "github.com/LeJamon/goCPSwap/internal/testing"
	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

// Standard pool parameters. With them a 1,000,000 reference buy pays a
// 2,500 trade fee split 300 protocol and 2,200 creator.
const (
	ConfigIndex     uint16 = 0
	TradeFeeRate    uint64 = 2500
	ProtocolFeeRate uint64 = 120_000
	SeedAmount      uint64 = 25_000_000
	Offset          uint64 = 10_000_000
)

// AMMTestEnv wraps TestEnv with pool-specific helpers.
type AMMTestEnv struct {
	*jtx.TestEnv
	T *testing.T

	// Standard test accounts
	Creator   *jtx.Account // lists the pool and holds the listed token
	Collector *jtx.Account // protocol fee collector of the standard config
	Alice     *jtx.Account // holds the reference asset
	Bob       *jtx.Account // holds the listed token
	Carol     *jtx.Account // holds nothing

	// Listed is the standard listed mint, authority Creator.
	Listed solana.PublicKey
}

// NewAMMTestEnv creates an environment with the reference and listed mints,
// funded accounts and the standard config at ConfigIndex. No pool exists yet.
func NewAMMTestEnv(t *testing.T, opts ...jtx.Option) *AMMTestEnv {
	t.Helper()

	env := jtx.NewTestEnv(t, opts...)
	e := &AMMTestEnv{
		TestEnv:   env,
		T:         t,
		Creator:   env.Account("creator"),
		Collector: env.Account("collector"),
		Alice:     env.Account("alice"),
		Bob:       env.Account("bob"),
		Carol:     env.Account("carol"),
	}

	env.CreateMint(jtx.NewMint(env.Admin(), env.ReferenceMint()))
	env.MintTo(env.Admin(), env.ReferenceMint(), e.Alice, 100_000_000)

	e.Listed = e.ListMint(jtx.NewMint(e.Creator, jtx.NewAccount("listed").Address))
	env.MintTo(e.Creator, e.Listed, e.Bob, 10_000_000)

	jtx.RequireTxSuccess(t, e.CreateConfig(ConfigIndex, TradeFeeRate, ProtocolFeeRate))
	return e
}

// ListMint creates the mint described by b and funds Creator with twice
// SeedAmount of it.
func (e *AMMTestEnv) ListMint(b *jtx.MintBuilder) solana.PublicKey {
	e.T.Helper()
	mint := e.CreateMint(b)
	e.MintTo(e.Creator, mint, e.Creator, 2*SeedAmount)
	return mint
}

// CreateConfig submits a CreateConfig signed by the admin with Collector as
// the protocol fee collector.
func (e *AMMTestEnv) CreateConfig(index uint16, tradeFeeRate, protocolFeeRate uint64) jtx.TxResult {
	e.T.Helper()
	return e.Submit(coreAmm.NewCreateConfig(e.Admin().Address, index, tradeFeeRate, protocolFeeRate, e.Collector.Address))
}

// CreatePool lists mint with the standard seed and offset and opens it.
func (e *AMMTestEnv) CreatePool(mint solana.PublicKey) jtx.TxResult {
	e.T.Helper()
	r := e.Submit(Initialize(e.Creator, mint).Build())
	jtx.RequireTxSuccess(e.T, r)
	e.Open()
	return r
}

// Open advances the clock past any pending open time.
func (e *AMMTestEnv) Open() {
	e.AdvanceTime(secondsUntilOpen)
}

// CollectFeesTx builds a CollectFee for mint paying the standard recipients.
func (e *AMMTestEnv) CollectFeesTx(signer *jtx.Account, mint solana.PublicKey) *coreAmm.CollectFee {
	return coreAmm.NewCollectFee(signer.Address, mint, ConfigIndex, e.Creator.Address, e.Collector.Address)
}

// CollectFees submits CollectFeesTx.
func (e *AMMTestEnv) CollectFees(signer *jtx.Account, mint solana.PublicKey) jtx.TxResult {
	e.T.Helper()
	return e.Submit(e.CollectFeesTx(signer, mint))
}

// Reserves returns the virtual reserves of the pool listing mint.
func (e *AMMTestEnv) Reserves(mint solana.PublicKey) (listed, reference uint64) {
	e.T.Helper()
	r, err := e.Pool(mint).Reserves(e.Ledger())
	require.NoError(e.T, err)
	return r.Listed, r.Reference
}

// Vaults returns the real vault balances of the pool listing mint.
func (e *AMMTestEnv) Vaults(mint solana.PublicKey) (listed, reference uint64) {
	e.T.Helper()
	listed, reference, err := e.Pool(mint).VaultBalances(e.Ledger())
	require.NoError(e.T, err)
	return listed, reference
}

// Product returns the virtual constant product of the pool listing mint.
func (e *AMMTestEnv) Product(mint solana.PublicKey) *uint256.Int {
	e.T.Helper()
	l, r := e.Reserves(mint)
	return new(uint256.Int).Mul(uint256.NewInt(l), uint256.NewInt(r))
}

// ExpectTER asserts that result carries code.
func ExpectTER(t *testing.T, result jtx.TxResult, code tx.Result) {
	t.Helper()
	require.Equal(t, code, result.Result, "expected %s, got %s: %s", code, result.Code, result.Message)
}
