package testing

import (
	"testing"
	"time"

	"github.com/LeJamon/goCPSwap/internal/core/ledger/keylet"
	"github.com/LeJamon/goCPSwap/internal/core/tx"
	"github.com/LeJamon/goCPSwap/internal/core/tx/token"
	"github.com/LeJamon/goCPSwap/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccountDeterministic(t *testing.T) {
	a := NewAccount("alice")
	b := NewAccount("alice")
	c := NewAccount("bob")
	assert.Equal(t, a.Address, b.Address)
	assert.NotEqual(t, a.Address, c.Address)
	assert.Equal(t, a.Address, a.Key.PublicKey())
	assert.Equal(t, "alice", a.String())
}

func TestManualClock(t *testing.T) {
	c := NewManualClock()
	start := c.Now()
	c.Advance(90 * time.Second)
	c.AdvanceEpoch(2)
	now := c.Now()
	assert.Equal(t, start.UnixTimestamp+90, now.UnixTimestamp)
	assert.Equal(t, start.Epoch+2, now.Epoch)
}

func TestTokens(t *testing.T) {
	assert.Equal(t, uint64(5), Tokens(5, 0))
	assert.Equal(t, uint64(5_000_000), Tokens(5, 6))
}

func TestEnvMintAndBalance(t *testing.T) {
	for _, backend := range storage.Backends {
		t.Run(backend, func(t *testing.T) {
			env := NewTestEnv(t, WithBackend(backend))
			alice := env.Account("alice")
			bob := env.Account("bob")

			mint := env.CreateMint(NewMint(alice, NewAccount("usd").Address).TransferFee(100, 50))
			env.MintTo(alice, mint, bob, 10_000)

			RequireBalance(t, env, bob, mint, 10_000)
			assert.Equal(t, keylet.Token2022ProgramID, env.Mint(mint).TokenProgram)
			assert.Len(t, env.Snapshot(), 2)
		})
	}
}

func TestEnvSubmitVerifiesSignatures(t *testing.T) {
	env := NewTestEnv(t)
	alice := env.Account("alice")
	mint := NewMint(alice, NewAccount("usd").Address).Build()

	// the signature no longer covers the payload
	require.NoError(t, tx.Sign(mint, alice.Key))
	mint.Decimals = 9
	RequireTxFail(t, env.SubmitSigned(mint), tx.TefBAD_SIGNATURE)

	RequireTxSuccess(t, env.Submit(mint))
}

func TestEnvFailedTransactionLeavesLedger(t *testing.T) {
	env := NewTestEnv(t)
	alice := env.Account("alice")
	mint := env.CreateMint(NewMint(alice, NewAccount("usd").Address))
	before := env.Snapshot()

	// bob is not the mint authority
	bob := env.Account("bob")
	r := env.Submit(token.NewMintTo(bob.Address, mint, bob.Address, 10))
	assert.True(t, r.IsClaimed())
	RequireUnchanged(t, env, before)
}

func TestEnvSubmitBlock(t *testing.T) {
	env := NewTestEnv(t)
	alice := env.Account("alice")
	bob := env.Account("bob")
	usd := NewAccount("usd").Address
	eur := NewAccount("eur").Address

	results := env.SubmitBlock(
		NewMint(alice, usd).Build(),
		NewMint(bob, eur).Build(),
		token.NewMintTo(alice.Address, usd, bob.Address, 7),
		token.NewMintTo(bob.Address, eur, alice.Address, 9),
	)
	for _, r := range results {
		RequireTxSuccess(t, r)
	}
	RequireBalance(t, env, bob, usd, 7)
	RequireBalance(t, env, alice, eur, 9)
}
