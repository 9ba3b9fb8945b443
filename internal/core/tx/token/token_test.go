package token

import (
	"crypto/sha256"
	"testing"

	"github.com/LeJamon/goCPSwap/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goCPSwap/internal/core/ledger/keylet"
	"github.com/LeJamon/goCPSwap/internal/core/tx"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emptyBase struct{}

func (emptyBase) Read(keylet.Keylet) ([]byte, error)   { return nil, nil }
func (emptyBase) Exists(keylet.Keylet) (bool, error) { return false, nil }

func addr(name string) solana.PublicKey {
	return solana.PublicKeyFromBytes(func() []byte { h := sha256.Sum256([]byte(name)); return h[:] }())
}

func newView() *tx.ApplyStateTable {
	return tx.NewApplyStateTable(emptyBase{})
}

func mintFee(bps uint16, maxFee uint64) *entries.Mint {
	return &entries.Mint{
		TokenProgram:           keylet.Token2022ProgramID,
		Extensions:             entries.ExtTransferFee,
		TransferFeeBasisPoints: bps,
		MaximumFee:             maxFee,
	}
}

func TestIsSupportedMint(t *testing.T) {
	tests := []struct {
		name string
		mint entries.Mint
		ok   bool
	}{
		{"classic", entries.Mint{TokenProgram: keylet.TokenProgramID}, true},
		{"2022 plain", entries.Mint{TokenProgram: keylet.Token2022ProgramID}, true},
		{"2022 fee and metadata", entries.Mint{TokenProgram: keylet.Token2022ProgramID,
			Extensions: entries.ExtTransferFee | entries.ExtMetadataPointer | entries.ExtTokenMetadata}, true},
		{"2022 transfer hook", entries.Mint{TokenProgram: keylet.Token2022ProgramID,
			Extensions: entries.ExtTransferFee | entries.ExtTransferHook}, false},
		{"2022 non transferable", entries.Mint{TokenProgram: keylet.Token2022ProgramID,
			Extensions: entries.ExtNonTransferable}, false},
		{"unknown program", entries.Mint{TokenProgram: addr("rogue")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ok, IsSupportedMint(&tt.mint))
		})
	}
}

func TestTransferFee(t *testing.T) {
	tests := []struct {
		name   string
		mint   *entries.Mint
		amount uint64
		fee    uint64
	}{
		{"classic", &entries.Mint{TokenProgram: keylet.TokenProgramID}, 1_000_000, 0},
		{"one percent", mintFee(100, 1_000_000), 1_000_000, 10_000},
		{"rounds up", mintFee(100, 1_000_000), 101, 2},
		{"capped", mintFee(100, 5_000), 1_000_000, 5_000},
		{"zero amount", mintFee(100, 5_000), 0, 0},
		{"full rate", mintFee(10_000, 7), 1_000, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, err := TransferFee(tt.mint, tt.amount)
			require.NoError(t, err)
			assert.Equal(t, tt.fee, fee)
		})
	}
}

func TestInverseTransferFeeCoversNet(t *testing.T) {
	mints := []*entries.Mint{
		mintFee(1, 1<<40),
		mintFee(100, 1<<40),
		mintFee(2_500, 1<<40),
		mintFee(100, 50),
		mintFee(9_999, 1<<40),
		mintFee(10_000, 123),
	}
	for _, m := range mints {
		for _, net := range []uint64{1, 7, 99, 100, 12_345, 1_000_000} {
			fee, err := InverseTransferFee(m, net)
			require.NoError(t, err)
			withheld, err := TransferFee(m, net+fee)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, net+fee-withheld, net, "bps %d net %d", m.TransferFeeBasisPoints, net)
		}
	}
}

func setupMint(t *testing.T, v tx.LedgerView, mintAddr, authority solana.PublicKey, m *entries.Mint) {
	t.Helper()
	m.MintAuthority = authority
	require.NoError(t, tx.Create(v, mintAddr, m))
}

func TestTransfer(t *testing.T) {
	v := newView()
	mint := addr("mint")
	alice, bob := addr("alice"), addr("bob")
	setupMint(t, v, mint, alice, mintFee(250, 1_000_000))

	from, err := CreateAssociatedAccount(v, alice, mint)
	require.NoError(t, err)
	to, err := CreateAssociatedAccount(v, bob, mint)
	require.NoError(t, err)
	require.NoError(t, MintTo(v, mint, from, alice, 10_000))

	res, err := Transfer(v, TransferParams{Mint: mint, From: from, To: to, Authority: alice, Amount: 4_000})
	require.NoError(t, err)
	assert.Equal(t, TransferResult{Fee: 100, Received: 3_900}, res)

	bal, err := Balance(v, from)
	require.NoError(t, err)
	assert.Equal(t, uint64(6_000), bal)
	dest, err := tx.ReadTokenAccount(v, to)
	require.NoError(t, err)
	assert.Equal(t, uint64(3_900), dest.Amount)
	assert.Equal(t, uint64(100), dest.Withheld)

	t.Run("wrong authority", func(t *testing.T) {
		_, err := Transfer(v, TransferParams{Mint: mint, From: from, To: to, Authority: bob, Amount: 1})
		assert.ErrorIs(t, err, tx.ErrNotOwner)
	})
	t.Run("overdraw", func(t *testing.T) {
		_, err := Transfer(v, TransferParams{Mint: mint, From: from, To: to, Authority: alice, Amount: 6_001})
		assert.ErrorIs(t, err, tx.ErrInsufficientFunds)
	})
	t.Run("self", func(t *testing.T) {
		_, err := Transfer(v, TransferParams{Mint: mint, From: from, To: from, Authority: alice, Amount: 1})
		assert.ErrorIs(t, err, ErrSelfTransfer)
	})
	t.Run("zero is a no-op", func(t *testing.T) {
		res, err := Transfer(v, TransferParams{Mint: mint, From: from, To: addr("nowhere"), Authority: alice})
		require.NoError(t, err)
		assert.Zero(t, res.Received)
	})
	t.Run("mint mismatch", func(t *testing.T) {
		other := addr("other-mint")
		setupMint(t, v, other, alice, &entries.Mint{TokenProgram: keylet.TokenProgramID})
		foreign, err := CreateAssociatedAccount(v, bob, other)
		require.NoError(t, err)
		_, err = Transfer(v, TransferParams{Mint: mint, From: from, To: foreign, Authority: alice, Amount: 1})
		assert.ErrorIs(t, err, tx.ErrMintMismatch)
	})
}

func TestCreateAssociatedAccountIsIdempotent(t *testing.T) {
	v := newView()
	mint := addr("mint")
	owner := addr("owner")
	setupMint(t, v, mint, owner, &entries.Mint{TokenProgram: keylet.TokenProgramID})

	a, err := CreateAssociatedAccount(v, owner, mint)
	require.NoError(t, err)
	b, err := CreateAssociatedAccount(v, owner, mint)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	expected, err := keylet.AssociatedTokenAddress(owner, keylet.TokenProgramID, mint)
	require.NoError(t, err)
	assert.Equal(t, expected, a)

	candidates, err := AssociatedCandidates(owner, mint)
	require.NoError(t, err)
	assert.Contains(t, candidates, a)

	_, err = CreateAssociatedAccount(v, owner, addr("missing"))
	assert.ErrorIs(t, err, tx.ErrRecordNotFound)
}

func TestMintTo(t *testing.T) {
	v := newView()
	mint := addr("mint")
	authority := addr("authority")
	setupMint(t, v, mint, authority, &entries.Mint{TokenProgram: keylet.TokenProgramID})
	dest, err := CreateAssociatedAccount(v, addr("holder"), mint)
	require.NoError(t, err)

	require.NoError(t, MintTo(v, mint, dest, authority, 500))
	assert.ErrorIs(t, MintTo(v, mint, dest, addr("mallory"), 1), tx.ErrNotOwner)

	m, err := tx.ReadMint(v, mint)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), m.Supply)
}

func TestCreateMintValidate(t *testing.T) {
	authority := addr("authority")
	tests := []struct {
		name string
		mod  func(c *CreateMint)
		err  string
	}{
		{name: "valid classic", mod: func(*CreateMint) {}},
		{name: "valid 2022 with fee", mod: func(c *CreateMint) {
			c.TokenProgram = keylet.Token2022ProgramID
			c.Extensions = []string{"TransferFee", "metadatapointer"}
			c.TransferFeeBasisPoints = 50
			c.MaximumFee = 10
		}},
		{name: "missing mint", mod: func(c *CreateMint) { c.Mint = solana.PublicKey{} }, err: "temINVALID_ACCOUNT"},
		{name: "unknown program", mod: func(c *CreateMint) { c.TokenProgram = addr("x") }, err: "temINVALID_ACCOUNT"},
		{name: "classic with extension", mod: func(c *CreateMint) { c.Extensions = []string{"TransferFee"} }, err: "temMALFORMED"},
		{name: "unknown extension", mod: func(c *CreateMint) {
			c.TokenProgram = keylet.Token2022ProgramID
			c.Extensions = []string{"Bogus"}
		}, err: "temMALFORMED"},
		{name: "fee without extension", mod: func(c *CreateMint) {
			c.TokenProgram = keylet.Token2022ProgramID
			c.TransferFeeBasisPoints = 5
		}, err: "temMALFORMED"},
		{name: "fee above 100%", mod: func(c *CreateMint) {
			c.TokenProgram = keylet.Token2022ProgramID
			c.Extensions = []string{"TransferFee"}
			c.TransferFeeBasisPoints = 10_001
		}, err: "temBAD_FEE_RATE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCreateMint(authority, addr("mint"), keylet.TokenProgramID, 6)
			tt.mod(c)
			err := c.Validate()
			if tt.err == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.err)
			}
		})
	}
}
