package entries

import (
	"errors"

	"github.com/LeJamon/goCPSwap/internal/core/ledger/entry"
	"github.com/gagliardetto/solana-go"
)

const tokenAccountVersion = 1

// TokenAccount holds a balance of one mint for one owner.
type TokenAccount struct {
	Mint   solana.PublicKey
	Owner  solana.PublicKey
	Amount uint64
	// Withheld is transfer fee retained on this account, not spendable.
	Withheld uint64
}

type tokenAccountLayout struct {
	Mint     [32]byte
	Owner    [32]byte
	Amount   uint64
	Withheld uint64
	Padding  [4]uint64
}

func (a *TokenAccount) Type() entry.Type {
	return entry.TypeTokenAccount
}

func (a *TokenAccount) Validate() error {
	if a.Mint.IsZero() {
		return errors.New("mint is required")
	}
	if a.Owner.IsZero() {
		return errors.New("owner is required")
	}
	return nil
}

func (a *TokenAccount) Encode() ([]byte, error) {
	return encodeRecord(entry.TypeTokenAccount, tokenAccountVersion, tokenAccountLayout{
		Mint:     a.Mint,
		Owner:    a.Owner,
		Amount:   a.Amount,
		Withheld: a.Withheld,
	})
}

// DecodeTokenAccount decodes a stored token account record.
func DecodeTokenAccount(data []byte) (*TokenAccount, error) {
	var l tokenAccountLayout
	if err := decodeRecord(data, entry.TypeTokenAccount, tokenAccountVersion, &l); err != nil {
		return nil, err
	}
	return &TokenAccount{
		Mint:     l.Mint,
		Owner:    l.Owner,
		Amount:   l.Amount,
		Withheld: l.Withheld,
	}, nil
}
