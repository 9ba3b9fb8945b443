package tx

import (
	"fmt"

	"github.com/LeJamon/goCPSwap/internal/core/ledger/entry"
	"github.com/LeJamon/goCPSwap/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goCPSwap/internal/core/ledger/keylet"
	"github.com/gagliardetto/solana-go"
)

func read[T any](v ReadView, k keylet.Keylet, decode func([]byte) (T, error)) (T, error) {
	var zero T
	data, err := v.Read(k)
	if err != nil {
		return zero, err
	}
	if data == nil {
		return zero, fmt.Errorf("%w: %s", ErrRecordNotFound, k)
	}
	return decode(data)
}

// ReadAmmConfig reads the config stored at addr.
func ReadAmmConfig(v ReadView, addr solana.PublicKey) (*entries.AmmConfig, error) {
	return read(v, keylet.AmmConfig(addr), entries.DecodeAmmConfig)
}

// ReadPool reads the pool stored at addr.
func ReadPool(v ReadView, addr solana.PublicKey) (*entries.Pool, error) {
	return read(v, keylet.Pool(addr), entries.DecodePool)
}

// ReadMint reads the mint stored at addr.
func ReadMint(v ReadView, addr solana.PublicKey) (*entries.Mint, error) {
	return read(v, keylet.Mint(addr), entries.DecodeMint)
}

// ReadTokenAccount reads the token account stored at addr.
func ReadTokenAccount(v ReadView, addr solana.PublicKey) (*entries.TokenAccount, error) {
	return read(v, keylet.TokenAccount(addr), entries.DecodeTokenAccount)
}

func encode(e entry.Entry) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", e.Type(), err)
	}
	return e.Encode()
}

// Create validates e and stages it as a new record at addr.
func Create(v LedgerView, addr solana.PublicKey, e entry.Entry) error {
	data, err := encode(e)
	if err != nil {
		return err
	}
	return v.Insert(keylet.Keylet{Type: e.Type(), Key: addr}, data)
}

// Put validates e and stages it over the existing record at addr.
func Put(v LedgerView, addr solana.PublicKey, e entry.Entry) error {
	data, err := encode(e)
	if err != nil {
		return err
	}
	return v.Update(keylet.Keylet{Type: e.Type(), Key: addr}, data)
}
