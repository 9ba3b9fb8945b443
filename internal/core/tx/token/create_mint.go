package token

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goCPSwap/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goCPSwap/internal/core/ledger/keylet"
	"github.com/LeJamon/goCPSwap/internal/core/tx"
	"github.com/gagliardetto/solana-go"
)

func init() {
	tx.Register(tx.TypeCreateMint, func() tx.Transaction {
		return &CreateMint{BaseTx: *tx.NewBaseTx(tx.TypeCreateMint, solana.PublicKey{})}
	})
}

// CreateMint creates a mint at a caller-chosen address. The signer becomes
// the mint authority.
type CreateMint struct {
	tx.BaseTx

	Mint         solana.PublicKey `json:"Mint"`
	TokenProgram solana.PublicKey `json:"TokenProgram"`
	Decimals     uint8            `json:"Decimals"`

	// Extensions names the 2022 extensions of the mint
	Extensions []string `json:"Extensions,omitempty"`

	TransferFeeBasisPoints uint16 `json:"TransferFeeBasisPoints,omitempty"`
	MaximumFee             uint64 `json:"MaximumFee,omitempty"`
}

// NewCreateMint creates a new CreateMint transaction
func NewCreateMint(authority, mint, program solana.PublicKey, decimals uint8) *CreateMint {
	return &CreateMint{
		BaseTx:       *tx.NewBaseTx(tx.TypeCreateMint, authority),
		Mint:         mint,
		TokenProgram: program,
		Decimals:     decimals,
	}
}

func (c *CreateMint) extensions() (entries.Extension, error) {
	var ext entries.Extension
	for _, name := range c.Extensions {
		e, err := entries.ParseExtension(name)
		if err != nil {
			return 0, err
		}
		ext |= e
	}
	return ext, nil
}

// Validate validates the CreateMint transaction
func (c *CreateMint) Validate() error {
	if err := c.BaseTx.Validate(); err != nil {
		return err
	}
	if c.Mint.IsZero() {
		return errors.New("temINVALID_ACCOUNT: Mint is required")
	}
	if !IsKnownProgram(c.TokenProgram) {
		return fmt.Errorf("temINVALID_ACCOUNT: unknown token program %s", c.TokenProgram)
	}
	ext, err := c.extensions()
	if err != nil {
		return fmt.Errorf("temMALFORMED: %v", err)
	}
	if ext != 0 && c.TokenProgram.Equals(keylet.TokenProgramID) {
		return errors.New("temMALFORMED: classic mints carry no extensions")
	}
	if c.TransferFeeBasisPoints > entries.MaxTransferFeeBasisPoints {
		return errors.New("temBAD_FEE_RATE: transfer fee above 100%")
	}
	if (c.TransferFeeBasisPoints != 0 || c.MaximumFee != 0) && !ext.Has(entries.ExtTransferFee) {
		return errors.New("temMALFORMED: transfer fee requires the TransferFee extension")
	}
	return nil
}

// Accounts returns the mint address
func (c *CreateMint) Accounts(tx.Params) ([]solana.PublicKey, error) {
	return []solana.PublicKey{c.Mint}, nil
}

// Apply applies the CreateMint transaction to ledger state.
func (c *CreateMint) Apply(ctx *tx.ApplyContext) tx.Result {
	ext, err := c.extensions()
	if err != nil {
		return tx.TemMALFORMED
	}
	m := &entries.Mint{
		TokenProgram:           c.TokenProgram,
		MintAuthority:          ctx.Signer,
		Decimals:               c.Decimals,
		Extensions:             ext,
		TransferFeeBasisPoints: c.TransferFeeBasisPoints,
		MaximumFee:             c.MaximumFee,
	}
	if err := tx.Create(ctx.View, c.Mint, m); err != nil {
		return ctx.FailErr(err)
	}
	return tx.TesSUCCESS
}
