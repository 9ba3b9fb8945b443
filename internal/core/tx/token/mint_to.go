package token

import (
	"errors"

	"github.com/LeJamon/goCPSwap/internal/core/tx"
	"github.com/gagliardetto/solana-go"
)

func init() {
	tx.Register(tx.TypeMintTo, func() tx.Transaction {
		return &MintToTx{BaseTx: *tx.NewBaseTx(tx.TypeMintTo, solana.PublicKey{})}
	})
}

// MintToTx issues tokens into the associated account of Owner, creating the
// account if needed. The signer must be the mint authority.
type MintToTx struct {
	tx.BaseTx

	Mint   solana.PublicKey `json:"Mint"`
	Owner  solana.PublicKey `json:"Owner"`
	Amount uint64           `json:"Amount"`
}

// NewMintTo creates a new MintTo transaction
func NewMintTo(authority, mint, owner solana.PublicKey, amount uint64) *MintToTx {
	return &MintToTx{
		BaseTx: *tx.NewBaseTx(tx.TypeMintTo, authority),
		Mint:   mint,
		Owner:  owner,
		Amount: amount,
	}
}

// Validate validates the MintTo transaction
func (m *MintToTx) Validate() error {
	if err := m.BaseTx.Validate(); err != nil {
		return err
	}
	if m.Mint.IsZero() || m.Owner.IsZero() {
		return errors.New("temINVALID_ACCOUNT: Mint and Owner are required")
	}
	if m.Amount == 0 {
		return errors.New("temBAD_AMOUNT: Amount must be positive")
	}
	return nil
}

// Accounts returns the mint and the owner's associated account candidates
func (m *MintToTx) Accounts(tx.Params) ([]solana.PublicKey, error) {
	atas, err := AssociatedCandidates(m.Owner, m.Mint)
	if err != nil {
		return nil, err
	}
	return append([]solana.PublicKey{m.Mint}, atas...), nil
}

// Apply applies the MintTo transaction to ledger state.
func (m *MintToTx) Apply(ctx *tx.ApplyContext) tx.Result {
	dest, err := CreateAssociatedAccount(ctx.View, m.Owner, m.Mint)
	if err != nil {
		return ctx.FailErr(err)
	}
	if err := MintTo(ctx.View, m.Mint, dest, ctx.Signer, m.Amount); err != nil {
		return ctx.FailErr(err)
	}
	return tx.TesSUCCESS
}
