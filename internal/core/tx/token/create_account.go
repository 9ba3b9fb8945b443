package token

import (
	"errors"

	"github.com/LeJamon/goCPSwap/internal/core/tx"
	"github.com/gagliardetto/solana-go"
)

func init() {
	tx.Register(tx.TypeCreateTokenAccount, func() tx.Transaction {
		return &CreateTokenAccount{BaseTx: *tx.NewBaseTx(tx.TypeCreateTokenAccount, solana.PublicKey{})}
	})
}

// CreateTokenAccount creates the associated account of Owner for Mint. It
// succeeds without change if the account already exists.
type CreateTokenAccount struct {
	tx.BaseTx

	Owner solana.PublicKey `json:"Owner"`
	Mint  solana.PublicKey `json:"Mint"`
}

// NewCreateTokenAccount creates a new CreateTokenAccount transaction
func NewCreateTokenAccount(payer, owner, mint solana.PublicKey) *CreateTokenAccount {
	return &CreateTokenAccount{
		BaseTx: *tx.NewBaseTx(tx.TypeCreateTokenAccount, payer),
		Owner:  owner,
		Mint:   mint,
	}
}

// Validate validates the CreateTokenAccount transaction
func (c *CreateTokenAccount) Validate() error {
	if err := c.BaseTx.Validate(); err != nil {
		return err
	}
	if c.Owner.IsZero() || c.Mint.IsZero() {
		return errors.New("temINVALID_ACCOUNT: Owner and Mint are required")
	}
	return nil
}

// Accounts returns the mint and the associated account candidates
func (c *CreateTokenAccount) Accounts(tx.Params) ([]solana.PublicKey, error) {
	atas, err := AssociatedCandidates(c.Owner, c.Mint)
	if err != nil {
		return nil, err
	}
	return append([]solana.PublicKey{c.Mint}, atas...), nil
}

// Apply applies the CreateTokenAccount transaction to ledger state.
func (c *CreateTokenAccount) Apply(ctx *tx.ApplyContext) tx.Result {
	if _, err := CreateAssociatedAccount(ctx.View, c.Owner, c.Mint); err != nil {
		return ctx.FailErr(err)
	}
	return tx.TesSUCCESS
}
