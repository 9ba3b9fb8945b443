package amm

import (
	"errors"

	"github.com/LeJamon/goCPSwap/internal/core/events"
	"github.com/LeJamon/goCPSwap/internal/core/ledger/keylet"
	"github.com/LeJamon/goCPSwap/internal/core/tx"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

func init() {
	tx.Register(tx.TypeUpdatePoolStatus, func() tx.Transaction {
		return &UpdatePoolStatus{BaseTx: *tx.NewBaseTx(tx.TypeUpdatePoolStatus, solana.PublicKey{})}
	})
}

// UpdatePoolStatus replaces a pool's status byte. Only the admin may sign it.
type UpdatePoolStatus struct {
	tx.BaseTx

	Mint   solana.PublicKey `json:"Mint"`
	Status uint8            `json:"Status"`
}

// NewUpdatePoolStatus creates a new UpdatePoolStatus transaction
func NewUpdatePoolStatus(admin, mint solana.PublicKey, status uint8) *UpdatePoolStatus {
	return &UpdatePoolStatus{
		BaseTx: *tx.NewBaseTx(tx.TypeUpdatePoolStatus, admin),
		Mint:   mint,
		Status: status,
	}
}

// Validate validates the UpdatePoolStatus transaction
func (u *UpdatePoolStatus) Validate() error {
	if err := u.BaseTx.Validate(); err != nil {
		return err
	}
	if u.Mint.IsZero() {
		return errors.New("temINVALID_ACCOUNT: Mint is required")
	}
	return nil
}

// Accounts returns the pool address
func (u *UpdatePoolStatus) Accounts(p tx.Params) ([]solana.PublicKey, error) {
	d, err := keylet.PoolAddress(p.ProgramID, u.Mint)
	if err != nil {
		return nil, err
	}
	return []solana.PublicKey{d.Address}, nil
}

// Apply applies the UpdatePoolStatus transaction to ledger state.
func (u *UpdatePoolStatus) Apply(ctx *tx.ApplyContext) tx.Result {
	if !ctx.IsAdmin() {
		return ctx.Fail(tx.TecINVALID_OWNER, "status update requires the admin")
	}
	d, err := keylet.PoolAddress(ctx.Params.ProgramID, u.Mint)
	if err != nil {
		return tx.TemINVALID_ACCOUNT
	}
	pool, err := tx.ReadPool(ctx.View, d.Address)
	if err != nil {
		return ctx.FailErr(err)
	}
	pool.SetStatus(u.Status)
	pool.RecentEpoch = ctx.Clock.Epoch
	if err := tx.Put(ctx.View, d.Address, pool); err != nil {
		return ctx.FailErr(err)
	}
	ctx.Logger.Debug("pool status updated", zap.Stringer("status", pool.Status))
	ctx.Emit(events.PoolStatusUpdated{Mint: u.Mint, Status: u.Status, RecentEpoch: pool.RecentEpoch})
	return tx.TesSUCCESS
}
