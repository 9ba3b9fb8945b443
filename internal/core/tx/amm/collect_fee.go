package amm

import (
	"errors"

	"github.com/LeJamon/goCPSwap/internal/core/amm/fees"
	"github.com/LeJamon/goCPSwap/internal/core/events"
	"github.com/LeJamon/goCPSwap/internal/core/tx"
	"github.com/LeJamon/goCPSwap/internal/core/tx/token"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

func init() {
	tx.Register(tx.TypeCollectFee, func() tx.Transaction {
		return &CollectFee{BaseTx: *tx.NewBaseTx(tx.TypeCollectFee, solana.PublicKey{})}
	})
}

// CollectFee pays out every fee a pool owes and zeroes its accumulators.
// The signer must be the pool creator or the config's protocol fee collector.
type CollectFee struct {
	tx.BaseTx

	Mint                 solana.PublicKey `json:"Mint"`
	ConfigIndex          uint16           `json:"ConfigIndex"`
	Creator              solana.PublicKey `json:"Creator"`
	ProtocolFeeCollector solana.PublicKey `json:"ProtocolFeeCollector"`
}

// NewCollectFee creates a new CollectFee transaction
func NewCollectFee(signer, mint solana.PublicKey, configIndex uint16, creator, collector solana.PublicKey) *CollectFee {
	return &CollectFee{
		BaseTx:               *tx.NewBaseTx(tx.TypeCollectFee, signer),
		Mint:                 mint,
		ConfigIndex:          configIndex,
		Creator:              creator,
		ProtocolFeeCollector: collector,
	}
}

// Validate validates the CollectFee transaction
func (c *CollectFee) Validate() error {
	if err := c.BaseTx.Validate(); err != nil {
		return err
	}
	if c.Mint.IsZero() {
		return errors.New("temINVALID_ACCOUNT: Mint is required")
	}
	if c.Creator.IsZero() || c.ProtocolFeeCollector.IsZero() {
		return errors.New("temINVALID_ACCOUNT: Creator and ProtocolFeeCollector are required")
	}
	return nil
}

// Accounts returns the pool records and both recipients' accounts
func (c *CollectFee) Accounts(p tx.Params) ([]solana.PublicKey, error) {
	return poolAccounts(p, c.Mint, c.ConfigIndex, c.Creator, c.ProtocolFeeCollector)
}

// ReadOnlyAccounts returns the mints and the config
func (c *CollectFee) ReadOnlyAccounts(p tx.Params) ([]solana.PublicKey, error) {
	return poolReadOnly(p, c.Mint, c.ConfigIndex)
}

// Apply applies the CollectFee transaction to ledger state.
func (c *CollectFee) Apply(ctx *tx.ApplyContext) tx.Result {
	s, r := loadPool(ctx, c.Mint, c.ConfigIndex)
	if !r.IsSuccess() {
		return r
	}
	if !s.pool.Creator.Equals(c.Creator) || !s.config.ProtocolFeeCollector.Equals(c.ProtocolFeeCollector) {
		return ctx.Fail(tx.TecINVALID_OWNER, "recipients do not match the pool")
	}
	if !ctx.Signer.Equals(c.Creator) && !ctx.Signer.Equals(c.ProtocolFeeCollector) {
		return ctx.Fail(tx.TecINVALID_OWNER, "signer may not collect fees", zap.Stringer("signer", ctx.Signer))
	}

	settled := s.pool.Fees.CollectAndReset()
	payouts := []struct {
		side      fees.Side
		recipient solana.PublicKey
		amount    uint64
	}{
		{fees.Listed, c.Creator, settled.CreatorListed},
		{fees.Listed, c.ProtocolFeeCollector, settled.ProtocolListed},
		{fees.Reference, c.Creator, settled.CreatorReference},
		{fees.Reference, c.ProtocolFeeCollector, settled.ProtocolReference},
	}
	for _, p := range payouts {
		if p.amount == 0 {
			continue
		}
		mint := s.pool.Mint(p.side)
		dest, err := token.CreateAssociatedAccount(ctx.View, p.recipient, mint)
		if err != nil {
			return ctx.FailErr(err)
		}
		if _, err := token.Transfer(ctx.View, token.TransferParams{
			Mint:      mint,
			From:      s.pool.Vault(p.side),
			To:        dest,
			Authority: s.addrs.Authority.Address,
			Amount:    p.amount,
		}); err != nil {
			return ctx.FailErr(err, zap.Stringer("side", p.side))
		}
	}
	if err := s.save(ctx.View); err != nil {
		return ctx.FailErr(err)
	}

	ctx.Emit(events.FeesCollected{
		Mint:              c.Mint,
		CreatorListed:     settled.CreatorListed,
		CreatorReference:  settled.CreatorReference,
		ProtocolListed:    settled.ProtocolListed,
		ProtocolReference: settled.ProtocolReference,
	})
	return tx.TesSUCCESS
}
