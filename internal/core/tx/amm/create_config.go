package amm

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/LeJamon/goCPSwap/internal/core/events"
	"github.com/LeJamon/goCPSwap/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goCPSwap/internal/core/ledger/keylet"
	"github.com/LeJamon/goCPSwap/internal/core/tx"
	"github.com/gagliardetto/solana-go"
)

func init() {
	tx.Register(tx.TypeCreateConfig, func() tx.Transaction {
		return &CreateConfig{BaseTx: *tx.NewBaseTx(tx.TypeCreateConfig, solana.PublicKey{})}
	})
}

// CreateConfig creates a fee tier. Only the admin may sign it.
type CreateConfig struct {
	tx.BaseTx

	Index                uint16           `json:"Index"`
	TradeFeeRate         uint64           `json:"TradeFeeRate"`
	ProtocolFeeRate      uint64           `json:"ProtocolFeeRate"`
	ProtocolFeeCollector solana.PublicKey `json:"ProtocolFeeCollector"`
}

// NewCreateConfig creates a new CreateConfig transaction
func NewCreateConfig(admin solana.PublicKey, index uint16, tradeFeeRate, protocolFeeRate uint64, collector solana.PublicKey) *CreateConfig {
	return &CreateConfig{
		BaseTx:               *tx.NewBaseTx(tx.TypeCreateConfig, admin),
		Index:                index,
		TradeFeeRate:         tradeFeeRate,
		ProtocolFeeRate:      protocolFeeRate,
		ProtocolFeeCollector: collector,
	}
}

// Validate validates the CreateConfig transaction
func (c *CreateConfig) Validate() error {
	if err := c.BaseTx.Validate(); err != nil {
		return err
	}
	if err := entries.ValidateTradeFeeRate(c.TradeFeeRate); err != nil {
		return fmt.Errorf("temBAD_FEE_RATE: %w", err)
	}
	if err := entries.ValidateProtocolFeeRate(c.ProtocolFeeRate); err != nil {
		return fmt.Errorf("temBAD_FEE_RATE: %w", err)
	}
	if c.ProtocolFeeCollector.IsZero() {
		return errors.New("temINVALID_ACCOUNT: ProtocolFeeCollector is required")
	}
	return nil
}

// Accounts returns the config address
func (c *CreateConfig) Accounts(p tx.Params) ([]solana.PublicKey, error) {
	addr, err := configAddress(p, c.Index)
	if err != nil {
		return nil, err
	}
	return []solana.PublicKey{addr}, nil
}

// Apply applies the CreateConfig transaction to ledger state.
func (c *CreateConfig) Apply(ctx *tx.ApplyContext) tx.Result {
	if !ctx.IsAdmin() {
		return ctx.Fail(tx.TecINVALID_OWNER, "config creation requires the admin")
	}
	d, err := keylet.AmmConfigAddress(ctx.Params.ProgramID, c.Index)
	if err != nil {
		return tx.TemINVALID_ACCOUNT
	}
	cfg := &entries.AmmConfig{
		Bump:                 d.Bump,
		Index:                c.Index,
		TradeFeeRate:         c.TradeFeeRate,
		ProtocolFeeRate:      c.ProtocolFeeRate,
		ProtocolFeeCollector: c.ProtocolFeeCollector,
	}
	if err := tx.Create(ctx.View, d.Address, cfg); err != nil {
		return ctx.FailErr(err)
	}
	ctx.Emit(events.ConfigUpdated{
		AmmConfig: d.Address,
		Field:     "Created",
		Value:     strconv.FormatUint(uint64(c.Index), 10),
	})
	return tx.TesSUCCESS
}
