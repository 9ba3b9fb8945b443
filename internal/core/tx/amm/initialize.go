package amm

import (
	"errors"

	"github.com/LeJamon/goCPSwap/internal/core/amm/curve"
	"github.com/LeJamon/goCPSwap/internal/core/amm/status"
	"github.com/LeJamon/goCPSwap/internal/core/events"
	"github.com/LeJamon/goCPSwap/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goCPSwap/internal/core/ledger/keylet"
	"github.com/LeJamon/goCPSwap/internal/core/tx"
	"github.com/LeJamon/goCPSwap/internal/core/tx/token"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

func init() {
	tx.Register(tx.TypeInitialize, func() tx.Transaction {
		return &Initialize{BaseTx: *tx.NewBaseTx(tx.TypeInitialize, solana.PublicKey{})}
	})
}

// Initialize creates the pool listing Mint against the reference asset. The
// signer becomes the pool creator and seeds the listed vault.
type Initialize struct {
	tx.BaseTx

	Mint          solana.PublicKey `json:"Mint"`
	ConfigIndex   uint16           `json:"ConfigIndex"`
	InitialAmount uint64           `json:"InitialAmount"`
	Offset        uint64           `json:"Offset"`
	OpenTime      uint64           `json:"OpenTime,omitempty"`
}

// NewInitialize creates a new Initialize transaction
func NewInitialize(creator, mint solana.PublicKey, configIndex uint16, initialAmount, offset uint64) *Initialize {
	return &Initialize{
		BaseTx:        *tx.NewBaseTx(tx.TypeInitialize, creator),
		Mint:          mint,
		ConfigIndex:   configIndex,
		InitialAmount: initialAmount,
		Offset:        offset,
	}
}

// Validate validates the Initialize transaction
func (i *Initialize) Validate() error {
	if err := i.BaseTx.Validate(); err != nil {
		return err
	}
	if i.Mint.IsZero() {
		return errors.New("temINVALID_ACCOUNT: Mint is required")
	}
	if i.InitialAmount == 0 {
		return errors.New("temBAD_AMOUNT: InitialAmount must be positive")
	}
	if i.Offset == 0 {
		return errors.New("temINVALID_INPUT: Offset must be positive")
	}
	return nil
}

// Accounts returns the pool records, the config and the creator's accounts
func (i *Initialize) Accounts(p tx.Params) ([]solana.PublicKey, error) {
	return poolAccounts(p, i.Mint, i.ConfigIndex, i.Account)
}

// ReadOnlyAccounts returns the mints and the config
func (i *Initialize) ReadOnlyAccounts(p tx.Params) ([]solana.PublicKey, error) {
	return poolReadOnly(p, i.Mint, i.ConfigIndex)
}

// Apply applies the Initialize transaction to ledger state.
func (i *Initialize) Apply(ctx *tx.ApplyContext) tx.Result {
	if i.Mint.Equals(ctx.Params.ReferenceMint) {
		return ctx.Fail(tx.TemINVALID_ACCOUNT, "cannot list the reference mint")
	}
	cfgAddr, err := configAddress(ctx.Params, i.ConfigIndex)
	if err != nil {
		return tx.TemINVALID_ACCOUNT
	}
	cfg, err := tx.ReadAmmConfig(ctx.View, cfgAddr)
	if err != nil {
		return ctx.FailErr(err)
	}
	listedMint, err := tx.ReadMint(ctx.View, i.Mint)
	if err != nil {
		return ctx.FailErr(err)
	}
	referenceMint, err := tx.ReadMint(ctx.View, ctx.Params.ReferenceMint)
	if err != nil {
		return ctx.FailErr(err)
	}
	if !token.IsSupportedMint(listedMint) || !token.IsSupportedMint(referenceMint) {
		return ctx.Fail(tx.TecNOT_SUPPORT_MINT, "mint extensions not supported",
			zap.Stringer("listed", listedMint.Extensions),
			zap.Stringer("reference", referenceMint.Extensions))
	}
	if cfg.DisableCreatePool {
		return ctx.Fail(tx.TecNOT_APPROVED, "pool creation disabled", zap.Uint16("config", cfg.Index))
	}

	openTime := i.OpenTime
	now := uint64(max(ctx.Clock.UnixTimestamp, 0))
	if openTime <= now {
		openTime = now + 1
	}

	addrs, err := derivePool(ctx.Params, i.Mint)
	if err != nil {
		return tx.TemINVALID_ACCOUNT
	}
	exists, err := ctx.View.Exists(keylet.Pool(addrs.Pool.Address))
	if err != nil {
		return ctx.FailErr(err)
	}
	if exists {
		return ctx.Fail(tx.TecDUPLICATE, "pool already exists", zap.Stringer("pool", addrs.Pool.Address))
	}

	authority := addrs.Authority.Address
	if err := token.CreateAccount(ctx.View, addrs.ListedVault.Address, i.Mint, authority); err != nil {
		return ctx.FailErr(err)
	}
	if err := token.CreateAccount(ctx.View, addrs.ReferenceVault.Address, ctx.Params.ReferenceMint, authority); err != nil {
		return ctx.FailErr(err)
	}

	source, err := token.AssociatedAddress(i.Account, i.Mint, listedMint)
	if err != nil {
		return tx.TemINVALID_ACCOUNT
	}
	if _, err := token.Transfer(ctx.View, token.TransferParams{
		Mint:      i.Mint,
		From:      source,
		To:        addrs.ListedVault.Address,
		Authority: i.Account,
		Amount:    i.InitialAmount,
	}); err != nil {
		return ctx.FailErr(err)
	}

	// The vault may hold less than InitialAmount after a transfer fee.
	seeded, err := token.Balance(ctx.View, addrs.ListedVault.Address)
	if err != nil {
		return ctx.FailErr(err)
	}
	if err := curve.ValidateSupply(seeded, i.Offset, ctx.Params.SupplyPolicy); err != nil {
		return ctx.FailErr(err, zap.Uint64("seeded", seeded), zap.Uint64("offset", i.Offset))
	}

	pool := &entries.Pool{
		AmmConfig:             cfgAddr,
		Creator:               i.Account,
		ListedVault:           addrs.ListedVault.Address,
		ReferenceVault:        addrs.ReferenceVault.Address,
		ListedMint:            i.Mint,
		ReferenceMint:         ctx.Params.ReferenceMint,
		ListedTokenProgram:    listedMint.TokenProgram,
		ReferenceTokenProgram: referenceMint.TokenProgram,
		ListedDecimals:        listedMint.Decimals,
		ReferenceDecimals:     referenceMint.Decimals,
		AuthBump:              addrs.Authority.Bump,
		Status:                status.Enabled,
		Offset:                i.Offset,
		OpenTime:              openTime,
		RecentEpoch:           ctx.Clock.Epoch,
	}
	if err := tx.Create(ctx.View, addrs.Pool.Address, pool); err != nil {
		return ctx.FailErr(err)
	}

	ctx.Emit(events.PoolInitialized{
		Mint:       i.Mint,
		SeedAmount: seeded,
		OpenTime:   openTime,
		Creator:    i.Account,
		AmmConfig:  cfgAddr,
		Offset:     i.Offset,
	})
	return tx.TesSUCCESS
}
