package amm

import (
	"errors"

	"github.com/LeJamon/goCPSwap/internal/core/amm/checked"
	"github.com/LeJamon/goCPSwap/internal/core/amm/curve"
	"github.com/LeJamon/goCPSwap/internal/core/amm/fees"
	"github.com/LeJamon/goCPSwap/internal/core/amm/status"
	"github.com/LeJamon/goCPSwap/internal/core/events"
	"github.com/LeJamon/goCPSwap/internal/core/tx"
	"github.com/LeJamon/goCPSwap/internal/core/tx/token"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

func init() {
	tx.Register(tx.TypeSwapBaseInput, func() tx.Transaction {
		return &SwapBaseInput{BaseTx: *tx.NewBaseTx(tx.TypeSwapBaseInput, solana.PublicKey{})}
	})
	tx.Register(tx.TypeSwapBaseOutput, func() tx.Transaction {
		return &SwapBaseOutput{BaseTx: *tx.NewBaseTx(tx.TypeSwapBaseOutput, solana.PublicKey{})}
	})
}

// ErrExceededSlippage is returned when a quote breaks the trader's bound.
var ErrExceededSlippage = errors.New("exceeded slippage")

// direction maps the buy flag to the curve direction.
func direction(buy bool) curve.Direction {
	if buy {
		return curve.ReferenceToListed
	}
	return curve.ListedToReference
}

func opposite(side fees.Side) fees.Side {
	if side == fees.Listed {
		return fees.Reference
	}
	return fees.Listed
}

// Quote is a swap priced against the pool, transfer fees included.
type Quote struct {
	Result curve.SwapResult
	// UserPays leaves the trader's account; the vault receives Result.SourceAmount.
	UserPays uint64
	// VaultPays leaves the output vault; the trader receives UserReceives.
	VaultPays    uint64
	UserReceives uint64
	Split        fees.Split
}

// QuoteSwap prices a trade on s. amount is what the trader pays for an
// exact-in trade and what the trader must receive for an exact-out one.
func QuoteSwap(v tx.ReadView, s *PoolState, buy, exactIn bool, amount uint64) (Quote, error) {
	d := direction(buy)
	inSide := d.InputSide()
	inMint, err := tx.ReadMint(v, s.pool.Mint(inSide))
	if err != nil {
		return Quote{}, err
	}
	outMint, err := tx.ReadMint(v, s.pool.Mint(opposite(inSide)))
	if err != nil {
		return Quote{}, err
	}
	r, err := s.Reserves(v)
	if err != nil {
		return Quote{}, err
	}
	rate := s.config.TradeFeeRate

	var q Quote
	if exactIn {
		inFee, err := token.TransferFee(inMint, amount)
		if err != nil {
			return Quote{}, err
		}
		if q.Result, err = curve.SwapExactIn(d, amount-inFee, r, rate); err != nil {
			return Quote{}, err
		}
		q.UserPays = amount
		q.VaultPays = q.Result.DestinationAmount
	} else {
		outFee, err := token.InverseTransferFee(outMint, amount)
		if err != nil {
			return Quote{}, err
		}
		if q.VaultPays, err = checked.Add(amount, outFee); err != nil {
			return Quote{}, err
		}
		if q.Result, err = curve.SwapExactOut(d, q.VaultPays, r, rate); err != nil {
			return Quote{}, err
		}
		inFee, err := token.InverseTransferFee(inMint, q.Result.SourceAmount)
		if err != nil {
			return Quote{}, err
		}
		if q.UserPays, err = checked.Add(q.Result.SourceAmount, inFee); err != nil {
			return Quote{}, err
		}
	}

	outFee, err := token.TransferFee(outMint, q.VaultPays)
	if err != nil {
		return Quote{}, err
	}
	q.UserReceives = q.VaultPays - outFee
	if q.Split, err = fees.SplitFee(q.Result.TradeFee, s.config.ProtocolFeeRate); err != nil {
		return Quote{}, err
	}
	return q, nil
}

// swapRequest is what both swap transactions reduce to.
type swapRequest struct {
	mint        solana.PublicKey
	configIndex uint16
	buy         bool
	exactIn     bool
	amount      uint64
	// accept reports whether the quote honours the trader's bound.
	accept func(q Quote) bool
}

func executeSwap(ctx *tx.ApplyContext, req swapRequest) tx.Result {
	s, r := loadPool(ctx, req.mint, req.configIndex)
	if !r.IsSuccess() {
		return r
	}
	if !s.pool.IsEnabled(status.Swap) {
		return ctx.Fail(tx.TecSWAP_DISABLED, "swap disabled", zap.Stringer("status", s.pool.Status))
	}
	if uint64(max(ctx.Clock.UnixTimestamp, 0)) < s.pool.OpenTime {
		return ctx.Fail(tx.TecNOT_APPROVED, "pool not open yet", zap.Uint64("open_time", s.pool.OpenTime))
	}

	before, err := s.Reserves(ctx.View)
	if err != nil {
		return ctx.FailErr(err)
	}
	priceBefore, err := s.Price(ctx.View)
	if err != nil {
		return ctx.FailErr(err)
	}

	q, err := QuoteSwap(ctx.View, s, req.buy, req.exactIn, req.amount)
	if err != nil {
		return ctx.FailErr(err)
	}
	if !req.accept(q) {
		return ctx.Fail(tx.TecEXCEEDED_SLIPPAGE, ErrExceededSlippage.Error(),
			zap.Uint64("pays", q.UserPays), zap.Uint64("receives", q.UserReceives))
	}

	inSide := q.Result.Direction.InputSide()
	outSide := opposite(inSide)
	avail, err := s.available(ctx.View, outSide)
	if err != nil {
		return ctx.FailErr(err)
	}
	if q.VaultPays > avail {
		return ctx.Fail(tx.TecINSUFFICIENT_LIQUIDITY, "output exceeds vault balance",
			zap.Uint64("out", q.VaultPays), zap.Uint64("available", avail))
	}

	source, err := userAccount(ctx.View, ctx.Signer, s.pool.Mint(inSide))
	if err != nil {
		return ctx.FailErr(err)
	}
	if _, err := token.Transfer(ctx.View, token.TransferParams{
		Mint:      s.pool.Mint(inSide),
		From:      source,
		To:        s.pool.Vault(inSide),
		Authority: ctx.Signer,
		Amount:    q.UserPays,
	}); err != nil {
		return ctx.FailErr(err)
	}
	dest, err := token.CreateAssociatedAccount(ctx.View, ctx.Signer, s.pool.Mint(outSide))
	if err != nil {
		return ctx.FailErr(err)
	}
	if _, err := token.Transfer(ctx.View, token.TransferParams{
		Mint:      s.pool.Mint(outSide),
		From:      s.pool.Vault(outSide),
		To:        dest,
		Authority: s.addrs.Authority.Address,
		Amount:    q.VaultPays,
	}); err != nil {
		return ctx.FailErr(err)
	}

	if err := s.pool.Fees.Accrue(inSide, q.Split); err != nil {
		return ctx.FailErr(err)
	}

	after, err := s.Reserves(ctx.View)
	if err != nil {
		return ctx.FailErr(err)
	}
	if err := curve.CheckInvariant(before, after); err != nil {
		return ctx.FailErr(err)
	}
	priceAfter, err := s.Price(ctx.View)
	if err != nil {
		return ctx.FailErr(err)
	}
	if err := s.save(ctx.View); err != nil {
		return ctx.FailErr(err)
	}

	ctx.Emit(events.SwapExecuted{
		Timestamp:       ctx.Clock.UnixTimestamp,
		Mint:            req.mint,
		PriceBefore:     priceBefore.Up,
		PriceAfter:      priceAfter.Up,
		LiquidityBefore: priceBefore.EffectiveReferenceLiquidity,
		LiquidityAfter:  priceAfter.EffectiveReferenceLiquidity,
		InputAmount:     q.Result.SourceAmount,
		OutputAmount:    q.UserReceives,
		TradeFee:        q.Result.TradeFee,
		Buy:             req.buy,
		User:            ctx.Signer,
	})
	return tx.TesSUCCESS
}

// userAccount returns the signer's associated account for mint.
func userAccount(v tx.ReadView, owner, mint solana.PublicKey) (solana.PublicKey, error) {
	m, err := tx.ReadMint(v, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return token.AssociatedAddress(owner, mint, m)
}

func validateSwap(b *tx.BaseTx, mint solana.PublicKey) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if mint.IsZero() {
		return errors.New("temINVALID_ACCOUNT: Mint is required")
	}
	return nil
}

// SwapBaseInput pays exactly AmountIn and receives at least MinimumAmountOut.
type SwapBaseInput struct {
	tx.BaseTx

	Mint             solana.PublicKey `json:"Mint"`
	ConfigIndex      uint16           `json:"ConfigIndex"`
	Buy              bool             `json:"Buy"`
	AmountIn         uint64           `json:"AmountIn"`
	MinimumAmountOut uint64           `json:"MinimumAmountOut"`
}

// NewSwapBaseInput creates a new SwapBaseInput transaction
func NewSwapBaseInput(user, mint solana.PublicKey, configIndex uint16, buy bool, amountIn, minimumAmountOut uint64) *SwapBaseInput {
	return &SwapBaseInput{
		BaseTx:           *tx.NewBaseTx(tx.TypeSwapBaseInput, user),
		Mint:             mint,
		ConfigIndex:      configIndex,
		Buy:              buy,
		AmountIn:         amountIn,
		MinimumAmountOut: minimumAmountOut,
	}
}

// Validate validates the SwapBaseInput transaction
func (s *SwapBaseInput) Validate() error {
	if err := validateSwap(&s.BaseTx, s.Mint); err != nil {
		return err
	}
	if s.AmountIn == 0 {
		return errors.New("temBAD_AMOUNT: AmountIn must be positive")
	}
	return nil
}

// Accounts returns the pool records and the trader's accounts
func (s *SwapBaseInput) Accounts(p tx.Params) ([]solana.PublicKey, error) {
	return poolAccounts(p, s.Mint, s.ConfigIndex, s.Account)
}

// ReadOnlyAccounts returns the mints and the config
func (s *SwapBaseInput) ReadOnlyAccounts(p tx.Params) ([]solana.PublicKey, error) {
	return poolReadOnly(p, s.Mint, s.ConfigIndex)
}

// Apply applies the SwapBaseInput transaction to ledger state.
func (s *SwapBaseInput) Apply(ctx *tx.ApplyContext) tx.Result {
	return executeSwap(ctx, swapRequest{
		mint:        s.Mint,
		configIndex: s.ConfigIndex,
		buy:         s.Buy,
		exactIn:     true,
		amount:      s.AmountIn,
		accept:      func(q Quote) bool { return q.UserReceives >= s.MinimumAmountOut },
	})
}

// SwapBaseOutput receives exactly AmountOut and pays at most MaxAmountIn.
type SwapBaseOutput struct {
	tx.BaseTx

	Mint        solana.PublicKey `json:"Mint"`
	ConfigIndex uint16           `json:"ConfigIndex"`
	Buy         bool             `json:"Buy"`
	MaxAmountIn uint64           `json:"MaxAmountIn"`
	AmountOut   uint64           `json:"AmountOut"`
}

// NewSwapBaseOutput creates a new SwapBaseOutput transaction
func NewSwapBaseOutput(user, mint solana.PublicKey, configIndex uint16, buy bool, maxAmountIn, amountOut uint64) *SwapBaseOutput {
	return &SwapBaseOutput{
		BaseTx:      *tx.NewBaseTx(tx.TypeSwapBaseOutput, user),
		Mint:        mint,
		ConfigIndex: configIndex,
		Buy:         buy,
		MaxAmountIn: maxAmountIn,
		AmountOut:   amountOut,
	}
}

// Validate validates the SwapBaseOutput transaction
func (s *SwapBaseOutput) Validate() error {
	if err := validateSwap(&s.BaseTx, s.Mint); err != nil {
		return err
	}
	if s.AmountOut == 0 {
		return errors.New("temBAD_AMOUNT: AmountOut must be positive")
	}
	return nil
}

// Accounts returns the pool records and the trader's accounts
func (s *SwapBaseOutput) Accounts(p tx.Params) ([]solana.PublicKey, error) {
	return poolAccounts(p, s.Mint, s.ConfigIndex, s.Account)
}

// ReadOnlyAccounts returns the mints and the config
func (s *SwapBaseOutput) ReadOnlyAccounts(p tx.Params) ([]solana.PublicKey, error) {
	return poolReadOnly(p, s.Mint, s.ConfigIndex)
}

// Apply applies the SwapBaseOutput transaction to ledger state.
func (s *SwapBaseOutput) Apply(ctx *tx.ApplyContext) tx.Result {
	return executeSwap(ctx, swapRequest{
		mint:        s.Mint,
		configIndex: s.ConfigIndex,
		buy:         s.Buy,
		exactIn:     false,
		amount:      s.AmountOut,
		accept:      func(q Quote) bool { return q.UserPays <= s.MaxAmountIn },
	})
}
