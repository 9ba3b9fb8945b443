// Package curve implements the constant-product swap math on virtual reserves.
//
// Virtual reserves are the vault balances minus undistributed fees, plus the
// fixed offset on the reference side. All functions are pure.
package curve

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goCPSwap/internal/core/amm/checked"
	"github.com/LeJamon/goCPSwap/internal/core/amm/fees"
)

var (
	// ErrInvalidInput is returned for parameters no trade or pool can accept.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvariantViolation is returned when a trade would shrink the reserve product.
	ErrInvariantViolation = errors.New("invariant violation: reserve product decreased")

	// ErrZeroTradingTokens is returned when a trade rounds to nothing on either side.
	ErrZeroTradingTokens = errors.New("zero trading tokens")

	// ErrInsufficientLiquidity is an arithmetic failure caused by the reserves.
	ErrInsufficientLiquidity = fmt.Errorf("%w: insufficient liquidity", checked.ErrArithmetic)
)

// Direction is the side of the pool the trader pays into.
type Direction uint8

const (
	// ListedToReference sells the listed asset for the reference asset.
	ListedToReference Direction = iota
	// ReferenceToListed buys the listed asset with the reference asset.
	ReferenceToListed
)

func (d Direction) String() string {
	if d == ReferenceToListed {
		return "reference->listed"
	}
	return "listed->reference"
}

// InputSide returns the fee side credited by a trade in this direction.
func (d Direction) InputSide() fees.Side {
	if d == ReferenceToListed {
		return fees.Reference
	}
	return fees.Listed
}

// Reserves are the virtual reserves of a pool.
type Reserves struct {
	Listed    uint64
	Reference uint64
}

func (r Reserves) oriented(d Direction) (in, out uint64) {
	if d == ReferenceToListed {
		return r.Reference, r.Listed
	}
	return r.Listed, r.Reference
}

func fromOriented(d Direction, in, out uint64) Reserves {
	if d == ReferenceToListed {
		return Reserves{Listed: out, Reference: in}
	}
	return Reserves{Listed: in, Reference: out}
}

// SwapResult is the outcome of a quoted trade.
type SwapResult struct {
	Direction Direction
	// SourceAmount is what the trader pays, trade fee included.
	SourceAmount uint64
	// DestinationAmount is what the trader receives.
	DestinationAmount uint64
	// TradeFee is the part of SourceAmount kept as fee.
	TradeFee uint64
	// Before and After are the virtual reserves around the trade.
	Before Reserves
	After  Reserves
}

// VaultAmountsWithoutFee computes the virtual reserves from raw vault balances.
func VaultAmountsWithoutFee(listedVault, referenceVault, offset uint64, acc fees.Accumulators) (Reserves, error) {
	listedFees, err := acc.Owed(fees.Listed)
	if err != nil {
		return Reserves{}, err
	}
	referenceFees, err := acc.Owed(fees.Reference)
	if err != nil {
		return Reserves{}, err
	}
	listed, err := checked.Sub(listedVault, listedFees)
	if err != nil {
		return Reserves{}, fmt.Errorf("listed vault below owed fees: %w", err)
	}
	withOffset, err := checked.Add(referenceVault, offset)
	if err != nil {
		return Reserves{}, err
	}
	reference, err := checked.Sub(withOffset, referenceFees)
	if err != nil {
		return Reserves{}, fmt.Errorf("reference vault below owed fees: %w", err)
	}
	return Reserves{Listed: listed, Reference: reference}, nil
}

// SwapExactIn quotes a trade that pays exactly amountIn.
// fee = floor(amountIn*rate/1e6); out = floor(rOut*net/(rIn+net)).
func SwapExactIn(d Direction, amountIn uint64, r Reserves, tradeFeeRate uint64) (SwapResult, error) {
	if tradeFeeRate >= fees.RateDenominator {
		return SwapResult{}, fmt.Errorf("%w: trade fee rate %d", ErrInvalidInput, tradeFeeRate)
	}
	if amountIn == 0 {
		return SwapResult{}, ErrZeroTradingTokens
	}
	rIn, rOut := r.oriented(d)
	if rIn == 0 || rOut == 0 {
		return SwapResult{}, ErrInsufficientLiquidity
	}

	fee, err := fees.TradingFee(amountIn, tradeFeeRate)
	if err != nil {
		return SwapResult{}, err
	}
	net := amountIn - fee

	newIn, err := checked.Add(rIn, net)
	if err != nil {
		return SwapResult{}, err
	}
	out, err := checked.MulDivFloor(rOut, net, newIn)
	if err != nil {
		return SwapResult{}, err
	}
	if out == 0 {
		return SwapResult{}, ErrZeroTradingTokens
	}

	res := SwapResult{
		Direction:         d,
		SourceAmount:      amountIn,
		DestinationAmount: out,
		TradeFee:          fee,
		Before:            r,
		After:             fromOriented(d, newIn, rOut-out),
	}
	return res, CheckInvariant(res.Before, res.After)
}

// SwapExactOut quotes a trade that receives exactly amountOut.
// The net input ceil(rIn*out/(rOut-out)) is grossed up so that the fee,
// computed as in SwapExactIn, leaves at least that much in the pool.
func SwapExactOut(d Direction, amountOut uint64, r Reserves, tradeFeeRate uint64) (SwapResult, error) {
	if tradeFeeRate >= fees.RateDenominator {
		return SwapResult{}, fmt.Errorf("%w: trade fee rate %d", ErrInvalidInput, tradeFeeRate)
	}
	if amountOut == 0 {
		return SwapResult{}, ErrZeroTradingTokens
	}
	rIn, rOut := r.oriented(d)
	if rIn == 0 || amountOut >= rOut {
		return SwapResult{}, fmt.Errorf("%w: want %d of reserve %d", ErrInsufficientLiquidity, amountOut, rOut)
	}

	need, err := checked.MulDivCeil(rIn, amountOut, rOut-amountOut)
	if err != nil {
		return SwapResult{}, err
	}
	if need == 0 {
		return SwapResult{}, ErrZeroTradingTokens
	}
	gross, err := checked.MulDivCeil(need, fees.RateDenominator, fees.RateDenominator-tradeFeeRate)
	if err != nil {
		return SwapResult{}, err
	}
	fee, err := fees.TradingFee(gross, tradeFeeRate)
	if err != nil {
		return SwapResult{}, err
	}

	newIn, err := checked.Add(rIn, gross-fee)
	if err != nil {
		return SwapResult{}, err
	}
	res := SwapResult{
		Direction:         d,
		SourceAmount:      gross,
		DestinationAmount: amountOut,
		TradeFee:          fee,
		Before:            r,
		After:             fromOriented(d, newIn, rOut-amountOut),
	}
	return res, CheckInvariant(res.Before, res.After)
}

// Swap dispatches to SwapExactIn or SwapExactOut.
func Swap(d Direction, amountSpecified uint64, exactIn bool, r Reserves, tradeFeeRate uint64) (SwapResult, error) {
	if exactIn {
		return SwapExactIn(d, amountSpecified, r, tradeFeeRate)
	}
	return SwapExactOut(d, amountSpecified, r, tradeFeeRate)
}

// CheckInvariant fails unless after.Listed*after.Reference >= before.Listed*before.Reference.
func CheckInvariant(before, after Reserves) error {
	k := checked.Product(before.Listed, before.Reference)
	k2 := checked.Product(after.Listed, after.Reference)
	if k2.Lt(k) {
		return fmt.Errorf("%w: %s < %s", ErrInvariantViolation, k2.Dec(), k.Dec())
	}
	return nil
}
