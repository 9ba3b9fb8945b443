package curve

import (
	"fmt"

	"github.com/LeJamon/goCPSwap/internal/core/amm/checked"
	"github.com/holiman/uint256"
	"lukechampine.com/uint128"
)

// Price is a Q32.32 quote of the pool.
type Price struct {
	// Up is reference per listed unit: reference<<32 / listed.
	Up uint128.Uint128
	// Down is listed per reference unit: listed<<32 / reference.
	Down uint128.Uint128
	// EffectiveReferenceLiquidity is the reference reserve without the offset.
	EffectiveReferenceLiquidity uint64
}

// PriceX32 prices the virtual reserves r of a pool created with offset.
func PriceX32(r Reserves, offset uint64) (Price, error) {
	up, err := q32Ratio(r.Reference, r.Listed)
	if err != nil {
		return Price{}, err
	}
	down, err := q32Ratio(r.Listed, r.Reference)
	if err != nil {
		return Price{}, err
	}
	liquidity, err := checked.Sub(r.Reference, offset)
	if err != nil {
		return Price{}, fmt.Errorf("reference reserve below offset: %w", err)
	}
	return Price{Up: up, Down: down, EffectiveReferenceLiquidity: liquidity}, nil
}

// q32Ratio returns num * 2^32 / den.
func q32Ratio(num, den uint64) (uint128.Uint128, error) {
	if den == 0 {
		return uint128.Zero, fmt.Errorf("%w: price of empty reserve", checked.ErrArithmetic)
	}
	n := new(uint256.Int).Lsh(uint256.NewInt(num), 32)
	n.Div(n, uint256.NewInt(den))
	if n.BitLen() > 128 {
		return uint128.Zero, fmt.Errorf("%w: price exceeds 128 bits", checked.ErrArithmetic)
	}
	return uint128.New(n[0], n[1]), nil
}

// Float returns p as a float for display only.
func (p Price) Float() float64 {
	return toFloat(p.Up)
}

func toFloat(v uint128.Uint128) float64 {
	return (float64(v.Hi)*(1<<64) + float64(v.Lo)) / (1 << 32)
}
