package curve

import (
	"math"
	"testing"

	"github.com/LeJamon/goCPSwap/internal/core/amm/checked"
	"github.com/LeJamon/goCPSwap/internal/core/amm/fees"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

var scenarioReserves = Reserves{Listed: 10_000_000, Reference: 25_000_000}

func TestSwapExactIn_Scenario(t *testing.T) {
	res, err := SwapExactIn(ListedToReference, 1_000_000, scenarioReserves, 2500)
	require.NoError(t, err)

	assert.Equal(t, uint64(1_000_000), res.SourceAmount)
	assert.Equal(t, uint64(2500), res.TradeFee)
	assert.Equal(t, uint64(2_267_560), res.DestinationAmount)
	assert.Equal(t, Reserves{Listed: 10_997_500, Reference: 22_732_440}, res.After)

	split, err := fees.SplitFee(res.TradeFee, 120000)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), split.Protocol)
	assert.Equal(t, uint64(2200), split.Creator)
}

func TestSwapExactIn(t *testing.T) {
	tests := []struct {
		name      string
		direction Direction
		amount    uint64
		reserves  Reserves
		rate      uint64
		out       uint64
		err       error
	}{
		{
			name:      "buy without fee",
			direction: ReferenceToListed,
			amount:    1000,
			reserves:  Reserves{Listed: 1000, Reference: 1000},
			out:       500,
		},
		{
			name:      "output rounds down",
			direction: ListedToReference,
			amount:    3,
			reserves:  Reserves{Listed: 10, Reference: 10},
			out:       2,
		},
		{
			name:      "dust rounds to zero",
			direction: ListedToReference,
			amount:    1,
			reserves:  Reserves{Listed: 1_000_000, Reference: 10},
			err:       ErrZeroTradingTokens,
		},
		{
			name:      "zero amount",
			direction: ListedToReference,
			amount:    0,
			reserves:  scenarioReserves,
			err:       ErrZeroTradingTokens,
		},
		{
			name:      "empty reserve",
			direction: ListedToReference,
			amount:    10,
			reserves:  Reserves{Listed: 0, Reference: 10},
			err:       checked.ErrArithmetic,
		},
		{
			name:      "fee rate at denominator",
			direction: ListedToReference,
			amount:    10,
			reserves:  scenarioReserves,
			rate:      fees.RateDenominator,
			err:       ErrInvalidInput,
		},
		{
			name:      "input overflows reserve",
			direction: ListedToReference,
			amount:    math.MaxUint64,
			reserves:  Reserves{Listed: 2, Reference: 10},
			err:       checked.ErrArithmetic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := SwapExactIn(tt.direction, tt.amount, tt.reserves, tt.rate)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.out, res.DestinationAmount)
		})
	}
}

func TestSwapExactOut(t *testing.T) {
	res, err := SwapExactOut(ListedToReference, 2_000_000, scenarioReserves, 2500)
	require.NoError(t, err)

	assert.Equal(t, uint64(2_000_000), res.DestinationAmount)
	assert.Equal(t, uint64(871_746), res.SourceAmount)
	assert.Equal(t, uint64(2179), res.TradeFee)
	assert.Equal(t, Reserves{Listed: 10_869_567, Reference: 23_000_000}, res.After)

	t.Run("whole reserve", func(t *testing.T) {
		_, err := SwapExactOut(ListedToReference, scenarioReserves.Reference, scenarioReserves, 2500)
		assert.ErrorIs(t, err, ErrInsufficientLiquidity)
		assert.ErrorIs(t, err, checked.ErrArithmetic)
	})

	t.Run("zero amount", func(t *testing.T) {
		_, err := SwapExactOut(ReferenceToListed, 0, scenarioReserves, 2500)
		assert.ErrorIs(t, err, ErrZeroTradingTokens)
	})

	t.Run("fee leaves at least the net requirement", func(t *testing.T) {
		for _, rate := range []uint64{0, 1, 2500, 10000, 250000, 999999} {
			res, err := SwapExactOut(ReferenceToListed, 12345, scenarioReserves, rate)
			require.NoError(t, err)
			fee, err := fees.TradingFee(res.SourceAmount, rate)
			require.NoError(t, err)
			assert.Equal(t, fee, res.TradeFee)
		}
	})
}

func TestSwapRoundTripNeverPaysTrader(t *testing.T) {
	reserves := []Reserves{
		{Listed: 10_000_000, Reference: 25_000_000},
		{Listed: 1_000, Reference: 7_000_000_000},
		{Listed: 123_456_789, Reference: 987},
		{Listed: 1 << 40, Reference: 1 << 50},
	}
	amounts := []uint64{1, 17, 1_000, 999_999, 5_000_000}
	rates := []uint64{0, 100, 2500, 30000}

	for _, r := range reserves {
		for _, amount := range amounts {
			for _, rate := range rates {
				for _, d := range []Direction{ListedToReference, ReferenceToListed} {
					first, err := SwapExactIn(d, amount, r, rate)
					if err != nil {
						continue
					}
					reverse := ReferenceToListed
					if d == ReferenceToListed {
						reverse = ListedToReference
					}
					back, err := SwapExactOut(reverse, amount, first.After, rate)
					if err != nil {
						continue
					}
					require.GreaterOrEqual(t, back.SourceAmount, first.DestinationAmount,
						"reserves %+v amount %d rate %d direction %s", r, amount, rate, d)
				}
			}
		}
	}
}

func TestSwapPreservesProduct(t *testing.T) {
	for amount := uint64(1); amount < 2_000_000; amount = amount*3 + 1 {
		for _, exactIn := range []bool{true, false} {
			res, err := Swap(ReferenceToListed, amount, exactIn, scenarioReserves, 2500)
			if err != nil {
				continue
			}
			require.NoError(t, CheckInvariant(res.Before, res.After))
		}
	}
}

func TestCheckInvariant(t *testing.T) {
	assert.NoError(t, CheckInvariant(Reserves{10, 10}, Reserves{10, 10}))
	assert.NoError(t, CheckInvariant(Reserves{10, 10}, Reserves{11, 10}))
	assert.ErrorIs(t, CheckInvariant(Reserves{10, 10}, Reserves{11, 9}), ErrInvariantViolation)
	assert.NoError(t, CheckInvariant(
		Reserves{math.MaxUint64, math.MaxUint64},
		Reserves{math.MaxUint64, math.MaxUint64}))
}

func TestVaultAmountsWithoutFee(t *testing.T) {
	acc := fees.Accumulators{ProtocolListed: 100, CreatorListed: 200, ProtocolReference: 10, CreatorReference: 20}

	r, err := VaultAmountsWithoutFee(10_000_300, 20_000_030, 5_000_000, acc)
	require.NoError(t, err)
	assert.Equal(t, scenarioReserves, r)

	t.Run("listed fees above vault", func(t *testing.T) {
		_, err := VaultAmountsWithoutFee(299, 0, 5_000_000, acc)
		assert.ErrorIs(t, err, checked.ErrArithmetic)
	})

	t.Run("offset covers reference fees", func(t *testing.T) {
		r, err := VaultAmountsWithoutFee(300, 0, 30, acc)
		require.NoError(t, err)
		assert.Equal(t, Reserves{Listed: 0, Reference: 0}, r)
	})

	t.Run("offset overflow", func(t *testing.T) {
		_, err := VaultAmountsWithoutFee(300, math.MaxUint64, 1, acc)
		assert.ErrorIs(t, err, checked.ErrArithmetic)
	})
}

func TestPriceX32(t *testing.T) {
	p, err := PriceX32(scenarioReserves, 5_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint128.From64(10_737_418_240), p.Up)
	assert.Equal(t, uint128.From64(1_717_986_918), p.Down)
	assert.Equal(t, uint64(20_000_000), p.EffectiveReferenceLiquidity)
	assert.InDelta(t, 2.5, p.Float(), 1e-9)

	t.Run("wide result", func(t *testing.T) {
		p, err := PriceX32(Reserves{Listed: 1, Reference: math.MaxUint64}, 0)
		require.NoError(t, err)
		var max64 uint64 = math.MaxUint64
		assert.Equal(t, uint64(math.MaxUint32), p.Up.Hi)
		assert.Equal(t, max64<<32, p.Up.Lo)
	})

	t.Run("empty reserve", func(t *testing.T) {
		_, err := PriceX32(Reserves{Listed: 0, Reference: 10}, 0)
		assert.ErrorIs(t, err, checked.ErrArithmetic)
	})
}

func TestValidateSupply(t *testing.T) {
	tests := []struct {
		name    string
		deposit uint64
		offset  uint64
		policy  SupplyPolicy
		err     bool
	}{
		{name: "zero deposit", deposit: 0, offset: 5, policy: DefaultSupplyPolicy, err: true},
		{name: "zero deposit without policy", deposit: 0, offset: 5, err: true},
		{name: "zero offset", deposit: 10, offset: 0, policy: DefaultSupplyPolicy, err: true},
		{name: "valid", deposit: 10_000_000, offset: 5_000_000, policy: DefaultSupplyPolicy},
		{name: "at cap", deposit: 2, offset: 2_000_000, policy: DefaultSupplyPolicy},
		{name: "above cap", deposit: 2, offset: 2_000_001, policy: DefaultSupplyPolicy, err: true},
		{name: "below minimum", deposit: 10, offset: 5, policy: SupplyPolicy{MinOffset: 6}, err: true},
		{name: "uncapped", deposit: 1, offset: math.MaxUint64, policy: SupplyPolicy{MinOffset: 1}},
		{name: "cap beyond u64", deposit: math.MaxUint64, offset: math.MaxUint64, policy: DefaultSupplyPolicy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSupply(tt.deposit, tt.offset, tt.policy)
			if tt.err {
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
