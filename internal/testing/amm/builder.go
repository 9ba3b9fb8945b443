package amm

import (
	"time"

	"github.com/LeJamon/goCPSwap/internal/core/tx/amm"
	jtx "github.com/LeJamon/goCPSwap/internal/testing"
	"github.com/gagliardetto/solana-go"
)

// Initialize sets the open time to now+1 when it is not in the future.
const secondsUntilOpen = time.Second

// InitializeBuilder provides a fluent interface for building Initialize transactions.
type InitializeBuilder struct {
	creator     *jtx.Account
	mint        solana.PublicKey
	configIndex uint16
	amount      uint64
	offset      uint64
	openTime    uint64
}

// Initialize creates a new InitializeBuilder with the standard seed and offset.
func Initialize(creator *jtx.Account, mint solana.PublicKey) *InitializeBuilder {
	return &InitializeBuilder{
		creator:     creator,
		mint:        mint,
		configIndex: ConfigIndex,
		amount:      SeedAmount,
		offset:      Offset,
	}
}

// Config sets the fee tier index.
func (b *InitializeBuilder) Config(index uint16) *InitializeBuilder {
	b.configIndex = index
	return b
}

// Seed sets the listed deposit.
func (b *InitializeBuilder) Seed(amount uint64) *InitializeBuilder {
	b.amount = amount
	return b
}

// Offset sets the virtual reference reserve.
func (b *InitializeBuilder) Offset(offset uint64) *InitializeBuilder {
	b.offset = offset
	return b
}

// OpenTime sets the requested open time.
func (b *InitializeBuilder) OpenTime(t uint64) *InitializeBuilder {
	b.openTime = t
	return b
}

// Build creates the Initialize transaction.
func (b *InitializeBuilder) Build() *amm.Initialize {
	i := amm.NewInitialize(b.creator.Address, b.mint, b.configIndex, b.amount, b.offset)
	i.OpenTime = b.openTime
	return i
}

// SwapBuilder provides a fluent interface for building swap transactions.
type SwapBuilder struct {
	user        *jtx.Account
	mint        solana.PublicKey
	configIndex uint16
	buy         bool
	amount      uint64
	bound       uint64
	bounded     bool
}

// Swap creates a SwapBuilder selling the listed token of mint's pool.
func Swap(user *jtx.Account, mint solana.PublicKey) *SwapBuilder {
	return &SwapBuilder{user: user, mint: mint, configIndex: ConfigIndex}
}

// Buy trades the reference asset for the listed token.
func (b *SwapBuilder) Buy() *SwapBuilder {
	b.buy = true
	return b
}

// Config sets the fee tier index the swap names.
func (b *SwapBuilder) Config(index uint16) *SwapBuilder {
	b.configIndex = index
	return b
}

// Amount sets the exact amount: paid for Input, received for Output.
func (b *SwapBuilder) Amount(amount uint64) *SwapBuilder {
	b.amount = amount
	return b
}

// Bound sets the slippage bound: the minimum received for Input, the
// maximum paid for Output. Without it the bound never binds.
func (b *SwapBuilder) Bound(bound uint64) *SwapBuilder {
	b.bound = bound
	b.bounded = true
	return b
}

// Input builds a SwapBaseInput.
func (b *SwapBuilder) Input() *amm.SwapBaseInput {
	minOut := uint64(0)
	if b.bounded {
		minOut = b.bound
	}
	return amm.NewSwapBaseInput(b.user.Address, b.mint, b.configIndex, b.buy, b.amount, minOut)
}

// Output builds a SwapBaseOutput.
func (b *SwapBuilder) Output() *amm.SwapBaseOutput {
	maxIn := ^uint64(0)
	if b.bounded {
		maxIn = b.bound
	}
	return amm.NewSwapBaseOutput(b.user.Address, b.mint, b.configIndex, b.buy, maxIn, b.amount)
}
