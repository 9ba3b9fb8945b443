package curve

import (
	"fmt"

	"github.com/LeJamon/goCPSwap/internal/core/amm/checked"
)

// SupplyPolicy bounds the offset a pool may be created with relative to
// the listed seed deposit.
type SupplyPolicy struct {
	// MinOffset is the smallest accepted offset.
	MinOffset uint64
	// MaxOffsetRatio caps offset at deposit*MaxOffsetRatio. Zero disables the cap.
	MaxOffsetRatio uint64
}

// DefaultSupplyPolicy accepts any offset from 1 up to a million reference
// units per listed unit deposited.
var DefaultSupplyPolicy = SupplyPolicy{
	MinOffset:      1,
	MaxOffsetRatio: 1_000_000,
}

// ValidateSupply checks the seed deposit and offset of a new pool.
func ValidateSupply(initialListed, offset uint64, policy SupplyPolicy) error {
	if initialListed == 0 {
		return fmt.Errorf("%w: zero initial deposit", ErrInvalidInput)
	}
	if offset == 0 || offset < policy.MinOffset {
		return fmt.Errorf("%w: offset %d below minimum %d", ErrInvalidInput, offset, max(policy.MinOffset, 1))
	}
	if policy.MaxOffsetRatio == 0 {
		return nil
	}
	limit, err := checked.Mul(initialListed, policy.MaxOffsetRatio)
	if err != nil {
		// the cap is beyond u64, so no offset can exceed it
		return nil
	}
	if offset > limit {
		return fmt.Errorf("%w: offset %d exceeds %d x deposit %d", ErrInvalidInput, offset, policy.MaxOffsetRatio, initialListed)
	}
	return nil
}
