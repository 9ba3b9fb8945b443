// Package fees splits trade fees between the protocol and the pool creator
// and tracks the undistributed amounts held in a pool's vaults.
package fees

import (
	"fmt"

	"github.com/LeJamon/goCPSwap/internal/core/amm/checked"
)

// RateDenominator is the denominator of every fee rate (parts per million).
const RateDenominator uint64 = 1_000_000

// Side names the pool asset a fee was taken in.
type Side uint8

const (
	Listed Side = iota
	Reference
)

func (s Side) String() string {
	if s == Listed {
		return "listed"
	}
	return "reference"
}

// Split is a gross trade fee divided into its two recipients.
type Split struct {
	Protocol uint64
	Creator  uint64
}

// Total returns Protocol + Creator, which always equals the gross fee.
func (s Split) Total() uint64 {
	return s.Protocol + s.Creator
}

// SplitFee divides grossFee. The protocol receives
// floor(grossFee*protocolFeeRate/RateDenominator), the creator the rest.
func SplitFee(grossFee, protocolFeeRate uint64) (Split, error) {
	if protocolFeeRate > RateDenominator {
		return Split{}, fmt.Errorf("%w: protocol fee rate %d above denominator", checked.ErrArithmetic, protocolFeeRate)
	}
	protocol, err := checked.MulDivFloor(grossFee, protocolFeeRate, RateDenominator)
	if err != nil {
		return Split{}, err
	}
	return Split{Protocol: protocol, Creator: grossFee - protocol}, nil
}

// TradingFee returns floor(amount*rate/RateDenominator).
func TradingFee(amount, rate uint64) (uint64, error) {
	return checked.MulDivFloor(amount, rate, RateDenominator)
}

// Accumulators are the fees a pool owes but has not paid out yet.
type Accumulators struct {
	ProtocolListed    uint64
	ProtocolReference uint64
	CreatorListed     uint64
	CreatorReference  uint64
}

// Settlement is the drained content of Accumulators.
type Settlement struct {
	CreatorListed     uint64
	CreatorReference  uint64
	ProtocolListed    uint64
	ProtocolReference uint64
}

// IsZero reports whether nothing was owed.
func (s Settlement) IsZero() bool {
	return s == Settlement{}
}

// Accrue credits split to the accumulators of side only. On error a is unchanged.
func (a *Accumulators) Accrue(side Side, split Split) error {
	switch side {
	case Listed:
		protocol, err := checked.Add(a.ProtocolListed, split.Protocol)
		if err != nil {
			return err
		}
		creator, err := checked.Add(a.CreatorListed, split.Creator)
		if err != nil {
			return err
		}
		a.ProtocolListed, a.CreatorListed = protocol, creator
	case Reference:
		protocol, err := checked.Add(a.ProtocolReference, split.Protocol)
		if err != nil {
			return err
		}
		creator, err := checked.Add(a.CreatorReference, split.Creator)
		if err != nil {
			return err
		}
		a.ProtocolReference, a.CreatorReference = protocol, creator
	default:
		return fmt.Errorf("unknown fee side %d", side)
	}
	return nil
}

// Owed returns the undistributed total for side.
func (a Accumulators) Owed(side Side) (uint64, error) {
	if side == Listed {
		return checked.Add(a.ProtocolListed, a.CreatorListed)
	}
	return checked.Add(a.ProtocolReference, a.CreatorReference)
}

// CollectAndReset returns the four balances and zeroes them.
func (a *Accumulators) CollectAndReset() Settlement {
	s := Settlement{
		CreatorListed:     a.CreatorListed,
		CreatorReference:  a.CreatorReference,
		ProtocolListed:    a.ProtocolListed,
		ProtocolReference: a.ProtocolReference,
	}
	*a = Accumulators{}
	return s
}
