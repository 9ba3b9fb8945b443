// Package status implements the pool permission bitmask.
//
// A set bit disables the matching operation. Bits 3 to 7 are reserved and
// are carried through every single-bit mutation untouched.
package status

import "fmt"

// Bit identifies one gated operation.
type Bit uint8

const (
	Deposit  Bit = 0
	Withdraw Bit = 1
	Swap     Bit = 2
)

func (b Bit) String() string {
	switch b {
	case Deposit:
		return "deposit"
	case Withdraw:
		return "withdraw"
	case Swap:
		return "swap"
	default:
		return fmt.Sprintf("reserved(%d)", uint8(b))
	}
}

// Status is the packed pool status byte.
type Status uint8

// Enabled is the status of a freshly created pool: every operation allowed.
const Enabled Status = 0

// IsEnabled reports whether the operation at bit is permitted, i.e. the bit is 0.
func IsEnabled(s Status, bit Bit) bool {
	return s&(1<<bit) == 0
}

// SetBit sets (disable=true) or clears exactly one bit and returns the new status.
func SetBit(s Status, bit Bit, disable bool) Status {
	if disable {
		return s | (1 << bit)
	}
	return s &^ (1 << bit)
}

// Set replaces the whole status byte.
func (s *Status) Set(v uint8) {
	*s = Status(v)
}

func (s Status) DepositEnabled() bool  { return IsEnabled(s, Deposit) }
func (s Status) WithdrawEnabled() bool { return IsEnabled(s, Withdraw) }
func (s Status) SwapEnabled() bool     { return IsEnabled(s, Swap) }

// Disable returns s with the operation at bit disabled.
func (s Status) Disable(bit Bit) Status { return SetBit(s, bit, true) }

// Enable returns s with the operation at bit permitted.
func (s Status) Enable(bit Bit) Status { return SetBit(s, bit, false) }

func (s Status) String() string {
	return fmt.Sprintf("deposit=%t withdraw=%t swap=%t raw=%#02x",
		s.DepositEnabled(), s.WithdrawEnabled(), s.SwapEnabled(), uint8(s))
}
