// Package checked provides overflow-checked u64 arithmetic for pool math.
//
// Every helper fails with ErrArithmetic instead of wrapping or saturating.
// Products that may exceed 64 bits go through a 256-bit intermediate.
package checked

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/holiman/uint256"
)

// ErrArithmetic is returned on overflow, underflow or division by zero.
var ErrArithmetic = errors.New("arithmetic error")

// Add returns a+b.
func Add(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, fmt.Errorf("%w: %d + %d overflows", ErrArithmetic, a, b)
	}
	return sum, nil
}

// Sub returns a-b.
func Sub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, fmt.Errorf("%w: %d - %d underflows", ErrArithmetic, a, b)
	}
	return diff, nil
}

// Mul returns a*b.
func Mul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, fmt.Errorf("%w: %d * %d overflows", ErrArithmetic, a, b)
	}
	return lo, nil
}

// MulDivFloor returns floor(a*b/d).
func MulDivFloor(a, b, d uint64) (uint64, error) {
	q, _, err := mulDiv(a, b, d)
	return q, err
}

// MulDivCeil returns ceil(a*b/d).
func MulDivCeil(a, b, d uint64) (uint64, error) {
	q, rem, err := mulDiv(a, b, d)
	if err != nil {
		return 0, err
	}
	if rem {
		return Add(q, 1)
	}
	return q, nil
}

func mulDiv(a, b, d uint64) (uint64, bool, error) {
	if d == 0 {
		return 0, false, fmt.Errorf("%w: division by zero", ErrArithmetic)
	}
	num := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	den := uint256.NewInt(d)
	quo, rem := new(uint256.Int), new(uint256.Int)
	quo.DivMod(num, den, rem)
	if !quo.IsUint64() {
		return 0, false, fmt.Errorf("%w: %d * %d / %d exceeds u64", ErrArithmetic, a, b, d)
	}
	return quo.Uint64(), !rem.IsZero(), nil
}

// Product returns a*b as a 256-bit integer. It cannot overflow.
func Product(a, b uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
}
