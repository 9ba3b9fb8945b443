package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEnabled(t *testing.T) {
	tests := []struct {
		name     string
		status   Status
		deposit  bool
		withdraw bool
		swap     bool
	}{
		{"all enabled", 0, true, true, true},
		{"swap disabled", 4, true, true, false},
		{"deposit and swap disabled", 5, false, true, false},
		{"all disabled", 7, false, false, false},
		{"deposit and withdraw disabled", 3, false, false, true},
		{"reserved bits only", 0xF8, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.deposit, IsEnabled(tt.status, Deposit))
			assert.Equal(t, tt.withdraw, IsEnabled(tt.status, Withdraw))
			assert.Equal(t, tt.swap, IsEnabled(tt.status, Swap))

			assert.Equal(t, tt.deposit, tt.status.DepositEnabled())
			assert.Equal(t, tt.withdraw, tt.status.WithdrawEnabled())
			assert.Equal(t, tt.swap, tt.status.SwapEnabled())
		})
	}
}

func TestSetBit(t *testing.T) {
	t.Run("touches a single bit", func(t *testing.T) {
		s := SetBit(0, Swap, true)
		assert.Equal(t, Status(4), s)
		s = SetBit(s, Deposit, true)
		assert.Equal(t, Status(5), s)
		s = SetBit(s, Swap, false)
		assert.Equal(t, Status(1), s)
	})

	t.Run("idempotent", func(t *testing.T) {
		assert.Equal(t, Status(4), SetBit(4, Swap, true))
		assert.Equal(t, Status(0), SetBit(0, Swap, false))
	})

	t.Run("preserves reserved bits", func(t *testing.T) {
		s := SetBit(0xF8, Withdraw, true)
		assert.Equal(t, Status(0xFA), s)
		assert.Equal(t, Status(0xF8), SetBit(s, Withdraw, false))
	})
}

func TestSetBitRoundTrip(t *testing.T) {
	for v := 0; v <= 0xFF; v++ {
		for _, bit := range []Bit{Deposit, Withdraw, Swap} {
			s := Status(v)
			if !IsEnabled(s, bit) {
				continue
			}
			got := SetBit(SetBit(s, bit, true), bit, false)
			require.Equal(t, s, got, "status %#02x bit %s", v, bit)
		}
	}
}

func TestSetWholesale(t *testing.T) {
	s := Enabled
	s.Set(7)
	assert.False(t, s.SwapEnabled())
	s.Set(0)
	assert.True(t, s.SwapEnabled())
	assert.Equal(t, Status(0), s)
}

func TestBitString(t *testing.T) {
	assert.Equal(t, "swap", Swap.String())
	assert.Equal(t, "reserved(5)", Bit(5).String())
}
