package entry

import (
	"fmt"
)

// Type represents a ledger entry type
type Type uint16

// All known ledger entry types
const (
	// Pool program records
	TypeAmmConfig Type = 0x0101 // Shared fee tier configuration
	TypePool      Type = 0x0102 // Listed/reference pool state

	// Token program records
	TypeMint         Type = 0x0201 // Token mint
	TypeTokenAccount Type = 0x0202 // Token holding account
)

// String returns the string representation of the Type
func (t Type) String() string {
	switch t {
	case TypeAmmConfig:
		return "AmmConfig"
	case TypePool:
		return "Pool"
	case TypeMint:
		return "Mint"
	case TypeTokenAccount:
		return "TokenAccount"
	default:
		return fmt.Sprintf("Unknown(%#x)", uint16(t))
	}
}

// Entry defines the interface for all ledger entries
type Entry interface {
	Type() Type
	Validate() error
	Encode() ([]byte, error)
}
