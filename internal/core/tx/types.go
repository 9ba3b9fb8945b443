package tx

import "fmt"

// Type represents a transaction type code
type Type uint16

// All transaction type codes
const (
	TypeInvalid Type = 0xFFFF // Invalid/unknown type

	// Pool program
	TypeCreateConfig     Type = 1
	TypeUpdateConfig     Type = 2
	TypeInitialize       Type = 3
	TypeSwapBaseInput    Type = 4
	TypeSwapBaseOutput   Type = 5
	TypeCollectFee       Type = 6
	TypeUpdatePoolStatus Type = 7

	// Token program
	TypeCreateMint         Type = 20
	TypeMintTo             Type = 21
	TypeCreateTokenAccount Type = 22
)

var typeNames = map[Type]string{
	TypeCreateConfig:       "CreateConfig",
	TypeUpdateConfig:       "UpdateConfig",
	TypeInitialize:         "Initialize",
	TypeSwapBaseInput:      "SwapBaseInput",
	TypeSwapBaseOutput:     "SwapBaseOutput",
	TypeCollectFee:         "CollectFee",
	TypeUpdatePoolStatus:   "UpdatePoolStatus",
	TypeCreateMint:         "CreateMint",
	TypeMintTo:             "MintTo",
	TypeCreateTokenAccount: "CreateTokenAccount",
}

var typeNameMap = func() map[string]Type {
	m := make(map[string]Type, len(typeNames))
	for t, name := range typeNames {
		m[name] = t
	}
	return m
}()

// String returns the string representation of the transaction type
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", t)
}

// TypeFromName returns the transaction type for a given name
func TypeFromName(name string) (Type, bool) {
	t, ok := typeNameMap[name]
	return t, ok
}

// IsAdmin returns true for transactions only the configured admin may sign.
func (t Type) IsAdmin() bool {
	return t == TypeCreateConfig || t == TypeUpdateConfig || t == TypeUpdatePoolStatus
}
