package testing

import (
	"github.com/LeJamon/goCPSwap/internal/core/ledger/keylet"
	"github.com/LeJamon/goCPSwap/internal/core/tx/token"
	"github.com/gagliardetto/solana-go"
)

// MintBuilder provides a fluent interface for building CreateMint transactions.
type MintBuilder struct {
	authority  *Account
	address    solana.PublicKey
	program    solana.PublicKey
	decimals   uint8
	extensions []string
	feeBps     uint16
	maxFee     uint64
}

// NewMint starts a classic mint at address with 6 decimals.
func NewMint(authority *Account, address solana.PublicKey) *MintBuilder {
	return &MintBuilder{
		authority: authority,
		address:   address,
		program:   keylet.TokenProgramID,
		decimals:  6,
	}
}

// Decimals sets the mint decimals.
func (b *MintBuilder) Decimals(d uint8) *MintBuilder {
	b.decimals = d
	return b
}

// Token2022 moves the mint to the extended token program.
func (b *MintBuilder) Token2022() *MintBuilder {
	b.program = keylet.Token2022ProgramID
	return b
}

// Extensions adds extended-program extensions by name.
func (b *MintBuilder) Extensions(names ...string) *MintBuilder {
	b.program = keylet.Token2022ProgramID
	b.extensions = append(b.extensions, names...)
	return b
}

// TransferFee sets a transfer fee of bps basis points capped at maxFee.
func (b *MintBuilder) TransferFee(bps uint16, maxFee uint64) *MintBuilder {
	b.Extensions("TransferFee")
	b.feeBps = bps
	b.maxFee = maxFee
	return b
}

// Build creates the CreateMint transaction.
func (b *MintBuilder) Build() *token.CreateMint {
	m := token.NewCreateMint(b.authority.Address, b.address, b.program, b.decimals)
	m.Extensions = b.extensions
	m.TransferFeeBasisPoints = b.feeBps
	m.MaximumFee = b.maxFee
	return m
}

// Tokens converts whole tokens to base units at decimals.
func Tokens(whole uint64, decimals uint8) uint64 {
	for range decimals {
		whole *= 10
	}
	return whole
}
