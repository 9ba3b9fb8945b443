package keylet

import (
	"encoding/binary"
	"fmt"

	"github.com/LeJamon/goCPSwap/internal/core/ledger/entry"
	"github.com/gagliardetto/solana-go"
)

// Seed prefixes for program-derived addresses
const (
	SeedAmmConfig = "amm_config"
	SeedPool      = "pool"
	SeedVault     = "pool_vault"
	SeedAuthority = "vault_and_lp_mint_auth_seed"
)

// Known program identities
var (
	// TokenProgramID owns classic token mints.
	TokenProgramID = solana.TokenProgramID
	// Token2022ProgramID owns mints that may carry extensions.
	Token2022ProgramID = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
	// AssociatedTokenProgramID derives associated token account addresses.
	AssociatedTokenProgramID = solana.SPLAssociatedTokenAccountProgramID
	// DefaultProgramID is the pool program identity used when none is configured.
	DefaultProgramID = solana.MustPublicKeyFromBase58("CPMMoo8L3F4NbTegBCKVNunggL7H1ZpdTHKxQB5qKP1C")
	// DefaultReferenceMint is the reference asset used when none is configured.
	DefaultReferenceMint = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
)

// Keylet represents an addressable location in the ledger state.
// It combines a type identifier with a 256-bit key.
type Keylet struct {
	Type entry.Type
	Key  [32]byte
}

// Address returns the key as an account address.
func (k Keylet) Address() solana.PublicKey {
	return solana.PublicKeyFromBytes(k.Key[:])
}

func (k Keylet) String() string {
	return fmt.Sprintf("%s(%s)", k.Type, k.Address())
}

// AmmConfig returns the keylet for the config record stored at addr.
func AmmConfig(addr solana.PublicKey) Keylet {
	return Keylet{Type: entry.TypeAmmConfig, Key: addr}
}

// Pool returns the keylet for the pool record stored at addr.
func Pool(addr solana.PublicKey) Keylet {
	return Keylet{Type: entry.TypePool, Key: addr}
}

// Mint returns the keylet for the mint record stored at addr.
func Mint(addr solana.PublicKey) Keylet {
	return Keylet{Type: entry.TypeMint, Key: addr}
}

// TokenAccount returns the keylet for the token account stored at addr.
func TokenAccount(addr solana.PublicKey) Keylet {
	return Keylet{Type: entry.TypeTokenAccount, Key: addr}
}

// Derived is an address found by program address derivation.
type Derived struct {
	Address solana.PublicKey
	Bump    uint8
}

func derive(programID solana.PublicKey, seeds ...[]byte) (Derived, error) {
	addr, bump, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		return Derived{}, fmt.Errorf("failed to derive address: %w", err)
	}
	return Derived{Address: addr, Bump: bump}, nil
}

// AmmConfigAddress derives the address of the config with the given index.
func AmmConfigAddress(programID solana.PublicKey, index uint16) (Derived, error) {
	idx := make([]byte, 2)
	binary.BigEndian.PutUint16(idx, index)
	return derive(programID, []byte(SeedAmmConfig), idx)
}

// PoolAddress derives the address of the pool listing mint.
func PoolAddress(programID, mint solana.PublicKey) (Derived, error) {
	return derive(programID, []byte(SeedPool), mint.Bytes())
}

// VaultAddress derives the pool's vault for mint.
func VaultAddress(programID, pool, mint solana.PublicKey) (Derived, error) {
	return derive(programID, []byte(SeedVault), pool.Bytes(), mint.Bytes())
}

// Authority derives the program authority that owns every vault.
func Authority(programID solana.PublicKey) (Derived, error) {
	return derive(programID, []byte(SeedAuthority))
}

// AssociatedTokenAddress derives the associated token account of owner for
// mint under tokenProgram.
func AssociatedTokenAddress(owner, tokenProgram, mint solana.PublicKey) (solana.PublicKey, error) {
	d, err := derive(AssociatedTokenProgramID, owner.Bytes(), tokenProgram.Bytes(), mint.Bytes())
	if err != nil {
		return solana.PublicKey{}, err
	}
	return d.Address, nil
}
