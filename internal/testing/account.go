package testing

import (
	"crypto/ed25519"
	"crypto/sha256"

	"github.com/LeJamon/goCPSwap/internal/core/tx"
	"github.com/gagliardetto/solana-go"
)

// Account represents a test account with keypair and address information.
type Account struct {
	// Name is a human-readable identifier for the account (used for debugging).
	Name string

	// Key is the ed25519 private key.
	Key solana.PrivateKey

	// Address is the public key the account signs as.
	Address solana.PublicKey
}

// NewAccount creates a new test account with a deterministic keypair derived from the name.
// Using the same name will always produce the same account, making tests reproducible.
func NewAccount(name string) *Account {
	seed := sha256.Sum256([]byte(name))
	key := solana.PrivateKey(ed25519.NewKeyFromSeed(seed[:]))
	return &Account{
		Name:    name,
		Key:     key,
		Address: key.PublicKey(),
	}
}

// Sign signs t, which must name this account as its signer.
func (a *Account) Sign(t tx.Transaction) error {
	return tx.Sign(t, a.Key)
}

// String returns the account name, for test output.
func (a *Account) String() string {
	return a.Name
}
