// Package testing provides test infrastructure for pool transaction testing.
//
// # Overview
//
// The testing package provides:
//   - TestEnv: A test environment over a real ledger store and engine
//   - Account: Deterministic test accounts with ed25519 keypairs
//   - ManualClock: A controllable ledger clock
//   - MintBuilder: Fluent builders for token mints
//   - Assertions: Test assertion helpers for common checks
//
// # Basic Usage
//
//	func TestMint(t *testing.T) {
//	    env := testing.NewTestEnv(t)
//
//	    alice := env.Account("alice")
//	    mint := env.CreateMint(testing.NewMint(alice, env.Account("usd").Address))
//	    env.MintTo(alice, mint, alice, 1_000_000)
//
//	    testing.RequireBalance(t, env, alice, mint, 1_000_000)
//	}
//
// # TestEnv
//
// TestEnv opens an in-memory ledger store (or a temporary on-disk one with
// WithBackend) and an engine that verifies signatures. Submit signs with the
// key of the transaction account, so every signer must be known to the
// environment through Account. Events are published to a MemorySink.
//
//	env.Submit(t)            // sign and apply one transaction
//	env.SubmitBlock(a, b, c) // sign and apply a block concurrently
//	env.Snapshot()           // copy every committed record
//	env.AdvanceTime(time.Hour)
//
// # Account
//
// Account represents a test account with deterministic keypair derivation.
// Using the same name will always produce the same account, making tests
// reproducible.
//
//	alice := testing.NewAccount("alice")
package testing
