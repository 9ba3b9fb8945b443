package amm

import (
	"github.com/LeJamon/goCPSwap/internal/core/amm/curve"
	"github.com/LeJamon/goCPSwap/internal/core/amm/fees"
	"github.com/LeJamon/goCPSwap/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goCPSwap/internal/core/tx"
	"github.com/LeJamon/goCPSwap/internal/core/tx/token"
	"github.com/gagliardetto/solana-go"
)

// PoolState is a loaded pool with its config.
type PoolState struct {
	addrs  poolAddresses
	pool   *entries.Pool
	config *entries.AmmConfig
}

// Address returns the pool record address.
func (s *PoolState) Address() solana.PublicKey { return s.addrs.Pool.Address }

// Pool returns the pool record.
func (s *PoolState) Pool() *entries.Pool { return s.pool }

// Config returns the pool's fee tier.
func (s *PoolState) Config() *entries.AmmConfig { return s.config }

// VaultBalances returns the raw listed and reference vault balances.
func (s *PoolState) VaultBalances(v tx.ReadView) (listed, reference uint64, err error) {
	if listed, err = token.Balance(v, s.addrs.ListedVault.Address); err != nil {
		return 0, 0, err
	}
	if reference, err = token.Balance(v, s.addrs.ReferenceVault.Address); err != nil {
		return 0, 0, err
	}
	return listed, reference, nil
}

// Reserves returns the current virtual reserves.
func (s *PoolState) Reserves(v tx.ReadView) (curve.Reserves, error) {
	listed, reference, err := s.VaultBalances(v)
	if err != nil {
		return curve.Reserves{}, err
	}
	return s.pool.VaultAmountsWithoutFee(listed, reference)
}

// Price quotes the pool at its current vault balances.
func (s *PoolState) Price(v tx.ReadView) (curve.Price, error) {
	listed, reference, err := s.VaultBalances(v)
	if err != nil {
		return curve.Price{}, err
	}
	return s.pool.TokenPriceX32(listed, reference)
}

// available returns what the vault of side can pay out: its balance less
// the fees owed from it.
func (s *PoolState) available(v tx.ReadView, side fees.Side) (uint64, error) {
	bal, err := token.Balance(v, s.pool.Vault(side))
	if err != nil {
		return 0, err
	}
	owed, err := s.pool.Fees.Owed(side)
	if err != nil {
		return 0, err
	}
	if owed > bal {
		return 0, nil
	}
	return bal - owed, nil
}

func (s *PoolState) save(v tx.LedgerView) error {
	return tx.Put(v, s.addrs.Pool.Address, s.pool)
}
