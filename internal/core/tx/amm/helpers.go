// Package amm implements the pool program transactions: fee tiers, pool
// creation, swaps, fee collection and status administration.
package amm

import (
	"github.com/LeJamon/goCPSwap/internal/core/ledger/keylet"
	"github.com/LeJamon/goCPSwap/internal/core/tx"
	"github.com/LeJamon/goCPSwap/internal/core/tx/token"
	"github.com/gagliardetto/solana-go"
)

// poolAddresses are the derived records of one pool.
type poolAddresses struct {
	Pool           keylet.Derived
	ListedVault    keylet.Derived
	ReferenceVault keylet.Derived
	Authority      keylet.Derived
}

func derivePool(p tx.Params, mint solana.PublicKey) (poolAddresses, error) {
	var a poolAddresses
	var err error
	if a.Pool, err = keylet.PoolAddress(p.ProgramID, mint); err != nil {
		return a, err
	}
	if a.ListedVault, err = keylet.VaultAddress(p.ProgramID, a.Pool.Address, mint); err != nil {
		return a, err
	}
	if a.ReferenceVault, err = keylet.VaultAddress(p.ProgramID, a.Pool.Address, p.ReferenceMint); err != nil {
		return a, err
	}
	if a.Authority, err = keylet.Authority(p.ProgramID); err != nil {
		return a, err
	}
	return a, nil
}

// records lists the addresses holding pool state, mints included.
func (a poolAddresses) records(p tx.Params, mint solana.PublicKey) []solana.PublicKey {
	return []solana.PublicKey{
		a.Pool.Address,
		a.ListedVault.Address,
		a.ReferenceVault.Address,
		mint,
		p.ReferenceMint,
	}
}

func configAddress(p tx.Params, index uint16) (solana.PublicKey, error) {
	d, err := keylet.AmmConfigAddress(p.ProgramID, index)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return d.Address, nil
}

// walletAccounts returns the associated account candidates of owner for
// both pool mints.
func walletAccounts(p tx.Params, owner, mint solana.PublicKey) ([]solana.PublicKey, error) {
	listed, err := token.AssociatedCandidates(owner, mint)
	if err != nil {
		return nil, err
	}
	reference, err := token.AssociatedCandidates(owner, p.ReferenceMint)
	if err != nil {
		return nil, err
	}
	return append(listed, reference...), nil
}

// poolAccounts declares the pool, its config and the wallets of owners.
func poolAccounts(p tx.Params, mint solana.PublicKey, configIndex uint16, owners ...solana.PublicKey) ([]solana.PublicKey, error) {
	addrs, err := derivePool(p, mint)
	if err != nil {
		return nil, err
	}
	cfg, err := configAddress(p, configIndex)
	if err != nil {
		return nil, err
	}
	out := append(addrs.records(p, mint), cfg)
	for _, owner := range owners {
		w, err := walletAccounts(p, owner, mint)
		if err != nil {
			return nil, err
		}
		out = append(out, w...)
	}
	return out, nil
}

// poolReadOnly lists the declared addresses a pool operation only reads:
// both mints and the config.
func poolReadOnly(p tx.Params, mint solana.PublicKey, configIndex uint16) ([]solana.PublicKey, error) {
	cfg, err := configAddress(p, configIndex)
	if err != nil {
		return nil, err
	}
	return []solana.PublicKey{mint, p.ReferenceMint, cfg}, nil
}

// LoadPool reads the pool listing mint together with its config.
func LoadPool(v tx.ReadView, p tx.Params, mint solana.PublicKey) (*PoolState, error) {
	addrs, err := derivePool(p, mint)
	if err != nil {
		return nil, err
	}
	pool, err := tx.ReadPool(v, addrs.Pool.Address)
	if err != nil {
		return nil, err
	}
	cfg, err := tx.ReadAmmConfig(v, pool.AmmConfig)
	if err != nil {
		return nil, err
	}
	return &PoolState{addrs: addrs, pool: pool, config: cfg}, nil
}

// loadPool is LoadPool for a transaction naming the pool's config by index.
func loadPool(ctx *tx.ApplyContext, mint solana.PublicKey, configIndex uint16) (*PoolState, tx.Result) {
	cfgAddr, err := configAddress(ctx.Params, configIndex)
	if err != nil {
		return nil, tx.TemINVALID_ACCOUNT
	}
	addrs, err := derivePool(ctx.Params, mint)
	if err != nil {
		return nil, tx.TemINVALID_ACCOUNT
	}
	pool, err := tx.ReadPool(ctx.View, addrs.Pool.Address)
	if err != nil {
		return nil, ctx.FailErr(err)
	}
	if !pool.AmmConfig.Equals(cfgAddr) {
		return nil, ctx.Fail(tx.TemINVALID_ACCOUNT, "pool uses another config")
	}
	cfg, err := tx.ReadAmmConfig(ctx.View, cfgAddr)
	if err != nil {
		return nil, ctx.FailErr(err)
	}
	return &PoolState{addrs: addrs, pool: pool, config: cfg}, tx.TesSUCCESS
}
