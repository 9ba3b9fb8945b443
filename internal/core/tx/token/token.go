// Package token implements the token program the pools move funds through:
// mints, token accounts, transfers and the extended program's transfer fee.
package token

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goCPSwap/internal/core/amm/checked"
	"github.com/LeJamon/goCPSwap/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goCPSwap/internal/core/ledger/keylet"
	"github.com/LeJamon/goCPSwap/internal/core/tx"
	"github.com/gagliardetto/solana-go"
)

// ErrSelfTransfer is returned when source and destination are the same account.
var ErrSelfTransfer = errors.New("transfer to self")

// supportedExtensions are the extensions a 2022 mint may carry and still be
// listed in a pool.
const supportedExtensions = entries.ExtTransferFee | entries.ExtMetadataPointer | entries.ExtTokenMetadata

// Programs lists the token programs a mint may belong to.
var Programs = []solana.PublicKey{keylet.TokenProgramID, keylet.Token2022ProgramID}

// IsKnownProgram reports whether p is one of the token programs.
func IsKnownProgram(p solana.PublicKey) bool {
	return p.Equals(keylet.TokenProgramID) || p.Equals(keylet.Token2022ProgramID)
}

// IsSupportedMint reports whether a pool may hold m. Classic mints are always
// supported; 2022 mints only with supported extensions.
func IsSupportedMint(m *entries.Mint) bool {
	switch {
	case m.TokenProgram.Equals(keylet.TokenProgramID):
		return m.Extensions == 0
	case m.TokenProgram.Equals(keylet.Token2022ProgramID):
		return m.Extensions&^supportedExtensions == 0
	default:
		return false
	}
}

func hasTransferFee(m *entries.Mint) bool {
	return m.TokenProgram.Equals(keylet.Token2022ProgramID) &&
		m.Extensions.Has(entries.ExtTransferFee) &&
		m.TransferFeeBasisPoints > 0
}

// TransferFee returns the fee withheld when amount is transferred:
// min(ceil(amount*bps/10000), maximumFee).
func TransferFee(m *entries.Mint, amount uint64) (uint64, error) {
	if !hasTransferFee(m) || amount == 0 {
		return 0, nil
	}
	fee, err := checked.MulDivCeil(amount, uint64(m.TransferFeeBasisPoints), entries.MaxTransferFeeBasisPoints)
	if err != nil {
		return 0, err
	}
	return min(fee, m.MaximumFee), nil
}

// InverseTransferFee returns the fee to add to net so that the recipient
// receives at least net after TransferFee.
func InverseTransferFee(m *entries.Mint, net uint64) (uint64, error) {
	if !hasTransferFee(m) || net == 0 {
		return 0, nil
	}
	bps := uint64(m.TransferFeeBasisPoints)
	if bps == entries.MaxTransferFeeBasisPoints {
		return m.MaximumFee, nil
	}
	gross, err := checked.MulDivCeil(net, entries.MaxTransferFeeBasisPoints, entries.MaxTransferFeeBasisPoints-bps)
	if err != nil {
		return 0, err
	}
	return min(gross-net, m.MaximumFee), nil
}

// TransferParams describes one transfer.
type TransferParams struct {
	Mint      solana.PublicKey
	From      solana.PublicKey
	To        solana.PublicKey
	Authority solana.PublicKey
	Amount    uint64
}

// TransferResult reports how a transfer settled.
type TransferResult struct {
	Fee      uint64
	Received uint64
}

// Transfer moves p.Amount from p.From to p.To. The transfer fee, if any, is
// withheld on the destination. A zero amount touches nothing.
func Transfer(v tx.LedgerView, p TransferParams) (TransferResult, error) {
	if p.Amount == 0 {
		return TransferResult{}, nil
	}
	if p.From.Equals(p.To) {
		return TransferResult{}, ErrSelfTransfer
	}
	mint, err := tx.ReadMint(v, p.Mint)
	if err != nil {
		return TransferResult{}, err
	}
	from, err := tx.ReadTokenAccount(v, p.From)
	if err != nil {
		return TransferResult{}, err
	}
	to, err := tx.ReadTokenAccount(v, p.To)
	if err != nil {
		return TransferResult{}, err
	}
	if !from.Owner.Equals(p.Authority) {
		return TransferResult{}, fmt.Errorf("%w: %s does not own %s", tx.ErrNotOwner, p.Authority, p.From)
	}
	if !from.Mint.Equals(p.Mint) || !to.Mint.Equals(p.Mint) {
		return TransferResult{}, fmt.Errorf("%w: transfer of %s", tx.ErrMintMismatch, p.Mint)
	}
	if from.Amount < p.Amount {
		return TransferResult{}, fmt.Errorf("%w: %s holds %d, needs %d", tx.ErrInsufficientFunds, p.From, from.Amount, p.Amount)
	}

	fee, err := TransferFee(mint, p.Amount)
	if err != nil {
		return TransferResult{}, err
	}
	received := p.Amount - fee
	if to.Amount, err = checked.Add(to.Amount, received); err != nil {
		return TransferResult{}, err
	}
	if to.Withheld, err = checked.Add(to.Withheld, fee); err != nil {
		return TransferResult{}, err
	}
	from.Amount -= p.Amount

	if err := tx.Put(v, p.From, from); err != nil {
		return TransferResult{}, err
	}
	if err := tx.Put(v, p.To, to); err != nil {
		return TransferResult{}, err
	}
	return TransferResult{Fee: fee, Received: received}, nil
}

// CreateAccount creates an empty token account for mint at addr.
func CreateAccount(v tx.LedgerView, addr, mint, owner solana.PublicKey) error {
	if _, err := tx.ReadMint(v, mint); err != nil {
		return err
	}
	return tx.Create(v, addr, &entries.TokenAccount{Mint: mint, Owner: owner})
}

// AssociatedAddress returns the associated token account of owner for mint.
func AssociatedAddress(owner, mint solana.PublicKey, m *entries.Mint) (solana.PublicKey, error) {
	return keylet.AssociatedTokenAddress(owner, m.TokenProgram, mint)
}

// AssociatedCandidates returns the associated account address of owner for
// mint under every token program. Transactions declare all of them because
// the mint's program is only known once its record is read.
func AssociatedCandidates(owner, mint solana.PublicKey) ([]solana.PublicKey, error) {
	out := make([]solana.PublicKey, 0, len(Programs))
	for _, p := range Programs {
		addr, err := keylet.AssociatedTokenAddress(owner, p, mint)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}

// CreateAssociatedAccount returns the associated account of owner for mint,
// creating it if it does not exist yet.
func CreateAssociatedAccount(v tx.LedgerView, owner, mint solana.PublicKey) (solana.PublicKey, error) {
	m, err := tx.ReadMint(v, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	addr, err := AssociatedAddress(owner, mint, m)
	if err != nil {
		return solana.PublicKey{}, err
	}
	existing, err := tx.ReadTokenAccount(v, addr)
	switch {
	case err == nil:
		if !existing.Mint.Equals(mint) {
			return solana.PublicKey{}, fmt.Errorf("%w: %s", tx.ErrMintMismatch, addr)
		}
		if !existing.Owner.Equals(owner) {
			return solana.PublicKey{}, fmt.Errorf("%w: %s", tx.ErrNotOwner, addr)
		}
		return addr, nil
	case errors.Is(err, tx.ErrRecordNotFound):
		return addr, tx.Create(v, addr, &entries.TokenAccount{Mint: mint, Owner: owner})
	default:
		return solana.PublicKey{}, err
	}
}

// MintTo issues amount new tokens of mint into dest. authority must be the
// mint authority.
func MintTo(v tx.LedgerView, mint, dest, authority solana.PublicKey, amount uint64) error {
	m, err := tx.ReadMint(v, mint)
	if err != nil {
		return err
	}
	if !m.MintAuthority.Equals(authority) {
		return fmt.Errorf("%w: %s is not the authority of %s", tx.ErrNotOwner, authority, mint)
	}
	acct, err := tx.ReadTokenAccount(v, dest)
	if err != nil {
		return err
	}
	if !acct.Mint.Equals(mint) {
		return fmt.Errorf("%w: %s", tx.ErrMintMismatch, dest)
	}
	if m.Supply, err = checked.Add(m.Supply, amount); err != nil {
		return err
	}
	if acct.Amount, err = checked.Add(acct.Amount, amount); err != nil {
		return err
	}
	if err := tx.Put(v, mint, m); err != nil {
		return err
	}
	return tx.Put(v, dest, acct)
}

// Balance returns the spendable amount held at addr.
func Balance(v tx.ReadView, addr solana.PublicKey) (uint64, error) {
	acct, err := tx.ReadTokenAccount(v, addr)
	if err != nil {
		return 0, err
	}
	return acct.Amount, nil
}
