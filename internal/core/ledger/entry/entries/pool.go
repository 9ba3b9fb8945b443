package entries

import (
	"errors"

	"github.com/LeJamon/goCPSwap/internal/core/amm/curve"
	"github.com/LeJamon/goCPSwap/internal/core/amm/fees"
	"github.com/LeJamon/goCPSwap/internal/core/amm/status"
	"github.com/LeJamon/goCPSwap/internal/core/ledger/entry"
	"github.com/gagliardetto/solana-go"
)

const poolVersion = 1

// Pool is the state of one listed/reference pool.
type Pool struct {
	AmmConfig solana.PublicKey
	Creator   solana.PublicKey

	ListedVault    solana.PublicKey
	ReferenceVault solana.PublicKey

	ListedMint            solana.PublicKey
	ReferenceMint         solana.PublicKey
	ListedTokenProgram    solana.PublicKey
	ReferenceTokenProgram solana.PublicKey
	ListedDecimals        uint8
	ReferenceDecimals     uint8

	AuthBump uint8
	Status   status.Status

	// Fees are owed to the protocol and the creator and still sit in the vaults.
	Fees fees.Accumulators

	// Offset is the virtual reference reserve, fixed at creation.
	Offset      uint64
	OpenTime    uint64
	RecentEpoch uint64
}

type poolLayout struct {
	AmmConfig             [32]byte
	Creator               [32]byte
	ListedVault           [32]byte
	ReferenceVault        [32]byte
	ListedMint            [32]byte
	ReferenceMint         [32]byte
	ListedTokenProgram    [32]byte
	ReferenceTokenProgram [32]byte
	AuthBump              uint8
	Status                uint8
	ListedDecimals        uint8
	ReferenceDecimals     uint8
	_                     [4]byte
	ProtocolFeesListed    uint64
	ProtocolFeesReference uint64
	CreatorFeesListed     uint64
	CreatorFeesReference  uint64
	OpenTime              uint64
	RecentEpoch           uint64
	Offset                uint64
	Padding               [31]uint64
}

func (p *Pool) Type() entry.Type {
	return entry.TypePool
}

func (p *Pool) Validate() error {
	if p.ListedMint.IsZero() || p.ReferenceMint.IsZero() {
		return errors.New("both mints are required")
	}
	if p.ListedMint.Equals(p.ReferenceMint) {
		return errors.New("listed and reference mints must differ")
	}
	if p.ListedVault.IsZero() || p.ReferenceVault.IsZero() {
		return errors.New("both vaults are required")
	}
	if p.Offset == 0 {
		return errors.New("offset must be positive")
	}
	return nil
}

func (p *Pool) Encode() ([]byte, error) {
	return encodeRecord(entry.TypePool, poolVersion, poolLayout{
		AmmConfig:             p.AmmConfig,
		Creator:               p.Creator,
		ListedVault:           p.ListedVault,
		ReferenceVault:        p.ReferenceVault,
		ListedMint:            p.ListedMint,
		ReferenceMint:         p.ReferenceMint,
		ListedTokenProgram:    p.ListedTokenProgram,
		ReferenceTokenProgram: p.ReferenceTokenProgram,
		AuthBump:              p.AuthBump,
		Status:                uint8(p.Status),
		ListedDecimals:        p.ListedDecimals,
		ReferenceDecimals:     p.ReferenceDecimals,
		ProtocolFeesListed:    p.Fees.ProtocolListed,
		ProtocolFeesReference: p.Fees.ProtocolReference,
		CreatorFeesListed:     p.Fees.CreatorListed,
		CreatorFeesReference:  p.Fees.CreatorReference,
		OpenTime:              p.OpenTime,
		RecentEpoch:           p.RecentEpoch,
		Offset:                p.Offset,
	})
}

// DecodePool decodes a stored pool record.
func DecodePool(data []byte) (*Pool, error) {
	var l poolLayout
	if err := decodeRecord(data, entry.TypePool, poolVersion, &l); err != nil {
		return nil, err
	}
	return &Pool{
		AmmConfig:             l.AmmConfig,
		Creator:               l.Creator,
		ListedVault:           l.ListedVault,
		ReferenceVault:        l.ReferenceVault,
		ListedMint:            l.ListedMint,
		ReferenceMint:         l.ReferenceMint,
		ListedTokenProgram:    l.ListedTokenProgram,
		ReferenceTokenProgram: l.ReferenceTokenProgram,
		ListedDecimals:        l.ListedDecimals,
		ReferenceDecimals:     l.ReferenceDecimals,
		AuthBump:              l.AuthBump,
		Status:                status.Status(l.Status),
		Fees: fees.Accumulators{
			ProtocolListed:    l.ProtocolFeesListed,
			ProtocolReference: l.ProtocolFeesReference,
			CreatorListed:     l.CreatorFeesListed,
			CreatorReference:  l.CreatorFeesReference,
		},
		Offset:      l.Offset,
		OpenTime:    l.OpenTime,
		RecentEpoch: l.RecentEpoch,
	}, nil
}

// SetStatusByBit disables or enables the operation at bit, leaving the others unchanged.
func (p *Pool) SetStatusByBit(bit status.Bit, disable bool) {
	p.Status = status.SetBit(p.Status, bit, disable)
}

// SetStatus replaces the whole status byte.
func (p *Pool) SetStatus(v uint8) {
	p.Status.Set(v)
}

// IsEnabled reports whether the operation at bit is permitted.
func (p *Pool) IsEnabled(bit status.Bit) bool {
	return status.IsEnabled(p.Status, bit)
}

// VaultAmountsWithoutFee returns the virtual reserves for the given raw vault balances.
func (p *Pool) VaultAmountsWithoutFee(listedVault, referenceVault uint64) (curve.Reserves, error) {
	return curve.VaultAmountsWithoutFee(listedVault, referenceVault, p.Offset, p.Fees)
}

// TokenPriceX32 prices the pool for the given raw vault balances.
func (p *Pool) TokenPriceX32(listedVault, referenceVault uint64) (curve.Price, error) {
	r, err := p.VaultAmountsWithoutFee(listedVault, referenceVault)
	if err != nil {
		return curve.Price{}, err
	}
	return curve.PriceX32(r, p.Offset)
}

// Vault returns the vault holding side.
func (p *Pool) Vault(side fees.Side) solana.PublicKey {
	if side == fees.Listed {
		return p.ListedVault
	}
	return p.ReferenceVault
}

// Mint returns the mint of side.
func (p *Pool) Mint(side fees.Side) solana.PublicKey {
	if side == fees.Listed {
		return p.ListedMint
	}
	return p.ReferenceMint
}

// TokenProgram returns the token program owning the mint of side.
func (p *Pool) TokenProgram(side fees.Side) solana.PublicKey {
	if side == fees.Listed {
		return p.ListedTokenProgram
	}
	return p.ReferenceTokenProgram
}

// Decimals returns the decimals of the mint of side.
func (p *Pool) Decimals(side fees.Side) uint8 {
	if side == fees.Listed {
		return p.ListedDecimals
	}
	return p.ReferenceDecimals
}
