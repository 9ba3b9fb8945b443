package entries

import (
	"errors"
	"fmt"
	"strings"

	"github.com/LeJamon/goCPSwap/internal/core/ledger/entry"
	"github.com/gagliardetto/solana-go"
)

const mintVersion = 1

// MaxTransferFeeBasisPoints is 100%.
const MaxTransferFeeBasisPoints = 10_000

// Extension is a mint extension of the extended token program.
type Extension uint16

const (
	ExtTransferFee Extension = 1 << iota
	ExtMetadataPointer
	ExtTokenMetadata
	ExtInterestBearing
	ExtPermanentDelegate
	ExtNonTransferable
	ExtTransferHook
	ExtConfidentialTransfer
)

var extensionNames = []struct {
	ext  Extension
	name string
}{
	{ExtTransferFee, "TransferFee"},
	{ExtMetadataPointer, "MetadataPointer"},
	{ExtTokenMetadata, "TokenMetadata"},
	{ExtInterestBearing, "InterestBearing"},
	{ExtPermanentDelegate, "PermanentDelegate"},
	{ExtNonTransferable, "NonTransferable"},
	{ExtTransferHook, "TransferHook"},
	{ExtConfidentialTransfer, "ConfidentialTransfer"},
}

func (e Extension) String() string {
	var names []string
	for _, n := range extensionNames {
		if e&n.ext != 0 {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// ParseExtension parses a single extension name.
func ParseExtension(name string) (Extension, error) {
	for _, n := range extensionNames {
		if strings.EqualFold(n.name, name) {
			return n.ext, nil
		}
	}
	return 0, fmt.Errorf("unknown mint extension %q", name)
}

// Has reports whether every extension in other is present.
func (e Extension) Has(other Extension) bool {
	return e&other == other
}

// Mint is a token mint.
type Mint struct {
	TokenProgram  solana.PublicKey
	MintAuthority solana.PublicKey
	Supply        uint64
	Decimals      uint8
	Extensions    Extension

	// Transfer fee, meaningful only with ExtTransferFee.
	TransferFeeBasisPoints uint16
	MaximumFee             uint64
}

type mintLayout struct {
	TokenProgram           [32]byte
	MintAuthority          [32]byte
	Supply                 uint64
	Decimals               uint8
	_                      uint8
	Extensions             uint16
	TransferFeeBasisPoints uint16
	_                      uint16
	MaximumFee             uint64
	Padding                [8]uint64
}

func (m *Mint) Type() entry.Type {
	return entry.TypeMint
}

func (m *Mint) Validate() error {
	if m.TokenProgram.IsZero() {
		return errors.New("token program is required")
	}
	if m.TransferFeeBasisPoints > MaxTransferFeeBasisPoints {
		return fmt.Errorf("transfer fee %d bps exceeds %d", m.TransferFeeBasisPoints, MaxTransferFeeBasisPoints)
	}
	if m.TransferFeeBasisPoints != 0 && !m.Extensions.Has(ExtTransferFee) {
		return errors.New("transfer fee set without the transfer fee extension")
	}
	return nil
}

func (m *Mint) Encode() ([]byte, error) {
	return encodeRecord(entry.TypeMint, mintVersion, mintLayout{
		TokenProgram:           m.TokenProgram,
		MintAuthority:          m.MintAuthority,
		Supply:                 m.Supply,
		Decimals:               m.Decimals,
		Extensions:             uint16(m.Extensions),
		TransferFeeBasisPoints: m.TransferFeeBasisPoints,
		MaximumFee:             m.MaximumFee,
	})
}

// DecodeMint decodes a stored mint record.
func DecodeMint(data []byte) (*Mint, error) {
	var l mintLayout
	if err := decodeRecord(data, entry.TypeMint, mintVersion, &l); err != nil {
		return nil, err
	}
	return &Mint{
		TokenProgram:           l.TokenProgram,
		MintAuthority:          l.MintAuthority,
		Supply:                 l.Supply,
		Decimals:               l.Decimals,
		Extensions:             Extension(l.Extensions),
		TransferFeeBasisPoints: l.TransferFeeBasisPoints,
		MaximumFee:             l.MaximumFee,
	}, nil
}
