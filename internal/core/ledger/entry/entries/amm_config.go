package entries

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goCPSwap/internal/core/amm/fees"
	"github.com/LeJamon/goCPSwap/internal/core/ledger/entry"
	"github.com/gagliardetto/solana-go"
)

const ammConfigVersion = 1

// AmmConfig is a fee tier shared by every pool created against it.
type AmmConfig struct {
	Bump                 uint8
	DisableCreatePool    bool
	Index                uint16
	TradeFeeRate         uint64 // parts per million of the input
	ProtocolFeeRate      uint64 // parts per million of the trade fee
	ProtocolFeeCollector solana.PublicKey
}

type ammConfigLayout struct {
	Bump                 uint8
	DisableCreatePool    uint8
	Index                uint16
	_                    [4]byte
	TradeFeeRate         uint64
	ProtocolFeeRate      uint64
	ProtocolFeeCollector [32]byte
	Padding              [16]uint64
}

func (c *AmmConfig) Type() entry.Type {
	return entry.TypeAmmConfig
}

func (c *AmmConfig) Validate() error {
	if err := ValidateTradeFeeRate(c.TradeFeeRate); err != nil {
		return err
	}
	if err := ValidateProtocolFeeRate(c.ProtocolFeeRate); err != nil {
		return err
	}
	if c.ProtocolFeeCollector.IsZero() {
		return errors.New("protocol fee collector is required")
	}
	return nil
}

// ValidateTradeFeeRate requires rate < fees.RateDenominator.
func ValidateTradeFeeRate(rate uint64) error {
	if rate >= fees.RateDenominator {
		return fmt.Errorf("trade fee rate %d must be below %d", rate, fees.RateDenominator)
	}
	return nil
}

// ValidateProtocolFeeRate requires rate <= fees.RateDenominator.
func ValidateProtocolFeeRate(rate uint64) error {
	if rate > fees.RateDenominator {
		return fmt.Errorf("protocol fee rate %d exceeds %d", rate, fees.RateDenominator)
	}
	return nil
}

func (c *AmmConfig) Encode() ([]byte, error) {
	return encodeRecord(entry.TypeAmmConfig, ammConfigVersion, ammConfigLayout{
		Bump:                 c.Bump,
		DisableCreatePool:    boolByte(c.DisableCreatePool),
		Index:                c.Index,
		TradeFeeRate:         c.TradeFeeRate,
		ProtocolFeeRate:      c.ProtocolFeeRate,
		ProtocolFeeCollector: c.ProtocolFeeCollector,
	})
}

// DecodeAmmConfig decodes a stored config record.
func DecodeAmmConfig(data []byte) (*AmmConfig, error) {
	var l ammConfigLayout
	if err := decodeRecord(data, entry.TypeAmmConfig, ammConfigVersion, &l); err != nil {
		return nil, err
	}
	return &AmmConfig{
		Bump:                 l.Bump,
		DisableCreatePool:    l.DisableCreatePool != 0,
		Index:                l.Index,
		TradeFeeRate:         l.TradeFeeRate,
		ProtocolFeeRate:      l.ProtocolFeeRate,
		ProtocolFeeCollector: l.ProtocolFeeCollector,
	}, nil
}
