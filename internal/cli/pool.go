package cli

import (
	"fmt"
	"strconv"

	"github.com/LeJamon/goCPSwap/internal/core/ledger/keylet"
	"github.com/LeJamon/goCPSwap/internal/core/tx"
	"github.com/LeJamon/goCPSwap/internal/core/tx/amm"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Inspect pools",
}

var poolShowCmd = &cobra.Command{
	Use:   "show <mint>",
	Short: "Print a pool with its virtual reserves and price",
	Args:  cobra.ExactArgs(1),
	RunE:  runPoolShow,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect fee tiers",
}

var configShowCmd = &cobra.Command{
	Use:   "show <index>",
	Short: "Print the fee tier stored at index",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigShow,
}

func init() {
	poolCmd.AddCommand(poolShowCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(poolCmd, configCmd)
}

type feesOutput struct {
	ProtocolListed    uint64 `json:"protocol_listed"`
	ProtocolReference uint64 `json:"protocol_reference"`
	CreatorListed     uint64 `json:"creator_listed"`
	CreatorReference  uint64 `json:"creator_reference"`
}

type poolOutput struct {
	Address          string     `json:"address"`
	Mint             string     `json:"mint"`
	ReferenceMint    string     `json:"reference_mint"`
	AmmConfig        string     `json:"amm_config"`
	Creator          string     `json:"creator"`
	Status           string     `json:"status"`
	Offset           uint64     `json:"offset"`
	OpenTime         uint64     `json:"open_time"`
	RecentEpoch      uint64     `json:"recent_epoch"`
	VaultListed      uint64     `json:"vault_listed"`
	VaultReference   uint64     `json:"vault_reference"`
	ReserveListed    uint64     `json:"reserve_listed"`
	ReserveReference uint64     `json:"reserve_reference"`
	PriceX32         string     `json:"price_x32"`
	Price            float64    `json:"price"`
	Fees             feesOutput `json:"fees"`
}

func runPoolShow(cmd *cobra.Command, args []string) error {
	mint, err := solana.PublicKeyFromBase58(args[0])
	if err != nil {
		return fmt.Errorf("invalid mint: %w", err)
	}
	n, err := openNode(cmd)
	if err != nil {
		return err
	}
	defer n.Close()

	s, err := amm.LoadPool(n.ledger, n.params, mint)
	if err != nil {
		return err
	}
	listed, reference, err := s.VaultBalances(n.ledger)
	if err != nil {
		return err
	}
	reserves, err := s.Reserves(n.ledger)
	if err != nil {
		return err
	}
	price, err := s.Price(n.ledger)
	if err != nil {
		return err
	}

	p := s.Pool()
	return printJSON(cmd, poolOutput{
		Address:          s.Address().String(),
		Mint:             p.ListedMint.String(),
		ReferenceMint:    p.ReferenceMint.String(),
		AmmConfig:        p.AmmConfig.String(),
		Creator:          p.Creator.String(),
		Status:           p.Status.String(),
		Offset:           p.Offset,
		OpenTime:         p.OpenTime,
		RecentEpoch:      p.RecentEpoch,
		VaultListed:      listed,
		VaultReference:   reference,
		ReserveListed:    reserves.Listed,
		ReserveReference: reserves.Reference,
		PriceX32:         price.Up.String(),
		Price:            price.Float(),
		Fees: feesOutput{
			ProtocolListed:    p.Fees.ProtocolListed,
			ProtocolReference: p.Fees.ProtocolReference,
			CreatorListed:     p.Fees.CreatorListed,
			CreatorReference:  p.Fees.CreatorReference,
		},
	})
}

type configOutput struct {
	Address              string `json:"address"`
	Index                uint16 `json:"index"`
	TradeFeeRate         uint64 `json:"trade_fee_rate"`
	ProtocolFeeRate      uint64 `json:"protocol_fee_rate"`
	ProtocolFeeCollector string `json:"protocol_fee_collector"`
	DisableCreatePool    bool   `json:"disable_create_pool"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	index, err := strconv.ParseUint(args[0], 10, 16)
	if err != nil {
		return fmt.Errorf("invalid index: %w", err)
	}
	n, err := openNode(cmd)
	if err != nil {
		return err
	}
	defer n.Close()

	addr, err := keylet.AmmConfigAddress(n.params.ProgramID, uint16(index))
	if err != nil {
		return err
	}
	cfg, err := tx.ReadAmmConfig(n.ledger, addr.Address)
	if err != nil {
		return err
	}
	return printJSON(cmd, configOutput{
		Address:              addr.Address.String(),
		Index:                cfg.Index,
		TradeFeeRate:         cfg.TradeFeeRate,
		ProtocolFeeRate:      cfg.ProtocolFeeRate,
		ProtocolFeeCollector: cfg.ProtocolFeeCollector.String(),
		DisableCreatePool:    cfg.DisableCreatePool,
	})
}
