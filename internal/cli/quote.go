package cli

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goCPSwap/internal/core/tx/amm"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

var (
	quoteIn  uint64
	quoteOut uint64
	quoteBuy bool
)

var quoteCmd = &cobra.Command{
	Use:   "quote <mint>",
	Short: "Quote a swap against the current ledger",
	Long: `Quote prices a swap without applying it. --in quotes an exact-in trade of
that many base units; --out quotes the input needed to receive that many.
--buy trades reference for listed; without it the listed token is sold.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)
	quoteCmd.Flags().Uint64Var(&quoteIn, "in", 0, "exact input amount")
	quoteCmd.Flags().Uint64Var(&quoteOut, "out", 0, "exact output amount")
	quoteCmd.Flags().BoolVar(&quoteBuy, "buy", false, "buy the listed token with the reference asset")
	quoteCmd.MarkFlagsMutuallyExclusive("in", "out")
	quoteCmd.MarkFlagsOneRequired("in", "out")
}

type quoteOutput struct {
	Mint         string `json:"mint"`
	Buy          bool   `json:"buy"`
	ExactIn      bool   `json:"exact_in"`
	UserPays     uint64 `json:"user_pays"`
	VaultGets    uint64 `json:"vault_receives"`
	VaultPays    uint64 `json:"vault_pays"`
	UserReceives uint64 `json:"user_receives"`
	TradeFee     uint64 `json:"trade_fee"`
	ProtocolFee  uint64 `json:"protocol_fee"`
	CreatorFee   uint64 `json:"creator_fee"`
}

func runQuote(cmd *cobra.Command, args []string) error {
	mint, err := solana.PublicKeyFromBase58(args[0])
	if err != nil {
		return fmt.Errorf("invalid mint: %w", err)
	}
	exactIn := cmd.Flags().Changed("in")
	amount := quoteOut
	if exactIn {
		amount = quoteIn
	}
	if amount == 0 {
		return errors.New("amount must be positive")
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
	q, err := amm.QuoteSwap(n.ledger, s, quoteBuy, exactIn, amount)
	if err != nil {
		return err
	}
	return printJSON(cmd, quoteOutput{
		Mint:         mint.String(),
		Buy:          quoteBuy,
		ExactIn:      exactIn,
		UserPays:     q.UserPays,
		VaultGets:    q.Result.SourceAmount,
		VaultPays:    q.VaultPays,
		UserReceives: q.UserReceives,
		TradeFee:     q.Result.TradeFee,
		ProtocolFee:  q.Split.Protocol,
		CreatorFee:   q.Split.Creator,
	})
}
