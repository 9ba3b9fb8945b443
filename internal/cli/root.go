package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Register transaction types
	_ "github.com/LeJamon/goCPSwap/internal/core/tx/amm"
	_ "github.com/LeJamon/goCPSwap/internal/core/tx/token"
)

var (
	// Global flags
	configFile string
	logLevel   string
	dataDir    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cpswapd",
	Short: "cpswapd - constant-product pool engine",
	Long: `cpswapd applies pool transactions to a local ledger. Every pool pairs one
listed token with the reference asset and prices along a constant-product
curve whose reference side carries a fixed virtual offset.`,
	Version:       "0.1.0-dev",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path (default ./cpswapd.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "data", "ledger data directory")
}
