package cli

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/LeJamon/goCPSwap/internal/core/tx"
	"github.com/LeJamon/goCPSwap/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveMetrics bool

var applyCmd = &cobra.Command{
	Use:   "apply <file>...",
	Short: "Apply transaction files to the ledger",
	Long: `Apply reads each file as a JSON array of transactions (or a single
transaction object) and applies it as one block. Transactions that touch
disjoint records run concurrently; the outcome is the same as applying them
one by one in file order.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().BoolVar(&serveMetrics, "metrics", false, "serve Prometheus metrics while applying")
}

type txOutput struct {
	Index   int    `json:"index"`
	Type    string `json:"type"`
	Hash    string `json:"hash"`
	Result  string `json:"result"`
	Message string `json:"message"`
	Events  int    `json:"events,omitempty"`
}

type blockOutput struct {
	File         string     `json:"file"`
	Applied      int        `json:"applied"`
	Failed       int        `json:"failed"`
	Transactions []txOutput `json:"transactions"`
}

func readBlock(path string) ([]tx.Transaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		t, err := tx.FromJSON(data)
		if err != nil {
			return nil, err
		}
		return []tx.Transaction{t}, nil
	}
	return tx.FromJSONList(data)
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	n, err := openNode(cmd)
	if err != nil {
		return err
	}
	defer n.Close()

	sink, seq, err := n.openSink(ctx)
	if err != nil {
		return err
	}
	defer sink.Close()

	opts := []tx.Option{
		tx.WithLogger(n.logger),
		tx.WithClock(n.cfg.Clock()),
		tx.WithEventSink(sink),
		tx.WithEventSequence(seq),
	}

	if serveMetrics || n.cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		recorder, err := metrics.NewRecorder(reg)
		if err != nil {
			return err
		}
		srv, err := metrics.Listen(n.cfg.Metrics.Listen, reg, n.logger)
		if err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		go func() {
			if err := srv.Serve(); err != nil {
				n.logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
		defer srv.Shutdown(ctx)
		opts = append(opts, tx.WithObserver(recorder))
	}

	engine := tx.NewEngine(n.ledger, tx.EngineConfig{
		Params:                    n.params,
		SkipSignatureVerification: n.cfg.Engine.SkipSignatureVerification,
	}, opts...)
	processor := tx.NewBlockProcessor(engine, tx.ProcessorConfig{Workers: n.cfg.Engine.Workers})

	for _, path := range args {
		txs, err := readBlock(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		block, err := processor.Process(ctx, txs)
		if err != nil {
			return err
		}
		out := blockOutput{File: path, Applied: block.AppliedCount, Failed: block.FailedCount}
		for _, r := range block.Transactions {
			res := r.ApplyResult
			out.Transactions = append(out.Transactions, txOutput{
				Index:   r.Index,
				Type:    txs[r.Index].TxType().String(),
				Hash:    hex.EncodeToString(res.Hash[:]),
				Result:  res.Result.String(),
				Message: res.Message,
				Events:  len(res.Events),
			})
		}
		if err := printJSON(cmd, out); err != nil {
			return err
		}
		n.logger.Info("block applied",
			zap.String("file", path),
			zap.Int("applied", block.AppliedCount),
			zap.Int("failed", block.FailedCount),
			zap.Uint64("commit_seq", n.ledger.Seq()))
	}
	return nil
}
