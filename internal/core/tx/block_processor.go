package tx

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ProcessorConfig configures a BlockProcessor.
type ProcessorConfig struct {
	// Workers bounds how many transactions apply at once. Zero means GOMAXPROCS.
	Workers int
}

// BlockProcessor handles batch application of transactions to a ledger.
// Transactions that share an account, with at least one writing it, run in
// submission order; the rest run concurrently. The outcome equals applying the batch
// serially in submission order.
type BlockProcessor struct {
	engine  *Engine
	workers int
	logger  *zap.Logger
}

// BlockTxResult contains the result of applying a single transaction in a block
type BlockTxResult struct {
	// Index is the transaction index in the block (0-based)
	Index int

	// ApplyResult contains the engine's result
	ApplyResult ApplyResult
}

// BlockResult contains the results of applying all transactions in a block
type BlockResult struct {
	// Transactions contains results for each transaction, in submission order
	Transactions []BlockTxResult

	// Clock is the ledger time every transaction in the block saw
	Clock ClockSnapshot

	// AppliedCount is the number of successfully applied transactions
	AppliedCount int

	// FailedCount is the number of failed transactions
	FailedCount int
}

// NewBlockProcessor creates a new BlockProcessor with the given engine
func NewBlockProcessor(engine *Engine, cfg ProcessorConfig) *BlockProcessor {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &BlockProcessor{
		engine:  engine,
		workers: workers,
		logger:  engine.logger.Named("processor"),
	}
}

// access tracks, for one address, the last transaction that wrote it and
// the transactions that read it since.
type access struct {
	writer  int
	readers []int
}

// readOnlySet returns the addresses t declares read-only. A transaction that
// cannot derive them is treated as writing everything it declares.
func readOnlySet(t Transaction, p Params) map[[32]byte]struct{} {
	ro, ok := t.(ReadOnlyDeclarer)
	if !ok {
		return nil
	}
	addrs, err := ro.ReadOnlyAccounts(p)
	if err != nil {
		return nil
	}
	set := make(map[[32]byte]struct{}, len(addrs))
	for _, a := range addrs {
		set[a] = struct{}{}
	}
	return set
}

// Dependencies returns, for each transaction, the earlier transactions it
// must wait for. A read waits for the last earlier write of the address; a
// write also waits for every read since. Reads of the same address do not
// order each other.
func (bp *BlockProcessor) Dependencies(txs []Transaction) [][]int {
	params := bp.engine.Params()
	log := make(map[[32]byte]*access)
	deps := make([][]int, len(txs))
	for i, t := range txs {
		accounts, err := t.Accounts(params)
		if err != nil {
			// The engine rejects it without touching state.
			continue
		}
		readOnly := readOnlySet(t, params)
		seen := make(map[int]struct{})
		wait := func(j int) {
			if j < 0 || j == i {
				return
			}
			if _, dup := seen[j]; !dup {
				seen[j] = struct{}{}
				deps[i] = append(deps[i], j)
			}
		}
		for _, a := range accounts {
			l, ok := log[a]
			if !ok {
				l = &access{writer: -1}
				log[a] = l
			}
			wait(l.writer)
			if _, ro := readOnly[a]; ro {
				l.readers = append(l.readers, i)
				continue
			}
			for _, j := range l.readers {
				wait(j)
			}
			l.writer, l.readers = i, nil
		}
	}
	return deps
}

// Process applies txs as one block. Every transaction sees the same clock
// snapshot. An error is returned only if ctx is cancelled; per-transaction
// failures are reported in the result.
func (bp *BlockProcessor) Process(ctx context.Context, txs []Transaction) (*BlockResult, error) {
	now := bp.engine.Clock().Now()
	deps := bp.Dependencies(txs)

	done := make([]chan struct{}, len(txs))
	for i := range done {
		done[i] = make(chan struct{})
	}
	results := make([]BlockTxResult, len(txs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.workers)

	// Goroutines start in index order and only wait on lower indices, so the
	// lowest unfinished transaction can always run.
	for i, t := range txs {
		g.Go(func() error {
			defer close(done[i])
			if err := gctx.Err(); err != nil {
				return err
			}
			for _, j := range deps[i] {
				select {
				case <-done[j]:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			results[i] = BlockTxResult{Index: i, ApplyResult: bp.engine.applyAt(gctx, t, now)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	block := &BlockResult{Transactions: results, Clock: now}
	for _, r := range results {
		if r.ApplyResult.Applied {
			block.AppliedCount++
		} else {
			block.FailedCount++
		}
	}
	bp.logger.Debug("block processed",
		zap.Int("transactions", len(txs)),
		zap.Int("applied", block.AppliedCount),
		zap.Int("failed", block.FailedCount))
	return block, nil
}
