package tx

import (
	"context"
	"encoding/hex"
	"strings"
	"sync/atomic"
	"time"

	"github.com/LeJamon/goCPSwap/internal/core/events"
	"go.uber.org/zap"
)

// EngineConfig holds configuration for the transaction engine
type EngineConfig struct {
	Params Params

	// SkipSignatureVerification skips signature checks (for testing/standalone)
	SkipSignatureVerification bool
}

// Ledger is the committed state the engine applies transactions to.
type Ledger interface {
	ReadView
	Committer
}

// Observer is told about every applied or rejected transaction.
type Observer interface {
	ObserveTransaction(t Transaction, res ApplyResult, elapsed time.Duration)
}

// ApplyResult contains the result of applying a transaction
type ApplyResult struct {
	// Result is the transaction result code
	Result Result

	// Applied indicates if the transaction was applied to the ledger
	Applied bool

	// Hash identifies the transaction
	Hash [32]byte

	// Changes lists the committed record changes
	Changes []Change

	// Events are the published events
	Events []events.Record

	// Message is a human-readable result message
	Message string
}

// Engine processes transactions against a ledger
type Engine struct {
	ledger   Ledger
	config   EngineConfig
	clock    Clock
	logger   *zap.Logger
	sink     events.Sink
	observer Observer
	eventSeq atomic.Uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock. The default is a SystemClock.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithEventSink sets where committed events are published.
func WithEventSink(s events.Sink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithObserver sets the transaction observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithEventSequence continues event numbering after seq.
func WithEventSequence(seq uint64) Option {
	return func(e *Engine) { e.eventSeq.Store(seq) }
}

// NewEngine creates a new transaction engine
func NewEngine(ledger Ledger, config EngineConfig, opts ...Option) *Engine {
	e := &Engine{
		ledger: ledger,
		config: config,
		clock:  SystemClock{},
		logger: zap.NewNop(),
		sink:   events.Nop{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.Named("engine")
	return e
}

// Params returns the ledger-wide parameters.
func (e *Engine) Params() Params {
	return e.config.Params
}

// Clock returns the engine clock.
func (e *Engine) Clock() Clock {
	return e.clock
}

// Apply processes a transaction and applies it to the ledger
func (e *Engine) Apply(ctx context.Context, t Transaction) ApplyResult {
	return e.applyAt(ctx, t, e.clock.Now())
}

func (e *Engine) applyAt(ctx context.Context, t Transaction, now ClockSnapshot) ApplyResult {
	start := time.Now()
	res := e.apply(ctx, t, now)
	res.Message = res.Result.Message()

	fields := []zap.Field{
		zap.Stringer("type", t.TxType()),
		zap.String("hash", hex.EncodeToString(res.Hash[:])),
		zap.Stringer("result", res.Result),
	}
	if res.Applied {
		e.logger.Debug("transaction applied", append(fields, zap.Int("changes", len(res.Changes)))...)
	} else {
		e.logger.Info("transaction rejected", fields...)
	}
	if e.observer != nil {
		e.observer.ObserveTransaction(t, res, time.Since(start))
	}
	return res
}

func (e *Engine) apply(ctx context.Context, t Transaction, now ClockSnapshot) ApplyResult {
	// Step 1: Preflight checks (syntax validation)
	if r := e.preflight(t); !r.IsSuccess() {
		return ApplyResult{Result: r}
	}

	hash, err := Hash(t)
	if err != nil {
		return ApplyResult{Result: TefINTERNAL}
	}

	// Step 2: Preclaim checks (authorization and declared accounts)
	if r := e.preclaim(t); !r.IsSuccess() {
		return ApplyResult{Result: r, Hash: hash}
	}

	// Step 3: Apply against a staged table
	r, changes, evts := e.doApply(t, hash, now)
	if !r.IsSuccess() {
		return ApplyResult{Result: r, Hash: hash}
	}

	return ApplyResult{
		Result:  TesSUCCESS,
		Applied: true,
		Hash:    hash,
		Changes: changes,
		Events:  e.publish(ctx, hash, evts),
	}
}

func (e *Engine) preflight(t Transaction) Result {
	if _, ok := TypeFromName(t.GetCommon().TransactionType); !ok {
		return TemUNKNOWN_TX_TYPE
	}
	if t.GetCommon().TransactionType != t.TxType().String() {
		return TemMALFORMED
	}
	if err := t.Validate(); err != nil {
		return parseValidationError(err)
	}
	return TesSUCCESS
}

// parseValidationError extracts a result code from a validation error message.
// If the error message starts with a known code prefix (e.g., "temBAD_AMOUNT:"),
// it returns the corresponding Result. Otherwise, it returns TemMALFORMED.
func parseValidationError(err error) Result {
	msg := err.Error()
	if i := strings.IndexByte(msg, ':'); i > 0 {
		if r, ok := ResultFromName(msg[:i]); ok && r.IsTem() {
			return r
		}
	}
	return TemMALFORMED
}

func (e *Engine) preclaim(t Transaction) Result {
	if e.config.SkipSignatureVerification {
		return TesSUCCESS
	}
	if err := VerifySignature(t); err != nil {
		e.logger.Debug("signature rejected", zap.Error(err))
		return TefBAD_SIGNATURE
	}
	return TesSUCCESS
}

func (e *Engine) doApply(t Transaction, hash [32]byte, now ClockSnapshot) (Result, []Change, []events.Event) {
	a, ok := t.(Appliable)
	if !ok {
		return TemUNKNOWN_TX_TYPE, nil, nil
	}

	declared, err := t.Accounts(e.config.Params)
	if err != nil {
		e.logger.Debug("account derivation failed", zap.Error(err))
		return TemINVALID_ACCOUNT, nil, nil
	}

	table := NewApplyStateTable(e.ledger)
	table.Restrict(declared)
	if ro, ok := t.(ReadOnlyDeclarer); ok {
		readOnly, err := ro.ReadOnlyAccounts(e.config.Params)
		if err != nil {
			e.logger.Debug("account derivation failed", zap.Error(err))
			return TemINVALID_ACCOUNT, nil, nil
		}
		table.RestrictWrites(readOnly)
	}

	actx := &ApplyContext{
		View:   table,
		Signer: t.GetCommon().Account,
		Params: e.config.Params,
		Clock:  now,
		TxHash: hash,
		Logger: e.logger.With(zap.Stringer("type", t.TxType())),
	}

	r := a.Apply(actx)
	if !r.IsSuccess() {
		return r, nil, nil
	}

	changes, err := table.Apply(e.ledger)
	if err != nil {
		e.logger.Error("commit failed", zap.Error(err))
		return TefINTERNAL, nil, nil
	}
	return TesSUCCESS, changes, actx.Events()
}

// publish numbers evts and hands them to the sink. State is already
// committed, so a sink failure is logged and does not change the result.
func (e *Engine) publish(ctx context.Context, hash [32]byte, evts []events.Event) []events.Record {
	if len(evts) == 0 {
		return nil
	}
	last := e.eventSeq.Add(uint64(len(evts)))
	first := last - uint64(len(evts)) + 1
	records := make([]events.Record, len(evts))
	for i, ev := range evts {
		records[i] = events.Record{Seq: first + uint64(i), TxHash: hash, Event: ev}
	}
	if err := e.sink.Publish(ctx, records); err != nil {
		e.logger.Warn("failed to publish events", zap.Error(err), zap.Int("count", len(records)))
	}
	return records
}
