package testing

import (
	"context"
	"testing"
	"time"

	"github.com/LeJamon/goCPSwap/internal/core/amm/curve"
	"github.com/LeJamon/goCPSwap/internal/core/events"
	"github.com/LeJamon/goCPSwap/internal/core/ledger/entry"
	"github.com/LeJamon/goCPSwap/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goCPSwap/internal/core/ledger/keylet"
	"github.com/LeJamon/goCPSwap/internal/core/ledger/store"
	"github.com/LeJamon/goCPSwap/internal/core/tx"
	"github.com/LeJamon/goCPSwap/internal/core/tx/amm"
	"github.com/LeJamon/goCPSwap/internal/core/tx/token"
	"github.com/LeJamon/goCPSwap/internal/storage"
	"github.com/LeJamon/goCPSwap/internal/storage/database"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// TestEnv manages a test ledger environment for transaction testing.
// It provides a simplified interface for creating accounts, mints and
// balances, submitting signed transactions, and verifying results.
type TestEnv struct {
	t      *testing.T
	ledger *store.Ledger
	clock  *ManualClock
	sink   *events.MemorySink
	engine *tx.Engine
	params tx.Params

	admin    *Account
	accounts map[solana.PublicKey]*Account
}

type envOptions struct {
	policy  curve.SupplyPolicy
	backend string
	store   store.Config
	logger  *zap.Logger
	wrap    func(database.DB) database.DB
}

// Option customizes NewTestEnv.
type Option func(*envOptions)

// WithSupplyPolicy sets the offset bounds for new pools.
func WithSupplyPolicy(p curve.SupplyPolicy) Option {
	return func(o *envOptions) { o.policy = p }
}

// WithBackend stores the ledger in the named storage backend under a
// temporary directory instead of memory.
func WithBackend(backend string) Option {
	return func(o *envOptions) { o.backend = backend }
}

// WithDatabase wraps the storage backend before the ledger opens it, so
// tests can inject storage faults.
func WithDatabase(wrap func(database.DB) database.DB) Option {
	return func(o *envOptions) { o.wrap = wrap }
}

// WithStoreConfig sets the ledger store cache and compression.
func WithStoreConfig(cfg store.Config) Option {
	return func(o *envOptions) { o.store = cfg }
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *envOptions) { o.logger = l }
}

// NewTestEnv creates a new test environment with an empty ledger. The admin
// account is registered and named "admin"; the reference asset is the mint
// address of account "reference".
func NewTestEnv(t *testing.T, opts ...Option) *TestEnv {
	t.Helper()

	o := envOptions{
		policy:  curve.DefaultSupplyPolicy,
		backend: storage.BackendMemory,
		store:   store.DefaultConfig(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		db  database.DB
		err error
	)
	if o.backend == storage.BackendMemory {
		db, err = storage.Open(o.backend, "")
	} else {
		db, err = storage.Open(o.backend, t.TempDir())
	}
	if err != nil {
		t.Fatalf("Failed to open %s storage: %v", o.backend, err)
	}
	if o.wrap != nil {
		db = o.wrap(db)
	}
	ledger, err := store.Open(db, o.store, o.logger)
	if err != nil {
		t.Fatalf("Failed to open ledger: %v", err)
	}
	t.Cleanup(func() { ledger.Close() })

	admin := NewAccount("admin")
	env := &TestEnv{
		t:      t,
		ledger: ledger,
		clock:  NewManualClock(),
		sink:   events.NewMemorySink(),
		params: tx.Params{
			ProgramID:     keylet.DefaultProgramID,
			ReferenceMint: NewAccount("reference").Address,
			Admin:         admin.Address,
			SupplyPolicy:  o.policy,
		},
		admin:    admin,
		accounts: make(map[solana.PublicKey]*Account),
	}
	env.register(admin)
	env.engine = tx.NewEngine(ledger, tx.EngineConfig{Params: env.params},
		tx.WithClock(env.clock),
		tx.WithEventSink(env.sink),
		tx.WithLogger(o.logger))
	return env
}

func (e *TestEnv) register(a *Account) *Account {
	e.accounts[a.Address] = a
	return a
}

// Account returns the deterministic account called name and registers its
// key so Submit can sign for it.
func (e *TestEnv) Account(name string) *Account {
	return e.register(NewAccount(name))
}

// Admin returns the ledger admin.
func (e *TestEnv) Admin() *Account { return e.admin }

// Params returns the ledger parameters.
func (e *TestEnv) Params() tx.Params { return e.params }

// ReferenceMint returns the reference asset mint address.
func (e *TestEnv) ReferenceMint() solana.PublicKey { return e.params.ReferenceMint }

// Ledger returns the committed ledger.
func (e *TestEnv) Ledger() *store.Ledger { return e.ledger }

// Engine returns the transaction engine.
func (e *TestEnv) Engine() *tx.Engine { return e.engine }

// Clock returns the manual clock the engine reads.
func (e *TestEnv) Clock() *ManualClock { return e.clock }

// Now returns the current ledger time.
func (e *TestEnv) Now() tx.ClockSnapshot { return e.clock.Now() }

// AdvanceTime moves the ledger clock forward.
func (e *TestEnv) AdvanceTime(d time.Duration) { e.clock.Advance(d) }

// Sink returns the sink every committed event is published to.
func (e *TestEnv) Sink() *events.MemorySink { return e.sink }

func (e *TestEnv) sign(t tx.Transaction) {
	e.t.Helper()
	signer, ok := e.accounts[t.GetCommon().Account]
	if !ok {
		e.t.Fatalf("No key registered for %s", t.GetCommon().Account)
	}
	if err := signer.Sign(t); err != nil {
		e.t.Fatalf("Failed to sign %s: %v", t.TxType(), err)
	}
}

// Submit signs t with its account's key and applies it.
func (e *TestEnv) Submit(t tx.Transaction) TxResult {
	e.t.Helper()
	e.sign(t)
	return e.SubmitSigned(t)
}

// SubmitSigned applies t as is, leaving any signature untouched.
func (e *TestEnv) SubmitSigned(t tx.Transaction) TxResult {
	return newTxResult(e.engine.Apply(context.Background(), t))
}

// SubmitBlock signs txs and applies them as one block.
func (e *TestEnv) SubmitBlock(txs ...tx.Transaction) []TxResult {
	e.t.Helper()
	for _, t := range txs {
		e.sign(t)
	}
	block, err := tx.NewBlockProcessor(e.engine, tx.ProcessorConfig{}).Process(context.Background(), txs)
	if err != nil {
		e.t.Fatalf("Block failed: %v", err)
	}
	results := make([]TxResult, len(block.Transactions))
	for i, r := range block.Transactions {
		results[i] = newTxResult(r.ApplyResult)
	}
	return results
}

// require submits t and fails the test unless it succeeds.
func (e *TestEnv) require(t tx.Transaction) TxResult {
	e.t.Helper()
	r := e.Submit(t)
	if !r.Success {
		e.t.Fatalf("%s failed: %s", t.TxType(), r.Code)
	}
	return r
}

// CreateMint submits the mint described by b.
func (e *TestEnv) CreateMint(b *MintBuilder) solana.PublicKey {
	e.t.Helper()
	e.register(b.authority)
	e.require(b.Build())
	return b.address
}

// MintTo issues amount of mint to owner's associated account.
func (e *TestEnv) MintTo(authority *Account, mint solana.PublicKey, owner *Account, amount uint64) {
	e.t.Helper()
	e.register(authority)
	e.require(token.NewMintTo(authority.Address, mint, owner.Address, amount))
}

// Mint reads a mint record.
func (e *TestEnv) Mint(addr solana.PublicKey) *entries.Mint {
	e.t.Helper()
	m, err := tx.ReadMint(e.ledger, addr)
	if err != nil {
		e.t.Fatalf("Failed to read mint %s: %v", addr, err)
	}
	return m
}

// TokenBalance returns the balance of the token account at addr, or zero if
// it does not exist.
func (e *TestEnv) TokenBalance(addr solana.PublicKey) uint64 {
	e.t.Helper()
	a, err := tx.ReadTokenAccount(e.ledger, addr)
	if err != nil {
		return 0
	}
	return a.Amount
}

// Balance returns what owner holds of mint in its associated account.
func (e *TestEnv) Balance(owner *Account, mint solana.PublicKey) uint64 {
	e.t.Helper()
	ata, err := token.AssociatedAddress(owner.Address, mint, e.Mint(mint))
	if err != nil {
		e.t.Fatalf("Failed to derive associated account: %v", err)
	}
	return e.TokenBalance(ata)
}

// Pool loads the pool listing mint.
func (e *TestEnv) Pool(mint solana.PublicKey) *amm.PoolState {
	e.t.Helper()
	s, err := amm.LoadPool(e.ledger, e.params, mint)
	if err != nil {
		e.t.Fatalf("Failed to load pool %s: %v", mint, err)
	}
	return s
}

// PoolExists reports whether a pool lists mint.
func (e *TestEnv) PoolExists(mint solana.PublicKey) bool {
	e.t.Helper()
	addr, err := keylet.PoolAddress(e.params.ProgramID, mint)
	if err != nil {
		e.t.Fatalf("Failed to derive pool address: %v", err)
	}
	ok, err := e.ledger.Exists(keylet.Pool(addr.Address))
	if err != nil {
		e.t.Fatalf("Failed to read pool: %v", err)
	}
	return ok
}

// AmmConfig reads the fee tier at index.
func (e *TestEnv) AmmConfig(index uint16) *entries.AmmConfig {
	e.t.Helper()
	addr, err := keylet.AmmConfigAddress(e.params.ProgramID, index)
	if err != nil {
		e.t.Fatalf("Failed to derive config address: %v", err)
	}
	cfg, err := tx.ReadAmmConfig(e.ledger, addr.Address)
	if err != nil {
		e.t.Fatalf("Failed to read config %d: %v", index, err)
	}
	return cfg
}

// Snapshot copies every committed record, keyed by address.
func (e *TestEnv) Snapshot() map[solana.PublicKey][]byte {
	e.t.Helper()
	snap := make(map[solana.PublicKey][]byte)
	for _, typ := range []entry.Type{entry.TypeAmmConfig, entry.TypePool, entry.TypeMint, entry.TypeTokenAccount} {
		err := e.ledger.ForEach(context.Background(), typ, func(addr solana.PublicKey, data []byte) error {
			snap[addr] = append([]byte(nil), data...)
			return nil
		})
		if err != nil {
			e.t.Fatalf("Failed to snapshot ledger: %v", err)
		}
	}
	return snap
}
