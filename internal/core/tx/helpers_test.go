package tx

import (
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"sync"

	"github.com/LeJamon/goCPSwap/internal/core/events"
	"github.com/LeJamon/goCPSwap/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goCPSwap/internal/core/ledger/keylet"
	"github.com/gagliardetto/solana-go"
)

func testKey(name string) solana.PrivateKey {
	seed := sha256.Sum256([]byte(name))
	return solana.PrivateKey(ed25519.NewKeyFromSeed(seed[:]))
}

func testAddr(name string) solana.PublicKey {
	return testKey(name).PublicKey()
}

// memLedger is a minimal committed ledger.
type memLedger struct {
	mu       sync.Mutex
	data     map[[32]byte][]byte
	commits  int
	failNext bool
}

func newMemLedger() *memLedger {
	return &memLedger{data: make(map[[32]byte][]byte)}
}

func (l *memLedger) Read(k keylet.Keylet) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.data[k.Key], nil
}

func (l *memLedger) Exists(k keylet.Keylet) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.data[k.Key]
	return ok, nil
}

func (l *memLedger) Commit(changes []Change) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failNext {
		l.failNext = false
		return errors.New("disk full")
	}
	for _, c := range changes {
		if c.Action == ActionErase {
			delete(l.data, c.Key)
		} else {
			l.data[c.Key] = c.Data
		}
	}
	l.commits++
	return nil
}

func (l *memLedger) put(addr solana.PublicKey, e interface{ Encode() ([]byte, error) }) {
	data, err := e.Encode()
	if err != nil {
		panic(err)
	}
	l.data[addr] = data
}

func (l *memLedger) balance(addr solana.PublicKey) uint64 {
	a, err := ReadTokenAccount(l, addr)
	if err != nil {
		return 0
	}
	return a.Amount
}

var counterMint = testAddr("counter-mint")

// counterTx adds Amount to the token account at Target, creating it on first use.
type counterTx struct {
	BaseTx
	Target solana.PublicKey `json:"Target"`
	Amount uint64           `json:"Amount"`

	// Expect, when set, fails the transaction unless the balance before equals it.
	Expect *uint64 `json:"Expect,omitempty"`
	// Fail writes and then fails.
	Fail bool `json:"Fail,omitempty"`
	// Peek reads an address that is not declared.
	Peek solana.PublicKey `json:"Peek,omitempty"`
	// Reads is declared read-only and read before the write.
	Reads solana.PublicKey `json:"Reads,omitempty"`
}

func newCounter(signer, target solana.PublicKey, amount uint64) *counterTx {
	return &counterTx{BaseTx: *NewBaseTx(TypeMintTo, signer), Target: target, Amount: amount}
}

func (c *counterTx) Validate() error {
	if err := c.BaseTx.Validate(); err != nil {
		return err
	}
	if c.Amount == 0 {
		return errors.New("temBAD_AMOUNT: Amount must be positive")
	}
	return nil
}

func (c *counterTx) Accounts(Params) ([]solana.PublicKey, error) {
	if c.Reads.IsZero() {
		return []solana.PublicKey{c.Target}, nil
	}
	return []solana.PublicKey{c.Reads, c.Target}, nil
}

func (c *counterTx) ReadOnlyAccounts(Params) ([]solana.PublicKey, error) {
	if c.Reads.IsZero() {
		return nil, nil
	}
	return []solana.PublicKey{c.Reads}, nil
}

func (c *counterTx) Apply(ctx *ApplyContext) Result {
	if !c.Reads.IsZero() {
		if _, err := ReadTokenAccount(ctx.View, c.Reads); err != nil && !errors.Is(err, ErrRecordNotFound) {
			return ctx.FailErr(err)
		}
	}
	acct, err := ReadTokenAccount(ctx.View, c.Target)
	create := errors.Is(err, ErrRecordNotFound)
	if err != nil && !create {
		return ctx.FailErr(err)
	}
	if create {
		acct = &entries.TokenAccount{Mint: counterMint, Owner: ctx.Signer}
	}
	if c.Expect != nil && acct.Amount != *c.Expect {
		return ctx.Fail(TecEXCEEDED_SLIPPAGE, "unexpected balance")
	}
	acct.Amount += c.Amount
	if create {
		err = Create(ctx.View, c.Target, acct)
	} else {
		err = Put(ctx.View, c.Target, acct)
	}
	if err != nil {
		return ctx.FailErr(err)
	}
	if !c.Peek.IsZero() {
		if _, err := ReadTokenAccount(ctx.View, c.Peek); err != nil {
			return ctx.FailErr(err)
		}
	}
	if c.Fail {
		return TecUNFUNDED
	}
	ctx.Emit(events.FeesCollected{Mint: c.Target, CreatorListed: c.Amount})
	return TesSUCCESS
}

func init() {
	Register(TypeMintTo, func() Transaction {
		return &counterTx{BaseTx: *NewBaseTx(TypeMintTo, solana.PublicKey{})}
	})
}
