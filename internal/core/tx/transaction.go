package tx

import (
	"errors"

	"github.com/gagliardetto/solana-go"
)

// Common errors
var (
	ErrMissingRequiredField   = errors.New("missing required field")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidAccount         = errors.New("temINVALID_ACCOUNT: invalid account")
)

// Validation limits
const (
	// MaxMemos is the maximum number of memos on one transaction
	MaxMemos = 8

	// MaxMemoSize is the maximum total size of memo payloads (in bytes)
	MaxMemoSize = 1024
)

// Transaction is the interface that all transaction types must implement
type Transaction interface {
	// TxType returns the transaction type
	TxType() Type

	// GetCommon returns the common transaction fields
	GetCommon() *Common

	// Validate checks if the transaction is valid
	Validate() error

	// Accounts returns every record address the transaction may read or
	// write. Addresses are derived from the transaction fields and params.
	Accounts(p Params) ([]solana.PublicKey, error)
}

// ReadOnlyDeclarer is implemented by transactions that only read some of
// their declared accounts. Each returned address must also be in Accounts.
// Transactions that read a shared account run concurrently; the engine
// rejects a write to it.
type ReadOnlyDeclarer interface {
	ReadOnlyAccounts(p Params) ([]solana.PublicKey, error)
}

// Appliable is implemented by transaction types that can apply themselves to ledger state.
type Appliable interface {
	Apply(ctx *ApplyContext) Result
}

// Memo represents a memo attached to a transaction
type Memo struct {
	MemoType string `json:"MemoType,omitempty"`
	MemoData string `json:"MemoData,omitempty"`
}

// Common contains fields common to all transaction types
type Common struct {
	// Account signs the transaction
	Account         solana.PublicKey `json:"Account"`
	TransactionType string           `json:"TransactionType"`

	Memos []Memo `json:"Memos,omitempty"`

	// Signature is the base58 ed25519 signature over the signing payload
	Signature string `json:"Signature,omitempty"`
}

// Validate validates the common fields
func (c *Common) Validate() error {
	if c.Account.IsZero() {
		return errors.New("temINVALID_ACCOUNT: Account is required")
	}
	if c.TransactionType == "" {
		return errors.New("temMALFORMED: TransactionType is required")
	}
	if len(c.Memos) > MaxMemos {
		return errors.New("temMALFORMED: too many memos")
	}
	size := 0
	for _, m := range c.Memos {
		size += len(m.MemoType) + len(m.MemoData)
	}
	if size > MaxMemoSize {
		return errors.New("temMALFORMED: memos too large")
	}
	return nil
}

// AddMemo adds a memo to the transaction
func (c *Common) AddMemo(memoType, memoData string) {
	c.Memos = append(c.Memos, Memo{MemoType: memoType, MemoData: memoData})
}

// BaseTx provides a base implementation for transactions
type BaseTx struct {
	Common
	txType Type
}

// TxType returns the transaction type
func (b *BaseTx) TxType() Type {
	return b.txType
}

// GetCommon returns the common transaction fields
func (b *BaseTx) GetCommon() *Common {
	return &b.Common
}

// Validate validates the base transaction
func (b *BaseTx) Validate() error {
	return b.Common.Validate()
}

// NewBaseTx creates a new base transaction
func NewBaseTx(txType Type, account solana.PublicKey) *BaseTx {
	return &BaseTx{
		Common: Common{
			Account:         account,
			TransactionType: txType.String(),
		},
		txType: txType,
	}
}
