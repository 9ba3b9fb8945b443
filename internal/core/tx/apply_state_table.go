package tx

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/LeJamon/goCPSwap/internal/core/ledger/entry"
	"github.com/LeJamon/goCPSwap/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goCPSwap/internal/core/ledger/keylet"
	"github.com/gagliardetto/solana-go"
)

// ErrUndeclaredAccount is returned when a transaction touches an address it
// did not list in Accounts.
var ErrUndeclaredAccount = errors.New("undeclared account")

// ErrReadOnlyAccount is returned when a transaction writes an address it
// declared read-only.
var ErrReadOnlyAccount = fmt.Errorf("%w: read-only", ErrUndeclaredAccount)

// Action represents the type of modification to a ledger entry
type Action int

const (
	// ActionCache means the entry was read but not modified
	ActionCache Action = iota
	// ActionInsert means a new entry was created
	ActionInsert
	// ActionModify means an existing entry was modified
	ActionModify
	// ActionErase means an entry was deleted
	ActionErase
)

func (a Action) String() string {
	switch a {
	case ActionCache:
		return "cache"
	case ActionInsert:
		return "insert"
	case ActionModify:
		return "modify"
	case ActionErase:
		return "erase"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// ReadView provides read access to ledger state. Read returns nil data and
// no error for an absent record.
type ReadView interface {
	Read(k keylet.Keylet) ([]byte, error)
	Exists(k keylet.Keylet) (bool, error)
}

// LedgerView provides staged read/write access to ledger state
type LedgerView interface {
	ReadView

	// Insert adds a new entry
	Insert(k keylet.Keylet, data []byte) error

	// Update modifies an existing entry
	Update(k keylet.Keylet, data []byte) error

	// Erase removes an entry
	Erase(k keylet.Keylet) error
}

// Committer persists a set of changes atomically.
type Committer interface {
	Commit(changes []Change) error
}

// Change is one committed modification.
type Change struct {
	Action Action
	Key    [32]byte
	Type   entry.Type
	// Data is the new record, nil for erase.
	Data []byte
}

// Address returns the change key as an account address.
func (c Change) Address() solana.PublicKey {
	return solana.PublicKeyFromBytes(c.Key[:])
}

// TrackedEntry represents a ledger entry being tracked for changes
type TrackedEntry struct {
	Action   Action
	Type     entry.Type
	Original []byte // Original state (nil for inserts)
	Current  []byte // Current state
}

// ApplyStateTable wraps a ReadView and stages every modification made by a
// single transaction. Nothing reaches the base until Apply.
type ApplyStateTable struct {
	base     ReadView
	items    map[[32]byte]*TrackedEntry
	declared map[[32]byte]struct{}
	readOnly map[[32]byte]struct{}
}

// NewApplyStateTable creates a new ApplyStateTable wrapping the given base view
func NewApplyStateTable(base ReadView) *ApplyStateTable {
	return &ApplyStateTable{
		base:  base,
		items: make(map[[32]byte]*TrackedEntry),
	}
}

// Restrict limits the table to the given addresses. Any other key fails with
// ErrUndeclaredAccount. Calling it with no addresses blocks every access.
func (t *ApplyStateTable) Restrict(addrs []solana.PublicKey) {
	t.declared = make(map[[32]byte]struct{}, len(addrs))
	for _, a := range addrs {
		t.declared[a] = struct{}{}
	}
}

// RestrictWrites makes the given addresses readable but not writable.
func (t *ApplyStateTable) RestrictWrites(addrs []solana.PublicKey) {
	t.readOnly = make(map[[32]byte]struct{}, len(addrs))
	for _, a := range addrs {
		t.readOnly[a] = struct{}{}
	}
}

func (t *ApplyStateTable) checkWrite(k keylet.Keylet) error {
	if err := t.check(k); err != nil {
		return err
	}
	if _, ok := t.readOnly[k.Key]; ok {
		return fmt.Errorf("%w: %s", ErrReadOnlyAccount, k)
	}
	return nil
}

func (t *ApplyStateTable) check(k keylet.Keylet) error {
	if t.declared == nil {
		return nil
	}
	if _, ok := t.declared[k.Key]; !ok {
		return fmt.Errorf("%w: %s", ErrUndeclaredAccount, k)
	}
	return nil
}

func checkType(k keylet.Keylet, data []byte) error {
	if data == nil {
		return nil
	}
	got, err := entries.PeekType(data)
	if err != nil {
		return err
	}
	if got != k.Type {
		return fmt.Errorf("%w: %s holds %s", entries.ErrWrongType, k, got)
	}
	return nil
}

// Read reads a ledger entry, tracking it as cached
func (t *ApplyStateTable) Read(k keylet.Keylet) ([]byte, error) {
	if err := t.check(k); err != nil {
		return nil, err
	}

	if e, exists := t.items[k.Key]; exists {
		if e.Action == ActionErase {
			return nil, nil
		}
		if err := checkType(k, e.Current); err != nil {
			return nil, err
		}
		return e.Current, nil
	}

	data, err := t.base.Read(k)
	if err != nil {
		return nil, err
	}
	if err := checkType(k, data); err != nil {
		return nil, err
	}

	// Only track entries that exist in the base
	if data != nil {
		t.items[k.Key] = &TrackedEntry{
			Action:   ActionCache,
			Type:     k.Type,
			Original: data,
			Current:  data,
		}
	}

	return data, nil
}

// Exists checks if an entry exists
func (t *ApplyStateTable) Exists(k keylet.Keylet) (bool, error) {
	if err := t.check(k); err != nil {
		return false, err
	}
	if e, exists := t.items[k.Key]; exists {
		return e.Action != ActionErase, nil
	}
	return t.base.Exists(k)
}

// Insert adds a new entry
func (t *ApplyStateTable) Insert(k keylet.Keylet, data []byte) error {
	if err := t.checkWrite(k); err != nil {
		return err
	}
	if err := checkType(k, data); err != nil {
		return err
	}

	if e, exists := t.items[k.Key]; exists {
		if e.Action != ActionErase {
			return fmt.Errorf("%w: %s", ErrEntryExists, k)
		}
		// Re-inserting a deleted entry becomes a modify
		e.Action = ActionModify
		e.Type = k.Type
		e.Current = data
		return nil
	}

	exists, err := t.base.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrEntryExists, k)
	}

	t.items[k.Key] = &TrackedEntry{
		Action:  ActionInsert,
		Type:    k.Type,
		Current: data,
	}
	return nil
}

// Update modifies an existing entry
func (t *ApplyStateTable) Update(k keylet.Keylet, data []byte) error {
	if err := t.checkWrite(k); err != nil {
		return err
	}
	if err := checkType(k, data); err != nil {
		return err
	}

	if e, exists := t.items[k.Key]; exists {
		if e.Action == ActionErase {
			return fmt.Errorf("%w: %s (deleted)", ErrRecordNotFound, k)
		}
		if e.Action == ActionCache {
			e.Action = ActionModify
		}
		// For insert, keep it as insert with new data
		e.Current = data
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, k)
	}
	if err := checkType(k, original); err != nil {
		return err
	}

	t.items[k.Key] = &TrackedEntry{
		Action:   ActionModify,
		Type:     k.Type,
		Original: original,
		Current:  data,
	}
	return nil
}

// Erase removes an entry
func (t *ApplyStateTable) Erase(k keylet.Keylet) error {
	if err := t.checkWrite(k); err != nil {
		return err
	}

	if e, exists := t.items[k.Key]; exists {
		switch e.Action {
		case ActionErase:
			return fmt.Errorf("%w: %s (deleted)", ErrRecordNotFound, k)
		case ActionInsert:
			// Inserting then deleting = no change
			delete(t.items, k.Key)
			return nil
		}
		e.Action = ActionErase
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, k)
	}

	t.items[k.Key] = &TrackedEntry{
		Action:   ActionErase,
		Type:     k.Type,
		Original: original,
		Current:  original,
	}
	return nil
}

// IsErased returns true if the entry at the given key has been erased.
func (t *ApplyStateTable) IsErased(k keylet.Keylet) bool {
	if e, exists := t.items[k.Key]; exists {
		return e.Action == ActionErase
	}
	return false
}

// Changes returns the staged modifications ordered by key. Reads and
// updates that restored the original bytes are omitted.
func (t *ApplyStateTable) Changes() []Change {
	changes := make([]Change, 0, len(t.items))
	for key, e := range t.items {
		switch e.Action {
		case ActionCache:
			continue
		case ActionModify:
			if bytes.Equal(e.Original, e.Current) {
				continue
			}
			changes = append(changes, Change{Action: ActionModify, Key: key, Type: e.Type, Data: e.Current})
		case ActionInsert:
			changes = append(changes, Change{Action: ActionInsert, Key: key, Type: e.Type, Data: e.Current})
		case ActionErase:
			changes = append(changes, Change{Action: ActionErase, Key: key, Type: e.Type})
		}
	}
	sort.Slice(changes, func(i, j int) bool {
		return bytes.Compare(changes[i].Key[:], changes[j].Key[:]) < 0
	})
	return changes
}

// Apply commits all staged changes through c in one call and returns them.
func (t *ApplyStateTable) Apply(c Committer) ([]Change, error) {
	changes := t.Changes()
	if len(changes) == 0 {
		return nil, nil
	}
	if err := c.Commit(changes); err != nil {
		return nil, fmt.Errorf("failed to commit changes: %w", err)
	}
	return changes, nil
}
