package testing

import (
	"github.com/LeJamon/goCPSwap/internal/core/events"
	"github.com/LeJamon/goCPSwap/internal/core/tx"
)

// TxResult represents the result of applying a transaction.
type TxResult struct {
	// Code is the transaction engine result code (e.g., "tesSUCCESS").
	Code string

	// Success indicates whether the transaction was successfully applied.
	Success bool

	// Message provides additional details about the result.
	Message string

	// Result is the engine result code.
	Result tx.Result

	// Events are the records published by the transaction.
	Events []events.Record

	// Changes are the committed record changes.
	Changes []tx.Change
}

func newTxResult(res tx.ApplyResult) TxResult {
	return TxResult{
		Code:    res.Result.String(),
		Success: res.Applied,
		Message: res.Message,
		Result:  res.Result,
		Events:  res.Events,
		Changes: res.Changes,
	}
}

// Event returns the first event of kind k, or nil.
func (r TxResult) Event(k events.Kind) events.Event {
	for _, rec := range r.Events {
		if rec.Event.Kind() == k {
			return rec.Event
		}
	}
	return nil
}

// IsRejected reports whether the transaction was rejected before apply
// (tem or tef codes).
func (r TxResult) IsRejected() bool {
	return r.Result.IsTem() || r.Result.IsTef()
}

// IsClaimed reports whether the transaction reached apply and failed there
// (tec codes).
func (r TxResult) IsClaimed() bool {
	return r.Result.IsTec()
}
