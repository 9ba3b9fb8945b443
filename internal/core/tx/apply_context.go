package tx

import (
	"github.com/LeJamon/goCPSwap/internal/core/amm/curve"
	"github.com/LeJamon/goCPSwap/internal/core/events"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// Params are the ledger-wide settings every transaction sees.
type Params struct {
	// ProgramID is the pool program identity all pool addresses derive from
	ProgramID solana.PublicKey
	// ReferenceMint is the reference asset every pool pairs with
	ReferenceMint solana.PublicKey
	// Admin may create and update configs and pool status
	Admin solana.PublicKey
	// SupplyPolicy bounds the offset of new pools
	SupplyPolicy curve.SupplyPolicy
}

// ApplyContext provides all the state and helpers needed to apply a transaction.
// It is passed to Appliable.Apply() instead of individual parameters.
type ApplyContext struct {
	// View provides read/write access to ledger state (the ApplyStateTable)
	View LedgerView

	// Signer is the verified transaction account
	Signer solana.PublicKey

	Params Params

	// Clock is the ledger time for this transaction
	Clock ClockSnapshot

	// TxHash is the hash of the current transaction
	TxHash [32]byte

	Logger *zap.Logger

	events []events.Event
}

// Emit buffers an event. Buffered events are published only if the
// transaction commits.
func (ctx *ApplyContext) Emit(e events.Event) {
	ctx.events = append(ctx.events, e)
}

// Events returns the buffered events in emission order.
func (ctx *ApplyContext) Events() []events.Event {
	return ctx.events
}

// Fail logs why the transaction stopped and returns r.
func (ctx *ApplyContext) Fail(r Result, reason string, fields ...zap.Field) Result {
	ctx.Logger.Debug(reason, append(fields, zap.Stringer("result", r))...)
	return r
}

// FailErr maps err to a result, logs it and returns the result.
func (ctx *ApplyContext) FailErr(err error, fields ...zap.Field) Result {
	r := ResultFromError(err)
	ctx.Logger.Debug("apply failed", append(fields, zap.Error(err), zap.Stringer("result", r))...)
	return r
}

// IsAdmin reports whether the signer is the configured admin.
func (ctx *ApplyContext) IsAdmin() bool {
	return !ctx.Params.Admin.IsZero() && ctx.Signer.Equals(ctx.Params.Admin)
}
