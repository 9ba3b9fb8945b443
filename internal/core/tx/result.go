package tx

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goCPSwap/internal/core/amm/checked"
	"github.com/LeJamon/goCPSwap/internal/core/amm/curve"
	"github.com/LeJamon/goCPSwap/internal/core/ledger/entry/entries"
)

// Result represents a transaction result code
type Result int

// Transaction result codes, organized by category: tes, tec, tef, tem.
// Only tesSUCCESS commits; every other code discards the staged state.
const (
	// tesSUCCESS (0)
	TesSUCCESS Result = 0

	// tec codes (100-199): the request was well formed but could not be executed
	TecNO_ENTRY               Result = 100
	TecDUPLICATE              Result = 101
	TecUNFUNDED               Result = 102
	TecINVALID_OWNER          Result = 103
	TecNOT_SUPPORT_MINT       Result = 104
	TecNOT_APPROVED           Result = 105
	TecARITHMETIC             Result = 106
	TecINSUFFICIENT_LIQUIDITY Result = 107
	TecEXCEEDED_SLIPPAGE      Result = 108
	TecZERO_TRADING_TOKENS    Result = 109
	TecSWAP_DISABLED          Result = 110
	TecMINT_MISMATCH          Result = 111

	// tef codes (-199 to -100): failures of the engine or its invariants
	TefINTERNAL            Result = -199
	TefINVARIANT_VIOLATION Result = -198
	TefBAD_SIGNATURE       Result = -197
	TefUNDECLARED_ACCOUNT  Result = -196
	TefBAD_LEDGER          Result = -195

	// tem codes (-299 to -200): malformed requests
	TemMALFORMED       Result = -299
	TemINVALID_INPUT   Result = -298
	TemBAD_AMOUNT      Result = -297
	TemBAD_FEE_RATE    Result = -296
	TemUNKNOWN_UPDATE  Result = -295
	TemINVALID_ACCOUNT Result = -294
	TemUNKNOWN_TX_TYPE Result = -293
)

var resultNames = map[Result]string{
	TesSUCCESS: "tesSUCCESS",

	TecNO_ENTRY:               "tecNO_ENTRY",
	TecDUPLICATE:              "tecDUPLICATE",
	TecUNFUNDED:               "tecUNFUNDED",
	TecINVALID_OWNER:          "tecINVALID_OWNER",
	TecNOT_SUPPORT_MINT:       "tecNOT_SUPPORT_MINT",
	TecNOT_APPROVED:           "tecNOT_APPROVED",
	TecARITHMETIC:             "tecARITHMETIC",
	TecINSUFFICIENT_LIQUIDITY: "tecINSUFFICIENT_LIQUIDITY",
	TecEXCEEDED_SLIPPAGE:      "tecEXCEEDED_SLIPPAGE",
	TecZERO_TRADING_TOKENS:    "tecZERO_TRADING_TOKENS",
	TecSWAP_DISABLED:          "tecSWAP_DISABLED",
	TecMINT_MISMATCH:          "tecMINT_MISMATCH",

	TefINTERNAL:            "tefINTERNAL",
	TefINVARIANT_VIOLATION: "tefINVARIANT_VIOLATION",
	TefBAD_SIGNATURE:       "tefBAD_SIGNATURE",
	TefUNDECLARED_ACCOUNT:  "tefUNDECLARED_ACCOUNT",
	TefBAD_LEDGER:          "tefBAD_LEDGER",

	TemMALFORMED:       "temMALFORMED",
	TemINVALID_INPUT:   "temINVALID_INPUT",
	TemBAD_AMOUNT:      "temBAD_AMOUNT",
	TemBAD_FEE_RATE:    "temBAD_FEE_RATE",
	TemUNKNOWN_UPDATE:  "temUNKNOWN_UPDATE",
	TemINVALID_ACCOUNT: "temINVALID_ACCOUNT",
	TemUNKNOWN_TX_TYPE: "temUNKNOWN_TX_TYPE",
}

var resultsByName = func() map[string]Result {
	m := make(map[string]Result, len(resultNames))
	for r, name := range resultNames {
		m[name] = r
	}
	return m
}()

func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", int(r))
}

// ResultFromName returns the result with the given code name.
func ResultFromName(name string) (Result, bool) {
	r, ok := resultsByName[name]
	return r, ok
}

// IsSuccess returns true if the result indicates success
func (r Result) IsSuccess() bool {
	return r == TesSUCCESS
}

// IsTec returns true if this is a tec code
func (r Result) IsTec() bool {
	return r >= 100 && r < 200
}

// IsTef returns true if this is a tef (failure) code
func (r Result) IsTef() bool {
	return r >= -199 && r <= -100
}

// IsTem returns true if this is a tem (malformed) code
func (r Result) IsTem() bool {
	return r >= -299 && r <= -200
}

// IsApplied returns true if the transaction changed ledger state
func (r Result) IsApplied() bool {
	return r.IsSuccess()
}

// Class names the error class a result belongs to.
type Class string

const (
	ClassNone               Class = ""
	ClassInvalidInput       Class = "InvalidInput"
	ClassInvalidOwner       Class = "InvalidOwner"
	ClassNotSupportMint     Class = "NotSupportMint"
	ClassNotApproved        Class = "NotApproved"
	ClassArithmetic         Class = "ArithmeticError"
	ClassInvariantViolation Class = "InvariantViolation"
	ClassExecution          Class = "ExecutionError"
	ClassInternal           Class = "InternalError"
)

// Class returns the error class of r.
func (r Result) Class() Class {
	switch {
	case r.IsSuccess():
		return ClassNone
	case r.IsTem():
		return ClassInvalidInput
	}
	switch r {
	case TecINVALID_OWNER:
		return ClassInvalidOwner
	case TecNOT_SUPPORT_MINT:
		return ClassNotSupportMint
	case TecNOT_APPROVED:
		return ClassNotApproved
	case TecARITHMETIC, TecINSUFFICIENT_LIQUIDITY:
		return ClassArithmetic
	case TefINVARIANT_VIOLATION:
		return ClassInvariantViolation
	}
	if r.IsTef() {
		return ClassInternal
	}
	return ClassExecution
}

// Message returns a human-readable message for the result
func (r Result) Message() string {
	switch r {
	case TesSUCCESS:
		return "The transaction was applied."
	case TecNO_ENTRY:
		return "A required ledger record does not exist."
	case TecDUPLICATE:
		return "The record to create already exists."
	case TecUNFUNDED:
		return "Insufficient token balance."
	case TecINVALID_OWNER:
		return "Signer is not authorized for this operation."
	case TecNOT_SUPPORT_MINT:
		return "Mint token program or extension set is not supported."
	case TecNOT_APPROVED:
		return "Operation not approved: pool creation disabled or pool not open."
	case TecARITHMETIC:
		return "Overflow, underflow or division failure in pool math."
	case TecINSUFFICIENT_LIQUIDITY:
		return "Pool reserves cannot cover the trade."
	case TecEXCEEDED_SLIPPAGE:
		return "Trade falls outside the requested slippage bound."
	case TecZERO_TRADING_TOKENS:
		return "Trade rounds to zero tokens."
	case TecSWAP_DISABLED:
		return "Swaps are disabled on this pool."
	case TecMINT_MISMATCH:
		return "Token account does not hold the expected mint."
	case TefINTERNAL:
		return "Internal error."
	case TefINVARIANT_VIOLATION:
		return "Trade would decrease the reserve product."
	case TefBAD_SIGNATURE:
		return "Signature is missing or invalid."
	case TefUNDECLARED_ACCOUNT:
		return "Transaction touched an account it did not declare."
	case TefBAD_LEDGER:
		return "Ledger record is corrupt."
	case TemMALFORMED:
		return "Malformed transaction."
	case TemINVALID_INPUT:
		return "Invalid parameter."
	case TemBAD_AMOUNT:
		return "Amount must be positive."
	case TemBAD_FEE_RATE:
		return "Fee rate out of range."
	case TemUNKNOWN_UPDATE:
		return "Unknown config update."
	case TemINVALID_ACCOUNT:
		return "Invalid account address."
	case TemUNKNOWN_TX_TYPE:
		return "Unknown transaction type."
	default:
		return r.String()
	}
}

// ErrRecordNotFound is returned by views and services when a record is absent.
var ErrRecordNotFound = errors.New("record not found")

// ErrInsufficientFunds is returned when a token account cannot cover a debit.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrMintMismatch is returned when a token account holds a different mint.
var ErrMintMismatch = errors.New("mint mismatch")

// ErrNotOwner is returned when the signer does not control a record.
var ErrNotOwner = errors.New("signer is not the owner")

// ErrEntryExists is returned when inserting a record that already exists.
var ErrEntryExists = errors.New("entry already exists")

// ResultFromError maps an error from pool math, records or views to a result.
func ResultFromError(err error) Result {
	switch {
	case err == nil:
		return TesSUCCESS
	case errors.Is(err, curve.ErrInvariantViolation):
		return TefINVARIANT_VIOLATION
	case errors.Is(err, curve.ErrInsufficientLiquidity):
		return TecINSUFFICIENT_LIQUIDITY
	case errors.Is(err, curve.ErrZeroTradingTokens):
		return TecZERO_TRADING_TOKENS
	case errors.Is(err, curve.ErrInvalidInput):
		return TemINVALID_INPUT
	case errors.Is(err, checked.ErrArithmetic):
		return TecARITHMETIC
	case errors.Is(err, ErrUndeclaredAccount):
		return TefUNDECLARED_ACCOUNT
	case errors.Is(err, ErrRecordNotFound):
		return TecNO_ENTRY
	case errors.Is(err, ErrInsufficientFunds):
		return TecUNFUNDED
	case errors.Is(err, ErrMintMismatch):
		return TecMINT_MISMATCH
	case errors.Is(err, ErrNotOwner):
		return TecINVALID_OWNER
	case errors.Is(err, ErrEntryExists):
		return TecDUPLICATE
	case errors.Is(err, entries.ErrWrongType),
		errors.Is(err, entries.ErrUnknownVersion),
		errors.Is(err, entries.ErrBadRecordLength):
		return TefBAD_LEDGER
	default:
		return TefINTERNAL
	}
}
