package amm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/LeJamon/goCPSwap/internal/core/events"
	"github.com/LeJamon/goCPSwap/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goCPSwap/internal/core/tx"
	"github.com/gagliardetto/solana-go"
)

func init() {
	tx.Register(tx.TypeUpdateConfig, func() tx.Transaction {
		return &UpdateConfig{BaseTx: *tx.NewBaseTx(tx.TypeUpdateConfig, solana.PublicKey{})}
	})
}

// ErrUnknownUpdate is returned when decoding a config change of unknown kind.
var ErrUnknownUpdate = errors.New("temUNKNOWN_UPDATE: unknown config update")

// ConfigChange is a single-field change to an AmmConfig.
type ConfigChange interface {
	// Kind names the changed field.
	Kind() string
	validate() error
	apply(cfg *entries.AmmConfig)
	value() string
}

// SetTradeFeeRate replaces the trade fee rate.
type SetTradeFeeRate struct {
	Rate uint64 `json:"Rate"`
}

func (SetTradeFeeRate) Kind() string { return "TradeFeeRate" }

func (s SetTradeFeeRate) validate() error {
	if err := entries.ValidateTradeFeeRate(s.Rate); err != nil {
		return fmt.Errorf("temBAD_FEE_RATE: %w", err)
	}
	return nil
}

func (s SetTradeFeeRate) apply(cfg *entries.AmmConfig) { cfg.TradeFeeRate = s.Rate }
func (s SetTradeFeeRate) value() string                 { return strconv.FormatUint(s.Rate, 10) }

// SetProtocolFeeRate replaces the protocol share of trade fees.
type SetProtocolFeeRate struct {
	Rate uint64 `json:"Rate"`
}

func (SetProtocolFeeRate) Kind() string { return "ProtocolFeeRate" }

func (s SetProtocolFeeRate) validate() error {
	if err := entries.ValidateProtocolFeeRate(s.Rate); err != nil {
		return fmt.Errorf("temBAD_FEE_RATE: %w", err)
	}
	return nil
}

func (s SetProtocolFeeRate) apply(cfg *entries.AmmConfig) { cfg.ProtocolFeeRate = s.Rate }
func (s SetProtocolFeeRate) value() string                 { return strconv.FormatUint(s.Rate, 10) }

// SetProtocolFeeCollector replaces the protocol fee recipient.
type SetProtocolFeeCollector struct {
	Collector solana.PublicKey `json:"Collector"`
}

func (SetProtocolFeeCollector) Kind() string { return "ProtocolFeeCollector" }

func (s SetProtocolFeeCollector) validate() error {
	if s.Collector.IsZero() {
		return errors.New("temINVALID_ACCOUNT: Collector is required")
	}
	return nil
}

func (s SetProtocolFeeCollector) apply(cfg *entries.AmmConfig) {
	cfg.ProtocolFeeCollector = s.Collector
}
func (s SetProtocolFeeCollector) value() string { return s.Collector.String() }

// SetCreatePoolDisabled turns pool creation under the config off or on.
type SetCreatePoolDisabled struct {
	Disabled bool `json:"Disabled"`
}

func (SetCreatePoolDisabled) Kind() string { return "CreatePoolDisabled" }

func (SetCreatePoolDisabled) validate() error { return nil }

func (s SetCreatePoolDisabled) apply(cfg *entries.AmmConfig) { cfg.DisableCreatePool = s.Disabled }
func (s SetCreatePoolDisabled) value() string                 { return strconv.FormatBool(s.Disabled) }

func newConfigChange(kind string) (ConfigChange, bool) {
	switch kind {
	case SetTradeFeeRate{}.Kind():
		return &SetTradeFeeRate{}, true
	case SetProtocolFeeRate{}.Kind():
		return &SetProtocolFeeRate{}, true
	case SetProtocolFeeCollector{}.Kind():
		return &SetProtocolFeeCollector{}, true
	case SetCreatePoolDisabled{}.Kind():
		return &SetCreatePoolDisabled{}, true
	}
	return nil, false
}

// UpdateConfig changes one field of a fee tier. Only the admin may sign it.
type UpdateConfig struct {
	tx.BaseTx

	Index  uint16       `json:"Index"`
	Update ConfigChange `json:"-"`
}

type updateConfigJSON struct {
	Update json.RawMessage `json:"Update"`
}

// MarshalJSON writes the change as {"Kind": ..., fields...}.
func (u UpdateConfig) MarshalJSON() ([]byte, error) {
	type plain UpdateConfig
	base, err := json.Marshal(plain(u))
	if err != nil {
		return nil, err
	}
	if u.Update == nil {
		return base, nil
	}
	body, err := json.Marshal(u.Update)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	fields["Kind"], _ = json.Marshal(u.Update.Kind())

	var out map[string]json.RawMessage
	if err := json.Unmarshal(base, &out); err != nil {
		return nil, err
	}
	if out["Update"], err = json.Marshal(fields); err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the change by its Kind.
func (u *UpdateConfig) UnmarshalJSON(data []byte) error {
	type plain UpdateConfig
	p := plain(*u)
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var raw updateConfigJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = UpdateConfig(p)
	u.Update = nil
	if len(raw.Update) == 0 || string(raw.Update) == "null" {
		return nil
	}
	var head struct {
		Kind string `json:"Kind"`
	}
	if err := json.Unmarshal(raw.Update, &head); err != nil {
		return err
	}
	change, ok := newConfigChange(head.Kind)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownUpdate, head.Kind)
	}
	if err := json.Unmarshal(raw.Update, change); err != nil {
		return err
	}
	u.Update = deref(change)
	return nil
}

func deref(c ConfigChange) ConfigChange {
	switch v := c.(type) {
	case *SetTradeFeeRate:
		return *v
	case *SetProtocolFeeRate:
		return *v
	case *SetProtocolFeeCollector:
		return *v
	case *SetCreatePoolDisabled:
		return *v
	}
	return c
}

// NewUpdateConfig creates a new UpdateConfig transaction
func NewUpdateConfig(admin solana.PublicKey, index uint16, update ConfigChange) *UpdateConfig {
	return &UpdateConfig{
		BaseTx: *tx.NewBaseTx(tx.TypeUpdateConfig, admin),
		Index:  index,
		Update: update,
	}
}

// Validate validates the UpdateConfig transaction
func (u *UpdateConfig) Validate() error {
	if err := u.BaseTx.Validate(); err != nil {
		return err
	}
	if u.Update == nil {
		return errors.New("temUNKNOWN_UPDATE: Update is required")
	}
	if _, ok := newConfigChange(u.Update.Kind()); !ok {
		return fmt.Errorf("%w %q", ErrUnknownUpdate, u.Update.Kind())
	}
	return u.Update.validate()
}

// Accounts returns the config address
func (u *UpdateConfig) Accounts(p tx.Params) ([]solana.PublicKey, error) {
	addr, err := configAddress(p, u.Index)
	if err != nil {
		return nil, err
	}
	return []solana.PublicKey{addr}, nil
}

// Apply applies the UpdateConfig transaction to ledger state.
func (u *UpdateConfig) Apply(ctx *tx.ApplyContext) tx.Result {
	if !ctx.IsAdmin() {
		return ctx.Fail(tx.TecINVALID_OWNER, "config update requires the admin")
	}
	addr, err := configAddress(ctx.Params, u.Index)
	if err != nil {
		return tx.TemINVALID_ACCOUNT
	}
	cfg, err := tx.ReadAmmConfig(ctx.View, addr)
	if err != nil {
		return ctx.FailErr(err)
	}
	u.Update.apply(cfg)
	if err := tx.Put(ctx.View, addr, cfg); err != nil {
		return ctx.FailErr(err)
	}
	ctx.Emit(events.ConfigUpdated{AmmConfig: addr, Field: u.Update.Kind(), Value: u.Update.value()})
	return tx.TesSUCCESS
}
