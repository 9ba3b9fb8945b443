// Package events defines the records emitted by pool operations and the
// sinks that receive them once a transaction commits.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"
)

// Kind names an event type.
type Kind string

const (
	KindPoolInitialized   Kind = "PoolInitialized"
	KindFeesCollected     Kind = "FeesCollected"
	KindSwapExecuted      Kind = "SwapExecuted"
	KindPoolStatusUpdated Kind = "PoolStatusUpdated"
	KindConfigUpdated     Kind = "ConfigUpdated"
)

// Event is one emitted record.
type Event interface {
	Kind() Kind
}

// PoolInitialized is emitted when a pool is created.
type PoolInitialized struct {
	Mint       solana.PublicKey `json:"mint"`
	SeedAmount uint64           `json:"seed_amount"`
	OpenTime   uint64           `json:"open_time"`
	Creator    solana.PublicKey `json:"creator"`
	AmmConfig  solana.PublicKey `json:"amm_config"`
	Offset     uint64           `json:"offset"`
}

func (PoolInitialized) Kind() Kind { return KindPoolInitialized }

// FeesCollected carries the four settled fee amounts.
type FeesCollected struct {
	Mint              solana.PublicKey `json:"mint"`
	CreatorListed     uint64           `json:"creator_listed"`
	CreatorReference  uint64           `json:"creator_reference"`
	ProtocolListed    uint64           `json:"protocol_listed"`
	ProtocolReference uint64           `json:"protocol_reference"`
}

func (FeesCollected) Kind() Kind { return KindFeesCollected }

// SwapExecuted describes a trade. Amounts are net of transfer fees:
// InputAmount is what the pool received and OutputAmount what the trader
// received. Prices are Q32.32 reference per listed unit.
type SwapExecuted struct {
	Timestamp       int64            `json:"timestamp"`
	Mint            solana.PublicKey `json:"mint"`
	PriceBefore     uint128.Uint128  `json:"price_before"`
	PriceAfter      uint128.Uint128  `json:"price_after"`
	LiquidityBefore uint64           `json:"liquidity_before"`
	LiquidityAfter  uint64           `json:"liquidity_after"`
	InputAmount     uint64           `json:"input_amount"`
	OutputAmount    uint64           `json:"output_amount"`
	TradeFee        uint64           `json:"trade_fee"`
	Buy             bool             `json:"buy"`
	User            solana.PublicKey `json:"user"`
}

func (SwapExecuted) Kind() Kind { return KindSwapExecuted }

// PoolStatusUpdated records an administrative status change.
type PoolStatusUpdated struct {
	Mint        solana.PublicKey `json:"mint"`
	Status      uint8            `json:"status"`
	RecentEpoch uint64           `json:"recent_epoch"`
}

func (PoolStatusUpdated) Kind() Kind { return KindPoolStatusUpdated }

// ConfigUpdated records a change to a fee tier.
type ConfigUpdated struct {
	AmmConfig solana.PublicKey `json:"amm_config"`
	Field     string           `json:"field"`
	Value     string           `json:"value"`
}

func (ConfigUpdated) Kind() Kind { return KindConfigUpdated }

// Record is an event as published: tagged with the transaction that emitted
// it and a sequence number unique within the ledger.
type Record struct {
	Seq    uint64   `json:"seq"`
	TxHash [32]byte `json:"tx_hash"`
	Event  Event    `json:"event"`
}

// Sink receives committed events.
type Sink interface {
	Publish(ctx context.Context, records []Record) error
	Close() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) Publish(context.Context, []Record) error { return nil }
func (Nop) Close() error                            { return nil }

// MemorySink keeps every record in memory. It is safe for concurrent use.
type MemorySink struct {
	mu      sync.Mutex
	records []Record
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Publish(_ context.Context, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	return nil
}

func (s *MemorySink) Close() error { return nil }

// Records returns a copy of everything published so far.
func (s *MemorySink) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Events returns the published events of kind k in publication order.
func (s *MemorySink) Events(k Kind) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, r := range s.records {
		if r.Event.Kind() == k {
			out = append(out, r.Event)
		}
	}
	return out
}

// Multi fans records out to several sinks, stopping at the first error.
type Multi []Sink

func (m Multi) Publish(ctx context.Context, records []Record) error {
	for _, s := range m {
		if err := s.Publish(ctx, records); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Decode decodes the JSON payload of an event of kind k.
func Decode(k Kind, payload []byte) (Event, error) {
	switch k {
	case KindPoolInitialized:
		return decodeAs[PoolInitialized](payload)
	case KindFeesCollected:
		return decodeAs[FeesCollected](payload)
	case KindSwapExecuted:
		return decodeAs[SwapExecuted](payload)
	case KindPoolStatusUpdated:
		return decodeAs[PoolStatusUpdated](payload)
	case KindConfigUpdated:
		return decodeAs[ConfigUpdated](payload)
	default:
		return nil, fmt.Errorf("unknown event kind %q", k)
	}
}

func decodeAs[T Event](payload []byte) (Event, error) {
	var e T
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, err
	}
	return e, nil
}

// MintOf returns the listed mint an event concerns, if any.
func MintOf(ev Event) (solana.PublicKey, bool) {
	switch e := ev.(type) {
	case PoolInitialized:
		return e.Mint, true
	case FeesCollected:
		return e.Mint, true
	case SwapExecuted:
		return e.Mint, true
	case PoolStatusUpdated:
		return e.Mint, true
	}
	return solana.PublicKey{}, false
}
