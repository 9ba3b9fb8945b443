// Package eventlog persists committed pool events to a JSONL file or a SQL
// table so that indexers can replay them.
package eventlog

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/LeJamon/goCPSwap/internal/core/events"
)

// entry is the stored form of an events.Record.
type entry struct {
	Seq     uint64          `json:"seq"`
	TxHash  string          `json:"tx_hash"`
	Kind    events.Kind     `json:"kind"`
	Mint    string          `json:"mint,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

func toEntry(r events.Record) (entry, error) {
	payload, err := json.Marshal(r.Event)
	if err != nil {
		return entry{}, fmt.Errorf("failed to encode %s event: %w", r.Event.Kind(), err)
	}
	e := entry{
		Seq:     r.Seq,
		TxHash:  hex.EncodeToString(r.TxHash[:]),
		Kind:    r.Event.Kind(),
		Payload: payload,
	}
	if mint, ok := events.MintOf(r.Event); ok {
		e.Mint = mint.String()
	}
	return e, nil
}

func (e entry) record() (events.Record, error) {
	ev, err := events.Decode(e.Kind, e.Payload)
	if err != nil {
		return events.Record{}, fmt.Errorf("event %d: %w", e.Seq, err)
	}
	r := events.Record{Seq: e.Seq, Event: ev}
	h, err := hex.DecodeString(e.TxHash)
	if err != nil || len(h) != len(r.TxHash) {
		return events.Record{}, fmt.Errorf("event %d: bad tx hash %q", e.Seq, e.TxHash)
	}
	copy(r.TxHash[:], h)
	return r, nil
}
