package tx

import "time"

// ClockSnapshot is the ledger clock as seen by one transaction.
type ClockSnapshot struct {
	UnixTimestamp int64
	Epoch         uint64
}

// Clock supplies the current ledger time. Successive snapshots never move
// backwards.
type Clock interface {
	Now() ClockSnapshot
}

// SystemClock reads wall time. Epoch counts whole EpochDuration periods since
// Genesis and stays zero when EpochDuration is unset.
type SystemClock struct {
	Genesis       time.Time
	EpochDuration time.Duration
}

func (c SystemClock) Now() ClockSnapshot {
	now := time.Now()
	snap := ClockSnapshot{UnixTimestamp: now.Unix()}
	if c.EpochDuration > 0 && now.After(c.Genesis) {
		snap.Epoch = uint64(now.Sub(c.Genesis) / c.EpochDuration)
	}
	return snap
}

// FixedClock always returns the same snapshot.
type FixedClock ClockSnapshot

func (c FixedClock) Now() ClockSnapshot {
	return ClockSnapshot(c)
}
