// Package metrics exports engine activity to Prometheus.
package metrics

import (
	"time"

	"github.com/LeJamon/goCPSwap/internal/core/events"
	"github.com/LeJamon/goCPSwap/internal/core/tx"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cpswap"

// Recorder implements tx.Observer.
type Recorder struct {
	transactions  *prometheus.CounterVec
	applyDuration *prometheus.HistogramVec
	swapVolume    *prometheus.CounterVec
	feesCollected *prometheus.CounterVec
}

var _ tx.Observer = (*Recorder)(nil)

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Transactions processed, by type and result code.",
		}, []string{"type", "result"}),
		applyDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "apply_duration_seconds",
			Help:      "Time to apply one transaction.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
		}, []string{"type"}),
		swapVolume: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "swap_volume_total",
			Help:      "Base units paid into pools by swaps, by input side.",
		}, []string{"mint", "side"}),
		feesCollected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fees_collected_total",
			Help:      "Fees paid out of pools, by side and recipient.",
		}, []string{"mint", "side", "recipient"}),
	}
	for _, c := range []prometheus.Collector{r.transactions, r.applyDuration, r.swapVolume, r.feesCollected} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ObserveTransaction records one engine result.
func (r *Recorder) ObserveTransaction(t tx.Transaction, res tx.ApplyResult, elapsed time.Duration) {
	typ := t.TxType().String()
	r.transactions.WithLabelValues(typ, res.Result.String()).Inc()
	r.applyDuration.WithLabelValues(typ).Observe(elapsed.Seconds())
	if !res.Applied {
		return
	}
	for _, rec := range res.Events {
		switch e := rec.Event.(type) {
		case events.SwapExecuted:
			side := "listed"
			if e.Buy {
				side = "reference"
			}
			r.swapVolume.WithLabelValues(e.Mint.String(), side).Add(float64(e.InputAmount))
		case events.FeesCollected:
			mint := e.Mint.String()
			r.feesCollected.WithLabelValues(mint, "listed", "creator").Add(float64(e.CreatorListed))
			r.feesCollected.WithLabelValues(mint, "reference", "creator").Add(float64(e.CreatorReference))
			r.feesCollected.WithLabelValues(mint, "listed", "protocol").Add(float64(e.ProtocolListed))
			r.feesCollected.WithLabelValues(mint, "reference", "protocol").Add(float64(e.ProtocolReference))
		}
	}
}
