package metrics

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/LeJamon/goCPSwap/internal/core/events"
	"github.com/LeJamon/goCPSwap/internal/core/tx"
	"github.com/LeJamon/goCPSwap/internal/core/tx/amm"
	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg)
	require.NoError(t, err)

	var mint solana.PublicKey
	swap := amm.NewSwapBaseInput(mint, mint, 0, true, 100, 1)
	r.ObserveTransaction(swap, tx.ApplyResult{
		Result:  tx.TesSUCCESS,
		Applied: true,
		Events: []events.Record{
			{Seq: 1, Event: events.SwapExecuted{Mint: mint, Buy: true, InputAmount: 100}},
		},
	}, time.Millisecond)
	r.ObserveTransaction(swap, tx.ApplyResult{Result: tx.TecEXCEEDED_SLIPPAGE}, time.Millisecond)

	collect := amm.NewCollectFee(mint, mint, 0, mint, mint)
	r.ObserveTransaction(collect, tx.ApplyResult{
		Result:  tx.TesSUCCESS,
		Applied: true,
		Events: []events.Record{
			{Seq: 2, Event: events.FeesCollected{Mint: mint, CreatorReference: 2200, ProtocolReference: 300}},
		},
	}, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.transactions.WithLabelValues("SwapBaseInput", "tesSUCCESS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.transactions.WithLabelValues("SwapBaseInput", "tecEXCEEDED_SLIPPAGE")))
	assert.Equal(t, 100.0, testutil.ToFloat64(r.swapVolume.WithLabelValues(mint.String(), "reference")))
	assert.Equal(t, 2200.0, testutil.ToFloat64(r.feesCollected.WithLabelValues(mint.String(), "reference", "creator")))
	assert.Equal(t, 300.0, testutil.ToFloat64(r.feesCollected.WithLabelValues(mint.String(), "reference", "protocol")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.applyDuration))
}

func TestRecorderDoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewRecorder(reg)
	require.NoError(t, err)
	_, err = NewRecorder(reg)
	assert.Error(t, err)
}

func TestServer(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg)
	require.NoError(t, err)
	var mint solana.PublicKey
	r.ObserveTransaction(amm.NewUpdatePoolStatus(mint, mint, 4), tx.ApplyResult{Result: tx.TecINVALID_OWNER}, 0)

	s, err := Listen("127.0.0.1:0", reg, zap.NewNop())
	require.NoError(t, err)
	go s.Serve()
	defer s.Shutdown(context.Background())

	resp, err := http.Get("http://" + s.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `cpswap_transactions_total{result="tecINVALID_OWNER",type="UpdatePoolStatus"} 1`))
}
