package amm_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/LeJamon/goCPSwap/internal/core/events"
	"github.com/LeJamon/goCPSwap/internal/core/tx"
	coreAmm "github.com/LeJamon/goCPSwap/internal/core/tx/amm"
	"github.com/LeJamon/goCPSwap/internal/core/tx/token"
	"github.com/LeJamon/goCPSwap/internal/storage/database"
	jtx "github.com/LeJamon/goCPSwap/internal/testing"
	"github.com/LeJamon/goCPSwap/internal/testing/amm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tradedEnv returns a pool after one 1,000,000 reference buy and one
// 1,000,000 listed sell.
func tradedEnv(t *testing.T, opts ...jtx.Option) *amm.AMMTestEnv {
	env := amm.NewAMMTestEnv(t, opts...)
	env.CreatePool(env.Listed)
	jtx.RequireTxSuccess(t, env.Submit(amm.Swap(env.Alice, env.Listed).Buy().Amount(1_000_000).Input()))
	jtx.RequireTxSuccess(t, env.Submit(amm.Swap(env.Bob, env.Listed).Amount(1_000_000).Input()))
	return env
}

func TestCollectFee(t *testing.T) {
	env := tradedEnv(t)
	owed := env.Pool(env.Listed).Pool().Fees
	require.Equal(t, uint64(300), owed.ProtocolReference)
	require.Equal(t, uint64(2200), owed.CreatorReference)
	require.Equal(t, uint64(300), owed.ProtocolListed)
	require.Equal(t, uint64(2200), owed.CreatorListed)

	creatorListed := env.Balance(env.Creator, env.Listed)
	listed, reference := env.Reserves(env.Listed)

	r := env.CollectFees(env.Collector, env.Listed)
	jtx.RequireTxSuccess(t, r)

	ev := r.Event(events.KindFeesCollected).(events.FeesCollected)
	assert.Equal(t, events.FeesCollected{
		Mint:              env.Listed,
		CreatorListed:     2200,
		CreatorReference:  2200,
		ProtocolListed:    300,
		ProtocolReference: 300,
	}, ev)

	jtx.RequireBalance(t, env.TestEnv, env.Collector, env.ReferenceMint(), 300)
	jtx.RequireBalance(t, env.TestEnv, env.Collector, env.Listed, 300)
	jtx.RequireBalance(t, env.TestEnv, env.Creator, env.ReferenceMint(), 2200)
	jtx.RequireBalance(t, env.TestEnv, env.Creator, env.Listed, creatorListed+2200)
	assert.Zero(t, env.Pool(env.Listed).Pool().Fees)

	// fees sit outside the virtual reserves, so paying them out moves nothing
	l, ref := env.Reserves(env.Listed)
	assert.Equal(t, listed, l)
	assert.Equal(t, reference, ref)
}

func TestCollectFeeIdempotent(t *testing.T) {
	env := tradedEnv(t)
	jtx.RequireTxSuccess(t, env.CollectFees(env.Creator, env.Listed))
	product := env.Product(env.Listed)

	r := env.CollectFees(env.Creator, env.Listed)
	jtx.RequireTxSuccess(t, r)
	ev := r.Event(events.KindFeesCollected).(events.FeesCollected)
	assert.Equal(t, events.FeesCollected{Mint: env.Listed}, ev)
	jtx.RequireBalance(t, env.TestEnv, env.Creator, env.ReferenceMint(), 2200)
	assert.True(t, product.Eq(env.Product(env.Listed)))
}

func TestCollectFeeUnauthorized(t *testing.T) {
	env := tradedEnv(t)
	before := env.Snapshot()

	jtx.RequireTxFail(t, env.CollectFees(env.Carol, env.Listed), tx.TecINVALID_OWNER)

	// a signer naming itself as a recipient does not match the pool
	jtx.RequireTxFail(t, env.Submit(coreAmm.NewCollectFee(env.Carol.Address, env.Listed, amm.ConfigIndex,
		env.Carol.Address, env.Collector.Address)), tx.TecINVALID_OWNER)
	jtx.RequireTxFail(t, env.Submit(coreAmm.NewCollectFee(env.Creator.Address, env.Listed, amm.ConfigIndex,
		env.Creator.Address, env.Carol.Address)), tx.TecINVALID_OWNER)
	jtx.RequireUnchanged(t, env.TestEnv, before)
}

func TestCollectFeeFollowsCollectorChange(t *testing.T) {
	env := tradedEnv(t)
	jtx.RequireTxSuccess(t, env.Submit(coreAmm.NewUpdateConfig(env.Admin().Address, amm.ConfigIndex,
		coreAmm.SetProtocolFeeCollector{Collector: env.Carol.Address})))

	jtx.RequireTxFail(t, env.CollectFees(env.Collector, env.Listed), tx.TecINVALID_OWNER)
	jtx.RequireTxSuccess(t, env.Submit(coreAmm.NewCollectFee(env.Carol.Address, env.Listed, amm.ConfigIndex,
		env.Creator.Address, env.Carol.Address)))
	jtx.RequireBalance(t, env.TestEnv, env.Carol, env.ReferenceMint(), 300)
}

func TestCollectFeeMissingPool(t *testing.T) {
	env := amm.NewAMMTestEnv(t)
	jtx.RequireTxFail(t, env.CollectFees(env.Creator, env.Listed), tx.TecNO_ENTRY)
}

// faultyDB fails reads of keys ending in key while armed.
type faultyDB struct {
	database.DB
	key   []byte
	armed bool
}

func (f *faultyDB) Read(ctx context.Context, key []byte) ([]byte, error) {
	if f.armed && bytes.HasSuffix(key, f.key) {
		return nil, errors.New("read fault")
	}
	return f.DB.Read(ctx, key)
}

func TestCollectFeeRollsBackPartialPayout(t *testing.T) {
	faulty := &faultyDB{}
	env := tradedEnv(t, jtx.WithDatabase(func(db database.DB) database.DB {
		faulty.DB = db
		return faulty
	}))

	// The protocol share of the reference side is paid last, after three
	// payouts have already been staged.
	ref := env.ReferenceMint()
	dest, err := token.AssociatedAddress(env.Collector.Address, ref, env.Mint(ref))
	require.NoError(t, err)
	faulty.key = dest.Bytes()

	owed := env.Pool(env.Listed).Pool().Fees
	creatorListed := env.Balance(env.Creator, env.Listed)
	records := len(env.Sink().Records())
	before := env.Snapshot()

	faulty.armed = true
	r := env.CollectFees(env.Creator, env.Listed)
	faulty.armed = false

	jtx.RequireTxFail(t, r, tx.TefINTERNAL)
	jtx.RequireUnchanged(t, env.TestEnv, before)
	assert.Equal(t, owed, env.Pool(env.Listed).Pool().Fees, "accumulators not reset")
	assert.Equal(t, creatorListed, env.Balance(env.Creator, env.Listed))
	assert.Zero(t, env.Balance(env.Collector, env.Listed))
	assert.Len(t, env.Sink().Records(), records)

	r = env.CollectFees(env.Creator, env.Listed)
	jtx.RequireTxSuccess(t, r)
	jtx.RequireBalance(t, env.TestEnv, env.Collector, ref, 300)
	jtx.RequireBalance(t, env.TestEnv, env.Creator, env.Listed, creatorListed+2200)
	assert.Zero(t, env.Pool(env.Listed).Pool().Fees)
}
