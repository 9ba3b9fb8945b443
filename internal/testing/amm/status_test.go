package amm_test

import (
	"testing"

	"github.com/LeJamon/goCPSwap/internal/core/amm/status"
	"github.com/LeJamon/goCPSwap/internal/core/events"
	"github.com/LeJamon/goCPSwap/internal/core/tx"
	coreAmm "github.com/LeJamon/goCPSwap/internal/core/tx/amm"
	jtx "github.com/LeJamon/goCPSwap/internal/testing"
	"github.com/LeJamon/goCPSwap/internal/testing/amm"
	"github.com/stretchr/testify/assert"
)

func TestUpdatePoolStatus(t *testing.T) {
	env := amm.NewAMMTestEnv(t)
	env.CreatePool(env.Listed)
	env.Clock().AdvanceEpoch(3)

	r := env.Submit(coreAmm.NewUpdatePoolStatus(env.Admin().Address, env.Listed, 0xF4))
	jtx.RequireTxSuccess(t, r)

	p := env.Pool(env.Listed).Pool()
	assert.Equal(t, status.Status(0xF4), p.Status)
	assert.False(t, p.Status.SwapEnabled())
	assert.True(t, p.Status.DepositEnabled())
	assert.Equal(t, env.Now().Epoch, p.RecentEpoch)

	ev := r.Event(events.KindPoolStatusUpdated).(events.PoolStatusUpdated)
	assert.Equal(t, uint8(0xF4), ev.Status)
	assert.Equal(t, env.Now().Epoch, ev.RecentEpoch)
}

func TestUpdatePoolStatusRejections(t *testing.T) {
	env := amm.NewAMMTestEnv(t)

	jtx.RequireTxFail(t, env.Submit(coreAmm.NewUpdatePoolStatus(env.Admin().Address, env.Listed, 4)), tx.TecNO_ENTRY)

	env.CreatePool(env.Listed)
	before := env.Snapshot()
	jtx.RequireTxFail(t, env.Submit(coreAmm.NewUpdatePoolStatus(env.Creator.Address, env.Listed, 4)), tx.TecINVALID_OWNER)
	jtx.RequireUnchanged(t, env.TestEnv, before)
	assert.True(t, env.Pool(env.Listed).Pool().Status.SwapEnabled())
}
