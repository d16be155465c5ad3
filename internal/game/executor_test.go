package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusion32/forgottenserver/internal/model"
)

func TestExecutorRunsTasksInPostOrder(t *testing.T) {
	e := NewExecutor(16)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		_ = e.Run(ctx)
		close(done)
	}()

	var got []int
	finished := make(chan struct{})
	for i := 0; i < 10; i++ {
		i := i
		e.Post(func() { got = append(got, i) })
	}
	e.Post(func() { close(finished) })

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("executor did not drain tasks")
	}

	cancel()
	<-done

	require.Len(t, got, 10)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestExecutorDropsTasksAfterShutdown(t *testing.T) {
	e := NewExecutor(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, e.Run(ctx))

	// Must not block or panic.
	e.Post(func() { t.Fatal("task must not run after shutdown") })
}

func TestWorldRegistry(t *testing.T) {
	w := NewWorld(WorldTypePvP)
	w.SetState(StateNormal)

	p := waitPlayer(55, false)
	p.CreatureID = w.AssignCreatureID()
	p.AccountID = 900
	p.CreatureName = "Tester"
	pos := model.Position{X: 100, Y: 100, Z: 7}

	assert.False(t, w.PlaceCreature(p, pos, false), "placement on a missing tile must fail")
	assert.True(t, w.PlaceCreature(p, pos, true), "forced placement creates the tile")
	assert.Equal(t, 1, w.PlayersOnline())
	assert.Equal(t, p, w.PlayerByGUID(p.GUID))
	assert.Equal(t, p, w.PlayerByAccount(p.AccountID))

	w.RemoveCreature(p)
	assert.Equal(t, 0, w.PlayersOnline())
	assert.Nil(t, w.PlayerByGUID(p.GUID))
	assert.True(t, p.Removed)

	w.ReleaseCreature(p)
	assert.Nil(t, w.CreatureByID(p.ID()))
}
