package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthPercent(t *testing.T) {
	m := &Monster{}
	m.MaxHP = 100

	m.HP = 100
	assert.Equal(t, uint8(100), HealthPercent(m))

	m.HP = 1
	assert.Equal(t, uint8(1), HealthPercent(m))

	m.HP = 0
	assert.Equal(t, uint8(0), HealthPercent(m))

	m.HP = -5
	assert.Equal(t, uint8(0), HealthPercent(m))

	// Rounds up, never reports 0 for a living creature.
	m.MaxHP = 1000
	m.HP = 1
	assert.Equal(t, uint8(1), HealthPercent(m))

	// Zero max clamps instead of dividing by zero.
	m.MaxHP = 0
	m.HP = 5
	assert.Equal(t, uint8(100), HealthPercent(m))
}

func TestPlayerCanSeeCreature(t *testing.T) {
	viewer := &Player{}
	viewer.AccountType = AccountTypeNormal

	ghost := &Player{}
	ghost.GhostMode = true

	invisible := &Monster{}
	invisible.Invisible = true

	plain := &Monster{}

	assert.False(t, viewer.CanSeeCreature(ghost))
	assert.False(t, viewer.CanSeeCreature(invisible))
	assert.True(t, viewer.CanSeeCreature(plain))
	assert.True(t, viewer.CanSeeCreature(viewer), "players always see themselves")

	staff := &Player{}
	staff.AccountType = AccountTypeGamemaster
	assert.True(t, staff.CanSeeCreature(ghost))
	assert.True(t, staff.CanSeeCreature(invisible))
}

func TestPlayerFlagsAndAccess(t *testing.T) {
	p := &Player{}
	assert.False(t, p.IsAccessPlayer())
	assert.False(t, p.HasFlag(FlagCanAlwaysLogin))

	p.Flags = FlagCanAlwaysLogin | FlagInfiniteCapacity
	assert.True(t, p.HasFlag(FlagCanAlwaysLogin))
	assert.True(t, p.HasFlag(FlagInfiniteCapacity))
	assert.False(t, p.HasFlag(FlagCannotBeBanned))

	p.AccountType = AccountTypeGod
	assert.True(t, p.IsAccessPlayer())
}

func TestTileThingIndex(t *testing.T) {
	ground := &Item{ClientID: 1}
	top := &Item{ClientID: 2}
	down := &Item{ClientID: 3}
	tile := &Tile{
		Ground:    ground,
		TopItems:  []*Item{top},
		Creatures: []Creature{&Monster{}},
		DownItems: []*Item{down},
	}

	assert.Equal(t, 0, tile.ThingIndex(ground))
	assert.Equal(t, 1, tile.ThingIndex(top))
	assert.Equal(t, 3, tile.ThingIndex(down))
	assert.Equal(t, -1, tile.ThingIndex(&Item{ClientID: 9}))
}
