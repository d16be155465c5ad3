package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fusion32/forgottenserver/internal/model"
)

func waitPlayer(guid uint32, premium bool) *model.Player {
	return &model.Player{
		GUID:        guid,
		AccountType: model.AccountTypeNormal,
		Premium:     premium,
	}
}

func TestWaitListAdmitsWhenCapacityDisabled(t *testing.T) {
	wl := NewWaitList()
	slot, _ := wl.ClientSlot(waitPlayer(1, false), 5000, 0, time.Now())
	assert.Equal(t, 0, slot)
}

func TestWaitListAdmitsStaffImmediately(t *testing.T) {
	wl := NewWaitList()
	gm := waitPlayer(1, false)
	gm.AccountType = model.AccountTypeGamemaster
	slot, _ := wl.ClientSlot(gm, 10, 2, time.Now())
	assert.Equal(t, 0, slot)

	always := waitPlayer(2, false)
	always.Flags = model.FlagCanAlwaysLogin
	slot, _ = wl.ClientSlot(always, 10, 2, time.Now())
	assert.Equal(t, 0, slot)
}

func TestWaitListCapacityGate(t *testing.T) {
	// max_players=2, two non-premium already in, a premium client enters:
	// wait slot 1, retry 5, entry stored; a second attempt within 5 seconds
	// produces the same slot.
	wl := NewWaitList()
	now := time.Now()
	p := waitPlayer(7, true)

	slot, retry := wl.ClientSlot(p, 2, 2, now)
	assert.Equal(t, 1, slot)
	assert.Equal(t, 5, retry)
	assert.Equal(t, 1, wl.Len())

	slot, retry = wl.ClientSlot(p, 2, 2, now.Add(4*time.Second))
	assert.Equal(t, 1, slot)
	assert.Equal(t, 5, retry)
	assert.Equal(t, 1, wl.Len())
}

func TestWaitListPremiumSkipsFreeAhead(t *testing.T) {
	// A single premium client with one non-premium ahead gets slot 1.
	wl := NewWaitList()
	now := time.Now()

	free := waitPlayer(1, false)
	slot, _ := wl.ClientSlot(free, 3, 3, now)
	assert.Equal(t, 1, slot)

	prem := waitPlayer(2, true)
	slot, retry := wl.ClientSlot(prem, 3, 3, now)
	assert.Equal(t, 1, slot)
	assert.Equal(t, 5, retry)

	// The free client keeps its original place at the front of the queue.
	slot, _ = wl.ClientSlot(free, 3, 3, now)
	assert.Equal(t, 1, slot)
}

func TestWaitListAdmitsWhenSlotWithinFree(t *testing.T) {
	wl := NewWaitList()
	now := time.Now()
	p := waitPlayer(9, false)

	slot, _ := wl.ClientSlot(p, 5, 5, now)
	assert.Equal(t, 1, slot)

	// Capacity frees up: the stored entry is consumed and the player enters.
	slot, _ = wl.ClientSlot(p, 4, 5, now.Add(time.Second))
	assert.Equal(t, 0, slot)
	assert.Equal(t, 0, wl.Len())
}

func TestWaitListPrunesExpiredEntries(t *testing.T) {
	wl := NewWaitList()
	now := time.Now()

	slot, retry := wl.ClientSlot(waitPlayer(1, false), 2, 2, now)
	assert.Equal(t, 1, slot)

	// After the entry's deadline (retry+15s) passes, a newcomer takes the
	// front of the queue.
	later := now.Add(time.Duration(retry+16) * time.Second)
	slot, _ = wl.ClientSlot(waitPlayer(2, false), 2, 2, later)
	assert.Equal(t, 1, slot)
	assert.Equal(t, 1, wl.Len())
}

func TestWaitListRetryCapsAtSixtySeconds(t *testing.T) {
	wl := NewWaitList()
	now := time.Now()

	var lastRetry int
	for guid := uint32(1); guid <= 70; guid++ {
		_, lastRetry = wl.ClientSlot(waitPlayer(guid, false), 100, 100, now)
	}
	assert.Equal(t, 60, lastRetry)
}
