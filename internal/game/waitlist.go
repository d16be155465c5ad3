package game

import (
	"time"

	"github.com/fusion32/forgottenserver/internal/model"
)

type waitEntry struct {
	deadline time.Time
	guid     uint32
	premium  bool
}

// WaitList is the admission queue consulted when the world is at capacity.
// It lives on the game thread and is never shared.
type WaitList struct {
	entries []waitEntry
}

// NewWaitList creates an empty wait list.
func NewWaitList() *WaitList {
	return &WaitList{}
}

// Len returns the number of queued entries.
func (wl *WaitList) Len() int { return len(wl.entries) }

// ClientSlot evaluates the player's position in the queue. A zero slot means
// the player is admitted (and any stored entry was consumed); otherwise the
// returned slot and retry interval go into the wait-list packet and the
// player's entry is stored or refreshed.
func (wl *WaitList) ClientSlot(p *model.Player, online, maxPlayers int, now time.Time) (slot, retrySeconds int) {
	if p.HasFlag(model.FlagCanAlwaysLogin) || p.AccountType >= model.AccountTypeGamemaster {
		return 0, 0
	}

	freeSlots := maxPlayers - online
	if maxPlayers == 0 || (len(wl.entries) == 0 && freeSlots > 0) {
		return 0, 0
	}

	// Drop timed out entries at the front of the list.
	for len(wl.entries) > 0 && !wl.entries[0].deadline.After(now) {
		wl.entries = wl.entries[1:]
	}

	// Count players ahead of this player's entry, or the whole list when the
	// player is not queued yet.
	premiumAhead, freeAhead := 0, 0
	idx := -1
	for i, e := range wl.entries {
		if e.guid == p.GUID {
			idx = i
			break
		}
		if e.premium {
			premiumAhead++
		} else {
			freeAhead++
		}
	}

	slot = premiumAhead + 1
	if !p.IsPremium() {
		slot += freeAhead
	}

	retrySeconds = ((slot / 5) + 1) * 5
	if retrySeconds > 60 {
		retrySeconds = 60
	}

	if slot <= freeSlots {
		if idx >= 0 {
			wl.entries = append(wl.entries[:idx], wl.entries[idx+1:]...)
		}
		return 0, 0
	}

	deadline := now.Add(time.Duration(retrySeconds+15) * time.Second)
	if idx >= 0 {
		wl.entries[idx].deadline = deadline
	} else {
		wl.entries = append(wl.entries, waitEntry{
			deadline: deadline,
			guid:     p.GUID,
			premium:  p.IsPremium(),
		})
	}
	return slot, retrySeconds
}
