package game

import (
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fusion32/forgottenserver/internal/model"
)

// World is the in-process creature registry and world status backing the
// Engine interface. Gameplay proper (combat, items, scripting) lives behind
// PlayerOps; the gateway only needs the registry and placement semantics.
//
// Except where noted, World is confined to the game thread.
type World struct {
	state     atomic.Int32 // read from the status side too
	worldType WorldType
	startedAt time.Time

	creatures map[uint32]model.Creature
	byGUID    map[uint32]*model.Player
	byAccount map[uint32]*model.Player
	tiles     map[model.Position]*model.Tile

	nextCreatureID uint32
	playersOnline  int
}

// NewWorld creates a world in the startup state.
func NewWorld(worldType WorldType) *World {
	w := &World{
		worldType:      worldType,
		startedAt:      time.Now(),
		creatures:      make(map[uint32]model.Creature),
		byGUID:         make(map[uint32]*model.Player),
		byAccount:      make(map[uint32]*model.Player),
		tiles:          make(map[model.Position]*model.Tile),
		nextCreatureID: 0x10000000,
	}
	w.state.Store(int32(StateStartup))
	return w
}

func (w *World) State() State         { return State(w.state.Load()) }
func (w *World) SetState(s State)     { w.state.Store(int32(s)) }
func (w *World) WorldType() WorldType { return w.worldType }

func (w *World) UptimeSeconds() uint32 {
	return uint32(time.Since(w.startedAt) / time.Second)
}

func (w *World) PlayersOnline() int { return w.playersOnline }

// AssignCreatureID hands out the next creature id. Player ids live in their
// own range so the client can tell them from monsters.
func (w *World) AssignCreatureID() uint32 {
	w.nextCreatureID++
	return w.nextCreatureID
}

func (w *World) CreatureByID(id uint32) model.Creature {
	return w.creatures[id]
}

func (w *World) PlayerByGUID(guid uint32) *model.Player {
	return w.byGUID[guid]
}

func (w *World) PlayerByAccount(accountID uint32) *model.Player {
	return w.byAccount[accountID]
}

// PlayerByName scans the online players for a case-insensitive name match.
func (w *World) PlayerByName(name string) *model.Player {
	for _, p := range w.byGUID {
		if strings.EqualFold(p.Name(), name) {
			return p
		}
	}
	return nil
}

func (w *World) Tile(pos model.Position) *model.Tile {
	return w.tiles[pos]
}

// SetTile installs a tile at pos. Used by world loading and tests.
func (w *World) SetTile(pos model.Position, tile *model.Tile) {
	w.tiles[pos] = tile
}

// PlaceCreature puts a creature on the map at pos. Placement fails when the
// tile does not exist; forced placement creates the tile.
func (w *World) PlaceCreature(c model.Creature, pos model.Position, forced bool) bool {
	tile := w.tiles[pos]
	if tile == nil {
		if !forced {
			return false
		}
		tile = &model.Tile{}
		w.tiles[pos] = tile
	}

	tile.Creatures = append(tile.Creatures, c)
	w.creatures[c.ID()] = c

	if p := c.AsPlayer(); p != nil {
		p.Pos = pos
		p.Removed = false
		w.byGUID[p.GUID] = p
		w.byAccount[p.AccountID] = p
		w.playersOnline++
		slog.Info("player entered world", "name", p.Name(), "guid", p.GUID, "position", pos)
	}
	return true
}

// RemoveCreature takes a creature off the map.
func (w *World) RemoveCreature(c model.Creature) {
	if tile := w.tiles[c.Position()]; tile != nil {
		for i, tc := range tile.Creatures {
			if tc == c {
				tile.Creatures = append(tile.Creatures[:i], tile.Creatures[i+1:]...)
				break
			}
		}
	}

	if p := c.AsPlayer(); p != nil {
		if !p.Removed {
			p.Removed = true
			delete(w.byGUID, p.GUID)
			delete(w.byAccount, p.AccountID)
			w.playersOnline--
			slog.Info("player left world", "name", p.Name(), "guid", p.GUID)
		}
	}
}

// ReleaseCreature drops the registry's reference once the gateway has let go
// of its side.
func (w *World) ReleaseCreature(c model.Creature) {
	delete(w.creatures, c.ID())
}

// AddMagicEffect is a placement-time visual; the registry itself has no
// observers, so broadcasting is left to the gameplay layer.
func (w *World) AddMagicEffect(pos model.Position, effect uint8) {
	_ = pos
	_ = effect
}

// RegisterCreatureEvent records a scriptable hook registration.
func (w *World) RegisterCreatureEvent(c model.Creature, event string) {
	slog.Debug("creature event registered", "creature", c.Name(), "event", event)
}
