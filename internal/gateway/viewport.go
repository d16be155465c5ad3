package gateway

import (
	"github.com/fusion32/forgottenserver/internal/model"
	"github.com/fusion32/forgottenserver/internal/protocol"
)

// CanSeePosition is the position half of the visibility gate.
//
// Above ground you can't see below it; underground you can see up to two
// floors either way. The floor delta is applied as an XY offset because the
// client renders higher floors shifted one tile up-left per level.
func CanSeePosition(player *model.Player, pos model.Position) bool {
	playerPos := player.Position()

	zOffset := int(playerPos.Z) - int(pos.Z)
	if playerPos.Z <= 7 && pos.Z > 7 {
		return false
	}
	if playerPos.Z >= 8 && (zOffset > 2 || zOffset < -2) {
		return false
	}

	minX := int(playerPos.X) - maxClientViewportX + zOffset
	maxX := int(playerPos.X) + maxClientViewportX + zOffset
	minY := int(playerPos.Y) - maxClientViewportY + zOffset
	maxY := int(playerPos.Y) + maxClientViewportY + zOffset
	return int(pos.X) >= minX && int(pos.X) <= maxX &&
		int(pos.Y) >= minY && int(pos.Y) <= maxY
}

// CanSeeCreature is the creature half: the creature must be live, pass the
// game-side predicate, and stand on a visible position.
func CanSeeCreature(player *model.Player, creature model.Creature) bool {
	return creature != nil && !creature.IsRemoved() &&
		player.CanSeeCreature(creature) &&
		CanSeePosition(player, creature.Position())
}

// makeCreatureKnown records the creature in the connection's known set.
// Reports isNew=true for first sightings, along with the id the client
// should evict (0 when nothing is evicted). When the set is full and no evictable slot exists, the
// creature cannot be introduced; the client is treated as desynchronized but
// the session continues.
func (s *Server) makeCreatureKnown(c *Connection, creatureID uint32) (isNew bool, removeID uint32) {
	for _, known := range c.knownCreatures {
		if known == creatureID {
			return false, 0
		}
	}

	if len(c.knownCreatures) >= knownCreatureLimit {
		for i, known := range c.knownCreatures {
			creature := s.eng.CreatureByID(known)
			if creature == nil || !CanSeeCreature(c.player, creature) {
				c.knownCreatures[i] = creatureID
				return true, known
			}
		}
		// With 1300 slots you'd need ~5 creatures per visible tile for this
		// to happen; the client is already out of sync at that point.
		return false, 0
	}

	c.knownCreatures = append(c.knownCreatures, creatureID)
	return true, 0
}

func addOutfit(msg *protocol.NetworkMessage, outfit model.Outfit) {
	msg.AddU16(outfit.LookType)
	if outfit.LookType != 0 {
		msg.AddByte(outfit.Head)
		msg.AddByte(outfit.Body)
		msg.AddByte(outfit.Legs)
		msg.AddByte(outfit.Feet)
		msg.AddByte(outfit.Addons)
	} else {
		msg.AddU16(outfit.LookTypeEx)
	}

	msg.AddU16(outfit.Mount)
	if outfit.Mount != 0 {
		msg.AddByte(outfit.MountHead)
		msg.AddByte(outfit.MountBody)
		msg.AddByte(outfit.MountLegs)
		msg.AddByte(outfit.MountFeet)
	}
}

func addCreatureIcons(msg *protocol.NetworkMessage, creature model.Creature) {
	icons := creature.Icons()
	msg.AddByte(byte(len(icons)))
	for _, icon := range icons {
		msg.AddByte(icon.ID)
		if icon.Special {
			msg.AddByte(1)
		} else {
			msg.AddByte(0)
		}
		msg.AddU16(icon.Level)
	}
}

// addCreature emits either a full introduction (0x61, with the id to evict)
// or a known-creature update (0x62).
func (s *Server) addCreature(c *Connection, msg *protocol.NetworkMessage,
	creature model.Creature, forceUpdate bool) {
	player := c.player
	creatureType := creature.Type()
	otherPlayer := creature.AsPlayer()

	var masterID uint32
	if creatureType == model.CreatureTypeMonster {
		if master := creature.Master(); master != nil && master.AsPlayer() != nil {
			masterID = master.ID()
			if master == model.Creature(player) {
				creatureType = model.CreatureTypeSummonOwn
			} else {
				creatureType = model.CreatureTypeSummonOthers
			}
		}
	}

	creatureID := creature.ID()
	isNew, removeID := s.makeCreatureKnown(c, creatureID)
	if !isNew && forceUpdate {
		isNew = true
		removeID = creatureID
	}

	if !isNew {
		msg.AddU16(0x62)
		msg.AddU32(creatureID)
	} else {
		msg.AddU16(0x61)
		msg.AddU32(removeID)
		msg.AddU32(creatureID)
		if creature.IsHealthHidden() {
			msg.AddByte(byte(model.CreatureTypeHidden))
		} else {
			msg.AddByte(byte(creatureType))
		}
		if creatureType == model.CreatureTypeSummonOwn {
			msg.AddU32(masterID)
		}
		if creature.IsHealthHidden() {
			msg.AddString("")
		} else {
			msg.AddString(creature.Name())
		}
	}

	if creature.IsHealthHidden() {
		msg.AddByte(0x00)
	} else {
		msg.AddByte(model.HealthPercent(creature))
	}

	msg.AddByte(byte(creature.Direction()))

	if !creature.IsInGhostMode() && !creature.IsInvisible() {
		addOutfit(msg, creature.Outfit())
	} else {
		addOutfit(msg, model.Outfit{})
	}

	light := creature.Light()
	if player.IsAccessPlayer() {
		msg.AddByte(0xFF)
	} else {
		msg.AddByte(light.Level)
	}
	msg.AddByte(light.Color)

	msg.AddU16(creature.StepSpeed() / 2)

	addCreatureIcons(msg, creature)

	msg.AddByte(player.SkullClient(creature))
	msg.AddByte(player.PartyShield(otherPlayer))

	if isNew {
		msg.AddByte(player.GuildEmblem(otherPlayer))
	}

	if creature.IsHealthHidden() {
		msg.AddByte(byte(model.CreatureTypeHidden))
	} else {
		msg.AddByte(byte(creatureType))
	}
	if creatureType == model.CreatureTypeSummonOwn {
		msg.AddU32(masterID)
	}

	if creatureType == model.CreatureTypePlayer {
		if otherPlayer != nil {
			msg.AddByte(otherPlayer.Vocation.ClientID)
		} else {
			msg.AddByte(0x00)
		}
	}

	msg.AddByte(creature.SpeechBubble())

	msg.AddByte(0xFF) // unmarked
	msg.AddByte(0x00) // inspection type

	if player.CanWalkthrough(creature) {
		msg.AddByte(0x00)
	} else {
		msg.AddByte(0x01)
	}
}

// tileDescription emits ground, top items, visible creatures in reverse
// stack order, then down items, capped at the client stack limit.
func (s *Server) tileDescription(c *Connection, msg *protocol.NetworkMessage, tile *model.Tile) {
	count := 0
	if tile.Ground != nil {
		msg.AddItem(tile.Ground)
		count = 1
	}

	for _, item := range tile.TopItems {
		msg.AddItem(item)
		count++
		if count == maxStackpos {
			break
		}
	}

	player := c.player
	for i := len(tile.Creatures) - 1; i >= 0; i-- {
		creature := tile.Creatures[i]
		if !player.CanSeeCreature(creature) {
			continue
		}
		s.addCreature(c, msg, creature, false)
		count++
	}

	if count < maxStackpos {
		for _, item := range tile.DownItems {
			msg.AddItem(item)
			count++
			if count == maxStackpos {
				return
			}
		}
	}
}

// floorDescription walks one floor of the viewport, compressing runs of
// missing tiles into (skip, 0xFF) pairs. Runs flush before every described
// tile and cap at 254 missing tiles.
func (s *Server) floorDescription(c *Connection, msg *protocol.NetworkMessage,
	x, y, z, width, height, offset int, skip int) int {
	for nx := 0; nx < width; nx++ {
		for ny := 0; ny < height; ny++ {
			tile := s.eng.Tile(model.Position{
				X: uint16(x + nx + offset),
				Y: uint16(y + ny + offset),
				Z: uint8(z),
			})
			if tile != nil {
				if skip >= 0 {
					msg.AddByte(byte(skip))
					msg.AddByte(0xFF)
				}
				skip = 0
				s.tileDescription(c, msg, tile)
			} else if skip == 0xFE {
				msg.AddByte(0xFF)
				msg.AddByte(0xFF)
				skip = -1
			} else {
				skip++
			}
		}
	}
	return skip
}

// mapDescription walks floors from the outermost visible layer toward the
// player's layer, offsetting each by its floor delta.
func (s *Server) mapDescription(c *Connection, msg *protocol.NetworkMessage,
	x, y, z, width, height int) {
	skip := -1
	var startz, endz, zstep int

	if z > 7 {
		startz = z - 2
		endz = z + 2
		if endz > mapMaxLayers-1 {
			endz = mapMaxLayers - 1
		}
		zstep = 1
	} else {
		startz = 7
		endz = 0
		zstep = -1
	}

	for nz := startz; nz != endz+zstep; nz += zstep {
		skip = s.floorDescription(c, msg, x, y, nz, width, height, z-nz, skip)
	}

	if skip >= 0 {
		msg.AddByte(byte(skip))
		msg.AddByte(0xFF)
	}
}

// moveUpCreature describes a floor change upwards for the controlled player:
// the 0xBE marker, newly visible floors, then west and north strips.
func (s *Server) moveUpCreature(c *Connection, msg *protocol.NetworkMessage,
	creature model.Creature, newPos, oldPos model.Position) {
	if creature != model.Creature(c.player) {
		return
	}

	msg.AddByte(0xBE)

	if newPos.Z == 7 {
		// Surfacing: floors 7 and 6 are already known, describe 5..0.
		skip := -1
		for z := 5; z >= 0; z-- {
			skip = s.floorDescription(c, msg,
				int(oldPos.X)-maxClientViewportX,
				int(oldPos.Y)-maxClientViewportY,
				z,
				maxClientViewportX*2+2,
				maxClientViewportY*2+2,
				8-z,
				skip)
		}
		if skip >= 0 {
			msg.AddByte(byte(skip))
			msg.AddByte(0xFF)
		}
	} else if newPos.Z > 7 {
		// Still underground: one new floor comes into view above.
		skip := s.floorDescription(c, msg,
			int(oldPos.X)-maxClientViewportX,
			int(oldPos.Y)-maxClientViewportY,
			int(oldPos.Z)-3,
			maxClientViewportX*2+2,
			maxClientViewportY*2+2,
			3,
			-1)
		if skip >= 0 {
			msg.AddByte(byte(skip))
			msg.AddByte(0xFF)
		}
	}

	// The move leaves the west and north edges unknown.
	msg.AddByte(0x68)
	s.mapDescription(c, msg,
		int(oldPos.X)-maxClientViewportX,
		int(oldPos.Y)-(maxClientViewportY-1),
		int(newPos.Z),
		1,
		maxClientViewportY*2+2)

	msg.AddByte(0x65)
	s.mapDescription(c, msg,
		int(oldPos.X)-maxClientViewportX,
		int(oldPos.Y)-maxClientViewportY,
		int(newPos.Z),
		maxClientViewportX*2+2,
		1)
}

// moveDownCreature mirrors moveUpCreature: 0xBF marker, newly visible
// floors, then east and south strips.
func (s *Server) moveDownCreature(c *Connection, msg *protocol.NetworkMessage,
	creature model.Creature, newPos, oldPos model.Position) {
	if creature != model.Creature(c.player) {
		return
	}

	msg.AddByte(0xBF)

	if newPos.Z == 8 {
		// Going underground: three new floors come into view below.
		skip := -1
		for i := 0; i < 3; i++ {
			skip = s.floorDescription(c, msg,
				int(oldPos.X)-maxClientViewportX,
				int(oldPos.Y)-maxClientViewportY,
				int(newPos.Z)+i,
				maxClientViewportX*2+2,
				maxClientViewportY*2+2,
				-i-1,
				skip)
		}
		if skip >= 0 {
			msg.AddByte(byte(skip))
			msg.AddByte(0xFF)
		}
	} else if newPos.Z > oldPos.Z && newPos.Z > 8 && newPos.Z < 14 {
		skip := s.floorDescription(c, msg,
			int(oldPos.X)-maxClientViewportX,
			int(oldPos.Y)-maxClientViewportY,
			int(newPos.Z)+2,
			maxClientViewportX*2+2,
			maxClientViewportY*2+2,
			-3,
			-1)
		if skip >= 0 {
			msg.AddByte(byte(skip))
			msg.AddByte(0xFF)
		}
	}

	msg.AddByte(0x66)
	s.mapDescription(c, msg,
		int(oldPos.X)+maxClientViewportX+1,
		int(oldPos.Y)-(maxClientViewportY+1),
		int(newPos.Z),
		1,
		maxClientViewportY*2+2)

	msg.AddByte(0x67)
	s.mapDescription(c, msg,
		int(oldPos.X)-maxClientViewportX,
		int(oldPos.Y)+maxClientViewportY+1,
		int(newPos.Z),
		maxClientViewportX*2+2,
		1)
}
