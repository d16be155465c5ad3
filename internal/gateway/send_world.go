package gateway

import (
	"github.com/fusion32/forgottenserver/internal/game"
	"github.com/fusion32/forgottenserver/internal/model"
	"github.com/fusion32/forgottenserver/internal/protocol"
)

// SendMapDescription pushes the full viewport centered on pos.
func (s *Server) SendMapDescription(c *Connection, pos model.Position) {
	var msg protocol.NetworkMessage
	msg.AddByte(0x64)
	msg.AddPosition(c.player.Position())
	s.mapDescription(c, &msg,
		int(pos.X)-maxClientViewportX,
		int(pos.Y)-maxClientViewportY,
		int(pos.Z),
		maxClientViewportX*2+2,
		maxClientViewportY*2+2)
	c.WriteToOutputBuffer(&msg)
}

// SendAddTileItem reports a new item on a visible tile.
func (s *Server) SendAddTileItem(c *Connection, pos model.Position, stackpos int, item *model.Item) {
	if !CanSeePosition(c.player, pos) {
		return
	}

	var msg protocol.NetworkMessage
	msg.AddByte(0x6A)
	msg.AddPosition(pos)
	msg.AddByte(byte(stackpos))
	msg.AddItem(item)
	c.WriteToOutputBuffer(&msg)
}

// SendUpdateTileItem replaces an item on a visible tile.
func (s *Server) SendUpdateTileItem(c *Connection, pos model.Position, stackpos int, item *model.Item) {
	if !CanSeePosition(c.player, pos) {
		return
	}

	var msg protocol.NetworkMessage
	msg.AddByte(0x6B)
	msg.AddPosition(pos)
	msg.AddByte(byte(stackpos))
	msg.AddItem(item)
	c.WriteToOutputBuffer(&msg)
}

// removeTileThing is the shared tail of the removal packets.
func removeTileThing(msg *protocol.NetworkMessage, pos model.Position, stackpos int) {
	if stackpos >= maxStackpos {
		return
	}
	msg.AddByte(0x6C)
	msg.AddPosition(pos)
	msg.AddByte(byte(stackpos))
}

// SendRemoveTileThing removes a thing from a visible tile by stack position.
func (s *Server) SendRemoveTileThing(c *Connection, pos model.Position, stackpos int) {
	if !CanSeePosition(c.player, pos) {
		return
	}

	var msg protocol.NetworkMessage
	removeTileThing(&msg, pos, stackpos)
	c.WriteToOutputBuffer(&msg)
}

// SendUpdateTileCreature re-describes a creature in place.
func (s *Server) SendUpdateTileCreature(c *Connection, pos model.Position, stackpos int, creature model.Creature) {
	if !CanSeePosition(c.player, pos) {
		return
	}

	var msg protocol.NetworkMessage
	msg.AddByte(0x6B)
	msg.AddPosition(pos)
	msg.AddByte(byte(stackpos))
	s.addCreature(c, &msg, creature, true)
	c.WriteToOutputBuffer(&msg)
}

// SendRemoveTileCreature removes a creature, falling back to the id-based
// form when it sits beyond the client stack limit.
func (s *Server) SendRemoveTileCreature(c *Connection, creature model.Creature, pos model.Position, stackpos int) {
	if stackpos < maxStackpos {
		if !CanSeePosition(c.player, pos) {
			return
		}

		var msg protocol.NetworkMessage
		removeTileThing(&msg, pos, stackpos)
		c.WriteToOutputBuffer(&msg)
		return
	}

	var msg protocol.NetworkMessage
	msg.AddByte(0x6C)
	msg.AddU16(0xFFFF)
	msg.AddU32(creature.ID())
	c.WriteToOutputBuffer(&msg)
}

// SendUpdateTile re-describes a whole visible tile.
func (s *Server) SendUpdateTile(c *Connection, tile *model.Tile, pos model.Position) {
	if !CanSeePosition(c.player, pos) {
		return
	}

	var msg protocol.NetworkMessage
	msg.AddByte(0x69)
	msg.AddPosition(pos)

	if tile != nil {
		s.tileDescription(c, &msg, tile)
		msg.AddByte(0x00)
		msg.AddByte(0xFF)
	} else {
		msg.AddByte(0x01)
		msg.AddByte(0xFF)
	}
	c.WriteToOutputBuffer(&msg)
}

// SendAddCreature introduces a creature appearing on a visible tile. When it
// stands beyond the stack limit the tile is refreshed instead, so the client
// tracks it in the battle list without rendering it.
func (s *Server) SendAddCreature(c *Connection, creature model.Creature,
	pos model.Position, stackpos int, magicEffect uint8) {
	if !CanSeePosition(c.player, pos) {
		return
	}

	if stackpos >= maxStackpos {
		if tile := s.eng.Tile(creature.Position()); tile != nil {
			s.SendUpdateTile(c, tile, pos)
		}
	} else {
		var msg protocol.NetworkMessage
		msg.AddByte(0x6A)
		msg.AddPosition(pos)
		msg.AddByte(byte(stackpos))
		s.addCreature(c, &msg, creature, false)
		c.WriteToOutputBuffer(&msg)
	}

	if magicEffect != 0 {
		s.SendMagicEffect(c, pos, magicEffect)
	}
}

// SendMoveCreature translates a creature step or teleport into the client's
// delta language: the move packet itself, floor-change strips for the
// controlled player, and edge strips for the scrolled-in rows and columns.
func (s *Server) SendMoveCreature(c *Connection, creature model.Creature,
	newPos model.Position, newStackpos int,
	oldPos model.Position, oldStackpos int, teleport bool) {
	player := c.player

	if creature == model.Creature(player) {
		if teleport {
			s.SendRemoveTileCreature(c, creature, oldPos, oldStackpos)
			s.SendMapDescription(c, newPos)
			return
		}

		var msg protocol.NetworkMessage
		if oldPos.Z == 7 && newPos.Z >= 8 {
			// Sinking below the surface hides the creature instead of
			// moving it.
			if oldStackpos < maxStackpos {
				removeTileThing(&msg, oldPos, oldStackpos)
			} else {
				msg.AddByte(0x6C)
				msg.AddU16(0xFFFF)
				msg.AddU32(creature.ID())
			}
		} else {
			msg.AddByte(0x6D)
			if oldStackpos < maxStackpos {
				msg.AddPosition(oldPos)
				msg.AddByte(byte(oldStackpos))
			} else {
				msg.AddU16(0xFFFF)
				msg.AddU32(creature.ID())
			}
			msg.AddPosition(newPos)
		}

		if newPos.Z > oldPos.Z {
			s.moveDownCreature(c, &msg, creature, newPos, oldPos)
		} else if newPos.Z < oldPos.Z {
			s.moveUpCreature(c, &msg, creature, newPos, oldPos)
		}

		if oldPos.Y > newPos.Y { // north, for old x
			msg.AddByte(0x65)
			s.mapDescription(c, &msg,
				int(oldPos.X)-maxClientViewportX,
				int(newPos.Y)-maxClientViewportY,
				int(newPos.Z),
				maxClientViewportX*2+2,
				1)
		} else if oldPos.Y < newPos.Y { // south, for old x
			msg.AddByte(0x67)
			s.mapDescription(c, &msg,
				int(oldPos.X)-maxClientViewportX,
				int(newPos.Y)+maxClientViewportY+1,
				int(newPos.Z),
				maxClientViewportX*2+2,
				1)
		}

		if oldPos.X < newPos.X { // east, with new y
			msg.AddByte(0x66)
			s.mapDescription(c, &msg,
				int(newPos.X)+maxClientViewportX+1,
				int(newPos.Y)-maxClientViewportY,
				int(newPos.Z),
				1,
				maxClientViewportY*2+2)
		} else if oldPos.X > newPos.X { // west, with new y
			msg.AddByte(0x68)
			s.mapDescription(c, &msg,
				int(newPos.X)-maxClientViewportX,
				int(newPos.Y)-maxClientViewportY,
				int(newPos.Z),
				1,
				maxClientViewportY*2+2)
		}
		c.WriteToOutputBuffer(&msg)
		return
	}

	canSeeOld := CanSeePosition(player, oldPos)
	canSeeNew := CanSeePosition(player, creature.Position())
	switch {
	case canSeeOld && canSeeNew:
		if teleport || (oldPos.Z == 7 && newPos.Z >= 8) {
			s.SendRemoveTileCreature(c, creature, oldPos, oldStackpos)
			s.SendAddCreature(c, creature, newPos, newStackpos, 0)
		} else {
			var msg protocol.NetworkMessage
			msg.AddByte(0x6D)
			if oldStackpos < maxStackpos {
				msg.AddPosition(oldPos)
				msg.AddByte(byte(oldStackpos))
			} else {
				msg.AddU16(0xFFFF)
				msg.AddU32(creature.ID())
			}
			msg.AddPosition(creature.Position())
			c.WriteToOutputBuffer(&msg)
		}
	case canSeeOld:
		s.SendRemoveTileCreature(c, creature, oldPos, oldStackpos)
	case canSeeNew:
		s.SendAddCreature(c, creature, newPos, newStackpos, 0)
	}
}

// SendMagicEffect plays an effect at a visible position.
func (s *Server) SendMagicEffect(c *Connection, pos model.Position, effect uint8) {
	if !CanSeePosition(c.player, pos) {
		return
	}

	var msg protocol.NetworkMessage
	msg.AddByte(0x83)
	msg.AddPosition(pos)
	msg.AddByte(magicEffectsCreateEffect)
	msg.AddByte(effect)
	msg.AddByte(magicEffectsEndLoop)
	c.WriteToOutputBuffer(&msg)
}

// SendDistanceShoot plays a projectile effect between two positions.
func (s *Server) SendDistanceShoot(c *Connection, from, to model.Position, effect uint8) {
	var msg protocol.NetworkMessage
	msg.AddByte(0x83)
	msg.AddPosition(from)
	msg.AddByte(magicEffectsCreateDistanceEffect)
	msg.AddByte(effect)
	msg.AddByte(byte(int8(int32(to.X) - int32(from.X))))
	msg.AddByte(byte(int8(int32(to.Y) - int32(from.Y))))
	msg.AddByte(magicEffectsEndLoop)
	c.WriteToOutputBuffer(&msg)
}

// SendCreatureHealth updates a creature's health bar.
func (s *Server) SendCreatureHealth(c *Connection, creature model.Creature) {
	var msg protocol.NetworkMessage
	msg.AddByte(0x8C)
	msg.AddU32(creature.ID())

	if creature.IsHealthHidden() {
		msg.AddByte(0x00)
	} else {
		msg.AddByte(model.HealthPercent(creature))
	}
	c.WriteToOutputBuffer(&msg)
}

// SendCreatureTurn rotates a visible creature in place.
func (s *Server) SendCreatureTurn(c *Connection, creature model.Creature, stackpos int) {
	if !CanSeeCreature(c.player, creature) {
		return
	}

	var msg protocol.NetworkMessage
	msg.AddByte(0x6B)
	if stackpos >= maxStackpos {
		msg.AddU16(0xFFFF)
		msg.AddU32(creature.ID())
	} else {
		msg.AddPosition(creature.Position())
		msg.AddByte(byte(stackpos))
	}

	msg.AddU16(0x63)
	msg.AddU32(creature.ID())
	msg.AddByte(byte(creature.Direction()))
	if c.player.CanWalkthrough(creature) {
		msg.AddByte(0x00)
	} else {
		msg.AddByte(0x01)
	}
	c.WriteToOutputBuffer(&msg)
}

// SendCreatureOutfit updates a visible creature's look.
func (s *Server) SendCreatureOutfit(c *Connection, creature model.Creature, outfit model.Outfit) {
	if !CanSeeCreature(c.player, creature) {
		return
	}

	var msg protocol.NetworkMessage
	msg.AddByte(0x8E)
	msg.AddU32(creature.ID())
	addOutfit(&msg, outfit)
	c.WriteToOutputBuffer(&msg)
}

// SendCreatureLight updates a visible creature's light source.
func (s *Server) SendCreatureLight(c *Connection, creature model.Creature) {
	if !CanSeeCreature(c.player, creature) {
		return
	}

	var msg protocol.NetworkMessage
	msg.AddByte(0x8D)
	msg.AddU32(creature.ID())

	light := creature.Light()
	if c.player.IsAccessPlayer() {
		msg.AddByte(0xFF)
	} else {
		msg.AddByte(light.Level)
	}
	msg.AddByte(light.Color)
	c.WriteToOutputBuffer(&msg)
}

// SendCreatureWalkthrough toggles whether the player may step through a
// visible creature.
func (s *Server) SendCreatureWalkthrough(c *Connection, creature model.Creature, walkthrough bool) {
	if !CanSeeCreature(c.player, creature) {
		return
	}

	var msg protocol.NetworkMessage
	msg.AddByte(0x92)
	msg.AddU32(creature.ID())
	if walkthrough {
		msg.AddByte(0x00)
	} else {
		msg.AddByte(0x01)
	}
	c.WriteToOutputBuffer(&msg)
}

// SendCreatureShield updates a visible creature's party shield.
func (s *Server) SendCreatureShield(c *Connection, creature model.Creature) {
	if !CanSeeCreature(c.player, creature) {
		return
	}

	var msg protocol.NetworkMessage
	msg.AddByte(0x91)
	msg.AddU32(creature.ID())
	msg.AddByte(c.player.PartyShield(creature.AsPlayer()))
	c.WriteToOutputBuffer(&msg)
}

// SendCreatureSkull updates a visible creature's skull; skulls only exist on
// PvP worlds.
func (s *Server) SendCreatureSkull(c *Connection, creature model.Creature) {
	if s.eng.WorldType() != game.WorldTypePvP {
		return
	}
	if !CanSeeCreature(c.player, creature) {
		return
	}

	var msg protocol.NetworkMessage
	msg.AddByte(0x90)
	msg.AddU32(creature.ID())
	msg.AddByte(c.player.SkullClient(creature))
	c.WriteToOutputBuffer(&msg)
}

// SendCreatureSquare flashes a colored square around a visible creature.
func (s *Server) SendCreatureSquare(c *Connection, creature model.Creature, color uint8) {
	if !CanSeeCreature(c.player, creature) {
		return
	}

	var msg protocol.NetworkMessage
	msg.AddByte(0x93)
	msg.AddU32(creature.ID())
	msg.AddByte(0x01)
	msg.AddByte(color)
	c.WriteToOutputBuffer(&msg)
}

// SendUpdateCreatureIcons refreshes a visible creature's status icons.
func (s *Server) SendUpdateCreatureIcons(c *Connection, creature model.Creature) {
	if !CanSeePosition(c.player, creature.Position()) {
		return
	}

	var msg protocol.NetworkMessage
	msg.AddByte(0x8B)
	msg.AddU32(creature.ID())
	msg.AddByte(14) // event: player icons
	addCreatureIcons(&msg, creature)
	c.WriteToOutputBuffer(&msg)
}
