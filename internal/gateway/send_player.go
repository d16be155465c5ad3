package gateway

import (
	"github.com/fusion32/forgottenserver/internal/model"
	"github.com/fusion32/forgottenserver/internal/protocol"
)

// Step speed scale: the client works in half speed units.
const (
	speedA = 857.36
	speedB = 261.29
	speedC = -4795.01
)

// SendStats pushes the full player status pane.
func (s *Server) SendStats(c *Connection) {
	player := c.player

	var msg protocol.NetworkMessage
	msg.AddByte(0xA0)

	msg.AddU32(uint32(max32(player.Health(), 0)))
	msg.AddU32(uint32(max32(player.MaxHealth(), 0)))

	if player.HasFlag(model.FlagInfiniteCapacity) {
		msg.AddU32(1000000)
	} else {
		msg.AddU32(player.FreeCapacity)
	}
	msg.AddU64(player.Experience)

	msg.AddU16(player.Level)
	msg.AddByte(player.LevelPercent)

	msg.AddU16(player.ExpDisplay)
	msg.AddU16(player.LowLevelBonusExp)
	msg.AddU16(0) // store exp bonus
	msg.AddU16(player.StaminaBonusExp)

	msg.AddU32(uint32(max32(player.Mana, 0)))
	msg.AddU32(uint32(max32(player.MaxMana, 0)))

	msg.AddByte(player.Soul)
	msg.AddU16(player.StaminaMinutes)
	msg.AddU16(player.BaseSpeed / 2)

	msg.AddU16(player.RegenerationSeconds)
	msg.AddU16(player.OfflineTrainingMinutes)

	msg.AddU16(0)    // xp boost time (seconds)
	msg.AddByte(0x00) // enables exp boost in the store

	msg.AddU32(player.ManaShield)
	msg.AddU32(player.MaxManaShield)

	c.WriteToOutputBuffer(&msg)
}

// SendExperienceTracker reports a raw and final experience delta.
func (s *Server) SendExperienceTracker(c *Connection, rawExp, finalExp int64) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xAF)
	msg.AddU64(uint64(rawExp))
	msg.AddU64(uint64(finalExp))
	c.WriteToOutputBuffer(&msg)
}

// SendClientFeatures configures client-side behavior right after login.
func (s *Server) SendClientFeatures(c *Connection) {
	player := c.player

	var msg protocol.NetworkMessage
	msg.AddByte(0x17)

	msg.AddU32(player.ID())
	msg.AddU16(50) // beat duration

	msg.AddDouble(speedA, 3)
	msg.AddDouble(speedB, 3)
	msg.AddDouble(speedC, 3)

	if player.AccountType >= model.AccountTypeTutor {
		msg.AddByte(0x01) // can report bugs
	} else {
		msg.AddByte(0x00)
	}

	msg.AddByte(0x00) // can change pvp framing option
	msg.AddByte(0x00) // expert mode button enabled

	msg.AddU16(0x00) // store images url
	msg.AddU16(25)   // premium coin package size

	msg.AddByte(0x00) // exiva button enabled
	msg.AddByte(0x00) // tournament button

	c.WriteToOutputBuffer(&msg)
}

// SendBasicData carries premium status, vocation, and the spell unlock list.
func (s *Server) SendBasicData(c *Connection) {
	player := c.player

	var msg protocol.NetworkMessage
	msg.AddByte(0x9F)
	if player.IsPremium() {
		msg.AddByte(1)
		if s.cfg.FreePremium {
			msg.AddU32(0)
		} else {
			msg.AddU32(uint32(player.PremiumEnd))
		}
	} else {
		msg.AddByte(0)
		msg.AddU32(0)
	}

	msg.AddByte(player.Vocation.ClientID)
	msg.AddByte(0x00) // prey system enabled

	// Unlock spells on the action bar.
	msg.AddU16(0xFF)
	for spellID := 0; spellID < 0xFF; spellID++ {
		msg.AddU16(uint16(spellID))
	}

	if player.Vocation.MagicShield {
		msg.AddByte(0x01)
	} else {
		msg.AddByte(0x00)
	}
	c.WriteToOutputBuffer(&msg)
}

// SendSkills pushes magic level, the seven standard skills, special skills,
// and capacity.
func (s *Server) SendSkills(c *Connection) {
	player := c.player

	var msg protocol.NetworkMessage
	msg.AddByte(0xA1)
	msg.AddU16(player.Magic.Level)
	msg.AddU16(player.Magic.Base)
	msg.AddU16(player.Magic.Base) // base + loyalty bonus
	msg.AddU16(uint16(player.Magic.Percent))

	for i := 0; i < model.SkillCount; i++ {
		skill := player.Skills[i]
		msg.AddU16(skill.Level)
		msg.AddU16(skill.Base)
		msg.AddU16(skill.Base) // base + loyalty bonus
		msg.AddU16(uint16(skill.Percent))
	}

	for i := 0; i < model.SpecialSkillCount; i++ {
		msg.AddU16(player.SpecialSkills[i]) // base + bonus
		msg.AddU16(0)                       // base
	}

	msg.AddByte(0) // element magic level count

	// fatal, dodge, momentum
	for i := 0; i < 3; i++ {
		msg.AddU16(0)
		msg.AddU16(0)
	}

	capacity := player.Capacity
	if player.HasFlag(model.FlagInfiniteCapacity) {
		capacity = 1000000
	}
	msg.AddU32(capacity) // base + bonus capacity
	msg.AddU32(capacity) // base capacity
	c.WriteToOutputBuffer(&msg)
}

// SendFightModes reflects the combat stance trio back to the client.
func (s *Server) SendFightModes(c *Connection) {
	player := c.player
	var msg protocol.NetworkMessage
	msg.AddByte(0xA7)
	msg.AddByte(player.Fight.FightMode)
	msg.AddByte(player.Fight.ChaseMode)
	msg.AddByte(player.Fight.SecureMode)
	msg.AddByte(pvpModeDove)
	c.WriteToOutputBuffer(&msg)
}

// SendIcons pushes the player's condition icon bitmask.
func (s *Server) SendIcons(c *Connection, icons uint32) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xA2)
	msg.AddU32(icons)
	c.WriteToOutputBuffer(&msg)
}

// SendCancelTarget clears the client's attack/follow target.
func (s *Server) SendCancelTarget(c *Connection) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xA3)
	msg.AddU32(0x00)
	c.WriteToOutputBuffer(&msg)
}

// SendChangeSpeed reports a creature's new step speed.
func (s *Server) SendChangeSpeed(c *Connection, creature model.Creature, speed uint16) {
	var msg protocol.NetworkMessage
	msg.AddByte(0x8F)
	msg.AddU32(creature.ID())
	msg.AddU16(creature.StepSpeed() / 2)
	msg.AddU16(speed / 2)
	c.WriteToOutputBuffer(&msg)
}

// SendCancelWalk snaps the client back to its server-side facing.
func (s *Server) SendCancelWalk(c *Connection) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xB5)
	msg.AddByte(byte(c.player.Direction()))
	c.WriteToOutputBuffer(&msg)
}

// SendCombatAnalyzer feeds the damage analyzer panel.
func (s *Server) SendCombatAnalyzer(c *Connection, damageType byte, amount uint32, impact byte, target string) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xCC)
	msg.AddByte(impact)
	msg.AddU32(amount)

	switch impact {
	case CombatImpactReceived:
		msg.AddByte(damageType)
		msg.AddString(target)
	case CombatImpactDealt:
		msg.AddByte(damageType)
	}
	c.WriteToOutputBuffer(&msg)
}

// SendSpellCooldown starts a spell cooldown timer client-side.
func (s *Server) SendSpellCooldown(c *Connection, spellID uint8, cooldownMs uint32) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xA4)
	msg.AddU16(uint16(spellID))
	msg.AddU32(cooldownMs)
	c.WriteToOutputBuffer(&msg)
}

// SendSpellGroupCooldown starts a spell group cooldown timer.
func (s *Server) SendSpellGroupCooldown(c *Connection, groupID uint8, cooldownMs uint32) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xA5)
	msg.AddByte(groupID)
	msg.AddU32(cooldownMs)
	c.WriteToOutputBuffer(&msg)
}

// SendUseItemCooldown starts the shared use-item cooldown.
func (s *Server) SendUseItemCooldown(c *Connection, cooldownMs uint32) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xA6)
	msg.AddU32(cooldownMs)
	c.WriteToOutputBuffer(&msg)
}

// SendSupplyUsed records a consumed supply item in the analyzer.
func (s *Server) SendSupplyUsed(c *Connection, clientID uint16) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xCE)
	msg.AddU16(clientID)
	c.WriteToOutputBuffer(&msg)
}

func max32(v, floor int32) int32 {
	if v < floor {
		return floor
	}
	return v
}
