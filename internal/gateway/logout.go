package gateway

// Logout winds a session down from the game side. Unforced logouts honor the
// no-logout tile flag, the in-fight lock, and the scriptable logout hook;
// forced ones skip straight to the farewell.
func (s *Server) Logout(c *Connection, displayEffect, forced bool) {
	player := c.player
	if player == nil {
		return
	}

	if !player.IsRemoved() {
		if !forced {
			if !player.IsAccessPlayer() {
				tile := s.eng.Tile(player.Position())
				if tile != nil && tile.NoLogout {
					s.SendTextMessage(c, TextMessage{
						Type: MessageStatusSmall,
						Text: "You may not logout here.",
					})
					return
				}

				if tile != nil && !tile.ProtectionZone && player.InFight {
					s.SendTextMessage(c, TextMessage{
						Type: MessageStatusSmall,
						Text: "You may not logout during or immediately after a fight!",
					})
					return
				}
			}

			// The hook reports the refusal itself.
			if !s.ops.OnLogout(player) {
				return
			}
		}

		if displayEffect && !player.Dead && !player.IsInGhostMode() {
			s.eng.AddMagicEffect(player.Position(), magicEffectPoff)
		}
	}

	if forced {
		s.SendSessionEnd(c, sessionEndForceClose)
	} else {
		s.SendSessionEnd(c, sessionEndLogout)
	}
	Detach(c)

	s.eng.RemoveCreature(player)
}

// magicEffectPoff is the little smoke puff played on logout.
const magicEffectPoff = 3
