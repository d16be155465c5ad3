package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fusion32/forgottenserver/internal/game"
	"github.com/fusion32/forgottenserver/internal/model"
)

// performLogin runs the admission sequence on the game thread. Database
// access happens inline, as it always has in this family of servers; every
// refusal is surfaced as a typed login packet followed by a graceful close.
func (s *Server) performLogin(c *Connection, sessionToken, characterName string) {
	ctx := context.Background()

	if sessionToken == "" || characterName == "" {
		s.SendLoginError(c, "Malformed session data.")
		return
	}

	if c.terminalVersion < clientVersionMin || c.terminalVersion > clientVersionMax {
		s.SendLoginError(c, fmt.Sprintf("Only clients with protocol %s allowed!", clientVersionStr))
		return
	}

	switch s.eng.State() {
	case game.StateStartup:
		s.SendLoginError(c, "Gameworld is starting up. Please wait.")
		return
	case game.StateMaintain:
		s.SendLoginError(c, "Gameworld is under maintenance. Please re-connect in a while.")
		return
	}

	if banInfo, err := s.bans.IPBanInfo(ctx, c.peer); err != nil {
		slog.Error("ip ban lookup failed", "remote", c.peer, "error", err)
		s.SendLoginError(c, "Internal error, please try again later.")
		return
	} else if banInfo != nil {
		s.SendLoginError(c, fmt.Sprintf(
			"Your IP has been banned until %s by %s.\n\nReason specified:\n%s",
			formatDateShort(banInfo.ExpiresAt), banInfo.BannedBy, banInfo.Reason))
		return
	}

	session, err := s.sessions.LoadSession(ctx, sessionToken, characterName)
	if err != nil {
		slog.Error("session lookup failed", "character", characterName, "error", err)
		s.SendLoginError(c, "Internal error, please try again later.")
		return
	}
	if session == nil || session.AccountID == 0 {
		s.SendLoginError(c, "Account name or password is not correct.")
		return
	}

	if session.BoundIP != c.peer {
		s.SendLoginError(c, "Your game session is already locked to a"+
			" different IP. Please log in again.")
		return
	}

	if found := s.eng.PlayerByGUID(session.CharacterID); found != nil && !s.cfg.AllowClones {
		// The reconnect-kick branch is reserved; without it a live character
		// simply refuses a second session.
		s.SendLoginError(c, "You are already logged in.")
		return
	}

	player := &model.Player{}
	player.CreatureID = s.eng.AssignCreatureID()
	player.GUID = session.CharacterID
	player.Session = c
	c.player = player

	if found, err := s.sessions.PreloadPlayer(ctx, player); err != nil || !found {
		if err != nil {
			slog.Error("player preload failed", "guid", player.GUID, "error", err)
		}
		s.SendLoginError(c, "Your character could not be loaded.")
		return
	}

	if locked, err := s.bans.IsPlayerNamelocked(ctx, player.GUID); err != nil {
		slog.Error("namelock lookup failed", "guid", player.GUID, "error", err)
		s.SendLoginError(c, "Internal error, please try again later.")
		return
	} else if locked {
		s.SendLoginError(c, "Your character has been namelocked.")
		return
	}

	if s.eng.State() == game.StateClosing && !player.HasFlag(model.FlagCanAlwaysLogin) {
		s.SendLoginError(c, "The game is just going down.\nPlease try again later.")
		return
	}

	if s.eng.State() == game.StateClosed && !player.HasFlag(model.FlagCanAlwaysLogin) {
		s.SendLoginError(c, "Server is currently closed.\nPlease try again later.")
		return
	}

	if s.cfg.OnePlayerPerAccount &&
		player.AccountType < model.AccountTypeGamemaster &&
		s.eng.PlayerByAccount(player.AccountID) != nil {
		s.SendLoginError(c, "You may only login with one character\nof your account at the same time.")
		return
	}

	if !player.HasFlag(model.FlagCannotBeBanned) {
		banInfo, err := s.bans.AccountBanInfo(ctx, session.AccountID)
		if err != nil {
			slog.Error("account ban lookup failed", "account", session.AccountID, "error", err)
			s.SendLoginError(c, "Internal error, please try again later.")
			return
		}
		if banInfo != nil {
			if banInfo.ExpiresAt > 0 {
				s.SendLoginError(c, fmt.Sprintf(
					"Your account has been banned until %s by %s.\n\nReason specified:\n%s",
					formatDateShort(banInfo.ExpiresAt), banInfo.BannedBy, banInfo.Reason))
			} else {
				s.SendLoginError(c, fmt.Sprintf(
					"Your account has been permanently banned by %s.\n\nReason specified:\n%s",
					banInfo.BannedBy, banInfo.Reason))
			}
			return
		}
	}

	if waitSlot, retrySeconds := s.waitList.ClientSlot(
		player, s.eng.PlayersOnline(), int(s.cfg.MaxPlayers), time.Now()); waitSlot > 0 {
		s.SendLoginWaitList(c, waitSlot, retrySeconds)
		return
	}

	if found, err := s.sessions.LoadPlayerByID(ctx, player, player.GUID); err != nil || !found {
		if err != nil {
			slog.Error("player load failed", "guid", player.GUID, "error", err)
		}
		s.SendLoginError(c, "Your character could not be loaded.")
		return
	}

	if !s.eng.PlaceCreature(player, player.LoginPosition, false) {
		if !s.eng.PlaceCreature(player, player.TemplePosition, true) {
			s.SendLoginError(c, "Temple position is wrong. Contact the administrator.")
			return
		}
	}

	if c.terminalType >= terminalOTClientLinux {
		s.SendEnableExtendedOpcode(c)
		s.eng.RegisterCreatureEvent(player, "ExtendedOpcode")
	}

	now := time.Now().Unix()
	if now <= player.LastLoginSaved {
		now = player.LastLoginSaved + 1
	}
	player.LastLoginSaved = now
	player.LastIP = c.peer
	if err := s.sessions.StampLogin(ctx, player.GUID, now, c.peer); err != nil {
		slog.Warn("stamping last login failed", "guid", player.GUID, "error", err)
	}

	c.resolveLogin(stateOK)
	slog.Info("player logged in", "name", player.Name(), "remote", c.peer,
		"terminal", c.terminalType, "version", c.terminalVersion)
}

// formatDateShort renders a unix timestamp the way ban texts expect.
func formatDateShort(ts int64) string {
	return time.Unix(ts, 0).Format("02 Jan 2006 15:04")
}
