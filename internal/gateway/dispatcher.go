package gateway

import (
	"github.com/fusion32/forgottenserver/internal/game"
	"github.com/fusion32/forgottenserver/internal/model"
	"github.com/fusion32/forgottenserver/internal/protocol"
)

// parsePacket dispatches one inbound command on the game thread. The first
// payload byte keys a typed parser that drains the rest of the buffer and
// invokes the matching game operation. An overrun parse detaches the
// connection after the parser returns; the close never happens mid-parse.
func (s *Server) parsePacket(c *Connection, data []byte) {
	var input protocol.NetworkMessage
	input.AddBytes(data)
	if !input.CanRead(1) || input.IsOverrun() || s.eng.State() == game.StateShutdown {
		return
	}

	command := input.GetByte()

	player := c.player
	if player == nil || player.Dead || player.IsRemoved() {
		if player == nil || command == 0x0F {
			Detach(c)
		} else if command == 0x14 {
			s.Logout(c, true, false)
		}
		return
	}

	switch command {
	case 0x14:
		s.Logout(c, true, false)
	case 0x1D:
		s.ops.ReceivePingBack(player)
	case 0x1E:
		s.ops.ReceivePing(player)
	case 0x32:
		s.parseExtendedOpcode(c, &input)
	case 0x64:
		s.parseAutoWalk(c, &input)
	case 0x65:
		s.ops.Walk(player, model.DirectionNorth)
	case 0x66:
		s.ops.Walk(player, model.DirectionEast)
	case 0x67:
		s.ops.Walk(player, model.DirectionSouth)
	case 0x68:
		s.ops.Walk(player, model.DirectionWest)
	case 0x69:
		s.ops.StopAutoWalk(player)
	case 0x6A:
		s.ops.Walk(player, model.DirectionNorthEast)
	case 0x6B:
		s.ops.Walk(player, model.DirectionSouthEast)
	case 0x6C:
		s.ops.Walk(player, model.DirectionSouthWest)
	case 0x6D:
		s.ops.Walk(player, model.DirectionNorthWest)
	case 0x6F:
		s.ops.Turn(player, model.DirectionNorth)
	case 0x70:
		s.ops.Turn(player, model.DirectionEast)
	case 0x71:
		s.ops.Turn(player, model.DirectionSouth)
	case 0x72:
		s.ops.Turn(player, model.DirectionWest)
	case 0x77:
		s.parseEquipObject(c, &input)
	case 0x78:
		s.parseThrow(c, &input)
	case 0x79:
		s.parseLookInShop(c, &input)
	case 0x7A:
		s.parsePurchase(c, &input)
	case 0x7B:
		s.parseSale(c, &input)
	case 0x7C:
		s.ops.CloseShop(player)
	case 0x7D:
		s.parseRequestTrade(c, &input)
	case 0x7E:
		s.parseLookInTrade(c, &input)
	case 0x7F:
		s.ops.AcceptTrade(player)
	case 0x80:
		s.ops.CloseTrade(player)
	case 0x82:
		s.parseUseItem(c, &input)
	case 0x83:
		s.parseUseItemEx(c, &input)
	case 0x84:
		s.parseUseWithCreature(c, &input)
	case 0x85:
		s.parseRotateItem(c, &input)
	case 0x86:
		s.parseEditPodiumRequest(c, &input)
	case 0x87:
		s.ops.CloseContainer(player, input.GetByte())
	case 0x88:
		s.ops.MoveUpContainer(player, input.GetByte())
	case 0x89:
		s.parseTextWindow(c, &input)
	case 0x8A:
		s.parseHouseWindow(c, &input)
	case 0x8B:
		s.parseWrapItem(c, &input)
	case 0x8C:
		s.parseLookAt(c, &input)
	case 0x8D:
		s.ops.LookInBattleList(player, input.GetU32())
	case 0x8E:
		// join aggression
	case 0x8F:
		s.parseQuickLoot(c, &input)
	case 0x96:
		s.parseSay(c, &input)
	case 0x97:
		s.ops.RequestChannels(player)
	case 0x98:
		s.ops.OpenChannel(player, input.GetU16())
	case 0x99:
		s.ops.CloseChannel(player, input.GetU16())
	case 0x9A:
		s.ops.OpenPrivateChannel(player, input.GetString())
	case 0x9E:
		s.ops.CloseNpcChannel(player)
	case 0xA0:
		s.parseFightModes(c, &input)
	case 0xA1:
		s.parseAttack(c, &input)
	case 0xA2:
		s.parseFollow(c, &input)
	case 0xA3:
		s.ops.InviteToParty(player, input.GetU32())
	case 0xA4:
		s.ops.JoinParty(player, input.GetU32())
	case 0xA5:
		s.ops.RevokePartyInvitation(player, input.GetU32())
	case 0xA6:
		s.ops.PassPartyLeadership(player, input.GetU32())
	case 0xA7:
		s.ops.LeaveParty(player)
	case 0xA8:
		s.ops.EnableSharedPartyExperience(player, input.GetByte() == 1)
	case 0xAA:
		s.ops.CreatePrivateChannel(player)
	case 0xAB:
		s.ops.ChannelInvite(player, input.GetString())
	case 0xAC:
		s.ops.ChannelExclude(player, input.GetString())
	case 0xBE:
		s.ops.CancelAttackAndFollow(player)
	case 0xC9:
		// update tile
	case 0xCA:
		s.ops.UpdateContainer(player, input.GetByte())
	case 0xCB:
		s.ops.BrowseField(player, input.GetPosition())
	case 0xCC:
		s.parseSeekInContainer(c, &input)
	case 0xD2:
		s.ops.RequestOutfit(player)
	case 0xD3:
		s.parseSetOutfit(c, &input)
	case 0xDC:
		s.ops.AddVip(player, input.GetString())
	case 0xDD:
		s.ops.RemoveVip(player, input.GetU32())
	case 0xDE:
		s.parseEditVip(c, &input)
	case 0xE7:
		// thank you
	case 0xE8:
		s.parseDebugAssert(c, &input)
	case 0xF2:
		s.parseRuleViolationReport(c, &input)
	case 0xF3:
		// get object info
	case 0xF4:
		s.ops.LeaveMarket(player)
	case 0xF5:
		s.parseMarketBrowse(c, &input)
	case 0xF6:
		s.parseMarketCreateOffer(c, &input)
	case 0xF7:
		s.parseMarketCancelOffer(c, &input)
	case 0xF8:
		s.parseMarketAcceptOffer(c, &input)
	case 0xF9:
		s.parseModalWindowAnswer(c, &input)
	default:
		s.ops.UnhandledCommand(player, command)
	}

	if input.IsOverrun() {
		Detach(c)
	}
}

func (s *Server) parseExtendedOpcode(c *Connection, input *protocol.NetworkMessage) {
	opcode := input.GetByte()
	buffer := input.GetString()
	s.ops.ExtendedOpcode(c.player, opcode, buffer)
}

func (s *Server) parseAutoWalk(c *Connection, input *protocol.NetworkMessage) {
	numDirections := int(input.GetByte())
	if !input.CanRead(numDirections) {
		s.SendCancelWalk(c)
		return
	}

	path := make([]model.Direction, 0, numDirections)
	for i := 0; i < numDirections; i++ {
		switch input.GetByte() {
		case 1:
			path = append(path, model.DirectionEast)
		case 2:
			path = append(path, model.DirectionNorthEast)
		case 3:
			path = append(path, model.DirectionNorth)
		case 4:
			path = append(path, model.DirectionNorthWest)
		case 5:
			path = append(path, model.DirectionWest)
		case 6:
			path = append(path, model.DirectionSouthWest)
		case 7:
			path = append(path, model.DirectionSouth)
		case 8:
			path = append(path, model.DirectionSouthEast)
		}
	}

	if len(path) > 0 {
		for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
			path[i], path[j] = path[j], path[i]
		}
		s.ops.AutoWalk(c.player, path)
	}
}

func (s *Server) parseEquipObject(c *Connection, input *protocol.NetworkMessage) {
	spriteID := input.GetU16()
	input.GetByte() // smart mode
	s.ops.EquipObject(c.player, spriteID)
}

func (s *Server) parseThrow(c *Connection, input *protocol.NetworkMessage) {
	fromPos := input.GetPosition()
	spriteID := input.GetU16()
	fromStackpos := input.GetByte()
	toPos := input.GetPosition()
	count := input.GetByte()

	if toPos != fromPos {
		s.ops.MoveThing(c.player, fromPos, spriteID, fromStackpos, toPos, count)
	}
}

func (s *Server) parseLookInShop(c *Connection, input *protocol.NetworkMessage) {
	id := input.GetU16()
	count := input.GetByte()
	s.ops.LookInShop(c.player, id, count)
}

func (s *Server) parsePurchase(c *Connection, input *protocol.NetworkMessage) {
	id := input.GetU16()
	count := input.GetByte()
	amount := input.GetU16()
	ignoreCap := input.GetByte() != 0
	inBackpacks := input.GetByte() != 0
	s.ops.Purchase(c.player, id, count, amount, ignoreCap, inBackpacks)
}

func (s *Server) parseSale(c *Connection, input *protocol.NetworkMessage) {
	id := input.GetU16()
	count := input.GetByte()
	amount := input.GetU16()
	ignoreEquipped := input.GetByte() != 0
	s.ops.Sell(c.player, id, count, amount, ignoreEquipped)
}

func (s *Server) parseRequestTrade(c *Connection, input *protocol.NetworkMessage) {
	pos := input.GetPosition()
	spriteID := input.GetU16()
	stackpos := input.GetByte()
	playerID := input.GetU32()
	s.ops.RequestTrade(c.player, pos, stackpos, playerID, spriteID)
}

func (s *Server) parseLookInTrade(c *Connection, input *protocol.NetworkMessage) {
	counterOffer := input.GetByte() == 0x01
	index := input.GetByte()
	s.ops.LookInTrade(c.player, counterOffer, index)
}

func (s *Server) parseUseItem(c *Connection, input *protocol.NetworkMessage) {
	pos := input.GetPosition()
	spriteID := input.GetU16()
	stackpos := input.GetByte()
	index := input.GetByte()
	s.ops.UseItem(c.player, pos, stackpos, index, spriteID)
}

func (s *Server) parseUseItemEx(c *Connection, input *protocol.NetworkMessage) {
	fromPos := input.GetPosition()
	fromSpriteID := input.GetU16()
	fromStackpos := input.GetByte()
	toPos := input.GetPosition()
	toSpriteID := input.GetU16()
	toStackpos := input.GetByte()
	s.ops.UseItemEx(c.player, fromPos, fromStackpos, fromSpriteID, toPos, toStackpos, toSpriteID)
}

func (s *Server) parseUseWithCreature(c *Connection, input *protocol.NetworkMessage) {
	fromPos := input.GetPosition()
	spriteID := input.GetU16()
	fromStackpos := input.GetByte()
	creatureID := input.GetU32()
	s.ops.UseWithCreature(c.player, fromPos, fromStackpos, creatureID, spriteID)
}

func (s *Server) parseRotateItem(c *Connection, input *protocol.NetworkMessage) {
	pos := input.GetPosition()
	spriteID := input.GetU16()
	stackpos := input.GetByte()
	s.ops.RotateItem(c.player, pos, stackpos, spriteID)
}

func (s *Server) parseEditPodiumRequest(c *Connection, input *protocol.NetworkMessage) {
	pos := input.GetPosition()
	spriteID := input.GetU16()
	stackpos := input.GetByte()
	s.ops.RequestEditPodium(c.player, pos, stackpos, spriteID)
}

func (s *Server) parseTextWindow(c *Connection, input *protocol.NetworkMessage) {
	windowTextID := input.GetU32()
	newText := input.GetString()
	s.ops.WriteItem(c.player, windowTextID, newText)
}

func (s *Server) parseHouseWindow(c *Connection, input *protocol.NetworkMessage) {
	doorID := input.GetByte()
	windowTextID := input.GetU32()
	text := input.GetString()
	s.ops.UpdateHouseWindow(c.player, doorID, windowTextID, text)
}

func (s *Server) parseWrapItem(c *Connection, input *protocol.NetworkMessage) {
	pos := input.GetPosition()
	spriteID := input.GetU16()
	stackpos := input.GetByte()
	s.ops.WrapItem(c.player, pos, stackpos, spriteID)
}

func (s *Server) parseLookAt(c *Connection, input *protocol.NetworkMessage) {
	pos := input.GetPosition()
	input.GetU16() // sprite id
	stackpos := input.GetByte()
	s.ops.LookAt(c.player, pos, stackpos)
}

func (s *Server) parseQuickLoot(c *Connection, input *protocol.NetworkMessage) {
	pos := input.GetPosition()
	spriteID := input.GetU16()
	stackpos := input.GetByte()
	allCorpses := input.GetByte() != 0
	s.ops.QuickLoot(c.player, pos, stackpos, spriteID, allCorpses)
}

func (s *Server) parseSay(c *Connection, input *protocol.NetworkMessage) {
	var receiver string
	var channelID uint16

	talkType := input.GetByte()
	switch talkType {
	case TalkTypePrivateTo, TalkTypePrivateRedTo:
		receiver = input.GetString()
	case TalkTypeChannelY, TalkTypeChannelR1:
		channelID = input.GetU16()
	}

	text := input.GetString()
	if len(text) > 255 {
		return
	}

	s.ops.Say(c.player, channelID, talkType, receiver, text)
}

func (s *Server) parseFightModes(c *Connection, input *protocol.NetworkMessage) {
	rawFightMode := input.GetByte()  // 1 - offensive, 2 - balanced, 3 - defensive
	rawChaseMode := input.GetByte()  // 0 - stand while fighting, 1 - chase opponent
	rawSecureMode := input.GetByte() // 0 - can't attack unmarked, 1 - can attack unmarked

	s.ops.SetFightModes(c.player, rawFightMode, rawChaseMode != 0, rawSecureMode != 0)
}

func (s *Server) parseAttack(c *Connection, input *protocol.NetworkMessage) {
	creatureID := input.GetU32()
	input.GetU32() // target sequence
	s.ops.Attack(c.player, creatureID)
}

func (s *Server) parseFollow(c *Connection, input *protocol.NetworkMessage) {
	creatureID := input.GetU32()
	input.GetU32() // target sequence
	s.ops.Follow(c.player, creatureID)
}

func (s *Server) parseSeekInContainer(c *Connection, input *protocol.NetworkMessage) {
	containerID := input.GetByte()
	index := input.GetU16()
	s.ops.SeekInContainer(c.player, containerID, index)
}

func (s *Server) parseSetOutfit(c *Connection, input *protocol.NetworkMessage) {
	outfitType := input.GetByte()

	var newOutfit model.Outfit
	newOutfit.LookType = input.GetU16()
	newOutfit.Head = input.GetByte()
	newOutfit.Body = input.GetByte()
	newOutfit.Legs = input.GetByte()
	newOutfit.Feet = input.GetByte()
	newOutfit.Addons = input.GetByte()

	switch outfitType {
	case 0: // outfit window
		newOutfit.Mount = input.GetU16()
		if newOutfit.Mount != 0 {
			newOutfit.MountHead = input.GetByte()
			newOutfit.MountBody = input.GetByte()
			newOutfit.MountLegs = input.GetByte()
			newOutfit.MountFeet = input.GetByte()
		} else {
			input.GetU32()

			// Keep the stored mount colors so dismounting doesn't reset them.
			current := c.player.Outfit()
			newOutfit.MountHead = current.MountHead
			newOutfit.MountBody = current.MountBody
			newOutfit.MountLegs = current.MountLegs
			newOutfit.MountFeet = current.MountFeet
		}

		input.GetU16() // familiar looktype
		randomizeMount := input.GetByte() == 0x01
		s.ops.ChangeOutfit(c.player, newOutfit, randomizeMount)

	case 1: // store "try outfit" window
		newOutfit.Mount = 0
		newOutfit.MountHead = input.GetByte()
		newOutfit.MountBody = input.GetByte()
		newOutfit.MountLegs = input.GetByte()
		newOutfit.MountFeet = input.GetByte()

	case 2: // podium interaction
		pos := input.GetPosition()
		spriteID := input.GetU16()
		stackpos := input.GetByte()
		newOutfit.Mount = input.GetU16()
		newOutfit.MountHead = input.GetByte()
		newOutfit.MountBody = input.GetByte()
		newOutfit.MountLegs = input.GetByte()
		newOutfit.MountFeet = input.GetByte()
		direction := model.Direction(input.GetByte())
		visible := input.GetByte() == 1

		s.ops.EditPodium(c.player, newOutfit, pos, stackpos, spriteID, visible, direction)
	}
}

func (s *Server) parseEditVip(c *Connection, input *protocol.NetworkMessage) {
	guid := input.GetU32()
	description := input.GetString()
	icon := input.GetU32()
	if icon > 10 {
		icon = 10 // highest client icon
	}
	notify := input.GetByte() != 0
	s.ops.EditVip(c.player, guid, description, icon, notify)
}

func (s *Server) parseDebugAssert(c *Connection, input *protocol.NetworkMessage) {
	if c.debugAssertReceived {
		return
	}

	c.debugAssertReceived = true
	assertLine := input.GetString()
	date := input.GetString()
	description := input.GetString()
	comment := input.GetString()
	s.ops.DebugAssert(c.player, assertLine, date, description, comment)
}

// Rule violation report types.
const (
	reportTypeName      = 0
	reportTypeStatement = 1
)

func (s *Server) parseRuleViolationReport(c *Connection, input *protocol.NetworkMessage) {
	reportType := input.GetByte()
	reportReason := input.GetByte()
	targetName := input.GetString()
	comment := input.GetString()
	var translation string
	if reportType == reportTypeName {
		translation = input.GetString()
	} else if reportType == reportTypeStatement {
		translation = input.GetString()
		input.GetU32() // statement id; statements aren't logged
	}

	s.ops.ReportRuleViolation(c.player, targetName, reportType, reportReason, comment, translation)
}

func (s *Server) parseMarketBrowse(c *Connection, input *protocol.NetworkMessage) {
	browseID := input.GetByte()
	switch browseID {
	case MarketRequestOwnOffers:
		s.ops.BrowseMarketOwnOffers(c.player)
	case MarketRequestOwnHistory:
		s.ops.BrowseMarketOwnHistory(c.player)
	default:
		spriteID := input.GetU16()
		s.ops.BrowseMarket(c.player, spriteID)
	}
}

func (s *Server) parseMarketCreateOffer(c *Connection, input *protocol.NetworkMessage) {
	offerType := input.GetByte()
	spriteID := input.GetU16()

	// Items with a classification carry a tier byte.
	if s.itemHasClassification(spriteID) {
		input.GetByte()
	}

	amount := input.GetU16()
	price := input.GetU64()
	anonymous := input.GetByte() != 0
	s.ops.CreateMarketOffer(c.player, offerType, spriteID, amount, price, anonymous)
	s.SendStoreBalance(c)
}

// itemHasClassification consults the item catalog for the tier-byte rule.
// Without a catalog hook the byte is absent, matching unclassified items.
func (s *Server) itemHasClassification(spriteID uint16) bool {
	if s.itemClassifier == nil {
		return false
	}
	return s.itemClassifier(spriteID)
}

func (s *Server) parseMarketCancelOffer(c *Connection, input *protocol.NetworkMessage) {
	timestamp := input.GetU32()
	counter := input.GetU16()
	s.ops.CancelMarketOffer(c.player, timestamp, counter)
	s.SendStoreBalance(c)
}

func (s *Server) parseMarketAcceptOffer(c *Connection, input *protocol.NetworkMessage) {
	timestamp := input.GetU32()
	counter := input.GetU16()
	amount := input.GetU16()
	s.ops.AcceptMarketOffer(c.player, timestamp, counter, amount)
}

func (s *Server) parseModalWindowAnswer(c *Connection, input *protocol.NetworkMessage) {
	windowID := input.GetU32()
	button := input.GetByte()
	choice := input.GetByte()
	s.ops.AnswerModalWindow(c.player, windowID, button, choice)
}
