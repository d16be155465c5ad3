package main

import (
	"log/slog"

	"github.com/fusion32/forgottenserver/internal/game"
	"github.com/fusion32/forgottenserver/internal/gateway"
	"github.com/fusion32/forgottenserver/internal/model"
)

// gameOps adapts the gateway's PlayerOps façade onto the world registry.
// Movement, chat, and the reflecting windows are wired for real; the deeper
// gameplay operations (items, trade, market matching) belong to the engine
// proper and are acknowledged without effect here.
//
// Runs entirely on the game thread.
type gameOps struct {
	world *game.World
	gw    *gateway.Server

	channels []gateway.ChannelInfo
	outfits  []model.NamedOutfit
	mounts   []model.NamedMount
}

func newGameOps(world *game.World) *gameOps {
	return &gameOps{
		world: world,
		channels: []gateway.ChannelInfo{
			{ID: 3, Name: "World Chat"},
			{ID: 5, Name: "Advertising"},
			{ID: 6, Name: "Help"},
		},
		outfits: []model.NamedOutfit{
			{LookType: 128, Name: "Citizen", Addons: 3},
			{LookType: 129, Name: "Hunter", Addons: 3},
			{LookType: 130, Name: "Mage", Addons: 3},
			{LookType: 131, Name: "Knight", Addons: 3},
		},
		mounts: []model.NamedMount{
			{ClientID: 368, Name: "Widow Queen"},
			{ClientID: 369, Name: "Racing Bird"},
		},
	}
}

func (o *gameOps) attachGateway(gw *gateway.Server) {
	o.gw = gw
}

// conn resolves the gateway session of a player, nil when detached.
func (o *gameOps) conn(p *model.Player) *gateway.Connection {
	c, _ := p.Session.(*gateway.Connection)
	return c
}

func (o *gameOps) ReceivePing(p *model.Player) {
	if c := o.conn(p); c != nil {
		o.gw.SendPingBack(c)
	}
}

func (o *gameOps) ReceivePingBack(p *model.Player) {
	// Latency bookkeeping only.
}

func (o *gameOps) ExtendedOpcode(p *model.Player, opcode byte, buffer string) {
	slog.Debug("extended opcode", "player", p.Name(), "opcode", opcode, "len", len(buffer))
}

func stepDelta(dir model.Direction) (dx, dy int) {
	switch dir {
	case model.DirectionNorth:
		return 0, -1
	case model.DirectionEast:
		return 1, 0
	case model.DirectionSouth:
		return 0, 1
	case model.DirectionWest:
		return -1, 0
	case model.DirectionNorthEast:
		return 1, -1
	case model.DirectionSouthEast:
		return 1, 1
	case model.DirectionSouthWest:
		return -1, 1
	case model.DirectionNorthWest:
		return -1, -1
	}
	return 0, 0
}

// creatureStackpos returns the description-order index of a creature on its
// tile: ground, top items, then creatures newest first.
func creatureStackpos(tile *model.Tile, creature model.Creature) int {
	n := 0
	if tile.Ground != nil {
		n++
	}
	n += len(tile.TopItems)
	for i := len(tile.Creatures) - 1; i >= 0; i-- {
		if tile.Creatures[i] == creature {
			return n
		}
		n++
	}
	return -1
}

func (o *gameOps) Walk(p *model.Player, dir model.Direction) {
	c := o.conn(p)
	dx, dy := stepDelta(dir)
	oldPos := p.Position()
	newPos := model.Position{
		X: uint16(int(oldPos.X) + dx),
		Y: uint16(int(oldPos.Y) + dy),
		Z: oldPos.Z,
	}

	oldTile := o.world.Tile(oldPos)
	newTile := o.world.Tile(newPos)
	if oldTile == nil || newTile == nil {
		if c != nil {
			o.gw.SendCancelWalk(c)
		}
		return
	}

	oldStackpos := creatureStackpos(oldTile, p)

	for i, tc := range oldTile.Creatures {
		if tc == model.Creature(p) {
			oldTile.Creatures = append(oldTile.Creatures[:i], oldTile.Creatures[i+1:]...)
			break
		}
	}
	newTile.Creatures = append(newTile.Creatures, p)
	p.Pos = newPos
	p.Dir = dir

	newStackpos := creatureStackpos(newTile, p)
	if c != nil {
		o.gw.SendMoveCreature(c, p, newPos, newStackpos, oldPos, oldStackpos, false)
	}
}

func (o *gameOps) AutoWalk(p *model.Player, path []model.Direction) {
	for _, dir := range path {
		o.Walk(p, dir)
	}
}

func (o *gameOps) StopAutoWalk(p *model.Player) {}

func (o *gameOps) Turn(p *model.Player, dir model.Direction) {
	if p.Dir == dir {
		return
	}
	p.Dir = dir

	c := o.conn(p)
	if c == nil {
		return
	}
	if tile := o.world.Tile(p.Position()); tile != nil {
		o.gw.SendCreatureTurn(c, p, creatureStackpos(tile, p))
	}
}

func (o *gameOps) Say(p *model.Player, channelID uint16, talkType byte, receiver, text string) {
	c := o.conn(p)
	if c == nil {
		return
	}

	switch talkType {
	case gateway.TalkTypeChannelY, gateway.TalkTypeChannelR1:
		o.gw.SendToChannel(c, p, talkType, text, channelID)
	case gateway.TalkTypePrivateTo, gateway.TalkTypePrivateRedTo:
		if target := o.findPlayerByName(receiver); target != nil {
			if tc := o.conn(target); tc != nil {
				o.gw.SendPrivateMessage(tc, p, gateway.TalkTypePrivateFrom, text)
			}
		}
	default:
		o.gw.SendCreatureSay(c, p, talkType, text, nil)
	}
}

func (o *gameOps) findPlayerByName(name string) *model.Player {
	return o.world.PlayerByName(name)
}

func (o *gameOps) RequestChannels(p *model.Player) {
	if c := o.conn(p); c != nil {
		o.gw.SendChannelsDialog(c, o.channels)
	}
}

func (o *gameOps) OpenChannel(p *model.Player, channelID uint16) {
	c := o.conn(p)
	if c == nil {
		return
	}
	for _, channel := range o.channels {
		if channel.ID == channelID {
			o.gw.SendChannel(c, channel.ID, channel.Name, []string{p.Name()}, nil)
			return
		}
	}
}

func (o *gameOps) CloseChannel(p *model.Player, channelID uint16) {}

func (o *gameOps) OpenPrivateChannel(p *model.Player, receiver string) {
	if c := o.conn(p); c != nil {
		o.gw.SendOpenPrivateChannel(c, receiver)
	}
}

func (o *gameOps) CloseNpcChannel(p *model.Player) {}

func (o *gameOps) CreatePrivateChannel(p *model.Player) {
	if c := o.conn(p); c != nil {
		o.gw.SendCreatePrivateChannel(c, 0xFFFF, p.Name()+"'s Channel")
	}
}

func (o *gameOps) ChannelInvite(p *model.Player, name string)  {}
func (o *gameOps) ChannelExclude(p *model.Player, name string) {}

func (o *gameOps) SetFightModes(p *model.Player, fightMode uint8, chaseMode, secureMode bool) {
	p.Fight.FightMode = fightMode
	if chaseMode {
		p.Fight.ChaseMode = 1
	} else {
		p.Fight.ChaseMode = 0
	}
	if secureMode {
		p.Fight.SecureMode = 1
	} else {
		p.Fight.SecureMode = 0
	}
}

func (o *gameOps) Attack(p *model.Player, creatureID uint32) {
	if o.world.CreatureByID(creatureID) == nil {
		if c := o.conn(p); c != nil {
			o.gw.SendCancelTarget(c)
		}
	}
}

func (o *gameOps) Follow(p *model.Player, creatureID uint32) {
	if o.world.CreatureByID(creatureID) == nil {
		if c := o.conn(p); c != nil {
			o.gw.SendCancelTarget(c)
		}
	}
}

func (o *gameOps) CancelAttackAndFollow(p *model.Player) {
	if c := o.conn(p); c != nil {
		o.gw.SendCancelTarget(c)
	}
}

func (o *gameOps) RequestOutfit(p *model.Player) {
	if c := o.conn(p); c != nil {
		o.gw.SendOutfitWindow(c, gateway.OutfitWindowData{
			Current:        p.Outfit(),
			Mounted:        p.Mounted,
			RandomizeMount: p.RandomizeMount,
			Outfits:        o.outfits,
			Mounts:         o.mounts,
		})
	}
}

func (o *gameOps) ChangeOutfit(p *model.Player, outfit model.Outfit, randomizeMount bool) {
	p.Look = outfit
	p.RandomizeMount = randomizeMount
	if c := o.conn(p); c != nil {
		o.gw.SendCreatureOutfit(c, p, outfit)
	}
}

func (o *gameOps) OnLogout(p *model.Player) bool { return true }

func (o *gameOps) UnhandledCommand(p *model.Player, command byte) {
	slog.Debug("unhandled command", "player", p.Name(), "command", command)
}

func (o *gameOps) DebugAssert(p *model.Player, assertLine, date, description, comment string) {
	slog.Warn("client debug assert", "player", p.Name(), "assert", assertLine,
		"date", date, "description", description, "comment", comment)
}

func (o *gameOps) ReportRuleViolation(p *model.Player, targetName string, reportType, reportReason uint8, comment, translation string) {
	slog.Info("rule violation report", "player", p.Name(), "target", targetName,
		"type", reportType, "reason", reportReason)
}

// The remaining operations belong to the gameplay engine; the gateway
// contract only requires that they are accepted on the game thread.

func (o *gameOps) EquipObject(p *model.Player, spriteID uint16) {}
func (o *gameOps) MoveThing(p *model.Player, from model.Position, spriteID uint16, fromStackpos uint8, to model.Position, count uint8) {
}
func (o *gameOps) RotateItem(p *model.Player, pos model.Position, stackpos uint8, spriteID uint16) {}
func (o *gameOps) WrapItem(p *model.Player, pos model.Position, stackpos uint8, spriteID uint16)   {}
func (o *gameOps) UseItem(p *model.Player, pos model.Position, stackpos uint8, index uint8, spriteID uint16) {
}
func (o *gameOps) UseItemEx(p *model.Player, from model.Position, fromStackpos uint8, fromSpriteID uint16, to model.Position, toStackpos uint8, toSpriteID uint16) {
}
func (o *gameOps) UseWithCreature(p *model.Player, from model.Position, fromStackpos uint8, creatureID uint32, spriteID uint16) {
}
func (o *gameOps) LookAt(p *model.Player, pos model.Position, stackpos uint8)  {}
func (o *gameOps) LookInBattleList(p *model.Player, creatureID uint32)         {}
func (o *gameOps) QuickLoot(p *model.Player, pos model.Position, stackpos uint8, spriteID uint16, allCorpses bool) {
}
func (o *gameOps) LookInShop(p *model.Player, id uint16, count uint8) {}
func (o *gameOps) Purchase(p *model.Player, id uint16, count uint8, amount uint16, ignoreCap, inBackpacks bool) {
}
func (o *gameOps) Sell(p *model.Player, id uint16, count uint8, amount uint16, ignoreEquipped bool) {
}
func (o *gameOps) CloseShop(p *model.Player) {
	if c := o.conn(p); c != nil {
		o.gw.SendCloseShop(c)
	}
}
func (o *gameOps) RequestTrade(p *model.Player, pos model.Position, stackpos uint8, playerID uint32, spriteID uint16) {
}
func (o *gameOps) LookInTrade(p *model.Player, counterOffer bool, index uint8) {}
func (o *gameOps) AcceptTrade(p *model.Player)                                 {}
func (o *gameOps) CloseTrade(p *model.Player) {
	if c := o.conn(p); c != nil {
		o.gw.SendCloseTrade(c)
	}
}
func (o *gameOps) CloseContainer(p *model.Player, containerID uint8) {
	if c := o.conn(p); c != nil {
		o.gw.SendCloseContainer(c, containerID)
	}
}
func (o *gameOps) MoveUpContainer(p *model.Player, containerID uint8)   {}
func (o *gameOps) UpdateContainer(p *model.Player, containerID uint8)   {}
func (o *gameOps) BrowseField(p *model.Player, pos model.Position)      {}
func (o *gameOps) SeekInContainer(p *model.Player, containerID uint8, index uint16) {
}
func (o *gameOps) WriteItem(p *model.Player, windowTextID uint32, text string) {}
func (o *gameOps) UpdateHouseWindow(p *model.Player, doorID uint8, windowTextID uint32, text string) {
}
func (o *gameOps) InviteToParty(p *model.Player, targetID uint32)         {}
func (o *gameOps) JoinParty(p *model.Player, targetID uint32)             {}
func (o *gameOps) RevokePartyInvitation(p *model.Player, targetID uint32) {}
func (o *gameOps) PassPartyLeadership(p *model.Player, targetID uint32)   {}
func (o *gameOps) LeaveParty(p *model.Player)                             {}
func (o *gameOps) EnableSharedPartyExperience(p *model.Player, active bool) {
}
func (o *gameOps) RequestEditPodium(p *model.Player, pos model.Position, stackpos uint8, spriteID uint16) {
}
func (o *gameOps) EditPodium(p *model.Player, outfit model.Outfit, pos model.Position, stackpos uint8, spriteID uint16, visible bool, dir model.Direction) {
}
func (o *gameOps) AddVip(p *model.Player, name string)    {}
func (o *gameOps) RemoveVip(p *model.Player, guid uint32) {}
func (o *gameOps) EditVip(p *model.Player, guid uint32, description string, icon uint32, notify bool) {
}
func (o *gameOps) BrowseMarket(p *model.Player, spriteID uint16) {
	if c := o.conn(p); c != nil {
		o.gw.SendMarketBrowseItem(c, spriteID, 0, nil, nil)
	}
}
func (o *gameOps) BrowseMarketOwnOffers(p *model.Player) {
	if c := o.conn(p); c != nil {
		o.gw.SendMarketBrowseOwnOffers(c, nil, nil)
	}
}
func (o *gameOps) BrowseMarketOwnHistory(p *model.Player) {
	if c := o.conn(p); c != nil {
		o.gw.SendMarketBrowseOwnHistory(c, nil, nil)
	}
}
func (o *gameOps) CreateMarketOffer(p *model.Player, offerType byte, spriteID uint16, amount uint16, price uint64, anonymous bool) {
}
func (o *gameOps) CancelMarketOffer(p *model.Player, timestamp uint32, counter uint16) {}
func (o *gameOps) AcceptMarketOffer(p *model.Player, timestamp uint32, counter uint16, amount uint16) {
}
func (o *gameOps) LeaveMarket(p *model.Player) {
	p.InMarket = false
	if c := o.conn(p); c != nil {
		o.gw.SendMarketLeave(c)
	}
}
func (o *gameOps) AnswerModalWindow(p *model.Player, windowID uint32, button, choice uint8) {}
