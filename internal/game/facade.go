package game

import (
	"context"

	"github.com/fusion32/forgottenserver/internal/model"
)

// Session is the record the login portal stored when the client
// authenticated. The gateway validates the token against it.
type Session struct {
	AccountID   uint32
	CharacterID uint32
	BoundIP     string
}

// BanInfo describes an active ban. ExpiresAt <= 0 means permanent.
type BanInfo struct {
	Reason    string
	BannedBy  string
	ExpiresAt int64
}

// SessionStore resolves login tokens and loads characters. Implementations
// may block; the gateway calls them on the game thread, as the original
// server always has.
type SessionStore interface {
	// LoadSession resolves (token, character name) to the stored session.
	// Returns nil when the pair is unknown.
	LoadSession(ctx context.Context, token, characterName string) (*Session, error)

	// PreloadPlayer fills the account-level fields of a player whose GUID is
	// already set. Reports false when the character does not exist.
	PreloadPlayer(ctx context.Context, p *model.Player) (bool, error)

	// LoadPlayerByID fully loads the character. Reports false when missing.
	LoadPlayerByID(ctx context.Context, p *model.Player, guid uint32) (bool, error)

	// VIPEntries returns the account's VIP list.
	VIPEntries(ctx context.Context, accountID uint32) ([]model.VIPEntry, error)

	// StampLogin records the last login time and address of a character.
	StampLogin(ctx context.Context, guid uint32, lastLogin int64, ip string) error
}

// BanStore answers admission ban checks.
type BanStore interface {
	IPBanInfo(ctx context.Context, ip string) (*BanInfo, error)
	AccountBanInfo(ctx context.Context, accountID uint32) (*BanInfo, error)
	IsPlayerNamelocked(ctx context.Context, guid uint32) (bool, error)
}

// Engine is the slice of the game world the gateway needs: creature and
// player lookup, tile access, placement, and world status. All methods are
// game-thread only.
type Engine interface {
	State() State
	WorldType() WorldType
	UptimeSeconds() uint32
	PlayersOnline() int

	AssignCreatureID() uint32
	CreatureByID(id uint32) model.Creature
	PlayerByGUID(guid uint32) *model.Player
	PlayerByAccount(accountID uint32) *model.Player
	Tile(pos model.Position) *model.Tile

	PlaceCreature(c model.Creature, pos model.Position, forced bool) bool
	RemoveCreature(c model.Creature)
	ReleaseCreature(c model.Creature)

	AddMagicEffect(pos model.Position, effect uint8)
	RegisterCreatureEvent(c model.Creature, event string)
}

// PlayerOps is the set of game operations the inbound dispatcher invokes,
// one per command opcode. Implementations run on the game thread and own
// every side effect; parsers never mutate game state directly.
type PlayerOps interface {
	ReceivePing(p *model.Player)
	ReceivePingBack(p *model.Player)
	ExtendedOpcode(p *model.Player, opcode byte, buffer string)

	Walk(p *model.Player, dir model.Direction)
	AutoWalk(p *model.Player, path []model.Direction)
	StopAutoWalk(p *model.Player)
	Turn(p *model.Player, dir model.Direction)

	EquipObject(p *model.Player, spriteID uint16)
	MoveThing(p *model.Player, from model.Position, spriteID uint16, fromStackpos uint8, to model.Position, count uint8)
	RotateItem(p *model.Player, pos model.Position, stackpos uint8, spriteID uint16)
	WrapItem(p *model.Player, pos model.Position, stackpos uint8, spriteID uint16)
	UseItem(p *model.Player, pos model.Position, stackpos uint8, index uint8, spriteID uint16)
	UseItemEx(p *model.Player, from model.Position, fromStackpos uint8, fromSpriteID uint16, to model.Position, toStackpos uint8, toSpriteID uint16)
	UseWithCreature(p *model.Player, from model.Position, fromStackpos uint8, creatureID uint32, spriteID uint16)

	LookAt(p *model.Player, pos model.Position, stackpos uint8)
	LookInBattleList(p *model.Player, creatureID uint32)
	QuickLoot(p *model.Player, pos model.Position, stackpos uint8, spriteID uint16, allCorpses bool)

	LookInShop(p *model.Player, id uint16, count uint8)
	Purchase(p *model.Player, id uint16, count uint8, amount uint16, ignoreCap, inBackpacks bool)
	Sell(p *model.Player, id uint16, count uint8, amount uint16, ignoreEquipped bool)
	CloseShop(p *model.Player)

	RequestTrade(p *model.Player, pos model.Position, stackpos uint8, playerID uint32, spriteID uint16)
	LookInTrade(p *model.Player, counterOffer bool, index uint8)
	AcceptTrade(p *model.Player)
	CloseTrade(p *model.Player)

	CloseContainer(p *model.Player, containerID uint8)
	MoveUpContainer(p *model.Player, containerID uint8)
	UpdateContainer(p *model.Player, containerID uint8)
	BrowseField(p *model.Player, pos model.Position)
	SeekInContainer(p *model.Player, containerID uint8, index uint16)

	WriteItem(p *model.Player, windowTextID uint32, text string)
	UpdateHouseWindow(p *model.Player, doorID uint8, windowTextID uint32, text string)

	Say(p *model.Player, channelID uint16, talkType byte, receiver, text string)
	RequestChannels(p *model.Player)
	OpenChannel(p *model.Player, channelID uint16)
	CloseChannel(p *model.Player, channelID uint16)
	OpenPrivateChannel(p *model.Player, receiver string)
	CloseNpcChannel(p *model.Player)
	CreatePrivateChannel(p *model.Player)
	ChannelInvite(p *model.Player, name string)
	ChannelExclude(p *model.Player, name string)

	SetFightModes(p *model.Player, fightMode uint8, chaseMode, secureMode bool)
	Attack(p *model.Player, creatureID uint32)
	Follow(p *model.Player, creatureID uint32)
	CancelAttackAndFollow(p *model.Player)

	InviteToParty(p *model.Player, targetID uint32)
	JoinParty(p *model.Player, targetID uint32)
	RevokePartyInvitation(p *model.Player, targetID uint32)
	PassPartyLeadership(p *model.Player, targetID uint32)
	LeaveParty(p *model.Player)
	EnableSharedPartyExperience(p *model.Player, active bool)

	RequestOutfit(p *model.Player)
	ChangeOutfit(p *model.Player, outfit model.Outfit, randomizeMount bool)
	RequestEditPodium(p *model.Player, pos model.Position, stackpos uint8, spriteID uint16)
	EditPodium(p *model.Player, outfit model.Outfit, pos model.Position, stackpos uint8, spriteID uint16, visible bool, dir model.Direction)

	AddVip(p *model.Player, name string)
	RemoveVip(p *model.Player, guid uint32)
	EditVip(p *model.Player, guid uint32, description string, icon uint32, notify bool)

	BrowseMarket(p *model.Player, spriteID uint16)
	BrowseMarketOwnOffers(p *model.Player)
	BrowseMarketOwnHistory(p *model.Player)
	CreateMarketOffer(p *model.Player, offerType byte, spriteID uint16, amount uint16, price uint64, anonymous bool)
	CancelMarketOffer(p *model.Player, timestamp uint32, counter uint16)
	AcceptMarketOffer(p *model.Player, timestamp uint32, counter uint16, amount uint16)
	LeaveMarket(p *model.Player)

	AnswerModalWindow(p *model.Player, windowID uint32, button, choice uint8)
	DebugAssert(p *model.Player, assertLine, date, description, comment string)
	ReportRuleViolation(p *model.Player, targetName string, reportType, reportReason uint8, comment, translation string)
	UnhandledCommand(p *model.Player, command byte)

	// OnLogout is the scriptable logout hook; returning false blocks the
	// logout and the hook is expected to have told the player why.
	OnLogout(p *model.Player) bool
}
