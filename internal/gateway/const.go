package gateway

// Viewport geometry. A client sees (2·W+1)×(2·H+1) tiles centered on the
// player, with one extra row/column described so scrolling never starves.
const (
	maxClientViewportX = 8
	maxClientViewportY = 6
	mapMaxLayers       = 16
)

// maxStackpos is the highest stack position the client renders on a tile.
// Beyond it, things are addressed by creature id with a 0xFFFF sentinel.
const maxStackpos = 10

// knownCreatureLimit bounds the per-connection known-creature set.
const knownCreatureLimit = 1300

// Supported terminal version window.
const (
	clientVersionMin = 1320
	clientVersionMax = 1321
	clientVersionStr = "13.20"
)

// Terminal kinds. Everything from the open-source client up understands
// extended opcodes.
const (
	terminalLinux          = 1
	terminalWindows        = 2
	terminalOTClientLinux  = 10
	terminalOTClientWindows = 11
	terminalOTClientMac    = 12
)

// Session end reasons (0x18).
const (
	sessionEndLogout     = 0
	sessionEndUnknown    = 1
	sessionEndForceClose = 2
	sessionEndUnknown2   = 3
)

// SpeakClass is a chat message category.
type SpeakClass = byte

const (
	TalkTypeSay           SpeakClass = 1
	TalkTypeWhisper       SpeakClass = 2
	TalkTypeYell          SpeakClass = 3
	TalkTypePrivateFrom   SpeakClass = 4
	TalkTypePrivateTo     SpeakClass = 5
	TalkTypeChannelM      SpeakClass = 6
	TalkTypeChannelY      SpeakClass = 7
	TalkTypeChannelO      SpeakClass = 8
	TalkTypeSpell         SpeakClass = 9
	TalkTypePrivateNpcTo  SpeakClass = 10
	TalkTypePrivateNpcFrom SpeakClass = 11
	TalkTypeBroadcast     SpeakClass = 13
	TalkTypeChannelR1     SpeakClass = 14
	TalkTypePrivateRedFrom SpeakClass = 15
	TalkTypePrivateRedTo  SpeakClass = 16
	TalkTypeMonsterSay    SpeakClass = 36
	TalkTypeMonsterYell   SpeakClass = 37
)

// MessageClass is a text message category (0xB4).
type MessageClass = byte

const (
	MessageStatusDefault    MessageClass = 17
	MessageEventAdvance     MessageClass = 19
	MessageStatusSmall      MessageClass = 21
	MessageInfoDescr        MessageClass = 22
	MessageDamageDealt      MessageClass = 23
	MessageDamageReceived   MessageClass = 24
	MessageHealed           MessageClass = 25
	MessageExperience       MessageClass = 26
	MessageDamageOthers     MessageClass = 27
	MessageHealedOthers     MessageClass = 28
	MessageExperienceOthers MessageClass = 29
	MessageGuild            MessageClass = 33
	MessagePartyManagement  MessageClass = 34
	MessageParty            MessageClass = 35
)

// Magic effect stream opcodes (0x83).
const (
	magicEffectsEndLoop              = 0
	magicEffectsDelay                = 1
	magicEffectsDelta                = 2
	magicEffectsCreateEffect         = 3
	magicEffectsCreateDistanceEffect = 4
)

// Market request kinds, shared between request and reply (0xF5/0xF9).
const (
	MarketRequestOwnOffers  = 1
	MarketRequestOwnHistory = 2
	MarketRequestItem       = 3
)

// marketHistoryCap bounds each side of the own-history reply; headroom from
// a short side is redistributed to the other.
const marketHistoryCap = 810

// Resource balance kinds (0xEE).
const (
	ResourceBankBalance  = 0x00
	ResourceGoldEquipped = 0x01
)

// Channel events (0xF3).
const (
	ChannelEventJoin    = 0
	ChannelEventLeave   = 1
	ChannelEventInvite  = 2
	ChannelEventExclude = 3
)

// VIP statuses.
const (
	VipStatusOffline = 0
	VipStatusOnline  = 1
	VipStatusPending = 2
)

// Combat analyzer impact kinds (0xCC).
const (
	CombatImpactDealt    = 0
	CombatImpactReceived = 1
)

// PvP mode sent with the fight modes packet; only dove is surfaced.
const pvpModeDove = 0
