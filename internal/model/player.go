package model

// AccountType is the staff level of an account.
type AccountType uint8

const (
	AccountTypeNormal AccountType = iota + 1
	AccountTypeTutor
	AccountTypeSeniorTutor
	AccountTypeGamemaster
	AccountTypeGod
)

// Player flags granted by the account or character record.
type PlayerFlags uint64

const (
	FlagCanAlwaysLogin PlayerFlags = 1 << iota
	FlagCannotBeBanned
	FlagInfiniteCapacity
)

// SessionRef is the non-owning back-pointer from a player to its gateway
// session. It is set on admission and cleared exclusively by Detach, on the
// game thread.
type SessionRef interface {
	Peer() string
}

// SkillLevels is one trained skill with its base value and progress.
type SkillLevels struct {
	Level   uint16
	Base    uint16
	Percent uint8
}

const (
	SkillCount        = 7
	SpecialSkillCount = 5
)

// Vocation is the character class as the client needs it.
type Vocation struct {
	ID          uint16
	ClientID    uint8
	MagicShield bool
}

// FightModes is the combat stance trio set by the client.
type FightModes struct {
	FightMode  uint8
	ChaseMode  uint8
	SecureMode uint8
}

// VIPEntry is one row of a player's VIP list.
type VIPEntry struct {
	GUID        uint32
	Name        string
	Description string
	Icon        uint32
	Notify      bool
}

// Player is a character admitted (or being admitted) through the gateway.
// All mutation happens on the game thread.
type Player struct {
	CreatureBase

	GUID        uint32
	AccountID   uint32
	AccountType AccountType
	Flags       PlayerFlags

	Level        uint16
	LevelPercent uint8
	Experience   uint64
	Mana         int32
	MaxMana      int32
	Soul         uint8
	Capacity     uint32
	FreeCapacity uint32

	Magic         SkillLevels
	Skills        [SkillCount]SkillLevels
	SpecialSkills [SpecialSkillCount]uint16

	BaseSpeed              uint16
	StaminaMinutes         uint16
	OfflineTrainingMinutes uint16
	RegenerationSeconds    uint16
	ManaShield             uint32
	MaxManaShield          uint32

	ExpDisplay          uint16
	LowLevelBonusExp    uint16
	StaminaBonusExp     uint16

	Vocation   Vocation
	Fight      FightModes
	Premium    bool
	PremiumEnd int64
	Sex        uint8

	PartyShieldID uint8
	GuildEmblemID uint8

	LoginPosition  Position
	TemplePosition Position
	LastLoginSaved int64
	LastIP         string

	Dead     bool
	InFight  bool
	InMarket bool

	BankBalance uint64
	Money       uint64

	Mounted        bool
	WasMounted     bool
	RandomizeMount bool
	CurrentMount   uint16

	// Session is the non-owning back-pointer to the gateway connection.
	Session SessionRef
}

func (p *Player) Type() CreatureType { return CreatureTypePlayer }
func (p *Player) AsPlayer() *Player  { return p }

// IsAccessPlayer reports whether the player is staff with full access.
func (p *Player) IsAccessPlayer() bool {
	return p.AccountType >= AccountTypeGamemaster
}

// IsPremium reports whether the account has premium time.
func (p *Player) IsPremium() bool { return p.Premium }

// HasFlag reports whether the player carries the given flag.
func (p *Player) HasFlag(f PlayerFlags) bool { return p.Flags&f != 0 }

// CanSeeCreature is the game-side visibility predicate: invisible and
// ghost-mode creatures are hidden from everyone but staff.
func (p *Player) CanSeeCreature(c Creature) bool {
	if c == nil {
		return false
	}
	if c == Creature(p) {
		return true
	}
	if p.IsAccessPlayer() {
		return true
	}
	return !c.IsInvisible() && !c.IsInGhostMode()
}

// SkullClient returns the skull shown to this player for the creature.
func (p *Player) SkullClient(c Creature) uint8 {
	if c == nil {
		return 0
	}
	return c.Skull()
}

// PartyShield returns the party shield shown for another player.
func (p *Player) PartyShield(other *Player) uint8 {
	if other == nil {
		return 0
	}
	return other.PartyShieldID
}

// GuildEmblem returns the guild emblem shown for another player.
func (p *Player) GuildEmblem(other *Player) uint8 {
	if other == nil {
		return 0
	}
	return other.GuildEmblemID
}

// CanWalkthrough reports whether this player can step through the creature.
func (p *Player) CanWalkthrough(c Creature) bool {
	if p.IsAccessPlayer() {
		return true
	}
	return c.Walkthrough()
}
