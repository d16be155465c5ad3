package model

// CreatureType mirrors the client-side creature categories.
type CreatureType uint8

const (
	CreatureTypePlayer CreatureType = iota
	CreatureTypeMonster
	CreatureTypeNpc
	CreatureTypeSummonOwn
	CreatureTypeSummonOthers
	CreatureTypeHidden
)

// CreatureIcon is a status icon shown above a creature.
type CreatureIcon struct {
	ID      uint8
	Level   uint16
	Special bool // monster-only special icon
}

// Creature is anything that occupies a tile: players, monsters, NPCs.
// The gateway reads creatures, it never mutates them.
type Creature interface {
	ID() uint32
	Name() string
	Position() Position
	Direction() Direction
	Health() int32
	MaxHealth() int32
	Outfit() Outfit
	Light() Light
	StepSpeed() uint16
	Icons() []CreatureIcon
	Type() CreatureType
	Master() Creature // owning creature of a summon, nil otherwise
	Skull() uint8
	IsRemoved() bool
	IsInvisible() bool
	IsInGhostMode() bool
	IsHealthHidden() bool
	Walkthrough() bool
	SpeechBubble() uint8 // NPC speech bubble, zero otherwise

	// AsPlayer returns the concrete player, or nil.
	AsPlayer() *Player
}

// HealthPercent returns the creature's health as 0..100, rounding up,
// against a max clamped to at least 1.
func HealthPercent(c Creature) uint8 {
	max := c.MaxHealth()
	if max < 1 {
		max = 1
	}
	h := c.Health()
	if h <= 0 {
		return 0
	}
	pct := (int64(h)*100 + int64(max) - 1) / int64(max)
	if pct > 100 {
		pct = 100
	}
	return uint8(pct)
}

// CreatureBase carries the fields shared by every creature kind.
type CreatureBase struct {
	CreatureID   uint32
	CreatureName string
	Pos          Position
	Dir          Direction
	HP           int32
	MaxHP        int32
	Look         Outfit
	LightInfo    Light
	Speed        uint16
	IconList     []CreatureIcon
	SkullID      uint8
	Removed      bool
	Invisible    bool
	GhostMode    bool
	HiddenHealth bool
	CanWalkThru  bool
}

func (c *CreatureBase) ID() uint32            { return c.CreatureID }
func (c *CreatureBase) Name() string          { return c.CreatureName }
func (c *CreatureBase) Position() Position    { return c.Pos }
func (c *CreatureBase) Direction() Direction  { return c.Dir }
func (c *CreatureBase) Health() int32         { return c.HP }
func (c *CreatureBase) MaxHealth() int32      { return c.MaxHP }
func (c *CreatureBase) Outfit() Outfit        { return c.Look }
func (c *CreatureBase) Light() Light          { return c.LightInfo }
func (c *CreatureBase) StepSpeed() uint16     { return c.Speed }
func (c *CreatureBase) Icons() []CreatureIcon { return c.IconList }
func (c *CreatureBase) Skull() uint8          { return c.SkullID }
func (c *CreatureBase) IsRemoved() bool       { return c.Removed }
func (c *CreatureBase) IsInvisible() bool     { return c.Invisible }
func (c *CreatureBase) IsInGhostMode() bool   { return c.GhostMode }
func (c *CreatureBase) IsHealthHidden() bool  { return c.HiddenHealth }
func (c *CreatureBase) Walkthrough() bool     { return c.CanWalkThru }
func (c *CreatureBase) SpeechBubble() uint8   { return 0 }
func (c *CreatureBase) Master() Creature      { return nil }
func (c *CreatureBase) AsPlayer() *Player     { return nil }

// Monster is a non-player hostile creature.
type Monster struct {
	CreatureBase
	Summoner Creature
}

func (m *Monster) Type() CreatureType { return CreatureTypeMonster }
func (m *Monster) Master() Creature   { return m.Summoner }

// Npc is a scripted non-player character.
type Npc struct {
	CreatureBase
	Bubble uint8
}

func (n *Npc) Type() CreatureType  { return CreatureTypeNpc }
func (n *Npc) SpeechBubble() uint8 { return n.Bubble }
