package model

// Outfit is a creature's visible look, including its mount.
type Outfit struct {
	LookType   uint16
	LookTypeEx uint16 // item look when LookType is zero
	Head       uint8
	Body       uint8
	Legs       uint8
	Feet       uint8
	Addons     uint8

	Mount      uint16
	MountHead  uint8
	MountBody  uint8
	MountLegs  uint8
	MountFeet  uint8
}

// Light is a creature or item light source.
type Light struct {
	Level uint8
	Color uint8
}

// NamedOutfit is an outfit choice offered in the outfit window.
type NamedOutfit struct {
	LookType uint16
	Name     string
	Addons   uint8
}

// NamedMount is a mount choice offered in the outfit window.
type NamedMount struct {
	ClientID uint16
	Name     string
}
