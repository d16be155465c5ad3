package model

// Tile is one map square. Item order follows the client stacking rules:
// ground first, then "top" items, then creatures, then "down" items.
type Tile struct {
	Ground    *Item
	TopItems  []*Item
	Creatures []Creature // bottom-to-top; described to the client in reverse
	DownItems []*Item

	NoLogout       bool
	ProtectionZone bool
}

// ThingIndex returns the stack position of item within the tile, or -1.
func (t *Tile) ThingIndex(item *Item) int {
	n := 0
	if t.Ground != nil {
		if t.Ground == item {
			return 0
		}
		n++
	}
	for _, it := range t.TopItems {
		if it == item {
			return n
		}
		n++
	}
	n += len(t.Creatures)
	for _, it := range t.DownItems {
		if it == item {
			return n
		}
		n++
	}
	return -1
}
