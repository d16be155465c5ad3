package model

// Item is the wire-facing view of an in-world thing. The gateway carries
// items, it does not interpret them; everything the encoder needs is here.
type Item struct {
	ClientID       uint16
	Count          uint8
	Stackable      bool
	Splash         bool  // splash or fluid container: count is a fluid color
	FluidColor     uint8 // client-side fluid color when Splash
	WareID         uint16
	Classification uint8
	Tier           uint8
	Weight         uint32
	Name           string

	// Writable items
	Text      string
	Writer    string
	WrittenAt int64

	// Non-nil when the item is a container.
	Container *Container

	// Non-nil when the item is a podium.
	Podium *Podium
}

// Container carries the open-container window state for an item.
type Container struct {
	Capacity   uint8
	HasParent  bool
	Unlocked   bool
	Pagination bool
	Items      []*Item
}

// Podium is a stationary object displaying an outfit chosen by a player.
type Podium struct {
	Outfit       Outfit
	Direction    Direction
	ShowOutfit   bool
	ShowMount    bool
	ShowPlatform bool
}

// ShopEntry is one line of an NPC shop window.
type ShopEntry struct {
	Item      *Item
	SubType   uint8
	BuyPrice  uint32
	SellPrice uint32
}

// MarketOffer is a live market offer.
type MarketOffer struct {
	Timestamp  uint32
	Counter    uint16
	ItemID     uint16 // client id
	ItemClass  uint8
	Amount     uint16
	Price      uint64
	PlayerName string
}

// MarketHistoryOffer is a finished market offer.
type MarketHistoryOffer struct {
	Timestamp uint32
	ItemID    uint16
	ItemClass uint8
	Amount    uint16
	Price     uint64
	State     uint8
}
