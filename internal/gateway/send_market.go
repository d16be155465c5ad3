package gateway

import (
	"sort"

	"github.com/fusion32/forgottenserver/internal/model"
	"github.com/fusion32/forgottenserver/internal/protocol"
)

// SendMarketEnter opens the market with the player's offer count and the
// sellable depot stock aggregated by ware id.
func (s *Server) SendMarketEnter(c *Connection, offerCount uint32, depotItems []*model.Item) {
	player := c.player

	var msg protocol.NetworkMessage
	msg.AddByte(0xF6)
	if offerCount > 0xFF {
		offerCount = 0xFF
	}
	msg.AddByte(byte(offerCount))

	player.InMarket = true

	// Walk the depot containers and aggregate marketable items by ware id.
	stock := make(map[uint16]uint32)
	classification := make(map[uint16]uint8)
	queue := append([]*model.Item(nil), depotItems...)
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if item.Container != nil {
			queue = append(queue, item.Container.Items...)
			continue
		}
		if item.WareID == 0 {
			continue
		}

		count := uint32(item.Count)
		if !item.Stackable {
			count = 1
		}
		stock[item.WareID] += count
		classification[item.WareID] = item.Classification
	}

	wareIDs := make([]uint16, 0, len(stock))
	for wareID := range stock {
		wareIDs = append(wareIDs, wareID)
	}
	sort.Slice(wareIDs, func(i, j int) bool { return wareIDs[i] < wareIDs[j] })

	msg.AddU16(uint16(len(wareIDs)))
	for _, wareID := range wareIDs {
		msg.AddU16(wareID)
		if classification[wareID] > 0 {
			msg.AddByte(0)
		}
		count := stock[wareID]
		if count > 0xFFFF {
			count = 0xFFFF
		}
		msg.AddU16(uint16(count))
	}
	c.WriteToOutputBuffer(&msg)

	s.SendResourceBalance(c, ResourceBankBalance, player.BankBalance)
	s.SendResourceBalance(c, ResourceGoldEquipped, player.Money)
	s.SendStoreBalance(c)
}

// SendMarketLeave closes the market.
func (s *Server) SendMarketLeave(c *Connection) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xF7)
	c.WriteToOutputBuffer(&msg)
}

func addMarketOfferWithName(msg *protocol.NetworkMessage, offer model.MarketOffer) {
	msg.AddU32(offer.Timestamp)
	msg.AddU16(offer.Counter)
	msg.AddU16(offer.Amount)
	msg.AddU64(offer.Price)
	msg.AddString(offer.PlayerName)
}

func addMarketOfferWithItem(msg *protocol.NetworkMessage, offer model.MarketOffer) {
	msg.AddU32(offer.Timestamp)
	msg.AddU16(offer.Counter)
	msg.AddU16(offer.ItemID)
	if offer.ItemClass > 0 {
		msg.AddByte(0)
	}
	msg.AddU16(offer.Amount)
	msg.AddU64(offer.Price)
}

// SendMarketBrowseItem answers a browse with both offer books of an item.
func (s *Server) SendMarketBrowseItem(c *Connection, itemID uint16, itemClass uint8,
	buyOffers, sellOffers []model.MarketOffer) {
	s.SendStoreBalance(c)

	var msg protocol.NetworkMessage
	msg.AddByte(0xF9)
	msg.AddByte(MarketRequestItem)
	msg.AddU16(itemID)
	if itemClass > 0 {
		msg.AddByte(0) // item tier
	}

	msg.AddU32(uint32(len(buyOffers)))
	for _, offer := range buyOffers {
		addMarketOfferWithName(&msg, offer)
	}

	msg.AddU32(uint32(len(sellOffers)))
	for _, offer := range sellOffers {
		addMarketOfferWithName(&msg, offer)
	}
	c.WriteToOutputBuffer(&msg)
}

// SendMarketAcceptOffer confirms a partially or fully taken offer.
func (s *Server) SendMarketAcceptOffer(c *Connection, offer model.MarketOffer, isBuyOffer bool) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xF9)
	msg.AddByte(MarketRequestItem)
	msg.AddU16(offer.ItemID)
	if offer.ItemClass > 0 {
		msg.AddByte(0)
	}

	if isBuyOffer {
		msg.AddU32(0x01)
		addMarketOfferWithName(&msg, offer)
		msg.AddU32(0x00)
	} else {
		msg.AddU32(0x00)
		msg.AddU32(0x01)
		addMarketOfferWithName(&msg, offer)
	}
	c.WriteToOutputBuffer(&msg)
}

// SendMarketBrowseOwnOffers lists the player's open offers.
func (s *Server) SendMarketBrowseOwnOffers(c *Connection, buyOffers, sellOffers []model.MarketOffer) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xF9)
	msg.AddByte(MarketRequestOwnOffers)

	msg.AddU32(uint32(len(buyOffers)))
	for _, offer := range buyOffers {
		addMarketOfferWithItem(&msg, offer)
	}

	msg.AddU32(uint32(len(sellOffers)))
	for _, offer := range sellOffers {
		addMarketOfferWithItem(&msg, offer)
	}
	c.WriteToOutputBuffer(&msg)
}

// SendMarketCancelOffer confirms a cancelled offer.
func (s *Server) SendMarketCancelOffer(c *Connection, offer model.MarketOffer, isBuyOffer bool) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xF9)
	msg.AddByte(MarketRequestOwnOffers)

	if isBuyOffer {
		msg.AddU32(0x01)
		addMarketOfferWithItem(&msg, offer)
		msg.AddU32(0x00)
	} else {
		msg.AddU32(0x00)
		msg.AddU32(0x01)
		addMarketOfferWithItem(&msg, offer)
	}
	c.WriteToOutputBuffer(&msg)
}

// SendMarketBrowseOwnHistory lists finished offers, capped per side with
// headroom from a short side redistributed to the other.
func (s *Server) SendMarketBrowseOwnHistory(c *Connection, buyOffers, sellOffers []model.MarketHistoryOffer) {
	buyToSend := len(buyOffers)
	if limit := marketHistoryCap + maxInt(0, marketHistoryCap-len(sellOffers)); buyToSend > limit {
		buyToSend = limit
	}
	sellToSend := len(sellOffers)
	if limit := marketHistoryCap + maxInt(0, marketHistoryCap-len(buyOffers)); sellToSend > limit {
		sellToSend = limit
	}

	var msg protocol.NetworkMessage
	msg.AddByte(0xF9)
	msg.AddByte(MarketRequestOwnHistory)

	counterMap := make(map[uint32]uint16)
	msg.AddU32(uint32(buyToSend))
	for i := 0; i < buyToSend; i++ {
		offer := buyOffers[i]
		msg.AddU32(offer.Timestamp)
		msg.AddU16(counterMap[offer.Timestamp])
		counterMap[offer.Timestamp]++
		msg.AddU16(offer.ItemID)
		if offer.ItemClass > 0 {
			msg.AddByte(0)
		}
		msg.AddU16(offer.Amount)
		msg.AddU64(offer.Price)
		msg.AddByte(offer.State)
	}

	counterMap = make(map[uint32]uint16)
	msg.AddU32(uint32(sellToSend))
	for i := 0; i < sellToSend; i++ {
		offer := sellOffers[i]
		msg.AddU32(offer.Timestamp)
		msg.AddU16(counterMap[offer.Timestamp])
		counterMap[offer.Timestamp]++
		msg.AddU16(offer.ItemID)
		if offer.ItemClass > 0 {
			msg.AddByte(0)
		}
		msg.AddU16(offer.Amount)
		msg.AddU64(offer.Price)
		msg.AddByte(offer.State)
	}
	c.WriteToOutputBuffer(&msg)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
