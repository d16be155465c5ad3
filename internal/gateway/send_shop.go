package gateway

import (
	"sort"

	"github.com/fusion32/forgottenserver/internal/model"
	"github.com/fusion32/forgottenserver/internal/protocol"
)

// goldCoinClientID is the currency shown in the shop window.
const goldCoinClientID = 3031

// SendShop opens an NPC shop window.
func (s *Server) SendShop(c *Connection, npcName string, entries []model.ShopEntry) {
	var msg protocol.NetworkMessage
	msg.AddByte(0x7A)
	msg.AddString(npcName)

	msg.AddU16(goldCoinClientID)
	msg.AddString("") // currency name, unused by the official client

	itemsToSend := len(entries)
	if itemsToSend > 0xFFFF {
		itemsToSend = 0xFFFF
	}
	msg.AddU16(uint16(itemsToSend))

	for _, entry := range entries[:itemsToSend] {
		msg.AddU16(entry.Item.ClientID)
		if entry.Item.Splash {
			msg.AddByte(entry.SubType)
		} else {
			msg.AddByte(0x00)
		}
		msg.AddString(entry.Item.Name)
		msg.AddU32(entry.Item.Weight)
		msg.AddU32(entry.BuyPrice)
		msg.AddU32(entry.SellPrice)
	}
	c.WriteToOutputBuffer(&msg)
}

// SendCloseShop closes the shop window.
func (s *Server) SendCloseShop(c *Connection) {
	var msg protocol.NetworkMessage
	msg.AddByte(0x7C)
	c.WriteToOutputBuffer(&msg)
}

// SendSaleItemList reports which shop entries the player can actually sell,
// with counts. Small shops are scanned directly; larger ones consult a
// cached full inventory count supplied by the caller.
func (s *Server) SendSaleItemList(c *Connection, entries []model.ShopEntry,
	countByClientID func(clientID uint16) uint32,
	allCounts map[uint16]uint32) {
	player := c.player
	s.SendResourceBalance(c, ResourceBankBalance, player.BankBalance)
	s.SendResourceBalance(c, ResourceGoldEquipped, player.Money)

	var msg protocol.NetworkMessage
	msg.AddByte(0x7B)

	saleMap := make(map[uint16]uint32)
	if len(entries) <= 5 {
		// Not worth consulting the full inventory map for tiny shops.
		for _, entry := range entries {
			if entry.SellPrice == 0 {
				continue
			}
			if count := countByClientID(entry.Item.ClientID); count > 0 {
				saleMap[entry.Item.ClientID] = count
			}
		}
	} else {
		for _, entry := range entries {
			if entry.SellPrice == 0 {
				continue
			}
			if count := allCounts[entry.Item.ClientID]; count > 0 {
				saleMap[entry.Item.ClientID] = count
			}
		}
	}

	itemsToSend := len(saleMap)
	if itemsToSend > 0xFF {
		itemsToSend = 0xFF
	}
	msg.AddByte(byte(itemsToSend))

	clientIDs := make([]uint16, 0, len(saleMap))
	for clientID := range saleMap {
		clientIDs = append(clientIDs, clientID)
	}
	sort.Slice(clientIDs, func(i, j int) bool { return clientIDs[i] < clientIDs[j] })

	for i := 0; i < itemsToSend; i++ {
		clientID := clientIDs[i]
		count := saleMap[clientID]
		if count > 0xFFFF {
			count = 0xFFFF
		}
		msg.AddU16(clientID)
		msg.AddU16(uint16(count))
	}
	c.WriteToOutputBuffer(&msg)
}

// SendResourceBalance updates one of the client resource counters.
func (s *Server) SendResourceBalance(c *Connection, resourceType byte, amount uint64) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xEE)
	msg.AddByte(resourceType)
	msg.AddU64(amount)
	c.WriteToOutputBuffer(&msg)
}

// SendStoreBalance updates the premium store coin counters.
func (s *Server) SendStoreBalance(c *Connection) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xDF)
	msg.AddByte(0x01)

	msg.AddU32(0) // total store coins
	msg.AddU32(0) // transferable store coins
	msg.AddU32(0) // reserved auction coins
	msg.AddU32(0) // tournament coins
	c.WriteToOutputBuffer(&msg)
}

// SendTradeItemRequest opens (ack) or mirrors a trade window; containers are
// flattened breadth-first into the item list.
func (s *Server) SendTradeItemRequest(c *Connection, traderName string, item *model.Item, ack bool) {
	var msg protocol.NetworkMessage
	if ack {
		msg.AddByte(0x7D)
	} else {
		msg.AddByte(0x7E)
	}

	msg.AddString(traderName)

	if item.Container != nil {
		queue := []*model.Item{item}
		items := []*model.Item{item}
		for len(queue) > 0 {
			next := queue[0]
			queue = queue[1:]
			for _, sub := range next.Container.Items {
				if sub.Container != nil {
					queue = append(queue, sub)
				}
				items = append(items, sub)
			}
		}

		msg.AddByte(byte(len(items)))
		for _, listItem := range items {
			msg.AddItem(listItem)
		}
	} else {
		msg.AddByte(0x01)
		msg.AddItem(item)
	}
	c.WriteToOutputBuffer(&msg)
}

// SendCloseTrade closes the trade window.
func (s *Server) SendCloseTrade(c *Connection) {
	var msg protocol.NetworkMessage
	msg.AddByte(0x7F)
	c.WriteToOutputBuffer(&msg)
}
