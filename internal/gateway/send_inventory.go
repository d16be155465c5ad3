package gateway

import (
	"sort"

	"github.com/fusion32/forgottenserver/internal/model"
	"github.com/fusion32/forgottenserver/internal/protocol"
)

// SendContainer opens or refreshes a container window, paginated from
// firstIndex.
func (s *Server) SendContainer(c *Connection, containerID uint8, item *model.Item, firstIndex uint16) {
	container := item.Container

	var msg protocol.NetworkMessage
	msg.AddByte(0x6E)

	msg.AddByte(containerID)
	msg.AddItem(item)
	msg.AddString(item.Name)

	msg.AddByte(container.Capacity)
	if container.HasParent {
		msg.AddByte(0x01)
	} else {
		msg.AddByte(0x00)
	}
	msg.AddByte(0x00) // show search icon
	if container.Unlocked {
		msg.AddByte(0x01) // drag and drop
	} else {
		msg.AddByte(0x00)
	}
	if container.Pagination {
		msg.AddByte(0x01)
	} else {
		msg.AddByte(0x00)
	}

	containerSize := len(container.Items)
	msg.AddU16(uint16(containerSize))
	msg.AddU16(firstIndex)
	if int(firstIndex) < containerSize {
		itemsToSend := containerSize - int(firstIndex)
		if itemsToSend > int(container.Capacity) {
			itemsToSend = int(container.Capacity)
		}
		if itemsToSend > 0xFF {
			itemsToSend = 0xFF
		}

		msg.AddByte(byte(itemsToSend))
		for i := 0; i < itemsToSend; i++ {
			msg.AddItem(container.Items[int(firstIndex)+i])
		}
	} else {
		msg.AddByte(0x00)
	}
	c.WriteToOutputBuffer(&msg)
}

// SendCloseContainer closes a container window.
func (s *Server) SendCloseContainer(c *Connection, containerID uint8) {
	var msg protocol.NetworkMessage
	msg.AddByte(0x6F)
	msg.AddByte(containerID)
	c.WriteToOutputBuffer(&msg)
}

// SendAddContainerItem inserts an item into an open container window.
func (s *Server) SendAddContainerItem(c *Connection, containerID uint8, slot uint16, item *model.Item) {
	var msg protocol.NetworkMessage
	msg.AddByte(0x70)
	msg.AddByte(containerID)
	msg.AddU16(slot)
	if item != nil {
		msg.AddItem(item)
	} else {
		msg.AddU16(0x00)
	}
	c.WriteToOutputBuffer(&msg)
}

// SendUpdateContainerItem replaces an item in an open container window.
func (s *Server) SendUpdateContainerItem(c *Connection, containerID uint8, slot uint16, item *model.Item) {
	var msg protocol.NetworkMessage
	msg.AddByte(0x71)
	msg.AddByte(containerID)
	msg.AddU16(slot)
	msg.AddItem(item)
	c.WriteToOutputBuffer(&msg)
}

// SendRemoveContainerItem removes an item from an open container window;
// with pagination, lastItem backfills the freed slot.
func (s *Server) SendRemoveContainerItem(c *Connection, containerID uint8, slot uint16, lastItem *model.Item) {
	var msg protocol.NetworkMessage
	msg.AddByte(0x72)
	msg.AddByte(containerID)
	msg.AddU16(slot)
	if lastItem != nil {
		msg.AddItem(lastItem)
	} else {
		msg.AddU16(0x00)
	}
	c.WriteToOutputBuffer(&msg)
}

// SendInventoryItem sets or clears an equipment slot.
func (s *Server) SendInventoryItem(c *Connection, slot uint8, item *model.Item) {
	var msg protocol.NetworkMessage
	if item != nil {
		msg.AddByte(0x78)
		msg.AddByte(slot)
		msg.AddItem(item)
	} else {
		msg.AddByte(0x79)
		msg.AddByte(slot)
	}
	c.WriteToOutputBuffer(&msg)
}

// SendItems pushes the consolidated carried-items list that feeds the
// client action bars: eleven fixed slot markers, then (client id, count)
// pairs.
func (s *Server) SendItems(c *Connection, inventory map[uint16]uint16) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xF5)

	msg.AddU16(uint16(len(inventory) + 11))
	for slot := uint16(1); slot <= 11; slot++ {
		msg.AddU16(slot)
		msg.AddByte(0)
		msg.AddU16(1)
	}

	clientIDs := make([]uint16, 0, len(inventory))
	for clientID := range inventory {
		clientIDs = append(clientIDs, clientID)
	}
	sort.Slice(clientIDs, func(i, j int) bool { return clientIDs[i] < clientIDs[j] })

	for _, clientID := range clientIDs {
		msg.AddU16(clientID)
		msg.AddByte(0)
		msg.AddU16(inventory[clientID])
	}
	c.WriteToOutputBuffer(&msg)
}

// SendTextWindow opens a read or read-write text window on an item.
func (s *Server) SendTextWindow(c *Connection, windowTextID uint32, item *model.Item, maxLen uint16, canWrite bool) {
	var msg protocol.NetworkMessage
	msg.AddByte(0x96)
	msg.AddU32(windowTextID)
	msg.AddItem(item)

	if canWrite {
		msg.AddU16(maxLen)
		msg.AddString(item.Text)
	} else {
		msg.AddU16(uint16(len(item.Text)))
		msg.AddString(item.Text)
	}

	if item.Writer != "" {
		msg.AddString(item.Writer)
	} else {
		msg.AddU16(0x00)
	}

	msg.AddByte(0x00) // "(traded)" suffix

	if item.WrittenAt != 0 {
		msg.AddString(formatDateShort(item.WrittenAt))
	} else {
		msg.AddU16(0x00)
	}
	c.WriteToOutputBuffer(&msg)
}

// SendHouseWindow opens the house access list editor.
func (s *Server) SendHouseWindow(c *Connection, windowTextID uint32, text string) {
	var msg protocol.NetworkMessage
	msg.AddByte(0x97)
	msg.AddByte(0x00)
	msg.AddU32(windowTextID)
	msg.AddString(text)
	c.WriteToOutputBuffer(&msg)
}
