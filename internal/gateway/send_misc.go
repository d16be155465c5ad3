package gateway

import (
	"github.com/fusion32/forgottenserver/internal/model"
	"github.com/fusion32/forgottenserver/internal/protocol"
)

// ModalWindow describes a server-driven dialog with buttons and choices.
type ModalWindow struct {
	ID      uint32
	Title   string
	Message string

	Buttons []ModalChoice
	Choices []ModalChoice

	DefaultEscapeButton uint8
	DefaultEnterButton  uint8
	Priority            bool
}

// ModalChoice is one button or list entry of a modal window.
type ModalChoice struct {
	Text string
	ID   uint8
}

// SendModalWindow opens a modal dialog.
func (s *Server) SendModalWindow(c *Connection, window ModalWindow) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xFA)

	msg.AddU32(window.ID)
	msg.AddString(window.Title)
	msg.AddString(window.Message)

	msg.AddByte(byte(len(window.Buttons)))
	for _, button := range window.Buttons {
		msg.AddString(button.Text)
		msg.AddByte(button.ID)
	}

	msg.AddByte(byte(len(window.Choices)))
	for _, choice := range window.Choices {
		msg.AddString(choice.Text)
		msg.AddByte(choice.ID)
	}

	msg.AddByte(window.DefaultEscapeButton)
	msg.AddByte(window.DefaultEnterButton)
	if window.Priority {
		msg.AddByte(0x01)
	} else {
		msg.AddByte(0x00)
	}
	c.WriteToOutputBuffer(&msg)
}

// SendTutorial fires a tutorial hint.
func (s *Server) SendTutorial(c *Connection, tutorialID uint8) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xDC)
	msg.AddByte(tutorialID)
	c.WriteToOutputBuffer(&msg)
}

// SendAddMarker drops a minimap marker.
func (s *Server) SendAddMarker(c *Connection, pos model.Position, markType uint8, description string) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xDD)
	msg.AddByte(0x00)
	msg.AddPosition(pos)
	msg.AddByte(markType)
	msg.AddString(description)
	c.WriteToOutputBuffer(&msg)
}

// SendVIP pushes one VIP list row.
func (s *Server) SendVIP(c *Connection, guid uint32, name, description string,
	icon uint32, notify bool, status uint8) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xD2)
	msg.AddU32(guid)
	msg.AddString(name)
	msg.AddString(description)
	if icon > 10 {
		icon = 10
	}
	msg.AddU32(icon)
	if notify {
		msg.AddByte(0x01)
	} else {
		msg.AddByte(0x00)
	}
	msg.AddByte(status)
	msg.AddByte(0x00) // vip groups
	c.WriteToOutputBuffer(&msg)
}

// SendUpdatedVIPStatus reports a VIP going on or offline.
func (s *Server) SendUpdatedVIPStatus(c *Connection, guid uint32, newStatus uint8) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xD3)
	msg.AddU32(guid)
	msg.AddByte(newStatus)
	c.WriteToOutputBuffer(&msg)
}

// SendVIPEntries pushes the whole VIP list, resolving online status against
// the live player registry.
func (s *Server) SendVIPEntries(c *Connection, entries []model.VIPEntry) {
	for _, entry := range entries {
		status := uint8(VipStatusOnline)

		vipPlayer := s.eng.PlayerByGUID(entry.GUID)
		if vipPlayer == nil || !c.player.CanSeeCreature(vipPlayer) {
			status = VipStatusOffline
		}

		s.SendVIP(c, entry.GUID, entry.Name, entry.Description, entry.Icon, entry.Notify, status)
	}
}

// SendItemClasses publishes the upgrade class/tier fee table.
func (s *Server) SendItemClasses(c *Connection) {
	var msg protocol.NetworkMessage
	msg.AddByte(0x86)

	const classCount = 4
	const tierCount = 10

	msg.AddByte(classCount)
	for class := 1; class <= classCount; class++ {
		msg.AddByte(byte(class))

		msg.AddByte(tierCount)
		for tier := 0; tier < tierCount; tier++ {
			msg.AddByte(byte(tier))
			msg.AddU64(10000) // upgrade cost
		}
	}

	for i := 0; i < tierCount+1; i++ {
		msg.AddByte(0)
	}
	c.WriteToOutputBuffer(&msg)
}
