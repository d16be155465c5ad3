package gateway

import (
	"sync/atomic"

	"github.com/fusion32/forgottenserver/internal/model"
	"github.com/fusion32/forgottenserver/internal/protocol"
)

// statementID numbers every speak packet; the client uses it to reference
// statements in reports. Monotonic process-wide.
var statementID atomic.Uint32

// ChannelInfo is one entry of the channels dialog.
type ChannelInfo struct {
	ID   uint16
	Name string
}

// TextMessage is the payload of a 0xB4 message; the extra fields only apply
// to some classes.
type TextMessage struct {
	Type      MessageClass
	ChannelID uint16
	Position  model.Position
	Text      string

	PrimaryValue   uint32
	PrimaryColor   byte
	SecondaryValue uint32
	SecondaryColor byte
}

// SendTextMessage renders a status/system message; damage and heal classes
// carry positioned value/color pairs.
func (s *Server) SendTextMessage(c *Connection, message TextMessage) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xB4)
	msg.AddByte(message.Type)
	switch message.Type {
	case MessageDamageDealt, MessageDamageReceived, MessageDamageOthers:
		msg.AddPosition(message.Position)
		msg.AddU32(message.PrimaryValue)
		msg.AddByte(message.PrimaryColor)
		msg.AddU32(message.SecondaryValue)
		msg.AddByte(message.SecondaryColor)
	case MessageHealed, MessageHealedOthers, MessageExperience, MessageExperienceOthers:
		msg.AddPosition(message.Position)
		msg.AddU32(message.PrimaryValue)
		msg.AddByte(message.PrimaryColor)
	case MessageGuild, MessagePartyManagement, MessageParty:
		msg.AddU16(message.ChannelID)
	}
	msg.AddString(message.Text)
	c.WriteToOutputBuffer(&msg)
}

// SendChannelsDialog lists the channels the player may open.
func (s *Server) SendChannelsDialog(c *Connection, channels []ChannelInfo) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xAB)
	msg.AddByte(byte(len(channels)))
	for _, channel := range channels {
		msg.AddU16(channel.ID)
		msg.AddString(channel.Name)
	}
	c.WriteToOutputBuffer(&msg)
}

// SendChannel opens a channel tab with its user and invite lists.
func (s *Server) SendChannel(c *Connection, channelID uint16, channelName string,
	users, invited []string) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xAC)

	msg.AddU16(channelID)
	msg.AddString(channelName)

	msg.AddU16(uint16(len(users)))
	for _, name := range users {
		msg.AddString(name)
	}

	msg.AddU16(uint16(len(invited)))
	for _, name := range invited {
		msg.AddString(name)
	}
	c.WriteToOutputBuffer(&msg)
}

// SendChannelMessage carries an authored message into an open channel tab.
func (s *Server) SendChannelMessage(c *Connection, author, text string, talkType SpeakClass, channelID uint16) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xAA)
	msg.AddU32(0x00)
	msg.AddString(author)
	msg.AddU16(0x00)
	msg.AddByte(talkType)
	msg.AddU16(channelID)
	msg.AddString(text)
	c.WriteToOutputBuffer(&msg)
}

// SendChannelEvent reports a join/leave/invite/exclude in a channel.
func (s *Server) SendChannelEvent(c *Connection, channelID uint16, playerName string, event byte) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xF3)
	msg.AddU16(channelID)
	msg.AddString(playerName)
	msg.AddByte(event)
	c.WriteToOutputBuffer(&msg)
}

// SendOpenPrivateChannel opens a private conversation tab.
func (s *Server) SendOpenPrivateChannel(c *Connection, receiver string) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xAD)
	msg.AddString(receiver)
	c.WriteToOutputBuffer(&msg)
}

// SendClosePrivate closes a private channel tab.
func (s *Server) SendClosePrivate(c *Connection, channelID uint16) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xB3)
	msg.AddU16(channelID)
	c.WriteToOutputBuffer(&msg)
}

// SendCreatePrivateChannel confirms the player's own private channel.
func (s *Server) SendCreatePrivateChannel(c *Connection, channelID uint16, channelName string) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xB2)
	msg.AddU16(channelID)
	msg.AddString(channelName)
	msg.AddU16(0x01)
	msg.AddString(c.player.Name())
	msg.AddU16(0x00)
	c.WriteToOutputBuffer(&msg)
}

// SendCreatureSay renders speech on screen at the speaker's (or an
// explicit) position.
func (s *Server) SendCreatureSay(c *Connection, creature model.Creature,
	talkType SpeakClass, text string, pos *model.Position) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xAA)

	msg.AddU32(statementID.Add(1))

	msg.AddString(creature.Name())
	msg.AddByte(0x00) // "(Traded)" suffix

	if speaker := creature.AsPlayer(); speaker != nil {
		msg.AddU16(speaker.Level)
	} else {
		msg.AddU16(0x00)
	}

	msg.AddByte(talkType)
	if pos != nil {
		msg.AddPosition(*pos)
	} else {
		msg.AddPosition(creature.Position())
	}

	msg.AddString(text)
	c.WriteToOutputBuffer(&msg)
}

// SendToChannel renders a creature statement inside a channel tab.
func (s *Server) SendToChannel(c *Connection, creature model.Creature,
	talkType SpeakClass, text string, channelID uint16) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xAA)

	msg.AddU32(statementID.Add(1))
	if creature == nil {
		msg.AddU32(0x00)
		msg.AddByte(0x00) // "(Traded)" suffix
	} else {
		msg.AddString(creature.Name())
		msg.AddByte(0x00) // "(Traded)" suffix

		if speaker := creature.AsPlayer(); speaker != nil {
			msg.AddU16(speaker.Level)
		} else {
			msg.AddU16(0x00)
		}
	}

	msg.AddByte(talkType)
	msg.AddU16(channelID)
	msg.AddString(text)
	c.WriteToOutputBuffer(&msg)
}

// SendPrivateMessage delivers a whisper from another player (or the server
// when speaker is nil).
func (s *Server) SendPrivateMessage(c *Connection, speaker *model.Player,
	talkType SpeakClass, text string) {
	var msg protocol.NetworkMessage
	msg.AddByte(0xAA)
	msg.AddU32(statementID.Add(1))
	if speaker != nil {
		msg.AddString(speaker.Name())
		msg.AddByte(0x00) // "(Traded)" suffix
		msg.AddU16(speaker.Level)
	} else {
		msg.AddU32(0x00)
		msg.AddByte(0x00)
	}
	msg.AddByte(talkType)
	msg.AddString(text)
	c.WriteToOutputBuffer(&msg)
}
