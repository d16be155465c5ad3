package gateway

import (
	"fmt"

	"github.com/fusion32/forgottenserver/internal/protocol"
)

// SendLoginError refuses the login with a reason and resolves the handshake
// to a graceful close.
func (s *Server) SendLoginError(c *Connection, message string) {
	var msg protocol.NetworkMessage
	msg.AddByte(0x14)
	msg.AddString(message)
	c.WriteToOutputBuffer(&msg)
	c.resolveLogin(stateClose)
}

// SendLoginWaitList tells a queued client its slot and when to retry.
func (s *Server) SendLoginWaitList(c *Connection, waitSlot, retrySeconds int) {
	var msg protocol.NetworkMessage
	msg.AddByte(0x16)
	msg.AddString(fmt.Sprintf("Too many players online.\n"+
		"You are at place %d on the waiting list.", waitSlot))
	if retrySeconds > 0xFF {
		retrySeconds = 0xFF
	}
	msg.AddByte(byte(retrySeconds))
	c.WriteToOutputBuffer(&msg)
	c.resolveLogin(stateClose)
}

// SendSessionEnd announces why the session is over.
func (s *Server) SendSessionEnd(c *Connection, reason byte) {
	var msg protocol.NetworkMessage
	msg.AddByte(0x18)
	msg.AddByte(reason)
	c.WriteToOutputBuffer(&msg)
}

// SendEnableExtendedOpcode switches capable terminals into the extended
// opcode dialect.
func (s *Server) SendEnableExtendedOpcode(c *Connection) {
	var msg protocol.NetworkMessage
	msg.AddByte(0x32)
	msg.AddByte(0x00)
	msg.AddU16(0x0000)
	c.WriteToOutputBuffer(&msg)
}

// SendPendingStateEntered parks the client in the pending screen.
func (s *Server) SendPendingStateEntered(c *Connection) {
	var msg protocol.NetworkMessage
	msg.AddByte(0x0A)
	c.WriteToOutputBuffer(&msg)
}

// SendEnterWorld releases the client from the pending screen into the world.
func (s *Server) SendEnterWorld(c *Connection) {
	var msg protocol.NetworkMessage
	msg.AddByte(0x0F)
	c.WriteToOutputBuffer(&msg)
}

// SendPing asks the client for a pong.
func (s *Server) SendPing(c *Connection) {
	var msg protocol.NetworkMessage
	msg.AddByte(0x1D)
	c.WriteToOutputBuffer(&msg)
}

// SendPingBack answers a client ping.
func (s *Server) SendPingBack(c *Connection) {
	var msg protocol.NetworkMessage
	msg.AddByte(0x1E)
	c.WriteToOutputBuffer(&msg)
}

// SendReLoginWindow offers the death relogin dialog.
func (s *Server) SendReLoginWindow(c *Connection, unfairFightReduction uint8) {
	var msg protocol.NetworkMessage
	msg.AddByte(0x28)
	msg.AddByte(0x00)
	msg.AddByte(unfairFightReduction)
	msg.AddByte(0x00) // can use death redemption
	c.WriteToOutputBuffer(&msg)
}

// SendFYIBox pops a message box the client must dismiss.
func (s *Server) SendFYIBox(c *Connection, message string) {
	var msg protocol.NetworkMessage
	msg.AddByte(0x15)
	msg.AddString(message)
	c.WriteToOutputBuffer(&msg)
}
