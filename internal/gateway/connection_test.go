package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusion32/forgottenserver/internal/model"
	"github.com/fusion32/forgottenserver/internal/protocol"
)

func TestConnectionStateTransitions(t *testing.T) {
	s, _ := viewportServer(t)
	c := &Connection{srv: s, loginDone: make(chan struct{})}
	c.state.Store(int32(stateLogin))

	require.True(t, c.resolveLogin(stateOK))
	assert.Equal(t, stateOK, c.State())

	// Login resolution is one-shot.
	assert.False(t, c.resolveLogin(stateClose))
	assert.Equal(t, stateOK, c.State())

	// OK -> CLOSE via CAS.
	assert.True(t, c.transition(stateOK, stateClose))
	assert.False(t, c.transition(stateOK, stateClose))
	assert.Equal(t, stateClose, c.State())
}

func TestOutputQueueIsFIFO(t *testing.T) {
	s, _ := viewportServer(t)
	c := &Connection{srv: s, loginDone: make(chan struct{})}
	c.state.Store(int32(stateOK))

	// Three packets larger than one buffer's worth of coalescing is hard to
	// force, so use three distinct opcodes and verify coalesced order.
	for _, opcode := range []byte{0x01, 0x02, 0x03} {
		var msg protocol.NetworkMessage
		msg.AddByte(opcode)
		c.WriteToOutputBuffer(&msg)
	}

	out := c.popOutput()
	require.NotNil(t, out)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, out.OutputBuf())

	// Queue drained.
	assert.Nil(t, c.popOutput())
}

func TestOutputQueueChainsWhenBufferFull(t *testing.T) {
	s, _ := viewportServer(t)
	c := &Connection{srv: s, loginDone: make(chan struct{})}
	c.state.Store(int32(stateOK))

	// Two nearly full messages cannot coalesce into one buffer.
	var big protocol.NetworkMessage
	big.AddBytes(make([]byte, protocol.MaxMessageSize-64))

	c.WriteToOutputBuffer(&big)
	c.WriteToOutputBuffer(&big)

	first := c.popOutput()
	require.NotNil(t, first)
	second := c.popOutput()
	require.NotNil(t, second)
	assert.Nil(t, c.popOutput())

	assert.Equal(t, protocol.MaxMessageSize-64, first.OutputLen())
	assert.Equal(t, protocol.MaxMessageSize-64, second.OutputLen())
}

func TestDetachClearsBothPointers(t *testing.T) {
	s, world := viewportServer(t)
	player := testPlayerAt(model.Position{X: 10, Y: 10, Z: 7})
	world.PlaceCreature(player, player.Pos, true)

	c := testViewportConn(s, player)
	require.Equal(t, stateOK, c.State())

	Detach(c)

	assert.Nil(t, c.player)
	assert.Nil(t, player.Session)
	assert.Equal(t, stateClose, c.State())
	assert.Nil(t, world.CreatureByID(player.ID()), "detach releases the registry reference")

	// A second detach is harmless.
	Detach(c)
	assert.Equal(t, stateClose, c.State())
}

func TestDetachDoesNotResurrectAbort(t *testing.T) {
	s, _ := viewportServer(t)
	c := &Connection{srv: s, loginDone: make(chan struct{})}
	c.state.Store(int32(stateAbort))

	Detach(c)
	assert.Equal(t, stateAbort, c.State())
}

func TestLoginErrorResolvesToClose(t *testing.T) {
	s, _ := viewportServer(t)
	c := &Connection{srv: s, loginDone: make(chan struct{})}
	c.state.Store(int32(stateLogin))

	s.SendLoginError(c, "Account name or password is not correct.")

	assert.Equal(t, stateClose, c.State())

	out := c.popOutput()
	require.NotNil(t, out)
	buf := out.OutputBuf()
	assert.Equal(t, byte(0x14), buf[0])
	assert.Equal(t, "Account name or password is not correct.", string(buf[3:]))
	assert.Equal(t, uint16(len(buf)-3), leU16(buf[1:3]))
}

func TestWaitListPacketLayout(t *testing.T) {
	s, _ := viewportServer(t)
	c := &Connection{srv: s, loginDone: make(chan struct{})}
	c.state.Store(int32(stateLogin))

	s.SendLoginWaitList(c, 3, 10)

	out := c.popOutput()
	require.NotNil(t, out)
	buf := out.OutputBuf()
	assert.Equal(t, byte(0x16), buf[0])
	assert.Equal(t, byte(10), buf[len(buf)-1], "retry seconds trail the message")
	assert.Contains(t, string(buf[3:len(buf)-1]), "place 3 on the waiting list")
	assert.Equal(t, stateClose, c.State())
}

func TestVisibilityGatedBuilderStaysSilent(t *testing.T) {
	s, _ := viewportServer(t)
	player := testPlayerAt(model.Position{X: 100, Y: 100, Z: 7})
	c := testViewportConn(s, player)

	// Below ground is invisible from the surface: no bytes may be enqueued.
	s.SendMagicEffect(c, model.Position{X: 100, Y: 100, Z: 8}, 13)
	assert.Nil(t, c.popOutput())

	s.SendMagicEffect(c, model.Position{X: 101, Y: 100, Z: 7}, 13)
	out := c.popOutput()
	require.NotNil(t, out)
	assert.Equal(t, []byte{0x83, 101, 0, 100, 0, 7, magicEffectsCreateEffect, 13, magicEffectsEndLoop}, out.OutputBuf())
}

func TestSessionEndLayout(t *testing.T) {
	s, _ := viewportServer(t)
	c := testViewportConn(s, testPlayerAt(model.Position{X: 1, Y: 1, Z: 7}))

	s.SendSessionEnd(c, sessionEndForceClose)
	out := c.popOutput()
	require.NotNil(t, out)
	assert.Equal(t, []byte{0x18, sessionEndForceClose}, out.OutputBuf())
}

func TestCreatureSayStatementIDsAreMonotonic(t *testing.T) {
	s, _ := viewportServer(t)
	player := testPlayerAt(model.Position{X: 100, Y: 100, Z: 7})
	player.Level = 20
	c := testViewportConn(s, player)

	s.SendCreatureSay(c, player, TalkTypeSay, "hello", nil)
	first := c.popOutput()
	require.NotNil(t, first)
	firstID := leU32(first.OutputBuf()[1:5])

	s.SendCreatureSay(c, player, TalkTypeSay, "again", nil)
	second := c.popOutput()
	require.NotNil(t, second)
	secondID := leU32(second.OutputBuf()[1:5])

	assert.Greater(t, secondID, firstID)
}
