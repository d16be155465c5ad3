package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusion32/forgottenserver/internal/game"
	"github.com/fusion32/forgottenserver/internal/model"
	"github.com/fusion32/forgottenserver/internal/protocol"
)

// recordingOps captures dispatched operations; anything unexpected panics
// through the embedded nil interface.
type recordingOps struct {
	game.PlayerOps

	walked   []model.Direction
	said     []string
	channels []uint16
	pinged   int
	attacked []uint32
}

func (r *recordingOps) Walk(_ *model.Player, dir model.Direction) {
	r.walked = append(r.walked, dir)
}

func (r *recordingOps) Say(_ *model.Player, channelID uint16, _ byte, _ string, text string) {
	r.said = append(r.said, text)
	r.channels = append(r.channels, channelID)
}

func (r *recordingOps) ReceivePing(*model.Player) { r.pinged++ }

func (r *recordingOps) Attack(_ *model.Player, creatureID uint32) {
	r.attacked = append(r.attacked, creatureID)
}

func (r *recordingOps) UnhandledCommand(*model.Player, byte) {}

func dispatcherEnv(t *testing.T) (*Server, *Connection, *recordingOps) {
	t.Helper()
	world := game.NewWorld(game.WorldTypePvP)
	world.SetState(game.StateNormal)
	ops := &recordingOps{}
	s := NewServer(testConfig(), nil, game.NewExecutor(16), world, ops, nil, nil)

	player := testPlayerAt(model.Position{X: 100, Y: 100, Z: 7})
	world.PlaceCreature(player, player.Pos, true)
	c := testViewportConn(s, player)
	return s, c, ops
}

func TestDispatcherRoutesOpcodes(t *testing.T) {
	s, c, ops := dispatcherEnv(t)

	s.parsePacket(c, []byte{0x65})
	s.parsePacket(c, []byte{0x6B})
	require.Equal(t, []model.Direction{model.DirectionNorth, model.DirectionSouthEast}, ops.walked)

	s.parsePacket(c, []byte{0x1E})
	assert.Equal(t, 1, ops.pinged)

	// Attack: u32 creature id, u32 target sequence.
	s.parsePacket(c, []byte{0xA1, 0x39, 0x05, 0x00, 0x00, 0xAA, 0xBB, 0xCC, 0xDD})
	require.Equal(t, []uint32{1337}, ops.attacked)

	assert.Equal(t, stateOK, c.State())
}

func TestDispatcherParsesSay(t *testing.T) {
	s, c, ops := dispatcherEnv(t)

	var msg protocol.NetworkMessage
	msg.AddByte(0x96)
	msg.AddByte(TalkTypeChannelY)
	msg.AddU16(3)
	msg.AddString("hello world")
	s.parsePacket(c, msg.WrittenBuf())

	require.Equal(t, []string{"hello world"}, ops.said)
	assert.Equal(t, []uint16{3}, ops.channels)
}

func TestDispatcherDropsOversizedChat(t *testing.T) {
	s, c, ops := dispatcherEnv(t)

	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}

	var msg protocol.NetworkMessage
	msg.AddByte(0x96)
	msg.AddByte(TalkTypeSay)
	msg.AddString(string(long))
	s.parsePacket(c, msg.WrittenBuf())

	assert.Empty(t, ops.said)
	assert.Equal(t, stateOK, c.State())
}

func TestDispatcherOverrunDetaches(t *testing.T) {
	s, c, _ := dispatcherEnv(t)
	player := c.player

	// Attack wants eight bytes of payload; two underflow the parser.
	s.parsePacket(c, []byte{0xA1, 0x39, 0x05})

	assert.Equal(t, stateClose, c.State())
	assert.Nil(t, c.player)
	assert.Nil(t, player.Session)
}

func TestDispatcherWithoutPlayerDetaches(t *testing.T) {
	s, c, ops := dispatcherEnv(t)
	c.player = nil

	s.parsePacket(c, []byte{0x65})

	assert.Equal(t, stateClose, c.State())
	assert.Empty(t, ops.walked)
}

func TestDispatcherDeadPlayerOnlyHonorsLogout(t *testing.T) {
	s, c, ops := dispatcherEnv(t)
	c.player.Dead = true

	// Anything but logout or enter-world is ignored.
	s.parsePacket(c, []byte{0x65})
	assert.Empty(t, ops.walked)
	assert.Equal(t, stateOK, c.State())

	// Enter-world on a dead player detaches.
	s.parsePacket(c, []byte{0x0F})
	assert.Equal(t, stateClose, c.State())
}

func TestDispatcherShutdownDropsSilently(t *testing.T) {
	s, c, ops := dispatcherEnv(t)
	s.eng.(*game.World).SetState(game.StateShutdown)

	s.parsePacket(c, []byte{0x65})
	assert.Empty(t, ops.walked)
	assert.Equal(t, stateOK, c.State())
}
