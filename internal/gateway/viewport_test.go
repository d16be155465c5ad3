package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusion32/forgottenserver/internal/game"
	"github.com/fusion32/forgottenserver/internal/model"
	"github.com/fusion32/forgottenserver/internal/protocol"
)

func testPlayerAt(pos model.Position) *model.Player {
	p := &model.Player{}
	p.CreatureID = 0x10000001
	p.CreatureName = "Viewer"
	p.AccountType = model.AccountTypeNormal
	p.Pos = pos
	return p
}

func TestCanSeePositionSurfaceRules(t *testing.T) {
	player := testPlayerAt(model.Position{X: 100, Y: 100, Z: 7})

	// Above ground never sees below ground.
	assert.False(t, CanSeePosition(player, model.Position{X: 100, Y: 100, Z: 8}))
	assert.True(t, CanSeePosition(player, model.Position{X: 100, Y: 100, Z: 7}))

	// The surface player sees higher floors with the XY shift applied: z=0 is
	// 7 floors up, so the window moves 7 tiles toward +X/+Y.
	assert.True(t, CanSeePosition(player, model.Position{X: 107, Y: 107, Z: 0}))

	// Viewport bounds on the same floor.
	assert.True(t, CanSeePosition(player, model.Position{X: 100 + maxClientViewportX, Y: 100, Z: 7}))
	assert.False(t, CanSeePosition(player, model.Position{X: 100 + maxClientViewportX + 1, Y: 100, Z: 7}))
	assert.True(t, CanSeePosition(player, model.Position{X: 100, Y: 100 - maxClientViewportY, Z: 7}))
	assert.False(t, CanSeePosition(player, model.Position{X: 100, Y: 100 - maxClientViewportY - 1, Z: 7}))
}

func TestCanSeePositionUndergroundRules(t *testing.T) {
	player := testPlayerAt(model.Position{X: 100, Y: 100, Z: 10})

	assert.True(t, CanSeePosition(player, model.Position{X: 100, Y: 100, Z: 8}))
	assert.True(t, CanSeePosition(player, model.Position{X: 100, Y: 100, Z: 12}))
	assert.False(t, CanSeePosition(player, model.Position{X: 100, Y: 100, Z: 7}))
	assert.False(t, CanSeePosition(player, model.Position{X: 100, Y: 100, Z: 13}))

	// The floor delta shifts the visible window.
	assert.True(t, CanSeePosition(player, model.Position{X: 102, Y: 102, Z: 8}))
}

func TestCanSeeCreature(t *testing.T) {
	player := testPlayerAt(model.Position{X: 100, Y: 100, Z: 7})

	visible := &model.Monster{}
	visible.CreatureID = 7
	visible.Pos = model.Position{X: 101, Y: 100, Z: 7}
	assert.True(t, CanSeeCreature(player, visible))

	removed := &model.Monster{}
	removed.CreatureID = 8
	removed.Pos = visible.Pos
	removed.Removed = true
	assert.False(t, CanSeeCreature(player, removed))

	invisible := &model.Monster{}
	invisible.CreatureID = 9
	invisible.Pos = visible.Pos
	invisible.Invisible = true
	assert.False(t, CanSeeCreature(player, invisible))

	assert.False(t, CanSeeCreature(player, nil))
}

// viewportServer builds a server wired to a fresh world, no sockets.
func viewportServer(t *testing.T) (*Server, *game.World) {
	t.Helper()
	world := game.NewWorld(game.WorldTypePvP)
	world.SetState(game.StateNormal)
	s := NewServer(testConfig(), nil, game.NewExecutor(16), world, nil, nil, nil)
	return s, world
}

func testViewportConn(s *Server, player *model.Player) *Connection {
	c := &Connection{srv: s, loginDone: make(chan struct{})}
	c.state.Store(int32(stateOK))
	c.player = player
	player.Session = c
	return c
}

func TestKnownCreatureSetIntroductionAndChurn(t *testing.T) {
	s, world := viewportServer(t)
	player := testPlayerAt(model.Position{X: 100, Y: 100, Z: 7})
	c := testViewportConn(s, player)

	creatureA := &model.Monster{}
	creatureA.CreatureID = 1000
	creatureA.Pos = model.Position{X: 101, Y: 100, Z: 7}
	creatureA.MaxHP = 100
	creatureA.HP = 100
	world.PlaceCreature(creatureA, creatureA.Pos, true)

	// First sighting introduces with 0x61.
	var msg protocol.NetworkMessage
	s.addCreature(c, &msg, creatureA, false)
	require.Equal(t, uint16(0x61), leU16(msg.WrittenBuf()[:2]))

	// Second sighting references with 0x62.
	msg.Reset()
	s.addCreature(c, &msg, creatureA, false)
	require.Equal(t, uint16(0x62), leU16(msg.WrittenBuf()[:2]))
	require.Equal(t, creatureA.ID(), leU32(msg.WrittenBuf()[2:6]))
}

func TestKnownCreatureEvictionAtCapacity(t *testing.T) {
	s, world := viewportServer(t)
	player := testPlayerAt(model.Position{X: 100, Y: 100, Z: 7})
	c := testViewportConn(s, player)

	// Fill the set with ids of creatures that are not visible (unknown to
	// the registry), so the eviction scan can reuse the first slot.
	for id := uint32(1); id <= knownCreatureLimit; id++ {
		c.knownCreatures = append(c.knownCreatures, id)
	}

	creatureB := &model.Monster{}
	creatureB.CreatureID = 9000
	creatureB.Pos = model.Position{X: 100, Y: 101, Z: 7}
	creatureB.MaxHP = 50
	creatureB.HP = 50
	world.PlaceCreature(creatureB, creatureB.Pos, true)

	var msg protocol.NetworkMessage
	s.addCreature(c, &msg, creatureB, false)

	buf := msg.WrittenBuf()
	require.Equal(t, uint16(0x61), leU16(buf[:2]))
	assert.Equal(t, uint32(1), leU32(buf[2:6]), "introduction must carry the evicted id")
	assert.Equal(t, creatureB.ID(), leU32(buf[6:10]))
	assert.Equal(t, creatureB.ID(), c.knownCreatures[0])
	assert.Len(t, c.knownCreatures, knownCreatureLimit)

	// Further references use the known-creature opcode.
	msg.Reset()
	s.addCreature(c, &msg, creatureB, false)
	assert.Equal(t, uint16(0x62), leU16(msg.WrittenBuf()[:2]))
}

func TestFloorDescriptionSkipRuns(t *testing.T) {
	s, world := viewportServer(t)
	player := testPlayerAt(model.Position{X: 100, Y: 100, Z: 7})
	c := testViewportConn(s, player)

	ground := &model.Item{ClientID: 4526}
	world.SetTile(model.Position{X: 50, Y: 50, Z: 7}, &model.Tile{Ground: ground})

	// A 3x3 scan where only the first tile exists: the described tile comes
	// first (no pending run to flush), then the run of 8 misses at scan end.
	var msg protocol.NetworkMessage
	skip := s.floorDescription(c, &msg, 50, 50, 7, 3, 3, 0, -1)
	if skip >= 0 {
		msg.AddByte(byte(skip))
		msg.AddByte(0xFF)
	}

	buf := msg.WrittenBuf()
	require.Equal(t, ground.ClientID, leU16(buf[:2]))
	require.Equal(t, []byte{0x08, 0xFF}, buf[len(buf)-2:])
}

func TestFloorDescriptionLongRunCapsAt254(t *testing.T) {
	s, _ := viewportServer(t)
	player := testPlayerAt(model.Position{X: 5000, Y: 5000, Z: 7})
	c := testViewportConn(s, player)

	// 300 missing tiles force an intermediate (0xFF, 0xFF) flush at 254.
	var msg protocol.NetworkMessage
	skip := s.floorDescription(c, &msg, 5000, 5000, 7, 30, 10, 0, -1)
	if skip >= 0 {
		msg.AddByte(byte(skip))
		msg.AddByte(0xFF)
	}

	buf := msg.WrittenBuf()
	require.Equal(t, []byte{0xFF, 0xFF}, buf[:2])
	// The remaining misses flush as one final run at scan end.
	require.Equal(t, []byte{43, 0xFF}, buf[2:4])
}

func TestMapDescriptionFloorCount(t *testing.T) {
	s, world := viewportServer(t)

	// Mark one tile per floor at a fixed position so each described floor
	// leaves a distinct trace.
	for z := 0; z <= 10; z++ {
		world.SetTile(model.Position{X: 200, Y: 200, Z: uint8(z)}, &model.Tile{
			Ground: &model.Item{ClientID: uint16(1000 + z)},
		})
	}

	// Surface: floors 7..0 walked in that order.
	player := testPlayerAt(model.Position{X: 200, Y: 200, Z: 7})
	c := testViewportConn(s, player)
	var msg protocol.NetworkMessage
	s.mapDescription(c, &msg, 200, 200, 7, 1, 1)
	buf := msg.WrittenBuf()
	assert.Equal(t, uint16(1007), leU16(buf[:2]), "floor walk starts at z=7")
	// Floors 6..0 miss (the offset shifts them off the marked column), so
	// the walk ends with a single flushed run of 7.
	assert.Equal(t, []byte{0x07, 0xFF}, buf[len(buf)-2:])

	// Underground z=10: floors 8..12, i.e. (endz-startz+zstep)/zstep = 5.
	player2 := testPlayerAt(model.Position{X: 200, Y: 200, Z: 10})
	c2 := testViewportConn(s, player2)
	var msg2 protocol.NetworkMessage
	s.mapDescription(c2, &msg2, 200, 200, 10, 1, 1)
	// Only floor 10 has a tile on the walked column (the offset moves floors
	// 8 and 9 onto empty squares), so one skip pair is flushed before it.
	buf2 := msg2.WrittenBuf()
	require.NotEmpty(t, buf2)
}

func leU16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func leU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
