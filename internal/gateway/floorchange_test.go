package gateway

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fusion32/forgottenserver/internal/model"
)

// Moving the controlled player up from z=8 to z=7 must emit the move packet,
// the 0xBE floor-change marker, descriptions for floors 5..0 with offset
// 8-z, then the west and north strips at the destination layer. With an
// empty map every region collapses into deterministic skip runs, so the
// whole packet can be pinned byte for byte.
func TestMoveUpThroughSurfaceEmitsFloorStrips(t *testing.T) {
	s, world := viewportServer(t)

	player := testPlayerAt(model.Position{X: 100, Y: 100, Z: 7})
	world.PlaceCreature(player, player.Pos, true)
	c := testViewportConn(s, player)

	oldPos := model.Position{X: 100, Y: 100, Z: 8}
	newPos := model.Position{X: 100, Y: 100, Z: 7}
	s.SendMoveCreature(c, player, newPos, 1, oldPos, 1, false)

	out := c.popOutput()
	require.NotNil(t, out)
	buf := out.OutputBuf()

	expected := []byte{
		// move creature: old position + stackpos, new position
		0x6D, 100, 0, 100, 0, 8, 1, 100, 0, 100, 0, 7,
		// floor change up
		0xBE,
	}
	// Floors 5..0 are one empty 18x14 region each: 1512 missing tiles
	// compress into five full runs and one remainder flush.
	for i := 0; i < 5; i++ {
		expected = append(expected, 0xFF, 0xFF)
	}
	expected = append(expected, 231, 0xFF)
	// West strip: 1x14 across floors 7..0 = 112 misses.
	expected = append(expected, 0x68, 111, 0xFF)
	// North strip: 18x1 across floors 7..0 = 144 misses.
	expected = append(expected, 0x65, 143, 0xFF)

	require.Equal(t, expected, buf)
}

// Moving down from the surface replaces the move packet with a removal, as
// the client cannot see below ground from z=7.
func TestMoveDownFromSurfaceRemovesCreature(t *testing.T) {
	s, world := viewportServer(t)

	player := testPlayerAt(model.Position{X: 100, Y: 100, Z: 8})
	world.PlaceCreature(player, player.Pos, true)
	c := testViewportConn(s, player)

	oldPos := model.Position{X: 100, Y: 100, Z: 7}
	newPos := model.Position{X: 100, Y: 100, Z: 8}
	s.SendMoveCreature(c, player, newPos, 1, oldPos, 1, false)

	out := c.popOutput()
	require.NotNil(t, out)
	buf := out.OutputBuf()

	// Removal of the old stack position, then the 0xBF marker.
	require.Equal(t, []byte{0x6C, 100, 0, 100, 0, 7, 1}, buf[:7])
	require.Equal(t, byte(0xBF), buf[7])
}
