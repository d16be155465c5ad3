package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusion32/forgottenserver/internal/model"
)

func TestMessageReadWriteRoundTrip(t *testing.T) {
	var m NetworkMessage
	m.AddByte(0x42)
	m.AddU16(0x1234)
	m.AddU32(0xDEADBEEF)
	m.AddU64(0x1122334455667788)
	m.AddString("hello")
	m.AddPosition(model.Position{X: 100, Y: 200, Z: 7})

	require.False(t, m.IsOverrun())

	assert.Equal(t, byte(0x42), m.GetByte())
	assert.Equal(t, uint16(0x1234), m.GetU16())
	assert.Equal(t, uint32(0xDEADBEEF), m.GetU32())
	assert.Equal(t, uint64(0x1122334455667788), m.GetU64())
	assert.Equal(t, "hello", m.GetString())
	assert.Equal(t, model.Position{X: 100, Y: 200, Z: 7}, m.GetPosition())
	assert.False(t, m.IsOverrun())
	assert.Equal(t, 0, m.RemainingLen())
}

func TestMessageUnderflowReturnsZeroAndFlagsOverrun(t *testing.T) {
	var m NetworkMessage
	m.AddByte(0x01)

	assert.Equal(t, byte(0x01), m.GetByte())
	assert.Equal(t, uint32(0), m.GetU32())
	assert.True(t, m.IsOverrun())
	assert.Equal(t, 0, m.RemainingLen())
	assert.Equal(t, "", m.GetString())
}

func TestMessageDiscardPadding(t *testing.T) {
	var m NetworkMessage
	m.AddBytes([]byte{1, 2, 3, 4, 5})

	require.True(t, m.DiscardPadding(2))
	assert.Equal(t, 3, m.RemainingLen())
	assert.False(t, m.DiscardPadding(4))
	assert.False(t, m.DiscardPadding(-1))
}

func TestMessageAddItemEncodings(t *testing.T) {
	var m NetworkMessage
	m.AddItem(&model.Item{ClientID: 3031, Stackable: true, Count: 50})
	assert.Equal(t, []byte{0xD7, 0x0B, 50}, m.WrittenBuf())

	m.Reset()
	m.AddItem(&model.Item{ClientID: 100})
	assert.Equal(t, []byte{100, 0}, m.WrittenBuf())

	m.Reset()
	m.AddItem(&model.Item{ClientID: 200, Splash: true, FluidColor: 5})
	assert.Equal(t, []byte{200, 0, 5}, m.WrittenBuf())

	m.Reset()
	m.AddItem(&model.Item{ClientID: 300, Container: &model.Container{Capacity: 8}})
	assert.Equal(t, []byte{0x2C, 0x01, 0x00, 0x00}, m.WrittenBuf())
}

func TestOutputMessageHeaders(t *testing.T) {
	var m OutputMessage
	m.Reset()
	m.AddByte(0xAB)
	m.AddHeaderByte(0x01)
	m.AddHeaderU32(0x04030201)
	m.AddHeaderU16(0x0002)

	assert.Equal(t, []byte{0x02, 0x00, 0x01, 0x02, 0x03, 0x04, 0x01, 0xAB}, m.OutputBuf())
	assert.Equal(t, 8, m.OutputLen())
}

func TestOutputMessageAppend(t *testing.T) {
	var payload NetworkMessage
	payload.AddByte(0x14)
	payload.AddString("refused")

	var out OutputMessage
	out.Reset()
	out.Append(&payload)

	assert.Equal(t, payload.WrittenLen(), out.OutputLen())
	assert.Equal(t, payload.WrittenBuf(), out.OutputBuf())
}

func TestOutputPoolBounds(t *testing.T) {
	p := NewOutputPool(2)

	a, b, c := p.Get(), p.Get(), p.Get()
	p.Put(a)
	p.Put(b)
	p.Put(c) // dropped: pool full
	assert.Equal(t, 2, p.Len())

	// LIFO: last put comes back first.
	got := p.Get()
	assert.Same(t, b, got)

	// Reset on Get.
	got.AddByte(1)
	p.Put(got)
	again := p.Get()
	assert.Equal(t, 0, again.OutputLen())
}
