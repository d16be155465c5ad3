package protocol

import (
	"encoding/binary"
	"math"

	"github.com/fusion32/forgottenserver/internal/model"
)

// MaxMessageSize bounds a single wire frame, header included.
const MaxMessageSize = 24590

// NetworkMessage is a bounded byte buffer with independent read and write
// cursors. Reads never over-read: on underflow they return the zero value and
// advance the cursor past the end, which flips the overrun flag. Callers
// check IsOverrun once after a batch of reads instead of per call.
type NetworkMessage struct {
	rdpos int
	wrpos int
	buf   [MaxMessageSize]byte
}

// Reset rewinds both cursors.
func (m *NetworkMessage) Reset() {
	m.rdpos = 0
	m.wrpos = 0
}

// CanRead reports whether n more bytes can be read.
func (m *NetworkMessage) CanRead(n int) bool {
	return n >= 0 && m.rdpos+n <= m.wrpos
}

// CanAdd reports whether n more bytes fit.
func (m *NetworkMessage) CanAdd(n int) bool {
	return n >= 0 && m.wrpos+n <= len(m.buf)
}

// IsOverrun reports whether any read or write ran past the buffer bounds.
func (m *NetworkMessage) IsOverrun() bool {
	return m.rdpos > m.wrpos || m.wrpos > len(m.buf)
}

// RemainingLen returns the number of unread bytes, zero when overrun.
func (m *NetworkMessage) RemainingLen() int {
	if m.IsOverrun() {
		return 0
	}
	return m.wrpos - m.rdpos
}

// RemainingBuf returns the unread slice, empty when overrun.
func (m *NetworkMessage) RemainingBuf() []byte {
	if m.IsOverrun() {
		return nil
	}
	return m.buf[m.rdpos:m.wrpos]
}

// WrittenLen returns the total written length, zero when overrun.
func (m *NetworkMessage) WrittenLen() int {
	if m.IsOverrun() {
		return 0
	}
	return m.wrpos
}

// WrittenBuf returns everything written so far.
func (m *NetworkMessage) WrittenBuf() []byte {
	if m.IsOverrun() {
		return nil
	}
	return m.buf[:m.wrpos]
}

// SetWritten marks n bytes of the underlying buffer as written and rewinds
// the read cursor. Used by the frame reader after filling Buf directly.
func (m *NetworkMessage) SetWritten(n int) {
	m.rdpos = 0
	m.wrpos = n
}

// Buf exposes the raw backing array for direct socket reads.
func (m *NetworkMessage) Buf() []byte {
	return m.buf[:]
}

// DiscardPadding drops n trailing bytes. Reports false when n exceeds the
// remaining length.
func (m *NetworkMessage) DiscardPadding(n int) bool {
	if n < 0 || n > m.RemainingLen() {
		return false
	}
	m.wrpos -= n
	return true
}

// GetByte reads a single byte.
func (m *NetworkMessage) GetByte() byte {
	var v byte
	if m.CanRead(1) {
		v = m.buf[m.rdpos]
	}
	m.rdpos++
	return v
}

// GetU16 reads a little-endian uint16.
func (m *NetworkMessage) GetU16() uint16 {
	var v uint16
	if m.CanRead(2) {
		v = binary.LittleEndian.Uint16(m.buf[m.rdpos:])
	}
	m.rdpos += 2
	return v
}

// GetU32 reads a little-endian uint32.
func (m *NetworkMessage) GetU32() uint32 {
	var v uint32
	if m.CanRead(4) {
		v = binary.LittleEndian.Uint32(m.buf[m.rdpos:])
	}
	m.rdpos += 4
	return v
}

// GetU64 reads a little-endian uint64.
func (m *NetworkMessage) GetU64() uint64 {
	var v uint64
	if m.CanRead(8) {
		v = binary.LittleEndian.Uint64(m.buf[m.rdpos:])
	}
	m.rdpos += 8
	return v
}

// GetString reads a u16-length-prefixed string.
func (m *NetworkMessage) GetString() string {
	n := int(m.GetU16())
	var s string
	if m.CanRead(n) {
		s = string(m.buf[m.rdpos : m.rdpos+n])
	}
	m.rdpos += n
	return s
}

// GetPosition reads a map position.
func (m *NetworkMessage) GetPosition() model.Position {
	return model.Position{
		X: m.GetU16(),
		Y: m.GetU16(),
		Z: m.GetByte(),
	}
}

// SkipBytes advances the read cursor without touching the data.
func (m *NetworkMessage) SkipBytes(n int) {
	m.rdpos += n
}

// AddByte appends a single byte.
func (m *NetworkMessage) AddByte(v byte) {
	if m.CanAdd(1) {
		m.buf[m.wrpos] = v
	}
	m.wrpos++
}

// AddU16 appends a little-endian uint16.
func (m *NetworkMessage) AddU16(v uint16) {
	if m.CanAdd(2) {
		binary.LittleEndian.PutUint16(m.buf[m.wrpos:], v)
	}
	m.wrpos += 2
}

// AddU32 appends a little-endian uint32.
func (m *NetworkMessage) AddU32(v uint32) {
	if m.CanAdd(4) {
		binary.LittleEndian.PutUint32(m.buf[m.wrpos:], v)
	}
	m.wrpos += 4
}

// AddU64 appends a little-endian uint64.
func (m *NetworkMessage) AddU64(v uint64) {
	if m.CanAdd(8) {
		binary.LittleEndian.PutUint64(m.buf[m.wrpos:], v)
	}
	m.wrpos += 8
}

// AddBytes appends raw bytes.
func (m *NetworkMessage) AddBytes(b []byte) {
	if m.CanAdd(len(b)) {
		copy(m.buf[m.wrpos:], b)
	}
	m.wrpos += len(b)
}

// AddString appends a u16-length-prefixed string.
func (m *NetworkMessage) AddString(s string) {
	if m.CanAdd(2 + len(s)) {
		binary.LittleEndian.PutUint16(m.buf[m.wrpos:], uint16(len(s)))
		copy(m.buf[m.wrpos+2:], s)
	}
	m.wrpos += 2 + len(s)
}

// AddDouble appends a fixed-point double: a precision byte followed by the
// scaled value biased by math.MaxInt32.
func (m *NetworkMessage) AddDouble(v float64, precision uint8) {
	m.AddByte(precision)
	m.AddU32(uint32(v*math.Pow(10, float64(precision)) + math.MaxInt32))
}

// AddPosition appends a map position.
func (m *NetworkMessage) AddPosition(pos model.Position) {
	m.AddU16(pos.X)
	m.AddU16(pos.Y)
	m.AddByte(pos.Z)
}

// AddItem appends an item in the client's thing encoding.
func (m *NetworkMessage) AddItem(item *model.Item) {
	m.AddU16(item.ClientID)

	switch {
	case item.Stackable:
		m.AddByte(item.Count)
	case item.Splash:
		m.AddByte(item.FluidColor)
	case item.Classification > 0:
		m.AddByte(item.Tier)
	}

	if item.Container != nil {
		m.AddByte(0x00) // assigned loot container icon
		m.AddByte(0x00) // quiver ammo count
	}

	if podium := item.Podium; podium != nil {
		if podium.ShowOutfit {
			m.AddU16(podium.Outfit.LookType)
			if podium.Outfit.LookType != 0 {
				m.AddByte(podium.Outfit.Head)
				m.AddByte(podium.Outfit.Body)
				m.AddByte(podium.Outfit.Legs)
				m.AddByte(podium.Outfit.Feet)
				m.AddByte(podium.Outfit.Addons)
			}
		} else {
			m.AddU16(0)
		}

		if podium.ShowMount {
			m.AddU16(podium.Outfit.Mount)
			if podium.Outfit.Mount != 0 {
				m.AddByte(podium.Outfit.MountHead)
				m.AddByte(podium.Outfit.MountBody)
				m.AddByte(podium.Outfit.MountLegs)
				m.AddByte(podium.Outfit.MountFeet)
			}
		} else {
			m.AddU16(0)
		}

		m.AddByte(byte(podium.Direction))
		if podium.ShowPlatform {
			m.AddByte(0x01)
		} else {
			m.AddByte(0x00)
		}
	}
}

// AddItemRef appends an item by client id and count, for placeholder things.
func (m *NetworkMessage) AddItemRef(clientID uint16, count uint8, stackable bool) {
	m.AddU16(clientID)
	if stackable {
		m.AddByte(count)
	}
}
