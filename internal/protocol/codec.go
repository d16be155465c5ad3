package protocol

import (
	"errors"
	"fmt"
	"io"

	"github.com/fusion32/forgottenserver/internal/crypto"
)

// Wire frame layout, both directions, after the handshake:
//
//	u16  num_xtea_blocks
//	u32  sequence            (low 30 bits monotonic; bit 31 compressed, bit 30 reserved)
//	u8   pad_count           ┐
//	...  payload             ├ ciphered under XTEA in ECB, 8·N bytes total
//	...  pad_count random    ┘
//
// The high sequence bits are treated as errors until their meaning is
// settled; the server never sets them.
const (
	seqCompressedBit = uint32(1) << 31
	seqReservedBit   = uint32(1) << 30
	seqFlagsMask     = seqCompressedBit | seqReservedBit
)

var (
	ErrBlockCount       = errors.New("protocol: bad xtea block count")
	ErrSequenceMismatch = errors.New("protocol: sequence mismatch")
	ErrBadPadding       = errors.New("protocol: malformed padding")
	ErrOverrun          = errors.New("protocol: message overrun")
)

// WrapFrame finalizes msg into a wire frame: appends random padding until the
// enciphered region is block-aligned, prepends the pad count, enciphers when
// key is non-nil, then prepends the sequence and block count headers.
func WrapFrame(msg *OutputMessage, key *crypto.XTEAKey, seq uint32) error {
	if msg.IsOverrun() {
		return ErrOverrun
	}

	padding := (8 - (msg.OutputLen()+1)%8) % 8
	if padding > 0 {
		var pad [7]byte
		crypto.RandBytes(pad[:padding])
		msg.AddBytes(pad[:padding])
	}
	msg.AddHeaderByte(byte(padding))

	numBlocks := msg.OutputLen() / 8
	if msg.IsOverrun() || numBlocks <= 0 || numBlocks > 0xFFFF {
		return ErrBlockCount
	}

	if key != nil {
		if err := crypto.XTEAEncrypt(key, msg.OutputBuf()); err != nil {
			return fmt.Errorf("enciphering frame: %w", err)
		}
	}

	msg.AddHeaderU32(seq)
	msg.AddHeaderU16(uint16(numBlocks))
	return nil
}

// ReadFrame reads one frame from r into msg, verifies the expected client
// sequence, deciphers when key is non-nil, and trims the trailing padding.
// On return the read cursor sits on the first payload byte.
func ReadFrame(r io.Reader, msg *NetworkMessage, key *crypto.XTEAKey, expectSeq uint32) error {
	buf := msg.Buf()
	if _, err := io.ReadFull(r, buf[:2]); err != nil {
		return fmt.Errorf("reading frame header: %w", err)
	}

	numBlocks := int(buf[0]) | int(buf[1])<<8
	packetLen := 4 + numBlocks*8
	if numBlocks == 0 || packetLen > len(buf) {
		return ErrBlockCount
	}

	if _, err := io.ReadFull(r, buf[:packetLen]); err != nil {
		return fmt.Errorf("reading frame body: %w", err)
	}
	msg.SetWritten(packetLen)

	seq := msg.GetU32()
	if seq&seqFlagsMask != 0 || seq != expectSeq {
		return ErrSequenceMismatch
	}

	if key != nil {
		if err := crypto.XTEADecrypt(key, msg.RemainingBuf()); err != nil {
			return fmt.Errorf("deciphering frame: %w", err)
		}
	}

	padding := int(msg.GetByte())
	if msg.IsOverrun() || !msg.DiscardPadding(padding) {
		return ErrBadPadding
	}

	return nil
}
