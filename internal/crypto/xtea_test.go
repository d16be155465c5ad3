package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestXTEARoundTrip(t *testing.T) {
	key := XTEAKey{0x01020304, 0x05060708, 0x090A0B0C, 0x0D0E0F10}

	for _, size := range []int{8, 16, 64, 1024} {
		data := make([]byte, size)
		for i := range data {
			data[i] = byte(i * 31)
		}
		original := make([]byte, size)
		copy(original, data)

		require.NoError(t, XTEAEncrypt(&key, data))
		require.False(t, bytes.Equal(data, original), "ciphertext must differ from plaintext (size %d)", size)
		require.NoError(t, XTEADecrypt(&key, data))
		require.Equal(t, original, data, "round trip mismatch (size %d)", size)
	}
}

func TestXTEAKnownVector(t *testing.T) {
	// Standard XTEA test vector with all-zero key and plaintext, expressed in
	// the little-endian word order the wire uses. Encrypting v0=v1=0 with a
	// zero key must yield (0xDEE9D4D8, 0xF7131ED9).
	var key XTEAKey
	data := make([]byte, 8)
	require.NoError(t, XTEAEncrypt(&key, data))

	want := []byte{0xD8, 0xD4, 0xE9, 0xDE, 0xD9, 0x1E, 0x13, 0xF7}
	require.Equal(t, want, data)
}

func TestXTEARejectsUnalignedLength(t *testing.T) {
	var key XTEAKey
	require.Error(t, XTEAEncrypt(&key, make([]byte, 7)))
	require.Error(t, XTEADecrypt(&key, make([]byte, 9)))
}

func TestXTEAKeyFromBytes(t *testing.T) {
	b := []byte{
		0x01, 0x00, 0x00, 0x00,
		0x02, 0x00, 0x00, 0x00,
		0x03, 0x00, 0x00, 0x00,
		0x04, 0x00, 0x00, 0x00,
	}
	key, err := XTEAKeyFromBytes(b)
	require.NoError(t, err)
	require.Equal(t, XTEAKey{1, 2, 3, 4}, key)

	_, err = XTEAKeyFromBytes(b[:12])
	require.Error(t, err)
}
