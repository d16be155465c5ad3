package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testRSAKey(t *testing.T) *RSAKey {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)
	key, err := NewRSAKey(priv)
	require.NoError(t, err)
	return key
}

func TestRSANoPaddingRoundTrip(t *testing.T) {
	key := testRSAKey(t)

	// A login block always has a leading zero byte, which also keeps the
	// value below the modulus.
	block := make([]byte, RSABlockSize)
	for i := 1; i < len(block); i++ {
		block[i] = byte(i)
	}
	original := make([]byte, RSABlockSize)
	copy(original, block)

	require.NoError(t, key.EncryptNoPadding(block))
	require.NoError(t, key.DecryptNoPadding(block))
	require.Equal(t, original, block)
	require.Equal(t, byte(0), block[0])
}

func TestRSARejectsWrongLength(t *testing.T) {
	key := testRSAKey(t)
	require.Error(t, key.DecryptNoPadding(make([]byte, 64)))
	require.Error(t, key.EncryptNoPadding(make([]byte, 256)))
}

func TestLoadRSAKey(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)

	pemBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(priv),
	})

	path := filepath.Join(t.TempDir(), "key.pem")
	require.NoError(t, os.WriteFile(path, pemBytes, 0o600))

	key, err := LoadRSAKey(path)
	require.NoError(t, err)
	require.NotNil(t, key)

	_, err = LoadRSAKey(filepath.Join(t.TempDir(), "missing.pem"))
	require.Error(t, err)
}

func TestRandByte(t *testing.T) {
	// Smoke test: 256 draws should not all be identical.
	first := RandByte()
	same := true
	for i := 0; i < 256; i++ {
		if RandByte() != first {
			same = false
			break
		}
	}
	require.False(t, same)
}
