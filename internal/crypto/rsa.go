package crypto

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
)

// RSABlockSize is the size of the RSA-opened block in the client's login
// packet: a 1024-bit key yields a single 128-byte block.
const RSABlockSize = 128

// RSAKey wraps the server's RSA-1024 private key. It is used exactly once
// per connection, to open the login block carrying the XTEA key.
type RSAKey struct {
	priv *rsa.PrivateKey
}

// LoadRSAKey reads a PEM-encoded PKCS#1 or PKCS#8 private key from path.
func LoadRSAKey(path string) (*RSAKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading RSA key %s: %w", path, err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("parsing RSA key %s: no PEM block found", path)
	}

	priv, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		parsed, err8 := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err8 != nil {
			return nil, fmt.Errorf("parsing RSA key %s: %w", path, err)
		}
		var ok bool
		priv, ok = parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("parsing RSA key %s: not an RSA key", path)
		}
	}

	if size := priv.Size(); size != RSABlockSize {
		return nil, fmt.Errorf("RSA key %s: expected %d-byte modulus, got %d", path, RSABlockSize, size)
	}

	return &RSAKey{priv: priv}, nil
}

// NewRSAKey wraps an already-parsed private key. Used by tests.
func NewRSAKey(priv *rsa.PrivateKey) (*RSAKey, error) {
	if size := priv.Size(); size != RSABlockSize {
		return nil, fmt.Errorf("RSA key: expected %d-byte modulus, got %d", RSABlockSize, size)
	}
	return &RSAKey{priv: priv}, nil
}

// DecryptNoPadding opens a 128-byte block in-place with the raw RSA
// operation (RSA/ECB/NoPadding equivalent): m = c^d mod n. The caller is
// expected to verify that the first plaintext byte is zero.
func (k *RSAKey) DecryptNoPadding(block []byte) error {
	if len(block) != RSABlockSize {
		return fmt.Errorf("rsa decrypt: expected %d bytes, got %d", RSABlockSize, len(block))
	}

	c := new(big.Int).SetBytes(block)
	if c.Cmp(k.priv.N) >= 0 {
		return fmt.Errorf("rsa decrypt: ciphertext out of range")
	}
	m := new(big.Int).Exp(c, k.priv.D, k.priv.N)

	m.FillBytes(block)
	return nil
}

// EncryptNoPadding applies the raw public operation in-place: c = m^e mod n.
// Only the tests exercise this; the client performs it on its side.
func (k *RSAKey) EncryptNoPadding(block []byte) error {
	if len(block) != RSABlockSize {
		return fmt.Errorf("rsa encrypt: expected %d bytes, got %d", RSABlockSize, len(block))
	}

	m := new(big.Int).SetBytes(block)
	if m.Cmp(k.priv.N) >= 0 {
		return fmt.Errorf("rsa encrypt: plaintext out of range")
	}
	c := new(big.Int).Exp(m, big.NewInt(int64(k.priv.E)), k.priv.N)

	c.FillBytes(block)
	return nil
}
