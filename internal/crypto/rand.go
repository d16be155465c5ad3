package crypto

import "crypto/rand"

// RandBytes fills b with bytes from the OS CSPRNG.
func RandBytes(b []byte) {
	// crypto/rand.Read never fails on supported platforms since Go 1.24.
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
}

// RandByte returns a single byte from the OS CSPRNG.
func RandByte() byte {
	var b [1]byte
	RandBytes(b[:])
	return b[0]
}
