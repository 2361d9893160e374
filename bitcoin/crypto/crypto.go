// Package crypto holds the bitcoin hash helpers used for address rendering.
package crypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160"
)

// Hash256 is sha256 applied twice.
func Hash256(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])

	return second[:]
}

// Hash160 is ripemd160(sha256(b)), the hash inside P2PKH and P2SH scripts.
func Hash160(b []byte) []byte {
	sum := sha256.Sum256(b)

	h := ripemd160.New()
	_, _ = h.Write(sum[:])

	return h.Sum(nil)
}

// Checksum returns the first 4 bytes of Hash256(b), as appended by base58check.
func Checksum(b []byte) []byte {
	return Hash256(b)[:4]
}
