package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHash256(t *testing.T) {
	require.Equal(t, "5df6e0e2761359d30a8275058e299fcc0381534545f55cf43e41983f5d4c9456", hex.EncodeToString(Hash256(nil)))
}

func TestHash160(t *testing.T) {
	// genesis coinbase public key
	pubKey, err := hex.DecodeString("04678afdb0fe5548271967f1a67130b7105cd6a828e03909a67962e0ea1f61deb6" +
		"49f6bc3f4cef38c4f35504e51ec112de5c384df7ba0b8d578a4c702b6bf11d5f")
	require.NoError(t, err)

	require.Equal(t, "62e907b15cbf27d5425399ebf6f0fb50ebb88f18", hex.EncodeToString(Hash160(pubKey)))
}

func TestChecksum(t *testing.T) {
	require.Equal(t, "5df6e0e2", hex.EncodeToString(Checksum(nil)))
}
