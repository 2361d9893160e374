package btcleveldb

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testHash160 = "0102030405060708090a0b0c0d0e0f1011121314"

	genesisPubKey = "04678afdb0fe5548271967f1a67130b7105cd6a828e03909a67962e0ea1f61deb6" +
		"49f6bc3f4cef38c4f35504e51ec112de5c384df7ba0b8d578a4c702b6bf11d5f"
	genesisX = "678afdb0fe5548271967f1a67130b7105cd6a828e03909a67962e0ea1f61deb6"
)

func TestReconstructScript(t *testing.T) {
	tests := []struct {
		name       string
		nSize      uint64
		payload    string
		script     string
		scriptType ScriptType
	}{
		{
			name:       "p2pkh",
			nSize:      0,
			payload:    testHash160,
			script:     "76a914" + testHash160 + "88ac",
			scriptType: ScriptP2PKH,
		},
		{
			name:       "p2sh",
			nSize:      1,
			payload:    testHash160,
			script:     "a914" + testHash160 + "87",
			scriptType: ScriptP2SH,
		},
		{
			name:       "p2pk even",
			nSize:      2,
			payload:    genesisX,
			script:     "2102" + genesisX + "ac",
			scriptType: ScriptP2PKEven,
		},
		{
			name:       "p2pk odd",
			nSize:      3,
			payload:    genesisX,
			script:     "2103" + genesisX + "ac",
			scriptType: ScriptP2PKOdd,
		},
		{
			name:       "p2wpkh as raw script",
			nSize:      6 + 22,
			payload:    "0014" + testHash160,
			script:     "0014" + testHash160,
			scriptType: ScriptRaw,
		},
		{
			name:       "26 byte raw script",
			nSize:      32,
			payload:    "0102030405060708090a0b0c0d0e0f101112131415161718191a",
			script:     "0102030405060708090a0b0c0d0e0f101112131415161718191a",
			scriptType: ScriptRaw,
		},
		{
			name:       "trailing bytes are ignored",
			nSize:      0,
			payload:    testHash160 + "ffff",
			script:     "76a914" + testHash160 + "88ac",
			scriptType: ScriptP2PKH,
		},
		{
			name:       "short raw script is dropped",
			nSize:      6 + 3,
			payload:    "516a00",
			script:     "",
			scriptType: ScriptRaw,
		},
		{
			name:       "raw script of exactly 20 bytes is dropped",
			nSize:      6 + 20,
			payload:    testHash160,
			script:     "",
			scriptType: ScriptRaw,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script, scriptType, err := ReconstructScript(tt.nSize, mustHex(t, tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.script, hex.EncodeToString(script))
			assert.Equal(t, tt.scriptType, scriptType)
		})
	}
}

func TestReconstructScriptLengths(t *testing.T) {
	payload := bytes.Repeat([]byte{0xab}, 32)

	for nSize, want := range map[uint64]int{0: 25, 1: 23, 2: 35, 3: 35} {
		script, _, err := ReconstructScript(nSize, payload)
		require.NoError(t, err)
		assert.Len(t, script, want, "nSize %d", nSize)
	}
}

func TestReconstructScriptCopiesRaw(t *testing.T) {
	payload := bytes.Repeat([]byte{0x51}, 25)

	script, _, err := ReconstructScript(6+25, payload)
	require.NoError(t, err)

	payload[0] = 0
	assert.Equal(t, byte(0x51), script[0])
}

func TestReconstructScriptErrors(t *testing.T) {
	_, scriptType, err := ReconstructScript(4, mustHex(t, genesisX))
	assert.True(t, errors.Is(err, ErrUnsupportedScript))
	assert.Equal(t, ScriptP2PKUncompressedEven, scriptType)

	_, scriptType, err = ReconstructScript(5, mustHex(t, genesisX))
	assert.True(t, errors.Is(err, ErrUnsupportedScript))
	assert.Equal(t, ScriptP2PKUncompressedOdd, scriptType)

	for _, nSize := range []uint64{0, 1, 2, 3, 6 + 30} {
		_, _, err := ReconstructScript(nSize, mustHex(t, "0102"))
		assert.True(t, errors.Is(err, ErrTruncated), "nSize %d", nSize)
	}

	_, _, err = ReconstructScript(0, nil)
	assert.True(t, errors.Is(err, ErrTruncated))
}

func TestDecompressPubKeyScript(t *testing.T) {
	script, err := DecompressPubKeyScript(5, mustHex(t, genesisX))
	require.NoError(t, err)
	assert.Equal(t, "41"+genesisPubKey+"ac", hex.EncodeToString(script))
	assert.Len(t, script, 67)

	// the wrong parity gives the other point with the same x
	script, err = DecompressPubKeyScript(4, mustHex(t, genesisX))
	require.NoError(t, err)
	assert.Len(t, script, 67)
	assert.NotEqual(t, "41"+genesisPubKey+"ac", hex.EncodeToString(script))
	assert.Equal(t, "4104"+genesisX, hex.EncodeToString(script[:34]))

	_, err = DecompressPubKeyScript(2, mustHex(t, genesisX))
	assert.Error(t, err)

	_, err = DecompressPubKeyScript(5, mustHex(t, "0102"))
	assert.True(t, errors.Is(err, ErrTruncated))

	// x = p is not on the curve
	_, err = DecompressPubKeyScript(4, mustHex(t, "fffffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f"))
	assert.Error(t, err)
}

func TestScriptType(t *testing.T) {
	assert.Equal(t, ScriptP2PKH, ScriptTypeOf(0))
	assert.Equal(t, ScriptP2PKUncompressedOdd, ScriptTypeOf(5))
	assert.Equal(t, ScriptRaw, ScriptTypeOf(6))
	assert.Equal(t, ScriptRaw, ScriptTypeOf(10000))

	assert.Equal(t, "p2pkh", ScriptP2PKH.String())
	assert.Equal(t, "p2sh", ScriptP2SH.String())
	assert.Equal(t, "p2pk", ScriptP2PKOdd.String())
	assert.Equal(t, "p2pk_uncompress", ScriptP2PKUncompressedEven.String())
	assert.Equal(t, "raw", ScriptRaw.String())
	assert.Equal(t, "unknown", ScriptType(42).String())
}
