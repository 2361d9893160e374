package btcleveldb

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"
	"github.com/pkg/errors"
)

// ScriptType is the compact script template selected by nSize.
type ScriptType uint8

// 0  = P2PKH <- hash160 public key
// 1  = P2SH  <- hash160 script
// 2  = P2PK 02publickey <- nsize makes up part of the public key in the actual script
// 3  = P2PK 03publickey
// 4  = P2PK 04publickey (uncompressed - but has been compressed in to leveldb) y=even
// 5  = P2PK 04publickey (uncompressed - but has been compressed in to leveldb) y=odd
// 6+ = [size of the upcoming script] (subtract 6 to get the actual size in bytes)
const (
	ScriptP2PKH ScriptType = iota
	ScriptP2SH
	ScriptP2PKEven
	ScriptP2PKOdd
	ScriptP2PKUncompressedEven
	ScriptP2PKUncompressedOdd
	ScriptRaw
)

// Number of special script templates before raw scripts start.
const numSpecialScripts = 6

// Raw scripts this short or shorter are dropped.
const minRawScriptSize = 20

var scriptTypeNames = [...]string{
	ScriptP2PKH:                "p2pkh",
	ScriptP2SH:                 "p2sh",
	ScriptP2PKEven:             "p2pk",
	ScriptP2PKOdd:              "p2pk",
	ScriptP2PKUncompressedEven: "p2pk_uncompress",
	ScriptP2PKUncompressedOdd:  "p2pk_uncompress",
	ScriptRaw:                  "raw",
}

func (t ScriptType) String() string {
	if int(t) < len(scriptTypeNames) {
		return scriptTypeNames[t]
	}

	return "unknown"
}

// ScriptTypeOf maps an nSize value to its template, anything from 6 up is raw.
func ScriptTypeOf(nSize uint64) ScriptType {
	if nSize < numSpecialScripts {
		return ScriptType(nSize)
	}

	return ScriptRaw
}

// ReconstructScript expands a compressed script into the canonical scriptPubKey.
// payload holds the bytes following the nSize varint up to the end of the record.
//
// Uncompressed pubkeys (nSize 4 and 5) fail with ErrUnsupportedScript, see
// DecompressPubKeyScript. Raw scripts of minRawScriptSize bytes or fewer are
// rejected with an empty script and no error.
func ReconstructScript(nSize uint64, payload []byte) ([]byte, ScriptType, error) {
	scriptType := ScriptTypeOf(nSize)

	switch scriptType {
	case ScriptP2PKH:
		hash, err := takePayload(payload, 20, scriptType)
		if err != nil {
			return nil, scriptType, err
		}
		script, err := txscript.NewScriptBuilder().
			AddOp(txscript.OP_DUP).
			AddOp(txscript.OP_HASH160).
			AddData(hash).
			AddOp(txscript.OP_EQUALVERIFY).
			AddOp(txscript.OP_CHECKSIG).
			Script()
		return script, scriptType, err

	case ScriptP2SH:
		hash, err := takePayload(payload, 20, scriptType)
		if err != nil {
			return nil, scriptType, err
		}
		script, err := txscript.NewScriptBuilder().
			AddOp(txscript.OP_HASH160).
			AddData(hash).
			AddOp(txscript.OP_EQUAL).
			Script()
		return script, scriptType, err

	case ScriptP2PKEven, ScriptP2PKOdd:
		// nSize is the parity prefix of the compressed key
		x, err := takePayload(payload, 32, scriptType)
		if err != nil {
			return nil, scriptType, err
		}
		pubKey := make([]byte, 0, 33)
		pubKey = append(pubKey, byte(nSize))
		pubKey = append(pubKey, x...)
		script, err := txscript.NewScriptBuilder().
			AddData(pubKey).
			AddOp(txscript.OP_CHECKSIG).
			Script()
		return script, scriptType, err

	case ScriptP2PKUncompressedEven, ScriptP2PKUncompressedOdd:
		return nil, scriptType, errors.Wrapf(ErrUnsupportedScript, "nSize %d", nSize)
	}

	size := nSize - numSpecialScripts
	if size <= minRawScriptSize {
		return []byte{}, scriptType, nil
	}
	raw, err := takePayload(payload, size, scriptType)
	if err != nil {
		return nil, scriptType, err
	}

	script := make([]byte, size)
	copy(script, raw)

	return script, scriptType, nil
}

// DecompressPubKeyScript rebuilds the 67 byte P2PK script for nSize 4 and 5,
// where leveldb only keeps the x coordinate and the parity of y.
func DecompressPubKeyScript(nSize uint64, payload []byte) ([]byte, error) {
	scriptType := ScriptTypeOf(nSize)
	if scriptType != ScriptP2PKUncompressedEven && scriptType != ScriptP2PKUncompressedOdd {
		return nil, errors.Errorf("nSize %d is not an uncompressed pubkey", nSize)
	}

	x, err := takePayload(payload, 32, scriptType)
	if err != nil {
		return nil, err
	}

	// 4 -> 02 (y even), 5 -> 03 (y odd)
	compressed := make([]byte, 0, 33)
	compressed = append(compressed, byte(nSize-2))
	compressed = append(compressed, x...)

	pubKey, err := btcec.ParsePubKey(compressed)
	if err != nil {
		return nil, errors.Wrap(err, "decompress public key")
	}

	return txscript.NewScriptBuilder().
		AddData(pubKey.SerializeUncompressed()).
		AddOp(txscript.OP_CHECKSIG).
		Script()
}

func takePayload(payload []byte, size uint64, scriptType ScriptType) ([]byte, error) {
	if uint64(len(payload)) < size {
		return nil, errors.Wrapf(ErrTruncated, "%s script needs %d bytes, have %d", scriptType, size, len(payload))
	}

	return payload[:size], nil
}
