package btcleveldb

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
)

// UTXOPrefix is the first key byte of a coin record (0x43 = 'C').
const UTXOPrefix = 0x43

// A utxo key is the prefix, the 32 byte txid and a varint output index.
//
//	430000155b9869d56c66d9e86e3c01de38e3892a42b99949fe109ac034fff6583900
//	<><--------------------------------------------------------------><>
//	/                               |                                  \
//	type                          txid (little-endian)                  index (varint)
const utxoKeyTxIDEnd = 1 + chainhash.HashSize

// UTXO is one decoded coin record.
type UTXO struct {
	// TxID is kept in stored (little-endian) order; String() prints the usual reversed form.
	TxID         chainhash.Hash
	Vout         uint64
	Height       uint64
	Coinbase     bool
	Amount       uint64 // in satoshis
	NSize        uint64
	ScriptPubKey []byte
	ScriptType   ScriptType
}

// Resolved reports whether a locking script was reconstructed for the output.
func (u *UTXO) Resolved() bool {
	return len(u.ScriptPubKey) > 0
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithPubKeyDecompression expands uncompressed P2PK outputs (nSize 4 and 5)
// instead of leaving their script empty.
func WithPubKeyDecompression() DecoderOption {
	return func(d *Decoder) {
		d.decompressPubKeys = true
	}
}

// Decoder turns raw chainstate values into UTXOs. It only reads its key, so
// one Decoder can be shared by any number of goroutines.
type Decoder struct {
	key               ObfuscationKey
	decompressPubKeys bool
}

// NewDecoder returns a Decoder for values obfuscated with key.
func NewDecoder(key ObfuscationKey, opts ...DecoderOption) (*Decoder, error) {
	if len(key) == 0 {
		return nil, ErrEmptyObfuscationKey
	}

	d := &Decoder{key: key}
	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// DecodeRecord decodes a coin record and fills in the txid and output index from its key.
func (d *Decoder) DecodeRecord(key, value []byte) (*UTXO, error) {
	if len(key) <= utxoKeyTxIDEnd {
		return nil, &DecodeError{Key: cloneKey(key), Err: errors.Wrapf(ErrShortKey, "%d bytes", len(key))}
	}
	if key[0] != UTXOPrefix {
		return nil, &DecodeError{Key: cloneKey(key), Err: errors.Wrapf(ErrShortKey, "prefix %#02x is not a coin record", key[0])}
	}

	u, err := d.Decode(value)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.Key = cloneKey(key)
		}
		return nil, err
	}

	copy(u.TxID[:], key[1:utxoKeyTxIDEnd])

	vout, _, err := NewVarint(key[utxoKeyTxIDEnd:]).Uint64(0)
	if err != nil {
		return nil, &DecodeError{Key: cloneKey(key), Offset: utxoKeyTxIDEnd, Err: errors.Wrap(err, "output index")}
	}
	u.Vout = vout

	return u, nil
}

// Decode decodes a coin value. The txid is not part of the value and is left zero.
//
//	c0842680ed5900a38f35518de4487c108e3810e6794fb68b189d8b <- deobfuscated
//	<----><----><><-------------------------------------->
//	 /      |    \                   |
//	varint  varint varint          script <- P2PKH/P2SH hash160, P2PK public key, or complete script
//	 |       |     nSize
//	 |     amount (compressed)
//	 |
//	 100000100001010100110
//	 <------------------> \
//	        height         coinbase
func (d *Decoder) Decode(value []byte) (*UTXO, error) {
	plain := d.key.Deobfuscate(value)
	fields := NewVarint(plain)

	u := &UTXO{}

	// height and coinbase flag
	code, _, err := fields.Decode(0)
	if err != nil {
		return nil, fieldError(fields, 0, err)
	}
	if len(code) == 0 {
		return nil, fieldError(fields, 0, ErrTruncated)
	}
	u.Coinbase = code[len(code)-1]&1 == 1
	if u.Height, err = BytesToUint64(ShiftRight(code, 1)); err != nil {
		return nil, fieldError(fields, 0, err)
	}

	// amount
	compressed, _, err := fields.Uint64(1)
	if err != nil {
		return nil, fieldError(fields, 1, err)
	}
	if u.Amount, err = DecompressAmount(compressed); err != nil {
		return nil, fieldError(fields, 1, err)
	}

	// nSize, then the script payload up to the end of the value
	nSize, scriptStart, err := fields.Uint64(2)
	if err != nil {
		return nil, fieldError(fields, 2, err)
	}
	u.NSize = nSize
	payload := fields.Remaining(scriptStart)
	if scriptStart == EndOfBuffer {
		scriptStart = len(plain)
	}

	u.ScriptPubKey, u.ScriptType, err = ReconstructScript(nSize, payload)
	switch {
	case errors.Is(err, ErrUnsupportedScript):
		if d.decompressPubKeys {
			if u.ScriptPubKey, err = DecompressPubKeyScript(nSize, payload); err != nil {
				return nil, &DecodeError{Offset: scriptStart, Err: err}
			}
		}
	case err != nil:
		return nil, &DecodeError{Offset: scriptStart, Err: err}
	}

	return u, nil
}

func fieldError(fields *Varint, n int, err error) error {
	offset, startErr := fields.Start(n)
	if startErr != nil {
		offset = len(fields.buf)
	}

	return &DecodeError{Offset: offset, Err: errors.Wrapf(err, "field %d", n)}
}

// cloneKey detaches a key from the iterator buffer it may point into.
func cloneKey(key []byte) []byte {
	return append([]byte(nil), key...)
}
