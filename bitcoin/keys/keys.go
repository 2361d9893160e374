// Package keys renders locking scripts as bitcoin addresses.
package keys

import (
	"github.com/akamensky/base58"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/pkg/errors"

	"github.com/ABMatrix/chainstate-utxo/bitcoin/crypto"
)

// Hash160ToAddress base58check encodes a hash160 behind a version prefix.
//
//	prefix   hash160                                                                   checksum
//	    \           \                                                                          \
//	   [00] [203 194 152 111 249 174 214 130 89 32 174 206 20 170 111 83 130 202 85 128] [56 132 221 179]
//	   \                                                                                                / base58 encode
//	    ------------------------------------------address-----------------------------------------------
func Hash160ToAddress(hash160 []byte, prefix []byte) string {
	payload := make([]byte, 0, len(prefix)+len(hash160)+4)
	payload = append(payload, prefix...)
	payload = append(payload, hash160...)
	payload = append(payload, crypto.Checksum(payload)...)

	return base58.Encode(payload)
}

// PublicKeyToAddress returns the P2PKH address of a serialized public key.
func PublicKeyToAddress(pubKey []byte, prefix []byte) string {
	return Hash160ToAddress(crypto.Hash160(pubKey), prefix)
}

// ScriptAddress returns the address a standard locking script pays to, or ""
// when the script has none (multisig, nulldata, nonstandard). P2PK scripts
// have no address of their own; they are rendered as the P2PKH address of
// their key only when p2pk is set.
func ScriptAddress(script []byte, params *chaincfg.Params, p2pk bool) (string, error) {
	switch txscript.GetScriptClass(script) {
	case txscript.PubKeyHashTy:
		// OP_DUP OP_HASH160 <20> OP_EQUALVERIFY OP_CHECKSIG
		return Hash160ToAddress(script[3:23], []byte{params.PubKeyHashAddrID}), nil

	case txscript.ScriptHashTy:
		// OP_HASH160 <20> OP_EQUAL
		return Hash160ToAddress(script[2:22], []byte{params.ScriptHashAddrID}), nil

	case txscript.PubKeyTy:
		if !p2pk {
			return "", nil
		}
		// <push> <pubkey> OP_CHECKSIG
		return PublicKeyToAddress(script[1:len(script)-1], []byte{params.PubKeyHashAddrID}), nil

	case txscript.WitnessV0PubKeyHashTy:
		addr, err := btcutil.NewAddressWitnessPubKeyHash(script[2:], params)
		if err != nil {
			return "", errors.Wrap(err, "p2wpkh address")
		}
		return addr.EncodeAddress(), nil

	case txscript.WitnessV0ScriptHashTy:
		addr, err := btcutil.NewAddressWitnessScriptHash(script[2:], params)
		if err != nil {
			return "", errors.Wrap(err, "p2wsh address")
		}
		return addr.EncodeAddress(), nil

	case txscript.WitnessV1TaprootTy:
		addr, err := btcutil.NewAddressTaproot(script[2:], params)
		if err != nil {
			return "", errors.Wrap(err, "p2tr address")
		}
		return addr.EncodeAddress(), nil
	}

	return "", nil
}
