package sink

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"

	"github.com/ABMatrix/chainstate-utxo/bitcoin/btcleveldb"
	"github.com/ABMatrix/chainstate-utxo/bitcoin/keys"
)

// Document is the stored form of one UTXO.
type Document struct {
	ID       string `json:"id,omitempty" bson:"_id,omitempty"`
	TxID     string `json:"tx_id" bson:"tx_id"`
	Vout     int64  `json:"vout" bson:"vout"`
	Height   int64  `json:"height" bson:"height"`
	Coinbase bool   `json:"coinbase" bson:"coinbase"`
	Amount   int64  `json:"amount" bson:"amount"`
	Script   string `json:"script" bson:"script"`
	Type     string `json:"type" bson:"type"`
	Address  string `json:"address" bson:"address"`
}

// NewDocument renders u with its script class and address for params.
func NewDocument(u *btcleveldb.UTXO, params *chaincfg.Params, p2pkAddresses bool) (*Document, error) {
	address, err := keys.ScriptAddress(u.ScriptPubKey, params, p2pkAddresses)
	if err != nil {
		return nil, err
	}

	return &Document{
		TxID:     u.TxID.String(),
		Vout:     int64(u.Vout),
		Height:   int64(u.Height),
		Coinbase: u.Coinbase,
		Amount:   int64(u.Amount),
		Script:   hex.EncodeToString(u.ScriptPubKey),
		Type:     ScriptClass(u.ScriptPubKey),
		Address:  address,
	}, nil
}

// ScriptClass names the standard form of script, e.g. pubkeyhash or witness_v0_keyhash.
func ScriptClass(script []byte) string {
	return txscript.GetScriptClass(script).String()
}
