// Package sink writes decoded UTXOs to their destination, a line oriented
// file or a MongoDB collection.
package sink

import (
	"github.com/ABMatrix/chainstate-utxo/bitcoin/btcleveldb"
)

// Sink receives UTXOs in scan order. Close flushes anything still buffered
// and must be called once the scan is over, even after a failed scan.
type Sink interface {
	Write(u *btcleveldb.UTXO) error
	Close() error
}
