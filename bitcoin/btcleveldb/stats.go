package btcleveldb

import (
	"github.com/dustin/go-humanize"

	"github.com/ABMatrix/chainstate-utxo/ulogger"
)

const satoshisPerBitcoin = 100000000

// Stats counts what a scan saw.
type Stats struct {
	Records     uint64 // every key in the store
	UTXORecords uint64 // keys with the coin prefix
	Emitted     uint64
	ZeroAmount  uint64
	Skipped     uint64 // non-coin records
	Corrupt     uint64
	Unresolved  uint64 // emitted without a reconstructed script
	TotalAmount uint64 // satoshis emitted
	ScriptTypes map[ScriptType]uint64
}

// NewStats returns empty Stats.
func NewStats() *Stats {
	return &Stats{ScriptTypes: make(map[ScriptType]uint64)}
}

func (s *Stats) add(u *UTXO) {
	s.Emitted++
	s.TotalAmount += u.Amount
	s.ScriptTypes[u.ScriptType]++
	if !u.Resolved() {
		s.Unresolved++
	}
}

// Log writes the end-of-scan summary.
func (s *Stats) Log(logger ulogger.Logger) {
	logger.Infof("Total UTXOs: %s", formatCount(s.Emitted))
	logger.Infof("Total BTC:   %.8f", float64(s.TotalAmount)/satoshisPerBitcoin)
	logger.Infof("Zero amount: %s, corrupt: %s, unresolved scripts: %s",
		formatCount(s.ZeroAmount), formatCount(s.Corrupt), formatCount(s.Unresolved))
	logger.Infof("Script Types:")
	for t := ScriptP2PKH; t <= ScriptRaw; t++ {
		if n, ok := s.ScriptTypes[t]; ok {
			logger.Infof(" %d %-16s %s", t, t, formatCount(n))
		}
	}
}

func formatCount(n uint64) string {
	return humanize.Comma(int64(n))
}
