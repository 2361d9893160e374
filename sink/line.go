package sink

import (
	"bufio"
	"encoding/hex"
	"io"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/pkg/errors"

	"github.com/ABMatrix/chainstate-utxo/bitcoin/btcleveldb"
	"github.com/ABMatrix/chainstate-utxo/bitcoin/keys"
)

// Output fields a LineWriter can render.
const (
	FieldCount    = "count"
	FieldTxID     = "txid"
	FieldVout     = "vout"
	FieldHeight   = "height"
	FieldCoinbase = "coinbase"
	FieldAmount   = "amount"
	FieldNSize    = "nsize"
	FieldScript   = "script"
	FieldType     = "type"
	FieldAddress  = "address"
)

// DefaultFields gives one "<scriptPubKey hex>,<amount>" line per UTXO.
const DefaultFields = FieldScript + "," + FieldAmount

// ErrUnknownField is returned by ParseFields for a field it can't render.
var ErrUnknownField = errors.New("unknown output field")

var fieldsAllowed = []string{
	FieldCount, FieldTxID, FieldVout, FieldHeight, FieldCoinbase,
	FieldAmount, FieldNSize, FieldScript, FieldType, FieldAddress,
}

// ParseFields splits a comma separated field list and checks every entry.
func ParseFields(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.Wrapf(ErrUnknownField, "empty field list, choose from %s", strings.Join(fieldsAllowed, ","))
	}

	var fields []string
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if !fieldAllowed(field) {
			return nil, errors.Wrapf(ErrUnknownField, "'%s', choose from %s", field, strings.Join(fieldsAllowed, ","))
		}
		fields = append(fields, field)
	}

	return fields, nil
}

func fieldAllowed(field string) bool {
	for _, allowed := range fieldsAllowed {
		if field == allowed {
			return true
		}
	}

	return false
}

// LineOption configures a LineWriter.
type LineOption func(*LineWriter)

// WithHeader writes the field names as the first line.
func WithHeader() LineOption {
	return func(w *LineWriter) {
		w.header = true
	}
}

// WithP2PKAddresses renders P2PK outputs as the P2PKH address of their key.
func WithP2PKAddresses() LineOption {
	return func(w *LineWriter) {
		w.p2pkAddresses = true
	}
}

// LineWriter writes one comma separated line per UTXO.
type LineWriter struct {
	w             *bufio.Writer
	fields        []string
	params        *chaincfg.Params
	header        bool
	p2pkAddresses bool
	count         uint64
	started       bool
	line          []string
}

// NewLineWriter returns a LineWriter over w rendering fields, with addresses
// encoded for params. Close flushes but does not close w.
func NewLineWriter(w io.Writer, fields []string, params *chaincfg.Params, opts ...LineOption) *LineWriter {
	if len(fields) == 0 {
		fields = []string{FieldScript, FieldAmount}
	}
	if params == nil {
		params = &chaincfg.MainNetParams
	}

	lw := &LineWriter{
		w:      bufio.NewWriter(w),
		fields: fields,
		params: params,
		line:   make([]string, len(fields)),
	}
	for _, opt := range opts {
		opt(lw)
	}

	return lw
}

// Write renders u as one line.
func (lw *LineWriter) Write(u *btcleveldb.UTXO) error {
	if err := lw.writeHeader(); err != nil {
		return err
	}

	lw.count++

	line, err := lw.renderLine(u)
	if err != nil {
		return err
	}

	if _, err := lw.w.WriteString(line); err != nil {
		return errors.Wrap(err, "write utxo")
	}

	return lw.w.WriteByte('\n')
}

func (lw *LineWriter) renderLine(u *btcleveldb.UTXO) (string, error) {
	for i, field := range lw.fields {
		value, err := lw.render(field, u)
		if err != nil {
			return "", err
		}
		lw.line[i] = value
	}

	return strings.Join(lw.line, ","), nil
}

func (lw *LineWriter) render(field string, u *btcleveldb.UTXO) (string, error) {
	switch field {
	case FieldCount:
		return strconv.FormatUint(lw.count, 10), nil
	case FieldTxID:
		return u.TxID.String(), nil
	case FieldVout:
		return strconv.FormatUint(u.Vout, 10), nil
	case FieldHeight:
		return strconv.FormatUint(u.Height, 10), nil
	case FieldCoinbase:
		if u.Coinbase {
			return "1", nil
		}
		return "0", nil
	case FieldAmount:
		return strconv.FormatUint(u.Amount, 10), nil
	case FieldNSize:
		return strconv.FormatUint(u.NSize, 10), nil
	case FieldScript:
		return hex.EncodeToString(u.ScriptPubKey), nil
	case FieldType:
		return ScriptClass(u.ScriptPubKey), nil
	case FieldAddress:
		return keys.ScriptAddress(u.ScriptPubKey, lw.params, lw.p2pkAddresses)
	}

	return "", errors.Wrapf(ErrUnknownField, "'%s'", field)
}

func (lw *LineWriter) writeHeader() error {
	if lw.started {
		return nil
	}
	lw.started = true

	if !lw.header {
		return nil
	}

	if _, err := lw.w.WriteString(strings.Join(lw.fields, ",") + "\n"); err != nil {
		return errors.Wrap(err, "write header")
	}

	return nil
}

// Count returns the number of UTXOs written.
func (lw *LineWriter) Count() uint64 {
	return lw.count
}

// Close writes the header if nothing else was written and flushes.
func (lw *LineWriter) Close() error {
	if err := lw.writeHeader(); err != nil {
		return err
	}

	return errors.Wrap(lw.w.Flush(), "flush output")
}
