package btcleveldb

import (
	"fmt"

	"github.com/pkg/errors"
)

// Configuration errors. These abort before any record is scanned.
var (
	ErrNotChainstate       = errors.New("path is not a leveldb chainstate")
	ErrNoObfuscationKey    = errors.New("obfuscation key record not found")
	ErrEmptyObfuscationKey = errors.New("obfuscation key is empty")
)

// Format errors. A record failing with one of these usually means the store was
// written by an incompatible node version.
var (
	ErrFieldIndex        = errors.New("varint field index out of range")
	ErrTruncated         = errors.New("record truncated")
	ErrShortKey          = errors.New("utxo key too short")
	ErrOverflow          = errors.New("value overflows uint64")
	ErrUnsupportedScript = errors.New("unsupported compressed script")
)

// ErrIterator is returned when the store iterator reports an error after the scan loop.
var ErrIterator = errors.New("chainstate iteration failed")

// DecodeError reports a record that could not be decoded, with enough context
// to find it again in the store.
type DecodeError struct {
	Key    []byte
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode record %x at offset %d: %v", e.Key, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
