// Package btcleveldb reads the UTXO set out of a bitcoin core chainstate LevelDB.
//
// A chainstate value is obfuscated with a per-database XOR key and packs the
// block height, coinbase flag, compressed amount and compressed locking script
// of one output into MSB base-128 varints. This package undoes the obfuscation,
// decodes the varints and rebuilds the canonical scriptPubKey.
package btcleveldb

import (
	"context"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/ABMatrix/chainstate-utxo/ulogger"
)

// BestBlockPrefix is the key of the record holding the hash of the chainstate tip (0x42 = 'B').
const BestBlockPrefix = 0x42

// Store is the part of a LevelDB handle the scanner needs. *leveldb.DB implements it.
type Store interface {
	Get(key []byte, ro *opt.ReadOptions) ([]byte, error)
	NewIterator(slice *util.Range, ro *opt.ReadOptions) iterator.Iterator
}

// RecordDecoder turns one coin record into a UTXO. *Decoder implements it.
type RecordDecoder interface {
	DecodeRecord(key, value []byte) (*UTXO, error)
}

// Option configures a Chainstate.
type Option func(*Chainstate)

// WithLogger sets the logger used for progress and skipped records.
func WithLogger(logger ulogger.Logger) Option {
	return func(c *Chainstate) {
		c.logger = logger
	}
}

// WithSkipCorrupt logs and skips records that fail to decode instead of aborting the scan.
func WithSkipCorrupt() Option {
	return func(c *Chainstate) {
		c.skipCorrupt = true
	}
}

// WithDecoderOptions passes options to the Decoder built from the store's obfuscation key.
func WithDecoderOptions(opts ...DecoderOption) Option {
	return func(c *Chainstate) {
		c.decoderOpts = append(c.decoderOpts, opts...)
	}
}

// WithDecoder replaces the record decoder.
func WithDecoder(decoder RecordDecoder) Option {
	return func(c *Chainstate) {
		c.decoder = decoder
	}
}

// WithProgressInterval logs progress every n emitted UTXOs. Zero disables it.
func WithProgressInterval(n uint64) Option {
	return func(c *Chainstate) {
		c.progressEvery = n
	}
}

// Chainstate scans the coin records of a chainstate database.
type Chainstate struct {
	store         Store
	db            *leveldb.DB // set when the database was opened by Open
	key           ObfuscationKey
	decoder       RecordDecoder
	decoderOpts   []DecoderOption
	logger        ulogger.Logger
	skipCorrupt   bool
	progressEvery uint64
}

// Open opens the chainstate LevelDB at path read-only.
func Open(path string, opts ...Option) (*Chainstate, error) {
	if path == "" {
		return nil, errors.Wrap(ErrNotChainstate, "no database specified")
	}

	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(ErrNotChainstate, "couldn't find %s", path)
	}

	if _, err := os.Stat(filepath.Join(path, "LOCK")); err != nil {
		return nil, errors.Wrapf(ErrNotChainstate, "%s has no LOCK file", path)
	}

	// open leveldb without compression to avoid corrupting the database for bitcoin
	// https://bitcoin.stackexchange.com/questions/52257/chainstate-leveldb-corruption-after-reading-from-the-database
	db, err := leveldb.OpenFile(path, &opt.Options{
		Compression: opt.NoCompression,
		ReadOnly:    true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't open leveldb %s", path)
	}

	c, err := New(db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	c.db = db

	return c, nil
}

// New wraps an open store and loads its obfuscation key.
func New(store Store, opts ...Option) (*Chainstate, error) {
	c := &Chainstate{
		store:         store,
		logger:        ulogger.NewNopLogger(),
		progressEvery: 100000,
	}
	for _, o := range opts {
		o(c)
	}

	record, err := store.Get(ObfuscationKeyRecord, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNoObfuscationKey
	}
	if err != nil {
		return nil, errors.Wrap(err, "read obfuscation key")
	}

	if c.key, err = ParseObfuscationKey(record); err != nil {
		return nil, err
	}
	c.logger.Debugf("obfuscation key: %x (%d bytes)", []byte(c.key), len(c.key))

	if c.decoder == nil {
		if c.decoder, err = NewDecoder(c.key, c.decoderOpts...); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// ObfuscationKey returns the key loaded from the store.
func (c *Chainstate) ObfuscationKey() ObfuscationKey {
	return c.key
}

// BestBlock returns the hash of the block the chainstate is synced to.
func (c *Chainstate) BestBlock() (chainhash.Hash, error) {
	var hash chainhash.Hash

	value, err := c.store.Get([]byte{BestBlockPrefix}, nil)
	if err != nil {
		return hash, errors.Wrap(err, "read best block")
	}

	plain := c.key.Deobfuscate(value)
	if len(plain) != chainhash.HashSize {
		return hash, errors.Wrapf(ErrTruncated, "best block record has %d bytes", len(plain))
	}
	copy(hash[:], plain)

	return hash, nil
}

// Scan walks every record in key order and calls fn for each coin with a
// non-zero amount. Records of other types are skipped without being decoded.
//
// An error from fn, a corrupt record (unless WithSkipCorrupt) or a cancelled
// ctx stops the scan. Output already passed to fn is not taken back, so a
// failed scan must be treated as incomplete.
func (c *Chainstate) Scan(ctx context.Context, fn func(*UTXO) error) (*Stats, error) {
	stats := NewStats()

	iter := c.store.NewIterator(nil, nil)
	defer iter.Release()

	for ok := iter.First(); ok; ok = iter.Next() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		key := iter.Key()
		stats.Records++

		// first byte in key indicates the type of record
		if len(key) == 0 || key[0] != UTXOPrefix {
			stats.Skipped++
			continue
		}
		stats.UTXORecords++

		u, err := c.decoder.DecodeRecord(key, iter.Value())
		if err != nil {
			if !c.skipCorrupt {
				return stats, err
			}
			stats.Corrupt++
			c.logger.Warnf("skipping corrupt record: %v", err)
			continue
		}

		if u.Amount == 0 {
			stats.ZeroAmount++
			continue
		}

		stats.add(u)

		if err := fn(u); err != nil {
			return stats, err
		}

		if c.progressEvery > 0 && stats.Emitted%c.progressEvery == 0 {
			c.logger.Infof("%s utxos processed", formatCount(stats.Emitted))
		}
	}

	if err := iter.Error(); err != nil {
		return stats, errors.Wrapf(ErrIterator, "%v", err)
	}

	return stats, nil
}

// Close releases the database if it was opened by Open.
func (c *Chainstate) Close() error {
	if c.db == nil {
		return nil
	}

	return c.db.Close()
}
