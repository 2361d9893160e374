package sink

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/ABMatrix/chainstate-utxo/bitcoin/btcleveldb"
	"github.com/ABMatrix/chainstate-utxo/ulogger"
)

const (
	// DefaultBatchSize is the number of documents sent per InsertMany.
	DefaultBatchSize = 1024

	// CollectionPrefix is followed by "-mainnet" or "-testnet".
	CollectionPrefix = "utxo"

	defaultInserts = 4
)

// Inserter stores a batch of documents. *mongo.Collection implements it.
type Inserter interface {
	InsertMany(ctx context.Context, documents []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
}

// CollectionName returns the collection UTXOs of the given network go to.
func CollectionName(params *chaincfg.Params) string {
	if params != nil && params.Net != chaincfg.MainNetParams.Net {
		return CollectionPrefix + "-testnet"
	}

	return CollectionPrefix + "-mainnet"
}

// MongoOption configures a Mongo sink.
type MongoOption func(*Mongo)

// WithBatchSize sets how many documents go into one InsertMany.
func WithBatchSize(n int) MongoOption {
	return func(m *Mongo) {
		if n > 0 {
			m.batchSize = n
		}
	}
}

// WithConcurrentInserts sets how many batches may be in flight at once.
func WithConcurrentInserts(n int) MongoOption {
	return func(m *Mongo) {
		if n > 0 {
			m.inserts = n
		}
	}
}

// WithMongoLogger sets the logger used for batch progress.
func WithMongoLogger(logger ulogger.Logger) MongoOption {
	return func(m *Mongo) {
		m.logger = logger
	}
}

// WithMongoP2PKAddresses renders P2PK outputs as the P2PKH address of their key.
func WithMongoP2PKAddresses() MongoOption {
	return func(m *Mongo) {
		m.p2pkAddresses = true
	}
}

// Mongo buffers documents and inserts them in batches. Batches are sent in
// the background; the first failed insert stops the sink and is returned
// from the next Write or from Close.
type Mongo struct {
	parent        context.Context
	ctx           context.Context
	group         *errgroup.Group
	inserter      Inserter
	params        *chaincfg.Params
	logger        ulogger.Logger
	batchSize     int
	inserts       int
	p2pkAddresses bool
	buf           []interface{}
	written       uint64
	closed        bool
}

// NewMongo returns a sink writing documents for params through inserter.
func NewMongo(ctx context.Context, inserter Inserter, params *chaincfg.Params, opts ...MongoOption) *Mongo {
	if params == nil {
		params = &chaincfg.MainNetParams
	}

	m := &Mongo{
		parent:    ctx,
		inserter:  inserter,
		params:    params,
		logger:    ulogger.NewNopLogger(),
		batchSize: DefaultBatchSize,
		inserts:   defaultInserts,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.group, m.ctx = errgroup.WithContext(ctx)
	m.group.SetLimit(m.inserts)
	m.buf = make([]interface{}, 0, m.batchSize)

	return m
}

// Write adds u to the current batch and sends the batch once it is full.
func (m *Mongo) Write(u *btcleveldb.UTXO) error {
	if m.closed {
		return errors.New("write to closed mongo sink")
	}
	if m.ctx.Err() != nil {
		return m.wait()
	}

	doc, err := NewDocument(u, m.params, m.p2pkAddresses)
	if err != nil {
		return err
	}

	m.buf = append(m.buf, doc)
	m.written++

	if len(m.buf) >= m.batchSize {
		m.flush()
	}

	return nil
}

func (m *Mongo) flush() {
	if len(m.buf) == 0 {
		return
	}

	batch := m.buf
	m.buf = make([]interface{}, 0, m.batchSize)
	written := m.written

	m.group.Go(func() error {
		if _, err := m.inserter.InsertMany(m.ctx, batch); err != nil {
			return errors.Wrapf(err, "insert %d documents", len(batch))
		}
		m.logger.Debugf("%d utxos inserted", written)
		return nil
	})
}

func (m *Mongo) wait() error {
	if err := m.group.Wait(); err != nil {
		return err
	}

	return m.parent.Err()
}

// Written returns the number of UTXOs handed to the sink.
func (m *Mongo) Written() uint64 {
	return m.written
}

// Close sends the last partial batch and waits for all inserts.
func (m *Mongo) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true

	if m.ctx.Err() == nil {
		m.flush()
	}

	return m.wait()
}
