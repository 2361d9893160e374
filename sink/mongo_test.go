package sink

import (
	"context"
	"sync"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// fakeInserter stands in for a *mongo.Collection.
type fakeInserter struct {
	mu      sync.Mutex
	batches [][]interface{}
	err     error
}

func (f *fakeInserter) InsertMany(_ context.Context, documents []interface{}, _ ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	f.batches = append(f.batches, documents)

	return &mongo.InsertManyResult{}, nil
}

func (f *fakeInserter) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, batch := range f.batches {
		n += len(batch)
	}

	return n
}

var _ Inserter = (*mongo.Collection)(nil)

func TestMongoBatches(t *testing.T) {
	inserter := &fakeInserter{}
	m := NewMongo(context.Background(), inserter, &chaincfg.MainNetParams, WithBatchSize(3), WithConcurrentInserts(1))

	for i := 0; i < 7; i++ {
		require.NoError(t, m.Write(testUTXO(t)))
	}
	require.NoError(t, m.Close())

	require.Len(t, inserter.batches, 3)
	assert.Len(t, inserter.batches[0], 3)
	assert.Len(t, inserter.batches[1], 3)
	assert.Len(t, inserter.batches[2], 1)
	assert.Equal(t, 7, inserter.total())
	assert.Equal(t, uint64(7), m.Written())

	doc, ok := inserter.batches[0][0].(*Document)
	require.True(t, ok)
	assert.Equal(t, "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b", doc.TxID)
	assert.Equal(t, int64(1), doc.Vout)
	assert.Equal(t, int64(100), doc.Height)
	assert.True(t, doc.Coinbase)
	assert.Equal(t, int64(5000000000), doc.Amount)
	assert.Equal(t, "76a914"+testHash160+"88ac", doc.Script)
	assert.Equal(t, "pubkeyhash", doc.Type)
	assert.Equal(t, "16L5yRNPTuciSgXGHqYwn9N6NeoKqopAu", doc.Address)
}

func TestMongoEmpty(t *testing.T) {
	inserter := &fakeInserter{}
	m := NewMongo(context.Background(), inserter, nil)

	require.NoError(t, m.Close())
	assert.Empty(t, inserter.batches)

	// a second Close is a no-op
	require.NoError(t, m.Close())
	assert.Error(t, m.Write(testUTXO(t)))
}

func TestMongoInsertError(t *testing.T) {
	inserter := &fakeInserter{err: errors.New("connection refused")}
	m := NewMongo(context.Background(), inserter, nil, WithBatchSize(1), WithConcurrentInserts(1))

	require.NoError(t, m.Write(testUTXO(t)))

	err := m.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestMongoCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := NewMongo(ctx, &fakeInserter{}, nil)

	cancel()
	assert.True(t, errors.Is(m.Write(testUTXO(t)), context.Canceled))
	assert.True(t, errors.Is(m.Close(), context.Canceled))
}

func TestCollectionName(t *testing.T) {
	assert.Equal(t, "utxo-mainnet", CollectionName(&chaincfg.MainNetParams))
	assert.Equal(t, "utxo-mainnet", CollectionName(nil))
	assert.Equal(t, "utxo-testnet", CollectionName(&chaincfg.TestNet3Params))
}
