// Package utxo defines the coin store and the record layout shared by its implementations.
package utxo

import (
	"context"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/utxo-compressor/model"
)

// Stats summarizes the content of a store.
type Stats struct {
	// Count is the number of coins
	Count int
	// Bytes is the total size of the encoded coin records, keys excluded
	Bytes int
}

// Store holds unspent coins keyed by outpoint. Coins are kept in their compressed form.
type Store interface {
	// Health returns an HTTP style status code and a message describing the store.
	Health(ctx context.Context, checkLiveness bool) (int, string, error)
	// Put stores coin under txID:index, replacing any existing coin.
	Put(ctx context.Context, txID *chainhash.Hash, index uint32, coin *model.Coin) error
	// Get returns the coin at txID:index, or an error matching errors.ErrNotFound.
	Get(ctx context.Context, txID *chainhash.Hash, index uint32) (*model.Coin, error)
	// Delete removes the coin at txID:index. Deleting a missing coin is not an error.
	Delete(ctx context.Context, txID *chainhash.Hash, index uint32) error
	// Iterate calls fn for every coin until fn returns an error or ctx is done.
	Iterate(ctx context.Context, fn func(txID *chainhash.Hash, index uint32, coin *model.Coin) error) error
	// Stats walks every record without decoding scripts.
	Stats(ctx context.Context) (*Stats, error)
	Close() error
}
